package dynamo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shukatsu-reminders/internal/domain"
)

// SelectionRepo provides typed DynamoDB operations for the selections table.
// PK: user_id, SK: company_id.
type SelectionRepo struct {
	client    API
	tableName string
}

func NewSelectionRepo(client API, tableName string) *SelectionRepo {
	return &SelectionRepo{client: client, tableName: tableName}
}

func (r *SelectionRepo) Put(ctx context.Context, s *domain.Selection) error {
	item, err := attributevalue.MarshalMap(s)
	if err != nil {
		return fmt.Errorf("marshal selection: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *SelectionRepo) Get(ctx context.Context, userID, companyID string) (*domain.Selection, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       compositeKey("user_id", userID, "company_id", companyID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("selection %s/%s: %w", userID, companyID, domain.ErrNotFound)
	}
	var s domain.Selection
	if err := attributevalue.UnmarshalMap(out.Item, &s); err != nil {
		return nil, err
	}
	s.UpdatedAt = s.UpdatedAt.UTC()
	return &s, nil
}

// ListByUser queries the user's partition, keeping rows whose status is in
// statusIn and whose updated_at is strictly before updatedBefore.
func (r *SelectionRepo) ListByUser(ctx context.Context, userID string, statusIn []domain.SelectionStatus, updatedBefore time.Time) ([]domain.Selection, error) {
	if len(statusIn) == 0 {
		return nil, nil
	}
	filter, names, values := statusFilter(statusIn)
	names["#u"] = "updated_at"
	values[":uid"] = strValue(userID)
	// updated_at holds whole seconds: x < t  <=>  x < ceil(t).
	values[":before"] = unixValue(ceilUnix(updatedBefore))

	p := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    aws.String("user_id = :uid"),
		FilterExpression:          aws.String(filter + " AND #u < :before"),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})
	var selections []domain.Selection
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("query selections: %w", err)
		}
		var batch []domain.Selection
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("unmarshal selections: %w", err)
		}
		selections = append(selections, batch...)
	}
	for i := range selections {
		selections[i].UpdatedAt = selections[i].UpdatedAt.UTC()
	}
	return selections, nil
}

// statusFilter builds "#status IN (:s0, :s1, ...)" and its placeholders.
func statusFilter(statusIn []domain.SelectionStatus) (string, map[string]string, map[string]types.AttributeValue) {
	names := map[string]string{"#status": "status"}
	values := make(map[string]types.AttributeValue, len(statusIn)+2)
	placeholders := make([]string, len(statusIn))
	for i, st := range statusIn {
		key := fmt.Sprintf(":s%d", i)
		placeholders[i] = key
		values[key] = strValue(string(st))
	}
	return "#status IN (" + strings.Join(placeholders, ", ") + ")", names, values
}
