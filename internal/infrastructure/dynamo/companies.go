package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shukatsu-reminders/internal/domain"
)

// CompanyRepo provides typed DynamoDB operations for the companies table.
type CompanyRepo struct {
	client    API
	tableName string
}

func NewCompanyRepo(client API, tableName string) *CompanyRepo {
	return &CompanyRepo{client: client, tableName: tableName}
}

func (r *CompanyRepo) Put(ctx context.Context, c *domain.Company) error {
	item, err := attributevalue.MarshalMap(c)
	if err != nil {
		return fmt.Errorf("marshal company: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// GetMany loads the given companies keyed by id. Ids without a record are
// absent from the result.
func (r *CompanyRepo) GetMany(ctx context.Context, companyIDs []string) (map[string]*domain.Company, error) {
	ids := uniqueNonEmpty(companyIDs)
	found := make(map[string]*domain.Company, len(ids))
	for _, batch := range chunk(ids, maxBatchGetKeys) {
		keys := make([]map[string]types.AttributeValue, 0, len(batch))
		for _, id := range batch {
			keys = append(keys, strKey("company_id", id))
		}
		items, err := r.batchGet(ctx, keys)
		if err != nil {
			return nil, err
		}
		var companies []domain.Company
		if err := attributevalue.UnmarshalListOfMaps(items, &companies); err != nil {
			return nil, fmt.Errorf("unmarshal companies: %w", err)
		}
		for i := range companies {
			found[companies[i].CompanyID] = &companies[i]
		}
	}
	return found, nil
}

func (r *CompanyRepo) batchGet(ctx context.Context, keys []map[string]types.AttributeValue) ([]map[string]types.AttributeValue, error) {
	var items []map[string]types.AttributeValue
	request := map[string]types.KeysAndAttributes{r.tableName: {Keys: keys}}
	for round := 0; len(request) > 0; round++ {
		if round == maxBatchGetRounds {
			return nil, errors.New("batch get companies: unprocessed keys remain")
		}
		out, err := r.client.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{RequestItems: request})
		if err != nil {
			return nil, fmt.Errorf("batch get companies: %w", err)
		}
		items = append(items, out.Responses[r.tableName]...)
		request = out.UnprocessedKeys
	}
	return items, nil
}
