package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shukatsu-reminders/internal/domain"
)

// EventRepo provides typed DynamoDB operations for the events table.
type EventRepo struct {
	client    API
	tableName string
}

func NewEventRepo(client API, tableName string) *EventRepo {
	return &EventRepo{client: client, tableName: tableName}
}

func (r *EventRepo) Put(ctx context.Context, e *domain.Event) error {
	item, err := attributevalue.MarshalMap(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// ListByCompany returns the company's events starting in [from, to).
func (r *EventRepo) ListByCompany(ctx context.Context, companyID string, from, to time.Time) ([]domain.Event, error) {
	// start_time holds whole seconds: x < to  <=>  x <= ceil(to)-1.
	return r.queryRange(ctx, eventsByCompanyIndex, "company_id", companyID, ceilUnix(from), ceilUnix(to).Add(-time.Second))
}

// ListByType returns events of type t starting in [from, to], both inclusive.
func (r *EventRepo) ListByType(ctx context.Context, t domain.EventType, from, to time.Time) ([]domain.Event, error) {
	return r.queryRange(ctx, eventsByTypeIndex, "type", string(t), ceilUnix(from), to.Truncate(time.Second))
}

// queryRange pages through index for hashValue with start_time BETWEEN low AND high.
func (r *EventRepo) queryRange(ctx context.Context, index, hashAttr, hashValue string, low, high time.Time) ([]domain.Event, error) {
	if high.Before(low) {
		return nil, nil
	}
	p := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(index),
		KeyConditionExpression: aws.String("#h = :h AND #st BETWEEN :low AND :high"),
		ExpressionAttributeNames: map[string]string{
			"#h":  hashAttr,
			"#st": "start_time",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":h":    strValue(hashValue),
			":low":  unixValue(low),
			":high": unixValue(high),
		},
	})
	var events []domain.Event
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", index, err)
		}
		var batch []domain.Event
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("unmarshal events: %w", err)
		}
		events = append(events, batch...)
	}
	for i := range events {
		events[i].StartTime = events[i].StartTime.UTC()
	}
	return events, nil
}
