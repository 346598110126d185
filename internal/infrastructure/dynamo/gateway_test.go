package dynamo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shukatsu-reminders/internal/config"
	"github.com/shukatsu-reminders/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

var testTables = config.DynamoTables{Companies: "companies", Selections: "selections", Events: "events"}

// fakeAPI serves canned pages and records every request.
type fakeAPI struct {
	queryPages [][]map[string]types.AttributeValue
	queries    []*dynamodb.QueryInput
	getItem    map[string]types.AttributeValue
	batchGets  []*dynamodb.BatchGetItemInput
	companies  map[string]map[string]types.AttributeValue
	// unprocessedOnce returns the first batch request back as unprocessed.
	unprocessedOnce bool
	puts            []*dynamodb.PutItemInput
	err             error
}

func (f *fakeAPI) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	page := len(f.queries)
	f.queries = append(f.queries, in)
	out := &dynamodb.QueryOutput{}
	if page < len(f.queryPages) {
		out.Items = f.queryPages[page]
	}
	if page+1 < len(f.queryPages) {
		out.LastEvaluatedKey = strKey("cursor", "next")
	}
	return out, nil
}

func (f *fakeAPI) GetItem(_ context.Context, _ *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &dynamodb.GetItemOutput{Item: f.getItem}, nil
}

func (f *fakeAPI) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.puts = append(f.puts, in)
	return &dynamodb.PutItemOutput{}, f.err
}

func (f *fakeAPI) BatchGetItem(_ context.Context, in *dynamodb.BatchGetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.BatchGetItemOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.batchGets = append(f.batchGets, in)
	if f.unprocessedOnce {
		f.unprocessedOnce = false
		return &dynamodb.BatchGetItemOutput{UnprocessedKeys: in.RequestItems}, nil
	}
	out := &dynamodb.BatchGetItemOutput{Responses: map[string][]map[string]types.AttributeValue{}}
	for table, ka := range in.RequestItems {
		for _, key := range ka.Keys {
			id := key["company_id"].(*types.AttributeValueMemberS).Value
			if item, ok := f.companies[id]; ok {
				out.Responses[table] = append(out.Responses[table], item)
			}
		}
	}
	return out, nil
}

func mustMarshal(t *testing.T, v any) map[string]types.AttributeValue {
	t.Helper()
	item, err := attributevalue.MarshalMap(v)
	require.NoError(t, err)
	return item
}

func numValue(t *testing.T, av types.AttributeValue) string {
	t.Helper()
	n, ok := av.(*types.AttributeValueMemberN)
	require.True(t, ok)
	return n.Value
}

func TestGateway_ListSelections_JoinsCompanies(t *testing.T) {
	api := &fakeAPI{
		queryPages: [][]map[string]types.AttributeValue{
			{mustMarshal(t, domain.Selection{UserID: "u1", CompanyID: "c1", Status: domain.StatusESSubmit, UpdatedAt: testNow.Add(-10 * 24 * time.Hour)})},
			{mustMarshal(t, domain.Selection{UserID: "u1", CompanyID: "c2", Status: domain.StatusInterview, UpdatedAt: testNow.Add(-8 * 24 * time.Hour)})},
		},
		companies: map[string]map[string]types.AttributeValue{
			"c1": mustMarshal(t, domain.Company{CompanyID: "c1", Name: "Acme"}),
		},
		unprocessedOnce: true,
	}
	g := NewGateway(api, testTables)

	cutoff := testNow.Add(-7 * 24 * time.Hour)
	got, err := g.ListSelections(context.Background(), "u1", []domain.SelectionStatus{domain.StatusESSubmit, domain.StatusInterview}, cutoff)
	require.NoError(t, err)
	require.Len(t, got, 2)

	require.NotNil(t, got[0].Company)
	assert.Equal(t, "Acme", got[0].Company.Name)
	assert.Nil(t, got[1].Company, "missing company joins as nil")
	assert.Equal(t, testNow.Add(-10*24*time.Hour), got[0].UpdatedAt)
	assert.Equal(t, time.UTC, got[0].UpdatedAt.Location())

	require.Len(t, api.queries, 2, "all pages are read")
	q := api.queries[0]
	assert.Equal(t, "selections", *q.TableName)
	assert.Equal(t, "#status IN (:s0, :s1) AND #u < :before", *q.FilterExpression)
	assert.Equal(t, "1791536400", numValue(t, q.ExpressionAttributeValues[":before"]))

	assert.Len(t, api.batchGets, 2, "unprocessed keys are resubmitted")
}

func TestGateway_ListSelections_NoStatuses(t *testing.T) {
	api := &fakeAPI{}
	got, err := NewGateway(api, testTables).ListSelections(context.Background(), "u1", nil, testNow)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, api.queries)
}

func TestGateway_ListEventsForCompany_Bounds(t *testing.T) {
	api := &fakeAPI{queryPages: [][]map[string]types.AttributeValue{{
		mustMarshal(t, domain.Event{EventID: "e1", CompanyID: "c1", Type: domain.EventInterview, StartTime: testNow.Add(time.Hour)}),
	}}}
	g := NewGateway(api, testTables)

	got, err := g.ListEventsForCompany(context.Background(), "c1", testNow, testNow.Add(7*24*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, testNow.Add(time.Hour), got[0].StartTime)

	q := api.queries[0]
	assert.Equal(t, eventsByCompanyIndex, *q.IndexName)
	assert.Equal(t, "1792141200", numValue(t, q.ExpressionAttributeValues[":low"]))
	// exclusive upper bound: one second before now+7d
	assert.Equal(t, "1792745999", numValue(t, q.ExpressionAttributeValues[":high"]))
}

func TestGateway_ListDeadlineEvents(t *testing.T) {
	api := &fakeAPI{
		queryPages: [][]map[string]types.AttributeValue{{
			mustMarshal(t, domain.Event{EventID: "e1", CompanyID: "c1", Type: domain.EventDeadline, StartTime: testNow.Add(48 * time.Hour)}),
			mustMarshal(t, domain.Event{EventID: "e2", Type: domain.EventDeadline, StartTime: testNow.Add(50 * time.Hour)}),
		}},
		companies: map[string]map[string]types.AttributeValue{
			"c1": mustMarshal(t, domain.Company{CompanyID: "c1", Name: "Acme"}),
		},
	}
	g := NewGateway(api, testTables)

	got, err := g.ListDeadlineEvents(context.Background(), testNow.Add(24*time.Hour), testNow.Add(72*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.NotNil(t, got[0].Company)
	assert.Equal(t, "Acme", got[0].Company.Name)
	assert.Nil(t, got[1].Company)

	q := api.queries[0]
	assert.Equal(t, eventsByTypeIndex, *q.IndexName)
	assert.Equal(t, "Deadline", q.ExpressionAttributeValues[":h"].(*types.AttributeValueMemberS).Value)
	assert.Equal(t, "1792227600", numValue(t, q.ExpressionAttributeValues[":low"]))
	assert.Equal(t, "1792400400", numValue(t, q.ExpressionAttributeValues[":high"]))

	require.Len(t, api.batchGets, 1)
	assert.Len(t, api.batchGets[0].RequestItems["companies"].Keys, 1, "orphan events are not looked up")
}

func TestGateway_EmptyRangeSkipsQuery(t *testing.T) {
	api := &fakeAPI{}
	got, err := NewGateway(api, testTables).ListEventsForCompany(context.Background(), "c1", testNow, testNow)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, api.queries)
}

func TestGateway_GetSelection_NotFound(t *testing.T) {
	_, err := NewGateway(&fakeAPI{}, testTables).GetSelection(context.Background(), "u1", "c1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGateway_GetSelection(t *testing.T) {
	api := &fakeAPI{getItem: mustMarshal(t, domain.Selection{UserID: "u1", CompanyID: "c1", Status: domain.StatusEntry, UpdatedAt: testNow})}
	sel, err := NewGateway(api, testTables).GetSelection(context.Background(), "u1", "c1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusEntry, sel.Status)
	assert.Equal(t, testNow, sel.UpdatedAt)
}

func TestGateway_QueryErrorPropagates(t *testing.T) {
	boom := errors.New("throttled")
	_, err := NewGateway(&fakeAPI{err: boom}, testTables).ListDeadlineEvents(context.Background(), testNow, testNow.Add(time.Hour))
	assert.ErrorIs(t, err, boom)
}

func TestGateway_PutEvent_StoresUnixStartTime(t *testing.T) {
	api := &fakeAPI{}
	err := NewGateway(api, testTables).PutEvent(context.Background(), &domain.Event{EventID: "e1", Type: domain.EventDeadline, StartTime: testNow})
	require.NoError(t, err)
	require.Len(t, api.puts, 1)
	assert.Equal(t, "events", *api.puts[0].TableName)
	assert.Equal(t, "1792141200", numValue(t, api.puts[0].Item["start_time"]))
	_, hasCompany := api.puts[0].Item["company_id"]
	assert.False(t, hasCompany, "empty company id is omitted so the GSI stays sparse")
}
