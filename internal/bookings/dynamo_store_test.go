package bookings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type mockDynamo struct {
	putInput     *dynamodb.PutItemInput
	putErr       error
	queryInputs  []*dynamodb.QueryInput
	queryOutputs []*dynamodb.QueryOutput
	updateInput  *dynamodb.UpdateItemInput
	updateOutput *dynamodb.UpdateItemOutput
	updateErr    error
	scanOutput   *dynamodb.ScanOutput
}

func (m *mockDynamo) PutItem(_ context.Context, input *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	m.putInput = input
	return &dynamodb.PutItemOutput{}, m.putErr
}

func (m *mockDynamo) Query(_ context.Context, input *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	copied := *input
	m.queryInputs = append(m.queryInputs, &copied)
	if len(m.queryOutputs) == 0 {
		return &dynamodb.QueryOutput{}, nil
	}
	out := m.queryOutputs[0]
	m.queryOutputs = m.queryOutputs[1:]
	return out, nil
}

func (m *mockDynamo) UpdateItem(_ context.Context, input *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	m.updateInput = input
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	return m.updateOutput, nil
}

func (m *mockDynamo) Scan(context.Context, *dynamodb.ScanInput, ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	if m.scanOutput == nil {
		return &dynamodb.ScanOutput{}, nil
	}
	return m.scanOutput, nil
}

func mustMarshal(t *testing.T, rec dynamoRecord) map[string]types.AttributeValue {
	t.Helper()
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return item
}

func TestDynamoStoreInsert(t *testing.T) {
	mock := &mockDynamo{}
	store := NewDynamoStore(mock, "clinic_bookings")
	store.now = func() time.Time { return time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC) }

	b, err := store.Insert(context.Background(), NewBooking{Name: "Sara", Phone: "0790000000", Service: "Whitening", Appointment: "2025-06-01 6 PM"})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if mock.putInput == nil {
		t.Fatalf("expected PutItem to be called")
	}
	var stored dynamoRecord
	if err := attributevalue.UnmarshalMap(mock.putInput.Item, &stored); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if stored.ID != b.ID || stored.Status != StatusNew || stored.CreatedAt != "2025-06-01T09:00:00Z" {
		t.Fatalf("unexpected stored record %+v", stored)
	}
	if expr := mock.putInput.ConditionExpression; expr == nil || *expr != "attribute_not_exists(id)" {
		t.Fatalf("expected overwrite protection, got %v", expr)
	}
}

func TestDynamoStoreFindActiveByPhonePaginates(t *testing.T) {
	rec := dynamoRecord{ID: "b-1", Name: "Sara", Phone: "0790000000", Service: "Whitening", Appointment: "2025-06-01 6 PM", Status: StatusNew, CreatedAt: "2025-06-01T09:00:00Z"}
	mock := &mockDynamo{queryOutputs: []*dynamodb.QueryOutput{
		{LastEvaluatedKey: map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: "old"}}},
		{Items: []map[string]types.AttributeValue{mustMarshal(t, rec)}},
	}}
	store := NewDynamoStore(mock, "clinic_bookings")

	b, err := store.FindActiveByPhone(context.Background(), "0790000000")
	if err != nil {
		t.Fatalf("FindActiveByPhone: %v", err)
	}
	if b.ID != "b-1" {
		t.Fatalf("unexpected booking %+v", b)
	}
	if len(mock.queryInputs) != 2 {
		t.Fatalf("expected two pages, got %d", len(mock.queryInputs))
	}
	first := mock.queryInputs[0]
	if first.IndexName == nil || *first.IndexName != PhoneIndex {
		t.Fatalf("expected phone index, got %v", first.IndexName)
	}
	if first.ScanIndexForward == nil || *first.ScanIndexForward {
		t.Fatalf("expected newest-first query")
	}
	if mock.queryInputs[1].ExclusiveStartKey == nil {
		t.Fatalf("expected second page to continue from last key")
	}
}

func TestDynamoStoreFindActiveByPhoneNotFound(t *testing.T) {
	store := NewDynamoStore(&mockDynamo{}, "clinic_bookings")
	if _, err := store.FindActiveByPhone(context.Background(), "0790000000"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDynamoStoreCancel(t *testing.T) {
	rec := dynamoRecord{ID: "b-1", Name: "Sara", Phone: "0790000000", Service: "Whitening", Appointment: "2025-06-01 6 PM", Status: StatusCanceled, CreatedAt: "2025-06-01T09:00:00Z", CanceledAt: "2025-06-01T10:00:00Z"}
	mock := &mockDynamo{updateOutput: &dynamodb.UpdateItemOutput{Attributes: mustMarshal(t, rec)}}
	store := NewDynamoStore(mock, "clinic_bookings")

	b, err := store.Cancel(context.Background(), "b-1")
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if b.Status != StatusCanceled || b.CanceledAt == nil {
		t.Fatalf("unexpected booking %+v", b)
	}
	if cond := mock.updateInput.ConditionExpression; cond == nil || *cond != "attribute_exists(id) AND #status = :new" {
		t.Fatalf("expected conditional update, got %v", cond)
	}

	mock.updateErr = &types.ConditionalCheckFailedException{}
	if _, err := store.Cancel(context.Background(), "b-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on failed condition, got %v", err)
	}
}

func TestDynamoStoreListSortsNewestFirst(t *testing.T) {
	mock := &mockDynamo{scanOutput: &dynamodb.ScanOutput{Items: []map[string]types.AttributeValue{
		mustMarshal(t, dynamoRecord{ID: "old", Status: StatusNew, CreatedAt: "2025-06-01T09:00:00Z"}),
		mustMarshal(t, dynamoRecord{ID: "new", Status: StatusNew, CreatedAt: "2025-06-02T09:00:00Z"}),
	}}}
	store := NewDynamoStore(mock, "clinic_bookings")

	out, err := store.List(context.Background(), 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(out) != 2 || out[0].ID != "new" {
		t.Fatalf("unexpected order %+v", out)
	}
}
