package bookings

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// PhoneIndex is the GSI keyed by phone and sorted by created_at.
const PhoneIndex = "phone-created_at-index"

type dynamoAPI interface {
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(context.Context, *dynamodb.QueryInput, ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	UpdateItem(context.Context, *dynamodb.UpdateItemInput, ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Scan(context.Context, *dynamodb.ScanInput, ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// dynamoRecord stores timestamps as RFC3339 strings so the GSI sort key orders lexically.
type dynamoRecord struct {
	ID          string `dynamodbav:"id"`
	Name        string `dynamodbav:"name"`
	Phone       string `dynamodbav:"phone"`
	Service     string `dynamodbav:"service"`
	Appointment string `dynamodbav:"appointment"`
	Status      Status `dynamodbav:"status"`
	CreatedAt   string `dynamodbav:"created_at"`
	CanceledAt  string `dynamodbav:"canceled_at,omitempty"`
}

func (r dynamoRecord) booking() (*Booking, error) {
	created, err := time.Parse(time.RFC3339Nano, r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("bookings: bad created_at %q: %w", r.CreatedAt, err)
	}
	b := &Booking{
		ID:          r.ID,
		Name:        r.Name,
		Phone:       r.Phone,
		Service:     r.Service,
		Appointment: r.Appointment,
		Status:      r.Status,
		CreatedAt:   created,
	}
	if r.CanceledAt != "" {
		if canceled, err := time.Parse(time.RFC3339Nano, r.CanceledAt); err == nil {
			b.CanceledAt = &canceled
		}
	}
	return b, nil
}

// DynamoStore keeps bookings in a DynamoDB table for serverless deployments.
type DynamoStore struct {
	client    dynamoAPI
	tableName string
	now       func() time.Time
}

// NewDynamoStore builds a store backed by the provided DynamoDB client.
func NewDynamoStore(client dynamoAPI, tableName string) *DynamoStore {
	if client == nil {
		panic("bookings: dynamodb client cannot be nil")
	}
	if tableName == "" {
		panic("bookings: table name cannot be empty")
	}
	return &DynamoStore{client: client, tableName: tableName, now: time.Now}
}

func (s *DynamoStore) Insert(ctx context.Context, req NewBooking) (*Booking, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	rec := dynamoRecord{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Phone:       req.Phone,
		Service:     req.Service,
		Appointment: req.Appointment,
		Status:      StatusNew,
		CreatedAt:   s.now().UTC().Format(time.RFC3339Nano),
	}
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return nil, fmt.Errorf("bookings: failed to marshal booking: %w", err)
	}
	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	}); err != nil {
		return nil, fmt.Errorf("bookings: failed to persist booking: %w", err)
	}
	return rec.booking()
}

func (s *DynamoStore) FindActiveByPhone(ctx context.Context, phone string) (*Booking, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		IndexName:              aws.String(PhoneIndex),
		KeyConditionExpression: aws.String("phone = :phone"),
		FilterExpression:       aws.String("#status = :new"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":phone": &types.AttributeValueMemberS{Value: phone},
			":new":   &types.AttributeValueMemberS{Value: string(StatusNew)},
		},
		ScanIndexForward: aws.Bool(false),
	}
	for {
		out, err := s.client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("bookings: query by phone failed: %w", err)
		}
		if len(out.Items) > 0 {
			var rec dynamoRecord
			if err := attributevalue.UnmarshalMap(out.Items[0], &rec); err != nil {
				return nil, fmt.Errorf("bookings: failed to decode booking: %w", err)
			}
			return rec.booking()
		}
		if len(out.LastEvaluatedKey) == 0 {
			return nil, ErrNotFound
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

func (s *DynamoStore) Cancel(ctx context.Context, id string) (*Booking, error) {
	out, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		UpdateExpression:    aws.String("SET #status = :canceled, canceled_at = :now"),
		ConditionExpression: aws.String("attribute_exists(id) AND #status = :new"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":canceled": &types.AttributeValueMemberS{Value: string(StatusCanceled)},
			":new":      &types.AttributeValueMemberS{Value: string(StatusNew)},
			":now":      &types.AttributeValueMemberS{Value: s.now().UTC().Format(time.RFC3339Nano)},
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("bookings: cancel failed: %w", err)
	}
	var rec dynamoRecord
	if err := attributevalue.UnmarshalMap(out.Attributes, &rec); err != nil {
		return nil, fmt.Errorf("bookings: failed to decode booking: %w", err)
	}
	return rec.booking()
}

// List scans the table; it is meant for the small admin view, not for hot paths.
func (s *DynamoStore) List(ctx context.Context, limit int) ([]Booking, error) {
	limit = clampLimit(limit)
	input := &dynamodb.ScanInput{TableName: aws.String(s.tableName)}
	var out []Booking
	for {
		page, err := s.client.Scan(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("bookings: scan failed: %w", err)
		}
		var recs []dynamoRecord
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &recs); err != nil {
			return nil, fmt.Errorf("bookings: failed to decode bookings: %w", err)
		}
		for _, rec := range recs {
			b, err := rec.booking()
			if err != nil {
				return nil, err
			}
			out = append(out, *b)
		}
		if len(page.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = page.LastEvaluatedKey
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
