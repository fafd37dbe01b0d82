package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"pizza-agent/internal/domain"
)

const (
	skMessages = "MSG#"
	skOrder    = "ORDER#"
	skGuided   = "FLOW#"

	ttlDuration = 30 * 24 * time.Hour // conversations expire after 30 days
)

// dynamodbAPI is the minimal DynamoDB interface required by Dynamo.
// Defined here for testability.
type dynamodbAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// Dynamo stores conversation state in a single DynamoDB table. Each key owns
// three items (messages, order, guided state) under one partition; payloads
// are stored as JSON blobs so the table schema stays stable as the domain
// types evolve.
type Dynamo struct {
	api       dynamodbAPI
	tableName string
}

// NewDynamo creates a DynamoDB-backed Store.
func NewDynamo(api dynamodbAPI, tableName string) (*Dynamo, error) {
	if api == nil {
		return nil, errors.New("store: dynamodb api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("store: table name must not be empty")
	}
	return &Dynamo{api: api, tableName: tableName}, nil
}

func convPK(key domain.Key) string {
	return "CONV#" + key.String()
}

func ttlValue() int64 {
	return time.Now().Add(ttlDuration).Unix()
}

func (d *Dynamo) Messages(ctx context.Context, key domain.Key) ([]domain.ChatMessage, error) {
	var msgs []domain.ChatMessage
	if err := d.getPayload(ctx, key, skMessages, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (d *Dynamo) SaveMessages(ctx context.Context, key domain.Key, msgs []domain.ChatMessage) error {
	return d.putPayload(ctx, key, skMessages, msgs)
}

func (d *Dynamo) Order(ctx context.Context, key domain.Key) (domain.Order, error) {
	var order domain.Order
	if err := d.getPayload(ctx, key, skOrder, &order); err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

func (d *Dynamo) SaveOrder(ctx context.Context, key domain.Key, order domain.Order) error {
	return d.putPayload(ctx, key, skOrder, order)
}

func (d *Dynamo) DeleteOrder(ctx context.Context, key domain.Key) error {
	return d.deleteItem(ctx, key, skOrder)
}

func (d *Dynamo) Guided(ctx context.Context, key domain.Key) (domain.GuidedOrderState, error) {
	var state domain.GuidedOrderState
	if err := d.getPayload(ctx, key, skGuided, &state); err != nil {
		return domain.GuidedOrderState{}, err
	}
	return state, nil
}

func (d *Dynamo) SaveGuided(ctx context.Context, key domain.Key, state domain.GuidedOrderState) error {
	return d.putPayload(ctx, key, skGuided, state)
}

func (d *Dynamo) DeleteGuided(ctx context.Context, key domain.Key) error {
	return d.deleteItem(ctx, key, skGuided)
}

func (d *Dynamo) getPayload(ctx context.Context, key domain.Key, sk string, out any) error {
	res, err := d.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.tableName),
		Key:       itemKey(key, sk),
		// Handlers read-modify-write within one turn, so reads must see
		// the previous turn's write.
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("store: get %s%s: %w", sk, key, err)
	}
	if res == nil || len(res.Item) == 0 {
		return ErrNotFound
	}
	raw, ok := res.Item["payload"].(*types.AttributeValueMemberS)
	if !ok {
		return fmt.Errorf("store: item %s%s has no payload attribute", sk, key)
	}
	if err := json.Unmarshal([]byte(raw.Value), out); err != nil {
		return fmt.Errorf("store: decode %s%s: %w", sk, key, err)
	}
	return nil
}

func (d *Dynamo) putPayload(ctx context.Context, key domain.Key, sk string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("store: encode %s%s: %w", sk, key, err)
	}
	_, err = d.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.tableName),
		Item: map[string]types.AttributeValue{
			"PK":      &types.AttributeValueMemberS{Value: convPK(key)},
			"SK":      &types.AttributeValueMemberS{Value: sk},
			"payload": &types.AttributeValueMemberS{Value: string(payload)},
			"ttl":     &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", ttlValue())},
		},
	})
	if err != nil {
		return fmt.Errorf("store: put %s%s: %w", sk, key, err)
	}
	return nil
}

func (d *Dynamo) deleteItem(ctx context.Context, key domain.Key, sk string) error {
	_, err := d.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(d.tableName),
		Key:       itemKey(key, sk),
	})
	if err != nil {
		return fmt.Errorf("store: delete %s%s: %w", sk, key, err)
	}
	return nil
}

func itemKey(key domain.Key, sk string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: convPK(key)},
		"SK": &types.AttributeValueMemberS{Value: sk},
	}
}
