package store

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"

	"pizza-agent/internal/domain"
)

// fakeDynamo is an in-memory dynamodbAPI keyed by PK|SK.
type fakeDynamo struct {
	items  map[string]map[string]types.AttributeValue
	getErr error
	putErr error
	delErr error
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{items: map[string]map[string]types.AttributeValue{}}
}

func itemID(key map[string]types.AttributeValue) string {
	pk := key["PK"].(*types.AttributeValueMemberS).Value
	sk := key["SK"].(*types.AttributeValueMemberS).Value
	return pk + "|" + sk
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &dynamodb.GetItemOutput{Item: f.items[itemID(in.Key)]}, nil
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	f.items[itemID(in.Item)] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	if f.delErr != nil {
		return nil, f.delErr
	}
	delete(f.items, itemID(in.Key))
	return &dynamodb.DeleteItemOutput{}, nil
}

func newTestDynamo(t *testing.T, api dynamodbAPI) *Dynamo {
	t.Helper()
	d, err := NewDynamo(api, "conversations")
	require.NoError(t, err)
	return d
}

func TestNewDynamo_Validation(t *testing.T) {
	_, err := NewDynamo(nil, "conversations")
	require.Error(t, err)

	_, err = NewDynamo(newFakeDynamo(), " ")
	require.Error(t, err)
}

func TestDynamo_OrderRoundTrip(t *testing.T) {
	d := newTestDynamo(t, newFakeDynamo())
	ctx := context.Background()

	_, err := d.Order(ctx, testKey)
	require.ErrorIs(t, err, ErrNotFound)

	order := domain.Order{
		Pizzas:  []domain.Pizza{{Type: "pepperoni", Size: "large", Toppings: []string{"extra cheese"}}},
		Name:    "Alice",
		Status:  domain.StatusPreparing,
		Payment: "card",
	}
	require.NoError(t, d.SaveOrder(ctx, testKey, order))

	got, err := d.Order(ctx, testKey)
	require.NoError(t, err)
	require.Equal(t, order, got)

	require.NoError(t, d.DeleteOrder(ctx, testKey))
	_, err = d.Order(ctx, testKey)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDynamo_MessagesReplacedWholesale(t *testing.T) {
	d := newTestDynamo(t, newFakeDynamo())
	ctx := context.Background()

	first := []domain.ChatMessage{{Role: domain.RoleUser, Content: "hi"}}
	require.NoError(t, d.SaveMessages(ctx, testKey, first))

	second := []domain.ChatMessage{
		{Role: domain.RoleUser, Content: "hi"},
		{Role: domain.RoleAssistant, Content: "hello", ToolCalls: []domain.ToolCall{{ID: "call-1", Name: "viewOrder", Arguments: "{}"}}},
		{Role: domain.RoleTool, Content: `{"pizzas":[]}`, ToolCallID: "call-1"},
	}
	require.NoError(t, d.SaveMessages(ctx, testKey, second))

	got, err := d.Messages(ctx, testKey)
	require.NoError(t, err)
	require.Equal(t, second, got)
}

func TestDynamo_GuidedRoundTrip(t *testing.T) {
	d := newTestDynamo(t, newFakeDynamo())
	ctx := context.Background()

	state := domain.GuidedOrderState{Stage: domain.StageAwaitingToppings, Size: "large"}
	require.NoError(t, d.SaveGuided(ctx, testKey, state))

	got, err := d.Guided(ctx, testKey)
	require.NoError(t, err)
	require.Equal(t, state, got)
}

func TestDynamo_ItemsShareOnePartition(t *testing.T) {
	api := newFakeDynamo()
	d := newTestDynamo(t, api)
	ctx := context.Background()

	require.NoError(t, d.SaveMessages(ctx, testKey, []domain.ChatMessage{{Role: domain.RoleUser, Content: "hi"}}))
	require.NoError(t, d.SaveOrder(ctx, testKey, domain.Order{}))
	require.NoError(t, d.SaveGuided(ctx, testKey, domain.GuidedOrderState{Stage: domain.StageAwaitingSize}))

	require.Contains(t, api.items, "CONV#conv-1/user-1|MSG#")
	require.Contains(t, api.items, "CONV#conv-1/user-1|ORDER#")
	require.Contains(t, api.items, "CONV#conv-1/user-1|FLOW#")
}

func TestDynamo_APIErrorsAreWrapped(t *testing.T) {
	api := newFakeDynamo()
	api.getErr = errors.New("throttled")
	d := newTestDynamo(t, api)

	_, err := d.Order(context.Background(), testKey)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNotFound)
	require.Contains(t, err.Error(), "throttled")
}
