// Package store persists per-conversation state: the message history, the
// in-progress order and the transient guided-flow state. Handlers depend on
// the Store interface so the backing can be swapped (in-memory for local
// runs and tests, DynamoDB when deployed).
package store

import (
	"context"
	"errors"

	"pizza-agent/internal/domain"
)

// ErrNotFound is returned when no value is stored for a key.
var ErrNotFound = errors.New("store: not found")

// Store is the conversation-state capability consumed by the usecase layer.
// Message histories are replaced wholesale on save; orders and guided state
// hold at most one value per key.
type Store interface {
	Messages(ctx context.Context, key domain.Key) ([]domain.ChatMessage, error)
	SaveMessages(ctx context.Context, key domain.Key, msgs []domain.ChatMessage) error

	Order(ctx context.Context, key domain.Key) (domain.Order, error)
	SaveOrder(ctx context.Context, key domain.Key, order domain.Order) error
	DeleteOrder(ctx context.Context, key domain.Key) error

	Guided(ctx context.Context, key domain.Key) (domain.GuidedOrderState, error)
	SaveGuided(ctx context.Context, key domain.Key, state domain.GuidedOrderState) error
	DeleteGuided(ctx context.Context, key domain.Key) error
}
