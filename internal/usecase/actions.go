package usecase

import (
	"context"
	"errors"

	"pizza-agent/internal/cards"
	"pizza-agent/internal/domain"
	"pizza-agent/internal/store"
)

// Replies emitted for card actions.
const (
	replyNoOrder   = "No active order."
	replyConfirmed = "Your order has been placed!"
	replyCancelled = "Your order was cancelled."
	replyEditing   = "You can continue editing your order."
)

// CardActions handles button presses from a previously rendered order card.
type CardActions struct {
	state store.Store
}

func NewCardActions(state store.Store) (*CardActions, error) {
	if state == nil {
		return nil, errors.New("usecase: state store must not be nil")
	}
	return &CardActions{state: state}, nil
}

// HandleAction applies one card action for the key and returns a short
// status value for the transport. Unrecognized actions degrade to an edit
// acknowledgement; the order is re-persisted unchanged.
func (c *CardActions) HandleAction(ctx context.Context, key domain.Key, action string, stream Stream) (string, error) {
	order, err := c.state.Order(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return "No active order", emitText(ctx, stream, replyNoOrder)
	}
	if err != nil {
		return "", newError(ErrorInternal, "state_read_error", err)
	}

	switch action {
	case cards.ActionConfirm:
		order.Status = domain.StatusBaking
		if err := c.state.SaveOrder(ctx, key, order); err != nil {
			return "", newError(ErrorInternal, "state_write_error", err)
		}
		return "Order confirmed", emitText(ctx, stream, replyConfirmed)
	case cards.ActionCancel:
		if err := c.state.DeleteOrder(ctx, key); err != nil {
			return "", newError(ErrorInternal, "state_write_error", err)
		}
		return "Order cancelled", emitText(ctx, stream, replyCancelled)
	default:
		if err := c.state.SaveOrder(ctx, key, order); err != nil {
			return "", newError(ErrorInternal, "state_write_error", err)
		}
		return "Edit order", emitText(ctx, stream, replyEditing)
	}
}
