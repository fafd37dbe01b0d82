package usecase

import (
	"context"

	"pizza-agent/internal/cards"
)

// Stream is the outbound reply channel for one inbound event. Implementations
// must deliver increments in the order they are emitted; they may forward
// each one immediately or collect them into a single reply payload.
type Stream interface {
	EmitText(ctx context.Context, text string) error
	EmitCard(ctx context.Context, card cards.Card) error
}
