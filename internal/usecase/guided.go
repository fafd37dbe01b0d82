package usecase

import (
	"context"
	"errors"
	"strings"

	"pizza-agent/internal/cards"
	"pizza-agent/internal/domain"
	"pizza-agent/internal/store"
)

const (
	guidedTrigger = "pizza"

	promptSize     = "What size pizza would you like?"
	promptToppings = "What toppings would you like? Separate them with commas."
	promptEscaped  = "No problem, I've cancelled that order."
)

// GuidedFlow is the fixed size-then-toppings ordering workflow. While a
// stage is stored for a key, every incoming message feeds the flow; the
// model never sees it.
type GuidedFlow struct {
	state store.Store
}

func NewGuidedFlow(state store.Store) (*GuidedFlow, error) {
	if state == nil {
		return nil, errors.New("usecase: state store must not be nil")
	}
	return &GuidedFlow{state: state}, nil
}

// Handle advances the flow for one message. It reports false only when no
// flow is active and the message does not start one.
func (g *GuidedFlow) Handle(ctx context.Context, key domain.Key, text string, stream Stream) (bool, error) {
	text = strings.TrimSpace(text)

	state, err := g.state.Guided(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		if !strings.Contains(strings.ToLower(text), guidedTrigger) {
			return false, nil
		}
		return true, g.start(ctx, key, stream)
	}
	if err != nil {
		return false, newError(ErrorInternal, "state_read_error", err)
	}

	if isEscape(text) {
		if err := g.state.DeleteGuided(ctx, key); err != nil {
			return false, newError(ErrorInternal, "state_write_error", err)
		}
		return true, emitText(ctx, stream, promptEscaped)
	}

	switch state.Stage {
	case domain.StageAwaitingSize:
		return true, g.recordSize(ctx, key, state, text, stream)
	case domain.StageAwaitingToppings:
		return true, g.finish(ctx, key, state, text, stream)
	default:
		// Unknown stage means the stored state is corrupt. Drop it and
		// let the model handle the message.
		if err := g.state.DeleteGuided(ctx, key); err != nil {
			return false, newError(ErrorInternal, "state_write_error", err)
		}
		return false, nil
	}
}

func (g *GuidedFlow) start(ctx context.Context, key domain.Key, stream Stream) error {
	state := domain.GuidedOrderState{Stage: domain.StageAwaitingSize}
	if err := g.state.SaveGuided(ctx, key, state); err != nil {
		return newError(ErrorInternal, "state_write_error", err)
	}
	return emitText(ctx, stream, promptSize)
}

func (g *GuidedFlow) recordSize(ctx context.Context, key domain.Key, state domain.GuidedOrderState, text string, stream Stream) error {
	state.Size = strings.ToLower(text)
	state.Stage = domain.StageAwaitingToppings
	if err := g.state.SaveGuided(ctx, key, state); err != nil {
		return newError(ErrorInternal, "state_write_error", err)
	}
	return emitText(ctx, stream, promptToppings)
}

func (g *GuidedFlow) finish(ctx context.Context, key domain.Key, state domain.GuidedOrderState, text string, stream Stream) error {
	order := domain.Order{
		Pizzas: []domain.Pizza{{
			Type:     "pizza",
			Size:     state.Size,
			Toppings: splitToppings(text),
		}},
	}
	if err := stream.EmitCard(ctx, cards.Render(order)); err != nil {
		return newError(ErrorInternal, "stream_emit_error", err)
	}
	if err := g.state.DeleteGuided(ctx, key); err != nil {
		return newError(ErrorInternal, "state_write_error", err)
	}
	return nil
}

// splitToppings splits comma-separated input, trimming whitespace and
// dropping empty entries.
func splitToppings(text string) []string {
	parts := strings.Split(text, ",")
	toppings := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			toppings = append(toppings, p)
		}
	}
	return toppings
}

func isEscape(text string) bool {
	switch strings.ToLower(text) {
	case "cancel", "never mind", "nevermind", "stop":
		return true
	}
	return false
}

func emitText(ctx context.Context, stream Stream, text string) error {
	if err := stream.EmitText(ctx, text); err != nil {
		return newError(ErrorInternal, "stream_emit_error", err)
	}
	return nil
}
