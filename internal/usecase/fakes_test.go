package usecase

import (
	"context"

	"pizza-agent/internal/cards"
	"pizza-agent/internal/domain"
	"pizza-agent/internal/store"
)

// fakeStream records emitted increments in order.
type fakeStream struct {
	texts   []string
	cards   []cards.Card
	order   []string // "text" / "card" interleaving
	emitErr error
}

func (f *fakeStream) EmitText(_ context.Context, text string) error {
	if f.emitErr != nil {
		return f.emitErr
	}
	f.texts = append(f.texts, text)
	f.order = append(f.order, "text")
	return nil
}

func (f *fakeStream) EmitCard(_ context.Context, card cards.Card) error {
	if f.emitErr != nil {
		return f.emitErr
	}
	f.cards = append(f.cards, card)
	f.order = append(f.order, "card")
	return nil
}

// scriptedLLM plays back one scripted event sequence per ChatStream call and
// captures what each call was given.
type scriptedLLM struct {
	turns     [][]domain.StreamEvent
	callCount int
	streamErr error

	capturedMessages [][]domain.ChatMessage
	capturedTools    [][]domain.Tool
}

func (s *scriptedLLM) ChatStream(_ context.Context, _ string, messages []domain.ChatMessage, tools []domain.Tool) (<-chan domain.StreamEvent, error) {
	if s.streamErr != nil {
		return nil, s.streamErr
	}
	s.capturedMessages = append(s.capturedMessages, messages)
	s.capturedTools = append(s.capturedTools, tools)

	idx := s.callCount
	if idx >= len(s.turns) {
		idx = len(s.turns) - 1
	}
	s.callCount++

	events := make(chan domain.StreamEvent, len(s.turns[idx]))
	for _, ev := range s.turns[idx] {
		events <- ev
	}
	close(events)
	return events, nil
}

// scriptedChatter plays back one assistant message per Chat call.
type scriptedChatter struct {
	replies   []domain.ChatMessage
	chatErr   error
	callCount int

	capturedTools [][]domain.Tool
}

func (s *scriptedChatter) Chat(_ context.Context, _ string, _ []domain.ChatMessage, tools []domain.Tool) (domain.ChatMessage, error) {
	if s.chatErr != nil {
		return domain.ChatMessage{}, s.chatErr
	}
	s.capturedTools = append(s.capturedTools, tools)

	idx := s.callCount
	if idx >= len(s.replies) {
		idx = len(s.replies) - 1
	}
	s.callCount++
	return s.replies[idx], nil
}

// funcLLM delegates ChatStream to a closure, for producer-side tests.
type funcLLM struct {
	fn func(ctx context.Context) <-chan domain.StreamEvent
}

func (f *funcLLM) ChatStream(ctx context.Context, _ string, _ []domain.ChatMessage, _ []domain.Tool) (<-chan domain.StreamEvent, error) {
	return f.fn(ctx), nil
}

func finalEvent(msg domain.ChatMessage) domain.StreamEvent {
	return domain.StreamEvent{Message: msg, Done: true}
}

func assistantTurn(deltas []string, toolCalls ...domain.ToolCall) []domain.StreamEvent {
	var events []domain.StreamEvent
	content := ""
	for _, d := range deltas {
		events = append(events, domain.StreamEvent{ContentDelta: d})
		content += d
	}
	return append(events, finalEvent(domain.ChatMessage{
		Role:      domain.RoleAssistant,
		Content:   content,
		ToolCalls: toolCalls,
	}))
}

// failStore wraps a real store with injectable failures.
type failStore struct {
	store.Store
	messagesErr     error
	saveMessagesErr error
	orderErr        error
	saveOrderErr    error
	guidedErr       error
	saveGuidedErr   error
}

func (f *failStore) Messages(ctx context.Context, key domain.Key) ([]domain.ChatMessage, error) {
	if f.messagesErr != nil {
		return nil, f.messagesErr
	}
	return f.Store.Messages(ctx, key)
}

func (f *failStore) SaveMessages(ctx context.Context, key domain.Key, msgs []domain.ChatMessage) error {
	if f.saveMessagesErr != nil {
		return f.saveMessagesErr
	}
	return f.Store.SaveMessages(ctx, key, msgs)
}

func (f *failStore) Order(ctx context.Context, key domain.Key) (domain.Order, error) {
	if f.orderErr != nil {
		return domain.Order{}, f.orderErr
	}
	return f.Store.Order(ctx, key)
}

func (f *failStore) SaveOrder(ctx context.Context, key domain.Key, order domain.Order) error {
	if f.saveOrderErr != nil {
		return f.saveOrderErr
	}
	return f.Store.SaveOrder(ctx, key, order)
}

func (f *failStore) Guided(ctx context.Context, key domain.Key) (domain.GuidedOrderState, error) {
	if f.guidedErr != nil {
		return domain.GuidedOrderState{}, f.guidedErr
	}
	return f.Store.Guided(ctx, key)
}

func (f *failStore) SaveGuided(ctx context.Context, key domain.Key, state domain.GuidedOrderState) error {
	if f.saveGuidedErr != nil {
		return f.saveGuidedErr
	}
	return f.Store.SaveGuided(ctx, key, state)
}
