package store

import (
	"context"
	"slices"
	"sync"

	"pizza-agent/internal/domain"
)

// Memory is a process-lifetime Store backed by maps. Values are copied on
// the way in and out so callers never alias stored slices.
type Memory struct {
	mu       sync.RWMutex
	messages map[string][]domain.ChatMessage
	orders   map[string]domain.Order
	guided   map[string]domain.GuidedOrderState
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		messages: make(map[string][]domain.ChatMessage),
		orders:   make(map[string]domain.Order),
		guided:   make(map[string]domain.GuidedOrderState),
	}
}

func (m *Memory) Messages(_ context.Context, key domain.Key) ([]domain.ChatMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	msgs, ok := m.messages[key.String()]
	if !ok {
		return nil, ErrNotFound
	}
	return copyMessages(msgs), nil
}

func (m *Memory) SaveMessages(_ context.Context, key domain.Key, msgs []domain.ChatMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages[key.String()] = copyMessages(msgs)
	return nil
}

func (m *Memory) Order(_ context.Context, key domain.Key) (domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	order, ok := m.orders[key.String()]
	if !ok {
		return domain.Order{}, ErrNotFound
	}
	return copyOrder(order), nil
}

func (m *Memory) SaveOrder(_ context.Context, key domain.Key, order domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[key.String()] = copyOrder(order)
	return nil
}

func (m *Memory) DeleteOrder(_ context.Context, key domain.Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.orders, key.String())
	return nil
}

func (m *Memory) Guided(_ context.Context, key domain.Key) (domain.GuidedOrderState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, ok := m.guided[key.String()]
	if !ok {
		return domain.GuidedOrderState{}, ErrNotFound
	}
	return copyGuided(state), nil
}

func (m *Memory) SaveGuided(_ context.Context, key domain.Key, state domain.GuidedOrderState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.guided[key.String()] = copyGuided(state)
	return nil
}

func (m *Memory) DeleteGuided(_ context.Context, key domain.Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.guided, key.String())
	return nil
}

func copyMessages(msgs []domain.ChatMessage) []domain.ChatMessage {
	out := make([]domain.ChatMessage, len(msgs))
	copy(out, msgs)
	for i := range out {
		out[i].ToolCalls = slices.Clone(msgs[i].ToolCalls)
	}
	return out
}

func copyOrder(order domain.Order) domain.Order {
	out := order
	out.Pizzas = make([]domain.Pizza, len(order.Pizzas))
	copy(out.Pizzas, order.Pizzas)
	for i := range out.Pizzas {
		out.Pizzas[i].Toppings = slices.Clone(order.Pizzas[i].Toppings)
	}
	return out
}

func copyGuided(state domain.GuidedOrderState) domain.GuidedOrderState {
	out := state
	out.Toppings = slices.Clone(state.Toppings)
	return out
}
