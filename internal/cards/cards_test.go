package cards

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"pizza-agent/internal/domain"
)

func TestRender_EmptyOrder(t *testing.T) {
	card := Render(domain.Order{})

	require.Equal(t, "AdaptiveCard", card.Type)
	require.Equal(t, "http://adaptivecards.io/schemas/adaptive-card.json", card.Schema)
	require.Equal(t, "1.4", card.Version)
	require.Len(t, card.Body, 5)
	require.Equal(t, "Order Summary", card.Body[0].Text)
	require.Equal(t, "No pizzas added yet.", card.Body[1].Text)
	// customer lines render blank, never "undefined"
	require.Equal(t, "", card.Body[2].Text)
	require.Equal(t, "", card.Body[3].Text)
	require.Equal(t, "", card.Body[4].Text)
}

func TestRender_PizzaNumberingFollowsInsertionOrder(t *testing.T) {
	order := domain.Order{
		Pizzas: []domain.Pizza{
			{Type: "margherita", Size: "small"},
			{Type: "pepperoni", Size: "large", Crust: "thin"},
			{Type: "veggie", Size: "medium", Toppings: []string{"mushroom", "onion"}},
		},
	}

	card := Render(order)
	require.Equal(t,
		"1. small margherita\n2. large pepperoni (thin)\n3. medium veggie with mushroom, onion",
		card.Body[1].Text)

	// adding a pizza never reorders existing ones
	order.Pizzas = append(order.Pizzas, domain.Pizza{Type: "hawaiian", Size: "large"})
	card = Render(order)
	require.Equal(t,
		"1. small margherita\n2. large pepperoni (thin)\n3. medium veggie with mushroom, onion\n4. large hawaiian",
		card.Body[1].Text)
}

func TestRender_CheckoutDetails(t *testing.T) {
	card := Render(domain.Order{
		Pizzas:  []domain.Pizza{{Type: "pepperoni", Size: "large"}},
		Name:    "Alice",
		Address: "1 Main St",
		Payment: "card",
		Status:  domain.StatusPreparing,
	})

	require.Equal(t, "1. large pepperoni", card.Body[1].Text)
	require.Equal(t, "Name: Alice", card.Body[2].Text)
	require.Equal(t, "Address: 1 Main St", card.Body[3].Text)
	require.Equal(t, "Payment: card", card.Body[4].Text)
}

func TestRender_Actions(t *testing.T) {
	card := Render(domain.Order{})

	require.Len(t, card.Actions, 3)
	for _, a := range card.Actions {
		require.Equal(t, "Action.Submit", a.Type)
	}
	require.Equal(t, map[string]string{"action": "confirm"}, card.Actions[0].Data)
	require.Equal(t, map[string]string{"action": "edit"}, card.Actions[1].Data)
	require.Equal(t, map[string]string{"action": "cancel"}, card.Actions[2].Data)
}

func TestCard_JSONShape(t *testing.T) {
	raw, err := json.Marshal(Render(domain.Order{}))
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	require.Contains(t, doc, "$schema")
	require.Contains(t, doc, "version")
	require.Contains(t, doc, "body")
	require.Contains(t, doc, "actions")
}
