// Package cards renders order state into Adaptive Card documents. Rendering
// is a pure mapping; each workflow step produces a fresh card.
package cards

import (
	"fmt"
	"strings"

	"pizza-agent/internal/domain"
)

// ContentType is the attachment content type consumed by Adaptive Card
// renderers.
const ContentType = "application/vnd.microsoft.card.adaptive"

const (
	schemaURL   = "http://adaptivecards.io/schemas/adaptive-card.json"
	cardVersion = "1.4"
)

// Discriminator values carried by the card's submit actions and consumed by
// the card-action handler.
const (
	ActionConfirm = "confirm"
	ActionEdit    = "edit"
	ActionCancel  = "cancel"
)

// Card is an Adaptive Card document.
type Card struct {
	Schema  string      `json:"$schema"`
	Type    string      `json:"type"`
	Version string      `json:"version"`
	Body    []TextBlock `json:"body"`
	Actions []Action    `json:"actions,omitempty"`
}

// TextBlock is one display block in a card body.
type TextBlock struct {
	Type   string `json:"type"`
	Text   string `json:"text"`
	Weight string `json:"weight,omitempty"`
	Size   string `json:"size,omitempty"`
	Wrap   bool   `json:"wrap,omitempty"`
}

// Action is a submit button carrying an action discriminator.
type Action struct {
	Type  string            `json:"type"`
	Title string            `json:"title"`
	Data  map[string]string `json:"data"`
}

// Render builds the order summary card. Pizzas are numbered 1-based in
// insertion order; customer lines render blank while unset.
func Render(order domain.Order) Card {
	lines := make([]string, 0, len(order.Pizzas))
	for i, p := range order.Pizzas {
		lines = append(lines, pizzaLine(i+1, p))
	}
	summary := strings.Join(lines, "\n")
	if summary == "" {
		summary = "No pizzas added yet."
	}

	return Card{
		Schema:  schemaURL,
		Type:    "AdaptiveCard",
		Version: cardVersion,
		Body: []TextBlock{
			{Type: "TextBlock", Text: "Order Summary", Weight: "Bolder", Size: "Large"},
			{Type: "TextBlock", Text: summary, Wrap: true},
			{Type: "TextBlock", Text: labelled("Name", order.Name), Wrap: true},
			{Type: "TextBlock", Text: labelled("Address", order.Address), Wrap: true},
			{Type: "TextBlock", Text: labelled("Payment", order.Payment), Wrap: true},
		},
		Actions: []Action{
			submitAction("Confirm", ActionConfirm),
			submitAction("Edit", ActionEdit),
			submitAction("Cancel", ActionCancel),
		},
	}
}

func pizzaLine(n int, p domain.Pizza) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d. %s %s", n, p.Size, p.Type)
	if p.Crust != "" {
		fmt.Fprintf(&b, " (%s)", p.Crust)
	}
	if len(p.Toppings) > 0 {
		fmt.Fprintf(&b, " with %s", strings.Join(p.Toppings, ", "))
	}
	return b.String()
}

func labelled(label, value string) string {
	if value == "" {
		return ""
	}
	return label + ": " + value
}

func submitAction(title, action string) Action {
	return Action{
		Type:  "Action.Submit",
		Title: title,
		Data:  map[string]string{"action": action},
	}
}
