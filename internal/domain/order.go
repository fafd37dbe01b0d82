package domain

// OrderStatus tracks an order through checkout and fulfilment. The status
// only moves forward: none -> preparing -> baking. Cancellation deletes the
// order rather than marking it.
type OrderStatus string

const (
	StatusNone      OrderStatus = ""
	StatusPreparing OrderStatus = "preparing"
	StatusBaking    OrderStatus = "baking"
)

// Pizza is one line item on an order. Immutable once appended.
type Pizza struct {
	Type     string   `json:"type"`
	Size     string   `json:"size"`
	Crust    string   `json:"crust,omitempty"`
	Toppings []string `json:"toppings,omitempty"`
}

// Order is the in-progress order for one conversation key. Pizzas keep
// insertion order; checkout fills in the customer fields and sets the
// status to preparing.
type Order struct {
	Pizzas  []Pizza     `json:"pizzas"`
	Name    string      `json:"name,omitempty"`
	Address string      `json:"address,omitempty"`
	Payment string      `json:"payment,omitempty"`
	Status  OrderStatus `json:"status,omitempty"`
}

// GuidedStage identifies the next input the guided ordering flow expects.
type GuidedStage string

const (
	StageAwaitingSize     GuidedStage = "awaiting_size"
	StageAwaitingToppings GuidedStage = "awaiting_toppings"
)

// GuidedOrderState is the transient state of the fixed size-then-toppings
// ordering flow. It exists only between the trigger word and the summary
// card; while set, incoming text feeds the flow instead of the model.
type GuidedOrderState struct {
	Stage    GuidedStage `json:"stage"`
	Size     string      `json:"size,omitempty"`
	Toppings []string    `json:"toppings,omitempty"`
}
