package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"

	"pizza-agent/internal/cards"
	"pizza-agent/internal/domain"
)

// Argument structs for the order-management tools. The JSON Schema offered
// to the model is reflected from these, so the tags are the single source of
// truth for both decoding and the advertised contract.

type addPizzaArgs struct {
	Type     string   `json:"type" jsonschema_description:"pizza type"`
	Size     string   `json:"size" jsonschema_description:"pizza size"`
	Crust    string   `json:"crust,omitempty" jsonschema_description:"crust type"`
	Toppings []string `json:"toppings,omitempty" jsonschema_description:"toppings"`
}

type checkoutArgs struct {
	Name    string `json:"name" jsonschema_description:"customer name"`
	Address string `json:"address,omitempty" jsonschema_description:"delivery address"`
	Payment string `json:"payment,omitempty" jsonschema_description:"payment method"`
}

type emptyArgs struct{}

const toolAck = `{"ok":true}`

// orderToolset binds the order-management operations to the order being
// mutated during one turn. Checkout emits the summary card through the
// turn's outbound stream.
type orderToolset struct {
	order  *domain.Order
	stream Stream
}

func newOrderToolset(order *domain.Order, stream Stream) *orderToolset {
	return &orderToolset{order: order, stream: stream}
}

func (ts *orderToolset) defs() []domain.Tool {
	return []domain.Tool{
		{Name: "addPizza", Description: "Add a pizza to the order", Parameters: toolSchema(&addPizzaArgs{})},
		{Name: "viewOrder", Description: "View the order", Parameters: toolSchema(&emptyArgs{})},
		{Name: "checkout", Description: "Provide checkout information", Parameters: toolSchema(&checkoutArgs{})},
		{Name: "trackOrder", Description: "Get order status", Parameters: toolSchema(&emptyArgs{})},
	}
}

// execute dispatches one tool call and returns the tool-result content for
// the model. Validation failures become error results so the turn continues
// with whatever state is still valid.
func (ts *orderToolset) execute(ctx context.Context, call domain.ToolCall) string {
	result, err := ts.dispatch(ctx, call)
	if err != nil {
		return "error: " + err.Error()
	}
	return result
}

func (ts *orderToolset) dispatch(ctx context.Context, call domain.ToolCall) (string, error) {
	switch call.Name {
	case "addPizza":
		var args addPizzaArgs
		if err := decodeArgs(call.Arguments, &args); err != nil {
			return "", err
		}
		return ts.addPizza(args)
	case "viewOrder":
		return ts.viewOrder()
	case "checkout":
		var args checkoutArgs
		if err := decodeArgs(call.Arguments, &args); err != nil {
			return "", err
		}
		return ts.checkout(ctx, args)
	case "trackOrder":
		return ts.trackOrder()
	default:
		return "", newError(ErrorValidation, "unknown_tool", fmt.Errorf("no tool named %q", call.Name))
	}
}

func (ts *orderToolset) addPizza(args addPizzaArgs) (string, error) {
	if strings.TrimSpace(args.Type) == "" || strings.TrimSpace(args.Size) == "" {
		return "", newError(ErrorValidation, "add_pizza_missing_fields", nil)
	}
	toppings := args.Toppings
	if toppings == nil {
		toppings = []string{}
	}
	ts.order.Pizzas = append(ts.order.Pizzas, domain.Pizza{
		Type:     args.Type,
		Size:     args.Size,
		Crust:    args.Crust,
		Toppings: toppings,
	})
	return toolAck, nil
}

func (ts *orderToolset) viewOrder() (string, error) {
	snapshot, err := json.Marshal(ts.order)
	if err != nil {
		return "", newError(ErrorInternal, "view_order_encode", err)
	}
	return string(snapshot), nil
}

func (ts *orderToolset) checkout(ctx context.Context, args checkoutArgs) (string, error) {
	if strings.TrimSpace(args.Name) == "" {
		return "", newError(ErrorValidation, "checkout_missing_name", nil)
	}
	ts.order.Name = args.Name
	ts.order.Address = args.Address
	ts.order.Payment = args.Payment
	ts.order.Status = domain.StatusPreparing

	if err := ts.stream.EmitCard(ctx, cards.Render(*ts.order)); err != nil {
		return "", newError(ErrorInternal, "checkout_emit_card", err)
	}
	return toolAck, nil
}

func (ts *orderToolset) trackOrder() (string, error) {
	if ts.order.Status == domain.StatusNone {
		return "no order", nil
	}
	return string(ts.order.Status), nil
}

func decodeArgs(raw string, out any) error {
	if strings.TrimSpace(raw) == "" {
		raw = "{}"
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return newError(ErrorValidation, "malformed_tool_arguments", err)
	}
	return nil
}

// toolSchema reflects a JSON Schema from an argument struct. Fields without
// omitempty are marked required, which is how the model learns the mandatory
// parameters.
func toolSchema(v any) *jsonschema.Schema {
	r := &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
	schema := r.Reflect(v)
	schema.Version = ""
	return schema
}
