package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"pizza-agent/internal/domain"
	"pizza-agent/internal/store"
)

const (
	defaultInstructions = "You are a pizza ordering assistant. Use the provided functions to manage the order and keep responses short."

	// The model can answer, call tools, see the results and answer again.
	// Five rounds is generous for a four-tool order flow; the cap only
	// guards against a model that keeps calling tools forever.
	defaultMaxToolRounds = 5

	defaultTurnTimeout = 90 * time.Second
)

// LLMStreamer runs one model turn and yields output increments as they are
// generated.
type LLMStreamer interface {
	ChatStream(ctx context.Context, model string, messages []domain.ChatMessage, tools []domain.Tool) (<-chan domain.StreamEvent, error)
}

// LLMChatter runs one blocking model turn and returns the full assistant
// message at once.
type LLMChatter interface {
	Chat(ctx context.Context, model string, messages []domain.ChatMessage, tools []domain.Tool) (domain.ChatMessage, error)
}

// Workflow consumes a user turn before the model sees it. Handle reports
// whether the turn was consumed; unconsumed turns fall through to the model.
type Workflow interface {
	Handle(ctx context.Context, key domain.Key, text string, stream Stream) (bool, error)
}

type httpStatusCoder interface {
	HTTPStatusCode() int
}

// Assistant orchestrates one inbound message: it loads the conversation and
// order for the key, lets an active workflow consume the turn, and otherwise
// runs a streamed model turn with the order tools registered. State is
// persisted only after the turn succeeds, so a failed model call leaves the
// key exactly as the previous turn left it.
type Assistant struct {
	llm           LLMStreamer
	blockingLLM   LLMChatter
	state         store.Store
	model         string
	instructions  string
	workflow      Workflow
	maxToolRounds int
	turnTimeout   time.Duration
}

type AssistantOption func(*Assistant)

// WithWorkflow installs a pre-model workflow (the guided ordering flow).
// While a workflow is installed the order tools are not offered to the
// model; the workflow owns the ordering policy.
func WithWorkflow(w Workflow) AssistantOption {
	return func(a *Assistant) { a.workflow = w }
}

// WithBlockingModel switches model calls to the blocking endpoint: each
// reply segment is emitted as a single increment instead of streamed deltas.
// For channels that cannot deliver partial replies.
func WithBlockingModel(llm LLMChatter) AssistantOption {
	return func(a *Assistant) { a.blockingLLM = llm }
}

func WithInstructions(instructions string) AssistantOption {
	return func(a *Assistant) { a.instructions = instructions }
}

func WithTurnTimeout(d time.Duration) AssistantOption {
	return func(a *Assistant) { a.turnTimeout = d }
}

func WithMaxToolRounds(n int) AssistantOption {
	return func(a *Assistant) { a.maxToolRounds = n }
}

func NewAssistant(llm LLMStreamer, state store.Store, model string, opts ...AssistantOption) (*Assistant, error) {
	if llm == nil {
		return nil, errors.New("usecase: llm client must not be nil")
	}
	if state == nil {
		return nil, errors.New("usecase: state store must not be nil")
	}
	if strings.TrimSpace(model) == "" {
		return nil, errors.New("usecase: model must not be empty")
	}
	a := &Assistant{
		llm:           llm,
		state:         state,
		model:         model,
		instructions:  defaultInstructions,
		maxToolRounds: defaultMaxToolRounds,
		turnTimeout:   defaultTurnTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// HandleMessage processes one inbound chat message for the given key,
// emitting reply increments to stream in generation order.
func (a *Assistant) HandleMessage(ctx context.Context, key domain.Key, text string, stream Stream) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return newError(ErrorValidation, "empty_message", nil)
	}
	if a.turnTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.turnTimeout)
		defer cancel()
	}

	if a.workflow != nil {
		handled, err := a.workflow.Handle(ctx, key, text, stream)
		if err != nil {
			return err
		}
		if handled {
			return nil
		}
	}

	history, err := a.state.Messages(ctx, key)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return newError(ErrorInternal, "state_read_error", err)
	}
	order, err := a.state.Order(ctx, key)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return newError(ErrorInternal, "state_read_error", err)
	}

	toolset := newOrderToolset(&order, stream)
	var toolDefs []domain.Tool
	if a.workflow == nil {
		toolDefs = toolset.defs()
	}

	messages := make([]domain.ChatMessage, 0, len(history)+2)
	messages = append(messages, domain.ChatMessage{Role: domain.RoleSystem, Content: a.instructions})
	messages = append(messages, history...)
	messages = append(messages, domain.ChatMessage{Role: domain.RoleUser, Content: text})

	for round := 0; round < a.maxToolRounds; round++ {
		final, err := a.modelTurn(ctx, messages, toolDefs, stream)
		if err != nil {
			return err
		}
		messages = append(messages, final)

		if len(final.ToolCalls) == 0 {
			return a.persist(ctx, key, messages[1:], order)
		}
		for _, call := range final.ToolCalls {
			messages = append(messages, domain.ChatMessage{
				Role:       domain.RoleTool,
				Content:    toolset.execute(ctx, call),
				ToolCallID: call.ID,
			})
		}
	}
	return newError(ErrorUpstream, "tool_round_limit", nil)
}

func (a *Assistant) modelTurn(ctx context.Context, messages []domain.ChatMessage, tools []domain.Tool, stream Stream) (domain.ChatMessage, error) {
	if a.blockingLLM != nil {
		return a.blockingCall(ctx, messages, tools, stream)
	}
	return a.streamOneCall(ctx, messages, tools, stream)
}

// blockingCall runs a single blocking model call and emits the reply content
// as one increment.
func (a *Assistant) blockingCall(ctx context.Context, messages []domain.ChatMessage, tools []domain.Tool, stream Stream) (domain.ChatMessage, error) {
	msg, err := a.blockingLLM.Chat(ctx, a.model, messages, tools)
	if err != nil {
		return domain.ChatMessage{}, upstreamError("model_call_failed", err)
	}
	if msg.Content != "" {
		if err := stream.EmitText(ctx, msg.Content); err != nil {
			return domain.ChatMessage{}, newError(ErrorInternal, "stream_emit_error", err)
		}
	}
	return msg, nil
}

// streamOneCall runs a single streamed model call, forwarding content deltas
// as they arrive, and returns the assembled assistant message.
func (a *Assistant) streamOneCall(ctx context.Context, messages []domain.ChatMessage, tools []domain.Tool, stream Stream) (domain.ChatMessage, error) {
	events, err := a.llm.ChatStream(ctx, a.model, messages, tools)
	if err != nil {
		return domain.ChatMessage{}, upstreamError("model_call_failed", err)
	}

	var final domain.ChatMessage
	var turnErr error
	done := false
	for ev := range events {
		// after a failure, keep receiving so the producer goroutine can exit
		if turnErr != nil {
			continue
		}
		switch {
		case ev.Err != nil:
			turnErr = upstreamError("model_stream_error", ev.Err)
		case ev.Done:
			final = ev.Message
			done = true
		case ev.ContentDelta != "":
			if err := stream.EmitText(ctx, ev.ContentDelta); err != nil {
				turnErr = newError(ErrorInternal, "stream_emit_error", err)
			}
		}
	}
	if turnErr != nil {
		return domain.ChatMessage{}, turnErr
	}
	if !done {
		return domain.ChatMessage{}, upstreamError("model_stream_interrupted", ctx.Err())
	}
	return final, nil
}

// persist writes the turn's messages and order back for the key. The leading
// system instruction is not part of the stored history.
func (a *Assistant) persist(ctx context.Context, key domain.Key, history []domain.ChatMessage, order domain.Order) error {
	if err := a.state.SaveMessages(ctx, key, history); err != nil {
		return newError(ErrorInternal, "state_write_error", err)
	}
	if err := a.state.SaveOrder(ctx, key, order); err != nil {
		return newError(ErrorInternal, "state_write_error", err)
	}
	return nil
}

func upstreamError(reason string, err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return newError(ErrorUpstream, "model_timeout", err)
	}
	var statusErr httpStatusCoder
	if errors.As(err, &statusErr) && statusErr.HTTPStatusCode() == 429 {
		return newError(ErrorRateLimited, reason, err)
	}
	return newError(ErrorUpstream, reason, err)
}
