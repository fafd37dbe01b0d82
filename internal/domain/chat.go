package domain

import "encoding/json"

// ChatMessage is the provider-agnostic chat message shape used by the handler
// and LLM integrations. The JSON tags follow the chat-completions wire format
// so a message sequence can be sent to the model as-is.
type ChatMessage struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ToolCall is one model-requested function invocation. Fields are flat for
// use across the codebase; MarshalJSON/UnmarshalJSON translate to and from
// the nested API format ({type, function: {name, arguments}}).
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

func (tc ToolCall) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID       string `json:"id"`
		Type     string `json:"type"`
		Function struct {
			Name      string `json:"name"`
			Arguments string `json:"arguments"`
		} `json:"function"`
	}{
		ID:   tc.ID,
		Type: "function",
		Function: struct {
			Name      string `json:"name"`
			Arguments string `json:"arguments"`
		}{
			Name:      tc.Name,
			Arguments: tc.Arguments,
		},
	})
}

func (tc *ToolCall) UnmarshalJSON(data []byte) error {
	var nested struct {
		ID       string `json:"id"`
		Function struct {
			Name      string `json:"name"`
			Arguments string `json:"arguments"`
		} `json:"function"`
	}
	if err := json.Unmarshal(data, &nested); err != nil {
		return err
	}
	if nested.Function.Name != "" {
		tc.ID = nested.ID
		tc.Name = nested.Function.Name
		tc.Arguments = nested.Function.Arguments
		return nil
	}
	type plain ToolCall
	return json.Unmarshal(data, (*plain)(tc))
}

// Tool describes a callable function offered to the model. Parameters holds
// a JSON Schema document for the function's arguments.
type Tool struct {
	Name        string
	Description string
	Parameters  any
}

// StreamEvent is one increment of a streamed model turn. Events arrive in
// generation order; exactly one event has Done set, carrying the assembled
// assistant message (including any tool calls). Err terminates the stream.
type StreamEvent struct {
	ContentDelta string
	Message      ChatMessage
	Done         bool
	Err          error
}
