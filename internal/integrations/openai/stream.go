package openai

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"pizza-agent/internal/domain"
)

// streamChunk is one SSE payload from a streamed chat completion.
type streamChunk struct {
	Choices []struct {
		Index int `json:"index"`
		Delta struct {
			Role      string          `json:"role,omitempty"`
			Content   string          `json:"content,omitempty"`
			ToolCalls []toolCallDelta `json:"tool_calls,omitempty"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
}

// toolCallDelta is a fragment of a tool call; the id and name arrive on the
// first fragment, argument text accumulates across subsequent ones.
type toolCallDelta struct {
	Index    int    `json:"index"`
	ID       string `json:"id,omitempty"`
	Function struct {
		Name      string `json:"name,omitempty"`
		Arguments string `json:"arguments,omitempty"`
	} `json:"function"`
}

// ChatStream runs one model call with streaming enabled and returns a
// channel of events in generation order. Content deltas are forwarded as
// they arrive; the final event has Done set and carries the assembled
// assistant message including any tool calls. The channel closes after the
// Done or error event. Cancelling ctx stops the stream.
func (c *Client) ChatStream(ctx context.Context, model string, messages []domain.ChatMessage, tools []domain.Tool) (<-chan domain.StreamEvent, error) {
	if model == "" {
		return nil, fmt.Errorf("openai: model must not be empty")
	}

	req, url, err := c.newChatRequest(ctx, chatRequest{
		Model:    model,
		Messages: messages,
		Tools:    wireTools(tools),
		Stream:   true,
	})
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	res, err := c.resolvedHTTPClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai: stream request failed: %w", err)
	}

	events := make(chan domain.StreamEvent)
	go func() {
		defer func() { _ = res.Body.Close() }()
		defer close(events)

		if res.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
			emit(ctx, events, domain.StreamEvent{Err: &HTTPStatusError{
				StatusCode: res.StatusCode,
				URL:        url,
				Body:       string(body),
			}})
			return
		}

		var content strings.Builder
		calls := map[int]*domain.ToolCall{}
		order := []int{}

		scanner := bufio.NewScanner(res.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if !strings.HasPrefix(line, "data:") {
				continue
			}
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if data == "[DONE]" {
				break
			}

			var chunk streamChunk
			if err := json.Unmarshal([]byte(data), &chunk); err != nil {
				emit(ctx, events, domain.StreamEvent{Err: fmt.Errorf("openai: decode stream chunk: %w", err)})
				return
			}
			if len(chunk.Choices) == 0 {
				continue
			}
			delta := chunk.Choices[0].Delta

			if delta.Content != "" {
				content.WriteString(delta.Content)
				if !emit(ctx, events, domain.StreamEvent{ContentDelta: delta.Content}) {
					return
				}
			}
			for _, tc := range delta.ToolCalls {
				call, ok := calls[tc.Index]
				if !ok {
					call = &domain.ToolCall{}
					calls[tc.Index] = call
					order = append(order, tc.Index)
				}
				if tc.ID != "" {
					call.ID = tc.ID
				}
				if tc.Function.Name != "" {
					call.Name = tc.Function.Name
				}
				call.Arguments += tc.Function.Arguments
			}
		}
		if err := scanner.Err(); err != nil {
			emit(ctx, events, domain.StreamEvent{Err: fmt.Errorf("openai: read stream: %w", err)})
			return
		}

		final := domain.ChatMessage{
			Role:    domain.RoleAssistant,
			Content: content.String(),
		}
		for _, idx := range order {
			final.ToolCalls = append(final.ToolCalls, *calls[idx])
		}
		emit(ctx, events, domain.StreamEvent{Message: final, Done: true})
	}()

	return events, nil
}

// emit sends an event unless the context is already cancelled. Returns false
// when the consumer is gone and the producer should stop.
func emit(ctx context.Context, events chan<- domain.StreamEvent, ev domain.StreamEvent) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
