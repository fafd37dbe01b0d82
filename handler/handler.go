// Package handler adapts inbound bot activities (chat messages and card
// actions) delivered through API Gateway into usecase calls, and collects
// the turn's streamed reply increments into one response payload.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"pizza-agent/internal/cards"
	"pizza-agent/internal/domain"
	"pizza-agent/internal/usecase"
)

// Activity types accepted on the inbound endpoint.
const (
	ActivityMessage    = "message"
	ActivityCardAction = "cardAction"
)

// Activity is one inbound bot event.
type Activity struct {
	Type           string       `json:"type"`
	ConversationID string       `json:"conversationId"`
	FromID         string       `json:"fromId"`
	Text           string       `json:"text,omitempty"`
	Value          *ActionValue `json:"value,omitempty"`
}

// ActionValue carries the discriminator from a card submit action.
type ActionValue struct {
	Action string `json:"action"`
}

// OutboundActivity is one reply increment: either plain text or a card
// attachment.
type OutboundActivity struct {
	Type        string       `json:"type"`
	Text        string       `json:"text,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

type Attachment struct {
	ContentType string     `json:"contentType"`
	Content     cards.Card `json:"content"`
}

type replyBody struct {
	ReplyID    string             `json:"replyId"`
	Value      string             `json:"value,omitempty"`
	Activities []OutboundActivity `json:"activities"`
}

type errorBody struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

// Conversationalist handles a chat message for a conversation key.
type Conversationalist interface {
	HandleMessage(ctx context.Context, key domain.Key, text string, stream usecase.Stream) error
}

// ActionHandler handles a card button press for a conversation key.
type ActionHandler interface {
	HandleAction(ctx context.Context, key domain.Key, action string, stream usecase.Stream) (string, error)
}

// Handler dispatches inbound activities to the assistant and card-action
// services.
type Handler struct {
	assistant Conversationalist
	actions   ActionHandler
}

func NewHandler(assistant Conversationalist, actions ActionHandler) (*Handler, error) {
	if assistant == nil {
		return nil, errors.New("handler: assistant must not be nil")
	}
	if actions == nil {
		return nil, errors.New("handler: action handler must not be nil")
	}
	return &Handler{assistant: assistant, actions: actions}, nil
}

// Handle processes one inbound activity. Conversational outcomes (including
// "no active order") are 200s; only malformed requests and upstream
// failures map to error statuses.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var activity Activity
	if err := json.Unmarshal([]byte(req.Body), &activity); err != nil {
		return errorResponse(http.StatusBadRequest, "VALIDATION_ERROR", "malformed_body"), nil
	}
	key := domain.Key{ConversationID: activity.ConversationID, UserID: activity.FromID}
	if strings.TrimSpace(key.ConversationID) == "" || strings.TrimSpace(key.UserID) == "" {
		return errorResponse(http.StatusBadRequest, "VALIDATION_ERROR", "missing_conversation_key"), nil
	}

	replies := &replyCollector{}

	switch activity.Type {
	case ActivityMessage:
		if err := h.assistant.HandleMessage(ctx, key, activity.Text, replies); err != nil {
			return h.errorToResponse(key, err), nil
		}
		return okResponse(replyBody{ReplyID: uuid.NewString(), Activities: replies.activities}), nil
	case ActivityCardAction:
		action := ""
		if activity.Value != nil {
			action = activity.Value.Action
		}
		value, err := h.actions.HandleAction(ctx, key, action, replies)
		if err != nil {
			return h.errorToResponse(key, err), nil
		}
		return okResponse(replyBody{ReplyID: uuid.NewString(), Value: value, Activities: replies.activities}), nil
	default:
		return errorResponse(http.StatusBadRequest, "VALIDATION_ERROR", "unknown_activity_type"), nil
	}
}

func (h *Handler) errorToResponse(key domain.Key, err error) events.APIGatewayProxyResponse {
	var ucErr *usecase.Error
	if !errors.As(err, &ucErr) {
		slog.Error("unclassified handler error", "key", key.String(), "err", err)
		return errorResponse(http.StatusInternalServerError, "INTERNAL_ERROR", "")
	}

	slog.Warn("turn failed", "key", key.String(), "code", string(ucErr.Code), "reason", ucErr.Reason)
	switch ucErr.Code {
	case usecase.ErrorValidation:
		return errorResponse(http.StatusBadRequest, string(ucErr.Code), ucErr.Reason)
	case usecase.ErrorRateLimited:
		return errorResponse(http.StatusTooManyRequests, string(ucErr.Code), ucErr.Reason)
	case usecase.ErrorUpstream:
		return errorResponse(http.StatusBadGateway, string(ucErr.Code), ucErr.Reason)
	default:
		return errorResponse(http.StatusInternalServerError, string(ucErr.Code), ucErr.Reason)
	}
}

func okResponse(body replyBody) events.APIGatewayProxyResponse {
	return jsonResponse(http.StatusOK, body)
}

func errorResponse(status int, code, reason string) events.APIGatewayProxyResponse {
	return jsonResponse(status, errorBody{Error: code, Reason: reason})
}

func jsonResponse(status int, body any) events.APIGatewayProxyResponse {
	payload, err := json.Marshal(body)
	if err != nil {
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusInternalServerError,
			Headers:    map[string]string{"content-type": "application/json"},
			Body:       `{"error":"INTERNAL_ERROR"}`,
		}
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"content-type": "application/json"},
		Body:       string(payload),
	}
}

// replyCollector implements usecase.Stream by accumulating increments in
// emit order. API Gateway delivers one response per request, so increments
// are flushed together; the ordering contract is preserved.
type replyCollector struct {
	activities []OutboundActivity
}

func (r *replyCollector) EmitText(_ context.Context, text string) error {
	r.activities = append(r.activities, OutboundActivity{Type: ActivityMessage, Text: text})
	return nil
}

func (r *replyCollector) EmitCard(_ context.Context, card cards.Card) error {
	r.activities = append(r.activities, OutboundActivity{
		Type: ActivityMessage,
		Attachments: []Attachment{{
			ContentType: cards.ContentType,
			Content:     card,
		}},
	})
	return nil
}
