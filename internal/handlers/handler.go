package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/jsnyde0/taskchunker-backend/internal/metrics"
	"github.com/jsnyde0/taskchunker-backend/internal/store"
)

// ConversationIDHeader carries the conversation id on requests and is echoed
// on responses. The response body field conversation_id is the primary
// channel; the header is a convenience for clients that only read headers.
const ConversationIDHeader = "X-Conversation-ID"

// Error categories returned in the "code" field of error bodies.
const (
	CodeBadRequest     = "bad_request"
	CodeNotFound       = "not_found"
	CodeLLMUnavailable = "llm_unavailable"
	CodeBadLLMOutput   = "bad_llm_output"
	CodeStorageError   = "storage_error"
)

// Completer is the completion-backend boundary. history is line-delimited
// "role: content" text; the returned string is the raw backend reply.
type Completer interface {
	Complete(ctx context.Context, history string) (string, error)
}

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	store  store.DataStore
	llm    Completer
	logger zerolog.Logger
}

// NewHandler creates a new Handler with the given dependencies.
func NewHandler(dataStore store.DataStore, completer Completer, logger zerolog.Logger) *Handler {
	return &Handler{store: dataStore, llm: completer, logger: logger}
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error sends a JSON error response with a machine-readable category and
// human-readable detail.
func (h *Handler) Error(w http.ResponseWriter, status int, code, message string) {
	h.JSON(w, status, ErrorResponse{Error: message, Code: code})
}

// resolveConversation returns the caller-supplied conversation id, or starts
// a new conversation when the request carries none.
func (h *Handler) resolveConversation(ctx context.Context, r *http.Request) (string, error) {
	if id := r.Header.Get(ConversationIDHeader); id != "" {
		return id, nil
	}

	id, err := h.store.StartConversation(ctx)
	if err != nil {
		return "", err
	}
	metrics.ConversationsStarted.Inc()
	h.logger.Debug().Str("conversation_id", id).Msg("conversation started")
	return id, nil
}
