package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/jsnyde0/taskchunker-backend/internal/llm"
	"github.com/jsnyde0/taskchunker-backend/internal/metrics"
	"github.com/jsnyde0/taskchunker-backend/internal/models"
)

// ChatRequest represents the chat request body.
type ChatRequest struct {
	Message string `json:"message"`
}

// NextAction is one suggested step from the completion backend.
type NextAction struct {
	Description string `json:"description"`
}

// nextActions is the schema the backend is instructed to produce.
type nextActions struct {
	NextActions []NextAction `json:"next_actions"`
}

// ChatResponse represents the chat response body.
type ChatResponse struct {
	ConversationID string       `json:"conversation_id"`
	NextActions    []NextAction `json:"next_actions"`
}

// Chat appends the incoming message to the conversation, asks the completion
// backend for next-action suggestions over the full history, and stores the
// reply. The read-history-then-complete sequence is not transactional across
// concurrent requests for the same conversation; last write wins.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, CodeBadRequest, "invalid JSON body")
		return
	}

	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		h.Error(w, http.StatusBadRequest, CodeBadRequest, "message is required")
		return
	}

	conversationID, err := h.resolveConversation(r.Context(), r)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to start conversation")
		h.Error(w, http.StatusInternalServerError, CodeStorageError, "failed to start conversation")
		return
	}

	if err := h.store.AddMessage(r.Context(), conversationID, models.RoleUser, req.Message); err != nil {
		h.logger.Error().Err(err).Str("conversation_id", conversationID).Msg("failed to store message")
		h.Error(w, http.StatusInternalServerError, CodeStorageError, "failed to store message")
		return
	}

	history, err := h.store.GetHistory(r.Context(), conversationID)
	if err != nil {
		h.logger.Error().Err(err).Str("conversation_id", conversationID).Msg("failed to read history")
		h.Error(w, http.StatusInternalServerError, CodeStorageError, "failed to read history")
		return
	}

	start := time.Now()
	raw, err := h.llm.Complete(r.Context(), llm.RenderHistory(history))
	metrics.CompletionDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.Completions.WithLabelValues("backend_error").Inc()
		h.logger.Error().Err(err).Str("conversation_id", conversationID).Msg("completion backend failed")
		h.Error(w, http.StatusInternalServerError, CodeLLMUnavailable, "language model unavailable")
		return
	}

	var parsed nextActions
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		metrics.Completions.WithLabelValues("parse_error").Inc()
		h.logger.Error().Err(err).Str("conversation_id", conversationID).Msg("completion output is not valid JSON")
		h.Error(w, http.StatusInternalServerError, CodeBadLLMOutput, "invalid model output: "+err.Error())
		return
	}
	if parsed.NextActions == nil {
		metrics.Completions.WithLabelValues("parse_error").Inc()
		h.logger.Error().Str("conversation_id", conversationID).Msg("completion output missing next_actions")
		h.Error(w, http.StatusInternalServerError, CodeBadLLMOutput, "invalid model output: missing next_actions")
		return
	}
	metrics.Completions.WithLabelValues("ok").Inc()

	// Store the raw reply so the next request reconstructs the full context.
	if err := h.store.AddMessage(r.Context(), conversationID, models.RoleAssistant, raw); err != nil {
		h.logger.Error().Err(err).Str("conversation_id", conversationID).Msg("failed to store reply")
		h.Error(w, http.StatusInternalServerError, CodeStorageError, "failed to store reply")
		return
	}

	w.Header().Set(ConversationIDHeader, conversationID)
	h.JSON(w, http.StatusOK, ChatResponse{
		ConversationID: conversationID,
		NextActions:    parsed.NextActions,
	})
}
