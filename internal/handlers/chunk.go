package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/jsnyde0/taskchunker-backend/internal/metrics"
	"github.com/jsnyde0/taskchunker-backend/internal/models"
)

// ChunkRequest selects what to decompose: an existing task in the
// conversation's tree, or a fresh root synthesized from a title. At least one
// selector is required; task_id wins when both are present.
type ChunkRequest struct {
	TaskID string `json:"task_id,omitempty"`
	Title  string `json:"title,omitempty"`
}

// ChunkResponse represents the chunk response body.
type ChunkResponse struct {
	ConversationID string           `json:"conversation_id"`
	Tree           *models.TaskTree `json:"tree"`
}

// Chunk breaks a task into two placeholder subtasks and persists the result
// as the conversation's tree (full overwrite, no merge). The decomposition is
// fixed for now; this endpoint does not call the completion backend.
func (h *Handler) Chunk(w http.ResponseWriter, r *http.Request) {
	var req ChunkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, CodeBadRequest, "invalid JSON body")
		return
	}

	req.TaskID = strings.TrimSpace(req.TaskID)
	req.Title = strings.TrimSpace(req.Title)
	if req.TaskID == "" && req.Title == "" {
		h.Error(w, http.StatusBadRequest, CodeBadRequest, "task_id or title is required")
		return
	}

	conversationID, err := h.resolveConversation(r.Context(), r)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to start conversation")
		h.Error(w, http.StatusInternalServerError, CodeStorageError, "failed to start conversation")
		return
	}

	var root models.Task
	mode := "title"
	if req.TaskID != "" {
		mode = "task_id"

		stored, err := h.store.GetTaskTree(r.Context(), conversationID)
		if err != nil {
			h.logger.Error().Err(err).Str("conversation_id", conversationID).Msg("failed to read task tree")
			h.Error(w, http.StatusInternalServerError, CodeStorageError, "failed to read task tree")
			return
		}
		if stored == nil {
			h.Error(w, http.StatusNotFound, CodeNotFound, "no task tree for conversation")
			return
		}

		node := stored.Find(req.TaskID)
		if node == nil {
			h.Error(w, http.StatusNotFound, CodeNotFound, fmt.Sprintf("task %s not found in tree", req.TaskID))
			return
		}
		root = node.Task
	} else {
		root = models.Task{
			ID:        ulid.Make().String(),
			Title:     req.Title,
			CreatedAt: time.Now().UTC(),
		}
	}

	tree := decompose(root)

	if err := h.store.SaveTaskTree(r.Context(), conversationID, tree); err != nil {
		h.logger.Error().Err(err).Str("conversation_id", conversationID).Msg("failed to save task tree")
		h.Error(w, http.StatusInternalServerError, CodeStorageError, "failed to save task tree")
		return
	}
	metrics.ChunksCreated.WithLabelValues(mode).Inc()

	w.Header().Set(ConversationIDHeader, conversationID)
	h.JSON(w, http.StatusOK, ChunkResponse{
		ConversationID: conversationID,
		Tree:           tree,
	})
}

// decompose builds the fixed two-child breakdown of a task. Subtask ids are
// derived from the root id so a follow-up chunk request can address them.
func decompose(root models.Task) *models.TaskTree {
	now := time.Now().UTC()
	subtasks := make([]*models.TaskTree, 0, 2)
	for i := 1; i <= 2; i++ {
		subtasks = append(subtasks, &models.TaskTree{
			Task: models.Task{
				ID:        fmt.Sprintf("%s-%d", root.ID, i),
				ParentID:  root.ID,
				Title:     fmt.Sprintf("%s (part %d)", root.Title, i),
				CreatedAt: now,
			},
		})
	}
	return &models.TaskTree{Task: root, Subtasks: subtasks}
}
