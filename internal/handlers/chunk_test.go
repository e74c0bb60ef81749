package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/jsnyde0/taskchunker-backend/internal/models"
)

func TestChunkByTitle(t *testing.T) {
	store := newFakeStore()
	h := newTestHandler(store, &fakeCompleter{})

	rec := doJSON(t, h.Chunk, "POST", "/chunk", `{"title":"Plan trip"}`, "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp ChunkResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.ConversationID == "" {
		t.Error("expected a conversation id")
	}

	root := resp.Tree.Task
	if root.ID == "" {
		t.Error("expected a freshly generated root id")
	}
	if root.Title != "Plan trip" {
		t.Errorf("unexpected root title: %q", root.Title)
	}
	if root.ParentID != "" {
		t.Errorf("root should have no parent, got %q", root.ParentID)
	}
	if root.CreatedAt.IsZero() {
		t.Error("root should carry a timestamp")
	}

	if len(resp.Tree.Subtasks) != 2 {
		t.Fatalf("expected exactly 2 subtasks, got %d", len(resp.Tree.Subtasks))
	}
	for i, sub := range resp.Tree.Subtasks {
		wantID := fmt.Sprintf("%s-%d", root.ID, i+1)
		if sub.Task.ID != wantID {
			t.Errorf("subtask %d id: got %q, want %q", i, sub.Task.ID, wantID)
		}
		if sub.Task.ParentID != root.ID {
			t.Errorf("subtask %d parent: got %q, want %q", i, sub.Task.ParentID, root.ID)
		}
	}

	// Response tree must match what was persisted.
	saved := store.trees[resp.ConversationID]
	if saved == nil || saved.Task.ID != root.ID {
		t.Error("tree was not persisted under the conversation id")
	}
}

func TestChunkByTaskID(t *testing.T) {
	store := newFakeStore()
	store.trees["conv-a"] = &models.TaskTree{
		Task: models.Task{ID: "root", Title: "Plan trip"},
		Subtasks: []*models.TaskTree{
			{Task: models.Task{ID: "root-1", ParentID: "root", Title: "Plan trip (part 1)"}},
			{Task: models.Task{ID: "root-2", ParentID: "root", Title: "Plan trip (part 2)"}},
		},
	}
	h := newTestHandler(store, &fakeCompleter{})

	rec := doJSON(t, h.Chunk, "POST", "/chunk", `{"task_id":"root-1"}`, "conv-a")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp ChunkResponse
	json.NewDecoder(rec.Body).Decode(&resp)

	if resp.Tree.Task.ID != "root-1" {
		t.Errorf("expected located task as root, got %q", resp.Tree.Task.ID)
	}
	if len(resp.Tree.Subtasks) != 2 {
		t.Fatalf("expected 2 subtasks, got %d", len(resp.Tree.Subtasks))
	}
	if resp.Tree.Subtasks[0].Task.ID != "root-1-1" {
		t.Errorf("unexpected subtask id: %q", resp.Tree.Subtasks[0].Task.ID)
	}

	// Full overwrite: the saved document is the new decomposition.
	if store.trees["conv-a"].Task.ID != "root-1" {
		t.Error("expected the stored tree to be replaced by the decomposition")
	}
}

func TestChunkTaskIDWithoutTree(t *testing.T) {
	store := newFakeStore()
	h := newTestHandler(store, &fakeCompleter{})

	rec := doJSON(t, h.Chunk, "POST", "/chunk", `{"task_id":"x"}`, "conv-a")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if decodeError(t, rec).Code != CodeNotFound {
		t.Error("expected not_found code")
	}
	if store.trees["conv-a"] != nil {
		t.Error("no tree should have been saved")
	}
}

func TestChunkTaskIDAbsentFromTree(t *testing.T) {
	store := newFakeStore()
	store.trees["conv-a"] = &models.TaskTree{Task: models.Task{ID: "root"}}
	h := newTestHandler(store, &fakeCompleter{})

	rec := doJSON(t, h.Chunk, "POST", "/chunk", `{"task_id":"missing"}`, "conv-a")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	// The stored tree is untouched.
	if store.trees["conv-a"].Task.ID != "root" {
		t.Error("stored tree should not change on a failed lookup")
	}
}

func TestChunkMissingSelector(t *testing.T) {
	store := newFakeStore()
	h := newTestHandler(store, &fakeCompleter{})

	rec := doJSON(t, h.Chunk, "POST", "/chunk", `{}`, "")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if decodeError(t, rec).Code != CodeBadRequest {
		t.Error("expected bad_request code")
	}
	// Rejected before any store call: no conversation was started.
	if store.nextID != 0 {
		t.Error("no conversation should be created for an invalid request")
	}
}
