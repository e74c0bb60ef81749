package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/jsnyde0/taskchunker-backend/internal/models"
)

const goodReply = `{"next_actions":[{"description":"a"},{"description":"b"},{"description":"c"}]}`

func TestChatNewConversation(t *testing.T) {
	store := newFakeStore()
	completer := &fakeCompleter{reply: goodReply}
	h := newTestHandler(store, completer)

	rec := doJSON(t, h.Chat, "POST", "/chat", `{"message":"buy milk"}`, "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp ChatResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.ConversationID == "" {
		t.Error("expected a conversation id in the body")
	}
	if rec.Header().Get(ConversationIDHeader) != resp.ConversationID {
		t.Error("header echo should match body conversation_id")
	}
	if len(resp.NextActions) != 3 {
		t.Fatalf("expected 3 next actions, got %d", len(resp.NextActions))
	}
	if resp.NextActions[0].Description != "a" {
		t.Errorf("unexpected first action: %+v", resp.NextActions[0])
	}

	// User turn plus stored assistant reply.
	history := store.histories[resp.ConversationID]
	if len(history) != 2 {
		t.Fatalf("expected 2 stored messages, got %d", len(history))
	}
	if history[0] != (models.Message{Role: models.RoleUser, Content: "buy milk"}) {
		t.Errorf("unexpected user turn: %+v", history[0])
	}
	if history[1].Role != models.RoleAssistant || history[1].Content != goodReply {
		t.Errorf("unexpected assistant turn: %+v", history[1])
	}
}

func TestChatContinuesConversation(t *testing.T) {
	store := newFakeStore()
	completer := &fakeCompleter{reply: goodReply}
	h := newTestHandler(store, completer)

	first := doJSON(t, h.Chat, "POST", "/chat", `{"message":"buy milk"}`, "")
	var firstResp ChatResponse
	json.NewDecoder(first.Body).Decode(&firstResp)

	second := doJSON(t, h.Chat, "POST", "/chat", `{"message":"and eggs"}`, firstResp.ConversationID)
	var secondResp ChatResponse
	json.NewDecoder(second.Body).Decode(&secondResp)

	if secondResp.ConversationID != firstResp.ConversationID {
		t.Error("supplied conversation id should be reused")
	}

	// The completer must see the whole rendered history, oldest first.
	want := "user: buy milk\nagent: " + goodReply + "\nuser: and eggs"
	if completer.gotHistory != want {
		t.Errorf("history sent to backend:\n got %q\nwant %q", completer.gotHistory, want)
	}
}

func TestChatMissingMessage(t *testing.T) {
	h := newTestHandler(newFakeStore(), &fakeCompleter{reply: goodReply})
	rec := doJSON(t, h.Chat, "POST", "/chat", `{"message":"  "}`, "")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if decodeError(t, rec).Code != CodeBadRequest {
		t.Error("expected bad_request code")
	}
}

func TestChatInvalidBody(t *testing.T) {
	h := newTestHandler(newFakeStore(), &fakeCompleter{})
	rec := doJSON(t, h.Chat, "POST", "/chat", `not json`, "")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestChatBackendUnavailable(t *testing.T) {
	store := newFakeStore()
	h := newTestHandler(store, &fakeCompleter{err: errors.New("connection refused")})

	rec := doJSON(t, h.Chat, "POST", "/chat", `{"message":"hi"}`, "")

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if decodeError(t, rec).Code != CodeLLMUnavailable {
		t.Error("expected llm_unavailable code")
	}
}

func TestChatMalformedOutput(t *testing.T) {
	store := newFakeStore()
	h := newTestHandler(store, &fakeCompleter{reply: "not valid json"})

	rec := doJSON(t, h.Chat, "POST", "/chat", `{"message":"buy milk"}`, "conv-x")

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	errResp := decodeError(t, rec)
	if errResp.Code != CodeBadLLMOutput {
		t.Errorf("expected bad_llm_output code, got %q", errResp.Code)
	}

	// The appended user message stays appended; no assistant turn is stored.
	history := store.histories["conv-x"]
	if len(history) != 1 || history[0].Content != "buy milk" {
		t.Errorf("expected only the user turn to remain, got %+v", history)
	}
}

func TestChatMissingNextActions(t *testing.T) {
	h := newTestHandler(newFakeStore(), &fakeCompleter{reply: `{"something_else":1}`})

	rec := doJSON(t, h.Chat, "POST", "/chat", `{"message":"hi"}`, "")

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if decodeError(t, rec).Code != CodeBadLLMOutput {
		t.Error("expected bad_llm_output code")
	}
}
