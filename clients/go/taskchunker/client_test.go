package taskchunker

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/chat":
			id := r.Header.Get(ConversationIDHeader)
			if id == "" {
				id = "conv-new"
			}
			json.NewEncoder(w).Encode(ChatResponse{
				ConversationID: id,
				NextActions:    []NextAction{{Description: "do it"}},
			})
		case "/chunk":
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"no task tree for conversation","code":"not_found"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestChatTracksConversation(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	c := NewClient(srv.URL)

	resp, err := c.Chat("buy milk")
	if err != nil {
		t.Fatal(err)
	}
	if resp.ConversationID != "conv-new" {
		t.Errorf("unexpected conversation id: %q", resp.ConversationID)
	}
	if c.ConversationID != "conv-new" {
		t.Error("client should remember the conversation id")
	}

	// Second call sends the remembered id back.
	resp, err = c.Chat("and eggs")
	if err != nil {
		t.Fatal(err)
	}
	if resp.ConversationID != "conv-new" {
		t.Errorf("expected id to be reused, got %q", resp.ConversationID)
	}
}

func TestAPIErrorDecoding(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.ChunkTask("missing")
	if err == nil {
		t.Fatal("expected error")
	}
	want := "POST /chunk: no task tree for conversation (not_found)"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}
