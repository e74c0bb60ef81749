// Package taskchunker provides a client for the TaskChunker API.
package taskchunker

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ConversationIDHeader carries the conversation id between client and server.
const ConversationIDHeader = "X-Conversation-ID"

// Client is a TaskChunker API client. It remembers the conversation id from
// the last response so successive calls continue the same conversation.
type Client struct {
	BaseURL        string
	ConversationID string
	HTTPClient     *http.Client
}

// NewClient creates a new TaskChunker client.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// NextAction is one suggested step returned by the chat endpoint.
type NextAction struct {
	Description string `json:"description"`
}

// ChatResponse is the chat endpoint response.
type ChatResponse struct {
	ConversationID string       `json:"conversation_id"`
	NextActions    []NextAction `json:"next_actions"`
}

// Task is a node of the task tree.
type Task struct {
	ID        string    `json:"id"`
	ParentID  string    `json:"parent_id,omitempty"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// TaskTree is a task with its subtasks.
type TaskTree struct {
	Task     Task        `json:"task"`
	Subtasks []*TaskTree `json:"subtasks"`
}

// ChunkResponse is the chunk endpoint response.
type ChunkResponse struct {
	ConversationID string    `json:"conversation_id"`
	Tree           *TaskTree `json:"tree"`
}

// HealthResponse is the health endpoint response.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// HelloResponse is the greeting response.
type HelloResponse struct {
	Message string `json:"message"`
}

// Chat sends a message and returns the suggested next actions.
func (c *Client) Chat(message string) (*ChatResponse, error) {
	var resp ChatResponse
	if err := c.doJSON("POST", "/chat", map[string]string{"message": message}, &resp); err != nil {
		return nil, err
	}
	if resp.ConversationID != "" {
		c.ConversationID = resp.ConversationID
	}
	return &resp, nil
}

// ChunkTitle starts a new task breakdown from a title.
func (c *Client) ChunkTitle(title string) (*ChunkResponse, error) {
	return c.chunk(map[string]string{"title": title})
}

// ChunkTask breaks down an existing task from the conversation's tree.
func (c *Client) ChunkTask(taskID string) (*ChunkResponse, error) {
	return c.chunk(map[string]string{"task_id": taskID})
}

func (c *Client) chunk(body map[string]string) (*ChunkResponse, error) {
	var resp ChunkResponse
	if err := c.doJSON("POST", "/chunk", body, &resp); err != nil {
		return nil, err
	}
	if resp.ConversationID != "" {
		c.ConversationID = resp.ConversationID
	}
	return &resp, nil
}

// Health checks service health.
func (c *Client) Health() (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.doJSON("GET", "/health", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Hello fetches the liveness greeting.
func (c *Client) Hello() (*HelloResponse, error) {
	var resp HelloResponse
	if err := c.doJSON("GET", "/api/v1/hello", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// apiError is the server's error body.
type apiError struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (c *Client) doJSON(method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.ConversationID != "" {
		req.Header.Set(ConversationIDHeader, c.ConversationID)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		var apiErr apiError
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s (%s)", method, path, apiErr.Error, apiErr.Code)
		}
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}

	return json.Unmarshal(data, out)
}
