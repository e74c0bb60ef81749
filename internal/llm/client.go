// Package llm wraps the chat-completion backend behind a failure-signalling
// boundary: Complete returns text or an error, never panics past it.
package llm

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/jsnyde0/taskchunker-backend/internal/models"
)

// systemPrompt fixes the backend's output contract: a JSON object with
// exactly 3 next actions, framed as GTD-style actionable steps.
const systemPrompt = `You are a task management assistant following the Getting Things Done methodology. ` +
	`Based on the conversation, suggest exactly 3 concrete next actions the user can take. ` +
	`Each next action must be a single, physical, visible step. ` +
	`Respond with a JSON object of the form {"next_actions": [{"description": "..."}, {"description": "..."}, {"description": "..."}]} ` +
	`and nothing else.`

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-3.5-turbo"

// Client talks to an OpenAI-compatible chat-completion backend.
type Client struct {
	api    *openai.Client
	model  string
	logger zerolog.Logger
}

// New creates a completion client. baseURL overrides the backend endpoint
// and is empty outside of tests and proxy setups.
func New(apiKey, model, baseURL string, logger zerolog.Logger) *Client {
	if model == "" {
		model = DefaultModel
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &Client{
		api:    openai.NewClientWithConfig(cfg),
		model:  model,
		logger: logger,
	}
}

// Complete sends the system instruction plus the reconstructed conversation
// to the backend and returns the raw text of the reply. history is
// line-delimited "role: content" text as produced by RenderHistory; lines
// without a recognized prefix are tolerated as user turns. Any backend,
// transport, or empty-response failure comes back as an error for the caller
// to surface as "LLM unavailable".
func (c *Client) Complete(ctx context.Context, history string) (string, error) {
	turns := parseHistory(history)

	chatMessages := make([]openai.ChatCompletionMessage, 0, len(turns)+1)
	chatMessages = append(chatMessages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt,
	})
	for _, turn := range turns {
		role := openai.ChatMessageRoleUser
		if turn.Role == models.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		chatMessages = append(chatMessages, openai.ChatCompletionMessage{
			Role:    role,
			Content: turn.Content,
		})
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: chatMessages,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		c.logger.Error().Err(err).Str("model", c.model).Msg("completion request failed")
		return "", fmt.Errorf("completion request: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		c.logger.Error().Str("model", c.model).Msg("completion returned no content")
		return "", fmt.Errorf("completion returned no content")
	}

	return resp.Choices[0].Message.Content, nil
}
