package llm

import (
	"strings"

	"github.com/jsnyde0/taskchunker-backend/internal/models"
)

// Line prefixes for the textual history rendering. Assistant turns render as
// "agent" to match the prompt vocabulary. Known ambiguity: message content
// containing a newline followed by one of these prefixes would be misparsed;
// tolerated rather than hardened.
const (
	userPrefix  = "user: "
	agentPrefix = "agent: "
)

// RenderHistory flattens a conversation into line-delimited "role: content"
// text, the form Complete expects as input.
func RenderHistory(messages []models.Message) string {
	lines := make([]string, 0, len(messages))
	for _, m := range messages {
		prefix := userPrefix
		if m.Role == models.RoleAssistant {
			prefix = agentPrefix
		}
		lines = append(lines, prefix+m.Content)
	}
	return strings.Join(lines, "\n")
}

// parseHistory splits rendered history back into role-tagged turns. Lines
// without a recognized prefix are treated as user turns; blank lines are
// skipped.
func parseHistory(history string) []models.Message {
	var messages []models.Message
	for _, line := range strings.Split(history, "\n") {
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, userPrefix):
			messages = append(messages, models.Message{
				Role:    models.RoleUser,
				Content: strings.TrimPrefix(line, userPrefix),
			})
		case strings.HasPrefix(line, agentPrefix):
			messages = append(messages, models.Message{
				Role:    models.RoleAssistant,
				Content: strings.TrimPrefix(line, agentPrefix),
			})
		default:
			messages = append(messages, models.Message{
				Role:    models.RoleUser,
				Content: line,
			})
		}
	}
	return messages
}
