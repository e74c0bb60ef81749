package models

// Message roles. History rendering maps RoleAssistant to the "agent" line
// prefix, see internal/llm.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents one turn of a conversation stored in the history list.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
