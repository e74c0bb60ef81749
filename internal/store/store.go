package store

import (
	"context"

	"github.com/jsnyde0/taskchunker-backend/internal/models"
)

// DataStore defines persistent storage for conversation history and task
// trees. Both RedisStore and SQLiteStore implement this interface. History
// and trees are stored independently: a conversation may exist without a
// tree, and a tree can be overwritten without touching history.
type DataStore interface {
	// Connection management
	Close()
	Ping(ctx context.Context) error

	// Conversation history operations
	StartConversation(ctx context.Context) (string, error)
	AddMessage(ctx context.Context, conversationID, role, content string) error
	GetHistory(ctx context.Context, conversationID string) ([]models.Message, error)

	// Task tree operations. GetTaskTree returns (nil, nil) when no tree
	// has been saved for the conversation.
	SaveTaskTree(ctx context.Context, conversationID string, tree *models.TaskTree) error
	GetTaskTree(ctx context.Context, conversationID string) (*models.TaskTree, error)
}
