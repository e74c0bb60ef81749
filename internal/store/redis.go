package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jsnyde0/taskchunker-backend/internal/models"
)

// RedisStore is the primary DataStore backend. Conversation history lives in
// a list under the conversation id itself; the task tree is a single JSON
// document under a prefixed key. The two keys are deliberately independent.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis from a URL (redis://...). Falls back to
// host/port/db when no URL is given, matching local development setups.
func NewRedisStore(ctx context.Context, redisURL, host, port string, db int) (*RedisStore, error) {
	var opts *redis.Options
	if redisURL != "" {
		parsed, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: host + ":" + port, DB: db}
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisStore{client: client}, nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() {
	s.client.Close()
}

// Ping checks the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Client exposes the underlying client for middleware that needs raw Redis
// access (rate limiting).
func (s *RedisStore) Client() *redis.Client {
	return s.client
}

// taskTreeKey returns the key holding a conversation's tree document.
func taskTreeKey(conversationID string) string {
	return "task_tree:" + conversationID
}

// StartConversation generates a fresh conversation id and clears any residual
// data under it. Reuse of a random UUID is not expected, but a fresh id must
// always start from a blank slate.
func (s *RedisStore) StartConversation(ctx context.Context) (string, error) {
	id := uuid.New().String()
	if err := s.client.Del(ctx, id, taskTreeKey(id)).Err(); err != nil {
		return "", fmt.Errorf("clear conversation %s: %w", id, err)
	}
	return id, nil
}

// AddMessage appends one message to the end of the conversation's history.
func (s *RedisStore) AddMessage(ctx context.Context, conversationID, role, content string) error {
	data, err := json.Marshal(models.Message{Role: role, Content: content})
	if err != nil {
		return err
	}
	if err := s.client.RPush(ctx, conversationID, data).Err(); err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	return nil
}

// decodeHistoryEntry turns one stored list entry back into a Message.
// Entries that fail to decode are kept best-effort as user-role messages
// carrying the raw payload, rather than dropped or rejected.
func decodeHistoryEntry(entry string) models.Message {
	var msg models.Message
	if err := json.Unmarshal([]byte(entry), &msg); err != nil {
		return models.Message{Role: models.RoleUser, Content: entry}
	}
	return msg
}

// GetHistory returns all messages in insertion order. An unknown conversation
// id yields an empty slice, not an error.
func (s *RedisStore) GetHistory(ctx context.Context, conversationID string) ([]models.Message, error) {
	entries, err := s.client.LRange(ctx, conversationID, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}

	messages := make([]models.Message, 0, len(entries))
	for _, entry := range entries {
		messages = append(messages, decodeHistoryEntry(entry))
	}

	return messages, nil
}

// SaveTaskTree overwrites the conversation's tree document in a single write.
// There is no merge; concurrent saves are last-write-wins.
func (s *RedisStore) SaveTaskTree(ctx context.Context, conversationID string, tree *models.TaskTree) error {
	data, err := json.Marshal(tree)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, taskTreeKey(conversationID), data, 0).Err(); err != nil {
		return fmt.Errorf("save task tree: %w", err)
	}
	return nil
}

// GetTaskTree returns the stored tree, or (nil, nil) when none exists.
func (s *RedisStore) GetTaskTree(ctx context.Context, conversationID string) (*models.TaskTree, error) {
	data, err := s.client.Get(ctx, taskTreeKey(conversationID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read task tree: %w", err)
	}

	var tree models.TaskTree
	if err := json.Unmarshal([]byte(data), &tree); err != nil {
		return nil, fmt.Errorf("decode task tree: %w", err)
	}
	return &tree, nil
}
