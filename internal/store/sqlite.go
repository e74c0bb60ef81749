package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/jsnyde0/taskchunker-backend/internal/models"
)

// SQLiteStore is a file-backed DataStore for local development so the server
// runs without a Redis instance. History keeps insertion order through the
// rowid; the tree is stored as one JSON document per conversation.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at dbPath.
// If dbPath is empty, defaults to "./data/taskchunker.db".
// ":memory:" opens a shared in-memory database for ephemeral runs.
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		dbPath = "./data/taskchunker.db"
	}

	dsn := dbPath + "?_journal_mode=WAL&_foreign_keys=on"
	if dbPath == ":memory:" {
		dsn = "file::memory:?cache=shared&_foreign_keys=on"
	} else {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}

	if err := store.initSchema(ctx); err != nil {
		return nil, err
	}

	return store, nil
}

// initSchema creates tables if they don't exist.
func (s *SQLiteStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		conversation_id TEXT NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS task_trees (
		conversation_id TEXT PRIMARY KEY,
		document TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id, id);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() {
	s.db.Close()
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// StartConversation generates a fresh conversation id and clears any residual
// rows under it.
func (s *SQLiteStore) StartConversation(ctx context.Context) (string, error) {
	id := uuid.New().String()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE conversation_id = ?`, id); err != nil {
		return "", fmt.Errorf("clear conversation %s: %w", id, err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM task_trees WHERE conversation_id = ?`, id); err != nil {
		return "", fmt.Errorf("clear task tree %s: %w", id, err)
	}

	return id, nil
}

// AddMessage appends one message to the conversation's history.
func (s *SQLiteStore) AddMessage(ctx context.Context, conversationID, role, content string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (conversation_id, role, content)
		VALUES (?, ?, ?)
	`, conversationID, role, content)
	if err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	return nil
}

// GetHistory returns all messages in insertion order; empty for an unknown id.
func (s *SQLiteStore) GetHistory(ctx context.Context, conversationID string) ([]models.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT role, content FROM messages
		WHERE conversation_id = ?
		ORDER BY id ASC
	`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	defer rows.Close()

	messages := []models.Message{}
	for rows.Next() {
		var msg models.Message
		if err := rows.Scan(&msg.Role, &msg.Content); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}

	return messages, rows.Err()
}

// SaveTaskTree overwrites the conversation's tree document.
func (s *SQLiteStore) SaveTaskTree(ctx context.Context, conversationID string, tree *models.TaskTree) error {
	data, err := json.Marshal(tree)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO task_trees (conversation_id, document, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(conversation_id) DO UPDATE SET
			document = excluded.document,
			updated_at = CURRENT_TIMESTAMP
	`, conversationID, string(data))
	if err != nil {
		return fmt.Errorf("save task tree: %w", err)
	}
	return nil
}

// GetTaskTree returns the stored tree, or (nil, nil) when none exists.
func (s *SQLiteStore) GetTaskTree(ctx context.Context, conversationID string) (*models.TaskTree, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `
		SELECT document FROM task_trees WHERE conversation_id = ?
	`, conversationID).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read task tree: %w", err)
	}

	var tree models.TaskTree
	if err := json.Unmarshal([]byte(doc), &tree); err != nil {
		return nil, fmt.Errorf("decode task tree: %w", err)
	}
	return &tree, nil
}
