package models

import "time"

// Task is a named unit of work within a conversation's task tree.
type Task struct {
	ID        string    `json:"id"`                  // ULID
	ParentID  string    `json:"parent_id,omitempty"` // empty for the root
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"` // RFC 3339 on the wire
}

// TaskTree is the recursive decomposition of a Task into subtasks. Exactly
// one tree document exists per conversation; every save replaces it whole,
// so the tree owns its children outright.
type TaskTree struct {
	Task     Task        `json:"task"`
	Subtasks []*TaskTree `json:"subtasks"`
}

// Find returns the subtree whose root task has the given id, searching
// pre-order (this node, then children left to right). The first match wins;
// duplicate ids are not detected. Returns nil when the id is absent.
func (t *TaskTree) Find(id string) *TaskTree {
	if t == nil {
		return nil
	}
	if t.Task.ID == id {
		return t
	}
	for _, sub := range t.Subtasks {
		if found := sub.Find(id); found != nil {
			return found
		}
	}
	return nil
}
