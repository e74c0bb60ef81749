package models

import (
	"encoding/json"
	"testing"
	"time"
)

func testTree() *TaskTree {
	return &TaskTree{
		Task: Task{ID: "root", Title: "Plan trip"},
		Subtasks: []*TaskTree{
			{
				Task: Task{ID: "a", ParentID: "root", Title: "Book flights"},
				Subtasks: []*TaskTree{
					{Task: Task{ID: "a1", ParentID: "a", Title: "Compare prices"}},
				},
			},
			{Task: Task{ID: "b", ParentID: "root", Title: "Book hotel"}},
		},
	}
}

func TestFindRoot(t *testing.T) {
	tree := testTree()
	found := tree.Find("root")
	if found != tree {
		t.Fatal("expected root node itself")
	}
}

func TestFindNested(t *testing.T) {
	tree := testTree()
	found := tree.Find("a1")
	if found == nil {
		t.Fatal("expected to find a1")
	}
	if found.Task.Title != "Compare prices" {
		t.Errorf("wrong node: %+v", found.Task)
	}
}

func TestFindReturnsSubtree(t *testing.T) {
	tree := testTree()
	found := tree.Find("a")
	if found == nil {
		t.Fatal("expected to find a")
	}
	if len(found.Subtasks) != 1 || found.Subtasks[0].Task.ID != "a1" {
		t.Error("expected subtree with its children intact")
	}
}

func TestFindAbsent(t *testing.T) {
	tree := testTree()
	if found := tree.Find("nope"); found != nil {
		t.Fatalf("expected nil, got %+v", found.Task)
	}
}

func TestFindNilReceiver(t *testing.T) {
	var tree *TaskTree
	if tree.Find("root") != nil {
		t.Fatal("nil tree should find nothing")
	}
}

func TestFindDuplicateIDsPreOrder(t *testing.T) {
	// Duplicate ids are out of contract, but traversal order must be
	// deterministic: the node itself before children, children left to right.
	tree := &TaskTree{
		Task: Task{ID: "root"},
		Subtasks: []*TaskTree{
			{
				Task:     Task{ID: "x", Title: "first"},
				Subtasks: []*TaskTree{{Task: Task{ID: "x", Title: "nested"}}},
			},
			{Task: Task{ID: "x", Title: "second"}},
		},
	}
	found := tree.Find("x")
	if found == nil || found.Task.Title != "first" {
		t.Fatalf("expected first pre-order match, got %+v", found)
	}
}

func TestTaskTimestampWireFormat(t *testing.T) {
	task := Task{
		ID:        "t1",
		Title:     "x",
		CreatedAt: time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC),
	}
	data, err := json.Marshal(task)
	if err != nil {
		t.Fatal(err)
	}
	var decoded Task
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if !decoded.CreatedAt.Equal(task.CreatedAt) {
		t.Errorf("timestamp not preserved: %v != %v", decoded.CreatedAt, task.CreatedAt)
	}
}
