// TaskChunker CLI - command line client for the TaskChunker API
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/jsnyde0/taskchunker-backend/clients/go/taskchunker"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	baseURL := os.Getenv("TASKCHUNKER_URL")
	client := taskchunker.NewClient(baseURL)
	client.ConversationID = os.Getenv("TASKCHUNKER_CONVERSATION")
	cmd := os.Args[1]

	switch cmd {
	case "health":
		resp, err := client.Health()
		exitOnError(err)
		printJSON(resp)

	case "hello":
		resp, err := client.Hello()
		exitOnError(err)
		fmt.Println(resp.Message)

	case "chat":
		if len(os.Args) < 3 {
			usage()
			os.Exit(1)
		}
		resp, err := client.Chat(strings.Join(os.Args[2:], " "))
		exitOnError(err)
		fmt.Printf("conversation: %s\n", resp.ConversationID)
		for i, action := range resp.NextActions {
			fmt.Printf("  %d. %s\n", i+1, action.Description)
		}

	case "chunk":
		if len(os.Args) < 3 {
			usage()
			os.Exit(1)
		}
		resp, err := client.ChunkTitle(strings.Join(os.Args[2:], " "))
		exitOnError(err)
		fmt.Printf("conversation: %s\n", resp.ConversationID)
		printTree(resp.Tree, 0)

	case "rechunk":
		if len(os.Args) < 3 {
			usage()
			os.Exit(1)
		}
		resp, err := client.ChunkTask(os.Args[2])
		exitOnError(err)
		printTree(resp.Tree, 0)

	default:
		usage()
		os.Exit(1)
	}
}

func printTree(tree *taskchunker.TaskTree, depth int) {
	if tree == nil {
		return
	}
	fmt.Printf("%s%s  %s\n", strings.Repeat("  ", depth), tree.Task.ID, tree.Task.Title)
	for _, sub := range tree.Subtasks {
		printTree(sub, depth+1)
	}
}

func printJSON(v interface{}) {
	data, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(data))
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println(`taskchunker - CLI for the TaskChunker API

Usage:
  taskchunker health
  taskchunker hello
  taskchunker chat <message...>
  taskchunker chunk <title...>
  taskchunker rechunk <task-id>

Environment:
  TASKCHUNKER_URL           API base URL (default http://localhost:8080)
  TASKCHUNKER_CONVERSATION  conversation id to continue`)
}
