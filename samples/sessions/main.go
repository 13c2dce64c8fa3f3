// Copyright (c) Microsoft. All rights reserved.

// Command sessions walks through the session API: create, list, rename,
// replay a stored conversation, and clean up.
//
// Usage:
//
//	export AGNO_ENDPOINT=http://localhost:7777
//	export AGNO_AGENT_ID=generative-ui-demo
//	go run .
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/microsoft/agno-client-go/agno"
)

func main() {
	// Load .env file if present (ignored if missing).
	_ = godotenv.Load()

	endpoint := os.Getenv("AGNO_ENDPOINT")
	if endpoint == "" {
		endpoint = "http://localhost:7777"
	}
	agentID := os.Getenv("AGNO_AGENT_ID")
	if agentID == "" {
		agentID = "generative-ui-demo"
	}

	client, err := agno.New(endpoint,
		agno.WithAgentID(agentID),
		agno.WithUserID("sessions-sample"),
	)
	if err != nil {
		log.Fatalf("create client: %v", err)
	}
	ctx := context.Background()

	// Create a session and run one exchange in it.
	entry, err := client.CreateSession(ctx, "quarterly review")
	if err != nil {
		log.Fatalf("create session: %v", err)
	}
	fmt.Printf("created session %s (%s)\n", entry.SessionID, entry.SessionName)

	run, err := client.SendMessage(ctx, "Show me monthly revenue",
		agno.WithCallSessionID(entry.SessionID))
	if err != nil {
		log.Fatalf("send message: %v", err)
	}
	state, err := run.Wait(ctx)
	if err != nil {
		log.Fatalf("stream: %v", err)
	}
	fmt.Printf("run %s finished %s with %d messages\n",
		state.RunID, state.Status, len(state.Messages))

	// Rename it, then list everything stored for this agent.
	if _, err := client.RenameSession(ctx, entry.SessionID, "revenue deep dive"); err != nil {
		log.Fatalf("rename session: %v", err)
	}
	sessions, err := client.FetchSessions(ctx)
	if err != nil {
		log.Fatalf("list sessions: %v", err)
	}
	for _, s := range sessions {
		fmt.Printf("  %s  %s\n", s.SessionID, s.SessionName)
	}

	// Replay the stored conversation.
	detail, err := client.LoadSession(ctx, entry.SessionID)
	if err != nil {
		log.Fatalf("load session: %v", err)
	}
	for _, msg := range detail.Messages() {
		fmt.Printf("[%s] %s\n", msg.Role, msg.Content)
		for _, ui := range msg.UI {
			fmt.Printf("  ui component: %s (%s)\n", ui.Component, ui.Title)
		}
	}

	// Clean up.
	if err := client.DeleteSession(ctx, entry.SessionID); err != nil {
		log.Fatalf("delete session: %v", err)
	}
	fmt.Println("session deleted")
}
