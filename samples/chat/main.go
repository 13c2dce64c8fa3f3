// Copyright (c) Microsoft. All rights reserved.

// Command chat is a terminal chat over an AgentOS endpoint with live
// streaming, pause/continue for frontend tools, and generative-UI
// rendering.
//
// Usage:
//
//	export AGNO_ENDPOINT=http://localhost:7777
//	export AGNO_AGENT_ID=generative-ui-demo
//	export AGNO_TEAM_ID=simple-team     # optional, switches to team mode
//	export AGNO_USER_ID=demo-user       # optional
//	go run .
package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/microsoft/agno-client-go/agno"
	"github.com/microsoft/agno-client-go/teaui"
)

func main() {
	// Load .env file if present (ignored if missing).
	_ = godotenv.Load()

	// Enable debug logging if requested
	if os.Getenv("DEBUG") != "" {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	endpoint := os.Getenv("AGNO_ENDPOINT")
	if endpoint == "" {
		endpoint = "http://localhost:7777"
	}

	opts := []agno.Option{
		agno.WithUserID(os.Getenv("AGNO_USER_ID")),
	}
	if teamID := os.Getenv("AGNO_TEAM_ID"); teamID != "" {
		opts = append(opts, agno.WithMode(agno.ModeTeam), agno.WithTeamID(teamID))
	} else {
		agentID := os.Getenv("AGNO_AGENT_ID")
		if agentID == "" {
			agentID = "generative-ui-demo"
		}
		opts = append(opts, agno.WithAgentID(agentID))
	}
	if token := os.Getenv("AGNO_TOKEN"); token != "" {
		opts = append(opts, agno.WithToken(token))
	}

	client, err := agno.New(endpoint, opts...)
	if err != nil {
		log.Fatalf("create client: %v", err)
	}

	if err := teaui.Run(context.Background(), client, teaui.Options{
		Placeholder: "Ask for monthly revenue, rentals, or a dashboard",
	}); err != nil {
		log.Fatalf("chat: %v", err)
	}
}
