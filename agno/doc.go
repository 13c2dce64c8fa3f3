// Copyright (c) Microsoft. All rights reserved.

// Package agno is a client SDK for the Agno AgentOS HTTP API. It
// streams agent runs, folds the streamed events into conversation
// state, and exposes that state plus lifecycle controls to callers and
// UI bindings.
//
// # Quick Start
//
// Create a [Client] and start a run:
//
//	client, err := agno.New("http://localhost:7777",
//	    agno.WithAgentID("generative-ui-demo"),
//	)
//
//	run, err := client.SendMessage(ctx, "Show me monthly revenue")
//	state, err := run.Wait(ctx)
//	fmt.Println(state.LastMessage().Content)
//
// # Architecture
//
// The package is organized around these key abstractions:
//
//   - [Event]: sealed tagged union over every frame the backend can
//     stream during a run, decoded by [Decoder].
//   - [RunState]: per-run conversation state ([ChatMessage], [ToolCall]
//     lifecycle, pause and error state) maintained by a single reducer.
//   - [Run]: the live handle for one run, a pull-based stream plus
//     state snapshots, spanning pause/continue exchanges.
//   - [Client]: the façade with SendMessage / ContinueRun / CancelRun,
//     session CRUD, and configuration accessors.
//   - [Emitter]: the observer registry bindings subscribe to for
//     granular notifications (message:update, run:paused, ui:update, …).
//
// # Paused runs
//
// A backend tool marked for frontend execution pauses the run. The
// pending calls are surfaced on the run state; execute them and resume:
//
//	state, _ := run.Wait(ctx)
//	if state.Paused {
//	    results := execute(state.PendingTools)
//	    run, _ = client.ContinueRun(ctx, run.ID(), results)
//	    state, _ = run.Wait(ctx)
//	}
//
// # Events
//
// Subscribers observe every mutation through the emitter:
//
//	off := client.Events().On(agno.MessageUpdate, func(payload any) {
//	    msg := payload.(*agno.ChatMessage)
//	    render(msg)
//	})
//	defer off()
//
// Cancellation uses context at every blocking call; [Client.CancelRun]
// additionally aborts the open stream and notifies the backend.
package agno
