// Copyright (c) Microsoft. All rights reserved.

package agno

import (
	"encoding/json"
	"time"
)

// Role identifies the author of a [ChatMessage].
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCallStatus tracks the lifecycle of a [ToolCall]. Transitions are
// one-directional: pending → executing → completed|error. A cancelled
// run forces any non-terminal tool call to cancelled.
type ToolCallStatus string

const (
	ToolCallPending   ToolCallStatus = "pending"
	ToolCallExecuting ToolCallStatus = "executing"
	ToolCallCompleted ToolCallStatus = "completed"
	ToolCallError     ToolCallStatus = "error"
	ToolCallCancelled ToolCallStatus = "cancelled"
)

// terminal reports whether no further status transitions are allowed.
func (s ToolCallStatus) terminal() bool {
	return s == ToolCallCompleted || s == ToolCallError || s == ToolCallCancelled
}

// ToolCall is a backend-requested invocation. Calls flagged for
// external execution pause the run until the frontend reports a result
// via [Client.ContinueRun].
type ToolCall struct {
	ID        string          `json:"tool_call_id"`
	Name      string          `json:"tool_name"`
	Arguments map[string]any  `json:"tool_args,omitempty"`
	Status    ToolCallStatus  `json:"status,omitempty"`
	Result    json.RawMessage `json:"result,omitempty"`
	Error     string          `json:"tool_call_error,omitempty"`
	External  bool            `json:"external_execution_required,omitempty"`

	// UI holds the generative-UI specification extracted from the
	// result, when the result is a renderable component.
	UI *UIComponent `json:"-"`
}

// ToolResult reports the outcome of a frontend-executed tool call when
// continuing a paused run.
type ToolResult struct {
	ToolCallID string          `json:"tool_call_id"`
	Result     json.RawMessage `json:"result,omitempty"`
	Error      string          `json:"tool_call_error,omitempty"`
}

// UIComponent is a tagged generative-UI specification produced by a
// tool result. The core treats it as opaque; the genui package maps
// Component to a renderer after validating Data.
type UIComponent struct {
	Component string          `json:"component"`
	ID        string          `json:"id,omitempty"`
	Title     string          `json:"title,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// parseUIComponent extracts a UIComponent from a tool result payload.
// A result qualifies when it is a JSON object with a "component"
// discriminator. Anything else returns nil.
func parseUIComponent(result json.RawMessage) *UIComponent {
	if len(result) == 0 {
		return nil
	}
	var c UIComponent
	if err := json.Unmarshal(result, &c); err != nil || c.Component == "" {
		return nil
	}
	return &c
}

// ChatMessage is one message of a conversation. Assistant messages are
// built incrementally from content deltas; Complete flips to true
// exactly once, when the run reaches a terminal state.
type ChatMessage struct {
	ID        string         `json:"id"`
	Role      Role           `json:"role"`
	Content   string         `json:"content"`
	Reasoning string         `json:"reasoning,omitempty"`
	ToolCalls []*ToolCall    `json:"tool_calls,omitempty"`
	UI        []*UIComponent `json:"ui,omitempty"`
	Complete  bool           `json:"complete"`
	CreatedAt time.Time      `json:"created_at"`

	// MemberID is set on messages produced by a team member's nested
	// run; empty for the team leader and for plain agent runs.
	MemberID string `json:"member_id,omitempty"`
}

// clone returns a deep copy so snapshots stay isolated from the reducer.
func (m *ChatMessage) clone() *ChatMessage {
	cp := *m
	if len(m.ToolCalls) > 0 {
		cp.ToolCalls = make([]*ToolCall, len(m.ToolCalls))
		for i, tc := range m.ToolCalls {
			t := *tc
			cp.ToolCalls[i] = &t
		}
	}
	if len(m.UI) > 0 {
		cp.UI = make([]*UIComponent, len(m.UI))
		for i, u := range m.UI {
			c := *u
			cp.UI[i] = &c
		}
	}
	return &cp
}

// RunStatus is the reducer's state-machine state for one run.
type RunStatus string

const (
	RunStatusIdle      RunStatus = "idle"
	RunStatusStreaming RunStatus = "streaming"
	RunStatusPaused    RunStatus = "paused"
	RunStatusCompleted RunStatus = "completed"
	RunStatusErrored   RunStatus = "errored"
	RunStatusCancelled RunStatus = "cancelled"
)

// Terminal reports whether the run accepts no further events.
func (s RunStatus) Terminal() bool {
	return s == RunStatusCompleted || s == RunStatusErrored || s == RunStatusCancelled
}

// RunState is the aggregate conversation state for one run, owned
// exclusively by its reducer. Callers receive defensive snapshots.
type RunState struct {
	RunID     string         `json:"run_id"`
	SessionID string         `json:"session_id,omitempty"`
	Status    RunStatus      `json:"status"`
	Streaming bool           `json:"streaming"`
	Paused    bool           `json:"paused"`
	Messages  []*ChatMessage `json:"messages"`

	// PendingTools lists tool calls awaiting frontend execution while
	// the run is paused.
	PendingTools []*ToolCall `json:"pending_tools,omitempty"`

	// Events collects CustomEvent payloads, in arrival order.
	Events []*CustomEvent `json:"events,omitempty"`

	// Err holds the recorded run-level error, if the run errored.
	Err string `json:"error,omitempty"`
}

// LastMessage returns the most recent message, or nil when empty.
func (s *RunState) LastMessage() *ChatMessage {
	if len(s.Messages) == 0 {
		return nil
	}
	return s.Messages[len(s.Messages)-1]
}

// SessionEntry describes one stored session as returned by the
// backend's session listing.
type SessionEntry struct {
	SessionID   string         `json:"session_id"`
	SessionName string         `json:"session_name,omitempty"`
	UserID      string         `json:"user_id,omitempty"`
	ComponentID string         `json:"component_id,omitempty"`
	Title       string         `json:"title,omitempty"`
	CreatedAt   int64          `json:"created_at,omitempty"`
	UpdatedAt   int64          `json:"updated_at,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// SessionDetail is a session together with its stored runs.
type SessionDetail struct {
	SessionEntry
	Runs []*StoredRun `json:"runs,omitempty"`
}

// StoredRun is one persisted run of a session, replayed as finished
// messages rather than a live stream.
type StoredRun struct {
	RunID     string         `json:"run_id"`
	Input     string         `json:"input,omitempty"`
	Content   string         `json:"content,omitempty"`
	ToolCalls []*ToolCall    `json:"tools,omitempty"`
	CreatedAt int64          `json:"created_at,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}
