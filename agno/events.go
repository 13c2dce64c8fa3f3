// Copyright (c) Microsoft. All rights reserved.

package agno

// RunEvent identifies one discrete occurrence in an agent run.
// The values match the tags the AgentOS backend places in the
// "event" field of each streamed frame.
type RunEvent string

const (
	EventRunStarted   RunEvent = "RunStarted"
	EventRunContent   RunEvent = "RunContent"
	EventRunCompleted RunEvent = "RunCompleted"
	EventRunError     RunEvent = "RunError"
	EventRunCancelled RunEvent = "RunCancelled"
	EventRunPaused    RunEvent = "RunPaused"
	EventRunContinued RunEvent = "RunContinued"

	EventToolCallStarted   RunEvent = "ToolCallStarted"
	EventToolCallCompleted RunEvent = "ToolCallCompleted"

	EventReasoningStarted   RunEvent = "ReasoningStarted"
	EventReasoningStep      RunEvent = "ReasoningStep"
	EventReasoningCompleted RunEvent = "ReasoningCompleted"

	EventMemoryUpdateStarted   RunEvent = "MemoryUpdateStarted"
	EventMemoryUpdateCompleted RunEvent = "MemoryUpdateCompleted"

	EventTeamRunStarted   RunEvent = "TeamRunStarted"
	EventTeamRunContent   RunEvent = "TeamRunContent"
	EventTeamRunCompleted RunEvent = "TeamRunCompleted"
	EventTeamRunError     RunEvent = "TeamRunError"
	EventTeamRunCancelled RunEvent = "TeamRunCancelled"
	EventTeamRunPaused    RunEvent = "TeamRunPaused"
	EventTeamRunContinued RunEvent = "TeamRunContinued"

	EventTeamToolCallStarted   RunEvent = "TeamToolCallStarted"
	EventTeamToolCallCompleted RunEvent = "TeamToolCallCompleted"

	EventCustom RunEvent = "CustomEvent"

	// EventUnrecognized and EventParseError are client-side
	// classifications. The backend never sends them: the decoder uses
	// them for unknown tags and for frames that fail to parse.
	EventUnrecognized RunEvent = "Unrecognized"
	EventParseError   RunEvent = "ParseError"
)

// Event is a sealed interface over every streamed event variant.
// Concrete types carry the tag-specific payload fields; use a type
// switch to inspect them. Events are produced only by the decoder and
// arrive in exactly the order the backend emitted them.
type Event interface {
	// Event returns the tag discriminating this variant.
	Event() RunEvent

	// RunID returns the run this event belongs to.
	RunID() string

	// SessionID returns the session the run belongs to, if known.
	SessionID() string

	// base exposes the shared frame fields and prevents external
	// implementations.
	base() *eventBase
}

// eventBase holds the fields common to every frame.
type eventBase struct {
	Run       string `json:"run_id"`
	Session   string `json:"session_id,omitempty"`
	Agent     string `json:"agent_id,omitempty"`
	Team      string `json:"team_id,omitempty"`
	ParentRun string `json:"parent_run_id,omitempty"`
	CreatedAt int64  `json:"created_at,omitempty"`
}

func (e *eventBase) RunID() string     { return e.Run }
func (e *eventBase) SessionID() string { return e.Session }
func (e *eventBase) base() *eventBase  { return e }

// AgentID returns the agent that produced the event. During a team run
// member events carry the member agent's id here.
func (e *eventBase) AgentID() string { return e.Agent }

// TeamID returns the team that owns the run, if any.
func (e *eventBase) TeamID() string { return e.Team }

// ParentRunID is set on member events nested inside a team run.
func (e *eventBase) ParentRunID() string { return e.ParentRun }

// RunStartedEvent signals that the backend accepted the request and
// assigned a run id.
type RunStartedEvent struct {
	eventBase
	Model     string `json:"model,omitempty"`
	AgentName string `json:"agent_name,omitempty"`
}

func (e *RunStartedEvent) Event() RunEvent { return EventRunStarted }

// RunContentEvent carries one incremental content fragment of the
// assistant message.
type RunContentEvent struct {
	eventBase
	Content     string `json:"content"`
	ContentType string `json:"content_type,omitempty"`
}

func (e *RunContentEvent) Event() RunEvent { return EventRunContent }

// RunCompletedEvent marks the run complete. Content, when present, is
// the full final text (the client keeps its accumulated copy).
type RunCompletedEvent struct {
	eventBase
	Content string `json:"content,omitempty"`
}

func (e *RunCompletedEvent) Event() RunEvent { return EventRunCompleted }

// RunErrorEvent reports a backend-side run failure. Terminal.
type RunErrorEvent struct {
	eventBase
	Content string `json:"content,omitempty"`
}

func (e *RunErrorEvent) Event() RunEvent { return EventRunError }

// RunCancelledEvent confirms run cancellation. Terminal.
type RunCancelledEvent struct {
	eventBase
	Reason string `json:"reason,omitempty"`
}

func (e *RunCancelledEvent) Event() RunEvent { return EventRunCancelled }

// RunPausedEvent pauses the run until the frontend executes the listed
// tool calls and continues the run with their results.
type RunPausedEvent struct {
	eventBase
	Tools []*ToolCall `json:"tools,omitempty"`
}

func (e *RunPausedEvent) Event() RunEvent { return EventRunPaused }

// RunContinuedEvent confirms a paused run resumed.
type RunContinuedEvent struct {
	eventBase
}

func (e *RunContinuedEvent) Event() RunEvent { return EventRunContinued }

// ToolCallStartedEvent signals the backend began executing a tool.
type ToolCallStartedEvent struct {
	eventBase
	Tool *ToolCall `json:"tool"`
}

func (e *ToolCallStartedEvent) Event() RunEvent { return EventToolCallStarted }

// ToolCallCompletedEvent carries the finished tool call, including its
// result payload.
type ToolCallCompletedEvent struct {
	eventBase
	Tool *ToolCall `json:"tool"`
}

func (e *ToolCallCompletedEvent) Event() RunEvent { return EventToolCallCompleted }

// ReasoningStartedEvent opens a reasoning phase.
type ReasoningStartedEvent struct {
	eventBase
}

func (e *ReasoningStartedEvent) Event() RunEvent { return EventReasoningStarted }

// ReasoningStepEvent carries one fragment of reasoning text.
type ReasoningStepEvent struct {
	eventBase
	Content          string `json:"content,omitempty"`
	ReasoningContent string `json:"reasoning_content,omitempty"`
}

func (e *ReasoningStepEvent) Event() RunEvent { return EventReasoningStep }

// Text returns the reasoning fragment, preferring the dedicated
// reasoning field over plain content.
func (e *ReasoningStepEvent) Text() string {
	if e.ReasoningContent != "" {
		return e.ReasoningContent
	}
	return e.Content
}

// ReasoningCompletedEvent closes a reasoning phase.
type ReasoningCompletedEvent struct {
	eventBase
}

func (e *ReasoningCompletedEvent) Event() RunEvent { return EventReasoningCompleted }

// MemoryUpdateStartedEvent signals the backend began updating user memory.
type MemoryUpdateStartedEvent struct {
	eventBase
}

func (e *MemoryUpdateStartedEvent) Event() RunEvent { return EventMemoryUpdateStarted }

// MemoryUpdateCompletedEvent signals the memory update finished.
type MemoryUpdateCompletedEvent struct {
	eventBase
}

func (e *MemoryUpdateCompletedEvent) Event() RunEvent { return EventMemoryUpdateCompleted }

// Team-scoped variants share the payload shape of their agent-scoped
// counterparts; only the tag differs.

type TeamRunStartedEvent struct{ RunStartedEvent }

func (e *TeamRunStartedEvent) Event() RunEvent { return EventTeamRunStarted }

type TeamRunContentEvent struct{ RunContentEvent }

func (e *TeamRunContentEvent) Event() RunEvent { return EventTeamRunContent }

type TeamRunCompletedEvent struct{ RunCompletedEvent }

func (e *TeamRunCompletedEvent) Event() RunEvent { return EventTeamRunCompleted }

type TeamRunErrorEvent struct{ RunErrorEvent }

func (e *TeamRunErrorEvent) Event() RunEvent { return EventTeamRunError }

type TeamRunCancelledEvent struct{ RunCancelledEvent }

func (e *TeamRunCancelledEvent) Event() RunEvent { return EventTeamRunCancelled }

type TeamRunPausedEvent struct{ RunPausedEvent }

func (e *TeamRunPausedEvent) Event() RunEvent { return EventTeamRunPaused }

type TeamRunContinuedEvent struct{ RunContinuedEvent }

func (e *TeamRunContinuedEvent) Event() RunEvent { return EventTeamRunContinued }

type TeamToolCallStartedEvent struct{ ToolCallStartedEvent }

func (e *TeamToolCallStartedEvent) Event() RunEvent { return EventTeamToolCallStarted }

type TeamToolCallCompletedEvent struct{ ToolCallCompletedEvent }

func (e *TeamToolCallCompletedEvent) Event() RunEvent { return EventTeamToolCallCompleted }

// CustomEvent carries arbitrary backend-defined data. The reducer
// forwards it verbatim without touching message or tool-call state.
type CustomEvent struct {
	eventBase
	Data map[string]any `json:"data,omitempty"`
}

func (e *CustomEvent) Event() RunEvent { return EventCustom }

// UnrecognizedEvent wraps a frame whose tag is unknown to this client.
// Unknown tags are surfaced rather than silently dropped so that newer
// backend versions degrade visibly.
type UnrecognizedEvent struct {
	eventBase
	Tag string
	Raw []byte
}

func (e *UnrecognizedEvent) Event() RunEvent { return EventUnrecognized }

// ParseErrorEvent wraps a frame that failed to parse. It takes the
// malformed frame's position in the sequence; surrounding valid frames
// are unaffected.
type ParseErrorEvent struct {
	eventBase
	Raw []byte
	Err error
}

func (e *ParseErrorEvent) Event() RunEvent { return EventParseError }
