// Copyright (c) Microsoft. All rights reserved.

package agno

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrorPayload is the payload of message:error emissions.
type ErrorPayload struct {
	RunID string
	Err   string

	// Recoverable is true for errors local to a single frame or tool
	// call; the run keeps streaming. Run-level errors are terminal.
	Recoverable bool
}

// emission is one queued client-event dispatch. The reducer collects
// emissions under its lock and dispatches them after releasing it, so
// subscribers always observe the post-mutation snapshot and may call
// back into the client freely.
type emission struct {
	event   ClientEvent
	payload any
}

// reducer folds the ordered event sequence of one run into its
// RunState. Exactly one reducer is live per run id; the pipeline goroutine
// is the only writer, readers get defensive snapshots.
type reducer struct {
	mu      sync.Mutex
	state   RunState
	emitter *Emitter

	// active is the assistant message under construction for the main
	// (agent or team-leader) run. memberByRun tracks the in-progress
	// message of each nested member run during team runs.
	active      *ChatMessage
	memberByRun map[string]*ChatMessage
}

func newReducer(emitter *Emitter, sessionID string) *reducer {
	r := &reducer{
		emitter:     emitter,
		memberByRun: make(map[string]*ChatMessage),
	}
	r.state = RunState{
		SessionID: sessionID,
		Status:    RunStatusIdle,
	}
	return r
}

// Snapshot returns a deep copy of the current run state.
func (r *reducer) Snapshot() *RunState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

func (r *reducer) snapshotLocked() *RunState {
	cp := r.state
	cp.Messages = make([]*ChatMessage, len(r.state.Messages))
	for i, m := range r.state.Messages {
		cp.Messages[i] = m.clone()
	}
	if len(r.state.PendingTools) > 0 {
		cp.PendingTools = make([]*ToolCall, len(r.state.PendingTools))
		for i, tc := range r.state.PendingTools {
			t := *tc
			cp.PendingTools[i] = &t
		}
	}
	cp.Events = append([]*CustomEvent(nil), r.state.Events...)
	return &cp
}

// Status returns the current state-machine state.
func (r *reducer) Status() RunStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.Status
}

// RunID returns the backend-assigned run id, once known.
func (r *reducer) RunID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.RunID
}

// AddUserMessage records the outgoing user message before the stream
// opens, so snapshots show the full exchange.
func (r *reducer) AddUserMessage(content string) {
	r.mu.Lock()
	r.state.Messages = append(r.state.Messages, &ChatMessage{
		ID:        uuid.NewString(),
		Role:      RoleUser,
		Content:   content,
		Complete:  true,
		CreatedAt: time.Now(),
	})
	snap := r.snapshotLocked()
	r.mu.Unlock()
	r.emitter.Emit(StateChange, snap)
}

// Apply folds one decoded event into the run state and emits the
// corresponding client events. Events arriving after a terminal state
// are dropped: arrival order, not priority, resolves races.
func (r *reducer) Apply(ev Event) {
	r.mu.Lock()
	if r.state.Status.Terminal() {
		r.mu.Unlock()
		return
	}
	emissions := r.applyLocked(ev)
	r.mu.Unlock()
	for _, em := range emissions {
		r.emitter.Emit(em.event, em.payload)
	}
}

func (r *reducer) applyLocked(ev Event) []emission {
	b := ev.base()
	if r.state.RunID == "" && b.Run != "" && b.ParentRun == "" {
		r.state.RunID = b.Run
	}
	if r.state.SessionID == "" && b.Session != "" {
		r.state.SessionID = b.Session
	}

	// Member events of a team run are scoped to their own nested run id.
	if b.ParentRun != "" {
		return r.applyMemberLocked(ev)
	}

	switch e := ev.(type) {
	case *RunStartedEvent, *TeamRunStartedEvent:
		return r.startLocked()

	case *RunContentEvent:
		return r.contentLocked(e.Content)
	case *TeamRunContentEvent:
		return r.contentLocked(e.Content)

	case *ReasoningStepEvent:
		msg := r.activeLocked()
		msg.Reasoning += e.Text()
		return []emission{{MessageUpdate, msg.clone()}}
	case *ReasoningStartedEvent, *ReasoningCompletedEvent:
		return nil
	case *MemoryUpdateStartedEvent, *MemoryUpdateCompletedEvent:
		return nil

	case *ToolCallStartedEvent:
		return r.toolStartedLocked(e.Tool)
	case *TeamToolCallStartedEvent:
		return r.toolStartedLocked(e.Tool)
	case *ToolCallCompletedEvent:
		return r.toolCompletedLocked(e.Tool)
	case *TeamToolCallCompletedEvent:
		return r.toolCompletedLocked(e.Tool)

	case *RunPausedEvent:
		return r.pauseLocked(e.Tools)
	case *TeamRunPausedEvent:
		return r.pauseLocked(e.Tools)
	case *RunContinuedEvent, *TeamRunContinuedEvent:
		return r.resumeLocked()

	case *RunCompletedEvent:
		return r.completeLocked()
	case *TeamRunCompletedEvent:
		return r.completeLocked()

	case *RunErrorEvent:
		return r.errorLocked(e.Content)
	case *TeamRunErrorEvent:
		return r.errorLocked(e.Content)

	case *RunCancelledEvent:
		return r.cancelLocked(e.Reason)
	case *TeamRunCancelledEvent:
		return r.cancelLocked(e.Reason)

	case *CustomEvent:
		r.state.Events = append(r.state.Events, e)
		return []emission{{CustomNotice, e}}

	case *ParseErrorEvent:
		// Local to one frame; the run keeps streaming.
		return []emission{{MessageError, &ErrorPayload{
			RunID:       r.state.RunID,
			Err:         e.Err.Error(),
			Recoverable: true,
		}}}

	case *UnrecognizedEvent:
		slog.Debug("dropping unrecognized run event", "tag", e.Tag, "run_id", e.Run)
		return nil
	}
	return nil
}

func (r *reducer) startLocked() []emission {
	r.state.Status = RunStatusStreaming
	r.state.Streaming = true
	r.state.Paused = false
	msg := &ChatMessage{
		ID:        uuid.NewString(),
		Role:      RoleAssistant,
		CreatedAt: time.Now(),
	}
	r.active = msg
	r.state.Messages = append(r.state.Messages, msg)
	return []emission{
		{MessageUpdate, msg.clone()},
		{StateChange, r.snapshotLocked()},
	}
}

// activeLocked returns the assistant message under construction,
// creating one for backends that skip the RunStarted frame.
func (r *reducer) activeLocked() *ChatMessage {
	if r.active == nil {
		r.active = &ChatMessage{
			ID:        uuid.NewString(),
			Role:      RoleAssistant,
			CreatedAt: time.Now(),
		}
		r.state.Messages = append(r.state.Messages, r.active)
		r.state.Status = RunStatusStreaming
		r.state.Streaming = true
	}
	return r.active
}

func (r *reducer) contentLocked(delta string) []emission {
	msg := r.activeLocked()
	msg.Content += delta
	return []emission{{MessageUpdate, msg.clone()}}
}

func (r *reducer) toolStartedLocked(tc *ToolCall) []emission {
	if tc == nil {
		return nil
	}
	msg := r.activeLocked()
	call := r.findToolLocked(msg, tc.ID)
	if call == nil {
		call = &ToolCall{ID: tc.ID}
		msg.ToolCalls = append(msg.ToolCalls, call)
	}
	call.Name = tc.Name
	call.Arguments = tc.Arguments
	call.External = tc.External
	if !call.Status.terminal() {
		call.Status = ToolCallExecuting
	}
	return []emission{{MessageUpdate, msg.clone()}}
}

func (r *reducer) toolCompletedLocked(tc *ToolCall) []emission {
	if tc == nil {
		return nil
	}
	msg := r.activeLocked()
	call := r.findToolLocked(msg, tc.ID)
	if call == nil {
		call = &ToolCall{ID: tc.ID, Name: tc.Name, Arguments: tc.Arguments}
		msg.ToolCalls = append(msg.ToolCalls, call)
	}
	call.Result = tc.Result
	call.Error = tc.Error
	if call.Status.terminal() {
		// One-directional lifecycle: a terminal call stays terminal.
		return []emission{{MessageUpdate, msg.clone()}}
	}
	if tc.Error != "" {
		call.Status = ToolCallError
	} else {
		call.Status = ToolCallCompleted
	}

	emissions := []emission{{MessageUpdate, msg.clone()}}
	if ui := parseUIComponent(call.Result); ui != nil {
		call.UI = ui
		msg.UI = append(msg.UI, ui)
		emissions = append(emissions, emission{UIUpdate, ui})
	}
	return emissions
}

func (r *reducer) findToolLocked(msg *ChatMessage, id string) *ToolCall {
	for _, call := range msg.ToolCalls {
		if call.ID == id {
			return call
		}
	}
	return nil
}

func (r *reducer) pauseLocked(tools []*ToolCall) []emission {
	r.state.Status = RunStatusPaused
	r.state.Streaming = false
	r.state.Paused = true
	r.state.PendingTools = nil
	msg := r.activeLocked()
	for _, tc := range tools {
		call := r.findToolLocked(msg, tc.ID)
		if call == nil {
			call = &ToolCall{ID: tc.ID}
			msg.ToolCalls = append(msg.ToolCalls, call)
		}
		call.Name = tc.Name
		call.Arguments = tc.Arguments
		call.External = true
		call.Status = ToolCallPending
		r.state.PendingTools = append(r.state.PendingTools, call)
	}
	snap := r.snapshotLocked()
	return []emission{
		{RunPausedNotice, snap},
		{StateChange, snap},
	}
}

func (r *reducer) resumeLocked() []emission {
	if r.state.Status != RunStatusPaused {
		return nil
	}
	r.state.Status = RunStatusStreaming
	r.state.Streaming = true
	r.state.Paused = false
	r.state.PendingTools = nil
	snap := r.snapshotLocked()
	return []emission{
		{RunContinuedNotice, snap},
		{StateChange, snap},
	}
}

func (r *reducer) completeLocked() []emission {
	r.state.Status = RunStatusCompleted
	r.state.Streaming = false
	r.state.Paused = false
	r.state.PendingTools = nil

	var emissions []emission
	for _, m := range r.state.Messages {
		if !m.Complete {
			m.Complete = true
			emissions = append(emissions, emission{MessageComplete, m.clone()})
		}
	}
	if r.active != nil {
		for _, ui := range r.active.UI {
			c := *ui
			emissions = append(emissions, emission{UIComplete, &c})
		}
	}
	emissions = append(emissions, emission{StateChange, r.snapshotLocked()})
	return emissions
}

func (r *reducer) errorLocked(detail string) []emission {
	r.state.Status = RunStatusErrored
	r.state.Streaming = false
	r.state.Paused = false
	r.state.Err = detail
	r.state.PendingTools = nil

	// Tool calls are never left dangling on a run-level error.
	for _, m := range r.state.Messages {
		for _, call := range m.ToolCalls {
			if !call.Status.terminal() {
				call.Status = ToolCallError
			}
		}
		m.Complete = true
	}
	return []emission{
		{MessageError, &ErrorPayload{RunID: r.state.RunID, Err: detail}},
		{StateChange, r.snapshotLocked()},
	}
}

func (r *reducer) cancelLocked(reason string) []emission {
	r.state.Status = RunStatusCancelled
	r.state.Streaming = false
	r.state.Paused = false
	r.state.PendingTools = nil

	for _, m := range r.state.Messages {
		for _, call := range m.ToolCalls {
			if !call.Status.terminal() {
				call.Status = ToolCallCancelled
			}
		}
		m.Complete = true
	}
	if reason != "" {
		slog.Debug("run cancelled", "run_id", r.state.RunID, "reason", reason)
	}
	snap := r.snapshotLocked()
	return []emission{
		{RunCancelledNotice, snap},
		{StateChange, snap},
	}
}

// Fail drives the run to Errored on a client-detected failure, such
// as a transport error with the run already in progress.
func (r *reducer) Fail(detail string) {
	r.mu.Lock()
	if r.state.Status.Terminal() {
		r.mu.Unlock()
		return
	}
	emissions := r.errorLocked(detail)
	r.mu.Unlock()
	for _, em := range emissions {
		r.emitter.Emit(em.event, em.payload)
	}
}

// Resume transitions a paused run back to Streaming once the
// continuation request has been accepted.
func (r *reducer) Resume() {
	r.mu.Lock()
	emissions := r.resumeLocked()
	r.mu.Unlock()
	for _, em := range emissions {
		r.emitter.Emit(em.event, em.payload)
	}
}

// Cancel drives the run to Cancelled locally (user-initiated or
// transport abort). Emits run:cancelled exactly once: a run that
// already reached a terminal state is left untouched.
func (r *reducer) Cancel(reason string) {
	r.mu.Lock()
	if r.state.Status.Terminal() {
		r.mu.Unlock()
		return
	}
	emissions := r.cancelLocked(reason)
	r.mu.Unlock()
	for _, em := range emissions {
		r.emitter.Emit(em.event, em.payload)
	}
}

// applyMemberLocked handles events produced by a team member's nested
// run. Member messages are kept alongside the leader's, tagged with the
// member's agent id.
func (r *reducer) applyMemberLocked(ev Event) []emission {
	b := ev.base()
	switch e := ev.(type) {
	case *RunStartedEvent:
		msg := &ChatMessage{
			ID:        uuid.NewString(),
			Role:      RoleAssistant,
			MemberID:  b.Agent,
			CreatedAt: time.Now(),
		}
		r.memberByRun[b.Run] = msg
		r.state.Messages = append(r.state.Messages, msg)
		return []emission{{MemberStarted, msg.clone()}}

	case *RunContentEvent:
		msg := r.memberLocked(b)
		msg.Content += e.Content
		return []emission{{MemberContent, msg.clone()}}

	case *RunCompletedEvent:
		msg := r.memberLocked(b)
		msg.Complete = true
		delete(r.memberByRun, b.Run)
		return []emission{{MemberCompleted, msg.clone()}}

	case *RunErrorEvent:
		msg := r.memberLocked(b)
		msg.Complete = true
		delete(r.memberByRun, b.Run)
		return []emission{{MemberError, &ErrorPayload{
			RunID:       b.Run,
			Err:         e.Content,
			Recoverable: true, // the team run itself decides terminality
		}}}

	default:
		// Tool calls, reasoning and custom events of members are
		// forwarded without reshaping the member message.
		return []emission{{MemberEvent, ev}}
	}
}

func (r *reducer) memberLocked(b *eventBase) *ChatMessage {
	if msg, ok := r.memberByRun[b.Run]; ok {
		return msg
	}
	msg := &ChatMessage{
		ID:        uuid.NewString(),
		Role:      RoleAssistant,
		MemberID:  b.Agent,
		CreatedAt: time.Now(),
	}
	r.memberByRun[b.Run] = msg
	r.state.Messages = append(r.state.Messages, msg)
	return msg
}
