// Copyright (c) Microsoft. All rights reserved.

package agno

import "sync"

// ClientEvent names one granular notification emitted to subscribers.
// Every name is emitted after the corresponding state mutation, so
// handlers always observe a consistent post-mutation snapshot.
type ClientEvent string

const (
	// Message lifecycle.
	MessageUpdate    ClientEvent = "message:update"
	MessageComplete  ClientEvent = "message:complete"
	MessageRefreshed ClientEvent = "message:refreshed"
	MessageError     ClientEvent = "message:error"

	// Session lifecycle.
	SessionLoaded  ClientEvent = "session:loaded"
	SessionCreated ClientEvent = "session:created"

	// Stream lifecycle.
	StreamStart ClientEvent = "stream:start"
	StreamEnd   ClientEvent = "stream:end"

	// Aggregate state and configuration.
	StateChange  ClientEvent = "state:change"
	ConfigChange ClientEvent = "config:change"

	// Run lifecycle.
	RunPausedNotice    ClientEvent = "run:paused"
	RunContinuedNotice ClientEvent = "run:continued"
	RunCancelledNotice ClientEvent = "run:cancelled"

	// Generative UI.
	UIUpdate   ClientEvent = "ui:update"
	UIComplete ClientEvent = "ui:complete"
	UIRender   ClientEvent = "ui:render"

	// Pass-through custom events.
	CustomNotice ClientEvent = "custom:event"

	// Team-member-scoped variants.
	MemberStarted   ClientEvent = "member:started"
	MemberContent   ClientEvent = "member:content"
	MemberCompleted ClientEvent = "member:completed"
	MemberError     ClientEvent = "member:error"
	MemberEvent     ClientEvent = "member:event"
)

// Handler receives the payload of one emitted [ClientEvent].
type Handler func(payload any)

// Emitter is an observer registry keyed by event name. It is the one
// shared mutable object visible to multiple subscribers: registration
// and removal are safe from any goroutine, including from inside a
// handler currently being dispatched.
type Emitter struct {
	mu       sync.Mutex
	nextID   int
	handlers map[ClientEvent][]registration
}

type registration struct {
	id   int
	fn   Handler
	once bool
}

// NewEmitter creates an empty Emitter.
func NewEmitter() *Emitter {
	return &Emitter{handlers: make(map[ClientEvent][]registration)}
}

// On registers h for event and returns a function that removes exactly
// this registration. The same handler may be registered multiple times.
func (e *Emitter) On(event ClientEvent, h Handler) (off func()) {
	return e.register(event, h, false)
}

// Once registers h to fire for at most one emission of event.
func (e *Emitter) Once(event ClientEvent, h Handler) (off func()) {
	return e.register(event, h, true)
}

// Off removes every handler registered for event.
func (e *Emitter) Off(event ClientEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.handlers, event)
}

// Emit dispatches payload to every handler registered for event.
// The handler list is snapshotted before dispatch, so handlers that
// subscribe or unsubscribe during dispatch do not affect this emission.
func (e *Emitter) Emit(event ClientEvent, payload any) {
	e.mu.Lock()
	regs := e.handlers[event]
	snapshot := make([]registration, len(regs))
	copy(snapshot, regs)
	if hasOnce(regs) {
		kept := regs[:0]
		for _, r := range regs {
			if !r.once {
				kept = append(kept, r)
			}
		}
		e.handlers[event] = kept
	}
	e.mu.Unlock()

	for _, r := range snapshot {
		r.fn(payload)
	}
}

func (e *Emitter) register(event ClientEvent, h Handler, once bool) func() {
	e.mu.Lock()
	e.nextID++
	id := e.nextID
	e.handlers[event] = append(e.handlers[event], registration{id: id, fn: h, once: once})
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		regs := e.handlers[event]
		for i, r := range regs {
			if r.id == id {
				e.handlers[event] = append(regs[:i:i], regs[i+1:]...)
				return
			}
		}
	}
}

func hasOnce(regs []registration) bool {
	for _, r := range regs {
		if r.once {
			return true
		}
	}
	return false
}
