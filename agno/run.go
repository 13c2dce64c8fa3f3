// Copyright (c) Microsoft. All rights reserved.

package agno

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// Run is the live handle for one agent run. It exposes the decoded
// event sequence for pull-based consumption and the reducer's state
// snapshots; subscribers on the client emitter observe the same
// events without holding the handle.
//
// One Run may span multiple HTTP exchanges: a pause hands the stream
// back, and [Client.ContinueRun] attaches the continuation to the same
// handle.
type Run struct {
	client *Client
	red    *reducer

	mu     sync.Mutex
	stream *EventStream[Event]
	cancel context.CancelFunc
}

// ID returns the backend-assigned run id. Empty until the first frame
// for the run has been decoded.
func (r *Run) ID() string { return r.red.RunID() }

// State returns a defensive snapshot of the run's current state.
// It never blocks on the network.
func (r *Run) State() *RunState { return r.red.Snapshot() }

// Status returns the run's state-machine state.
func (r *Run) Status() RunStatus { return r.red.Status() }

// Next returns the next decoded event of the current stream segment.
// ok is false when the segment is exhausted: the run is then either
// terminal or paused (check [Run.Status]).
func (r *Run) Next(ctx context.Context) (Event, bool, error) {
	return r.segment().Next(ctx)
}

// Wait consumes the remainder of the current stream segment and
// returns the resulting state snapshot. For a run that pauses, Wait
// returns with Status == RunStatusPaused; continue it and Wait again.
func (r *Run) Wait(ctx context.Context) (*RunState, error) {
	for {
		_, ok, err := r.Next(ctx)
		if err != nil {
			return r.red.Snapshot(), err
		}
		if !ok {
			return r.red.Snapshot(), nil
		}
	}
}

// Close aborts the current stream segment. The reducer is driven to
// Cancelled unless the run already reached a terminal state.
func (r *Run) Close() error {
	r.mu.Lock()
	stream, cancel := r.stream, r.cancel
	r.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	if stream != nil {
		_ = stream.Close()
	}
	r.red.Cancel("stream closed")
	return nil
}

func (r *Run) segment() *EventStream[Event] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stream
}

// attach wires one HTTP response body into the decode/reduce pipeline.
// The pipeline goroutine reads, decodes, and applies every event to the
// reducer unconditionally; pulling the handle is optional, so bindings
// that only subscribe via the emitter still observe the full run.
func (r *Run) attach(ctx context.Context, body io.ReadCloser) {
	ctx, cancel := context.WithCancel(ctx)
	emitter := r.client.emitter
	red := r.red

	stream := newEventStream(ctx, func(ctx context.Context, emit func(Event)) error {
		defer body.Close()
		defer emitter.Emit(StreamEnd, red.Snapshot())

		dec := NewDecoder()
		buf := make([]byte, 4096)
		for {
			n, readErr := body.Read(buf)
			for _, ev := range dec.Feed(buf[:n]) {
				red.Apply(ev)
				emit(ev)
			}
			if readErr == nil {
				if err := ctx.Err(); err != nil {
					red.Cancel("stream cancelled")
					return err
				}
				continue
			}
			if readErr == io.EOF {
				for _, ev := range dec.Flush() {
					red.Apply(ev)
					emit(ev)
				}
				return nil
			}
			if isCancellation(readErr) || ctx.Err() != nil {
				// Events already decoded before the abort landed have
				// been applied; the rest of the body is abandoned.
				red.Cancel("stream cancelled")
				return ctx.Err()
			}
			err := fmt.Errorf("%w: read stream: %v", ErrTransport, readErr)
			red.Fail(err.Error())
			return err
		}
	})

	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	r.stream = stream
	r.cancel = cancel
	r.mu.Unlock()

	emitter.Emit(StreamStart, red.Snapshot())
}
