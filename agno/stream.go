// Copyright (c) Microsoft. All rights reserved.

package agno

import (
	"context"
	"sync"
)

// EventStream is a pull-based iterator over values from a background
// producer. Produced values queue without bound, so the producer side
// of the pipeline keeps advancing whether or not anyone pulls: emitter
// subscribers observe a full run even when the handle is discarded.
//
// Close releases the producer; a context with cancellation works too.
type EventStream[T any] struct {
	cancel    context.CancelFunc
	closeOnce sync.Once

	mu    sync.Mutex
	queue []T
	done  bool
	err   error

	// wake carries at most one pending wakeup for the single consumer.
	wake chan struct{}
}

// newEventStream runs producer in a goroutine. Every value passed to
// emit is queued immediately; a non-nil producer error surfaces from
// the Next call that observes the end of the stream.
func newEventStream[T any](ctx context.Context, producer func(ctx context.Context, emit func(T)) error) *EventStream[T] {
	ctx, cancel := context.WithCancel(ctx)
	s := &EventStream[T]{
		cancel: cancel,
		wake:   make(chan struct{}, 1),
	}

	go func() {
		err := producer(ctx, s.push)
		s.mu.Lock()
		s.done = true
		s.err = err
		s.mu.Unlock()
		s.notify()
	}()

	return s
}

func (s *EventStream[T]) push(v T) {
	s.mu.Lock()
	s.queue = append(s.queue, v)
	s.mu.Unlock()
	s.notify()
}

func (s *EventStream[T]) notify() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Next returns the next value from the stream.
// ok is false when the stream is exhausted. err is non-nil on failure.
func (s *EventStream[T]) Next(ctx context.Context) (val T, ok bool, err error) {
	for {
		s.mu.Lock()
		if len(s.queue) > 0 {
			v := s.queue[0]
			s.queue = s.queue[1:]
			s.mu.Unlock()
			return v, true, nil
		}
		done, doneErr := s.done, s.err
		s.mu.Unlock()

		if done {
			var zero T
			return zero, false, doneErr
		}
		select {
		case <-ctx.Done():
			var zero T
			return zero, false, ctx.Err()
		case <-s.wake:
		}
	}
}

// Collect drains the entire stream and returns all values.
func (s *EventStream[T]) Collect(ctx context.Context) ([]T, error) {
	var items []T
	for {
		val, ok, err := s.Next(ctx)
		if err != nil {
			return items, err
		}
		if !ok {
			return items, nil
		}
		items = append(items, val)
	}
}

// Close cancels the producer. Queued values stay readable; safe to call
// multiple times.
func (s *EventStream[T]) Close() error {
	s.closeOnce.Do(s.cancel)
	return nil
}
