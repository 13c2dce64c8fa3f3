// Copyright (c) Microsoft. All rights reserved.

package agno_test

import (
	"testing"

	"github.com/microsoft/agno-client-go/agno"
)

func TestEmitter_OnAndOff(t *testing.T) {
	emitter := agno.NewEmitter()
	var got []any

	off := emitter.On(agno.MessageUpdate, func(payload any) {
		got = append(got, payload)
	})

	emitter.Emit(agno.MessageUpdate, "a")
	emitter.Emit(agno.StateChange, "ignored")
	emitter.Emit(agno.MessageUpdate, "b")
	off()
	emitter.Emit(agno.MessageUpdate, "c")

	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("got %v, want [a b]", got)
	}
}

func TestEmitter_OffRemovesExactlyOne(t *testing.T) {
	emitter := agno.NewEmitter()
	var first, second int

	offFirst := emitter.On(agno.MessageUpdate, func(any) { first++ })
	emitter.On(agno.MessageUpdate, func(any) { second++ })

	offFirst()
	offFirst() // idempotent
	emitter.Emit(agno.MessageUpdate, nil)

	if first != 0 {
		t.Errorf("removed handler fired %d times", first)
	}
	if second != 1 {
		t.Errorf("remaining handler fired %d times, want 1", second)
	}
}

func TestEmitter_Once(t *testing.T) {
	emitter := agno.NewEmitter()
	var n int
	emitter.Once(agno.StreamEnd, func(any) { n++ })

	emitter.Emit(agno.StreamEnd, nil)
	emitter.Emit(agno.StreamEnd, nil)

	if n != 1 {
		t.Errorf("once handler fired %d times, want 1", n)
	}
}

func TestEmitter_OffEvent(t *testing.T) {
	emitter := agno.NewEmitter()
	var n int
	emitter.On(agno.MessageUpdate, func(any) { n++ })
	emitter.On(agno.MessageUpdate, func(any) { n++ })

	emitter.Off(agno.MessageUpdate)
	emitter.Emit(agno.MessageUpdate, nil)

	if n != 0 {
		t.Errorf("handlers fired %d times after Off", n)
	}
}

func TestEmitter_ReentrantSubscription(t *testing.T) {
	emitter := agno.NewEmitter()
	var late int

	emitter.On(agno.MessageUpdate, func(any) {
		// Subscribing during dispatch must not affect this emission.
		emitter.On(agno.MessageUpdate, func(any) { late++ })
	})

	emitter.Emit(agno.MessageUpdate, nil)
	if late != 0 {
		t.Fatalf("handler added during dispatch fired %d times in same emission", late)
	}

	emitter.Emit(agno.MessageUpdate, nil)
	if late != 1 {
		t.Fatalf("handler added during dispatch fired %d times on next emission, want 1", late)
	}
}

func TestEmitter_ReentrantRemoval(t *testing.T) {
	emitter := agno.NewEmitter()
	var offSecond func()
	var second int

	emitter.On(agno.MessageUpdate, func(any) { offSecond() })
	offSecond = emitter.On(agno.MessageUpdate, func(any) { second++ })

	// The snapshot taken before dispatch still includes the second
	// handler for this emission.
	emitter.Emit(agno.MessageUpdate, nil)
	if second != 1 {
		t.Errorf("second handler fired %d times during removal emission", second)
	}

	emitter.Emit(agno.MessageUpdate, nil)
	if second != 1 {
		t.Errorf("removed handler fired again: %d", second)
	}
}
