// Copyright (c) Microsoft. All rights reserved.

package agno

import (
	"context"
	"errors"
	"testing"
)

func TestEventStream_Collect(t *testing.T) {
	stream := newEventStream(context.Background(), func(ctx context.Context, emit func(int)) error {
		for i := 1; i <= 3; i++ {
			emit(i)
		}
		return nil
	})
	defer stream.Close()

	items, err := stream.Collect(context.Background())
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("len = %d, want 3", len(items))
	}
	for i, v := range items {
		if v != i+1 {
			t.Errorf("[%d] = %d, want %d", i, v, i+1)
		}
	}
}

func TestEventStream_Next(t *testing.T) {
	stream := newEventStream(context.Background(), func(ctx context.Context, emit func(string)) error {
		emit("a")
		emit("b")
		return nil
	})
	defer stream.Close()

	ctx := context.Background()

	v1, ok, err := stream.Next(ctx)
	if err != nil || !ok || v1 != "a" {
		t.Errorf("next1: val=%q ok=%v err=%v", v1, ok, err)
	}

	v2, ok, err := stream.Next(ctx)
	if err != nil || !ok || v2 != "b" {
		t.Errorf("next2: val=%q ok=%v err=%v", v2, ok, err)
	}

	_, ok, err = stream.Next(ctx)
	if ok {
		t.Error("expected stream to be exhausted")
	}
	if err != nil {
		t.Errorf("unexpected error after exhaustion: %v", err)
	}
}

func TestEventStream_ProducerNeverBlocks(t *testing.T) {
	produced := make(chan struct{})
	stream := newEventStream(context.Background(), func(ctx context.Context, emit func(int)) error {
		// Nobody is pulling yet; every emit must return immediately.
		for i := 0; i < 100; i++ {
			emit(i)
		}
		close(produced)
		return nil
	})
	defer stream.Close()

	<-produced

	items, err := stream.Collect(context.Background())
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(items) != 100 {
		t.Fatalf("len = %d, want 100", len(items))
	}
	for i, v := range items {
		if v != i {
			t.Fatalf("[%d] = %d, queue reordered", i, v)
		}
	}
}

func TestEventStream_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	stream := newEventStream(ctx, func(ctx context.Context, emit func(int)) error {
		emit(42)
		<-ctx.Done()
		return ctx.Err()
	})

	v, ok, err := stream.Next(ctx)
	if err != nil || !ok || v != 42 {
		t.Fatalf("first next: val=%d ok=%v err=%v", v, ok, err)
	}

	cancel()
	_, ok, err = stream.Next(context.Background())
	if ok {
		t.Error("expected stream to end after cancellation")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	stream.Close()
}

func TestEventStream_ProducerError(t *testing.T) {
	wantErr := errors.New("backend hiccup")

	stream := newEventStream(context.Background(), func(ctx context.Context, emit func(int)) error {
		emit(1)
		return wantErr
	})
	defer stream.Close()

	ctx := context.Background()
	_, _, _ = stream.Next(ctx) // consume the value

	_, ok, err := stream.Next(ctx)
	if ok {
		t.Error("expected stream to be exhausted after error")
	}
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
}
