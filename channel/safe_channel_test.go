package channels

import (
	"context"
	"testing"
	"time"
)

func TestSafeChannel_WriteRead(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := New[int](ctx, 2)

	if err := ch.Write(1); err != nil {
		t.Fatalf("Write() failed: %v", err)
	}
	if err := ch.Write(2); err != nil {
		t.Fatalf("Write() failed: %v", err)
	}

	ch.Close()

	var got []int
	for v := range ch.Read() {
		got = append(got, v)
	}

	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("Read() = %v, want [1 2]", got)
	}
}

func TestSafeChannel_WriteAfterClose(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := New[string](ctx, 1)
	ch.Close()

	if err := ch.Write("x"); err == nil {
		t.Error("Write() after Close() did not return an error")
	}
}

func TestSafeChannel_DoubleCloseIsSafe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := New[int](ctx)
	ch.Close()
	ch.Close()
}

func TestSafeChannel_ClosedOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	ch := New[int](ctx, 1)
	cancel()

	deadline := time.After(time.Second)
	for {
		if err := ch.Write(1); err != nil {
			return
		}
		// Drain so the buffered slot frees up while waiting for the watcher.
		select {
		case <-ch.Read():
		case <-deadline:
			t.Fatal("channel not closed after context cancellation")
		}
	}
}
