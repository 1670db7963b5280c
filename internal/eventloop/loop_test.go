package eventloop

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/luciancaetano/canvasnet"
)

// TestLoopRunsInOrder tests FIFO execution including tasks posted from tasks
func TestLoopRunsInOrder(t *testing.T) {
	t.Parallel()

	l := New(nil)
	defer l.Close()

	gate := make(chan struct{})
	l.Post(func() { <-gate })

	var got []int
	l.Post(func() {
		got = append(got, 1)
		l.Post(func() { got = append(got, 3) })
	})
	l.Post(func() { got = append(got, 2) })
	close(gate)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := l.Sync(ctx); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	// The nested task may land behind the first marker.
	if err := l.Sync(ctx); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	want := []int{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got %v, want %v", got, want)
			break
		}
	}
}

// TestLoopSurvivesPanic tests that a panicking task does not stop the loop
func TestLoopSurvivesPanic(t *testing.T) {
	t.Parallel()

	l := New(nil)
	defer l.Close()

	var ran atomic.Bool
	l.Post(func() { panic("boom") })
	l.Post(func() { ran.Store(true) })

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := l.Sync(ctx); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	if !ran.Load() {
		t.Error("task after panic did not run")
	}
}

// TestLoopClose tests that queued tasks run on close and later posts fail
func TestLoopClose(t *testing.T) {
	t.Parallel()

	l := New(nil)

	var ran atomic.Int32
	for i := 0; i < 5; i++ {
		l.Post(func() { ran.Add(1) })
	}
	l.Close()

	if ran.Load() != 5 {
		t.Errorf("ran = %d, want 5", ran.Load())
	}

	if err := l.Post(func() {}); !errors.Is(err, canvasnet.ErrCanvasClosed) {
		t.Errorf("Post() after Close error = %v, want ErrCanvasClosed", err)
	}

	select {
	case <-l.Done():
	default:
		t.Error("Done() not closed after Close")
	}
}
