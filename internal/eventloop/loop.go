// Package eventloop runs tasks one at a time on a single goroutine.
package eventloop

import (
	"context"
	"log/slog"
	"sync"

	"github.com/luciancaetano/canvasnet"
)

// Loop is a serial executor with an unbounded FIFO queue. Posting never blocks,
// so a task may post further tasks; they run after it returns.
type Loop struct {
	logger *slog.Logger

	mu     sync.Mutex
	queue  []func()
	closed bool

	wake    chan struct{}
	done    chan struct{}
	stopped chan struct{}
}

// New starts a loop. A nil logger uses slog.Default().
func New(logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Loop{
		logger:  logger,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}

	go l.run()

	return l
}

// Post queues task. Returns canvasnet.ErrCanvasClosed once the loop is closed.
func (l *Loop) Post(task func()) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return canvasnet.ErrCanvasClosed
	}
	l.queue = append(l.queue, task)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return nil
}

// Sync blocks until every task posted before the call has run.
func (l *Loop) Sync(ctx context.Context) error {
	ran := make(chan struct{})
	if err := l.Post(func() { close(ran) }); err != nil {
		return err
	}

	select {
	case <-ran:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed once the loop has exited.
func (l *Loop) Done() <-chan struct{} {
	return l.stopped
}

// Close refuses new tasks, runs the ones already queued and waits for the loop to exit.
// Close must not be called from a task.
func (l *Loop) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		<-l.stopped
		return
	}
	l.closed = true
	l.mu.Unlock()

	close(l.done)
	<-l.stopped
}

func (l *Loop) take() []func() {
	l.mu.Lock()
	defer l.mu.Unlock()

	batch := l.queue
	l.queue = nil
	return batch
}

func (l *Loop) runAll(batch []func()) {
	for _, task := range batch {
		l.safeRun(task)
	}
}

// safeRun keeps a panicking task from taking the loop down.
func (l *Loop) safeRun(task func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("event loop task panicked", "panic", r)
		}
	}()
	task()
}

func (l *Loop) run() {
	defer close(l.stopped)

	for {
		if batch := l.take(); len(batch) > 0 {
			l.runAll(batch)
			continue
		}

		select {
		case <-l.wake:
		case <-l.done:
			l.runAll(l.take())
			return
		}
	}
}
