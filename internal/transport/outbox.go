package transport

import (
	"context"
	"sync"
	"time"

	"github.com/luciancaetano/canvasnet"
)

const sendTimeout = 10 * time.Second

type outboxItem struct {
	text    string
	flushed chan struct{}
}

// Outbox defers broadcasts to a dedicated goroutine. Lines are sent in the order
// they were queued, never on the caller's stack.
type Outbox struct {
	registry *Registry

	mu     sync.Mutex
	queue  []outboxItem
	closed bool

	wake    chan struct{}
	done    chan struct{}
	stopped chan struct{}
}

// NewOutbox creates an outbox broadcasting through registry and starts its send loop.
func NewOutbox(registry *Registry) *Outbox {
	o := &Outbox{
		registry: registry,
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}

	go o.run()

	return o
}

// Enqueue queues text for broadcast.
func (o *Outbox) Enqueue(text string) error {
	return o.push(outboxItem{text: text})
}

// Flush blocks until every line queued before the call has been handed to the transports.
func (o *Outbox) Flush(ctx context.Context) error {
	flushed := make(chan struct{})
	if err := o.push(outboxItem{flushed: flushed}); err != nil {
		return err
	}

	select {
	case <-flushed:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting lines, sends what is already queued and waits for the loop to exit.
func (o *Outbox) Close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		<-o.stopped
		return
	}
	o.closed = true
	o.mu.Unlock()

	close(o.done)
	<-o.stopped
}

func (o *Outbox) push(it outboxItem) error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return canvasnet.ErrCanvasClosed
	}
	o.queue = append(o.queue, it)
	o.mu.Unlock()

	select {
	case o.wake <- struct{}{}:
	default:
	}
	return nil
}

func (o *Outbox) take() []outboxItem {
	o.mu.Lock()
	defer o.mu.Unlock()

	batch := o.queue
	o.queue = nil
	return batch
}

func (o *Outbox) deliver(batch []outboxItem) {
	for _, it := range batch {
		if it.flushed != nil {
			close(it.flushed)
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		o.registry.Broadcast(ctx, it.text)
		cancel()
	}
}

func (o *Outbox) run() {
	defer close(o.stopped)

	for {
		if batch := o.take(); len(batch) > 0 {
			o.deliver(batch)
			continue
		}

		select {
		case <-o.wake:
		case <-o.done:
			o.deliver(o.take())
			return
		}
	}
}
