// Package canvas drives an HTML canvas living in a remote browser.
//
// A Canvas encodes drawing operations into text lines, broadcasts them to every
// transport attached to it, and turns the lines the browser sends back into
// pointer, keyboard and response events.
//
//	c := canvas.New("board", 640, 480, "Canvas not supported")
//	defer c.Shutdown()
//
//	c.OnMouseDown(func(x, y string) {
//	    c.FillRect(x, y, 10, 10)
//	})
//
//	width, err := c.LineWidth(ctx, nil)
package canvas

import (
	"context"
	"log/slog"
	"maps"
	"sync"

	"github.com/google/uuid"

	"github.com/luciancaetano/canvasnet"
	"github.com/luciancaetano/canvasnet/internal/correlate"
	"github.com/luciancaetano/canvasnet/internal/eventloop"
	"github.com/luciancaetano/canvasnet/internal/protocol"
	"github.com/luciancaetano/canvasnet/internal/transport"
)

// Canvas is the server-side proxy of one remote canvas.
type Canvas struct {
	id         string
	width      int
	height     int
	alt        string
	attributes map[string]string

	logger   *slog.Logger
	registry *transport.Registry
	outbox   *transport.Outbox
	loop     *eventloop.Loop
	pending  *correlate.Tracker

	mu           sync.RWMutex
	lastResponse string
	hasResponse  bool
	subs         subscriptions

	closeOnce sync.Once
}

var _ canvasnet.Endpoint = (*Canvas)(nil)

// Option configures a Canvas.
type Option func(*Canvas)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Canvas) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithAttributes sets extra markup attributes rendered by HTML.
func WithAttributes(attrs map[string]string) Option {
	return func(c *Canvas) {
		c.attributes = maps.Clone(attrs)
	}
}

// New creates a canvas proxy and starts its event loop and send loop.
// An empty id is replaced by a random UUID.
func New(id string, width, height int, alt string, opts ...Option) *Canvas {
	if id == "" {
		id = uuid.New().String()
	}

	c := &Canvas{
		id:         id,
		width:      width,
		height:     height,
		alt:        alt,
		attributes: map[string]string{},
		logger:     slog.Default(),
		pending:    correlate.NewTracker(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.logger = c.logger.With("canvas_id", c.id)
	c.registry = transport.NewRegistry(c.logger)
	c.outbox = transport.NewOutbox(c.registry)
	c.loop = eventloop.New(c.logger)

	return c
}

func (c *Canvas) ID() string  { return c.id }
func (c *Canvas) Width() int  { return c.width }
func (c *Canvas) Height() int { return c.height }
func (c *Canvas) Alt() string { return c.alt }

// Attributes returns a copy of the extra markup attributes.
func (c *Canvas) Attributes() map[string]string {
	return maps.Clone(c.attributes)
}

// LastResponse returns the value of the most recent response message, and false
// if none arrived yet.
func (c *Canvas) LastResponse() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastResponse, c.hasResponse
}

// Transports returns the number of attached transports.
func (c *Canvas) Transports() int {
	return c.registry.Len()
}

// Open attaches t and sends it the registration line. Called by the server once
// the connection is established.
func (c *Canvas) Open(t canvasnet.Transport) {
	err := c.loop.Post(func() {
		// The registration line must precede any broadcast reaching t.
		if err := t.Send(t.Context(), protocol.RegisterLine(c.id)); err != nil {
			c.logger.Warn("registration send failed", "transport_id", t.ID(), "error", err)
			return
		}
		c.registry.Add(t)
		c.logger.Debug("transport attached", "transport_id", t.ID(), "remote_addr", t.RemoteAddr())
	})
	if err != nil {
		c.logger.Warn("transport refused", "transport_id", t.ID(), "error", err)
		t.Close(context.Background())
	}
}

// Message handles one inbound line from t. Malformed lines are logged and dropped.
func (c *Canvas) Message(t canvasnet.Transport, text string) {
	if err := c.Dispatch(text); err != nil {
		c.logger.Warn("dropping canvas message", "transport_id", t.ID(), "error", err)
	}
}

// Close detaches t. Called by the server once the connection is gone.
func (c *Canvas) Close(t canvasnet.Transport) {
	err := c.loop.Post(func() {
		c.registry.Remove(t)
		c.logger.Debug("transport detached", "transport_id", t.ID())
	})
	if err != nil {
		c.registry.Remove(t)
	}
}

// Sync blocks until every event queued so far has been handled and every command
// issued so far has been handed to the transports.
func (c *Canvas) Sync(ctx context.Context) error {
	if err := c.loop.Sync(ctx); err != nil {
		return err
	}
	return c.outbox.Flush(ctx)
}

// Shutdown stops the event and send loops. Queued commands are still sent and
// pending queries fail with canvasnet.ErrCanvasClosed.
func (c *Canvas) Shutdown() {
	c.closeOnce.Do(func() {
		c.pending.CancelAll()
		c.loop.Close()
		c.outbox.Close()
	})
}
