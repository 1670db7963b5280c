package canvasnet

import "context"

// CanvasServer defines the interface for a WebSocket server that hosts remote canvases.
//
// Every connection is bound to exactly one mounted canvas, selected by the request path
// (/ws/{canvasID}). Messages exchanged over the connection are plain text lines.
//
// Example usage:
//
//	import "github.com/luciancaetano/canvasnet/ws"
//
//	server := ws.New(ws.NewConfig(":8080", ws.DefaultRateLimitConfig(), ws.AllOrigins(), nil, nil))
//
//	c := canvas.New("board", 640, 480, "Your browser does not support canvas")
//	server.Mount(ctx, c)
//
//	server.Start(ctx)
type CanvasServer interface {
	// Start starts the WebSocket server and begins listening for connections.
	// The server will continue running until Stop is called or the context is cancelled.
	//
	// Returns an error if the server is already running or if there's a problem
	// binding to the network address.
	Start(ctx context.Context) error

	// Stop gracefully stops the WebSocket server and closes all transports.
	Stop(ctx context.Context) error

	// Mount makes an endpoint reachable at /ws/{endpoint.ID()}.
	//
	// Returns an error if an endpoint with the same id is already mounted.
	Mount(ctx context.Context, endpoint Endpoint) error

	// Unmount removes a mounted endpoint. Transports already attached to it stay open
	// until they disconnect.
	Unmount(ctx context.Context, id string) error
}

// Endpoint is the server-side peer of a browser canvas.
//
// The server calls Open once a connection completes its handshake, Message for every
// inbound text line in arrival order, and Close once the connection is gone.
type Endpoint interface {
	ID() string
	Open(t Transport)
	Message(t Transport, text string)
	Close(t Transport)
}

// Transport represents one connected channel capable of sending text lines.
//
// Each transport has a unique identifier and maintains its own connection state.
// The transport's context is automatically cancelled when the connection closes.
type Transport interface {
	// ID returns a unique identifier for the connection.
	ID() string

	// RemoteAddr returns the peer's remote network address, typically "IP:port".
	RemoteAddr() string

	// Context returns the transport's lifecycle context.
	//
	// This context is automatically cancelled when the connection closes.
	Context() context.Context

	// Send queues one text line for delivery.
	//
	// Returns an error if the connection is closed or the context is cancelled.
	//
	// Example:
	//
	//	if err := t.Send(ctx, "fillRect 0 0 10 10"); err != nil {
	//	    log.Printf("Failed to send: %v", err)
	//	}
	Send(ctx context.Context, text string) error

	// Close closes the connection gracefully.
	//
	// This is equivalent to calling CloseWithCode with websocket.CloseNormalClosure.
	Close(ctx context.Context) error

	// CloseWithCode closes the connection with a specific WebSocket close code and optional reason.
	//
	// Common close codes:
	//   - 1000 (websocket.CloseNormalClosure): Normal closure
	//   - 1001 (websocket.CloseGoingAway): Endpoint going away
	//   - 1008 (websocket.ClosePolicyViolation): Rate limit exceeded
	CloseWithCode(ctx context.Context, code int, reason string) error

	// IsAlive returns true if the connection is still active.
	IsAlive() bool
}
