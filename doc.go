// Package canvasnet lets server-side Go code drive HTML canvases living in remote browsers.
//
// A canvas on the server is a proxy: drawing calls are encoded as short text lines and
// broadcast to every browser attached to it, and the browser reports pointer presses,
// key presses and query results back as text lines. The browser side is a small script
// that applies each line to its CanvasRenderingContext2D.
//
// # Architecture
//
// The module is split into the proxy and the transport:
//
//   - package canvas holds the Canvas proxy: operation encoding, event subscriptions
//     and query correlation.
//   - package ws serves canvases over WebSocket. Each connection is bound to one mounted
//     canvas by its path, /ws/{canvasID}.
//
// # Quick Start
//
//	import (
//	    "github.com/luciancaetano/canvasnet/canvas"
//	    "github.com/luciancaetano/canvasnet/ws"
//	)
//
//	server := ws.New(ws.NewConfig(":8080", ws.DefaultRateLimitConfig(), ws.AllOrigins(), nil, nil))
//
//	board := canvas.New("board", 640, 480, "Your browser does not support canvas")
//	board.OnMouseDown(func(x, y string) {
//	    board.FillRect(x, y, 10, 10)
//	})
//	server.Mount(ctx, board)
//
//	server.Start(ctx)
//
// # Protocol Format
//
// Every message is one UTF-8 text frame holding whitespace separated tokens.
//
// Server to browser:
//
//	register #<canvasID>          first line on every connection
//	<verb> <arg> <arg> ...        drawing operation, e.g. "fillRect 0 0 10 10"
//	<verb> @<n> <arg> ...         query carrying correlation id n, e.g. "lineWidth @3"
//
// Verbs are the camel-cased operation names: fill_rect becomes fillRect. Styles given
// as gradient or pattern handles use the Object suffix, e.g. "fillStyleObject g1".
//
// Browser to server:
//
//	mousedown x <x> y <y>
//	keydown key_code <code>
//	response [@<n>] <value tokens...>
//
// Key/value commands carry an even number of tokens after the command. A response
// without a correlation id resolves the oldest outstanding query.
//
// Maximum message size: 10MB.
//
// # Concurrency
//
// Each canvas runs a single event loop. Transport attach and detach and every
// subscription handler run on it one at a time, in arrival order. Outbound lines
// go through one send loop per canvas, so every browser sees commands in issue
// order. A slow or failed browser never blocks the others.
//
// Queries block only the calling goroutine and may be issued from handlers.
//
// # Rate Limiting
//
// Inbound messages are limited per connection with a token bucket. Peers exceeding
// the limit are disconnected with close code 1008 (Policy Violation).
//
//	rateLimitConfig := &ws.RateLimitConfig{
//	    MessagesPerSecond: 50,
//	    Burst:             100,
//	    Enabled:           true,
//	}
//
// # Configuration
//
// The canvasd daemon reads a YAML file listing the server address, the rate limit and
// the canvases to mount. See internal/config.
package canvasnet
