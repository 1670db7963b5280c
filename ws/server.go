package ws

import (
	"log/slog"
	"net/http"

	"github.com/luciancaetano/canvasnet/internal/websocket"
)

type Server = websocket.Server
type RateLimitConfig = websocket.RateLimitConfig
type CheckOriginFn = websocket.CheckOriginFn
type OnConnectFn = websocket.OnConnectFn
type OnDisconnectFn = websocket.OnClientDisconnectFn
type ServerConfig = *websocket.ServerConfig

// New creates a new canvas WebSocket server with rate limiting and connection callbacks.
//
// The returned server satisfies canvasnet.CanvasServer. Mount canvases on it before or
// after Start; browsers connect to /ws/{canvasID} and can fetch the element markup
// from /canvas/{canvasID}.
//
// Example:
//
//	server := ws.New(ws.NewConfig(":8080", ws.DefaultRateLimitConfig(), ws.AllOrigins(),
//	    func(t canvasnet.Transport, canvasID string) {
//	        log.Printf("browser %s attached to %s", t.RemoteAddr(), canvasID)
//	    }, nil))
func New(cfg ServerConfig) *Server {
	return websocket.New(cfg)
}

// NewConfig builds a ServerConfig. onConnect and onDisconnect may be nil.
func NewConfig(addr string, rateLimitConfig *RateLimitConfig, checkOrigin CheckOriginFn, onConnect OnConnectFn, onDisconnect OnDisconnectFn) ServerConfig {
	return &websocket.ServerConfig{
		Addr:               addr,
		RateLimitConfig:    rateLimitConfig,
		CheckOrigin:        checkOrigin,
		OnConnect:          onConnect,
		OnClientDisconnect: onDisconnect,
	}
}

// WithLogger sets the server logger on cfg and returns it.
func WithLogger(cfg ServerConfig, logger *slog.Logger) ServerConfig {
	cfg.Logger = logger
	return cfg
}

// AllOrigins returns the default checkOrigin function that allows all origins
func AllOrigins() CheckOriginFn {
	return func(r *http.Request) bool {
		return true
	}
}

// DefaultRateLimitConfig returns the default rate limit configuration
func DefaultRateLimitConfig() *RateLimitConfig {
	return websocket.DefaultRateLimitConfig()
}

// NoRateLimit returns a configuration with rate limiting disabled
func NoRateLimit() *RateLimitConfig {
	return websocket.NoRateLimit()
}
