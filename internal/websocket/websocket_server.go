package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/luciancaetano/canvasnet"
)

// CheckOriginFn is a function that validates the origin of a WebSocket connection request.
// It receives the HTTP request and returns true if the origin is allowed, false otherwise.
type CheckOriginFn = func(r *http.Request) bool

// OnConnectFn is called when a new transport connects, after the handshake and
// before the endpoint sees it.
//
// Note: This function is called synchronously during connection setup.
// Avoid long-running operations that could block new connections.
type OnConnectFn = func(t canvasnet.Transport, canvasID string)

// OnClientDisconnectFn is invoked when a transport disconnects. voluntary is true
// when the peer closed the connection and false for unexpected or
// server-initiated disconnects.
type OnClientDisconnectFn = func(t canvasnet.Transport, canvasID string, voluntary bool)

type ServerConfig struct {
	Addr               string
	RateLimitConfig    *RateLimitConfig
	CheckOrigin        CheckOriginFn
	OnConnect          OnConnectFn
	OnClientDisconnect OnClientDisconnectFn
	Logger             *slog.Logger
}

// RateLimitConfig defines rate limiting configuration for inbound messages
type RateLimitConfig struct {
	// MessagesPerSecond defines how many messages a browser can send per second
	MessagesPerSecond rate.Limit `yaml:"messages_per_second"`
	// Burst defines the maximum burst size (token bucket capacity)
	Burst int `yaml:"burst"`
	// Enabled determines if rate limiting is active
	Enabled bool `yaml:"enabled"`
}

// DefaultRateLimitConfig returns the default rate limit configuration
// Allows 100 messages per second with burst of 200
func DefaultRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		MessagesPerSecond: 100,
		Burst:             200,
		Enabled:           true,
	}
}

// NoRateLimit returns a configuration with rate limiting disabled
func NoRateLimit() *RateLimitConfig {
	return &RateLimitConfig{
		Enabled: false,
	}
}

// markupRenderer is implemented by endpoints that can render their element.
type markupRenderer interface {
	HTML() string
}

// Server implements the canvasnet.CanvasServer interface
type Server struct {
	addr      string
	server    *http.Server
	listener  net.Listener
	clients   sync.Map // map[string]*Client
	endpoints sync.Map // map[string]canvasnet.Endpoint

	// Rate limiting configuration
	rateLimitConfig *RateLimitConfig

	mu           sync.RWMutex
	running      bool
	upgrader     websocket.Upgrader
	onConnect    OnConnectFn
	onDisconnect OnClientDisconnectFn
	logger       *slog.Logger
}

var _ canvasnet.CanvasServer = (*Server)(nil)

// New creates a new WebSocket server instance with the specified configuration.
//
// If cfg.RateLimitConfig is nil, DefaultRateLimitConfig() is used. If cfg.Logger
// is nil, slog.Default() is used.
//
// The server uses the Gorilla WebSocket library with read/write buffer sizes of 1024 bytes.
// Rate limiting is applied per transport using a token bucket algorithm.
func New(cfg *ServerConfig) *Server {
	if cfg.RateLimitConfig == nil {
		cfg.RateLimitConfig = DefaultRateLimitConfig()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		addr:            cfg.Addr,
		rateLimitConfig: cfg.RateLimitConfig,
		onConnect:       cfg.OnConnect,
		onDisconnect:    cfg.OnClientDisconnect,
		logger:          logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     cfg.CheckOrigin,
		},
	}
}

// Handler returns the HTTP routes served by the server:
//
//	GET /ws/{canvasID}      websocket transport bound to the canvas
//	GET /canvas/{canvasID}  markup of the canvas element
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws/{canvasID}", s.handleWebSocket)
	mux.HandleFunc("GET /canvas/{canvasID}", s.handleMarkup)
	return mux
}

// Start starts the WebSocket server. Cancelling ctx stops it.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New(canvasnet.ErrServerAlreadyRunning)
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	s.listener = ln
	s.server = &http.Server{
		Handler: s.Handler(),
	}
	s.running = true
	s.mu.Unlock()

	go func() {
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("websocket server stopped", "error", err)
		}
	}()

	if done := ctx.Done(); done != nil {
		go func() {
			<-done
			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			s.Stop(stopCtx)
		}()
	}

	s.logger.Info("websocket server listening", "addr", ln.Addr().String())
	return nil
}

// Addr returns the bound listener address, or the configured one before Start.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Stop stops the WebSocket server
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	// Close all transports
	s.clients.Range(func(key, value interface{}) bool {
		if client, ok := value.(*Client); ok {
			client.CloseWithCode(ctx, websocket.CloseGoingAway, "server stopping")
		}
		return true
	})

	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// Mount makes endpoint reachable at /ws/{endpoint.ID()}
func (s *Server) Mount(ctx context.Context, endpoint canvasnet.Endpoint) error {
	if _, loaded := s.endpoints.LoadOrStore(endpoint.ID(), endpoint); loaded {
		return fmt.Errorf("%s: %s", canvasnet.ErrEndpointExists, endpoint.ID())
	}
	return nil
}

// Unmount removes a mounted endpoint
func (s *Server) Unmount(ctx context.Context, id string) error {
	if _, loaded := s.endpoints.LoadAndDelete(id); !loaded {
		return fmt.Errorf("%s: %s", canvasnet.ErrEndpointNotFound, id)
	}
	return nil
}

func (s *Server) endpoint(id string) (canvasnet.Endpoint, bool) {
	if ep, ok := s.endpoints.Load(id); ok {
		return ep.(canvasnet.Endpoint), true
	}
	return nil, false
}

// handleMarkup writes the canvas element for browsers embedding it
func (s *Server) handleMarkup(w http.ResponseWriter, r *http.Request) {
	ep, ok := s.endpoint(r.PathValue("canvasID"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	renderer, ok := ep.(markupRenderer)
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, renderer.HTML())
}

// handleWebSocket handles incoming WebSocket connections
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ep, ok := s.endpoint(r.PathValue("canvasID"))
	if !ok {
		http.Error(w, canvasnet.ErrEndpointNotFound, http.StatusNotFound)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the peer
		s.logger.Debug("websocket upgrade failed", "remote_addr", r.RemoteAddr, "error", err)
		return
	}

	client := NewClient(conn, r.RemoteAddr, s.rateLimitConfig)
	s.clients.Store(client.ID(), client)

	// Start reading messages from the browser
	go s.handleClient(client, ep)
}

// handleClient feeds one connection's lines to its endpoint in arrival order
func (s *Server) handleClient(client *Client, ep canvasnet.Endpoint) {
	logger := s.logger.With("transport_id", client.ID(), "canvas_id", ep.ID())

	defer func() {
		voluntary := client.Context().Err() == nil

		ep.Close(client)
		if s.onDisconnect != nil {
			s.onDisconnect(client, ep.ID(), voluntary)
		}
		s.clients.Delete(client.ID())
		client.Close(context.Background())
	}()

	// Set read deadline to prevent indefinite blocking
	client.conn.SetReadDeadline(time.Now().Add(pongWait))

	// Set pong handler to reset read deadline on pong
	client.conn.SetPongHandler(func(string) error {
		client.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	if s.onConnect != nil {
		s.onConnect(client, ep.ID())
	}
	ep.Open(client)

	for {
		select {
		case <-client.Context().Done():
			return
		default:
			messageType, data, err := client.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
					logger.Warn("unexpected websocket close", "error", err)
				}
				return
			}

			// Reset read deadline after successful read
			client.conn.SetReadDeadline(time.Now().Add(pongWait))

			// Check rate limit before processing message
			if !client.CheckRateLimit(context.Background()) {
				logger.Warn("rate limit exceeded", "remote_addr", client.RemoteAddr())
				client.CloseWithCode(context.Background(), websocket.ClosePolicyViolation, "Rate limit exceeded")
				return
			}

			if messageType != websocket.TextMessage {
				client.CloseWithCode(context.Background(), websocket.CloseUnsupportedData, "text messages only")
				return
			}

			ep.Message(client, string(data))
		}
	}
}

// GetClient returns a transport by ID
func (s *Server) GetClient(id string) (*Client, bool) {
	if client, ok := s.clients.Load(id); ok {
		return client.(*Client), true
	}
	return nil, false
}

// SendToClient sends a line to one transport, bypassing its canvas
func (s *Server) SendToClient(ctx context.Context, clientID string, text string) error {
	client, ok := s.GetClient(clientID)
	if !ok {
		return fmt.Errorf("transport not found: %s", clientID)
	}

	return client.Send(ctx, text)
}
