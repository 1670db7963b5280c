package transport

import (
	"context"
	"log/slog"
	"sync"

	"github.com/luciancaetano/canvasnet"
)

// Registry is the set of live transports attached to one canvas.
type Registry struct {
	mu         sync.RWMutex
	transports map[string]canvasnet.Transport
	order      []string
	logger     *slog.Logger
}

// NewRegistry creates an empty registry. A nil logger uses slog.Default().
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		transports: make(map[string]canvasnet.Transport),
		logger:     logger,
	}
}

// Add registers t. Adding a transport twice is a no-op.
func (r *Registry) Add(t canvasnet.Transport) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.transports[t.ID()]; ok {
		return
	}
	r.transports[t.ID()] = t
	r.order = append(r.order, t.ID())
}

// Remove unregisters t. Removing an unknown transport is a no-op.
func (r *Registry) Remove(t canvasnet.Transport) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.transports[t.ID()]; !ok {
		return
	}
	delete(r.transports, t.ID())
	for i, id := range r.order {
		if id == t.ID() {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of registered transports.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.transports)
}

// Snapshot returns the current membership in registration order.
func (r *Registry) Snapshot() []canvasnet.Transport {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]canvasnet.Transport, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.transports[id])
	}
	return out
}

// Broadcast sends text to every transport registered when the call starts.
// A failed send is logged and does not stop delivery to the others.
// Returns the number of transports the text was handed to.
func (r *Registry) Broadcast(ctx context.Context, text string) int {
	delivered := 0
	for _, t := range r.Snapshot() {
		if err := t.Send(ctx, text); err != nil {
			r.logger.Warn("broadcast send failed",
				"transport_id", t.ID(),
				"remote_addr", t.RemoteAddr(),
				"error", err,
			)
			continue
		}
		delivered++
	}
	return delivered
}
