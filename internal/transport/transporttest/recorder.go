// Package transporttest provides an in-memory Transport for tests.
package transporttest

import (
	"context"
	"errors"
	"sync"

	"github.com/luciancaetano/canvasnet"
)

// ErrSendFailed is returned by a Recorder configured to fail.
var ErrSendFailed = errors.New("send failed")

// Recorder is a Transport that records every line sent to it.
type Recorder struct {
	id     string
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	lines  []string
	closed bool
	fail   bool

	// OnSend, when set, runs after a line has been recorded.
	OnSend func(text string)
}

var _ canvasnet.Transport = (*Recorder)(nil)

// New creates a Recorder with the given id.
func New(id string) *Recorder {
	ctx, cancel := context.WithCancel(context.Background())
	return &Recorder{id: id, ctx: ctx, cancel: cancel}
}

// Failing creates a Recorder whose sends always fail.
func Failing(id string) *Recorder {
	r := New(id)
	r.fail = true
	return r
}

func (r *Recorder) ID() string               { return r.id }
func (r *Recorder) RemoteAddr() string       { return "pipe:" + r.id }
func (r *Recorder) Context() context.Context { return r.ctx }

func (r *Recorder) Send(ctx context.Context, text string) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return errors.New(canvasnet.ErrConnectionClosed)
	}
	if r.fail {
		r.mu.Unlock()
		return ErrSendFailed
	}
	r.lines = append(r.lines, text)
	hook := r.OnSend
	r.mu.Unlock()

	if hook != nil {
		hook(text)
	}
	return nil
}

func (r *Recorder) Close(ctx context.Context) error {
	return r.CloseWithCode(ctx, 1000, "")
}

func (r *Recorder) CloseWithCode(ctx context.Context, code int, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.closed {
		r.closed = true
		r.cancel()
	}
	return nil
}

func (r *Recorder) IsAlive() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.closed
}

// Lines returns a copy of every line sent so far.
func (r *Recorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}
