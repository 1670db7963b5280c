// Package correlate matches query replies to the queries that caused them.
package correlate

import (
	"sync"
)

// Tracker hands out query ids and holds one pending waiter per id. Ids handed
// out by Reserve are pending too, with a nil waiter, so replies without an id
// are consumed in the order the queries were sent.
type Tracker struct {
	mu      sync.Mutex
	next    uint64
	pending map[uint64]chan string
	order   []uint64
	closed  bool
}

// NewTracker creates an empty tracker. Ids start at 1.
func NewTracker() *Tracker {
	return &Tracker{pending: make(map[uint64]chan string)}
}

// Begin allocates an id and returns the channel its reply will be delivered on.
// After CancelAll the returned channel is already closed.
func (t *Tracker) Begin() (uint64, <-chan string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.next++
	id := t.next
	ch := make(chan string, 1)
	if t.closed {
		close(ch)
		return id, ch
	}
	t.pending[id] = ch
	t.order = append(t.order, id)
	return id, ch
}

// Reserve allocates an id nobody waits on. Its reply is consumed and dropped.
func (t *Tracker) Reserve() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.next++
	id := t.next
	if !t.closed {
		t.pending[id] = nil
		t.order = append(t.order, id)
	}
	return id
}

// Resolve delivers value to query id. Reports false when id is not pending.
func (t *Tracker) Resolve(id uint64, value string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	ch, ok := t.pending[id]
	if !ok {
		return false
	}
	t.drop(id)
	if ch != nil {
		ch <- value
	}
	return true
}

// ResolveOldest delivers value to the longest-waiting query, for replies that
// carry no id. When that query was reserved the value is dropped. Reports false
// when nothing is pending.
func (t *Tracker) ResolveOldest(value string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.order) == 0 {
		return false
	}
	id := t.order[0]
	ch := t.pending[id]
	t.drop(id)
	if ch != nil {
		ch <- value
	}
	return true
}

// Cancel forgets id without delivering anything.
func (t *Tracker) Cancel(id uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.drop(id)
}

// Pending returns the number of queries awaiting a reply, reserved ones included.
func (t *Tracker) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}

// CancelAll forgets every pending query and closes their channels. Queries
// begun afterwards fail at once.
func (t *Tracker) CancelAll() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.closed = true
	for id, ch := range t.pending {
		if ch != nil {
			close(ch)
		}
		delete(t.pending, id)
	}
	t.order = nil
}

func (t *Tracker) drop(id uint64) {
	if _, ok := t.pending[id]; !ok {
		return
	}
	delete(t.pending, id)
	for i, v := range t.order {
		if v == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}
