package canvas

// MouseDownHandler receives the pointer position reported by the browser.
type MouseDownHandler func(x, y string)

// KeyDownHandler receives the key code reported by the browser.
type KeyDownHandler func(keyCode string)

// ResponseHandler receives the value of every response message.
type ResponseHandler func(value string)

// subscriptions holds one handler per event kind. Registering again replaces it.
type subscriptions struct {
	mouseDown MouseDownHandler
	keyDown   KeyDownHandler
	response  ResponseHandler
}

// OnMouseDown registers the mousedown handler, replacing any previous one.
// Handlers run on the canvas event loop, one event at a time.
func (c *Canvas) OnMouseDown(h MouseDownHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs.mouseDown = h
}

// OnKeyDown registers the keydown handler, replacing any previous one.
func (c *Canvas) OnKeyDown(h KeyDownHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs.keyDown = h
}

// OnResponse registers the response handler, replacing any previous one.
func (c *Canvas) OnResponse(h ResponseHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs.response = h
}

func (c *Canvas) fireMouseDown(x, y string) {
	c.mu.RLock()
	h := c.subs.mouseDown
	c.mu.RUnlock()
	if h != nil {
		h(x, y)
	}
}

func (c *Canvas) fireKeyDown(keyCode string) {
	c.mu.RLock()
	h := c.subs.keyDown
	c.mu.RUnlock()
	if h != nil {
		h(keyCode)
	}
}

func (c *Canvas) fireResponse(value string) {
	c.mu.RLock()
	h := c.subs.response
	c.mu.RUnlock()
	if h != nil {
		h(value)
	}
}
