package canvas

import (
	"github.com/luciancaetano/canvasnet/internal/protocol"
)

// Dispatch parses one inbound line and routes it.
//
//	mousedown x <x> y <y>       fires the mousedown handler
//	keydown key_code <code>     fires the keydown handler
//	response [@<id>] <tokens…>  stores the value, answers the matching query, fires the response handler
//
// Other commands are logged and ignored. A line that cannot be parsed returns a
// *canvasnet.MalformedMessageError and changes nothing.
// Handlers run later on the event loop; use Sync to wait for them.
func (c *Canvas) Dispatch(raw string) error {
	msg, err := protocol.Parse(raw)
	if err != nil {
		return err
	}

	switch msg.Command {
	case protocol.CmdMouseDown:
		xy, err := msg.Require(raw, protocol.ParamX, protocol.ParamY)
		if err != nil {
			return err
		}
		return c.loop.Post(func() { c.fireMouseDown(xy[0], xy[1]) })

	case protocol.CmdKeyDown:
		code, err := msg.Require(raw, protocol.ParamKeyCode)
		if err != nil {
			return err
		}
		return c.loop.Post(func() { c.fireKeyDown(code[0]) })

	case protocol.CmdResponse:
		id, value := msg.Response()
		c.storeResponse(value)
		if id != 0 {
			if !c.pending.Resolve(id, value) {
				c.logger.Debug("response for unknown query", "query_id", id)
			}
		} else {
			c.pending.ResolveOldest(value)
		}
		return c.loop.Post(func() { c.fireResponse(value) })

	default:
		c.logger.Debug("unhandled canvas command", "command", msg.Command)
		return nil
	}
}

func (c *Canvas) storeResponse(value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastResponse = value
	c.hasResponse = true
}
