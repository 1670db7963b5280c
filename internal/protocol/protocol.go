package protocol

import (
	"strings"

	"github.com/luciancaetano/canvasnet"
)

const (
	// MaxMessageSize bounds a single inbound line.
	MaxMessageSize = 10 * 1024 * 1024 // 10MB

	CmdRegister  = "register"
	CmdMouseDown = "mousedown"
	CmdKeyDown   = "keydown"
	CmdResponse  = "response"

	ParamX       = "x"
	ParamY       = "y"
	ParamKeyCode = "key_code"

	// correlationPrefix marks the query id token: "fillStyle @7 red", "response @7 red".
	correlationPrefix = "@"
)

// Message is a parsed inbound line.
//
// For "response" the remaining tokens are kept in order in Tokens and Params is nil.
// For every other command the tokens are paired into Params.
type Message struct {
	Command string
	Tokens  []string
	Params  map[string]string
}

// Parse tokenizes raw on whitespace. The first token is the command name.
func Parse(raw string) (*Message, error) {
	if len(raw) > MaxMessageSize {
		return nil, &canvasnet.MalformedMessageError{Raw: raw[:64], Reason: canvasnet.ErrMessageTooLarge}
	}

	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return nil, &canvasnet.MalformedMessageError{Raw: raw, Reason: "empty message"}
	}

	msg := &Message{Command: fields[0], Tokens: fields[1:]}
	if msg.Command == CmdResponse {
		return msg, nil
	}

	if len(msg.Tokens)%2 != 0 {
		return nil, &canvasnet.MalformedMessageError{Raw: raw, Reason: "odd number of parameter tokens"}
	}

	msg.Params = make(map[string]string, len(msg.Tokens)/2)
	for i := 0; i < len(msg.Tokens); i += 2 {
		msg.Params[msg.Tokens[i]] = msg.Tokens[i+1]
	}
	return msg, nil
}

// Require returns the values of keys, failing if any is missing.
func (m *Message) Require(raw string, keys ...string) ([]string, error) {
	values := make([]string, len(keys))
	for i, k := range keys {
		v, ok := m.Params[k]
		if !ok {
			return nil, &canvasnet.MalformedMessageError{Raw: raw, Reason: "missing parameter " + k}
		}
		values[i] = v
	}
	return values, nil
}

// Response splits a response message into its correlation id (0 when absent)
// and its value: the remaining tokens joined by a single space.
func (m *Message) Response() (id uint64, value string) {
	tokens := m.Tokens
	if len(tokens) > 0 {
		if n, ok := ParseCorrelation(tokens[0]); ok {
			id = n
			tokens = tokens[1:]
		}
	}
	return id, strings.Join(tokens, " ")
}

// RegisterLine is sent to a transport right after it opens.
func RegisterLine(canvasID string) string {
	return CmdRegister + " #" + canvasID
}
