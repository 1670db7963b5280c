package protocol

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/luciancaetano/canvasnet"
)

// Identifier is implemented by handle arguments (gradients, patterns, image data).
// Handles are rendered on the wire by id.
type Identifier interface {
	ID() string
}

// objectSuffix is appended to style verbs whose value is a handle.
const objectSuffix = "Object"

var styleOps = map[string]bool{
	"fill_style":   true,
	"stroke_style": true,
}

// Command is one encoded outbound operation.
type Command struct {
	Op   string
	Verb string
	Args []string
	Kind Kind
}

// Encode resolves name against the operation table, checks its arity and renders
// its arguments. Trailing nil arguments are omitted, so optional arguments can
// be passed as nil; a nil before a non-nil argument is an ArgumentCountError.
// Nothing is sent; an error here means nothing must be sent.
func Encode(name string, args ...any) (*Command, error) {
	op, ok := Lookup(name)
	if !ok {
		return nil, &canvasnet.UnsupportedOperationError{Op: name}
	}

	for len(args) > 0 && args[len(args)-1] == nil {
		args = args[:len(args)-1]
	}
	for i, a := range args {
		if a == nil {
			return nil, fmt.Errorf("%s: argument %d is nil: %w", name, i+1, canvasnet.ErrArgumentCount)
		}
	}
	if len(args) < op.Min || len(args) > op.Max {
		return nil, &canvasnet.ArgumentCountError{Op: name, Got: len(args), Min: op.Min, Max: op.Max}
	}

	cmd := &Command{
		Op:   op.Name,
		Verb: op.Verb,
		Kind: op.Kind,
		Args: make([]string, len(args)),
	}
	for i, a := range args {
		cmd.Args[i] = FormatArg(a)
	}

	if styleOps[name] && len(args) > 0 {
		if _, isHandle := args[0].(Identifier); isHandle {
			cmd.Verb += objectSuffix
		}
	}
	return cmd, nil
}

// Line renders the command as a wire line: "<Verb> <arg1> ... <argN>".
func (c *Command) Line() string {
	if len(c.Args) == 0 {
		return c.Verb
	}
	return c.Verb + " " + strings.Join(c.Args, " ")
}

// CorrelatedLine renders a query carrying its id right after the verb:
// "<Verb> @<id> <arg1> ... <argN>".
func (c *Command) CorrelatedLine(id uint64) string {
	parts := make([]string, 0, len(c.Args)+2)
	parts = append(parts, c.Verb, CorrelationToken(id))
	parts = append(parts, c.Args...)
	return strings.Join(parts, " ")
}

// FormatArg renders one positional argument as text.
func FormatArg(a any) string {
	switch v := a.(type) {
	case nil:
		return ""
	case string:
		return v
	case Identifier:
		return v.ID()
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case uint:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case bool:
		return strconv.FormatBool(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
