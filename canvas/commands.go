package canvas

import (
	"context"
	"fmt"

	"github.com/luciancaetano/canvasnet"
	"github.com/luciancaetano/canvasnet/internal/protocol"
)

// Draw issues any supported operation without waiting for a reply.
//
// op is the canonical name (fill_rect, arc_to, ...). Handles passed as arguments
// are sent by id. An unknown op or a wrong argument count fails before anything
// is sent. Query operations sent through Draw still carry an id, so their reply
// is never mistaken for the answer to a concurrent Query.
func (c *Canvas) Draw(op string, args ...any) error {
	cmd, err := protocol.Encode(op, args...)
	if err != nil {
		return err
	}

	if cmd.Kind != protocol.Query {
		return c.send(cmd.Line())
	}

	id := c.pending.Reserve()
	if err := c.send(cmd.CorrelatedLine(id)); err != nil {
		c.pending.Cancel(id)
		return err
	}
	return nil
}

// Query issues a query operation and waits for the reply carrying its id.
//
// It returns canvasnet.ErrQueryCancelled (wrapping the context error) when ctx
// ends first, and canvasnet.ErrCanvasClosed when the canvas shuts down.
// Query must not be called with a context that never ends if the browser may
// never answer.
func (c *Canvas) Query(ctx context.Context, op string, args ...any) (string, error) {
	cmd, err := protocol.Encode(op, args...)
	if err != nil {
		return "", err
	}
	if cmd.Kind != protocol.Query {
		return "", fmt.Errorf("%s: %w", op, canvasnet.ErrNotQuery)
	}

	id, reply := c.pending.Begin()
	if err := c.send(cmd.CorrelatedLine(id)); err != nil {
		c.pending.Cancel(id)
		return "", err
	}

	select {
	case value, ok := <-reply:
		if !ok {
			return "", canvasnet.ErrCanvasClosed
		}
		return value, nil
	case <-ctx.Done():
		c.pending.Cancel(id)
		return "", fmt.Errorf("%w: %w", canvasnet.ErrQueryCancelled, ctx.Err())
	}
}

func (c *Canvas) send(line string) error {
	c.logger.Debug("sending canvas command", "line", line)
	return c.outbox.Enqueue(line)
}

// queryValue sends op with value as its only argument, or none when value is nil.
func (c *Canvas) queryValue(ctx context.Context, op string, value any) (string, error) {
	if value == nil {
		return c.Query(ctx, op)
	}
	return c.Query(ctx, op, value)
}

// Rectangles

func (c *Canvas) Rect(x, y, w, h any) error       { return c.Draw("rect", x, y, w, h) }
func (c *Canvas) FillRect(x, y, w, h any) error   { return c.Draw("fill_rect", x, y, w, h) }
func (c *Canvas) StrokeRect(x, y, w, h any) error { return c.Draw("stroke_rect", x, y, w, h) }
func (c *Canvas) ClearRect(x, y, w, h any) error  { return c.Draw("clear_rect", x, y, w, h) }

// Paths

func (c *Canvas) Fill() error      { return c.Draw("fill") }
func (c *Canvas) Stroke() error    { return c.Draw("stroke") }
func (c *Canvas) BeginPath() error { return c.Draw("begin_path") }
func (c *Canvas) ClosePath() error { return c.Draw("close_path") }
func (c *Canvas) Clip() error      { return c.Draw("clip") }

func (c *Canvas) MoveTo(x, y any) error { return c.Draw("move_to", x, y) }
func (c *Canvas) LineTo(x, y any) error { return c.Draw("line_to", x, y) }

func (c *Canvas) QuadraticCurveTo(cpx, cpy, x, y any) error {
	return c.Draw("quadratic_curve_to", cpx, cpy, x, y)
}

func (c *Canvas) BezierCurveTo(cp1x, cp1y, cp2x, cp2y, x, y any) error {
	return c.Draw("bezier_curve_to", cp1x, cp1y, cp2x, cp2y, x, y)
}

// Arc draws an arc. Pass counterclockwise as an optional last argument.
func (c *Canvas) Arc(x, y, radius, startAngle, endAngle any, counterclockwise ...bool) error {
	args := []any{x, y, radius, startAngle, endAngle}
	if len(counterclockwise) > 0 {
		args = append(args, counterclockwise[0])
	}
	return c.Draw("arc", args...)
}

func (c *Canvas) ArcTo(x1, y1, x2, y2, radius any) error {
	return c.Draw("arc_to", x1, y1, x2, y2, radius)
}

// Transformations

func (c *Canvas) Scale(x, y any) error     { return c.Draw("scale", x, y) }
func (c *Canvas) Rotate(angle any) error   { return c.Draw("rotate", angle) }
func (c *Canvas) Translate(x, y any) error { return c.Draw("translate", x, y) }

func (c *Canvas) Transform(a, b, cc, d, e, f any) error {
	return c.Draw("transform", a, b, cc, d, e, f)
}

func (c *Canvas) SetTransform(a, b, cc, d, e, f any) error {
	return c.Draw("set_transform", a, b, cc, d, e, f)
}

// Text

func (c *Canvas) FillText(text string, x, y any) error   { return c.Draw("fill_text", text, x, y) }
func (c *Canvas) StrokeText(text string, x, y any) error { return c.Draw("stroke_text", text, x, y) }
func (c *Canvas) MeasureText(text string) error          { return c.Draw("measure_text", text) }

// Images

// DrawImage draws image at (x, y). Extra arguments select the scaled (w, h) or
// sliced (sx, sy, sw, sh, dx, dy, dw, dh) forms.
func (c *Canvas) DrawImage(image Handle, args ...any) error {
	return c.Draw("draw_image", append([]any{image}, args...)...)
}

// State

func (c *Canvas) Save() error    { return c.Draw("save") }
func (c *Canvas) Restore() error { return c.Draw("restore") }

// Styles. Every query helper sets the property when value is non-nil and returns
// the browser's answer.

// FillStyle accepts a color string or a Gradient/Pattern handle.
func (c *Canvas) FillStyle(ctx context.Context, style any) (string, error) {
	return c.queryValue(ctx, "fill_style", style)
}

// StrokeStyle accepts a color string or a Gradient/Pattern handle.
func (c *Canvas) StrokeStyle(ctx context.Context, style any) (string, error) {
	return c.queryValue(ctx, "stroke_style", style)
}

// SetFillStyle sets the fill style without waiting for the reply.
func (c *Canvas) SetFillStyle(style any) error { return c.Draw("fill_style", style) }

// SetStrokeStyle sets the stroke style without waiting for the reply.
func (c *Canvas) SetStrokeStyle(style any) error { return c.Draw("stroke_style", style) }

func (c *Canvas) ShadowColor(ctx context.Context, v any) (string, error) {
	return c.queryValue(ctx, "shadow_color", v)
}

func (c *Canvas) ShadowBlur(ctx context.Context, v any) (string, error) {
	return c.queryValue(ctx, "shadow_blur", v)
}

func (c *Canvas) ShadowOffsetX(ctx context.Context, v any) (string, error) {
	return c.queryValue(ctx, "shadow_offset_x", v)
}

func (c *Canvas) ShadowOffsetY(ctx context.Context, v any) (string, error) {
	return c.queryValue(ctx, "shadow_offset_y", v)
}

func (c *Canvas) LineCap(ctx context.Context, v any) (string, error) {
	return c.queryValue(ctx, "line_cap", v)
}

func (c *Canvas) LineJoin(ctx context.Context, v any) (string, error) {
	return c.queryValue(ctx, "line_join", v)
}

func (c *Canvas) LineWidth(ctx context.Context, v any) (string, error) {
	return c.queryValue(ctx, "line_width", v)
}

func (c *Canvas) MiterLimit(ctx context.Context, v any) (string, error) {
	return c.queryValue(ctx, "miter_limit", v)
}

func (c *Canvas) IsPointInPath(ctx context.Context, x, y any) (string, error) {
	return c.Query(ctx, "is_point_in_path", x, y)
}

func (c *Canvas) Font(ctx context.Context, v any) (string, error) {
	return c.queryValue(ctx, "font", v)
}

func (c *Canvas) TextAlign(ctx context.Context, v any) (string, error) {
	return c.queryValue(ctx, "text_align", v)
}

func (c *Canvas) TextBaseline(ctx context.Context, v any) (string, error) {
	return c.queryValue(ctx, "text_baseline", v)
}

func (c *Canvas) GlobalAlpha(ctx context.Context, v any) (string, error) {
	return c.queryValue(ctx, "global_alpha", v)
}

func (c *Canvas) GlobalCompositeOperation(ctx context.Context, v any) (string, error) {
	return c.queryValue(ctx, "global_composite_operation", v)
}

// ToDataURL asks the browser to serialize the canvas. args are the optional
// image type and quality.
func (c *Canvas) ToDataURL(ctx context.Context, args ...any) (string, error) {
	return c.Query(ctx, "to_data_url", args...)
}
