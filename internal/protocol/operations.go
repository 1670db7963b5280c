package protocol

import "sort"

// Kind classifies an operation by whether the browser answers it.
type Kind int

const (
	// Draw commands are fire-and-forget.
	Draw Kind = iota + 1
	// Query commands are answered by a later "response" message.
	Query
)

func (k Kind) String() string {
	switch k {
	case Draw:
		return "draw"
	case Query:
		return "query"
	default:
		return "unknown"
	}
}

// Operation describes one entry of the supported canvas surface.
type Operation struct {
	Name string
	Verb string
	Kind Kind
	Min  int
	Max  int
}

func draw(name string, min, max int) Operation {
	return Operation{Name: name, Verb: Verb(name), Kind: Draw, Min: min, Max: max}
}

func query(name string, min, max int) Operation {
	return Operation{Name: name, Verb: Verb(name), Kind: Query, Min: min, Max: max}
}

var operations = index(
	// Rectangles
	draw("rect", 4, 4),
	draw("fill_rect", 4, 4),
	draw("stroke_rect", 4, 4),
	draw("clear_rect", 4, 4),

	// Paths
	draw("fill", 0, 1),
	draw("stroke", 0, 0),
	draw("begin_path", 0, 0),
	draw("move_to", 2, 2),
	draw("close_path", 0, 0),
	draw("line_to", 2, 2),
	draw("clip", 0, 1),
	draw("quadratic_curve_to", 4, 4),
	draw("bezier_curve_to", 6, 6),
	draw("arc", 5, 6),
	draw("arc_to", 5, 5),

	// Transformations
	draw("scale", 2, 2),
	draw("rotate", 1, 1),
	draw("translate", 2, 2),
	draw("transform", 6, 6),
	draw("set_transform", 6, 6),

	// Text
	draw("fill_text", 3, 4),
	draw("stroke_text", 3, 4),
	draw("measure_text", 1, 1),

	// Images
	draw("draw_image", 3, 9),
	draw("get_image_data", 5, 5),
	draw("put_image_data", 3, 7),

	// Handles
	draw("create_linear_gradient", 5, 5),
	draw("create_radial_gradient", 7, 7),
	draw("create_pattern", 3, 3),
	draw("add_color_stop", 3, 3),

	// State
	draw("save", 0, 0),
	draw("restore", 0, 0),

	// Colors, styles and shadows
	query("fill_style", 0, 1),
	query("stroke_style", 0, 1),
	query("shadow_color", 0, 1),
	query("shadow_blur", 0, 1),
	query("shadow_offset_x", 0, 1),
	query("shadow_offset_y", 0, 1),

	// Line styles
	query("line_cap", 0, 1),
	query("line_join", 0, 1),
	query("line_width", 0, 1),
	query("miter_limit", 0, 1),

	// Paths
	query("is_point_in_path", 2, 2),

	// Text
	query("font", 0, 1),
	query("text_align", 0, 1),
	query("text_baseline", 0, 1),

	// Compositing
	query("global_alpha", 0, 1),
	query("global_composite_operation", 0, 1),

	// Other
	query("to_data_url", 0, 2),
)

func index(ops ...Operation) map[string]Operation {
	m := make(map[string]Operation, len(ops))
	for _, op := range ops {
		m[op.Name] = op
	}
	return m
}

// Lookup returns the operation registered under a canonical name.
func Lookup(name string) (Operation, bool) {
	op, ok := operations[name]
	return op, ok
}

// Operations returns every supported operation sorted by name.
func Operations() []Operation {
	out := make([]Operation, 0, len(operations))
	for _, op := range operations {
		out = append(out, op)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
