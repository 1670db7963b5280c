package canvas

// Handle is an object living in the browser and referenced by id on the wire.
type Handle interface {
	ID() string
}

// Image references an image element in the page by id.
type Image string

func (i Image) ID() string { return string(i) }

// Gradient is a browser-side gradient created through this canvas.
type Gradient struct {
	id     string
	canvas *Canvas
}

func (g *Gradient) ID() string { return g.id }

// AddColorStop adds a color stop at offset (0..1).
func (g *Gradient) AddColorStop(offset any, color string) error {
	return g.canvas.Draw("add_color_stop", g.id, offset, color)
}

// Pattern is a browser-side pattern created through this canvas.
type Pattern struct {
	id     string
	canvas *Canvas
}

func (p *Pattern) ID() string { return p.id }

// ImageData is a browser-side pixel buffer referenced by id.
type ImageData struct {
	id     string
	canvas *Canvas
	args   []any
}

func (d *ImageData) ID() string { return d.id }

// Args returns the arguments the buffer was created with.
func (d *ImageData) Args() []any { return d.args }

// CreateLinearGradient creates a gradient named id in the browser. It does not
// wait for the browser.
func (c *Canvas) CreateLinearGradient(x0, y0, x1, y1 any, id string) (*Gradient, error) {
	if err := c.Draw("create_linear_gradient", x0, y0, x1, y1, id); err != nil {
		return nil, err
	}
	return &Gradient{id: id, canvas: c}, nil
}

// CreateRadialGradient creates a radial gradient named id in the browser.
func (c *Canvas) CreateRadialGradient(x0, y0, r0, x1, y1, r1 any, id string) (*Gradient, error) {
	if err := c.Draw("create_radial_gradient", x0, y0, r0, x1, y1, r1, id); err != nil {
		return nil, err
	}
	return &Gradient{id: id, canvas: c}, nil
}

// CreatePattern creates a pattern named id from image. repetition is one of
// repeat, repeat-x, repeat-y, no-repeat.
func (c *Canvas) CreatePattern(image Handle, repetition string, id string) (*Pattern, error) {
	if err := c.Draw("create_pattern", image, repetition, id); err != nil {
		return nil, err
	}
	return &Pattern{id: id, canvas: c}, nil
}

// CreateImageData returns a local handle only; nothing is sent.
func (c *Canvas) CreateImageData(id string, args ...any) *ImageData {
	return &ImageData{id: id, canvas: c, args: args}
}

// GetImageData asks the browser to copy a region into a buffer named id.
func (c *Canvas) GetImageData(id string, x, y, w, h any) (*ImageData, error) {
	if err := c.Draw("get_image_data", x, y, w, h, id); err != nil {
		return nil, err
	}
	return &ImageData{id: id, canvas: c}, nil
}

// PutImageData paints data at (x, y). dirty optionally restricts the painted
// region to (dirtyX, dirtyY, dirtyWidth, dirtyHeight).
func (c *Canvas) PutImageData(data *ImageData, x, y any, dirty ...any) error {
	return c.Draw("put_image_data", append([]any{data, x, y}, dirty...)...)
}

// Put paints the buffer back onto its canvas at (x, y).
func (d *ImageData) Put(x, y any, dirty ...any) error {
	return d.canvas.PutImageData(d, x, y, dirty...)
}
