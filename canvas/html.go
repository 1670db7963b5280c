package canvas

import (
	"html"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// HTML renders the canvas element the browser script attaches to. Extra
// attributes are written in key order; alt is the fallback content.
func (c *Canvas) HTML() string {
	var b strings.Builder
	b.WriteString(`<canvas id="`)
	b.WriteString(html.EscapeString(c.id))
	b.WriteString(`" width="`)
	b.WriteString(strconv.Itoa(c.width))
	b.WriteString(`" height="`)
	b.WriteString(strconv.Itoa(c.height))
	b.WriteByte('"')

	for _, k := range slices.Sorted(maps.Keys(c.attributes)) {
		b.WriteByte(' ')
		b.WriteString(html.EscapeString(k))
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(c.attributes[k]))
		b.WriteByte('"')
	}

	b.WriteByte('>')
	b.WriteString(html.EscapeString(c.alt))
	b.WriteString("</canvas>")
	return b.String()
}
