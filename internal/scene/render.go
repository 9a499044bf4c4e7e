package scene

import (
	"fmt"
	"html"
	"strings"

	"github.com/panzoom/panzoom/internal/viewbox"
)

// ElementID is the id of the <svg> element the scene is rendered into.
const ElementID = "my_svg_element"

// RenderSVG renders the scene as a standalone <svg> document filling its
// parent. The viewBox attribute follows vb and the visible rect is outlined
// in crimson. preserveAspectRatio is left at its default.
func RenderSVG(s *Scene, vb viewbox.ViewBox) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<svg version="1.1" xmlns="http://www.w3.org/2000/svg" id="%s" width="100%%" height="100%%" style="display: block" viewBox="%s">`,
		ElementID, vb.Attr())
	b.WriteByte('\n')
	r := vb.Rect()
	fmt.Fprintf(&b, `  <rect x="%g" y="%g" width="%g" height="%g" style="fill: none; stroke: crimson"/>`,
		r.Left(), r.Top(), r.Width(), r.Height())
	b.WriteByte('\n')
	for _, c := range s.Circles {
		fmt.Fprintf(&b, `  <circle id="%s" cx="%g" cy="%g" r="%g" fill="%s"/>`,
			html.EscapeString(c.ID), c.CX, c.CY, c.R, html.EscapeString(c.Fill))
		b.WriteByte('\n')
	}
	b.WriteString("</svg>\n")
	return b.String()
}
