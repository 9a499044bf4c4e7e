package viewstate

import (
	"github.com/panzoom/panzoom/internal/geom"
)

// Box is an element laid out at a fixed rect and rendered with the CSS
// transform of a view state.
type Box struct {
	layout geom.ViewPortRect
	state  func() ViewState
}

// NewBox creates a Box whose transform follows state.
func NewBox(layout geom.ViewPortRect, state func() ViewState) *Box {
	return &Box{layout: layout, state: state}
}

// BoundingRect returns the layout rect translated and scaled about its top
// left corner.
func (b *Box) BoundingRect() (geom.ViewPortRect, error) {
	s := b.state()
	return geom.NewViewPortRect(
		b.layout.TopLeft().Add(s.topLeft.AsVector()),
		b.layout.Width()*s.scale,
		b.layout.Height()*s.scale,
	)
}

// ScreenCTM maps the box's local coordinates to the view port.
func (b *Box) ScreenCTM() (geom.AffineTransform, error) {
	s := b.state()
	tl := b.layout.TopLeft().Add(s.topLeft.AsVector())
	return geom.Translate(tl.X, tl.Y).Multiply(geom.Scale(s.scale, s.scale)), nil
}
