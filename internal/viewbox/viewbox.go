// Package viewbox models the viewBox of an <svg> element: the visible part
// of the (infinite) SVG canvas together with the bounding box of the content
// drawn on it.
package viewbox

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"

	"github.com/panzoom/panzoom/internal/geom"
	"github.com/panzoom/panzoom/internal/invariant"
)

// ViewBox is the visible part of the SVG canvas.
//
// In a larger view port the content of the same ViewBox appears larger than
// in a smaller one. A ViewBox is not aware of padding; for padding use a
// larger view box.
type ViewBox struct {
	// view is controlled by the user. It may contain parts or all of the
	// content, or a much wider area.
	view geom.Rect
	// content is the bounding box of the content and changes with it. It is
	// the measure the scale is derived from.
	content geom.Rect
}

// New creates a ViewBox from a visible rect and a content bounding box.
func New(view, content geom.Rect) ViewBox {
	return ViewBox{view: view, content: content}
}

// Default returns the 200×200 box centered on the origin, showing exactly
// its content.
func Default() ViewBox {
	r := geom.MustRect(-100, -100, 200, 200)
	return ViewBox{view: r, content: r}
}

func (v ViewBox) MinX() float64   { return v.view.Left() }
func (v ViewBox) MinY() float64   { return v.view.Top() }
func (v ViewBox) Width() float64  { return v.view.Width() }
func (v ViewBox) Height() float64 { return v.view.Height() }

// Rect returns the visible rect.
func (v ViewBox) Rect() geom.Rect { return v.view }

// ContentBox returns the bounding box of the content.
func (v ViewBox) ContentBox() geom.Rect { return v.content }

// SetContentBox replaces the content bounding box. The scale changes with
// it while the visible rect stays where it is.
func (v *ViewBox) SetContentBox(r geom.Rect) {
	slog.Debug("changing content box of view box", "from", v.content, "to", r)
	v.content = r
}

// Scale returns how much larger the content appears than the visible rect:
// the larger of the width and height ratios. If the content has zero width
// or zero height only the other dimension counts, and content without any
// extent has scale 1.
func (v ViewBox) Scale() float64 {
	cw, ch := v.content.Width(), v.content.Height()
	switch {
	case cw == 0 && ch == 0:
		return 1
	case cw == 0:
		return ch / v.view.Height()
	case ch == 0:
		return cw / v.view.Width()
	default:
		return math.Max(cw/v.view.Width(), ch/v.view.Height())
	}
}

// SetScale resizes the visible rect so that Scale returns s, keeping its top
// left corner. s must be positive and the content must have an extent.
func (v *ViewBox) SetScale(s float64) error {
	if !(s > 0) || math.IsInf(s, 1) {
		return fmt.Errorf("%w: view box scale %g", geom.ErrInvalidScale, s)
	}
	if v.content.Width() == 0 && v.content.Height() == 0 {
		return fmt.Errorf("%w: content box %v has no extent", geom.ErrInvalidScale, v.content)
	}
	slog.Debug("changing scale of view box", "from", v.Scale(), "to", s)
	v.view.Dimensions = v.content.Dimensions.Div(s)

	got := v.Scale()
	invariant.Check(math.Abs(got-s) <= 1e-12*math.Max(1, s),
		"computed scale %v does not match set scale %v", got, s)
	return nil
}

// TopLeft returns the top left corner of the visible rect.
func (v ViewBox) TopLeft() geom.Point { return v.view.TopLeft }

// SetTopLeft moves the visible rect.
func (v *ViewBox) SetTopLeft(p geom.Point) {
	slog.Debug("changing top left of view box", "from", v.view.TopLeft, "to", p)
	v.view.TopLeft = p
}

// Attr returns the value of the SVG viewBox attribute.
func (v ViewBox) Attr() string {
	return fmt.Sprintf("%g %g %g %g", v.MinX(), v.MinY(), v.Width(), v.Height())
}

func (v ViewBox) String() string {
	return "ViewBox {" + v.Attr() + "}"
}

// MeetTransform returns the screen transform an <svg> element occupying
// viewport gets for this view box with preserveAspectRatio="xMidYMid meet":
// uniformly scaled to fit and centered. A view box or viewport without extent
// yields a singular transform.
func (v ViewBox) MeetTransform(viewport geom.ViewPortRect) geom.AffineTransform {
	vw, vh := v.Width(), v.Height()
	if vw == 0 || vh == 0 {
		return geom.AffineTransform{}
	}
	s := math.Min(viewport.Width()/vw, viewport.Height()/vh)
	tx := viewport.Left() + (viewport.Width()-vw*s)/2 - v.MinX()*s
	ty := viewport.Top() + (viewport.Height()-vh*s)/2 - v.MinY()*s
	return geom.AffineTransform{A: s, D: s, E: tx, F: ty}
}

type viewBoxJSON struct {
	ViewBox    geom.Rect `json:"viewBox"`
	ContentBox geom.Rect `json:"contentBox"`
	Scale      float64   `json:"scale"`
	Attr       string    `json:"attr"`
}

// MarshalJSON encodes an unbounded scale (visible rect without extent) as 0.
func (v ViewBox) MarshalJSON() ([]byte, error) {
	scale := v.Scale()
	if math.IsInf(scale, 0) || math.IsNaN(scale) {
		scale = 0
	}
	return json.Marshal(viewBoxJSON{ViewBox: v.view, ContentBox: v.content, Scale: scale, Attr: v.Attr()})
}
