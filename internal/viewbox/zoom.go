package viewbox

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/panzoom/panzoom/internal/dom"
	"github.com/panzoom/panzoom/internal/geom"
	"github.com/panzoom/panzoom/internal/invariant"
)

// The methods below let a *ViewBox drive an <svg> element whose viewBox
// attribute follows it. The element must keep the default
// preserveAspectRatio (see dom.CheckSVG).

// UnscaledDimensions returns the size of the visible rect with the scale
// divided out, which is the content size along the dominant dimension.
func (v *ViewBox) UnscaledDimensions(dom.Element) (float64, float64, error) {
	s := v.Scale()
	return v.Width() * s, v.Height() * s, nil
}

// ViewPortTopLeft returns the top left corner of the content box in view
// port coordinates.
func (v *ViewBox) ViewPortTopLeft(el dom.Element) (geom.ViewPortPos, error) {
	ctm, err := el.ScreenCTM()
	if err != nil {
		return geom.ViewPortPos{}, fmt.Errorf("view box top left: %w", err)
	}
	return ctm.Apply(v.content.TopLeft), nil
}

// ViewPortRect returns the content box in view port coordinates.
func (v *ViewBox) ViewPortRect(el dom.Element) (geom.ViewPortRect, error) {
	ctm, err := el.ScreenCTM()
	if err != nil {
		return geom.ViewPortRect{}, fmt.Errorf("view box bounding rect: %w", err)
	}
	topLeft := ctm.Apply(v.content.TopLeft)
	bottomRight := ctm.Apply(v.content.BottomRight())
	r, err := geom.NewViewPortRect(topLeft, bottomRight.X-topLeft.X, bottomRight.Y-topLeft.Y)
	if err != nil {
		return geom.ViewPortRect{}, fmt.Errorf("view box bounding rect under %v: %w", ctm, err)
	}
	return r, nil
}

// ZoomAround changes the scale to newScale, moving the visible rect so that
// the content under fix stays under fix. It fails without modifying v when
// the element's screen transform is missing or singular, or when newScale
// is not positive.
func (v *ViewBox) ZoomAround(el dom.Element, fix geom.ViewPortPos, newScale float64) error {
	if !(newScale > 0) || math.IsInf(newScale, 1) {
		return fmt.Errorf("%w: view box scale %g", geom.ErrInvalidScale, newScale)
	}
	ctm, err := el.ScreenCTM()
	if err != nil {
		return fmt.Errorf("zoom view box: %w", err)
	}
	toContent, err := ctm.Invert()
	if err != nil {
		return fmt.Errorf("zoom view box: %w", err)
	}

	oldScale := v.Scale()
	slog.Debug("zooming view box", "from", oldScale, "to", newScale, "fix_point", fix)

	fixContent := toContent.ContentPoint(fix)
	offset := fixContent.Minus(v.TopLeft())
	newOffset := offset.Mul(oldScale / newScale)
	newTopLeft := fixContent.Sub(newOffset)

	next := *v
	next.SetTopLeft(newTopLeft)
	if err := next.SetScale(newScale); err != nil {
		return fmt.Errorf("zoom view box: %w", err)
	}
	*v = next

	invariant.Check(v.TopLeft() == newTopLeft, "top left %v, want %v", v.TopLeft(), newTopLeft)
	return nil
}

// Viewport is a virtual <svg> element occupying a fixed rect of the view
// port, whose viewBox attribute follows the value returned by viewBox. It
// stands in for a rendered element on the server and in tests.
type Viewport struct {
	rect    geom.ViewPortRect
	viewBox func() ViewBox
}

// NewViewport creates a Viewport at rect.
func NewViewport(rect geom.ViewPortRect, viewBox func() ViewBox) *Viewport {
	return &Viewport{rect: rect, viewBox: viewBox}
}

func (p *Viewport) BoundingRect() (geom.ViewPortRect, error) { return p.rect, nil }

// ScreenCTM returns the meet transform of the current view box.
func (p *Viewport) ScreenCTM() (geom.AffineTransform, error) {
	return p.viewBox().MeetTransform(p.rect), nil
}

func (p *Viewport) PreserveAspectRatio() string { return dom.DefaultPreserveAspectRatio }
