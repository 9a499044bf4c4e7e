// Package viewstate models elements that are panned and zoomed with a CSS
// translate+scale transform (transform-origin 0 0) instead of a viewBox.
package viewstate

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"

	"github.com/panzoom/panzoom/internal/dom"
	"github.com/panzoom/panzoom/internal/geom"
)

// ViewState is the translation and scale applied to an element.
type ViewState struct {
	topLeft geom.ViewPortPos
	scale   float64
}

// New returns the untransformed state: no translation, scale 1.
func New() ViewState {
	return ViewState{scale: 1}
}

// At returns a state translated to topLeft and zoomed by scale.
func At(topLeft geom.ViewPortPos, scale float64) ViewState {
	return ViewState{topLeft: topLeft, scale: scale}
}

// Scale returns the current zoom factor.
func (s ViewState) Scale() float64 { return s.scale }

// TopLeft returns the translation of the element.
func (s ViewState) TopLeft() geom.ViewPortPos { return s.topLeft }

// UnscaledDimensions returns the element's rendered size divided by the
// scale.
func (s *ViewState) UnscaledDimensions(el dom.Element) (float64, float64, error) {
	r, err := el.BoundingRect()
	if err != nil {
		return 0, 0, err
	}
	return r.Width() / s.scale, r.Height() / s.scale, nil
}

func (s *ViewState) ViewPortTopLeft(dom.Element) (geom.ViewPortPos, error) {
	return s.topLeft, nil
}

func (s *ViewState) ViewPortRect(el dom.Element) (geom.ViewPortRect, error) {
	return el.BoundingRect()
}

// ZoomAround changes the scale to newScale and translates the element so
// that the point under fix stays there. A scale of zero collapses the
// element but is allowed.
func (s *ViewState) ZoomAround(el dom.Element, fix geom.ViewPortPos, newScale float64) error {
	if !(newScale >= 0) || math.IsInf(newScale, 1) {
		return fmt.Errorf("%w: view state scale %g", geom.ErrInvalidScale, newScale)
	}
	rect, err := el.BoundingRect()
	if err != nil {
		return fmt.Errorf("zoom view state: %w", err)
	}
	oldScale := s.scale
	offset := rect.Offset(fix)

	var translation geom.ViewPortVector
	if oldScale != 0 && !geom.NearlyEqual(newScale, oldScale, geom.Float32Epsilon) {
		translation = offset.Mul(1 - newScale/oldScale)
	}
	slog.Debug("zooming view state",
		"from", oldScale, "to", newScale, "fix_offset", offset, "translation", translation)

	s.topLeft = s.topLeft.Add(translation)
	s.scale = newScale
	return nil
}

// CSSTransform returns the value of the CSS transform property for this
// state. The element needs transform-origin: 0 0.
func (s ViewState) CSSTransform() string {
	return fmt.Sprintf("translate(%gpx, %gpx) scale(%g)", s.topLeft.X, s.topLeft.Y, s.scale)
}

func (s ViewState) String() string {
	return fmt.Sprintf("ViewState{top left: %v, scale: %g}", s.topLeft, s.scale)
}

func (s ViewState) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		TopLeft   geom.ViewPortPos `json:"topLeft"`
		Scale     float64          `json:"scale"`
		Transform string           `json:"transform"`
	}{s.topLeft, s.scale, s.CSSTransform()})
}
