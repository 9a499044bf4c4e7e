// Package panzoom zooms rendered elements around a fix point in response to
// wheel events.
package panzoom

import (
	"errors"
	"fmt"

	"github.com/panzoom/panzoom/internal/dom"
	"github.com/panzoom/panzoom/internal/geom"
)

// State is a pan/zoom model backing an element. Both *viewbox.ViewBox and
// *viewstate.ViewState implement it.
type State interface {
	// Scale returns the current zoom factor.
	Scale() float64
	// UnscaledDimensions returns the content size with the scale divided
	// out. It only has meaning compared with other results of the same
	// model and must not change when zooming.
	UnscaledDimensions(el dom.Element) (float64, float64, error)
	// ViewPortTopLeft returns the origin of the zoomed region in view port
	// coordinates.
	ViewPortTopLeft(el dom.Element) (geom.ViewPortPos, error)
	// ViewPortRect returns the zoomed region in view port coordinates.
	ViewPortRect(el dom.Element) (geom.ViewPortRect, error)
	// ZoomAround changes the scale to newScale such that the content under
	// fix stays under fix. On error the state is unchanged.
	ZoomAround(el dom.Element, fix geom.ViewPortPos, newScale float64) error
}

// ErrInconsistentZoom is reported when a zoom moved the fix point or changed
// the unscaled dimensions.
var ErrInconsistentZoom = errors.New("inconsistent zoom")

// Measurement captures what a zoom must preserve.
type Measurement struct {
	Fix      geom.ViewPortPos
	Relative geom.ViewPortVector
	Width    float64
	Height   float64
}

// Measure reads the relative offset of fix within the zoomed region and the
// unscaled dimensions of s.
func Measure(s State, el dom.Element, fix geom.ViewPortPos) (Measurement, error) {
	rect, err := s.ViewPortRect(el)
	if err != nil {
		return Measurement{}, err
	}
	w, h, err := s.UnscaledDimensions(el)
	if err != nil {
		return Measurement{}, err
	}
	return Measurement{Fix: fix, Relative: rect.RelativeOffset(fix), Width: w, Height: h}, nil
}

// CheckConsistency compares measurements taken before and after a zoom at
// float32 precision.
func CheckConsistency(before, after Measurement) error {
	const eps = geom.Float32Epsilon
	if !geom.NearlyEqual(before.Width, after.Width, eps) || !geom.NearlyEqual(before.Height, after.Height, eps) {
		return fmt.Errorf("%w: unscaled dimensions new (%g, %g) != old (%g, %g)",
			ErrInconsistentZoom, after.Width, after.Height, before.Width, before.Height)
	}
	if !geom.NearlyEqual(before.Relative.X, after.Relative.X, eps) || !geom.NearlyEqual(before.Relative.Y, after.Relative.Y, eps) {
		diff := after.Relative.Sub(before.Relative)
		return fmt.Errorf("%w: relative offset of fix point %v changed from %v to %v (unzoomed difference %g, %g)",
			ErrInconsistentZoom, after.Fix, before.Relative, after.Relative, diff.X*after.Width, diff.Y*after.Height)
	}
	return nil
}
