// Package dom describes what the pan/zoom core needs from the rendering
// layer: positioned elements, their screen transforms and wheel events.
package dom

import (
	"errors"
	"fmt"
	"strings"

	"github.com/panzoom/panzoom/internal/geom"
)

var (
	// ErrNoTransform is returned when an element is not rendered and therefore
	// has no screen transform.
	ErrNoTransform = errors.New("element has no screen transform")

	// ErrUnsupportedAspectRatio is returned when binding to an <svg> element
	// whose preserveAspectRatio differs from the default.
	ErrUnsupportedAspectRatio = errors.New("unsupported preserveAspectRatio")
)

// DefaultPreserveAspectRatio is the value an <svg> element must use to be
// driven through its viewBox.
const DefaultPreserveAspectRatio = "xMidYMid meet"

// Positioned is a geometrically positioned and sized object with a (possibly
// zero) extent.
type Positioned interface {
	BoundingRect() (geom.ViewPortRect, error)
}

// Element is a rendered element. ScreenCTM maps the element's user
// coordinate system to the view port; elements without one return
// ErrNoTransform.
type Element interface {
	Positioned
	ScreenCTM() (geom.AffineTransform, error)
}

// SVGElement is an <svg> element driven through its viewBox attribute.
type SVGElement interface {
	Element
	PreserveAspectRatio() string
}

// TopLeft returns the top-left corner of p's bounding rect.
func TopLeft(p Positioned) (geom.ViewPortPos, error) {
	r, err := p.BoundingRect()
	if err != nil {
		return geom.ViewPortPos{}, err
	}
	return r.TopLeft(), nil
}

// CheckSVG validates that el keeps the default preserveAspectRatio. An absent
// attribute (empty string) and the bare alignment "xMidYMid" both count as
// the default.
func CheckSVG(el SVGElement) error {
	fields := strings.Fields(el.PreserveAspectRatio())
	switch {
	case len(fields) == 0:
		return nil
	case len(fields) == 1 && fields[0] == "xMidYMid":
		return nil
	case len(fields) == 2 && fields[0] == "xMidYMid" && fields[1] == "meet":
		return nil
	}
	return fmt.Errorf("%w: %q, want %q", ErrUnsupportedAspectRatio, el.PreserveAspectRatio(), DefaultPreserveAspectRatio)
}

// Snapshot is one consistent read of an element's geometry. Taking it once
// per event keeps every computation for that event on the same rect and
// transform even if the element changes while the event is handled.
type Snapshot struct {
	rect    geom.ViewPortRect
	rectErr error
	ctm     geom.AffineTransform
	ctmErr  error
}

// Take reads el's bounding rect and screen transform.
func Take(el Element) Snapshot {
	var s Snapshot
	s.rect, s.rectErr = el.BoundingRect()
	s.ctm, s.ctmErr = el.ScreenCTM()
	return s
}

func (s Snapshot) BoundingRect() (geom.ViewPortRect, error) { return s.rect, s.rectErr }
func (s Snapshot) ScreenCTM() (geom.AffineTransform, error) { return s.ctm, s.ctmErr }
