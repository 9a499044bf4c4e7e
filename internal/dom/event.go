package dom

import (
	"fmt"
	"strings"

	"github.com/panzoom/panzoom/internal/geom"
)

// WheelEvent is a mouse wheel (or trackpad pinch) event.
type WheelEvent interface {
	Position() geom.ViewPortPos
	DeltaY() float64
	CtrlPressed() bool
}

// Wheel is a plain WheelEvent, also used as the wire form of wheel events.
type Wheel struct {
	At    geom.ViewPortPos `json:"position"`
	Delta float64          `json:"deltaY"`
	Ctrl  bool             `json:"ctrlKey"`
}

func (w Wheel) Position() geom.ViewPortPos { return w.At }
func (w Wheel) DeltaY() float64            { return w.Delta }
func (w Wheel) CtrlPressed() bool          { return w.Ctrl }

// TargetKind is the kind of object an event target was resolved to.
type TargetKind int

const (
	TargetWindow TargetKind = iota + 1
	TargetDocument
	TargetElement
)

func (k TargetKind) String() string {
	switch k {
	case TargetWindow:
		return "window"
	case TargetDocument:
		return "document"
	case TargetElement:
		return "element"
	default:
		return fmt.Sprintf("TargetKind(%d)", int(k))
	}
}

// Target is an event target with a determinable geometric position.
type Target struct {
	Kind TargetKind
	Positioned
}

// UnsupportedTargetError is returned for event targets that have no
// geometric position, e.g. XMLHttpRequest, AudioNode or a DocumentFragment.
type UnsupportedTargetError struct {
	Description string
}

func (e *UnsupportedTargetError) Error() string {
	return fmt.Sprintf("unsupported event target type %s: only window, document and elements are positioned", e.Description)
}

// ResolveTarget classifies an event target by its DOM interface name
// ("Window", "HTMLDocument", "SVGSVGElement", ...) and attaches p as its
// geometry. Anything other than a window, a document or an element yields an
// *UnsupportedTargetError carrying description.
func ResolveTarget(interfaceName, description string, p Positioned) (Target, error) {
	var kind TargetKind
	switch {
	case interfaceName == "Window":
		kind = TargetWindow
	case interfaceName == "Document" || interfaceName == "HTMLDocument" || interfaceName == "XMLDocument":
		kind = TargetDocument
	case strings.HasSuffix(interfaceName, "Element"):
		kind = TargetElement
	default:
		return Target{}, &UnsupportedTargetError{Description: description}
	}
	if p == nil {
		return Target{}, &UnsupportedTargetError{Description: description}
	}
	return Target{Kind: kind, Positioned: p}, nil
}
