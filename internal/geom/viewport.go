package geom

import (
	"encoding/json"
	"fmt"
)

// ViewPortPos is a position in screen coordinates relative to the top-left
// corner of the view port: the y-axis points down and Origin always refers to
// that corner.
//
// Positions may lie outside the view port, i.e. they can be negative or
// beyond the displayable area.
type ViewPortPos struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pos is a convenience function to create a ViewPortPos.
func Pos(x, y float64) ViewPortPos {
	return ViewPortPos{X: x, Y: y}
}

// Origin returns the top-left corner of the view port.
func Origin() ViewPortPos {
	return ViewPortPos{}
}

// Add returns p translated by v.
func (p ViewPortPos) Add(v ViewPortVector) ViewPortPos {
	return ViewPortPos{X: p.X + v.X, Y: p.Y + v.Y}
}

// Minus returns p - q.
func (p ViewPortPos) Minus(q ViewPortPos) ViewPortVector {
	return ViewPortVector{X: p.X - q.X, Y: p.Y - q.Y}
}

// AsVector returns the vector from Origin to p.
func (p ViewPortPos) AsVector() ViewPortVector {
	return ViewPortVector{X: p.X, Y: p.Y}
}

func (p ViewPortPos) String() string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}

// ViewPortVector is a displacement in screen coordinates.
type ViewPortVector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns v + w.
func (v ViewPortVector) Add(w ViewPortVector) ViewPortVector {
	return ViewPortVector{X: v.X + w.X, Y: v.Y + w.Y}
}

// Sub returns v - w.
func (v ViewPortVector) Sub(w ViewPortVector) ViewPortVector {
	return ViewPortVector{X: v.X - w.X, Y: v.Y - w.Y}
}

// Mul returns v scaled by s.
func (v ViewPortVector) Mul(s float64) ViewPortVector {
	return ViewPortVector{X: v.X * s, Y: v.Y * s}
}

// IsZero reports whether v is the zero vector.
func (v ViewPortVector) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

func (v ViewPortVector) String() string {
	return fmt.Sprintf("Vec(%g, %g)", v.X, v.Y)
}

// ViewPortRect is a rectangle in screen coordinates relative to the view
// port. Width and height are never negative.
type ViewPortRect struct {
	topLeft ViewPortPos
	width   float64
	height  float64
}

// NewViewPortRect creates a ViewPortRect, rejecting negative dimensions.
func NewViewPortRect(topLeft ViewPortPos, width, height float64) (ViewPortRect, error) {
	if err := checkDimensions(width, height); err != nil {
		return ViewPortRect{}, err
	}
	return ViewPortRect{topLeft: topLeft, width: width, height: height}, nil
}

// MustViewPortRect is like NewViewPortRect but panics on invalid dimensions.
func MustViewPortRect(x, y, width, height float64) ViewPortRect {
	r, err := NewViewPortRect(Pos(x, y), width, height)
	if err != nil {
		panic(err)
	}
	return r
}

func (r ViewPortRect) TopLeft() ViewPortPos { return r.topLeft }
func (r ViewPortRect) Left() float64        { return r.topLeft.X }
func (r ViewPortRect) Top() float64         { return r.topLeft.Y }
func (r ViewPortRect) Right() float64       { return r.topLeft.X + r.width }
func (r ViewPortRect) Bottom() float64      { return r.topLeft.Y + r.height }
func (r ViewPortRect) Width() float64       { return r.width }
func (r ViewPortRect) Height() float64      { return r.height }

// BottomRight returns the corner opposite to TopLeft.
func (r ViewPortRect) BottomRight() ViewPortPos {
	return ViewPortPos{X: r.Right(), Y: r.Bottom()}
}

// Center returns the center point of the rect.
func (r ViewPortRect) Center() ViewPortPos {
	return ViewPortPos{X: r.topLeft.X + r.width/2, Y: r.topLeft.Y + r.height/2}
}

// AspectRatio returns width / height.
func (r ViewPortRect) AspectRatio() float64 {
	return r.width / r.height
}

// Contains checks if a point is inside the rect. Points on the edge count.
func (r ViewPortRect) Contains(p ViewPortPos) bool {
	return p.X >= r.Left() && p.X <= r.Right() && p.Y >= r.Top() && p.Y <= r.Bottom()
}

// Offset returns the vector from the top-left corner of r to point.
func (r ViewPortRect) Offset(point ViewPortPos) ViewPortVector {
	return point.Minus(r.topLeft)
}

// RelativeOffset returns Offset with each component divided by the rect size
// in that dimension. Points inside the rect have components in [0, 1].
func (r ViewPortRect) RelativeOffset(point ViewPortPos) ViewPortVector {
	offset := r.Offset(point)
	return ViewPortVector{X: offset.X / r.width, Y: offset.Y / r.height}
}

func (r ViewPortRect) String() string {
	return fmt.Sprintf("Rect x:{%g..%g} × y:{%g..%g}", r.Left(), r.Right(), r.Top(), r.Bottom())
}

// rectJSON is the wire form of a ViewPortRect, matching DOMRect field names.
type rectJSON struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (r ViewPortRect) MarshalJSON() ([]byte, error) {
	return json.Marshal(rectJSON{X: r.topLeft.X, Y: r.topLeft.Y, Width: r.width, Height: r.height})
}

// UnmarshalJSON decodes a DOMRect-shaped object, enforcing the non-negative
// dimension invariant.
func (r *ViewPortRect) UnmarshalJSON(data []byte) error {
	var raw rectJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	rect, err := NewViewPortRect(Pos(raw.X, raw.Y), raw.Width, raw.Height)
	if err != nil {
		return err
	}
	*r = rect
	return nil
}
