package geom

import (
	"errors"
	"fmt"
)

// ErrInvalidDimensions is returned when a rectangle is constructed with a
// negative (or NaN) width or height.
var ErrInvalidDimensions = errors.New("invalid dimensions")

// Point is a position in content space (the SVG user coordinate system).
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is a convenience function to create a Point.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns p translated by v.
func (p Point) Add(v Vector) Point {
	return Point{X: p.X + v.X, Y: p.Y + v.Y}
}

// Sub returns p translated by -v.
func (p Point) Sub(v Vector) Point {
	return Point{X: p.X - v.X, Y: p.Y - v.Y}
}

// Minus returns p - q.
func (p Point) Minus(q Point) Vector {
	return Vector{X: p.X - q.X, Y: p.Y - q.Y}
}

func (p Point) String() string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}

// Vector is an element of the vector space of content space.
type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Vec is a convenience function to create a Vector.
func Vec(x, y float64) Vector {
	return Vector{X: x, Y: y}
}

// Add returns v + w.
func (v Vector) Add(w Vector) Vector {
	return Vector{X: v.X + w.X, Y: v.Y + w.Y}
}

// Sub returns v - w.
func (v Vector) Sub(w Vector) Vector {
	return Vector{X: v.X - w.X, Y: v.Y - w.Y}
}

// Mul returns v scaled by s.
func (v Vector) Mul(s float64) Vector {
	return Vector{X: v.X * s, Y: v.Y * s}
}

// Div returns v divided by s.
func (v Vector) Div(s float64) Vector {
	return Vector{X: v.X / s, Y: v.Y / s}
}

// IsZero reports whether v is the zero vector.
func (v Vector) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

// Rect is an axis-aligned rectangle in content space. Unlike the
// mathematical convention, Top < Bottom: the y-axis points down.
//
// Dimensions are never negative; use NewRect to construct one from
// untrusted values.
type Rect struct {
	TopLeft    Point  `json:"topLeft" yaml:"topLeft"`
	Dimensions Vector `json:"dimensions"`
}

// NewRect creates a Rect, rejecting negative dimensions.
func NewRect(topLeft Point, dimensions Vector) (Rect, error) {
	if err := checkDimensions(dimensions.X, dimensions.Y); err != nil {
		return Rect{}, err
	}
	return Rect{TopLeft: topLeft, Dimensions: dimensions}, nil
}

// MustRect is like NewRect but panics on invalid dimensions. Intended for
// constants and tests.
func MustRect(x, y, width, height float64) Rect {
	r, err := NewRect(Pt(x, y), Vec(width, height))
	if err != nil {
		panic(err)
	}
	return r
}

func (r Rect) Left() float64   { return r.TopLeft.X }
func (r Rect) Top() float64    { return r.TopLeft.Y }
func (r Rect) Right() float64  { return r.TopLeft.X + r.Dimensions.X }
func (r Rect) Bottom() float64 { return r.TopLeft.Y + r.Dimensions.Y }
func (r Rect) Width() float64  { return r.Dimensions.X }
func (r Rect) Height() float64 { return r.Dimensions.Y }

// BottomRight returns the corner opposite to TopLeft.
func (r Rect) BottomRight() Point {
	return Point{X: r.Right(), Y: r.Bottom()}
}

// Center returns the center point of the rect.
func (r Rect) Center() Point {
	return r.TopLeft.Add(r.Dimensions.Div(2))
}

// AspectRatio returns width / height.
func (r Rect) AspectRatio() float64 {
	return r.Width() / r.Height()
}

// IsEmpty reports whether the rect has zero area.
func (r Rect) IsEmpty() bool {
	return r.Width() == 0 || r.Height() == 0
}

// Union returns the smallest rect containing both rects.
func (r Rect) Union(other Rect) Rect {
	minX := min(r.Left(), other.Left())
	minY := min(r.Top(), other.Top())
	maxX := max(r.Right(), other.Right())
	maxY := max(r.Bottom(), other.Bottom())
	return Rect{TopLeft: Pt(minX, minY), Dimensions: Vec(maxX-minX, maxY-minY)}
}

func (r Rect) String() string {
	return fmt.Sprintf("Rect x:{%g..%g} × y:{%g..%g}", r.Left(), r.Right(), r.Top(), r.Bottom())
}

func checkDimensions(width, height float64) error {
	if !(width >= 0) || !(height >= 0) {
		return fmt.Errorf("%w: width %g, height %g", ErrInvalidDimensions, width, height)
	}
	return nil
}
