package geom

import (
	"errors"
	"fmt"
	"math"
)

// ErrNonInvertibleTransform is returned when a transform's linear part is
// singular, e.g. for an element rendered with zero width or height.
var ErrNonInvertibleTransform = errors.New("non-invertible transform")

// AffineTransform is a 2D affine transformation matrix
//
//	| a  c  e |
//	| b  d  f |
//	| 0  0  1 |
//
// mapping x' = a*x + c*y + e, y' = b*x + d*y + f. The field layout matches
// SVGMatrix / DOMMatrix, so a screen CTM can be copied over verbatim.
type AffineTransform struct {
	A, B, C, D, E, F float64
}

// Identity returns the identity matrix.
func Identity() AffineTransform {
	return AffineTransform{A: 1, D: 1}
}

// Translate returns a translation matrix.
func Translate(tx, ty float64) AffineTransform {
	return AffineTransform{A: 1, D: 1, E: tx, F: ty}
}

// Scale returns a scale matrix.
func Scale(sx, sy float64) AffineTransform {
	return AffineTransform{A: sx, D: sy}
}

// FromSlice creates a matrix from [a, b, c, d, e, f].
func FromSlice(s []float64) (AffineTransform, error) {
	if len(s) != 6 {
		return AffineTransform{}, fmt.Errorf("affine transform needs 6 coefficients, got %d", len(s))
	}
	return AffineTransform{A: s[0], B: s[1], C: s[2], D: s[3], E: s[4], F: s[5]}, nil
}

// Multiply returns m * other: other is applied first, then m.
func (m AffineTransform) Multiply(other AffineTransform) AffineTransform {
	return AffineTransform{
		A: m.A*other.A + m.C*other.B,
		B: m.B*other.A + m.D*other.B,
		C: m.A*other.C + m.C*other.D,
		D: m.B*other.C + m.D*other.D,
		E: m.A*other.E + m.C*other.F + m.E,
		F: m.B*other.E + m.D*other.F + m.F,
	}
}

// Apply maps a content-space point to the view port.
func (m AffineTransform) Apply(p Point) ViewPortPos {
	return ViewPortPos{
		X: m.A*p.X + m.C*p.Y + m.E,
		Y: m.B*p.X + m.D*p.Y + m.F,
	}
}

// ContentPoint maps a view-port position with m, where m is a
// view-port-to-content transform (the inverse of a screen CTM).
func (m AffineTransform) ContentPoint(p ViewPortPos) Point {
	return Point{
		X: m.A*p.X + m.C*p.Y + m.E,
		Y: m.B*p.X + m.D*p.Y + m.F,
	}
}

// ApplyInverse maps a view-port position back to content space through the
// inverse of m.
func (m AffineTransform) ApplyInverse(p ViewPortPos) (Point, error) {
	inv, err := m.Invert()
	if err != nil {
		return Point{}, err
	}
	return inv.ContentPoint(p), nil
}

// Determinant returns the determinant of the linear part.
func (m AffineTransform) Determinant() float64 {
	return m.A*m.D - m.C*m.B
}

// TryInvert returns the exact algebraic inverse of m. ok is false when the
// determinant's magnitude is below machine epsilon.
func (m AffineTransform) TryInvert() (inv AffineTransform, ok bool) {
	det := m.Determinant()
	if math.Abs(det) < epsilon64 || math.IsNaN(det) {
		return AffineTransform{}, false
	}
	return AffineTransform{
		A: m.D / det,
		B: -m.B / det,
		C: -m.C / det,
		D: m.A / det,
		E: -(m.D*m.E - m.C*m.F) / det,
		F: (m.B*m.E - m.A*m.F) / det,
	}, true
}

// Invert is TryInvert reporting failure as ErrNonInvertibleTransform.
func (m AffineTransform) Invert() (AffineTransform, error) {
	inv, ok := m.TryInvert()
	if !ok {
		return AffineTransform{}, fmt.Errorf("%w: determinant %g of %v", ErrNonInvertibleTransform, m.Determinant(), m)
	}
	return inv, nil
}

// IsIdentity checks if this is the identity matrix (within epsilon).
func (m AffineTransform) IsIdentity() bool {
	const eps = 1e-10
	return math.Abs(m.A-1) < eps &&
		math.Abs(m.B) < eps &&
		math.Abs(m.C) < eps &&
		math.Abs(m.D-1) < eps &&
		math.Abs(m.E) < eps &&
		math.Abs(m.F) < eps
}

// Slice returns the matrix as [a, b, c, d, e, f] for JSON serialization.
func (m AffineTransform) Slice() []float64 {
	return []float64{m.A, m.B, m.C, m.D, m.E, m.F}
}

func (m AffineTransform) String() string {
	return fmt.Sprintf("matrix(%g %g %g %g %g %g)", m.A, m.B, m.C, m.D, m.E, m.F)
}

// epsilon64 is the difference between 1 and the next representable float64.
const epsilon64 = 0x1p-52
