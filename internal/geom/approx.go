package geom

import (
	"errors"
	"math"
)

// ErrInvalidScale is returned for a zoom factor that is negative, NaN, or
// zero where zero cannot be represented.
var ErrInvalidScale = errors.New("invalid scale")

// Float32Epsilon is the difference between 1 and the next representable
// float32. Zoom consistency is judged at this precision.
const Float32Epsilon = 0x1p-23

// NearlyEqual reports whether a and b differ by at most eps, either
// absolutely or relative to the larger magnitude.
func NearlyEqual(a, b, eps float64) bool {
	if a == b {
		return true
	}
	diff := math.Abs(a - b)
	if diff <= eps {
		return true
	}
	return diff <= eps*math.Max(math.Abs(a), math.Abs(b))
}
