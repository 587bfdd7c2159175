package saturation

import "math"

// SoftClip applies the division-based soft saturator x / (1 + |x|*knee).
//
// The curve is continuous with a continuous first derivative everywhere:
// nearly linear at low levels, gently compressing at high levels. Both
// coloration stages use it as their final smoothing nonlinearity.
func SoftClip(x, knee float64) float64 {
	return x / (1 + math.Abs(x)*knee)
}
