package util

import "math"

// Clamp keeps value within the [min, max] range.
func Clamp(value, min, max float64) float64 {
	return math.Max(min, math.Min(max, value))
}

// Lerp linearly interpolates between a and b with t in [0,1].
func Lerp(a, b, t float64) float64 {
	return (1-t)*a + t*b
}

// Slerp interpolates between two angles in degrees along the shorter arc,
// wrapping through the cycle boundary when that path is shorter.
func Slerp(a, b, t float64) float64 {
	return CircularLerp(a, b, t, 360.0)
}

// CircularLerp interpolates between a and b on a circular domain of the
// given width, taking the shorter of the two paths around the circle.
func CircularLerp(a, b, t, cycle float64) float64 {
	t = Clamp(t, 0.0, 1.0)
	diff := math.Mod(b-a, cycle)
	if diff < 0 {
		diff += cycle
	}
	if diff > cycle/2 {
		diff -= cycle
	}
	v := math.Mod(a+diff*t, cycle)
	if v < 0 {
		v += cycle
	}
	return v
}
