// Package utils contains angle and math helpers shared by the subsystem
// controllers. All angle helpers work in degrees.
package utils

import "math"

// DegToRad converts degrees to radians.
func DegToRad(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// RadToDeg converts radians to degrees.
func RadToDeg(radians float64) float64 {
	return radians * 180 / math.Pi
}

// ModAngDeg normalizes an angle into [0, 360).
func ModAngDeg(ang float64) float64 {
	return math.Mod(math.Mod(ang, 360)+360, 360)
}

// WrapAngDeg normalizes an angle into (-180, 180].
func WrapAngDeg(ang float64) float64 {
	a := ModAngDeg(ang)
	if a > 180 {
		a -= 360
	}
	return a
}

// AngleDiffDeg returns the magnitude of the closest difference between two
// angles. The arguments are commutative.
func AngleDiffDeg(a1, a2 float64) float64 {
	return float64(180) - math.Abs(math.Abs(a1-a2)-float64(180))
}

// Clamp returns value bounded to [min, max].
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
