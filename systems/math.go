package systems

import "math"

// Clamp functions for common value ranges

// clampFloat clamps a value between min and max.
func clampFloat(v, minVal, maxVal float64) float64 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// Angle normalization functions. Angles are bearings in degrees.

// NormalizeBearing wraps a bearing to [0, 360).
func NormalizeBearing(b float64) float64 {
	b = math.Mod(b, 360)
	if b < 0 {
		b += 360
	}
	if b >= 360 {
		b = 0
	}
	return b
}

// AngleDiff returns the signed smallest rotation from a to b in (-180, 180].
func AngleDiff(a, b float64) float64 {
	d := NormalizeBearing(b - a)
	if d > 180 {
		d -= 360
	}
	return d
}

// Opposite returns the bearing pointing the other way.
func Opposite(b float64) float64 {
	return NormalizeBearing(b + 180)
}

func degToRad(d float64) float64 {
	return d * math.Pi / 180
}

func radToDeg(r float64) float64 {
	return r * 180 / math.Pi
}
