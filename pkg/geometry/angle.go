// Package geometry holds the small amount of plane geometry the analysis needs.
package geometry

import "math"

// Point is a 2D position in image coordinates (y grows downward).
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Angle returns the angle at vertex b between rays b->a and b->c in degrees.
// A zero-length ray yields 0; callers treat that as undeterminable.
func Angle(a, b, c Point) float64 {
	v1x, v1y := a.X-b.X, a.Y-b.Y
	v2x, v2y := c.X-b.X, c.Y-b.Y

	mag1 := math.Hypot(v1x, v1y)
	mag2 := math.Hypot(v2x, v2y)
	if mag1 == 0 || mag2 == 0 {
		return 0
	}

	cosAngle := (v1x*v2x + v1y*v2y) / (mag1 * mag2)
	cosAngle = math.Max(-1, math.Min(1, cosAngle)) // Clamp to valid range
	return math.Acos(cosAngle) * 180 / math.Pi
}

// LineAngle returns the elevation of the segment from->to above the horizontal
// in degrees, in [-90, 90]. Facing direction is ignored so a shot to the left
// and a shot to the right give the same value. Upward (smaller y) is positive.
func LineAngle(from, to Point) float64 {
	dx := math.Abs(to.X - from.X)
	dy := from.Y - to.Y
	if dx == 0 && dy == 0 {
		return 0
	}
	return math.Atan2(dy, dx) * 180 / math.Pi
}

// Tilt returns the deviation of the line through a and b from horizontal, in [0, 90].
func Tilt(a, b Point) float64 {
	dx := math.Abs(b.X - a.X)
	dy := math.Abs(b.Y - a.Y)
	if dx == 0 && dy == 0 {
		return 0
	}
	return math.Atan2(dy, dx) * 180 / math.Pi
}

// Distance returns the euclidean distance between a and b.
func Distance(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// Round1 rounds to one decimal place for presentation.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
