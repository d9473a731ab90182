package systems

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/einp/components"
)

// Bearings are measured in degrees clockwise from north (+Y).

// Vec converts a position to a gonum vector.
func Vec(p components.Position) r2.Vec {
	return r2.Vec{X: p.X, Y: p.Y}
}

// FromVec converts a gonum vector back to a position.
func FromVec(v r2.Vec) components.Position {
	return components.Position{X: v.X, Y: v.Y}
}

// Heading returns the unit vector for a bearing.
func Heading(bearing float64) r2.Vec {
	rad := degToRad(bearing)
	return r2.Vec{X: math.Sin(rad), Y: math.Cos(rad)}
}

// BearingOf returns the bearing of a vector. The zero vector has bearing 0.
func BearingOf(v r2.Vec) float64 {
	if v.X == 0 && v.Y == 0 {
		return 0
	}
	return NormalizeBearing(radToDeg(math.Atan2(v.X, v.Y)))
}

// Distance returns the planar distance in metres.
func Distance(a, b components.Position) float64 {
	return r2.Norm(r2.Sub(Vec(b), Vec(a)))
}

// BearingTo returns the bearing from one position to another.
func BearingTo(from, to components.Position) float64 {
	return BearingOf(r2.Sub(Vec(to), Vec(from)))
}

// Offset returns the position dist metres from origin along bearing.
func Offset(origin components.Position, bearing, dist float64) components.Position {
	return FromVec(r2.Add(Vec(origin), r2.Scale(dist, Heading(bearing))))
}

// MoveToward steps from origin toward target by at most step metres.
func MoveToward(origin, target components.Position, step float64) components.Position {
	delta := r2.Sub(Vec(target), Vec(origin))
	d := r2.Norm(delta)
	if d <= step || d == 0 {
		return target
	}
	return FromVec(r2.Add(Vec(origin), r2.Scale(step/d, delta)))
}

// Bisect returns the bearing halving the clockwise arc from prev to next.
// Equal bearings span the full circle. Arcs within tolDeg of a straight
// line take the half-arc directly because the vector sum degenerates there.
func Bisect(prev, next, tolDeg float64) float64 {
	arc := NormalizeBearing(next - prev)
	if arc == 0 {
		arc = 360
	}
	if math.Abs(arc-180) <= tolDeg || arc >= 360-tolDeg {
		return NormalizeBearing(prev + arc/2)
	}

	sum := r2.Add(Heading(prev), Heading(next))
	mid := BearingOf(sum)
	if arc > 180 {
		mid = Opposite(mid)
	}
	return mid
}

// SlotBearing picks the bearing an encircling hunter should hold around its prey.
// own is the hunter's current bearing from the prey, others are the bearings
// of pack mates already on the circle. Alone it keeps its bearing; with one
// mate it moves opposite; otherwise it moves to the bisector of its two
// angular neighbors.
func SlotBearing(own float64, others []float64, tolDeg float64) float64 {
	switch len(others) {
	case 0:
		return NormalizeBearing(own)
	case 1:
		return Opposite(others[0])
	}

	// Sort mates clockwise starting just after own.
	rel := make([]float64, len(others))
	for i, b := range others {
		rel[i] = NormalizeBearing(b - own)
	}
	sort.Float64s(rel)

	// A mate sharing own bearing sorts first; treat it as the clockwise neighbor.
	next := own + rel[0]
	prev := own + rel[len(rel)-1]
	return Bisect(prev, next, tolDeg)
}
