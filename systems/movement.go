package systems

import (
	"math/rand"

	"github.com/pthm-cable/einp/components"
)

// Area answers the two validity questions every move must pass.
type Area interface {
	IsInsidePermittedArea(components.Position) bool
	IsInsideWater(components.Position) bool
}

// Follow perturbation: tight when far from the target, loose when close.
const (
	followNearDistance = 100.0 // metres
	followFarJitter    = 10.0  // degrees
	followNearJitter   = 60.0  // degrees
	roamJitter         = 45.0  // degrees either side of the roaming heading
)

// Planner picks random destinations that stay inside the permitted area and
// out of water. Every method returns a valid position when its origin is valid.
type Planner struct {
	Area Area
	Rand *rand.Rand
}

// Valid reports whether an animal may stand at pos.
func (p Planner) Valid(pos components.Position) bool {
	return p.Area.IsInsidePermittedArea(pos) && !p.Area.IsInsideWater(pos)
}

// RandomWalk tries up to attempts random bearings and distances in
// [minDist, maxDist] and returns the first valid destination, or origin.
func (p Planner) RandomWalk(origin components.Position, minDist, maxDist float64, attempts int) components.Position {
	for i := 0; i < attempts; i++ {
		bearing := p.Rand.Float64() * 360
		cand := Offset(origin, bearing, p.distance(minDist, maxDist))
		if p.Valid(cand) {
			return cand
		}
	}
	return origin
}

// RandomFollow moves toward target with a bounded random perturbation of
// bearing and distance. maxStep caps the distance covered; zero or less
// means unbounded. On exhaustion it returns target when that is reachable
// and valid, else origin.
func (p Planner) RandomFollow(origin, target components.Position, maxStep float64, attempts int) components.Position {
	d := Distance(origin, target)
	if d == 0 {
		return origin
	}

	jitter, lo, hi := followFarJitter, 0.85, 1.0
	if d < followNearDistance {
		jitter, lo, hi = followNearJitter, 0.3, 1.0
	}

	heading := BearingTo(origin, target)
	for i := 0; i < attempts; i++ {
		bearing := heading + (p.Rand.Float64()*2-1)*jitter
		dist := d * p.distance(lo, hi)
		if maxStep > 0 && dist > maxStep {
			dist = maxStep
		}
		cand := Offset(origin, bearing, dist)
		if p.Valid(cand) {
			return cand
		}
	}

	if (maxStep <= 0 || d <= maxStep) && p.Valid(target) {
		return target
	}
	return origin
}

// RandomRoam keeps moving roughly along the heading from last to origin.
// If no valid destination is found it inverts the heading once and retries,
// then gives up and returns origin.
func (p Planner) RandomRoam(last, origin components.Position, minDist, maxDist float64, attempts int) components.Position {
	var heading float64
	if last.Equal(origin) {
		heading = p.Rand.Float64() * 360
	} else {
		heading = BearingTo(last, origin)
	}

	for pass := 0; pass < 2; pass++ {
		for i := 0; i < attempts; i++ {
			bearing := heading + (p.Rand.Float64()*2-1)*roamJitter
			cand := Offset(origin, bearing, p.distance(minDist, maxDist))
			if p.Valid(cand) {
				return cand
			}
		}
		heading = Opposite(heading)
	}
	return origin
}

func (p Planner) distance(minDist, maxDist float64) float64 {
	if maxDist <= minDist {
		return minDist
	}
	return minDist + p.Rand.Float64()*(maxDist-minDist)
}
