package animal

import (
	"github.com/pthm-cable/einp/components"
	"github.com/pthm-cable/einp/pack"
	"github.com/pthm-cable/einp/systems"
)

// slotRetries are the bearing offsets tried when the ideal slot is in water
// or outside the park.
var slotRetries = []float64{0, 20, -20, 45, -45, 90, -90}

// encircle moves a toward its slot on the circle of safe_distance around
// the prey. Off the circle it runs straight at the prey and arrives on the
// side facing away from the prey's heading. On the circle it spreads out:
// opposite a single mate, or on the bisector of its two angular neighbors.
func (a *Animal) encircle(ctx *Context, p *pack.Pack, prey *Animal) {
	h := &ctx.Config.Hunting
	preyPos := prey.Position()

	a.mu.RLock()
	pos, onCircle, own := a.position, a.onCircle, a.preyBearing
	run := a.rates.runDistance
	a.mu.RUnlock()

	if !onCircle {
		d := systems.Distance(pos, preyPos)
		if d > h.SafeDistance+run {
			step := min(run, d-h.SafeDistance)
			pl := a.planner(ctx)
			next := systems.MoveToward(pos, preyPos, step)
			if !pl.Valid(next) {
				next = pl.RandomFollow(pos, preyPos, step, a.profile.Params.MoveAttempts)
			}
			a.moveTo(next)
			return
		}
		a.takeSlot(ctx, prey, preyPos, systems.Opposite(prey.Heading()))
		return
	}

	var others []float64
	for _, m := range p.Members() {
		w, ok := m.(*Animal)
		if !ok || w == a {
			continue
		}
		if b, circling := w.circling(prey); circling {
			others = append(others, b)
		}
	}
	a.takeSlot(ctx, prey, preyPos, systems.SlotBearing(own, others, h.CollinearToleranceDeg))
}

// circling returns the bearing of w's slot if it is on the circle around prey.
func (a *Animal) circling(prey *Animal) (float64, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if !a.alive || a.huntTarget != prey || !a.onCircle {
		return 0, false
	}
	return a.preyBearing, true
}

// takeSlot moves to the circle point at bearing, rotating away from blocked
// points. If every candidate is blocked it holds position on the circle.
func (a *Animal) takeSlot(ctx *Context, prey *Animal, preyPos components.Position, bearing float64) {
	safe := ctx.Config.Hunting.SafeDistance
	pl := a.planner(ctx)

	spot, slot, found := a.Position(), bearing, false
	for _, delta := range slotRetries {
		b := systems.NormalizeBearing(bearing + delta)
		cand := systems.Offset(preyPos, b, safe)
		if pl.Valid(cand) {
			spot, slot, found = cand, b, true
			break
		}
	}
	if !found {
		slot = systems.BearingTo(preyPos, spot)
	}

	a.mu.Lock()
	if a.huntTarget == prey {
		if found {
			a.moveLocked(spot)
		}
		a.onCircle = true
		a.preyBearing = slot
	}
	a.mu.Unlock()
}

// surrounds reports whether every hunter assigned to prey holds its slot.
func surrounds(p *pack.Pack, prey *Animal) bool {
	n := 0
	for _, h := range hunters(p) {
		h.mu.RLock()
		target, on := h.huntTarget, h.onCircle
		h.mu.RUnlock()
		if target != prey {
			continue
		}
		if !on {
			return false
		}
		n++
	}
	return n > 0
}
