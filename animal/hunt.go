package animal

import (
	"sort"

	"github.com/pthm-cable/einp/components"
	"github.com/pthm-cable/einp/pack"
	"github.com/pthm-cable/einp/systems"
	"github.com/pthm-cable/einp/telemetry"
)

// hunt drives one tick of a pack hunt for a. Only the leader starts hunts,
// rolls for success and ends them.
func (a *Animal) hunt(ctx *Context, p *pack.Pack, leader bool) {
	target := a.HuntTarget()
	if target != nil && !target.IsAlive() {
		a.clearHunt()
		if leader {
			p.EndHunt()
		}
		target = nil
	}

	if target == nil {
		if !leader {
			a.wander(ctx, p, false)
			return
		}
		if target = a.startHunt(ctx, p); target == nil {
			a.wander(ctx, p, true)
			return
		}
	}

	if ctx.Config.Derived.FineHunting {
		a.huntFine(ctx, p, target, leader)
	} else {
		a.huntCoarse(ctx, p, target, leader)
	}
}

// startHunt joins the pack's running session or picks new prey and assigns
// it to every hunting-age member.
func (a *Animal) startHunt(ctx *Context, p *pack.Pack) *Animal {
	if s, ok := p.Hunt(); ok {
		if t, _ := s.Target.(*Animal); t != nil && t.IsAlive() && a.assignTarget(p, t) {
			return t
		}
	}

	prey := a.findPrey(ctx)
	if prey == nil || !a.assignTarget(p, prey) {
		return nil
	}

	if !p.BeginHunt(pack.HuntSession{Target: prey, StartedTick: ctx.Tick}) {
		// Another leader got there first this tick.
		a.clearHunt()
		return nil
	}
	ctx.record(telemetry.NewHuntEvent(telemetry.EventHuntStarted, prey.Species(), p.ID()))
	return prey
}

type preyCandidate struct {
	a       *Animal
	period  components.LifePeriod
	satiety float64
	dist    float64
}

// findPrey ranks living prey within the search radius by life period
// (calves first), then by condition, then by distance.
func (a *Animal) findPrey(ctx *Context) *Animal {
	pos := a.Position()
	found := ctx.Env.ExploreRadius(pos, ctx.Config.Derived.SearchRadius, -1, func(o *Animal) bool {
		return o != a && ctx.isPrey(o)
	})
	if len(found) == 0 {
		return nil
	}

	cands := make([]preyCandidate, len(found))
	for i, o := range found {
		o.mu.RLock()
		cands[i] = preyCandidate{a: o, period: o.period, satiety: o.satiety, dist: systems.Distance(pos, o.position)}
		o.mu.RUnlock()
	}
	sort.SliceStable(cands, func(i, j int) bool {
		ci, cj := cands[i], cands[j]
		if ci.period != cj.period {
			return ci.period < cj.period
		}
		if ci.satiety != cj.satiety {
			return ci.satiety < cj.satiety
		}
		return ci.dist < cj.dist
	})
	return cands[0].a
}

// hunters returns the living members old enough to hunt.
func hunters(p *pack.Pack) []*Animal {
	members := p.Members()
	result := make([]*Animal, 0, len(members))
	for _, m := range members {
		w, ok := m.(*Animal)
		if ok && w.IsAlive() && w.Period() != components.PeriodCalf {
			result = append(result, w)
		}
	}
	return result
}

// assignTarget points every hunter at prey while holding the prey lock.
// It fails if the prey died in the meantime.
func (a *Animal) assignTarget(p *pack.Pack, prey *Animal) bool {
	hs := hunters(p)
	if len(hs) == 0 {
		hs = []*Animal{a}
	}
	unlock := lockAll(append(hs, prey)...)
	defer unlock()

	if !prey.alive {
		return false
	}
	for _, h := range hs {
		if !h.alive {
			continue
		}
		if h.huntTarget != prey {
			h.huntTarget = prey
			h.onCircle = false
			h.preyBearing = 0
		}
	}
	return true
}

// huntCoarse resolves a hunt with one success roll per tick. Followers
// close in on the prey.
func (a *Animal) huntCoarse(ctx *Context, p *pack.Pack, prey *Animal, leader bool) {
	prm := &a.profile.Params
	a.moveTo(a.planner(ctx).RandomFollow(a.Position(), prey.Position(), 0, prm.MoveAttempts))
	if !leader {
		return
	}
	a.rollKill(ctx, p, prey)
}

// huntFine encircles the prey; once the whole pack holds the circle the
// leader rolls for the kill. The leader gives up on prey that got away or
// that the pack has circled for longer than the circling limit.
func (a *Animal) huntFine(ctx *Context, p *pack.Pack, prey *Animal, leader bool) {
	if leader && (systems.Distance(a.Position(), prey.Position()) > ctx.Config.Hunting.EscapeDistance || circledTooLong(ctx, p)) {
		a.abandonHunt(ctx, p, prey)
		return
	}

	a.encircle(ctx, p, prey)
	if !leader || !surrounds(p, prey) {
		return
	}
	a.rollKill(ctx, p, prey)
}

func circledTooLong(ctx *Context, p *pack.Pack) bool {
	limit := ctx.Config.Derived.CirclingTicks
	if limit <= 0 {
		return false
	}
	s, ok := p.Hunt()
	return ok && ctx.Tick-s.StartedTick >= limit
}

// rollKill draws against the success table and resolves the outcome.
func (a *Animal) rollKill(ctx *Context, p *pack.Pack, prey *Animal) {
	if a.rng.Float64() >= successRate(ctx, len(hunters(p)), prey) {
		ctx.record(telemetry.NewHuntEvent(telemetry.EventHuntFailed, prey.Species(), p.ID()))
		if p.FailAttempt() >= ctx.Config.Hunting.MaxKillAttempts {
			a.abandonHunt(ctx, p, prey)
		}
		return
	}

	killSite := prey.Position()
	if _, ok := a.KillAndShare(ctx, prey); !ok {
		// Someone else killed it, or it died on its own.
		a.abandonHunt(ctx, p, prey)
		return
	}
	a.finishHunt(p, prey, killSite)
}

// successRate looks up the kill probability for a pack of n hunters.
func successRate(ctx *Context, n int, prey *Animal) float64 {
	h := &ctx.Config.Hunting
	row := h.SuccessTable[prey.profile.Params.SizeClass]
	n = min(n, h.MaxPackSize, len(row))
	if n < 1 {
		return 0
	}
	return min(row[n-1]*ctx.Config.Derived.SuccessFactor, 1)
}

// Kill resolves a kill of prey by a and returns the carcass weight. Under
// both animals' locks the prey's liveness is checked again, so of any number
// of concurrent callers exactly one returns true. The weight is read in the
// same critical section, so it matches the prey's period at the kill.
func (a *Animal) Kill(ctx *Context, prey *Animal) (float64, bool) {
	if prey.profile.Diet == components.DietPredator {
		return 0, false
	}
	unlock := lockAll(a, prey)
	if !a.alive || !prey.markDeadLocked(components.CausePredation) {
		unlock()
		return 0, false
	}
	edible := prey.profile.Params.EdibleWeight.At(int(prey.period))
	packID := a.packID
	unlock()

	prey.afterDeath(ctx)
	ctx.record(telemetry.NewKillEvent(prey.Species(), packID, edible))
	return edible, true
}

// KillAndShare kills prey and divides its edible weight among a's pack.
// It returns the kg shared and whether this call made the kill.
func (a *Animal) KillAndShare(ctx *Context, prey *Animal) (float64, bool) {
	edible, ok := a.Kill(ctx, prey)
	if !ok {
		return 0, false
	}

	if p := ctx.Packs.Lookup(a.PackID()); p != nil {
		p.ShareFood(edible)
	} else {
		a.Feed(edible)
	}
	return edible, true
}

// finishHunt moves every hunter to the kill site and clears the session.
func (a *Animal) finishHunt(p *pack.Pack, prey *Animal, site components.Position) {
	for _, h := range hunters(p) {
		h.mu.Lock()
		if h.huntTarget == prey {
			h.moveLocked(site)
			h.huntTarget = nil
			h.onCircle = false
		}
		h.mu.Unlock()
	}
	p.EndHunt()
}

// abandonHunt clears every member's assignment to prey and ends the session.
func (a *Animal) abandonHunt(ctx *Context, p *pack.Pack, prey *Animal) {
	for _, h := range hunters(p) {
		h.mu.Lock()
		if h.huntTarget == prey {
			h.huntTarget = nil
			h.onCircle = false
		}
		h.mu.Unlock()
	}
	a.clearHunt()
	p.EndHunt()
	ctx.record(telemetry.NewHuntEvent(telemetry.EventHuntAbandoned, prey.Species(), p.ID()))
}

func (a *Animal) clearHunt() {
	a.mu.Lock()
	a.huntTarget = nil
	a.onCircle = false
	a.mu.Unlock()
}
