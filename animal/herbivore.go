package animal

import (
	"github.com/pthm-cable/einp/components"
	"github.com/pthm-cable/einp/systems"
)

// herbivore grazes when hungry, drinks when thirsty and otherwise wanders.
type herbivore struct{}

func (herbivore) act(a *Animal, ctx *Context) {
	prm := &a.profile.Params
	satiety, hydration := a.needs()
	switch {
	case satiety < prm.SatietyThreshold:
		a.graze(ctx)
	case hydration < prm.HydrationThreshold:
		a.drink(ctx)
	default:
		a.walk(ctx)
	}
}

func (herbivore) onAdulthood(*Animal, *Context) {}

// A cow needs an adult bull of her species within mate_search_radius.
func (herbivore) mateAvailable(a *Animal, ctx *Context) bool {
	radius := a.profile.Params.MateSearchRadius
	if radius <= 0 {
		return true
	}
	species := a.profile.Species
	pos := a.Position()
	bull := ctx.Env.NearestMatching(pos, func(o *Animal) bool {
		return o != a && o.Species() == species && o.Sex() == components.SexMale
	})
	return bull != nil && systems.Distance(pos, bull.Position()) <= radius
}

// Herds have no registry entry; calves inherit the herd id at spawn.
func (herbivore) adoptLitter(*Animal, *Context, []*Animal) {}

// graze eats in place when the ground is rich enough, else moves to the best
// nearby cell. With nothing edible around it wanders instead.
func (a *Animal) graze(ctx *Context) {
	prm := &a.profile.Params
	pos := a.Position()

	if ctx.Env.RasterValueAt(pos) < prm.MinVegetation {
		spot, ok := ctx.Env.BestGrazingSpot(pos, prm.GrazeRadius, prm.MinVegetation)
		if !ok {
			a.walk(ctx)
			return
		}
		pos = spot
	}

	a.mu.Lock()
	a.moveLocked(pos)
	a.satiety = systems.Replenish(a.satiety, prm.FoodGain)
	a.mu.Unlock()
}

// drink heads for the nearest shore and drinks on arrival.
func (a *Animal) drink(ctx *Context) {
	prm := &a.profile.Params
	pos := a.Position()

	shore, ok := ctx.Env.NearestShore(pos, prm.WaterSearchRadius)
	if !ok {
		a.walk(ctx)
		return
	}
	if systems.Distance(pos, shore) > a.rates.runDistance {
		a.moveTo(a.planner(ctx).RandomFollow(pos, shore, a.rates.runDistance, prm.MoveAttempts))
		return
	}

	a.mu.Lock()
	a.moveLocked(shore)
	a.hydration = systems.Replenish(a.hydration, prm.WaterGain)
	a.mu.Unlock()
}

// walk takes a random step within the species' walking range.
func (a *Animal) walk(ctx *Context) {
	prm := &a.profile.Params
	dest := a.planner(ctx).RandomWalk(a.Position(), a.rates.walkMin, a.rates.walkMax, prm.MoveAttempts)
	a.moveTo(dest)
}
