package animal

import (
	"github.com/pthm-cable/einp/components"
	"github.com/pthm-cable/einp/telemetry"
)

// wantsPartner reports whether a is a leading male of a pack without a
// mother and this tick is one of its periodic search ticks.
func (a *Animal) wantsPartner(ctx *Context) bool {
	a.mu.RLock()
	eligible := a.alive && a.leading && !a.paired && a.animalType == components.WolfMale
	lived, packID := a.ticksLived, a.packID
	a.mu.RUnlock()
	if !eligible {
		return false
	}

	p := ctx.Packs.Lookup(packID)
	if p == nil || p.Mother() != nil {
		return false
	}
	return lived%ctx.Config.Derived.PartnerInterval == 0
}

// searchPartner claims the nearest seeking female within range. Several males
// may find the same female; only one claim succeeds.
func (a *Animal) searchPartner(ctx *Context) bool {
	species := a.profile.Species
	found := ctx.Env.ExploreRadius(a.Position(), ctx.Config.Hunting.PartnerSearchRadius, -1, func(o *Animal) bool {
		return o != a && o.Species() == species && o.SeekingPartner()
	})
	for _, f := range found {
		if a.claimPartner(ctx, f) {
			return true
		}
	}
	return false
}

// claimPartner pairs a with female f and moves her into a's pack. Both flags
// are checked and flipped under both locks.
func (a *Animal) claimPartner(ctx *Context, f *Animal) bool {
	unlock := lockAll(a, f)
	if !a.alive || a.paired || !f.alive || !f.seekingPartner || f.animalType != components.WolfFemale {
		unlock()
		return false
	}
	a.paired = true
	f.paired = true
	f.seekingPartner = false
	f.leading = true
	f.huntTarget = nil
	f.onCircle = false
	old, packID := f.packID, a.packID
	f.packID = packID
	unlock()

	if p := ctx.Packs.Lookup(old); p != nil {
		p.Leave(f)
	}
	ctx.Packs.GetOrCreate(packID).Join(f)

	ctx.record(telemetry.NewPackEvent(telemetry.EventPairing, packID))
	ctx.logger().Debug("pair_formed", "pack", packID, "male", a.String(), "female", f.String(), "from", old)
	return true
}
