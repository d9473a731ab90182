package animal

import (
	"github.com/pthm-cable/einp/components"
	"github.com/pthm-cable/einp/pack"
	"github.com/pthm-cable/einp/telemetry"
)

// predator lives in a pack: the leader roams and starts hunts, the rest
// follow and join them.
type predator struct{}

func (predator) act(a *Animal, ctx *Context) {
	if a.wantsPartner(ctx) {
		a.searchPartner(ctx)
	}

	p := ctx.Packs.Lookup(a.PackID())
	leader := a.leads(p)
	prm := &a.profile.Params
	_, hydration := a.needs()

	switch {
	case p != nil && a.HuntTarget() != nil:
		a.hunt(ctx, p, leader)
	case p != nil && leader && packHungry(p, prm.SatietyThreshold):
		a.hunt(ctx, p, leader)
	case hydration < prm.HydrationThreshold:
		a.drink(ctx)
	default:
		a.wander(ctx, p, leader)
	}
}

// Young adults may leave to found their own pack.
func (predator) onAdulthood(a *Animal, ctx *Context) {
	if a.rng.Float64() < a.profile.Params.LeavePackChance {
		a.leaveNatalPack(ctx)
	}
}

// Only the pack's mother conceives, and only with a living father present.
func (predator) mateAvailable(a *Animal, ctx *Context) bool {
	p := ctx.Packs.Lookup(a.PackID())
	if p == nil || p.Mother() != pack.Member(a) {
		return false
	}
	f := p.Father()
	return f != nil && f.IsAlive()
}

func (predator) adoptLitter(a *Animal, ctx *Context, litter []*Animal) {
	p := ctx.Packs.GetOrCreate(a.PackID())
	members := make([]pack.Member, len(litter))
	for i, pup := range litter {
		members[i] = pup
	}
	p.InsertLitter(members)
}

// leads reports whether a is the pack's current leader. A wolf without a
// pack leads itself.
func (a *Animal) leads(p *pack.Pack) bool {
	if p == nil {
		return true
	}
	return p.FindLeader() == pack.Member(a)
}

// packHungry reports whether any hunting-age member is below threshold.
func packHungry(p *pack.Pack, threshold float64) bool {
	for _, m := range p.Members() {
		w, ok := m.(*Animal)
		if !ok || !w.IsAlive() || w.Period() == components.PeriodCalf {
			continue
		}
		if w.Satiety() < threshold {
			return true
		}
	}
	return false
}

// wander roams for a leader and follows the leader otherwise.
func (a *Animal) wander(ctx *Context, p *pack.Pack, leader bool) {
	prm := &a.profile.Params
	pl := a.planner(ctx)

	var target *Animal
	if !leader && p != nil {
		target, _ = p.FindLeader().(*Animal)
	}
	if target == nil || target == a {
		a.mu.RLock()
		last, pos := a.lastPosition, a.position
		a.mu.RUnlock()
		a.moveTo(pl.RandomRoam(last, pos, a.rates.walkMin, a.rates.walkMax, prm.MoveAttempts))
		return
	}
	a.moveTo(pl.RandomFollow(a.Position(), target.Position(), a.rates.walkMax, prm.MoveAttempts))
}

// leaveNatalPack founds a new pack with a as its leader. A female then
// waits for a leading male to claim her.
func (a *Animal) leaveNatalPack(ctx *Context) {
	old := a.PackID()

	a.mu.Lock()
	a.leading = true
	a.paired = false
	a.seekingPartner = false
	a.huntTarget = nil
	a.onCircle = false
	a.mu.Unlock()

	a.leavePack(ctx, old)
	np := ctx.Packs.Found(a)

	a.mu.Lock()
	a.packID = np.ID()
	a.seekingPartner = a.animalType == components.WolfFemale
	a.mu.Unlock()

	ctx.record(telemetry.NewPackEvent(telemetry.EventPackFounded, np.ID()))
	ctx.logger().Debug("pack_founded", "pack", np.ID(), "founder", a.String(), "from", old)
}
