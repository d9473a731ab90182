package animal

import (
	"errors"
	"fmt"
	"math"

	"github.com/pthm-cable/einp/components"
	"github.com/pthm-cable/einp/systems"
	"github.com/pthm-cable/einp/telemetry"
)

// Hours of the day over which a full reserve is used up.
const (
	foodActiveHours  = 16
	waterActiveHours = 24
)

// Tick advances the animal by one simulation step. Dead animals are a no-op.
// It returns ErrNoTimeContext when the clock cannot report the time.
func (a *Animal) Tick(ctx *Context) error {
	a.mu.RLock()
	state := a.state
	a.mu.RUnlock()
	if state == stateDead {
		return nil
	}

	if ctx.Clock == nil {
		return fmt.Errorf("%s: %w", a, ErrNoTimeContext)
	}
	now, err := ctx.Clock.Now()
	if err != nil {
		if !errors.Is(err, ErrNoTimeContext) {
			err = fmt.Errorf("%w: %w", ErrNoTimeContext, err)
		}
		return fmt.Errorf("%s: %w", a, err)
	}

	if state == stateUninitialized {
		a.firstTick(ctx)
		return nil
	}

	a.advanceGestation(ctx)

	a.mu.RLock()
	birthday := ctx.ticksToDays(a.ticksSinceBirthday) >= 365
	a.mu.RUnlock()
	if birthday {
		a.yearlyRoutine(ctx)
	}
	if !a.IsAlive() {
		return nil
	}

	a.profile.behavior().act(a, ctx)
	if !a.IsAlive() {
		return nil
	}
	a.metabolize(ctx, now.Hour())
	return nil
}

// firstTick computes the per-tick constants for this animal's species.
func (a *Animal) firstTick(ctx *Context) {
	prm := &a.profile.Params
	tick := ctx.Config.Simulation.TickSeconds

	var r rates
	r.runDistance = prm.RunningSpeed * tick
	r.walkMin = math.Round(prm.RandomWalkMin / 3600 * tick)
	r.walkMax = math.Round(prm.RandomWalkMax / 3600 * tick)
	for p := 0; p < 3; p++ {
		r.food[p] = systems.PerTick(systems.HourlyBurn(prm.DailyFood.At(p), prm.DailyFood.Adult, foodActiveHours), tick)
		r.water[p] = systems.PerTick(systems.HourlyBurn(prm.DailyWater.At(p), prm.DailyWater.Adult, waterActiveHours), tick)
	}

	a.mu.Lock()
	a.rates = r
	a.state = stateActive
	a.mu.Unlock()
}

// advanceGestation counts lived ticks and delivers a due litter.
func (a *Animal) advanceGestation(ctx *Context) {
	a.mu.Lock()
	a.ticksLived++
	a.ticksSinceBirthday++
	due := false
	if a.pregnant {
		a.pregnancyTicks++
		if ctx.ticksToDays(a.pregnancyTicks) >= a.profile.Params.GestationDays {
			a.pregnant = false
			a.pregnancyTicks = 0
			due = true
		}
	}
	a.mu.Unlock()

	if due {
		a.giveBirth(ctx)
	}
}

func (a *Animal) giveBirth(ctx *Context) {
	prm := &a.profile.Params
	n := litterSize(a, prm.LitterMin, prm.LitterMax)
	newborn := components.TypeFor(a.profile.Species, components.PeriodCalf, components.SexUnknown)

	litter := make([]*Animal, 0, n)
	for i := 0; i < n; i++ {
		child, err := ctx.Env.SpawnOffspring(a, newborn)
		if err != nil {
			ctx.logger().Warn("spawn_failed", "parent", a.String(), "err", err)
			continue
		}
		litter = append(litter, child)
		ctx.record(telemetry.NewBirthEvent(a.profile.Species))
	}
	if len(litter) > 0 {
		a.profile.behavior().adoptLitter(a, ctx, litter)
	}
}

// litterSize draws uniformly from [lo, hi].
func litterSize(a *Animal, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + a.rng.Intn(hi-lo+1)
}

// yearlyRoutine ages the animal, updates its life period and rolls for
// senescence and pregnancy.
func (a *Animal) yearlyRoutine(ctx *Context) {
	prm := &a.profile.Params

	a.mu.Lock()
	a.ticksSinceBirthday = 0
	a.age++
	age := a.age
	period := a.profile.PeriodForAge(age)
	becameAdult := period == components.PeriodAdult && a.period != components.PeriodAdult
	if period != a.period {
		a.period = period
		sex := a.animalType.Sex()
		if becameAdult {
			sex = components.SexFemale
			if a.rng.Intn(2) == 0 {
				sex = components.SexMale
			}
		}
		a.animalType = components.TypeFor(a.profile.Species, period, sex)
	}
	female := a.animalType.Sex() == components.SexFemale
	pregnant := a.pregnant
	a.mu.Unlock()

	if becameAdult {
		a.profile.behavior().onAdulthood(a, ctx)
	}

	if prm.SenescenceAge > 0 && age > prm.SenescenceAge {
		chance := float64(age-prm.SenescenceAge) * prm.SenescenceStep
		if a.rng.Float64() < chance {
			a.Die(ctx, components.CauseAge)
			return
		}
	}

	if female && !pregnant && age >= prm.ReproductionMinAge && age <= prm.ReproductionMaxAge {
		a.considerPregnancy(ctx)
	}
}

// considerPregnancy rolls for conception when a mate is available.
func (a *Animal) considerPregnancy(ctx *Context) bool {
	if !a.profile.behavior().mateAvailable(a, ctx) {
		return false
	}
	if a.rng.Float64() >= a.profile.Params.PregnancyChance {
		return false
	}

	a.mu.Lock()
	if !a.alive || a.pregnant {
		a.mu.Unlock()
		return false
	}
	a.pregnant = true
	a.pregnancyTicks = 0
	a.mu.Unlock()

	ctx.record(telemetry.NewPregnancyEvent(a.profile.Species))
	return true
}

// metabolize burns satiety and hydration for one tick. An empty food
// reserve is fatal.
func (a *Animal) metabolize(ctx *Context, hour int) {
	prm := &a.profile.Params
	night := ctx.night()

	a.mu.Lock()
	food := a.rates.food[a.period] * night.NightFactor(hour, prm.NightFoodFactor)
	water := a.rates.water[a.period] * night.NightFactor(hour, prm.NightWaterFactor)
	if prm.MaxSatietyBurn > 0 && food > prm.MaxSatietyBurn {
		food = prm.MaxSatietyBurn
	}
	a.satiety = systems.Deplete(a.satiety, food)
	a.hydration = systems.Deplete(a.hydration, water)
	starving := a.satiety <= 0
	a.mu.Unlock()

	if starving {
		a.Die(ctx, components.CauseNoFood)
	}
}
