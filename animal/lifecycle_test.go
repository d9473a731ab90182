package animal

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/einp/components"
	"github.com/pthm-cable/einp/config"
	"github.com/pthm-cable/einp/pack"
	"github.com/pthm-cable/einp/systems"
	"github.com/pthm-cable/einp/telemetry"
)

var meadow = components.Position{X: 2000, Y: 2000}

func TestNewRejectsInvalidSpawn(t *testing.T) {
	f := newFixture(t, nil)
	prof := f.env.profiles[components.SpeciesBison]

	_, err := New(f.env, prof, f.env.seeds, Params{Type: components.BisonCow, Position: components.Position{X: -5, Y: 10}})
	assert.ErrorIs(t, err, ErrInvalidSpawn)

	_, err = New(f.env, prof, f.env.seeds, Params{Type: components.BisonCow, Position: f.env.pond})
	assert.ErrorIs(t, err, ErrInvalidSpawn)

	_, err = New(f.env, prof, f.env.seeds, Params{Type: components.WolfMale, Position: meadow})
	assert.Error(t, err, "wolf type with bison profile")
}

func TestNewStartsFull(t *testing.T) {
	f := newFixture(t, nil)
	a := f.spawn(t, components.BisonCalf, meadow, Params{Age: 1})

	assert.Equal(t, systems.MaxSatiety, a.Satiety())
	assert.Equal(t, systems.MaxHydration, a.Hydration())
	assert.True(t, a.IsAlive())
	assert.Equal(t, components.PeriodAdolescent, a.Period())
	assert.NotEqual(t, a.ID(), f.spawn(t, components.BisonCalf, meadow, Params{}).ID())
}

func TestDieIsIdempotent(t *testing.T) {
	f := newFixture(t, nil)
	a := f.spawn(t, components.ElkCow, meadow, Params{Age: 5})

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if a.Die(f.ctx, components.CauseAge) {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.False(t, a.IsAlive())
	assert.Equal(t, components.CauseAge, a.Cause())
	assert.Equal(t, 1, f.rec.count(telemetry.EventDeath))
	assert.Equal(t, 1, f.env.removed)
	assert.NoError(t, a.Tick(f.ctx), "dead animals tick as a no-op")
}

func TestTickWithoutClock(t *testing.T) {
	f := newFixture(t, nil)
	a := f.spawn(t, components.BisonBull, meadow, Params{Age: 5})

	f.ctx.Clock = nil
	assert.ErrorIs(t, a.Tick(f.ctx), ErrNoTimeContext)

	f.ctx.Clock = fakeClock{err: errors.New("clock stopped")}
	err := a.Tick(f.ctx)
	assert.ErrorIs(t, err, ErrNoTimeContext)
	assert.ErrorContains(t, err, "clock stopped")
}

func TestFirstTickOnlyInitializes(t *testing.T) {
	f := newFixture(t, nil)
	a, err := New(f.env, f.env.profiles[components.SpeciesBison], f.env.seeds,
		Params{Type: components.BisonCow, Position: meadow, Age: 4})
	require.NoError(t, err)

	require.NoError(t, a.Tick(f.ctx))
	assert.Equal(t, meadow, a.Position())
	assert.Equal(t, systems.MaxSatiety, a.Satiety())
	assert.Greater(t, a.rates.food[components.PeriodAdult], 0.0)
	assert.Equal(t, 4.5*3600, a.rates.runDistance)
}

func TestStarvation(t *testing.T) {
	f := newFixture(t, func(c *config.Config) { c.Species.Bison.MaxSatietyBurn = 0 })
	a := f.spawn(t, components.BisonCow, meadow, Params{Age: 4})

	a.mu.Lock()
	a.satiety = 5
	a.rates.food[components.PeriodAdult] = 10
	a.mu.Unlock()

	a.metabolize(f.ctx, 12)
	assert.False(t, a.IsAlive())
	assert.Equal(t, components.CauseNoFood, a.Cause())
	assert.Equal(t, 0.0, a.Satiety())
}

func TestMetabolizeCapsBurnAndSlowsAtNight(t *testing.T) {
	f := newFixture(t, nil)
	a := f.spawn(t, components.BisonCow, meadow, Params{Age: 4})

	a.mu.Lock()
	a.rates.food[components.PeriodAdult] = 80
	a.rates.water[components.PeriodAdult] = 8
	a.mu.Unlock()

	a.metabolize(f.ctx, 12)
	assert.InDelta(t, 100-49, a.Satiety(), 1e-9, "burn is capped at max_satiety_burn")
	assert.InDelta(t, 92, a.Hydration(), 1e-9)

	a.metabolize(f.ctx, 23)
	assert.InDelta(t, 88, a.Hydration(), 1e-9, "night water factor halves the burn")
}

func TestPregnancyRate(t *testing.T) {
	f := newFixture(t, func(c *config.Config) {
		c.Species.Elk.PregnancyChance = 0.75
		c.Species.Elk.MateSearchRadius = 0
	})

	const trials = 1000
	pregnant := 0
	for i := 0; i < trials; i++ {
		cow := f.spawn(t, components.ElkCow, meadow, Params{Age: 4})
		if cow.considerPregnancy(f.ctx) {
			pregnant++
			assert.True(t, cow.IsPregnant())
		}
	}
	assert.InDelta(t, 750, pregnant, 60)
	assert.Equal(t, pregnant, f.rec.count(telemetry.EventPregnancy))
}

func TestPredatorPregnancyRate(t *testing.T) {
	f := newFixture(t, func(c *config.Config) { c.Species.Wolf.PregnancyChance = 0.75 })

	const trials = 1000
	pregnant := 0
	for i := 0; i < trials; i++ {
		p, _ := f.wolfPack(t, 1, meadow)
		mother := f.spawn(t, components.WolfFemale, meadow, Params{Age: 3, PackID: p.ID(), Leading: true})
		p.Join(mother)
		require.Equal(t, pack.Member(mother), p.Mother())
		if mother.considerPregnancy(f.ctx) {
			pregnant++
		}
	}
	assert.InDelta(t, 750, pregnant, 60)
	assert.Equal(t, pregnant, f.rec.count(telemetry.EventPregnancy))
}

func TestPredatorNeedsLivingMate(t *testing.T) {
	f := newFixture(t, func(c *config.Config) { c.Species.Wolf.PregnancyChance = 1 })
	p, wolves := f.wolfPack(t, 1, meadow)
	mother := f.spawn(t, components.WolfFemale, meadow, Params{Age: 3, PackID: p.ID(), Leading: true})
	p.Join(mother)

	wolves[0].Die(f.ctx, components.CauseAge)
	assert.False(t, mother.considerPregnancy(f.ctx), "father is dead")

	follower := f.spawn(t, components.WolfFemale, meadow, Params{Age: 3, PackID: p.ID()})
	p.Join(follower)
	assert.False(t, follower.considerPregnancy(f.ctx), "only the pack mother breeds")
}

func TestLitterSizeRange(t *testing.T) {
	f := newFixture(t, nil)
	seen := make(map[int]int)
	for i := 0; i < 50; i++ {
		a := f.spawn(t, components.WolfFemale, meadow, Params{Age: 3})
		for j := 0; j < 20; j++ {
			n := litterSize(a, 4, 6)
			require.GreaterOrEqual(t, n, 4)
			require.LessOrEqual(t, n, 6)
			seen[n]++
		}
	}
	assert.Positive(t, seen[4], "lower bound reached")
	assert.Positive(t, seen[6], "upper bound reached")
	assert.Equal(t, 3, litterSize(nil, 3, 3))
}

func TestHerbivoreNeedsBullNearby(t *testing.T) {
	f := newFixture(t, func(c *config.Config) { c.Species.Moose.PregnancyChance = 1 })
	cow := f.spawn(t, components.MooseCow, meadow, Params{Age: 4})
	assert.False(t, cow.considerPregnancy(f.ctx), "no bull in range")

	f.spawn(t, components.MooseBull, components.Position{X: 2500, Y: 2000}, Params{Age: 4})
	assert.True(t, cow.considerPregnancy(f.ctx))
}

func TestGestationDeliversLitter(t *testing.T) {
	f := newFixture(t, nil)
	p, wolves := f.wolfPack(t, 1, meadow)
	mother := f.spawn(t, components.WolfFemale, meadow, Params{Age: 3, PackID: p.ID(), Leading: true})
	p.Join(mother)
	require.Equal(t, mother, p.Mother())
	require.Equal(t, wolves[0], p.Father())

	mother.mu.Lock()
	mother.pregnant = true
	mother.mu.Unlock()

	ticks := int(63*f.ctx.Config.Derived.TicksPerDay) + 1
	for i := 0; i < ticks && mother.IsPregnant(); i++ {
		mother.advanceGestation(f.ctx)
	}

	assert.False(t, mother.IsPregnant())
	born := f.rec.count(telemetry.EventBirth)
	assert.GreaterOrEqual(t, born, 4)
	assert.LessOrEqual(t, born, 6)
	assert.Equal(t, 2+born, p.Size(), "pups join the pack")
	for _, m := range p.Members()[2:] {
		pup := m.(*Animal)
		assert.Equal(t, components.WolfPup, pup.Type())
		assert.Equal(t, p.ID(), pup.PackID())
	}
}

func TestYearlyRoutinePromotesToAdult(t *testing.T) {
	f := newFixture(t, func(c *config.Config) { c.Species.Bison.PregnancyChance = 0 })
	a := f.spawn(t, components.BisonCalf, meadow, Params{Age: 2})
	require.Equal(t, components.PeriodAdolescent, a.Period())

	a.yearlyRoutine(f.ctx)
	assert.Equal(t, 3, a.Age())
	assert.Equal(t, components.PeriodAdult, a.Period())
	assert.NotEqual(t, components.SexUnknown, a.Sex())
}

func TestSenescenceKills(t *testing.T) {
	f := newFixture(t, func(c *config.Config) { c.Species.Elk.SenescenceStep = 1 })
	a := f.spawn(t, components.ElkBull, meadow, Params{Age: 20})

	a.yearlyRoutine(f.ctx)
	assert.False(t, a.IsAlive())
	assert.Equal(t, components.CauseAge, a.Cause())
}

func TestHerbivoreStaysInBounds(t *testing.T) {
	f := newFixture(t, func(c *config.Config) { c.Simulation.TickSeconds = 600 })
	herd := []*Animal{
		f.spawn(t, components.BisonCow, components.Position{X: 4500, Y: 5000}, Params{Age: 4}),
		f.spawn(t, components.ElkBull, components.Position{X: 100, Y: 100}, Params{Age: 4}),
		f.spawn(t, components.MooseCalf, components.Position{X: 9900, Y: 9900}, Params{}),
	}

	for i := 0; i < 2000; i++ {
		for _, a := range herd {
			require.NoError(t, a.Tick(f.ctx))
			if !a.IsAlive() {
				continue
			}
			s, h := a.needs()
			require.True(t, s >= 0 && s <= 100, "satiety %v", s)
			require.True(t, h >= 0 && h <= 100, "hydration %v", h)
			pos := a.Position()
			require.True(t, f.env.IsInsidePermittedArea(pos) && !f.env.IsInsideWater(pos), "tick %d: %v", i, pos)
		}
	}
}
