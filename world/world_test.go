package world

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/einp/animal"
	"github.com/pthm-cable/einp/components"
	"github.com/pthm-cable/einp/config"
	"github.com/pthm-cable/einp/systems"
)

// newTestWorld builds a 4 km square park with one lake at (3000, 3000).
func newTestWorld(t *testing.T) *World {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.World.Width = 4000
	cfg.World.Height = 4000
	cfg.World.GridCellSize = 500
	cfg.World.Perimeter = nil
	cfg.World.Lakes = []config.LakeConfig{{X: 3000, Y: 3000, Radius: 300}}
	cfg.World.Noise.WaterThreshold = 0
	require.NoError(t, cfg.Recompute())

	w, err := New(cfg)
	require.NoError(t, err)
	return w
}

func pos(x, y float64) components.Position { return components.Position{X: x, Y: y} }

func spawn(t *testing.T, w *World, typ components.AnimalType, at components.Position) *animal.Animal {
	t.Helper()
	a, err := w.Spawn(animal.Params{Type: typ, Position: at, Age: 4})
	require.NoError(t, err)
	return a
}

func TestSpawnVisibleAfterCommit(t *testing.T) {
	w := newTestWorld(t)
	spawn(t, w, components.BisonCow, pos(500, 500))
	spawn(t, w, components.ElkBull, pos(600, 500))
	spawn(t, w, components.WolfMale, pos(700, 500))

	assert.Equal(t, 0, w.Len())
	added, removed := w.Commit()
	assert.Equal(t, 3, added)
	assert.Equal(t, 0, removed)
	assert.Equal(t, 3, w.Len())

	census := w.Census()
	assert.Equal(t, 1, census[components.SpeciesBison])
	assert.Equal(t, 1, census[components.SpeciesWolf])
	assert.Equal(t, 0, census[components.SpeciesMoose])
}

func TestSpawnRejectsWater(t *testing.T) {
	w := newTestWorld(t)
	require.True(t, w.IsInsideWater(pos(3000, 3000)))
	_, err := w.Spawn(animal.Params{Type: components.MooseCow, Position: pos(3000, 3000)})
	assert.ErrorIs(t, err, animal.ErrInvalidSpawn)
}

func TestExploreRadius(t *testing.T) {
	w := newTestWorld(t)
	far := spawn(t, w, components.BisonCow, pos(1400, 1000))
	near := spawn(t, w, components.BisonCow, pos(1050, 1000))
	mid := spawn(t, w, components.ElkCow, pos(1200, 1000))
	spawn(t, w, components.BisonCow, pos(3500, 1000))
	w.Commit()

	all := func(*animal.Animal) bool { return true }
	got := w.ExploreRadius(pos(1000, 1000), 500, -1, all)
	assert.Equal(t, []*animal.Animal{near, mid, far}, got)

	got = w.ExploreRadius(pos(1000, 1000), 500, 2, all)
	assert.Equal(t, []*animal.Animal{near, mid}, got)

	bison := func(a *animal.Animal) bool { return a.Species() == components.SpeciesBison }
	got = w.ExploreRadius(pos(1000, 1000), 500, -1, bison)
	assert.Equal(t, []*animal.Animal{near, far}, got)

	assert.Len(t, w.ExploreRadius(pos(1000, 1000), -1, -1, all), 4)
}

func TestQueriesSkipDead(t *testing.T) {
	w := newTestWorld(t)
	a := spawn(t, w, components.ElkBull, pos(1000, 1000))
	b := spawn(t, w, components.ElkBull, pos(1500, 1000))
	w.Commit()

	ctx := &animal.Context{Config: w.cfg, Env: w}
	require.True(t, a.Die(ctx, components.CauseAge))

	assert.Same(t, b, w.NearestMatching(pos(900, 1000), func(*animal.Animal) bool { return true }))
	assert.Equal(t, []*animal.Animal{b}, w.ExploreRadius(pos(1000, 1000), 1000, -1, func(*animal.Animal) bool { return true }))

	_, removed := w.Commit()
	assert.Equal(t, 1, removed)
	assert.Equal(t, []*animal.Animal{b}, w.Animals())
}

func TestCommitBirthsIntoEmptyWorld(t *testing.T) {
	w := newTestWorld(t)
	var want []*animal.Animal
	for i := 0; i < 40; i++ {
		want = append(want, spawn(t, w, components.BisonCow, pos(200+float64(i)*50, 500)))
	}
	added, _ := w.Commit()
	assert.Equal(t, 40, added)
	assert.Equal(t, want, w.Animals())
}

func TestCommitBirthsOutnumberSurvivors(t *testing.T) {
	w := newTestWorld(t)
	a := spawn(t, w, components.ElkCow, pos(1000, 1000))
	b := spawn(t, w, components.ElkCow, pos(1100, 1000))
	w.Commit()

	ctx := &animal.Context{Config: w.cfg, Env: w}
	require.True(t, a.Die(ctx, components.CauseAge))
	c1 := spawn(t, w, components.ElkCow, pos(1200, 1000))
	c2 := spawn(t, w, components.ElkCow, pos(1300, 1000))
	c3 := spawn(t, w, components.ElkCow, pos(1400, 1000))

	added, removed := w.Commit()
	assert.Equal(t, 3, added)
	assert.Equal(t, 1, removed)
	assert.Equal(t, []*animal.Animal{b, c1, c2, c3}, w.Animals())
	assert.Equal(t, 4, w.Census()[components.SpeciesElk])
}

func TestNearestMatching(t *testing.T) {
	w := newTestWorld(t)
	spawn(t, w, components.MooseCow, pos(100, 100))
	bull := spawn(t, w, components.MooseBull, pos(3900, 200))
	w.Commit()

	got := w.NearestMatching(pos(200, 200), func(a *animal.Animal) bool { return a.Sex() == components.SexMale })
	assert.Same(t, bull, got)
	assert.Nil(t, w.NearestMatching(pos(200, 200), func(a *animal.Animal) bool { return a.Diet() == components.DietPredator }))
}

func TestSpawnOffspringInheritsGroup(t *testing.T) {
	w := newTestWorld(t)
	mother, err := w.Spawn(animal.Params{Type: components.WolfFemale, Position: pos(800, 800), Age: 4, PackID: 17})
	require.NoError(t, err)
	w.Commit()

	pup, err := w.SpawnOffspring(mother, components.WolfPup)
	require.NoError(t, err)
	assert.Equal(t, 17, pup.PackID())
	assert.Equal(t, mother.Position(), pup.Position())
	assert.Equal(t, 1, w.Len())

	w.Commit()
	assert.Equal(t, []*animal.Animal{mother, pup}, w.Animals())
}

func TestCommitSyncsPositions(t *testing.T) {
	w := newTestWorld(t)
	a := spawn(t, w, components.BisonBull, pos(500, 500))
	w.Commit()

	ctx := &animal.Context{Config: w.cfg, Env: w, Clock: NewClock(w.cfg.Derived.StartTime, time.Hour)}
	for i := 0; i < 5; i++ {
		require.NoError(t, a.Tick(ctx))
	}
	w.Commit()

	got := w.ExploreRadius(a.Position(), 1, -1, func(*animal.Animal) bool { return true })
	assert.Equal(t, []*animal.Animal{a}, got)
}

func TestConcurrentQueries(t *testing.T) {
	w := newTestWorld(t)
	for i := 0; i < 200; i++ {
		spawn(t, w, components.ElkCow, systems.Offset(pos(1500, 1500), float64(i)*7, float64(i*5)))
	}
	w.Commit()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				found := w.ExploreRadius(pos(1500, 1500), 400, -1, func(*animal.Animal) bool { return true })
				assert.NotEmpty(t, found)
				if i%10 == g {
					w.RemoveEntity(found[0])
				}
			}
		}(g)
	}
	wg.Wait()
}

func TestClock(t *testing.T) {
	var zero Clock
	_, err := zero.Now()
	assert.ErrorIs(t, err, animal.ErrNoTimeContext)

	start := time.Date(2024, 4, 1, 6, 0, 0, 0, time.UTC)
	c := NewClock(start, 30*time.Minute)
	c.Advance()
	c.Advance()
	now, err := c.Now()
	require.NoError(t, err)
	assert.Equal(t, start.Add(time.Hour), now)
}
