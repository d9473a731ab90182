package animal

import (
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/einp/components"
	"github.com/pthm-cable/einp/config"
	"github.com/pthm-cable/einp/pack"
	"github.com/pthm-cable/einp/systems"
	"github.com/pthm-cable/einp/telemetry"
)

// fakeEnv is an open square with one round pond and uniform grass.
type fakeEnv struct {
	size       float64
	pond       components.Position
	pondRadius float64

	profiles map[components.Species]*Profile
	seeds    *Seeds

	mu      sync.Mutex
	animals []*Animal
	removed int
}

func (e *fakeEnv) IsInsidePermittedArea(p components.Position) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < e.size && p.Y < e.size
}

func (e *fakeEnv) IsInsideWater(p components.Position) bool {
	return systems.Distance(p, e.pond) <= e.pondRadius
}

func (e *fakeEnv) RasterValueAt(components.Position) float64 { return 0.5 }

func (e *fakeEnv) BestGrazingSpot(pos components.Position, _, _ float64) (components.Position, bool) {
	return pos, true
}

func (e *fakeEnv) NearestShore(pos components.Position, radius float64) (components.Position, bool) {
	b := systems.BearingTo(e.pond, pos)
	shore := systems.Offset(e.pond, b, e.pondRadius+1)
	if systems.Distance(pos, shore) > radius {
		return components.Position{}, false
	}
	return shore, true
}

func (e *fakeEnv) snapshot() []*Animal {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*Animal(nil), e.animals...)
}

func (e *fakeEnv) NearestMatching(pos components.Position, match func(*Animal) bool) *Animal {
	found := e.ExploreRadius(pos, -1, 1, match)
	if len(found) == 0 {
		return nil
	}
	return found[0]
}

func (e *fakeEnv) ExploreRadius(pos components.Position, radius float64, maxCount int, match func(*Animal) bool) []*Animal {
	var result []*Animal
	for _, a := range e.snapshot() {
		if !a.IsAlive() || !match(a) {
			continue
		}
		if radius >= 0 && systems.Distance(pos, a.Position()) > radius {
			continue
		}
		result = append(result, a)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return systems.Distance(pos, result[i].Position()) < systems.Distance(pos, result[j].Position())
	})
	if maxCount >= 0 && len(result) > maxCount {
		result = result[:maxCount]
	}
	return result
}

func (e *fakeEnv) SpawnOffspring(parent *Animal, t components.AnimalType) (*Animal, error) {
	child, err := New(e, parent.profile, e.seeds, Params{Type: t, Position: parent.Position(), PackID: parent.PackID()})
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	e.animals = append(e.animals, child)
	e.mu.Unlock()
	return child, nil
}

func (e *fakeEnv) RemoveEntity(*Animal) {
	e.mu.Lock()
	e.removed++
	e.mu.Unlock()
}

type fakeClock struct {
	now time.Time
	err error
}

func (c fakeClock) Now() (time.Time, error) { return c.now, c.err }

type fakeRecorder struct {
	mu     sync.Mutex
	events []telemetry.Event
}

func (r *fakeRecorder) Record(ev telemetry.Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *fakeRecorder) count(t telemetry.EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.Type == t {
			n++
		}
	}
	return n
}

type fixture struct {
	ctx *Context
	env *fakeEnv
	rec *fakeRecorder
}

// newFixture loads the default config, applies tweak and builds a context
// around a 10 km fake world.
func newFixture(t *testing.T, tweak func(*config.Config)) *fixture {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	if tweak != nil {
		tweak(cfg)
		require.NoError(t, cfg.Recompute())
	}
	profiles, err := NewProfiles(cfg)
	require.NoError(t, err)

	env := &fakeEnv{
		size:       10000,
		pond:       components.Position{X: 5000, Y: 5000},
		pondRadius: 200,
		profiles:   profiles,
		seeds:      NewSeeds(cfg.Simulation.Seed),
	}
	rec := &fakeRecorder{}
	ctx := &Context{
		Config:   cfg,
		Env:      env,
		Clock:    fakeClock{now: cfg.Derived.StartTime.Add(6 * time.Hour)},
		Packs:    pack.NewRegistry(cfg.Simulation.FirstPackID),
		Recorder: rec,
	}
	return &fixture{ctx: ctx, env: env, rec: rec}
}

// spawn adds an initialized animal to the fake world.
func (f *fixture) spawn(t *testing.T, typ components.AnimalType, pos components.Position, p Params) *Animal {
	t.Helper()
	p.Type = typ
	p.Position = pos
	a, err := New(f.env, f.env.profiles[typ.Species()], f.env.seeds, p)
	require.NoError(t, err)
	a.firstTick(f.ctx)

	f.env.mu.Lock()
	f.env.animals = append(f.env.animals, a)
	f.env.mu.Unlock()
	return a
}

// wolfPack spawns n adult wolves around pos in a fresh pack led by the first.
func (f *fixture) wolfPack(t *testing.T, n int, pos components.Position) (*pack.Pack, []*Animal) {
	t.Helper()
	id := f.ctx.Packs.Allocate()
	p := f.ctx.Packs.GetOrCreate(id)
	wolves := make([]*Animal, n)
	for i := range wolves {
		at := systems.Offset(pos, float64(i)*30, 20)
		wolves[i] = f.spawn(t, components.WolfMale, at, Params{Age: 4, PackID: id, Leading: i == 0})
		p.Join(wolves[i])
	}
	return p, wolves
}
