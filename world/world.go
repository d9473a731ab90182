// Package world stores the animal population in an ECS world, answers
// neighbor queries for the animal lifecycle and applies births and removals
// between ticks.
package world

import (
	"fmt"
	"sync"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/einp/animal"
	"github.com/pthm-cable/einp/components"
	"github.com/pthm-cable/einp/config"
	"github.com/pthm-cable/einp/systems"
)

// handle links an entity to its animal.
type handle struct {
	A *animal.Animal
}

// World implements animal.Environment. Queries are safe from many goroutines
// while animals tick; structural changes are queued and applied by Commit.
type World struct {
	*systems.Landscape

	cfg      *config.Config
	profiles map[components.Species]*animal.Profile
	seeds    *animal.Seeds

	ecs       *ecs.World
	mapper    *ecs.Map3[components.Position, components.Tag, handle]
	filter    *ecs.Filter3[components.Position, components.Tag, handle]
	posMap    *ecs.Map1[components.Position]
	handleMap *ecs.Map1[handle]
	grid      *systems.SpatialGrid

	// tick order, in creation order
	animals  []*animal.Animal
	entities map[*animal.Animal]ecs.Entity

	mu      sync.Mutex // guards the queues
	born    []*animal.Animal
	removed []*animal.Animal

	scratch sync.Pool
}

// New builds the landscape and an empty population.
func New(cfg *config.Config) (*World, error) {
	profiles, err := animal.NewProfiles(cfg)
	if err != nil {
		return nil, fmt.Errorf("building profiles: %w", err)
	}
	return NewWithLandscape(cfg, systems.NewLandscape(cfg.World), profiles), nil
}

// NewWithLandscape creates a world over an existing landscape.
func NewWithLandscape(cfg *config.Config, land *systems.Landscape, profiles map[components.Species]*animal.Profile) *World {
	w := ecs.NewWorld()
	world := &World{
		Landscape: land,
		cfg:       cfg,
		profiles:  profiles,
		seeds:     animal.NewSeeds(cfg.Simulation.Seed),
		ecs:       w,
		mapper:    ecs.NewMap3[components.Position, components.Tag, handle](w),
		filter:    ecs.NewFilter3[components.Position, components.Tag, handle](w),
		posMap:    ecs.NewMap1[components.Position](w),
		handleMap: ecs.NewMap1[handle](w),
		grid:      systems.NewSpatialGrid(cfg.World.Width, cfg.World.Height, cfg.World.GridCellSize),
		entities:  make(map[*animal.Animal]ecs.Entity),
	}
	world.scratch.New = func() any {
		buf := make([]systems.Neighbor, 0, 64)
		return &buf
	}
	return world
}

// Profile returns the species profile.
func (w *World) Profile(s components.Species) *animal.Profile {
	return w.profiles[s]
}

// Spawn creates an animal and queues it for the next Commit.
func (w *World) Spawn(p animal.Params) (*animal.Animal, error) {
	a, err := animal.New(w, w.profiles[p.Type.Species()], w.seeds, p)
	if err != nil {
		return nil, err
	}
	w.mu.Lock()
	w.born = append(w.born, a)
	w.mu.Unlock()
	return a, nil
}

// SpawnOffspring creates a newborn of type t at the parent's position,
// inheriting the parent's pack or herd.
func (w *World) SpawnOffspring(parent *animal.Animal, t components.AnimalType) (*animal.Animal, error) {
	return w.Spawn(animal.Params{Type: t, Position: parent.Position(), PackID: parent.PackID()})
}

// RemoveEntity queues a dead animal for removal.
func (w *World) RemoveEntity(a *animal.Animal) {
	w.mu.Lock()
	w.removed = append(w.removed, a)
	w.mu.Unlock()
}

// Commit applies queued births and removals, then syncs positions into the
// ECS and rebuilds the spatial index. It must not run concurrently with
// ticking animals. Returns the number of animals added and removed.
func (w *World) Commit() (added, removed int) {
	w.mu.Lock()
	born, gone := w.born, w.removed
	w.born, w.removed = nil, nil
	w.mu.Unlock()

	for _, a := range gone {
		e, ok := w.entities[a]
		if !ok {
			continue
		}
		w.ecs.RemoveEntity(e)
		delete(w.entities, a)
		removed++
	}
	for _, a := range born {
		if !a.IsAlive() {
			continue
		}
		pos := a.Position()
		tag := components.Tag{Species: a.Species()}
		w.entities[a] = w.mapper.NewEntity(&pos, &tag, &handle{A: a})
		added++
	}

	kept := w.animals[:0]
	for _, a := range w.animals {
		if _, ok := w.entities[a]; ok {
			kept = append(kept, a)
		}
	}
	for _, a := range born {
		if _, ok := w.entities[a]; ok {
			kept = append(kept, a)
		}
	}
	if len(kept) < len(w.animals) {
		clear(w.animals[len(kept):])
	}
	w.animals = kept

	w.sync()
	return added, removed
}

// sync copies animal positions into the ECS and rebuilds the grid.
func (w *World) sync() {
	w.grid.Clear()
	query := w.filter.Query()
	for query.Next() {
		pos, _, h := query.Get()
		*pos = h.A.Position()
		w.grid.Insert(query.Entity(), *pos)
	}
}

// Animals returns the tick order snapshot.
func (w *World) Animals() []*animal.Animal {
	result := make([]*animal.Animal, len(w.animals))
	copy(result, w.animals)
	return result
}

// Len returns the number of committed animals.
func (w *World) Len() int {
	return len(w.animals)
}

// Census counts committed living animals per species.
func (w *World) Census() map[components.Species]int {
	counts := make(map[components.Species]int, 4)
	query := w.filter.Query()
	for query.Next() {
		_, tag, h := query.Get()
		if h.A.IsAlive() {
			counts[tag.Species]++
		}
	}
	return counts
}

// NearestMatching returns the closest living animal accepted by match, or nil.
// Distances use positions as of the last Commit.
func (w *World) NearestMatching(pos components.Position, match func(*animal.Animal) bool) *animal.Animal {
	e, ok := w.grid.Nearest(pos, w.posMap, func(e ecs.Entity) bool {
		h := w.handleMap.Get(e)
		return h != nil && h.A.IsAlive() && match(h.A)
	})
	if !ok {
		return nil
	}
	return w.handleMap.Get(e).A
}

// ExploreRadius returns living animals within radius accepted by match,
// nearest first. radius -1 is unbounded; maxCount -1 is unlimited.
func (w *World) ExploreRadius(pos components.Position, radius float64, maxCount int, match func(*animal.Animal) bool) []*animal.Animal {
	bufp := w.scratch.Get().(*[]systems.Neighbor)
	neighbors := w.grid.QueryRadiusInto((*bufp)[:0], pos, radius, w.posMap)

	var result []*animal.Animal
	for _, n := range neighbors {
		if maxCount >= 0 && len(result) >= maxCount {
			break
		}
		h := w.handleMap.Get(n.E)
		if h == nil || !h.A.IsAlive() || !match(h.A) {
			continue
		}
		result = append(result, h.A)
	}

	*bufp = neighbors[:0]
	w.scratch.Put(bufp)
	return result
}
