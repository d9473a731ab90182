// Package sim drives the wildlife simulation. It owns the world, the pack
// registry and the clock, ticks every animal once per step and feeds the
// telemetry pipeline.
package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/pthm-cable/einp/animal"
	"github.com/pthm-cable/einp/components"
	"github.com/pthm-cable/einp/config"
	"github.com/pthm-cable/einp/pack"
	"github.com/pthm-cable/einp/telemetry"
	"github.com/pthm-cable/einp/world"
)

// spawnAttempts bounds the search for a valid starting position.
const spawnAttempts = 200

// Options configures a simulation run.
type Options struct {
	Logger             *slog.Logger
	OutputDir          string // CSV, config and snapshot output; empty disables
	LogStats           bool   // log every telemetry window
	SnapshotOnBookmark bool

	// StatsCallback is called with every closed telemetry window.
	StatsCallback func(telemetry.WindowStats)
}

// Simulation is the tick scheduler.
type Simulation struct {
	cfg    *config.Config
	logger *slog.Logger
	rng    *rand.Rand

	world *world.World
	packs *pack.Registry
	clock *world.Clock
	pool  *workerPool

	collector *telemetry.Collector
	perf      *telemetry.PerfCollector
	bookmarks *telemetry.BookmarkDetector
	output    *telemetry.OutputManager

	logStats           bool
	snapshotOnBookmark bool
	statsCallback      func(telemetry.WindowStats)

	// read by progress reporting while Run steps
	tick       atomic.Int64
	population atomic.Int64

	lastStats *telemetry.WindowStats
}

// New builds the landscape and the starting population.
func New(cfg *config.Config, opts Options) (*Simulation, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	w, err := world.New(cfg)
	if err != nil {
		return nil, err
	}
	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := output.WriteConfig(cfg); err != nil {
		output.Close()
		return nil, err
	}

	step := time.Duration(cfg.Simulation.TickSeconds * float64(time.Second))
	s := &Simulation{
		cfg:                cfg,
		logger:             logger,
		rng:                rand.New(rand.NewSource(cfg.Simulation.Seed)),
		world:              w,
		packs:              pack.NewRegistry(cfg.Simulation.FirstPackID),
		clock:              world.NewClock(cfg.Derived.StartTime, step),
		pool:               newWorkerPool(cfg.Simulation.Workers),
		collector:          telemetry.NewCollector(cfg.Telemetry.StatsWindowTicks, cfg.Simulation.TickSeconds),
		perf:               telemetry.NewPerfCollector(cfg.Telemetry.PerfWindowTicks),
		bookmarks:          telemetry.NewBookmarkDetector(20),
		output:             output,
		logStats:           opts.LogStats,
		snapshotOnBookmark: opts.SnapshotOnBookmark,
		statsCallback:      opts.StatsCallback,
	}

	if err := s.populate(); err != nil {
		output.Close()
		return nil, err
	}
	s.world.Commit()
	s.population.Store(int64(s.world.Len()))

	logger.Info("simulation ready",
		"animals", s.population.Load(),
		"packs", s.packs.Count(),
		"water_coverage", s.world.WaterCoverage(),
		"fine_hunting", cfg.Derived.FineHunting,
	)
	return s, nil
}

// member is one animal of a starting group before it is spawned.
type member struct {
	age int
	sex components.Sex
}

// populate spawns the configured starting groups. Herbivore groups share a
// herd id; wolf groups form a pack led by the first adult male and female.
// Every configured pack id is observed before any group allocates one.
func (s *Simulation) populate() error {
	ticksPerYear := int64(365 * s.cfg.Derived.TicksPerDay)

	for _, g := range s.cfg.Population {
		species, ok := components.ParseSpecies(g.Species)
		if ok && g.PackID > 0 && s.world.Profile(species).Diet == components.DietPredator {
			s.packs.Observe(g.PackID)
		}
	}

	for i, g := range s.cfg.Population {
		species, ok := components.ParseSpecies(g.Species)
		if !ok {
			return fmt.Errorf("population[%d]: unknown species %q", i, g.Species)
		}
		profile := s.world.Profile(species)
		predator := profile.Diet == components.DietPredator

		members := make([]member, g.Count)
		for n := range members {
			members[n].age = g.MinAge
			if g.MaxAge > g.MinAge {
				members[n].age += s.rng.Intn(g.MaxAge - g.MinAge + 1)
			}
			members[n].sex = components.SexFemale
			if s.rng.Intn(2) == 0 {
				members[n].sex = components.SexMale
			}
		}

		packID := g.PackID
		father, mother := -1, -1
		if predator {
			if packID == 0 {
				packID = s.packs.Allocate()
			}
			for n, m := range members {
				if profile.PeriodForAge(m.age) != components.PeriodAdult {
					continue
				}
				if m.sex == components.SexMale && father < 0 {
					father = n
				}
				if m.sex == components.SexFemale && mother < 0 {
					mother = n
				}
			}
		}
		paired := father >= 0 && mother >= 0

		center := components.Position{X: g.X, Y: g.Y}
		for n, m := range members {
			pos, ok := s.world.Scatter(s.rng, center, g.Spread, spawnAttempts)
			if !ok {
				return fmt.Errorf("population[%d]: no valid position within %.0f m of (%.0f, %.0f)", i, g.Spread, g.X, g.Y)
			}
			p := animal.Params{
				Type:     components.TypeFor(species, profile.PeriodForAge(m.age), m.sex),
				Position: pos,
				Age:      m.age,
				PackID:   packID,
			}
			if ticksPerYear > 0 {
				p.SinceBirthday = s.rng.Int63n(ticksPerYear)
			}
			if n == father || n == mother {
				p.Leading = true
				p.Paired = paired
			}

			a, err := s.world.Spawn(p)
			if err != nil {
				return fmt.Errorf("population[%d]: %w", i, err)
			}
			if predator {
				s.packs.GetOrCreate(packID).Join(a)
			}
		}
	}
	return nil
}

// context builds the per-step animal context.
func (s *Simulation) context() *animal.Context {
	return &animal.Context{
		Config:   s.cfg,
		Env:      s.world,
		Clock:    s.clock,
		Packs:    s.packs,
		Recorder: s.collector,
		Logger:   s.logger,
		Tick:     s.tick.Load(),
	}
}

// Step ticks every animal once, applies births and deaths and advances the
// clock. Animals are ticked on the worker pool once the population reaches
// the parallel threshold.
func (s *Simulation) Step() error {
	s.perf.StartTick()

	s.perf.StartPhase(telemetry.PhaseAnimals)
	animals := s.world.Animals()
	ctx := s.context()
	var err error
	if len(animals) >= s.cfg.Simulation.ParallelThreshold {
		err = s.pool.run(animals, ctx)
	} else {
		err = tickAll(animals, ctx)
	}

	s.perf.StartPhase(telemetry.PhaseCommit)
	added, removed := s.world.Commit()
	s.population.Store(int64(s.world.Len()))
	s.clock.Advance()
	tick := s.tick.Add(1)

	s.perf.StartPhase(telemetry.PhaseTelemetry)
	s.flushTelemetry()
	s.perf.EndTick(len(animals))

	if added > 0 || removed > 0 {
		s.logger.Debug("commit", "tick", tick, "added", added, "removed", removed)
	}
	if err != nil {
		return fmt.Errorf("tick %d: %w", tick, err)
	}
	return nil
}

// Run steps until ticks have elapsed (0 runs until cancelled), the context
// is cancelled or the population dies out.
func (s *Simulation) Run(ctx context.Context, ticks int64) error {
	for ticks <= 0 || s.tick.Load() < ticks {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.world.Len() == 0 {
			s.logger.Warn("population extinct", "tick", s.tick.Load())
			return nil
		}
		if err := s.Step(); err != nil {
			return err
		}
	}
	s.logger.Info("max ticks reached", "tick", s.tick.Load())
	return nil
}

// flushTelemetry closes a stats window when due and handles bookmarks.
func (s *Simulation) flushTelemetry() {
	if !s.collector.ShouldFlush(s.tick.Load()) {
		return
	}

	stats := s.collector.Flush(s.tick.Load(), s.sample())
	perfStats := s.perf.Stats()
	s.lastStats = &stats
	if s.statsCallback != nil {
		s.statsCallback(stats)
	}

	if s.logStats {
		stats.LogStats()
		perfStats.LogStats()
		s.logWorldState()
	}

	if err := s.output.WriteTelemetry(stats); err != nil {
		s.logger.Error("failed to write telemetry", "error", err)
	}
	if err := s.output.WritePerf(perfStats, stats.WindowEndTick); err != nil {
		s.logger.Error("failed to write perf", "error", err)
	}

	for _, bm := range s.bookmarks.Check(stats) {
		if s.logStats {
			bm.LogBookmark()
		}
		if err := s.output.WriteBookmark(bm); err != nil {
			s.logger.Error("failed to write bookmark", "error", err)
		}
		if s.snapshotOnBookmark {
			snap := s.Snapshot()
			snap.Bookmark = &bm
			if _, err := s.output.WriteSnapshot(snap); err != nil {
				s.logger.Error("failed to save snapshot", "error", err)
			}
		}
	}
}

// sample collects the population state for a telemetry window.
func (s *Simulation) sample() telemetry.PopulationSample {
	pop := telemetry.PopulationSample{
		Census: s.world.Census(),
		Packs:  s.packs.Active(),
	}
	for _, a := range s.world.Animals() {
		if !a.IsAlive() {
			continue
		}
		if a.Diet() == components.DietPredator {
			pop.PredatorSatiety = append(pop.PredatorSatiety, a.Satiety())
		} else {
			pop.HerbivoreSatiety = append(pop.HerbivoreSatiety, a.Satiety())
		}
		pop.Hydration = append(pop.Hydration, a.Hydration())
	}
	return pop
}

// Snapshot captures the living population and the packs.
func (s *Simulation) Snapshot() *telemetry.Snapshot {
	now, _ := s.clock.Now()
	snap := &telemetry.Snapshot{
		Version: telemetry.SnapshotVersion,
		Seed:    s.cfg.Simulation.Seed,
		Tick:    s.tick.Load(),
		SimTime: now,
	}

	for _, a := range s.world.Animals() {
		if !a.IsAlive() {
			continue
		}
		pos := a.Position()
		snap.Animals = append(snap.Animals, telemetry.AnimalState{
			ID:        a.ID().String(),
			Species:   a.Species().String(),
			Type:      a.Type().String(),
			Age:       a.Age(),
			X:         pos.X,
			Y:         pos.Y,
			Satiety:   a.Satiety(),
			Hydration: a.Hydration(),
			FoodEaten: a.FoodEaten(),
			PackID:    a.PackID(),
			Leading:   a.IsLeading(),
			Pregnant:  a.IsPregnant(),
		})
	}

	for _, p := range s.packs.Packs() {
		ps := telemetry.PackState{ID: p.ID(), Size: p.Size()}
		if f, ok := p.Father().(*animal.Animal); ok {
			ps.Father = f.ID().String()
		}
		if m, ok := p.Mother().(*animal.Animal); ok {
			ps.Mother = m.ID().String()
		}
		_, ps.Hunting = p.Hunt()
		snap.Packs = append(snap.Packs, ps)
	}
	return snap
}

// SaveSnapshot writes the current snapshot to the output directory.
func (s *Simulation) SaveSnapshot() (string, error) {
	if s.output == nil {
		return "", errors.New("output disabled")
	}
	return s.output.WriteSnapshot(s.Snapshot())
}

// Tick returns the number of completed steps. Safe to call while Run is stepping.
func (s *Simulation) Tick() int64 { return s.tick.Load() }

// Population returns the number of animals as of the last commit. Safe to
// call while Run is stepping.
func (s *Simulation) Population() int { return int(s.population.Load()) }

// World returns the animal world.
func (s *Simulation) World() *world.World { return s.world }

// Packs returns the pack registry.
func (s *Simulation) Packs() *pack.Registry { return s.packs }

// Now returns the simulated time.
func (s *Simulation) Now() time.Time {
	now, _ := s.clock.Now()
	return now
}

// LastStats returns the most recent telemetry window, if any.
func (s *Simulation) LastStats() (telemetry.WindowStats, bool) {
	if s.lastStats == nil {
		return telemetry.WindowStats{}, false
	}
	return *s.lastStats, true
}

// Close stops the workers and closes output files.
func (s *Simulation) Close() error {
	s.pool.stop()
	return s.output.Close()
}
