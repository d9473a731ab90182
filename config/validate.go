package config

import (
	"errors"
	"fmt"
	"sort"

	"github.com/agnivade/levenshtein"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Validate checks ranges and cross references between sections.
func (c *Config) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if c.Simulation.TickSeconds <= 0 {
		fail("simulation.tick_seconds must be positive, got %v", c.Simulation.TickSeconds)
	}
	if c.World.Width <= 0 || c.World.Height <= 0 {
		fail("world size must be positive, got %vx%v", c.World.Width, c.World.Height)
	}
	if c.World.RasterCellSize <= 0 || c.World.GridCellSize <= 0 {
		fail("world cell sizes must be positive")
	}
	if n := len(c.World.Perimeter); n > 0 && n < 3 {
		fail("world.perimeter needs at least 3 vertices, got %d", n)
	}
	if !validHour(c.Night.StartHour) || !validHour(c.Night.EndHour) {
		fail("night hours must be in 0..23, got %d..%d", c.Night.StartHour, c.Night.EndHour)
	}

	for _, name := range c.Species.Names() {
		sp, _ := c.Species.Lookup(name)
		if sp.Diet != "herbivore" && sp.Diet != "predator" {
			fail("species.%s.diet %q must be herbivore or predator", name, sp.Diet)
		}
		if sp.LitterMin < 1 || sp.LitterMax < sp.LitterMin {
			fail("species.%s litter range [%d,%d] is empty", name, sp.LitterMin, sp.LitterMax)
		}
		if sp.DailyFood.Adult <= 0 || sp.DailyWater.Adult <= 0 {
			fail("species.%s adult daily food and water must be positive", name)
		}
		if sp.RandomWalkMax < sp.RandomWalkMin {
			fail("species.%s random_walk_max below random_walk_min", name)
		}
		if sp.PregnancyChance < 0 || sp.PregnancyChance > 1 {
			fail("species.%s.pregnancy_chance must be in [0,1], got %v", name, sp.PregnancyChance)
		}
	}

	if c.Hunting.MaxPackSize < 1 {
		fail("hunting.max_pack_size must be at least 1")
	}
	if c.Hunting.MaxCirclingHours < 0 {
		fail("hunting.max_circling_hours must not be negative, got %v", c.Hunting.MaxCirclingHours)
	}
	for _, name := range c.Hunting.PreySpecies {
		sp, ok := c.Species.Lookup(name)
		if !ok {
			fail("hunting.prey_species: unknown species %q%s", name, suggest(name, c.Species.Names()))
			continue
		}
		if sp.Diet != "herbivore" {
			fail("hunting.prey_species: %q is a %s, only herbivores can be hunted", name, sp.Diet)
			continue
		}
		row, ok := c.Hunting.SuccessTable[sp.SizeClass]
		if !ok {
			fail("species.%s.size_class %q has no success_table row%s", name, sp.SizeClass, suggest(sp.SizeClass, tableKeys(c.Hunting.SuccessTable)))
			continue
		}
		if len(row) < c.Hunting.MaxPackSize {
			fail("success_table.%s has %d entries, need max_pack_size=%d", sp.SizeClass, len(row), c.Hunting.MaxPackSize)
		}
	}

	for i, g := range c.Population {
		if _, ok := c.Species.Lookup(g.Species); !ok {
			fail("population[%d]: unknown species %q%s", i, g.Species, suggest(g.Species, c.Species.Names()))
		}
		if g.Count < 0 {
			fail("population[%d].count must not be negative", i)
		}
		if g.MaxAge < g.MinAge {
			fail("population[%d] age range [%d,%d] is empty", i, g.MinAge, g.MaxAge)
		}
	}

	return errors.Join(errs...)
}

func validHour(h int) bool {
	return h >= 0 && h <= 23
}

// suggest returns a "did you mean" hint for the closest candidate, or "".
func suggest(name string, candidates []string) string {
	best, bestDist := "", -1
	for _, cand := range candidates {
		d := levenshtein.ComputeDistance(name, cand)
		if bestDist < 0 || d < bestDist {
			best, bestDist = cand, d
		}
	}
	if best == "" || bestDist > suggestionLimit(len(best)) {
		return ""
	}
	return fmt.Sprintf(" (did you mean %q?)", best)
}

func suggestionLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}

func tableKeys(m map[string][]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
