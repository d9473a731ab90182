package telemetry

import (
	"sync"

	"github.com/pthm-cable/einp/components"
)

// Collector accumulates events within time windows and produces WindowStats.
// Record may be called from many goroutines while animals tick.
type Collector struct {
	windowDurationTicks int64
	tickSeconds         float64

	mu              sync.Mutex
	windowStartTick int64

	// Event counters for current window
	births         [components.NumSpecies]int
	deaths         [components.NumSpecies]int
	deathsByCause  [components.NumCauses]int
	pregnancies    int
	huntsStarted   int
	huntsFailed    int
	huntsAbandoned int
	kills          int
	meatShared     float64
	packsFounded   int
	pairings       int
}

// NewCollector creates a new stats collector.
// windowTicks: how many ticks each stats window lasts
// tickSeconds: simulated seconds per tick (used for tick-to-time conversion)
func NewCollector(windowTicks int, tickSeconds float64) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{
		windowDurationTicks: int64(windowTicks),
		tickSeconds:         tickSeconds,
	}
}

// Record counts one event.
func (c *Collector) Record(ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch ev.Type {
	case EventBirth:
		c.births[ev.Species]++
	case EventDeath:
		c.deaths[ev.Species]++
		c.deathsByCause[ev.Cause]++
	case EventPregnancy:
		c.pregnancies++
	case EventHuntStarted:
		c.huntsStarted++
	case EventHuntFailed:
		c.huntsFailed++
	case EventHuntAbandoned:
		c.huntsAbandoned++
	case EventKill:
		c.kills++
		c.meatShared += ev.Amount
	case EventPackFounded:
		c.packsFounded++
	case EventPairing:
		c.pairings++
	}
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// PopulationSample is the population state at the end of a window.
type PopulationSample struct {
	Census           map[components.Species]int
	Packs            int
	HerbivoreSatiety []float64
	PredatorSatiety  []float64
	Hydration        []float64
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int64, pop PopulationSample) WindowStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	var killRate float64
	if rolls := c.kills + c.huntsFailed; rolls > 0 {
		killRate = float64(c.kills) / float64(rolls)
	}

	herb := Summarize(pop.HerbivoreSatiety)
	pred := Summarize(pop.PredatorSatiety)
	water := Summarize(pop.Hydration)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimDays:         float64(currentTick) * c.tickSeconds / 86400,

		Bison: pop.Census[components.SpeciesBison],
		Elk:   pop.Census[components.SpeciesElk],
		Moose: pop.Census[components.SpeciesMoose],
		Wolf:  pop.Census[components.SpeciesWolf],
		Packs: pop.Packs,

		Pregnancies:     c.pregnancies,
		DeathsAge:       c.deathsByCause[components.CauseAge],
		DeathsNoFood:    c.deathsByCause[components.CauseNoFood],
		DeathsPredation: c.deathsByCause[components.CausePredation],

		HuntsStarted:   c.huntsStarted,
		HuntsFailed:    c.huntsFailed,
		HuntsAbandoned: c.huntsAbandoned,
		Kills:          c.kills,
		KillRate:       killRate,
		MeatShared:     c.meatShared,
		PacksFounded:   c.packsFounded,
		Pairings:       c.pairings,

		HerbSatietyMean: herb.Mean,
		HerbSatietyP10:  herb.P10,
		HerbSatietyP50:  herb.P50,
		HerbSatietyP90:  herb.P90,
		WolfSatietyMean: pred.Mean,
		WolfSatietyP10:  pred.P10,
		WolfSatietyP50:  pred.P50,
		WolfSatietyP90:  pred.P90,
		HydrationMean:   water.Mean,
		HydrationStd:    water.Std,
	}
	for _, s := range components.AllSpecies() {
		if s == components.SpeciesWolf {
			stats.WolfBirths += c.births[s]
			stats.WolfDeaths += c.deaths[s]
		} else {
			stats.HerbBirths += c.births[s]
			stats.HerbDeaths += c.deaths[s]
		}
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.births = [components.NumSpecies]int{}
	c.deaths = [components.NumSpecies]int{}
	c.deathsByCause = [components.NumCauses]int{}
	c.pregnancies = 0
	c.huntsStarted = 0
	c.huntsFailed = 0
	c.huntsAbandoned = 0
	c.kills = 0
	c.meatShared = 0
	c.packsFounded = 0
	c.pairings = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int64 {
	return c.windowDurationTicks
}
