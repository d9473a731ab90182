package animal

import (
	"errors"
	"log/slog"
	"time"

	"github.com/pthm-cable/einp/components"
	"github.com/pthm-cable/einp/config"
	"github.com/pthm-cable/einp/pack"
	"github.com/pthm-cable/einp/systems"
	"github.com/pthm-cable/einp/telemetry"
)

var (
	// ErrInvalidSpawn is returned when an animal would be created outside
	// the permitted area or in water.
	ErrInvalidSpawn = errors.New("invalid spawn position")
	// ErrNoTimeContext is returned by Tick when the clock cannot answer.
	ErrNoTimeContext = errors.New("no time context")
	// ErrNotEdible is returned when a predator is asked for its edible value.
	ErrNotEdible = errors.New("not edible")
)

// Environment is the world as seen by an animal. Queries may run from many
// goroutines at once; SpawnOffspring and RemoveEntity take effect between ticks.
type Environment interface {
	systems.Area
	RasterValueAt(components.Position) float64
	BestGrazingSpot(pos components.Position, radius, minValue float64) (components.Position, bool)
	NearestShore(pos components.Position, radius float64) (components.Position, bool)

	// NearestMatching returns the closest living animal accepted by match, or nil.
	NearestMatching(pos components.Position, match func(*Animal) bool) *Animal
	// ExploreRadius returns living animals within radius accepted by match,
	// nearest first. radius -1 is unbounded; maxCount -1 is unlimited.
	ExploreRadius(pos components.Position, radius float64, maxCount int, match func(*Animal) bool) []*Animal

	SpawnOffspring(parent *Animal, t components.AnimalType) (*Animal, error)
	RemoveEntity(a *Animal)
}

// Clock reports the simulated wall-clock time.
type Clock interface {
	Now() (time.Time, error)
}

// Recorder receives telemetry events. It must be safe for concurrent use.
type Recorder interface {
	Record(telemetry.Event)
}

// Context carries everything an animal needs to tick.
type Context struct {
	Config   *config.Config
	Env      Environment
	Clock    Clock
	Packs    *pack.Registry
	Recorder Recorder
	Logger   *slog.Logger
	Tick     int64
}

func (c *Context) record(ev telemetry.Event) {
	if c.Recorder == nil {
		return
	}
	ev.Tick = c.Tick
	c.Recorder.Record(ev)
}

func (c *Context) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

func (c *Context) night() systems.NightWindow {
	return systems.NightWindow{StartHour: c.Config.Night.StartHour, EndHour: c.Config.Night.EndHour}
}

// ticksToDays converts a tick count to simulated days.
func (c *Context) ticksToDays(ticks int64) float64 {
	return float64(ticks) * c.Config.Simulation.TickSeconds / 86400
}

func (c *Context) isPrey(a *Animal) bool {
	return c.Config.Derived.PreySet[a.Species().String()]
}
