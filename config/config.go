// Package config provides configuration loading and access for the wildlife simulation.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation parameters.
type Config struct {
	Simulation SimulationConfig  `yaml:"simulation"`
	World      WorldConfig       `yaml:"world"`
	Night      NightConfig       `yaml:"night"`
	Species    SpeciesSet        `yaml:"species"`
	Hunting    HuntingConfig     `yaml:"hunting"`
	Population []PopulationGroup `yaml:"population"`
	Telemetry  TelemetryConfig   `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// SimulationConfig holds tick timing and scheduling parameters.
type SimulationConfig struct {
	TickSeconds       float64 `yaml:"tick_seconds"`       // simulated seconds per tick
	StartTime         string  `yaml:"start_time"`         // RFC3339 wall-clock time of tick 0
	Seed              int64   `yaml:"seed"`               // master RNG seed
	Workers           int     `yaml:"workers"`            // 0 = GOMAXPROCS
	ParallelThreshold int     `yaml:"parallel_threshold"` // below this many animals, tick single-threaded
	FirstPackID       int     `yaml:"first_pack_id"`      // pack ids allocated at runtime start above this
}

// WorldConfig describes the landscape.
type WorldConfig struct {
	Width          float64      `yaml:"width"`            // metres
	Height         float64      `yaml:"height"`           // metres
	RasterCellSize float64      `yaml:"raster_cell_size"` // water/vegetation raster resolution
	GridCellSize   float64      `yaml:"grid_cell_size"`   // spatial index cell size
	Perimeter      [][2]float64 `yaml:"perimeter"`        // permitted-area polygon; empty = full rectangle
	Lakes          []LakeConfig `yaml:"lakes"`            // water bodies carved in addition to noise water
	Noise          NoiseConfig  `yaml:"noise"`
}

// LakeConfig is a circular water body.
type LakeConfig struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Radius float64 `yaml:"radius"`
}

// NoiseConfig holds procedural raster generation parameters.
type NoiseConfig struct {
	Seed            int64   `yaml:"seed"`
	Octaves         int     `yaml:"octaves"`
	WaterScale      float64 `yaml:"water_scale"`     // noise frequency per metre
	WaterThreshold  float64 `yaml:"water_threshold"` // noise below this is water (0 disables)
	VegetationScale float64 `yaml:"vegetation_scale"`
}

// NightConfig is the inclusive nocturnal hour window. It may wrap midnight.
type NightConfig struct {
	StartHour int `yaml:"start_hour"`
	EndHour   int `yaml:"end_hour"`
}

// SpeciesSet holds the per-species parameter bundles.
type SpeciesSet struct {
	Bison SpeciesConfig `yaml:"bison"`
	Elk   SpeciesConfig `yaml:"elk"`
	Moose SpeciesConfig `yaml:"moose"`
	Wolf  SpeciesConfig `yaml:"wolf"`
}

// PeriodValues holds one value per life period.
type PeriodValues struct {
	Calf       float64 `yaml:"calf"`
	Adolescent float64 `yaml:"adolescent"`
	Adult      float64 `yaml:"adult"`
}

// At returns the value for a period index (0 calf, 1 adolescent, 2 adult).
func (v PeriodValues) At(period int) float64 {
	switch period {
	case 0:
		return v.Calf
	case 1:
		return v.Adolescent
	}
	return v.Adult
}

// SpeciesConfig holds the behavior parameters of one species.
type SpeciesConfig struct {
	Diet      string `yaml:"diet"`       // herbivore | predator
	SizeClass string `yaml:"size_class"` // prey size class for the hunt success table

	DailyFood    PeriodValues `yaml:"daily_food"`    // kg/day
	DailyWater   PeriodValues `yaml:"daily_water"`   // l/day
	EdibleWeight PeriodValues `yaml:"edible_weight"` // kg of food a carcass yields

	RunningSpeed  float64 `yaml:"running_speed"`   // m/s
	RandomWalkMin float64 `yaml:"random_walk_min"` // m/h
	RandomWalkMax float64 `yaml:"random_walk_max"` // m/h
	MoveAttempts  int     `yaml:"move_attempts"`

	SatietyThreshold   float64 `yaml:"satiety_threshold"`
	HydrationThreshold float64 `yaml:"hydration_threshold"`
	NightFoodFactor    float64 `yaml:"night_food_factor"`
	NightWaterFactor   float64 `yaml:"night_water_factor"`
	MaxSatietyBurn     float64 `yaml:"max_satiety_burn"` // per tick
	FoodGain           float64 `yaml:"food_gain"`        // satiety per grazing tick
	WaterGain          float64 `yaml:"water_gain"`       // hydration per drinking tick
	GrazeRadius        float64 `yaml:"graze_radius"`
	MinVegetation      float64 `yaml:"min_vegetation"`
	WaterSearchRadius  float64 `yaml:"water_search_radius"`
	MateSearchRadius   float64 `yaml:"mate_search_radius"` // herbivores; 0 skips the mate check

	CalfUntil       int `yaml:"calf_until"`       // age < calf_until is a calf
	AdolescentUntil int `yaml:"adolescent_until"` // age <= adolescent_until is adolescent

	SenescenceAge  int     `yaml:"senescence_age"`
	SenescenceStep float64 `yaml:"senescence_step"` // death chance added per year past senescence

	ReproductionMinAge int     `yaml:"reproduction_min_age"`
	ReproductionMaxAge int     `yaml:"reproduction_max_age"`
	PregnancyChance    float64 `yaml:"pregnancy_chance"`
	GestationDays      float64 `yaml:"gestation_days"`
	LitterMin          int     `yaml:"litter_min"`
	LitterMax          int     `yaml:"litter_max"`

	LeavePackChance float64 `yaml:"leave_pack_chance"` // predators leaving the natal pack at adulthood
}

// HuntingConfig holds pack hunting and pairing parameters.
type HuntingConfig struct {
	PreySpecies               []string             `yaml:"prey_species"`
	FineModeMaxTickSeconds    float64              `yaml:"fine_mode_max_tick_seconds"`
	SearchRadius              float64              `yaml:"search_radius"`
	SearchBaseTickSeconds     float64              `yaml:"search_base_tick_seconds"`
	MaxPackSize               int                  `yaml:"max_pack_size"`
	SuccessTable              map[string][]float64 `yaml:"success_table"` // size class -> rate by pack size
	LongTickSeconds           float64              `yaml:"long_tick_seconds"`
	LongTickMultiplier        float64              `yaml:"long_tick_multiplier"`
	SafeDistance              float64              `yaml:"safe_distance"`
	EscapeDistance            float64              `yaml:"escape_distance"`
	CollinearToleranceDeg     float64              `yaml:"collinear_tolerance_deg"`
	MaxKillAttempts           int                  `yaml:"max_kill_attempts"`
	MaxCirclingHours          float64              `yaml:"max_circling_hours"` // 0 disables the limit
	PartnerSearchRadius       float64              `yaml:"partner_search_radius"`
	PartnerSearchIntervalHour float64              `yaml:"partner_search_interval_hours"`
}

// PopulationGroup spawns a group of animals at startup.
type PopulationGroup struct {
	Species string  `yaml:"species"`
	Count   int     `yaml:"count"`
	PackID  int     `yaml:"pack_id"` // herd id for herbivores, pack id for wolves
	X       float64 `yaml:"x"`
	Y       float64 `yaml:"y"`
	Spread  float64 `yaml:"spread"`
	MinAge  int     `yaml:"min_age"`
	MaxAge  int     `yaml:"max_age"`
}

// TelemetryConfig holds output parameters.
type TelemetryConfig struct {
	StatsWindowTicks int `yaml:"stats_window_ticks"`
	PerfWindowTicks  int `yaml:"perf_window_ticks"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	StartTime       time.Time
	TicksPerDay     float64
	FineHunting     bool    // tick short enough for encirclement
	SearchRadius    float64 // prey search radius scaled by tick length
	SuccessFactor   float64 // long-tick multiplier, 1 otherwise
	PartnerInterval int64   // ticks between partner searches
	CirclingTicks   int64   // fine hunts older than this are abandoned; 0 = no limit
	PreySet         map[string]bool
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in the file. Lists are replaced wholesale.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoad loads configuration and panics on error.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Recompute refreshes derived values after fields were changed in code.
func (c *Config) Recompute() error {
	return c.computeDerived()
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() error {
	start, err := time.Parse(time.RFC3339, c.Simulation.StartTime)
	if err != nil {
		return fmt.Errorf("simulation.start_time: %w", err)
	}
	c.Derived.StartTime = start

	tick := c.Simulation.TickSeconds
	if tick > 0 {
		c.Derived.TicksPerDay = 86400 / tick
	}

	h := c.Hunting
	c.Derived.FineHunting = tick <= h.FineModeMaxTickSeconds
	c.Derived.SearchRadius = h.SearchRadius
	if h.SearchBaseTickSeconds > 0 && tick > 0 {
		c.Derived.SearchRadius = h.SearchRadius * math.Sqrt(tick/h.SearchBaseTickSeconds)
	}
	c.Derived.SuccessFactor = 1
	if h.LongTickSeconds > 0 && tick >= h.LongTickSeconds {
		c.Derived.SuccessFactor = h.LongTickMultiplier
	}

	c.Derived.PartnerInterval = 1
	if tick > 0 {
		if n := int64(math.Round(h.PartnerSearchIntervalHour * 3600 / tick)); n > 1 {
			c.Derived.PartnerInterval = n
		}
	}

	c.Derived.CirclingTicks = 0
	if tick > 0 && h.MaxCirclingHours > 0 {
		c.Derived.CirclingTicks = max(1, int64(math.Round(h.MaxCirclingHours*3600/tick)))
	}

	c.Derived.PreySet = make(map[string]bool, len(h.PreySpecies))
	for _, name := range h.PreySpecies {
		c.Derived.PreySet[name] = true
	}
	return nil
}

// Lookup returns the species bundle for a config name.
func (s *SpeciesSet) Lookup(name string) (*SpeciesConfig, bool) {
	switch name {
	case "bison":
		return &s.Bison, true
	case "elk":
		return &s.Elk, true
	case "moose":
		return &s.Moose, true
	case "wolf":
		return &s.Wolf, true
	}
	return nil, false
}

// Names returns the configured species names.
func (s *SpeciesSet) Names() []string {
	return []string{"bison", "elk", "moose", "wolf"}
}

// WriteYAML writes the current config to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
