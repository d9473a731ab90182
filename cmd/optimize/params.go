package main

import (
	"github.com/pthm-cable/einp/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name  string  // Human-readable name
	Path  string  // Config path for logging
	Min   float64 // Lower bound
	Max   float64 // Upper bound
	Field func(*config.Config) *float64
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Herbivore fecundity
			{Name: "bison_pregnancy", Path: "species.bison.pregnancy_chance", Min: 0.02, Max: 0.5,
				Field: func(c *config.Config) *float64 { return &c.Species.Bison.PregnancyChance }},
			{Name: "elk_pregnancy", Path: "species.elk.pregnancy_chance", Min: 0.02, Max: 0.6,
				Field: func(c *config.Config) *float64 { return &c.Species.Elk.PregnancyChance }},
			{Name: "moose_pregnancy", Path: "species.moose.pregnancy_chance", Min: 0.02, Max: 0.6,
				Field: func(c *config.Config) *float64 { return &c.Species.Moose.PregnancyChance }},
			// Wolves
			{Name: "wolf_pregnancy", Path: "species.wolf.pregnancy_chance", Min: 0.1, Max: 1,
				Field: func(c *config.Config) *float64 { return &c.Species.Wolf.PregnancyChance }},
			{Name: "wolf_leave_pack", Path: "species.wolf.leave_pack_chance", Min: 0, Max: 1,
				Field: func(c *config.Config) *float64 { return &c.Species.Wolf.LeavePackChance }},
			{Name: "wolf_max_burn", Path: "species.wolf.max_satiety_burn", Min: 10, Max: 100,
				Field: func(c *config.Config) *float64 { return &c.Species.Wolf.MaxSatietyBurn }},
			// Hunting
			{Name: "search_radius", Path: "hunting.search_radius", Min: 200, Max: 2000,
				Field: func(c *config.Config) *float64 { return &c.Hunting.SearchRadius }},
			{Name: "long_tick_multiplier", Path: "hunting.long_tick_multiplier", Min: 1, Max: 3,
				Field: func(c *config.Config) *float64 { return &c.Hunting.LongTickMultiplier }},
			{Name: "escape_distance", Path: "hunting.escape_distance", Min: 500, Max: 5000,
				Field: func(c *config.Config) *float64 { return &c.Hunting.EscapeDistance }},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig writes clamped parameter values into cfg and refreshes
// the derived values.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) error {
	for i, v := range pv.Clamp(values) {
		*pv.Specs[i].Field(cfg) = v
	}
	return cfg.Recompute()
}

// ExtractFromConfig reads the current parameter values, clamped to bounds.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = *spec.Field(cfg)
	}
	return pv.Clamp(v)
}
