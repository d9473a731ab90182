package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}
	if cfg.Simulation.TickSeconds != 3600 {
		t.Errorf("tick_seconds = %v, want 3600", cfg.Simulation.TickSeconds)
	}
	if cfg.Derived.FineHunting {
		t.Error("hourly ticks should use coarse hunting")
	}
	if cfg.Derived.TicksPerDay != 24 {
		t.Errorf("TicksPerDay = %v, want 24", cfg.Derived.TicksPerDay)
	}
	if !cfg.Derived.PreySet["elk"] || cfg.Derived.PreySet["wolf"] {
		t.Errorf("unexpected prey set %v", cfg.Derived.PreySet)
	}
	if cfg.Derived.PartnerInterval != 6 {
		t.Errorf("PartnerInterval = %d, want 6", cfg.Derived.PartnerInterval)
	}
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	data := `
simulation:
  tick_seconds: 60
species:
  elk:
    satiety_threshold: 70
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Species.Elk.SatietyThreshold != 70 {
		t.Errorf("elk satiety_threshold = %v, want 70", cfg.Species.Elk.SatietyThreshold)
	}
	// Untouched fields keep their defaults.
	if cfg.Species.Elk.HydrationThreshold != 95 {
		t.Errorf("elk hydration_threshold = %v, want 95", cfg.Species.Elk.HydrationThreshold)
	}
	if !cfg.Derived.FineHunting {
		t.Error("one-minute ticks should use fine hunting")
	}
	if cfg.Derived.SearchRadius != cfg.Hunting.SearchRadius {
		t.Errorf("SearchRadius = %v, want unscaled %v", cfg.Derived.SearchRadius, cfg.Hunting.SearchRadius)
	}
}

func TestSearchRadiusScaling(t *testing.T) {
	cfg := MustLoad("")
	// 3600/60 = 60, sqrt(60) ~ 7.746
	want := cfg.Hunting.SearchRadius * 7.745966692414834
	if diff := cfg.Derived.SearchRadius - want; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("SearchRadius = %v, want %v", cfg.Derived.SearchRadius, want)
	}
	if cfg.Derived.SuccessFactor != cfg.Hunting.LongTickMultiplier {
		t.Errorf("SuccessFactor = %v, want %v", cfg.Derived.SuccessFactor, cfg.Hunting.LongTickMultiplier)
	}
}

func TestValidateSuggestsSpecies(t *testing.T) {
	cfg := MustLoad("")
	cfg.Population = append(cfg.Population, PopulationGroup{Species: "bisn", Count: 1})

	err := cfg.Validate()
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("Validate() = %v, want ErrInvalid", err)
	}
	if !strings.Contains(err.Error(), `did you mean "bison"`) {
		t.Errorf("missing suggestion in %q", err.Error())
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero tick", func(c *Config) { c.Simulation.TickSeconds = 0 }},
		{"bad night hour", func(c *Config) { c.Night.EndHour = 24 }},
		{"empty litter", func(c *Config) { c.Species.Wolf.LitterMax = 1; c.Species.Wolf.LitterMin = 3 }},
		{"bad diet", func(c *Config) { c.Species.Moose.Diet = "omnivore" }},
		{"short success row", func(c *Config) { c.Hunting.SuccessTable["large"] = []float64{0.1} }},
		{"unknown size class", func(c *Config) { c.Species.Elk.SizeClass = "medum" }},
		{"unknown prey", func(c *Config) { c.Hunting.PreySpecies = []string{"deer"} }},
		{"predator as prey", func(c *Config) { c.Hunting.PreySpecies = append(c.Hunting.PreySpecies, "wolf") }},
		{"negative circling limit", func(c *Config) { c.Hunting.MaxCirclingHours = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := MustLoad("")
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestCirclingTicks(t *testing.T) {
	cfg := MustLoad("")
	cfg.Simulation.TickSeconds = 30
	cfg.Hunting.MaxCirclingHours = 2
	if err := cfg.Recompute(); err != nil {
		t.Fatal(err)
	}
	if cfg.Derived.CirclingTicks != 240 {
		t.Errorf("CirclingTicks = %d, want 240", cfg.Derived.CirclingTicks)
	}

	cfg.Hunting.MaxCirclingHours = 0
	if err := cfg.Recompute(); err != nil {
		t.Fatal(err)
	}
	if cfg.Derived.CirclingTicks != 0 {
		t.Errorf("CirclingTicks = %d, want 0 when disabled", cfg.Derived.CirclingTicks)
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg := MustLoad("")
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}
	again, err := Load(path)
	if err != nil {
		t.Fatalf("reloading snapshot: %v", err)
	}
	if len(again.Population) != len(cfg.Population) {
		t.Errorf("population groups = %d, want %d", len(again.Population), len(cfg.Population))
	}
	if again.Hunting.MaxPackSize != cfg.Hunting.MaxPackSize {
		t.Errorf("max_pack_size = %d, want %d", again.Hunting.MaxPackSize, cfg.Hunting.MaxPackSize)
	}
}
