package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int64   `csv:"-"`
	WindowEndTick   int64   `csv:"window_end"`
	SimDays         float64 `csv:"sim_days"`

	// Population counts at window end
	Bison int `csv:"bison"`
	Elk   int `csv:"elk"`
	Moose int `csv:"moose"`
	Wolf  int `csv:"wolf"`
	Packs int `csv:"packs"`

	// Events during window
	HerbBirths      int `csv:"herb_births"`
	WolfBirths      int `csv:"wolf_births"`
	HerbDeaths      int `csv:"herb_deaths"`
	WolfDeaths      int `csv:"wolf_deaths"`
	Pregnancies     int `csv:"pregnancies"`
	DeathsAge       int `csv:"deaths_age"`
	DeathsNoFood    int `csv:"deaths_no_food"`
	DeathsPredation int `csv:"deaths_predation"`

	// Hunting
	HuntsStarted   int     `csv:"hunts_started"`
	HuntsFailed    int     `csv:"hunts_failed"`
	HuntsAbandoned int     `csv:"hunts_abandoned"`
	Kills          int     `csv:"kills"`
	KillRate       float64 `csv:"kill_rate"` // kills per success roll
	MeatShared     float64 `csv:"meat_kg"`
	PacksFounded   int     `csv:"packs_founded"`
	Pairings       int     `csv:"pairings"`

	// Condition (sampled at window end)
	HerbSatietyMean float64 `csv:"herb_satiety_mean"`
	HerbSatietyP10  float64 `csv:"herb_satiety_p10"`
	HerbSatietyP50  float64 `csv:"herb_satiety_p50"`
	HerbSatietyP90  float64 `csv:"herb_satiety_p90"`
	WolfSatietyMean float64 `csv:"wolf_satiety_mean"`
	WolfSatietyP10  float64 `csv:"wolf_satiety_p10"`
	WolfSatietyP50  float64 `csv:"wolf_satiety_p50"`
	WolfSatietyP90  float64 `csv:"wolf_satiety_p90"`
	HydrationMean   float64 `csv:"hydration_mean"`
	HydrationStd    float64 `csv:"hydration_std"`
}

// Herbivores returns the combined herbivore count.
func (s WindowStats) Herbivores() int {
	return s.Bison + s.Elk + s.Moose
}

// Summary holds the moments and percentiles of a sample.
type Summary struct {
	Mean, Std     float64
	P10, P50, P90 float64
}

// Summarize computes mean, standard deviation and empirical percentiles.
// An empty sample summarizes to zeros.
func Summarize(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	var s Summary
	s.Mean, s.Std = stat.PopMeanStdDev(sorted, nil)
	s.P10 = stat.Quantile(0.10, stat.Empirical, sorted, nil)
	s.P50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	s.P90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start", s.WindowStartTick),
		slog.Int64("window_end", s.WindowEndTick),
		slog.Float64("sim_days", s.SimDays),
		slog.Int("bison", s.Bison),
		slog.Int("elk", s.Elk),
		slog.Int("moose", s.Moose),
		slog.Int("wolf", s.Wolf),
		slog.Int("packs", s.Packs),
		slog.Int("herb_births", s.HerbBirths),
		slog.Int("wolf_births", s.WolfBirths),
		slog.Int("herb_deaths", s.HerbDeaths),
		slog.Int("wolf_deaths", s.WolfDeaths),
		slog.Int("deaths_predation", s.DeathsPredation),
		slog.Int("deaths_no_food", s.DeathsNoFood),
		slog.Int("deaths_age", s.DeathsAge),
		slog.Int("hunts_started", s.HuntsStarted),
		slog.Int("kills", s.Kills),
		slog.Float64("kill_rate", s.KillRate),
		slog.Float64("meat_kg", s.MeatShared),
		slog.Float64("herb_satiety_p50", s.HerbSatietyP50),
		slog.Float64("wolf_satiety_p50", s.WolfSatietyP50),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_days", s.SimDays,
		"bison", s.Bison,
		"elk", s.Elk,
		"moose", s.Moose,
		"wolf", s.Wolf,
		"packs", s.Packs,
		"births", s.HerbBirths+s.WolfBirths,
		"deaths", s.HerbDeaths+s.WolfDeaths,
		"kills", s.Kills,
		"kill_rate", s.KillRate,
		"herb_satiety_mean", s.HerbSatietyMean,
		"wolf_satiety_mean", s.WolfSatietyMean,
	)
}
