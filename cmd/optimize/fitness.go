package main

import (
	"io"
	"log/slog"
	"math"
	"sync"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/einp/config"
	"github.com/pthm-cable/einp/sim"
	"github.com/pthm-cable/einp/telemetry"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	maxTicks   int64
	seeds      []int64
	baseConfig *config.Config
	logger     *slog.Logger

	mu          sync.Mutex
	lastQuality float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int64, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		maxTicks:   maxTicks,
		seeds:      seeds,
		baseConfig: baseCfg,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// A run ends early once either side drops below minViablePop.
const minViablePop = 3

// runResult holds the results from a single simulation run.
type runResult struct {
	survivalDays float64
	windows      []telemetry.WindowStats
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Seeds run in parallel; a seed that fails to build counts as zero survival.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	fitness := make([]float64, len(fe.seeds))
	quality := make([]float64, len(fe.seeds))

	var g errgroup.Group
	for i, seed := range fe.seeds {
		g.Go(func() error {
			r, err := fe.runSimulation(x, seed)
			if err != nil {
				fe.logger.Warn("evaluation failed", "seed", seed, "error", err)
				return nil
			}
			quality[i] = computeQuality(r.windows)
			fitness[i] = computeFitness(r.survivalDays, quality[i])
			return nil
		})
	}
	g.Wait()

	fe.mu.Lock()
	fe.lastQuality = stat.Mean(quality, nil)
	fe.mu.Unlock()
	return stat.Mean(fitness, nil)
}

// runSimulation executes a single headless run until functional extinction
// or maxTicks, whichever comes first.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) (*runResult, error) {
	cfg := *fe.baseConfig
	cfg.Simulation.Seed = seed
	if err := fe.params.ApplyToConfig(&cfg, x); err != nil {
		return nil, err
	}

	result := &runResult{}
	collapsed := false
	s, err := sim.New(&cfg, sim.Options{
		Logger: fe.logger,
		StatsCallback: func(ws telemetry.WindowStats) {
			result.windows = append(result.windows, ws)
			if ws.Herbivores() < minViablePop || ws.Wolf < minViablePop {
				collapsed = true
			}
		},
	})
	if err != nil {
		return nil, err
	}
	defer s.Close()

	for s.Tick() < fe.maxTicks && !collapsed {
		if err := s.Step(); err != nil {
			return nil, err
		}
	}
	result.survivalDays = float64(s.Tick()) * cfg.Simulation.TickSeconds / 86400
	return result, nil
}

// computeFitness calculates the scalar fitness (lower = better).
// Survival dominates; quality adds up to 20% to separate configs with
// similar survival.
func computeFitness(survivalDays, quality float64) float64 {
	return -(survivalDays * (1.0 + 0.2*quality))
}

// Quality component weights.
const (
	qualityWeightRatio     = 0.30
	qualityWeightStability = 0.25
	qualityWeightCondition = 0.25
	qualityWeightHunting   = 0.20

	qualityWarmupWindows = 3  // skip first N windows (warmup)
	targetRatio          = 30 // herbivores per wolf
)

// computeQuality scores ecosystem quality in [0, 1] from window stats.
func computeQuality(windows []telemetry.WindowStats) float64 {
	if len(windows) <= qualityWarmupWindows {
		return 0
	}

	var ratioSum, conditionSum, huntSum float64
	var huntCount int
	herbs := make([]float64, 0, len(windows))
	wolves := make([]float64, 0, len(windows))

	for _, w := range windows[qualityWarmupWindows:] {
		if w.Herbivores() < minViablePop || w.Wolf < minViablePop {
			continue
		}
		herbs = append(herbs, float64(w.Herbivores()))
		wolves = append(wolves, float64(w.Wolf))

		logErr := math.Log(float64(w.Herbivores()) / float64(w.Wolf) / targetRatio)
		ratioSum += math.Exp(-logErr * logErr)

		herbH := math.Exp(-math.Pow((w.HerbSatietyP50-70)/25, 2))
		wolfH := math.Exp(-math.Pow((w.WolfSatietyP50-60)/25, 2))
		conditionSum += (herbH + wolfH) / 2

		if w.Kills+w.HuntsFailed > 0 {
			huntSum += math.Exp(-math.Pow((w.KillRate-0.2)/0.15, 2))
			huntCount++
		}
	}

	n := float64(len(herbs))
	if n == 0 {
		return 0
	}

	stability := 0.0
	if len(herbs) >= 2 {
		h, w := cv(herbs), cv(wolves)
		stability = math.Exp(-(h*h + w*w))
	}
	hunting := 0.0
	if huntCount > 0 {
		hunting = huntSum / float64(huntCount)
	}

	quality := qualityWeightRatio*ratioSum/n +
		qualityWeightStability*stability +
		qualityWeightCondition*conditionSum/n +
		qualityWeightHunting*hunting
	return min(max(quality, 0), 1)
}

// cv computes the coefficient of variation (std/mean).
func cv(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean, std := stat.PopMeanStdDev(values, nil)
	if mean == 0 {
		return 0
	}
	return std / mean
}
