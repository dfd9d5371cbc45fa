package main

import (
	"log/slog"
	"math"
	"sync"

	"github.com/pthm-cable/astras/config"
	"github.com/pthm-cable/astras/sim"
	"github.com/pthm-cable/astras/telemetry"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	maxTicks   int32
	seeds      []uint64
	baseConfig *config.Config
	species    []config.Species

	mu          sync.Mutex
	lastQuality float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, seeds []uint64, baseCfg *config.Config, species []config.Species) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		maxTicks:   maxTicks,
		seeds:      seeds,
		baseConfig: baseCfg,
		species:    species,
	}
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// A species that stays below this for graceTicks consecutive ticks
// counts as functionally extinct even if a few stragglers remain.
const (
	minViablePop = 3
	graceTicks   = 300
	warmupTicks  = 50
	statsStride  = 100 // sample a stats row every N ticks for quality
)

// runResult holds the results from a single simulation run.
type runResult struct {
	survivalTicks int32 // ticks before functional extinction, or maxTicks
	samples       []telemetry.TickStats
}

type seedResult struct {
	fitness float64
	quality float64
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Fitness is negative survival ticks: longer survival = lower fitness,
// with a quality bonus for balanced, active populations.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s uint64) {
			defer wg.Done()
			result := fe.runSimulation(x, s)
			results[idx] = seedResult{
				fitness: fe.computeFitness(result),
				quality: fe.computeQuality(result.samples),
			}
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalQuality float64
	for _, r := range results {
		totalFitness += r.fitness
		totalQuality += r.quality
	}

	n := float64(len(fe.seeds))
	fe.mu.Lock()
	fe.lastQuality = totalQuality / n
	fe.mu.Unlock()

	return totalFitness / n
}

// runSimulation executes a single headless run until any species goes
// functionally extinct or maxTicks is reached.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed uint64) *runResult {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)
	cfg.Seed = seed

	result := &runResult{}

	s := sim.New(slog.New(slog.DiscardHandler))
	if err := s.Setup(cfg, fe.species); err != nil {
		// An invalid parameter combination is simply a terrible run.
		result.survivalTicks = 0
		return result
	}

	belowTicks := make(map[string]int32, len(fe.species))

	for s.Tick() < fe.maxTicks {
		snap := s.Step()
		tick := snap.Tick

		if tick%statsStride == 0 {
			result.samples = append(result.samples, s.LastStats())
		}
		if tick < warmupTicks {
			continue
		}

		for _, sp := range fe.species {
			pop := snap.Population[sp.Name]
			if pop == 0 {
				result.survivalTicks = tick
				return result
			}
			if pop < minViablePop {
				belowTicks[sp.Name]++
				if belowTicks[sp.Name] >= graceTicks {
					result.survivalTicks = tick
					return result
				}
			} else {
				belowTicks[sp.Name] = 0
			}
		}
	}

	result.survivalTicks = fe.maxTicks
	return result
}

// copyConfig creates a working copy of the base config.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig

	caps := make(map[string]int, len(fe.baseConfig.Population.Caps))
	for k, v := range fe.baseConfig.Population.Caps {
		caps[k] = v
	}
	cfg.Population.Caps = caps

	return &cfg
}

// computeFitness calculates the scalar fitness (lower = better).
// Survival dominates; quality adds up to a 20% bonus to differentiate
// configs with similar survival.
func (fe *FitnessEvaluator) computeFitness(r *runResult) float64 {
	survival := float64(r.survivalTicks)
	quality := fe.computeQuality(r.samples)
	return -(survival * (1.0 + 0.2*quality))
}

// Quality component weights.
const (
	qualityWeightStability = 0.4
	qualityWeightSocial    = 0.3
	qualityWeightActivity  = 0.3

	qualityWarmupSamples = 3
)

// computeQuality scores a run in [0, 1] from its sampled stats rows:
// stable total population, a healthy mix of loners and clans, and
// ongoing feeding and combat activity.
func (fe *FitnessEvaluator) computeQuality(samples []telemetry.TickStats) float64 {
	if len(samples) <= qualityWarmupSamples {
		return 0
	}
	valid := samples[qualityWarmupSamples:]

	pops := make([]float64, 0, len(valid))
	var socialSum, activitySum float64
	var socialCount, activityCount int

	for _, s := range valid {
		if s.TotalPop == 0 {
			continue
		}
		pops = append(pops, float64(s.TotalPop))

		// Social mix: best around half the population in clans.
		clanFrac := float64(s.ClanMembers) / float64(s.TotalPop)
		socialSum += math.Exp(-math.Pow((clanFrac-0.5)/0.3, 2))
		socialCount++

		// Activity: some feeding and fighting per capita, saturating.
		perCap := float64(s.Feedings+s.Fights) / float64(s.TotalPop)
		activitySum += 1.0 - math.Exp(-perCap/0.2)
		activityCount++
	}

	if len(pops) < 2 {
		return 0
	}

	cvPop := cv(pops)
	stabilityScore := math.Exp(-cvPop * cvPop)

	socialScore := 0.0
	if socialCount > 0 {
		socialScore = socialSum / float64(socialCount)
	}
	activityScore := 0.0
	if activityCount > 0 {
		activityScore = activitySum / float64(activityCount)
	}

	quality := qualityWeightStability*stabilityScore +
		qualityWeightSocial*socialScore +
		qualityWeightActivity*activityScore

	return clamp01(quality)
}

// cv computes the coefficient of variation (std/mean).
func cv(values []float64) float64 {
	n := float64(len(values))
	if n == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / n
	if mean == 0 {
		return 0
	}
	var sqDiff float64
	for _, v := range values {
		d := v - mean
		sqDiff += d * d
	}
	return math.Sqrt(sqDiff/n) / mean
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
