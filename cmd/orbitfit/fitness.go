package main

import (
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/photonwell/config"
	"github.com/pthm-cable/photonwell/sim"
)

// FitnessEvaluator runs orbit-only simulations and scores how far the
// orbiting photons drift from their spawn radius.
type FitnessEvaluator struct {
	params     *ParamVector
	ticks      int
	seeds      []uint64
	baseConfig *config.Config

	mu        sync.Mutex
	lastWorst float64 // worst seed score from the most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, ticks int, seeds []uint64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		ticks:      ticks,
		seeds:      seeds,
		baseConfig: baseCfg,
	}
}

// LastWorst returns the worst per-seed score of the most recent evaluation.
func (fe *FitnessEvaluator) LastWorst() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastWorst
}

// Config returns a copy of the base config with raw parameter values applied
// and the population reduced to the orbiting photons.
func (fe *FitnessEvaluator) Config(raw []float64) *config.Config {
	cfg := *fe.baseConfig
	cfg.Photons.Count = cfg.Photons.Orbiting
	fe.params.ApplyToConfig(&cfg, raw)
	return &cfg
}

// Evaluate computes fitness for raw parameter values (lower = better): the
// RMS relative radial deviation of orbiting photons, averaged over seeds.
// Invalid configurations score +Inf.
func (fe *FitnessEvaluator) Evaluate(raw []float64) float64 {
	cfg := fe.Config(raw)
	if err := cfg.Validate(); err != nil {
		return math.Inf(1)
	}

	scores := make([]float64, len(fe.seeds))
	errs := make([]error, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s uint64) {
			defer wg.Done()
			scores[idx], errs[idx] = fe.runSeed(cfg, s)
		}(i, seed)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return math.Inf(1)
		}
	}

	worst := 0.0
	for _, s := range scores {
		worst = max(worst, s)
	}
	fe.mu.Lock()
	fe.lastWorst = worst
	fe.mu.Unlock()

	return stat.Mean(scores, nil)
}

// runSeed simulates one seed and returns the RMS of (r - rho) / rho over
// every orbiting photon and tick.
func (fe *FitnessEvaluator) runSeed(cfg *config.Config, seed uint64) (float64, error) {
	w, err := sim.NewWorld(cfg, seed, false)
	if err != nil {
		return 0, err
	}
	d := sim.NewDriver(w, sim.NewSequential(cfg, false))
	defer d.Close()

	rho := cfg.Spawn.OrbitRadius
	var sumSq float64
	var n int
	for t := 0; t < fe.ticks; t++ {
		if _, err := d.Tick(); err != nil {
			return 0, fmt.Errorf("seed %d: %w", seed, err)
		}
		for _, r := range w.Refs() {
			dev := (float64(r.Motion.Pos.Planar().Len()) - rho) / rho
			sumSq += dev * dev
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return math.Sqrt(sumSq / float64(n)), nil
}
