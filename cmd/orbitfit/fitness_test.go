package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/photonwell/config"
)

func TestParamVectorNormalizeRoundTrip(t *testing.T) {
	pv := NewParamVector()
	raw := pv.DefaultVector()
	back := pv.Denormalize(pv.Normalize(raw))
	for i := range raw {
		if math.Abs(back[i]-raw[i]) > 1e-12 {
			t.Errorf("%s: got %v, want %v", pv.Specs[i].Name, back[i], raw[i])
		}
	}
}

func TestApplyToConfigClamps(t *testing.T) {
	pv := NewParamVector()
	cfg := config.Default()
	pv.ApplyToConfig(cfg, []float64{5, -1})

	if cfg.Spawn.OrbitSpeedScale != pv.Specs[0].Max {
		t.Errorf("orbit_speed_scale = %v, want clamped to %v", cfg.Spawn.OrbitSpeedScale, pv.Specs[0].Max)
	}
	if cfg.Physics.FDStep != pv.Specs[1].Min {
		t.Errorf("fd_step = %v, want clamped to %v", cfg.Physics.FDStep, pv.Specs[1].Min)
	}
	if got := pv.ExtractFromConfig(cfg); got[0] != pv.Specs[0].Max || got[1] != pv.Specs[1].Min {
		t.Errorf("ExtractFromConfig = %v", got)
	}
}

func TestEvaluateFavoursCircularSpeed(t *testing.T) {
	pv := NewParamVector()
	fe := NewFitnessEvaluator(pv, 500, []uint64{1, 2}, config.Default())

	if cfg := fe.Config(pv.DefaultVector()); cfg.Photons.Count != cfg.Photons.Orbiting || cfg.Derived.Infalling != 0 {
		t.Fatalf("evaluation config keeps %d infalling photons", cfg.Derived.Infalling)
	}

	circular := fe.Evaluate([]float64{1.0, 0.1})
	fast := fe.Evaluate([]float64{1.1, 0.1})

	if math.IsInf(circular, 0) || math.IsNaN(circular) {
		t.Fatalf("circular fitness = %v", circular)
	}
	if circular >= fast {
		t.Errorf("circular drift %.4f should beat fast drift %.4f", circular, fast)
	}
	if fe.LastWorst() < fast {
		t.Errorf("LastWorst = %.4f below the mean %.4f", fe.LastWorst(), fast)
	}
}
