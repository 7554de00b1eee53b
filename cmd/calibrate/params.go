package main

import (
	"github.com/kkingfung/ecosim/config"
	"github.com/kkingfung/ecosim/sim"
	"github.com/kkingfung/ecosim/telemetry"
)

// param is one tunable dimension with its search bounds.
type param struct {
	name    string
	min     float64
	max     float64
	initial float64
}

// ParamVector maps the normalized search space to ecosystem parameters.
type ParamVector struct {
	params []param
}

// NewParamVector defines the calibrated parameters: the three knobs
// that most shape long-run stability.
func NewParamVector() *ParamVector {
	return &ParamVector{params: []param{
		{name: "disturbance_frequency", min: 0.0001, max: 0.02, initial: 0.002},
		{name: "competition_intensity", min: 0.01, max: 0.5, initial: 0.1},
		{name: "transition_rate", min: 0.001, max: 0.1, initial: 0.01},
	}}
}

// Dim returns the search dimensionality.
func (v *ParamVector) Dim() int { return len(v.params) }

// DefaultVector returns the raw default values.
func (v *ParamVector) DefaultVector() []float64 {
	raw := make([]float64, len(v.params))
	for i, p := range v.params {
		raw[i] = p.initial
	}
	return raw
}

// Normalize maps raw values into [0,1] per dimension.
func (v *ParamVector) Normalize(raw []float64) []float64 {
	x := make([]float64, len(raw))
	for i, p := range v.params {
		x[i] = (raw[i] - p.min) / (p.max - p.min)
	}
	return x
}

// Denormalize maps [0,1] search coordinates back to raw values,
// clamping out-of-range proposals to the bounds.
func (v *ParamVector) Denormalize(x []float64) []float64 {
	raw := make([]float64, len(x))
	for i, p := range v.params {
		u := x[i]
		if u < 0 {
			u = 0
		}
		if u > 1 {
			u = 1
		}
		raw[i] = p.min + u*(p.max-p.min)
	}
	return raw
}

// Apply writes raw parameter values into a config copy.
func (v *ParamVector) Apply(cfg *config.Config, raw []float64) {
	cfg.Disturbance.Frequency = raw[0]
	cfg.Species.CompetitionIntensity = raw[1]
	cfg.Biomes.TransitionRate = raw[2]
}

// FitnessEvaluator scores a parameter set by running headless
// simulations across seeds and averaging final sustainability.
type FitnessEvaluator struct {
	params   *ParamVector
	maxTicks int64
	seeds    []int64
	baseCfg  *config.Config
	evals    int
}

// NewFitnessEvaluator creates an evaluator over the given seeds.
func NewFitnessEvaluator(params *ParamVector, maxTicks int64, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:   params,
		maxTicks: maxTicks,
		seeds:    seeds,
		baseCfg:  baseCfg,
	}
}

// Evaluate returns the loss (negative mean sustainability) for a raw
// parameter vector. A run that loses every species scores worst.
func (e *FitnessEvaluator) Evaluate(raw []float64) float64 {
	e.evals++

	var total float64
	for _, seed := range e.seeds {
		cfg := *e.baseCfg
		e.params.Apply(&cfg, raw)

		total += e.runOnce(&cfg, seed)
	}
	mean := total / float64(len(e.seeds))
	return -mean
}

// runOnce runs a single headless simulation and returns its final
// sustainability, penalized to zero if the world empties out.
func (e *FitnessEvaluator) runOnce(cfg *config.Config, seed int64) float64 {
	scheduler := sim.New(sim.Options{Seed: seed, Config: cfg})
	scheduler.SeedWorld()

	reporter := telemetry.NewReporter(cfg, scheduler.Registry(), scheduler.Climate())
	scheduler.Bus().Subscribe(reporter.Observe)

	for scheduler.Tick() < e.maxTicks {
		scheduler.Step()
	}

	m := reporter.Metrics(scheduler.Tick(), scheduler.Time())
	if m.TotalSpecies == 0 {
		return 0
	}
	return m.Sustainability
}

// Evals returns the number of Evaluate calls so far.
func (e *FitnessEvaluator) Evals() int { return e.evals }
