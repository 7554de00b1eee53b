package systems

import (
	"math"
	"math/rand"

	"github.com/kkingfung/ecosim/config"
	"github.com/kkingfung/ecosim/eco"
)

// climateRequirement gates a type transition on local climate. Zero
// bounds are open (always satisfied on that side).
type climateRequirement struct {
	minTemp, maxTemp     float64
	minPrecip, maxPrecip float64
}

func (r climateRequirement) matches(c eco.ClimateCondition) bool {
	if r.minTemp != 0 || r.maxTemp != 0 {
		if c.Temperature < r.minTemp || (r.maxTemp != 0 && c.Temperature > r.maxTemp) {
			return false
		}
	}
	if r.minPrecip != 0 && c.Precipitation < r.minPrecip {
		return false
	}
	if r.maxPrecip != 0 && c.Precipitation > r.maxPrecip {
		return false
	}
	return true
}

// typeTransition is one edge of the biome-type transition matrix.
type typeTransition struct {
	to   eco.BiomeType
	prob float64
	cond climateRequirement
}

// transitions maps each biome type to the climate-gated transitions it
// can take. Ocean is terminal.
var transitions = map[eco.BiomeType][]typeTransition{
	eco.Grassland: {
		{to: eco.Forest, prob: 0.5, cond: climateRequirement{minTemp: 5, maxTemp: 25, minPrecip: 110}},
		{to: eco.Desert, prob: 0.4, cond: climateRequirement{minTemp: 20, maxPrecip: 40}},
		{to: eco.Tundra, prob: 0.3, cond: climateRequirement{minTemp: -40, maxTemp: -2}},
	},
	eco.Forest: {
		{to: eco.Grassland, prob: 0.4, cond: climateRequirement{maxPrecip: 70}},
		{to: eco.Tropical, prob: 0.3, cond: climateRequirement{minTemp: 24, minPrecip: 180}},
	},
	eco.Desert: {
		{to: eco.Grassland, prob: 0.3, cond: climateRequirement{minPrecip: 80}},
	},
	eco.Tundra: {
		{to: eco.Grassland, prob: 0.3, cond: climateRequirement{minTemp: 5}},
	},
	eco.Swamp: {
		{to: eco.Forest, prob: 0.3, cond: climateRequirement{maxPrecip: 120}},
	},
	eco.Tropical: {
		{to: eco.Forest, prob: 0.3, cond: climateRequirement{minTemp: -40, maxTemp: 18}},
	},
	eco.Mountain: {
		{to: eco.Tundra, prob: 0.3, cond: climateRequirement{minTemp: -40, maxTemp: -5}},
	},
	eco.Temperate: {
		{to: eco.Forest, prob: 0.4, cond: climateRequirement{minPrecip: 130}},
	},
}

// Health bands for biome-health notifications.
const (
	HealthCritical = iota
	HealthStressed
	HealthStable
)

// Evolution advances per-biome state: stability, succession stage, and
// climate-gated type transitions.
type Evolution struct {
	cfg     *config.Config
	climate *ClimateModel
	bus     *eco.Bus
	rng     *rand.Rand

	// draw is the transition roll, separated from rng so tests can force
	// deterministic outcomes.
	draw func() float64

	healthBands map[eco.BiomeHandle]int
}

// NewEvolution creates the biome evolution system.
func NewEvolution(cfg *config.Config, climate *ClimateModel, bus *eco.Bus, rng *rand.Rand) *Evolution {
	e := &Evolution{
		cfg:         cfg,
		climate:     climate,
		bus:         bus,
		rng:         rng,
		healthBands: make(map[eco.BiomeHandle]int),
	}
	e.draw = rng.Float64
	return e
}

// DisturbanceImpact sums the decayed severity of a biome's disturbance
// history, clamped to [0,1]. Recent events dominate; contributions fade
// exponentially and fully-faded events are pruned.
func (e *Evolution) DisturbanceImpact(b *eco.Biome, now float64) float64 {
	decay := e.cfg.Disturbance.DecayRate
	var impact float64
	kept := b.Disturbances[:0]
	for _, ev := range b.Disturbances {
		age := now - ev.Time
		if age < 0 {
			age = 0
		}
		contrib := ev.Severity * math.Exp(-decay*age)
		if contrib < 0.01 {
			continue
		}
		impact += contrib
		kept = append(kept, ev)
	}
	b.Disturbances = kept
	return clamp(impact, 0, 1)
}

// UpdateBiome advances one biome's stability, succession stage, and
// possible type transition over the elapsed interval.
func (e *Evolution) UpdateBiome(b *eco.Biome, dt, now float64) {
	climStress := e.climate.ClimateStress(b)
	distImpact := e.DisturbanceImpact(b, now)

	b.Stability -= (climStress + distImpact) * 0.1 * dt
	if climStress < 0.2 && distImpact < 0.1 {
		b.Stability += e.cfg.Biomes.RecoveryRate * dt
	}
	b.Stability = clamp(b.Stability, 0, 1)

	e.advanceSuccession(b, dt)
	e.evaluateTransition(b, dt, now)
	e.publishHealth(b, now)
}

// advanceSuccession moves the forward-only succession state machine.
// Climax is terminal.
func (e *Evolution) advanceSuccession(b *eco.Biome, dt float64) {
	b.StageTime += dt
	if b.Stage >= eco.StageClimax {
		return
	}
	if b.StageTime >= e.cfg.Biomes.SuccessionMinStageTime &&
		b.Stability >= e.cfg.Biomes.SuccessionMinStability {
		b.Stage++
		b.StageTime = 0
	}
}

// evaluateTransition rolls the climate-gated type change. A transition
// is a one-shot atomic swap: species and resources carry over, only
// type-derived fields are recomputed.
func (e *Evolution) evaluateTransition(b *eco.Biome, dt, now float64) {
	for _, tr := range transitions[b.Type] {
		if !tr.cond.matches(b.Climate) {
			continue
		}
		if e.draw() >= tr.prob*e.cfg.Biomes.TransitionRate*dt {
			continue
		}
		oldType := b.Type
		b.Type = tr.to
		b.CarryingCapacity = eco.CarryingCapacityFor(tr.to, b.Area, e.cfg.World.Flexibility)
		b.Climate = e.climate.DeriveBiomeClimate(tr.to, b.Location, e.climate.State())
		e.bus.Publish(eco.Event{
			Kind:    eco.EventBiomeTransition,
			Time:    now,
			Biome:   b.Handle,
			OldType: oldType,
			NewType: tr.to,
		})
		return
	}
}

// publishHealth fires a biome-health event when the stability band
// changes.
func (e *Evolution) publishHealth(b *eco.Biome, now float64) {
	band := HealthStable
	switch {
	case b.Stability < 0.3:
		band = HealthCritical
	case b.Stability < 0.6:
		band = HealthStressed
	}
	if prev, ok := e.healthBands[b.Handle]; ok && prev == band {
		return
	}
	e.healthBands[b.Handle] = band
	e.bus.Publish(eco.Event{
		Kind:  eco.EventBiomeHealth,
		Time:  now,
		Biome: b.Handle,
		Value: b.Stability,
	})
}
