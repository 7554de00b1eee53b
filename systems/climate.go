// Package systems implements the simulation systems that mutate the eco
// data model: climate, resource flow, species interactions, disturbance,
// and biome evolution. Systems never panic on missing records; bad
// lookups degrade to neutral defaults so a tick always completes.
package systems

import (
	"math"
	"math/rand"

	"github.com/ojrac/opensimplex-go"

	"github.com/kkingfung/ecosim/config"
	"github.com/kkingfung/ecosim/eco"
)

// climateOffset is the per-type baseline adjustment applied on top of
// the global climate state.
type climateOffset struct {
	temp        float64 // degrees added to global temperature
	precipScale float64 // multiplier on global precipitation
}

var typeOffsets = [eco.NumBiomeTypes]climateOffset{
	eco.Grassland: {temp: 0, precipScale: 1.0},
	eco.Forest:    {temp: -1, precipScale: 1.3},
	eco.Desert:    {temp: 8, precipScale: 0.25},
	eco.Tundra:    {temp: -15, precipScale: 0.5},
	eco.Swamp:     {temp: 2, precipScale: 1.6},
	eco.Tropical:  {temp: 10, precipScale: 2.0},
	eco.Mountain:  {temp: -8, precipScale: 0.9},
	eco.Ocean:     {temp: 1, precipScale: 1.1},
	eco.Temperate: {temp: -2, precipScale: 1.1},
}

// Stress normalization tolerances: deviation at which one climate axis
// saturates its stress contribution.
const (
	tempTolerance   = 10.0
	precipTolerance = 60.0
)

// ClimateModel owns the single global climate state and derives
// per-biome conditions from it. Temperature and precipitation advance by
// a bounded random walk; a location-keyed simplex noise field gives
// biomes at different positions distinct local climate.
type ClimateModel struct {
	cfg   *config.Config
	rng   *rand.Rand
	bus   *eco.Bus
	noise opensimplex.Noise

	state   eco.ClimateSystem
	elapsed float64 // simulation seconds, advances with each tick
	drift   float64 // accumulated |temperature steps| since last shift event
}

// NewClimateModel creates a climate model seeded for reproducible noise
// and drift.
func NewClimateModel(cfg *config.Config, rng *rand.Rand, bus *eco.Bus, seed int64) *ClimateModel {
	return &ClimateModel{
		cfg:   cfg,
		rng:   rng,
		bus:   bus,
		noise: opensimplex.NewNormalized(seed),
		state: eco.ClimateSystem{
			Temperature:       cfg.Climate.BaseTemperature,
			Precipitation:     cfg.Climate.BasePrecipitation,
			AtmosphericCO2:    cfg.Climate.BaseCO2,
			SeasonalVariation: cfg.Climate.SeasonalVariation,
			Stability:         1.0,
		},
	}
}

// State returns a copy of the global climate state.
func (m *ClimateModel) State() eco.ClimateSystem { return m.state }

// Elapsed returns the model's accumulated simulation time.
func (m *ClimateModel) Elapsed() float64 { return m.elapsed }

// AdvanceGlobal nudges the global climate by a bounded random walk and
// fires a climate-shift event when cumulative drift crosses the
// configured threshold.
func (m *ClimateModel) AdvanceGlobal(dt float64) {
	m.elapsed += dt
	cc := &m.cfg.Climate

	tempStep := (m.rng.Float64()*2 - 1) * cc.Variance * dt
	m.state.Temperature = clamp(m.state.Temperature+tempStep,
		cc.BaseTemperature-10, cc.BaseTemperature+10)

	precipStep := (m.rng.Float64()*2 - 1) * cc.Variance * 5 * dt
	m.state.Precipitation = clamp(m.state.Precipitation+precipStep,
		cc.BasePrecipitation*0.2, cc.BasePrecipitation*2.5)

	// CO2 creeps upward; it nudges temperature drift rather than acting
	// on biomes directly.
	m.state.AtmosphericCO2 += 0.001 * dt

	m.drift += math.Abs(tempStep)
	if m.drift >= cc.ShiftThreshold {
		rate := m.drift / math.Max(m.elapsed, 1)
		m.state.Stability = clamp(m.state.Stability-0.1, 0.2, 1)
		m.bus.Publish(eco.Event{
			Kind:  eco.EventClimateShift,
			Time:  m.elapsed,
			Value: rate,
		})
		m.drift = 0
	}
}

// SeasonPhase returns the seasonal cycle position in [0, 2pi).
func (m *ClimateModel) SeasonPhase() float64 {
	period := m.cfg.Climate.SeasonPeriod
	if period <= 0 {
		return 0
	}
	return 2 * math.Pi * math.Mod(m.elapsed, period) / period
}

// DeriveBiomeClimate derives local conditions for a biome type at a
// location from a global state. Pure given its inputs: the noise field
// is fixed by the construction seed.
func (m *ClimateModel) DeriveBiomeClimate(t eco.BiomeType, loc eco.Location, global eco.ClimateSystem) eco.ClimateCondition {
	off := typeOffsets[min(t, eco.NumBiomeTypes-1)]
	scale := m.cfg.Climate.NoiseScale
	local := m.noise.Eval2(loc.X*scale, loc.Y*scale) // 0..1
	tempNoise := (local*2 - 1) * m.cfg.Climate.NoiseAmplitude

	cond := eco.ClimateCondition{
		Temperature:   global.Temperature + off.temp + tempNoise,
		Precipitation: global.Precipitation * off.precipScale,
	}
	cond.Humidity = humidityFrom(cond.Precipitation)
	return cond
}

// UpdateSeasonalCycles refreshes each biome's local climate from the
// global state and applies the periodic seasonal modifier. Deterministic
// given the model's elapsed seasonal time.
func (m *ClimateModel) UpdateSeasonalCycles(biomes []*eco.Biome, dt float64) {
	_ = dt // season phase advances with the global clock in AdvanceGlobal
	for _, b := range biomes {
		m.ApplySeason(b)
	}
}

// ApplySeason recomputes one biome's local climate including the
// seasonal swing scaled by the biome's amplitude.
func (m *ClimateModel) ApplySeason(b *eco.Biome) {
	cond := m.DeriveBiomeClimate(b.Type, b.Location, m.state)
	swing := math.Sin(m.SeasonPhase()) * m.state.SeasonalVariation * b.SeasonalAmplitude
	cond.Temperature += swing * 5
	cond.Precipitation = math.Max(0, cond.Precipitation*(1+swing*0.2))
	cond.Humidity = humidityFrom(cond.Precipitation)
	b.Climate = cond
}

// ClimateStress measures how far a biome's current conditions sit from
// its type's expected range, normalized to [0,1].
func (m *ClimateModel) ClimateStress(b *eco.Biome) float64 {
	if b == nil {
		return 0
	}
	off := typeOffsets[min(b.Type, eco.NumBiomeTypes-1)]
	expectedTemp := m.cfg.Climate.BaseTemperature + off.temp
	expectedPrecip := m.cfg.Climate.BasePrecipitation * off.precipScale

	dTemp := math.Abs(b.Climate.Temperature-expectedTemp) / tempTolerance
	dPrecip := math.Abs(b.Climate.Precipitation-expectedPrecip) / precipTolerance
	return clamp((dTemp+dPrecip)/2, 0, 1)
}

// humidityFrom maps precipitation to a bounded humidity value.
func humidityFrom(precip float64) float64 {
	return clamp(precip/200, 0.05, 0.95)
}

// clamp limits x to [lo, hi].
func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
