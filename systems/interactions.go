package systems

import (
	"math"

	"github.com/kkingfung/ecosim/config"
	"github.com/kkingfung/ecosim/eco"
)

// Niche overlap weights: habitat similarity dominates, feeding strategy
// and activity pattern matter less. Normalized by their sum (1.8).
const (
	nicheHabitatWeight  = 1.0
	nicheFeedingWeight  = 0.5
	nicheActivityWeight = 0.3
	nicheWeightSum      = nicheHabitatWeight + nicheFeedingWeight + nicheActivityWeight
)

// predationSoftening keeps the Lotka-Volterra interaction bounded at low
// prey counts: prey/(prey+1000) approaches zero smoothly instead of
// letting one timestep wipe out a small population.
const predationSoftening = 1000.0

// conversionEfficiency converts predation consumption into predator
// growth-rate gain.
const conversionEfficiency = 0.001

// PreventionPolicy decides whether a species below the extinction
// threshold is rescued instead of removed. The default rescues any
// population under the configured absolute floor; callers wanting true
// extinction risk must supply a stricter policy.
type PreventionPolicy func(sp *eco.Species, b *eco.Biome) bool

// Dynamics runs the per-biome species interaction pass: competition,
// predation, mutualism, intrinsic growth, stress, and extinction.
type Dynamics struct {
	cfg     *config.Config
	bus     *eco.Bus
	prevent PreventionPolicy
}

// NewDynamics creates the interaction system with the default
// prevention policy.
func NewDynamics(cfg *config.Config, bus *eco.Bus) *Dynamics {
	d := &Dynamics{cfg: cfg, bus: bus}
	d.prevent = func(sp *eco.Species, _ *eco.Biome) bool {
		return sp.Population < cfg.Species.PreventionFloor
	}
	return d
}

// SetPreventionPolicy replaces the extinction rescue predicate. A nil
// policy disables rescue entirely.
func (d *Dynamics) SetPreventionPolicy(p PreventionPolicy) {
	d.prevent = p
}

// CompetitionStrength estimates how strongly two species compete, as the
// average of their resource-requirement overlap and niche overlap.
func (d *Dynamics) CompetitionStrength(a, b *eco.Species) float64 {
	return (d.resourceOverlap(a, b) + d.nicheOverlap(a, b)) / 2
}

// resourceOverlap averages min/max requirement ratios over shared
// resources. No shared resources means no overlap.
func (d *Dynamics) resourceOverlap(a, b *eco.Species) float64 {
	var sum float64
	var n int
	for name, reqA := range a.Requirements {
		reqB, ok := b.Requirements[name]
		if !ok {
			continue
		}
		lo, hi := reqA, reqB
		if lo > hi {
			lo, hi = hi, lo
		}
		if hi > 0 {
			sum += lo / hi
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// nicheOverlap is the weighted similarity of habitat specialization,
// feeding strategy, and activity pattern.
func (d *Dynamics) nicheOverlap(a, b *eco.Species) float64 {
	habitat := 1 - math.Abs(a.Niche.HabitatSpecialization-b.Niche.HabitatSpecialization)
	var feeding, activity float64
	if a.Niche.Feeding == b.Niche.Feeding {
		feeding = 1
	}
	if a.Niche.Activity == b.Niche.Activity {
		activity = 1
	}
	return (nicheHabitatWeight*habitat + nicheFeedingWeight*feeding + nicheActivityWeight*activity) / nicheWeightSum
}

// ApplyCompetition applies growth pressure to both species when their
// overlap exceeds 0.5. Pressure on each side scales with the opponent's
// population relative to its own; stress accumulates symmetrically.
func (d *Dynamics) ApplyCompetition(a, b *eco.Species, dt float64) {
	strength := d.CompetitionStrength(a, b)
	if strength <= 0.5 {
		return
	}
	intensity := d.cfg.Species.CompetitionIntensity

	a.GrowthRate -= strength * intensity * (b.Population / (a.Population + 1)) * dt
	b.GrowthRate -= strength * intensity * (a.Population / (b.Population + 1)) * dt

	stressGain := strength * intensity * dt
	a.Stress = clamp(a.Stress+stressGain, 0, 1)
	b.Stress = clamp(b.Stress+stressGain, 0, 1)
}

// ApplyPredation transfers population from prey to predator growth with
// a softened Lotka-Volterra response. Returns the consumed amount. With
// zero prey the interaction evaluates to exactly zero.
func (d *Dynamics) ApplyPredation(pred, prey *eco.Species, strength, dt float64) float64 {
	if pred == nil || prey == nil {
		return 0
	}
	balance := d.cfg.Species.PredatorPreyBalance
	consumption := strength * balance * dt * pred.Population * prey.Population /
		(prey.Population + predationSoftening)
	if consumption <= 0 {
		return 0
	}

	prey.Population = math.Max(0, prey.Population-consumption)
	pred.GrowthRate += consumption * conversionEfficiency
	pred.HuntingSuccess = clamp(consumption/(pred.Population+1), 0, 1)
	return consumption
}

// ApplyMutualism boosts both growth rates and relieves stress by the
// same amount, floored at zero.
func (d *Dynamics) ApplyMutualism(a, b *eco.Species, strength, dt float64) {
	boost := strength * d.cfg.Species.SymbiosisRate * dt
	a.GrowthRate += boost
	b.GrowthRate += boost
	a.Stress = math.Max(0, a.Stress-boost)
	b.Stress = math.Max(0, b.Stress-boost)
}

// IntrinsicGrowth recomputes a species' base growth rate from carrying
// capacity headroom, resource availability, and climate suitability.
func (d *Dynamics) IntrinsicGrowth(sp *eco.Species, b *eco.Biome) {
	capacityEffect := 1 - sp.Population/(b.CarryingCapacity+1)
	sp.GrowthRate = sp.IntrinsicGrowthRate * capacityEffect *
		d.resourceFactor(sp, b) * d.climateFactor(sp, b)
}

// resourceFactor is the product over required resources of how well the
// pool ratio covers the requirement, clamped to [0.1, 1]. A missing pool
// contributes zero coverage (scarcity, not an error).
func (d *Dynamics) resourceFactor(sp *eco.Species, b *eco.Biome) float64 {
	factor := 1.0
	for name, req := range sp.Requirements {
		if req <= 0 {
			continue
		}
		var ratio float64
		if pool, ok := b.Resources[name]; ok && pool.Max > 0 {
			ratio = pool.Current / pool.Max
		}
		factor *= math.Min(1, ratio/req)
	}
	return clamp(factor, 0.1, 1)
}

// climateFactor averages temperature and humidity fit, each degrading
// linearly with deviation from the species optimum over its tolerated
// range. Clamped to [0.1, 1].
func (d *Dynamics) climateFactor(sp *eco.Species, b *eco.Biome) float64 {
	tempRange := sp.TemperatureRange
	if tempRange <= 0 {
		tempRange = tempTolerance
	}
	humRange := sp.HumidityRange
	if humRange <= 0 {
		humRange = 0.5
	}
	tempFit := 1 - math.Abs(b.Climate.Temperature-sp.OptimalTemperature)/tempRange
	humFit := 1 - math.Abs(b.Climate.Humidity-sp.OptimalHumidity)/humRange
	return clamp((tempFit+humFit)/2, 0.1, 1)
}

// ApplyEnvironmentalStress suppresses growth under high stress and
// decays stress over time regardless of level.
func (d *Dynamics) ApplyEnvironmentalStress(sp *eco.Species, dt float64) {
	if sp.Stress > 0.5 {
		sp.GrowthRate *= 1 - sp.Stress*0.5
	}
	sp.Stress = math.Max(0, sp.Stress-d.cfg.Species.StressDecay*dt)
}

// Integrate advances a species' population by its current growth rate,
// clamped to [0, MaxPopulation].
func (d *Dynamics) Integrate(sp *eco.Species, dt float64) {
	sp.Population += sp.Population * sp.GrowthRate * dt
	sp.Population = clamp(sp.Population, 0, sp.MaxPopulation)
}

// CheckExtinction removes or rescues a species whose population fell
// below the extinction threshold fraction of its maximum. Returns true
// when the species was removed; exactly one event fires either way the
// threshold is crossed.
func (d *Dynamics) CheckExtinction(sp *eco.Species, b *eco.Biome, now float64) bool {
	threshold := d.cfg.Species.ExtinctionThreshold * sp.MaxPopulation
	if sp.Population >= threshold {
		return false
	}
	if d.prevent != nil && d.prevent(sp, b) {
		// Soft rescue: reset to a small recovery floor.
		sp.Population = 2 * threshold
		d.bus.Publish(eco.Event{
			Kind:    eco.EventExtinctionPrevented,
			Time:    now,
			Biome:   b.Handle,
			Species: sp.Name,
			Value:   sp.Population,
		})
		return false
	}
	b.RemoveSpecies(sp.Name)
	d.bus.Publish(eco.Event{
		Kind:    eco.EventSpeciesExtinct,
		Time:    now,
		Biome:   b.Handle,
		Species: sp.Name,
	})
	return true
}

// UpdateBiome runs one full interaction pass over a biome: intrinsic
// growth, food-web edges, pairwise competition, stress, population
// integration, and the extinction sweep.
func (d *Dynamics) UpdateBiome(b *eco.Biome, dt, now float64) {
	for _, sp := range b.Species {
		d.IntrinsicGrowth(sp, b)
	}

	for _, rel := range b.Relations {
		a := b.FindSpecies(rel.A)
		o := b.FindSpecies(rel.B)
		if a == nil || o == nil {
			continue // stale edge, neutral outcome
		}
		switch rel.Type {
		case eco.Predation:
			d.ApplyPredation(a, o, rel.Strength, dt)
		case eco.Mutualism:
			d.ApplyMutualism(a, o, rel.Strength, dt)
		}
	}

	// Competition is emergent from overlap, evaluated for every pair.
	for i := 0; i < len(b.Species); i++ {
		for j := i + 1; j < len(b.Species); j++ {
			d.ApplyCompetition(b.Species[i], b.Species[j], dt)
		}
	}

	for _, sp := range b.Species {
		d.ApplyEnvironmentalStress(sp, dt)
		d.Integrate(sp, dt)
	}

	// Extinction sweep over a snapshot: removal mutates the list.
	snapshot := make([]*eco.Species, len(b.Species))
	copy(snapshot, b.Species)
	for _, sp := range snapshot {
		d.CheckExtinction(sp, b, now)
	}
}
