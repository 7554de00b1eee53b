package sim

import (
	"github.com/kkingfung/ecosim/eco"
	"github.com/kkingfung/ecosim/telemetry"
)

// Conditions summarizes the local environment at a position, for UI and
// storytelling consumers. A position with no biome in reach returns the
// zero value.
type Conditions struct {
	Temperature          float64
	Humidity             float64
	ResourceAvailability float64 // mean pool fill ratio 0..1
	PredationRisk        float64 // 0..1
	CompetitionLevel     float64 // 0..1
	Stress               float64 // 0..1
	CreatureDensity      int     // tracked creatures within the density radius
}

// EnvironmentalConditions reports the conditions at a world position,
// read from the nearest biome and the creature grid.
func (s *Scheduler) EnvironmentalConditions(x, y float64) Conditions {
	b := s.reg.Nearest(eco.Location{X: x, Y: y})
	if b == nil {
		return Conditions{}
	}

	var c Conditions
	c.Temperature = b.Climate.Temperature
	c.Humidity = b.Climate.Humidity
	c.CreatureDensity = s.creatures.DensityAt(x, y)

	var poolSum float64
	var pools int
	for _, pool := range b.Resources {
		if pool.Max > 0 {
			poolSum += pool.Current / pool.Max
			pools++
		}
	}
	if pools > 0 {
		c.ResourceAvailability = poolSum / float64(pools)
	}

	total := b.TotalPopulation()
	if total > 0 {
		var predators float64
		var stressSum float64
		for _, sp := range b.Species {
			if sp.Trophic >= eco.SecondaryConsumer {
				predators += sp.Population
			}
			stressSum += sp.Stress * sp.Population
		}
		c.PredationRisk = clampQ(2*predators/total, 0, 1)
		c.Stress = stressSum / total
	}

	// Average pairwise competition strength among residents.
	if len(b.Species) > 1 {
		var sum float64
		var pairs int
		for i := 0; i < len(b.Species); i++ {
			for j := i + 1; j < len(b.Species); j++ {
				sum += s.dynamics.CompetitionStrength(b.Species[i], b.Species[j])
				pairs++
			}
		}
		c.CompetitionLevel = sum / float64(pairs)
	}

	return c
}

// Stress classification labels.
const (
	StressStable   = "stable"
	StressStressed = "stressed"
	StressCritical = "critical"
)

// BiomeStress is one biome's entry in the stress report.
type BiomeStress struct {
	Biome            eco.BiomeHandle
	Type             eco.BiomeType
	Stability        float64
	AvgSpeciesStress float64
	Class            string
}

// StressReport classifies every biome by stability and resident stress.
type StressReport struct {
	Biomes   []BiomeStress
	Stable   int
	Stressed int
	Critical int
}

// AnalyzeStress builds the per-biome stress classification.
func (s *Scheduler) AnalyzeStress() StressReport {
	var report StressReport
	for _, b := range s.reg.All() {
		var avgStress float64
		if len(b.Species) > 0 {
			for _, sp := range b.Species {
				avgStress += sp.Stress
			}
			avgStress /= float64(len(b.Species))
		}

		class := StressStable
		switch {
		case b.Stability < 0.3 || avgStress > 0.7:
			class = StressCritical
			report.Critical++
		case b.Stability < 0.6 || avgStress > 0.4:
			class = StressStressed
			report.Stressed++
		default:
			report.Stable++
		}

		report.Biomes = append(report.Biomes, BiomeStress{
			Biome:            b.Handle,
			Type:             b.Type,
			Stability:        b.Stability,
			AvgSpeciesStress: avgStress,
			Class:            class,
		})
	}
	return report
}

// FullReport is the complete analysis surface for external consumers.
type FullReport struct {
	Metrics telemetry.Metrics
	Stress  StressReport
	Climate eco.ClimateSystem
}

// GenerateReport assembles metrics, stress classification, and the
// global climate state into one snapshot.
func (s *Scheduler) GenerateReport(rep *telemetry.Reporter) FullReport {
	return FullReport{
		Metrics: rep.Metrics(s.tick, s.simTime),
		Stress:  s.AnalyzeStress(),
		Climate: s.climate.State(),
	}
}

// clampQ limits x to [lo, hi].
func clampQ(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
