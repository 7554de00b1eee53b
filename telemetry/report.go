// Package telemetry provides the read-side of the simulation: windowed
// event statistics, the ecosystem analytics report, and CSV output.
// Nothing here mutates simulation state.
package telemetry

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/kkingfung/ecosim/config"
	"github.com/kkingfung/ecosim/eco"
	"github.com/kkingfung/ecosim/systems"
)

// BiodiversityIndex estimates biome biodiversity as the Shannon entropy
// of population shares normalized to [0,1] by ln(speciesCount). Empty
// and single-species biomes score zero: there is no evenness to
// measure.
func BiodiversityIndex(species []*eco.Species) float64 {
	if len(species) < 2 {
		return 0
	}
	var total float64
	for _, sp := range species {
		total += sp.Population
	}
	if total <= 0 {
		return 0
	}
	shares := make([]float64, 0, len(species))
	for _, sp := range species {
		if sp.Population > 0 {
			shares = append(shares, sp.Population/total)
		}
	}
	if len(shares) < 2 {
		return 0
	}
	h := stat.Entropy(shares)
	norm := math.Log(float64(len(species)))
	if norm <= 0 {
		return 0
	}
	return clamp(h/norm, 0, 1)
}

// Metrics is the aggregate ecosystem snapshot. Derived on demand, never
// stored authoritatively.
type Metrics struct {
	Tick               int64   `csv:"tick"`
	SimTime            float64 `csv:"sim_time"`
	TotalBiomes        int     `csv:"biomes"`
	TotalSpecies       int     `csv:"species"`
	TotalPopulation    float64 `csv:"population"`
	TotalArea          float64 `csv:"area"`
	AvgBiodiversity    float64 `csv:"biodiversity"`
	AvgStability       float64 `csv:"stability"`
	ClimateVariability float64 `csv:"climate_variability"`
	Connectivity       float64 `csv:"connectivity"`
	ExtinctionRate     float64 `csv:"extinction_rate"`
	Sustainability     float64 `csv:"sustainability"`
}

// Reporter aggregates read-only analytics over current state. It
// observes extinction events to maintain the sliding rate window but
// never touches the records it reads; it is safe to query from a
// snapshot taken between ticks.
type Reporter struct {
	cfg     *config.Config
	reg     *eco.Registry
	climate *systems.ClimateModel

	extinctionTimes []float64
}

// NewReporter creates a reporter over the given registry and climate.
func NewReporter(cfg *config.Config, reg *eco.Registry, climate *systems.ClimateModel) *Reporter {
	return &Reporter{cfg: cfg, reg: reg, climate: climate}
}

// Observe is the reporter's event-bus subscription; it records
// extinction times for the sliding-window rate.
func (r *Reporter) Observe(e eco.Event) {
	if e.Kind == eco.EventSpeciesExtinct {
		r.extinctionTimes = append(r.extinctionTimes, e.Time)
	}
}

// ExtinctionRate is recent extinctions per species per second over the
// configured window.
func (r *Reporter) ExtinctionRate(now float64) float64 {
	window := r.cfg.Telemetry.ExtinctionRateWindow
	if window <= 0 {
		return 0
	}
	cutoff := now - window
	kept := r.extinctionTimes[:0]
	recent := 0
	for _, t := range r.extinctionTimes {
		if t >= cutoff {
			kept = append(kept, t)
			recent++
		}
	}
	r.extinctionTimes = kept

	species := r.speciesCount()
	if species == 0 {
		return 0
	}
	return float64(recent) / (float64(species) * window)
}

func (r *Reporter) speciesCount() int {
	n := 0
	for _, b := range r.reg.All() {
		n += len(b.Species)
	}
	return n
}

// Metrics assembles the full aggregate snapshot.
func (r *Reporter) Metrics(tick int64, now float64) Metrics {
	biomes := r.reg.All()
	m := Metrics{
		Tick:        tick,
		SimTime:     now,
		TotalBiomes: len(biomes),
	}
	if len(biomes) == 0 {
		return m
	}

	biodiv := make([]float64, 0, len(biomes))
	stab := make([]float64, 0, len(biomes))
	temps := make([]float64, 0, len(biomes))
	for _, b := range biomes {
		m.TotalSpecies += len(b.Species)
		m.TotalPopulation += b.TotalPopulation()
		m.TotalArea += b.Area
		biodiv = append(biodiv, b.Biodiversity)
		stab = append(stab, b.Stability)
		temps = append(temps, b.Climate.Temperature)
	}
	m.AvgBiodiversity = stat.Mean(biodiv, nil)
	m.AvgStability = stat.Mean(stab, nil)
	if len(temps) > 1 {
		m.ClimateVariability = stat.StdDev(temps, nil)
	}
	m.Connectivity = r.connectivity(biomes)
	m.ExtinctionRate = r.ExtinctionRate(now)
	m.Sustainability = r.sustainability(m)
	return m
}

// connectivity is the fraction of biome pairs within migration reach,
// taken as 35% of the world diagonal.
func (r *Reporter) connectivity(biomes []*eco.Biome) float64 {
	if len(biomes) < 2 {
		return 0
	}
	diag := math.Hypot(r.cfg.World.Width, r.cfg.World.Height)
	reach := 0.35 * diag
	var connected, pairs int
	for i := 0; i < len(biomes); i++ {
		for j := i + 1; j < len(biomes); j++ {
			pairs++
			d := math.Hypot(
				biomes[i].Location.X-biomes[j].Location.X,
				biomes[i].Location.Y-biomes[j].Location.Y)
			if d <= reach {
				connected++
			}
		}
	}
	return float64(connected) / float64(pairs)
}

// sustainability averages the resource, biodiversity, climate, and
// resilience sub-scores.
func (r *Reporter) sustainability(m Metrics) float64 {
	resource := r.resourceScore()
	climateScore := r.climate.State().Stability
	return (resource + m.AvgBiodiversity + climateScore + m.AvgStability) / 4
}

// resourceScore is the mean pool fill ratio across all biomes.
func (r *Reporter) resourceScore() float64 {
	var sum float64
	var n int
	for _, b := range r.reg.All() {
		for _, pool := range b.Resources {
			if pool.Max > 0 {
				sum += pool.Current / pool.Max
				n++
			}
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
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
