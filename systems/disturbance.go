package systems

import (
	"math"
	"math/rand"

	"github.com/kkingfung/ecosim/config"
	"github.com/kkingfung/ecosim/eco"
)

// Catastrophe effect scaling: worst case a single event removes 30% of
// a population, 40% of a resource pool, and 20% of biome stability.
const (
	maxPopulationLoss = 0.3
	maxResourceLoss   = 0.4
	maxStabilityLoss  = 0.2
	stressPerSeverity = 0.5
)

// Catastrophe is a generated disturbance affecting a subset of biomes.
type Catastrophe struct {
	Type         eco.CatastropheType
	Intensity    float64 // 0..1
	RecoveryTime float64 // seconds of decaying aftermath
	Affected     []eco.BiomeHandle
}

// Engine generates rare catastrophic events and applies their effects.
// Impact on stability then decays exponentially via the evolution
// system's disturbance history.
type Engine struct {
	cfg *config.Config
	rng *rand.Rand
	bus *eco.Bus
}

// NewEngine creates a disturbance engine.
func NewEngine(cfg *config.Config, rng *rand.Rand, bus *eco.Bus) *Engine {
	return &Engine{cfg: cfg, rng: rng, bus: bus}
}

// MaybeGenerate draws a Bernoulli event with probability frequency*dt.
// Returns nil on no event or when no biomes exist.
func (e *Engine) MaybeGenerate(reg *eco.Registry, dt float64) *Catastrophe {
	if reg.Count() == 0 {
		return nil
	}
	if e.rng.Float64() >= e.cfg.Disturbance.Frequency*dt {
		return nil
	}

	intensity := 0.3 + e.rng.Float64()*0.7
	c := &Catastrophe{
		Type:         eco.CatastropheType(e.rng.Intn(int(eco.NumCatastropheTypes))),
		Intensity:    intensity,
		RecoveryTime: 60 + intensity*240,
	}

	biomes := reg.All()
	count := 1 + e.rng.Intn(e.cfg.Disturbance.MaxAffected)
	if count > len(biomes) {
		count = len(biomes)
	}
	// Sample without replacement from a shuffled index set.
	perm := e.rng.Perm(len(biomes))
	for _, i := range perm[:count] {
		c.Affected = append(c.Affected, biomes[i].Handle)
	}
	return c
}

// Apply records the catastrophe in each affected biome's history and
// applies immediate intensity-scaled losses to populations, resources,
// and stability. One catastrophe event is published per catastrophe.
func (e *Engine) Apply(c *Catastrophe, reg *eco.Registry, now float64) {
	if c == nil {
		return
	}
	for _, h := range c.Affected {
		b := reg.Get(h)
		if b == nil {
			continue // biome vanished between generate and apply
		}
		b.Disturbances = append(b.Disturbances, eco.DisturbanceEvent{
			Type:     c.Type,
			Severity: c.Intensity,
			Time:     now,
			Duration: c.RecoveryTime,
		})

		for _, sp := range b.Species {
			sp.Population = math.Max(0, sp.Population*(1-maxPopulationLoss*c.Intensity))
			sp.Stress = clamp(sp.Stress+stressPerSeverity*c.Intensity, 0, 1)
		}
		for _, pool := range b.Resources {
			pool.Current = math.Max(0, pool.Current*(1-maxResourceLoss*c.Intensity))
		}
		b.Stability = clamp(b.Stability*(1-maxStabilityLoss*c.Intensity), 0, 1)
	}

	e.bus.Publish(eco.Event{
		Kind:        eco.EventCatastrophe,
		Time:        now,
		Catastrophe: c.Type,
		Value:       c.Intensity,
	})
}
