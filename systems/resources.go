package systems

import (
	"math"

	"github.com/kkingfung/ecosim/config"
	"github.com/kkingfung/ecosim/eco"
)

// Canonical resource names.
const (
	ResWater      = "water"
	ResVegetation = "vegetation"
	ResMinerals   = "minerals"
)

// resourceSeed is a starting pool definition for a biome type.
type resourceSeed struct {
	name      string
	initial   float64
	max       float64
	regen     float64
	renewable bool
}

// typeResources seeds the per-type starting pools. Vegetation here is
// standing plant matter available to grazers, distinct from producer
// species populations.
var typeResources = map[eco.BiomeType][]resourceSeed{
	eco.Grassland: {
		{ResWater, 800, 1000, 4.0, true},
		{ResVegetation, 1200, 1500, 6.0, true},
		{ResMinerals, 400, 500, 0.5, false},
	},
	eco.Forest: {
		{ResWater, 900, 1200, 5.0, true},
		{ResVegetation, 1800, 2200, 8.0, true},
		{ResMinerals, 500, 600, 0.5, false},
	},
	eco.Desert: {
		{ResWater, 150, 300, 0.8, true},
		{ResVegetation, 200, 400, 1.0, true},
		{ResMinerals, 600, 700, 0.3, false},
	},
	eco.Tundra: {
		{ResWater, 500, 700, 1.5, true},
		{ResVegetation, 300, 500, 1.2, true},
		{ResMinerals, 350, 450, 0.3, false},
	},
	eco.Swamp: {
		{ResWater, 1400, 1600, 7.0, true},
		{ResVegetation, 1300, 1600, 6.5, true},
		{ResMinerals, 300, 400, 0.4, false},
	},
	eco.Tropical: {
		{ResWater, 1300, 1500, 7.5, true},
		{ResVegetation, 2200, 2600, 10.0, true},
		{ResMinerals, 450, 550, 0.5, false},
	},
	eco.Mountain: {
		{ResWater, 600, 800, 2.5, true},
		{ResVegetation, 350, 600, 1.8, true},
		{ResMinerals, 800, 900, 0.2, false},
	},
	eco.Ocean: {
		{ResWater, 2000, 2000, 0, true},
		{ResVegetation, 900, 1200, 5.0, true},
		{ResMinerals, 500, 600, 0.6, false},
	},
	eco.Temperate: {
		{ResWater, 850, 1100, 4.5, true},
		{ResVegetation, 1400, 1700, 6.5, true},
		{ResMinerals, 450, 550, 0.5, false},
	},
}

// TrophicEfficiency returns the consumption-rate modifier per trophic
// level. Producers generate rather than consume, so their draw is zero;
// higher consumers are modeled as more efficient foragers rather than
// applying true energy-pyramid loss.
func TrophicEfficiency(l eco.TrophicLevel) float64 {
	switch l {
	case eco.Producer:
		return 0
	case eco.PrimaryConsumer:
		return 1.0
	case eco.SecondaryConsumer:
		return 0.8
	case eco.TertiaryConsumer:
		return 0.6
	default:
		return 0.5
	}
}

// Ledger applies resource consumption and regeneration to biome pools.
// It mutates pools inside biomes handed to it; the registry retains
// ownership of the records.
type Ledger struct {
	cfg *config.Config
	bus *eco.Bus
}

// NewLedger creates a resource ledger.
func NewLedger(cfg *config.Config, bus *eco.Bus) *Ledger {
	return &Ledger{cfg: cfg, bus: bus}
}

// InitializeBiomeResources seeds type-specific starting pools.
func (l *Ledger) InitializeBiomeResources(t eco.BiomeType) map[string]*eco.Resource {
	seeds, ok := typeResources[t]
	if !ok {
		seeds = typeResources[eco.Grassland]
	}
	pools := make(map[string]*eco.Resource, len(seeds))
	for _, s := range seeds {
		pools[s.name] = &eco.Resource{
			Current:   s.initial,
			Max:       s.max,
			RegenRate: s.regen,
			Renewable: s.renewable,
		}
	}
	return pools
}

// ApplyConsumption draws each species' resource requirements from the
// biome pools, floored at zero. Tracked-creature biomass adds grazing
// pressure on water and vegetation.
func (l *Ledger) ApplyConsumption(b *eco.Biome, dt float64) {
	base := l.cfg.Resources.BaseConsumption
	for _, sp := range b.Species {
		eff := TrophicEfficiency(sp.Trophic)
		if eff == 0 || sp.Population <= 0 {
			continue
		}
		for name, req := range sp.Requirements {
			pool, ok := b.Resources[name]
			if !ok {
				continue // missing pool is a valid scarce state
			}
			draw := base * eff * req * sp.Population * dt
			l.take(b, name, pool, draw)
		}
	}

	if b.CreatureBiomass > 0 {
		draw := l.cfg.Resources.BiomassDraw * b.CreatureBiomass * dt
		for _, name := range []string{ResWater, ResVegetation} {
			if pool, ok := b.Resources[name]; ok {
				l.take(b, name, pool, draw)
			}
		}
	}
}

// take removes up to amount from a pool and fires a resource-low event
// when the draw crosses the low-water fraction.
func (l *Ledger) take(b *eco.Biome, name string, pool *eco.Resource, amount float64) {
	if amount <= 0 || pool.Max <= 0 {
		return
	}
	lowMark := pool.Max * l.cfg.Resources.LowWaterFraction
	wasLow := pool.Current < lowMark
	pool.Current = math.Max(0, pool.Current-amount)
	if !wasLow && pool.Current < lowMark {
		l.bus.Publish(eco.Event{
			Kind:     eco.EventResourceLow,
			Biome:    b.Handle,
			Resource: name,
			Value:    pool.Current,
		})
	}
}

// Regenerate restores renewable pools toward their maximum. Regen is
// scaled by precipitation relative to the reference and by the biome's
// stability index, and never overshoots Max for any dt >= 0.
func (l *Ledger) Regenerate(b *eco.Biome, dt float64) {
	if dt < 0 {
		return
	}
	climateMod := clamp(b.Climate.Precipitation/l.cfg.Resources.ReferencePrecip, 0.2, 2.0)
	for _, pool := range b.Resources {
		if !pool.Renewable || pool.Current >= pool.Max {
			continue
		}
		regen := pool.RegenRate * climateMod * b.Stability * dt
		pool.Current = math.Min(pool.Max, pool.Current+regen)
	}
}

// Availability returns the current level of a named pool, or 0 when the
// biome has no such pool. Never errors: absence is scarcity.
func (l *Ledger) Availability(b *eco.Biome, name string) float64 {
	if b == nil {
		return 0
	}
	pool, ok := b.Resources[name]
	if !ok {
		return 0
	}
	return pool.Current
}
