package sim

import (
	"math/rand"

	"github.com/kkingfung/ecosim/config"
	"github.com/kkingfung/ecosim/eco"
	"github.com/kkingfung/ecosim/systems"
)

// initialPopulationFraction is the share of max population a founder
// species starts with.
const initialPopulationFraction = 0.25

// foodWebStrength is the default edge strength for derived predation
// links between adjacent trophic levels.
const foodWebStrength = 0.5

func trophicByName(name string) eco.TrophicLevel {
	switch name {
	case "producer":
		return eco.Producer
	case "primary":
		return eco.PrimaryConsumer
	case "secondary":
		return eco.SecondaryConsumer
	case "tertiary":
		return eco.TertiaryConsumer
	}
	return eco.PrimaryConsumer
}

func feedingByName(name string) eco.FeedingStrategy {
	switch name {
	case "photosynthesis":
		return eco.FeedPhotosynthesis
	case "herbivory":
		return eco.FeedHerbivory
	case "carnivory":
		return eco.FeedCarnivory
	case "omnivory":
		return eco.FeedOmnivory
	case "detritivory":
		return eco.FeedDetritivory
	}
	return eco.FeedHerbivory
}

func activityByName(name string) eco.ActivityPattern {
	switch name {
	case "nocturnal":
		return eco.ActivityNocturnal
	case "crepuscular":
		return eco.ActivityCrepuscular
	}
	return eco.ActivityDiurnal
}

// SpeciesFromArchetype instantiates a founder species record from its
// config template.
func SpeciesFromArchetype(arch *config.SpeciesArchetype) *eco.Species {
	reqs := make(map[string]float64, len(arch.Requirements))
	for name, amt := range arch.Requirements {
		reqs[name] = amt
	}
	return &eco.Species{
		Name:                arch.Name,
		Population:          arch.MaxPopulation * initialPopulationFraction,
		IntrinsicGrowthRate: arch.IntrinsicGrowth,
		Trophic:             trophicByName(arch.Trophic),
		Niche: eco.Niche{
			HabitatSpecialization: arch.Habitat,
			Feeding:               feedingByName(arch.Feeding),
			Activity:              activityByName(arch.Activity),
		},
		Requirements:       reqs,
		OptimalTemperature: arch.OptimalTemp,
		OptimalHumidity:    arch.OptimalHumidity,
		TemperatureRange:   arch.TempRange,
		HumidityRange:      arch.HumidityRange,
		MaxPopulation:      arch.MaxPopulation,
		CanMigrate:         arch.Migratory,
	}
}

// PopulateBiome seeds a freshly created biome with its type resources,
// founder species, and a food web derived from trophic adjacency.
func PopulateBiome(b *eco.Biome, cfg *config.Config, ledger *systems.Ledger) {
	b.Resources = ledger.InitializeBiomeResources(b.Type)

	typeName := b.Type.String()
	for i := range cfg.Archetypes {
		arch := &cfg.Archetypes[i]
		for _, bt := range arch.Biomes {
			if bt == typeName {
				b.Species = append(b.Species, SpeciesFromArchetype(arch))
				break
			}
		}
	}

	buildFoodWeb(b)
}

// buildFoodWeb links each consumer to every resident species one trophic
// level below it, and pairs producers with a weak facilitation edge.
func buildFoodWeb(b *eco.Biome) {
	b.Relations = b.Relations[:0]
	for _, pred := range b.Species {
		if pred.Trophic == eco.Producer {
			continue
		}
		preyLevel := pred.Trophic - 1
		for _, prey := range b.Species {
			if prey.Trophic == preyLevel {
				b.Relations = append(b.Relations, eco.Relationship{
					A: pred.Name, B: prey.Name,
					Type:     eco.Predation,
					Strength: foodWebStrength,
				})
			}
		}
	}

	// Producers facilitate each other (shared soil building, shelter).
	var producers []*eco.Species
	for _, sp := range b.Species {
		if sp.Trophic == eco.Producer {
			producers = append(producers, sp)
		}
	}
	for i := 0; i+1 < len(producers); i += 2 {
		b.Relations = append(b.Relations, eco.Relationship{
			A: producers[i].Name, B: producers[i+1].Name,
			Type:     eco.Mutualism,
			Strength: 0.3,
		})
	}
}

// seedableTypes are the biome types used for initial world generation.
// Ocean is excluded: it has no transitions and would pin the type mix.
var seedableTypes = []eco.BiomeType{
	eco.Grassland, eco.Forest, eco.Desert, eco.Tundra,
	eco.Swamp, eco.Tropical, eco.Mountain, eco.Temperate,
}

// SeedWorld creates the initial biome set at random locations and
// populates each one. Stops early if the registry refuses creation.
func SeedWorld(reg *eco.Registry, cfg *config.Config, ledger *systems.Ledger, climate *systems.ClimateModel, rng *rand.Rand) {
	for i := 0; i < cfg.World.InitialBiomes; i++ {
		t := seedableTypes[rng.Intn(len(seedableTypes))]
		loc := eco.Location{
			X: rng.Float64() * cfg.World.Width,
			Y: rng.Float64() * cfg.World.Height,
		}
		area := 50 + rng.Float64()*150
		h := reg.Create(t, loc, area, cfg.World.Flexibility)
		if !h.Valid() {
			return
		}
		b := reg.Get(h)
		PopulateBiome(b, cfg, ledger)
		climate.ApplySeason(b)
	}
}
