package systems

import (
	"testing"

	"github.com/kkingfung/ecosim/config"
	"github.com/kkingfung/ecosim/eco"
)

// testConfig loads the embedded defaults for tests.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	return cfg
}

// testBiome builds a grassland biome with a water pool and no species.
func testBiome(h eco.BiomeHandle) *eco.Biome {
	return &eco.Biome{
		Handle:           h,
		Type:             eco.Grassland,
		Location:         eco.Location{X: 100, Y: 100},
		Area:             100,
		CarryingCapacity: eco.CarryingCapacityFor(eco.Grassland, 100, 1.0),
		Stability:        0.8,
		Climate: eco.ClimateCondition{
			Temperature:   15,
			Precipitation: 100,
			Humidity:      0.5,
		},
		Resources: map[string]*eco.Resource{
			ResWater: {Current: 500, Max: 1000, RegenRate: 4, Renewable: true},
		},
	}
}

// testSpecies builds a primary consumer with the given population.
func testSpecies(name string, pop, maxPop float64) *eco.Species {
	return &eco.Species{
		Name:                name,
		Population:          pop,
		IntrinsicGrowthRate: 0.05,
		Trophic:             eco.PrimaryConsumer,
		Niche: eco.Niche{
			HabitatSpecialization: 0.3,
			Feeding:               eco.FeedHerbivory,
			Activity:              eco.ActivityDiurnal,
		},
		Requirements:       map[string]float64{ResWater: 0.5},
		OptimalTemperature: 15,
		OptimalHumidity:    0.5,
		TemperatureRange:   15,
		HumidityRange:      0.5,
		MaxPopulation:      maxPop,
	}
}
