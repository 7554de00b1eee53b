package systems

import (
	"math"
	"testing"

	"github.com/kkingfung/ecosim/eco"
)

func TestPredationZeroPreyIsExactlyZero(t *testing.T) {
	d := NewDynamics(testConfig(t), eco.NewBus())

	pred := testSpecies("stalker", 50, 150)
	pred.Trophic = eco.SecondaryConsumer
	prey := testSpecies("grazer", 0, 800)

	predGrowth := pred.GrowthRate
	if got := d.ApplyPredation(pred, prey, 0.5, 1.0); got != 0 {
		t.Errorf("consumption with zero prey = %v, want exactly 0", got)
	}
	if prey.Population != 0 || pred.GrowthRate != predGrowth {
		t.Error("zero-prey interaction must leave both species untouched")
	}
}

func TestPredationTransfersPopulation(t *testing.T) {
	d := NewDynamics(testConfig(t), eco.NewBus())

	pred := testSpecies("stalker", 10, 150)
	pred.Trophic = eco.SecondaryConsumer
	prey := testSpecies("grazer", 100, 800)

	cons := d.ApplyPredation(pred, prey, 0.5, 1.0)
	if cons <= 0 {
		t.Fatalf("consumption = %v, want > 0", cons)
	}
	// strength*balance*dt*pred*prey/(prey+1000)
	want := 0.5 * 0.01 * 1.0 * 10 * 100 / 1100
	if math.Abs(cons-want) > 1e-12 {
		t.Errorf("consumption = %v, want %v", cons, want)
	}
	if math.Abs(prey.Population-(100-want)) > 1e-12 {
		t.Errorf("prey population = %v, want %v", prey.Population, 100-want)
	}
	if pred.GrowthRate <= 0 {
		t.Error("predator growth rate must gain from consumption")
	}
	if pred.HuntingSuccess < 0 || pred.HuntingSuccess > 1 {
		t.Errorf("hunting success = %v, out of [0,1]", pred.HuntingSuccess)
	}
}

func TestPredationNeverDrivesPreyNegative(t *testing.T) {
	d := NewDynamics(testConfig(t), eco.NewBus())

	pred := testSpecies("stalker", 1e9, 1e10)
	prey := testSpecies("grazer", 2, 800)

	d.ApplyPredation(pred, prey, 1.0, 10.0)
	if prey.Population < 0 {
		t.Errorf("prey population = %v, want >= 0", prey.Population)
	}
}

func TestMutualismRelievesStress(t *testing.T) {
	d := NewDynamics(testConfig(t), eco.NewBus())

	a := testSpecies("grass", 100, 5000)
	b := testSpecies("fern", 100, 4000)
	a.Stress = 0.4
	b.Stress = 0.001

	d.ApplyMutualism(a, b, 0.3, 1.0)
	if a.GrowthRate <= 0 || b.GrowthRate <= 0 {
		t.Error("mutualism must boost both growth rates")
	}
	if a.Stress >= 0.4 {
		t.Errorf("a stress = %v, want < 0.4", a.Stress)
	}
	if b.Stress < 0 {
		t.Errorf("b stress = %v, want floored at 0", b.Stress)
	}
}

func TestCompetitionGate(t *testing.T) {
	d := NewDynamics(testConfig(t), eco.NewBus())

	// Disjoint resources and dissimilar niches: overlap stays under
	// the 0.5 gate and nothing changes.
	a := testSpecies("grazer", 100, 800)
	b := testSpecies("digger", 100, 800)
	b.Requirements = map[string]float64{ResMinerals: 0.3}
	b.Niche = eco.Niche{
		HabitatSpecialization: 0.9,
		Feeding:               eco.FeedCarnivory,
		Activity:              eco.ActivityNocturnal,
	}
	if s := d.CompetitionStrength(a, b); s > 0.5 {
		t.Fatalf("strength = %v, want <= 0.5 for dissimilar pair", s)
	}
	d.ApplyCompetition(a, b, 1.0)
	if a.GrowthRate != 0 || b.GrowthRate != 0 || a.Stress != 0 {
		t.Error("sub-gate competition must have no effect")
	}
}

func TestCompetitionIdenticalNiches(t *testing.T) {
	d := NewDynamics(testConfig(t), eco.NewBus())

	a := testSpecies("grazer_a", 100, 800)
	b := testSpecies("grazer_b", 400, 800)

	if s := d.CompetitionStrength(a, b); math.Abs(s-1) > 1e-9 {
		t.Fatalf("strength for identical species = %v, want 1", s)
	}

	d.ApplyCompetition(a, b, 1.0)
	if a.GrowthRate >= 0 || b.GrowthRate >= 0 {
		t.Error("competition must suppress both growth rates")
	}
	// The smaller population feels more pressure from the larger one.
	if !(a.GrowthRate < b.GrowthRate) {
		t.Errorf("pressure asymmetry: a=%v b=%v, want a more suppressed", a.GrowthRate, b.GrowthRate)
	}
	if a.Stress != b.Stress {
		t.Error("stress gain is symmetric")
	}
}

func TestIntrinsicGrowthHeadroom(t *testing.T) {
	d := NewDynamics(testConfig(t), eco.NewBus())
	b := testBiome(1)

	sparse := testSpecies("grazer", 10, 800)
	crowded := testSpecies("grazer", b.CarryingCapacity, 1e9)

	d.IntrinsicGrowth(sparse, b)
	d.IntrinsicGrowth(crowded, b)
	if sparse.GrowthRate <= crowded.GrowthRate {
		t.Errorf("sparse rate %v must exceed crowded rate %v", sparse.GrowthRate, crowded.GrowthRate)
	}
	if sparse.GrowthRate > sparse.IntrinsicGrowthRate {
		t.Errorf("rate %v must not exceed intrinsic %v", sparse.GrowthRate, sparse.IntrinsicGrowthRate)
	}
}

func TestIntrinsicGrowthMissingResourceIsScarcity(t *testing.T) {
	d := NewDynamics(testConfig(t), eco.NewBus())
	b := testBiome(1)

	sp := testSpecies("grazer", 10, 800)
	sp.Requirements["ether"] = 1.0

	d.IntrinsicGrowth(sp, b)
	// Missing pool contributes zero coverage, so the resource factor
	// bottoms out at its 0.1 floor rather than erroring.
	if sp.GrowthRate <= 0 {
		t.Errorf("growth rate = %v, want > 0 via factor floor", sp.GrowthRate)
	}
	full := testSpecies("grazer", 10, 800)
	d.IntrinsicGrowth(full, b)
	if sp.GrowthRate >= full.GrowthRate {
		t.Error("missing resource must suppress growth relative to full coverage")
	}
}

func TestIntegrateClamps(t *testing.T) {
	d := NewDynamics(testConfig(t), eco.NewBus())

	tests := []struct {
		name string
		pop  float64
		rate float64
		want float64
	}{
		{"ceiling", 790, 10.0, 800},
		{"floor", 50, -100.0, 0},
	}
	for _, tt := range tests {
		sp := testSpecies("grazer", tt.pop, 800)
		sp.GrowthRate = tt.rate
		d.Integrate(sp, 1.0)
		if sp.Population != tt.want {
			t.Errorf("%s: population = %v, want %v", tt.name, sp.Population, tt.want)
		}
	}
}

func TestEnvironmentalStressSuppressesAndDecays(t *testing.T) {
	cfg := testConfig(t)
	d := NewDynamics(cfg, eco.NewBus())

	sp := testSpecies("grazer", 100, 800)
	sp.GrowthRate = 0.1
	sp.Stress = 0.8

	d.ApplyEnvironmentalStress(sp, 1.0)
	if sp.GrowthRate >= 0.1 {
		t.Errorf("growth rate = %v, want suppressed under high stress", sp.GrowthRate)
	}
	if want := 0.8 - cfg.Species.StressDecay; math.Abs(sp.Stress-want) > 1e-12 {
		t.Errorf("stress = %v, want %v after decay", sp.Stress, want)
	}

	calm := testSpecies("grazer", 100, 800)
	calm.GrowthRate = 0.1
	calm.Stress = 0.3
	d.ApplyEnvironmentalStress(calm, 1.0)
	if calm.GrowthRate != 0.1 {
		t.Error("low stress must not suppress growth")
	}
}

func TestExtinctionRemoval(t *testing.T) {
	bus := eco.NewBus()
	d := NewDynamics(testConfig(t), bus)
	d.SetPreventionPolicy(nil)

	var extinct, prevented int
	bus.Subscribe(func(e eco.Event) {
		switch e.Kind {
		case eco.EventSpeciesExtinct:
			extinct++
		case eco.EventExtinctionPrevented:
			prevented++
		}
	})

	b := testBiome(1)
	// Threshold is 1% of max: 8 units. Half that must go extinct.
	sp := testSpecies("grazer", 4, 800)
	b.Species = append(b.Species, sp)

	if !d.CheckExtinction(sp, b, 1.0) {
		t.Fatal("species below threshold must be removed without prevention")
	}
	if b.FindSpecies("grazer") != nil {
		t.Error("removed species must vanish from the biome")
	}
	bus.Drain()
	if extinct != 1 || prevented != 0 {
		t.Errorf("events = %d extinct, %d prevented, want 1, 0", extinct, prevented)
	}
}

func TestExtinctionPrevention(t *testing.T) {
	bus := eco.NewBus()
	d := NewDynamics(testConfig(t), bus)

	var prevented int
	bus.Subscribe(func(e eco.Event) {
		if e.Kind == eco.EventExtinctionPrevented {
			prevented++
		}
	})

	b := testBiome(1)
	sp := testSpecies("grazer", 4, 800)
	b.Species = append(b.Species, sp)

	// Default policy rescues populations under the configured floor.
	if d.CheckExtinction(sp, b, 1.0) {
		t.Fatal("default policy must rescue a small population")
	}
	if want := 2 * 0.01 * 800; sp.Population != want {
		t.Errorf("rescued population = %v, want %v", sp.Population, want)
	}
	bus.Drain()
	if prevented != 1 {
		t.Errorf("prevented events = %d, want 1", prevented)
	}
}

func TestExtinctionAboveThresholdUntouched(t *testing.T) {
	d := NewDynamics(testConfig(t), eco.NewBus())
	b := testBiome(1)
	sp := testSpecies("grazer", 100, 800)
	b.Species = append(b.Species, sp)

	if d.CheckExtinction(sp, b, 1.0) {
		t.Error("healthy population must not be removed")
	}
	if sp.Population != 100 {
		t.Errorf("population = %v, want unchanged 100", sp.Population)
	}
}

func TestUpdateBiomeKeepsPopulationsBounded(t *testing.T) {
	d := NewDynamics(testConfig(t), eco.NewBus())
	b := testBiome(1)

	grass := testSpecies("grass", 1000, 5000)
	grass.Trophic = eco.Producer
	grass.Niche.Feeding = eco.FeedPhotosynthesis
	grazer := testSpecies("grazer", 300, 800)
	stalker := testSpecies("stalker", 40, 150)
	stalker.Trophic = eco.SecondaryConsumer
	stalker.Niche.Feeding = eco.FeedCarnivory
	b.Species = append(b.Species, grass, grazer, stalker)
	b.Relations = []eco.Relationship{
		{A: "stalker", B: "grazer", Type: eco.Predation, Strength: 0.5},
	}

	for i := 0; i < 200; i++ {
		d.UpdateBiome(b, 0.1, float64(i)*0.1)
	}
	for _, sp := range b.Species {
		if sp.Population < 0 || sp.Population > sp.MaxPopulation {
			t.Errorf("%s population = %v, out of [0, %v]", sp.Name, sp.Population, sp.MaxPopulation)
		}
		if sp.Stress < 0 || sp.Stress > 1 {
			t.Errorf("%s stress = %v, out of [0,1]", sp.Name, sp.Stress)
		}
	}
}

func TestUpdateBiomeStaleRelationIsNeutral(t *testing.T) {
	d := NewDynamics(testConfig(t), eco.NewBus())
	b := testBiome(1)
	b.Species = append(b.Species, testSpecies("grazer", 100, 800))
	b.Relations = []eco.Relationship{
		{A: "ghost", B: "grazer", Type: eco.Predation, Strength: 1.0},
	}

	d.UpdateBiome(b, 0.1, 0)
	if b.FindSpecies("grazer") == nil {
		t.Error("stale relation must not harm the surviving species")
	}
}
