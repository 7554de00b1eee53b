package sim

import (
	"testing"

	"github.com/kkingfung/ecosim/config"
	"github.com/kkingfung/ecosim/eco"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	return cfg
}

// quietConfig disables disturbances so runs are driven purely by the
// deterministic update path.
func quietConfig(t *testing.T) *config.Config {
	cfg := testConfig(t)
	cfg.Disturbance.Frequency = 0
	return cfg
}

func TestChunkedUpdatesCoverEveryBiome(t *testing.T) {
	cfg := quietConfig(t)
	cfg.Scheduler.FullUpdateInterval = 1000 // never trigger a full pass
	cfg.Scheduler.UpdateChunks = 10

	s := New(Options{Seed: 1, Config: cfg})
	for i := 0; i < 10; i++ {
		h := s.Registry().Create(eco.Grassland, eco.Location{X: float64(i) * 90, Y: 100}, 100, 1.0)
		if !h.Valid() {
			t.Fatal("biome creation failed")
		}
	}

	// One full chunk rotation: every biome recomputed exactly once.
	for i := 0; i < 10; i++ {
		s.Step()
	}
	for _, b := range s.Registry().All() {
		if b.UpdateCount != 1 {
			t.Errorf("biome %d update count = %d, want 1 after one rotation", b.Handle, b.UpdateCount)
		}
	}

	for i := 0; i < 20; i++ {
		s.Step()
	}
	for _, b := range s.Registry().All() {
		if b.UpdateCount != 3 {
			t.Errorf("biome %d update count = %d, want 3 after three rotations", b.Handle, b.UpdateCount)
		}
	}
}

func TestFullPassUpdatesEveryBiome(t *testing.T) {
	cfg := quietConfig(t)
	cfg.Scheduler.FullUpdateInterval = cfg.Scheduler.DT // full pass every tick

	s := New(Options{Seed: 1, Config: cfg})
	for i := 0; i < 5; i++ {
		s.Registry().Create(eco.Grassland, eco.Location{X: float64(i) * 90, Y: 100}, 100, 1.0)
	}

	for i := 0; i < 7; i++ {
		s.Step()
	}
	for _, b := range s.Registry().All() {
		if b.UpdateCount != 7 {
			t.Errorf("biome %d update count = %d, want 7", b.Handle, b.UpdateCount)
		}
	}
}

// seedOneProducer builds a single-biome, single-producer world so growth
// direction is unambiguous.
func seedOneProducer(t *testing.T, s *Scheduler) *eco.Species {
	t.Helper()
	h := s.Registry().Create(eco.Grassland, eco.Location{X: 500, Y: 500}, 100, 1.0)
	b := s.Registry().Get(h)
	b.Resources = s.Ledger().InitializeBiomeResources(b.Type)

	cfg := s.cfg
	idx, ok := cfg.Derived.ArchetypeIndex["meadow_grass"]
	if !ok {
		t.Fatal("meadow_grass archetype missing from defaults")
	}
	sp := SpeciesFromArchetype(&cfg.Archetypes[idx])
	b.Species = append(b.Species, sp)
	return sp
}

func TestIncrementalMatchesFullGrowthDirection(t *testing.T) {
	runTicks := 600 // 60 simulated seconds

	run := func(fullInterval float64) float64 {
		cfg := quietConfig(t)
		cfg.Scheduler.FullUpdateInterval = fullInterval
		s := New(Options{Seed: 7, Config: cfg})
		sp := seedOneProducer(t, s)
		start := sp.Population
		for i := 0; i < runTicks; i++ {
			s.Step()
		}
		return sp.Population - start
	}

	fullDelta := run(0.1) // recompute every tick
	incDelta := run(5.0)  // default staleness-bounded chunking

	if fullDelta <= 0 {
		t.Fatalf("full-pass growth = %v, want positive for an uncrowded producer", fullDelta)
	}
	if incDelta <= 0 {
		t.Errorf("incremental growth = %v, want same direction as full pass", incDelta)
	}
}

func TestStepDrainsEvents(t *testing.T) {
	cfg := quietConfig(t)
	s := New(Options{Seed: 3, Config: cfg})
	s.SeedWorld()

	for i := 0; i < 100; i++ {
		s.Step()
		if n := s.Bus().Pending(); n != 0 {
			t.Fatalf("pending events after step %d = %d, want 0", i+1, n)
		}
	}
}

func TestLongRunInvariants(t *testing.T) {
	s := New(Options{Seed: 42, Config: testConfig(t)})
	s.SeedWorld()

	for i := 0; i < 2000; i++ {
		s.Step()
	}

	if s.Tick() != 2000 {
		t.Fatalf("tick = %d, want 2000", s.Tick())
	}
	for _, b := range s.Registry().All() {
		if b.Stability < 0 || b.Stability > 1 {
			t.Errorf("biome %d stability = %v, out of [0,1]", b.Handle, b.Stability)
		}
		if b.Biodiversity < 0 || b.Biodiversity > 1 {
			t.Errorf("biome %d biodiversity = %v, out of [0,1]", b.Handle, b.Biodiversity)
		}
		for name, pool := range b.Resources {
			if pool.Current < 0 || pool.Current > pool.Max {
				t.Errorf("biome %d %s = %v, out of [0, %v]", b.Handle, name, pool.Current, pool.Max)
			}
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
}

func TestMigrationConservesPopulation(t *testing.T) {
	cfg := quietConfig(t)
	s := New(Options{Seed: 1, Config: cfg})

	src := s.Registry().Get(s.Registry().Create(eco.Grassland, eco.Location{X: 100, Y: 100}, 100, 1.0))
	dst := s.Registry().Get(s.Registry().Create(eco.Grassland, eco.Location{X: 300, Y: 100}, 100, 1.0))
	src.Stability = 0.2
	dst.Stability = 0.9

	mover := &eco.Species{
		Name:          "grazer_herd",
		Population:    100,
		MaxPopulation: 800,
		CanMigrate:    true,
		Stress:        0.9,
		Requirements:  map[string]float64{"water": 0.8},
	}
	src.Species = append(src.Species, mover)

	s.migrate()

	moved := 100 * cfg.Species.MigrationFraction
	if mover.Population != 100-moved {
		t.Errorf("source population = %v, want %v", mover.Population, 100-moved)
	}
	arrived := dst.FindSpecies("grazer_herd")
	if arrived == nil {
		t.Fatal("migrants must seed the target biome")
	}
	if arrived.Population != moved {
		t.Errorf("target population = %v, want %v", arrived.Population, moved)
	}
	if got := mover.Population + arrived.Population; got != 100 {
		t.Errorf("total population = %v, want conserved 100", got)
	}
}

func TestMigrationRequiresStressAndBetterTarget(t *testing.T) {
	cfg := quietConfig(t)
	s := New(Options{Seed: 1, Config: cfg})

	src := s.Registry().Get(s.Registry().Create(eco.Grassland, eco.Location{X: 100, Y: 100}, 100, 1.0))
	dst := s.Registry().Get(s.Registry().Create(eco.Grassland, eco.Location{X: 300, Y: 100}, 100, 1.0))
	src.Stability = 0.9
	dst.Stability = 0.2 // worse than home

	mover := &eco.Species{
		Name: "grazer_herd", Population: 100, MaxPopulation: 800,
		CanMigrate: true, Stress: 0.9,
	}
	calm := &eco.Species{
		Name: "browser_troop", Population: 50, MaxPopulation: 600,
		CanMigrate: true, Stress: 0.1,
	}
	src.Species = append(src.Species, mover, calm)

	s.migrate()

	if mover.Population != 100 || calm.Population != 50 {
		t.Error("no migration without a more stable target and high stress")
	}
	if len(dst.Species) != 0 {
		t.Error("target biome must stay empty")
	}
}
