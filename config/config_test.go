package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("loading embedded defaults: %v", err)
	}

	if cfg.World.MaxBiomes <= 0 {
		t.Error("max biomes must be positive")
	}
	if cfg.Scheduler.DT <= 0 {
		t.Error("dt must be positive")
	}
	if cfg.Species.ExtinctionThreshold <= 0 || cfg.Species.ExtinctionThreshold >= 1 {
		t.Errorf("extinction threshold = %v, want a small fraction", cfg.Species.ExtinctionThreshold)
	}
	if len(cfg.Archetypes) == 0 {
		t.Fatal("defaults must ship species archetypes")
	}
	for _, arch := range cfg.Archetypes {
		if arch.MaxPopulation <= 0 {
			t.Errorf("archetype %s max population = %v, want > 0", arch.Name, arch.MaxPopulation)
		}
		if len(arch.Biomes) == 0 {
			t.Errorf("archetype %s has no home biomes", arch.Name)
		}
	}
}

func TestDerivedValues(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}

	want := int(cfg.Scheduler.FullUpdateInterval / cfg.Scheduler.DT)
	if cfg.Derived.TicksPerFull != want {
		t.Errorf("ticks per full = %d, want %d", cfg.Derived.TicksPerFull, want)
	}
	for i, arch := range cfg.Archetypes {
		if got := cfg.Derived.ArchetypeIndex[arch.Name]; got != i {
			t.Errorf("archetype index[%s] = %d, want %d", arch.Name, got, i)
		}
	}
}

func TestLoadOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "override.yaml")
	data := []byte("scheduler:\n  dt: 0.5\n  full_update_interval: 10.0\nworld:\n  max_biomes: 7\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("loading override: %v", err)
	}
	if cfg.Scheduler.DT != 0.5 {
		t.Errorf("dt = %v, want overridden 0.5", cfg.Scheduler.DT)
	}
	if cfg.World.MaxBiomes != 7 {
		t.Errorf("max biomes = %d, want overridden 7", cfg.World.MaxBiomes)
	}
	if cfg.Derived.TicksPerFull != 20 {
		t.Errorf("ticks per full = %d, want recomputed 20", cfg.Derived.TicksPerFull)
	}
	// Untouched sections keep their defaults.
	if cfg.Climate.BaseTemperature == 0 {
		t.Error("defaults must survive a partial override")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/does/not/exist.yaml"); err == nil {
		t.Error("missing config file must error")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("writing: %v", err)
	}

	back, err := Load(path)
	if err != nil {
		t.Fatalf("reloading: %v", err)
	}
	if back.Scheduler.DT != cfg.Scheduler.DT || back.World.MaxBiomes != cfg.World.MaxBiomes {
		t.Error("round trip must preserve values")
	}
	if len(back.Archetypes) != len(cfg.Archetypes) {
		t.Errorf("archetypes = %d, want %d", len(back.Archetypes), len(cfg.Archetypes))
	}
}
