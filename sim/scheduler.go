// Package sim wires the simulation systems into a tick-driven
// scheduler, hosts the creature registration surface, and exposes the
// read-side query API.
package sim

import (
	"math"
	"math/rand"

	"github.com/kkingfung/ecosim/config"
	"github.com/kkingfung/ecosim/eco"
	"github.com/kkingfung/ecosim/systems"
	"github.com/kkingfung/ecosim/telemetry"
)

// Options configures a new scheduler.
type Options struct {
	Seed   int64
	Config *config.Config // nil = global config
}

// Scheduler is the top-level driver. Each Step advances the global
// systems and either a full biome pass or one chunk of biomes, so a
// host loop pays a bounded cost per tick while every biome still gets a
// full recompute at least once per full-update interval.
//
// All collaborators are constructed here and injected explicitly; the
// only shared mutable state is the registry, touched synchronously
// within one tick.
type Scheduler struct {
	cfg *config.Config
	rng *rand.Rand

	reg *eco.Registry
	bus *eco.Bus

	climate     *systems.ClimateModel
	ledger      *systems.Ledger
	dynamics    *systems.Dynamics
	evolution   *systems.Evolution
	disturbance *systems.Engine
	creatures   *Tracker

	tick      int64
	simTime   float64
	sinceFull float64
	cursor    int
}

// New creates a scheduler with a seeded random source and freshly wired
// systems. The world starts empty; call SeedWorld or create biomes
// through the registry.
func New(opts Options) *Scheduler {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}
	rng := rand.New(rand.NewSource(opts.Seed))
	bus := eco.NewBus()
	reg := eco.NewRegistry(cfg.World.MaxBiomes)
	climate := systems.NewClimateModel(cfg, rng, bus, opts.Seed)

	return &Scheduler{
		cfg:         cfg,
		rng:         rng,
		reg:         reg,
		bus:         bus,
		climate:     climate,
		ledger:      systems.NewLedger(cfg, bus),
		dynamics:    systems.NewDynamics(cfg, bus),
		evolution:   systems.NewEvolution(cfg, climate, bus, rng),
		disturbance: systems.NewEngine(cfg, rng, bus),
		creatures:   NewTracker(cfg),
	}
}

// SeedWorld creates and populates the configured initial biome set.
func (s *Scheduler) SeedWorld() {
	SeedWorld(s.reg, s.cfg, s.ledger, s.climate, s.rng)
}

// Registry returns the biome registry.
func (s *Scheduler) Registry() *eco.Registry { return s.reg }

// Bus returns the event bus for observer registration.
func (s *Scheduler) Bus() *eco.Bus { return s.bus }

// Climate returns the climate model.
func (s *Scheduler) Climate() *systems.ClimateModel { return s.climate }

// Ledger returns the resource ledger.
func (s *Scheduler) Ledger() *systems.Ledger { return s.ledger }

// Dynamics returns the species interaction system.
func (s *Scheduler) Dynamics() *systems.Dynamics { return s.dynamics }

// Creatures returns the creature registration surface.
func (s *Scheduler) Creatures() *Tracker { return s.creatures }

// Tick returns the number of completed steps.
func (s *Scheduler) Tick() int64 { return s.tick }

// Time returns the accumulated simulation time in seconds.
func (s *Scheduler) Time() float64 { return s.simTime }

// Step advances the simulation by one tick. Global systems run every
// tick; biome recomputes run either as a full pass or as one chunk.
// Queued events are delivered once, after all mutation is done.
func (s *Scheduler) Step() {
	dt := s.cfg.Scheduler.DT
	s.tick++
	s.simTime += dt

	s.climate.AdvanceGlobal(dt)
	if c := s.disturbance.MaybeGenerate(s.reg, dt); c != nil {
		s.disturbance.Apply(c, s.reg, s.simTime)
	}

	s.sinceFull += dt
	if s.sinceFull >= s.cfg.Scheduler.FullUpdateInterval {
		s.fullUpdate()
		s.sinceFull = 0
		s.cursor = 0
	} else {
		s.incrementalUpdate()
	}

	s.bus.Drain()
}

// fullUpdate recomputes every biome plus the cross-biome passes that
// need a consistent view: creature biomass folding and migration.
func (s *Scheduler) fullUpdate() {
	s.creatures.RebuildGrid()
	s.creatures.FoldBiomass(s.reg)

	for _, b := range s.reg.All() {
		s.updateBiome(b)
	}
	s.migrate()
}

// incrementalUpdate recomputes exactly one chunk of biomes and advances
// the rotating cursor.
func (s *Scheduler) incrementalUpdate() {
	biomes := s.reg.All()
	chunks := s.cfg.Scheduler.UpdateChunks
	if len(biomes) > 0 {
		chunkSize := (len(biomes) + chunks - 1) / chunks
		start := s.cursor * chunkSize
		end := start + chunkSize
		if end > len(biomes) {
			end = len(biomes)
		}
		for i := start; i < end && i >= 0; i++ {
			s.updateBiome(biomes[i])
		}
	}
	s.cursor = (s.cursor + 1) % chunks
}

// updateBiome runs the heavy per-biome pass, integrating over the time
// elapsed since this biome's last recompute. The interval is capped at
// the full-update period, which is also the staleness bound.
func (s *Scheduler) updateBiome(b *eco.Biome) {
	eff := s.simTime - b.LastUpdate
	if eff <= 0 {
		eff = s.cfg.Scheduler.DT
	}
	eff = math.Min(eff, s.cfg.Scheduler.FullUpdateInterval)

	s.climate.ApplySeason(b)
	s.evolution.UpdateBiome(b, eff, s.simTime)
	s.ledger.ApplyConsumption(b, eff)
	s.ledger.Regenerate(b, eff)
	s.dynamics.UpdateBiome(b, eff, s.simTime)
	b.Biodiversity = telemetry.BiodiversityIndex(b.Species)

	b.LastUpdate = s.simTime
	b.UpdateCount++
}

// migrate shifts a fraction of stressed, mobile populations to the
// nearest other biome. Population is conserved up to the receiving
// species' maximum.
func (s *Scheduler) migrate() {
	for _, b := range s.reg.All() {
		target := s.reg.NearestOther(b)
		if target == nil {
			return // single-biome world
		}
		for _, sp := range b.Species {
			if !sp.CanMigrate || sp.Stress <= s.cfg.Species.MigrationStress || sp.Population <= 0 {
				continue
			}
			if target.Stability <= b.Stability {
				continue // nowhere better to go
			}
			moved := sp.Population * s.cfg.Species.MigrationFraction
			sp.Population -= moved
			if resident := target.FindSpecies(sp.Name); resident != nil {
				resident.Population = math.Min(resident.Population+moved, resident.MaxPopulation)
			} else {
				target.Species = append(target.Species, sp.Clone(moved))
				buildFoodWeb(target)
			}
		}
	}
}
