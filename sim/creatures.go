package sim

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/kkingfung/ecosim/config"
	"github.com/kkingfung/ecosim/eco"
	"github.com/kkingfung/ecosim/systems"
)

// Tracker is the registration surface for the external creature system.
// Each creature is an entity carrying a position and an opaque trait
// snapshot; the simulation reads them only for biomass bookkeeping and
// local density queries. Unknown ids degrade to no-ops.
type Tracker struct {
	world  *ecs.World
	mapper *ecs.Map2[eco.Position, eco.Traits]
	filter *ecs.Filter2[eco.Position, eco.Traits]
	posMap *ecs.Map1[eco.Position]

	byID map[uint64]ecs.Entity
	grid *systems.SpatialGrid

	densityRadius float64
}

// NewTracker creates a creature tracker with its own ECS world and
// spatial grid.
func NewTracker(cfg *config.Config) *Tracker {
	world := ecs.NewWorld()
	return &Tracker{
		world:  world,
		mapper: ecs.NewMap2[eco.Position, eco.Traits](world),
		filter: ecs.NewFilter2[eco.Position, eco.Traits](world),
		posMap: ecs.NewMap1[eco.Position](world),
		byID:   make(map[uint64]ecs.Entity),
		grid: systems.NewSpatialGrid(
			cfg.World.Width, cfg.World.Height, cfg.Creatures.GridCellSize),
		densityRadius: cfg.Creatures.DensityRadius,
	}
}

// Register adds a creature with its trait snapshot. Re-registering an
// existing id replaces its position and traits.
func (t *Tracker) Register(id uint64, x, y float64, traits eco.Traits) {
	if e, ok := t.byID[id]; ok && t.world.Alive(e) {
		pos := t.posMap.Get(e)
		if pos != nil {
			pos.X, pos.Y = x, y
		}
		return
	}
	pos := eco.Position{X: x, Y: y}
	e := t.mapper.NewEntity(&pos, &traits)
	t.byID[id] = e
}

// UpdatePosition moves a tracked creature. Unknown ids are ignored.
func (t *Tracker) UpdatePosition(id uint64, x, y float64) {
	e, ok := t.byID[id]
	if !ok || !t.world.Alive(e) {
		return
	}
	pos := t.posMap.Get(e)
	if pos != nil {
		pos.X, pos.Y = x, y
	}
}

// Unregister removes a creature. Unknown ids are ignored.
func (t *Tracker) Unregister(id uint64) {
	e, ok := t.byID[id]
	if !ok {
		return
	}
	delete(t.byID, id)
	if t.world.Alive(e) {
		t.mapper.Remove(e)
	}
}

// Count returns the number of tracked creatures.
func (t *Tracker) Count() int { return len(t.byID) }

// RebuildGrid refreshes the spatial index from current positions.
func (t *Tracker) RebuildGrid() {
	t.grid.Clear()
	query := t.filter.Query()
	for query.Next() {
		e := query.Entity()
		pos, _ := query.Get()
		t.grid.Insert(e, pos.X, pos.Y)
	}
}

// DensityAt returns the number of creatures within the configured
// density radius of a point. Uses the grid as of the last rebuild.
func (t *Tracker) DensityAt(x, y float64) int {
	return t.grid.CountRadius(x, y, t.densityRadius, t.posMap)
}

// FoldBiomass assigns each creature's biomass to the biome nearest its
// position, replacing the previous fold. Called once per full pass; the
// biomass acts as grazing pressure in the resource ledger.
func (t *Tracker) FoldBiomass(reg *eco.Registry) {
	for _, b := range reg.All() {
		b.CreatureBiomass = 0
	}
	query := t.filter.Query()
	for query.Next() {
		pos, traits := query.Get()
		b := reg.Nearest(eco.Location{X: pos.X, Y: pos.Y})
		if b == nil {
			continue
		}
		b.CreatureBiomass += traits.Biomass()
	}
}
