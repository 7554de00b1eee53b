// Package eco holds the core data model for the ecosystem simulation:
// biomes, species, climate state, and the event bus connecting them to
// observers. Records are plain structs owned by the Registry; all mutation
// happens synchronously inside a scheduler tick.
package eco

// BiomeType categorizes a biome. The type drives carrying capacity,
// baseline climate, and resource seeding.
type BiomeType uint8

const (
	Grassland BiomeType = iota
	Forest
	Desert
	Tundra
	Swamp
	Tropical
	Mountain
	Ocean
	Temperate
	NumBiomeTypes
)

// String returns the biome type name.
func (t BiomeType) String() string {
	switch t {
	case Grassland:
		return "grassland"
	case Forest:
		return "forest"
	case Desert:
		return "desert"
	case Tundra:
		return "tundra"
	case Swamp:
		return "swamp"
	case Tropical:
		return "tropical"
	case Mountain:
		return "mountain"
	case Ocean:
		return "ocean"
	case Temperate:
		return "temperate"
	}
	return "unknown"
}

// BiomeTypeByName maps a config-file name to a BiomeType.
func BiomeTypeByName(name string) (BiomeType, bool) {
	for t := Grassland; t < NumBiomeTypes; t++ {
		if t.String() == name {
			return t, true
		}
	}
	return 0, false
}

// SuccessionStage is the ordered ecological maturity of a biome.
// Stages only advance forward; Climax is terminal.
type SuccessionStage uint8

const (
	StagePioneer SuccessionStage = iota
	StageEarly
	StageMid
	StageLate
	StageClimax
)

// String returns the stage name.
func (s SuccessionStage) String() string {
	switch s {
	case StagePioneer:
		return "pioneer"
	case StageEarly:
		return "early"
	case StageMid:
		return "mid"
	case StageLate:
		return "late"
	case StageClimax:
		return "climax"
	}
	return "unknown"
}

// Location is a position in world coordinates.
type Location struct {
	X, Y float64
}

// Resource is a named pool inside a biome. Current stays in [0, Max]
// at every mutation site.
type Resource struct {
	Current   float64
	Max       float64
	RegenRate float64 // units per second toward Max, before modifiers
	Renewable bool
}

// CatastropheType identifies a disturbance kind.
type CatastropheType uint8

const (
	CatastropheDrought CatastropheType = iota
	CatastropheFlood
	CatastropheBlight
	CatastropheClimateShift
	NumCatastropheTypes
)

// String returns the catastrophe name.
func (c CatastropheType) String() string {
	switch c {
	case CatastropheDrought:
		return "drought"
	case CatastropheFlood:
		return "flood"
	case CatastropheBlight:
		return "blight"
	case CatastropheClimateShift:
		return "climate_shift"
	}
	return "unknown"
}

// DisturbanceEvent is one entry in a biome's disturbance history.
// Its contribution to stability stress decays exponentially with age.
type DisturbanceEvent struct {
	Type     CatastropheType
	Severity float64 // 0..1
	Time     float64 // simulation seconds at impact
	Duration float64 // recovery time in seconds
}

// ClimateCondition is the local climate a biome experiences.
type ClimateCondition struct {
	Temperature   float64 // degrees C
	Precipitation float64 // mm per cycle
	Humidity      float64 // 0..1
}

// ClimateSystem is the single global climate state. Only the climate
// model mutates it.
type ClimateSystem struct {
	Temperature       float64
	Precipitation     float64
	AtmosphericCO2    float64
	SeasonalVariation float64 // 0..1 scale on seasonal swing
	Stability         float64 // 0..1, reduced by accumulated drift
}

// Biome is a spatial ecological unit: climate, resource pools, and the
// species resident in it. Owned exclusively by the Registry.
type Biome struct {
	Handle BiomeHandle
	Type   BiomeType

	Location Location
	Area     float64

	Climate   ClimateCondition
	Resources map[string]*Resource
	Species   []*Species
	Relations []Relationship

	CarryingCapacity float64
	Biodiversity     float64 // 0..1
	Stability        float64 // 0..1

	Stage     SuccessionStage
	StageTime float64 // seconds spent in current stage

	Disturbances []DisturbanceEvent

	// SeasonalAmplitude scales the global seasonal temperature swing
	// for this biome's type.
	SeasonalAmplitude float64

	// CreatureBiomass is the tracked-creature mass folded in during the
	// last full pass; it adds grazing pressure on the resource pools.
	CreatureBiomass float64

	// LastUpdate is the simulation time of the last full recompute of
	// this biome. Incremental chunk updates integrate over the elapsed
	// interval so chunked and full scheduling advance at the same rate.
	LastUpdate float64

	// UpdateCount counts full recomputes, used by scheduling coverage
	// checks and telemetry.
	UpdateCount int
}

// FindSpecies returns the resident species with the given name, or nil.
func (b *Biome) FindSpecies(name string) *Species {
	for _, sp := range b.Species {
		if sp.Name == name {
			return sp
		}
	}
	return nil
}

// RemoveSpecies deletes the named species from the biome. Relationship
// edges touching it are dropped as well.
func (b *Biome) RemoveSpecies(name string) {
	for i, sp := range b.Species {
		if sp.Name == name {
			b.Species = append(b.Species[:i], b.Species[i+1:]...)
			break
		}
	}
	kept := b.Relations[:0]
	for _, rel := range b.Relations {
		if rel.A != name && rel.B != name {
			kept = append(kept, rel)
		}
	}
	b.Relations = kept
}

// TotalPopulation sums the population of all resident species.
func (b *Biome) TotalPopulation() float64 {
	var total float64
	for _, sp := range b.Species {
		total += sp.Population
	}
	return total
}

// baseCapacity is the per-area carrying capacity for each biome type.
var baseCapacity = [NumBiomeTypes]float64{
	Grassland: 120,
	Forest:    150,
	Desert:    30,
	Tundra:    40,
	Swamp:     90,
	Tropical:  200,
	Mountain:  50,
	Ocean:     110,
	Temperate: 130,
}

// BaseCapacity returns the per-area carrying capacity constant for a
// biome type.
func BaseCapacity(t BiomeType) float64 {
	if t >= NumBiomeTypes {
		return baseCapacity[Grassland]
	}
	return baseCapacity[t]
}

// CarryingCapacityFor derives a biome's carrying capacity from its type,
// area, and the configured flexibility constant. Always > 0 for a live
// biome (area is validated at creation).
func CarryingCapacityFor(t BiomeType, area, flexibility float64) float64 {
	if area <= 0 {
		area = 1
	}
	return BaseCapacity(t) * area * flexibility
}
