package eco

// TrophicLevel is a species' position in the food chain. It selects the
// consumption efficiency applied to resource draw.
type TrophicLevel uint8

const (
	Producer TrophicLevel = iota
	PrimaryConsumer
	SecondaryConsumer
	TertiaryConsumer
)

// String returns the trophic level name.
func (l TrophicLevel) String() string {
	switch l {
	case Producer:
		return "producer"
	case PrimaryConsumer:
		return "primary"
	case SecondaryConsumer:
		return "secondary"
	case TertiaryConsumer:
		return "tertiary"
	}
	return "unknown"
}

// FeedingStrategy is the niche feeding axis.
type FeedingStrategy uint8

const (
	FeedPhotosynthesis FeedingStrategy = iota
	FeedHerbivory
	FeedCarnivory
	FeedOmnivory
	FeedDetritivory
)

// ActivityPattern is the niche activity axis.
type ActivityPattern uint8

const (
	ActivityDiurnal ActivityPattern = iota
	ActivityNocturnal
	ActivityCrepuscular
)

// Niche describes how a species occupies its habitat. Overlap between
// niches drives competition strength.
type Niche struct {
	// HabitatSpecialization is 0 (generalist) to 1 (specialist); the
	// axis value itself encodes the preferred microhabitat.
	HabitatSpecialization float64
	Feeding               FeedingStrategy
	Activity              ActivityPattern
}

// Species is one population record resident in a biome. Population is
// clamped to >= 0 at every mutation site.
type Species struct {
	Name string

	Population          float64
	GrowthRate          float64 // current per-second rate, recomputed each pass
	IntrinsicGrowthRate float64

	Trophic TrophicLevel
	Niche   Niche

	// Requirements maps resource name to the amount drawn per unit of
	// population per second, before trophic efficiency scaling.
	Requirements map[string]float64

	OptimalTemperature float64
	OptimalHumidity    float64
	TemperatureRange   float64 // tolerated deviation before suitability bottoms out
	HumidityRange      float64

	Stress float64 // environmental stress 0..1

	MaxPopulation  float64
	CanMigrate     bool
	HuntingSuccess float64 // 0..1, predators only
}

// Clone returns a copy of the species descriptor with the given
// population, used when a migrating population seeds a new biome.
func (s *Species) Clone(population float64) *Species {
	cp := *s
	cp.Population = population
	cp.Requirements = make(map[string]float64, len(s.Requirements))
	for name, amt := range s.Requirements {
		cp.Requirements[name] = amt
	}
	return &cp
}

// RelationshipType classifies a food-web edge.
type RelationshipType uint8

const (
	Predation RelationshipType = iota
	Mutualism
	Competition
)

// String returns the relationship name.
func (r RelationshipType) String() string {
	switch r {
	case Predation:
		return "predation"
	case Mutualism:
		return "mutualism"
	case Competition:
		return "competition"
	}
	return "unknown"
}

// Relationship is a food-web edge between two resident species.
// Predation is directed (A preys on B); mutualism and competition act
// symmetrically.
type Relationship struct {
	A, B     string
	Type     RelationshipType
	Strength float64 // 0..1
}
