// Package config provides configuration loading and access for the
// ecosystem simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation parameters.
type Config struct {
	World       WorldConfig        `yaml:"world"`
	Climate     ClimateConfig      `yaml:"climate"`
	Resources   ResourcesConfig    `yaml:"resources"`
	Species     SpeciesConfig      `yaml:"species"`
	Biomes      BiomesConfig       `yaml:"biomes"`
	Disturbance DisturbanceConfig  `yaml:"disturbance"`
	Scheduler   SchedulerConfig    `yaml:"scheduler"`
	Creatures   CreaturesConfig    `yaml:"creatures"`
	Telemetry   TelemetryConfig    `yaml:"telemetry"`
	Archetypes  []SpeciesArchetype `yaml:"archetypes"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// WorldConfig holds world dimensions and biome capacity.
type WorldConfig struct {
	Width         float64 `yaml:"width"`
	Height        float64 `yaml:"height"`
	MaxBiomes     int     `yaml:"max_biomes"`
	InitialBiomes int     `yaml:"initial_biomes"`
	Flexibility   float64 `yaml:"flexibility"` // carrying capacity = base * area * this
}

// ClimateConfig holds global climate drift and seasonal parameters.
type ClimateConfig struct {
	BaseTemperature   float64 `yaml:"base_temperature"`
	BasePrecipitation float64 `yaml:"base_precipitation"`
	BaseCO2           float64 `yaml:"base_co2"`
	Variance          float64 `yaml:"variance"`        // random walk step scale per second
	ShiftThreshold    float64 `yaml:"shift_threshold"` // cumulative drift triggering a shift event
	SeasonPeriod      float64 `yaml:"season_period"`   // seconds per full seasonal cycle
	SeasonalVariation float64 `yaml:"seasonal_variation"`
	NoiseScale        float64 `yaml:"noise_scale"`     // spatial noise frequency over world units
	NoiseAmplitude    float64 `yaml:"noise_amplitude"` // degrees of local temperature variation
}

// ResourcesConfig holds consumption and regeneration parameters.
type ResourcesConfig struct {
	BaseConsumption  float64 `yaml:"base_consumption"`   // draw per unit population per second
	ReferencePrecip  float64 `yaml:"reference_precip"`   // precipitation at which regen modifier = 1
	LowWaterFraction float64 `yaml:"low_water_fraction"` // pool fraction below which a resource_low event fires
	BiomassDraw      float64 `yaml:"biomass_draw"`       // creature biomass grazing rate per second
}

// SpeciesConfig holds interaction and extinction parameters.
type SpeciesConfig struct {
	CompetitionIntensity float64 `yaml:"competition_intensity"`
	SymbiosisRate        float64 `yaml:"symbiosis_rate"`
	PredatorPreyBalance  float64 `yaml:"predator_prey_balance"`
	ExtinctionThreshold  float64 `yaml:"extinction_threshold"` // fraction of max population
	PreventionFloor      float64 `yaml:"prevention_floor"`     // absolute units; default rescue policy
	StressDecay          float64 `yaml:"stress_decay"`         // stress units per second
	MigrationFraction    float64 `yaml:"migration_fraction"`   // population share moved per full pass
	MigrationStress      float64 `yaml:"migration_stress"`     // stress level that triggers migration
}

// BiomesConfig holds succession and type-transition parameters.
type BiomesConfig struct {
	SuccessionMinStageTime float64 `yaml:"succession_min_stage_time"`
	SuccessionMinStability float64 `yaml:"succession_min_stability"`
	TransitionRate         float64 `yaml:"transition_rate"`
	RecoveryRate           float64 `yaml:"recovery_rate"` // stability regained per second when calm
}

// DisturbanceConfig holds catastrophe generation parameters.
type DisturbanceConfig struct {
	Frequency   float64 `yaml:"frequency"`    // expected events per second
	MaxAffected int     `yaml:"max_affected"` // biomes hit per catastrophe
	DecayRate   float64 `yaml:"decay_rate"`   // exponential decay of disturbance impact per second
}

// SchedulerConfig holds tick and chunking parameters.
type SchedulerConfig struct {
	DT                 float64 `yaml:"dt"`
	FullUpdateInterval float64 `yaml:"full_update_interval"`
	UpdateChunks       int     `yaml:"update_chunks"`
}

// CreaturesConfig holds creature-tracking parameters.
type CreaturesConfig struct {
	GridCellSize  float64 `yaml:"grid_cell_size"`
	DensityRadius float64 `yaml:"density_radius"` // radius for local density queries
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow          float64 `yaml:"stats_window"`
	ExtinctionRateWindow float64 `yaml:"extinction_rate_window"`
}

// SpeciesArchetype is a founder template instantiated into biomes whose
// type appears in Biomes. Requirements map resource names to per-capita
// draw rates.
type SpeciesArchetype struct {
	Name            string             `yaml:"name"`
	Trophic         string             `yaml:"trophic"` // producer, primary, secondary, tertiary
	IntrinsicGrowth float64            `yaml:"intrinsic_growth"`
	MaxPopulation   float64            `yaml:"max_population"`
	OptimalTemp     float64            `yaml:"optimal_temp"`
	OptimalHumidity float64            `yaml:"optimal_humidity"`
	TempRange       float64            `yaml:"temp_range"`
	HumidityRange   float64            `yaml:"humidity_range"`
	Habitat         float64            `yaml:"habitat"`  // niche specialization axis 0..1
	Feeding         string             `yaml:"feeding"`  // photosynthesis, herbivory, carnivory, omnivory, detritivory
	Activity        string             `yaml:"activity"` // diurnal, nocturnal, crepuscular
	Migratory       bool               `yaml:"migratory"`
	Requirements    map[string]float64 `yaml:"requirements"`
	Biomes          []string           `yaml:"biomes"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	TicksPerFull   int // full_update_interval / dt
	ArchetypeIndex map[string]int
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded
// defaults if path is empty. Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded
// defaults. If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()

	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	if c.Scheduler.DT <= 0 {
		c.Scheduler.DT = 0.1
	}
	if c.Scheduler.UpdateChunks < 1 {
		c.Scheduler.UpdateChunks = 1
	}
	c.Derived.TicksPerFull = int(c.Scheduler.FullUpdateInterval / c.Scheduler.DT)
	if c.Derived.TicksPerFull < 1 {
		c.Derived.TicksPerFull = 1
	}

	c.Derived.ArchetypeIndex = make(map[string]int, len(c.Archetypes))
	for i, arch := range c.Archetypes {
		c.Derived.ArchetypeIndex[arch.Name] = i
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
