package sim

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/kkingfung/ecosim/eco"
)

// logWriter is the destination for plain-text log output.
var logWriter io.Writer

// SetLogWriter sets the log output destination.
func SetLogWriter(w io.Writer) {
	logWriter = w
}

// Logf writes a formatted log message.
func Logf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if logWriter != nil {
		fmt.Fprintln(logWriter, msg)
	} else {
		fmt.Println(msg)
	}
}

// AttachEventLogger subscribes a structured logger to the bus so
// notable events (extinctions, transitions, catastrophes, climate
// shifts) appear in the run log.
func AttachEventLogger(bus *eco.Bus, logger *slog.Logger) {
	bus.Subscribe(func(e eco.Event) {
		switch e.Kind {
		case eco.EventSpeciesExtinct:
			logger.Info("species extinct",
				"biome", uint32(e.Biome), "species", e.Species, "time", e.Time)
		case eco.EventExtinctionPrevented:
			logger.Debug("extinction prevented",
				"biome", uint32(e.Biome), "species", e.Species, "floor", e.Value)
		case eco.EventBiomeTransition:
			logger.Info("biome transition",
				"biome", uint32(e.Biome),
				"from", e.OldType.String(), "to", e.NewType.String(), "time", e.Time)
		case eco.EventCatastrophe:
			logger.Info("catastrophe",
				"type", e.Catastrophe.String(), "intensity", e.Value, "time", e.Time)
		case eco.EventClimateShift:
			logger.Info("climate shift", "rate", e.Value, "time", e.Time)
		case eco.EventBiomeHealth:
			logger.Debug("biome health changed",
				"biome", uint32(e.Biome), "stability", e.Value)
		}
	})
}

// LogWorldState dumps a one-shot summary of the current world, used in
// interactive debugging runs.
func (s *Scheduler) LogWorldState() {
	Logf("=== Tick %d (%.1fs) ===", s.tick, s.simTime)
	climate := s.climate.State()
	Logf("Climate: %.1fC, %.0fmm, CO2 %.0fppm, stability %.2f",
		climate.Temperature, climate.Precipitation,
		climate.AtmosphericCO2, climate.Stability)

	for _, b := range s.reg.All() {
		Logf("Biome %d [%s/%s]: stability %.2f, biodiversity %.2f, pop %.0f, species %d",
			b.Handle, b.Type, b.Stage, b.Stability, b.Biodiversity,
			b.TotalPopulation(), len(b.Species))
	}
	Logf("Creatures tracked: %d", s.creatures.Count())
	Logf("")
}
