package telemetry

import "log/slog"

// WindowStats holds event counts for one stats window plus the
// aggregate metrics sampled at window end.
type WindowStats struct {
	WindowStart float64 `csv:"-"`
	WindowEnd   float64 `csv:"window_end"`

	Extinctions          int `csv:"extinctions"`
	PreventedExtinctions int `csv:"prevented_extinctions"`
	Transitions          int `csv:"transitions"`
	Catastrophes         int `csv:"catastrophes"`
	ClimateShifts        int `csv:"climate_shifts"`
	ResourceLowEvents    int `csv:"resource_low"`
	HealthChanges        int `csv:"health_changes"`

	Metrics Metrics `csv:"-"`
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("window_start", s.WindowStart),
		slog.Float64("window_end", s.WindowEnd),
		slog.Int("extinctions", s.Extinctions),
		slog.Int("prevented_extinctions", s.PreventedExtinctions),
		slog.Int("transitions", s.Transitions),
		slog.Int("catastrophes", s.Catastrophes),
		slog.Int("climate_shifts", s.ClimateShifts),
		slog.Int("resource_low", s.ResourceLowEvents),
		slog.Int("biomes", s.Metrics.TotalBiomes),
		slog.Int("species", s.Metrics.TotalSpecies),
		slog.Float64("biodiversity", s.Metrics.AvgBiodiversity),
		slog.Float64("stability", s.Metrics.AvgStability),
		slog.Float64("sustainability", s.Metrics.Sustainability),
	)
}
