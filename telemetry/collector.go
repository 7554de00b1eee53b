package telemetry

import "github.com/kkingfung/ecosim/eco"

// Collector accumulates simulation events within time windows and
// produces WindowStats. Subscribe its Observe method on the event bus.
type Collector struct {
	windowSec   float64
	windowStart float64

	extinctions          int
	preventedExtinctions int
	transitions          int
	catastrophes         int
	climateShifts        int
	resourceLow          int
	healthChanges        int
}

// NewCollector creates a collector with the given window duration in
// simulation seconds.
func NewCollector(windowSec float64) *Collector {
	if windowSec <= 0 {
		windowSec = 30
	}
	return &Collector{windowSec: windowSec}
}

// Observe counts one event into the current window.
func (c *Collector) Observe(e eco.Event) {
	switch e.Kind {
	case eco.EventSpeciesExtinct:
		c.extinctions++
	case eco.EventExtinctionPrevented:
		c.preventedExtinctions++
	case eco.EventBiomeTransition:
		c.transitions++
	case eco.EventCatastrophe:
		c.catastrophes++
	case eco.EventClimateShift:
		c.climateShifts++
	case eco.EventResourceLow:
		c.resourceLow++
	case eco.EventBiomeHealth:
		c.healthChanges++
	}
}

// ShouldFlush reports whether the current window has elapsed.
func (c *Collector) ShouldFlush(now float64) bool {
	return now-c.windowStart >= c.windowSec
}

// Flush produces a WindowStats for the closing window, embeds the
// caller's aggregate metrics, and resets the counters.
func (c *Collector) Flush(now float64, m Metrics) WindowStats {
	stats := WindowStats{
		WindowStart: c.windowStart,
		WindowEnd:   now,

		Extinctions:          c.extinctions,
		PreventedExtinctions: c.preventedExtinctions,
		Transitions:          c.transitions,
		Catastrophes:         c.catastrophes,
		ClimateShifts:        c.climateShifts,
		ResourceLowEvents:    c.resourceLow,
		HealthChanges:        c.healthChanges,

		Metrics: m,
	}

	c.windowStart = now
	c.extinctions = 0
	c.preventedExtinctions = 0
	c.transitions = 0
	c.catastrophes = 0
	c.climateShifts = 0
	c.resourceLow = 0
	c.healthChanges = 0

	return stats
}
