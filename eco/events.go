package eco

// EventKind identifies simulation notifications.
type EventKind uint8

const (
	EventBiomeTransition EventKind = iota
	EventSpeciesExtinct
	EventExtinctionPrevented
	EventCatastrophe
	EventClimateShift
	EventResourceLow
	EventBiomeHealth
)

// String returns the event kind name.
func (k EventKind) String() string {
	switch k {
	case EventBiomeTransition:
		return "biome_transition"
	case EventSpeciesExtinct:
		return "species_extinct"
	case EventExtinctionPrevented:
		return "extinction_prevented"
	case EventCatastrophe:
		return "catastrophe"
	case EventClimateShift:
		return "climate_shift"
	case EventResourceLow:
		return "resource_low"
	case EventBiomeHealth:
		return "biome_health"
	}
	return "unknown"
}

// Event is a single simulation notification. Fields beyond Kind, Time,
// and Biome are populated per kind.
type Event struct {
	Kind  EventKind
	Time  float64 // simulation seconds
	Biome BiomeHandle

	Species  string
	Resource string

	OldType, NewType BiomeType
	Catastrophe      CatastropheType

	// Value carries the kind-specific scalar: severity for catastrophes,
	// drift rate for climate shifts, pool level for resource events,
	// health for biome health changes.
	Value float64
}

// Bus queues events during a tick and delivers them to observers once
// the mutation pass is done. Delivery order is publish order, which
// makes replays deterministic for a fixed seed.
type Bus struct {
	queue []Event
	subs  []func(Event)
}

// NewBus creates an empty event bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers an observer. Observers run synchronously during
// Drain and must not publish further events.
func (b *Bus) Subscribe(fn func(Event)) {
	b.subs = append(b.subs, fn)
}

// Publish queues an event for delivery at the end of the current tick.
func (b *Bus) Publish(e Event) {
	b.queue = append(b.queue, e)
}

// Drain delivers all queued events to every observer and clears the
// queue. Called by the scheduler exactly once per tick.
func (b *Bus) Drain() {
	if len(b.queue) == 0 {
		return
	}
	for _, e := range b.queue {
		for _, fn := range b.subs {
			fn(e)
		}
	}
	b.queue = b.queue[:0]
}

// Pending returns the number of undelivered events.
func (b *Bus) Pending() int { return len(b.queue) }
