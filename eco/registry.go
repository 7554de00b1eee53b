package eco

import "math"

// BiomeHandle is a stable identifier for a biome. The zero handle is
// invalid and doubles as the "at capacity" refusal from Create.
type BiomeHandle uint32

// Valid reports whether the handle refers to a biome that was created.
func (h BiomeHandle) Valid() bool { return h != 0 }

// Registry owns all biome records. Biomes live in contiguous storage;
// the handle index maps stable handles to slice positions so records can
// be compacted on removal without invalidating handles.
type Registry struct {
	biomes []*Biome
	index  map[BiomeHandle]int
	next   BiomeHandle
	max    int
}

// NewRegistry creates a registry capped at maxBiomes active biomes.
func NewRegistry(maxBiomes int) *Registry {
	if maxBiomes < 1 {
		maxBiomes = 1
	}
	return &Registry{
		biomes: make([]*Biome, 0, maxBiomes),
		index:  make(map[BiomeHandle]int, maxBiomes),
		next:   1,
		max:    maxBiomes,
	}
}

// Create adds a biome of the given type and returns its handle. Returns
// the zero handle when the registry is at capacity; callers must check.
func (r *Registry) Create(t BiomeType, loc Location, area, flexibility float64) BiomeHandle {
	if len(r.biomes) >= r.max {
		return 0
	}
	if area <= 0 {
		area = 1
	}
	h := r.next
	r.next++
	b := &Biome{
		Handle:            h,
		Type:              t,
		Location:          loc,
		Area:              area,
		Resources:         make(map[string]*Resource),
		CarryingCapacity:  CarryingCapacityFor(t, area, flexibility),
		Stability:         0.8,
		Biodiversity:      0,
		Stage:             StagePioneer,
		SeasonalAmplitude: seasonalAmplitude[t],
	}
	r.index[h] = len(r.biomes)
	r.biomes = append(r.biomes, b)
	return h
}

// Get returns the biome for a handle, or nil if unknown. Unknown handles
// are a valid transient state, never an error.
func (r *Registry) Get(h BiomeHandle) *Biome {
	i, ok := r.index[h]
	if !ok {
		return nil
	}
	return r.biomes[i]
}

// Remove deletes a biome. The last record is swapped into the vacated
// slot to keep storage contiguous. Unknown handles are ignored.
func (r *Registry) Remove(h BiomeHandle) {
	i, ok := r.index[h]
	if !ok {
		return
	}
	last := len(r.biomes) - 1
	if i != last {
		r.biomes[i] = r.biomes[last]
		r.index[r.biomes[i].Handle] = i
	}
	r.biomes[last] = nil
	r.biomes = r.biomes[:last]
	delete(r.index, h)
}

// All returns the live biome slice in storage order. Callers must not
// retain it across Create/Remove.
func (r *Registry) All() []*Biome {
	return r.biomes
}

// Count returns the number of active biomes.
func (r *Registry) Count() int { return len(r.biomes) }

// Max returns the configured biome capacity.
func (r *Registry) Max() int { return r.max }

// Nearest returns the biome whose location is closest to the given
// point, or nil when the registry is empty.
func (r *Registry) Nearest(loc Location) *Biome {
	var best *Biome
	bestD := math.MaxFloat64
	for _, b := range r.biomes {
		dx := b.Location.X - loc.X
		dy := b.Location.Y - loc.Y
		d := dx*dx + dy*dy
		if d < bestD {
			bestD = d
			best = b
		}
	}
	return best
}

// NearestOther returns the closest biome that is not the given one.
func (r *Registry) NearestOther(b *Biome) *Biome {
	var best *Biome
	bestD := math.MaxFloat64
	for _, other := range r.biomes {
		if other == b {
			continue
		}
		dx := other.Location.X - b.Location.X
		dy := other.Location.Y - b.Location.Y
		d := dx*dx + dy*dy
		if d < bestD {
			bestD = d
			best = other
		}
	}
	return best
}

// seasonalAmplitude scales the seasonal temperature swing per type.
// Oceanic and tropical biomes are buffered; continental types swing hard.
var seasonalAmplitude = [NumBiomeTypes]float64{
	Grassland: 1.0,
	Forest:    0.8,
	Desert:    1.3,
	Tundra:    1.5,
	Swamp:     0.7,
	Tropical:  0.3,
	Mountain:  1.2,
	Ocean:     0.2,
	Temperate: 0.9,
}
