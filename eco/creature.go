package eco

// Position is a creature's world position, stored as an ECS component.
type Position struct {
	X, Y float64
}

// Traits is the opaque trait snapshot supplied by the external genetics
// system at registration. The simulation consumes these only as floats
// for biomass bookkeeping; their semantics belong to the caller.
type Traits struct {
	Size       float64
	Metabolism float64
}

// Biomass is the grazing-pressure contribution of one creature.
func (t Traits) Biomass() float64 {
	size := t.Size
	if size <= 0 {
		size = 1
	}
	met := t.Metabolism
	if met <= 0 {
		met = 1
	}
	return size * met
}
