// Package components defines the ECS components for the simulation.
// The entity model is a closed set of three kinds: loners, clans and
// food sources. Each kind is an archetype built from the components here.
package components

// SpeciesID indexes into the species definitions loaded at setup.
type SpeciesID uint8

// NumSpecies is the number of subspecies in the arena. The species
// dataset is rejected at setup if it does not contain exactly this many.
const NumSpecies = 4

// Kind identifies an entity archetype in spatial queries and events.
type Kind uint8

const (
	KindLoner Kind = 1 << iota
	KindClan
	KindFood
)

// KindMask selects which archetypes a spatial query should return.
type KindMask uint8

// Has reports whether the mask includes the given kind.
func (m KindMask) Has(k Kind) bool {
	return m&KindMask(k) != 0
}

// Position is a world-space location in the arena.
type Position struct {
	X, Y float64
}

// Velocity is the per-tick displacement of a moving entity.
type Velocity struct {
	X, Y float64
}
