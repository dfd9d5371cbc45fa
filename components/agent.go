package components

// State is the lifecycle state of a loner.
type State uint8

const (
	// StateFree marks a loner that may feed, fight and merge.
	StateFree State = iota
	// StateMerging marks a loner claimed by clan formation this tick.
	// A merging loner is never considered for a second cluster.
	StateMerging
)

// Agent holds the identity and species traits of a loner.
// ID is unique across all entities for the lifetime of a world and is
// the tie-break key wherever resolution order matters.
type Agent struct {
	ID         uint32
	Species    SpeciesID
	Aggression float64
	State      State
}

// Vitals holds the mutable life state of a loner.
// Energy below or at zero is never observable outside a tick: the prune
// phase removes the entity before the snapshot is built.
type Vitals struct {
	Energy float64
	Age    int32
	Alive  bool
}
