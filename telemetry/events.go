// Package telemetry provides per-tick event collection, aggregate
// statistics and experiment output for the simulation.
package telemetry

// EventType identifies telemetry events.
type EventType uint8

const (
	EventFeeding EventType = iota
	EventCombat
	EventDeath
	EventMerge
	EventSplit
	EventSpawn
	EventDisaster
)

// String returns the event type name used in logs and snapshots.
func (t EventType) String() string {
	switch t {
	case EventFeeding:
		return "feeding"
	case EventCombat:
		return "combat"
	case EventDeath:
		return "death"
	case EventMerge:
		return "merge"
	case EventSplit:
		return "split"
	case EventSpawn:
		return "spawn"
	case EventDisaster:
		return "disaster"
	default:
		return "unknown"
	}
}

// Event records one occurrence during a tick.
type Event struct {
	Type EventType `json:"type"`
	Tick int32     `json:"tick"`

	// Primary participant: feeder, winner, deceased, clan or newborn.
	EntityID uint32 `json:"entity_id"`

	// Optional fields depending on event type
	TargetID uint32  `json:"target_id,omitempty"` // food source, loser, or dissolved clan
	Amount   float64 `json:"amount,omitempty"`    // energy consumed or transferred
	Count    int     `json:"count,omitempty"`     // members involved in merge/split
}

// NewFeedingEvent records energy taken from a food source.
func NewFeedingEvent(tick int32, feederID, sourceID uint32, amount float64) Event {
	return Event{Type: EventFeeding, Tick: tick, EntityID: feederID, TargetID: sourceID, Amount: amount}
}

// NewCombatEvent records a resolved fight. Amount is the energy the
// loser forfeited.
func NewCombatEvent(tick int32, winnerID, loserID uint32, amount float64) Event {
	return Event{Type: EventCombat, Tick: tick, EntityID: winnerID, TargetID: loserID, Amount: amount}
}

// NewDeathEvent records an individual removed after energy depletion.
func NewDeathEvent(tick int32, entityID uint32) Event {
	return Event{Type: EventDeath, Tick: tick, EntityID: entityID}
}

// NewMergeEvent records loners forming a clan.
func NewMergeEvent(tick int32, clanID uint32, members int) Event {
	return Event{Type: EventMerge, Tick: tick, EntityID: clanID, Count: members}
}

// NewSplitEvent records a clan dissolving back into loners.
func NewSplitEvent(tick int32, clanID uint32, members int) Event {
	return Event{Type: EventSplit, Tick: tick, EntityID: clanID, Count: members}
}

// NewSpawnEvent records a newborn loner.
func NewSpawnEvent(tick int32, childID uint32) Event {
	return Event{Type: EventSpawn, Tick: tick, EntityID: childID}
}

// NewDisasterEvent records a disaster starting. Amount is its drain
// rate, Count its duration in ticks.
func NewDisasterEvent(tick int32, duration int32, drainRate float64) Event {
	return Event{Type: EventDisaster, Tick: tick, Amount: drainRate, Count: int(duration)}
}
