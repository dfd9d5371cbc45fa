package telemetry

// Collector accumulates the events of the current tick and produces a
// TickStats row when flushed. One collector lives for the whole run;
// Flush resets it for the next tick.
type Collector struct {
	tickSeconds float64
	events      []Event

	feedings  int
	fights    int
	deaths    int
	merges    int
	splits    int
	spawns    int
	disasters int
}

// NewCollector creates a collector. tickSeconds converts tick numbers
// to simulation time in the emitted rows.
func NewCollector(tickSeconds float64) *Collector {
	return &Collector{tickSeconds: tickSeconds}
}

// Record adds an event to the current tick and bumps its counter.
func (c *Collector) Record(ev Event) {
	c.events = append(c.events, ev)

	switch ev.Type {
	case EventFeeding:
		c.feedings++
	case EventCombat:
		c.fights++
	case EventDeath:
		c.deaths++
	case EventMerge:
		c.merges++
	case EventSplit:
		c.splits++
	case EventSpawn:
		c.spawns++
	case EventDisaster:
		c.disasters++
	}
}

// Events returns the events recorded since the last flush. The slice is
// only valid until the next Record or Flush call.
func (c *Collector) Events() []Event {
	return c.events
}

// Flush produces the TickStats row for the finished tick and resets the
// collector. The caller provides the end-of-tick population counts,
// environment state and energy values.
func (c *Collector) Flush(
	tick int32,
	temperature float64,
	isDay bool,
	loners, clans, clanMembers int,
	foodRemaining float64,
	energies []float64,
) TickStats {
	mean, p10, p50, p90 := ComputeEnergyStats(energies)

	stats := TickStats{
		Tick:        tick,
		SimTimeSec:  float64(tick) * c.tickSeconds,
		Temperature: temperature,
		IsDay:       isDay,

		Loners:      loners,
		Clans:       clans,
		ClanMembers: clanMembers,
		TotalPop:    loners + clanMembers,

		Feedings:  c.feedings,
		Fights:    c.fights,
		Deaths:    c.deaths,
		Merges:    c.merges,
		Splits:    c.splits,
		Spawns:    c.spawns,
		Disasters: c.disasters,

		FoodRemaining: foodRemaining,

		EnergyMean: mean,
		EnergyP10:  p10,
		EnergyP50:  p50,
		EnergyP90:  p90,
	}

	c.events = c.events[:0]
	c.feedings = 0
	c.fights = 0
	c.deaths = 0
	c.merges = 0
	c.splits = 0
	c.spawns = 0
	c.disasters = 0

	return stats
}
