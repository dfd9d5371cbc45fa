package components

// Member is a loner absorbed into a clan. The loner's entity leaves the
// registry on merge; its identity and vitals live here until the clan
// splits or the member dies.
type Member struct {
	ID     uint32
	Energy float64
	Age    int32
}

// ClanCore is the aggregate state of a clan of same-species loners.
// Members are kept sorted ascending by ID; insertion order is irrelevant.
type ClanCore struct {
	ID         uint32
	Species    SpeciesID
	Aggression float64
	Members    []Member
}

// TotalEnergy returns the summed energy of all members.
func (c *ClanCore) TotalEnergy() float64 {
	var sum float64
	for i := range c.Members {
		sum += c.Members[i].Energy
	}
	return sum
}

// AvgEnergy returns the mean member energy, or 0 for an empty clan.
func (c *ClanCore) AvgEnergy() float64 {
	if len(c.Members) == 0 {
		return 0
	}
	return c.TotalEnergy() / float64(len(c.Members))
}

// Strength is the deterministic part of the combat score: combined
// energy scaled up by group size beyond the first member.
func (c *ClanCore) Strength() float64 {
	return c.TotalEnergy() * (1 + 0.1*float64(len(c.Members)-1))
}
