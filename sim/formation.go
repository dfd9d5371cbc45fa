package sim

import (
	"sort"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/astras/components"
	"github.com/pthm-cable/astras/telemetry"
)

// stepFormation first merges free same-species loners that are within
// formation range into clans, then gives every existing clan a chance
// to disperse back into loners.
func (s *Simulation) stepFormation() {
	if s.cfg.Formation.Radius > 0 {
		s.mergeLoners()
	}
	if s.cfg.Formation.DispersionRate > 0 {
		s.disperseClans()
	}
}

// mergeCandidate is a free loner eligible for clan formation.
type mergeCandidate struct {
	e       ecs.Entity
	id      uint32
	species components.SpeciesID
	x, y    float64
}

// mergeLoners groups free loners into connected components per species:
// two loners connect when within formation range, and a chain of such
// links forms one clan. Each component of two or more becomes a clan at
// its centroid; singletons stay loners.
func (s *Simulation) mergeLoners() {
	candidates := s.collectMergeCandidates()
	if len(candidates) < 2 {
		return
	}

	index := make(map[uint32]int, len(candidates))
	for i, c := range candidates {
		index[c.id] = i
	}

	parent := make([]int, len(candidates))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			if ra > rb {
				ra, rb = rb, ra
			}
			parent[rb] = ra
		}
	}

	mask := components.KindMask(components.KindLoner)
	for i, c := range candidates {
		s.queryBuf = s.grid.QueryInto(s.queryBuf[:0], c.x, c.y, s.cfg.Formation.Radius, mask)
		for _, nb := range s.queryBuf {
			if nb.ID <= c.id {
				continue
			}
			j, ok := index[nb.ID]
			if !ok || candidates[j].species != c.species {
				continue
			}
			union(i, j)
		}
	}

	groups := make(map[int][]int)
	for i := range candidates {
		root := find(i)
		groups[root] = append(groups[root], i)
	}

	roots := make([]int, 0, len(groups))
	for root, members := range groups {
		if len(members) >= 2 {
			roots = append(roots, root)
		}
	}
	sort.Ints(roots)

	for _, root := range roots {
		s.formClan(candidates, groups[root])
	}
}

func (s *Simulation) collectMergeCandidates() []mergeCandidate {
	var out []mergeCandidate
	query := s.lonerFilter.Query()
	for query.Next() {
		pos, _, agent, vitals := query.Get()
		if agent.State != components.StateFree || vitals.Energy <= 0 {
			continue
		}
		out = append(out, mergeCandidate{
			e:       query.Entity(),
			id:      agent.ID,
			species: agent.Species,
			x:       pos.X,
			y:       pos.Y,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// formClan absorbs the given candidates into a new clan at their
// centroid. Member identities and vitals carry over; the loner entities
// are removed from the world.
func (s *Simulation) formClan(candidates []mergeCandidate, indices []int) {
	sort.Slice(indices, func(i, j int) bool { return candidates[indices[i]].id < candidates[indices[j]].id })

	var cx, cy float64
	members := make([]components.Member, 0, len(indices))
	species := candidates[indices[0]].species

	for _, idx := range indices {
		c := candidates[idx]
		s.agentMap.Get(c.e).State = components.StateMerging
		vitals := s.vitalsMap.Get(c.e)
		members = append(members, components.Member{
			ID:     c.id,
			Energy: vitals.Energy,
			Age:    vitals.Age,
		})
		cx += c.x
		cy += c.y
	}
	cx /= float64(len(indices))
	cy /= float64(len(indices))

	for _, idx := range indices {
		s.lonerMapper.Remove(candidates[idx].e)
	}

	id := s.nextID
	s.nextID++

	pos := components.Position{X: cx, Y: cy}
	vel := s.randomHeading(s.cfg.Movement.ClanSpeed)
	core := components.ClanCore{
		ID:         id,
		Species:    species,
		Aggression: s.species[species].Aggression,
		Members:    members,
	}
	s.clanMapper.NewEntity(&pos, &vel, &core)

	s.collector.Record(telemetry.NewMergeEvent(s.tick, id, len(members)))
}

// disperseClans rolls each clan against the dispersion rate and
// dissolves the ones that come up, scattering members around the clan
// position.
func (s *Simulation) disperseClans() {
	for _, ref := range s.collectClans() {
		if s.rng.Float64() < s.cfg.Formation.DispersionRate {
			s.dissolveClan(ref.e, true)
		}
	}
}
