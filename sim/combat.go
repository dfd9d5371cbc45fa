package sim

import (
	"sort"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/pthm-cable/astras/components"
	"github.com/pthm-cable/astras/systems"
	"github.com/pthm-cable/astras/telemetry"
)

// combatant is one side of a potential fight, loner or clan.
type combatant struct {
	e          ecs.Entity
	id         uint32
	kind       components.Kind
	species    components.SpeciesID
	aggression float64
}

// combatPair is an unordered hostile pair, keyed (low ID, high ID).
type combatPair struct {
	a, b combatant
}

// stepCombat finds hostile pairs within interaction range and resolves
// each fight. A pair fights when the species hostility matrix marks
// them enemies and both sides' aggression exceeds the threshold. Each
// participant fights at most once per tick; pairs resolve in ascending
// (low ID, high ID) order.
func (s *Simulation) stepCombat() {
	if s.cfg.Combat.InteractionRange <= 0 {
		return
	}

	combatants := s.collectCombatants()
	pairs := s.findHostilePairs(combatants)
	if len(pairs) == 0 {
		return
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].a.id != pairs[j].a.id {
			return pairs[i].a.id < pairs[j].a.id
		}
		return pairs[i].b.id < pairs[j].b.id
	})

	fought := make(map[uint32]bool, len(pairs)*2)
	roll := distuv.Uniform{Min: 0, Max: 1, Src: s.src}

	for _, p := range pairs {
		if fought[p.a.id] || fought[p.b.id] {
			continue
		}

		strengthA := s.strength(p.a)
		strengthB := s.strength(p.b)
		if strengthA <= 0 || strengthB <= 0 {
			continue
		}

		// The roll scales with combined strength so a weaker side
		// still wins sometimes.
		scoreA := strengthA + roll.Rand()*(strengthA+strengthB)*0.25
		scoreB := strengthB + roll.Rand()*(strengthA+strengthB)*0.25

		winner, loser := p.a, p.b
		if scoreB > scoreA {
			winner, loser = p.b, p.a
		}

		lost := s.applyCombatLoss(loser)
		s.applyCombatGain(winner, lost*s.cfg.Combat.GainShare)

		fought[p.a.id] = true
		fought[p.b.id] = true
		s.collector.Record(telemetry.NewCombatEvent(s.tick, winner.id, loser.id, lost))
	}
}

func (s *Simulation) collectCombatants() []combatant {
	var out []combatant

	query := s.lonerFilter.Query()
	for query.Next() {
		_, _, agent, vitals := query.Get()
		if vitals.Energy <= 0 {
			continue
		}
		out = append(out, combatant{
			e:          query.Entity(),
			id:         agent.ID,
			kind:       components.KindLoner,
			species:    agent.Species,
			aggression: agent.Aggression,
		})
	}

	cq := s.clanFilter.Query()
	for cq.Next() {
		_, _, core := cq.Get()
		out = append(out, combatant{
			e:          cq.Entity(),
			id:         core.ID,
			kind:       components.KindClan,
			species:    core.Species,
			aggression: core.Aggression,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// findHostilePairs walks every combatant's neighborhood and keeps the
// pairs that qualify for a fight. Each pair is emitted once, from its
// lower-ID side.
func (s *Simulation) findHostilePairs(combatants []combatant) []combatPair {
	byID := make(map[uint32]combatant, len(combatants))
	for _, c := range combatants {
		byID[c.id] = c
	}

	mask := components.KindMask(components.KindLoner | components.KindClan)
	var pairs []combatPair

	for _, c := range combatants {
		if c.aggression <= s.cfg.Combat.AggressionThreshold {
			continue
		}
		pos := s.posMap.Get(c.e)

		s.queryBuf = s.grid.QueryInto(s.queryBuf[:0], pos.X, pos.Y, s.cfg.Combat.InteractionRange, mask)
		for _, nb := range s.queryBuf {
			if nb.ID <= c.id {
				continue
			}
			other, ok := byID[nb.ID]
			if !ok {
				continue
			}
			if !s.hostile[c.species][other.species] {
				continue
			}
			if other.aggression <= s.cfg.Combat.AggressionThreshold {
				continue
			}
			pairs = append(pairs, combatPair{a: c, b: other})
		}
	}
	return pairs
}

// strength is a loner's energy, or a clan's member-count-boosted total.
func (s *Simulation) strength(c combatant) float64 {
	switch c.kind {
	case components.KindClan:
		return s.clanMap.Get(c.e).Strength()
	default:
		return s.vitalsMap.Get(c.e).Energy
	}
}

// applyCombatLoss deducts the combat penalty from the loser and returns
// the energy actually forfeited. Clans spread the loss equally.
func (s *Simulation) applyCombatLoss(c combatant) float64 {
	switch c.kind {
	case components.KindClan:
		core := s.clanMap.Get(c.e)
		total := core.TotalEnergy()
		lost, _ := systems.CombatLoss(total, s.cfg.Combat.Penalty, s.cfg.Combat.GainShare)
		if len(core.Members) > 0 {
			share := lost / float64(len(core.Members))
			for i := range core.Members {
				core.Members[i].Energy -= share
			}
		}
		return lost
	default:
		vitals := s.vitalsMap.Get(c.e)
		lost, _ := systems.CombatLoss(vitals.Energy, s.cfg.Combat.Penalty, s.cfg.Combat.GainShare)
		vitals.Energy -= lost
		return lost
	}
}

// applyCombatGain credits the winner with its share of the spoils.
func (s *Simulation) applyCombatGain(c combatant, gain float64) {
	if gain <= 0 {
		return
	}
	switch c.kind {
	case components.KindClan:
		core := s.clanMap.Get(c.e)
		if len(core.Members) > 0 {
			share := gain / float64(len(core.Members))
			for i := range core.Members {
				core.Members[i].Energy = systems.Clamp(core.Members[i].Energy+share, 0, s.cfg.Energy.MaxEnergy)
			}
		}
	default:
		vitals := s.vitalsMap.Get(c.e)
		vitals.Energy = systems.Clamp(vitals.Energy+gain, 0, s.cfg.Energy.MaxEnergy)
	}
}
