package sim

import (
	"sort"

	"github.com/pthm-cable/astras/components"
	"github.com/pthm-cable/astras/systems"
	"github.com/pthm-cable/astras/telemetry"
)

// stepFood lets every individual near a food source consume from it,
// then regenerates all sources. Sources are processed in ascending ID
// order and feeders within a source likewise, so contention over a
// nearly empty source resolves the same way every run.
func (s *Simulation) stepFood() {
	type source struct {
		food *components.Food
		x, y float64
	}

	var sources []source
	query := s.foodFilter.Query()
	for query.Next() {
		pos, food := query.Get()
		sources = append(sources, source{food: food, x: pos.X, y: pos.Y})
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i].food.ID < sources[j].food.ID })

	mask := components.KindMask(components.KindLoner | components.KindClan)

	for _, src := range sources {
		if src.food.Depleted() {
			continue
		}

		s.queryBuf = s.grid.QueryInto(s.queryBuf[:0], src.x, src.y, s.cfg.Food.FeedingRadius, mask)
		feeders := make([]systems.Neighbor, len(s.queryBuf))
		copy(feeders, s.queryBuf)
		sort.Slice(feeders, func(i, j int) bool { return feeders[i].ID < feeders[j].ID })

		for _, f := range feeders {
			if src.food.Depleted() {
				break
			}
			taken := src.food.Consume(s.cfg.Food.ConsumptionRate)
			if taken <= 0 {
				continue
			}

			switch f.Kind {
			case components.KindLoner:
				vitals := s.vitalsMap.Get(f.E)
				vitals.Energy = systems.Clamp(vitals.Energy+taken, 0, s.cfg.Energy.MaxEnergy)
			case components.KindClan:
				core := s.clanMap.Get(f.E)
				if len(core.Members) > 0 {
					share := taken / float64(len(core.Members))
					for i := range core.Members {
						core.Members[i].Energy = systems.Clamp(core.Members[i].Energy+share, 0, s.cfg.Energy.MaxEnergy)
					}
				}
			}

			s.collector.Record(telemetry.NewFeedingEvent(s.tick, f.ID, src.food.ID, taken))
		}
	}

	// Regeneration is temperature-gated: harsh weather slows regrowth.
	regen := s.cfg.Food.RegenRate * s.temp.RegenMult()
	if regen > 0 {
		for _, src := range sources {
			src.food.Regenerate(regen)
		}
	}
}
