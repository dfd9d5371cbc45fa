package sim

import (
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/pthm-cable/astras/components"
	"github.com/pthm-cable/astras/telemetry"
)

// stepSpawn produces newborn loners per species. The birth rate scales
// with the species reproduction rate, the remaining capacity under the
// cap and the food available near the population centroid; the cap is
// a hard ceiling regardless of the draw. Newborns appear scattered
// around the centroid. An extinct species produces no births.
func (s *Simulation) stepSpawn() {
	if s.cfg.Spawn.RateScale <= 0 {
		return
	}

	perSpecies, _, _, _ := s.populationCounts()
	centroids := s.speciesCentroids()

	for idx := range s.species {
		pop := perSpecies[idx]
		headroom := s.caps[idx] - pop
		if pop == 0 || headroom <= 0 {
			continue
		}

		cx, cy := centroids[idx][0], centroids[idx][1]
		foodFactor := s.localFoodFactor(cx, cy)

		lambda := s.species[idx].ReproductionRate * s.cfg.Spawn.RateScale * float64(headroom) * foodFactor
		if lambda <= 0 {
			continue
		}

		births := s.drawBirths(lambda, headroom)
		for b := 0; b < births; b++ {
			x, y := cx, cy
			if s.cfg.Spawn.PlacementSigma > 0 {
				offset := distuv.Normal{Mu: 0, Sigma: s.cfg.Spawn.PlacementSigma, Src: s.src}
				x += offset.Rand()
				y += offset.Rand()
			}
			id := s.SpawnLoner(components.SpeciesID(idx), x, y, s.species[idx].BaseEnergy)
			s.collector.Record(telemetry.NewSpawnEvent(s.tick, id))
		}
	}
}

// drawBirths counts exponential inter-arrival times at the given rate
// that fit into one tick, capped at the remaining headroom.
func (s *Simulation) drawBirths(lambda float64, headroom int) int {
	exp := distuv.Exponential{Rate: lambda, Src: s.src}
	births := 0
	t := exp.Rand()
	for t < 1.0 && births < headroom {
		births++
		t += exp.Rand()
	}
	return births
}

// speciesCentroids averages each species' individual positions; clan
// positions count once per member.
func (s *Simulation) speciesCentroids() [components.NumSpecies][2]float64 {
	var sums [components.NumSpecies][2]float64
	var counts [components.NumSpecies]int

	query := s.lonerFilter.Query()
	for query.Next() {
		pos, _, agent, _ := query.Get()
		sums[agent.Species][0] += pos.X
		sums[agent.Species][1] += pos.Y
		counts[agent.Species]++
	}

	cq := s.clanFilter.Query()
	for cq.Next() {
		pos, _, core := cq.Get()
		n := len(core.Members)
		sums[core.Species][0] += pos.X * float64(n)
		sums[core.Species][1] += pos.Y * float64(n)
		counts[core.Species] += n
	}

	var out [components.NumSpecies][2]float64
	for i := range out {
		if counts[i] > 0 {
			out[i][0] = sums[i][0] / float64(counts[i])
			out[i][1] = sums[i][1] / float64(counts[i])
		} else {
			out[i][0] = s.cfg.World.Width / 2
			out[i][1] = s.cfg.World.Height / 2
		}
	}
	return out
}

// localFoodFactor is the mean fill level of food sources near a point,
// in [0, 1]. No sources in range means no food pressure relief and a
// factor of zero births from food alone would starve recovery, so an
// empty neighborhood returns a small floor instead.
func (s *Simulation) localFoodFactor(x, y float64) float64 {
	if s.cfg.Spawn.FoodRange <= 0 {
		return 1
	}

	mask := components.KindMask(components.KindFood)
	s.queryBuf = s.grid.QueryInto(s.queryBuf[:0], x, y, s.cfg.Spawn.FoodRange, mask)
	if len(s.queryBuf) == 0 {
		return 0.1
	}

	var fill float64
	for _, nb := range s.queryBuf {
		food := s.foodMap.Get(nb.E)
		if food.Capacity > 0 {
			fill += food.Remaining / food.Capacity
		}
	}
	return fill / float64(len(s.queryBuf))
}
