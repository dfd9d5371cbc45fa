package sim

import (
	"math"

	"github.com/pthm-cable/astras/telemetry"
)

// disasterState tracks the single active disaster, if any.
type disasterState struct {
	active    bool
	remaining int32
	x, y      float64
	drainRate float64
	radius    float64
}

// stepDisaster advances the active disaster and may start a new one.
// While active, individuals inside the affected area pay an extra
// energy drain each tick (applied during metabolism).
func (s *Simulation) stepDisaster() {
	if !s.cfg.Disasters.Enabled {
		return
	}

	if s.disaster.active {
		s.disaster.remaining--
		if s.disaster.remaining <= 0 {
			s.disaster.active = false
			s.log.Info("disaster ended", "tick", s.tick)
		}
		return
	}

	if s.rng.Float64() >= s.cfg.Disasters.Probability {
		return
	}

	span := s.cfg.Disasters.MaxDuration - s.cfg.Disasters.MinDuration
	duration := s.cfg.Disasters.MinDuration
	if span > 0 {
		duration += int32(s.rng.IntN(int(span) + 1))
	}

	s.disaster = disasterState{
		active:    true,
		remaining: duration,
		x:         s.rng.Float64() * s.cfg.World.Width,
		y:         s.rng.Float64() * s.cfg.World.Height,
		drainRate: s.cfg.Disasters.DrainRate,
		radius:    s.cfg.Disasters.Radius,
	}

	s.collector.Record(telemetry.NewDisasterEvent(s.tick, duration, s.disaster.drainRate))
	s.log.Info("disaster started",
		"tick", s.tick,
		"x", s.disaster.x,
		"y", s.disaster.y,
		"duration", duration,
	)
}

// disasterDrainAt returns the extra energy drain a position suffers
// from the active disaster, zero when clear of it.
func (s *Simulation) disasterDrainAt(x, y float64) float64 {
	if !s.disaster.active {
		return 0
	}
	if math.Hypot(x-s.disaster.x, y-s.disaster.y) > s.disaster.radius {
		return 0
	}
	return s.disaster.drainRate
}
