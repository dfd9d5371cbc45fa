package sim

import (
	"math"

	"github.com/pthm-cable/astras/components"
)

// stepMovement advances every mobile entity along its velocity and
// bounces it off the arena edges. Headings occasionally re-randomize;
// otherwise velocity decays toward zero under damping. Night slows
// everyone down.
func (s *Simulation) stepMovement() {
	speedFactor := 1.0
	if !s.temp.IsDay() {
		speedFactor = s.cfg.Movement.NightFactor
	}

	for _, ref := range s.collectLoners() {
		pos := s.posMap.Get(ref.e)
		vel := s.velMap.Get(ref.e)
		s.moveOne(pos, vel, s.cfg.Movement.LonerSpeed*speedFactor, s.cfg.Movement.LonerTurnChance)
	}

	for _, ref := range s.collectClans() {
		pos := s.posMap.Get(ref.e)
		vel := s.velMap.Get(ref.e)
		s.moveOne(pos, vel, s.cfg.Movement.ClanSpeed*speedFactor, s.cfg.Movement.ClanTurnChance)
	}
}

func (s *Simulation) moveOne(pos *components.Position, vel *components.Velocity, speed, turnChance float64) {
	if speed <= 0 {
		vel.X, vel.Y = 0, 0
		return
	}

	if s.rng.Float64() < turnChance {
		angle := s.rng.Float64() * 2 * math.Pi
		vel.X = speed * math.Cos(angle)
		vel.Y = speed * math.Sin(angle)
	} else {
		vel.X *= s.cfg.Movement.Damping
		vel.Y *= s.cfg.Movement.Damping
	}

	pos.X += vel.X * speedFactorScale(speed, vel)
	pos.Y += vel.Y * speedFactorScale(speed, vel)

	// Bounce at the edges; position reflects back into the arena.
	if pos.X < 0 {
		pos.X = -pos.X
		vel.X = -vel.X
	} else if pos.X > s.cfg.World.Width {
		pos.X = 2*s.cfg.World.Width - pos.X
		vel.X = -vel.X
	}
	if pos.Y < 0 {
		pos.Y = -pos.Y
		vel.Y = -vel.Y
	} else if pos.Y > s.cfg.World.Height {
		pos.Y = 2*s.cfg.World.Height - pos.Y
		vel.Y = -vel.Y
	}

	// A double bounce in one tick can only happen if velocity exceeds
	// the arena size; clamp as a safety net.
	pos.X = clampPos(pos.X, s.cfg.World.Width)
	pos.Y = clampPos(pos.Y, s.cfg.World.Height)
}

// speedFactorScale caps the effective step so a damped or boosted
// velocity never exceeds the configured speed.
func speedFactorScale(speed float64, vel *components.Velocity) float64 {
	mag := math.Hypot(vel.X, vel.Y)
	if mag <= speed || mag == 0 {
		return 1
	}
	return speed / mag
}

func clampPos(v, max float64) float64 {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}
