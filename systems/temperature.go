package systems

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Temperature evolves the global environmental scalar. Each tick the
// base value takes a random walk (configured drift plus normal noise)
// and an optional day/night cycle subtracts a night offset; the result
// is always clamped into [min, max], never rejected.
type Temperature struct {
	base  float64
	value float64
	drift float64
	min   float64
	max   float64
	noise distuv.Normal

	// Day/night cycle; disabled when cycleTicks == 0.
	cycleTicks      int32
	transitionTicks int32
	nightDelta      float64
	timer           int32
	transition      int32
	inTransition    bool
	isDay           bool
}

// NewTemperature creates a temperature system starting at start.
// Noise draws come from the shared simulation source.
func NewTemperature(start, drift, variance, min, max float64, src rand.Source) *Temperature {
	return &Temperature{
		base:  clampF(start, min, max),
		value: clampF(start, min, max),
		drift: drift,
		min:   min,
		max:   max,
		noise: distuv.Normal{Mu: 0, Sigma: variance, Src: src},
		isDay: true,
	}
}

// EnableCycle turns on the diurnal cycle: cycleTicks per day/night
// phase, transitionTicks of linear blend between them, and nightDelta
// degrees subtracted at full night.
func (t *Temperature) EnableCycle(cycleTicks, transitionTicks int32, nightDelta float64, startDay bool) {
	if transitionTicks < 1 {
		transitionTicks = 1
	}
	t.cycleTicks = cycleTicks
	t.transitionTicks = transitionTicks
	t.nightDelta = nightDelta
	t.isDay = startDay
}

// Step advances the temperature one tick.
func (t *Temperature) Step() {
	t.base = clampF(t.base+t.drift+t.noise.Rand(), t.min, t.max)

	offset := 0.0
	if t.cycleTicks > 0 {
		offset = t.advanceCycle()
	}
	t.value = clampF(t.base+offset, t.min, t.max)
}

// advanceCycle moves the day/night state machine one tick and returns
// the current diurnal offset (0 at full day, -nightDelta at full night).
func (t *Temperature) advanceCycle() float64 {
	if t.inTransition {
		t.transition++
		if t.transition >= t.transitionTicks {
			t.inTransition = false
			t.transition = 0
			t.isDay = !t.isDay
		}
	} else {
		t.timer++
		if t.timer >= t.cycleTicks {
			t.timer = 0
			t.inTransition = true
			t.transition = 0
		}
	}

	// progress: 1.0 = full day, 0.0 = full night.
	var progress float64
	switch {
	case t.inTransition && t.isDay:
		progress = 1 - float64(t.transition)/float64(t.transitionTicks)
	case t.inTransition && !t.isDay:
		progress = float64(t.transition) / float64(t.transitionTicks)
	case t.isDay:
		progress = 1
	default:
		progress = 0
	}
	return -t.nightDelta * (1 - progress)
}

// Value returns the current temperature.
func (t *Temperature) Value() float64 {
	return t.value
}

// IsDay reports the current phase of the diurnal cycle. Always true
// when the cycle is disabled.
func (t *Temperature) IsDay() bool {
	if t.cycleTicks == 0 {
		return true
	}
	return t.isDay
}

// stress is the normalized distance of the current value from the
// center of the bounds, in [0, 1].
func (t *Temperature) stress() float64 {
	half := (t.max - t.min) / 2
	if half <= 0 {
		return 0
	}
	center := (t.max + t.min) / 2
	s := (t.value - center) / half
	if s < 0 {
		s = -s
	}
	if s > 1 {
		s = 1
	}
	return s
}

// RegenMult scales food regeneration: 1.0 at the center of the bounds,
// falling to 0.5 at either extreme.
func (t *Temperature) RegenMult() float64 {
	return 1 - 0.5*t.stress()
}

// DecayMult scales entity energy decay: 1.0 at the center, rising to
// 3.0 at either extreme. Quadratic so that mild weather is cheap and
// extremes hurt.
func (t *Temperature) DecayMult() float64 {
	s := t.stress()
	return 1 + 2*s*s
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
