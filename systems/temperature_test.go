package systems

import (
	"math/rand/v2"
	"testing"
)

func TestTemperatureStaysWithinBounds(t *testing.T) {
	temp := NewTemperature(0, 5, 10, -50, 50, rand.NewPCG(1, 1))

	for i := 0; i < 10000; i++ {
		temp.Step()
		if v := temp.Value(); v < -50 || v > 50 {
			t.Fatalf("tick %d: temperature %v escaped [-50, 50]", i, v)
		}
	}
}

func TestTemperatureDeterministic(t *testing.T) {
	a := NewTemperature(10, 0.1, 2, -50, 50, rand.NewPCG(42, 42))
	b := NewTemperature(10, 0.1, 2, -50, 50, rand.NewPCG(42, 42))

	for i := 0; i < 1000; i++ {
		a.Step()
		b.Step()
		if a.Value() != b.Value() {
			t.Fatalf("tick %d: values diverged: %v vs %v", i, a.Value(), b.Value())
		}
	}
}

func TestTemperatureStartClamped(t *testing.T) {
	temp := NewTemperature(200, 0, 0, -50, 50, rand.NewPCG(1, 1))
	if got := temp.Value(); got != 50 {
		t.Errorf("start value = %v, want clamped to 50", got)
	}
}

func TestCyclePhases(t *testing.T) {
	// Zero drift and variance so only the cycle moves the value.
	temp := NewTemperature(20, 0, 0, -50, 50, rand.NewPCG(1, 1))
	temp.EnableCycle(10, 4, 6, true)

	// Full day: value stays at base.
	for i := 0; i < 10; i++ {
		temp.Step()
		if !temp.IsDay() {
			t.Fatalf("tick %d: expected day", i)
		}
		if got := temp.Value(); got != 20 {
			t.Fatalf("tick %d: value = %v, want 20 during day", i, got)
		}
	}

	// Transition to night: value decreases monotonically toward base-delta.
	prev := temp.Value()
	for i := 0; i < 4; i++ {
		temp.Step()
		if got := temp.Value(); got > prev {
			t.Fatalf("transition tick %d: value rose from %v to %v", i, prev, got)
		} else {
			prev = got
		}
	}

	// Full night: value holds at base minus nightDelta.
	for i := 0; i < 9; i++ {
		temp.Step()
		if temp.IsDay() {
			t.Fatalf("night tick %d: expected night", i)
		}
		if got := temp.Value(); got != 14 {
			t.Fatalf("night tick %d: value = %v, want 14", i, got)
		}
	}
}

func TestIsDayWithoutCycle(t *testing.T) {
	temp := NewTemperature(0, 0, 0, -50, 50, rand.NewPCG(1, 1))
	temp.Step()
	if !temp.IsDay() {
		t.Error("cycle disabled: IsDay() = false, want true")
	}
}

func TestStressMultipliers(t *testing.T) {
	tests := []struct {
		name      string
		start     float64
		wantRegen float64
		wantDecay float64
	}{
		{"center", 0, 1.0, 1.0},
		{"halfway", 25, 0.75, 1.5},
		{"extreme", 50, 0.5, 3.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			temp := NewTemperature(tt.start, 0, 0, -50, 50, rand.NewPCG(1, 1))
			if got := temp.RegenMult(); got != tt.wantRegen {
				t.Errorf("RegenMult() = %v, want %v", got, tt.wantRegen)
			}
			if got := temp.DecayMult(); got != tt.wantDecay {
				t.Errorf("DecayMult() = %v, want %v", got, tt.wantDecay)
			}
		})
	}
}

func TestCombatLoss(t *testing.T) {
	tests := []struct {
		name        string
		loserEnergy float64
		penalty     float64
		gainShare   float64
		wantLost    float64
		wantGain    float64
	}{
		{"full penalty", 100, 20, 0.5, 20, 10},
		{"capped at energy", 15, 20, 0.5, 15, 7.5},
		{"zero energy", 0, 20, 0.5, 0, 0},
		{"no gain share", 100, 20, 0, 20, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lost, gain := CombatLoss(tt.loserEnergy, tt.penalty, tt.gainShare)
			if lost != tt.wantLost || gain != tt.wantGain {
				t.Errorf("CombatLoss() = (%v, %v), want (%v, %v)", lost, gain, tt.wantLost, tt.wantGain)
			}
		})
	}
}
