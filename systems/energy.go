package systems

// CombatLoss computes the energy actually lost by the loser of a fight
// and the share of it gained by the winner. A loser whose energy is at
// or below the penalty loses everything it has.
func CombatLoss(loserEnergy, penalty, gainShare float64) (lost, gain float64) {
	lost = penalty
	if lost > loserEnergy {
		lost = loserEnergy
	}
	return lost, lost * gainShare
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
