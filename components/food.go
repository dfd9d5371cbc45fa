package components

// Food is a stationary, depletable and regenerating resource node.
// Remaining stays within [0, Capacity]; a depleted source persists and
// regrows rather than being removed.
type Food struct {
	ID        uint32
	Capacity  float64
	Remaining float64
}

// Consume removes up to amount from the source and returns how much was
// actually taken.
func (f *Food) Consume(amount float64) float64 {
	taken := amount
	if taken > f.Remaining {
		taken = f.Remaining
	}
	f.Remaining -= taken
	return taken
}

// Regenerate restores amount up to capacity.
func (f *Food) Regenerate(amount float64) {
	f.Remaining += amount
	if f.Remaining > f.Capacity {
		f.Remaining = f.Capacity
	}
}

// Depleted reports whether the source currently has nothing to give.
func (f *Food) Depleted() bool {
	return f.Remaining <= 0
}
