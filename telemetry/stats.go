package telemetry

import (
	"log/slog"
	"sort"
)

// TickStats holds aggregated statistics for one tick. Rows are appended
// to stats.csv by the output manager.
type TickStats struct {
	Tick        int32   `csv:"tick"`
	SimTimeSec  float64 `csv:"sim_time"`
	Temperature float64 `csv:"temperature"`
	IsDay       bool    `csv:"is_day"`

	// Population counts at tick end
	Loners      int `csv:"loners"`
	Clans       int `csv:"clans"`
	ClanMembers int `csv:"clan_members"`
	TotalPop    int `csv:"total_pop"`

	// Events during the tick
	Feedings  int `csv:"feedings"`
	Fights    int `csv:"fights"`
	Deaths    int `csv:"deaths"`
	Merges    int `csv:"merges"`
	Splits    int `csv:"splits"`
	Spawns    int `csv:"spawns"`
	Disasters int `csv:"disasters"`

	// Resources
	FoodRemaining float64 `csv:"food_remaining"`

	// Energy distribution across all individuals
	EnergyMean float64 `csv:"energy_mean"`
	EnergyP10  float64 `csv:"energy_p10"`
	EnergyP50  float64 `csv:"energy_p50"`
	EnergyP90  float64 `csv:"energy_p90"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeEnergyStats calculates mean and percentiles from energy values.
func ComputeEnergyStats(values []float64) (mean, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean = sum / float64(n)

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s TickStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("tick", int(s.Tick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Float64("temperature", s.Temperature),
		slog.Bool("is_day", s.IsDay),
		slog.Int("loners", s.Loners),
		slog.Int("clans", s.Clans),
		slog.Int("clan_members", s.ClanMembers),
		slog.Int("total_pop", s.TotalPop),
		slog.Int("feedings", s.Feedings),
		slog.Int("fights", s.Fights),
		slog.Int("deaths", s.Deaths),
		slog.Int("merges", s.Merges),
		slog.Int("splits", s.Splits),
		slog.Int("spawns", s.Spawns),
		slog.Int("disasters", s.Disasters),
		slog.Float64("food_remaining", s.FoodRemaining),
		slog.Float64("energy_mean", s.EnergyMean),
		slog.Float64("energy_p10", s.EnergyP10),
		slog.Float64("energy_p50", s.EnergyP50),
		slog.Float64("energy_p90", s.EnergyP90),
	)
}
