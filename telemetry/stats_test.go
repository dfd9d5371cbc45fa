package telemetry

import (
	"math"
	"testing"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 3.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"p10", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.1, 1.9},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestComputeEnergyStats(t *testing.T) {
	values := []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0}
	mean, p10, p50, p90 := ComputeEnergyStats(values)

	if math.Abs(mean-0.55) > 0.001 {
		t.Errorf("mean = %v, want 0.55", mean)
	}
	if math.Abs(p10-0.19) > 0.01 {
		t.Errorf("p10 = %v, want ~0.19", p10)
	}
	if math.Abs(p50-0.55) > 0.01 {
		t.Errorf("p50 = %v, want ~0.55", p50)
	}
	if math.Abs(p90-0.91) > 0.01 {
		t.Errorf("p90 = %v, want ~0.91", p90)
	}
}

func TestComputeEnergyStatsEmpty(t *testing.T) {
	mean, p10, p50, p90 := ComputeEnergyStats([]float64{})

	if mean != 0 || p10 != 0 || p50 != 0 || p90 != 0 {
		t.Error("empty slice should return all zeros")
	}
}

func TestCollectorFlushCountsAndResets(t *testing.T) {
	c := NewCollector(0.1)

	c.Record(NewFeedingEvent(3, 1, 100, 2.5))
	c.Record(NewFeedingEvent(3, 2, 100, 1.0))
	c.Record(NewCombatEvent(3, 1, 2, 5.0))
	c.Record(NewDeathEvent(3, 2))
	c.Record(NewMergeEvent(3, 50, 3))
	c.Record(NewSpawnEvent(3, 7))

	if got := len(c.Events()); got != 6 {
		t.Errorf("Events() len = %d, want 6", got)
	}

	stats := c.Flush(3, 12.5, true, 10, 2, 6, 80.0, []float64{10, 20, 30})

	if stats.Feedings != 2 || stats.Fights != 1 || stats.Deaths != 1 || stats.Merges != 1 || stats.Spawns != 1 {
		t.Errorf("unexpected counts: %+v", stats)
	}
	if stats.TotalPop != 16 {
		t.Errorf("TotalPop = %d, want 16", stats.TotalPop)
	}
	if math.Abs(stats.SimTimeSec-0.3) > 1e-9 {
		t.Errorf("SimTimeSec = %v, want 0.3", stats.SimTimeSec)
	}
	if stats.EnergyMean != 20 {
		t.Errorf("EnergyMean = %v, want 20", stats.EnergyMean)
	}

	// Counters reset after flush.
	empty := c.Flush(4, 12.5, true, 0, 0, 0, 0, nil)
	if empty.Feedings != 0 || empty.Fights != 0 || empty.Deaths != 0 {
		t.Errorf("counters survived flush: %+v", empty)
	}
	if len(c.Events()) != 0 {
		t.Error("events survived flush")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	snap := &Snapshot{
		Version:     SnapshotVersion,
		Tick:        42,
		SimTimeSec:  4.2,
		Temperature: -3.5,
		IsDay:       false,
		Population:  map[string]int{"Icefang": 5, "Spores": 3},
		Loners: []LonerSummary{
			{ID: 1, Species: "Icefang", X: 10, Y: 20, Energy: 55, Age: 12},
		},
		Clans: []ClanSummary{
			{ID: 9, Species: "Spores", MemberCount: 3, TotalEnergy: 90, AvgEnergy: 30, X: 300, Y: 200},
		},
		Food: []FoodSummary{
			{ID: 100, X: 600, Y: 300, Capacity: 50, Remaining: 12.5},
		},
		Events: []Event{NewDeathEvent(42, 4)},
	}

	dir := t.TempDir()
	path, err := SaveSnapshot(snap, dir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}

	if loaded.Tick != snap.Tick || loaded.Temperature != snap.Temperature {
		t.Errorf("loaded snapshot differs: %+v", loaded)
	}
	if loaded.TotalPopulation() != 8 {
		t.Errorf("TotalPopulation() = %d, want 8", loaded.TotalPopulation())
	}
	if len(loaded.Loners) != 1 || loaded.Loners[0].Energy != 55 {
		t.Errorf("loners not preserved: %+v", loaded.Loners)
	}
	if len(loaded.Events) != 1 || loaded.Events[0].Type != EventDeath {
		t.Errorf("events not preserved: %+v", loaded.Events)
	}
}
