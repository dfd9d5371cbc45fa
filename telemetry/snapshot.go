package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot is the per-tick observable state of the world: population
// counts, clan summaries, food levels, environment and the tick's
// events. It contains no engine internals.
type Snapshot struct {
	Version int   `json:"version"`
	Tick    int32 `json:"tick"`

	SimTimeSec  float64 `json:"sim_time"`
	Temperature float64 `json:"temperature"`
	IsDay       bool    `json:"is_day"`

	// Population per species name, counting loners plus clan members.
	Population map[string]int `json:"population"`

	Loners []LonerSummary `json:"loners"`
	Clans  []ClanSummary  `json:"clans"`
	Food   []FoodSummary  `json:"food"`

	Events []Event `json:"events"`
}

// LonerSummary is one free individual's observable state.
type LonerSummary struct {
	ID      uint32  `json:"id"`
	Species string  `json:"species"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Energy  float64 `json:"energy"`
	Age     int32   `json:"age"`
}

// ClanSummary is one clan's observable state.
type ClanSummary struct {
	ID          uint32  `json:"id"`
	Species     string  `json:"species"`
	MemberCount int     `json:"member_count"`
	TotalEnergy float64 `json:"total_energy"`
	AvgEnergy   float64 `json:"avg_energy"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
}

// FoodSummary is one food source's observable state.
type FoodSummary struct {
	ID        uint32  `json:"id"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Capacity  float64 `json:"capacity"`
	Remaining float64 `json:"remaining"`
}

// TotalPopulation sums the per-species counts.
func (s *Snapshot) TotalPopulation() int {
	total := 0
	for _, n := range s.Population {
		total += n
	}
	return total
}

// SaveSnapshot writes a snapshot as JSON and returns the file path.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("snapshot_%d.json", snapshot.Tick))

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &snapshot, nil
}
