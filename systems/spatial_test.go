package systems

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/pthm-cable/astras/components"
)

func TestQueryEmptyGrid(t *testing.T) {
	g := NewSpatialGrid(1200, 600, 150)

	got := g.QueryInto(nil, 600, 300, 100, components.KindMask(components.KindLoner|components.KindClan|components.KindFood))
	if len(got) != 0 {
		t.Errorf("empty grid returned %d neighbors, want 0", len(got))
	}
}

func TestQueryRadiusExactFilter(t *testing.T) {
	g := NewSpatialGrid(1200, 600, 150)

	// One entry inside the radius, one just outside, one in a far cell.
	g.Insert(Entry{Kind: components.KindLoner, ID: 1, X: 100, Y: 100})
	g.Insert(Entry{Kind: components.KindLoner, ID: 2, X: 100, Y: 151}) // dist 51
	g.Insert(Entry{Kind: components.KindLoner, ID: 3, X: 1100, Y: 500})

	got := g.QueryInto(nil, 100, 100, 50, components.KindMask(components.KindLoner))
	if len(got) != 1 {
		t.Fatalf("got %d neighbors, want 1", len(got))
	}
	if got[0].ID != 1 {
		t.Errorf("got ID %d, want 1", got[0].ID)
	}
	if got[0].DistSq != 0 {
		t.Errorf("DistSq = %v, want 0", got[0].DistSq)
	}
}

func TestQueryKindMask(t *testing.T) {
	g := NewSpatialGrid(1200, 600, 150)

	g.Insert(Entry{Kind: components.KindLoner, ID: 1, X: 50, Y: 50})
	g.Insert(Entry{Kind: components.KindClan, ID: 2, X: 55, Y: 50})
	g.Insert(Entry{Kind: components.KindFood, ID: 3, X: 60, Y: 50})

	tests := []struct {
		name string
		mask components.KindMask
		want int
	}{
		{"loners only", components.KindMask(components.KindLoner), 1},
		{"loners and clans", components.KindMask(components.KindLoner | components.KindClan), 2},
		{"food only", components.KindMask(components.KindFood), 1},
		{"all kinds", components.KindMask(components.KindLoner | components.KindClan | components.KindFood), 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := g.QueryInto(nil, 55, 50, 20, tt.mask)
			if len(got) != tt.want {
				t.Errorf("got %d neighbors, want %d", len(got), tt.want)
			}
		})
	}
}

// TestQueryNeverOmitsNeighbor cross-checks the grid against a brute
// force scan over randomly placed entries, including positions near the
// arena edges where cell clamping applies.
func TestQueryNeverOmitsNeighbor(t *testing.T) {
	const (
		width  = 1200.0
		height = 600.0
		n      = 500
		radius = 120.0
	)

	rng := rand.New(rand.NewPCG(7, 7))
	g := NewSpatialGrid(width, height, 150)

	type pt struct{ x, y float64 }
	points := make([]pt, n)
	for i := range points {
		points[i] = pt{rng.Float64() * width, rng.Float64() * height}
		g.Insert(Entry{Kind: components.KindLoner, ID: uint32(i), X: points[i].x, Y: points[i].y})
	}

	queries := []pt{
		{0, 0}, {width, height}, {width / 2, height / 2}, {5, height - 5},
		{rng.Float64() * width, rng.Float64() * height},
	}

	for _, q := range queries {
		got := g.QueryInto(nil, q.x, q.y, radius, components.KindMask(components.KindLoner))

		seen := make(map[uint32]bool, len(got))
		for _, nb := range got {
			seen[nb.ID] = true
		}

		for i, p := range points {
			d := math.Hypot(p.x-q.x, p.y-q.y)
			if d <= radius && !seen[uint32(i)] {
				t.Errorf("query (%.0f,%.0f): entry %d at dist %.1f omitted", q.x, q.y, i, d)
			}
			if d > radius && seen[uint32(i)] {
				t.Errorf("query (%.0f,%.0f): entry %d at dist %.1f is a false positive", q.x, q.y, i, d)
			}
		}
	}
}

func TestClearEmptiesGrid(t *testing.T) {
	g := NewSpatialGrid(1200, 600, 150)
	g.Insert(Entry{Kind: components.KindLoner, ID: 1, X: 100, Y: 100})
	g.Clear()

	got := g.QueryInto(nil, 100, 100, 50, components.KindMask(components.KindLoner))
	if len(got) != 0 {
		t.Errorf("cleared grid returned %d neighbors, want 0", len(got))
	}
}

func TestOutOfBoundsInsertLandsInEdgeCell(t *testing.T) {
	g := NewSpatialGrid(1200, 600, 150)

	// A position outside the arena must still be indexed and findable.
	g.Insert(Entry{Kind: components.KindLoner, ID: 1, X: -40, Y: 700})

	got := g.QueryInto(nil, 0, 600, 200, components.KindMask(components.KindLoner))
	if len(got) != 1 {
		t.Errorf("got %d neighbors, want 1", len(got))
	}
}
