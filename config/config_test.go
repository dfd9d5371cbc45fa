package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") failed: %v", err)
	}
	if cfg.World.Width != 1200 || cfg.World.Height != 600 {
		t.Errorf("default world = %vx%v, want 1200x600", cfg.World.Width, cfg.World.Height)
	}
	if cfg.Food.Places != 5 {
		t.Errorf("default food.places = %d, want 5", cfg.Food.Places)
	}
}

func TestLoadUserOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "override.yaml")
	data := "world:\n  width: 800\nfood:\n  places: 2\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load(%s) failed: %v", path, err)
	}
	if cfg.World.Width != 800 {
		t.Errorf("world.width = %v, want override 800", cfg.World.Width)
	}
	if cfg.World.Height != 600 {
		t.Errorf("world.height = %v, want default 600", cfg.World.Height)
	}
	if cfg.Food.Places != 2 {
		t.Errorf("food.places = %d, want override 2", cfg.Food.Places)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidateNamesField(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero width", func(c *Config) { c.World.Width = 0 }, "world.width"},
		{"zero tick", func(c *Config) { c.World.TickSeconds = 0 }, "world.tick_seconds"},
		{"negative decay", func(c *Config) { c.Energy.DecayRate = -1 }, "energy.decay_rate"},
		{"negative cap", func(c *Config) { c.Population.Caps["Spores"] = -1 }, "population.caps"},
		{"inverted temperature bounds", func(c *Config) { c.Temperature.Min = 10; c.Temperature.Max = -10 }, "temperature.min"},
		{"zero consumption rate", func(c *Config) { c.Food.ConsumptionRate = 0 }, "food.consumption_rate"},
		{"zero feeding radius", func(c *Config) { c.Food.FeedingRadius = 0 }, "food.feeding_radius"},
		{"zero interaction range", func(c *Config) { c.Combat.InteractionRange = 0 }, "combat.interaction_range"},
		{"zero formation radius", func(c *Config) { c.Formation.Radius = 0 }, "formation.radius"},
		{"gain share out of range", func(c *Config) { c.Combat.GainShare = 1.5 }, "combat.gain_share"},
		{"dispersion out of range", func(c *Config) { c.Formation.DispersionRate = 2 }, "formation.dispersion_rate"},
		{"cell smaller than radius", func(c *Config) { c.World.GridCellSize = 10 }, "grid_cell_size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("")
			if err != nil {
				t.Fatal(err)
			}
			tt.mutate(cfg)
			err = cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not name %q", err, tt.want)
			}
		})
	}
}

func TestCapFallback(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if got := cfg.Cap("Icefang"); got != 50 {
		t.Errorf("Cap(Icefang) = %d, want 50", got)
	}
	if got := cfg.Cap("unknown"); got != cfg.Population.DefaultCap {
		t.Errorf("Cap(unknown) = %d, want default %d", got, cfg.Population.DefaultCap)
	}
}

func TestLoadSpeciesEmbedded(t *testing.T) {
	species, err := LoadSpecies("")
	if err != nil {
		t.Fatalf("LoadSpecies(\"\") failed: %v", err)
	}
	if len(species) != 4 {
		t.Fatalf("got %d species, want 4", len(species))
	}

	names := make(map[string]bool)
	for _, s := range species {
		names[s.Name] = true
	}
	for _, want := range []string{"Icefang", "Crushed_Critters", "Spores", "The_Corrupted"} {
		if !names[want] {
			t.Errorf("missing species %q", want)
		}
	}
}

func TestValidateSpecies(t *testing.T) {
	base := func() []Species {
		s, err := LoadSpecies("")
		if err != nil {
			t.Fatal(err)
		}
		return s
	}

	tests := []struct {
		name   string
		mutate func([]Species) []Species
	}{
		{"wrong count", func(s []Species) []Species { return s[:3] }},
		{"duplicate name", func(s []Species) []Species { s[1].Name = s[0].Name; return s }},
		{"aggression out of range", func(s []Species) []Species { s[0].Aggression = 1.5; return s }},
		{"zero base energy", func(s []Species) []Species { s[2].BaseEnergy = 0; return s }},
		{"unknown stance", func(s []Species) []Species { s[0].Interactions["Spores"] = "grumpy"; return s }},
		{"unknown target", func(s []Species) []Species { s[0].Interactions["Ghosts"] = "neutral"; return s }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateSpecies(tt.mutate(base())); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
