// Package config provides configuration loading and validation for the
// simulation, plus the species dataset.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation parameters. A loaded Config is treated as
// immutable; the simulation takes a value copy at setup.
type Config struct {
	World       WorldConfig       `yaml:"world"`
	Population  PopulationConfig  `yaml:"population"`
	Energy      EnergyConfig      `yaml:"energy"`
	Food        FoodConfig        `yaml:"food"`
	Temperature TemperatureConfig `yaml:"temperature"`
	Combat      CombatConfig      `yaml:"combat"`
	Formation   FormationConfig   `yaml:"formation"`
	Spawn       SpawnConfig       `yaml:"spawn"`
	Movement    MovementConfig    `yaml:"movement"`
	Disasters   DisastersConfig   `yaml:"disasters"`
	Seed        uint64            `yaml:"seed"`
}

// WorldConfig holds arena dimensions and the tick timestep.
type WorldConfig struct {
	Width        float64 `yaml:"width"`
	Height       float64 `yaml:"height"`
	GridCellSize float64 `yaml:"grid_cell_size"`
	TickSeconds  float64 `yaml:"tick_seconds"`
}

// PopulationConfig holds per-species caps and initial counts.
type PopulationConfig struct {
	InitialLoners int            `yaml:"initial_loners"` // Per species, placed at setup
	Caps          map[string]int `yaml:"caps"`           // Species name -> population cap
	DefaultCap    int            `yaml:"default_cap"`    // Used when a species has no explicit cap
}

// EnergyConfig holds the passive energy economy.
type EnergyConfig struct {
	DecayRate float64 `yaml:"decay_rate"` // Base drain per tick, scaled by temperature stress
	MaxEnergy float64 `yaml:"max_energy"` // Per-individual energy ceiling
}

// FoodConfig holds food source placement and feeding parameters.
type FoodConfig struct {
	Places          int     `yaml:"places"`           // Number of sources placed at setup
	Capacity        float64 `yaml:"capacity"`         // Per-source capacity
	RegenRate       float64 `yaml:"regen_rate"`       // Restored per tick, scaled by temperature
	ConsumptionRate float64 `yaml:"consumption_rate"` // Max taken per feeder per tick
	FeedingRadius   float64 `yaml:"feeding_radius"`
}

// TemperatureConfig holds the environment scalar parameters.
type TemperatureConfig struct {
	Start           float64 `yaml:"start"`
	Drift           float64 `yaml:"drift"`
	Variance        float64 `yaml:"variance"`
	Min             float64 `yaml:"min"`
	Max             float64 `yaml:"max"`
	CycleTicks      int32   `yaml:"cycle_ticks"`      // Ticks per day or night phase; 0 disables the cycle
	TransitionTicks int32   `yaml:"transition_ticks"` // Ticks of dawn/dusk blend
	NightDelta      float64 `yaml:"night_delta"`      // Degrees subtracted at full night
}

// CombatConfig holds fight resolution parameters.
type CombatConfig struct {
	AggressionThreshold float64 `yaml:"aggression_threshold"` // Both sides must exceed this to fight
	InteractionRange    float64 `yaml:"interaction_range"`
	Penalty             float64 `yaml:"penalty"`    // Energy the loser forfeits
	GainShare           float64 `yaml:"gain_share"` // Fraction of the loss the winner absorbs
}

// FormationConfig holds clan merge and split parameters.
type FormationConfig struct {
	Radius         float64 `yaml:"radius"`          // Loners within this range of each other merge
	DispersionRate float64 `yaml:"dispersion_rate"` // Per-tick probability a clan dissolves
	ScatterSigma   float64 `yaml:"scatter_sigma"`   // Spread of released loners around the clan position
}

// SpawnConfig holds reproduction parameters.
type SpawnConfig struct {
	RateScale      float64 `yaml:"rate_scale"`      // Scales species reproduction rates
	PlacementSigma float64 `yaml:"placement_sigma"` // Spread of newborns around the species centroid
	FoodRange      float64 `yaml:"food_range"`      // Radius for local food density around the centroid
}

// MovementConfig holds wander movement parameters.
type MovementConfig struct {
	LonerSpeed      float64 `yaml:"loner_speed"`
	ClanSpeed       float64 `yaml:"clan_speed"`
	Damping         float64 `yaml:"damping"`
	LonerTurnChance float64 `yaml:"loner_turn_chance"` // Per-tick probability of picking a new heading
	ClanTurnChance  float64 `yaml:"clan_turn_chance"`
	NightFactor     float64 `yaml:"night_factor"` // Speed multiplier during night
}

// DisastersConfig holds random disaster parameters. Disabled by default.
type DisastersConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Probability float64 `yaml:"probability"`    // Per-tick chance of a disaster starting
	MinDuration int32   `yaml:"min_duration"`   // Ticks
	MaxDuration int32   `yaml:"max_duration"`   // Ticks
	DrainRate   float64 `yaml:"drain_rate"`     // Extra energy drain per tick while active
	Radius      float64 `yaml:"radius"`         // Affected area around the disaster center
}

// Load reads configuration from a YAML file, merged over embedded
// defaults. An empty path uses only the defaults. The result is
// validated before being returned.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into the same struct so the file only overrides
		// the fields it names.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects parameter combinations the simulation cannot run
// with. Errors name the offending field.
func (c *Config) Validate() error {
	if c.World.Width <= 0 {
		return fmt.Errorf("config: world.width must be positive, got %v", c.World.Width)
	}
	if c.World.Height <= 0 {
		return fmt.Errorf("config: world.height must be positive, got %v", c.World.Height)
	}
	if c.World.GridCellSize <= 0 {
		return fmt.Errorf("config: world.grid_cell_size must be positive, got %v", c.World.GridCellSize)
	}
	if c.World.TickSeconds <= 0 {
		return fmt.Errorf("config: world.tick_seconds must be positive, got %v", c.World.TickSeconds)
	}
	if c.Population.InitialLoners < 0 {
		return fmt.Errorf("config: population.initial_loners must not be negative, got %d", c.Population.InitialLoners)
	}
	if c.Population.DefaultCap < 0 {
		return fmt.Errorf("config: population.default_cap must not be negative, got %d", c.Population.DefaultCap)
	}
	for name, limit := range c.Population.Caps {
		if limit < 0 {
			return fmt.Errorf("config: population.caps[%s] must not be negative, got %d", name, limit)
		}
	}
	if c.Energy.DecayRate < 0 {
		return fmt.Errorf("config: energy.decay_rate must not be negative, got %v", c.Energy.DecayRate)
	}
	if c.Energy.MaxEnergy <= 0 {
		return fmt.Errorf("config: energy.max_energy must be positive, got %v", c.Energy.MaxEnergy)
	}
	if c.Food.Places < 0 {
		return fmt.Errorf("config: food.places must not be negative, got %d", c.Food.Places)
	}
	if c.Food.Capacity < 0 {
		return fmt.Errorf("config: food.capacity must not be negative, got %v", c.Food.Capacity)
	}
	if c.Food.RegenRate < 0 {
		return fmt.Errorf("config: food.regen_rate must not be negative, got %v", c.Food.RegenRate)
	}
	if c.Food.ConsumptionRate <= 0 {
		return fmt.Errorf("config: food.consumption_rate must be positive, got %v", c.Food.ConsumptionRate)
	}
	if c.Food.FeedingRadius <= 0 {
		return fmt.Errorf("config: food.feeding_radius must be positive, got %v", c.Food.FeedingRadius)
	}
	if c.Temperature.Min >= c.Temperature.Max {
		return fmt.Errorf("config: temperature.min (%v) must be below temperature.max (%v)", c.Temperature.Min, c.Temperature.Max)
	}
	if c.Temperature.Variance < 0 {
		return fmt.Errorf("config: temperature.variance must not be negative, got %v", c.Temperature.Variance)
	}
	if c.Temperature.CycleTicks < 0 {
		return fmt.Errorf("config: temperature.cycle_ticks must not be negative, got %d", c.Temperature.CycleTicks)
	}
	if c.Temperature.CycleTicks > 0 && c.Temperature.TransitionTicks <= 0 {
		return fmt.Errorf("config: temperature.transition_ticks must be positive when the cycle is enabled, got %d", c.Temperature.TransitionTicks)
	}
	if c.Combat.InteractionRange <= 0 {
		return fmt.Errorf("config: combat.interaction_range must be positive, got %v", c.Combat.InteractionRange)
	}
	if c.Combat.Penalty < 0 {
		return fmt.Errorf("config: combat.penalty must not be negative, got %v", c.Combat.Penalty)
	}
	if c.Combat.GainShare < 0 || c.Combat.GainShare > 1 {
		return fmt.Errorf("config: combat.gain_share must be in [0, 1], got %v", c.Combat.GainShare)
	}
	if c.Formation.Radius <= 0 {
		return fmt.Errorf("config: formation.radius must be positive, got %v", c.Formation.Radius)
	}
	if c.Formation.DispersionRate < 0 || c.Formation.DispersionRate > 1 {
		return fmt.Errorf("config: formation.dispersion_rate must be in [0, 1], got %v", c.Formation.DispersionRate)
	}
	if c.Spawn.RateScale < 0 {
		return fmt.Errorf("config: spawn.rate_scale must not be negative, got %v", c.Spawn.RateScale)
	}
	if c.Spawn.PlacementSigma < 0 {
		return fmt.Errorf("config: spawn.placement_sigma must not be negative, got %v", c.Spawn.PlacementSigma)
	}
	if c.Movement.Damping < 0 || c.Movement.Damping > 1 {
		return fmt.Errorf("config: movement.damping must be in [0, 1], got %v", c.Movement.Damping)
	}
	if c.Movement.NightFactor < 0 {
		return fmt.Errorf("config: movement.night_factor must not be negative, got %v", c.Movement.NightFactor)
	}
	if c.Disasters.Enabled {
		if c.Disasters.Probability < 0 || c.Disasters.Probability > 1 {
			return fmt.Errorf("config: disasters.probability must be in [0, 1], got %v", c.Disasters.Probability)
		}
		if c.Disasters.MinDuration <= 0 || c.Disasters.MaxDuration < c.Disasters.MinDuration {
			return fmt.Errorf("config: disasters duration range [%d, %d] is invalid", c.Disasters.MinDuration, c.Disasters.MaxDuration)
		}
	}
	largest := c.Food.FeedingRadius
	for _, r := range []float64{c.Combat.InteractionRange, c.Formation.Radius, c.Spawn.FoodRange} {
		if r > largest {
			largest = r
		}
	}
	if largest > c.World.GridCellSize {
		return fmt.Errorf("config: world.grid_cell_size (%v) must be at least the largest interaction radius (%v)", c.World.GridCellSize, largest)
	}
	return nil
}

// Cap returns the population cap for a species name.
func (c *Config) Cap(name string) int {
	if limit, ok := c.Population.Caps[name]; ok {
		return limit
	}
	return c.Population.DefaultCap
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
