// Package main provides CMA-ES search for simulation parameters that
// keep all four species coexisting.
package main

import (
	"github.com/pthm-cable/astras/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
// World geometry and the species dataset stay fixed; the search moves
// the economy and the social dynamics.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Energy economy
			{Name: "decay_rate", Path: "energy.decay_rate", Min: 0.005, Max: 0.2, Default: 0.05},
			// Food
			{Name: "regen_rate", Path: "food.regen_rate", Min: 0.1, Max: 3.0, Default: 0.5},
			{Name: "consumption_rate", Path: "food.consumption_rate", Min: 0.2, Max: 4.0, Default: 1.0},
			{Name: "feeding_radius", Path: "food.feeding_radius", Min: 10, Max: 60, Default: 20},
			// Combat
			{Name: "aggression_threshold", Path: "combat.aggression_threshold", Min: 0.2, Max: 0.95, Default: 0.5},
			{Name: "combat_penalty", Path: "combat.penalty", Min: 1.0, Max: 20.0, Default: 5.0},
			{Name: "gain_share", Path: "combat.gain_share", Min: 0.0, Max: 1.0, Default: 0.5},
			// Formation
			{Name: "formation_radius", Path: "formation.radius", Min: 20, Max: 120, Default: 50},
			{Name: "dispersion_rate", Path: "formation.dispersion_rate", Min: 0.0, Max: 0.02, Default: 0.002},
			// Spawning
			{Name: "spawn_rate_scale", Path: "spawn.rate_scale", Min: 0.2, Max: 5.0, Default: 1.0},
			{Name: "placement_sigma", Path: "spawn.placement_sigma", Min: 5, Max: 100, Default: 30},
			// Movement
			{Name: "loner_speed", Path: "movement.loner_speed", Min: 0.5, Max: 6.0, Default: 2.0},
			{Name: "clan_speed", Path: "movement.clan_speed", Min: 0.3, Max: 4.0, Default: 1.5},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := v[i]
		if val < spec.Min {
			val = spec.Min
		}
		if val > spec.Max {
			val = spec.Max
		}
		clamped[i] = val
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)
	i := 0

	cfg.Energy.DecayRate = clamped[i]
	i++

	cfg.Food.RegenRate = clamped[i]
	i++
	cfg.Food.ConsumptionRate = clamped[i]
	i++
	cfg.Food.FeedingRadius = clamped[i]
	i++

	cfg.Combat.AggressionThreshold = clamped[i]
	i++
	cfg.Combat.Penalty = clamped[i]
	i++
	cfg.Combat.GainShare = clamped[i]
	i++

	cfg.Formation.Radius = clamped[i]
	i++
	cfg.Formation.DispersionRate = clamped[i]
	i++

	cfg.Spawn.RateScale = clamped[i]
	i++
	cfg.Spawn.PlacementSigma = clamped[i]
	i++

	cfg.Movement.LonerSpeed = clamped[i]
	i++
	cfg.Movement.ClanSpeed = clamped[i]
}

// ExtractFromConfig extracts current parameter values from a Config.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.Energy.DecayRate,
		cfg.Food.RegenRate,
		cfg.Food.ConsumptionRate,
		cfg.Food.FeedingRadius,
		cfg.Combat.AggressionThreshold,
		cfg.Combat.Penalty,
		cfg.Combat.GainShare,
		cfg.Formation.Radius,
		cfg.Formation.DispersionRate,
		cfg.Spawn.RateScale,
		cfg.Spawn.PlacementSigma,
		cfg.Movement.LonerSpeed,
		cfg.Movement.ClanSpeed,
	}
}
