package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
)

//go:embed species.json
var speciesJSON []byte

// Stance values a species dataset may declare toward another species.
const (
	StanceAggressive = "aggressive"
	StanceFriendly   = "friendly"
	StanceNeutral    = "neutral"
	StanceFearful    = "fearful"
)

// Species describes one of the four subspecies. The dataset is loaded
// once at setup and never mutated.
type Species struct {
	Name             string            `json:"name"`
	BaseEnergy       float64           `json:"base_energy"`
	Aggression       float64           `json:"aggression"`
	ReproductionRate float64           `json:"reproduction_rate"`
	Color            string            `json:"color"`
	Interactions     map[string]string `json:"interactions"`
}

// LoadSpecies reads the species dataset from a JSON file, or the
// embedded dataset when path is empty.
func LoadSpecies(path string) ([]Species, error) {
	data := speciesJSON
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading species file: %w", err)
		}
	}

	var species []Species
	if err := json.Unmarshal(data, &species); err != nil {
		return nil, fmt.Errorf("parsing species data: %w", err)
	}
	if err := ValidateSpecies(species); err != nil {
		return nil, err
	}
	return species, nil
}

// ValidateSpecies checks the dataset invariants: exactly four species,
// unique names, parameter domains, and interaction targets that name
// known species with known stances.
func ValidateSpecies(species []Species) error {
	if len(species) != 4 {
		return fmt.Errorf("species: dataset must contain exactly 4 species, got %d", len(species))
	}

	names := make(map[string]bool, len(species))
	for _, s := range species {
		if s.Name == "" {
			return fmt.Errorf("species: empty name")
		}
		if names[s.Name] {
			return fmt.Errorf("species: duplicate name %q", s.Name)
		}
		names[s.Name] = true
	}

	for _, s := range species {
		if s.BaseEnergy <= 0 {
			return fmt.Errorf("species %s: base_energy must be positive, got %v", s.Name, s.BaseEnergy)
		}
		if s.Aggression < 0 || s.Aggression > 1 {
			return fmt.Errorf("species %s: aggression must be in [0, 1], got %v", s.Name, s.Aggression)
		}
		if s.ReproductionRate < 0 {
			return fmt.Errorf("species %s: reproduction_rate must not be negative, got %v", s.Name, s.ReproductionRate)
		}
		for target, stance := range s.Interactions {
			if !names[target] {
				return fmt.Errorf("species %s: interaction target %q is not a known species", s.Name, target)
			}
			switch stance {
			case StanceAggressive, StanceFriendly, StanceNeutral, StanceFearful:
			default:
				return fmt.Errorf("species %s: unknown stance %q toward %s", s.Name, stance, target)
			}
		}
	}
	return nil
}
