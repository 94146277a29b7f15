package types

import "fmt"

// EnergyLevel represents a coarse estimate of user vitality
type EnergyLevel string

const (
	EnergyLow    EnergyLevel = "low"
	EnergyMedium EnergyLevel = "medium"
	EnergyHigh   EnergyLevel = "high"
)

// AllEnergyLevels returns all valid energy levels
func AllEnergyLevels() []EnergyLevel {
	return []EnergyLevel{
		EnergyLow,
		EnergyMedium,
		EnergyHigh,
	}
}

// IsValid checks if the energy level is valid
func (e EnergyLevel) IsValid() bool {
	switch e {
	case EnergyLow, EnergyMedium, EnergyHigh:
		return true
	default:
		return false
	}
}

// String returns the string representation of the energy level
func (e EnergyLevel) String() string {
	return string(e)
}

// ParseEnergyLevel parses a string into an EnergyLevel
func ParseEnergyLevel(s string) (EnergyLevel, error) {
	level := EnergyLevel(s)
	if !level.IsValid() {
		return "", fmt.Errorf("invalid energy level: %s", s)
	}
	return level, nil
}
