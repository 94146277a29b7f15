package types

import "fmt"

// TrendLabel describes the direction of the life quality score
// relative to the previous record
type TrendLabel string

const (
	TrendImproving TrendLabel = "improving"
	TrendSteady    TrendLabel = "steady"
	TrendDeclining TrendLabel = "declining"
)

// AllTrendLabels returns all valid trend labels
func AllTrendLabels() []TrendLabel {
	return []TrendLabel{
		TrendImproving,
		TrendSteady,
		TrendDeclining,
	}
}

// IsValid checks if the trend label is valid
func (t TrendLabel) IsValid() bool {
	switch t {
	case TrendImproving, TrendSteady, TrendDeclining:
		return true
	default:
		return false
	}
}

// String returns the string representation of the trend label
func (t TrendLabel) String() string {
	return string(t)
}

// ParseTrendLabel parses a string into a TrendLabel
func ParseTrendLabel(s string) (TrendLabel, error) {
	label := TrendLabel(s)
	if !label.IsValid() {
		return "", fmt.Errorf("invalid trend label: %s", s)
	}
	return label, nil
}
