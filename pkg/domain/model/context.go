package model

import (
	"strconv"
	"strings"

	"github.com/eudai-lab/eudaimon/pkg/domain/types"
)

const (
	// DefaultAvailableMinutes is assumed when the caller does not state a time budget
	DefaultAvailableMinutes = 15

	// MaxAvailableMinutes bounds the time budget a single plan may consume
	MaxAvailableMinutes = 480
)

// Recognized preference keys. Unknown keys are preserved but never
// interpreted by core logic.
const (
	PrefAvailableTimeMin = "available_time_min"
	PrefFocusArea        = "focus_area"
	PrefTimeOfDay        = "time_of_day"
)

// Preferences is the typed view of the caller's key=value preference pairs
type Preferences struct {
	AvailableMinutes int
	FocusArea        string
	TimeOfDay        string
	Unknown          map[string]string
}

// ParsePreferences converts raw "key=value" pairs into Preferences.
// Duplicate keys follow last-wins semantics, malformed pairs are skipped.
func ParsePreferences(pairs []string) Preferences {
	prefs := Preferences{
		AvailableMinutes: DefaultAvailableMinutes,
		Unknown:          map[string]string{},
	}

	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(strings.ToLower(key))
		value = strings.TrimSpace(value)
		if key == "" || value == "" {
			continue
		}

		switch key {
		case PrefAvailableTimeMin:
			if n, err := strconv.Atoi(value); err == nil {
				if n < 1 {
					n = 1
				}
				if n > MaxAvailableMinutes {
					n = MaxAvailableMinutes
				}
				prefs.AvailableMinutes = n
			}
		case PrefFocusArea:
			prefs.FocusArea = strings.ToLower(value)
		case PrefTimeOfDay:
			prefs.TimeOfDay = strings.ToLower(value)
		default:
			prefs.Unknown[key] = value
		}
	}

	return prefs
}

// UserContext carries the per-request user input. It is immutable for
// the lifetime of a pipeline run.
type UserContext struct {
	UserID      types.UserID `json:"user_id"`
	Mood        string       `json:"mood,omitempty" masq:"secret"`
	Timezone    string       `json:"timezone,omitempty"`
	Preferences Preferences  `json:"-"`

	// RawPreferences holds the original key=value pairs as received
	RawPreferences []string `json:"preferences,omitempty"`
}

// NewUserContext builds a UserContext with preferences parsed eagerly
// at the boundary.
func NewUserContext(userID types.UserID, mood, timezone string, rawPrefs []string) UserContext {
	return UserContext{
		UserID:         userID,
		Mood:           mood,
		Timezone:       timezone,
		RawPreferences: rawPrefs,
		Preferences:    ParsePreferences(rawPrefs),
	}
}
