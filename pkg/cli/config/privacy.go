package config

import (
	"github.com/urfave/cli/v3"

	"github.com/eudai-lab/eudaimon/pkg/service/privacy"
)

// Privacy holds CLI flags for personal data redaction
type Privacy struct {
	enabled bool
}

// Flags returns CLI flags for privacy configuration
func (p *Privacy) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:        "privacy-mode",
			Usage:       "Redact personal identifiers from persisted snapshots and logs",
			Value:       true,
			Sources:     cli.EnvVars("EUDAIMON_PRIVACY_MODE"),
			Destination: &p.enabled,
		},
	}
}

// Configure builds the redactor
func (p *Privacy) Configure() *privacy.Redactor {
	return privacy.New(p.enabled)
}
