package config

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/eudai-lab/eudaimon/pkg/content"
	"github.com/eudai-lab/eudaimon/pkg/utils/logging"
)

// Library holds CLI flags for the content library source
type Library struct {
	path string
}

// Flags returns CLI flags for library configuration
func (l *Library) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "library-path",
			Usage:       "Path to a content library TOML file (embedded library when empty)",
			Sources:     cli.EnvVars("EUDAIMON_LIBRARY_PATH"),
			Destination: &l.path,
		},
	}
}

// Configure loads the content library from the configured path, or the
// embedded default when no path is set.
func (l *Library) Configure() (*content.Library, error) {
	if l.path == "" {
		lib, err := content.Default()
		if err != nil {
			return nil, goerr.Wrap(err, "failed to load embedded content library")
		}
		logging.Default().Info("Using embedded content library", "items", lib.Len())
		return lib, nil
	}

	lib, err := content.Load(l.path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load content library", goerr.V("path", l.path))
	}
	logging.Default().Info("Loaded content library", "path", l.path, "items", lib.Len())
	return lib, nil
}
