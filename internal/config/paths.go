package config

import (
	"os"
	"path/filepath"
)

const defaultBaseDir = ".chatwidget"

// Paths holds resolved filesystem paths for widget client data.
type Paths struct {
	Base   string // ~/.chatwidget
	Config string // ~/.chatwidget/config.yaml
	Data   string // ~/.chatwidget/data
	Logs   string // ~/.chatwidget/logs
}

// ResolvePaths computes all standard paths from the home directory.
// If CHATWIDGET_HOME is set, it overrides the default base directory.
func ResolvePaths() (Paths, error) {
	base := os.Getenv("CHATWIDGET_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Paths{}, err
		}
		base = filepath.Join(home, defaultBaseDir)
	}

	return Paths{
		Base:   base,
		Config: filepath.Join(base, "config.yaml"),
		Data:   filepath.Join(base, "data"),
		Logs:   filepath.Join(base, "logs"),
	}, nil
}

// EnsureDirs creates all standard directories if they don't exist.
func (p Paths) EnsureDirs() error {
	for _, d := range []string{p.Base, p.Data, p.Logs} {
		if err := os.MkdirAll(d, 0o700); err != nil {
			return err
		}
	}
	return nil
}

// StateDBPath returns the configured sqlite path, or the default location
// under the data directory.
func (p Paths) StateDBPath(cfg StateConfig) string {
	if cfg.SQLitePath != "" {
		return cfg.SQLitePath
	}
	return filepath.Join(p.Data, "state.db")
}
