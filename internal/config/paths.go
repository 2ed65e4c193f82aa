package config

import (
	"os"
	"path/filepath"
)

const defaultBaseDir = ".neutro"

// Paths is the on-disk layout under the neutro home directory.
type Paths struct {
	Base   string
	Config string // config.yaml
	Data   string // persistent library catalog
	Logs   string // console.log while the terminal UI owns the screen
}

// ResolvePaths roots the layout at NEUTRO_HOME, or ~/.neutro when unset.
func ResolvePaths() (Paths, error) {
	base := os.Getenv("NEUTRO_HOME")
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

func (p Paths) LibraryFile() string {
	return filepath.Join(p.Data, "library.db")
}

// EnsureDirs creates the layout with owner-only permissions.
func (p Paths) EnsureDirs() error {
	for _, d := range []string{p.Base, p.Data, p.Logs} {
		if err := os.MkdirAll(d, 0o700); err != nil {
			return err
		}
	}
	return nil
}
