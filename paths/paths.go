package paths

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// Paths locates configuration and data storage for a game
type Paths struct {
	// ConfigDir holds configuration files
	ConfigDir string
	// DataDir holds data files (scores, replays)
	DataDir string
}

// New constructs paths based on a given source tree. A binary running from
// an install tree (a bin/ directory) stores per-user files under the XDG
// base directories named after the executable; a build-tree binary keeps
// everything in the source tree.
func New(sourcePath string) (*Paths, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("locate executable: %w", err)
	}

	if filepath.Base(filepath.Dir(exe)) == "bin" {
		return fromInstall(filepath.Base(exe)), nil
	}
	return fromBuild(sourcePath), nil
}

// fromInstall resolves per-user directories for an installed binary
func fromInstall(appName string) *Paths {
	return &Paths{
		ConfigDir: filepath.Join(xdg.ConfigHome, appName),
		DataDir:   filepath.Join(xdg.DataHome, appName),
	}
}

// fromBuild keeps both directories in the source tree
func fromBuild(path string) *Paths {
	return &Paths{
		ConfigDir: path,
		DataDir:   path,
	}
}

// ConfigFile returns the path of a named file in the config directory
func (p *Paths) ConfigFile(name string) string {
	return filepath.Join(p.ConfigDir, name)
}

// DataFile returns the path of a named file in the data directory
func (p *Paths) DataFile(name string) string {
	return filepath.Join(p.DataDir, name)
}

// Ensure creates both directories if missing
func (p *Paths) Ensure() error {
	if err := os.MkdirAll(p.ConfigDir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.MkdirAll(p.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	return nil
}
