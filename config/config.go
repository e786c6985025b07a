package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/lixenwraith/arcade-core/audio"
	"github.com/lixenwraith/arcade-core/loop"
)

// Config is the runtime configuration for a hosted game
type Config struct {
	Loop  loop.Config   `toml:"loop"`
	Audio audio.Options `toml:"audio"`
}

// Default returns nominal pacing and full audio
func Default() Config {
	return Config{
		Loop:  loop.DefaultConfig(),
		Audio: audio.DefaultOptions(),
	}
}

// Load layers a TOML file over the defaults. A missing file yields the
// defaults; a malformed one is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %q: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %q: %w", path, err)
	}
	return cfg, nil
}
