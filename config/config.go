// Package config loads the photoidx settings: embedded defaults, then an
// optional user file on top.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/RKrahl/photoidx/logging"
)

const appName = "photoidx"

//go:embed defaults.yaml
var defaults []byte

type Config struct {
	Checksums []string       `koanf:"checksums"`
	GPSRadius float64        `koanf:"gpsradius"`
	Log       logging.Config `koanf:"log"`
	Cache     CacheConfig    `koanf:"cache"`
	Serve     ServeConfig    `koanf:"serve"`
}

type CacheConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

type ServeConfig struct {
	Listen string `koanf:"listen"`
}

// DefaultPath returns $XDG_CONFIG_HOME/photoidx/config.yaml or the
// platform equivalent, empty if there is no config directory.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, appName, "config.yaml")
}

// Load reads the defaults and then the file at path. An explicitly named
// file must exist, the default location may be missing.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(defaults), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		_, err := os.Stat(path)
		switch {
		case err == nil:
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config %s: %w", path, err)
			}
		case explicit || !errors.Is(err, fs.ErrNotExist):
			return nil, err
		}
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if cfg.Cache.Path == "" {
		cfg.Cache.Path = defaultCachePath()
	}
	if cfg.GPSRadius <= 0 {
		return nil, fmt.Errorf("invalid config: gpsradius must be positive, got %g", cfg.GPSRadius)
	}
	return &cfg, nil
}

func defaultCachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, appName, "sums.db")
}
