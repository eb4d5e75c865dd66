package config

import (
	"fmt"
	"time"

	"github.com/spf13/afero"
)

// Settings are the render options a config file can set.
type Settings struct {
	// Mode is the transform: q, qq, w or ww. Default "qq".
	Mode string

	// Missing is the undefined-variable policy: error, empty or keep.
	// Default "error".
	Missing string

	// HashEscapeInWords accepts \# in interpolated word mode. Default true.
	HashEscapeInWords bool

	// Cache is the path of a SQLite render cache. Empty disables caching.
	Cache string

	// CacheTTL is how long a cached render stays valid. Zero means forever.
	CacheTTL time.Duration

	// VarsFiles lists YAML or JSON files merged into Vars, in order.
	VarsFiles []string

	// Vars are the variables available to interpolations.
	Vars map[string]any
}

// DefaultSettings returns the settings used when no config file is given.
func DefaultSettings() Settings {
	return Settings{
		Mode:              "qq",
		Missing:           "error",
		HashEscapeInWords: true,
		Vars:              map[string]any{},
	}
}

// Settings extracts Settings from the config, using DefaultSettings for
// anything unset.
func (c Config) Settings() Settings {
	d := DefaultSettings()
	s := Settings{
		Mode:              c.String("mode", d.Mode),
		Missing:           c.String("missing", d.Missing),
		HashEscapeInWords: c.Bool("hash_escape_in_words", d.HashEscapeInWords),
		Cache:             c.String("cache", d.Cache),
		CacheTTL:          c.Duration("cache_ttl", d.CacheTTL),
		VarsFiles:         c.StringSlice("vars_files", nil),
		Vars:              c.Map("vars").Raw(),
	}
	return s
}

// LoadVars reads each file on fs and merges its top-level keys into one
// map. Later files override earlier ones.
func LoadVars(fs afero.Fs, paths ...string) (map[string]any, error) {
	vars := make(map[string]any)
	for _, p := range paths {
		c, err := FromFile(fs, p)
		if err != nil {
			return nil, fmt.Errorf("load vars %s: %w", p, err)
		}
		for k, v := range c.Raw() {
			vars[k] = v
		}
	}
	return vars, nil
}
