// Package config loads the library's tunable size constants from TOML.
// Everything here has a working default; a config file only needs the
// keys it wants to override.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/textloom/textloom/rope"
)

// ErrInvalidConfig indicates configuration values outside their
// allowed bounds.
var ErrInvalidConfig = errors.New("invalid config")

// HistoryConfig holds undo/redo tuning.
type HistoryConfig struct {
	// MaxEntries bounds the undo stack.
	MaxEntries int `toml:"max_entries"`

	// GroupWithinMS merges edits recorded within this many
	// milliseconds into one undo step.
	GroupWithinMS int `toml:"group_within_ms"`
}

// GroupWithin returns the grouping window as a duration.
func (h HistoryConfig) GroupWithin() time.Duration {
	return time.Duration(h.GroupWithinMS) * time.Millisecond
}

// RopeConfig holds the rope's structural size constants.
type RopeConfig struct {
	MinChunk         int `toml:"min_chunk"`
	MaxChunk         int `toml:"max_chunk"`
	MaxChunksPerLeaf int `toml:"max_chunks_per_leaf"`
	MaxChildren      int `toml:"max_children"`
}

// Config is the full loadable configuration.
type Config struct {
	Rope    RopeConfig    `toml:"rope"`
	History HistoryConfig `toml:"history"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	t := rope.DefaultTuning()
	return Config{
		Rope: RopeConfig{
			MinChunk:         t.MinChunk,
			MaxChunk:         t.MaxChunk,
			MaxChunksPerLeaf: t.MaxChunksPerLeaf,
			MaxChildren:      t.MaxChildren,
		},
		History: HistoryConfig{
			MaxEntries:    1000,
			GroupWithinMS: 500,
		},
	}
}

// Parse decodes TOML data over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads and parses the TOML file at path. A missing file is not
// an error; the defaults are returned.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configured bounds.
func (c Config) Validate() error {
	if err := c.Tuning().Validate(); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, err)
	}
	if c.History.MaxEntries < 1 {
		return fmt.Errorf("%w: history max_entries %d", ErrInvalidConfig, c.History.MaxEntries)
	}
	if c.History.GroupWithinMS < 0 {
		return fmt.Errorf("%w: history group_within_ms %d", ErrInvalidConfig, c.History.GroupWithinMS)
	}
	return nil
}

// Tuning converts the rope section into the tuning the rope package
// consumes.
func (c Config) Tuning() rope.Tuning {
	return rope.Tuning{
		MinChunk:         c.Rope.MinChunk,
		MaxChunk:         c.Rope.MaxChunk,
		MaxChunksPerLeaf: c.Rope.MaxChunksPerLeaf,
		MaxChildren:      c.Rope.MaxChildren,
	}
}
