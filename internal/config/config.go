// Package config provides the configuration schema, loader and hot-reload
// watcher for colliderkit editor sessions.
package config

import (
	"log/slog"
	"time"

	"github.com/MrWong99/colliderkit/internal/group"
)

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Level maps l to its [slog.Level]. Unknown and empty values map to info.
func (l LogLevel) Level() slog.Level {
	switch l {
	case LogDebug:
		return slog.LevelDebug
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Identity selects how stable entity identities are derived.
type Identity string

const (
	// IdentityHierarchy uses the dotted name[index] hierarchy path.
	IdentityHierarchy Identity = "hierarchy"

	// IdentityUUID hashes the hierarchy path into a name-based UUID.
	IdentityUUID Identity = "uuid"
)

// IsValid reports whether i is a recognised identity scheme.
func (i Identity) IsValid() bool {
	return i == IdentityHierarchy || i == IdentityUUID
}

// Config is the root configuration structure for colliderkit.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`

	// Identity selects the identity scheme used to key entities and presets.
	Identity Identity `yaml:"identity"`

	Preview PreviewConfig `yaml:"preview"`
	Editor  EditorConfig  `yaml:"editor"`
	Presets PresetsConfig `yaml:"presets"`
	Session SessionConfig `yaml:"session"`
}

// PreviewConfig holds the global preview settings. Opacities are slider
// values in [0, 1] and are mapped through the exponential opacity curve
// before they reach a preview.
type PreviewConfig struct {
	Show            bool    `yaml:"show"`
	XRay            bool    `yaml:"xray"`
	Opacity         float32 `yaml:"opacity"`
	SelectedOpacity float32 `yaml:"selected_opacity"`
}

// EditorConfig configures the filter lists.
type EditorConfig struct {
	// InitialGroup is selected when a session starts. It falls back to "All"
	// when the archetype has no such group.
	InitialGroup string `yaml:"initial_group"`

	// Groups overrides the archetype group list when non-empty.
	Groups []GroupConfig `yaml:"groups"`
}

// GroupConfig is one custom group.
type GroupConfig struct {
	ID      string `yaml:"id"`
	Pattern string `yaml:"pattern"`
}

// PresetsConfig controls preset files.
type PresetsConfig struct {
	// Dir is where presets are saved and listed.
	Dir string `yaml:"dir"`

	// IncludeAutoColliders adds the autoColliders section to saved presets.
	IncludeAutoColliders bool `yaml:"include_auto_colliders"`

	// OnlyModified saves only entities that deviate from their initial values.
	OnlyModified bool `yaml:"only_modified"`
}

// SessionConfig configures the headless session loop.
type SessionConfig struct {
	// Tick is the fixed step between editor ticks.
	Tick time.Duration `yaml:"tick"`

	// MetricsAddr is the listen address of the /metrics endpoint. Empty
	// disables it.
	MetricsAddr string `yaml:"metrics_addr"`
}

// Default returns the configuration used when no file is given. Decoding a
// file starts from these values, so omitted keys keep their defaults.
func Default() *Config {
	return &Config{
		LogLevel: LogInfo,
		Identity: IdentityHierarchy,
		Preview: PreviewConfig{
			XRay:            true,
			Opacity:         0.001,
			SelectedOpacity: 0.3,
		},
		Editor: EditorConfig{
			InitialGroup: group.DefaultInitialID,
		},
		Presets: PresetsConfig{
			Dir:                  "saves/colliders",
			IncludeAutoColliders: true,
		},
		Session: SessionConfig{
			Tick: 20 * time.Millisecond,
		},
	}
}

// GroupSpecs converts the custom group list for [group.Compile].
func (c EditorConfig) GroupSpecs() []group.Spec {
	specs := make([]group.Spec, len(c.Groups))
	for i, g := range c.Groups {
		specs[i] = group.Spec{ID: g.ID, Pattern: g.Pattern}
	}
	return specs
}
