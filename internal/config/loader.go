package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/MrWong99/colliderkit/internal/group"
)

// Load reads the YAML configuration file at path and returns a validated [Config].
// It is a convenience wrapper around [LoadFromReader] and [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r on top of [Default] and
// validates the result. An empty document yields the defaults.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.LogLevel != "" && !cfg.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("log_level %q is invalid; valid values: debug, info, warn, error", cfg.LogLevel))
	}
	if cfg.Identity != "" && !cfg.Identity.IsValid() {
		errs = append(errs, fmt.Errorf("identity %q is invalid; valid values: hierarchy, uuid", cfg.Identity))
	}

	if v := cfg.Preview.Opacity; v < 0 || v > 1 {
		errs = append(errs, fmt.Errorf("preview.opacity %.3f is out of range [0, 1]", v))
	}
	if v := cfg.Preview.SelectedOpacity; v < 0 || v > 1 {
		errs = append(errs, fmt.Errorf("preview.selected_opacity %.3f is out of range [0, 1]", v))
	}

	seen := make(map[string]int, len(cfg.Editor.Groups))
	for i, g := range cfg.Editor.Groups {
		prefix := fmt.Sprintf("editor.groups[%d]", i)
		if g.ID == "" {
			errs = append(errs, fmt.Errorf("%s.id is required", prefix))
			continue
		}
		if prev, ok := seen[g.ID]; ok {
			errs = append(errs, fmt.Errorf("%s.id %q is a duplicate of editor.groups[%d]", prefix, g.ID, prev))
			continue
		}
		seen[g.ID] = i
		if _, err := group.New(g.ID, g.Pattern); err != nil {
			errs = append(errs, fmt.Errorf("%s.pattern: %w", prefix, err))
		}
	}

	if cfg.Session.Tick <= 0 {
		errs = append(errs, fmt.Errorf("session.tick %s must be positive", cfg.Session.Tick))
	}

	return errors.Join(errs...)
}
