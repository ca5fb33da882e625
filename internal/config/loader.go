package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// FileName is the config file name looked up in the search directories.
const FileName = "solar.yaml"

// Load loads the configuration.
// Search order: customPath -> ~/.solar/config.yaml -> ./configs/solar.yaml -> embedded default
// Files are applied on top of the embedded default, so partial documents are fine.
func Load(customPath string) (Config, error) {
	cfg := embeddedDefault()

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, cfg.Validate()
	}

	// Try user config directory
	if userCfgPath := userConfigPath("config.yaml"); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if loaded, ok := overlay(cfg, data); ok {
				return loaded, loaded.Validate()
			}
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile(filepath.Join("configs", FileName)); err == nil {
		if loaded, ok := overlay(cfg, data); ok {
			return loaded, loaded.Validate()
		}
	}

	return cfg, nil
}

// Parse decodes data on top of the embedded default.
func Parse(data []byte) (Config, error) {
	cfg := embeddedDefault()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate reports the first inconsistent value.
func (c Config) Validate() error {
	switch {
	case c.Server.Listen == "":
		return fmt.Errorf("%w: server.listen is empty", ErrInvalid)
	case c.Host.TickRate <= 0:
		return fmt.Errorf("%w: host.tick_rate must be positive, got %d", ErrInvalid, c.Host.TickRate)
	case c.Server.IdleTimeout <= 0:
		return fmt.Errorf("%w: server.idle_timeout must be positive", ErrInvalid)
	case c.Scene.Preset == "":
		return fmt.Errorf("%w: scene.preset is empty", ErrInvalid)
	}

	seen := make(map[string]bool)
	var check func(bodies []BodyConfig) error
	check = func(bodies []BodyConfig) error {
		for _, b := range bodies {
			if b.Name == "" {
				return fmt.Errorf("%w: body without a name", ErrInvalid)
			}
			if seen[b.Name] {
				return fmt.Errorf("%w: duplicate body %q", ErrInvalid, b.Name)
			}
			seen[b.Name] = true
			if b.Distance < 0 || b.Scale < 0 {
				return fmt.Errorf("%w: body %q has negative distance or scale", ErrInvalid, b.Name)
			}
			if err := check(b.Moons); err != nil {
				return err
			}
		}
		return nil
	}
	return check(c.Scene.Bodies)
}

func embeddedDefault() Config {
	var cfg Config
	if err := yaml.Unmarshal(defaultYAML, &cfg); err != nil {
		return Default() // Fallback to hardcoded if embed fails
	}
	return cfg
}

func overlay(base Config, data []byte) (Config, bool) {
	if err := yaml.Unmarshal(data, &base); err != nil {
		return Config{}, false
	}
	return base, true
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".solar", filename)
}
