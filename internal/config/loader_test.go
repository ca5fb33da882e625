package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestEmbeddedDefaultMatchesHardcoded(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse(nil) failed: %v", err)
	}

	if diff := cmp.Diff(Default(), cfg, cmpopts.EquateApprox(0, 1e-4)); diff != "" {
		t.Errorf("embedded default differs from Default() (-want +got):\n%s", diff)
	}
}

func TestDefaultSolarLayout(t *testing.T) {
	sc := DefaultSceneConfig()

	if len(sc.Bodies) != 9 {
		t.Fatalf("Expected 9 bodies, got %d", len(sc.Bodies))
	}

	var earth *BodyConfig
	for i := range sc.Bodies {
		if sc.Bodies[i].Name == "Earth" {
			earth = &sc.Bodies[i]
		}
	}
	if earth == nil {
		t.Fatal("Earth not found")
	}
	if earth.AxialTilt != 23 || earth.Spin != -100 {
		t.Errorf("Unexpected Earth values: %+v", earth)
	}
	if len(earth.Moons) != 1 || earth.Moons[0].Name != "Moon" {
		t.Errorf("Expected Earth to carry the Moon, got %+v", earth.Moons)
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return path
}

func TestLoadCustomPathOverlaysDefaults(t *testing.T) {
	path := writeFile(t, t.TempDir(), "custom.yaml", `
host:
  tick_rate: 30
server:
  idle_timeout: 45s
scene:
  preset: empty
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Host.TickRate != 30 {
		t.Errorf("TickRate = %d, want 30", cfg.Host.TickRate)
	}
	if cfg.Server.IdleTimeout != 45*time.Second {
		t.Errorf("IdleTimeout = %v, want 45s", cfg.Server.IdleTimeout)
	}
	if cfg.Scene.Preset != "empty" {
		t.Errorf("Preset = %q, want empty", cfg.Scene.Preset)
	}

	// Untouched values keep their defaults
	if cfg.Server.Listen != ":32000" {
		t.Errorf("Listen = %q, want :32000", cfg.Server.Listen)
	}
	if len(cfg.Scene.Bodies) != 9 {
		t.Errorf("Expected default bodies to survive, got %d", len(cfg.Scene.Bodies))
	}
}

func TestLoadCustomPathErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}

	bad := writeFile(t, dir, "bad.yaml", "host: [unterminated")
	if _, err := Load(bad); err == nil {
		t.Error("Expected error for malformed YAML")
	}

	invalid := writeFile(t, dir, "invalid.yaml", "host:\n  tick_rate: 0\n")
	if _, err := Load(invalid); !errors.Is(err, ErrInvalid) {
		t.Errorf("Expected ErrInvalid, got %v", err)
	}
}

func TestLoadSearchOrder(t *testing.T) {
	home := t.TempDir()
	work := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(work)

	// Nothing on disk: embedded default
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Host.TickRate != 60 {
		t.Errorf("TickRate = %d, want 60", cfg.Host.TickRate)
	}

	// Local configs directory
	writeFile(t, work, filepath.Join("configs", FileName), "host:\n  tick_rate: 20\n")
	cfg, err = Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Host.TickRate != 20 {
		t.Errorf("TickRate = %d, want 20 from ./configs", cfg.Host.TickRate)
	}

	// User config wins over the local one
	writeFile(t, home, filepath.Join(".solar", "config.yaml"), "host:\n  tick_rate: 10\n")
	cfg, err = Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Host.TickRate != 10 {
		t.Errorf("TickRate = %d, want 10 from ~/.solar", cfg.Host.TickRate)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default", func(*Config) {}, false},
		{"empty listen", func(c *Config) { c.Server.Listen = "" }, true},
		{"zero tick rate", func(c *Config) { c.Host.TickRate = 0 }, true},
		{"zero idle timeout", func(c *Config) { c.Server.IdleTimeout = 0 }, true},
		{"empty preset", func(c *Config) { c.Scene.Preset = "" }, true},
		{"unnamed body", func(c *Config) { c.Scene.Bodies[0].Name = "" }, true},
		{"negative distance", func(c *Config) { c.Scene.Bodies[0].Distance = -1 }, true},
		{"duplicate body", func(c *Config) { c.Scene.Bodies[1].Name = c.Scene.Bodies[0].Name }, true},
		{"moon clashes with planet", func(c *Config) {
			c.Scene.Bodies[2].Moons[0].Name = "Mars"
		}, true},
		{"no bodies", func(c *Config) { c.Scene.Bodies = nil }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalid) {
				t.Errorf("Expected ErrInvalid, got %v", err)
			}
		})
	}
}
