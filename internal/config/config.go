// Package config provides YAML-based configuration loading for the scene
// host, the console client and the solar scene preset.
package config

import "time"

// Config is the root configuration document.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Client  ClientConfig  `yaml:"client"`
	Host    HostConfig    `yaml:"host"`
	SSH     SSHConfig     `yaml:"ssh"`
	Storage StorageConfig `yaml:"storage"`
	Logging LoggingConfig `yaml:"logging"`
	Scene   SceneConfig   `yaml:"scene"`
}

// ServerConfig defines the UDP listener.
type ServerConfig struct {
	Listen        string        `yaml:"listen"`
	IdleTimeout   time.Duration `yaml:"idle_timeout"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
	MessageRate   float64       `yaml:"message_rate"` // Messages per second per session
	MessageBurst  int           `yaml:"message_burst"`
	EventBuffer   int           `yaml:"event_buffer"`
}

// ClientConfig defines console client transport settings.
type ClientConfig struct {
	HandshakeTimeout time.Duration `yaml:"handshake_timeout"`
	RetryInterval    time.Duration `yaml:"retry_interval"`
	MaxRetries       int           `yaml:"max_retries"`
	FlushTimeout     time.Duration `yaml:"flush_timeout"`
}

// HostConfig defines the scene loop.
type HostConfig struct {
	TickRate    int `yaml:"tick_rate"` // Hz
	HistorySize int `yaml:"history_size"`
}

// SSHConfig defines the operator console. An empty Listen disables it.
type SSHConfig struct {
	Listen  string `yaml:"listen"`
	HostKey string `yaml:"host_key"`
}

// StorageConfig defines the command journal.
type StorageConfig struct {
	Path   string `yaml:"path"`
	Replay bool   `yaml:"replay"` // Re-apply journaled commands on startup
}

// LoggingConfig defines log output.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"` // Empty logs to stderr
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// SceneConfig selects the preset and describes the solar system.
type SceneConfig struct {
	Preset    string        `yaml:"preset"`
	Resources string        `yaml:"resources"` // Data root; empty skips existence checks
	Plane     PlaneConfig   `yaml:"plane"`
	Sun       SunConfig     `yaml:"sun"`
	Bodies    []BodyConfig  `yaml:"bodies"`
	Lights    []LightConfig `yaml:"lights"`
	Camera    [3]float32    `yaml:"camera"`
}

// PlaneConfig is the translucent ecliptic disk.
type PlaneConfig struct {
	Scale    [3]float32 `yaml:"scale"`
	Model    string     `yaml:"model"`
	Material string     `yaml:"material"`
}

// SunConfig defines the central body.
type SunConfig struct {
	Name     string  `yaml:"name"`
	Scale    float32 `yaml:"scale"`
	Model    string  `yaml:"model"`
	Material string  `yaml:"material"`
}

// BodyConfig defines a body orbiting the sun or, for moons, its planet.
// Angles are degrees, speeds are degrees per second around Y.
type BodyConfig struct {
	Name       string       `yaml:"name"`
	Distance   float32      `yaml:"distance"`
	Scale      float32      `yaml:"scale"`
	OrbitTilt  float32      `yaml:"orbit_tilt"`
	AxialTilt  float32      `yaml:"axial_tilt"`
	Revolution float32      `yaml:"revolution"`
	Spin       float32      `yaml:"spin"`
	Model      string       `yaml:"model"`
	Material   string       `yaml:"material"`
	Ring       string       `yaml:"ring,omitempty"` // Ring material
	Axis       string       `yaml:"axis,omitempty"` // Axis cylinder material
	Moons      []BodyConfig `yaml:"moons,omitempty"`
}

// LightConfig defines a point or directional light.
type LightConfig struct {
	Name        string     `yaml:"name"`
	Position    [3]float32 `yaml:"position"`
	Brightness  float32    `yaml:"brightness"`
	Directional bool       `yaml:"directional"`
	Direction   [3]float32 `yaml:"direction"`
}
