package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/solar.yaml
var defaultYAML []byte

// Default returns the hardcoded default configuration. It matches the
// embedded YAML and is only used if that fails to parse.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Listen:        ":32000",
			IdleTimeout:   2 * time.Minute,
			SweepInterval: time.Second,
			MessageRate:   50,
			MessageBurst:  100,
			EventBuffer:   256,
		},
		Client: ClientConfig{
			HandshakeTimeout: 5 * time.Second,
			RetryInterval:    200 * time.Millisecond,
			MaxRetries:       25,
			FlushTimeout:     10 * time.Second,
		},
		Host: HostConfig{
			TickRate:    60,
			HistorySize: 100,
		},
		Storage: StorageConfig{
			Path: "~/.solar/journal.db",
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Scene: DefaultSceneConfig(),
	}
}

// DefaultSceneConfig returns the default solar system layout.
func DefaultSceneConfig() SceneConfig {
	planet := func(name string, distance, scale, orbitTilt, axialTilt, revolution, spin float32, material string) BodyConfig {
		return BodyConfig{
			Name:       name,
			Distance:   distance,
			Scale:      scale,
			OrbitTilt:  orbitTilt,
			AxialTilt:  axialTilt,
			Revolution: revolution,
			Spin:       spin,
			Model:      "Sphere.mdl",
			Material:   material,
		}
	}

	earth := planet("Earth", 50, 10, 0, 23, -10, -100, "earthmap.xml")
	earth.Axis = "cyl10.xml"
	earth.Moons = []BodyConfig{planet("Moon", 10, 5, 5.16, 6.68, -10, -10, "moonmap.xml")}

	saturn := planet("Saturne", 150, 20, 2.48, 26.73, -10, -10, "saturnmap.xml")
	saturn.Ring = "saturnringmap.xml"

	return SceneConfig{
		Preset: "solar",
		Camera: [3]float32{0, 15, 0},
		Plane: PlaneConfig{
			Scale:    [3]float32{70, 7, 70},
			Model:    "Disk.mdl",
			Material: "GreenTransparent.xml",
		},
		Sun: SunConfig{
			Name:     "Sun",
			Scale:    40,
			Model:    "Sphere.mdl",
			Material: "sunmap.xml",
		},
		Bodies: []BodyConfig{
			planet("Mercure", 10, 5, 0, 0, -10, -10, "mercurymap.xml"),
			planet("Venus", 40, 5, 3.39, 177.36, 10, -10, "venusmap.xml"),
			earth,
			planet("Mars", 70, 5, 1.85, 25.19, -10, -100, "marsmap.xml"),
			planet("Jupiter", 100, 20, 1.3, 3.12, -10, -10, "jupitermap.xml"),
			saturn,
			planet("Uranus", 200, 20, 0.77, 97.77, -10, -10, "uranusmap.xml"),
			planet("Neptune", 250, 20, 1.76, 28.3, -10, -10, "neptunemap.xml"),
			planet("Pluton", 300, 20, 0.77, 97.77, -10, -10, "plutonmap.xml"),
		},
		Lights: []LightConfig{
			{Name: "LightCenter", Brightness: 7},
			{Name: "LightLeft", Position: [3]float32{7, 0, 0}, Brightness: 7},
			{Name: "DirectionalLight", Directional: true, Direction: [3]float32{0.6, -1, 0.8}, Brightness: 1},
		},
	}
}
