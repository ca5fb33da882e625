package scenes

import (
	"github.com/vovakirdan/solar-scene/internal/config"
	"github.com/vovakirdan/solar-scene/internal/registry"
	"github.com/vovakirdan/solar-scene/internal/scene"
)

// Empty holds only lights and the camera; everything else comes from commands.
type Empty struct{}

func (Empty) Title() string { return "Empty scene" }

func (Empty) Build(sc *scene.Scene, cfg config.SceneConfig) error {
	b := newBuilder(cfg)
	b.lights(sc, cfg.Lights)
	b.camera(sc, cfg.Camera)
	return nil
}

func init() {
	registry.Register("empty", Empty{})
}
