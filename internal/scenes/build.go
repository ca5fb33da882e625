// Package scenes registers the built-in scene presets.
package scenes

import (
	"github.com/vovakirdan/solar-scene/internal/config"
	"github.com/vovakirdan/solar-scene/internal/core"
	"github.com/vovakirdan/solar-scene/internal/resource"
	"github.com/vovakirdan/solar-scene/internal/scene"
)

const (
	diskModel     = "Disk.mdl"
	cylinderModel = "Cylinder.mdl"
)

// builder resolves resources while populating a scene. Missing files keep
// their unresolved path, as with command-created objects.
type builder struct {
	res *resource.Cache
}

func newBuilder(cfg config.SceneConfig) builder {
	return builder{res: resource.NewCache(cfg.Resources)}
}

func (b builder) model(n *scene.Node, model, material string) {
	m, _ := b.res.Model(model)
	mat, _ := b.res.Material(material)
	n.AddStaticModel(m, mat)
}

func (b builder) lights(sc *scene.Scene, lights []config.LightConfig) {
	for _, l := range lights {
		n := sc.CreateChild(l.Name)
		n.SetPosition(vec(l.Position))
		n.SetLight(scene.Light{
			Brightness:  l.Brightness,
			Directional: l.Directional,
			Direction:   vec(l.Direction),
		})
	}
}

func (b builder) camera(sc *scene.Scene, pos [3]float32) {
	sc.CreateChild("Camera").SetPosition(vec(pos))
}

func vec(a [3]float32) core.Vec3 {
	return core.V3(a[0], a[1], a[2])
}

func uniform(s float32) core.Vec3 {
	if s == 0 {
		return core.One()
	}
	return core.V3(s, s, s)
}
