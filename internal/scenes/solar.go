package scenes

import (
	"strings"

	"github.com/vovakirdan/solar-scene/internal/config"
	"github.com/vovakirdan/solar-scene/internal/core"
	"github.com/vovakirdan/solar-scene/internal/registry"
	"github.com/vovakirdan/solar-scene/internal/scene"
)

// Solar builds the sun, its planets and their moons.
//
// Each body hangs off its parent's position node as
//
//	revol_<name>          orbit plane tilt, revolution rotator
//	  <Name>Pos           distance along X
//	    <Name>Inclined    axial tilt
//	      <Name>Axis      optional axis cylinder
//	      <Name>          scale, model, spin rotator, optional ring
//	    revol_<moon>...
type Solar struct{}

func (Solar) Title() string { return "Solar system" }

func (Solar) Build(sc *scene.Scene, cfg config.SceneConfig) error {
	b := newBuilder(cfg)

	if cfg.Plane.Model != "" {
		plane := sc.CreateChild("Plane")
		plane.SetScale(vec(cfg.Plane.Scale))
		b.model(plane, cfg.Plane.Model, cfg.Plane.Material)
	}

	sunPos := sc.CreateChild("SunPos")
	if cfg.Sun.Name != "" {
		sun := sunPos.CreateChild(cfg.Sun.Name)
		sun.SetScale(uniform(cfg.Sun.Scale))
		b.model(sun, cfg.Sun.Model, cfg.Sun.Material)
	}

	for _, body := range cfg.Bodies {
		b.body(sunPos, body)
	}

	b.lights(sc, cfg.Lights)
	b.camera(sc, cfg.Camera)
	return nil
}

func (b builder) body(parent *scene.Node, body config.BodyConfig) {
	revol := parent.CreateChild("revol_" + strings.ToLower(body.Name))
	revol.SetRotation(core.Euler(0, 0, body.OrbitTilt))
	if body.Revolution != 0 {
		revol.SetRotator(core.V3(0, body.Revolution, 0))
	}

	pos := revol.CreateChild(body.Name + "Pos")
	pos.SetPosition(core.V3(body.Distance, 0, 0))

	inclined := pos.CreateChild(body.Name + "Inclined")
	inclined.SetRotation(core.Euler(0, 0, body.AxialTilt))

	if body.Axis != "" {
		axis := inclined.CreateChild(body.Name + "Axis")
		axis.SetScale(core.V3(0.5, 12, 0.5))
		b.model(axis, cylinderModel, body.Axis)
	}

	node := inclined.CreateChild(body.Name)
	node.SetScale(uniform(body.Scale))
	b.model(node, body.Model, body.Material)
	if body.Ring != "" {
		b.model(node, diskModel, body.Ring)
	}
	if body.Spin != 0 {
		node.SetRotator(core.V3(0, body.Spin, 0))
	}

	for _, moon := range body.Moons {
		b.body(pos, moon)
	}
}

func init() {
	registry.Register("solar", Solar{})
}
