// Package world owns the live scene and the two name tables that scene
// commands operate on: the object table (name to scene node) and the point
// table (name to 3-D position). Both tables are insert-only.
package world

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/solar-scene/internal/core"
	"github.com/vovakirdan/solar-scene/internal/resource"
	"github.com/vovakirdan/solar-scene/internal/scene"
)

var (
	// ErrObjectNotFound is returned when a name is absent from the object table.
	ErrObjectNotFound = errors.New("world: object not found")

	// ErrPointNotFound is returned when a name is absent from the point table.
	ErrPointNotFound = errors.New("world: point not found")

	// ErrDuplicate is returned when a name is already present in a table.
	ErrDuplicate = errors.New("world: name already in use")
)

// ObjectSpec describes an object to create.
type ObjectSpec struct {
	Name      string
	Position  core.Vec3 // ignored by CreateObjectAtPoint
	Scale     core.Vec3
	Rotation  core.Vec3 // Euler angles in degrees
	Model     string
	Material1 string
	Material2 string
	Visible   int
}

// Material returns the material selected by Visible: Material1 when non-zero.
func (s ObjectSpec) Material() string {
	if s.Visible != 0 {
		return s.Material1
	}
	return s.Material2
}

// ObjectInfo is a read-only snapshot of an object table entry.
type ObjectInfo struct {
	Name     string
	Position core.Vec3
	Model    string
	Material string
}

// PointInfo is a read-only snapshot of a point table entry.
type PointInfo struct {
	Name     string
	Position core.Vec3
}

// World is safe for concurrent use.
type World struct {
	mu        sync.RWMutex
	scene     *scene.Scene
	objects   map[string]*scene.Node
	points    map[string]core.Vec3
	resources *resource.Cache
	logger    *log.Logger
}

// New wraps sc. A nil cache resolves every resource name; a nil logger
// discards warnings.
func New(sc *scene.Scene, resources *resource.Cache, logger *log.Logger) *World {
	if sc == nil {
		sc = scene.New()
	}
	if resources == nil {
		resources = resource.NewCache("")
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &World{
		scene:     sc,
		objects:   make(map[string]*scene.Node),
		points:    make(map[string]core.Vec3),
		resources: resources,
		logger:    logger,
	}
}

// CreateObject creates a named object at an explicit transform.
func (w *World) CreateObject(spec ObjectSpec) (*scene.Node, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, exists := w.objects[spec.Name]; exists {
		return nil, fmt.Errorf("%w: object %q", ErrDuplicate, spec.Name)
	}
	return w.createLocked(spec, spec.Position), nil
}

// CreateObjectAtPoint creates a named object positioned at a named point.
func (w *World) CreateObjectAtPoint(spec ObjectSpec, pointName string) (*scene.Node, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	pos, ok := w.points[pointName]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrPointNotFound, pointName)
	}
	if _, exists := w.objects[spec.Name]; exists {
		return nil, fmt.Errorf("%w: object %q", ErrDuplicate, spec.Name)
	}
	return w.createLocked(spec, pos), nil
}

func (w *World) createLocked(spec ObjectSpec, pos core.Vec3) *scene.Node {
	node := w.scene.CreateChild(spec.Name)
	node.SetPosition(pos)
	node.SetScale(spec.Scale)
	node.SetRotation(core.Euler(spec.Rotation[0], spec.Rotation[1], spec.Rotation[2]))

	model, err := w.resources.Model(spec.Model)
	if err != nil {
		w.logger.Warn("model unavailable", "object", spec.Name, "error", err)
	}
	// Both materials are resolved so a missing one is reported even when unused.
	mat1, err := w.resources.Material(spec.Material1)
	if err != nil {
		w.logger.Warn("material unavailable", "object", spec.Name, "error", err)
	}
	mat2, err := w.resources.Material(spec.Material2)
	if err != nil {
		w.logger.Warn("material unavailable", "object", spec.Name, "error", err)
	}
	material := mat2
	if spec.Visible != 0 {
		material = mat1
	}
	node.AddStaticModel(model, material)

	w.objects[spec.Name] = node
	return node
}

// CreatePoint registers a named point.
func (w *World) CreatePoint(name string, pos core.Vec3) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, exists := w.points[name]; exists {
		return fmt.Errorf("%w: point %q", ErrDuplicate, name)
	}
	w.points[name] = pos
	return nil
}

// MoveObjectToPoint sets an object's position to a point's position.
func (w *World) MoveObjectToPoint(objectName, pointName string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	node, ok := w.objects[objectName]
	if !ok {
		return fmt.Errorf("%w: %q", ErrObjectNotFound, objectName)
	}
	pos, ok := w.points[pointName]
	if !ok {
		return fmt.Errorf("%w: %q", ErrPointNotFound, pointName)
	}
	node.SetPosition(pos)
	return nil
}

// Object returns a snapshot of the named object.
func (w *World) Object(name string) (ObjectInfo, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	node, ok := w.objects[name]
	if !ok {
		return ObjectInfo{}, false
	}
	return objectInfo(name, node), true
}

// Point returns the named point's position.
func (w *World) Point(name string) (core.Vec3, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	p, ok := w.points[name]
	return p, ok
}

// Objects returns the object table sorted by name.
func (w *World) Objects() []ObjectInfo {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]ObjectInfo, 0, len(w.objects))
	for name, node := range w.objects {
		out = append(out, objectInfo(name, node))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Points returns the point table sorted by name.
func (w *World) Points() []PointInfo {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]PointInfo, 0, len(w.points))
	for name, p := range w.points {
		out = append(out, PointInfo{Name: name, Position: p})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Update advances the scene's rotators.
func (w *World) Update(dt float32) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.scene.Update(dt)
}

// View runs fn with read access to the scene graph. fn must not retain nodes.
func (w *World) View(fn func(*scene.Scene)) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	fn(w.scene)
}

func objectInfo(name string, node *scene.Node) ObjectInfo {
	info := ObjectInfo{Name: name, Position: node.Position()}
	if models := node.StaticModels(); len(models) > 0 {
		info.Model = models[0].Model
		info.Material = models[0].Material
	}
	return info
}
