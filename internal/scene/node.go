// Package scene holds the in-process scene graph: named nodes carrying a local
// transform, renderable component descriptors and rotators. Nothing here draws;
// the graph is the state that scene commands mutate.
package scene

import (
	"strings"

	"github.com/vovakirdan/solar-scene/internal/core"
)

// StaticModel describes a renderable model with its current material.
type StaticModel struct {
	Model    string
	Material string
}

// Rotator spins its node continuously. Speed is in degrees per second around
// each local axis.
type Rotator struct {
	Speed core.Vec3
}

// Light describes a light source attached to a node.
type Light struct {
	Brightness  float32
	Directional bool
	Direction   core.Vec3
}

// Node is a single scene graph entry.
type Node struct {
	id        uint32
	name      string
	transform core.Transform
	enabled   bool

	parent   *Node
	children []*Node

	models  []*StaticModel
	rotator *Rotator
	light   *Light

	owner *Scene // set on the root only
}

// ID returns the node identifier, unique within its scene.
func (n *Node) ID() uint32 {
	return n.id
}

// Name returns the node name. Names need not be unique.
func (n *Node) Name() string {
	return n.name
}

// Parent returns the parent node, or nil for the root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns the direct children in creation order.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// CreateChild appends a new child with an identity transform.
func (n *Node) CreateChild(name string) *Node {
	child := &Node{
		name:      name,
		transform: core.IdentityTransform(),
		enabled:   true,
		parent:    n,
	}
	if s := n.scene(); s != nil {
		child.id = s.nextID()
	}
	n.children = append(n.children, child)
	return child
}

// Position returns the local position.
func (n *Node) Position() core.Vec3 {
	return n.transform.Position
}

// SetPosition sets the local position.
func (n *Node) SetPosition(p core.Vec3) {
	n.transform.Position = p
}

// Scale returns the local scale.
func (n *Node) Scale() core.Vec3 {
	return n.transform.Scale
}

// SetScale sets the local scale.
func (n *Node) SetScale(s core.Vec3) {
	n.transform.Scale = s
}

// Rotation returns the local rotation.
func (n *Node) Rotation() core.Quat {
	return n.transform.Rotation
}

// SetRotation sets the local rotation.
func (n *Node) SetRotation(q core.Quat) {
	n.transform.Rotation = q.Normalize()
}

// Transform returns the local transform.
func (n *Node) Transform() core.Transform {
	return n.transform
}

// WorldTransform returns the transform relative to the scene root.
func (n *Node) WorldTransform() core.Transform {
	if n.parent == nil {
		return n.transform
	}
	return n.parent.WorldTransform().Compose(n.transform)
}

// WorldPosition returns the position relative to the scene root.
func (n *Node) WorldPosition() core.Vec3 {
	return n.WorldTransform().Position
}

// Enabled reports whether the node takes part in updates.
func (n *Node) Enabled() bool {
	return n.enabled
}

// SetEnabled toggles updates for the node and its subtree.
func (n *Node) SetEnabled(enabled bool) {
	n.enabled = enabled
}

// AddStaticModel attaches a model with the given material.
func (n *Node) AddStaticModel(model, material string) *StaticModel {
	m := &StaticModel{Model: model, Material: material}
	n.models = append(n.models, m)
	return m
}

// StaticModels returns the attached models.
func (n *Node) StaticModels() []*StaticModel {
	return n.models
}

// SetRotator attaches or replaces the node's rotator.
func (n *Node) SetRotator(speed core.Vec3) *Rotator {
	n.rotator = &Rotator{Speed: speed}
	return n.rotator
}

// Rotator returns the node's rotator, or nil.
func (n *Node) Rotator() *Rotator {
	return n.rotator
}

// SetLight attaches or replaces the node's light.
func (n *Node) SetLight(l Light) *Light {
	n.light = &l
	return n.light
}

// Light returns the node's light, or nil.
func (n *Node) Light() *Light {
	return n.light
}

// Path returns the slash-separated names from the root down to this node.
func (n *Node) Path() string {
	var parts []string
	for cur := n; cur != nil && cur.parent != nil; cur = cur.parent {
		parts = append(parts, cur.name)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return "/" + strings.Join(parts, "/")
}

// Walk visits the node and its descendants depth-first. Returning false from
// fn skips the visited node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.children {
		c.Walk(fn)
	}
}

func (n *Node) scene() *Scene {
	root := n
	for root.parent != nil {
		root = root.parent
	}
	return root.owner
}

// update advances rotators in the subtree by dt seconds.
func (n *Node) update(dt float32) {
	if !n.enabled {
		return
	}
	if n.rotator != nil {
		s := n.rotator.Speed.Mul(dt)
		n.transform.Rotation = n.transform.Rotation.Mul(core.Euler(s[0], s[1], s[2])).Normalize()
	}
	for _, c := range n.children {
		c.update(dt)
	}
}
