package scene

import "github.com/vovakirdan/solar-scene/internal/core"

// Scene is a scene graph rooted at an unnamed node.
type Scene struct {
	root   *Node
	lastID uint32
}

// New creates an empty scene.
func New() *Scene {
	s := &Scene{}
	s.root = &Node{
		transform: core.IdentityTransform(),
		enabled:   true,
		owner:     s,
	}
	return s
}

// Root returns the root node.
func (s *Scene) Root() *Node {
	return s.root
}

// CreateChild creates a direct child of the root.
func (s *Scene) CreateChild(name string) *Node {
	return s.root.CreateChild(name)
}

// Find returns the first node named name, depth-first, or nil.
func (s *Scene) Find(name string) *Node {
	var found *Node
	s.root.Walk(func(n *Node) bool {
		if found != nil {
			return false
		}
		if n != s.root && n.name == name {
			found = n
			return false
		}
		return true
	})
	return found
}

// Count returns the number of nodes excluding the root.
func (s *Scene) Count() int {
	count := 0
	s.root.Walk(func(*Node) bool {
		count++
		return true
	})
	return count - 1
}

// Update advances every enabled rotator by dt seconds.
func (s *Scene) Update(dt float32) {
	s.root.update(dt)
}

func (s *Scene) nextID() uint32 {
	s.lastID++
	return s.lastID
}
