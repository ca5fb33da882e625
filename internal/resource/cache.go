// Package resource resolves model and material names used by scene commands
// into resource paths.
package resource

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sync"
)

// Kind selects the resource directory a name resolves into.
type Kind int

const (
	KindModel Kind = iota
	KindMaterial
)

// Dir returns the resource directory for the kind.
func (k Kind) Dir() string {
	switch k {
	case KindModel:
		return "Models"
	case KindMaterial:
		return "Materials"
	default:
		return ""
	}
}

// ErrMissing is returned when a resource root is configured and the resolved
// file does not exist under it.
var ErrMissing = errors.New("resource: not found")

// Cache memoizes name resolution. The zero value is not usable; call NewCache.
type Cache struct {
	root string

	mu      sync.Mutex
	entries map[string]error
}

// NewCache creates a cache. An empty root disables existence checks.
func NewCache(root string) *Cache {
	return &Cache{
		root:    root,
		entries: make(map[string]error),
	}
}

// Root returns the configured resource root.
func (c *Cache) Root() string {
	return c.root
}

// Model resolves a model name to Models/<name>.
func (c *Cache) Model(name string) (string, error) {
	return c.Resolve(KindModel, name)
}

// Material resolves a material name to Materials/<name>.
func (c *Cache) Material(name string) (string, error) {
	return c.Resolve(KindMaterial, name)
}

// Resolve returns the resource path for name. The path is always returned,
// even alongside ErrMissing, so callers can keep a reference to it.
func (c *Cache) Resolve(kind Kind, name string) (string, error) {
	p := path.Join(kind.Dir(), name)
	if c.root == "" {
		return p, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err, ok := c.entries[p]; ok {
		return p, err
	}

	var err error
	if _, statErr := os.Stat(filepath.Join(c.root, filepath.FromSlash(p))); statErr != nil {
		err = fmt.Errorf("%w: %s", ErrMissing, p)
	}
	c.entries[p] = err
	return p, err
}

// Len returns the number of memoized lookups.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
