// Package registry provides a global registry for scene presets.
// Presets register themselves in init() functions, allowing the host
// to discover and build scenes without hardcoded dependencies.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/solar-scene/internal/config"
	"github.com/vovakirdan/solar-scene/internal/scene"
)

// Preset populates an empty scene.
type Preset interface {
	// Title returns a human-readable name for display (e.g., "Solar system").
	Title() string

	// Build adds the preset's nodes under sc's root.
	// The SceneConfig carries bodies, lights and the camera position.
	Build(sc *scene.Scene, cfg config.SceneConfig) error
}

// PresetInfo contains metadata about a registered preset.
type PresetInfo struct {
	ID    string
	Title string
}

var (
	presets = make(map[string]Preset)
	mu      sync.RWMutex
)

// Register adds a preset to the registry.
// Typically called from a preset's init() function.
// Panics if a preset with the same ID is already registered.
func Register(id string, p Preset) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := presets[id]; exists {
		panic(fmt.Sprintf("registry: preset %q already registered", id))
	}

	presets[id] = p
}

// List returns information about all registered presets, sorted by ID.
func List() []PresetInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]PresetInfo, 0, len(presets))
	for id, p := range presets {
		result = append(result, PresetInfo{
			ID:    id,
			Title: p.Title(),
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

// Build creates a new scene from the preset with the given ID.
// Returns an error if the ID is not registered or the preset fails.
func Build(id string, cfg config.SceneConfig) (*scene.Scene, error) {
	mu.RLock()
	p, ok := presets[id]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("registry: unknown preset %q", id)
	}

	sc := scene.New()
	if err := p.Build(sc, cfg); err != nil {
		return nil, fmt.Errorf("registry: build %q: %w", id, err)
	}
	return sc, nil
}

// Exists checks if a preset with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := presets[id]
	return ok
}
