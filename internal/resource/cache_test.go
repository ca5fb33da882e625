package resource

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestResolveWithoutRoot(t *testing.T) {
	c := NewCache("")

	p, err := c.Model("Sphere.mdl")
	if err != nil {
		t.Fatalf("Model() failed: %v", err)
	}
	if p != "Models/Sphere.mdl" {
		t.Errorf("Model() = %q, expected Models/Sphere.mdl", p)
	}

	p, err = c.Material("earthmap.xml")
	if err != nil {
		t.Fatalf("Material() failed: %v", err)
	}
	if p != "Materials/earthmap.xml" {
		t.Errorf("Material() = %q, expected Materials/earthmap.xml", p)
	}

	if c.Len() != 0 {
		t.Errorf("Expected no memoized lookups without root, got %d", c.Len())
	}
}

func TestResolveWithRoot(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "Models"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "Models", "Box.mdl"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	c := NewCache(root)

	if _, err := c.Model("Box.mdl"); err != nil {
		t.Errorf("Model(Box.mdl) failed: %v", err)
	}

	p, err := c.Material("missing.xml")
	if !errors.Is(err, ErrMissing) {
		t.Errorf("Expected ErrMissing, got %v", err)
	}
	if p != "Materials/missing.xml" {
		t.Errorf("Expected path to be returned with error, got %q", p)
	}

	// Second lookup hits the memo
	if _, err := c.Material("missing.xml"); !errors.Is(err, ErrMissing) {
		t.Errorf("Expected memoized ErrMissing, got %v", err)
	}
	if c.Len() != 2 {
		t.Errorf("Expected 2 memoized lookups, got %d", c.Len())
	}
}
