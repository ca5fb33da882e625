package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/solar-scene/internal/core"
	"github.com/vovakirdan/solar-scene/internal/scene"
)

func pawnSpec(name string, visible int) ObjectSpec {
	return ObjectSpec{
		Name:      name,
		Position:  core.V3(1, 2, 3),
		Scale:     core.V3(1, 1, 1),
		Rotation:  core.V3(0, 0, 0),
		Model:     "Box.mdl",
		Material1: "red.xml",
		Material2: "ghost.xml",
		Visible:   visible,
	}
}

func TestCreateObject(t *testing.T) {
	w := New(nil, nil, nil)

	node, err := w.CreateObject(pawnSpec("pawn", 1))
	require.NoError(t, err)
	assert.Equal(t, "pawn", node.Name())
	assert.Equal(t, core.V3(1, 2, 3), node.Position())

	info, ok := w.Object("pawn")
	require.True(t, ok)
	assert.Equal(t, "Models/Box.mdl", info.Model)
	assert.Equal(t, "Materials/red.xml", info.Material)
}

func TestCreateObjectMaterialSelection(t *testing.T) {
	tests := []struct {
		name     string
		visible  int
		expected string
	}{
		{"visible one picks mat1", 1, "Materials/red.xml"},
		{"any non-zero picks mat1", 7, "Materials/red.xml"},
		{"negative picks mat1", -1, "Materials/red.xml"},
		{"zero picks mat2", 0, "Materials/ghost.xml"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := New(nil, nil, nil)
			_, err := w.CreateObject(pawnSpec("o", tc.visible))
			require.NoError(t, err)

			info, _ := w.Object("o")
			assert.Equal(t, tc.expected, info.Material)
		})
	}
}

func TestCreateObjectDuplicate(t *testing.T) {
	sc := scene.New()
	w := New(sc, nil, nil)

	_, err := w.CreateObject(pawnSpec("pawn", 1))
	require.NoError(t, err)

	_, err = w.CreateObject(pawnSpec("pawn", 0))
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.Equal(t, 1, sc.Count(), "rejected create must not add a node")
}

func TestCreateObjectAtPoint(t *testing.T) {
	w := New(nil, nil, nil)
	require.NoError(t, w.CreatePoint("p1", core.V3(5, 0, -5)))

	node, err := w.CreateObjectAtPoint(pawnSpec("pawn", 1), "p1")
	require.NoError(t, err)
	assert.Equal(t, core.V3(5, 0, -5), node.Position())
}

func TestCreateObjectAtMissingPoint(t *testing.T) {
	sc := scene.New()
	w := New(sc, nil, nil)

	_, err := w.CreateObjectAtPoint(pawnSpec("pawn", 1), "nowhere")
	assert.ErrorIs(t, err, ErrPointNotFound)
	assert.Equal(t, 0, sc.Count())
	_, ok := w.Object("pawn")
	assert.False(t, ok)
}

func TestCreatePointDuplicate(t *testing.T) {
	w := New(nil, nil, nil)
	require.NoError(t, w.CreatePoint("p1", core.V3(1, 1, 1)))

	err := w.CreatePoint("p1", core.V3(2, 2, 2))
	assert.ErrorIs(t, err, ErrDuplicate)

	p, ok := w.Point("p1")
	require.True(t, ok)
	assert.Equal(t, core.V3(1, 1, 1), p, "first point wins")
}

func TestMoveObjectToPoint(t *testing.T) {
	w := New(nil, nil, nil)
	_, err := w.CreateObject(pawnSpec("pawn", 1))
	require.NoError(t, err)
	require.NoError(t, w.CreatePoint("p1", core.V3(9, 8, 7)))

	require.NoError(t, w.MoveObjectToPoint("pawn", "p1"))

	info, _ := w.Object("pawn")
	assert.Equal(t, core.V3(9, 8, 7), info.Position)
}

func TestMoveObjectToPointNotFound(t *testing.T) {
	w := New(nil, nil, nil)
	_, err := w.CreateObject(pawnSpec("pawn", 1))
	require.NoError(t, err)
	require.NoError(t, w.CreatePoint("p1", core.V3(9, 8, 7)))

	assert.ErrorIs(t, w.MoveObjectToPoint("ghost", "p1"), ErrObjectNotFound)
	assert.ErrorIs(t, w.MoveObjectToPoint("pawn", "nowhere"), ErrPointNotFound)

	info, _ := w.Object("pawn")
	assert.Equal(t, core.V3(1, 2, 3), info.Position, "failed move must not change position")
}

func TestTablesSorted(t *testing.T) {
	w := New(nil, nil, nil)
	for _, name := range []string{"c", "a", "b"} {
		_, err := w.CreateObject(pawnSpec(name, 1))
		require.NoError(t, err)
		require.NoError(t, w.CreatePoint(name, core.V3(0, 0, 0)))
	}

	objects := w.Objects()
	require.Len(t, objects, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{objects[0].Name, objects[1].Name, objects[2].Name})

	points := w.Points()
	require.Len(t, points, 3)
	assert.Equal(t, "a", points[0].Name)
}
