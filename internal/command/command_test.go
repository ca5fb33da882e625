package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/solar-scene/internal/core"
	"github.com/vovakirdan/solar-scene/internal/world"
)

func TestExecuteScript(t *testing.T) {
	w := world.New(nil, nil, nil)

	script := []string{
		"CRP home 0 0 0",
		"CRP away 30 0 -30",
		"CRO box 5 5 5 1 1 1 0 0 0 Box.mdl Stone.xml Ghost.xml 1",
		"CRT pawn home 2 2 2 0 45 0 Sphere.mdl Red.xml Ghost.xml 0",
		"MOV pawn away",
	}
	for _, line := range script {
		_, err := Execute(w, line)
		require.NoError(t, err, line)
	}

	pawn, ok := w.Object("pawn")
	require.True(t, ok)
	assert.Equal(t, core.V3(30, 0, -30), pawn.Position)
	assert.Equal(t, "Materials/Ghost.xml", pawn.Material)

	box, ok := w.Object("box")
	require.True(t, ok)
	assert.Equal(t, core.V3(5, 5, 5), box.Position)
	assert.Equal(t, "Models/Box.mdl", box.Model)

	assert.Len(t, w.Points(), 2)
}

func TestExecuteNotFound(t *testing.T) {
	w := world.New(nil, nil, nil)

	cmd, err := Execute(w, "MOV ghost nowhere")
	assert.ErrorIs(t, err, world.ErrObjectNotFound)
	require.NotNil(t, cmd, "parsed command is returned alongside apply errors")
	assert.Equal(t, OpMoveObject, cmd.Opcode())

	_, err = Execute(w, "CRT pawn nowhere 1 1 1 0 0 0 m a b 1")
	assert.ErrorIs(t, err, world.ErrPointNotFound)
	assert.Empty(t, w.Objects())
}

func TestExecuteParseError(t *testing.T) {
	w := world.New(nil, nil, nil)

	cmd, err := Execute(w, "CRP p 1")
	assert.ErrorIs(t, err, ErrMalformed)
	assert.Nil(t, cmd)
	assert.Empty(t, w.Points())
}

func TestQuitIsNoOp(t *testing.T) {
	w := world.New(nil, nil, nil)

	cmd, err := Execute(w, "X")
	require.NoError(t, err)
	assert.Equal(t, OpQuit, cmd.Opcode())
	assert.Empty(t, w.Objects())
}
