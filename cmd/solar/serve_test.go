package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/solar-scene/internal/core"
	"github.com/vovakirdan/solar-scene/internal/host"
	"github.com/vovakirdan/solar-scene/internal/storage"
	"github.com/vovakirdan/solar-scene/internal/world"
)

func TestAttachJournalReplays(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	for _, line := range []string{"CRP home 5 0 5", "CRO box 0 0 0 1 1 1 0 0 0 Box.mdl A.xml B.xml 1", "MOV box home"} {
		_, err := store.RecordCommand(storage.CommandEntry{
			SessionID: "s1",
			Origin:    string(host.OriginNetwork),
			Line:      line,
			Opcode:    line[:3],
		})
		require.NoError(t, err)
	}

	h := host.New(host.DefaultConfig(), world.New(nil, nil, nil), nil)
	require.NoError(t, attachJournal(h, store, true))

	obj, ok := h.World().Object("box")
	require.True(t, ok)
	assert.Equal(t, core.V3(5, 0, 5), obj.Position)

	stats, err := store.CommandStats()
	require.NoError(t, err)
	assert.Equal(t, 6, stats.Total, "replayed commands should be journaled")

	recent, err := store.RecentCommands(3)
	require.NoError(t, err)
	for _, e := range recent {
		assert.Equal(t, string(host.OriginReplay), e.Origin)
	}

	lines, err := store.ReplayableCommands()
	require.NoError(t, err)
	assert.Len(t, lines, 3, "replayed entries must not be replayed again")
}

func TestAttachJournalWithoutReplay(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	_, err = store.RecordCommand(storage.CommandEntry{Origin: string(host.OriginNetwork), Line: "CRP home 0 0 0", Opcode: "CRP"})
	require.NoError(t, err)

	h := host.New(host.DefaultConfig(), world.New(nil, nil, nil), nil)
	require.NoError(t, attachJournal(h, store, false))

	_, ok := h.World().Point("home")
	assert.False(t, ok)
}
