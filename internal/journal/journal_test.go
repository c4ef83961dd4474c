package journal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecord_ByRun_ReturnsEntriesInInsertOrder(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Record(ctx, Entry{RunID: "run-1", File: "keystone.rst", Status: StatusConverted, Units: 4}))
	require.NoError(t, store.Record(ctx, Entry{RunID: "run-1", File: "nova.rst", Status: StatusFailed, Detail: "kind (fatal): unsupported content kind"}))
	require.NoError(t, store.Record(ctx, Entry{RunID: "run-2", File: "keystone.rst", Status: StatusConverted, Units: 4}))

	entries, err := store.ByRun(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "keystone.rst", entries[0].File)
	require.Equal(t, StatusConverted, entries[0].Status)
	require.Equal(t, 4, entries[0].Units)
	require.Equal(t, "nova.rst", entries[1].File)
	require.Equal(t, StatusFailed, entries[1].Status)
	require.Contains(t, entries[1].Detail, "unsupported content kind")
}

func TestByFile_ReturnsHistoryNewestFirst(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Record(ctx, Entry{RunID: "run-1", File: "glance.rst", Status: StatusFailed}))
	require.NoError(t, store.Record(ctx, Entry{RunID: "run-2", File: "glance.rst", Status: StatusConverted, Units: 2}))

	entries, err := store.ByFile(ctx, "glance.rst")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "run-2", entries[0].RunID)
	require.Equal(t, "run-1", entries[1].RunID)
}

func TestByRun_UnknownRun_ReturnsEmpty(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	entries, err := store.ByRun(context.Background(), "missing")
	require.NoError(t, err)
	require.Empty(t, entries)
}
