package sqlx_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	storage "promptkit/adapters/sqlx"
)

func TestSQLite_PersistAcrossReopen(t *testing.T) {
	cfg := storage.DefaultConfig(storage.DriverSQLite)
	cfg.DSN = filepath.Join(t.TempDir(), "prompts.db")
	ctx := context.Background()

	store, err := storage.New(cfg)
	require.NoError(t, err)

	_, ok, err := store.ReadInt(ctx, "promptkit.startups")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.WriteInt(ctx, "promptkit.startups", 1))
	require.NoError(t, store.WriteInt(ctx, "promptkit.startups", 2))
	require.NoError(t, store.Close())

	reopened, err := storage.New(cfg)
	require.NoError(t, err)
	defer reopened.Close()

	v, ok, err := reopened.ReadInt(ctx, "promptkit.startups")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(2), v)
}
