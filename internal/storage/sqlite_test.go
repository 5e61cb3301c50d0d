package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "courtside.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSettings(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.GetSetting(ctx, KeyRosterText)
	require.ErrorIs(t, err, ErrNotFound)

	value, err := store.GetSettingOr(ctx, KeyRosterText, "A:x;B:y")
	require.NoError(t, err)
	require.Equal(t, "A:x;B:y", value)

	require.NoError(t, store.SetSetting(ctx, KeyRosterText, "宏疆队:刘竞;沐骁队:张伟"))
	require.NoError(t, store.SetSetting(ctx, KeyMatchInput, "400302960"))
	require.NoError(t, store.SetSetting(ctx, KeyRosterText, "C:z;D:w"))

	value, err = store.GetSetting(ctx, KeyRosterText)
	require.NoError(t, err)
	require.Equal(t, "C:z;D:w", value)

	value, err = store.GetSettingOr(ctx, KeyMatchInput, "fallback")
	require.NoError(t, err)
	require.Equal(t, "400302960", value)

	// Empty strings are stored, not treated as missing
	require.NoError(t, store.SetSetting(ctx, KeyMatchInput, ""))
	value, err = store.GetSettingOr(ctx, KeyMatchInput, "fallback")
	require.NoError(t, err)
	require.Equal(t, "", value)
}

func TestSettingsPersist(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "courtside.db")

	store, err := New(path)
	require.NoError(t, err)
	require.NoError(t, store.SetSetting(ctx, KeyMatchInput, "https://www.xiaoqiumi.com/m/match?matchid=1"))
	require.NoError(t, store.Close())

	store, err = New(path)
	require.NoError(t, err)
	defer store.Close()
	value, err := store.GetSetting(ctx, KeyMatchInput)
	require.NoError(t, err)
	require.Equal(t, "https://www.xiaoqiumi.com/m/match?matchid=1", value)
}
