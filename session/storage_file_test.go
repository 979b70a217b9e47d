package session_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lightingmap/go-client/session"
)

func TestFileStorageRoundTrip(t *testing.T) {
	storage, err := session.NewFileStorage(t.TempDir())
	require.NoError(t, err)

	_, ok, err := storage.Get(session.StorageKeyToken)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, storage.Set(session.StorageKeyToken, "aaa.bbb.ccc"))
	require.NoError(t, storage.Set(session.StorageKeyUser, `{"id":"user-1"}`))

	value, ok, err := storage.Get(session.StorageKeyToken)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "aaa.bbb.ccc", value)

	require.NoError(t, storage.Delete(session.StorageKeyToken))
	_, ok, err = storage.Get(session.StorageKeyToken)
	require.NoError(t, err)
	require.False(t, ok)

	// Deleting an absent key is not an error.
	require.NoError(t, storage.Delete(session.StorageKeyToken))
}

func TestFileStorageSurvivesReopen(t *testing.T) {
	folder := t.TempDir()

	first, err := session.NewFileStorage(folder)
	require.NoError(t, err)
	require.NoError(t, first.Set(session.StorageKeyUser, `{"id":"user-1"}`))

	second, err := session.NewFileStorage(folder)
	require.NoError(t, err)
	value, ok, err := second.Get(session.StorageKeyUser)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `{"id":"user-1"}`, value)
}
