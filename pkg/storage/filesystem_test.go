package storage

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSaveUploadKeepsExtension(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	name, err := store.SaveUpload("proofs", "../../etc/Photo.JPG", strings.NewReader("img"), 1024)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(name, "proofs/"))
	require.True(t, strings.HasSuffix(name, ".jpg"))

	f, err := store.Open(name)
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck
	body, err := io.ReadAll(f)
	require.NoError(t, err)
	require.Equal(t, "img", string(body))
}

func TestSaveUploadRejectsOversize(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.SaveUpload("media", "clip.mp4", strings.NewReader("0123456789"), 4)
	require.ErrorIs(t, err, ErrTooLarge)

	deleted, err := store.CleanupOlderThan(-time.Hour)
	require.NoError(t, err)
	require.Empty(t, deleted)
}

func TestResolveRejectsTraversal(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.Open("../secret.txt")
	require.ErrorIs(t, err, ErrInvalidPath)
	_, err = store.Save("/abs.txt", []byte("x"))
	require.ErrorIs(t, err, ErrInvalidPath)
}

func TestCleanupOlderThan(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	_, err = store.Save("exports/a.csv", []byte("a"))
	require.NoError(t, err)

	deleted, err := store.CleanupOlderThan(-time.Minute)
	require.NoError(t, err)
	require.Equal(t, []string{"exports/a.csv"}, deleted)
}
