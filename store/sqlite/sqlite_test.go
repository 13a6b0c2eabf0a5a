package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/mindcanvas/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(Options{Path: filepath.Join(t.TempDir(), "canvas.db")})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Get(ctx, "ws:history")
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.Put(ctx, "ws:history", []byte(`[]`)))
	require.NoError(t, s.Put(ctx, "ws:history", []byte(`[{"id":"history-3"}]`)))

	got, err := s.Get(ctx, "ws:history")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"history-3"}]`, string(got))

	require.NoError(t, s.Delete(ctx, "ws:history"))
	_, err = s.Get(ctx, "ws:history")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestStore_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "canvas.db")

	s, err := New(Options{Path: path, TableName: "canvas_blobs"})
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, "k", []byte("v")))
	require.NoError(t, s.Close())

	s, err = New(Options{Path: path, TableName: "canvas_blobs"})
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))
}
