package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/mindcanvas/store"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "canvas")

	s, err := New(dir)
	require.NoError(t, err)

	_, err = s.Get(ctx, "ws:nodes")
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.Put(ctx, "ws:nodes", []byte(`[1]`)))
	require.NoError(t, s.Put(ctx, "ws:nodes", []byte(`[1,2]`)))

	got, err := s.Get(ctx, "ws:nodes")
	require.NoError(t, err)
	assert.Equal(t, `[1,2]`, string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "ws:nodes.json", entries[0].Name())

	require.NoError(t, s.Delete(ctx, "ws:nodes"))
	require.NoError(t, s.Delete(ctx, "ws:nodes"))
	_, err = s.Get(ctx, "ws:nodes")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestStore_EscapesKeys(t *testing.T) {
	ctx := context.Background()
	s, err := New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Put(ctx, "../escape/attempt", []byte(`{}`)))
	got, err := s.Get(ctx, "../escape/attempt")
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(got))

	_, err = os.Stat(filepath.Join(s.Dir(), "..%2Fescape%2Fattempt.json"))
	assert.NoError(t, err)
}

func TestNew_RequiresDir(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
}

func TestStore_CancelledContext(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Put(ctx, "k", []byte("v")), context.Canceled)
}
