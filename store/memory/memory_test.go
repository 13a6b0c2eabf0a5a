package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/mindcanvas/store"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.Get(ctx, "ws:nodes")
	assert.ErrorIs(t, err, store.ErrNotFound)

	value := []byte(`[{"id":"node-1"}]`)
	require.NoError(t, s.Put(ctx, "ws:nodes", value))
	value[0] = 'X'

	got, err := s.Get(ctx, "ws:nodes")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"node-1"}]`, string(got))

	require.NoError(t, s.Put(ctx, "ws:edges", []byte(`[]`)))
	assert.Equal(t, []string{"ws:edges", "ws:nodes"}, s.Keys())

	require.NoError(t, s.Delete(ctx, "ws:nodes"))
	require.NoError(t, s.Delete(ctx, "ws:missing"))
	_, err = s.Get(ctx, "ws:nodes")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
