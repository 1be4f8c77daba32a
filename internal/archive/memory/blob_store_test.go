package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlobStoreSaveAndGet(t *testing.T) {
	t.Parallel()

	blobStore := NewBlobStore()
	data := []byte("<html>listing</html>")

	require.NoError(t, blobStore.Save(context.Background(), "2024-05-01/abc.html", data))
	require.Equal(t, 1, blobStore.Len())

	stored, ok := blobStore.Get("2024-05-01/abc.html")
	require.True(t, ok)
	assert.Equal(t, data, stored)

	// Mutating the returned slice must not affect the stored copy.
	stored[0] = 'X'
	again, ok := blobStore.Get("2024-05-01/abc.html")
	require.True(t, ok)
	assert.Equal(t, data, again)

	_, ok = blobStore.Get("missing")
	assert.False(t, ok)
}
