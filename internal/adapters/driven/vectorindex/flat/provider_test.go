package flat

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ghostdevc/chatbot-demo-gemini/internal/core/domain"
)

func newProvider(t *testing.T) *Provider {
	t.Helper()
	p, err := NewProvider(t.TempDir())
	require.NoError(t, err)
	return p
}

func TestProviderAcquirePersistRestore(t *testing.T) {
	p := newProvider(t)
	ctx := context.Background()

	ix, err := p.Acquire(ctx, "persona-1")
	require.NoError(t, err)
	require.NoError(t, ix.Add("c1", []float32{1, 0}))
	require.NoError(t, ix.Add("c2", []float32{0, 1}))
	require.NoError(t, ix.Persist())
	ix.Release()

	reader, err := p.AcquireRead(ctx, "persona-1")
	require.NoError(t, err)
	defer reader.Release()

	hits := reader.Search([]float32{1, 0}, 4)
	require.Len(t, hits, 2)
	assert.Equal(t, "c1", hits[0].ChunkID)
}

func TestProviderMissingSnapshotYieldsEmptyIndex(t *testing.T) {
	p := newProvider(t)

	reader, err := p.AcquireRead(context.Background(), "never-ingested")
	require.NoError(t, err)
	defer reader.Release()

	assert.True(t, reader.IsEmpty())
	assert.Nil(t, reader.Search([]float32{1, 2}, 4))
}

func TestProviderCorruptSnapshotYieldsEmptyIndex(t *testing.T) {
	p := newProvider(t)
	path := p.snapshotPath("persona-1")
	require.NoError(t, os.WriteFile(path, []byte("garbled bytes, not a snapshot"), 0600))

	reader, err := p.AcquireRead(context.Background(), "persona-1")
	require.NoError(t, err)
	defer reader.Release()

	assert.True(t, reader.IsEmpty())
}

func TestProviderRemove(t *testing.T) {
	p := newProvider(t)
	ctx := context.Background()

	ix, err := p.Acquire(ctx, "persona-1")
	require.NoError(t, err)
	require.NoError(t, ix.Add("c1", []float32{1}))
	require.NoError(t, ix.Persist())
	ix.Release()

	require.NoError(t, p.Remove("persona-1"))
	_, err = os.Stat(filepath.Join(p.dir, "persona-1.vec"))
	assert.True(t, os.IsNotExist(err))

	// Removing again is fine.
	assert.NoError(t, p.Remove("persona-1"))

	// After removal the persona restores as empty.
	reader, err := p.AcquireRead(ctx, "persona-1")
	require.NoError(t, err)
	defer reader.Release()
	assert.True(t, reader.IsEmpty())
}

func TestReadHandleRefusesMutation(t *testing.T) {
	p := newProvider(t)

	reader, err := p.AcquireRead(context.Background(), "persona-1")
	require.NoError(t, err)
	defer reader.Release()

	h, ok := reader.(*handle)
	require.True(t, ok)
	assert.ErrorIs(t, h.Add("c1", []float32{1}), domain.ErrReadOnly)
	assert.ErrorIs(t, h.Persist(), domain.ErrReadOnly)
}

func TestProviderSerialisesWriters(t *testing.T) {
	p := newProvider(t)
	ctx := context.Background()

	first, err := p.Acquire(ctx, "persona-1")
	require.NoError(t, err)

	acquired := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		second, err := p.Acquire(ctx, "persona-1")
		assert.NoError(t, err)
		close(acquired)
		second.Release()
	}()

	select {
	case <-acquired:
		t.Fatal("second writer acquired while first still held")
	case <-time.After(50 * time.Millisecond):
	}

	first.Release()
	wg.Wait()
}

func TestProviderCancelledContext(t *testing.T) {
	p := newProvider(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Acquire(ctx, "persona-1")
	assert.ErrorIs(t, err, context.Canceled)
}
