package cache

import (
	"context"
	"errors"
	"sync"
	"testing"

	"i18n-extract/internal/extract"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryBackend struct {
	mu   sync.Mutex
	data map[string][]byte
	err  error
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{data: make(map[string][]byte)}
}

func (b *memoryBackend) GetScan(ctx context.Context, hash string) ([]byte, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return nil, false, b.err
	}
	d, ok := b.data[hash]
	return d, ok, nil
}

func (b *memoryBackend) PutScan(ctx context.Context, hash string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return b.err
	}
	b.data[hash] = data
	return nil
}

var sample = []extract.Message{
	{Text: "hello", File: "a.js", Line: 3, Pickup: "t", Arg: 0},
	{Text: "", File: "a.js", Line: 4, Pickup: "t", Arg: 0, Unresolved: true},
}

func TestScanCache_MemoryOnly(t *testing.T) {
	t.Parallel()

	c, err := NewScanCache(8, "fp", nil)
	require.NoError(t, err)

	ctx := context.Background()
	key := c.Key("a.js", []byte(`t("hello")`))

	_, ok := c.Get(ctx, key)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, key, sample))
	got, ok := c.Get(ctx, key)
	assert.True(t, ok)
	assert.Equal(t, sample, got)
	assert.Equal(t, 1, c.Len())
}

func TestScanCache_KeyDependsOnAllInputs(t *testing.T) {
	t.Parallel()

	a, err := NewScanCache(8, "fp-a", nil)
	require.NoError(t, err)
	b, err := NewScanCache(8, "fp-b", nil)
	require.NoError(t, err)

	src := []byte(`t("x")`)
	assert.Equal(t, a.Key("a.js", src), a.Key("a.js", src))
	assert.NotEqual(t, a.Key("a.js", src), a.Key("b.js", src))
	assert.NotEqual(t, a.Key("a.js", src), a.Key("a.js", []byte(`t("y")`)))
	assert.NotEqual(t, a.Key("a.js", src), b.Key("a.js", src))
}

func TestScanCache_BackendTier(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backend := newMemoryBackend()

	writer, err := NewScanCache(8, "fp", backend)
	require.NoError(t, err)
	key := writer.Key("a.js", []byte("src"))
	require.NoError(t, writer.Set(ctx, key, sample))

	reader, err := NewScanCache(8, "fp", backend)
	require.NoError(t, err)
	got, ok := reader.Get(ctx, key)
	require.True(t, ok)
	assert.Equal(t, sample, got)
	assert.Equal(t, 1, reader.Len())
}

func TestScanCache_CorruptEntryIsMiss(t *testing.T) {
	t.Parallel()

	backend := newMemoryBackend()
	backend.data["k"] = []byte("{not json")

	c, err := NewScanCache(8, "fp", backend)
	require.NoError(t, err)

	_, ok := c.Get(context.Background(), "k")
	assert.False(t, ok)
}

func TestScanCache_BackendErrors(t *testing.T) {
	t.Parallel()

	backend := newMemoryBackend()
	backend.err = errors.New("db down")

	c, err := NewScanCache(8, "fp", backend)
	require.NoError(t, err)

	ctx := context.Background()
	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)

	err = c.Set(ctx, "k", sample)
	assert.ErrorContains(t, err, "db down")

	got, ok := c.Get(ctx, "k")
	assert.True(t, ok, "memory tier is still populated")
	assert.Equal(t, sample, got)
}

func TestNewScanCache_InvalidSize(t *testing.T) {
	t.Parallel()

	_, err := NewScanCache(0, "fp", nil)
	assert.Error(t, err)
}
