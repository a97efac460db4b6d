package catalog

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"i18n-extract/internal/extract"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestStore connects to the database named by I18N_EXTRACT_TEST_DATABASE_URL
// and skips the test when it is unset.
func openTestStore(t *testing.T) *Store {
	t.Helper()

	url := os.Getenv("I18N_EXTRACT_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("I18N_EXTRACT_TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := Open(ctx, url)
	require.NoError(t, err)
	t.Cleanup(store.Close)

	require.NoError(t, store.EnsureSchema(ctx))
	return store
}

func TestStore_ReplaceFile(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	file := fmt.Sprintf("test/%d.js", time.Now().UnixNano())

	first := []extract.Message{
		{Text: "one", File: file, Line: 1, Pickup: "t", Arg: 0},
		{Text: "", File: file, Line: 2, Pickup: "t", Arg: 0, Unresolved: true},
	}
	require.NoError(t, store.ReplaceFile(ctx, file, first))

	got, err := store.Messages(ctx, file)
	require.NoError(t, err)
	assert.Equal(t, first, got)

	second := []extract.Message{{Text: "two", File: file, Line: 5, Pickup: "_", Arg: 0}}
	require.NoError(t, store.ReplaceFile(ctx, file, second))

	got, err = store.Messages(ctx, file)
	require.NoError(t, err)
	assert.Equal(t, second, got)

	require.NoError(t, store.ReplaceFile(ctx, file, nil))
	got, err = store.Messages(ctx, file)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_ScanCache(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	hash := fmt.Sprintf("test-%d", time.Now().UnixNano())

	_, ok, err := store.GetScan(ctx, hash)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.PutScan(ctx, hash, []byte(`[{"text":"a"}]`)))
	require.NoError(t, store.PutScan(ctx, hash, []byte(`[{"text":"b"}]`)))

	data, ok, err := store.GetScan(ctx, hash)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `[{"text":"b"}]`, string(data))
}
