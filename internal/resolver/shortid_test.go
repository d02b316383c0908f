package resolver

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsdsmelo/gridnote/internal/store"
	"github.com/dsdsmelo/gridnote/pkg/sheet"
)

const (
	sheetA = "aabbcc11-0000-4000-8000-000000000001"
	sheetB = "aabbcc22-0000-4000-8000-000000000002"
)

// setupResolver seeds a miniredis-backed store with two sheets sharing a
// 6-character ID prefix.
func setupResolver(t *testing.T) *store.Client {
	t.Helper()
	mr := miniredis.NewMiniRedis()
	require.NoError(t, mr.Start())
	t.Cleanup(mr.Close)

	client, err := store.NewClient(&redis.Options{Addr: mr.Addr()}, "test-project")
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	for _, id := range []string{sheetA, sheetB} {
		snap := &sheet.Snapshot{
			Meta: sheet.Spreadsheet{ID: id, Name: "sheet " + id[:8]},
		}
		require.NoError(t, client.SaveSheet(context.Background(), snap))
	}
	return client
}

func TestResolveSheetIDFullUUID(t *testing.T) {
	client := setupResolver(t)
	ctx := context.Background()

	id, err := ResolveSheetID(ctx, client, sheetA)
	require.NoError(t, err)
	assert.Equal(t, sheetA, id)

	t.Run("missing sheet rejected", func(t *testing.T) {
		_, err := ResolveSheetID(ctx, client, "99999999-9999-4999-8999-999999999999")
		assert.ErrorContains(t, err, "sheet not found")
	})
}

func TestResolveSheetIDPrefix(t *testing.T) {
	client := setupResolver(t)
	ctx := context.Background()

	id, err := ResolveSheetID(ctx, client, "aabbcc11")
	require.NoError(t, err)
	assert.Equal(t, sheetA, id)

	id, err = ResolveSheetID(ctx, client, "aabbcc22")
	require.NoError(t, err)
	assert.Equal(t, sheetB, id)
}

func TestResolveSheetIDTooShort(t *testing.T) {
	client := setupResolver(t)

	_, err := ResolveSheetID(context.Background(), client, "aabb")
	assert.ErrorContains(t, err, "at least 6 characters")
}

func TestResolveSheetIDNotFound(t *testing.T) {
	client := setupResolver(t)

	_, err := ResolveSheetID(context.Background(), client, "ffffff")
	assert.True(t, IsNotFoundError(err))
}

func TestResolveSheetIDAmbiguous(t *testing.T) {
	client := setupResolver(t)

	_, err := ResolveSheetID(context.Background(), client, "aabbcc")
	require.True(t, IsAmbiguousError(err))

	ambErr := err.(*AmbiguousError)
	assert.Len(t, ambErr.Matches, 2)

	msg := FormatAmbiguousError(ambErr)
	assert.Contains(t, msg, sheetA)
	assert.Contains(t, msg, sheetB)
	assert.Contains(t, msg, "longer prefix")
}
