package cache

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/clearmeat/assessment/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDiskTier(t *testing.T) (*DiskTier, string) {
	dir := t.TempDir()
	tier, err := newDiskTier(dir)
	require.NoError(t, err)
	return tier, dir
}

func TestDiskTier_WriteAndRead(t *testing.T) {
	tier, _ := newTestDiskTier(t)
	ctx := context.Background()

	entry := testEntry("4001234567890")
	require.NoError(t, tier.WriteEntry(ctx, "4001234567890", entry))

	got, err := tier.ReadEntry(ctx, "4001234567890")
	require.NoError(t, err)
	assert.Equal(t, "4001234567890", got.Payload.ProductID)
	assert.WithinDuration(t, entry.CapturedAt, got.CapturedAt, 0)
}

func TestDiskTier_Read_Missing(t *testing.T) {
	tier, _ := newTestDiskTier(t)

	_, err := tier.ReadEntry(context.Background(), "missing")
	assert.ErrorIs(t, err, models.ErrCacheMiss)
}

func TestDiskTier_Read_CorruptFileSelfHeals(t *testing.T) {
	tier, dir := newTestDiskTier(t)
	ctx := context.Background()

	// Plant a corrupt entry file directly
	name := base64.RawURLEncoding.EncodeToString([]byte("corrupt-key")) + entryFileExt
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := tier.ReadEntry(ctx, "corrupt-key")
	assert.ErrorIs(t, err, models.ErrCacheMiss)

	// The offending file must be gone
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestDiskTier_Write_Overwrite(t *testing.T) {
	tier, _ := newTestDiskTier(t)
	ctx := context.Background()

	require.NoError(t, tier.WriteEntry(ctx, "key", testEntry("first")))
	require.NoError(t, tier.WriteEntry(ctx, "key", testEntry("second")))

	got, err := tier.ReadEntry(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, "second", got.Payload.ProductID)

	stats, err := tier.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Count)
}

func TestDiskTier_Delete_NonExistent(t *testing.T) {
	tier, _ := newTestDiskTier(t)

	assert.NoError(t, tier.DeleteEntry(context.Background(), "missing"))
}

func TestDiskTier_Keys(t *testing.T) {
	tier, _ := newTestDiskTier(t)
	ctx := context.Background()

	require.NoError(t, tier.WriteEntry(ctx, "alpha/1", testEntry("1")))
	require.NoError(t, tier.WriteEntry(ctx, "beta.2", testEntry("2")))

	keys, err := tier.Keys(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alpha/1", "beta.2"}, keys)
}

func TestDiskTier_Stats(t *testing.T) {
	tier, _ := newTestDiskTier(t)
	ctx := context.Background()

	require.NoError(t, tier.WriteEntry(ctx, "a", testEntry("1")))
	require.NoError(t, tier.WriteEntry(ctx, "b", testEntry("2")))

	stats, err := tier.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Count)
	assert.Greater(t, stats.TotalBytes, int64(0))
}

func TestDiskTier_Clear(t *testing.T) {
	tier, _ := newTestDiskTier(t)
	ctx := context.Background()

	for _, key := range []string{"a", "b", "c"} {
		require.NoError(t, tier.WriteEntry(ctx, key, testEntry(key)))
	}

	require.NoError(t, tier.Clear(ctx))

	stats, err := tier.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Count)
	assert.Equal(t, int64(0), stats.TotalBytes)

	for _, key := range []string{"a", "b", "c"} {
		_, err := tier.ReadEntry(ctx, key)
		assert.ErrorIs(t, err, models.ErrCacheMiss)
	}
}

func TestDiskTier_KeysAreFilenameSafe(t *testing.T) {
	tier, dir := newTestDiskTier(t)
	ctx := context.Background()

	// Opaque keys must never escape the cache directory
	key := "../../../etc/passwd"
	require.NoError(t, tier.WriteEntry(ctx, key, testEntry("x")))

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)

	got, err := tier.ReadEntry(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "x", got.Payload.ProductID)
}
