package export

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/fanslysync/internal/core/domain"
)

func TestNewFileExporter_EmptyPath(t *testing.T) {
	_, err := NewFileExporter("")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestFileExporter_Plain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	f, err := NewFileExporter(path)
	require.NoError(t, err)
	assert.False(t, f.Compressed())

	location, err := f.Export(context.Background(), sampleData())
	require.NoError(t, err)
	assert.Equal(t, path, location)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"followerId": "f1"`)

	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, sampleData(), got)
}

func TestFileExporter_Compressed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "snapshot.json.zst")
	f, err := NewFileExporter(path)
	require.NoError(t, err)
	assert.True(t, f.Compressed())

	_, err = f.Export(context.Background(), sampleData())
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	decoder, err := zstd.NewReader(nil)
	require.NoError(t, err)
	defer decoder.Close()
	plain, err := decoder.DecodeAll(raw, nil)
	require.NoError(t, err)
	assert.Contains(t, string(plain), `"s1"`)

	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, sampleData(), got)
}

func TestFileExporter_ReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	f, err := NewFileExporter(path)
	require.NoError(t, err)

	_, err = f.Export(context.Background(), sampleData())
	require.NoError(t, err)
	_, err = f.Export(context.Background(), domain.EmptySyncData())
	require.NoError(t, err)

	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, got.Followers)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileExporter_CancelledContext(t *testing.T) {
	f, err := NewFileExporter(filepath.Join(t.TempDir(), "x.json"))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = f.Export(ctx, sampleData())

	assert.ErrorIs(t, err, context.Canceled)
}

func TestReadFile_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json.zst")
	require.NoError(t, os.WriteFile(path, []byte("not zstd"), 0o600))

	_, err := ReadFile(path)

	assert.Error(t, err)
}
