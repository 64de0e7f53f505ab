package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/klauspost/compress/zstd"

	"github.com/custodia-labs/fanslysync/internal/core/domain"
	"github.com/custodia-labs/fanslysync/internal/core/ports/driven"
)

// CompressedExt marks a zstd-compressed export.
const CompressedExt = ".zst"

// Ensure FileExporter implements the interface.
var _ driven.SnapshotExporter = (*FileExporter)(nil)

// FileExporter writes snapshots to a single file, replacing it atomically.
type FileExporter struct {
	path string
}

// NewFileExporter creates an exporter writing to path.
func NewFileExporter(path string) (*FileExporter, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: export path is empty", domain.ErrInvalidInput)
	}
	return &FileExporter{path: path}, nil
}

// Path returns the export destination.
func (f *FileExporter) Path() string {
	return f.path
}

// Compressed reports whether exports are zstd-compressed.
func (f *FileExporter) Compressed() bool {
	return strings.HasSuffix(f.path, CompressedExt)
}

// Export writes data and returns the file path.
func (f *FileExporter) Export(ctx context.Context, data domain.SyncData) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	payload, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}

	if f.Compressed() {
		payload, err = compress(payload)
		if err != nil {
			return "", err
		}
	}

	if err := writeAtomic(f.path, payload); err != nil {
		return "", err
	}
	return f.path, nil
}

// ReadFile loads a snapshot written by FileExporter.
func ReadFile(path string) (domain.SyncData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.SyncData{}, fmt.Errorf("read export: %w", err)
	}

	if strings.HasSuffix(path, CompressedExt) {
		raw, err = decompress(raw)
		if err != nil {
			return domain.SyncData{}, err
		}
	}

	var data domain.SyncData
	if err := json.Unmarshal(raw, &data); err != nil {
		return domain.SyncData{}, fmt.Errorf("decode export: %w", err)
	}
	return data, nil
}

func compress(val []byte) ([]byte, error) {
	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	defer encoder.Close()
	return encoder.EncodeAll(val, make([]byte, 0, len(val)/2)), nil
}

func decompress(val []byte) ([]byte, error) {
	decoder, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	defer decoder.Close()

	out, err := decoder.DecodeAll(val, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress export: %w", err)
	}
	return out, nil
}

// writeAtomic writes to a temp file in the same directory, then renames it.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".export-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write export: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close export: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return fmt.Errorf("chmod export: %w", err)
	}
	return os.Rename(tmpName, path)
}
