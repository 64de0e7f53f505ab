package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/custodia-labs/fanslysync/internal/core/domain"
	"github.com/custodia-labs/fanslysync/internal/core/ports/driven"
)

// ConfigFileName is the name of the Config document inside the data directory.
const ConfigFileName = "config.json"

// Ensure ConfigBackend implements the interface.
var _ driven.ConfigBackend = (*ConfigBackend)(nil)

// ConfigBackend stores the Config record as a JSON file.
// Writes go to a temporary file that is synced and renamed over the
// original, so readers see either the old or the new document.
type ConfigBackend struct {
	dir  string
	path string
}

// DefaultDir returns ~/.fanslysync.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".fanslysync"), nil
}

// NewConfigBackend creates a backend in dir.
// If dir is empty, defaults to ~/.fanslysync/config.json.
func NewConfigBackend(dir string) (*ConfigBackend, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}

	// Ensure directory exists
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	return &ConfigBackend{
		dir:  dir,
		path: filepath.Join(dir, ConfigFileName),
	}, nil
}

// Read returns the stored document, or domain.ErrNotFound if there is none.
func (b *ConfigBackend) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(b.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", b.path, err)
	}
	return data, nil
}

// Write replaces the stored document.
func (b *ConfigBackend) Write(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(b.dir, ".config-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if err := writeAndSync(tmp, data); err != nil {
		_ = os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, b.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", b.path, err)
	}
	return nil
}

// Path returns the configuration file path.
func (b *ConfigBackend) Path() string {
	return b.path
}

// Dir returns the directory holding the configuration file.
func (b *ConfigBackend) Dir() string {
	return b.dir
}

func writeAndSync(f *os.File, data []byte) error {
	if err := f.Chmod(0600); err != nil {
		f.Close()
		return fmt.Errorf("setting permissions: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	return nil
}
