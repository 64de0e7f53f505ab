package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/fanslysync/internal/core/domain"
	"github.com/custodia-labs/fanslysync/internal/core/ports/driven"
)

// Ensure ConfigBackend implements the interface.
var _ driven.ConfigBackend = (*ConfigBackend)(nil)

// ConfigBackend is an in-memory implementation of driven.ConfigBackend for
// testing and dry runs.
type ConfigBackend struct {
	mu       sync.RWMutex
	doc      []byte
	writes   int
	writeErr error
}

// NewConfigBackend creates an empty in-memory backend.
func NewConfigBackend() *ConfigBackend {
	return &ConfigBackend{}
}

// NewConfigBackendWith creates a backend pre-seeded with a document.
func NewConfigBackendWith(doc []byte) *ConfigBackend {
	return &ConfigBackend{doc: clone(doc)}
}

// Read returns a copy of the stored document.
func (b *ConfigBackend) Read(_ context.Context) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.doc == nil {
		return nil, domain.ErrNotFound
	}
	return clone(b.doc), nil
}

// Write replaces the stored document.
func (b *ConfigBackend) Write(_ context.Context, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.writeErr != nil {
		return b.writeErr
	}
	b.doc = clone(data)
	b.writes++
	return nil
}

// Path returns a placeholder location.
func (b *ConfigBackend) Path() string {
	return ":memory:"
}

// Writes returns how many successful writes have happened.
func (b *ConfigBackend) Writes() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.writes
}

// Bytes returns a copy of the stored document, or nil.
func (b *ConfigBackend) Bytes() []byte {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return clone(b.doc)
}

// FailWrites makes every subsequent Write return err. Pass nil to recover.
func (b *ConfigBackend) FailWrites(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.writeErr = err
}

func clone(data []byte) []byte {
	if data == nil {
		return nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out
}
