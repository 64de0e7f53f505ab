package driven

import "context"

// ConfigBackend stores the single Config record as an opaque JSON document.
// The core owns decoding and migrations; the backend only persists bytes.
type ConfigBackend interface {
	// Read returns the stored document.
	// Returns domain.ErrNotFound if nothing has been written yet.
	Read(ctx context.Context) ([]byte, error)

	// Write replaces the stored document. A concurrent Read observes
	// either the old document or the new one, never a mix.
	Write(ctx context.Context, doc []byte) error

	// Path describes where the record lives (file path or DSN).
	Path() string
}
