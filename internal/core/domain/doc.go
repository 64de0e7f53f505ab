// Package domain defines the core business entities for fanslysync.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Config: The single persisted record (credential, cursor, snapshot)
//   - SyncData: An immutable snapshot of followers and subscribers
//   - AccountInfo: The remote account representation consumed by a fetch
//   - Delta: The structural difference between two snapshots
//   - Result: A tagged (value, error) pair for fallible operations
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
