// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - ConfigBackend: Reads and atomically replaces the persisted Config document
//   - AccountAPI: Authenticated reads of the remote account
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - SnapshotExporter: Uploads a snapshot and returns where it can be fetched
//   - SyncMetrics: Records cycle outcomes
//   - CycleHistoryStore: Keeps a log of completed cycles
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
