// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The cycle is split across four services: AccountFetcher reads the
// remote account, Diff compares snapshots, ConfigService migrates and
// commits the Config record, and Scheduler decides when cycles run.
package services
