package domain

import "time"

// CurrentSchemaVersion is the Config layout this build reads and writes.
const CurrentSchemaVersion = 2

// DefaultSyncInterval is the interval a freshly created Config starts with.
const DefaultSyncInterval = time.Hour

// Config is the single persisted unit of engine state.
// Durations and timestamps are stored in milliseconds to keep the JSON
// layout stable across releases.
type Config struct {
	// Version is the schema version of the stored layout.
	Version int `json:"version"`

	// IsFirstRun is consumed once and then cleared.
	IsFirstRun bool `json:"is_first_run"`

	// FanslyToken is the opaque bearer credential. It is set externally.
	FanslyToken string `json:"fansly_token"`

	// AutoSyncEnabled arms the periodic timer.
	AutoSyncEnabled bool `json:"auto_sync_enabled"`

	// SyncToken is the remote-issued cursor, advanced only on a successful merge.
	SyncToken string `json:"sync_token"`

	// SyncInterval is the delay between automatic cycles, in milliseconds.
	SyncInterval int64 `json:"sync_interval"`

	// LastSync is the time of the last successful merge, in epoch milliseconds.
	LastSync int64 `json:"last_sync"`

	// LastSyncData is the snapshot committed together with LastSync.
	LastSyncData SyncData `json:"last_sync_data"`
}

// DefaultConfig returns the Config written on first run.
func DefaultConfig() Config {
	return Config{
		Version:      CurrentSchemaVersion,
		IsFirstRun:   true,
		SyncInterval: DefaultSyncInterval.Milliseconds(),
		LastSyncData: EmptySyncData(),
	}
}

// Interval returns SyncInterval as a duration.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.SyncInterval) * time.Millisecond
}

// SetInterval stores d as milliseconds.
func (c *Config) SetInterval(d time.Duration) {
	c.SyncInterval = d.Milliseconds()
}

// LastSyncTime returns LastSync as a time, or the zero time if never synced.
func (c *Config) LastSyncTime() time.Time {
	if c.LastSync == 0 {
		return time.Time{}
	}
	return time.UnixMilli(c.LastSync)
}

// HasCredential reports whether a token is stored.
func (c *Config) HasCredential() bool {
	return c.FanslyToken != ""
}

// NextAutoSync returns when the next automatic cycle is due, measured from
// the last successful merge. A Config that never synced is due immediately.
func (c *Config) NextAutoSync(now time.Time) time.Time {
	if c.LastSync == 0 {
		return now
	}
	return c.LastSyncTime().Add(c.Interval())
}

// Clone returns a deep copy; callers never share slices with a store.
func (c *Config) Clone() *Config {
	out := *c
	out.LastSyncData = c.LastSyncData.Clone()
	return &out
}
