package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	json "github.com/goccy/go-json"

	"github.com/custodia-labs/fanslysync/internal/core/domain"
	"github.com/custodia-labs/fanslysync/internal/core/ports/driven"
	"github.com/custodia-labs/fanslysync/internal/core/ports/driving"
	"github.com/custodia-labs/fanslysync/internal/logger"
)

// Ensure ConfigService implements the interface.
var _ driving.ConfigService = (*ConfigService)(nil)

// ConfigService owns the Config record on top of a ConfigBackend.
// All reads and writes go through one mutex, and every write replaces the
// whole document, so last_sync and last_sync_data are never observed apart.
type ConfigService struct {
	backend driven.ConfigBackend
	mu      sync.Mutex
}

// NewConfigService creates a config service over a backend.
func NewConfigService(backend driven.ConfigBackend) *ConfigService {
	return &ConfigService{backend: backend}
}

// Path describes where the Config is stored.
func (s *ConfigService) Path() string {
	return s.backend.Path()
}

// Load reads the Config, creating it on first use and migrating older layouts.
func (s *ConfigService) Load(ctx context.Context) (*domain.Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Commit merges a successful cycle. The stored cursor and last_sync must
// still match the base the cycle started from.
func (s *ConfigService) Commit(ctx context.Context, req driving.CommitRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.load(ctx)
	if err != nil {
		return err
	}

	if current.SyncToken != req.BaseCursor || current.LastSync != req.BaseLastSync {
		return &domain.MergeConflictError{Reason: "config changed since the cycle started"}
	}
	nowMillis := req.Now.UnixMilli()
	if nowMillis < current.LastSync {
		return &domain.MergeConflictError{Reason: "snapshot is older than the last merge"}
	}

	next := current.Clone()
	next.LastSyncData = req.Snapshot.Clone()
	next.SyncToken = req.Cursor
	next.LastSync = nowMillis
	next.IsFirstRun = false

	if err := s.write(ctx, next); err != nil {
		return fmt.Errorf("commit config: %w", err)
	}

	logger.Debug("Committed snapshot: %d followers, %d subscribers, cursor %s",
		len(next.LastSyncData.Followers), len(next.LastSyncData.Subscribers), next.SyncToken)
	return nil
}

// Update applies a user edit and persists it.
func (s *ConfigService) Update(ctx context.Context, fn func(*domain.Config) error) (*domain.Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	next := current.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	if next.SyncInterval <= 0 {
		return nil, fmt.Errorf("%w: sync interval must be positive", domain.ErrInvalidInput)
	}
	next.Version = domain.CurrentSchemaVersion

	if err := s.write(ctx, next); err != nil {
		return nil, fmt.Errorf("update config: %w", err)
	}
	return next.Clone(), nil
}

// ConsumeFirstRun reports whether this is the first run and clears the flag.
func (s *ConfigService) ConsumeFirstRun(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	if !current.IsFirstRun {
		return false, nil
	}

	current.IsFirstRun = false
	if err := s.write(ctx, current); err != nil {
		return false, fmt.Errorf("clear first run: %w", err)
	}
	return true, nil
}

// load reads and migrates the record (caller must hold lock).
func (s *ConfigService) load(ctx context.Context) (*domain.Config, error) {
	raw, err := s.backend.Read(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		cfg := domain.DefaultConfig()
		logger.Info("Creating config at %s", s.backend.Path())
		if err := s.write(ctx, &cfg); err != nil {
			return nil, fmt.Errorf("create config: %w", err)
		}
		return &cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	doc, err := decodeDocument(raw)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	version, err := documentVersion(doc)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if version > domain.CurrentSchemaVersion {
		return nil, &domain.UnsupportedSchemaError{Stored: version, Supported: domain.CurrentSchemaVersion}
	}
	if version < 1 {
		return nil, fmt.Errorf("%w: config version %d", domain.ErrInvalidInput, version)
	}

	if version < domain.CurrentSchemaVersion {
		logger.Info("Migrating config from version %d to %d", version, domain.CurrentSchemaVersion)
		if _, err := migrate(doc, version); err != nil {
			return nil, err
		}
		raw, err = json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("encode migrated config: %w", err)
		}
	}

	var cfg domain.Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	normalise(&cfg)

	if version < domain.CurrentSchemaVersion {
		if err := s.write(ctx, &cfg); err != nil {
			return nil, fmt.Errorf("save migrated config: %w", err)
		}
	}
	return &cfg, nil
}

// write encodes and replaces the stored document (caller must hold lock).
func (s *ConfigService) write(ctx context.Context, cfg *domain.Config) error {
	normalise(cfg)
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return s.backend.Write(ctx, data)
}

func decodeDocument(raw []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: empty document", domain.ErrInvalidInput)
	}
	return doc, nil
}

// normalise replaces nil collections so they serialise as [].
func normalise(cfg *domain.Config) {
	if cfg.LastSyncData.Followers == nil {
		cfg.LastSyncData.Followers = []domain.Follower{}
	}
	if cfg.LastSyncData.Subscribers == nil {
		cfg.LastSyncData.Subscribers = []domain.Subscriber{}
	}
}
