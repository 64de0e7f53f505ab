package tui

import "errors"

// ErrMissingScheduler is returned when the scheduler is not provided.
var ErrMissingScheduler = errors.New("tui: scheduler is required")

// ErrMissingConfigService is returned when the config service is not provided.
var ErrMissingConfigService = errors.New("tui: config service is required")
