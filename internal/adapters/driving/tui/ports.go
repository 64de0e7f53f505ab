// Package tui provides the live sync dashboard.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/fanslysync/internal/core/ports/driven"
	"github.com/custodia-labs/fanslysync/internal/core/ports/driving"
)

// Ports aggregates the services the dashboard reads and drives.
type Ports struct {
	// Scheduler runs cycles and reports its state.
	Scheduler driving.Scheduler

	// Config reads and edits the stored Config.
	Config driving.ConfigService

	// History lists recent cycles. Optional.
	History driven.CycleHistoryStore
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Scheduler == nil {
		return ErrMissingScheduler
	}
	if p.Config == nil {
		return ErrMissingConfigService
	}
	return nil
}
