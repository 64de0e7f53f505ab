package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/fanslysync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/fanslysync/internal/core/services"
)

func TestPorts_Validate(t *testing.T) {
	config := services.NewConfigService(memory.NewConfigBackend())

	tests := []struct {
		name  string
		ports Ports
		want  error
	}{
		{"complete", Ports{Scheduler: &mockScheduler{}, Config: config}, nil},
		{"history optional", Ports{Scheduler: &mockScheduler{}, Config: config, History: nil}, nil},
		{"missing scheduler", Ports{Config: config}, ErrMissingScheduler},
		{"missing config", Ports{Scheduler: &mockScheduler{}}, ErrMissingConfigService},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ports.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
