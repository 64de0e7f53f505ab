package file

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/fanslysync/internal/core/domain"
)

func TestLoadSettings_Defaults(t *testing.T) {
	s, err := LoadSettings(t.TempDir())

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSettings(), s)
}

func TestLoadSettings_FromFile(t *testing.T) {
	dir := t.TempDir()
	content := `
[storage]
backend = "sqlite"

[api]
timeout = "10s"
page_size = 50

[scheduler]
backoff_initial = "5s"
backoff_max = "1m"

[log]
level = "debug"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, SettingsFileName), []byte(content), 0600))

	s, err := LoadSettings(dir)

	require.NoError(t, err)
	assert.Equal(t, domain.BackendSQLite, s.Storage.Backend)
	assert.Equal(t, 10*time.Second, s.API.Timeout)
	assert.Equal(t, 50, s.API.PageSize)
	assert.Equal(t, 5*time.Second, s.Scheduler.BackoffInitial)
	assert.Equal(t, time.Minute, s.Scheduler.BackoffMax)
	assert.Equal(t, "debug", s.Log.Level)
	// Untouched keys keep their defaults.
	assert.Equal(t, "https://apiv3.fansly.com/api/v1", s.API.BaseURL)
}

func TestLoadSettings_EnvOverride(t *testing.T) {
	t.Setenv("FANSLYSYNC_API_TIMEOUT", "45s")
	t.Setenv("FANSLYSYNC_STORAGE_BACKEND", "memory")

	s, err := LoadSettings(t.TempDir())

	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, s.API.Timeout)
	assert.Equal(t, domain.BackendMemory, s.Storage.Backend)
}

func TestLoadSettings_Invalid(t *testing.T) {
	dir := t.TempDir()
	content := "[storage]\nbackend = \"postgres\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, SettingsFileName), []byte(content), 0600))

	_, err := LoadSettings(dir)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLoadSettings_Malformed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, SettingsFileName), []byte("[api\n"), 0600))

	_, err := LoadSettings(dir)

	assert.Error(t, err)
}

func TestValidateSettings(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*domain.Settings)
	}{
		{"page size too large", func(s *domain.Settings) { s.API.PageSize = 500 }},
		{"zero rate", func(s *domain.Settings) { s.API.RequestsPerSecond = 0 }},
		{"bad log level", func(s *domain.Settings) { s.Log.Level = "loud" }},
		{"jitter above one", func(s *domain.Settings) { s.Scheduler.BackoffJitter = 1.5 }},
		{"max below initial", func(s *domain.Settings) { s.Scheduler.BackoffMax = time.Second }},
		{"export without endpoint", func(s *domain.Settings) {
			s.Export.Enabled = true
			s.Export.Endpoint = ""
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := domain.DefaultSettings()
			tt.modify(&s)
			assert.ErrorIs(t, ValidateSettings(&s), domain.ErrInvalidInput)
		})
	}

	t.Run("defaults are valid", func(t *testing.T) {
		s := domain.DefaultSettings()
		assert.NoError(t, ValidateSettings(&s))
	})
}

func TestWriteDefaultSettings(t *testing.T) {
	dir := t.TempDir()

	path, created, err := WriteDefaultSettings(dir)
	require.NoError(t, err)
	assert.True(t, created)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, toml.Unmarshal(data, &doc))
	assert.Equal(t, "30s", doc["api"].(map[string]any)["timeout"])

	// The written file loads back to the defaults.
	s, err := LoadSettings(dir)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSettings(), s)

	_, created, err = WriteDefaultSettings(dir)
	require.NoError(t, err)
	assert.False(t, created)
}

func TestNestMap(t *testing.T) {
	got := nestMap(map[string]any{"a.b": 1, "a.c": "x", "d": true})

	assert.Equal(t, map[string]any{
		"a": map[string]any{"b": 1, "c": "x"},
		"d": true,
	}, got)
}
