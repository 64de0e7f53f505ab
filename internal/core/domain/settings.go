package domain

import "time"

// Storage backends for the Config record.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Settings is the application configuration. It is separate from Config:
// Settings tune the process, Config is the synchronised state.
type Settings struct {
	Storage   StorageSettings   `mapstructure:"storage" toml:"storage"`
	API       APISettings       `mapstructure:"api" toml:"api"`
	Export    ExportSettings    `mapstructure:"export" toml:"export"`
	Scheduler SchedulerSettings `mapstructure:"scheduler" toml:"scheduler"`
	Log       LogSettings       `mapstructure:"log" toml:"log"`
	Metrics   MetricsSettings   `mapstructure:"metrics" toml:"metrics"`
}

// StorageSettings selects where the Config record lives.
type StorageSettings struct {
	Backend string `mapstructure:"backend" toml:"backend" validate:"required|in:file,sqlite,memory"`
	Dir     string `mapstructure:"dir" toml:"dir"`
}

// APISettings configures the remote API client.
type APISettings struct {
	BaseURL           string        `mapstructure:"base_url" toml:"base_url" validate:"required|fullUrl"`
	Timeout           time.Duration `mapstructure:"timeout" toml:"timeout" validate:"required"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second" toml:"requests_per_second" validate:"required|gt:0"`
	PageSize          int           `mapstructure:"page_size" toml:"page_size" validate:"required|min:1|max:100"`
	UserAgent         string        `mapstructure:"user_agent" toml:"user_agent" validate:"required"`
}

// ExportSettings configures snapshot uploads.
type ExportSettings struct {
	Enabled  bool   `mapstructure:"enabled" toml:"enabled"`
	Endpoint string `mapstructure:"endpoint" toml:"endpoint" validate:"fullUrl"`
}

// SchedulerSettings configures retry backoff.
type SchedulerSettings struct {
	BackoffInitial    time.Duration `mapstructure:"backoff_initial" toml:"backoff_initial" validate:"required"`
	BackoffMax        time.Duration `mapstructure:"backoff_max" toml:"backoff_max" validate:"required"`
	BackoffMultiplier float64       `mapstructure:"backoff_multiplier" toml:"backoff_multiplier" validate:"required|gt:1"`
	BackoffJitter     float64       `mapstructure:"backoff_jitter" toml:"backoff_jitter"`
}

// LogSettings configures the logger.
type LogSettings struct {
	Level      string `mapstructure:"level" toml:"level" validate:"required|in:debug,info,warn,error"`
	File       string `mapstructure:"file" toml:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" toml:"max_size_mb" validate:"min:0"`
	MaxBackups int    `mapstructure:"max_backups" toml:"max_backups" validate:"min:0"`
	MaxAgeDays int    `mapstructure:"max_age_days" toml:"max_age_days" validate:"min:0"`
}

// MetricsSettings configures the Prometheus endpoint served by the daemon.
type MetricsSettings struct {
	Addr string `mapstructure:"addr" toml:"addr"`
}

// SchedulerConfig converts the scheduler settings.
func (s SchedulerSettings) SchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		BackoffInitial:    s.BackoffInitial,
		BackoffMax:        s.BackoffMax,
		BackoffMultiplier: s.BackoffMultiplier,
		BackoffJitter:     s.BackoffJitter,
	}
}

// DefaultSettings returns the settings used when no settings file exists.
func DefaultSettings() Settings {
	sched := DefaultSchedulerConfig()
	return Settings{
		Storage: StorageSettings{
			Backend: BackendFile,
		},
		API: APISettings{
			BaseURL:           "https://apiv3.fansly.com/api/v1",
			Timeout:           30 * time.Second,
			RequestsPerSecond: 2,
			PageSize:          100,
			UserAgent:         "FanslySync/1.0.0",
		},
		Export: ExportSettings{
			Enabled:  false,
			Endpoint: "https://paste.hep.gg",
		},
		Scheduler: SchedulerSettings{
			BackoffInitial:    sched.BackoffInitial,
			BackoffMax:        sched.BackoffMax,
			BackoffMultiplier: sched.BackoffMultiplier,
			BackoffJitter:     sched.BackoffJitter,
		},
		Log: LogSettings{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}
