package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gookit/validate"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/custodia-labs/fanslysync/internal/core/domain"
)

// SettingsFileName is the name of the settings file inside the data directory.
const SettingsFileName = "settings.toml"

// EnvPrefix prefixes environment overrides, e.g. FANSLYSYNC_API_TIMEOUT.
const EnvPrefix = "FANSLYSYNC"

// LoadSettings reads settings.toml from dir, applies environment overrides
// and validates the result. A missing file yields the defaults.
func LoadSettings(dir string) (domain.Settings, error) {
	v := viper.New()
	v.SetConfigFile(filepath.Join(dir, SettingsFileName))
	v.SetConfigType("toml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, value := range defaultValues(domain.DefaultSettings()) {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return domain.Settings{}, fmt.Errorf("reading settings: %w", err)
	}

	var s domain.Settings
	if err := v.Unmarshal(&s); err != nil {
		return domain.Settings{}, fmt.Errorf("unable to decode settings: %w", err)
	}

	if err := ValidateSettings(&s); err != nil {
		return domain.Settings{}, err
	}
	return s, nil
}

// ValidateSettings checks field constraints.
func ValidateSettings(s *domain.Settings) error {
	v := validate.Struct(s)
	if !v.Validate() {
		return fmt.Errorf("%w: settings: %s", domain.ErrInvalidInput, v.Errors.One())
	}
	if s.Scheduler.BackoffJitter < 0 || s.Scheduler.BackoffJitter > 1 {
		return fmt.Errorf("%w: settings: scheduler.backoff_jitter must be between 0 and 1", domain.ErrInvalidInput)
	}
	if s.Scheduler.BackoffMax < s.Scheduler.BackoffInitial {
		return fmt.Errorf("%w: settings: scheduler.backoff_max is below backoff_initial", domain.ErrInvalidInput)
	}
	if s.Export.Enabled && s.Export.Endpoint == "" {
		return fmt.Errorf("%w: settings: export.endpoint is required when export is enabled", domain.ErrInvalidInput)
	}
	return nil
}

// WriteDefaultSettings creates settings.toml in dir with default values.
// An existing file is left alone and reported through created=false.
func WriteDefaultSettings(dir string) (path string, created bool, err error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", false, fmt.Errorf("creating settings directory: %w", err)
	}
	path = filepath.Join(dir, SettingsFileName)

	data, err := toml.Marshal(nestMap(defaultValues(domain.DefaultSettings())))
	if err != nil {
		return "", false, fmt.Errorf("encoding settings: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if errors.Is(err, fs.ErrExist) {
		return path, false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("creating settings file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return "", false, fmt.Errorf("writing settings file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", false, fmt.Errorf("closing settings file: %w", err)
	}
	return path, true, nil
}

// defaultValues flattens settings into dot-notation keys.
// Durations are written in their string form so the file stays readable.
func defaultValues(s domain.Settings) map[string]any {
	return map[string]any{
		"storage.backend":              s.Storage.Backend,
		"storage.dir":                  s.Storage.Dir,
		"api.base_url":                 s.API.BaseURL,
		"api.timeout":                  s.API.Timeout.String(),
		"api.requests_per_second":      s.API.RequestsPerSecond,
		"api.page_size":                s.API.PageSize,
		"api.user_agent":               s.API.UserAgent,
		"export.enabled":               s.Export.Enabled,
		"export.endpoint":              s.Export.Endpoint,
		"scheduler.backoff_initial":    s.Scheduler.BackoffInitial.String(),
		"scheduler.backoff_max":        s.Scheduler.BackoffMax.String(),
		"scheduler.backoff_multiplier": s.Scheduler.BackoffMultiplier,
		"scheduler.backoff_jitter":     s.Scheduler.BackoffJitter,
		"log.level":                    s.Log.Level,
		"log.file":                     s.Log.File,
		"log.max_size_mb":              s.Log.MaxSizeMB,
		"log.max_backups":              s.Log.MaxBackups,
		"log.max_age_days":             s.Log.MaxAgeDays,
		"metrics.addr":                 s.Metrics.Addr,
	}
}

// nestMap converts dot-notation keys into nested maps.
// E.g., {"a.b": 1} becomes {"a": {"b": 1}}.
func nestMap(flat map[string]any) map[string]any {
	result := make(map[string]any)

	for key, value := range flat {
		parts := strings.Split(key, ".")
		node := result
		for _, part := range parts[:len(parts)-1] {
			child, ok := node[part].(map[string]any)
			if !ok {
				child = make(map[string]any)
				node[part] = child
			}
			node = child
		}
		node[parts[len(parts)-1]] = value
	}

	return result
}
