package services

import (
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/custodia-labs/fanslysync/internal/core/domain"
)

// migration transforms a stored document from version `from` to from+1.
type migration struct {
	from  int
	apply func(doc map[string]any) error
}

// migrations are applied in order until the document reaches
// domain.CurrentSchemaVersion. Every step must exist; versions only grow.
var migrations = []migration{
	{from: 1, apply: migrateV1ToV2},
}

// migrateV1ToV2 adds the auto-sync toggle, the remote cursor and the
// export URL, and converts sync_interval from hours to milliseconds.
func migrateV1ToV2(doc map[string]any) error {
	setDefault(doc, "auto_sync_enabled", false)
	setDefault(doc, "sync_token", "")

	hours, err := numberField(doc, "sync_interval")
	if err != nil {
		return err
	}
	if hours <= 0 {
		hours = 1
	}
	doc["sync_interval"] = hours * 3_600_000

	data, ok := doc["last_sync_data"].(map[string]any)
	if !ok {
		data = map[string]any{"followers": []any{}, "subscribers": []any{}}
		doc["last_sync_data"] = data
	}
	setDefault(data, "sync_data_url", "")

	return nil
}

// migrate applies every pending step to doc and returns the new version.
func migrate(doc map[string]any, version int) (int, error) {
	for version < domain.CurrentSchemaVersion {
		step, ok := findMigration(version)
		if !ok {
			return version, fmt.Errorf("no migration path for version %d", version)
		}
		if err := step.apply(doc); err != nil {
			return version, fmt.Errorf("migrating version %d: %w", version, err)
		}
		version++
		doc["version"] = version
	}
	return version, nil
}

func findMigration(from int) (migration, bool) {
	for _, m := range migrations {
		if m.from == from {
			return m, true
		}
	}
	return migration{}, false
}

// documentVersion reads the schema version; documents written before the
// field existed are version 1.
func documentVersion(doc map[string]any) (int, error) {
	if _, ok := doc["version"]; !ok {
		return 1, nil
	}
	v, err := numberField(doc, "version")
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

func numberField(doc map[string]any, key string) (int64, error) {
	switch v := doc[key].(type) {
	case nil:
		return 0, nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("field %q: %w", key, err)
		}
		return n, nil
	case float64:
		return int64(v), nil
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	default:
		return 0, fmt.Errorf("field %q: unexpected type %T", key, v)
	}
}

func setDefault(doc map[string]any, key string, value any) {
	if _, ok := doc[key]; !ok {
		doc[key] = value
	}
}
