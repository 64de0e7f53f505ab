package cli

import (
	"time"

	"github.com/custodia-labs/fanslysync/internal/adapters/driving/tui/styles"
)

// palette is shared with the dashboard.
var palette = styles.DefaultStyles()

var (
	titleStyle   = palette.Title
	successStyle = palette.Success
	warningStyle = palette.Warning
	errorStyle   = palette.Error
	boxStyle     = palette.Box
)

// row renders "label value" with an aligned label column.
func row(label, value string) string {
	return palette.Row(label, value)
}

func maskToken(token string) string {
	if token == "" {
		return "(not set)"
	}
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
