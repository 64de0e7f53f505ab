package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/fanslysync/internal/core/domain"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the stored sync state",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if configService == nil {
		return errors.New("config service not configured")
	}

	ctx := context.Background()
	cfg, err := configService.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	lines := []string{
		titleStyle.Render("fanslysync status"),
		"",
		row("Config", configService.Path()),
		row("Token", maskToken(cfg.FanslyToken)),
		row("Auto sync", autoSyncLabel(cfg.AutoSyncEnabled)),
		row("Interval", cfg.Interval().String()),
		row("Last sync", formatTime(cfg.LastSyncTime())),
		row("Followers", fmt.Sprintf("%d", len(cfg.LastSyncData.Followers))),
		row("Subscribers", fmt.Sprintf("%d", len(cfg.LastSyncData.Subscribers))),
	}
	if cfg.LastSyncData.SyncDataURL != "" {
		lines = append(lines, row("Export", cfg.LastSyncData.SyncDataURL))
	}
	if cfg.AutoSyncEnabled {
		lines = append(lines, row("Next sync", formatTime(cfg.NextAutoSync(timeNow()))))
	}

	if syncScheduler != nil {
		st := syncScheduler.Status()
		if st.Running {
			lines = append(lines, row("Scheduler", string(st.State)))
		}
	}

	if historyStore != nil {
		recent, err := historyStore.Recent(ctx, 1)
		if err == nil && len(recent) > 0 {
			lines = append(lines, row("Last cycle", cycleLabel(recent[0])))
		}
	}

	cmd.Println(boxStyle.Render(strings.Join(lines, "\n")))
	return nil
}

func autoSyncLabel(enabled bool) string {
	if enabled {
		return successStyle.Render("enabled")
	}
	return warningStyle.Render("disabled")
}

func cycleLabel(rec domain.CycleRecord) string {
	when := formatTime(rec.EndedAt)
	switch {
	case rec.Success:
		return successStyle.Render("ok") + " " + when + " (" + rec.Summary + ")"
	case rec.ReauthRequired:
		return errorStyle.Render("token rejected") + " " + when
	default:
		return errorStyle.Render("failed") + " " + when + ": " + rec.Error
	}
}
