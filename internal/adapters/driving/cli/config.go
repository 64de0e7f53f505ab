package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/fanslysync/internal/core/domain"
)

// minSyncInterval keeps automatic cycles from hammering the API.
const minSyncInterval = time.Minute

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View and change the sync configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored Config (token masked)",
	RunE:  runConfigShow,
}

var configEnableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Enable automatic sync",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return setAutoSync(cmd, true)
	},
}

var configDisableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Disable automatic sync",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return setAutoSync(cmd, false)
	},
}

var configIntervalCmd = &cobra.Command{
	Use:   "interval [duration]",
	Short: "Set the automatic sync interval (e.g. 30m, 2h)",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigInterval,
}

var configShowSnapshot bool

func init() {
	configShowCmd.Flags().BoolVar(&configShowSnapshot, "snapshot", false, "include the stored snapshot")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEnableCmd)
	configCmd.AddCommand(configDisableCmd)
	configCmd.AddCommand(configIntervalCmd)
	rootCmd.AddCommand(configCmd)
}

// configView is the printable form of the Config.
type configView struct {
	Version         int              `json:"version"`
	IsFirstRun      bool             `json:"is_first_run"`
	FanslyToken     string           `json:"fansly_token"`
	AutoSyncEnabled bool             `json:"auto_sync_enabled"`
	SyncToken       string           `json:"sync_token"`
	SyncInterval    int64            `json:"sync_interval"`
	LastSync        int64            `json:"last_sync"`
	Followers       int              `json:"followers"`
	Subscribers     int              `json:"subscribers"`
	SyncDataURL     string           `json:"sync_data_url,omitempty"`
	LastSyncData    *domain.SyncData `json:"last_sync_data,omitempty"`
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if configService == nil {
		return errors.New("config service not configured")
	}

	cfg, err := configService.Load(context.Background())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	view := configView{
		Version:         cfg.Version,
		IsFirstRun:      cfg.IsFirstRun,
		FanslyToken:     maskToken(cfg.FanslyToken),
		AutoSyncEnabled: cfg.AutoSyncEnabled,
		SyncToken:       cfg.SyncToken,
		SyncInterval:    cfg.SyncInterval,
		LastSync:        cfg.LastSync,
		Followers:       len(cfg.LastSyncData.Followers),
		Subscribers:     len(cfg.LastSyncData.Subscribers),
		SyncDataURL:     cfg.LastSyncData.SyncDataURL,
	}
	if configShowSnapshot {
		view.LastSyncData = &cfg.LastSyncData
	}

	data, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func setAutoSync(cmd *cobra.Command, enabled bool) error {
	if configService == nil {
		return errors.New("config service not configured")
	}

	cfg, err := configService.Update(context.Background(), func(c *domain.Config) error {
		c.AutoSyncEnabled = enabled
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to update config: %w", err)
	}

	if enabled {
		cmd.Printf("Automatic sync enabled (every %s).\n", cfg.Interval())
		if !cfg.HasCredential() {
			cmd.Println("No token is stored yet; cycles will fail until you run: fanslysync token set")
		}
	} else {
		cmd.Println("Automatic sync disabled.")
	}
	return nil
}

func runConfigInterval(cmd *cobra.Command, args []string) error {
	if configService == nil {
		return errors.New("config service not configured")
	}

	d, err := time.ParseDuration(args[0])
	if err != nil {
		return fmt.Errorf("invalid interval %q: %w", args[0], err)
	}
	if d < minSyncInterval {
		return fmt.Errorf("%w: interval must be at least %s", domain.ErrInvalidInput, minSyncInterval)
	}

	cfg, err := configService.Update(context.Background(), func(c *domain.Config) error {
		c.SetInterval(d)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to update config: %w", err)
	}

	cmd.Printf("Sync interval set to %s.\n", cfg.Interval())
	return nil
}
