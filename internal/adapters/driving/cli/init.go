package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/fanslysync/internal/adapters/driven/config/file"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the settings file and the local Config",
	Long: `Writes a default settings.toml (unless one exists) and creates the
Config record, migrating an older layout if one is found.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	if configService == nil {
		return errors.New("config service not configured")
	}

	if settingsDir != "" {
		path, created, err := file.WriteDefaultSettings(settingsDir)
		if err != nil {
			return fmt.Errorf("failed to write settings: %w", err)
		}
		if created {
			cmd.Printf("Created settings file: %s\n", path)
		} else {
			cmd.Printf("Settings file already exists: %s\n", path)
		}
	}

	ctx := context.Background()
	cfg, err := configService.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cmd.Printf("Config: %s (schema v%d)\n", configService.Path(), cfg.Version)

	firstRun, err := configService.ConsumeFirstRun(ctx)
	if err != nil {
		return fmt.Errorf("failed to update config: %w", err)
	}
	if firstRun {
		cmd.Println()
		cmd.Println("Welcome to fanslysync!")
		cmd.Println("Next, store your Fansly token with: fanslysync token set")
	}
	return nil
}
