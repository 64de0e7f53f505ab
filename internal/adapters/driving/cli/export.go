package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/fanslysync/internal/adapters/driven/export"
	"github.com/custodia-labs/fanslysync/internal/core/ports/driven"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the last stored snapshot",
	Long: `Writes the snapshot committed by the last successful sync.

With --out the snapshot is written to a file (zstd-compressed when the path
ends in .zst). Without it the snapshot is uploaded to the configured paste
service and its URL is printed.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "write to this file instead of uploading")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	if configService == nil {
		return errors.New("config service not configured")
	}

	var exporter driven.SnapshotExporter
	if exportOut != "" {
		f, err := export.NewFileExporter(exportOut)
		if err != nil {
			return err
		}
		exporter = f
	} else {
		if snapshotExporter == nil {
			return errors.New("no exporter configured; use --out or enable export in settings")
		}
		exporter = snapshotExporter
	}

	ctx := context.Background()
	cfg, err := configService.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.LastSync == 0 {
		return errors.New("nothing to export yet; run fanslysync sync first")
	}

	location, err := exporter.Export(ctx, cfg.LastSyncData)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	cmd.Printf("Exported %d followers and %d subscribers to %s\n",
		len(cfg.LastSyncData.Followers), len(cfg.LastSyncData.Subscribers), location)
	return nil
}
