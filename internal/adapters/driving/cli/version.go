package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/fanslysync/internal/core/domain"
)

var versionShort bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and build details",
	Args:  cobra.NoArgs,
	RunE:  runVersion,
}

func init() {
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "print only the version")
	rootCmd.AddCommand(versionCmd)
}

func runVersion(cmd *cobra.Command, _ []string) error {
	if versionShort {
		cmd.Println(version)
		return nil
	}

	backend := appSettings.Storage.Backend
	if backend == "" {
		backend = domain.BackendFile
	}

	cmd.Printf("fanslysync %s\n", version)
	cmd.Println(row("Config schema", fmt.Sprintf("v%d", domain.CurrentSchemaVersion)))
	cmd.Println(row("Storage", backend))
	cmd.Println(row("Runtime", runtime.Version()+" "+runtime.GOOS+"/"+runtime.GOARCH))
	return nil
}
