package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/soheilade/atomic-server/am"
	"github.com/soheilade/atomic-server/cmd/atomic/commands"
	"github.com/soheilade/atomic-server/errors"
	"github.com/soheilade/atomic-server/logger"
)

var rootCmd = &cobra.Command{
	Use:   "atomic",
	Short: "atomic - Atomic Data store and validator",
	Long: `atomic - Atomic Data store and schema validator.

Keeps Atomic Data atoms in a local SQLite store and checks them against the
properties and classes they declare.

Available commands:
  validate - Check values, class requirements and (optionally) reachability
  import   - Load AD3 files into the store
  export   - Write the store as AD3
  am       - Manage configuration ("I am")
  version  - Show build information

Examples:
  atomic import data.ad3           # Import atoms into atomic.db
  atomic validate                  # Validate the store
  atomic validate --file data.ad3  # Validate a file without importing it
  atomic validate --fetch -v       # Also fetch every subject over HTTP
  atomic am show                   # Show current configuration`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		jsonLogs, _ := cmd.Flags().GetBool("json-logs")

		// A broken config must not stop `am` from reporting on it
		if cfg, err := am.Load(); err == nil && cfg.Log.JSON {
			jsonLogs = true
		}

		if err := logger.InitializeWithVerbosity(jsonLogs, verbosity); err != nil {
			return errors.Wrap(err, "failed to initialize logger")
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Cleanup()
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	rootCmd.PersistentFlags().Bool("json-logs", false, "Write logs as JSON (also log.json in config)")

	rootCmd.AddCommand(commands.ValidateCmd)
	rootCmd.AddCommand(commands.ImportCmd)
	rootCmd.AddCommand(commands.ExportCmd)
	rootCmd.AddCommand(commands.AmCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		for _, hint := range errors.GetAllHints(err) {
			fmt.Fprintln(os.Stderr, "Hint:", hint)
		}
		os.Exit(1)
	}
}
