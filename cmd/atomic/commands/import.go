package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/soheilade/atomic-server/atomic"
	"github.com/soheilade/atomic-server/errors"
	"github.com/soheilade/atomic-server/parse"
)

// ImportCmd represents the import command
var ImportCmd = &cobra.Command{
	Use:   "import <file.ad3>...",
	Short: "Import AD3 files into the store",
	Long: `Parse AD3 files and upsert their atoms into the store.

All files are parsed before anything is written; a parse error leaves the
store untouched. Re-importing an atom replaces its value.

Examples:
  atomic import data.ad3
  curl -H 'Accept: application/ad3-ndjson' https://atomicdata.dev/classes | atomic import -`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, _ := cmd.Flags().GetString("db")

		var atoms []atomic.Atom
		for _, path := range args {
			parsed, err := readAD3(path)
			if err != nil {
				return err
			}
			atoms = append(atoms, parsed...)
		}

		sqlStore, closeFn, err := openStore(dbPath)
		if err != nil {
			return err
		}
		defer closeFn()

		if err := sqlStore.AddAtoms(cmd.Context(), atoms); err != nil {
			return errors.Wrap(err, "failed to import atoms")
		}

		total, resources, err := sqlStore.Count(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s Imported %d atoms %s\n",
			pterm.LightGreen("✓"), len(atoms),
			pterm.Gray(fmt.Sprintf("(store: %d atoms, %d resources)", total, resources)))
		return nil
	},
}

// ExportCmd represents the export command
var ExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the store as AD3",
	Long: `Write every stored atom as AD3, ordered by subject then property.

Examples:
  atomic export > backup.ad3
  atomic export -o backup.ad3`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, _ := cmd.Flags().GetString("db")
		output, _ := cmd.Flags().GetString("output")

		sqlStore, closeFn, err := openStore(dbPath)
		if err != nil {
			return err
		}
		defer closeFn()

		atoms, err := sqlStore.Atoms(cmd.Context())
		if err != nil {
			return errors.Wrap(err, "failed to read atoms")
		}

		var w io.Writer = cmd.OutOrStdout()
		if output != "" && output != "-" {
			f, err := os.Create(output)
			if err != nil {
				return errors.Wrapf(err, "failed to create %s", output)
			}
			defer f.Close()
			w = f
		}

		if err := parse.WriteAD3(w, atoms); err != nil {
			return errors.Wrap(err, "failed to write AD3")
		}
		return nil
	},
}

func init() {
	ImportCmd.Flags().String("db", "", "Store path (default: store.path from config)")
	ExportCmd.Flags().String("db", "", "Store path (default: store.path from config)")
	ExportCmd.Flags().StringP("output", "o", "", "Write to file instead of stdout")
}
