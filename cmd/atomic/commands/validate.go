package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/soheilade/atomic-server/am"
	"github.com/soheilade/atomic-server/atomic"
	"github.com/soheilade/atomic-server/client"
	"github.com/soheilade/atomic-server/errors"
	"github.com/soheilade/atomic-server/logger"
	"github.com/soheilade/atomic-server/parse"
	"github.com/soheilade/atomic-server/store"
	"github.com/soheilade/atomic-server/validate"
)

// ValidateCmd represents the validate command
var ValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the store against its schema",
	Long: `Validate every resource in the store.

Checks that each value parses under its property's datatype and that each
resource carries the properties its classes require. With --fetch, every
subject is also fetched over HTTP as AD3.

Missing required properties are reported as warnings; --strict (or
validate.strict in config) turns them into failures.

Exits non-zero when the store is invalid.

Examples:
  atomic validate                       # Validate atomic.db
  atomic validate --file a.ad3 b.ad3    # Validate files without importing them
  atomic validate --fetch --concurrency 8
  atomic validate --strict -vv          # Trace every resource and class`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := am.Load()
		if err != nil {
			return errors.Wrap(err, "failed to load configuration")
		}
		opts := validateFlags.apply(cmd, cfg)

		verbosity, _ := cmd.Flags().GetCount("verbose")
		opts.trace = verbosity >= logger.VerbosityDebug

		report, err := runValidate(cmd.Context(), cfg, opts)
		if err != nil {
			return err
		}

		renderReport(cmd.OutOrStdout(), report, opts.strict)
		return reportError(report, opts.strict)
	},
}

// validateOptions is one validation run after flags are merged over config.
type validateOptions struct {
	files       []string
	dbPath      string
	populate    bool
	fetch       bool
	strict      bool
	concurrency int
	trace       bool
}

type validateFlagValues struct {
	files       []string
	dbPath      string
	noPopulate  bool
	fetch       bool
	strict      bool
	concurrency int
}

var validateFlags validateFlagValues

func init() {
	ValidateCmd.Flags().StringSliceVarP(&validateFlags.files, "file", "f", nil, "Validate AD3 files instead of the store (- for stdin)")
	ValidateCmd.Flags().StringVar(&validateFlags.dbPath, "db", "", "Store path (default: store.path from config)")
	ValidateCmd.Flags().BoolVar(&validateFlags.noPopulate, "no-populate", false, "Do not load the default ontology first")
	ValidateCmd.Flags().BoolVar(&validateFlags.fetch, "fetch", false, "Fetch every subject over HTTP")
	ValidateCmd.Flags().BoolVar(&validateFlags.strict, "strict", false, "Fail on missing required properties")
	ValidateCmd.Flags().IntVar(&validateFlags.concurrency, "concurrency", 0, "Parallel fetches (default: validate.fetch_concurrency)")
}

// apply resolves flags over config; a flag only wins when it was set.
func (f validateFlagValues) apply(cmd *cobra.Command, cfg *am.Config) validateOptions {
	opts := validateOptions{
		files:       f.files,
		dbPath:      f.dbPath,
		populate:    cfg.Store.Populate && !f.noPopulate,
		fetch:       cfg.Validation.FetchItems,
		strict:      cfg.Validation.Strict,
		concurrency: cfg.Validation.FetchConcurrency,
	}
	if cmd.Flags().Changed("fetch") {
		opts.fetch = f.fetch
	}
	if cmd.Flags().Changed("strict") {
		opts.strict = f.strict
	}
	if cmd.Flags().Changed("concurrency") {
		opts.concurrency = f.concurrency
	}
	return opts
}

// runValidate builds the store and runs one validation over it.
func runValidate(ctx context.Context, cfg *am.Config, opts validateOptions) (*validate.Report, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	s, err := loadStore(ctx, opts)
	if err != nil {
		return nil, err
	}

	engineOpts := []validate.Option{
		validate.WithLogger(logger.ComponentLogger("validate")),
		validate.WithFetchConcurrency(opts.concurrency),
	}
	if opts.fetch {
		engineOpts = append(engineOpts, validate.WithFetcher(newClient(cfg)))
	}
	if opts.trace {
		engineOpts = append(engineOpts, validate.WithTracer(validate.NewLogTracer(logger.ComponentLogger("trace"))))
	}

	return validate.New(engineOpts...).Validate(ctx, s, opts.fetch), nil
}

// loadStore populates the default ontology first so that user atoms
// redefining a core (subject, property) pair replace the built-in value.
func loadStore(ctx context.Context, opts validateOptions) (*store.Store, error) {
	s := store.New()
	if opts.populate {
		if err := s.Populate(); err != nil {
			return nil, errors.Wrap(err, "failed to populate default ontology")
		}
	}

	if len(opts.files) > 0 {
		for _, path := range opts.files {
			atoms, err := readAD3(path)
			if err != nil {
				return nil, err
			}
			if err := s.AddAtoms(atoms); err != nil {
				return nil, errors.Wrapf(err, "failed to add atoms from %s", path)
			}
		}
		return s, nil
	}

	sqlStore, closeFn, err := openStore(opts.dbPath)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	if err := sqlStore.LoadInto(ctx, s); err != nil {
		return nil, errors.Wrap(err, "failed to load store")
	}
	return s, nil
}

func newClient(cfg *am.Config) *client.Client {
	return client.New(client.Options{
		Timeout:              cfg.ClientTimeout(),
		RequestsPerSecond:    cfg.Client.RequestsPerSecond,
		Burst:                cfg.Client.Burst,
		AllowPrivateNetworks: !cfg.Client.BlockPrivateIP,
		MaxRedirects:         cfg.Client.MaxRedirects,
		Logger:               logger.ComponentLogger("client"),
	})
}

// readAD3 parses an AD3 file; "-" reads stdin.
func readAD3(path string) ([]atomic.Atom, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to open %s", path)
		}
		defer f.Close()
		r = f
	}

	atoms, err := parse.ParseAD3Reader(r)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}
	return atoms, nil
}

// renderReport prints the report for humans.
func renderReport(w io.Writer, r *validate.Report, strict bool) {
	if r.IsValid() {
		fmt.Fprintf(w, "%s %s\n", pterm.LightGreen("✓"), r.String())
	} else {
		fmt.Fprintf(w, "%s %s\n", pterm.Red("✗"), pterm.Red(fmt.Sprintf("%d defects", r.Defects())))
		for _, line := range strings.Split(r.String(), "\n") {
			fmt.Fprintf(w, "  %s %s\n", pterm.Gray("→"), line)
		}
	}

	if len(r.MissingProps) > 0 {
		label := pterm.Yellow("Missing required properties (warning)")
		if strict {
			label = pterm.Red("Missing required properties")
		}
		fmt.Fprintln(w, label)
		for _, line := range strings.Split(r.MissingString(), "\n") {
			fmt.Fprintf(w, "  %s %s\n", pterm.Gray("→"), line)
		}
	}

	fmt.Fprintln(w, pterm.Gray(r.Summary()))
}

// reportError turns a failed report into the command's exit error.
func reportError(r *validate.Report, strict bool) error {
	if !r.IsValid() {
		return errors.Newf("validation failed: %d defects", r.Defects())
	}
	if strict && !r.IsComplete() {
		return errors.WithHint(
			errors.Newf("validation failed: %d missing required properties", len(r.MissingProps)),
			"run without --strict to report them as warnings",
		)
	}
	return nil
}
