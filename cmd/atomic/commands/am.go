package commands

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/pelletier/go-toml/v2"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/soheilade/atomic-server/am"
	"github.com/soheilade/atomic-server/errors"
)

// AmCmd represents the am (configuration) command
var AmCmd = &cobra.Command{
	Use:   "am",
	Short: "Manage atomic configuration",
	Long: `am: manage atomic configuration ("I am")

Configuration sources (in order of precedence):
1. Command line flags
2. Environment variables (ATOMIC_* prefix, e.g. ATOMIC_VALIDATE_STRICT)
3. Project config (./atomic.toml, searched upwards)
4. User config (~/.atomic/atomic.toml)
5. System config (/etc/atomic/atomic.toml)
6. Default values

Examples:
  atomic am show                      # Show current configuration
  atomic am show --format json        # Show configuration in JSON format
  atomic am show --sources            # Show where each setting came from
  atomic am get store.path            # Get specific config value
  atomic am set validate.strict true  # Write a setting to ./atomic.toml
  atomic am validate --file a.toml    # Check a config file for unknown keys
  atomic am init                      # Write ./atomic.toml with defaults`,
}

var amShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  "Display the current atomic configuration merged from all sources",
	Args:  cobra.NoArgs,
	RunE:  runAmShow,
}

var amGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a specific configuration value",
	Long:  "Get a specific configuration value using dot notation (e.g., store.path, validate.strict)",
	Args:  cobra.ExactArgs(1),
	RunE:  runAmGet,
}

var amSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Write a configuration value to the project config",
	Long: `Write one setting to ./atomic.toml (or --file). Booleans and numbers
are stored typed; anything else is stored as a string. The previous file
is kept as .back1.`,
	Args: cobra.ExactArgs(2),
	RunE: runAmSet,
}

var amValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	Long: `Validate the merged configuration, or with --file check a single
TOML file: type errors fail, unknown keys are listed.`,
	Args: cobra.NoArgs,
	RunE: runAmValidate,
}

var amInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a default configuration file",
	Long:  "Write the default configuration to ./atomic.toml or the given path",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAmInit,
}

var (
	configFormat  string
	showSources   bool
	checkFile     string
	setFile       string
	initForceFlag bool
)

func init() {
	amShowCmd.Flags().StringVar(&configFormat, "format", "toml", "Output format: toml, json, yaml")
	amShowCmd.Flags().BoolVar(&showSources, "sources", false, "List every setting with the source it came from")
	amValidateCmd.Flags().StringVar(&checkFile, "file", "", "Check this TOML file instead of the merged config")
	amSetCmd.Flags().StringVar(&setFile, "file", am.ProjectConfigName, "Config file to update")
	amInitCmd.Flags().BoolVar(&initForceFlag, "force", false, "Overwrite an existing file (keeps a .back1 copy)")

	AmCmd.AddCommand(amShowCmd)
	AmCmd.AddCommand(amGetCmd)
	AmCmd.AddCommand(amSetCmd)
	AmCmd.AddCommand(amValidateCmd)
	AmCmd.AddCommand(amInitCmd)
}

func runAmShow(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if showSources {
		intro, err := am.GetConfigIntrospection()
		if err != nil {
			return errors.Wrap(err, "failed to get config introspection")
		}
		for _, s := range intro.Settings {
			fmt.Fprintf(out, "%-32s %-12v %s\n", s.Key, s.Value, pterm.Gray(fmt.Sprintf("[%s] %s", s.Source, s.SourcePath)))
		}
		return nil
	}

	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	data, err := marshalConfig(cfg, configFormat)
	if err != nil {
		return err
	}
	if configFormat != "json" {
		fmt.Fprintln(out, "# atomic configuration")
	}
	fmt.Fprint(out, string(data))
	return nil
}

func marshalConfig(cfg *am.Config, format string) ([]byte, error) {
	switch format {
	case "json":
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal config to JSON")
		}
		return append(data, '\n'), nil
	case "yaml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal config to YAML")
		}
		return data, nil
	case "toml":
		data, err := toml.Marshal(cfg)
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal config to TOML")
		}
		return data, nil
	default:
		return nil, errors.Newf("unsupported format: %s (supported: toml, json, yaml)", format)
	}
}

func runAmGet(cmd *cobra.Command, args []string) error {
	key := args[0]

	v := am.GetViper()
	if !v.IsSet(key) {
		return errors.Newf("configuration key %q not found", key)
	}

	fmt.Fprintln(cmd.OutOrStdout(), am.Get(key))
	return nil
}

func runAmSet(cmd *cobra.Command, args []string) error {
	key, raw := args[0], args[1]

	if err := am.UpdateSetting(setFile, key, parseSettingValue(raw)); err != nil {
		return err
	}
	am.Reset()

	fmt.Fprintf(cmd.OutOrStdout(), "%s %s = %s %s\n", pterm.LightGreen("✓"), key, raw, pterm.Gray("("+setFile+")"))
	return nil
}

// parseSettingValue keeps booleans and numbers typed in the TOML file.
func parseSettingValue(raw string) interface{} {
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}

func runAmValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if checkFile != "" {
		check, err := am.CheckFile(checkFile)
		if err != nil {
			return errors.Wrap(err, "configuration validation failed")
		}
		for _, key := range check.UnknownKeys {
			fmt.Fprintf(out, "%s unknown key %s\n", pterm.Yellow("!"), key)
		}
		fmt.Fprintf(out, "%s %s is valid\n", pterm.LightGreen("✓"), checkFile)
		return nil
	}

	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "configuration validation failed")
	}

	fmt.Fprintf(out, "%s Configuration is valid\n", pterm.LightGreen("✓"))
	return nil
}

func runAmInit(cmd *cobra.Command, args []string) error {
	path := am.ProjectConfigName
	if len(args) == 1 {
		path = args[0]
	}

	if err := am.WriteDefault(path, initForceFlag); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s Wrote %s\n", pterm.LightGreen("✓"), path)
	return nil
}
