package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/sdejongh/aisync/pkg/config"
)

// NewConfigCommand creates the config command
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long:  `View or create the aisync configuration file.`,
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigInitCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Long: `Print the configuration after applying, in increasing priority:
built-in defaults, the config file, environment variables and flags.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to render config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	addRemoteFlags(cmd)
	addTransferFlags(cmd)
	return cmd
}

func newConfigInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := globalFlags.ConfigFile
			if path == "" {
				var err error
				if path, err = config.DefaultConfigPath(); err != nil {
					return err
				}
			}

			if _, err := os.Stat(path); err == nil && !force {
				return &UsageError{Err: fmt.Errorf("%s already exists (use --force to overwrite)", path)}
			}

			cfg := config.Default()
			if err := config.SaveToFile(cfg, path); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Configuration file created at: %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

// loadConfig loads configuration from file or returns default
func loadConfig() (*config.Config, error) {
	if globalFlags.ConfigFile != "" {
		return config.LoadFromFile(globalFlags.ConfigFile)
	}
	return config.LoadDefault()
}

// binding ties one config key to its flag and, optionally, an environment
// variable
type binding struct {
	key  string
	flag string
	env  string
}

var bindings = []binding{
	{"remote.user", flagRemoteUser, config.EnvRemoteUser},
	{"remote.host", flagRemoteHost, config.EnvRemoteHost},
	{"remote.dir", flagRemoteDir, config.EnvRemoteDir},
	{"windows.user", flagWindowsUser, config.EnvWindowsUser},
	{"catalog", flagCatalog, ""},
	{"transfer.options", flagRsyncOpts, ""},
	{"transfer.program", flagRsyncPath, ""},
	{"transfer.timeout", flagTimeout, ""},
	{"output.format", flagOutput, ""},
	{"output.progress", flagProgress, ""},
	{"logging.file", flagLogFile, ""},
	{"logging.format", flagLogFormat, ""},
	{"logging.level", flagLogLevel, ""},
}

// resolveConfig layers, from lowest to highest priority: defaults, the
// config file, environment variables and explicitly set flags
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, &UsageError{Err: fmt.Errorf("failed to load config: %w", err)}
	}

	v := viper.New()
	for _, b := range bindings {
		v.SetDefault(b.key, currentValue(cfg, b.key))
		if b.env != "" {
			if err := v.BindEnv(b.key, b.env); err != nil {
				return nil, err
			}
		}
		if f := cmd.Flags().Lookup(b.flag); f != nil {
			if err := v.BindPFlag(b.key, f); err != nil {
				return nil, err
			}
		}
	}

	cfg.Remote.User = v.GetString("remote.user")
	cfg.Remote.Host = v.GetString("remote.host")
	cfg.Remote.Dir = v.GetString("remote.dir")
	cfg.Windows.User = v.GetString("windows.user")
	cfg.Catalog = v.GetString("catalog")
	cfg.Transfer.Options = v.GetString("transfer.options")
	cfg.Transfer.Program = v.GetString("transfer.program")
	cfg.Transfer.Timeout = v.GetDuration("transfer.timeout")
	cfg.Output.Format = v.GetString("output.format")
	cfg.Output.Progress = v.GetBool("output.progress")
	cfg.Logging.File = v.GetString("logging.file")
	cfg.Logging.Format = v.GetString("logging.format")
	cfg.Logging.Level = v.GetString("logging.level")

	if f := cmd.Flags().Lookup(flagDryRun); f != nil {
		cfg.DryRun = f.Value.String() == "true"
	}
	applyGlobalFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, &UsageError{Err: err}
	}
	return cfg, nil
}

// applyGlobalFlags lets -v and -q override the configured verbosity
func applyGlobalFlags(cfg *config.Config) {
	if globalFlags.Quiet {
		cfg.Output.Progress = false
		cfg.Output.Quiet = true
		cfg.Logging.Level = "error"
	}
	if globalFlags.Verbose {
		cfg.Logging.Level = "debug"
	}
}

// currentValue returns the value cfg already holds for key
func currentValue(cfg *config.Config, key string) any {
	switch key {
	case "remote.user":
		return cfg.Remote.User
	case "remote.host":
		return cfg.Remote.Host
	case "remote.dir":
		return cfg.Remote.Dir
	case "windows.user":
		return cfg.Windows.User
	case "catalog":
		return cfg.Catalog
	case "transfer.options":
		return cfg.Transfer.Options
	case "transfer.program":
		return cfg.Transfer.Program
	case "transfer.timeout":
		return cfg.Transfer.Timeout
	case "output.format":
		return cfg.Output.Format
	case "output.progress":
		return cfg.Output.Progress
	case "logging.file":
		return cfg.Logging.File
	case "logging.format":
		return cfg.Logging.Format
	case "logging.level":
		return cfg.Logging.Level
	}
	panic("cli: no config field for key " + key)
}
