package cli

import (
	"github.com/spf13/cobra"

	"github.com/sdejongh/aisync/pkg/config"
)

// GlobalFlags holds global flag values
type GlobalFlags struct {
	ConfigFile string
	Verbose    bool
	Quiet      bool
}

var globalFlags GlobalFlags

// AddGlobalFlags adds global flags to the root command
func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(
		&globalFlags.ConfigFile,
		"config",
		"",
		"config file (default is $XDG_CONFIG_HOME/aisync/config.yaml)",
	)
	cmd.PersistentFlags().BoolVarP(
		&globalFlags.Verbose,
		"verbose",
		"v",
		false,
		"verbose output (debug logging)",
	)
	cmd.PersistentFlags().BoolVarP(
		&globalFlags.Quiet,
		"quiet",
		"q",
		false,
		"suppress non-error output",
	)
}

// GetGlobalFlags returns the global flags
func GetGlobalFlags() *GlobalFlags {
	return &globalFlags
}

// addRemoteFlags adds the flags locating the remote server and the Windows
// profile. Their values are read through resolveConfig, never directly.
func addRemoteFlags(cmd *cobra.Command) {
	cmd.Flags().StringP(flagRemoteUser, "u", "", "remote user (env "+config.EnvRemoteUser+")")
	cmd.Flags().StringP(flagRemoteHost, "H", "", "remote host (env "+config.EnvRemoteHost+")")
	cmd.Flags().StringP(flagRemoteDir, "d", config.DefaultRemoteDir, "remote base directory (env "+config.EnvRemoteDir+")")
	cmd.Flags().StringP(flagWindowsUser, "w", "", "Windows user name, enables Windows tasks (env "+config.EnvWindowsUser+")")
	cmd.Flags().String(flagCatalog, "", "YAML mapping file replacing the built-in catalog")
}

// addTransferFlags adds the flags controlling the transfer tool and reporting
func addTransferFlags(cmd *cobra.Command) {
	cmd.Flags().String(flagRsyncOpts, config.DefaultTransferOptions, "options passed to the transfer tool")
	cmd.Flags().String(flagRsyncPath, config.DefaultTransferProgram, "transfer tool executable")
	cmd.Flags().Duration(flagTimeout, config.DefaultTaskTimeout, "time limit for a single transfer")
	cmd.Flags().Bool(flagDryRun, false, "log every command without running it")
	cmd.Flags().StringP(flagOutput, "o", "human", "output format: human, json")
	cmd.Flags().Bool(flagProgress, false, "show a progress bar when attached to a terminal")

	cmd.Flags().String(flagLogFile, "", "also write logs to this file")
	cmd.Flags().String(flagLogFormat, "text", "log file format: text, json")
	cmd.Flags().String(flagLogLevel, "info", "log level: debug, info, warn, error")
}

// SelectionFlags narrow the catalog to some mappings
type SelectionFlags struct {
	Only []string
	Skip []string
}

var selectionFlags SelectionFlags

// addSelectionFlags adds --only and --skip
func addSelectionFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&selectionFlags.Only, "only", nil, "only mappings whose path matches one of these glob patterns")
	cmd.Flags().StringSliceVar(&selectionFlags.Skip, "skip", nil, "skip mappings whose path matches one of these glob patterns")
}

// Flag names shared by the commands and the config layering
const (
	flagRemoteUser  = "remote-user"
	flagRemoteHost  = "remote-host"
	flagRemoteDir   = "remote-dir"
	flagWindowsUser = "windows-user"
	flagCatalog     = "catalog"
	flagRsyncOpts   = "rsync-opts"
	flagRsyncPath   = "rsync-path"
	flagTimeout     = "timeout"
	flagDryRun      = "dry-run"
	flagOutput      = "output"
	flagProgress    = "progress"
	flagLogFile     = "log-file"
	flagLogFormat   = "log-format"
	flagLogLevel    = "log-level"
)

