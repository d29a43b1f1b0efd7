package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRootCommand assembles the aisync command tree
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "aisync",
		Short: "Sync AI agent configuration between Windows, Linux and a remote server",
		Long: `aisync keeps AI agent configuration files (Claude, Gemini, Codex, Cline)
in sync between a Windows profile mounted under WSL, the Linux home directory
and a remote server, using rsync over SSH.

Remote settings come from flags, then the SYNC_USER, SYNC_HOST, SYNC_DIR and
WIN_USER environment variables, then the config file.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add global flags
	AddGlobalFlags(rootCmd)

	// Add commands
	rootCmd.AddCommand(NewPushCommand())
	rootCmd.AddCommand(NewPullCommand())
	rootCmd.AddCommand(NewListCommand())
	rootCmd.AddCommand(NewCheckCommand())
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewVersionCommand())

	// Flag parsing problems are usage errors
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &UsageError{Err: err}
	})

	return rootCmd
}

// noArgs rejects positional arguments as a usage error
func noArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.NoArgs(cmd, args); err != nil {
		return &UsageError{Err: err}
	}
	return nil
}
