package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sdejongh/aisync/pkg/logging"
	"github.com/sdejongh/aisync/pkg/remote"
)

// NewCheckCommand creates the check command
func NewCheckCommand() *cobra.Command {
	var createDir bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check the connection to the remote server",
		Long: `Open an SSH connection with the configured user and host, make sure a
shell is available and report whether the remote base directory exists.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.ValidateForTransfer(); err != nil {
				return &UsageError{Err: err}
			}

			logger, err := createLogger(cfg, false)
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}
			defer logger.Close()

			target := remote.Target{
				User:         cfg.Remote.User,
				Host:         cfg.Remote.Host,
				Port:         cfg.Remote.Port,
				IdentityFile: cfg.Remote.IdentityFile,
			}
			logger.Info(ctx, "Connecting to "+cfg.Remote.User+"@"+target.Address(), nil)

			client, err := remote.Dial(ctx, target, logger)
			if err != nil {
				return err
			}
			defer client.Close()

			if err := client.Check(); err != nil {
				return err
			}

			exists, err := client.DirExists(cfg.Remote.Dir)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case exists:
				fmt.Fprintf(out, "OK: %s@%s reachable, %s exists\n", cfg.Remote.User, cfg.Remote.Host, cfg.Remote.Dir)
			case createDir:
				if err := client.EnsureDir(cfg.Remote.Dir); err != nil {
					return err
				}
				logger.Info(ctx, "Created remote directory", logging.Fields{"dir": cfg.Remote.Dir})
				fmt.Fprintf(out, "OK: %s@%s reachable, created %s\n", cfg.Remote.User, cfg.Remote.Host, cfg.Remote.Dir)
			default:
				fmt.Fprintf(out, "OK: %s@%s reachable, %s does not exist (use --create-dir)\n", cfg.Remote.User, cfg.Remote.Host, cfg.Remote.Dir)
			}
			return nil
		},
	}

	addRemoteFlags(cmd)
	cmd.Flags().BoolVar(&createDir, "create-dir", false, "create the remote base directory when missing")
	return cmd
}
