package cli

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/sdejongh/aisync/pkg/catalog"
	"github.com/sdejongh/aisync/pkg/config"
	"github.com/sdejongh/aisync/pkg/executor"
	"github.com/sdejongh/aisync/pkg/logging"
	"github.com/sdejongh/aisync/pkg/models"
	"github.com/sdejongh/aisync/pkg/output"
	"github.com/sdejongh/aisync/pkg/plan"
	"github.com/sdejongh/aisync/pkg/preflight"
	"github.com/sdejongh/aisync/pkg/sync"
)

// TransferFlags holds the push/pull flags that are not part of the config
type TransferFlags struct {
	Strict       bool
	Report       string
	ReportFormat string
}

var transferFlags TransferFlags

// NewPushCommand creates the push command
func NewPushCommand() *cobra.Command {
	return newTransferCommand(models.OperationPush,
		"Send local configuration to the remote server",
		`Copy every mapped file from this machine to the remote server.

Depending on each mapping's keep mode the Windows copy is first folded into
the Linux copy (prefer_windows), the Linux copy is mirrored to Windows
(prefer_linux), or both copies are stored remotely side by side with
.windows and .linux suffixes (keep_both).`)
}

// NewPullCommand creates the pull command
func NewPullCommand() *cobra.Command {
	return newTransferCommand(models.OperationPull,
		"Fetch configuration from the remote server",
		`Copy every mapped file from the remote server to this machine, then
mirror it to the Windows profile when a Windows user is configured.`)
}

func newTransferCommand(op models.Operation, short, long string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   string(op),
		Short: short,
		Long:  long,
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransfer(cmd, op)
		},
	}

	addRemoteFlags(cmd)
	addTransferFlags(cmd)
	addSelectionFlags(cmd)
	cmd.Flags().BoolVar(&transferFlags.Strict, "strict", false, "abort a push when a JSON, TOML or YAML source does not parse")
	cmd.Flags().StringVar(&transferFlags.Report, "report", "", "write the run report to file")
	cmd.Flags().StringVar(&transferFlags.ReportFormat, "report-format", "human", "run report format: human, json")

	return cmd
}

func runTransfer(cmd *cobra.Command, op models.Operation) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if err := validateTransferConfig(cfg); err != nil {
		return err
	}

	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	if cat.Len() == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "Warning: no mapping selected")
	}

	resolver, err := plan.NewResolverFromConfig(cfg)
	if err != nil {
		return &UsageError{Err: err}
	}

	transferOpts, err := cfg.TransferOptions()
	if err != nil {
		return &UsageError{Err: err}
	}

	stdout := cmd.OutOrStdout()
	interactive := cfg.Output.Progress && output.IsTerminal(stdout)

	formatter, err := output.New(cfg.Output.Format, interactive)
	if err != nil {
		return &UsageError{Err: err}
	}
	if cfg.Output.Quiet && formatter.Name() != "json" {
		formatter = nil
	}

	logger, err := createLogger(cfg, interactive)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	logger.Info(ctx, "AI Config Sync", nil)
	logger.Debug(ctx, "Configuration", logging.Fields{
		"remote":       cfg.Remote.User + "@" + cfg.Remote.Host + ":" + cfg.Remote.Dir,
		"windows_user": cfg.Windows.User,
		"program":      cfg.Transfer.Program,
		"options":      cfg.Transfer.Options,
		"dry_run":      cfg.DryRun,
	})
	// A missing tool fails each task on its own, like any other invocation error
	if !cfg.DryRun {
		if _, err := exec.LookPath(cfg.Transfer.Program); err != nil {
			logger.Warn(ctx, fmt.Sprintf("Transfer tool %q not found, every task will fail", cfg.Transfer.Program), nil)
		}
	}
	if root, ok := cfg.WindowsRoot(); ok {
		if _, err := os.Stat(root); err != nil {
			logger.Warn(ctx, "Windows profile not found, Windows tasks will fail: "+root, nil)
		}
	}

	runner := sync.NewRunner(executor.New(), sync.RunnerConfig{
		Program: cfg.Transfer.Program,
		Options: transferOpts,
		Timeout: cfg.Transfer.Timeout,
		DryRun:  cfg.DryRun,
		Output:  stdout,
	}, formatter, logger)

	engine := sync.NewEngine(
		plan.NewPlanner(resolver),
		preflight.NewChecker(logger),
		runner,
		logger,
		op,
		transferFlags.Strict,
	)

	report, err := engine.Run(ctx, cat.Mappings())
	if err != nil {
		if formatter != nil {
			formatter.Error(err)
		}
		return &UsageError{Err: err}
	}

	if transferFlags.Report != "" {
		if err := output.WriteReportFile(report, transferFlags.Report, transferFlags.ReportFormat); err != nil {
			logger.Error(ctx, "Failed to write run report", err, nil)
		}
	}

	if report.Status != models.StatusSuccess {
		return &RunError{Report: report}
	}
	return nil
}

// loadCatalog returns the configured catalog file, or the built-in catalog,
// narrowed by --only and --skip
func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	cat := catalog.Default()
	if cfg.Catalog != "" {
		var err error
		if cat, err = catalog.LoadFromFile(cfg.Catalog); err != nil {
			return nil, &UsageError{Err: err}
		}
	}

	cat, err := cat.Filter(selectionFlags.Only, selectionFlags.Skip)
	if err != nil {
		return nil, &UsageError{Err: err}
	}
	return cat, nil
}

// createLogger builds the console logger, plus a file logger when a log
// file is configured. A progress bar owns the terminal, so the console
// then only shows warnings and errors.
func createLogger(cfg *config.Config, interactive bool) (logging.Logger, error) {
	level := logging.ParseLevel(cfg.Logging.Level)

	consoleLevel := level
	if interactive && consoleLevel < logging.WarnLevel {
		consoleLevel = logging.WarnLevel
	}
	console := logging.NewConsoleLogger(os.Stderr, consoleLevel)

	if cfg.Logging.File == "" {
		return console, nil
	}

	var format logging.Format
	switch cfg.Logging.Format {
	case "json":
		format = logging.FormatJSON
	default:
		format = logging.FormatText
	}

	file, err := logging.NewFileLogger(logging.FileLoggerConfig{
		Path:       cfg.Logging.File,
		Format:     format,
		Level:      level,
		MaxSize:    10 * 1024 * 1024, // 10 MB
		MaxBackups: 5,
	})
	if err != nil {
		return nil, err
	}

	return logging.NewMultiLogger(console, file), nil
}
