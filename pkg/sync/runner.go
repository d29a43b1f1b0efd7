package sync

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sdejongh/aisync/internal/platform"
	"github.com/sdejongh/aisync/pkg/executor"
	"github.com/sdejongh/aisync/pkg/logging"
	"github.com/sdejongh/aisync/pkg/models"
	"github.com/sdejongh/aisync/pkg/output"
)

// DefaultTaskTimeout bounds a single transfer when RunnerConfig.Timeout is zero
const DefaultTaskTimeout = 60 * time.Second

// RunnerConfig holds the transfer tool invocation settings
type RunnerConfig struct {
	// Program is the transfer tool, "rsync" unless overridden
	Program string
	// Options are placed between the program and the endpoints
	Options []string
	// Timeout bounds each task
	Timeout time.Duration
	// DryRun logs every command without invoking it
	DryRun bool
	// Output receives formatter output; nil means stdout
	Output io.Writer
}

// Runner executes planned tasks one at a time, in order. A failed task is
// recorded and the run moves on; only an interrupt stops it early.
type Runner struct {
	exec      executor.Executor
	config    RunnerConfig
	formatter output.Formatter
	logger    logging.Logger
}

// NewRunner creates a new task runner. formatter may be nil.
func NewRunner(exec executor.Executor, config RunnerConfig, formatter output.Formatter, logger logging.Logger) *Runner {
	if config.Program == "" {
		config.Program = "rsync"
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTaskTimeout
	}
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Runner{
		exec:      exec,
		config:    config,
		formatter: formatter,
		logger:    logger,
	}
}

// Command returns the argv for task. Directory endpoints get a trailing
// separator so the tool copies contents rather than nesting the directory.
func (r *Runner) Command(task models.RsyncTask) []string {
	src, dest := task.Src, task.Dest
	if task.IsDirectory {
		src = platform.EnsureTrailingSeparator(src)
		dest = platform.EnsureTrailingSeparator(dest)
	}

	argv := make([]string, 0, len(r.config.Options)+3)
	argv = append(argv, r.config.Program)
	argv = append(argv, r.config.Options...)
	return append(argv, src, dest)
}

// Run executes tasks sequentially and returns the report. It never returns
// early on a task failure; a cancelled ctx marks the report cancelled and
// leaves the remaining tasks unstarted.
func (r *Runner) Run(ctx context.Context, op models.Operation, tasks []models.RsyncTask) *models.RunReport {
	report := &models.RunReport{
		RunID:     uuid.NewString(),
		Operation: op,
		DryRun:    r.config.DryRun,
		StartTime: time.Now(),
		Stats:     models.Statistics{TasksPlanned: len(tasks)},
	}
	logger := r.logger.WithFields(logging.Fields{"run_id": report.RunID, "operation": string(op)})

	if r.formatter != nil {
		r.formatter.Start(r.config.Output, op, len(tasks), r.config.DryRun)
	}

	cancelled := false
	for i, task := range tasks {
		if ctx.Err() != nil {
			cancelled = true
			report.Stats.TasksSkipped = len(tasks) - i
			logger.Warn(ctx, "Interrupted, remaining tasks not started", logging.Fields{"skipped": report.Stats.TasksSkipped})
			break
		}

		r.progress(output.ProgressUpdate{Type: output.TaskStart, Index: i + 1, Total: len(tasks), Task: task})
		result := r.runTask(ctx, logger, task)
		report.Record(result)

		update := output.ProgressUpdate{Type: output.TaskComplete, Index: i + 1, Total: len(tasks), Task: task, Result: &result}
		if result.Status != models.TaskSucceeded {
			update.Type = output.TaskError
		}
		r.progress(update)

		if result.Status == models.TaskCancelled {
			cancelled = true
			report.Stats.TasksSkipped = len(tasks) - i - 1
			break
		}
	}

	report.Finish(cancelled)
	logger.Info(ctx, "Run finished", logging.Fields{
		"status":    string(report.Status),
		"succeeded": report.Stats.TasksSucceeded,
		"failed":    report.Stats.TasksFailed,
		"duration":  report.Duration.String(),
	})

	if r.formatter != nil {
		r.formatter.Complete(report)
	}
	return report
}

// runTask executes a single task and never returns an error: every outcome
// is captured in the result
func (r *Runner) runTask(ctx context.Context, logger logging.Logger, task models.RsyncTask) models.TaskResult {
	argv := r.Command(task)
	result := models.TaskResult{
		Task:    task,
		Command: argv,
	}
	fields := logging.Fields{"stage": string(task.Stage), "src": task.Src, "dest": task.Dest}

	logger.Info(ctx, task.Description, fields)
	logger.Info(ctx, "Running: "+strings.Join(argv, " "), nil)

	if r.config.DryRun {
		result.Status = models.TaskSucceeded
		logger.Info(ctx, "Success (dry run): "+task.Description, nil)
		return result
	}

	res, err := r.exec.Execute(ctx, argv[0], argv[1:], executor.WithTimeout(r.config.Timeout))
	if res != nil {
		result.ExitCode = res.ExitCode
		result.Stderr = res.Stderr
		result.TimedOut = res.TimedOut
		result.Duration = res.Duration
	}

	switch {
	case err == nil:
		result.Status = models.TaskSucceeded
		logger.Info(ctx, "Success: "+task.Description, logging.Fields{"duration": result.Duration.String()})

	case ctx.Err() != nil:
		result.Status = models.TaskCancelled
		result.Error = ctx.Err().Error()
		logger.Warn(ctx, "Interrupted: "+task.Description, nil)

	default:
		result.Status = models.TaskFailed
		result.Error = err.Error()
		if errors.Is(err, executor.ErrTimeout) {
			result.TimedOut = true
		}
		logger.Error(ctx, "Failed: "+task.Description, err, logging.Fields{"exit_code": result.ExitCode})
		if stderr := strings.TrimSpace(result.Stderr); stderr != "" {
			logger.Error(ctx, "Error output: "+stderr, nil, nil)
		}
	}
	return result
}

func (r *Runner) progress(update output.ProgressUpdate) {
	if r.formatter != nil {
		r.formatter.Progress(update)
	}
}
