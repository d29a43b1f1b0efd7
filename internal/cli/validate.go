package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sdejongh/aisync/pkg/config"
	"github.com/sdejongh/aisync/pkg/models"
)

// Process exit codes
const (
	ExitSuccess     = 0
	ExitPartial     = 1
	ExitUsage       = 2
	ExitInterrupted = 3
)

// UsageError marks a usage or configuration problem detected before any
// task ran
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string {
	return e.Err.Error()
}

func (e *UsageError) Unwrap() error {
	return e.Err
}

// RunError reports a run that finished with a status other than success
type RunError struct {
	Report *models.RunReport
}

func (e *RunError) Error() string {
	return fmt.Sprintf("%s finished with status %s: %d of %d tasks failed",
		e.Report.Operation, e.Report.Status, e.Report.Stats.TasksFailed, e.Report.Stats.TasksPlanned)
}

// ExitCode maps an error returned by a command to the process exit code
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var runErr *RunError
	if errors.As(err, &runErr) {
		return runErr.Report.Status.ExitCode()
	}

	var usageErr *UsageError
	var validationErr *models.ValidationError
	if errors.As(err, &usageErr) || errors.As(err, &validationErr) {
		return ExitUsage
	}

	if errors.Is(err, context.Canceled) {
		return ExitInterrupted
	}
	return ExitPartial
}

// validateTransferConfig checks everything a push or pull needs before
// planning
func validateTransferConfig(cfg *config.Config) error {
	if err := cfg.ValidateForTransfer(); err != nil {
		return &UsageError{Err: err}
	}

	home, err := cfg.LocalHome()
	if err != nil {
		return &UsageError{Err: err}
	}
	if info, err := os.Stat(home); err != nil || !info.IsDir() {
		return &UsageError{Err: fmt.Errorf("local home directory is not usable: %s", home)}
	}

	return nil
}
