package output

import (
	"fmt"
	"io"
	"os"

	"github.com/sdejongh/aisync/pkg/models"
	"golang.org/x/term"
)

// UpdateType identifies a progress notification
type UpdateType string

const (
	TaskStart    UpdateType = "task_start"
	TaskComplete UpdateType = "task_complete"
	TaskError    UpdateType = "task_error"
)

// ProgressUpdate represents a progress notification during a run
type ProgressUpdate struct {
	Type UpdateType
	// Index is 1-based
	Index  int
	Total  int
	Task   models.RsyncTask
	Result *models.TaskResult
}

// Formatter defines the interface for output formatting
// Implementations include human-readable, JSON and progress bar formatters
type Formatter interface {
	// Start initializes the formatter for a new run
	Start(writer io.Writer, op models.Operation, totalTasks int, dryRun bool) error

	// Progress reports a task starting or finishing
	Progress(update ProgressUpdate) error

	// Complete finalizes output and displays summary
	Complete(report *models.RunReport) error

	// Error reports an error that prevented the run
	Error(err error) error

	// Name returns the formatter name
	Name() string
}

// New returns the formatter registered under name. "human" upgrades to the
// progress bar when interactive is set.
func New(name string, interactive bool) (Formatter, error) {
	switch name {
	case "", "human":
		if interactive {
			return NewProgressFormatter(), nil
		}
		return NewHumanFormatter(), nil
	case "progress":
		return NewProgressFormatter(), nil
	case "json":
		return NewJSONFormatter(), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (expected human or json)", name)
	}
}

// IsTerminal reports whether w is an interactive terminal
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// describeFailure renders why a task did not succeed
func describeFailure(res models.TaskResult) string {
	switch {
	case res.Status == models.TaskCancelled:
		return "interrupted"
	case res.TimedOut:
		return "timed out"
	case res.ExitCode > 0:
		return fmt.Sprintf("exit code %d", res.ExitCode)
	case res.Error != "":
		return res.Error
	default:
		return string(res.Status)
	}
}
