package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sdejongh/aisync/pkg/models"
)

// HumanFormatter formats output in human-readable format
type HumanFormatter struct {
	writer     io.Writer
	totalTasks int
}

// NewHumanFormatter creates a new human-readable formatter
func NewHumanFormatter() *HumanFormatter {
	return &HumanFormatter{}
}

// Start initializes the formatter
func (f *HumanFormatter) Start(writer io.Writer, op models.Operation, totalTasks int, dryRun bool) error {
	f.writer = writer
	f.totalTasks = totalTasks

	if writer != nil {
		fmt.Fprintf(writer, "Starting %s: %d tasks%s\n", op, totalTasks, dryRunSuffix(dryRun))
	}
	return nil
}

// Progress reports each finished task on its own line
func (f *HumanFormatter) Progress(update ProgressUpdate) error {
	if f.writer == nil {
		return nil
	}

	switch update.Type {
	case TaskComplete:
		fmt.Fprintf(f.writer, "[%d/%d] ✓ %s\n", update.Index, update.Total, update.Task.Description)
	case TaskError:
		reason := "failed"
		if update.Result != nil {
			reason = describeFailure(*update.Result)
		}
		fmt.Fprintf(f.writer, "[%d/%d] ✗ %s: %s\n", update.Index, update.Total, update.Task.Description, reason)
	}
	return nil
}

// Complete finalizes output and displays summary
func (f *HumanFormatter) Complete(report *models.RunReport) error {
	if f.writer == nil {
		f.writer = io.Discard
	}
	writeSummary(f.writer, report)
	return nil
}

// Error reports an error
func (f *HumanFormatter) Error(err error) error {
	if f.writer != nil {
		fmt.Fprintf(f.writer, "Error: %v\n", err)
	}
	return nil
}

// Name returns the formatter name
func (f *HumanFormatter) Name() string {
	return "human"
}

// writeSummary prints the end-of-run block shared by human and progress output
func writeSummary(w io.Writer, report *models.RunReport) {
	title := "Run"
	if op := string(report.Operation); op != "" {
		title = strings.ToUpper(op[:1]) + op[1:]
	}

	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "%s completed in %s%s\n", title, formatDuration(report.Duration), dryRunSuffix(report.DryRun))
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Summary:\n")
	fmt.Fprintf(w, "  Tasks planned:  %d\n", report.Stats.TasksPlanned)
	fmt.Fprintf(w, "  Succeeded:      %d\n", report.Stats.TasksSucceeded)
	fmt.Fprintf(w, "  Failed:         %d\n", report.Stats.TasksFailed)
	if report.Stats.TasksSkipped > 0 {
		fmt.Fprintf(w, "  Skipped:        %d\n", report.Stats.TasksSkipped)
	}
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Status: %s\n", report.Status)

	if failures := report.Failures(); len(failures) > 0 {
		fmt.Fprintf(w, "\nFailures:\n")
		for _, res := range failures {
			fmt.Fprintf(w, "  %s: %s\n", res.Task.Description, describeFailure(res))
		}
	}
}

func dryRunSuffix(dryRun bool) string {
	if dryRun {
		return " (dry run)"
	}
	return ""
}

// formatDuration formats duration in human-readable format
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
