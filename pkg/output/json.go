package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/sdejongh/aisync/pkg/models"
)

// JSONFormatter formats output as JSON for automation and scripting
type JSONFormatter struct {
	writer io.Writer
	events []JSONEvent
}

// JSONEvent represents a single event recorded during the run
type JSONEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Type      string    `json:"type"`
	Data      any       `json:"data,omitempty"`
}

// JSONStartData represents the data for a start event
type JSONStartData struct {
	Operation  string `json:"operation"`
	TotalTasks int    `json:"total_tasks"`
	DryRun     bool   `json:"dry_run"`
}

// JSONReportData represents the final report data
type JSONReportData struct {
	RunID      string          `json:"run_id"`
	Operation  string          `json:"operation"`
	DryRun     bool            `json:"dry_run"`
	Status     string          `json:"status"`
	ExitCode   int             `json:"exit_code"`
	StartedAt  string          `json:"started_at"`
	Duration   string          `json:"duration"`
	DurationMs int64           `json:"duration_ms"`
	Stats      JSONStatsData   `json:"stats"`
	Tasks      []JSONTaskData  `json:"tasks"`
	Errors     []JSONErrorData `json:"errors,omitempty"`
}

// JSONStatsData represents statistics in JSON format
type JSONStatsData struct {
	Planned   int `json:"planned"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

// JSONTaskData represents one task outcome
type JSONTaskData struct {
	Description string   `json:"description"`
	Stage       string   `json:"stage"`
	Src         string   `json:"src"`
	Dest        string   `json:"dest"`
	Directory   bool     `json:"directory,omitempty"`
	Command     []string `json:"command"`
	Status      string   `json:"status"`
	ExitCode    int      `json:"exit_code"`
	TimedOut    bool     `json:"timed_out,omitempty"`
	Error       string   `json:"error,omitempty"`
	Stderr      string   `json:"stderr,omitempty"`
	DurationMs  int64    `json:"duration_ms"`
}

// JSONErrorData represents an error entry
type JSONErrorData struct {
	Task  string `json:"task"`
	Error string `json:"error"`
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{
		events: make([]JSONEvent, 0),
	}
}

// Start initializes the formatter
func (f *JSONFormatter) Start(writer io.Writer, op models.Operation, totalTasks int, dryRun bool) error {
	if writer == nil {
		writer = os.Stdout
	}
	f.writer = writer

	f.events = append(f.events, JSONEvent{
		Timestamp: time.Now(),
		Type:      "start",
		Data: JSONStartData{
			Operation:  string(op),
			TotalTasks: totalTasks,
			DryRun:     dryRun,
		},
	})
	return nil
}

// Progress records task events; nothing is printed until Complete
// to keep the output a single parseable document
func (f *JSONFormatter) Progress(update ProgressUpdate) error {
	if update.Type == TaskStart {
		return nil
	}
	f.events = append(f.events, JSONEvent{
		Timestamp: time.Now(),
		Type:      string(update.Type),
		Data:      update.Task.Description,
	})
	return nil
}

// Complete finalizes output and writes the report as JSON
func (f *JSONFormatter) Complete(report *models.RunReport) error {
	if f.writer == nil {
		f.writer = io.Discard
	}

	data := buildReportData(report)
	f.events = append(f.events, JSONEvent{
		Timestamp: time.Now(),
		Type:      "complete",
		Data:      data,
	})

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// Error reports an error as a standalone JSON object
func (f *JSONFormatter) Error(err error) error {
	f.events = append(f.events, JSONEvent{
		Timestamp: time.Now(),
		Type:      "error",
		Data:      map[string]string{"error": err.Error()},
	})
	if f.writer == nil {
		f.writer = os.Stdout
	}
	return json.NewEncoder(f.writer).Encode(map[string]string{"error": err.Error()})
}

// Events returns everything recorded so far
func (f *JSONFormatter) Events() []JSONEvent {
	return f.events
}

// Name returns the formatter name
func (f *JSONFormatter) Name() string {
	return "json"
}

func buildReportData(report *models.RunReport) JSONReportData {
	tasks := make([]JSONTaskData, 0, len(report.Results))
	var errs []JSONErrorData
	for _, res := range report.Results {
		tasks = append(tasks, JSONTaskData{
			Description: res.Task.Description,
			Stage:       string(res.Task.Stage),
			Src:         res.Task.Src,
			Dest:        res.Task.Dest,
			Directory:   res.Task.IsDirectory,
			Command:     res.Command,
			Status:      string(res.Status),
			ExitCode:    res.ExitCode,
			TimedOut:    res.TimedOut,
			Error:       res.Error,
			Stderr:      res.Stderr,
			DurationMs:  res.Duration.Milliseconds(),
		})
		if res.Status != models.TaskSucceeded {
			errs = append(errs, JSONErrorData{Task: res.Task.Description, Error: describeFailure(res)})
		}
	}

	return JSONReportData{
		RunID:      report.RunID,
		Operation:  string(report.Operation),
		DryRun:     report.DryRun,
		Status:     string(report.Status),
		ExitCode:   report.Status.ExitCode(),
		StartedAt:  report.StartTime.Format(time.RFC3339),
		Duration:   report.Duration.Round(time.Millisecond).String(),
		DurationMs: report.Duration.Milliseconds(),
		Stats: JSONStatsData{
			Planned:   report.Stats.TasksPlanned,
			Succeeded: report.Stats.TasksSucceeded,
			Failed:    report.Stats.TasksFailed,
			Skipped:   report.Stats.TasksSkipped,
		},
		Tasks:  tasks,
		Errors: errs,
	}
}
