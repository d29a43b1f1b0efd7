package output

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/sdejongh/aisync/pkg/models"
	"golang.org/x/term"
)

const (
	progressTemplate = `{{string . "op"}} {{counters .}} {{bar . "[" "=" ">" " " "]"}} {{percent .}} {{string . "task"}}`
	refreshRate      = 200 * time.Millisecond
	defaultTermWidth = 120
)

// ProgressFormatter draws a single progress bar over the task list and
// prints the summary once the bar is finished
type ProgressFormatter struct {
	mu        sync.Mutex
	writer    io.Writer
	bar       *pb.ProgressBar
	termWidth int
}

// NewProgressFormatter creates a new progress bar formatter
func NewProgressFormatter() *ProgressFormatter {
	return &ProgressFormatter{}
}

// Start initializes the formatter
func (f *ProgressFormatter) Start(writer io.Writer, op models.Operation, totalTasks int, dryRun bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if writer == nil {
		writer = os.Stdout
	}
	f.writer = writer

	// Keep the bar on one line, wrapping breaks the carriage-return redraw
	if file, ok := writer.(*os.File); ok {
		if width, _, err := term.GetSize(int(file.Fd())); err == nil && width > 0 {
			f.termWidth = width
		}
	}
	if f.termWidth == 0 {
		f.termWidth = defaultTermWidth
	}

	label := string(op)
	if dryRun {
		label += " (dry run)"
	}

	f.bar = pb.New(totalTasks).
		SetTemplateString(progressTemplate).
		SetWriter(writer).
		SetMaxWidth(f.termWidth).
		SetRefreshRate(refreshRate).
		Set("op", label).
		Set("task", "")
	f.bar.Start()
	return nil
}

// Progress advances the bar when a task finishes
func (f *ProgressFormatter) Progress(update ProgressUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.bar == nil {
		return nil
	}

	switch update.Type {
	case TaskStart:
		f.bar.Set("task", update.Task.Description)
	case TaskComplete, TaskError:
		f.bar.Increment()
	}
	return nil
}

// Complete stops the bar and displays the summary
func (f *ProgressFormatter) Complete(report *models.RunReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.finishBar()
	if f.writer == nil {
		f.writer = io.Discard
	}
	writeSummary(f.writer, report)
	return nil
}

// Error stops the bar and reports an error
func (f *ProgressFormatter) Error(err error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.finishBar()
	if f.writer != nil {
		fmt.Fprintf(f.writer, "Error: %v\n", err)
	}
	return nil
}

// Name returns the formatter name
func (f *ProgressFormatter) Name() string {
	return "progress"
}

func (f *ProgressFormatter) finishBar() {
	if f.bar == nil {
		return
	}
	f.bar.Set("task", "")
	f.bar.Finish()
	f.bar = nil
}
