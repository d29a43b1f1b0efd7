package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/renameio/v2"
	"github.com/sdejongh/aisync/pkg/models"
)

// WriteReportFile writes the run report to a file
// Format can be "human" or "json"
func WriteReportFile(report *models.RunReport, path string, format string) error {
	var buf bytes.Buffer

	var err error
	switch format {
	case "json":
		err = writeReportJSON(report, &buf)
	default: // "human"
		err = writeReportHuman(report, &buf)
	}
	if err != nil {
		return err
	}

	if err := renameio.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write report file: %w", err)
	}
	return nil
}

// writeReportHuman writes one block per task
func writeReportHuman(report *models.RunReport, w io.Writer) error {
	fmt.Fprintf(w, "Run Report\n")
	fmt.Fprintf(w, "==========\n\n")
	fmt.Fprintf(w, "Run ID: %s\n", report.RunID)
	fmt.Fprintf(w, "Operation: %s\n", report.Operation)
	fmt.Fprintf(w, "Started: %s\n", report.StartTime.Format(time.RFC3339))
	fmt.Fprintf(w, "Dry Run: %v\n", report.DryRun)
	fmt.Fprintf(w, "Status: %s\n\n", report.Status)

	for i, res := range report.Results {
		label := fmt.Sprintf("%d. %s", i+1, res.Task.Description)
		fmt.Fprintf(w, "%s\n", label)
		fmt.Fprintf(w, "%s\n", strings.Repeat("-", len(label)))
		fmt.Fprintf(w, "  Command:  %s\n", strings.Join(res.Command, " "))
		fmt.Fprintf(w, "  Status:   %s", res.Status)
		if res.Status != models.TaskSucceeded {
			fmt.Fprintf(w, " (%s)", describeFailure(res))
		}
		fmt.Fprintf(w, "\n")
		fmt.Fprintf(w, "  Duration: %s\n", formatDuration(res.Duration))
		if stderr := strings.TrimSpace(res.Stderr); stderr != "" {
			fmt.Fprintf(w, "  Stderr:\n")
			for _, line := range strings.Split(stderr, "\n") {
				fmt.Fprintf(w, "    %s\n", line)
			}
		}
		fmt.Fprintf(w, "\n")
	}

	if report.Stats.TasksSkipped > 0 {
		fmt.Fprintf(w, "Not started: %d tasks\n", report.Stats.TasksSkipped)
	}
	return nil
}

// writeReportJSON writes the same document the json formatter prints
func writeReportJSON(report *models.RunReport, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(buildReportData(report))
}
