package models

import (
	"time"
)

// RunReport represents the results of a push or pull run
type RunReport struct {
	// Run details
	RunID     string
	Operation Operation
	DryRun    bool

	// Timing
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	// Statistics
	Stats Statistics

	// Per-task outcomes, in execution order
	Results []TaskResult

	// Overall status
	Status RunStatus
}

// Statistics holds run counters. They are only updated between tasks.
type Statistics struct {
	TasksPlanned   int
	TasksSucceeded int
	TasksFailed    int
	// TasksSkipped counts tasks never started because the run was interrupted
	TasksSkipped int
}

// TaskStatus is the outcome of a single task
type TaskStatus string

const (
	// TaskSucceeded indicates the transfer tool exited with status zero (or dry-run)
	TaskSucceeded TaskStatus = "succeeded"
	// TaskFailed indicates a non-zero exit, a timeout or an invocation error
	TaskFailed TaskStatus = "failed"
	// TaskCancelled indicates the run was interrupted while the task was running
	TaskCancelled TaskStatus = "cancelled"
)

// TaskResult records what happened to one task
type TaskResult struct {
	Task     RsyncTask
	Command  []string
	Status   TaskStatus
	ExitCode int
	Stderr   string
	TimedOut bool
	Error    string
	Duration time.Duration
}

// RunStatus represents the overall result
type RunStatus string

const (
	// StatusSuccess indicates all tasks completed successfully
	StatusSuccess RunStatus = "success"
	// StatusPartial indicates some tasks failed
	StatusPartial RunStatus = "partial"
	// StatusFailed indicates every task failed
	StatusFailed RunStatus = "failed"
	// StatusCancelled indicates the run was interrupted
	StatusCancelled RunStatus = "cancelled"
)

// ExitCode returns the appropriate exit code for the run status
func (s RunStatus) ExitCode() int {
	switch s {
	case StatusSuccess:
		return 0
	case StatusPartial:
		return 1
	case StatusFailed:
		return 2
	case StatusCancelled:
		return 3
	default:
		return 2
	}
}

// Record appends a task result and updates the counters
func (r *RunReport) Record(result TaskResult) {
	r.Results = append(r.Results, result)
	switch result.Status {
	case TaskSucceeded:
		r.Stats.TasksSucceeded++
	default:
		r.Stats.TasksFailed++
	}
}

// Finish stamps the end time and derives the overall status
func (r *RunReport) Finish(cancelled bool) {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)

	switch {
	case cancelled:
		r.Status = StatusCancelled
	case r.Stats.TasksFailed == 0:
		r.Status = StatusSuccess
	case r.Stats.TasksSucceeded == 0:
		r.Status = StatusFailed
	default:
		r.Status = StatusPartial
	}
}

// Failures returns the results of failed or cancelled tasks
func (r *RunReport) Failures() []TaskResult {
	var failed []TaskResult
	for _, res := range r.Results {
		if res.Status != TaskSucceeded {
			failed = append(failed, res)
		}
	}
	return failed
}
