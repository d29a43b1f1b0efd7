package sync

import (
	"context"
	"fmt"

	"github.com/sdejongh/aisync/pkg/logging"
	"github.com/sdejongh/aisync/pkg/models"
	"github.com/sdejongh/aisync/pkg/plan"
	"github.com/sdejongh/aisync/pkg/preflight"
)

// Engine orchestrates a push or pull: plan, optional preflight, run
type Engine struct {
	planner   *plan.Planner
	checker   *preflight.Checker
	runner    *Runner
	logger    logging.Logger
	operation models.Operation
	strict    bool
}

// NewEngine creates a new sync engine. checker may be nil to skip preflight.
func NewEngine(
	planner *plan.Planner,
	checker *preflight.Checker,
	runner *Runner,
	logger logging.Logger,
	operation models.Operation,
	strict bool,
) *Engine {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Engine{
		planner:   planner,
		checker:   checker,
		runner:    runner,
		logger:    logger,
		operation: operation,
		strict:    strict,
	}
}

// Plan returns the tasks the engine would run for mappings
func (e *Engine) Plan(mappings []models.FileMapping) []models.RsyncTask {
	return e.planner.Plan(mappings, e.operation)
}

// Run executes the operation over mappings. The error is non-nil only when
// the run could not start; task failures are reported in the RunReport.
func (e *Engine) Run(ctx context.Context, mappings []models.FileMapping) (*models.RunReport, error) {
	e.logger.Info(ctx, fmt.Sprintf("Start %s operation", e.operation), logging.Fields{"mappings": len(mappings)})

	tasks := e.Plan(mappings)
	e.logger.Debug(ctx, "Planned tasks", logging.Fields{"tasks": len(tasks)})

	// Only a live push can spread a broken file
	if e.checker != nil && e.operation == models.OperationPush && !e.runner.config.DryRun {
		if _, err := e.checker.Run(ctx, tasks, e.strict); err != nil {
			return nil, err
		}
	}

	report := e.runner.Run(ctx, e.operation, tasks)
	if report.Status == models.StatusSuccess {
		e.logger.Info(ctx, fmt.Sprintf("Operation %s completed successfully", e.operation), nil)
	} else {
		e.logger.Warn(ctx, fmt.Sprintf("Operation %s finished with status %s", e.operation, report.Status), nil)
	}
	return report, nil
}
