package bootstrap

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"
)

const (
	actionAppliedTemplateConstant  = "Applied %s %s\n"
	actionFailedTemplateConstant   = "Failed %s %s: %v\n"
	boardAbortTemplateConstant     = "aborting after project failure: %w"
	actionFailedLogMessageConstant = "bootstrap action failed"
	logFieldKindConstant           = "kind"
	logFieldItemConstant           = "item"
)

// Report counts the outcome of an executed plan.
type Report struct {
	Applied int
	Failed  int
}

// Executor applies a plan. Label, template, and field failures are reported and skipped;
// a board or link failure stops the run.
type Executor struct {
	output io.Writer
	logger *zap.Logger
}

// NewExecutor constructs an Executor writing progress to output.
func NewExecutor(output io.Writer, logger *zap.Logger) *Executor {
	if output == nil {
		output = io.Discard
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{output: output, logger: logger}
}

// Execute applies every action in order.
func (executor *Executor) Execute(executionContext context.Context, plan Plan, state *ExecutionState) (Report, error) {
	var report Report
	for _, action := range plan {
		if executionError := action.Execute(executionContext, state); executionError != nil {
			report.Failed++
			fmt.Fprintf(executor.output, actionFailedTemplateConstant, action.Kind(), action.Describe(), executionError)
			executor.logger.Warn(actionFailedLogMessageConstant,
				zap.String(logFieldKindConstant, string(action.Kind())),
				zap.String(logFieldItemConstant, action.Describe()),
				zap.Error(executionError))
			if action.Kind() == ActionKindBoard || action.Kind() == ActionKindLink {
				return report, fmt.Errorf(boardAbortTemplateConstant, executionError)
			}
			continue
		}
		report.Applied++
		fmt.Fprintf(executor.output, actionAppliedTemplateConstant, action.Kind(), action.Describe())
	}
	return report, nil
}
