package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/ghflow/internal/config"
	"github.com/temirov/ghflow/internal/projects"
	"github.com/temirov/ghflow/internal/prompt"
	"github.com/temirov/ghflow/internal/ui"
)

const (
	nothingToDoMessageConstant          = "Nothing to do! Repository is already compliant.\n"
	closedBoardNoticeTemplateConstant   = "Project %s: %s\nThis project appears to be closed.\n"
	operationLinkConstant               = "LINK"
	planTableTitleConstant              = "Bootstrap plan"
	planEmptyNounConstant               = "changes"
	dryRunMessageConstant               = "Dry run: no changes were applied.\n"
	executionPromptConstant             = "Apply these changes?"
	runChoiceConstant                   = "Run"
	dryRunChoiceConstant                = "Dry-run"
	cancelChoiceConstant                = "Cancel"
	summaryTemplateConstant             = "Applied %d of %d changes.\n"
	planErrorTemplateConstant           = "unable to plan bootstrap: %w"
	prompterMissingMessageConstant      = "prompter not configured"
	operationCreateConstant             = "CREATE"
	operationUploadConstant             = "UPLOAD"
	operationEnsureConstant             = "ENSURE"
	planComputedLogMessageConstant      = "bootstrap plan computed"
	bootstrapFinishedLogMessageConstant = "bootstrap finished"
	logFieldActionsConstant             = "actions"
	logFieldAppliedConstant             = "applied"
	logFieldFailedConstant              = "failed"
)

// ErrPrompterNotConfigured indicates an interactive step ran without a prompter.
var ErrPrompterNotConfigured = errors.New(prompterMissingMessageConstant)

var (
	planTableHeaders = []string{"Category", "Item", "Action"}

	actionCategoryNames = map[ActionKind]string{
		ActionKindLabel:    "Label",
		ActionKindTemplate: "Template",
		ActionKindBoard:    "Project",
		ActionKindLink:     "Project",
		ActionKindField:    "Field",
	}

	actionOperations = map[ActionKind]string{
		ActionKindLabel:    operationCreateConstant,
		ActionKindTemplate: operationUploadConstant,
		ActionKindBoard:    operationCreateConstant,
		ActionKindLink:     operationLinkConstant,
		ActionKindField:    operationEnsureConstant,
	}

	executionChoices = []string{runChoiceConstant, dryRunChoiceConstant, cancelChoiceConstant}
)

// Dependencies are the collaborators of the bootstrap workflow.
type Dependencies struct {
	Labels          LabelGateway
	Files           FileGateway
	Boards          BoardGateway
	Prompter        prompt.Prompter
	Configuration   config.Configuration
	RepositoryOwner string
	RepositoryName  string
	Logger          *zap.Logger
}

// DependenciesProvider resolves Dependencies when a command runs.
type DependenciesProvider func(executionContext context.Context) (Dependencies, error)

// RunOptions control whether the plan is confirmed and whether it is applied at all.
type RunOptions struct {
	SkipConfirmation bool
	DryRun           bool
}

// Service plans and applies repository bootstrap changes.
type Service struct {
	dependencies Dependencies
	output       io.Writer
	logger       *zap.Logger
}

// NewService validates dependencies and constructs a Service writing to output.
func NewService(dependencies Dependencies, output io.Writer) (*Service, error) {
	if dependencies.Labels == nil {
		return nil, ErrLabelGatewayNotConfigured
	}
	if dependencies.Files == nil {
		return nil, ErrFileGatewayNotConfigured
	}
	if output == nil {
		output = io.Discard
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{dependencies: dependencies, output: output, logger: logger}, nil
}

// Plan computes the changes without printing or applying them.
func (service *Service) Plan(executionContext context.Context) (Plan, error) {
	plan, _, planError := service.plan(executionContext)
	return plan, planError
}

func (service *Service) plan(executionContext context.Context) (Plan, *projects.Board, error) {
	planner := Planner{
		Labels:          service.dependencies.Labels,
		Files:           service.dependencies.Files,
		Boards:          service.dependencies.Boards,
		BoardOwner:      service.boardOwner(),
		RepositoryOwner: service.dependencies.RepositoryOwner,
		RepositoryName:  service.dependencies.RepositoryName,
	}
	plan, existingBoard, planError := planner.PlanWithBoard(executionContext, service.dependencies.Configuration)
	if planError != nil {
		return nil, nil, fmt.Errorf(planErrorTemplateConstant, planError)
	}
	service.logger.Debug(planComputedLogMessageConstant, zap.Int(logFieldActionsConstant, len(plan)))
	return plan, existingBoard, nil
}

// Run prints the plan, asks how to proceed unless confirmation is skipped, and applies it.
func (service *Service) Run(executionContext context.Context, options RunOptions) (Report, error) {
	plan, existingBoard, planError := service.plan(executionContext)
	if planError != nil {
		return Report{}, planError
	}
	if existingBoard != nil && existingBoard.Closed {
		fmt.Fprintf(service.output, closedBoardNoticeTemplateConstant, existingBoard.Title, existingBoard.URL)
	}
	if len(plan) == 0 {
		fmt.Fprint(service.output, nothingToDoMessageConstant)
		return Report{}, nil
	}

	ui.WriteTable(service.output, PlanTable(plan), planEmptyNounConstant)

	applyPlan := !options.DryRun
	if applyPlan && !options.SkipConfirmation {
		var choiceError error
		applyPlan, choiceError = service.chooseExecution()
		if choiceError != nil {
			return Report{}, choiceError
		}
	}
	if !applyPlan {
		fmt.Fprint(service.output, dryRunMessageConstant)
		return Report{}, nil
	}

	state := &ExecutionState{
		Labels:          service.dependencies.Labels,
		Files:           service.dependencies.Files,
		Boards:          service.dependencies.Boards,
		RepositoryOwner: service.dependencies.RepositoryOwner,
		RepositoryName:  service.dependencies.RepositoryName,
	}
	report, executionError := NewExecutor(service.output, service.logger).Execute(executionContext, plan, state)
	fmt.Fprintf(service.output, summaryTemplateConstant, report.Applied, len(plan))
	service.logger.Info(bootstrapFinishedLogMessageConstant, zap.Int(logFieldAppliedConstant, report.Applied), zap.Int(logFieldFailedConstant, report.Failed))
	return report, executionError
}

// PlanTable renders a plan as Category, Item, and Action columns.
func PlanTable(plan Plan) ui.Table {
	rows := make([][]string, 0, len(plan))
	for _, action := range plan {
		rows = append(rows, []string{actionCategoryNames[action.Kind()], action.Describe(), actionOperations[action.Kind()]})
	}
	return ui.Table{Title: planTableTitleConstant, Headers: planTableHeaders, Rows: rows}
}

func (service *Service) chooseExecution() (bool, error) {
	if service.dependencies.Prompter == nil {
		return false, ErrPrompterNotConfigured
	}
	selectedIndex, selectError := service.dependencies.Prompter.Select(executionPromptConstant, executionChoices, 0)
	if selectError != nil {
		return false, selectError
	}
	switch executionChoices[selectedIndex] {
	case runChoiceConstant:
		return true, nil
	case dryRunChoiceConstant:
		return false, nil
	default:
		return false, prompt.ErrCancelled
	}
}

// boardOwner falls back to the repository owner when projects.owner is unset.
func (service *Service) boardOwner() string {
	if owner := strings.TrimSpace(service.dependencies.Configuration.ProjectsV2.Owner); len(owner) > 0 {
		return owner
	}
	return service.dependencies.RepositoryOwner
}
