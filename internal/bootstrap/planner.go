package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/ghflow/internal/config"
	"github.com/temirov/ghflow/internal/projects"
)

const (
	labelGatewayMissingMessageConstant  = "label gateway not configured"
	fileGatewayMissingMessageConstant   = "file gateway not configured"
	boardGatewayMissingMessageConstant  = "project gateway not configured"
	listLabelsErrorTemplateConstant     = "unable to list labels: %w"
	fileExistsErrorTemplateConstant     = "unable to check %s: %w"
	renderTemplateErrorTemplateConstant = "unable to render %s: %w"
	findBoardErrorTemplateConstant      = "unable to query project %s for %s: %w"
	inspectFieldErrorTemplateConstant   = "unable to inspect field %s: %w"
)

var (
	// ErrLabelGatewayNotConfigured indicates label access is missing.
	ErrLabelGatewayNotConfigured = errors.New(labelGatewayMissingMessageConstant)
	// ErrFileGatewayNotConfigured indicates repository file access is missing.
	ErrFileGatewayNotConfigured = errors.New(fileGatewayMissingMessageConstant)
	// ErrBoardGatewayNotConfigured indicates project access is missing while projects are enabled.
	ErrBoardGatewayNotConfigured = errors.New(boardGatewayMissingMessageConstant)
)

// Planner compares the configuration with the remote repository.
type Planner struct {
	Labels          LabelGateway
	Files           FileGateway
	Boards          BoardGateway
	BoardOwner      string
	RepositoryOwner string
	RepositoryName  string
}

// Plan lists the create-only actions that bring the repository in line with configuration.
// Labels come first, then templates, then the board and its fields.
func (planner Planner) Plan(executionContext context.Context, configuration config.Configuration) (Plan, error) {
	plan, _, planError := planner.PlanWithBoard(executionContext, configuration)
	return plan, planError
}

// PlanWithBoard plans like Plan and also returns the existing board, if one was found.
func (planner Planner) PlanWithBoard(executionContext context.Context, configuration config.Configuration) (Plan, *projects.Board, error) {
	var plan Plan

	labelActions, labelError := planner.planLabels(executionContext, configuration)
	if labelError != nil {
		return nil, nil, labelError
	}
	plan = append(plan, labelActions...)

	templateActions, templateError := planner.planTemplates(executionContext, configuration.Templates)
	if templateError != nil {
		return nil, nil, templateError
	}
	plan = append(plan, templateActions...)

	boardActions, existingBoard, boardError := planner.planBoard(executionContext, configuration.ProjectsV2)
	if boardError != nil {
		return nil, nil, boardError
	}
	plan = append(plan, boardActions...)

	return plan, existingBoard, nil
}

func (planner Planner) planLabels(executionContext context.Context, configuration config.Configuration) ([]Action, error) {
	declarations := configuration.DeclaredLabels()
	if len(declarations) == 0 {
		return nil, nil
	}
	if planner.Labels == nil {
		return nil, ErrLabelGatewayNotConfigured
	}

	existingLabels, listError := planner.Labels.ListLabels(executionContext)
	if listError != nil {
		return nil, fmt.Errorf(listLabelsErrorTemplateConstant, listError)
	}
	knownNames := make(map[string]struct{}, len(existingLabels))
	for _, label := range existingLabels {
		knownNames[strings.ToLower(label.Name)] = struct{}{}
	}

	var actions []Action
	for _, declaration := range declarations {
		normalizedName := strings.ToLower(declaration.Name)
		if _, exists := knownNames[normalizedName]; exists {
			continue
		}
		knownNames[normalizedName] = struct{}{}
		actions = append(actions, CreateLabelAction{
			Name:        declaration.Name,
			Color:       ResolveLabelColor(declaration.Name, configuration.LabelColors),
			Description: declaration.Category,
		})
	}
	return actions, nil
}

func (planner Planner) planTemplates(executionContext context.Context, templates config.TemplatesConfiguration) ([]Action, error) {
	if !templates.Enabled {
		return nil, nil
	}
	if planner.Files == nil {
		return nil, ErrFileGatewayNotConfigured
	}

	var actions []Action
	for _, document := range templates.Issue {
		path := document.IssueTemplatePath()
		missing, checkError := planner.fileMissing(executionContext, path)
		if checkError != nil {
			return nil, checkError
		}
		if !missing {
			continue
		}
		content, renderError := RenderIssueTemplate(document)
		if renderError != nil {
			return nil, fmt.Errorf(renderTemplateErrorTemplateConstant, path, renderError)
		}
		actions = append(actions, UploadTemplateAction{Path: path, Content: content})
	}

	if len(strings.TrimSpace(templates.PullRequest)) > 0 {
		path := config.PullRequestTemplatePath()
		missing, checkError := planner.fileMissing(executionContext, path)
		if checkError != nil {
			return nil, checkError
		}
		if missing {
			actions = append(actions, UploadTemplateAction{Path: path, Content: renderPullRequestTemplate(templates.PullRequest)})
		}
	}
	return actions, nil
}

func (planner Planner) fileMissing(executionContext context.Context, path string) (bool, error) {
	exists, existsError := planner.Files.FileExists(executionContext, path)
	if existsError != nil {
		return false, fmt.Errorf(fileExistsErrorTemplateConstant, path, existsError)
	}
	return !exists, nil
}

// planBoard fails on query errors rather than planning a duplicate board. An existing board
// that is not linked to the repository gets a link action ahead of its field actions.
func (planner Planner) planBoard(executionContext context.Context, projectsConfiguration config.ProjectsConfiguration) ([]Action, *projects.Board, error) {
	if !projectsConfiguration.Enabled {
		return nil, nil, nil
	}
	if planner.Boards == nil {
		return nil, nil, ErrBoardGatewayNotConfigured
	}

	title := projectsConfiguration.ProjectTitle(planner.RepositoryName)
	board, found, findError := planner.Boards.FindBoard(executionContext, planner.BoardOwner, title)
	if findError != nil {
		return nil, nil, fmt.Errorf(findBoardErrorTemplateConstant, title, planner.BoardOwner, findError)
	}

	declaredFields := projectsConfiguration.DeclaredFields()
	if !found {
		actions := []Action{CreateBoardAction{Title: title, OwnerLogin: planner.BoardOwner}}
		for _, declaredField := range declaredFields {
			actions = append(actions, EnsureFieldAction{Name: declaredField.Name, Options: declaredField.Options})
		}
		return actions, nil, nil
	}

	var actions []Action
	if !board.IsLinkedTo(planner.RepositoryOwner, planner.RepositoryName) {
		actions = append(actions, LinkBoardAction{
			BoardID:         board.ID,
			Title:           board.Title,
			RepositoryOwner: planner.RepositoryOwner,
			RepositoryName:  planner.RepositoryName,
		})
	}
	for _, declaredField := range declaredFields {
		field, locateError := planner.Boards.LocateField(executionContext, board.ID, declaredField.Name)
		if errors.Is(locateError, projects.ErrFieldNotFound) {
			actions = append(actions, EnsureFieldAction{BoardID: board.ID, Name: declaredField.Name, Options: declaredField.Options})
			continue
		}
		if locateError != nil {
			return nil, nil, fmt.Errorf(inspectFieldErrorTemplateConstant, declaredField.Name, locateError)
		}
		singleSelectField, isSingleSelect := field.(projects.SingleSelectField)
		if !isSingleSelect {
			return nil, nil, projects.FieldNotSingleSelectError{FieldName: declaredField.Name}
		}
		if missingOptions := singleSelectField.MissingOptions(declaredField.Options); len(missingOptions) > 0 {
			actions = append(actions, EnsureFieldAction{BoardID: board.ID, Name: declaredField.Name, Options: declaredField.Options})
		}
	}
	return actions, &board, nil
}
