package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/ghflow/internal/githubapi"
	"github.com/temirov/ghflow/internal/projects"
)

// ActionKind identifies the category of a planned action.
type ActionKind string

// Action kind enumerations.
const (
	ActionKindLabel    ActionKind = ActionKind("label")
	ActionKindTemplate ActionKind = ActionKind("template")
	ActionKindBoard    ActionKind = ActionKind("board")
	ActionKindLink     ActionKind = ActionKind("link")
	ActionKindField    ActionKind = ActionKind("field")
)

const (
	labelDescriptionTemplateConstant      = "%s (#%s)"
	templateCommitMessageTemplateConstant = "Add %s"
	boardDescriptionTemplateConstant      = "%s (owner %s)"
	linkDescriptionTemplateConstant       = "%s -> %s/%s"
	fieldDescriptionTemplateConstant      = "%s: %s"
	fieldOptionSeparatorConstant          = ", "
	boardNotResolvedMessageConstant       = "project board is not available"
	createLabelErrorTemplateConstant      = "unable to create label %s: %w"
	uploadTemplateErrorTemplateConstant   = "unable to upload %s: %w"
	ownerLookupErrorTemplateConstant      = "unable to resolve project owner %s: %w"
	createBoardErrorTemplateConstant      = "unable to create project %s: %w"
	repositoryIDErrorTemplateConstant     = "unable to resolve repository %s/%s: %w"
	linkBoardErrorTemplateConstant        = "unable to link project %s to %s/%s: %w"
	createFieldErrorTemplateConstant      = "unable to create field %s: %w"
	updateFieldErrorTemplateConstant      = "unable to add options to field %s: %w"
	locateFieldErrorTemplateConstant      = "unable to read field %s: %w"
)

// ErrBoardNotResolved indicates a field action ran without a board to act on.
var ErrBoardNotResolved = errors.New(boardNotResolvedMessageConstant)

// LabelGateway lists and creates repository labels.
type LabelGateway interface {
	ListLabels(executionContext context.Context) ([]githubapi.Label, error)
	CreateLabel(executionContext context.Context, label githubapi.Label) error
}

// FileGateway checks for and commits repository files.
type FileGateway interface {
	FileExists(executionContext context.Context, path string) (bool, error)
	CreateFile(executionContext context.Context, path string, commitMessage string, content []byte) error
}

// BoardGateway reads and creates Projects v2 boards and their fields.
type BoardGateway interface {
	FindBoard(executionContext context.Context, ownerLogin string, title string) (projects.Board, bool, error)
	OwnerID(executionContext context.Context, ownerLogin string) (string, error)
	CreateBoard(executionContext context.Context, ownerID string, title string) (projects.Board, error)
	RepositoryID(executionContext context.Context, owner string, name string) (string, error)
	LinkRepository(executionContext context.Context, boardID string, repositoryID string) error
	LocateField(executionContext context.Context, boardID string, fieldName string) (projects.Field, error)
	CreateSingleSelectField(executionContext context.Context, boardID string, name string, options []string) (projects.SingleSelectField, error)
	AddFieldOptions(executionContext context.Context, field projects.SingleSelectField, newOptions []string) error
}

// ExecutionState carries the gateways and the board shared by the actions of one run.
type ExecutionState struct {
	Labels          LabelGateway
	Files           FileGateway
	Boards          BoardGateway
	RepositoryOwner string
	RepositoryName  string
	Board           projects.Board
}

// Action is one planned change.
type Action interface {
	Kind() ActionKind
	Describe() string
	Execute(executionContext context.Context, state *ExecutionState) error
}

// Plan is the ordered list of actions a bootstrap run applies.
type Plan []Action

// CreateLabelAction creates a missing label.
type CreateLabelAction struct {
	Name        string
	Color       string
	Description string
}

// Kind reports ActionKindLabel.
func (action CreateLabelAction) Kind() ActionKind {
	return ActionKindLabel
}

// Describe names the label and its color.
func (action CreateLabelAction) Describe() string {
	return fmt.Sprintf(labelDescriptionTemplateConstant, action.Name, action.Color)
}

// Execute creates the label.
func (action CreateLabelAction) Execute(executionContext context.Context, state *ExecutionState) error {
	label := githubapi.Label{Name: action.Name, Color: action.Color, Description: action.Description}
	if createError := state.Labels.CreateLabel(executionContext, label); createError != nil {
		return fmt.Errorf(createLabelErrorTemplateConstant, action.Name, createError)
	}
	return nil
}

// UploadTemplateAction commits a missing template file to the default branch.
type UploadTemplateAction struct {
	Path    string
	Content string
}

// Kind reports ActionKindTemplate.
func (action UploadTemplateAction) Kind() ActionKind {
	return ActionKindTemplate
}

// Describe names the repository path.
func (action UploadTemplateAction) Describe() string {
	return action.Path
}

// Execute commits the file.
func (action UploadTemplateAction) Execute(executionContext context.Context, state *ExecutionState) error {
	commitMessage := fmt.Sprintf(templateCommitMessageTemplateConstant, action.Path)
	if uploadError := state.Files.CreateFile(executionContext, action.Path, commitMessage, []byte(action.Content)); uploadError != nil {
		return fmt.Errorf(uploadTemplateErrorTemplateConstant, action.Path, uploadError)
	}
	return nil
}

// CreateBoardAction creates the project board and links it to the repository.
type CreateBoardAction struct {
	Title      string
	OwnerLogin string
}

// Kind reports ActionKindBoard.
func (action CreateBoardAction) Kind() ActionKind {
	return ActionKindBoard
}

// Describe names the board and its owner.
func (action CreateBoardAction) Describe() string {
	return fmt.Sprintf(boardDescriptionTemplateConstant, action.Title, action.OwnerLogin)
}

// Execute creates the board, records it in state, and links it to the repository.
func (action CreateBoardAction) Execute(executionContext context.Context, state *ExecutionState) error {
	ownerID, ownerError := state.Boards.OwnerID(executionContext, action.OwnerLogin)
	if ownerError != nil {
		return fmt.Errorf(ownerLookupErrorTemplateConstant, action.OwnerLogin, ownerError)
	}
	board, createError := state.Boards.CreateBoard(executionContext, ownerID, action.Title)
	if createError != nil {
		return fmt.Errorf(createBoardErrorTemplateConstant, action.Title, createError)
	}
	state.Board = board
	return linkBoard(executionContext, state, board.ID, action.Title)
}

// LinkBoardAction links an existing board to the repository being bootstrapped.
type LinkBoardAction struct {
	BoardID         string
	Title           string
	RepositoryOwner string
	RepositoryName  string
}

// Kind reports ActionKindLink.
func (action LinkBoardAction) Kind() ActionKind {
	return ActionKindLink
}

// Describe names the board and the repository it is linked to.
func (action LinkBoardAction) Describe() string {
	return fmt.Sprintf(linkDescriptionTemplateConstant, action.Title, action.RepositoryOwner, action.RepositoryName)
}

// Execute links the board.
func (action LinkBoardAction) Execute(executionContext context.Context, state *ExecutionState) error {
	return linkBoard(executionContext, state, action.BoardID, action.Title)
}

func linkBoard(executionContext context.Context, state *ExecutionState, boardID string, title string) error {
	repositoryID, repositoryError := state.Boards.RepositoryID(executionContext, state.RepositoryOwner, state.RepositoryName)
	if repositoryError != nil {
		return fmt.Errorf(repositoryIDErrorTemplateConstant, state.RepositoryOwner, state.RepositoryName, repositoryError)
	}
	if linkError := state.Boards.LinkRepository(executionContext, boardID, repositoryID); linkError != nil {
		return fmt.Errorf(linkBoardErrorTemplateConstant, title, state.RepositoryOwner, state.RepositoryName, linkError)
	}
	return nil
}

// EnsureFieldAction creates a single-select field or adds its missing options.
// An empty BoardID targets the board created earlier in the run.
type EnsureFieldAction struct {
	BoardID string
	Name    string
	Options []string
}

// Kind reports ActionKindField.
func (action EnsureFieldAction) Kind() ActionKind {
	return ActionKindField
}

// Describe names the field and its desired options.
func (action EnsureFieldAction) Describe() string {
	return fmt.Sprintf(fieldDescriptionTemplateConstant, action.Name, strings.Join(action.Options, fieldOptionSeparatorConstant))
}

// Execute re-reads the field so that options GitHub added to a new board are kept.
func (action EnsureFieldAction) Execute(executionContext context.Context, state *ExecutionState) error {
	boardID := action.BoardID
	if len(boardID) == 0 {
		boardID = state.Board.ID
	}
	if len(boardID) == 0 {
		return ErrBoardNotResolved
	}

	field, locateError := state.Boards.LocateField(executionContext, boardID, action.Name)
	if errors.Is(locateError, projects.ErrFieldNotFound) {
		if _, createError := state.Boards.CreateSingleSelectField(executionContext, boardID, action.Name, action.Options); createError != nil {
			return fmt.Errorf(createFieldErrorTemplateConstant, action.Name, createError)
		}
		return nil
	}
	if locateError != nil {
		return fmt.Errorf(locateFieldErrorTemplateConstant, action.Name, locateError)
	}

	singleSelectField, isSingleSelect := field.(projects.SingleSelectField)
	if !isSingleSelect {
		return projects.FieldNotSingleSelectError{FieldName: action.Name}
	}
	missingOptions := singleSelectField.MissingOptions(action.Options)
	if len(missingOptions) == 0 {
		return nil
	}
	if updateError := state.Boards.AddFieldOptions(executionContext, singleSelectField, missingOptions); updateError != nil {
		return fmt.Errorf(updateFieldErrorTemplateConstant, action.Name, updateError)
	}
	return nil
}
