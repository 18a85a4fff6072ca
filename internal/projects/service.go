package projects

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/ghflow/internal/prompt"
	"github.com/temirov/ghflow/internal/ui"
)

const (
	projectsDisabledMessageConstant    = "Project synchronization is disabled (projects_v2.enabled is false).\n"
	boardEmptyTemplateConstant         = "No items on project '%s'.\n"
	columnTitleTemplateConstant        = "%s (%d)"
	unsetStatusColumnConstant          = "No Status"
	itemSelectionPromptConstant        = "Item to move"
	statusSelectionPromptConstant      = "New status"
	itemSelectionEntryTemplateConstant = "#%d %s [%s]"
	statusUnchangedTemplateConstant    = "#%d is already in '%s'\n"
	itemsEmptyNounConstant             = "items"
	issueKindLabelConstant             = "issue"
	pullRequestKindLabelConstant       = "pull request"
	draftKindLabelConstant             = "draft"
	boardReaderMissingMessageConstant  = "project board reader not configured"
	boardLocatorMissingMessageConstant = "project board locator not configured"
	prompterMissingMessageConstant     = "prompter not configured"
	statusUpdateFailedMessageConstant  = "unable to update project item status"
	itemNotOnBoardTemplateConstant     = "#%d is not on project '%s'"
	unknownStatusTemplateConstant      = "status %q is not an option of project '%s' (options: %s)"
	listItemsErrorTemplateConstant     = "unable to list project items: %w"
	statusFieldErrorTemplateConstant   = "unable to read %s field: %w"
	optionListSeparatorConstant        = ", "
	statusChangedLogMessageConstant    = "project item moved"
	logFieldNumberConstant             = "number"
)

var (
	// ErrBoardReaderNotConfigured indicates the service was constructed without board access.
	ErrBoardReaderNotConfigured = errors.New(boardReaderMissingMessageConstant)
	// ErrBoardLocatorNotConfigured indicates the service was constructed without a board locator.
	ErrBoardLocatorNotConfigured = errors.New(boardLocatorMissingMessageConstant)
	// ErrPrompterNotConfigured indicates an interactive step ran without a prompter.
	ErrPrompterNotConfigured = errors.New(prompterMissingMessageConstant)
	// ErrStatusUpdateFailed indicates the Status mutation did not succeed; the cause has already been printed.
	ErrStatusUpdateFailed = errors.New(statusUpdateFailedMessageConstant)

	boardColumnHeaders = []string{"#", "Title", "Kind", "State"}
)

// BoardReader reads board items and fields and moves items between Status options.
type BoardReader interface {
	ListItems(executionContext context.Context, boardID string) ([]BoardItem, error)
	LocateSingleSelectField(executionContext context.Context, boardID string, fieldName string) (SingleSelectField, error)
	SetItemStatus(executionContext context.Context, boardID string, itemID string, statusName string) bool
}

// BoardLocator finds the board configured for the current repository.
type BoardLocator interface {
	Enabled() bool
	BoardTitle() string
	ResolveBoard(executionContext context.Context) (Board, bool, error)
}

// Dependencies are the collaborators of the board workflows.
type Dependencies struct {
	Board    BoardReader
	Locator  BoardLocator
	Prompter prompt.Prompter
	Logger   *zap.Logger
}

// DependenciesProvider resolves Dependencies when a command runs.
type DependenciesProvider func(executionContext context.Context) (Dependencies, error)

// UpdateOptions select a board item by issue or pull request number and the status to move it to.
// Empty values are chosen interactively.
type UpdateOptions struct {
	Number int
	Status string
}

// Service runs the view-project and update-project workflows.
type Service struct {
	dependencies Dependencies
	output       io.Writer
	logger       *zap.Logger
}

// NewService validates dependencies and constructs a Service writing to output.
func NewService(dependencies Dependencies, output io.Writer) (*Service, error) {
	if dependencies.Board == nil {
		return nil, ErrBoardReaderNotConfigured
	}
	if dependencies.Locator == nil {
		return nil, ErrBoardLocatorNotConfigured
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

// View prints the board items grouped by Status, one table per non-empty option in board order.
// Items without a Status value are listed last.
func (service *Service) View(executionContext context.Context) ([]BoardItem, error) {
	board, statusField, ready, prepareError := service.prepare(executionContext)
	if prepareError != nil || !ready {
		return nil, prepareError
	}

	items, listError := service.dependencies.Board.ListItems(executionContext, board.ID)
	if listError != nil {
		return nil, fmt.Errorf(listItemsErrorTemplateConstant, listError)
	}
	if len(items) == 0 {
		fmt.Fprintf(service.output, boardEmptyTemplateConstant, board.Title)
		return items, nil
	}

	columnNames := append(statusField.OptionNames(), unsetStatusColumnConstant)
	rowsByColumn := make(map[string][][]string, len(columnNames))
	for _, item := range items {
		columnName := unsetStatusColumnConstant
		if optionName, known := canonicalOptionName(statusField, item.Status); known {
			columnName = optionName
		}
		rowsByColumn[columnName] = append(rowsByColumn[columnName], []string{
			strconv.Itoa(item.Number),
			item.Title,
			itemKind(item),
			item.State,
		})
	}

	for _, columnName := range columnNames {
		rows := rowsByColumn[columnName]
		if len(rows) == 0 {
			continue
		}
		ui.WriteTable(service.output, ui.Table{
			Title:   fmt.Sprintf(columnTitleTemplateConstant, columnName, len(rows)),
			Headers: boardColumnHeaders,
			Rows:    rows,
		}, itemsEmptyNounConstant)
	}
	return items, nil
}

// Update moves a board item to another Status option.
func (service *Service) Update(executionContext context.Context, options UpdateOptions) error {
	board, statusField, ready, prepareError := service.prepare(executionContext)
	if prepareError != nil || !ready {
		return prepareError
	}

	items, listError := service.dependencies.Board.ListItems(executionContext, board.ID)
	if listError != nil {
		return fmt.Errorf(listItemsErrorTemplateConstant, listError)
	}

	item, itemFound, itemError := service.resolveItem(board, items, options.Number)
	if itemError != nil || !itemFound {
		return itemError
	}

	statusName, statusError := service.resolveStatus(board, statusField, item, options.Status)
	if statusError != nil {
		return statusError
	}
	if strings.EqualFold(item.Status, statusName) {
		fmt.Fprintf(service.output, statusUnchangedTemplateConstant, item.Number, statusName)
		return nil
	}

	if !service.dependencies.Board.SetItemStatus(executionContext, board.ID, item.ID, statusName) {
		return ErrStatusUpdateFailed
	}
	service.logger.Info(statusChangedLogMessageConstant, zap.Int(logFieldNumberConstant, item.Number), zap.String(logFieldStatusConstant, statusName))
	return nil
}

func (service *Service) prepare(executionContext context.Context) (Board, SingleSelectField, bool, error) {
	locator := service.dependencies.Locator
	if !locator.Enabled() {
		fmt.Fprint(service.output, projectsDisabledMessageConstant)
		return Board{}, SingleSelectField{}, false, nil
	}

	board, found, boardError := locator.ResolveBoard(executionContext)
	if boardError != nil || !found {
		return Board{}, SingleSelectField{}, false, boardError
	}

	statusField, fieldError := service.dependencies.Board.LocateSingleSelectField(executionContext, board.ID, StatusFieldName)
	if fieldError != nil {
		return Board{}, SingleSelectField{}, false, fmt.Errorf(statusFieldErrorTemplateConstant, StatusFieldName, fieldError)
	}
	return board, statusField, true, nil
}

func (service *Service) resolveItem(board Board, items []BoardItem, number int) (BoardItem, bool, error) {
	if number > 0 {
		for _, item := range items {
			if item.Number == number {
				return item, true, nil
			}
		}
		return BoardItem{}, false, fmt.Errorf(itemNotOnBoardTemplateConstant, number, board.Title)
	}

	if len(items) == 0 {
		fmt.Fprintf(service.output, boardEmptyTemplateConstant, board.Title)
		return BoardItem{}, false, nil
	}
	if service.dependencies.Prompter == nil {
		return BoardItem{}, false, ErrPrompterNotConfigured
	}

	entries := make([]string, 0, len(items))
	for _, item := range items {
		itemStatus := item.Status
		if len(itemStatus) == 0 {
			itemStatus = unsetStatusColumnConstant
		}
		entries = append(entries, fmt.Sprintf(itemSelectionEntryTemplateConstant, item.Number, item.Title, itemStatus))
	}
	selectedIndex, selectError := service.dependencies.Prompter.Select(itemSelectionPromptConstant, entries, 0)
	if selectError != nil {
		return BoardItem{}, false, selectError
	}
	return items[selectedIndex], true, nil
}

func (service *Service) resolveStatus(board Board, statusField SingleSelectField, item BoardItem, requestedStatus string) (string, error) {
	optionNames := statusField.OptionNames()
	trimmedStatus := strings.TrimSpace(requestedStatus)
	if len(trimmedStatus) > 0 {
		optionName, known := canonicalOptionName(statusField, trimmedStatus)
		if !known {
			return "", fmt.Errorf(unknownStatusTemplateConstant, trimmedStatus, board.Title, strings.Join(optionNames, optionListSeparatorConstant))
		}
		return optionName, nil
	}

	if service.dependencies.Prompter == nil {
		return "", ErrPrompterNotConfigured
	}
	defaultIndex := 0
	for optionIndex, optionName := range optionNames {
		if strings.EqualFold(optionName, item.Status) {
			defaultIndex = optionIndex
		}
	}
	selectedIndex, selectError := service.dependencies.Prompter.Select(statusSelectionPromptConstant, optionNames, defaultIndex)
	if selectError != nil {
		return "", selectError
	}
	return optionNames[selectedIndex], nil
}

func canonicalOptionName(field SingleSelectField, statusName string) (string, bool) {
	for _, option := range field.Options {
		if strings.EqualFold(option.Name, statusName) {
			return option.Name, true
		}
	}
	return "", false
}

func itemKind(item BoardItem) string {
	switch {
	case item.IsPullRequest():
		return pullRequestKindLabelConstant
	case item.ContentType == draftIssueContentTypeNameConstant:
		return draftKindLabelConstant
	default:
		return issueKindLabelConstant
	}
}
