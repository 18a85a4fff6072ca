package projects

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/ghflow/internal/config"
)

const (
	boardMissingTemplateConstant          = "Project '%s' not found. Run `ghflow bootstrap` to create it.\n"
	boardLookupFailedTemplateConstant     = "Failed to look up project '%s': %v\n"
	boardClosedTemplateConstant           = "Project '%s': This project appears to be closed.\n"
	itemLookupFailedTemplateConstant      = "Failed to look up project item: %v\n"
	itemAddFailedTemplateConstant         = "Failed to add item to project: %v\n"
	itemAddedTemplateConstant             = "Added item to project '%s'\n"
	cascadeSkippedLogMessageConstant      = "project status cascade skipped"
	cascadeFailedLogMessageConstant       = "project status cascade failed"
	logFieldContentIDConstant             = "content_id"
	logFieldBoardTitleConstant            = "project_title"
	logFieldOwnerConstant                 = "owner"
	reasonProjectsDisabledConstant        = "projects_disabled"
	reasonBoardMissingConstant            = "board_missing"
	reasonBoardLookupFailedConstant       = "board_lookup_failed"
	reasonItemLookupFailedConstant        = "item_lookup_failed"
	reasonItemAddFailedConstant           = "item_add_failed"
	reasonContentMissingConstant          = "content_missing"
	emptyContentIdentifierMessageConstant = "content node identifier is empty"
)

var errEmptyContentIdentifier = errors.New(emptyContentIdentifierMessageConstant)

// StatusCascade moves issues and pull requests across the configured board as workflow commands run.
// Every failure is reported on the console and in the log, never returned.
type StatusCascade struct {
	synchronizer   *Synchronizer
	configuration  config.ProjectsConfiguration
	ownerLogin     string
	repositoryName string
	output         io.Writer
	logger         *zap.Logger
}

// NewStatusCascade builds a cascade for a repository. The board owner defaults to the repository owner.
func NewStatusCascade(synchronizer *Synchronizer, configuration config.ProjectsConfiguration, repositoryOwner string, repositoryName string, output io.Writer, logger *zap.Logger) *StatusCascade {
	if output == nil {
		output = io.Discard
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ownerLogin := strings.TrimSpace(configuration.Owner)
	if len(ownerLogin) == 0 {
		ownerLogin = strings.TrimSpace(repositoryOwner)
	}
	return &StatusCascade{
		synchronizer:   synchronizer,
		configuration:  configuration,
		ownerLogin:     ownerLogin,
		repositoryName: repositoryName,
		output:         output,
		logger:         logger,
	}
}

// Enabled reports whether board synchronization is configured.
func (cascade *StatusCascade) Enabled() bool {
	return cascade != nil && cascade.synchronizer != nil && cascade.configuration.Enabled
}

// BoardTitle returns the title of the board the cascade targets.
func (cascade *StatusCascade) BoardTitle() string {
	return cascade.configuration.ProjectTitle(cascade.repositoryName)
}

// OwnerLogin returns the login owning the board.
func (cascade *StatusCascade) OwnerLogin() string {
	return cascade.ownerLogin
}

// Apply places the content on the board, adding it when absent, and sets its Status.
func (cascade *StatusCascade) Apply(executionContext context.Context, contentID string, statusName string) bool {
	if !cascade.Enabled() {
		if cascade != nil {
			cascade.logSkip(contentID, statusName, reasonProjectsDisabledConstant)
		}
		return false
	}
	if len(strings.TrimSpace(contentID)) == 0 {
		cascade.logFailure(contentID, statusName, reasonContentMissingConstant, errEmptyContentIdentifier)
		return false
	}

	board, found, boardError := cascade.ResolveBoard(executionContext)
	if boardError != nil {
		return false
	}
	if !found {
		return false
	}

	itemID, itemFound, lookupError := cascade.synchronizer.FindItemByContent(executionContext, board.ID, contentID)
	if lookupError != nil {
		fmt.Fprintf(cascade.output, itemLookupFailedTemplateConstant, lookupError)
		cascade.logFailure(contentID, statusName, reasonItemLookupFailedConstant, lookupError)
		return false
	}
	if !itemFound {
		addedItemID, addError := cascade.synchronizer.AddItem(executionContext, board.ID, contentID)
		if addError != nil {
			fmt.Fprintf(cascade.output, itemAddFailedTemplateConstant, addError)
			cascade.logFailure(contentID, statusName, reasonItemAddFailedConstant, addError)
			return false
		}
		fmt.Fprintf(cascade.output, itemAddedTemplateConstant, board.Title)
		itemID = addedItemID
	}

	return cascade.synchronizer.SetItemStatus(executionContext, board.ID, itemID, statusName)
}

// ResolveBoard finds the configured board, printing a hint when it does not exist yet
// and a notice when it is closed.
func (cascade *StatusCascade) ResolveBoard(executionContext context.Context) (Board, bool, error) {
	boardTitle := cascade.BoardTitle()
	board, found, lookupError := cascade.synchronizer.FindBoard(executionContext, cascade.ownerLogin, boardTitle)
	if lookupError != nil {
		fmt.Fprintf(cascade.output, boardLookupFailedTemplateConstant, boardTitle, lookupError)
		cascade.logFailure("", "", reasonBoardLookupFailedConstant, lookupError)
		return Board{}, false, lookupError
	}
	if !found {
		fmt.Fprintf(cascade.output, boardMissingTemplateConstant, boardTitle)
		cascade.logSkip("", "", reasonBoardMissingConstant)
		return Board{}, false, nil
	}
	if board.Closed {
		fmt.Fprintf(cascade.output, boardClosedTemplateConstant, boardTitle)
	}
	return board, true, nil
}

func (cascade *StatusCascade) logSkip(contentID string, statusName string, reason string) {
	cascade.logger.Debug(
		cascadeSkippedLogMessageConstant,
		zap.String(logFieldContentIDConstant, contentID),
		zap.String(logFieldStatusConstant, statusName),
		zap.String(logFieldReasonConstant, reason),
	)
}

func (cascade *StatusCascade) logFailure(contentID string, statusName string, reason string, failure error) {
	cascade.logger.Warn(
		cascadeFailedLogMessageConstant,
		zap.String(logFieldContentIDConstant, contentID),
		zap.String(logFieldStatusConstant, statusName),
		zap.String(logFieldOwnerConstant, cascade.ownerLogin),
		zap.String(logFieldBoardTitleConstant, cascade.BoardTitle()),
		zap.String(logFieldReasonConstant, reason),
		zap.Error(failure),
	)
}
