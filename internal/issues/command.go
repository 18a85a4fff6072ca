package issues

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/ghflow/internal/githubapi"
)

const (
	createCommandUseConstant              = "create-issue"
	createCommandShortDescriptionConstant = "Open a new issue and place it in the project backlog"
	createCommandLongDescriptionConstant  = "create-issue opens a GitHub issue. Without --title it prompts for the title, type and description. The new issue is added to the project board in the Backlog column."
	closeCommandUseConstant               = "close-issue"
	closeCommandShortDescriptionConstant  = "Close an issue and move it to Done"
	closeCommandLongDescriptionConstant   = "close-issue closes a GitHub issue, optionally with a comment. Without --number it offers the open issues to choose from."
	listCommandUseConstant                = "list-issues"
	listCommandShortDescriptionConstant   = "List repository issues"
	createErrorTemplateConstant           = "create-issue failed: %w"
	closeErrorTemplateConstant            = "close-issue failed: %w"
	listErrorTemplateConstant             = "list-issues failed: %w"
	dependenciesErrorTemplateConstant     = "unable to prepare issue workflow: %w"
	unexpectedArgumentsMessageConstant    = "command does not accept positional arguments"
	missingDependenciesMessageConstant    = "issue dependencies provider not configured"
	invalidStateTemplateConstant          = "unsupported issue state %q"
	flagTitleNameConstant                 = "title"
	flagTitleDescriptionConstant          = "Issue title"
	flagBodyNameConstant                  = "body"
	flagBodyDescriptionConstant           = "Issue description"
	flagTypeNameConstant                  = "type"
	flagTypeDescriptionConstant           = "Issue type such as feature or bug"
	flagLabelNameConstant                 = "label"
	flagLabelDescriptionConstant          = "Label to apply (repeatable)"
	flagAssigneeNameConstant              = "assignee"
	flagAssigneeDescriptionConstant       = "Login to assign (repeatable)"
	flagNumberNameConstant                = "number"
	flagNumberDescriptionConstant         = "Issue number"
	flagCommentNameConstant               = "comment"
	flagCommentDescriptionConstant        = "Comment to leave before closing"
	flagYesNameConstant                   = "yes"
	flagYesDescriptionConstant            = "Skip the confirmation prompt"
	flagStateNameConstant                 = "state"
	flagStateDescriptionConstant          = "Issue state: open, closed or all"
	flagLabelFilterDescriptionConstant    = "Only list issues carrying this label (repeatable)"
	flagLimitNameConstant                 = "limit"
	flagLimitDescriptionConstant          = "Maximum number of issues to list"
)

var (
	errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)
	errMissingDependencies = errors.New(missingDependenciesMessageConstant)
	supportedListingStates = []githubapi.IssueState{githubapi.IssueStateOpen, githubapi.IssueStateClosed, githubapi.IssueStateAll}
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CreateCommandBuilder assembles the create-issue command.
type CreateCommandBuilder struct {
	LoggerProvider       LoggerProvider
	DependenciesProvider DependenciesProvider
}

// Build constructs the create-issue command.
func (builder *CreateCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   createCommandUseConstant,
		Short: createCommandShortDescriptionConstant,
		Long:  createCommandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().String(flagTitleNameConstant, "", flagTitleDescriptionConstant)
	command.Flags().String(flagBodyNameConstant, "", flagBodyDescriptionConstant)
	command.Flags().String(flagTypeNameConstant, "", flagTypeDescriptionConstant)
	command.Flags().StringSlice(flagLabelNameConstant, nil, flagLabelDescriptionConstant)
	command.Flags().StringSlice(flagAssigneeNameConstant, nil, flagAssigneeDescriptionConstant)

	return command, nil
}

func (builder *CreateCommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	titleValue, _ := command.Flags().GetString(flagTitleNameConstant)
	bodyValue, _ := command.Flags().GetString(flagBodyNameConstant)
	typeValue, _ := command.Flags().GetString(flagTypeNameConstant)
	labelValues, _ := command.Flags().GetStringSlice(flagLabelNameConstant)
	assigneeValues, _ := command.Flags().GetStringSlice(flagAssigneeNameConstant)

	service, serviceError := newCommandService(command, builder.DependenciesProvider, builder.LoggerProvider)
	if serviceError != nil {
		return serviceError
	}

	_, createError := service.Create(command.Context(), CreateOptions{
		Title:     titleValue,
		Body:      bodyValue,
		Type:      typeValue,
		Labels:    labelValues,
		Assignees: assigneeValues,
	})
	if createError != nil {
		return fmt.Errorf(createErrorTemplateConstant, createError)
	}
	return nil
}

// CloseCommandBuilder assembles the close-issue command.
type CloseCommandBuilder struct {
	LoggerProvider       LoggerProvider
	DependenciesProvider DependenciesProvider
}

// Build constructs the close-issue command.
func (builder *CloseCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   closeCommandUseConstant,
		Short: closeCommandShortDescriptionConstant,
		Long:  closeCommandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().Int(flagNumberNameConstant, 0, flagNumberDescriptionConstant)
	command.Flags().String(flagCommentNameConstant, "", flagCommentDescriptionConstant)
	command.Flags().Bool(flagYesNameConstant, false, flagYesDescriptionConstant)

	return command, nil
}

func (builder *CloseCommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	numberValue, _ := command.Flags().GetInt(flagNumberNameConstant)
	commentValue, _ := command.Flags().GetString(flagCommentNameConstant)
	yesValue, _ := command.Flags().GetBool(flagYesNameConstant)

	service, serviceError := newCommandService(command, builder.DependenciesProvider, builder.LoggerProvider)
	if serviceError != nil {
		return serviceError
	}

	closeError := service.Close(command.Context(), CloseOptions{Number: numberValue, Comment: commentValue, SkipConfirmation: yesValue})
	if closeError != nil {
		return fmt.Errorf(closeErrorTemplateConstant, closeError)
	}
	return nil
}

// ListCommandBuilder assembles the list-issues command.
type ListCommandBuilder struct {
	LoggerProvider       LoggerProvider
	DependenciesProvider DependenciesProvider
}

// Build constructs the list-issues command.
func (builder *ListCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   listCommandUseConstant,
		Short: listCommandShortDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().String(flagStateNameConstant, string(githubapi.IssueStateOpen), flagStateDescriptionConstant)
	command.Flags().StringSlice(flagLabelNameConstant, nil, flagLabelFilterDescriptionConstant)
	command.Flags().Int(flagLimitNameConstant, defaultListLimitConstant, flagLimitDescriptionConstant)

	return command, nil
}

func (builder *ListCommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	stateValue, _ := command.Flags().GetString(flagStateNameConstant)
	labelValues, _ := command.Flags().GetStringSlice(flagLabelNameConstant)
	limitValue, _ := command.Flags().GetInt(flagLimitNameConstant)

	state, stateError := parseListingState(stateValue)
	if stateError != nil {
		return stateError
	}

	service, serviceError := newCommandService(command, builder.DependenciesProvider, builder.LoggerProvider)
	if serviceError != nil {
		return serviceError
	}

	if _, listError := service.List(command.Context(), ListOptions{State: state, Labels: labelValues, Limit: limitValue}); listError != nil {
		return fmt.Errorf(listErrorTemplateConstant, listError)
	}
	return nil
}

func parseListingState(value string) (githubapi.IssueState, error) {
	normalizedValue := githubapi.IssueState(strings.ToLower(strings.TrimSpace(value)))
	if len(normalizedValue) == 0 {
		return githubapi.IssueStateOpen, nil
	}
	for _, supportedState := range supportedListingStates {
		if normalizedValue == supportedState {
			return supportedState, nil
		}
	}
	return "", fmt.Errorf(invalidStateTemplateConstant, value)
}

func newCommandService(command *cobra.Command, provider DependenciesProvider, loggerProvider LoggerProvider) (*Service, error) {
	if provider == nil {
		return nil, errMissingDependencies
	}

	dependencies, dependenciesError := provider(command.Context())
	if dependenciesError != nil {
		return nil, fmt.Errorf(dependenciesErrorTemplateConstant, dependenciesError)
	}
	if dependencies.Logger == nil {
		dependencies.Logger = resolveLogger(loggerProvider)
	}

	return NewService(dependencies, command.OutOrStdout())
}

func resolveLogger(loggerProvider LoggerProvider) *zap.Logger {
	if loggerProvider == nil {
		return zap.NewNop()
	}

	logger := loggerProvider()
	if logger == nil {
		return zap.NewNop()
	}

	return logger
}
