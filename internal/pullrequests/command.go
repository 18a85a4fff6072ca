package pullrequests

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/ghflow/internal/githubapi"
)

const (
	createCommandUseConstant                = "create-pr"
	createCommandShortDescriptionConstant   = "Push the current branch and open a pull request"
	createCommandLongDescriptionConstant    = "create-pr pushes the current branch and opens a pull request against the default branch. The title defaults to the last commit subject and the body to .github/PULL_REQUEST_TEMPLATE.md; a closing reference to the issue named by the branch is appended. The pull request moves to Ready and the issue to Review."
	reviewCommandUseConstant                = "review-pr"
	reviewCommandShortDescriptionConstant   = "Approve, comment on, or request changes to a pull request"
	mergeCommandUseConstant                 = "merge-pr"
	mergeCommandShortDescriptionConstant    = "Merge a pull request and move it to Done"
	mergeCommandLongDescriptionConstant     = "merge-pr merges a pull request, moves it and every issue it closes to Done, switches back to the base branch, and offers to delete the head branch."
	listCommandUseConstant                  = "list-prs"
	listCommandShortDescriptionConstant     = "List repository pull requests"
	createErrorTemplateConstant             = "create-pr failed: %w"
	reviewErrorTemplateConstant             = "review-pr failed: %w"
	mergeErrorCommandTemplateConstant       = "merge-pr failed: %w"
	listErrorTemplateConstant               = "list-prs failed: %w"
	dependenciesErrorTemplateConstant       = "unable to prepare pull request workflow: %w"
	unexpectedArgumentsMessageConstant      = "command does not accept positional arguments"
	missingDependenciesMessageConstant      = "pull request dependencies provider not configured"
	invalidStateTemplateConstant            = "unsupported pull request state %q"
	flagTitleNameConstant                   = "title"
	flagTitleDescriptionConstant            = "Pull request title"
	flagBodyNameConstant                    = "body"
	flagBodyDescriptionConstant             = "Pull request description"
	flagBaseNameConstant                    = "base"
	flagBaseDescriptionConstant             = "Base branch (defaults to the repository default branch)"
	flagDraftNameConstant                   = "draft"
	flagDraftDescriptionConstant            = "Open the pull request as a draft"
	flagNumberNameConstant                  = "number"
	flagNumberDescriptionConstant           = "Pull request number"
	flagEventNameConstant                   = "event"
	flagEventDescriptionConstant            = "Review event: approve, request-changes or comment"
	flagReviewBodyDescriptionConstant       = "Review comment"
	flagMethodNameConstant                  = "method"
	flagMethodDescriptionConstant           = "Merge method: squash, merge or rebase"
	flagYesNameConstant                     = "yes"
	flagYesDescriptionConstant              = "Skip confirmation prompts and delete the head branch"
	flagSkipConfirmationDescriptionConstant = "Skip confirmation prompts"
	flagStateNameConstant                   = "state"
	flagStateDescriptionConstant            = "Pull request state: open, closed, merged or all"
	flagLimitNameConstant                   = "limit"
	flagLimitDescriptionConstant            = "Maximum number of pull requests to list"
)

var (
	errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)
	errMissingDependencies = errors.New(missingDependenciesMessageConstant)
	supportedListingStates = []githubapi.IssueState{
		githubapi.IssueStateOpen,
		githubapi.IssueStateClosed,
		githubapi.IssueState(githubapi.PullRequestStateMerged),
		githubapi.IssueStateAll,
	}
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CreateCommandBuilder assembles the create-pr command.
type CreateCommandBuilder struct {
	LoggerProvider       LoggerProvider
	DependenciesProvider DependenciesProvider
}

// Build constructs the create-pr command.
func (builder *CreateCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   createCommandUseConstant,
		Short: createCommandShortDescriptionConstant,
		Long:  createCommandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().String(flagTitleNameConstant, "", flagTitleDescriptionConstant)
	command.Flags().String(flagBodyNameConstant, "", flagBodyDescriptionConstant)
	command.Flags().String(flagBaseNameConstant, "", flagBaseDescriptionConstant)
	command.Flags().Bool(flagDraftNameConstant, false, flagDraftDescriptionConstant)
	command.Flags().Bool(flagYesNameConstant, false, flagSkipConfirmationDescriptionConstant)

	return command, nil
}

func (builder *CreateCommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	titleValue, _ := command.Flags().GetString(flagTitleNameConstant)
	bodyValue, _ := command.Flags().GetString(flagBodyNameConstant)
	baseValue, _ := command.Flags().GetString(flagBaseNameConstant)
	draftValue, _ := command.Flags().GetBool(flagDraftNameConstant)
	yesValue, _ := command.Flags().GetBool(flagYesNameConstant)

	service, serviceError := newCommandService(command, builder.DependenciesProvider, builder.LoggerProvider)
	if serviceError != nil {
		return serviceError
	}

	if _, createError := service.Create(command.Context(), CreateOptions{Title: titleValue, Body: bodyValue, Base: baseValue, Draft: draftValue, SkipConfirmation: yesValue}); createError != nil {
		return fmt.Errorf(createErrorTemplateConstant, createError)
	}
	return nil
}

// ReviewCommandBuilder assembles the review-pr command.
type ReviewCommandBuilder struct {
	LoggerProvider       LoggerProvider
	DependenciesProvider DependenciesProvider
}

// Build constructs the review-pr command.
func (builder *ReviewCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   reviewCommandUseConstant,
		Short: reviewCommandShortDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().Int(flagNumberNameConstant, 0, flagNumberDescriptionConstant)
	command.Flags().String(flagEventNameConstant, "", flagEventDescriptionConstant)
	command.Flags().String(flagBodyNameConstant, "", flagReviewBodyDescriptionConstant)
	command.Flags().Bool(flagYesNameConstant, false, flagSkipConfirmationDescriptionConstant)

	return command, nil
}

func (builder *ReviewCommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	numberValue, _ := command.Flags().GetInt(flagNumberNameConstant)
	eventValue, _ := command.Flags().GetString(flagEventNameConstant)
	bodyValue, _ := command.Flags().GetString(flagBodyNameConstant)
	yesValue, _ := command.Flags().GetBool(flagYesNameConstant)

	if len(strings.TrimSpace(eventValue)) > 0 {
		if _, eventError := ParseReviewEvent(eventValue); eventError != nil {
			return eventError
		}
	}

	service, serviceError := newCommandService(command, builder.DependenciesProvider, builder.LoggerProvider)
	if serviceError != nil {
		return serviceError
	}

	if reviewError := service.Review(command.Context(), ReviewOptions{Number: numberValue, Event: eventValue, Body: bodyValue, SkipConfirmation: yesValue}); reviewError != nil {
		return fmt.Errorf(reviewErrorTemplateConstant, reviewError)
	}
	return nil
}

// MergeCommandBuilder assembles the merge-pr command.
type MergeCommandBuilder struct {
	LoggerProvider       LoggerProvider
	DependenciesProvider DependenciesProvider
}

// Build constructs the merge-pr command.
func (builder *MergeCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   mergeCommandUseConstant,
		Short: mergeCommandShortDescriptionConstant,
		Long:  mergeCommandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().Int(flagNumberNameConstant, 0, flagNumberDescriptionConstant)
	command.Flags().String(flagMethodNameConstant, "", flagMethodDescriptionConstant)
	command.Flags().Bool(flagYesNameConstant, false, flagYesDescriptionConstant)

	return command, nil
}

func (builder *MergeCommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	numberValue, _ := command.Flags().GetInt(flagNumberNameConstant)
	methodValue, _ := command.Flags().GetString(flagMethodNameConstant)
	yesValue, _ := command.Flags().GetBool(flagYesNameConstant)

	if len(strings.TrimSpace(methodValue)) > 0 {
		if _, methodError := ParseMergeMethod(methodValue); methodError != nil {
			return methodError
		}
	}

	service, serviceError := newCommandService(command, builder.DependenciesProvider, builder.LoggerProvider)
	if serviceError != nil {
		return serviceError
	}

	if mergeError := service.Merge(command.Context(), MergeOptions{Number: numberValue, Method: methodValue, SkipConfirmation: yesValue}); mergeError != nil {
		return fmt.Errorf(mergeErrorCommandTemplateConstant, mergeError)
	}
	return nil
}

// ListCommandBuilder assembles the list-prs command.
type ListCommandBuilder struct {
	LoggerProvider       LoggerProvider
	DependenciesProvider DependenciesProvider
}

// Build constructs the list-prs command.
func (builder *ListCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   listCommandUseConstant,
		Short: listCommandShortDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().String(flagStateNameConstant, string(githubapi.IssueStateOpen), flagStateDescriptionConstant)
	command.Flags().Int(flagLimitNameConstant, defaultListLimitConstant, flagLimitDescriptionConstant)

	return command, nil
}

func (builder *ListCommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	stateValue, _ := command.Flags().GetString(flagStateNameConstant)
	limitValue, _ := command.Flags().GetInt(flagLimitNameConstant)

	state, stateError := parseListingState(stateValue)
	if stateError != nil {
		return stateError
	}

	service, serviceError := newCommandService(command, builder.DependenciesProvider, builder.LoggerProvider)
	if serviceError != nil {
		return serviceError
	}

	if _, listError := service.List(command.Context(), ListOptions{State: state, Limit: limitValue}); listError != nil {
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
