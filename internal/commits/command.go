package commits

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	commitCommandUseConstant              = "commit"
	commitCommandShortDescriptionConstant = "Commit staged changes with a conventional message"
	commitCommandLongDescriptionConstant  = "commit formats a message from commit_assistant.commit_format, reading the issue number from the current branch. Without --subject it prompts for each part. --check and --check-message run the hook validations instead of committing."
	hooksCommandUseConstant               = "install-hooks"
	hooksCommandShortDescriptionConstant  = "Install the pre-commit and commit-msg hooks"
	commitCommandErrorTemplateConstant    = "commit failed: %w"
	checkErrorTemplateConstant            = "commit check failed: %w"
	hooksErrorTemplateConstant            = "install-hooks failed: %w"
	dependenciesErrorTemplateConstant     = "unable to prepare commit workflow: %w"
	unexpectedArgumentsMessageConstant    = "command does not accept positional arguments"
	missingDependenciesMessageConstant    = "commit dependencies provider not configured"
	flagTypeNameConstant                  = "type"
	flagTypeDescriptionConstant           = "Commit type such as feat or fix"
	flagScopeNameConstant                 = "scope"
	flagScopeDescriptionConstant          = "Commit scope"
	flagSubjectNameConstant               = "subject"
	flagSubjectDescriptionConstant        = "Commit subject"
	flagIssueNameConstant                 = "issue"
	flagIssueDescriptionConstant          = "Issue number (defaults to the number in the branch name)"
	flagAllNameConstant                   = "all"
	flagAllDescriptionConstant            = "Stage all changes before committing"
	flagPushNameConstant                  = "push"
	flagPushDescriptionConstant           = "Push the current branch after committing"
	flagYesNameConstant                   = "yes"
	flagYesDescriptionConstant            = "Skip confirmation prompts"
	flagCheckNameConstant                 = "check"
	flagCheckDescriptionConstant          = "Verify the current branch references an issue"
	flagCheckMessageNameConstant          = "check-message"
	flagCheckMessageDescriptionConstant   = "Validate the commit message stored in FILE"
	flagForceNameConstant                 = "force"
	flagForceDescriptionConstant          = "Overwrite hooks that were not installed by ghflow"
)

var (
	errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)
	errMissingDependencies = errors.New(missingDependenciesMessageConstant)
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommitCommandBuilder assembles the commit command.
type CommitCommandBuilder struct {
	LoggerProvider       LoggerProvider
	DependenciesProvider DependenciesProvider
}

// Build constructs the commit command.
func (builder *CommitCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commitCommandUseConstant,
		Short: commitCommandShortDescriptionConstant,
		Long:  commitCommandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().String(flagTypeNameConstant, "", flagTypeDescriptionConstant)
	command.Flags().String(flagScopeNameConstant, "", flagScopeDescriptionConstant)
	command.Flags().String(flagSubjectNameConstant, "", flagSubjectDescriptionConstant)
	command.Flags().String(flagIssueNameConstant, "", flagIssueDescriptionConstant)
	command.Flags().Bool(flagAllNameConstant, false, flagAllDescriptionConstant)
	command.Flags().Bool(flagPushNameConstant, false, flagPushDescriptionConstant)
	command.Flags().Bool(flagYesNameConstant, false, flagYesDescriptionConstant)
	command.Flags().Bool(flagCheckNameConstant, false, flagCheckDescriptionConstant)
	command.Flags().String(flagCheckMessageNameConstant, "", flagCheckMessageDescriptionConstant)

	return command, nil
}

func (builder *CommitCommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	service, serviceError := newCommandService(command, builder.DependenciesProvider, builder.LoggerProvider)
	if serviceError != nil {
		return serviceError
	}

	checkValue, _ := command.Flags().GetBool(flagCheckNameConstant)
	checkMessageValue, _ := command.Flags().GetString(flagCheckMessageNameConstant)
	if checkValue || len(strings.TrimSpace(checkMessageValue)) > 0 {
		if checkValue {
			if checkError := service.CheckBranch(command.Context()); checkError != nil {
				return fmt.Errorf(checkErrorTemplateConstant, checkError)
			}
		}
		if len(strings.TrimSpace(checkMessageValue)) > 0 {
			if checkError := service.CheckMessageFile(strings.TrimSpace(checkMessageValue)); checkError != nil {
				return fmt.Errorf(checkErrorTemplateConstant, checkError)
			}
		}
		return nil
	}

	_, commitError := service.Commit(command.Context(), builder.parseOptions(command))
	if commitError != nil {
		return fmt.Errorf(commitCommandErrorTemplateConstant, commitError)
	}
	return nil
}

func (builder *CommitCommandBuilder) parseOptions(command *cobra.Command) CommitOptions {
	typeValue, _ := command.Flags().GetString(flagTypeNameConstant)
	scopeValue, _ := command.Flags().GetString(flagScopeNameConstant)
	subjectValue, _ := command.Flags().GetString(flagSubjectNameConstant)
	issueValue, _ := command.Flags().GetString(flagIssueNameConstant)
	allValue, _ := command.Flags().GetBool(flagAllNameConstant)
	pushValue, _ := command.Flags().GetBool(flagPushNameConstant)
	yesValue, _ := command.Flags().GetBool(flagYesNameConstant)

	return CommitOptions{
		Type:             typeValue,
		Scope:            scopeValue,
		Subject:          subjectValue,
		Issue:            issueValue,
		StageAll:         allValue,
		Push:             pushValue,
		SkipConfirmation: yesValue,
	}
}

// HooksCommandBuilder assembles the install-hooks command.
type HooksCommandBuilder struct {
	LoggerProvider       LoggerProvider
	DependenciesProvider DependenciesProvider
}

// Build constructs the install-hooks command.
func (builder *HooksCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   hooksCommandUseConstant,
		Short: hooksCommandShortDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().Bool(flagForceNameConstant, false, flagForceDescriptionConstant)

	return command, nil
}

func (builder *HooksCommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	forceValue, _ := command.Flags().GetBool(flagForceNameConstant)

	service, serviceError := newCommandService(command, builder.DependenciesProvider, builder.LoggerProvider)
	if serviceError != nil {
		return serviceError
	}

	if _, installError := service.InstallHooks(command.Context(), forceValue); installError != nil {
		return fmt.Errorf(hooksErrorTemplateConstant, installError)
	}
	return nil
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
