package branches

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	commandUseConstant                    = "create-branch"
	commandShortDescriptionConstant       = "Create a branch for an issue and mark it In Progress"
	commandLongDescriptionConstant        = "create-branch checks out a new branch named <type>/<issue>-<slug> for an issue. Without --issue it offers the open issues to choose from."
	commandExecutionErrorTemplateConstant = "create-branch failed: %w"
	dependenciesErrorTemplateConstant     = "unable to prepare branch workflow: %w"
	unexpectedArgumentsMessageConstant    = "create-branch does not accept positional arguments"
	missingDependenciesMessageConstant    = "branch dependencies provider not configured"
	flagIssueNameConstant                 = "issue"
	flagIssueDescriptionConstant          = "Issue number to work on"
	flagTypeNameConstant                  = "type"
	flagTypeDescriptionConstant           = "Branch type such as feat or fix"
	flagPushNameConstant                  = "push"
	flagPushDescriptionConstant           = "Push the new branch and set its upstream"
	flagYesNameConstant                   = "yes"
	flagYesDescriptionConstant            = "Skip the confirmation prompt"
)

var (
	errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)
	errMissingDependencies = errors.New(missingDependenciesMessageConstant)
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the create-branch command.
type CommandBuilder struct {
	LoggerProvider       LoggerProvider
	DependenciesProvider DependenciesProvider
}

// Build constructs the create-branch command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().Int(flagIssueNameConstant, 0, flagIssueDescriptionConstant)
	command.Flags().String(flagTypeNameConstant, "", flagTypeDescriptionConstant)
	command.Flags().Bool(flagPushNameConstant, false, flagPushDescriptionConstant)
	command.Flags().Bool(flagYesNameConstant, false, flagYesDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	options := builder.parseOptions(command)

	if builder.DependenciesProvider == nil {
		return errMissingDependencies
	}
	dependencies, dependenciesError := builder.DependenciesProvider(command.Context())
	if dependenciesError != nil {
		return fmt.Errorf(dependenciesErrorTemplateConstant, dependenciesError)
	}
	if dependencies.Logger == nil {
		dependencies.Logger = builder.resolveLogger()
	}

	service, serviceError := NewService(dependencies, command.OutOrStdout())
	if serviceError != nil {
		return serviceError
	}

	if _, _, startError := service.Start(command.Context(), options); startError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, startError)
	}
	return nil
}

func (builder *CommandBuilder) parseOptions(command *cobra.Command) StartOptions {
	issueValue, _ := command.Flags().GetInt(flagIssueNameConstant)
	typeValue, _ := command.Flags().GetString(flagTypeNameConstant)
	pushValue, _ := command.Flags().GetBool(flagPushNameConstant)
	yesValue, _ := command.Flags().GetBool(flagYesNameConstant)

	return StartOptions{IssueNumber: issueValue, BranchType: typeValue, Push: pushValue, SkipConfirmation: yesValue}
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}

	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}

	return logger
}
