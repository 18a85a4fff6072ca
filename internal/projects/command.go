package projects

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	viewCommandUseConstant                = "view-project"
	viewCommandShortDescriptionConstant   = "Show the project board grouped by status"
	updateCommandUseConstant              = "update-project"
	updateCommandShortDescriptionConstant = "Move an issue or pull request to another status"
	updateCommandLongDescriptionConstant  = "update-project moves a board item to one of the Status options of the project. Without --number it offers the board items; without --status it offers the board's options."
	viewErrorTemplateConstant             = "view-project failed: %w"
	updateErrorTemplateConstant           = "update-project failed: %w"
	dependenciesErrorTemplateConstant     = "unable to prepare project workflow: %w"
	unexpectedArgumentsMessageConstant    = "command does not accept positional arguments"
	missingDependenciesMessageConstant    = "project dependencies provider not configured"
	flagNumberNameConstant                = "number"
	flagNumberDescriptionConstant         = "Issue or pull request number on the board"
	flagStatusNameConstant                = "status"
	flagStatusDescriptionConstant         = "Status option to move the item to"
)

var (
	errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)
	errMissingDependencies = errors.New(missingDependenciesMessageConstant)
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ViewCommandBuilder assembles the view-project command.
type ViewCommandBuilder struct {
	LoggerProvider       LoggerProvider
	DependenciesProvider DependenciesProvider
}

// Build constructs the view-project command.
func (builder *ViewCommandBuilder) Build() (*cobra.Command, error) {
	return &cobra.Command{
		Use:   viewCommandUseConstant,
		Short: viewCommandShortDescriptionConstant,
		RunE:  builder.run,
	}, nil
}

func (builder *ViewCommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	service, serviceError := newCommandService(command, builder.DependenciesProvider, builder.LoggerProvider)
	if serviceError != nil {
		return serviceError
	}

	if _, viewError := service.View(command.Context()); viewError != nil {
		return fmt.Errorf(viewErrorTemplateConstant, viewError)
	}
	return nil
}

// UpdateCommandBuilder assembles the update-project command.
type UpdateCommandBuilder struct {
	LoggerProvider       LoggerProvider
	DependenciesProvider DependenciesProvider
}

// Build constructs the update-project command.
func (builder *UpdateCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   updateCommandUseConstant,
		Short: updateCommandShortDescriptionConstant,
		Long:  updateCommandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().Int(flagNumberNameConstant, 0, flagNumberDescriptionConstant)
	command.Flags().String(flagStatusNameConstant, "", flagStatusDescriptionConstant)

	return command, nil
}

func (builder *UpdateCommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	numberValue, _ := command.Flags().GetInt(flagNumberNameConstant)
	statusValue, _ := command.Flags().GetString(flagStatusNameConstant)

	service, serviceError := newCommandService(command, builder.DependenciesProvider, builder.LoggerProvider)
	if serviceError != nil {
		return serviceError
	}

	if updateError := service.Update(command.Context(), UpdateOptions{Number: numberValue, Status: statusValue}); updateError != nil {
		return fmt.Errorf(updateErrorTemplateConstant, updateError)
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
