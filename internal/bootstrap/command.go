package bootstrap

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/ghflow/internal/githubcli"
)

const (
	commandUseConstant                    = "bootstrap"
	commandShortDescriptionConstant       = "Create missing labels, templates, and the project board"
	commandLongDescriptionConstant        = "bootstrap compares the configuration with the GitHub repository and creates whatever is missing. Existing labels, files, and fields are never modified. With --init it first runs git init and gh repo create when the directory has no remote."
	bootstrapErrorTemplateConstant        = "bootstrap failed: %w"
	initErrorTemplateConstant             = "repository initialization failed: %w"
	dependenciesErrorTemplateConstant     = "unable to prepare bootstrap workflow: %w"
	unexpectedArgumentsMessageConstant    = "command does not accept positional arguments"
	missingDependenciesMessageConstant    = "bootstrap dependencies provider not configured"
	missingInitializerMessageConstant     = "repository initializer provider not configured"
	unsupportedVisibilityTemplateConstant = "unsupported visibility %q (use private, public or internal)"
	flagInitNameConstant                  = "init"
	flagInitDescriptionConstant           = "Initialize git and create the GitHub repository when no remote exists"
	flagYesNameConstant                   = "yes"
	flagYesDescriptionConstant            = "Apply the plan without asking"
	flagDryRunNameConstant                = "dry-run"
	flagDryRunDescriptionConstant         = "Print the plan without applying it"
	flagNameNameConstant                  = "name"
	flagNameDescriptionConstant           = "Repository name used with --init (defaults to the directory name)"
	flagVisibilityNameConstant            = "visibility"
	flagVisibilityDescriptionConstant     = "Repository visibility used with --init: private, public or internal"
)

var (
	errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)
	errMissingDependencies = errors.New(missingDependenciesMessageConstant)
	errMissingInitializer  = errors.New(missingInitializerMessageConstant)
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the bootstrap command.
type CommandBuilder struct {
	LoggerProvider       LoggerProvider
	InitializerProvider  InitializerProvider
	DependenciesProvider DependenciesProvider
}

// Build constructs the bootstrap command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().Bool(flagInitNameConstant, false, flagInitDescriptionConstant)
	command.Flags().Bool(flagYesNameConstant, false, flagYesDescriptionConstant)
	command.Flags().Bool(flagDryRunNameConstant, false, flagDryRunDescriptionConstant)
	command.Flags().String(flagNameNameConstant, "", flagNameDescriptionConstant)
	command.Flags().String(flagVisibilityNameConstant, "", flagVisibilityDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	initValue, _ := command.Flags().GetBool(flagInitNameConstant)
	yesValue, _ := command.Flags().GetBool(flagYesNameConstant)
	dryRunValue, _ := command.Flags().GetBool(flagDryRunNameConstant)
	nameValue, _ := command.Flags().GetString(flagNameNameConstant)
	visibilityValue, _ := command.Flags().GetString(flagVisibilityNameConstant)

	visibility, visibilityError := parseVisibility(visibilityValue)
	if visibilityError != nil {
		return visibilityError
	}
	if builder.DependenciesProvider == nil {
		return errMissingDependencies
	}
	logger := resolveLogger(builder.LoggerProvider)

	if initValue {
		if initError := builder.initialize(command, logger, InitializeOptions{Name: nameValue, Visibility: visibility, SkipConfirmation: yesValue}); initError != nil {
			return fmt.Errorf(initErrorTemplateConstant, initError)
		}
	}

	dependencies, dependenciesError := builder.DependenciesProvider(command.Context())
	if dependenciesError != nil {
		return fmt.Errorf(dependenciesErrorTemplateConstant, dependenciesError)
	}
	if dependencies.Logger == nil {
		dependencies.Logger = logger
	}
	service, serviceError := NewService(dependencies, command.OutOrStdout())
	if serviceError != nil {
		return serviceError
	}

	if _, runError := service.Run(command.Context(), RunOptions{SkipConfirmation: yesValue, DryRun: dryRunValue}); runError != nil {
		return fmt.Errorf(bootstrapErrorTemplateConstant, runError)
	}
	return nil
}

func (builder *CommandBuilder) initialize(command *cobra.Command, logger *zap.Logger, options InitializeOptions) error {
	if builder.InitializerProvider == nil {
		return errMissingInitializer
	}
	dependencies, dependenciesError := builder.InitializerProvider(command.Context())
	if dependenciesError != nil {
		return fmt.Errorf(dependenciesErrorTemplateConstant, dependenciesError)
	}
	if dependencies.Logger == nil {
		dependencies.Logger = logger
	}
	initializer, initializerError := NewInitializer(dependencies, command.OutOrStdout())
	if initializerError != nil {
		return initializerError
	}
	return initializer.Initialize(command.Context(), options)
}

func parseVisibility(value string) (githubcli.RepositoryVisibility, error) {
	if len(value) == 0 {
		return "", nil
	}
	for _, choice := range visibilityChoices {
		if string(choice) == value {
			return choice, nil
		}
	}
	return "", fmt.Errorf(unsupportedVisibilityTemplateConstant, value)
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
