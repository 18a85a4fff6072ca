package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/ghflow/internal/config"
	"github.com/temirov/ghflow/internal/prompt"
	"github.com/temirov/ghflow/internal/utils"
)

const (
	applicationNameConstant                 = "ghflow"
	applicationShortDescriptionConstant     = "Interactive GitHub issue, branch, commit, and pull request workflow"
	applicationLongDescriptionConstant      = "ghflow wraps the GitHub REST and GraphQL APIs to run a team's issue → branch → commit → pull request → review → merge workflow and keeps a Projects v2 board's Status field in step with it. Run it without a command to pick one interactively."
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level (debug, info, warn, error)."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format (structured or console)."
	environmentPrefixConstant               = "GHFLOW"
	configurationNameConstant               = ".ghflow"
	configurationTypeConstant               = "yaml"
	configurationDirectoryNameConstant      = "ghflow"
	defaultConfigurationSearchPathConstant  = "."
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationSourceFieldConstant        = "config_source"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	chooserTitleConstant                    = "ghflow: choose a command"
	chooserSelectionLogMessageConstant      = "command chosen interactively"
	unknownChosenCommandTemplateConstant    = "unknown command %q"
	logFieldCommandNameConstant             = "command_name"
	helpCommandNameConstant                 = "help"
	completionCommandNameConstant           = "completion"
)

// MenuChooser presents the command list when no command is given.
type MenuChooser interface {
	Choose(title string, entries []prompt.MenuEntry) (string, error)
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand            *cobra.Command
	configurationLoader    *utils.ConfigurationLoader
	loggerFactory          *utils.LoggerFactory
	logger                 *zap.Logger
	consoleLogger          *zap.Logger
	configuration          config.Configuration
	configurationMetadata  utils.LoadedConfiguration
	configurationFilePath  string
	logLevelFlagValue      string
	logFormatFlagValue     string
	commandContextAccessor utils.CommandContextAccessor
	workingDirectory       string
	output                 io.Writer
	chooser                MenuChooser
	prompter               prompt.Prompter
	versionResolver        func(context.Context) string
	sessionProvider        *sessionProvider
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		configurationSearchPaths(),
	)
	configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())

	output := utils.NewFlushingWriter(os.Stdout)
	application := &Application{
		configurationLoader:    configurationLoader,
		loggerFactory:          utils.NewLoggerFactory(),
		logger:                 zap.NewNop(),
		consoleLogger:          zap.NewNop(),
		commandContextAccessor: utils.NewCommandContextAccessor(),
		output:                 output,
		chooser:                prompt.NewMenuChooser(os.Stdin, os.Stdout),
		prompter:               prompt.NewConsolePrompter(os.Stdin, output),
		versionResolver:        resolveVersion,
	}
	if workingDirectory, workingDirectoryError := os.Getwd(); workingDirectoryError == nil {
		application.workingDirectory = workingDirectory
	}
	application.sessionProvider = newSessionProvider(application)

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runRootCommand(command, arguments)
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.SetOut(output)
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)

	application.rootCommand = cobraCommand
	application.registerCommands()

	return application
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing.
func (application *Application) Execute() error {
	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil && executionError == nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	var loadedDocument config.Configuration
	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(utils.ExpandHomeDirectory(application.configurationFilePath, os.UserHomeDir), config.DefaultConfigurationValues(), &loadedDocument)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configuration = loadedDocument.Sanitize()
	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}
	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	loggerOutputs, loggerCreationError := application.loggerFactory.CreateLoggerOutputs(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = loggerOutputs.DiagnosticLogger
	application.consoleLogger = loggerOutputs.ConsoleLogger

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationSourceFieldConstant, application.configurationMetadata.Source()),
	)

	if command != nil {
		updatedContext := application.commandContextAccessor.WithConfigurationSource(
			command.Context(),
			application.configurationMetadata.Source(),
		)
		command.SetContext(updatedContext)
		if rootCommand := command.Root(); rootCommand != nil {
			rootCommand.SetContext(updatedContext)
		}
	}

	return nil
}

func (application *Application) humanReadableLoggingEnabled() bool {
	logFormatValue := strings.TrimSpace(application.configuration.Common.LogFormat)
	return strings.EqualFold(logFormatValue, string(utils.LogFormatConsole))
}

// runRootCommand offers the registered commands and runs the chosen one with its flag defaults.
func (application *Application) runRootCommand(command *cobra.Command, arguments []string) error {
	var entries []prompt.MenuEntry
	commandsByName := map[string]*cobra.Command{}
	for _, subcommand := range command.Commands() {
		if !subcommand.IsAvailableCommand() || subcommand.Name() == helpCommandNameConstant || subcommand.Name() == completionCommandNameConstant {
			continue
		}
		entries = append(entries, prompt.MenuEntry{Name: subcommand.Name(), Description: subcommand.Short})
		commandsByName[subcommand.Name()] = subcommand
	}

	chosenName, chooseError := application.chooser.Choose(chooserTitleConstant, entries)
	if chooseError != nil {
		return chooseError
	}
	chosenCommand, known := commandsByName[chosenName]
	if !known || chosenCommand.RunE == nil {
		return fmt.Errorf(unknownChosenCommandTemplateConstant, chosenName)
	}

	application.logger.Debug(chooserSelectionLogMessageConstant, zap.String(logFieldCommandNameConstant, chosenName))
	chosenCommand.SetContext(command.Context())
	chosenCommand.SetOut(command.OutOrStdout())
	chosenCommand.SetErr(command.ErrOrStderr())
	return chosenCommand.RunE(chosenCommand, []string{})
}

func (application *Application) loggerProvider() *zap.Logger {
	return application.logger
}

func (application *Application) flushLogger() error {
	for _, logger := range []*zap.Logger{application.logger, application.consoleLogger} {
		if syncError := application.syncLoggerInstance(logger); syncError != nil {
			return syncError
		}
	}
	return nil
}

func (application *Application) syncLoggerInstance(logger *zap.Logger) error {
	if logger == nil {
		return nil
	}

	syncError := logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	case errors.Is(syncError, syscall.ENOTTY):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}

// configurationSearchPaths lists the working directory, then the user configuration directory.
func configurationSearchPaths() []string {
	searchPaths := []string{defaultConfigurationSearchPathConstant}
	if userConfigurationDirectory, directoryError := os.UserConfigDir(); directoryError == nil {
		searchPaths = append(searchPaths, filepath.Join(userConfigurationDirectory, configurationDirectoryNameConstant))
	}
	return searchPaths
}
