package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/ghflow/internal/githubcli"
	"github.com/temirov/ghflow/internal/prompt"
)

const (
	repositoryReadyTemplateConstant         = "Repository already has remote %s (%s).\n"
	initializedRepositoryTemplateConstant   = "Initialized git repository in %s\n"
	createdRepositoryTemplateConstant       = "Created GitHub repository %s (%s)\n"
	initializeConfirmationPromptConstant    = "Initialize a git repository and create it on GitHub?"
	repositoryNamePromptConstant            = "Repository name"
	visibilityPromptConstant                = "Visibility"
	localRepositoryMissingMessageConstant   = "local repository manager not configured"
	repositoryCreatorMissingMessageConstant = "repository creator not configured"
	repositoryNameRequiredMessageConstant   = "repository name is required"
	gitInitErrorTemplateConstant            = "unable to initialize git repository: %w"
	createRepositoryErrorTemplateConstant   = "unable to create GitHub repository %s: %w"
	currentDirectorySourceConstant          = "."
	repositoryCreatedLogMessageConstant     = "github repository created"
	logFieldRepositoryConstant              = "repository"
	logFieldVisibilityConstant              = "visibility"
)

var (
	// ErrLocalRepositoryNotConfigured indicates the initializer has no git access.
	ErrLocalRepositoryNotConfigured = errors.New(localRepositoryMissingMessageConstant)
	// ErrRepositoryCreatorNotConfigured indicates the initializer cannot reach the GitHub CLI.
	ErrRepositoryCreatorNotConfigured = errors.New(repositoryCreatorMissingMessageConstant)
	// ErrRepositoryNameRequired indicates no repository name could be determined.
	ErrRepositoryNameRequired = errors.New(repositoryNameRequiredMessageConstant)

	visibilityChoices = []githubcli.RepositoryVisibility{
		githubcli.RepositoryVisibilityPrivate,
		githubcli.RepositoryVisibilityPublic,
		githubcli.RepositoryVisibilityInternal,
	}
)

// LocalRepository is the git access needed to initialize a working directory.
type LocalRepository interface {
	WorkingDirectory() string
	IsInsideWorkTree(executionContext context.Context) bool
	Init(executionContext context.Context) error
	RemoteURL(executionContext context.Context, remoteName string) (string, error)
}

// RepositoryCreator creates a GitHub repository from a local directory.
type RepositoryCreator interface {
	CreateRepository(executionContext context.Context, options githubcli.RepositoryCreateOptions) error
}

// InitializerDependencies are the collaborators of the --init step.
type InitializerDependencies struct {
	Repository LocalRepository
	Creator    RepositoryCreator
	Prompter   prompt.Prompter
	RemoteName string
	Logger     *zap.Logger
}

// InitializerProvider resolves InitializerDependencies when a command runs.
type InitializerProvider func(executionContext context.Context) (InitializerDependencies, error)

// InitializeOptions control repository initialization. Without confirmation skipping the
// name and visibility are asked for; otherwise the directory name and private visibility apply.
type InitializeOptions struct {
	Name             string
	Visibility       githubcli.RepositoryVisibility
	SkipConfirmation bool
}

// Initializer turns a plain directory into a git repository published on GitHub.
type Initializer struct {
	dependencies InitializerDependencies
	output       io.Writer
	logger       *zap.Logger
}

// NewInitializer validates dependencies and constructs an Initializer.
func NewInitializer(dependencies InitializerDependencies, output io.Writer) (*Initializer, error) {
	if dependencies.Repository == nil {
		return nil, ErrLocalRepositoryNotConfigured
	}
	if dependencies.Creator == nil {
		return nil, ErrRepositoryCreatorNotConfigured
	}
	if output == nil {
		output = io.Discard
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Initializer{dependencies: dependencies, output: output, logger: logger}, nil
}

// Initialize runs git init when needed and creates the GitHub repository with the configured
// remote. A directory that already has the remote is left untouched.
func (initializer *Initializer) Initialize(executionContext context.Context, options InitializeOptions) error {
	repository := initializer.dependencies.Repository
	remoteName := strings.TrimSpace(initializer.dependencies.RemoteName)
	insideWorkTree := repository.IsInsideWorkTree(executionContext)
	if insideWorkTree {
		if remoteURL, remoteError := repository.RemoteURL(executionContext, remoteName); remoteError == nil && len(remoteURL) > 0 {
			fmt.Fprintf(initializer.output, repositoryReadyTemplateConstant, remoteName, remoteURL)
			return nil
		}
	}

	name := strings.TrimSpace(options.Name)
	if len(name) == 0 {
		name = filepath.Base(repository.WorkingDirectory())
	}
	visibility := options.Visibility
	if len(visibility) == 0 {
		visibility = githubcli.RepositoryVisibilityPrivate
	}

	if !options.SkipConfirmation {
		var answerError error
		name, visibility, answerError = initializer.ask(name, visibility)
		if answerError != nil {
			return answerError
		}
	}
	if len(name) == 0 || name == currentDirectorySourceConstant || name == string(filepath.Separator) {
		return ErrRepositoryNameRequired
	}

	if !insideWorkTree {
		if initError := repository.Init(executionContext); initError != nil {
			return fmt.Errorf(gitInitErrorTemplateConstant, initError)
		}
		fmt.Fprintf(initializer.output, initializedRepositoryTemplateConstant, repository.WorkingDirectory())
	}

	createError := initializer.dependencies.Creator.CreateRepository(executionContext, githubcli.RepositoryCreateOptions{
		Name:             name,
		Visibility:       visibility,
		SourceDirectory:  currentDirectorySourceConstant,
		RemoteName:       remoteName,
		WorkingDirectory: repository.WorkingDirectory(),
	})
	if createError != nil {
		return fmt.Errorf(createRepositoryErrorTemplateConstant, name, createError)
	}
	fmt.Fprintf(initializer.output, createdRepositoryTemplateConstant, name, visibility)
	initializer.logger.Info(repositoryCreatedLogMessageConstant, zap.String(logFieldRepositoryConstant, name), zap.String(logFieldVisibilityConstant, string(visibility)))
	return nil
}

func (initializer *Initializer) ask(defaultName string, defaultVisibility githubcli.RepositoryVisibility) (string, githubcli.RepositoryVisibility, error) {
	prompter := initializer.dependencies.Prompter
	if prompter == nil {
		return "", "", ErrPrompterNotConfigured
	}

	confirmed, confirmError := prompter.Confirm(initializeConfirmationPromptConstant, true)
	if confirmError != nil {
		return "", "", confirmError
	}
	if !confirmed {
		return "", "", prompt.ErrCancelled
	}

	name, inputError := prompter.Input(repositoryNamePromptConstant, defaultName)
	if inputError != nil {
		return "", "", inputError
	}
	name = strings.TrimSpace(name)
	if len(name) == 0 {
		return "", "", prompt.ErrCancelled
	}

	visibilityNames := make([]string, 0, len(visibilityChoices))
	defaultIndex := 0
	for choiceIndex, choice := range visibilityChoices {
		visibilityNames = append(visibilityNames, string(choice))
		if choice == defaultVisibility {
			defaultIndex = choiceIndex
		}
	}
	selectedIndex, selectError := prompter.Select(visibilityPromptConstant, visibilityNames, defaultIndex)
	if selectError != nil {
		return "", "", selectError
	}
	return name, visibilityChoices[selectedIndex], nil
}
