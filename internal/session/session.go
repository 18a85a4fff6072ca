package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/ghflow/internal/config"
	"github.com/temirov/ghflow/internal/githubapi"
	"github.com/temirov/ghflow/internal/githubauth"
	"github.com/temirov/ghflow/internal/githubcli"
	"github.com/temirov/ghflow/internal/gitrepo"
	"github.com/temirov/ghflow/internal/projects"
)

const (
	supportedHostConstant                 = "github.com"
	notGitRepositoryMessageConstant       = "current directory is not inside a git repository"
	executorNotConfiguredMessageConstant  = "shell executor not configured"
	unsupportedHostTemplateConstant       = "remote %s points at %s; only %s repositories are supported"
	remoteResolutionErrorTemplateConstant = "unable to determine GitHub repository: %w"
	tokenResolutionErrorTemplateConstant  = "unable to authenticate with GitHub: %w"
	clientCreationErrorTemplateConstant   = "unable to create GitHub client: %w"
	sessionResolvedLogMessageConstant     = "session resolved"
	logFieldRepositoryConstant            = "repository"
	logFieldRemoteConstant                = "remote"
	logFieldProjectsEnabledConstant       = "projects_enabled"
)

var (
	// ErrNotGitRepository indicates the working directory is outside a git work tree.
	ErrNotGitRepository = errors.New(notGitRepositoryMessageConstant)
	// ErrExecutorNotConfigured indicates the resolver was constructed without a shell executor.
	ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
)

// UnsupportedHostError indicates the remote points at a host other than github.com.
type UnsupportedHostError struct {
	RemoteName string
	Host       string
}

// Error describes the unsupported host.
func (hostError UnsupportedHostError) Error() string {
	return fmt.Sprintf(unsupportedHostTemplateConstant, hostError.RemoteName, hostError.Host, supportedHostConstant)
}

// ShellExecutor runs git and gh subprocesses.
type ShellExecutor interface {
	gitrepo.GitExecutor
	githubcli.GitHubCommandExecutor
}

// Session is the resolved context of one command invocation.
type Session struct {
	Configuration config.Configuration
	Repository    *gitrepo.RepositoryManager
	Remote        gitrepo.RemoteURL
	GitHub        *githubapi.Client
	GraphQL       *githubcli.Client
	Synchronizer  *projects.Synchronizer
	Cascade       *projects.StatusCascade
}

// Resolver builds a Session on first use and returns the same Session afterwards.
type Resolver struct {
	WorkingDirectory string
	Configuration    config.Configuration
	Executor         ShellExecutor
	Output           io.Writer
	Logger           *zap.Logger
	ClientOptions    []githubapi.ClientOption

	resolved *Session
}

// RepositoryManager returns a git manager for the working directory without contacting GitHub.
func (resolver *Resolver) RepositoryManager() (*gitrepo.RepositoryManager, error) {
	if resolver.Executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return gitrepo.NewRepositoryManager(resolver.Executor, resolver.WorkingDirectory)
}

// GitHubCLI returns an unauthenticated gh client; gh falls back to its own credential store.
func (resolver *Resolver) GitHubCLI() (*githubcli.Client, error) {
	if resolver.Executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return githubcli.NewClient(resolver.Executor)
}

// Resolve returns the session for the working directory.
func (resolver *Resolver) Resolve(executionContext context.Context) (*Session, error) {
	if resolver.resolved != nil {
		return resolver.resolved, nil
	}

	logger := resolver.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	repositoryManager, managerError := resolver.RepositoryManager()
	if managerError != nil {
		return nil, managerError
	}
	if !repositoryManager.IsInsideWorkTree(executionContext) {
		return nil, ErrNotGitRepository
	}

	remoteName := resolver.Configuration.Remote
	remote, remoteError := repositoryManager.ResolveRemote(executionContext, remoteName)
	if remoteError != nil {
		return nil, fmt.Errorf(remoteResolutionErrorTemplateConstant, remoteError)
	}
	if !strings.EqualFold(remote.Host, supportedHostConstant) {
		return nil, UnsupportedHostError{RemoteName: remoteName, Host: remote.Host}
	}

	cliClient, cliError := resolver.GitHubCLI()
	if cliError != nil {
		return nil, cliError
	}
	tokenResolver := githubauth.TokenResolver{
		WorkingDirectory: resolver.WorkingDirectory,
		CLITokenSource:   cliClient,
		Logger:           logger,
	}
	token, tokenError := tokenResolver.Resolve(executionContext)
	if tokenError != nil {
		return nil, fmt.Errorf(tokenResolutionErrorTemplateConstant, tokenError)
	}

	clientOptions := append([]githubapi.ClientOption{githubapi.WithLogger(logger)}, resolver.ClientOptions...)
	restClient, restError := githubapi.NewClient(token, remote.Owner, remote.Repository, clientOptions...)
	if restError != nil {
		return nil, fmt.Errorf(clientCreationErrorTemplateConstant, restError)
	}

	graphQLClient := cliClient.WithToken(token)
	synchronizer, synchronizerError := projects.NewSynchronizer(graphQLClient, resolver.Output, logger)
	if synchronizerError != nil {
		return nil, synchronizerError
	}
	cascade := projects.NewStatusCascade(synchronizer, resolver.Configuration.ProjectsV2, remote.Owner, remote.Repository, resolver.Output, logger)

	logger.Debug(
		sessionResolvedLogMessageConstant,
		zap.String(logFieldRepositoryConstant, remote.FullName()),
		zap.String(logFieldRemoteConstant, remoteName),
		zap.Bool(logFieldProjectsEnabledConstant, resolver.Configuration.ProjectsV2.Enabled),
	)

	resolver.resolved = &Session{
		Configuration: resolver.Configuration,
		Repository:    repositoryManager,
		Remote:        remote,
		GitHub:        restClient,
		GraphQL:       graphQLClient,
		Synchronizer:  synchronizer,
		Cascade:       cascade,
	}
	return resolver.resolved, nil
}
