package cli

import (
	"context"

	"go.uber.org/zap"

	"github.com/temirov/ghflow/internal/bootstrap"
	"github.com/temirov/ghflow/internal/branches"
	"github.com/temirov/ghflow/internal/commits"
	"github.com/temirov/ghflow/internal/execshell"
	"github.com/temirov/ghflow/internal/filesystem"
	"github.com/temirov/ghflow/internal/issues"
	"github.com/temirov/ghflow/internal/projects"
	"github.com/temirov/ghflow/internal/pullrequests"
	"github.com/temirov/ghflow/internal/session"
	"github.com/temirov/ghflow/internal/ui"
)

const sessionConfigurationLogMessageConstant = "resolving session"

// sessionProvider maps the lazily resolved session onto the dependencies of each workflow package.
// The session is built on the first command that needs GitHub and reused afterwards.
type sessionProvider struct {
	application *Application
	resolver    *session.Resolver
}

func newSessionProvider(application *Application) *sessionProvider {
	return &sessionProvider{application: application}
}

func (provider *sessionProvider) sessionResolver(executionContext context.Context) (*session.Resolver, error) {
	if provider.resolver != nil {
		return provider.resolver, nil
	}

	application := provider.application
	if configurationSource, available := application.commandContextAccessor.ConfigurationSource(executionContext); available {
		application.logger.Debug(sessionConfigurationLogMessageConstant, zap.String(configurationSourceFieldConstant, configurationSource))
	}

	var observers []execshell.CommandEventObserver
	if application.humanReadableLoggingEnabled() {
		observers = append(observers, ui.NewConsoleCommandEventLogger(application.consoleLogger))
	}
	executor, executorError := execshell.NewShellExecutor(application.logger, execshell.NewOSCommandRunner(), observers...)
	if executorError != nil {
		return nil, executorError
	}

	provider.resolver = &session.Resolver{
		WorkingDirectory: application.workingDirectory,
		Configuration:    application.configuration,
		Executor:         executor,
		Output:           application.output,
		Logger:           application.logger,
	}
	return provider.resolver, nil
}

func (provider *sessionProvider) resolve(executionContext context.Context) (*session.Session, error) {
	resolver, resolverError := provider.sessionResolver(executionContext)
	if resolverError != nil {
		return nil, resolverError
	}
	return resolver.Resolve(executionContext)
}

func (provider *sessionProvider) issuesDependencies(executionContext context.Context) (issues.Dependencies, error) {
	resolvedSession, sessionError := provider.resolve(executionContext)
	if sessionError != nil {
		return issues.Dependencies{}, sessionError
	}
	return issues.Dependencies{
		Issues:        resolvedSession.GitHub,
		Cascade:       resolvedSession.Cascade,
		Prompter:      provider.application.prompter,
		Configuration: resolvedSession.Configuration,
		Logger:        provider.application.logger,
	}, nil
}

func (provider *sessionProvider) branchesDependencies(executionContext context.Context) (branches.Dependencies, error) {
	resolvedSession, sessionError := provider.resolve(executionContext)
	if sessionError != nil {
		return branches.Dependencies{}, sessionError
	}
	return branches.Dependencies{
		Issues:        resolvedSession.GitHub,
		Repository:    resolvedSession.Repository,
		Cascade:       resolvedSession.Cascade,
		Prompter:      provider.application.prompter,
		Configuration: resolvedSession.Configuration,
		Logger:        provider.application.logger,
	}, nil
}

// commitsDependencies never contacts GitHub so that hooks run without credentials.
func (provider *sessionProvider) commitsDependencies(executionContext context.Context) (commits.Dependencies, error) {
	resolver, resolverError := provider.sessionResolver(executionContext)
	if resolverError != nil {
		return commits.Dependencies{}, resolverError
	}
	repositoryManager, managerError := resolver.RepositoryManager()
	if managerError != nil {
		return commits.Dependencies{}, managerError
	}
	return commits.Dependencies{
		Repository:    repositoryManager,
		FileSystem:    filesystem.OSFileSystem{},
		Prompter:      provider.application.prompter,
		Configuration: provider.application.configuration,
		Logger:        provider.application.logger,
	}, nil
}

func (provider *sessionProvider) pullRequestsDependencies(executionContext context.Context) (pullrequests.Dependencies, error) {
	resolvedSession, sessionError := provider.resolve(executionContext)
	if sessionError != nil {
		return pullrequests.Dependencies{}, sessionError
	}
	return pullrequests.Dependencies{
		PullRequests:  resolvedSession.GitHub,
		Repository:    resolvedSession.Repository,
		FileSystem:    filesystem.OSFileSystem{},
		Cascade:       resolvedSession.Cascade,
		Prompter:      provider.application.prompter,
		Configuration: resolvedSession.Configuration,
		Logger:        provider.application.logger,
	}, nil
}

func (provider *sessionProvider) projectsDependencies(executionContext context.Context) (projects.Dependencies, error) {
	resolvedSession, sessionError := provider.resolve(executionContext)
	if sessionError != nil {
		return projects.Dependencies{}, sessionError
	}
	return projects.Dependencies{
		Board:    resolvedSession.Synchronizer,
		Locator:  resolvedSession.Cascade,
		Prompter: provider.application.prompter,
		Logger:   provider.application.logger,
	}, nil
}

func (provider *sessionProvider) bootstrapDependencies(executionContext context.Context) (bootstrap.Dependencies, error) {
	resolvedSession, sessionError := provider.resolve(executionContext)
	if sessionError != nil {
		return bootstrap.Dependencies{}, sessionError
	}
	return bootstrap.Dependencies{
		Labels:          resolvedSession.GitHub,
		Files:           resolvedSession.GitHub,
		Boards:          resolvedSession.Synchronizer,
		Prompter:        provider.application.prompter,
		Configuration:   resolvedSession.Configuration,
		RepositoryOwner: resolvedSession.Remote.Owner,
		RepositoryName:  resolvedSession.Remote.Repository,
		Logger:          provider.application.logger,
	}, nil
}

// bootstrapInitializerDependencies runs before a remote exists, so it stops short of Resolve.
func (provider *sessionProvider) bootstrapInitializerDependencies(executionContext context.Context) (bootstrap.InitializerDependencies, error) {
	resolver, resolverError := provider.sessionResolver(executionContext)
	if resolverError != nil {
		return bootstrap.InitializerDependencies{}, resolverError
	}
	repositoryManager, managerError := resolver.RepositoryManager()
	if managerError != nil {
		return bootstrap.InitializerDependencies{}, managerError
	}
	cliClient, cliError := resolver.GitHubCLI()
	if cliError != nil {
		return bootstrap.InitializerDependencies{}, cliError
	}
	return bootstrap.InitializerDependencies{
		Repository: repositoryManager,
		Creator:    cliClient,
		Prompter:   provider.application.prompter,
		RemoteName: provider.application.configuration.Remote,
		Logger:     provider.application.logger,
	}, nil
}
