package cli

import (
	"github.com/spf13/cobra"

	"github.com/temirov/ghflow/internal/bootstrap"
	"github.com/temirov/ghflow/internal/branches"
	"github.com/temirov/ghflow/internal/commits"
	"github.com/temirov/ghflow/internal/issues"
	"github.com/temirov/ghflow/internal/projects"
	"github.com/temirov/ghflow/internal/pullrequests"
)

type commandBuilder interface {
	Build() (*cobra.Command, error)
}

// registerCommands adds every workflow command; builders that fail are left out of the menu.
func (application *Application) registerCommands() {
	provider := application.sessionProvider
	builders := []commandBuilder{
		&bootstrap.CommandBuilder{
			LoggerProvider:       application.loggerProvider,
			InitializerProvider:  provider.bootstrapInitializerDependencies,
			DependenciesProvider: provider.bootstrapDependencies,
		},
		&issues.CreateCommandBuilder{LoggerProvider: application.loggerProvider, DependenciesProvider: provider.issuesDependencies},
		&branches.CommandBuilder{LoggerProvider: application.loggerProvider, DependenciesProvider: provider.branchesDependencies},
		&commits.CommitCommandBuilder{LoggerProvider: application.loggerProvider, DependenciesProvider: provider.commitsDependencies},
		&pullrequests.CreateCommandBuilder{LoggerProvider: application.loggerProvider, DependenciesProvider: provider.pullRequestsDependencies},
		&pullrequests.ReviewCommandBuilder{LoggerProvider: application.loggerProvider, DependenciesProvider: provider.pullRequestsDependencies},
		&pullrequests.MergeCommandBuilder{LoggerProvider: application.loggerProvider, DependenciesProvider: provider.pullRequestsDependencies},
		&issues.CloseCommandBuilder{LoggerProvider: application.loggerProvider, DependenciesProvider: provider.issuesDependencies},
		&issues.ListCommandBuilder{LoggerProvider: application.loggerProvider, DependenciesProvider: provider.issuesDependencies},
		&pullrequests.ListCommandBuilder{LoggerProvider: application.loggerProvider, DependenciesProvider: provider.pullRequestsDependencies},
		&projects.ViewCommandBuilder{LoggerProvider: application.loggerProvider, DependenciesProvider: provider.projectsDependencies},
		&projects.UpdateCommandBuilder{LoggerProvider: application.loggerProvider, DependenciesProvider: provider.projectsDependencies},
		&commits.HooksCommandBuilder{LoggerProvider: application.loggerProvider, DependenciesProvider: provider.commitsDependencies},
		&versionCommandBuilder{VersionResolver: application.resolveVersion},
	}

	for _, builder := range builders {
		command, buildError := builder.Build()
		if buildError != nil {
			continue
		}
		application.rootCommand.AddCommand(command)
	}
}
