package commits

import (
	"context"

	"go.uber.org/zap"

	"github.com/temirov/ghflow/internal/config"
	"github.com/temirov/ghflow/internal/filesystem"
	"github.com/temirov/ghflow/internal/prompt"
)

// GitRepository is the git surface the commit workflow drives.
type GitRepository interface {
	CurrentBranch(executionContext context.Context) (string, error)
	HasStagedChanges(executionContext context.Context) (bool, error)
	StageAll(executionContext context.Context) error
	Commit(executionContext context.Context, message string) error
	Push(executionContext context.Context, remoteName string, branchName string) error
	HooksDirectory(executionContext context.Context) (string, error)
}

// Dependencies are the collaborators of the commit workflow.
type Dependencies struct {
	Repository    GitRepository
	FileSystem    filesystem.FileSystem
	Prompter      prompt.Prompter
	Configuration config.Configuration
	Logger        *zap.Logger
}

// DependenciesProvider resolves Dependencies when a command runs.
type DependenciesProvider func(executionContext context.Context) (Dependencies, error)
