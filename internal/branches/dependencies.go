package branches

import (
	"context"

	"go.uber.org/zap"

	"github.com/temirov/ghflow/internal/config"
	"github.com/temirov/ghflow/internal/githubapi"
	"github.com/temirov/ghflow/internal/prompt"
)

// IssueGateway loads the issue a branch is created for.
type IssueGateway interface {
	GetIssue(executionContext context.Context, number int) (githubapi.Issue, error)
	ListIssues(executionContext context.Context, options githubapi.ListOptions) ([]githubapi.Issue, error)
}

// GitRepository is the git surface the branch workflow drives.
type GitRepository interface {
	CreateBranch(executionContext context.Context, branchName string) error
	Push(executionContext context.Context, remoteName string, branchName string) error
}

// StatusCascade moves content across the project board.
type StatusCascade interface {
	Apply(executionContext context.Context, contentID string, statusName string) bool
}

// Dependencies are the collaborators of the branch workflow.
type Dependencies struct {
	Issues        IssueGateway
	Repository    GitRepository
	Cascade       StatusCascade
	Prompter      prompt.Prompter
	Configuration config.Configuration
	Logger        *zap.Logger
}

// DependenciesProvider resolves Dependencies when a command runs.
type DependenciesProvider func(executionContext context.Context) (Dependencies, error)
