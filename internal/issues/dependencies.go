package issues

import (
	"context"

	"go.uber.org/zap"

	"github.com/temirov/ghflow/internal/config"
	"github.com/temirov/ghflow/internal/githubapi"
	"github.com/temirov/ghflow/internal/prompt"
)

// IssueGateway exposes the REST operations the issue workflows use.
type IssueGateway interface {
	CreateIssue(executionContext context.Context, request githubapi.IssueRequest) (githubapi.Issue, error)
	GetIssue(executionContext context.Context, number int) (githubapi.Issue, error)
	ListIssues(executionContext context.Context, options githubapi.ListOptions) ([]githubapi.Issue, error)
	CloseIssue(executionContext context.Context, number int) error
	AddComment(executionContext context.Context, number int, body string) error
}

// StatusCascade moves content across the project board.
type StatusCascade interface {
	Apply(executionContext context.Context, contentID string, statusName string) bool
}

// Dependencies are the collaborators of the issue workflows.
type Dependencies struct {
	Issues        IssueGateway
	Cascade       StatusCascade
	Prompter      prompt.Prompter
	Configuration config.Configuration
	Logger        *zap.Logger
}

// DependenciesProvider resolves Dependencies when a command runs.
type DependenciesProvider func(executionContext context.Context) (Dependencies, error)
