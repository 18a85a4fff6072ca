package pullrequests

import (
	"context"

	"go.uber.org/zap"

	"github.com/temirov/ghflow/internal/config"
	"github.com/temirov/ghflow/internal/filesystem"
	"github.com/temirov/ghflow/internal/githubapi"
	"github.com/temirov/ghflow/internal/prompt"
)

// PullRequestGateway exposes the REST operations the pull request workflows use.
type PullRequestGateway interface {
	Repository(executionContext context.Context) (githubapi.Repository, error)
	GetIssue(executionContext context.Context, number int) (githubapi.Issue, error)
	CreatePullRequest(executionContext context.Context, request githubapi.PullRequestRequest) (githubapi.PullRequest, error)
	GetPullRequest(executionContext context.Context, number int) (githubapi.PullRequest, error)
	ListPullRequests(executionContext context.Context, options githubapi.ListOptions) ([]githubapi.PullRequest, error)
	CreateReview(executionContext context.Context, number int, event githubapi.ReviewEvent, body string) error
	IsApproved(executionContext context.Context, number int) (bool, error)
	MergePullRequest(executionContext context.Context, number int, method githubapi.MergeMethod) (githubapi.MergeResult, error)
	DeleteBranch(executionContext context.Context, branchName string) error
}

// GitRepository is the git surface the pull request workflows drive.
type GitRepository interface {
	CurrentBranch(executionContext context.Context) (string, error)
	LastCommitSubject(executionContext context.Context) (string, error)
	Push(executionContext context.Context, remoteName string, branchName string) error
	Checkout(executionContext context.Context, branchName string) error
	Pull(executionContext context.Context) error
	WorkingDirectory() string
}

// StatusCascade moves content across the project board.
type StatusCascade interface {
	Apply(executionContext context.Context, contentID string, statusName string) bool
}

// Dependencies are the collaborators of the pull request workflows.
type Dependencies struct {
	PullRequests  PullRequestGateway
	Repository    GitRepository
	FileSystem    filesystem.FileSystem
	Cascade       StatusCascade
	Prompter      prompt.Prompter
	Configuration config.Configuration
	Logger        *zap.Logger
}

// DependenciesProvider resolves Dependencies when a command runs.
type DependenciesProvider func(executionContext context.Context) (Dependencies, error)
