package branches

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/ghflow/internal/config"
	"github.com/temirov/ghflow/internal/conventions"
	"github.com/temirov/ghflow/internal/githubapi"
	"github.com/temirov/ghflow/internal/prompt"
)

const (
	defaultBranchTypeConstant           = "feat"
	defaultRemoteNameConstant           = "origin"
	issueSelectionPromptConstant        = "Issue to work on"
	branchTypePromptConstant            = "Branch type"
	createConfirmTemplateConstant       = "Create and check out %s?"
	issueSelectionEntryTemplateConstant = "#%d %s"
	branchCreatedTemplateConstant       = "Created branch %s\n"
	branchPushedTemplateConstant        = "Pushed %s to %s\n"
	noOpenIssuesMessageConstant         = "No open issues found.\n"
	issueSelectionLimitConstant         = 30
	gatewayMissingMessageConstant       = "issue gateway not configured"
	repositoryMissingMessageConstant    = "git repository not configured"
	prompterMissingMessageConstant      = "prompter not configured"
	loadIssueErrorTemplateConstant      = "unable to load issue #%d: %w"
	listIssuesErrorTemplateConstant     = "unable to list open issues: %w"
	branchNameErrorTemplateConstant     = "unable to name branch: %w"
	createBranchErrorTemplateConstant   = "unable to create branch %s: %w"
	pushBranchErrorTemplateConstant     = "unable to push branch %s: %w"
	branchCreatedLogMessageConstant     = "branch created"
	logFieldBranchConstant              = "branch"
	logFieldIssueConstant               = "issue"
)

var (
	// ErrIssueGatewayNotConfigured indicates the service was constructed without a REST gateway.
	ErrIssueGatewayNotConfigured = errors.New(gatewayMissingMessageConstant)
	// ErrRepositoryNotConfigured indicates the service was constructed without a git repository.
	ErrRepositoryNotConfigured = errors.New(repositoryMissingMessageConstant)
	// ErrPrompterNotConfigured indicates an interactive step ran without a prompter.
	ErrPrompterNotConfigured = errors.New(prompterMissingMessageConstant)
)

// StartOptions select the issue and branch type. A zero issue number offers the open issues.
type StartOptions struct {
	IssueNumber      int
	BranchType       string
	Push             bool
	SkipConfirmation bool
}

// StartResult reports the created branch.
type StartResult struct {
	BranchName string
	Issue      githubapi.Issue
	Pushed     bool
}

// Service creates issue branches.
type Service struct {
	dependencies Dependencies
	output       io.Writer
	logger       *zap.Logger
}

// NewService validates dependencies and constructs a Service writing to output.
func NewService(dependencies Dependencies, output io.Writer) (*Service, error) {
	if dependencies.Issues == nil {
		return nil, ErrIssueGatewayNotConfigured
	}
	if dependencies.Repository == nil {
		return nil, ErrRepositoryNotConfigured
	}
	if output == nil {
		output = io.Discard
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{dependencies: dependencies, output: output, logger: logger}, nil
}

// Start creates and checks out the branch for an issue, optionally pushes it, and moves the issue to In Progress.
// The returned bool is false when there was no open issue to start.
func (service *Service) Start(executionContext context.Context, options StartOptions) (StartResult, bool, error) {
	interactive := options.IssueNumber <= 0

	issue, found, issueError := service.resolveIssue(executionContext, options.IssueNumber)
	if issueError != nil {
		return StartResult{}, false, issueError
	}
	if !found {
		fmt.Fprint(service.output, noOpenIssuesMessageConstant)
		return StartResult{}, false, nil
	}

	branchType, typeError := service.resolveBranchType(options.BranchType, interactive)
	if typeError != nil {
		return StartResult{}, false, typeError
	}

	branchName, nameError := conventions.BranchName(branchType, issue.Number, issue.Title)
	if nameError != nil {
		return StartResult{}, false, fmt.Errorf(branchNameErrorTemplateConstant, nameError)
	}

	if !options.SkipConfirmation {
		if confirmError := service.confirm(fmt.Sprintf(createConfirmTemplateConstant, branchName)); confirmError != nil {
			return StartResult{}, false, confirmError
		}
	}

	if createError := service.dependencies.Repository.CreateBranch(executionContext, branchName); createError != nil {
		return StartResult{}, false, fmt.Errorf(createBranchErrorTemplateConstant, branchName, createError)
	}
	fmt.Fprintf(service.output, branchCreatedTemplateConstant, branchName)
	service.logger.Info(branchCreatedLogMessageConstant, zap.String(logFieldBranchConstant, branchName), zap.Int(logFieldIssueConstant, issue.Number))

	result := StartResult{BranchName: branchName, Issue: issue}
	if options.Push {
		remoteName := service.remoteName()
		if pushError := service.dependencies.Repository.Push(executionContext, remoteName, branchName); pushError != nil {
			return result, true, fmt.Errorf(pushBranchErrorTemplateConstant, branchName, pushError)
		}
		fmt.Fprintf(service.output, branchPushedTemplateConstant, branchName, remoteName)
		result.Pushed = true
	}

	if service.dependencies.Cascade != nil {
		service.dependencies.Cascade.Apply(executionContext, issue.NodeID, config.StatusInProgress)
	}
	return result, true, nil
}

func (service *Service) resolveIssue(executionContext context.Context, issueNumber int) (githubapi.Issue, bool, error) {
	if issueNumber > 0 {
		issue, getError := service.dependencies.Issues.GetIssue(executionContext, issueNumber)
		if getError != nil {
			return githubapi.Issue{}, false, fmt.Errorf(loadIssueErrorTemplateConstant, issueNumber, getError)
		}
		return issue, true, nil
	}

	openIssues, listError := service.dependencies.Issues.ListIssues(executionContext, githubapi.ListOptions{State: githubapi.IssueStateOpen, Limit: issueSelectionLimitConstant})
	if listError != nil {
		return githubapi.Issue{}, false, fmt.Errorf(listIssuesErrorTemplateConstant, listError)
	}
	if len(openIssues) == 0 {
		return githubapi.Issue{}, false, nil
	}
	if service.dependencies.Prompter == nil {
		return githubapi.Issue{}, false, ErrPrompterNotConfigured
	}

	entries := make([]string, 0, len(openIssues))
	for _, openIssue := range openIssues {
		entries = append(entries, fmt.Sprintf(issueSelectionEntryTemplateConstant, openIssue.Number, openIssue.Title))
	}
	selectedIndex, selectError := service.dependencies.Prompter.Select(issueSelectionPromptConstant, entries, 0)
	if selectError != nil {
		return githubapi.Issue{}, false, selectError
	}
	return openIssues[selectedIndex], true, nil
}

func (service *Service) resolveBranchType(requestedType string, interactive bool) (string, error) {
	trimmedType := strings.ToLower(strings.TrimSpace(requestedType))
	if len(trimmedType) > 0 {
		return trimmedType, nil
	}
	if !interactive || service.dependencies.Prompter == nil {
		return defaultBranchTypeConstant, nil
	}

	allowedTypes := service.dependencies.Configuration.CommitAssistant.AllowedTypes
	if len(allowedTypes) == 0 {
		return defaultBranchTypeConstant, nil
	}
	defaultIndex := 0
	for typeIndex, allowedType := range allowedTypes {
		if allowedType == defaultBranchTypeConstant {
			defaultIndex = typeIndex
			break
		}
	}
	selectedIndex, selectError := service.dependencies.Prompter.Select(branchTypePromptConstant, allowedTypes, defaultIndex)
	if selectError != nil {
		return "", selectError
	}
	return allowedTypes[selectedIndex], nil
}

func (service *Service) confirm(question string) error {
	if service.dependencies.Prompter == nil {
		return ErrPrompterNotConfigured
	}
	confirmed, confirmError := service.dependencies.Prompter.Confirm(question, true)
	if confirmError != nil {
		return confirmError
	}
	if !confirmed {
		return prompt.ErrCancelled
	}
	return nil
}

func (service *Service) remoteName() string {
	remoteName := strings.TrimSpace(service.dependencies.Configuration.Remote)
	if len(remoteName) == 0 {
		return defaultRemoteNameConstant
	}
	return remoteName
}
