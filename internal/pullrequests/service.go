package pullrequests

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/ghflow/internal/config"
	"github.com/temirov/ghflow/internal/conventions"
	"github.com/temirov/ghflow/internal/filesystem"
	"github.com/temirov/ghflow/internal/githubapi"
	"github.com/temirov/ghflow/internal/prompt"
	"github.com/temirov/ghflow/internal/ui"
)

const (
	defaultRemoteNameConstant                 = "origin"
	defaultListLimitConstant                  = 30
	selectionLimitConstant                    = 30
	closingReferenceTemplateConstant          = "Fixes #%d"
	closingReferenceSeparatorConstant         = "\n\n"
	titlePromptConstant                       = "Pull request title"
	pushConfirmTemplateConstant               = "Push %s to %s?"
	createConfirmTemplateConstant             = "Create pull request %q from %s into %s?"
	pullRequestSelectionEntryTemplateConstant = "#%d %s (%s)"
	pullRequestCreatedTemplateConstant        = "Created pull request #%d: %s\n"
	branchPushedTemplateConstant              = "Pushed %s to %s\n"
	noOpenPullRequestsMessageConstant         = "No open pull requests found.\n"
	pullRequestListTitleTemplateConstant      = "Pull requests (%s)"
	pullRequestListEmptyNounConstant          = "pull requests"
	draftStateLabelConstant                   = "draft"
	gatewayMissingMessageConstant             = "pull request gateway not configured"
	repositoryMissingMessageConstant          = "git repository not configured"
	prompterMissingMessageConstant            = "prompter not configured"
	baseBranchMessageTemplateConstant         = "current branch %q is the base branch; create a feature branch first"
	currentBranchErrorTemplateConstant        = "unable to determine current branch: %w"
	repositoryErrorTemplateConstant           = "unable to load repository: %w"
	pushErrorTemplateConstant                 = "unable to push branch %s: %w"
	lastCommitErrorTemplateConstant           = "unable to read last commit subject: %w"
	templateReadErrorTemplateConstant         = "unable to read pull request template %s: %w"
	createPullRequestErrorTemplateConstant    = "unable to create pull request: %w"
	listPullRequestsErrorTemplateConstant     = "unable to list pull requests: %w"
	issueLookupSkippedLogMessageConstant      = "linked issue lookup failed"
	pullRequestCreatedLogMessageConstant      = "pull request created"
	logFieldNumberConstant                    = "number"
	logFieldIssueConstant                     = "issue"
)

var (
	// ErrGatewayNotConfigured indicates the service was constructed without a REST gateway.
	ErrGatewayNotConfigured = errors.New(gatewayMissingMessageConstant)
	// ErrRepositoryNotConfigured indicates the service was constructed without a git repository.
	ErrRepositoryNotConfigured = errors.New(repositoryMissingMessageConstant)
	// ErrPrompterNotConfigured indicates an interactive step ran without a prompter.
	ErrPrompterNotConfigured = errors.New(prompterMissingMessageConstant)

	pullRequestListHeaders = []string{"#", "Title", "Head", "Base", "Author", "State"}
)

// BaseBranchError reports an attempt to open a pull request from the base branch itself.
type BaseBranchError struct {
	Branch string
}

// Error describes the offending branch.
func (baseError BaseBranchError) Error() string {
	return fmt.Sprintf(baseBranchMessageTemplateConstant, baseError.Branch)
}

// CreateOptions describe the pull request to open. Empty values fall back to the last commit
// subject, the local pull request template, and the default branch.
type CreateOptions struct {
	Title            string
	Body             string
	Base             string
	Draft            bool
	SkipConfirmation bool
}

// ListOptions filter the pull request listing.
type ListOptions struct {
	State githubapi.IssueState
	Limit int
}

// Service runs the pull request workflows.
type Service struct {
	dependencies Dependencies
	fileSystem   filesystem.FileSystem
	output       io.Writer
	logger       *zap.Logger
}

// NewService validates dependencies and constructs a Service writing to output.
func NewService(dependencies Dependencies, output io.Writer) (*Service, error) {
	if dependencies.PullRequests == nil {
		return nil, ErrGatewayNotConfigured
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
	return &Service{
		dependencies: dependencies,
		fileSystem:   filesystem.Resolve(dependencies.FileSystem),
		output:       output,
		logger:       logger,
	}, nil
}

// Create pushes the current branch and opens a pull request against the base branch.
// The pull request moves to Ready and the issue encoded in the branch name moves to Review.
func (service *Service) Create(executionContext context.Context, options CreateOptions) (githubapi.PullRequest, error) {
	repository := service.dependencies.Repository

	headBranch, branchError := repository.CurrentBranch(executionContext)
	if branchError != nil {
		return githubapi.PullRequest{}, fmt.Errorf(currentBranchErrorTemplateConstant, branchError)
	}

	baseBranch := strings.TrimSpace(options.Base)
	if len(baseBranch) == 0 {
		repositoryDetails, repositoryError := service.dependencies.PullRequests.Repository(executionContext)
		if repositoryError != nil {
			return githubapi.PullRequest{}, fmt.Errorf(repositoryErrorTemplateConstant, repositoryError)
		}
		baseBranch = repositoryDetails.DefaultBranch
	}
	if headBranch == baseBranch {
		return githubapi.PullRequest{}, BaseBranchError{Branch: headBranch}
	}

	title, titleError := service.resolveTitle(executionContext, options.Title)
	if titleError != nil {
		return githubapi.PullRequest{}, titleError
	}

	issueNumber := service.branchIssueNumber(headBranch)
	body, bodyError := service.resolveBody(options.Body, issueNumber)
	if bodyError != nil {
		return githubapi.PullRequest{}, bodyError
	}

	remoteName := service.remoteName()
	if !options.SkipConfirmation {
		if confirmError := service.confirm(fmt.Sprintf(pushConfirmTemplateConstant, headBranch, remoteName)); confirmError != nil {
			return githubapi.PullRequest{}, confirmError
		}
	}
	if pushError := repository.Push(executionContext, remoteName, headBranch); pushError != nil {
		return githubapi.PullRequest{}, fmt.Errorf(pushErrorTemplateConstant, headBranch, pushError)
	}
	fmt.Fprintf(service.output, branchPushedTemplateConstant, headBranch, remoteName)

	if !options.SkipConfirmation {
		if confirmError := service.confirm(fmt.Sprintf(createConfirmTemplateConstant, title, headBranch, baseBranch)); confirmError != nil {
			return githubapi.PullRequest{}, confirmError
		}
	}
	pullRequest, createError := service.dependencies.PullRequests.CreatePullRequest(executionContext, githubapi.PullRequestRequest{
		Title: title,
		Body:  body,
		Head:  headBranch,
		Base:  baseBranch,
		Draft: options.Draft,
	})
	if createError != nil {
		return githubapi.PullRequest{}, fmt.Errorf(createPullRequestErrorTemplateConstant, createError)
	}
	fmt.Fprintf(service.output, pullRequestCreatedTemplateConstant, pullRequest.Number, pullRequest.URL)
	service.logger.Info(pullRequestCreatedLogMessageConstant, zap.Int(logFieldNumberConstant, pullRequest.Number))

	service.cascade(executionContext, pullRequest.NodeID, config.StatusReady)
	if issueNumber > 0 {
		service.cascadeIssue(executionContext, issueNumber, config.StatusReview)
	}
	return pullRequest, nil
}

// List prints pull requests in the requested state as a table.
func (service *Service) List(executionContext context.Context, options ListOptions) ([]githubapi.PullRequest, error) {
	state := options.State
	if len(state) == 0 {
		state = githubapi.IssueStateOpen
	}
	limit := options.Limit
	if limit <= 0 {
		limit = defaultListLimitConstant
	}

	pullRequests, listError := service.dependencies.PullRequests.ListPullRequests(executionContext, githubapi.ListOptions{State: state, Limit: limit})
	if listError != nil {
		return nil, fmt.Errorf(listPullRequestsErrorTemplateConstant, listError)
	}

	rows := make([][]string, 0, len(pullRequests))
	for _, pullRequest := range pullRequests {
		displayState := string(pullRequest.State)
		if pullRequest.Draft && pullRequest.State == githubapi.PullRequestStateOpen {
			displayState = draftStateLabelConstant
		}
		rows = append(rows, []string{
			strconv.Itoa(pullRequest.Number),
			pullRequest.Title,
			pullRequest.HeadBranch,
			pullRequest.BaseBranch,
			pullRequest.Author,
			displayState,
		})
	}
	ui.WriteTable(service.output, ui.Table{
		Title:   fmt.Sprintf(pullRequestListTitleTemplateConstant, state),
		Headers: pullRequestListHeaders,
		Rows:    rows,
	}, pullRequestListEmptyNounConstant)
	return pullRequests, nil
}

func (service *Service) resolveTitle(executionContext context.Context, requestedTitle string) (string, error) {
	title := strings.TrimSpace(requestedTitle)
	if len(title) > 0 {
		return title, nil
	}

	lastSubject, subjectError := service.dependencies.Repository.LastCommitSubject(executionContext)
	if subjectError != nil {
		return "", fmt.Errorf(lastCommitErrorTemplateConstant, subjectError)
	}
	if service.dependencies.Prompter == nil {
		return lastSubject, nil
	}

	answer, inputError := service.dependencies.Prompter.Input(titlePromptConstant, lastSubject)
	if inputError != nil {
		return "", inputError
	}
	title = strings.TrimSpace(answer)
	if len(title) == 0 {
		return "", prompt.ErrCancelled
	}
	return title, nil
}

func (service *Service) resolveBody(requestedBody string, issueNumber int) (string, error) {
	body := requestedBody
	if len(strings.TrimSpace(body)) == 0 {
		templateBody, templateError := service.readPullRequestTemplate()
		if templateError != nil {
			return "", templateError
		}
		body = templateBody
	}
	if issueNumber <= 0 {
		return body, nil
	}
	for _, referencedIssue := range conventions.ClosingReferences(body) {
		if referencedIssue == issueNumber {
			return body, nil
		}
	}

	closingReference := fmt.Sprintf(closingReferenceTemplateConstant, issueNumber)
	if len(strings.TrimSpace(body)) == 0 {
		return closingReference, nil
	}
	return strings.TrimRight(body, "\n") + closingReferenceSeparatorConstant + closingReference, nil
}

func (service *Service) readPullRequestTemplate() (string, error) {
	templatePath := filepath.Join(service.dependencies.Repository.WorkingDirectory(), filepath.FromSlash(config.PullRequestTemplatePath()))
	exists, existsError := filesystem.Exists(service.fileSystem, templatePath)
	if existsError != nil {
		return "", fmt.Errorf(templateReadErrorTemplateConstant, templatePath, existsError)
	}
	if !exists {
		return "", nil
	}
	content, readError := service.fileSystem.ReadFile(templatePath)
	if readError != nil {
		return "", fmt.Errorf(templateReadErrorTemplateConstant, templatePath, readError)
	}
	return string(content), nil
}

func (service *Service) branchIssueNumber(branchName string) int {
	extractor, extractorError := conventions.NewIssueExtractor(service.dependencies.Configuration.CommitAssistant.IssuePattern())
	if extractorError != nil {
		return 0
	}
	issueNumber, found := extractor.ExtractNumber(branchName)
	if !found {
		return 0
	}
	return issueNumber
}

func (service *Service) selectOpenPullRequest(executionContext context.Context, label string) (githubapi.PullRequest, bool, error) {
	openPullRequests, listError := service.dependencies.PullRequests.ListPullRequests(executionContext, githubapi.ListOptions{State: githubapi.IssueStateOpen, Limit: selectionLimitConstant})
	if listError != nil {
		return githubapi.PullRequest{}, false, fmt.Errorf(listPullRequestsErrorTemplateConstant, listError)
	}
	if len(openPullRequests) == 0 {
		fmt.Fprint(service.output, noOpenPullRequestsMessageConstant)
		return githubapi.PullRequest{}, false, nil
	}
	if service.dependencies.Prompter == nil {
		return githubapi.PullRequest{}, false, ErrPrompterNotConfigured
	}

	entries := make([]string, 0, len(openPullRequests))
	for _, openPullRequest := range openPullRequests {
		entries = append(entries, fmt.Sprintf(pullRequestSelectionEntryTemplateConstant, openPullRequest.Number, openPullRequest.Title, openPullRequest.HeadBranch))
	}
	selectedIndex, selectError := service.dependencies.Prompter.Select(label, entries, 0)
	if selectError != nil {
		return githubapi.PullRequest{}, false, selectError
	}
	return openPullRequests[selectedIndex], true, nil
}

func (service *Service) cascade(executionContext context.Context, contentID string, statusName string) {
	if service.dependencies.Cascade == nil {
		return
	}
	service.dependencies.Cascade.Apply(executionContext, contentID, statusName)
}

func (service *Service) cascadeIssue(executionContext context.Context, issueNumber int, statusName string) {
	if service.dependencies.Cascade == nil {
		return
	}
	issue, issueError := service.dependencies.PullRequests.GetIssue(executionContext, issueNumber)
	if issueError != nil {
		service.logger.Warn(issueLookupSkippedLogMessageConstant, zap.Int(logFieldIssueConstant, issueNumber), zap.Error(issueError))
		return
	}
	service.dependencies.Cascade.Apply(executionContext, issue.NodeID, statusName)
}

func (service *Service) remoteName() string {
	remoteName := strings.TrimSpace(service.dependencies.Configuration.Remote)
	if len(remoteName) == 0 {
		return defaultRemoteNameConstant
	}
	return remoteName
}
