package githubapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v50/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const (
	maximumPageSizeConstant             = 100
	trailingSlashConstant               = "/"
	branchReferenceTemplateConstant     = "heads/%s"
	tokenRequiredMessageConstant        = "GitHub token required"
	repositoryRequiredMessageConstant   = "repository owner and name required"
	requestErrorTemplateConstant        = "%s failed: %v"
	invalidBaseURLTemplateConstant      = "invalid GitHub API base URL %q: %w"
	invalidInputErrorTemplateConstant   = "%s: %s"
	requiredValueMessageConstant        = "value required"
	titleFieldNameConstant              = "title"
	labelNameFieldNameConstant          = "label name"
	headBranchFieldNameConstant         = "head branch"
	baseBranchFieldNameConstant         = "base branch"
	filePathFieldNameConstant           = "file path"
	reviewApprovedStateConstant         = "APPROVED"
	listLabelsOperationConstant         = "list labels"
	createLabelOperationConstant        = "create label"
	createIssueOperationConstant        = "create issue"
	getIssueOperationConstant           = "get issue"
	listIssuesOperationConstant         = "list issues"
	closeIssueOperationConstant         = "close issue"
	addCommentOperationConstant         = "add comment"
	createPullRequestOperationConstant  = "create pull request"
	getPullRequestOperationConstant     = "get pull request"
	listPullRequestsOperationConstant   = "list pull requests"
	createReviewOperationConstant       = "create review"
	listReviewsOperationConstant        = "list reviews"
	mergePullRequestOperationConstant   = "merge pull request"
	deleteBranchOperationConstant       = "delete branch"
	getRepositoryOperationConstant      = "get repository"
	authenticatedUserOperationConstant  = "get authenticated user"
	getContentsOperationConstant        = "get contents"
	createFileOperationConstant         = "create file"
	issueStateClosedValueConstant       = "closed"
	pullRequestStateAllValueConstant    = "all"
	defaultIssueListStateValueConstant  = "open"
	emptyCommitMessageConstant          = ""
	logFieldRepositoryConstant          = "repository"
	clientConstructedLogMessageConstant = "github api client ready"
)

var (
	// ErrTokenRequired indicates the client was constructed without a token.
	ErrTokenRequired = errors.New(tokenRequiredMessageConstant)
	// ErrRepositoryRequired indicates the client was constructed without an owner or name.
	ErrRepositoryRequired = errors.New(repositoryRequiredMessageConstant)
)

// RequestError wraps a failed REST call with the operation that issued it.
type RequestError struct {
	Operation string
	Cause     error
}

// Error describes the failed request.
func (requestError RequestError) Error() string {
	return fmt.Sprintf(requestErrorTemplateConstant, requestError.Operation, requestError.Cause)
}

// Unwrap exposes the underlying go-github error.
func (requestError RequestError) Unwrap() error {
	return requestError.Cause
}

// InvalidInputError surfaces validation issues for operation inputs.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// IsNotFound reports whether the error is a 404 response from the REST API.
func IsNotFound(candidate error) bool {
	var errorResponse *github.ErrorResponse
	if errors.As(candidate, &errorResponse) && errorResponse.Response != nil {
		return errorResponse.Response.StatusCode == http.StatusNotFound
	}
	return false
}

// ClientOption customizes a Client.
type ClientOption func(*clientSettings)

type clientSettings struct {
	baseURL string
	logger  *zap.Logger
}

// WithBaseURL points the client at an alternative API root, such as a test server.
func WithBaseURL(baseURL string) ClientOption {
	return func(settings *clientSettings) {
		settings.baseURL = baseURL
	}
}

// WithLogger attaches a logger receiving per-request debug entries.
func WithLogger(logger *zap.Logger) ClientOption {
	return func(settings *clientSettings) {
		settings.logger = logger
	}
}

// Client performs REST calls against one repository.
type Client struct {
	rest       *github.Client
	owner      string
	repository string
}

// NewClient constructs an authenticated REST client bound to owner/repository.
func NewClient(token string, owner string, repository string, options ...ClientOption) (*Client, error) {
	trimmedToken := strings.TrimSpace(token)
	if len(trimmedToken) == 0 {
		return nil, ErrTokenRequired
	}
	trimmedOwner := strings.TrimSpace(owner)
	trimmedRepository := strings.TrimSpace(repository)
	if len(trimmedOwner) == 0 || len(trimmedRepository) == 0 {
		return nil, ErrRepositoryRequired
	}

	settings := clientSettings{logger: zap.NewNop()}
	for _, option := range options {
		if option != nil {
			option(&settings)
		}
	}

	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: trimmedToken}),
			Base:   newLoggingRoundTripper(http.DefaultTransport, settings.logger),
		},
	}

	restClient := github.NewClient(httpClient)
	if len(strings.TrimSpace(settings.baseURL)) > 0 {
		normalizedBaseURL := settings.baseURL
		if !strings.HasSuffix(normalizedBaseURL, trailingSlashConstant) {
			normalizedBaseURL += trailingSlashConstant
		}
		parsedBaseURL, parseError := url.Parse(normalizedBaseURL)
		if parseError != nil {
			return nil, fmt.Errorf(invalidBaseURLTemplateConstant, settings.baseURL, parseError)
		}
		restClient.BaseURL = parsedBaseURL
	}

	settings.logger.Debug(clientConstructedLogMessageConstant, zap.String(logFieldRepositoryConstant, trimmedOwner+trailingSlashConstant+trimmedRepository))

	return &Client{rest: restClient, owner: trimmedOwner, repository: trimmedRepository}, nil
}

// Owner returns the repository owner login.
func (client *Client) Owner() string {
	return client.owner
}

// RepositoryName returns the repository name.
func (client *Client) RepositoryName() string {
	return client.repository
}

// Repository fetches repository metadata.
func (client *Client) Repository(executionContext context.Context) (Repository, error) {
	repository, _, requestError := client.rest.Repositories.Get(executionContext, client.owner, client.repository)
	if requestError != nil {
		return Repository{}, RequestError{Operation: getRepositoryOperationConstant, Cause: requestError}
	}
	return Repository{
		Owner:         repository.GetOwner().GetLogin(),
		OwnerType:     repository.GetOwner().GetType(),
		Name:          repository.GetName(),
		NodeID:        repository.GetNodeID(),
		DefaultBranch: repository.GetDefaultBranch(),
		URL:           repository.GetHTMLURL(),
	}, nil
}

// AuthenticatedUser returns the login of the token owner.
func (client *Client) AuthenticatedUser(executionContext context.Context) (string, error) {
	user, _, requestError := client.rest.Users.Get(executionContext, "")
	if requestError != nil {
		return "", RequestError{Operation: authenticatedUserOperationConstant, Cause: requestError}
	}
	return user.GetLogin(), nil
}

// ListLabels returns every label defined in the repository.
func (client *Client) ListLabels(executionContext context.Context) ([]Label, error) {
	listOptions := &github.ListOptions{PerPage: maximumPageSizeConstant}
	var labels []Label
	for {
		labelPage, response, requestError := client.rest.Issues.ListLabels(executionContext, client.owner, client.repository, listOptions)
		if requestError != nil {
			return nil, RequestError{Operation: listLabelsOperationConstant, Cause: requestError}
		}
		for _, label := range labelPage {
			labels = append(labels, labelFromGitHub(label))
		}
		if response == nil || response.NextPage == 0 {
			return labels, nil
		}
		listOptions.Page = response.NextPage
	}
}

// CreateLabel creates a repository label.
func (client *Client) CreateLabel(executionContext context.Context, label Label) error {
	trimmedName := strings.TrimSpace(label.Name)
	if len(trimmedName) == 0 {
		return InvalidInputError{FieldName: labelNameFieldNameConstant, Message: requiredValueMessageConstant}
	}

	request := &github.Label{Name: github.String(trimmedName), Color: github.String(strings.TrimPrefix(label.Color, "#"))}
	if len(label.Description) > 0 {
		request.Description = github.String(label.Description)
	}

	if _, _, requestError := client.rest.Issues.CreateLabel(executionContext, client.owner, client.repository, request); requestError != nil {
		return RequestError{Operation: createLabelOperationConstant, Cause: requestError}
	}
	return nil
}

// CreateIssue opens a new issue.
func (client *Client) CreateIssue(executionContext context.Context, request IssueRequest) (Issue, error) {
	trimmedTitle := strings.TrimSpace(request.Title)
	if len(trimmedTitle) == 0 {
		return Issue{}, InvalidInputError{FieldName: titleFieldNameConstant, Message: requiredValueMessageConstant}
	}

	issueRequest := &github.IssueRequest{Title: github.String(trimmedTitle), Body: github.String(request.Body)}
	if len(request.Labels) > 0 {
		labels := append([]string{}, request.Labels...)
		issueRequest.Labels = &labels
	}
	if len(request.Assignees) > 0 {
		assignees := append([]string{}, request.Assignees...)
		issueRequest.Assignees = &assignees
	}

	issue, _, requestError := client.rest.Issues.Create(executionContext, client.owner, client.repository, issueRequest)
	if requestError != nil {
		return Issue{}, RequestError{Operation: createIssueOperationConstant, Cause: requestError}
	}
	return issueFromGitHub(issue), nil
}

// GetIssue fetches an issue by number.
func (client *Client) GetIssue(executionContext context.Context, number int) (Issue, error) {
	issue, _, requestError := client.rest.Issues.Get(executionContext, client.owner, client.repository, number)
	if requestError != nil {
		return Issue{}, RequestError{Operation: getIssueOperationConstant, Cause: requestError}
	}
	return issueFromGitHub(issue), nil
}

// ListIssues lists issues, excluding pull requests.
func (client *Client) ListIssues(executionContext context.Context, options ListOptions) ([]Issue, error) {
	state := string(options.State)
	if len(state) == 0 {
		state = defaultIssueListStateValueConstant
	}

	listOptions := &github.IssueListByRepoOptions{
		State:       state,
		Labels:      options.Labels,
		ListOptions: github.ListOptions{PerPage: pageSize(options.Limit)},
	}

	var issues []Issue
	for {
		issuePage, response, requestError := client.rest.Issues.ListByRepo(executionContext, client.owner, client.repository, listOptions)
		if requestError != nil {
			return nil, RequestError{Operation: listIssuesOperationConstant, Cause: requestError}
		}
		for _, issue := range issuePage {
			if issue.IsPullRequest() {
				continue
			}
			issues = append(issues, issueFromGitHub(issue))
			if options.Limit > 0 && len(issues) >= options.Limit {
				return issues, nil
			}
		}
		if response == nil || response.NextPage == 0 {
			return issues, nil
		}
		listOptions.Page = response.NextPage
	}
}

// CloseIssue marks an issue closed.
func (client *Client) CloseIssue(executionContext context.Context, number int) error {
	issueRequest := &github.IssueRequest{State: github.String(issueStateClosedValueConstant)}
	if _, _, requestError := client.rest.Issues.Edit(executionContext, client.owner, client.repository, number, issueRequest); requestError != nil {
		return RequestError{Operation: closeIssueOperationConstant, Cause: requestError}
	}
	return nil
}

// AddComment posts a comment on an issue or pull request.
func (client *Client) AddComment(executionContext context.Context, number int, body string) error {
	comment := &github.IssueComment{Body: github.String(body)}
	if _, _, requestError := client.rest.Issues.CreateComment(executionContext, client.owner, client.repository, number, comment); requestError != nil {
		return RequestError{Operation: addCommentOperationConstant, Cause: requestError}
	}
	return nil
}

// CreatePullRequest opens a pull request.
func (client *Client) CreatePullRequest(executionContext context.Context, request PullRequestRequest) (PullRequest, error) {
	trimmedTitle := strings.TrimSpace(request.Title)
	if len(trimmedTitle) == 0 {
		return PullRequest{}, InvalidInputError{FieldName: titleFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if len(strings.TrimSpace(request.Head)) == 0 {
		return PullRequest{}, InvalidInputError{FieldName: headBranchFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if len(strings.TrimSpace(request.Base)) == 0 {
		return PullRequest{}, InvalidInputError{FieldName: baseBranchFieldNameConstant, Message: requiredValueMessageConstant}
	}

	newPullRequest := &github.NewPullRequest{
		Title: github.String(trimmedTitle),
		Head:  github.String(strings.TrimSpace(request.Head)),
		Base:  github.String(strings.TrimSpace(request.Base)),
		Body:  github.String(request.Body),
		Draft: github.Bool(request.Draft),
	}

	pullRequest, _, requestError := client.rest.PullRequests.Create(executionContext, client.owner, client.repository, newPullRequest)
	if requestError != nil {
		return PullRequest{}, RequestError{Operation: createPullRequestOperationConstant, Cause: requestError}
	}
	return pullRequestFromGitHub(pullRequest), nil
}

// GetPullRequest fetches a pull request by number.
func (client *Client) GetPullRequest(executionContext context.Context, number int) (PullRequest, error) {
	pullRequest, _, requestError := client.rest.PullRequests.Get(executionContext, client.owner, client.repository, number)
	if requestError != nil {
		return PullRequest{}, RequestError{Operation: getPullRequestOperationConstant, Cause: requestError}
	}
	return pullRequestFromGitHub(pullRequest), nil
}

// ListPullRequests lists pull requests in the requested state.
func (client *Client) ListPullRequests(executionContext context.Context, options ListOptions) ([]PullRequest, error) {
	state := string(options.State)
	if len(state) == 0 {
		state = defaultIssueListStateValueConstant
	}
	if state == string(PullRequestStateMerged) {
		state = pullRequestStateAllValueConstant
	}

	listOptions := &github.PullRequestListOptions{
		State:       state,
		ListOptions: github.ListOptions{PerPage: pageSize(options.Limit)},
	}

	var pullRequests []PullRequest
	for {
		pullRequestPage, response, requestError := client.rest.PullRequests.List(executionContext, client.owner, client.repository, listOptions)
		if requestError != nil {
			return nil, RequestError{Operation: listPullRequestsOperationConstant, Cause: requestError}
		}
		for _, pullRequest := range pullRequestPage {
			converted := pullRequestFromGitHub(pullRequest)
			if options.State == IssueState(PullRequestStateMerged) && converted.State != PullRequestStateMerged {
				continue
			}
			pullRequests = append(pullRequests, converted)
			if options.Limit > 0 && len(pullRequests) >= options.Limit {
				return pullRequests, nil
			}
		}
		if response == nil || response.NextPage == 0 {
			return pullRequests, nil
		}
		listOptions.Page = response.NextPage
	}
}

// CreateReview submits a review on a pull request.
func (client *Client) CreateReview(executionContext context.Context, number int, event ReviewEvent, body string) error {
	reviewRequest := &github.PullRequestReviewRequest{Event: github.String(string(event))}
	if len(strings.TrimSpace(body)) > 0 {
		reviewRequest.Body = github.String(body)
	}
	if _, _, requestError := client.rest.PullRequests.CreateReview(executionContext, client.owner, client.repository, number, reviewRequest); requestError != nil {
		return RequestError{Operation: createReviewOperationConstant, Cause: requestError}
	}
	return nil
}

// IsApproved reports whether any submitted review approved the pull request.
func (client *Client) IsApproved(executionContext context.Context, number int) (bool, error) {
	reviews, _, requestError := client.rest.PullRequests.ListReviews(executionContext, client.owner, client.repository, number, &github.ListOptions{PerPage: maximumPageSizeConstant})
	if requestError != nil {
		return false, RequestError{Operation: listReviewsOperationConstant, Cause: requestError}
	}
	for _, review := range reviews {
		if strings.EqualFold(review.GetState(), reviewApprovedStateConstant) {
			return true, nil
		}
	}
	return false, nil
}

// MergePullRequest merges a pull request with the requested method.
func (client *Client) MergePullRequest(executionContext context.Context, number int, method MergeMethod) (MergeResult, error) {
	mergeOptions := &github.PullRequestOptions{MergeMethod: string(method)}
	mergeResult, _, requestError := client.rest.PullRequests.Merge(executionContext, client.owner, client.repository, number, emptyCommitMessageConstant, mergeOptions)
	if requestError != nil {
		return MergeResult{}, RequestError{Operation: mergePullRequestOperationConstant, Cause: requestError}
	}
	return MergeResult{Merged: mergeResult.GetMerged(), SHA: mergeResult.GetSHA(), Message: mergeResult.GetMessage()}, nil
}

// DeleteBranch removes a branch reference from the repository.
func (client *Client) DeleteBranch(executionContext context.Context, branchName string) error {
	trimmedBranchName := strings.TrimSpace(branchName)
	if len(trimmedBranchName) == 0 {
		return InvalidInputError{FieldName: headBranchFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if _, requestError := client.rest.Git.DeleteRef(executionContext, client.owner, client.repository, fmt.Sprintf(branchReferenceTemplateConstant, trimmedBranchName)); requestError != nil {
		return RequestError{Operation: deleteBranchOperationConstant, Cause: requestError}
	}
	return nil
}

// FileExists reports whether a file exists on the default branch.
func (client *Client) FileExists(executionContext context.Context, path string) (bool, error) {
	trimmedPath := strings.TrimSpace(path)
	if len(trimmedPath) == 0 {
		return false, InvalidInputError{FieldName: filePathFieldNameConstant, Message: requiredValueMessageConstant}
	}
	_, _, _, requestError := client.rest.Repositories.GetContents(executionContext, client.owner, client.repository, trimmedPath, nil)
	if requestError == nil {
		return true, nil
	}
	if IsNotFound(requestError) {
		return false, nil
	}
	return false, RequestError{Operation: getContentsOperationConstant, Cause: requestError}
}

// CreateFile commits a new file to the default branch.
func (client *Client) CreateFile(executionContext context.Context, path string, commitMessage string, content []byte) error {
	trimmedPath := strings.TrimSpace(path)
	if len(trimmedPath) == 0 {
		return InvalidInputError{FieldName: filePathFieldNameConstant, Message: requiredValueMessageConstant}
	}
	fileOptions := &github.RepositoryContentFileOptions{
		Message: github.String(commitMessage),
		Content: content,
	}
	if _, _, requestError := client.rest.Repositories.CreateFile(executionContext, client.owner, client.repository, trimmedPath, fileOptions); requestError != nil {
		return RequestError{Operation: createFileOperationConstant, Cause: requestError}
	}
	return nil
}

func pageSize(limit int) int {
	if limit > 0 && limit < maximumPageSizeConstant {
		return limit
	}
	return maximumPageSizeConstant
}
