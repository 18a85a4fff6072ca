package githubapi

import (
	"strings"

	"github.com/google/go-github/v50/github"
)

// IssueState enumerates issue and pull request states accepted by list operations.
type IssueState string

// Issue state enumerations.
const (
	IssueStateOpen   IssueState = IssueState("open")
	IssueStateClosed IssueState = IssueState("closed")
	IssueStateAll    IssueState = IssueState("all")
)

// PullRequestState enumerates the display states of a pull request.
type PullRequestState string

// Pull request state enumerations.
const (
	PullRequestStateOpen   PullRequestState = PullRequestState("open")
	PullRequestStateClosed PullRequestState = PullRequestState("closed")
	PullRequestStateMerged PullRequestState = PullRequestState("merged")
)

// ReviewEvent enumerates the review actions accepted by CreateReview.
type ReviewEvent string

// Review event enumerations.
const (
	ReviewEventApprove        ReviewEvent = ReviewEvent("APPROVE")
	ReviewEventRequestChanges ReviewEvent = ReviewEvent("REQUEST_CHANGES")
	ReviewEventComment        ReviewEvent = ReviewEvent("COMMENT")
)

// MergeMethod enumerates the merge strategies accepted by MergePullRequest.
type MergeMethod string

// Merge method enumerations.
const (
	MergeMethodMerge  MergeMethod = MergeMethod("merge")
	MergeMethodSquash MergeMethod = MergeMethod("squash")
	MergeMethodRebase MergeMethod = MergeMethod("rebase")
)

// Label describes a repository label.
type Label struct {
	Name        string
	Color       string
	Description string
}

// Issue describes a repository issue.
type Issue struct {
	Number    int
	NodeID    string
	Title     string
	Body      string
	State     string
	Labels    []string
	Assignees []string
	Author    string
	URL       string
}

// PullRequest describes a repository pull request.
type PullRequest struct {
	Number     int
	NodeID     string
	Title      string
	Body       string
	State      PullRequestState
	HeadBranch string
	BaseBranch string
	Draft      bool
	Mergeable  bool
	Author     string
	URL        string
}

// Repository describes the repository the client is bound to.
type Repository struct {
	Owner         string
	OwnerType     string
	Name          string
	NodeID        string
	DefaultBranch string
	URL           string
}

// MergeResult reports the outcome of MergePullRequest.
type MergeResult struct {
	Merged  bool
	SHA     string
	Message string
}

// IssueRequest describes a new issue.
type IssueRequest struct {
	Title     string
	Body      string
	Labels    []string
	Assignees []string
}

// PullRequestRequest describes a new pull request.
type PullRequestRequest struct {
	Title string
	Body  string
	Head  string
	Base  string
	Draft bool
}

// ListOptions bounds list operations. A zero Limit lists every page.
type ListOptions struct {
	State  IssueState
	Labels []string
	Limit  int
}

func labelFromGitHub(label *github.Label) Label {
	return Label{
		Name:        label.GetName(),
		Color:       label.GetColor(),
		Description: label.GetDescription(),
	}
}

func issueFromGitHub(issue *github.Issue) Issue {
	labelNames := make([]string, 0, len(issue.Labels))
	for _, label := range issue.Labels {
		labelNames = append(labelNames, label.GetName())
	}

	assigneeLogins := make([]string, 0, len(issue.Assignees))
	for _, assignee := range issue.Assignees {
		assigneeLogins = append(assigneeLogins, assignee.GetLogin())
	}

	return Issue{
		Number:    issue.GetNumber(),
		NodeID:    issue.GetNodeID(),
		Title:     issue.GetTitle(),
		Body:      issue.GetBody(),
		State:     issue.GetState(),
		Labels:    labelNames,
		Assignees: assigneeLogins,
		Author:    issue.GetUser().GetLogin(),
		URL:       issue.GetHTMLURL(),
	}
}

func pullRequestFromGitHub(pullRequest *github.PullRequest) PullRequest {
	state := PullRequestState(strings.ToLower(pullRequest.GetState()))
	if pullRequest.GetMerged() || pullRequest.MergedAt != nil {
		state = PullRequestStateMerged
	}

	return PullRequest{
		Number:     pullRequest.GetNumber(),
		NodeID:     pullRequest.GetNodeID(),
		Title:      pullRequest.GetTitle(),
		Body:       pullRequest.GetBody(),
		State:      state,
		HeadBranch: pullRequest.GetHead().GetRef(),
		BaseBranch: pullRequest.GetBase().GetRef(),
		Draft:      pullRequest.GetDraft(),
		Mergeable:  pullRequest.GetMergeable(),
		Author:     pullRequest.GetUser().GetLogin(),
		URL:        pullRequest.GetHTMLURL(),
	}
}
