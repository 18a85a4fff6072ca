package issues

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/ghflow/internal/config"
	"github.com/temirov/ghflow/internal/githubapi"
	"github.com/temirov/ghflow/internal/prompt"
	"github.com/temirov/ghflow/internal/ui"
)

const (
	typeLabelCategoryConstant           = "type"
	typeLabelPrefixConstant             = "type:"
	labelCategorySeparatorConstant      = ":"
	issueTitlePromptConstant            = "Issue title"
	issueTypePromptConstant             = "Issue type"
	issueBodyPromptConstant             = "Description (optional)"
	issueSelectionPromptConstant        = "Issue to close"
	issueSelectionEntryTemplateConstant = "#%d %s"
	closeConfirmationTemplateConstant   = "Close issue #%d?"
	issueCreatedTemplateConstant        = "Created issue #%d: %s\n"
	issueClosedTemplateConstant         = "Closed issue #%d\n"
	commentAddedTemplateConstant        = "Commented on issue #%d\n"
	noOpenIssuesMessageConstant         = "No open issues found.\n"
	issueListTitleTemplateConstant      = "Issues (%s)"
	issueListEmptyNounConstant          = "issues"
	listJoinSeparatorConstant           = ", "
	createIssueErrorTemplateConstant    = "unable to create issue: %w"
	closeIssueErrorTemplateConstant     = "unable to close issue #%d: %w"
	commentErrorTemplateConstant        = "unable to comment on issue #%d: %w"
	listIssuesErrorTemplateConstant     = "unable to list issues: %w"
	getIssueErrorTemplateConstant       = "unable to load issue #%d: %w"
	gatewayMissingMessageConstant       = "issue gateway not configured"
	prompterMissingMessageConstant      = "prompter not configured"
	issueCreatedLogMessageConstant      = "issue created"
	issueClosedLogMessageConstant       = "issue closed"
	logFieldNumberConstant              = "number"
	logFieldURLConstant                 = "url"
	closeSelectionLimitConstant         = 30
	defaultListLimitConstant            = 30
)

var (
	// ErrIssueGatewayNotConfigured indicates the service was constructed without a REST gateway.
	ErrIssueGatewayNotConfigured = errors.New(gatewayMissingMessageConstant)
	// ErrPrompterNotConfigured indicates an interactive step ran without a prompter.
	ErrPrompterNotConfigured = errors.New(prompterMissingMessageConstant)

	defaultTypeLabels = []string{"type:feature", "type:bug"}
	issueListHeaders  = []string{"#", "Title", "Labels", "Assignees", "Author"}
)

// CreateOptions describes the issue to open. An empty title switches to interactive prompts.
type CreateOptions struct {
	Title     string
	Body      string
	Type      string
	Labels    []string
	Assignees []string
}

// CloseOptions identifies the issue to close. A zero number offers a selection of open issues.
type CloseOptions struct {
	Number           int
	Comment          string
	SkipConfirmation bool
}

// ListOptions filters the issue listing.
type ListOptions struct {
	State  githubapi.IssueState
	Labels []string
	Limit  int
}

// Service runs the issue workflows.
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
	if output == nil {
		output = io.Discard
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{dependencies: dependencies, output: output, logger: logger}, nil
}

// Create opens an issue and places it in the Backlog column.
func (service *Service) Create(executionContext context.Context, options CreateOptions) (githubapi.Issue, error) {
	request, gatherError := service.gatherCreateRequest(options)
	if gatherError != nil {
		return githubapi.Issue{}, gatherError
	}

	issue, createError := service.dependencies.Issues.CreateIssue(executionContext, request)
	if createError != nil {
		return githubapi.Issue{}, fmt.Errorf(createIssueErrorTemplateConstant, createError)
	}

	fmt.Fprintf(service.output, issueCreatedTemplateConstant, issue.Number, issue.URL)
	service.logger.Info(issueCreatedLogMessageConstant, zap.Int(logFieldNumberConstant, issue.Number), zap.String(logFieldURLConstant, issue.URL))
	service.cascade(executionContext, issue.NodeID, config.StatusBacklog)
	return issue, nil
}

// Close closes an issue, optionally leaving a comment, and moves it to Done.
func (service *Service) Close(executionContext context.Context, options CloseOptions) error {
	issue, found, selectionError := service.resolveIssueToClose(executionContext, options.Number)
	if selectionError != nil {
		return selectionError
	}
	if !found {
		fmt.Fprint(service.output, noOpenIssuesMessageConstant)
		return nil
	}

	if !options.SkipConfirmation {
		if service.dependencies.Prompter == nil {
			return ErrPrompterNotConfigured
		}
		confirmed, confirmError := service.dependencies.Prompter.Confirm(fmt.Sprintf(closeConfirmationTemplateConstant, issue.Number), true)
		if confirmError != nil {
			return confirmError
		}
		if !confirmed {
			return prompt.ErrCancelled
		}
	}

	if comment := strings.TrimSpace(options.Comment); len(comment) > 0 {
		if commentError := service.dependencies.Issues.AddComment(executionContext, issue.Number, comment); commentError != nil {
			return fmt.Errorf(commentErrorTemplateConstant, issue.Number, commentError)
		}
		fmt.Fprintf(service.output, commentAddedTemplateConstant, issue.Number)
	}

	if closeError := service.dependencies.Issues.CloseIssue(executionContext, issue.Number); closeError != nil {
		return fmt.Errorf(closeIssueErrorTemplateConstant, issue.Number, closeError)
	}

	fmt.Fprintf(service.output, issueClosedTemplateConstant, issue.Number)
	service.logger.Info(issueClosedLogMessageConstant, zap.Int(logFieldNumberConstant, issue.Number))
	service.cascade(executionContext, issue.NodeID, config.StatusDone)
	return nil
}

// List prints issues matching the filter as a table.
func (service *Service) List(executionContext context.Context, options ListOptions) ([]githubapi.Issue, error) {
	state := options.State
	if len(state) == 0 {
		state = githubapi.IssueStateOpen
	}
	limit := options.Limit
	if limit <= 0 {
		limit = defaultListLimitConstant
	}

	issues, listError := service.dependencies.Issues.ListIssues(executionContext, githubapi.ListOptions{State: state, Labels: options.Labels, Limit: limit})
	if listError != nil {
		return nil, fmt.Errorf(listIssuesErrorTemplateConstant, listError)
	}

	rows := make([][]string, 0, len(issues))
	for _, issue := range issues {
		rows = append(rows, []string{
			strconv.Itoa(issue.Number),
			issue.Title,
			strings.Join(issue.Labels, listJoinSeparatorConstant),
			strings.Join(issue.Assignees, listJoinSeparatorConstant),
			issue.Author,
		})
	}
	ui.WriteTable(service.output, ui.Table{
		Title:   fmt.Sprintf(issueListTitleTemplateConstant, state),
		Headers: issueListHeaders,
		Rows:    rows,
	}, issueListEmptyNounConstant)
	return issues, nil
}

// TypeLabel converts an issue type such as "Bug" into its label, "type:bug".
// Values that already carry a category are returned unchanged.
func TypeLabel(issueType string) string {
	trimmedType := strings.TrimSpace(issueType)
	if len(trimmedType) == 0 {
		return ""
	}
	if strings.Contains(trimmedType, labelCategorySeparatorConstant) {
		return trimmedType
	}
	return typeLabelPrefixConstant + strings.ToLower(trimmedType)
}

// TypeChoices lists the issue types offered interactively, derived from the configured type labels.
func TypeChoices(configuration config.Configuration) []string {
	typeLabels := configuration.Labels[typeLabelCategoryConstant]
	if len(typeLabels) == 0 {
		typeLabels = defaultTypeLabels
	}
	choices := make([]string, 0, len(typeLabels))
	for _, typeLabel := range typeLabels {
		typeName := strings.TrimPrefix(typeLabel, typeLabelPrefixConstant)
		if len(typeName) == 0 {
			continue
		}
		choices = append(choices, strings.ToUpper(typeName[:1])+typeName[1:])
	}
	return choices
}

func (service *Service) gatherCreateRequest(options CreateOptions) (githubapi.IssueRequest, error) {
	request := githubapi.IssueRequest{
		Title:     strings.TrimSpace(options.Title),
		Body:      options.Body,
		Labels:    append([]string{}, options.Labels...),
		Assignees: append([]string{}, options.Assignees...),
	}
	if typeLabel := TypeLabel(options.Type); len(typeLabel) > 0 {
		request.Labels = append(request.Labels, typeLabel)
	}
	if len(request.Title) > 0 {
		request.Labels = uniqueLabels(request.Labels)
		return request, nil
	}

	prompter := service.dependencies.Prompter
	if prompter == nil {
		return githubapi.IssueRequest{}, ErrPrompterNotConfigured
	}

	title, titleError := prompter.Input(issueTitlePromptConstant, "")
	if titleError != nil {
		return githubapi.IssueRequest{}, titleError
	}
	request.Title = strings.TrimSpace(title)
	if len(request.Title) == 0 {
		return githubapi.IssueRequest{}, prompt.ErrCancelled
	}

	if len(options.Type) == 0 {
		choices := TypeChoices(service.dependencies.Configuration)
		if len(choices) > 0 {
			selectedIndex, selectError := prompter.Select(issueTypePromptConstant, choices, 0)
			if selectError != nil {
				return githubapi.IssueRequest{}, selectError
			}
			request.Labels = append(request.Labels, TypeLabel(choices[selectedIndex]))
		}
	}

	if len(strings.TrimSpace(request.Body)) == 0 {
		body, bodyError := prompter.Input(issueBodyPromptConstant, "")
		if bodyError != nil {
			return githubapi.IssueRequest{}, bodyError
		}
		request.Body = body
	}

	request.Labels = uniqueLabels(request.Labels)
	return request, nil
}

func (service *Service) resolveIssueToClose(executionContext context.Context, number int) (githubapi.Issue, bool, error) {
	if number > 0 {
		issue, getError := service.dependencies.Issues.GetIssue(executionContext, number)
		if getError != nil {
			return githubapi.Issue{}, false, fmt.Errorf(getIssueErrorTemplateConstant, number, getError)
		}
		return issue, true, nil
	}

	openIssues, listError := service.dependencies.Issues.ListIssues(executionContext, githubapi.ListOptions{State: githubapi.IssueStateOpen, Limit: closeSelectionLimitConstant})
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

func (service *Service) cascade(executionContext context.Context, contentID string, statusName string) {
	if service.dependencies.Cascade == nil {
		return
	}
	service.dependencies.Cascade.Apply(executionContext, contentID, statusName)
}

func uniqueLabels(labels []string) []string {
	seen := make(map[string]struct{}, len(labels))
	unique := make([]string, 0, len(labels))
	for _, label := range labels {
		trimmedLabel := strings.TrimSpace(label)
		if len(trimmedLabel) == 0 {
			continue
		}
		key := strings.ToLower(trimmedLabel)
		if _, duplicate := seen[key]; duplicate {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, trimmedLabel)
	}
	return unique
}
