package pullrequests

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/ghflow/internal/githubapi"
)

const (
	defaultApprovalBodyConstant          = "LGTM!"
	reviewSelectionPromptConstant        = "Pull request to review"
	reviewEventPromptConstant            = "Review"
	reviewBodyPromptConstant             = "Review comment"
	reviewConfirmTemplateConstant        = "Submit %s review on pull request #%d?"
	reviewSubmittedTemplateConstant      = "Submitted %s review on pull request #%d\n"
	reviewBodyRequiredMessageConstant    = "a review comment is required unless approving"
	unknownReviewEventTemplateConstant   = "unsupported review event %q (use approve, request-changes or comment)"
	loadPullRequestErrorTemplateConstant = "unable to load pull request #%d: %w"
	createReviewErrorTemplateConstant    = "unable to submit review on pull request #%d: %w"
	approveEventNameConstant             = "approve"
	requestChangesEventNameConstant      = "request-changes"
	commentEventNameConstant             = "comment"
	approveChoiceConstant                = "Approve"
	requestChangesChoiceConstant         = "Request changes"
	commentChoiceConstant                = "Comment"
)

// ErrReviewBodyRequired indicates a change request or comment was submitted without text.
var ErrReviewBodyRequired = errors.New(reviewBodyRequiredMessageConstant)

var reviewChoices = []struct {
	label string
	event githubapi.ReviewEvent
}{
	{label: approveChoiceConstant, event: githubapi.ReviewEventApprove},
	{label: requestChangesChoiceConstant, event: githubapi.ReviewEventRequestChanges},
	{label: commentChoiceConstant, event: githubapi.ReviewEventComment},
}

// ReviewOptions describe a review. A zero number offers the open pull requests.
type ReviewOptions struct {
	Number           int
	Event            string
	Body             string
	SkipConfirmation bool
}

// ParseReviewEvent maps approve, request-changes, and comment onto review events.
func ParseReviewEvent(value string) (githubapi.ReviewEvent, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case approveEventNameConstant:
		return githubapi.ReviewEventApprove, nil
	case requestChangesEventNameConstant, strings.ToLower(string(githubapi.ReviewEventRequestChanges)):
		return githubapi.ReviewEventRequestChanges, nil
	case commentEventNameConstant:
		return githubapi.ReviewEventComment, nil
	default:
		return "", fmt.Errorf(unknownReviewEventTemplateConstant, value)
	}
}

// Review submits a review on a pull request after confirmation. Approvals default to "LGTM!",
// which interactive runs offer as an editable suggestion.
func (service *Service) Review(executionContext context.Context, options ReviewOptions) error {
	interactive := options.Number <= 0

	pullRequestNumber := options.Number
	if interactive {
		selected, found, selectionError := service.selectOpenPullRequest(executionContext, reviewSelectionPromptConstant)
		if selectionError != nil {
			return selectionError
		}
		if !found {
			return nil
		}
		pullRequestNumber = selected.Number
	} else if _, loadError := service.dependencies.PullRequests.GetPullRequest(executionContext, pullRequestNumber); loadError != nil {
		return fmt.Errorf(loadPullRequestErrorTemplateConstant, pullRequestNumber, loadError)
	}

	event, eventError := service.resolveReviewEvent(options.Event, interactive)
	if eventError != nil {
		return eventError
	}

	body := strings.TrimSpace(options.Body)
	if len(body) == 0 && interactive {
		suggestedBody := ""
		if event == githubapi.ReviewEventApprove {
			suggestedBody = defaultApprovalBodyConstant
		}
		answer, inputError := service.dependencies.Prompter.Input(reviewBodyPromptConstant, suggestedBody)
		if inputError != nil {
			return inputError
		}
		body = strings.TrimSpace(answer)
	}
	if len(body) == 0 {
		if event != githubapi.ReviewEventApprove {
			return ErrReviewBodyRequired
		}
		body = defaultApprovalBodyConstant
	}

	if !options.SkipConfirmation {
		if confirmError := service.confirm(fmt.Sprintf(reviewConfirmTemplateConstant, reviewEventDisplayName(event), pullRequestNumber)); confirmError != nil {
			return confirmError
		}
	}

	if reviewError := service.dependencies.PullRequests.CreateReview(executionContext, pullRequestNumber, event, body); reviewError != nil {
		return fmt.Errorf(createReviewErrorTemplateConstant, pullRequestNumber, reviewError)
	}
	fmt.Fprintf(service.output, reviewSubmittedTemplateConstant, reviewEventDisplayName(event), pullRequestNumber)
	return nil
}

func (service *Service) resolveReviewEvent(requestedEvent string, interactive bool) (githubapi.ReviewEvent, error) {
	if len(strings.TrimSpace(requestedEvent)) > 0 {
		return ParseReviewEvent(requestedEvent)
	}
	if !interactive || service.dependencies.Prompter == nil {
		return githubapi.ReviewEventApprove, nil
	}

	labels := make([]string, 0, len(reviewChoices))
	for _, choice := range reviewChoices {
		labels = append(labels, choice.label)
	}
	selectedIndex, selectError := service.dependencies.Prompter.Select(reviewEventPromptConstant, labels, 0)
	if selectError != nil {
		return "", selectError
	}
	return reviewChoices[selectedIndex].event, nil
}

func reviewEventDisplayName(event githubapi.ReviewEvent) string {
	switch event {
	case githubapi.ReviewEventApprove:
		return approveEventNameConstant
	case githubapi.ReviewEventRequestChanges:
		return requestChangesEventNameConstant
	default:
		return commentEventNameConstant
	}
}
