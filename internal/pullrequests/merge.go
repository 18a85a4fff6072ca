package pullrequests

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/ghflow/internal/config"
	"github.com/temirov/ghflow/internal/conventions"
	"github.com/temirov/ghflow/internal/githubapi"
	"github.com/temirov/ghflow/internal/prompt"
	"github.com/temirov/ghflow/internal/ui"
)

const (
	mergeSelectionPromptConstant        = "Pull request to merge"
	mergeMethodPromptConstant           = "Merge method"
	mergeAnywayPromptConstant           = "Pull request is not approved. Merge anyway?"
	notMergeablePromptConstant          = "Pull request is not mergeable. Continue anyway?"
	mergeConfirmTemplateConstant        = "Merge pull request #%d into %s?"
	deleteBranchPromptTemplateConstant  = "Delete branch %s?"
	mergeSummaryTitleConstant           = "Merge"
	mergedTemplateConstant              = "Merged pull request #%d\n"
	switchedBranchTemplateConstant      = "Switched to %s and pulled latest changes\n"
	deletedBranchTemplateConstant       = "Deleted branch %s\n"
	unknownMergeMethodTemplateConstant  = "unsupported merge method %q (use squash, merge or rebase)"
	notMergedTemplateConstant           = "pull request #%d was not merged: %s"
	pullRequestNotOpenTemplateConstant  = "pull request #%d is %s"
	approvalErrorTemplateConstant       = "unable to read reviews of pull request #%d: %w"
	mergeErrorTemplateConstant          = "unable to merge pull request #%d: %w"
	checkoutErrorTemplateConstant       = "unable to switch to %s: %w"
	pullErrorTemplateConstant           = "unable to pull %s: %w"
	deleteBranchErrorTemplateConstant   = "unable to delete branch %s: %w"
	pullRequestMergedLogMessageConstant = "pull request merged"
	logFieldMethodConstant              = "method"
	yesLabelConstant                    = "yes"
	noLabelConstant                     = "no"
)

var (
	mergeSummaryHeaders = []string{"#", "Title", "Head", "Base", "Approved", "Mergeable"}
	mergeMethodChoices  = []githubapi.MergeMethod{githubapi.MergeMethodSquash, githubapi.MergeMethodMerge, githubapi.MergeMethodRebase}
)

// MergeOptions describe a merge. A zero number offers the open pull requests.
type MergeOptions struct {
	Number           int
	Method           string
	SkipConfirmation bool
}

// ParseMergeMethod maps squash, merge, and rebase onto merge methods.
func ParseMergeMethod(value string) (githubapi.MergeMethod, error) {
	normalized := githubapi.MergeMethod(strings.ToLower(strings.TrimSpace(value)))
	for _, method := range mergeMethodChoices {
		if method == normalized {
			return method, nil
		}
	}
	return "", fmt.Errorf(unknownMergeMethodTemplateConstant, value)
}

// Merge merges a pull request, moves it and every issue it closes to Done, returns to the base
// branch, and optionally deletes the head branch.
func (service *Service) Merge(executionContext context.Context, options MergeOptions) error {
	interactive := options.Number <= 0

	if interactive {
		selected, found, selectionError := service.selectOpenPullRequest(executionContext, mergeSelectionPromptConstant)
		if selectionError != nil {
			return selectionError
		}
		if !found {
			return nil
		}
		options.Number = selected.Number
	}

	// List results never carry mergeability, so the pull request is always loaded by number.
	pullRequest, loadError := service.dependencies.PullRequests.GetPullRequest(executionContext, options.Number)
	if loadError != nil {
		return fmt.Errorf(loadPullRequestErrorTemplateConstant, options.Number, loadError)
	}
	if pullRequest.State != githubapi.PullRequestStateOpen {
		return fmt.Errorf(pullRequestNotOpenTemplateConstant, pullRequest.Number, pullRequest.State)
	}

	approved, approvalError := service.dependencies.PullRequests.IsApproved(executionContext, pullRequest.Number)
	if approvalError != nil {
		return fmt.Errorf(approvalErrorTemplateConstant, pullRequest.Number, approvalError)
	}
	ui.WriteTable(service.output, ui.Table{
		Title:   mergeSummaryTitleConstant,
		Headers: mergeSummaryHeaders,
		Rows: [][]string{{
			strconv.Itoa(pullRequest.Number),
			pullRequest.Title,
			pullRequest.HeadBranch,
			pullRequest.BaseBranch,
			yesNo(approved),
			yesNo(pullRequest.Mergeable),
		}},
	}, pullRequestListEmptyNounConstant)

	if !options.SkipConfirmation {
		if !approved {
			if confirmError := service.confirm(mergeAnywayPromptConstant); confirmError != nil {
				return confirmError
			}
		}
		if !pullRequest.Mergeable {
			if confirmError := service.confirm(notMergeablePromptConstant); confirmError != nil {
				return confirmError
			}
		}
	}

	method, methodError := service.resolveMergeMethod(options.Method, interactive)
	if methodError != nil {
		return methodError
	}
	if !options.SkipConfirmation {
		if confirmError := service.confirm(fmt.Sprintf(mergeConfirmTemplateConstant, pullRequest.Number, pullRequest.BaseBranch)); confirmError != nil {
			return confirmError
		}
	}

	mergeResult, mergeError := service.dependencies.PullRequests.MergePullRequest(executionContext, pullRequest.Number, method)
	if mergeError != nil {
		return fmt.Errorf(mergeErrorTemplateConstant, pullRequest.Number, mergeError)
	}
	if !mergeResult.Merged {
		return fmt.Errorf(notMergedTemplateConstant, pullRequest.Number, mergeResult.Message)
	}
	fmt.Fprintf(service.output, mergedTemplateConstant, pullRequest.Number)
	service.logger.Info(pullRequestMergedLogMessageConstant, zap.Int(logFieldNumberConstant, pullRequest.Number), zap.String(logFieldMethodConstant, string(method)))

	service.cascade(executionContext, pullRequest.NodeID, config.StatusDone)
	for _, closedIssue := range conventions.ClosingReferences(pullRequest.Body) {
		service.cascadeIssue(executionContext, closedIssue, config.StatusDone)
	}

	repository := service.dependencies.Repository
	if checkoutError := repository.Checkout(executionContext, pullRequest.BaseBranch); checkoutError != nil {
		return fmt.Errorf(checkoutErrorTemplateConstant, pullRequest.BaseBranch, checkoutError)
	}
	if pullError := repository.Pull(executionContext); pullError != nil {
		return fmt.Errorf(pullErrorTemplateConstant, pullRequest.BaseBranch, pullError)
	}
	fmt.Fprintf(service.output, switchedBranchTemplateConstant, pullRequest.BaseBranch)

	if !options.SkipConfirmation {
		if service.dependencies.Prompter == nil {
			return nil
		}
		confirmed, confirmError := service.dependencies.Prompter.Confirm(fmt.Sprintf(deleteBranchPromptTemplateConstant, pullRequest.HeadBranch), true)
		if confirmError != nil {
			if errors.Is(confirmError, prompt.ErrCancelled) {
				return nil
			}
			return confirmError
		}
		if !confirmed {
			return nil
		}
	}
	if deleteError := service.dependencies.PullRequests.DeleteBranch(executionContext, pullRequest.HeadBranch); deleteError != nil {
		return fmt.Errorf(deleteBranchErrorTemplateConstant, pullRequest.HeadBranch, deleteError)
	}
	fmt.Fprintf(service.output, deletedBranchTemplateConstant, pullRequest.HeadBranch)
	return nil
}

func (service *Service) resolveMergeMethod(requestedMethod string, interactive bool) (githubapi.MergeMethod, error) {
	if len(strings.TrimSpace(requestedMethod)) > 0 {
		return ParseMergeMethod(requestedMethod)
	}
	if !interactive || service.dependencies.Prompter == nil {
		return githubapi.MergeMethodSquash, nil
	}

	labels := make([]string, 0, len(mergeMethodChoices))
	for _, method := range mergeMethodChoices {
		labels = append(labels, string(method))
	}
	selectedIndex, selectError := service.dependencies.Prompter.Select(mergeMethodPromptConstant, labels, 0)
	if selectError != nil {
		return "", selectError
	}
	return mergeMethodChoices[selectedIndex], nil
}

func (service *Service) confirm(question string) error {
	if service.dependencies.Prompter == nil {
		return ErrPrompterNotConfigured
	}
	confirmed, confirmError := service.dependencies.Prompter.Confirm(question, false)
	if confirmError != nil {
		return confirmError
	}
	if !confirmed {
		return prompt.ErrCancelled
	}
	return nil
}

func yesNo(value bool) string {
	if value {
		return yesLabelConstant
	}
	return noLabelConstant
}
