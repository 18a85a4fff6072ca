package commits

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/ghflow/internal/conventions"
	"github.com/temirov/ghflow/internal/filesystem"
	"github.com/temirov/ghflow/internal/prompt"
)

const (
	defaultCommitTypeConstant             = "feat"
	defaultRemoteNameConstant             = "origin"
	defaultCommitFormatConstant           = "{type}({scope}): {subject} #{issue}"
	commitTypePromptConstant              = "Commit type"
	commitScopePromptConstant             = "Scope (optional)"
	commitSubjectPromptConstant           = "Subject"
	commitIssuePromptConstant             = "Issue number (optional)"
	stageAllPromptConstant                = "No staged changes. Stage all changes?"
	commitConfirmationPromptConstant      = "Create this commit?"
	commitPreviewTemplateConstant         = "Commit message: %s\n"
	commitCreatedTemplateConstant         = "Committed: %s\n"
	branchPushedTemplateConstant          = "Pushed %s to %s\n"
	repositoryMissingMessageConstant      = "git repository not configured"
	prompterMissingMessageConstant        = "prompter not configured"
	nothingStagedMessageConstant          = "no staged changes; stage files or pass --all"
	issueReferenceRequiredMessageConstant = "an issue reference is required; pass --issue or work on an issue branch"
	disallowedTypeTemplateConstant        = "commit type %q is not one of %s"
	invalidIssueTemplateConstant          = "issue %q is not a number"
	branchIssueErrorTemplateConstant      = "branch %q does not reference an issue (pattern %s)"
	allowedTypesSeparatorConstant         = ", "
	stagedCheckErrorTemplateConstant      = "unable to inspect staged changes: %w"
	stageAllErrorTemplateConstant         = "unable to stage changes: %w"
	commitErrorTemplateConstant           = "unable to commit: %w"
	currentBranchErrorTemplateConstant    = "unable to determine current branch: %w"
	pushErrorTemplateConstant             = "unable to push branch %s: %w"
	readMessageErrorTemplateConstant      = "unable to read commit message %s: %w"
	commitCreatedLogMessageConstant       = "commit created"
	branchCheckSkippedLogMessageConstant  = "branch issue check skipped"
	branchCheckPassedLogMessageConstant   = "branch issue check passed"
	logFieldMessageConstant               = "message"
	logFieldBranchConstant                = "branch"
	issueNumberPrefixConstant             = "#"
)

var (
	// ErrRepositoryNotConfigured indicates the service was constructed without a git repository.
	ErrRepositoryNotConfigured = errors.New(repositoryMissingMessageConstant)
	// ErrPrompterNotConfigured indicates an interactive commit ran without a prompter.
	ErrPrompterNotConfigured = errors.New(prompterMissingMessageConstant)
	// ErrNothingStaged indicates a non-interactive commit found no staged changes.
	ErrNothingStaged = errors.New(nothingStagedMessageConstant)
	// ErrIssueReferenceRequired indicates enforce_issue_link is set and no issue could be determined.
	ErrIssueReferenceRequired = errors.New(issueReferenceRequiredMessageConstant)
)

// BranchIssueError reports a branch whose name carries no issue number.
type BranchIssueError struct {
	Branch  string
	Pattern string
}

// Error describes the branch and the expected pattern.
func (branchError BranchIssueError) Error() string {
	return fmt.Sprintf(branchIssueErrorTemplateConstant, branchError.Branch, branchError.Pattern)
}

// CommitOptions carry the commit parts. An empty subject switches to interactive prompts.
type CommitOptions struct {
	Type             string
	Scope            string
	Subject          string
	Issue            string
	StageAll         bool
	Push             bool
	SkipConfirmation bool
}

// Service runs the commit workflow and the hook checks.
type Service struct {
	dependencies Dependencies
	fileSystem   filesystem.FileSystem
	output       io.Writer
	logger       *zap.Logger
}

// NewService validates dependencies and constructs a Service writing to output.
func NewService(dependencies Dependencies, output io.Writer) (*Service, error) {
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

// Commit composes the message from the configured format and records the staged changes.
// It returns the commit message.
func (service *Service) Commit(executionContext context.Context, options CommitOptions) (string, error) {
	interactive := len(strings.TrimSpace(options.Subject)) == 0
	if interactive && service.dependencies.Prompter == nil {
		return "", ErrPrompterNotConfigured
	}

	if stageError := service.ensureStagedChanges(executionContext, options, interactive); stageError != nil {
		return "", stageError
	}

	parts, partsError := service.gatherParts(executionContext, options, interactive)
	if partsError != nil {
		return "", partsError
	}

	commitFormat := service.dependencies.Configuration.CommitAssistant.CommitFormat
	if len(strings.TrimSpace(commitFormat)) == 0 {
		commitFormat = defaultCommitFormatConstant
	}
	message := conventions.FormatCommitMessage(commitFormat, parts)

	if interactive && !options.SkipConfirmation {
		fmt.Fprintf(service.output, commitPreviewTemplateConstant, message)
		confirmed, confirmError := service.dependencies.Prompter.Confirm(commitConfirmationPromptConstant, true)
		if confirmError != nil {
			return "", confirmError
		}
		if !confirmed {
			return "", prompt.ErrCancelled
		}
	}

	if commitError := service.dependencies.Repository.Commit(executionContext, message); commitError != nil {
		return "", fmt.Errorf(commitErrorTemplateConstant, commitError)
	}
	fmt.Fprintf(service.output, commitCreatedTemplateConstant, message)
	service.logger.Info(commitCreatedLogMessageConstant, zap.String(logFieldMessageConstant, message))

	if options.Push {
		if pushError := service.pushCurrentBranch(executionContext); pushError != nil {
			return message, pushError
		}
	}
	return message, nil
}

// CheckBranch fails when issue links are enforced and the current branch carries no issue number.
func (service *Service) CheckBranch(executionContext context.Context) error {
	commitAssistant := service.dependencies.Configuration.CommitAssistant
	if !commitAssistant.EnforceIssueLink {
		service.logger.Debug(branchCheckSkippedLogMessageConstant)
		return nil
	}

	branchName, branchError := service.dependencies.Repository.CurrentBranch(executionContext)
	if branchError != nil {
		return fmt.Errorf(currentBranchErrorTemplateConstant, branchError)
	}

	extractor, extractorError := conventions.NewIssueExtractor(commitAssistant.IssuePattern())
	if extractorError != nil {
		return extractorError
	}
	if _, found := extractor.Extract(branchName); !found {
		return BranchIssueError{Branch: branchName, Pattern: commitAssistant.IssuePattern()}
	}
	service.logger.Debug(branchCheckPassedLogMessageConstant, zap.String(logFieldBranchConstant, branchName))
	return nil
}

// CheckMessageFile validates the commit message stored at messagePath.
func (service *Service) CheckMessageFile(messagePath string) error {
	content, readError := service.fileSystem.ReadFile(messagePath)
	if readError != nil {
		return fmt.Errorf(readMessageErrorTemplateConstant, messagePath, readError)
	}
	commitAssistant := service.dependencies.Configuration.CommitAssistant
	return conventions.ValidateCommitMessage(string(content), commitAssistant.AllowedTypes, commitAssistant.EnforceIssueLink)
}

func (service *Service) ensureStagedChanges(executionContext context.Context, options CommitOptions, interactive bool) error {
	repository := service.dependencies.Repository
	if options.StageAll {
		if stageError := repository.StageAll(executionContext); stageError != nil {
			return fmt.Errorf(stageAllErrorTemplateConstant, stageError)
		}
		return nil
	}

	staged, stagedError := repository.HasStagedChanges(executionContext)
	if stagedError != nil {
		return fmt.Errorf(stagedCheckErrorTemplateConstant, stagedError)
	}
	if staged {
		return nil
	}

	switch {
	case options.SkipConfirmation:
	case interactive:
		confirmed, confirmError := service.dependencies.Prompter.Confirm(stageAllPromptConstant, true)
		if confirmError != nil {
			return confirmError
		}
		if !confirmed {
			return prompt.ErrCancelled
		}
	default:
		return ErrNothingStaged
	}

	if stageError := repository.StageAll(executionContext); stageError != nil {
		return fmt.Errorf(stageAllErrorTemplateConstant, stageError)
	}
	return nil
}

func (service *Service) gatherParts(executionContext context.Context, options CommitOptions, interactive bool) (conventions.CommitParts, error) {
	commitAssistant := service.dependencies.Configuration.CommitAssistant
	parts := conventions.CommitParts{
		Type:    strings.ToLower(strings.TrimSpace(options.Type)),
		Scope:   strings.TrimSpace(options.Scope),
		Subject: strings.TrimSpace(options.Subject),
	}

	if len(parts.Type) == 0 {
		if interactive && len(commitAssistant.AllowedTypes) > 0 {
			defaultIndex := indexOf(commitAssistant.AllowedTypes, defaultCommitTypeConstant)
			if defaultIndex < 0 {
				defaultIndex = 0
			}
			selectedIndex, selectError := service.dependencies.Prompter.Select(commitTypePromptConstant, commitAssistant.AllowedTypes, defaultIndex)
			if selectError != nil {
				return conventions.CommitParts{}, selectError
			}
			parts.Type = commitAssistant.AllowedTypes[selectedIndex]
		} else {
			parts.Type = defaultCommitTypeConstant
		}
	}
	if len(commitAssistant.AllowedTypes) > 0 && indexOf(commitAssistant.AllowedTypes, parts.Type) < 0 {
		return conventions.CommitParts{}, fmt.Errorf(disallowedTypeTemplateConstant, parts.Type, strings.Join(commitAssistant.AllowedTypes, allowedTypesSeparatorConstant))
	}

	if interactive {
		scope, scopeError := service.dependencies.Prompter.Input(commitScopePromptConstant, parts.Scope)
		if scopeError != nil {
			return conventions.CommitParts{}, scopeError
		}
		parts.Scope = strings.TrimSpace(scope)

		subject, subjectError := service.dependencies.Prompter.Input(commitSubjectPromptConstant, "")
		if subjectError != nil {
			return conventions.CommitParts{}, subjectError
		}
		parts.Subject = strings.TrimSpace(subject)
		if len(parts.Subject) == 0 {
			return conventions.CommitParts{}, prompt.ErrCancelled
		}
	}
	if subjectError := conventions.ValidateSubject(parts.Subject); subjectError != nil {
		return conventions.CommitParts{}, subjectError
	}

	issue, issueError := service.resolveIssue(executionContext, options.Issue, interactive)
	if issueError != nil {
		return conventions.CommitParts{}, issueError
	}
	parts.Issue = issue
	return parts, nil
}

func (service *Service) resolveIssue(executionContext context.Context, requestedIssue string, interactive bool) (string, error) {
	commitAssistant := service.dependencies.Configuration.CommitAssistant
	issue := strings.TrimPrefix(strings.TrimSpace(requestedIssue), issueNumberPrefixConstant)

	if len(issue) == 0 {
		branchName, branchError := service.dependencies.Repository.CurrentBranch(executionContext)
		if branchError == nil {
			extractor, extractorError := conventions.NewIssueExtractor(commitAssistant.IssuePattern())
			if extractorError != nil {
				return "", extractorError
			}
			if branchIssue, found := extractor.Extract(branchName); found {
				issue = branchIssue
			}
		}
	}

	if len(issue) == 0 && interactive {
		answer, inputError := service.dependencies.Prompter.Input(commitIssuePromptConstant, "")
		if inputError != nil {
			return "", inputError
		}
		issue = strings.TrimPrefix(strings.TrimSpace(answer), issueNumberPrefixConstant)
	}

	if len(issue) == 0 {
		if commitAssistant.EnforceIssueLink {
			return "", ErrIssueReferenceRequired
		}
		return "", nil
	}
	if _, parseError := strconv.Atoi(issue); parseError != nil {
		return "", fmt.Errorf(invalidIssueTemplateConstant, issue)
	}
	return issue, nil
}

func (service *Service) pushCurrentBranch(executionContext context.Context) error {
	branchName, branchError := service.dependencies.Repository.CurrentBranch(executionContext)
	if branchError != nil {
		return fmt.Errorf(currentBranchErrorTemplateConstant, branchError)
	}
	remoteName := strings.TrimSpace(service.dependencies.Configuration.Remote)
	if len(remoteName) == 0 {
		remoteName = defaultRemoteNameConstant
	}
	if pushError := service.dependencies.Repository.Push(executionContext, remoteName, branchName); pushError != nil {
		return fmt.Errorf(pushErrorTemplateConstant, branchName, pushError)
	}
	fmt.Fprintf(service.output, branchPushedTemplateConstant, branchName, remoteName)
	return nil
}

func indexOf(values []string, candidate string) int {
	for valueIndex, value := range values {
		if strings.EqualFold(value, candidate) {
			return valueIndex
		}
	}
	return -1
}
