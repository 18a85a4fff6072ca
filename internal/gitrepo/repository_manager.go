package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/temirov/ghflow/internal/execshell"
)

const (
	gitInitSubcommandConstant             = "init"
	gitBranchSubcommandConstant           = "branch"
	gitShowCurrentFlagConstant            = "--show-current"
	gitDiffSubcommandConstant             = "diff"
	gitCachedFlagConstant                 = "--cached"
	gitQuietFlagConstant                  = "--quiet"
	gitAddSubcommandConstant              = "add"
	gitAllFlagConstant                    = "--all"
	gitCommitSubcommandConstant           = "commit"
	gitMessageFlagConstant                = "-m"
	gitCheckoutSubcommandConstant         = "checkout"
	gitCreateBranchFlagConstant           = "-b"
	gitPushSubcommandConstant             = "push"
	gitSetUpstreamFlagConstant            = "-u"
	gitPullSubcommandConstant             = "pull"
	gitRevParseSubcommandConstant         = "rev-parse"
	gitPathFlagConstant                   = "--git-path"
	gitHooksPathConstant                  = "hooks"
	gitInsideWorkTreeFlagConstant         = "--is-inside-work-tree"
	gitLogSubcommandConstant              = "log"
	gitSingleEntryFlagConstant            = "-1"
	gitSubjectFormatFlagConstant          = "--format=%s"
	gitRemoteSubcommandConstant           = "remote"
	gitGetURLSubcommandConstant           = "get-url"
	gitTrueOutputConstant                 = "true"
	stagedChangesExitCodeConstant         = 1
	executorNotConfiguredMessageConstant  = "git executor not configured"
	branchNameRequiredMessageConstant     = "branch name required"
	commitMessageRequiredMessageConstant  = "commit message required"
	remoteNameRequiredMessageConstant     = "remote name required"
	gitOperationErrorTemplateConstant     = "git %s failed: %w"
	remoteResolutionErrorTemplateConstant = "unable to resolve remote %s: %w"
	currentBranchOperationNameConstant    = "branch --show-current"
)

var (
	// ErrGitExecutorNotConfigured indicates the manager was constructed without an executor.
	ErrGitExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
	// ErrBranchNameRequired indicates an empty branch name was supplied.
	ErrBranchNameRequired = errors.New(branchNameRequiredMessageConstant)
	// ErrCommitMessageRequired indicates an empty commit message was supplied.
	ErrCommitMessageRequired = errors.New(commitMessageRequiredMessageConstant)
	// ErrRemoteNameRequired indicates an empty remote name was supplied.
	ErrRemoteNameRequired = errors.New(remoteNameRequiredMessageConstant)
)

// GitExecutor is the subset of execshell.ShellExecutor used for git invocations.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// RepositoryManager runs git subcommands against a single working directory.
type RepositoryManager struct {
	executor         GitExecutor
	workingDirectory string
}

// NewRepositoryManager constructs a RepositoryManager. An empty working
// directory runs git in the process working directory.
func NewRepositoryManager(executor GitExecutor, workingDirectory string) (*RepositoryManager, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	return &RepositoryManager{executor: executor, workingDirectory: strings.TrimSpace(workingDirectory)}, nil
}

// WorkingDirectory returns the directory git commands run in.
func (manager *RepositoryManager) WorkingDirectory() string {
	return manager.workingDirectory
}

// Init initializes a new repository in the working directory.
func (manager *RepositoryManager) Init(executionContext context.Context) error {
	_, executionError := manager.run(executionContext, gitInitSubcommandConstant)
	return manager.wrap(gitInitSubcommandConstant, executionError)
}

// IsInsideWorkTree reports whether the working directory belongs to a git work tree.
func (manager *RepositoryManager) IsInsideWorkTree(executionContext context.Context) bool {
	executionResult, executionError := manager.run(executionContext, gitRevParseSubcommandConstant, gitInsideWorkTreeFlagConstant)
	if executionError != nil {
		return false
	}
	return strings.TrimSpace(executionResult.StandardOutput) == gitTrueOutputConstant
}

// CurrentBranch returns the checked-out branch name. Detached HEAD yields an empty string.
func (manager *RepositoryManager) CurrentBranch(executionContext context.Context) (string, error) {
	executionResult, executionError := manager.run(executionContext, gitBranchSubcommandConstant, gitShowCurrentFlagConstant)
	if executionError != nil {
		return "", manager.wrap(currentBranchOperationNameConstant, executionError)
	}
	return strings.TrimSpace(executionResult.StandardOutput), nil
}

// HasStagedChanges reports whether the index differs from HEAD.
// git diff --cached --quiet exits with code 1 when staged changes exist.
func (manager *RepositoryManager) HasStagedChanges(executionContext context.Context) (bool, error) {
	_, executionError := manager.run(executionContext, gitDiffSubcommandConstant, gitCachedFlagConstant, gitQuietFlagConstant)
	if executionError == nil {
		return false, nil
	}

	var failedError execshell.CommandFailedError
	if errors.As(executionError, &failedError) && failedError.Result.ExitCode == stagedChangesExitCodeConstant {
		return true, nil
	}
	return false, manager.wrap(gitDiffSubcommandConstant, executionError)
}

// StageAll stages every change in the working tree.
func (manager *RepositoryManager) StageAll(executionContext context.Context) error {
	_, executionError := manager.run(executionContext, gitAddSubcommandConstant, gitAllFlagConstant)
	return manager.wrap(gitAddSubcommandConstant, executionError)
}

// Commit records the staged changes with the provided message.
func (manager *RepositoryManager) Commit(executionContext context.Context, message string) error {
	if len(strings.TrimSpace(message)) == 0 {
		return ErrCommitMessageRequired
	}
	_, executionError := manager.run(executionContext, gitCommitSubcommandConstant, gitMessageFlagConstant, message)
	return manager.wrap(gitCommitSubcommandConstant, executionError)
}

// CreateBranch creates and checks out a new branch.
func (manager *RepositoryManager) CreateBranch(executionContext context.Context, branchName string) error {
	trimmedBranchName := strings.TrimSpace(branchName)
	if len(trimmedBranchName) == 0 {
		return ErrBranchNameRequired
	}
	_, executionError := manager.run(executionContext, gitCheckoutSubcommandConstant, gitCreateBranchFlagConstant, trimmedBranchName)
	return manager.wrap(gitCheckoutSubcommandConstant, executionError)
}

// Checkout switches to an existing branch.
func (manager *RepositoryManager) Checkout(executionContext context.Context, branchName string) error {
	trimmedBranchName := strings.TrimSpace(branchName)
	if len(trimmedBranchName) == 0 {
		return ErrBranchNameRequired
	}
	_, executionError := manager.run(executionContext, gitCheckoutSubcommandConstant, trimmedBranchName)
	return manager.wrap(gitCheckoutSubcommandConstant, executionError)
}

// Push publishes a branch to the remote and records it as upstream.
func (manager *RepositoryManager) Push(executionContext context.Context, remoteName string, branchName string) error {
	trimmedRemoteName := strings.TrimSpace(remoteName)
	if len(trimmedRemoteName) == 0 {
		return ErrRemoteNameRequired
	}
	trimmedBranchName := strings.TrimSpace(branchName)
	if len(trimmedBranchName) == 0 {
		return ErrBranchNameRequired
	}
	_, executionError := manager.run(executionContext, gitPushSubcommandConstant, gitSetUpstreamFlagConstant, trimmedRemoteName, trimmedBranchName)
	return manager.wrap(gitPushSubcommandConstant, executionError)
}

// Pull fetches and integrates the upstream of the current branch.
func (manager *RepositoryManager) Pull(executionContext context.Context) error {
	_, executionError := manager.run(executionContext, gitPullSubcommandConstant)
	return manager.wrap(gitPullSubcommandConstant, executionError)
}

// HooksDirectory resolves the hooks directory, honoring core.hooksPath and worktrees.
func (manager *RepositoryManager) HooksDirectory(executionContext context.Context) (string, error) {
	executionResult, executionError := manager.run(executionContext, gitRevParseSubcommandConstant, gitPathFlagConstant, gitHooksPathConstant)
	if executionError != nil {
		return "", manager.wrap(gitRevParseSubcommandConstant, executionError)
	}

	hooksDirectory := strings.TrimSpace(executionResult.StandardOutput)
	if !filepath.IsAbs(hooksDirectory) && len(manager.workingDirectory) > 0 {
		hooksDirectory = filepath.Join(manager.workingDirectory, hooksDirectory)
	}
	return hooksDirectory, nil
}

// LastCommitSubject returns the subject line of the most recent commit.
func (manager *RepositoryManager) LastCommitSubject(executionContext context.Context) (string, error) {
	executionResult, executionError := manager.run(executionContext, gitLogSubcommandConstant, gitSingleEntryFlagConstant, gitSubjectFormatFlagConstant)
	if executionError != nil {
		return "", manager.wrap(gitLogSubcommandConstant, executionError)
	}
	return strings.TrimSpace(executionResult.StandardOutput), nil
}

// RemoteURL returns the configured URL of the named remote.
func (manager *RepositoryManager) RemoteURL(executionContext context.Context, remoteName string) (string, error) {
	trimmedRemoteName := strings.TrimSpace(remoteName)
	if len(trimmedRemoteName) == 0 {
		return "", ErrRemoteNameRequired
	}
	executionResult, executionError := manager.run(executionContext, gitRemoteSubcommandConstant, gitGetURLSubcommandConstant, trimmedRemoteName)
	if executionError != nil {
		return "", fmt.Errorf(remoteResolutionErrorTemplateConstant, trimmedRemoteName, executionError)
	}
	return strings.TrimSpace(executionResult.StandardOutput), nil
}

// ResolveRemote parses the named remote into an owner/repository pair.
func (manager *RepositoryManager) ResolveRemote(executionContext context.Context, remoteName string) (RemoteURL, error) {
	remoteAddress, addressError := manager.RemoteURL(executionContext, remoteName)
	if addressError != nil {
		return RemoteURL{}, addressError
	}
	return ParseRemoteURL(remoteAddress)
}

func (manager *RepositoryManager) run(executionContext context.Context, arguments ...string) (execshell.ExecutionResult, error) {
	return manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        arguments,
		WorkingDirectory: manager.workingDirectory,
	})
}

func (manager *RepositoryManager) wrap(operation string, executionError error) error {
	if executionError == nil {
		return nil
	}
	return fmt.Errorf(gitOperationErrorTemplateConstant, operation, executionError)
}
