package gitrepo_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/ghflow/internal/execshell"
	"github.com/temirov/ghflow/internal/gitrepo"
)

const (
	testWorkingDirectoryConstant = "/workspace/repo"
)

type stubGitExecutor struct {
	executeFunc     func(details execshell.CommandDetails) (execshell.ExecutionResult, error)
	recordedDetails []execshell.CommandDetails
}

func (executor *stubGitExecutor) ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedDetails = append(executor.recordedDetails, details)
	if executor.executeFunc != nil {
		return executor.executeFunc(details)
	}
	return execshell.ExecutionResult{}, nil
}

func failedWithExitCode(exitCode int) error {
	return execshell.CommandFailedError{
		Command: execshell.ShellCommand{Name: execshell.CommandGit},
		Result:  execshell.ExecutionResult{ExitCode: exitCode},
	}
}

func TestNewRepositoryManagerRequiresExecutor(testInstance *testing.T) {
	manager, creationError := gitrepo.NewRepositoryManager(nil, testWorkingDirectoryConstant)
	require.ErrorIs(testInstance, creationError, gitrepo.ErrGitExecutorNotConfigured)
	require.Nil(testInstance, manager)
}

func TestRepositoryManagerHasStagedChanges(testInstance *testing.T) {
	testCases := []struct {
		name          string
		executorError error
		expectStaged  bool
		expectError   bool
	}{
		{
			name:         "clean_index",
			expectStaged: false,
		},
		{
			name:          "staged_changes",
			executorError: failedWithExitCode(1),
			expectStaged:  true,
		},
		{
			name:          "not_a_repository",
			executorError: failedWithExitCode(128),
			expectError:   true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := &stubGitExecutor{
				executeFunc: func(details execshell.CommandDetails) (execshell.ExecutionResult, error) {
					return execshell.ExecutionResult{}, testCase.executorError
				},
			}
			manager, creationError := gitrepo.NewRepositoryManager(executor, testWorkingDirectoryConstant)
			require.NoError(testInstance, creationError)

			staged, stagedError := manager.HasStagedChanges(context.Background())
			if testCase.expectError {
				require.Error(testInstance, stagedError)
			} else {
				require.NoError(testInstance, stagedError)
			}
			require.Equal(testInstance, testCase.expectStaged, staged)
			require.Equal(testInstance, []string{"diff", "--cached", "--quiet"}, executor.recordedDetails[0].Arguments)
			require.Equal(testInstance, testWorkingDirectoryConstant, executor.recordedDetails[0].WorkingDirectory)
		})
	}
}

func TestRepositoryManagerCommandArguments(testInstance *testing.T) {
	testCases := []struct {
		name              string
		invoke            func(manager *gitrepo.RepositoryManager) error
		expectedArguments []string
	}{
		{
			name: "create_branch",
			invoke: func(manager *gitrepo.RepositoryManager) error {
				return manager.CreateBranch(context.Background(), " feat/12-login ")
			},
			expectedArguments: []string{"checkout", "-b", "feat/12-login"},
		},
		{
			name: "checkout",
			invoke: func(manager *gitrepo.RepositoryManager) error {
				return manager.Checkout(context.Background(), "main")
			},
			expectedArguments: []string{"checkout", "main"},
		},
		{
			name: "push_sets_upstream",
			invoke: func(manager *gitrepo.RepositoryManager) error {
				return manager.Push(context.Background(), "origin", "feat/12-login")
			},
			expectedArguments: []string{"push", "-u", "origin", "feat/12-login"},
		},
		{
			name: "commit",
			invoke: func(manager *gitrepo.RepositoryManager) error {
				return manager.Commit(context.Background(), "feat: add login #12")
			},
			expectedArguments: []string{"commit", "-m", "feat: add login #12"},
		},
		{
			name: "stage_all",
			invoke: func(manager *gitrepo.RepositoryManager) error {
				return manager.StageAll(context.Background())
			},
			expectedArguments: []string{"add", "--all"},
		},
		{
			name: "pull",
			invoke: func(manager *gitrepo.RepositoryManager) error {
				return manager.Pull(context.Background())
			},
			expectedArguments: []string{"pull"},
		},
		{
			name: "init",
			invoke: func(manager *gitrepo.RepositoryManager) error {
				return manager.Init(context.Background())
			},
			expectedArguments: []string{"init"},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := &stubGitExecutor{}
			manager, creationError := gitrepo.NewRepositoryManager(executor, testWorkingDirectoryConstant)
			require.NoError(testInstance, creationError)

			require.NoError(testInstance, testCase.invoke(manager))
			require.Len(testInstance, executor.recordedDetails, 1)
			require.Equal(testInstance, testCase.expectedArguments, executor.recordedDetails[0].Arguments)
		})
	}
}

func TestRepositoryManagerValidatesInputs(testInstance *testing.T) {
	executor := &stubGitExecutor{}
	manager, creationError := gitrepo.NewRepositoryManager(executor, testWorkingDirectoryConstant)
	require.NoError(testInstance, creationError)

	require.ErrorIs(testInstance, manager.CreateBranch(context.Background(), "  "), gitrepo.ErrBranchNameRequired)
	require.ErrorIs(testInstance, manager.Commit(context.Background(), ""), gitrepo.ErrCommitMessageRequired)
	require.ErrorIs(testInstance, manager.Push(context.Background(), "", "main"), gitrepo.ErrRemoteNameRequired)
	require.Empty(testInstance, executor.recordedDetails)
}

func TestRepositoryManagerReadsOutputs(testInstance *testing.T) {
	executor := &stubGitExecutor{
		executeFunc: func(details execshell.CommandDetails) (execshell.ExecutionResult, error) {
			switch details.Arguments[0] {
			case "branch":
				return execshell.ExecutionResult{StandardOutput: "feat/12-login\n"}, nil
			case "log":
				return execshell.ExecutionResult{StandardOutput: "feat: add login #12\n"}, nil
			case "rev-parse":
				if details.Arguments[1] == "--git-path" {
					return execshell.ExecutionResult{StandardOutput: ".git/hooks\n"}, nil
				}
				return execshell.ExecutionResult{StandardOutput: "true\n"}, nil
			case "remote":
				return execshell.ExecutionResult{StandardOutput: "git@github.com:octocat/hello-world.git\n"}, nil
			default:
				return execshell.ExecutionResult{}, errors.New("unexpected command")
			}
		},
	}
	manager, creationError := gitrepo.NewRepositoryManager(executor, testWorkingDirectoryConstant)
	require.NoError(testInstance, creationError)

	branchName, branchError := manager.CurrentBranch(context.Background())
	require.NoError(testInstance, branchError)
	require.Equal(testInstance, "feat/12-login", branchName)

	subject, subjectError := manager.LastCommitSubject(context.Background())
	require.NoError(testInstance, subjectError)
	require.Equal(testInstance, "feat: add login #12", subject)

	hooksDirectory, hooksError := manager.HooksDirectory(context.Background())
	require.NoError(testInstance, hooksError)
	require.Equal(testInstance, filepath.Join(testWorkingDirectoryConstant, ".git", "hooks"), hooksDirectory)

	require.True(testInstance, manager.IsInsideWorkTree(context.Background()))

	remoteURL, remoteError := manager.ResolveRemote(context.Background(), "origin")
	require.NoError(testInstance, remoteError)
	require.Equal(testInstance, "octocat/hello-world", remoteURL.FullName())
}
