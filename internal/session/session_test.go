package session_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/ghflow/internal/config"
	"github.com/temirov/ghflow/internal/execshell"
	"github.com/temirov/ghflow/internal/session"
)

type scriptedExecutor struct {
	gitResponses map[string]execshell.ExecutionResult
	gitFailures  map[string]error
	recorded     []execshell.CommandDetails
}

func (executor *scriptedExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recorded = append(executor.recorded, details)
	commandKey := strings.Join(details.Arguments, " ")
	if failure, failed := executor.gitFailures[commandKey]; failed {
		return execshell.ExecutionResult{}, failure
	}
	return executor.gitResponses[commandKey], nil
}

func (executor *scriptedExecutor) ExecuteGitHubCLI(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recorded = append(executor.recorded, details)
	return execshell.ExecutionResult{StandardOutput: "gh-cli-token\n"}, nil
}

func newWorkingDirectory(testInstance *testing.T) string {
	testInstance.Helper()
	workingDirectory := testInstance.TempDir()
	require.NoError(testInstance, os.WriteFile(filepath.Join(workingDirectory, ".env"), []byte("GITHUB_TOKEN=dotenv-token\n"), 0o600))
	return workingDirectory
}

func TestResolverResolve(testInstance *testing.T) {
	testCases := []struct {
		name          string
		remoteURL     string
		insideTree    string
		remoteFailure error
		expectedError error
		expectHostErr bool
		expectedOwner string
		expectedName  string
	}{
		{
			name:          "ssh remote",
			remoteURL:     "git@github.com:octocat/hello-world.git",
			insideTree:    "true",
			expectedOwner: "octocat",
			expectedName:  "hello-world",
		},
		{
			name:          "https remote",
			remoteURL:     "https://github.com/acme/ghflow",
			insideTree:    "true",
			expectedOwner: "acme",
			expectedName:  "ghflow",
		},
		{
			name:          "outside work tree",
			insideTree:    "false",
			expectedError: session.ErrNotGitRepository,
		},
		{
			name:          "foreign host",
			remoteURL:     "git@gitlab.com:octocat/hello-world.git",
			insideTree:    "true",
			expectHostErr: true,
		},
		{
			name:          "missing remote",
			insideTree:    "true",
			remoteFailure: errors.New("no such remote"),
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			executor := &scriptedExecutor{
				gitResponses: map[string]execshell.ExecutionResult{
					"rev-parse --is-inside-work-tree": {StandardOutput: testCase.insideTree + "\n"},
					"remote get-url origin":           {StandardOutput: testCase.remoteURL + "\n"},
				},
				gitFailures: map[string]error{},
			}
			if testCase.remoteFailure != nil {
				executor.gitFailures["remote get-url origin"] = testCase.remoteFailure
			}
			resolver := &session.Resolver{
				WorkingDirectory: newWorkingDirectory(subTest),
				Configuration:    config.Configuration{Remote: "origin"},
				Executor:         executor,
				Output:           &bytes.Buffer{},
			}

			resolved, resolveError := resolver.Resolve(context.Background())
			switch {
			case testCase.expectedError != nil:
				require.ErrorIs(subTest, resolveError, testCase.expectedError)
			case testCase.expectHostErr:
				var hostError session.UnsupportedHostError
				require.True(subTest, errors.As(resolveError, &hostError))
				require.Equal(subTest, "gitlab.com", hostError.Host)
			case testCase.remoteFailure != nil:
				require.ErrorIs(subTest, resolveError, testCase.remoteFailure)
			default:
				require.NoError(subTest, resolveError)
				require.Equal(subTest, testCase.expectedOwner, resolved.GitHub.Owner())
				require.Equal(subTest, testCase.expectedName, resolved.GitHub.RepositoryName())
				require.Equal(subTest, testCase.expectedOwner, resolved.Cascade.OwnerLogin())
				require.NotNil(subTest, resolved.Synchronizer)

				again, againError := resolver.Resolve(context.Background())
				require.NoError(subTest, againError)
				require.Same(subTest, resolved, again)
			}
		})
	}
}

func TestResolverRequiresExecutor(testInstance *testing.T) {
	resolver := &session.Resolver{}
	_, resolveError := resolver.Resolve(context.Background())
	require.ErrorIs(testInstance, resolveError, session.ErrExecutorNotConfigured)
}
