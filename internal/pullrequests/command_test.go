package pullrequests_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/temirov/ghflow/internal/config"
	"github.com/temirov/ghflow/internal/githubapi"
	"github.com/temirov/ghflow/internal/pullrequests"
)

type commandBuilder interface {
	Build() (*cobra.Command, error)
}

func providerFor(gateway *stubGateway, repository *stubRepository) pullrequests.DependenciesProvider {
	return func(context.Context) (pullrequests.Dependencies, error) {
		return pullrequests.Dependencies{
			PullRequests:  gateway,
			Repository:    repository,
			Configuration: config.Configuration{Remote: "origin"},
		}, nil
	}
}

func executeBuilder(testInstance *testing.T, builder commandBuilder, arguments []string) (string, error) {
	testInstance.Helper()
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	output := &bytes.Buffer{}
	command.SilenceUsage = true
	command.SilenceErrors = true
	command.SetOut(output)
	command.SetContext(context.Background())
	command.SetArgs(append([]string{}, arguments...))
	executionError := command.Execute()
	return output.String(), executionError
}

func TestCreateCommand(testInstance *testing.T) {
	gateway := newGateway()
	repository := &stubRepository{branch: testFeatureBranchConstant, workingDirectory: testInstance.TempDir()}
	builder := &pullrequests.CreateCommandBuilder{DependenciesProvider: providerFor(gateway, repository)}

	output, executionError := executeBuilder(testInstance, builder, []string{"--title", "Add login form", "--body", "Adds the form.", "--base", "develop", "--draft", "--yes"})
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, []githubapi.PullRequestRequest{{
		Title: "Add login form",
		Body:  "Adds the form.\n\nFixes #12",
		Head:  testFeatureBranchConstant,
		Base:  "develop",
		Draft: true,
	}}, gateway.createdRequests)
	require.Contains(testInstance, output, "Created pull request #5")
}

func TestReviewCommand(testInstance *testing.T) {
	gateway := newGateway()
	gateway.pullRequestsByNumber = map[int]githubapi.PullRequest{5: mergeablePullRequest()}
	builder := &pullrequests.ReviewCommandBuilder{DependenciesProvider: providerFor(gateway, &stubRepository{})}

	_, executionError := executeBuilder(testInstance, builder, []string{"--number", "5", "--event", "comment", "--body", "Nice", "--yes"})
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, []recordedReview{{Number: 5, Event: githubapi.ReviewEventComment, Body: "Nice"}}, gateway.reviews)
}

func TestMergeCommand(testInstance *testing.T) {
	gateway := newGateway()
	gateway.pullRequestsByNumber = map[int]githubapi.PullRequest{5: mergeablePullRequest()}
	gateway.approved = true
	gateway.mergeResult = githubapi.MergeResult{Merged: true}
	repository := &stubRepository{}
	builder := &pullrequests.MergeCommandBuilder{DependenciesProvider: providerFor(gateway, repository)}

	output, executionError := executeBuilder(testInstance, builder, []string{"--number", "5", "--method", "rebase", "--yes"})
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, []recordedMerge{{Number: 5, Method: githubapi.MergeMethodRebase}}, gateway.merges)
	require.Equal(testInstance, []string{testFeatureBranchConstant}, gateway.deletedBranches)
	require.Contains(testInstance, output, "Deleted branch "+testFeatureBranchConstant)
}

func TestListCommandStates(testInstance *testing.T) {
	testCases := []struct {
		name          string
		arguments     []string
		expectedState githubapi.IssueState
		expectedLimit int
		expectedError string
	}{
		{name: "defaults", expectedState: githubapi.IssueStateOpen, expectedLimit: 30},
		{name: "merged", arguments: []string{"--state", "Merged", "--limit", "5"}, expectedState: githubapi.IssueState(githubapi.PullRequestStateMerged), expectedLimit: 5},
		{name: "all", arguments: []string{"--state", "all"}, expectedState: githubapi.IssueStateAll, expectedLimit: 30},
		{name: "unsupported", arguments: []string{"--state", "draft"}, expectedError: `unsupported pull request state "draft"`},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			gateway := newGateway()
			builder := &pullrequests.ListCommandBuilder{DependenciesProvider: providerFor(gateway, &stubRepository{})}

			_, executionError := executeBuilder(subTest, builder, testCase.arguments)
			if len(testCase.expectedError) > 0 {
				require.ErrorContains(subTest, executionError, testCase.expectedError)
				require.Empty(subTest, gateway.listOptions)
				return
			}
			require.NoError(subTest, executionError)
			require.Equal(subTest, []githubapi.ListOptions{{State: testCase.expectedState, Limit: testCase.expectedLimit}}, gateway.listOptions)
		})
	}
}

func TestCommandsRejectInvalidInput(testInstance *testing.T) {
	failingProvider := func(context.Context) (pullrequests.Dependencies, error) {
		return pullrequests.Dependencies{}, errors.New("token missing")
	}

	testCases := []struct {
		name          string
		builder       commandBuilder
		arguments     []string
		expectedError string
	}{
		{name: "positional arguments", builder: &pullrequests.CreateCommandBuilder{DependenciesProvider: failingProvider}, arguments: []string{"extra"}, expectedError: "does not accept positional arguments"},
		{name: "missing provider", builder: &pullrequests.ReviewCommandBuilder{}, arguments: []string{"--number", "5"}, expectedError: "dependencies provider not configured"},
		{name: "provider failure", builder: &pullrequests.MergeCommandBuilder{DependenciesProvider: failingProvider}, expectedError: "unable to prepare pull request workflow: token missing"},
		{name: "invalid event", builder: &pullrequests.ReviewCommandBuilder{DependenciesProvider: failingProvider}, arguments: []string{"--event", "dismiss"}, expectedError: "unsupported review event"},
		{name: "invalid method", builder: &pullrequests.MergeCommandBuilder{DependenciesProvider: failingProvider}, arguments: []string{"--method", "octopus"}, expectedError: "unsupported merge method"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			_, executionError := executeBuilder(subTest, testCase.builder, testCase.arguments)
			require.ErrorContains(subTest, executionError, testCase.expectedError)
		})
	}
}
