package issues_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/ghflow/internal/config"
	"github.com/temirov/ghflow/internal/githubapi"
	"github.com/temirov/ghflow/internal/issues"
)

func providerFor(gateway *stubIssueGateway, cascade *stubCascade) issues.DependenciesProvider {
	return func(context.Context) (issues.Dependencies, error) {
		dependencies := issues.Dependencies{Issues: gateway}
		if cascade != nil {
			dependencies.Cascade = cascade
		}
		return dependencies, nil
	}
}

func TestCreateCommandPassesFlags(testInstance *testing.T) {
	gateway := &stubIssueGateway{createResult: githubapi.Issue{Number: 4, NodeID: "I_kw4", URL: "https://github.com/octocat/hello-world/issues/4"}}
	cascade := &stubCascade{}
	builder := issues.CreateCommandBuilder{DependenciesProvider: providerFor(gateway, cascade)}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	output := &bytes.Buffer{}
	command.SetOut(output)
	command.SetContext(context.Background())
	command.SetArgs([]string{"--title", "Add login", "--type", "feature", "--label", "p2", "--assignee", "octocat"})
	require.NoError(testInstance, command.Execute())

	require.Len(testInstance, gateway.createdRequests, 1)
	require.Equal(testInstance, "Add login", gateway.createdRequests[0].Title)
	require.Equal(testInstance, []string{"p2", "type:feature"}, gateway.createdRequests[0].Labels)
	require.Equal(testInstance, []string{"octocat"}, gateway.createdRequests[0].Assignees)
	require.Equal(testInstance, []recordedCascade{{ContentID: "I_kw4", Status: config.StatusBacklog}}, cascade.applied)
	require.Contains(testInstance, output.String(), "Created issue #4")
}

func TestCloseCommandSkipsConfirmation(testInstance *testing.T) {
	gateway := &stubIssueGateway{issuesByNumber: map[int]githubapi.Issue{9: {Number: 9, NodeID: "I_kw9"}}}
	cascade := &stubCascade{}
	builder := issues.CloseCommandBuilder{DependenciesProvider: providerFor(gateway, cascade)}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	command.SetOut(&bytes.Buffer{})
	command.SetContext(context.Background())
	command.SetArgs([]string{"--number", "9", "--yes"})
	require.NoError(testInstance, command.Execute())
	require.Equal(testInstance, []int{9}, gateway.closedNumbers)
	require.Equal(testInstance, []recordedCascade{{ContentID: "I_kw9", Status: config.StatusDone}}, cascade.applied)
}

func TestListCommandValidation(testInstance *testing.T) {
	testCases := []struct {
		name          string
		arguments     []string
		provider      issues.DependenciesProvider
		expectedError string
	}{
		{
			name:          "unsupported state",
			arguments:     []string{"--state", "merged"},
			provider:      providerFor(&stubIssueGateway{}, nil),
			expectedError: "unsupported issue state",
		},
		{
			name:          "positional arguments",
			arguments:     []string{"extra"},
			provider:      providerFor(&stubIssueGateway{}, nil),
			expectedError: "does not accept positional arguments",
		},
		{
			name:      "dependencies failure",
			arguments: []string{},
			provider: func(context.Context) (issues.Dependencies, error) {
				return issues.Dependencies{}, errors.New("not a git repository")
			},
			expectedError: "not a git repository",
		},
		{
			name:          "missing provider",
			arguments:     []string{},
			expectedError: "dependencies provider not configured",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			builder := issues.ListCommandBuilder{DependenciesProvider: testCase.provider}
			command, buildError := builder.Build()
			require.NoError(subTest, buildError)

			command.SilenceUsage = true
			command.SilenceErrors = true
			command.SetOut(&bytes.Buffer{})
			command.SetContext(context.Background())
			command.SetArgs(testCase.arguments)
			require.ErrorContains(subTest, command.Execute(), testCase.expectedError)
		})
	}
}

func TestListCommandClosedState(testInstance *testing.T) {
	gateway := &stubIssueGateway{}
	builder := issues.ListCommandBuilder{DependenciesProvider: providerFor(gateway, nil)}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	command.SetOut(&bytes.Buffer{})
	command.SetContext(context.Background())
	command.SetArgs([]string{"--state", "Closed", "--limit", "5"})
	require.NoError(testInstance, command.Execute())
	require.Equal(testInstance, []githubapi.ListOptions{{State: githubapi.IssueStateClosed, Labels: []string{}, Limit: 5}}, gateway.listOptions)
}
