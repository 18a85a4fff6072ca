package projects_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"go.uber.org/zap/zapcore"

	"github.com/temirov/ghflow/internal/config"
	"github.com/temirov/ghflow/internal/projects"
)

const (
	onBoardItemsResponse  = `{"node":{"projectItems":{"nodes":[{"id":"PVTI_item","project":{"id":"PVT_board"}}]}}}`
	offBoardItemsResponse = `{"node":{"projectItems":{"nodes":[]}}}`
	addedItemResponse     = `{"addProjectV2ItemById":{"item":{"id":"PVTI_added"}}}`
	closedBoardsResponse  = `{"repositoryOwner":{"id":"U_owner","projectsV2":{"nodes":[
		{"id":"PVT_board","number":4,"title":"ghflow","closed":true,"url":"https://github.com/users/octocat/projects/4"}
	]}}}`
)

func TestStatusCascadeApply(testInstance *testing.T) {
	testCases := []struct {
		name                string
		configuration       config.ProjectsConfiguration
		boardsResponse      string
		itemsResponse       string
		itemsFailure        error
		expectedResult      bool
		expectedAdds        int
		expectedItemID      string
		expectedStatusCalls int
		expectedOutput      string
	}{
		{
			name:                "existing item",
			configuration:       config.ProjectsConfiguration{Enabled: true, Title: "ghflow"},
			boardsResponse:      ownerBoardsResponse,
			itemsResponse:       onBoardItemsResponse,
			expectedResult:      true,
			expectedItemID:      testItemIDConstant,
			expectedStatusCalls: 1,
			expectedOutput:      "Set item status to 'In Progress'",
		},
		{
			name:                "item added before update",
			configuration:       config.ProjectsConfiguration{Enabled: true},
			boardsResponse:      ownerBoardsResponse,
			itemsResponse:       offBoardItemsResponse,
			expectedResult:      true,
			expectedAdds:        1,
			expectedItemID:      "PVTI_added",
			expectedStatusCalls: 1,
			expectedOutput:      "Added item to project 'ghflow'",
		},
		{
			name:                "closed board still updated",
			configuration:       config.ProjectsConfiguration{Enabled: true},
			boardsResponse:      closedBoardsResponse,
			itemsResponse:       onBoardItemsResponse,
			expectedResult:      true,
			expectedItemID:      testItemIDConstant,
			expectedStatusCalls: 1,
			expectedOutput:      "Project 'ghflow': This project appears to be closed.",
		},
		{
			name:           "missing board",
			configuration:  config.ProjectsConfiguration{Enabled: true, Title: "Roadmap"},
			boardsResponse: ownerBoardsResponse,
			expectedOutput: "Project 'Roadmap' not found. Run `ghflow bootstrap` to create it.",
		},
		{
			name:           "item lookup failure",
			configuration:  config.ProjectsConfiguration{Enabled: true},
			boardsResponse: ownerBoardsResponse,
			itemsFailure:   errors.New("rate limited"),
			expectedOutput: "Failed to look up project item: rate limited",
		},
		{
			name:          "projects disabled",
			configuration: config.ProjectsConfiguration{Enabled: false, Title: "ghflow"},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			gateway := newStubGateway()
			gateway.responses[ownerBoardsDocumentMarker] = testCase.boardsResponse
			gateway.responses[contentItemsDocumentMarker] = testCase.itemsResponse
			gateway.responses[addItemDocumentMarker] = addedItemResponse
			gateway.responses[fieldsDocumentMarker] = statusFieldsResponse
			if testCase.itemsFailure != nil {
				gateway.failures[contentItemsDocumentMarker] = testCase.itemsFailure
			}
			output := &bytes.Buffer{}
			synchronizer := newTestSynchronizer(subTest, gateway, output, nil)
			cascade := projects.NewStatusCascade(synchronizer, testCase.configuration, testOwnerLoginConstant, "ghflow", output, nil)

			result := cascade.Apply(context.Background(), testContentIDConstant, config.StatusInProgress)
			require.Equal(subTest, testCase.expectedResult, result)
			require.Contains(subTest, output.String(), testCase.expectedOutput)
			require.Len(subTest, gateway.callsMatching(addItemDocumentMarker), testCase.expectedAdds)

			statusCalls := gateway.callsMatching(updateStatusDocumentMarker)
			require.Len(subTest, statusCalls, testCase.expectedStatusCalls)
			if testCase.expectedStatusCalls > 0 {
				require.Equal(subTest, testCase.expectedItemID, statusCalls[0].Variables["itemId"])
				require.Equal(subTest, "opt2", statusCalls[0].Variables["optionId"])
			}
			if !testCase.configuration.Enabled {
				require.Empty(subTest, gateway.calls)
			}
		})
	}
}

func TestStatusCascadeResolveBoardOpenBoardHasNoNotice(testInstance *testing.T) {
	gateway := newStubGateway()
	gateway.responses[ownerBoardsDocumentMarker] = ownerBoardsResponse
	output := &bytes.Buffer{}
	synchronizer := newTestSynchronizer(testInstance, gateway, output, nil)
	cascade := projects.NewStatusCascade(synchronizer, config.ProjectsConfiguration{Enabled: true}, testOwnerLoginConstant, "ghflow", output, nil)

	board, found, resolveError := cascade.ResolveBoard(context.Background())
	require.NoError(testInstance, resolveError)
	require.True(testInstance, found)
	require.False(testInstance, board.Closed)
	require.NotContains(testInstance, output.String(), "appears to be closed")
}

func TestStatusCascadeOwnerFallsBackToRepositoryOwner(testInstance *testing.T) {
	gateway := newStubGateway()
	synchronizer := newTestSynchronizer(testInstance, gateway, &bytes.Buffer{}, nil)

	configuredCascade := projects.NewStatusCascade(synchronizer, config.ProjectsConfiguration{Enabled: true, Owner: "acme"}, testOwnerLoginConstant, "ghflow", nil, nil)
	require.Equal(testInstance, "acme", configuredCascade.OwnerLogin())

	defaultCascade := projects.NewStatusCascade(synchronizer, config.ProjectsConfiguration{Enabled: true}, testOwnerLoginConstant, "ghflow", nil, nil)
	require.Equal(testInstance, testOwnerLoginConstant, defaultCascade.OwnerLogin())
	require.Equal(testInstance, "ghflow", defaultCascade.BoardTitle())
}

func TestStatusCascadeLogsFailures(testInstance *testing.T) {
	gateway := newStubGateway()
	gateway.failures[ownerBoardsDocumentMarker] = errors.New("bad credentials")
	observerCore, observedLogs := observer.New(zapcore.DebugLevel)
	synchronizer := newTestSynchronizer(testInstance, gateway, &bytes.Buffer{}, nil)
	cascade := projects.NewStatusCascade(synchronizer, config.ProjectsConfiguration{Enabled: true}, testOwnerLoginConstant, "ghflow", &bytes.Buffer{}, zap.New(observerCore))

	require.False(testInstance, cascade.Apply(context.Background(), testContentIDConstant, config.StatusDone))

	failures := observedLogs.FilterMessage("project status cascade failed").All()
	require.Len(testInstance, failures, 1)
	require.Equal(testInstance, "board_lookup_failed", failures[0].ContextMap()["reason"])
}
