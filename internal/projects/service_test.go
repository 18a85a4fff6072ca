package projects_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/ghflow/internal/prompt"
	"github.com/temirov/ghflow/internal/projects"
)

type recordedStatusChange struct {
	ItemID string
	Status string
}

type fakeBoardReader struct {
	items         []projects.BoardItem
	statusField   projects.SingleSelectField
	fieldError    error
	statusChanges []recordedStatusChange
	failUpdates   bool
}

func (reader *fakeBoardReader) ListItems(context.Context, string) ([]projects.BoardItem, error) {
	return reader.items, nil
}

func (reader *fakeBoardReader) LocateSingleSelectField(context.Context, string, string) (projects.SingleSelectField, error) {
	return reader.statusField, reader.fieldError
}

func (reader *fakeBoardReader) SetItemStatus(_ context.Context, _ string, itemID string, statusName string) bool {
	if reader.failUpdates {
		return false
	}
	reader.statusChanges = append(reader.statusChanges, recordedStatusChange{ItemID: itemID, Status: statusName})
	return true
}

type fakeBoardLocator struct {
	disabled bool
	missing  bool
}

func (locator fakeBoardLocator) Enabled() bool {
	return !locator.disabled
}

func (locator fakeBoardLocator) BoardTitle() string {
	return "ghflow"
}

func (locator fakeBoardLocator) ResolveBoard(context.Context) (projects.Board, bool, error) {
	if locator.missing {
		return projects.Board{}, false, nil
	}
	return projects.Board{ID: "PVT_board", Number: 1, Title: "ghflow"}, true, nil
}

type selectingPrompter struct {
	selections []int
}

func (prompter *selectingPrompter) Input(string, string) (string, error) {
	return "", prompt.ErrCancelled
}

func (prompter *selectingPrompter) Select(string, []string, int) (int, error) {
	if len(prompter.selections) == 0 {
		return 0, prompt.ErrCancelled
	}
	selection := prompter.selections[0]
	prompter.selections = prompter.selections[1:]
	return selection, nil
}

func (prompter *selectingPrompter) Confirm(string, bool) (bool, error) {
	return false, prompt.ErrCancelled
}

func workflowStatusField() projects.SingleSelectField {
	return projects.SingleSelectField{
		ID:   "PVTSSF_status",
		Name: projects.StatusFieldName,
		Options: []projects.FieldOption{
			{ID: "opt_backlog", Name: "Backlog"},
			{ID: "opt_ready", Name: "Ready"},
			{ID: "opt_progress", Name: "In Progress"},
			{ID: "opt_review", Name: "Review"},
			{ID: "opt_done", Name: "Done"},
		},
	}
}

func boardItems() []projects.BoardItem {
	return []projects.BoardItem{
		{ID: "PVTI_12", ContentType: "Issue", Number: 12, Title: "Add login", State: "open", Status: "In Progress"},
		{ID: "PVTI_5", ContentType: "PullRequest", Number: 5, Title: "Add login form", State: "open", Status: "review"},
		{ID: "PVTI_31", ContentType: "Issue", Number: 31, Title: "Crash on start", State: "open"},
	}
}

func TestServiceView(testInstance *testing.T) {
	reader := &fakeBoardReader{items: boardItems(), statusField: workflowStatusField()}
	output := &bytes.Buffer{}
	service, serviceError := projects.NewService(projects.Dependencies{Board: reader, Locator: fakeBoardLocator{}}, output)
	require.NoError(testInstance, serviceError)

	items, viewError := service.View(context.Background())
	require.NoError(testInstance, viewError)
	require.Len(testInstance, items, 3)

	rendered := output.String()
	require.Contains(testInstance, rendered, "In Progress (1)")
	require.Contains(testInstance, rendered, "Review (1)")
	require.Contains(testInstance, rendered, "No Status (1)")
	require.Contains(testInstance, rendered, "pull request")
	require.NotContains(testInstance, rendered, "Backlog")
	require.Less(testInstance, bytes.Index(output.Bytes(), []byte("In Progress (1)")), bytes.Index(output.Bytes(), []byte("Review (1)")))
	require.Less(testInstance, bytes.Index(output.Bytes(), []byte("Review (1)")), bytes.Index(output.Bytes(), []byte("No Status (1)")))
}

func TestServiceViewSkips(testInstance *testing.T) {
	testCases := []struct {
		name           string
		locator        fakeBoardLocator
		items          []projects.BoardItem
		expectedOutput string
	}{
		{name: "disabled", locator: fakeBoardLocator{disabled: true}, expectedOutput: "Project synchronization is disabled"},
		{name: "missing board", locator: fakeBoardLocator{missing: true}},
		{name: "empty board", items: nil, expectedOutput: "No items on project 'ghflow'."},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			output := &bytes.Buffer{}
			service, serviceError := projects.NewService(projects.Dependencies{
				Board:   &fakeBoardReader{items: testCase.items, statusField: workflowStatusField()},
				Locator: testCase.locator,
			}, output)
			require.NoError(subTest, serviceError)

			_, viewError := service.View(context.Background())
			require.NoError(subTest, viewError)
			require.Contains(subTest, output.String(), testCase.expectedOutput)
		})
	}
}

func TestServiceUpdate(testInstance *testing.T) {
	testCases := []struct {
		name            string
		options         projects.UpdateOptions
		prompter        *selectingPrompter
		expectedChanges []recordedStatusChange
		expectedOutput  string
	}{
		{
			name:            "flags",
			options:         projects.UpdateOptions{Number: 12, Status: "review"},
			expectedChanges: []recordedStatusChange{{ItemID: "PVTI_12", Status: "Review"}},
		},
		{
			name:            "interactive",
			prompter:        &selectingPrompter{selections: []int{2, 4}},
			expectedChanges: []recordedStatusChange{{ItemID: "PVTI_31", Status: "Done"}},
		},
		{
			name:           "unchanged",
			options:        projects.UpdateOptions{Number: 5, Status: "Review"},
			expectedOutput: "#5 is already in 'Review'",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			reader := &fakeBoardReader{items: boardItems(), statusField: workflowStatusField()}
			output := &bytes.Buffer{}
			dependencies := projects.Dependencies{Board: reader, Locator: fakeBoardLocator{}}
			if testCase.prompter != nil {
				dependencies.Prompter = testCase.prompter
			}
			service, serviceError := projects.NewService(dependencies, output)
			require.NoError(subTest, serviceError)

			require.NoError(subTest, service.Update(context.Background(), testCase.options))
			require.Equal(subTest, testCase.expectedChanges, reader.statusChanges)
			require.Contains(subTest, output.String(), testCase.expectedOutput)
		})
	}
}

func TestServiceUpdateFailures(testInstance *testing.T) {
	testCases := []struct {
		name          string
		options       projects.UpdateOptions
		reader        *fakeBoardReader
		expectedError error
		expectedText  string
	}{
		{
			name:         "item not on board",
			options:      projects.UpdateOptions{Number: 99, Status: "Done"},
			reader:       &fakeBoardReader{items: boardItems(), statusField: workflowStatusField()},
			expectedText: "#99 is not on project 'ghflow'",
		},
		{
			name:         "unknown status",
			options:      projects.UpdateOptions{Number: 12, Status: "Blocked"},
			reader:       &fakeBoardReader{items: boardItems(), statusField: workflowStatusField()},
			expectedText: `status "Blocked" is not an option of project 'ghflow' (options: Backlog, Ready, In Progress, Review, Done)`,
		},
		{
			name:          "interactive without prompter",
			reader:        &fakeBoardReader{items: boardItems(), statusField: workflowStatusField()},
			expectedError: projects.ErrPrompterNotConfigured,
		},
		{
			name:          "mutation failure",
			options:       projects.UpdateOptions{Number: 12, Status: "Done"},
			reader:        &fakeBoardReader{items: boardItems(), statusField: workflowStatusField(), failUpdates: true},
			expectedError: projects.ErrStatusUpdateFailed,
		},
		{
			name:          "missing status field",
			options:       projects.UpdateOptions{Number: 12, Status: "Done"},
			reader:        &fakeBoardReader{items: boardItems(), fieldError: projects.ErrFieldNotFound},
			expectedError: projects.ErrFieldNotFound,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			service, serviceError := projects.NewService(projects.Dependencies{Board: testCase.reader, Locator: fakeBoardLocator{}}, nil)
			require.NoError(subTest, serviceError)

			updateError := service.Update(context.Background(), testCase.options)
			if testCase.expectedError != nil {
				require.ErrorIs(subTest, updateError, testCase.expectedError)
			} else {
				require.ErrorContains(subTest, updateError, testCase.expectedText)
			}
			require.Empty(subTest, testCase.reader.statusChanges)
		})
	}
}

func TestViewCommandRequiresProvider(testInstance *testing.T) {
	builder := &projects.ViewCommandBuilder{}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)
	command.SetContext(context.Background())
	command.SetArgs([]string{})
	command.SilenceErrors = true
	command.SilenceUsage = true
	require.ErrorContains(testInstance, command.Execute(), "project dependencies provider not configured")
}

func TestUpdateCommandPassesFlags(testInstance *testing.T) {
	reader := &fakeBoardReader{items: boardItems(), statusField: workflowStatusField()}
	builder := &projects.UpdateCommandBuilder{DependenciesProvider: func(context.Context) (projects.Dependencies, error) {
		return projects.Dependencies{Board: reader, Locator: fakeBoardLocator{}}, nil
	}}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)
	command.SetOut(&bytes.Buffer{})
	command.SetContext(context.Background())
	command.SetArgs([]string{"--number", "31", "--status", "ready"})
	require.NoError(testInstance, command.Execute())
	require.Equal(testInstance, []recordedStatusChange{{ItemID: "PVTI_31", Status: "Ready"}}, reader.statusChanges)
}

func TestUpdateCommandReportsProviderFailure(testInstance *testing.T) {
	builder := &projects.UpdateCommandBuilder{DependenciesProvider: func(context.Context) (projects.Dependencies, error) {
		return projects.Dependencies{}, errors.New("token missing")
	}}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)
	command.SetContext(context.Background())
	command.SetArgs([]string{})
	command.SilenceErrors = true
	command.SilenceUsage = true
	require.ErrorContains(testInstance, command.Execute(), "unable to prepare project workflow: token missing")
}
