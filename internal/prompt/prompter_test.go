package prompt_test

import (
	"bytes"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/temirov/ghflow/internal/prompt"
)

func TestConsolePrompterInput(testInstance *testing.T) {
	testCases := []struct {
		name          string
		input         string
		defaultValue  string
		expectedValue string
		expectedError error
		expectedShown string
	}{
		{name: "typed answer", input: "Add login\n", expectedValue: "Add login", expectedShown: "Title: "},
		{name: "default on empty", input: "\n", defaultValue: "main", expectedValue: "main", expectedShown: "Title [main]: "},
		{name: "answer without newline", input: "last", expectedValue: "last", expectedShown: "Title: "},
		{name: "end of input", input: "", expectedError: prompt.ErrCancelled, expectedShown: "Title: "},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			output := &bytes.Buffer{}
			prompter := prompt.NewConsolePrompter(strings.NewReader(testCase.input), output)

			value, inputError := prompter.Input("Title", testCase.defaultValue)
			require.Equal(subTest, testCase.expectedShown, output.String())
			if testCase.expectedError != nil {
				require.ErrorIs(subTest, inputError, testCase.expectedError)
				return
			}
			require.NoError(subTest, inputError)
			require.Equal(subTest, testCase.expectedValue, value)
		})
	}
}

func TestConsolePrompterSelect(testInstance *testing.T) {
	options := []string{"merge", "squash", "rebase"}
	testCases := []struct {
		name          string
		input         string
		defaultIndex  int
		expectedIndex int
		expectError   bool
	}{
		{name: "numbered answer", input: "2\n", expectedIndex: 1},
		{name: "default", input: "\n", defaultIndex: 2, expectedIndex: 2},
		{name: "retry after invalid answer", input: "9\nabc\n3\n", expectedIndex: 2},
		{name: "too many invalid answers", input: "0\n0\n0\n", expectError: true},
		{name: "cancelled", input: "", expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			output := &bytes.Buffer{}
			prompter := prompt.NewConsolePrompter(strings.NewReader(testCase.input), output)

			selectedIndex, selectError := prompter.Select("Merge method", options, testCase.defaultIndex)
			require.Contains(subTest, output.String(), "  2) squash\n")
			if testCase.expectError {
				require.Error(subTest, selectError)
				return
			}
			require.NoError(subTest, selectError)
			require.Equal(subTest, testCase.expectedIndex, selectedIndex)
		})
	}
}

func TestConsolePrompterSelectWithoutOptions(testInstance *testing.T) {
	prompter := prompt.NewConsolePrompter(strings.NewReader("1\n"), nil)
	_, selectError := prompter.Select("Issue", nil, 0)
	require.ErrorIs(testInstance, selectError, prompt.ErrNoOptions)
}

func TestConsolePrompterConfirm(testInstance *testing.T) {
	testCases := []struct {
		name          string
		input         string
		defaultValue  bool
		expectedValue bool
		expectedHint  string
	}{
		{name: "yes", input: "yes\n", expectedValue: true, expectedHint: "[y/N]"},
		{name: "uppercase y", input: "Y\n", expectedValue: true, expectedHint: "[y/N]"},
		{name: "no", input: "n\n", defaultValue: true, expectedValue: false, expectedHint: "[Y/n]"},
		{name: "default yes", input: "\n", defaultValue: true, expectedValue: true, expectedHint: "[Y/n]"},
		{name: "retry after invalid answer", input: "maybe\ny\n", expectedValue: true, expectedHint: "Please answer y or n."},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			output := &bytes.Buffer{}
			prompter := prompt.NewConsolePrompter(strings.NewReader(testCase.input), output)

			confirmed, confirmError := prompter.Confirm("Delete branch?", testCase.defaultValue)
			require.NoError(subTest, confirmError)
			require.Equal(subTest, testCase.expectedValue, confirmed)
			require.Contains(subTest, output.String(), testCase.expectedHint)
		})
	}
}

func TestChooserModelSelection(testInstance *testing.T) {
	entries := []prompt.MenuEntry{
		{Name: "create-issue", Description: "Open a new issue"},
		{Name: "create-branch", Description: "Start work on an issue"},
		{Name: "commit"},
	}
	testCases := []struct {
		name          string
		keys          []tea.KeyMsg
		expectedName  string
		expectedError error
	}{
		{
			name:         "first entry",
			keys:         []tea.KeyMsg{{Type: tea.KeyEnter}},
			expectedName: "create-issue",
		},
		{
			name:         "move down",
			keys:         []tea.KeyMsg{{Type: tea.KeyDown}, {Type: tea.KeyRunes, Runes: []rune("j")}, {Type: tea.KeyEnter}},
			expectedName: "commit",
		},
		{
			name:         "cursor stays within bounds",
			keys:         []tea.KeyMsg{{Type: tea.KeyUp}, {Type: tea.KeyDown}, {Type: tea.KeyDown}, {Type: tea.KeyDown}, {Type: tea.KeyUp}, {Type: tea.KeyEnter}},
			expectedName: "create-branch",
		},
		{
			name:          "quit",
			keys:          []tea.KeyMsg{{Type: tea.KeyDown}, {Type: tea.KeyRunes, Runes: []rune("q")}},
			expectedError: prompt.ErrCancelled,
		},
		{
			name:          "no key pressed",
			expectedError: prompt.ErrCancelled,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			var model tea.Model = prompt.NewChooserModel("ghflow", entries)
			for _, keyMessage := range testCase.keys {
				model, _ = model.Update(keyMessage)
			}

			chooserModel, isChooserModel := model.(prompt.ChooserModel)
			require.True(subTest, isChooserModel)
			selectedName, selectionError := chooserModel.Selection()
			if testCase.expectedError != nil {
				require.ErrorIs(subTest, selectionError, testCase.expectedError)
				return
			}
			require.NoError(subTest, selectionError)
			require.Equal(subTest, testCase.expectedName, selectedName)
		})
	}
}

func TestChooserModelViewListsEntries(testInstance *testing.T) {
	model := prompt.NewChooserModel("ghflow", []prompt.MenuEntry{{Name: "bootstrap"}, {Name: "version"}})
	view := model.View()
	require.Contains(testInstance, view, "bootstrap")
	require.Contains(testInstance, view, "  version")
	require.Contains(testInstance, view, "enter select")
}
