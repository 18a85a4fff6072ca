package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/ghflow/internal/prompt"
)

const testVersionConstant = "v1.4.0"

type recordingChooser struct {
	choice      string
	chooseError error
	entries     []prompt.MenuEntry
}

func (chooser *recordingChooser) Choose(_ string, entries []prompt.MenuEntry) (string, error) {
	chooser.entries = entries
	return chooser.choice, chooser.chooseError
}

func newTestApplication(testInstance *testing.T) (*Application, *bytes.Buffer) {
	testInstance.Helper()
	testInstance.Setenv("XDG_CONFIG_HOME", testInstance.TempDir())

	application := NewApplication()
	application.workingDirectory = testInstance.TempDir()
	application.versionResolver = func(context.Context) string {
		return testVersionConstant
	}
	output := &bytes.Buffer{}
	application.rootCommand.SetOut(output)
	application.rootCommand.SetErr(output)
	return application, output
}

func executeApplication(application *Application, arguments ...string) error {
	application.rootCommand.SetArgs(append([]string{}, arguments...))
	return application.Execute()
}

func writeConfigurationFile(testInstance *testing.T, content string) string {
	testInstance.Helper()
	configurationPath := filepath.Join(testInstance.TempDir(), "ghflow.yaml")
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte(content), 0o600))
	return configurationPath
}

func TestApplicationVersionCommand(testInstance *testing.T) {
	application, output := newTestApplication(testInstance)

	require.NoError(testInstance, executeApplication(application, "version"))
	require.Equal(testInstance, "ghflow version: v1.4.0\n", output.String())
}

func TestApplicationRejectsUnknownCommand(testInstance *testing.T) {
	application, _ := newTestApplication(testInstance)

	executionError := executeApplication(application, "frobnicate")
	require.ErrorContains(testInstance, executionError, `unknown command "frobnicate"`)
}

func TestApplicationChooserRunsSelectedCommand(testInstance *testing.T) {
	application, output := newTestApplication(testInstance)
	chooser := &recordingChooser{choice: "version"}
	application.chooser = chooser

	require.NoError(testInstance, executeApplication(application))
	require.Equal(testInstance, "ghflow version: v1.4.0\n", output.String())

	var names []string
	for _, entry := range chooser.entries {
		names = append(names, entry.Name)
	}
	require.Equal(testInstance, []string{
		"bootstrap",
		"close-issue",
		"commit",
		"create-branch",
		"create-issue",
		"create-pr",
		"install-hooks",
		"list-issues",
		"list-prs",
		"merge-pr",
		"review-pr",
		"update-project",
		"version",
		"view-project",
	}, names)
}

func TestApplicationChooserCancellation(testInstance *testing.T) {
	application, _ := newTestApplication(testInstance)
	application.chooser = &recordingChooser{chooseError: prompt.ErrCancelled}

	require.ErrorIs(testInstance, executeApplication(application), prompt.ErrCancelled)
}

func TestApplicationConfigurationResolution(testInstance *testing.T) {
	testCases := []struct {
		name                     string
		configurationContent     string
		environment              map[string]string
		expectedRemote           string
		expectedProjectsEnabled  bool
		expectedEnforceIssueLink bool
		expectedLabelCategories  int
	}{
		{
			name:                     "embedded default",
			expectedRemote:           "origin",
			expectedProjectsEnabled:  true,
			expectedEnforceIssueLink: true,
			expectedLabelCategories:  2,
		},
		{
			name:                     "configuration file replaces default",
			configurationContent:     "remote: upstream\nlabels:\n  type:\n    - type:bug\n",
			expectedRemote:           "upstream",
			expectedEnforceIssueLink: true,
			expectedLabelCategories:  1,
		},
		{
			name:                     "environment overrides a key",
			configurationContent:     "remote: upstream\n",
			environment:              map[string]string{"GHFLOW_COMMIT_ASSISTANT_ENFORCE_ISSUE_LINK": "false"},
			expectedRemote:           "upstream",
			expectedEnforceIssueLink: false,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			for environmentName, environmentValue := range testCase.environment {
				subTest.Setenv(environmentName, environmentValue)
			}
			application, _ := newTestApplication(subTest)
			arguments := []string{"version"}
			if len(testCase.configurationContent) > 0 {
				arguments = append(arguments, "--config", writeConfigurationFile(subTest, testCase.configurationContent))
			}

			require.NoError(subTest, executeApplication(application, arguments...))
			require.Equal(subTest, testCase.expectedRemote, application.configuration.Remote)
			require.Equal(subTest, testCase.expectedProjectsEnabled, application.configuration.ProjectsV2.Enabled)
			require.Equal(subTest, testCase.expectedEnforceIssueLink, application.configuration.CommitAssistant.EnforceIssueLink)
			require.Len(subTest, application.configuration.Labels, testCase.expectedLabelCategories)
		})
	}
}

func TestApplicationRejectsInvalidLogLevel(testInstance *testing.T) {
	application, _ := newTestApplication(testInstance)

	executionError := executeApplication(application, "version", "--log-level", "verbose")
	require.ErrorContains(testInstance, executionError, "unsupported log level: verbose")
}

func TestApplicationMissingConfigurationFile(testInstance *testing.T) {
	application, _ := newTestApplication(testInstance)

	executionError := executeApplication(application, "version", "--config", filepath.Join(testInstance.TempDir(), "absent.yaml"))
	require.ErrorContains(testInstance, executionError, "unable to load configuration")
}
