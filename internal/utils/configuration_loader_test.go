package utils_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/ghflow/internal/utils"
)

const (
	testEnvironmentPrefixConstant              = "TESTGHFLOW"
	testConfigFileNameConstant                 = ".ghflow.yaml"
	testConfigurationNameConstant              = ".ghflow"
	testConfigurationTypeConstant              = "yaml"
	testUserConfigurationDirectoryNameConstant = "ghflow"
	testRemoteKeyConstant                      = "remote"
	testRemoteEnvironmentVariableConstant      = testEnvironmentPrefixConstant + "_REMOTE"
)

type configurationFixture struct {
	Common          configurationCommonFixture          `mapstructure:"common"`
	Remote          string                              `mapstructure:"remote"`
	CommitAssistant configurationCommitAssistantFixture `mapstructure:"commit_assistant"`
	LabelColors     map[string]string                   `mapstructure:"label_colors"`
}

type configurationCommonFixture struct {
	LogLevel  string   `mapstructure:"log_level"`
	LogFormat string   `mapstructure:"log_format"`
	Types     []string `mapstructure:"types"`
}

type configurationCommitAssistantFixture struct {
	EnforceIssueLink bool `mapstructure:"enforce_issue_link"`
}

func writeFixtureFile(testInstance *testing.T, directory string, content string) string {
	testInstance.Helper()
	require.NoError(testInstance, os.MkdirAll(directory, 0o755))
	configurationFilePath := filepath.Join(directory, testConfigFileNameConstant)
	require.NoError(testInstance, os.WriteFile(configurationFilePath, []byte(content), 0o600))
	return configurationFilePath
}

func TestConfigurationLoaderPrecedence(testInstance *testing.T) {
	testCases := []struct {
		name               string
		embeddedContent    string
		fileContent        string
		environmentRemote  string
		expectedRemote     string
		expectedEnforce    bool
		expectEmbeddedUsed bool
	}{
		{
			name:               "embedded document without file",
			embeddedContent:    "remote: origin\ncommit_assistant:\n  enforce_issue_link: true\n",
			expectedRemote:     "origin",
			expectedEnforce:    true,
			expectEmbeddedUsed: true,
		},
		{
			name:               "defaults fill missing keys",
			embeddedContent:    "commit_assistant:\n  enforce_issue_link: true\n",
			expectedRemote:     "default-remote",
			expectedEnforce:    true,
			expectEmbeddedUsed: true,
		},
		{
			name:            "file replaces embedded document",
			embeddedContent: "remote: origin\ncommit_assistant:\n  enforce_issue_link: true\n",
			fileContent:     "remote: upstream\n",
			expectedRemote:  "upstream",
		},
		{
			name:              "environment overrides file",
			embeddedContent:   "remote: origin\n",
			fileContent:       "remote: upstream\n",
			environmentRemote: "fork",
			expectedRemote:    "fork",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			searchDirectory := subTest.TempDir()
			configurationFilePath := ""
			if len(testCase.fileContent) > 0 {
				configurationFilePath = writeFixtureFile(subTest, searchDirectory, testCase.fileContent)
			}
			subTest.Setenv(testRemoteEnvironmentVariableConstant, testCase.environmentRemote)
			if len(testCase.environmentRemote) == 0 {
				require.NoError(subTest, os.Unsetenv(testRemoteEnvironmentVariableConstant))
			}

			configurationLoader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, []string{searchDirectory})
			configurationLoader.SetEmbeddedConfiguration([]byte(testCase.embeddedContent), testConfigurationTypeConstant)

			loadedConfiguration := configurationFixture{}
			metadata, loadError := configurationLoader.LoadConfiguration(configurationFilePath, map[string]any{testRemoteKeyConstant: "default-remote"}, &loadedConfiguration)
			require.NoError(subTest, loadError)
			require.Equal(subTest, testCase.expectedRemote, loadedConfiguration.Remote)
			require.Equal(subTest, testCase.expectedEnforce, loadedConfiguration.CommitAssistant.EnforceIssueLink)
			require.Equal(subTest, testCase.expectEmbeddedUsed, metadata.UsedEmbeddedConfiguration)
			require.Equal(subTest, configurationFilePath, metadata.ConfigFileUsed)
		})
	}
}

func TestConfigurationLoaderSearchesWorkingThenUserDirectory(testInstance *testing.T) {
	testInstance.Setenv("XDG_CONFIG_HOME", filepath.Join(testInstance.TempDir(), "config"))
	userConfigurationBaseDirectory, userConfigurationDirectoryError := os.UserConfigDir()
	require.NoError(testInstance, userConfigurationDirectoryError)
	userConfigurationDirectory := filepath.Join(userConfigurationBaseDirectory, testUserConfigurationDirectoryNameConstant)
	workingDirectory := testInstance.TempDir()

	configurationLoader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, []string{workingDirectory, userConfigurationDirectory})

	userConfigurationFilePath := writeFixtureFile(testInstance, userConfigurationDirectory, "remote: upstream\n")
	loadedConfiguration := configurationFixture{}
	metadata, loadError := configurationLoader.LoadConfiguration("", nil, &loadedConfiguration)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, "upstream", loadedConfiguration.Remote)
	require.Equal(testInstance, userConfigurationFilePath, metadata.ConfigFileUsed)

	workingConfigurationFilePath := writeFixtureFile(testInstance, workingDirectory, "remote: fork\n")
	loadedConfiguration = configurationFixture{}
	metadata, loadError = configurationLoader.LoadConfiguration("", nil, &loadedConfiguration)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, "fork", loadedConfiguration.Remote)
	require.Equal(testInstance, workingConfigurationFilePath, metadata.ConfigFileUsed)
}

func TestConfigurationLoaderFileReplacesEmbeddedDocument(testInstance *testing.T) {
	tempDirectory := testInstance.TempDir()
	configurationFilePath := filepath.Join(tempDirectory, testConfigFileNameConstant)
	writeError := os.WriteFile(configurationFilePath, []byte("common:\n  log_level: warn\n"), 0o600)
	require.NoError(testInstance, writeError)

	configurationLoader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, []string{tempDirectory})
	configurationLoader.SetEmbeddedConfiguration([]byte("common:\n  log_level: info\n  log_format: console\n  types: [feat, fix]\n"), testConfigurationTypeConstant)

	loadedConfiguration := configurationFixture{}
	metadata, loadError := configurationLoader.LoadConfiguration("", nil, &loadedConfiguration)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, "warn", loadedConfiguration.Common.LogLevel)
	require.Empty(testInstance, loadedConfiguration.Common.LogFormat)
	require.Empty(testInstance, loadedConfiguration.Common.Types)
	require.Equal(testInstance, configurationFilePath, metadata.Source())
}

func TestConfigurationLoaderSplitsCommaSeparatedEnvironmentLists(testInstance *testing.T) {
	testInstance.Setenv(testEnvironmentPrefixConstant+"_COMMON_TYPES", "feat,fix,docs")

	configurationLoader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, []string{testInstance.TempDir()})
	configurationLoader.SetEmbeddedConfiguration([]byte("common:\n  types: [chore]\n"), testConfigurationTypeConstant)

	loadedConfiguration := configurationFixture{}
	metadata, loadError := configurationLoader.LoadConfiguration("", nil, &loadedConfiguration)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, []string{"feat", "fix", "docs"}, loadedConfiguration.Common.Types)
	require.Equal(testInstance, "embedded", metadata.Source())
}

func TestConfigurationLoaderRejectsMissingExplicitFile(testInstance *testing.T) {
	configurationLoader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, nil)
	configurationLoader.SetEmbeddedConfiguration([]byte("common:\n  log_level: info\n"), testConfigurationTypeConstant)

	loadedConfiguration := configurationFixture{}
	_, loadError := configurationLoader.LoadConfiguration(filepath.Join(testInstance.TempDir(), "missing.yaml"), nil, &loadedConfiguration)
	require.Error(testInstance, loadError)
}

func TestConfigurationLoaderKeepsDottedMapKeys(testInstance *testing.T) {
	testInstance.Setenv(testEnvironmentPrefixConstant+"_COMMIT_ASSISTANT_ENFORCE_ISSUE_LINK", "false")

	configurationLoader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, []string{testInstance.TempDir()})
	configurationLoader.SetEmbeddedConfiguration([]byte("label_colors:\n  v1.0: 0e8a16\n  type:bug: d73a4a\ncommit_assistant:\n  enforce_issue_link: true\n"), testConfigurationTypeConstant)

	loadedConfiguration := configurationFixture{}
	_, loadError := configurationLoader.LoadConfiguration("", map[string]any{"common.log_level": "debug"}, &loadedConfiguration)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, map[string]string{"v1.0": "0e8a16", "type:bug": "d73a4a"}, loadedConfiguration.LabelColors)
	require.Equal(testInstance, "debug", loadedConfiguration.Common.LogLevel)
	require.False(testInstance, loadedConfiguration.CommitAssistant.EnforceIssueLink)
}
