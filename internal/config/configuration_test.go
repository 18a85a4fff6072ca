package config_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/ghflow/internal/config"
)

func TestConfigurationSanitizeRestoresDefaults(testInstance *testing.T) {
	sanitized := config.Configuration{
		Remote: "  ",
		Labels: map[string][]string{
			"type": {" type:bug ", ""},
			"  ":   {"ignored"},
		},
		LabelColors: map[string]string{" Type:Bug ": "#D73A4A"},
		CommitAssistant: config.CommitAssistantConfiguration{
			AllowedTypes: []string{" "},
		},
		Templates: config.TemplatesConfiguration{
			Enabled: true,
			Issue: []config.IssueTemplateDocument{
				{FileName: " bug_report.md ", Labels: []string{"type:bug", " "}},
				{FileName: ""},
			},
		},
	}.Sanitize()

	require.Equal(testInstance, "origin", sanitized.Remote)
	require.Equal(testInstance, map[string][]string{"type": {"type:bug"}}, sanitized.Labels)
	require.Equal(testInstance, map[string]string{"type:bug": "D73A4A"}, sanitized.LabelColors)
	require.Equal(testInstance, []string{"feat", "fix", "chore", "docs", "refactor", "test"}, sanitized.CommitAssistant.AllowedTypes)
	require.Equal(testInstance, `^(feat|fix|chore|docs|refactor)/(?P<id>\d+)(-.*)?$`, sanitized.CommitAssistant.BranchIssuePattern)
	require.Equal(testInstance, "{type}({scope}): {subject} #{issue}", sanitized.CommitAssistant.CommitFormat)
	require.Len(testInstance, sanitized.Templates.Issue, 1)
	require.Equal(testInstance, ".github/ISSUE_TEMPLATE/bug_report.md", sanitized.Templates.Issue[0].IssueTemplatePath())
	require.Equal(testInstance, []string{"type:bug"}, sanitized.Templates.Issue[0].Labels)
	require.NotEmpty(testInstance, sanitized.Templates.PullRequest)
}

func TestProjectTitleFallsBackToRepositoryName(testInstance *testing.T) {
	testCases := []struct {
		name          string
		title         string
		expectedTitle string
	}{
		{name: "configured", title: " Roadmap ", expectedTitle: "Roadmap"},
		{name: "fallback", title: "", expectedTitle: "hello-world"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			projects := config.ProjectsConfiguration{Title: testCase.title}
			require.Equal(testInstance, testCase.expectedTitle, projects.ProjectTitle("hello-world"))
		})
	}
}

func TestDeclaredLabelsAreOrderedByCategory(testInstance *testing.T) {
	configuration := config.Configuration{
		Labels: map[string][]string{
			"type":     {"type:bug", "type:feature"},
			"priority": {"p0", "p1"},
		},
	}

	require.Equal(testInstance, []config.LabelDeclaration{
		{Category: "priority", Name: "p0"},
		{Category: "priority", Name: "p1"},
		{Category: "type", Name: "type:bug"},
		{Category: "type", Name: "type:feature"},
	}, configuration.DeclaredLabels())
}

func TestDeclaredFieldsSkipEmptyOptionLists(testInstance *testing.T) {
	projects := config.ProjectsConfiguration{
		Fields: config.ProjectFieldsConfiguration{Status: []string{"Backlog", "Done"}},
	}

	require.Equal(testInstance, []config.ProjectField{{Name: "Status", Options: []string{"Backlog", "Done"}}}, projects.DeclaredFields())
}
