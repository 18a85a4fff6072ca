package config

import (
	"sort"
	"strings"
)

const (
	commonConfigurationKeyConstant            = "common"
	remoteConfigurationKeyConstant            = "remote"
	projectsConfigurationKeyConstant          = "projects_v2"
	commitAssistantConfigurationKeyConstant   = "commit_assistant"
	templatesConfigurationKeyConstant         = "templates"
	logLevelConfigurationKeyConstant          = commonConfigurationKeyConstant + ".log_level"
	logFormatConfigurationKeyConstant         = commonConfigurationKeyConstant + ".log_format"
	projectsEnabledConfigurationKeyConstant   = projectsConfigurationKeyConstant + ".enabled"
	allowedTypesConfigurationKeyConstant      = commitAssistantConfigurationKeyConstant + ".allowed_types"
	branchPatternConfigurationKeyConstant     = commitAssistantConfigurationKeyConstant + ".branch_issue_pattern"
	commitFormatConfigurationKeyConstant      = commitAssistantConfigurationKeyConstant + ".commit_format"
	enforceIssueLinkConfigurationKeyConstant  = commitAssistantConfigurationKeyConstant + ".enforce_issue_link"
	templatesEnabledConfigurationKeyConstant  = templatesConfigurationKeyConstant + ".enabled"
	defaultLogLevelConstant                   = "info"
	defaultLogFormatConstant                  = "console"
	defaultRemoteNameConstant                 = "origin"
	defaultBranchIssuePatternConstant         = `^(feat|fix|chore|docs|refactor)/(?P<id>\d+)(-.*)?$`
	defaultCommitFormatConstant               = "{type}({scope}): {subject} #{issue}"
	defaultStatusFieldNameConstant            = "Status"
	defaultPriorityFieldNameConstant          = "Priority"
	defaultPullRequestTemplatePathConstant    = ".github/PULL_REQUEST_TEMPLATE.md"
	defaultIssueTemplateDirectoryConstant     = ".github/ISSUE_TEMPLATE"
	issueTemplatePathSeparatorConstant        = "/"
	defaultPullRequestTemplateContentConstant = "## Summary\n\n## Changes\n\n## Testing\n"
)

// Workflow stage names of the board Status field.
const (
	StatusBacklog    = "Backlog"
	StatusReady      = "Ready"
	StatusInProgress = "In Progress"
	StatusReview     = "Review"
	StatusDone       = "Done"
)

var defaultAllowedCommitTypes = []string{"feat", "fix", "chore", "docs", "refactor", "test"}

// Configuration is the full ghflow configuration document.
type Configuration struct {
	Common          CommonConfiguration          `mapstructure:"common"`
	Remote          string                       `mapstructure:"remote"`
	Labels          map[string][]string          `mapstructure:"labels"`
	LabelColors     map[string]string            `mapstructure:"label_colors"`
	ProjectsV2      ProjectsConfiguration        `mapstructure:"projects_v2"`
	CommitAssistant CommitAssistantConfiguration `mapstructure:"commit_assistant"`
	Templates       TemplatesConfiguration       `mapstructure:"templates"`
}

// CommonConfiguration stores logging configuration shared across commands.
type CommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// ProjectsConfiguration describes the Projects v2 board kept in sync with the workflow.
type ProjectsConfiguration struct {
	Enabled bool                       `mapstructure:"enabled"`
	Title   string                     `mapstructure:"title"`
	Owner   string                     `mapstructure:"owner"`
	Fields  ProjectFieldsConfiguration `mapstructure:"fields"`
}

// ProjectFieldsConfiguration lists the desired options of the board's single-select fields.
type ProjectFieldsConfiguration struct {
	Status   []string `mapstructure:"status"`
	Priority []string `mapstructure:"priority"`
}

// CommitAssistantConfiguration controls commit message and branch conventions.
type CommitAssistantConfiguration struct {
	AllowedTypes       []string `mapstructure:"allowed_types"`
	BranchIssuePattern string   `mapstructure:"branch_issue_pattern"`
	CommitFormat       string   `mapstructure:"commit_format"`
	EnforceIssueLink   bool     `mapstructure:"enforce_issue_link"`
}

// TemplatesConfiguration lists repository templates uploaded by bootstrap.
type TemplatesConfiguration struct {
	Enabled     bool                    `mapstructure:"enabled"`
	Issue       []IssueTemplateDocument `mapstructure:"issue"`
	PullRequest string                  `mapstructure:"pull_request"`
}

// IssueTemplateDocument describes one markdown issue template.
type IssueTemplateDocument struct {
	FileName string   `mapstructure:"file_name"`
	Name     string   `mapstructure:"name"`
	About    string   `mapstructure:"about"`
	Title    string   `mapstructure:"title"`
	Labels   []string `mapstructure:"labels"`
	Body     string   `mapstructure:"body"`
}

// ProjectField pairs a board field name with its desired options.
type ProjectField struct {
	Name    string
	Options []string
}

// LabelDeclaration is a declared label together with the category it belongs to.
type LabelDeclaration struct {
	Category string
	Name     string
}

// DefaultConfigurationValues returns the viper defaults applied beneath every configuration document.
func DefaultConfigurationValues() map[string]any {
	return map[string]any{
		logLevelConfigurationKeyConstant:         defaultLogLevelConstant,
		logFormatConfigurationKeyConstant:        defaultLogFormatConstant,
		remoteConfigurationKeyConstant:           defaultRemoteNameConstant,
		projectsEnabledConfigurationKeyConstant:  false,
		allowedTypesConfigurationKeyConstant:     append([]string{}, defaultAllowedCommitTypes...),
		branchPatternConfigurationKeyConstant:    defaultBranchIssuePatternConstant,
		commitFormatConfigurationKeyConstant:     defaultCommitFormatConstant,
		enforceIssueLinkConfigurationKeyConstant: true,
		templatesEnabledConfigurationKeyConstant: false,
	}
}

// Sanitize trims values and restores defaults for required settings left empty.
func (configuration Configuration) Sanitize() Configuration {
	sanitized := configuration

	sanitized.Common.LogLevel = strings.TrimSpace(configuration.Common.LogLevel)
	sanitized.Common.LogFormat = strings.TrimSpace(configuration.Common.LogFormat)

	sanitized.Remote = strings.TrimSpace(configuration.Remote)
	if len(sanitized.Remote) == 0 {
		sanitized.Remote = defaultRemoteNameConstant
	}

	sanitized.Labels = make(map[string][]string, len(configuration.Labels))
	for category, labelNames := range configuration.Labels {
		trimmedCategory := strings.TrimSpace(category)
		if len(trimmedCategory) == 0 {
			continue
		}
		sanitized.Labels[trimmedCategory] = sanitizeList(labelNames)
	}

	sanitized.LabelColors = make(map[string]string, len(configuration.LabelColors))
	for labelName, color := range configuration.LabelColors {
		sanitized.LabelColors[strings.ToLower(strings.TrimSpace(labelName))] = strings.TrimPrefix(strings.TrimSpace(color), "#")
	}

	sanitized.ProjectsV2.Title = strings.TrimSpace(configuration.ProjectsV2.Title)
	sanitized.ProjectsV2.Owner = strings.TrimSpace(configuration.ProjectsV2.Owner)
	sanitized.ProjectsV2.Fields.Status = sanitizeList(configuration.ProjectsV2.Fields.Status)
	sanitized.ProjectsV2.Fields.Priority = sanitizeList(configuration.ProjectsV2.Fields.Priority)

	sanitized.CommitAssistant.AllowedTypes = sanitizeList(configuration.CommitAssistant.AllowedTypes)
	if len(sanitized.CommitAssistant.AllowedTypes) == 0 {
		sanitized.CommitAssistant.AllowedTypes = append([]string{}, defaultAllowedCommitTypes...)
	}
	sanitized.CommitAssistant.BranchIssuePattern = strings.TrimSpace(configuration.CommitAssistant.BranchIssuePattern)
	if len(sanitized.CommitAssistant.BranchIssuePattern) == 0 {
		sanitized.CommitAssistant.BranchIssuePattern = defaultBranchIssuePatternConstant
	}
	sanitized.CommitAssistant.CommitFormat = strings.TrimSpace(configuration.CommitAssistant.CommitFormat)
	if len(sanitized.CommitAssistant.CommitFormat) == 0 {
		sanitized.CommitAssistant.CommitFormat = defaultCommitFormatConstant
	}

	sanitized.Templates.Issue = make([]IssueTemplateDocument, 0, len(configuration.Templates.Issue))
	for _, issueTemplate := range configuration.Templates.Issue {
		issueTemplate.FileName = strings.TrimSpace(issueTemplate.FileName)
		if len(issueTemplate.FileName) == 0 {
			continue
		}
		issueTemplate.Labels = sanitizeList(issueTemplate.Labels)
		sanitized.Templates.Issue = append(sanitized.Templates.Issue, issueTemplate)
	}
	if configuration.Templates.Enabled && len(strings.TrimSpace(configuration.Templates.PullRequest)) == 0 {
		sanitized.Templates.PullRequest = defaultPullRequestTemplateContentConstant
	}

	return sanitized
}

// ProjectTitle returns the configured board title, falling back to the repository name.
func (projects ProjectsConfiguration) ProjectTitle(repositoryName string) string {
	if len(strings.TrimSpace(projects.Title)) > 0 {
		return strings.TrimSpace(projects.Title)
	}
	return strings.TrimSpace(repositoryName)
}

// IssuePattern returns the branch issue pattern, falling back to the default convention.
func (commitAssistant CommitAssistantConfiguration) IssuePattern() string {
	if len(strings.TrimSpace(commitAssistant.BranchIssuePattern)) > 0 {
		return strings.TrimSpace(commitAssistant.BranchIssuePattern)
	}
	return defaultBranchIssuePatternConstant
}

// DeclaredFields lists the single-select fields that carry desired options, Status first.
func (projects ProjectsConfiguration) DeclaredFields() []ProjectField {
	var fields []ProjectField
	if len(projects.Fields.Status) > 0 {
		fields = append(fields, ProjectField{Name: defaultStatusFieldNameConstant, Options: append([]string{}, projects.Fields.Status...)})
	}
	if len(projects.Fields.Priority) > 0 {
		fields = append(fields, ProjectField{Name: defaultPriorityFieldNameConstant, Options: append([]string{}, projects.Fields.Priority...)})
	}
	return fields
}

// DeclaredLabels flattens the label map in category order, preserving the order within each category.
func (configuration Configuration) DeclaredLabels() []LabelDeclaration {
	categories := make([]string, 0, len(configuration.Labels))
	for category := range configuration.Labels {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	var declarations []LabelDeclaration
	for _, category := range categories {
		for _, labelName := range configuration.Labels[category] {
			declarations = append(declarations, LabelDeclaration{Category: category, Name: labelName})
		}
	}
	return declarations
}

// IssueTemplatePath returns the repository path of an issue template.
func (document IssueTemplateDocument) IssueTemplatePath() string {
	return defaultIssueTemplateDirectoryConstant + issueTemplatePathSeparatorConstant + document.FileName
}

// PullRequestTemplatePath returns the repository path of the pull request template.
func PullRequestTemplatePath() string {
	return defaultPullRequestTemplatePathConstant
}

func sanitizeList(values []string) []string {
	sanitized := make([]string, 0, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if len(trimmed) == 0 {
			continue
		}
		sanitized = append(sanitized, trimmed)
	}
	return sanitized
}
