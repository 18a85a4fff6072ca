package bootstrap

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/temirov/ghflow/internal/config"
)

const (
	frontMatterDelimiterConstant     = "---\n"
	frontMatterErrorTemplateConstant = "unable to render front matter for %s: %w"
	templateBodyTerminatorConstant   = "\n"
)

type issueTemplateFrontMatter struct {
	Name   string   `yaml:"name"`
	About  string   `yaml:"about"`
	Title  string   `yaml:"title,omitempty"`
	Labels []string `yaml:"labels,omitempty"`
}

// RenderIssueTemplate renders an issue template document as a Markdown file with YAML front matter.
func RenderIssueTemplate(document config.IssueTemplateDocument) (string, error) {
	frontMatter := issueTemplateFrontMatter{
		Name:   strings.TrimSpace(document.Name),
		About:  strings.TrimSpace(document.About),
		Title:  document.Title,
		Labels: document.Labels,
	}
	encodedFrontMatter, encodeError := yaml.Marshal(frontMatter)
	if encodeError != nil {
		return "", fmt.Errorf(frontMatterErrorTemplateConstant, document.FileName, encodeError)
	}

	var builder strings.Builder
	builder.WriteString(frontMatterDelimiterConstant)
	builder.Write(encodedFrontMatter)
	builder.WriteString(frontMatterDelimiterConstant)
	body := strings.TrimSpace(document.Body)
	if len(body) > 0 {
		builder.WriteString(templateBodyTerminatorConstant)
		builder.WriteString(body)
		builder.WriteString(templateBodyTerminatorConstant)
	}
	return builder.String(), nil
}

func renderPullRequestTemplate(content string) string {
	return strings.TrimSpace(content) + templateBodyTerminatorConstant
}
