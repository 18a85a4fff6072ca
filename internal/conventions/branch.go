package conventions

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	issueIdentifierGroupNameConstant      = "id"
	branchNameTemplateConstant            = "%s/%d-%s"
	branchNameWithoutSlugTemplateConstant = "%s/%d"
	slugSeparatorConstant                 = "-"
	maximumSlugLengthConstant             = 50
	invalidPatternErrorTemplateConstant   = "invalid branch issue pattern %q: %w"
	missingGroupErrorTemplateConstant     = "branch issue pattern %q has no named group %q"
	branchTypeRequiredMessageConstant     = "branch type required"
	issueNumberInvalidMessageConstant     = "issue number must be positive"
	branchNameErrorTemplateConstant       = "%w: %s"
	closingReferencePatternConstant       = `(?i)\b(?:fixes|closes|resolves)\s+#(\d+)`
	issueReferencePatternConstant         = `#(\d+)`
	nonAlphanumericRunPatternConstant     = `[^a-z0-9]+`
)

var (
	// ErrBranchTypeRequired indicates an empty branch type was supplied.
	ErrBranchTypeRequired = errors.New(branchTypeRequiredMessageConstant)
	// ErrInvalidIssueNumber indicates a non-positive issue number was supplied.
	ErrInvalidIssueNumber = errors.New(issueNumberInvalidMessageConstant)

	closingReferencePattern   = regexp.MustCompile(closingReferencePatternConstant)
	issueReferencePattern     = regexp.MustCompile(issueReferencePatternConstant)
	nonAlphanumericRunPattern = regexp.MustCompile(nonAlphanumericRunPatternConstant)
)

// IssueExtractor reads the issue number encoded in a branch name.
type IssueExtractor struct {
	pattern    *regexp.Regexp
	groupIndex int
}

// NewIssueExtractor compiles a branch pattern carrying a named group "id".
func NewIssueExtractor(pattern string) (*IssueExtractor, error) {
	compiledPattern, compileError := regexp.Compile(pattern)
	if compileError != nil {
		return nil, fmt.Errorf(invalidPatternErrorTemplateConstant, pattern, compileError)
	}

	groupIndex := compiledPattern.SubexpIndex(issueIdentifierGroupNameConstant)
	if groupIndex < 0 {
		return nil, fmt.Errorf(missingGroupErrorTemplateConstant, pattern, issueIdentifierGroupNameConstant)
	}

	return &IssueExtractor{pattern: compiledPattern, groupIndex: groupIndex}, nil
}

// Extract returns the issue identifier of a branch name, or false when the name does not follow the convention.
func (extractor *IssueExtractor) Extract(branchName string) (string, bool) {
	matches := extractor.pattern.FindStringSubmatch(strings.TrimSpace(branchName))
	if matches == nil {
		return "", false
	}
	issueIdentifier := matches[extractor.groupIndex]
	if len(issueIdentifier) == 0 {
		return "", false
	}
	return issueIdentifier, true
}

// ExtractNumber returns the issue number of a branch name.
func (extractor *IssueExtractor) ExtractNumber(branchName string) (int, bool) {
	issueIdentifier, found := extractor.Extract(branchName)
	if !found {
		return 0, false
	}
	issueNumber, parseError := strconv.Atoi(issueIdentifier)
	if parseError != nil {
		return 0, false
	}
	return issueNumber, true
}

// Slugify lowercases text and joins its alphanumeric runs with dashes, capped at fifty characters.
func Slugify(text string) string {
	slug := nonAlphanumericRunPattern.ReplaceAllString(strings.ToLower(text), slugSeparatorConstant)
	slug = strings.Trim(slug, slugSeparatorConstant)
	if len(slug) > maximumSlugLengthConstant {
		slug = strings.Trim(slug[:maximumSlugLengthConstant], slugSeparatorConstant)
	}
	return slug
}

// BranchName builds <type>/<issue>-<slug> for an issue.
func BranchName(branchType string, issueNumber int, issueTitle string) (string, error) {
	trimmedType := strings.TrimSpace(branchType)
	if len(trimmedType) == 0 {
		return "", ErrBranchTypeRequired
	}
	if issueNumber <= 0 {
		return "", fmt.Errorf(branchNameErrorTemplateConstant, ErrInvalidIssueNumber, strconv.Itoa(issueNumber))
	}

	slug := Slugify(issueTitle)
	if len(slug) == 0 {
		return fmt.Sprintf(branchNameWithoutSlugTemplateConstant, trimmedType, issueNumber), nil
	}
	return fmt.Sprintf(branchNameTemplateConstant, trimmedType, issueNumber, slug), nil
}

// ClosingReferences returns the issue numbers referenced by Fixes, Closes, or Resolves keywords, in order of appearance.
func ClosingReferences(body string) []int {
	var issueNumbers []int
	seen := map[int]struct{}{}
	for _, match := range closingReferencePattern.FindAllStringSubmatch(body, -1) {
		issueNumber, parseError := strconv.Atoi(match[1])
		if parseError != nil {
			continue
		}
		if _, duplicate := seen[issueNumber]; duplicate {
			continue
		}
		seen[issueNumber] = struct{}{}
		issueNumbers = append(issueNumbers, issueNumber)
	}
	return issueNumbers
}

// HasIssueReference reports whether text mentions an issue as #N.
func HasIssueReference(text string) bool {
	return issueReferencePattern.MatchString(text)
}
