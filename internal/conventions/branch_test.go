package conventions_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/ghflow/internal/conventions"
)

const (
	testBranchPatternConstant = `^(feat|fix|chore|docs|refactor)/(?P<id>\d+)(-.*)?$`
)

func TestIssueExtractorExtract(testInstance *testing.T) {
	extractor, creationError := conventions.NewIssueExtractor(testBranchPatternConstant)
	require.NoError(testInstance, creationError)

	testCases := []struct {
		name          string
		branchName    string
		expectedID    string
		expectedFound bool
	}{
		{name: "feature_with_slug", branchName: "feat/123-add-login", expectedID: "123", expectedFound: true},
		{name: "fix_without_slug", branchName: "fix/7", expectedID: "7", expectedFound: true},
		{name: "refactor", branchName: "refactor/42-cleanup", expectedID: "42", expectedFound: true},
		{name: "docs", branchName: "docs/9-readme", expectedID: "9", expectedFound: true},
		{name: "chore", branchName: "chore/1-", expectedID: "1", expectedFound: true},
		{name: "main", branchName: "main", expectedFound: false},
		{name: "feature_prefix_not_allowed", branchName: "feature/123-foo", expectedFound: false},
		{name: "missing_number", branchName: "feat/login", expectedFound: false},
		{name: "empty", branchName: "", expectedFound: false},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			issueID, found := extractor.Extract(testCase.branchName)
			require.Equal(testInstance, testCase.expectedFound, found)
			require.Equal(testInstance, testCase.expectedID, issueID)
		})
	}
}

func TestIssueExtractorExtractNumber(testInstance *testing.T) {
	extractor, creationError := conventions.NewIssueExtractor(testBranchPatternConstant)
	require.NoError(testInstance, creationError)

	issueNumber, found := extractor.ExtractNumber("feat/12-login")
	require.True(testInstance, found)
	require.Equal(testInstance, 12, issueNumber)
}

func TestNewIssueExtractorRejectsInvalidPatterns(testInstance *testing.T) {
	testCases := []struct {
		name    string
		pattern string
	}{
		{name: "invalid_regex", pattern: `^(feat`},
		{name: "missing_named_group", pattern: `^(feat|fix)/(\d+)$`},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			extractor, creationError := conventions.NewIssueExtractor(testCase.pattern)
			require.Error(testInstance, creationError)
			require.Nil(testInstance, extractor)
		})
	}
}

func TestSlugify(testInstance *testing.T) {
	testCases := []struct {
		name         string
		text         string
		expectedSlug string
	}{
		{name: "punctuation", text: "Fix: Login fails on Safari!", expectedSlug: "fix-login-fails-on-safari"},
		{name: "surrounding_separators", text: "  --Hello World--  ", expectedSlug: "hello-world"},
		{name: "empty", text: "!!!", expectedSlug: ""},
		{
			name:         "truncated",
			text:         "a very long issue title that keeps going well past the fifty character limit",
			expectedSlug: "a-very-long-issue-title-that-keeps-going-well-past",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			slug := conventions.Slugify(testCase.text)
			require.Equal(testInstance, testCase.expectedSlug, slug)
			require.LessOrEqual(testInstance, len(slug), 50)
		})
	}
}

func TestBranchName(testInstance *testing.T) {
	branchName, nameError := conventions.BranchName("feat", 12, "Add login page")
	require.NoError(testInstance, nameError)
	require.Equal(testInstance, "feat/12-add-login-page", branchName)

	branchName, nameError = conventions.BranchName("fix", 3, "???")
	require.NoError(testInstance, nameError)
	require.Equal(testInstance, "fix/3", branchName)

	_, nameError = conventions.BranchName(" ", 3, "title")
	require.ErrorIs(testInstance, nameError, conventions.ErrBranchTypeRequired)

	_, nameError = conventions.BranchName("feat", 0, "title")
	require.ErrorIs(testInstance, nameError, conventions.ErrInvalidIssueNumber)
}

func TestClosingReferences(testInstance *testing.T) {
	testCases := []struct {
		name            string
		body            string
		expectedNumbers []int
	}{
		{name: "fixes", body: "Summary\n\nFixes #12", expectedNumbers: []int{12}},
		{name: "mixed_case_and_duplicates", body: "closes #3, RESOLVES #4 and fixes #3", expectedNumbers: []int{3, 4}},
		{name: "plain_mention", body: "Related to #8", expectedNumbers: nil},
		{name: "empty", body: "", expectedNumbers: nil},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedNumbers, conventions.ClosingReferences(testCase.body))
		})
	}
}
