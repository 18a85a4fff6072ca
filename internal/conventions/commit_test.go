package conventions_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/ghflow/internal/conventions"
)

const (
	testCommitFormatConstant = "{type}({scope}): {subject} #{issue}"
)

var testAllowedTypes = []string{"feat", "fix", "chore", "docs", "refactor"}

func TestPrepareCommitFormatCollapsesEmptyScope(testInstance *testing.T) {
	prepared := conventions.PrepareCommitFormat(testCommitFormatConstant, conventions.CommitParts{Type: "feat", Subject: "add login", Issue: "12"})
	require.Equal(testInstance, "{type}: {subject} #{issue}", prepared)
}

func TestFormatCommitMessage(testInstance *testing.T) {
	testCases := []struct {
		name            string
		format          string
		parts           conventions.CommitParts
		expectedMessage string
	}{
		{
			name:            "with_scope_and_issue",
			format:          testCommitFormatConstant,
			parts:           conventions.CommitParts{Type: "feat", Scope: "auth", Subject: "add login", Issue: "12"},
			expectedMessage: "feat(auth): add login #12",
		},
		{
			name:            "empty_scope",
			format:          testCommitFormatConstant,
			parts:           conventions.CommitParts{Type: "fix", Subject: "handle nil token", Issue: "7"},
			expectedMessage: "fix: handle nil token #7",
		},
		{
			name:            "issue_with_hash",
			format:          testCommitFormatConstant,
			parts:           conventions.CommitParts{Type: "fix", Subject: "handle nil token", Issue: "#7"},
			expectedMessage: "fix: handle nil token #7",
		},
		{
			name:            "no_issue",
			format:          testCommitFormatConstant,
			parts:           conventions.CommitParts{Type: "chore", Subject: "bump deps"},
			expectedMessage: "chore: bump deps",
		},
		{
			name:            "custom_format",
			format:          "[{issue}] {type}: {subject}",
			parts:           conventions.CommitParts{Type: "docs", Subject: "document hooks", Issue: "5"},
			expectedMessage: "[5] docs: document hooks",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedMessage, conventions.FormatCommitMessage(testCase.format, testCase.parts))
		})
	}
}

func TestValidateSubject(testInstance *testing.T) {
	require.NoError(testInstance, conventions.ValidateSubject("add login"))

	subjectError := conventions.ValidateSubject(" fix ")
	require.ErrorAs(testInstance, subjectError, &conventions.SubjectLengthError{})
	require.Equal(testInstance, "subject must be at least 5 characters", subjectError.Error())
}

func TestValidateCommitMessage(testInstance *testing.T) {
	testCases := []struct {
		name             string
		message          string
		enforceIssueLink bool
		expectError      bool
	}{
		{name: "valid_with_scope", message: "feat(auth): add login #12", enforceIssueLink: true},
		{name: "valid_breaking", message: "refactor!: drop legacy config #3", enforceIssueLink: true},
		{name: "valid_without_issue_when_not_enforced", message: "docs: update readme", enforceIssueLink: false},
		{name: "skips_comment_lines", message: "# Please enter the commit message\n\nfix: handle nil token #7\n", enforceIssueLink: true},
		{name: "merge_commit", message: "Merge branch 'main' into feat/12-login", enforceIssueLink: true},
		{name: "fixup_commit", message: "fixup! feat: add login #12", enforceIssueLink: true},
		{name: "missing_issue", message: "feat: add login", enforceIssueLink: true, expectError: true},
		{name: "disallowed_type", message: "wip: add login #12", enforceIssueLink: true, expectError: true},
		{name: "malformed_header", message: "add login #12", enforceIssueLink: true, expectError: true},
		{name: "empty", message: "# only comments\n", enforceIssueLink: true, expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			validationError := conventions.ValidateCommitMessage(testCase.message, testAllowedTypes, testCase.enforceIssueLink)
			if testCase.expectError {
				require.Error(testInstance, validationError)
				return
			}
			require.NoError(testInstance, validationError)
		})
	}
}
