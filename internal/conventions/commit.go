package conventions

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const (
	typePlaceholderConstant               = "{type}"
	scopePlaceholderConstant              = "{scope}"
	subjectPlaceholderConstant            = "{subject}"
	issuePlaceholderConstant              = "{issue}"
	typeWithScopePlaceholderConstant      = "{type}({scope})"
	issueReferencePlaceholderConstant     = "#{issue}"
	minimumSubjectLengthConstant          = 5
	commentLinePrefixConstant             = "#"
	headerPatternConstant                 = `^(?P<type>[A-Za-z]+)(\([^)]*\))?!?: \S.*$`
	headerTypeGroupNameConstant           = "type"
	emptyCommitMessageMessageConstant     = "commit message is empty"
	subjectTooShortTemplateConstant       = "subject must be at least %d characters"
	malformedHeaderTemplateConstant       = "commit header %q does not follow <type>(<scope>): <subject>"
	disallowedTypeTemplateConstant        = "commit type %q is not one of %s"
	missingIssueReferenceTemplateConstant = "commit header %q does not reference an issue as #N"
	allowedTypesSeparatorConstant         = ", "
	repeatedWhitespacePatternConstant     = `[ \t]{2,}`
	singleSpaceConstant                   = " "
	trailingSeparatorCharactersConstant   = " :-"
)

var (
	// ErrEmptyCommitMessage indicates a message without any non-comment content.
	ErrEmptyCommitMessage = errors.New(emptyCommitMessageMessageConstant)

	headerPattern              = regexp.MustCompile(headerPatternConstant)
	repeatedWhitespacePattern  = regexp.MustCompile(repeatedWhitespacePatternConstant)
	exemptCommitHeaderPrefixes = []string{"Merge ", "Revert ", "fixup! ", "squash! ", "amend! "}
)

// CommitParts holds the values substituted into a commit format.
type CommitParts struct {
	Type    string
	Scope   string
	Subject string
	Issue   string
}

// CommitMessageError reports a commit message that violates the conventions.
type CommitMessageError struct {
	Message string
}

// Error describes the violation.
func (messageError CommitMessageError) Error() string {
	return messageError.Message
}

// SubjectLengthError reports a commit subject below the minimum length.
type SubjectLengthError struct {
	MinimumLength int
}

// Error describes the minimum length.
func (lengthError SubjectLengthError) Error() string {
	return fmt.Sprintf(subjectTooShortTemplateConstant, lengthError.MinimumLength)
}

// PrepareCommitFormat removes the placeholders left without a value. An empty scope collapses
// "{type}({scope})" to "{type}" and an empty issue removes the "#{issue}" reference.
func PrepareCommitFormat(format string, parts CommitParts) string {
	prepared := format
	if len(strings.TrimSpace(parts.Scope)) == 0 {
		prepared = strings.ReplaceAll(prepared, typeWithScopePlaceholderConstant, typePlaceholderConstant)
	}
	if len(strings.TrimSpace(parts.Issue)) == 0 {
		prepared = strings.ReplaceAll(prepared, issueReferencePlaceholderConstant, "")
	}
	return prepared
}

// FormatCommitMessage substitutes the commit parts into the prepared format.
func FormatCommitMessage(format string, parts CommitParts) string {
	message := PrepareCommitFormat(format, parts)

	replacer := strings.NewReplacer(
		typePlaceholderConstant, strings.TrimSpace(parts.Type),
		scopePlaceholderConstant, strings.TrimSpace(parts.Scope),
		subjectPlaceholderConstant, strings.TrimSpace(parts.Subject),
		issuePlaceholderConstant, strings.TrimPrefix(strings.TrimSpace(parts.Issue), commentLinePrefixConstant),
	)
	message = replacer.Replace(message)

	if len(strings.TrimSpace(parts.Issue)) == 0 {
		message = strings.TrimRight(repeatedWhitespacePattern.ReplaceAllString(message, singleSpaceConstant), trailingSeparatorCharactersConstant)
	}
	return message
}

// ValidateSubject enforces the minimum subject length.
func ValidateSubject(subject string) error {
	if len(strings.TrimSpace(subject)) < minimumSubjectLengthConstant {
		return SubjectLengthError{MinimumLength: minimumSubjectLengthConstant}
	}
	return nil
}

// ValidateCommitMessage checks the first content line of a commit message against the allowed types
// and, when enforceIssueLink is set, requires an issue reference. Merge, revert, and autosquash
// messages are accepted unchanged.
func ValidateCommitMessage(message string, allowedTypes []string, enforceIssueLink bool) error {
	header, headerFound := firstContentLine(message)
	if !headerFound {
		return ErrEmptyCommitMessage
	}

	for _, exemptPrefix := range exemptCommitHeaderPrefixes {
		if strings.HasPrefix(header, exemptPrefix) {
			return nil
		}
	}

	matches := headerPattern.FindStringSubmatch(header)
	if matches == nil {
		return CommitMessageError{Message: fmt.Sprintf(malformedHeaderTemplateConstant, header)}
	}

	commitType := matches[headerPattern.SubexpIndex(headerTypeGroupNameConstant)]
	if !containsFold(allowedTypes, commitType) {
		return CommitMessageError{Message: fmt.Sprintf(disallowedTypeTemplateConstant, commitType, strings.Join(allowedTypes, allowedTypesSeparatorConstant))}
	}

	if enforceIssueLink && !HasIssueReference(header) {
		return CommitMessageError{Message: fmt.Sprintf(missingIssueReferenceTemplateConstant, header)}
	}
	return nil
}

func firstContentLine(message string) (string, bool) {
	for _, line := range strings.Split(message, "\n") {
		trimmedLine := strings.TrimSpace(line)
		if len(trimmedLine) == 0 || strings.HasPrefix(trimmedLine, commentLinePrefixConstant) {
			continue
		}
		return trimmedLine, true
	}
	return "", false
}

func containsFold(values []string, candidate string) bool {
	for _, value := range values {
		if strings.EqualFold(value, candidate) {
			return true
		}
	}
	return false
}
