package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
	fallbackUnknownValueLabelConstant       = "unknown"
	flagPrefixConstant                      = "-"
)

const (
	gitInitSubcommandNameConstant     = "init"
	gitBranchSubcommandNameConstant   = "branch"
	gitShowCurrentFlagConstant        = "--show-current"
	gitDiffSubcommandNameConstant     = "diff"
	gitAddSubcommandNameConstant      = "add"
	gitCommitSubcommandNameConstant   = "commit"
	gitMessageFlagConstant            = "-m"
	gitCheckoutSubcommandNameConstant = "checkout"
	gitCreateBranchFlagConstant       = "-b"
	gitPushSubcommandNameConstant     = "push"
	gitPullSubcommandNameConstant     = "pull"
	gitRevParseSubcommandNameConstant = "rev-parse"
	gitLogSubcommandNameConstant      = "log"
	gitRemoteSubcommandNameConstant   = "remote"
	gitGetURLSubcommandNameConstant   = "get-url"
	gitSetUpstreamFlagConstant        = "-u"
)

const (
	githubRepoSubcommandNameConstant   = "repo"
	githubCreateSubcommandNameConstant = "create"
	githubAPICommandNameConstant       = "api"
	githubGraphQLEndpointConstant      = "graphql"
	githubAuthSubcommandNameConstant   = "auth"
	githubTokenSubcommandNameConstant  = "token"
)

type stageTemplates struct {
	start            string
	success          string
	failure          string
	executionFailure string
}

var (
	gitInitTemplates = stageTemplates{
		start:            "Initializing repository in %s",
		success:          "Initialized repository in %s",
		failure:          "Failed to initialize repository in %s (exit code %d%s)",
		executionFailure: "Unable to initialize repository in %s: %s",
	}
	gitCurrentBranchTemplates = stageTemplates{
		start:            "Identifying current branch in %s",
		success:          "Identified current branch in %s",
		failure:          "Failed to identify current branch in %s (exit code %d%s)",
		executionFailure: "Unable to identify current branch in %s: %s",
	}
	gitStagedChangesTemplates = stageTemplates{
		start:            "Checking staged changes in %s",
		success:          "No staged changes in %s",
		failure:          "Staged changes present in %s (exit code %d%s)",
		executionFailure: "Unable to check staged changes in %s: %s",
	}
	gitAddTemplates = stageTemplates{
		start:            "Staging %s in %s",
		success:          "Staged %s in %s",
		failure:          "Failed to stage %s in %s (exit code %d%s)",
		executionFailure: "Unable to stage %s in %s: %s",
	}
	gitCommitTemplates = stageTemplates{
		start:            "Creating commit in %s with message %q",
		success:          "Created commit in %s with message %q",
		failure:          "Failed to create commit in %s with message %q (exit code %d%s)",
		executionFailure: "Unable to create commit in %s with message %q: %s",
	}
	gitBranchCreationTemplates = stageTemplates{
		start:            "Creating branch %s in %s",
		success:          "Created branch %s in %s",
		failure:          "Failed to create branch %s in %s (exit code %d%s)",
		executionFailure: "Unable to create branch %s in %s: %s",
	}
	gitCheckoutTemplates = stageTemplates{
		start:            "Switching %s to branch %s",
		success:          "%s now on branch %s",
		failure:          "Failed to switch %s to branch %s (exit code %d%s)",
		executionFailure: "Unable to switch %s to branch %s: %s",
	}
	gitPushTemplates = stageTemplates{
		start:            "Pushing %s to %s from %s",
		success:          "Pushed %s to %s from %s",
		failure:          "Failed to push %s to %s from %s (exit code %d%s)",
		executionFailure: "Unable to push %s to %s from %s: %s",
	}
	gitPullTemplates = stageTemplates{
		start:            "Pulling latest changes in %s",
		success:          "Pulled latest changes in %s",
		failure:          "Failed to pull latest changes in %s (exit code %d%s)",
		executionFailure: "Unable to pull latest changes in %s: %s",
	}
	gitRevParseTemplates = stageTemplates{
		start:            "Resolving %s in %s",
		success:          "Resolved %s in %s",
		failure:          "Failed to resolve %s in %s (exit code %d%s)",
		executionFailure: "Unable to resolve %s in %s: %s",
	}
	gitLogTemplates = stageTemplates{
		start:            "Reading commit history in %s",
		success:          "Read commit history in %s",
		failure:          "Failed to read commit history in %s (exit code %d%s)",
		executionFailure: "Unable to read commit history in %s: %s",
	}
	gitRemoteLookupTemplates = stageTemplates{
		start:            "Checking %s remote for %s",
		success:          "Read %s remote for %s",
		failure:          "Failed to read %s remote for %s (exit code %d%s)",
		executionFailure: "Unable to read %s remote for %s: %s",
	}
	githubRepoCreateTemplates = stageTemplates{
		start:            "Creating GitHub repository %s",
		success:          "Created GitHub repository %s",
		failure:          "Failed to create GitHub repository %s (exit code %d%s)",
		executionFailure: "Unable to create GitHub repository %s: %s",
	}
	githubGraphQLTemplates = stageTemplates{
		start:            "Sending GraphQL request%s",
		success:          "Received GraphQL response%s",
		failure:          "GraphQL request%s failed (exit code %d%s)",
		executionFailure: "Unable to send GraphQL request%s: %s",
	}
	githubAuthTokenTemplates = stageTemplates{
		start:            "Reading GitHub CLI credentials%s",
		success:          "Read GitHub CLI credentials%s",
		failure:          "Failed to read GitHub CLI credentials%s (exit code %d%s)",
		executionFailure: "Unable to read GitHub CLI credentials%s: %s",
	}
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	switch command.Name {
	case CommandGit:
		return formatter.describeGitMessage(command, result, failure, stage)
	case CommandGitHub:
		return formatter.describeGitHubMessage(command, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	if len(arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	workingDirectory := formatter.describeWorkingDirectory(command)
	switch strings.TrimSpace(arguments[0]) {
	case gitInitSubcommandNameConstant:
		return formatter.formatStage(gitInitTemplates, stage, result, failure, workingDirectory)
	case gitBranchSubcommandNameConstant:
		if containsArgument(arguments, gitShowCurrentFlagConstant) {
			return formatter.formatStage(gitCurrentBranchTemplates, stage, result, failure, workingDirectory)
		}
	case gitDiffSubcommandNameConstant:
		return formatter.formatStage(gitStagedChangesTemplates, stage, result, failure, workingDirectory)
	case gitAddSubcommandNameConstant:
		pathSpecification := strings.Join(formatter.positionalArguments(arguments[1:]), commandArgumentsJoinSeparatorConstant)
		return formatter.formatStage(gitAddTemplates, stage, result, failure, formatter.ensureValue(pathSpecification), workingDirectory)
	case gitCommitSubcommandNameConstant:
		commitMessage := findFlagValue(arguments, gitMessageFlagConstant)
		return formatter.formatStage(gitCommitTemplates, stage, result, failure, workingDirectory, formatter.firstLine(commitMessage))
	case gitCheckoutSubcommandNameConstant:
		if containsArgument(arguments, gitCreateBranchFlagConstant) {
			branchName := formatter.ensureValue(findFlagValue(arguments, gitCreateBranchFlagConstant))
			return formatter.formatStage(gitBranchCreationTemplates, stage, result, failure, branchName, workingDirectory)
		}
		positional := formatter.positionalArguments(arguments[1:])
		return formatter.formatStage(gitCheckoutTemplates, stage, result, failure, workingDirectory, formatter.ensureValue(formatter.argumentAtIndex(positional, 0)))
	case gitPushSubcommandNameConstant:
		positional := formatter.positionalArguments(arguments[1:])
		remoteName := formatter.ensureValue(formatter.argumentAtIndex(positional, 0))
		reference := formatter.ensureValue(formatter.argumentAtIndex(positional, 1))
		return formatter.formatStage(gitPushTemplates, stage, result, failure, reference, remoteName, workingDirectory)
	case gitPullSubcommandNameConstant:
		return formatter.formatStage(gitPullTemplates, stage, result, failure, workingDirectory)
	case gitRevParseSubcommandNameConstant:
		reference := strings.Join(arguments[1:], commandArgumentsJoinSeparatorConstant)
		return formatter.formatStage(gitRevParseTemplates, stage, result, failure, formatter.ensureValue(reference), workingDirectory)
	case gitLogSubcommandNameConstant:
		return formatter.formatStage(gitLogTemplates, stage, result, failure, workingDirectory)
	case gitRemoteSubcommandNameConstant:
		if len(arguments) >= 3 && strings.TrimSpace(arguments[1]) == gitGetURLSubcommandNameConstant {
			return formatter.formatStage(gitRemoteLookupTemplates, stage, result, failure, formatter.ensureValue(arguments[2]), workingDirectory)
		}
	}

	return formatter.buildGenericMessage(command, result, failure, stage)
}

func (formatter CommandMessageFormatter) describeGitHubMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	if len(arguments) < 2 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	primary := strings.TrimSpace(arguments[0])
	secondary := strings.TrimSpace(arguments[1])
	workingDirectorySuffix := formatter.formatWorkingDirectorySuffix(command)

	switch {
	case primary == githubRepoSubcommandNameConstant && secondary == githubCreateSubcommandNameConstant:
		repositoryName := formatter.ensureValue(formatter.argumentAtIndex(arguments, 2))
		return formatter.formatStage(githubRepoCreateTemplates, stage, result, failure, repositoryName)
	case primary == githubAPICommandNameConstant && secondary == githubGraphQLEndpointConstant:
		return formatter.formatStage(githubGraphQLTemplates, stage, result, failure, workingDirectorySuffix)
	case primary == githubAuthSubcommandNameConstant && secondary == githubTokenSubcommandNameConstant:
		return formatter.formatStage(githubAuthTokenTemplates, stage, result, failure, workingDirectorySuffix)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

// formatStage renders one of the four templates; failure templates receive the
// exit code and stderr suffix, execution failure templates the failure text.
func (formatter CommandMessageFormatter) formatStage(templates stageTemplates, stage messageStage, result ExecutionResult, failure error, subjects ...any) string {
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(templates.start, subjects...)
	case messageStageSuccess:
		return fmt.Sprintf(templates.success, subjects...)
	case messageStageFailure:
		failureArguments := append(append([]any{}, subjects...), result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		return fmt.Sprintf(templates.failure, failureArguments...)
	case messageStageExecutionFailure:
		failureArguments := append(append([]any{}, subjects...), formatter.describeFailure(failure))
		return fmt.Sprintf(templates.executionFailure, failureArguments...)
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandLabel := string(command.Name)
	if len(command.Details.Arguments) > 0 {
		commandLabel = fmt.Sprintf("%s %s", commandLabel, strings.Join(redactArguments(command.Details.Arguments), commandArgumentsJoinSeparatorConstant))
	}
	workingDirectorySuffix := formatter.formatWorkingDirectorySuffix(command)
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, workingDirectorySuffix)
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	trimmedValue := strings.TrimSpace(value)
	if len(trimmedValue) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return trimmedValue
}

func (formatter CommandMessageFormatter) argumentAtIndex(arguments []string, index int) string {
	if index < 0 || index >= len(arguments) {
		return emptyStringConstant
	}
	return strings.TrimSpace(arguments[index])
}

func (formatter CommandMessageFormatter) positionalArguments(arguments []string) []string {
	positional := make([]string, 0, len(arguments))
	for _, argument := range arguments {
		trimmedArgument := strings.TrimSpace(argument)
		if len(trimmedArgument) == 0 || strings.HasPrefix(trimmedArgument, flagPrefixConstant) {
			continue
		}
		positional = append(positional, trimmedArgument)
	}
	return positional
}

func (formatter CommandMessageFormatter) firstLine(message string) string {
	trimmedMessage := strings.TrimSpace(message)
	if newlineIndex := strings.Index(trimmedMessage, "\n"); newlineIndex >= 0 {
		return strings.TrimSpace(trimmedMessage[:newlineIndex])
	}
	return trimmedMessage
}

func containsArgument(arguments []string, value string) bool {
	for _, argument := range arguments {
		if strings.TrimSpace(argument) == value {
			return true
		}
	}
	return false
}

func findFlagValue(arguments []string, flag string) string {
	for argumentIndex := 0; argumentIndex < len(arguments)-1; argumentIndex++ {
		if strings.TrimSpace(arguments[argumentIndex]) == flag {
			return arguments[argumentIndex+1]
		}
	}
	return emptyStringConstant
}
