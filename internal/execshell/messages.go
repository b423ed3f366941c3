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
	exitCodeSuffixTemplateConstant          = " (exit code %d%s)"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
	fallbackUnknownValueLabelConstant       = "unknown"
	flagPrefixConstant                      = "-"
	authorFlagPrefixConstant                = "--author="
)

const (
	gitConfigSubcommandNameConstant       = "config"
	gitRemoteSubcommandNameConstant       = "remote"
	gitRemoteAddSubcommandNameConstant    = "add"
	gitRemoteUpdateSubcommandNameConstant = "update"
	gitFetchSubcommandNameConstant        = "fetch"
	gitCheckoutSubcommandNameConstant     = "checkout"
	gitCherryPickSubcommandNameConstant   = "cherry-pick"
	gitShowSubcommandNameConstant         = "show"
	gitCommitSubcommandNameConstant       = "commit"
	gitPushSubcommandNameConstant         = "push"
	gitCreateBranchFlagConstant           = "-b"
	gitAllFlagConstant                    = "--all"
	gitAmendFlagConstant                  = "--amend"
	gitMainlineFlagConstant               = "-m"
	gitUpstreamFlagConstant               = "-u"
	gitLocalFlagConstant                  = "--local"
	gitGlobalFlagConstant                 = "--global"
)

const (
	gitConfigStartTemplateConstant                  = "Setting %s to %q in %s"
	gitConfigSuccessTemplateConstant                = "Set %s to %q in %s"
	gitConfigFailureTemplateConstant                = "Failed to set %s in %s"
	gitConfigExecutionFailureTemplateConstant       = "Unable to set %s in %s: %s"
	gitRemoteAddStartTemplateConstant               = "Adding remote %s pointing to %s in %s"
	gitRemoteAddSuccessTemplateConstant             = "Remote %s now points to %s in %s"
	gitRemoteAddFailureTemplateConstant             = "Failed to add remote %s pointing to %s in %s"
	gitRemoteAddExecutionFailureTemplateConstant    = "Unable to add remote %s in %s: %s"
	gitRemoteUpdateStartTemplateConstant            = "Updating remote-tracking references in %s"
	gitRemoteUpdateSuccessTemplateConstant          = "Updated remote-tracking references in %s"
	gitRemoteUpdateFailureTemplateConstant          = "Failed to update remote-tracking references in %s"
	gitRemoteUpdateExecutionFailureTemplateConstant = "Unable to update remote-tracking references in %s: %s"
	gitFetchAllStartTemplateConstant                = "Fetching from all remotes in %s"
	gitFetchAllSuccessTemplateConstant              = "Fetched from all remotes in %s"
	gitFetchAllFailureTemplateConstant              = "Failed to fetch from all remotes in %s"
	gitFetchAllExecutionFailureTemplateConstant     = "Unable to fetch from all remotes in %s: %s"
	gitBranchCreationStartTemplateConstant          = "Creating branch %s from %s in %s"
	gitBranchCreationSuccessTemplateConstant        = "Created branch %s from %s in %s"
	gitBranchCreationFailureTemplateConstant        = "Failed to create branch %s from %s in %s"
	gitBranchCreationExecutionTemplateConstant      = "Unable to create branch %s from %s in %s: %s"
	gitCherryPickStartTemplateConstant              = "Cherry-picking %s (mainline %s) in %s"
	gitCherryPickSuccessTemplateConstant            = "Cherry-picked %s in %s"
	gitCherryPickFailureTemplateConstant            = "Cherry-pick of %s did not complete cleanly in %s"
	gitCherryPickExecutionFailureTemplateConstant   = "Unable to cherry-pick %s in %s: %s"
	gitShowAuthorStartTemplateConstant              = "Reading original author of %s in %s"
	gitShowAuthorSuccessTemplateConstant            = "Original author of %s is %s"
	gitShowAuthorFailureTemplateConstant            = "Failed to read original author of %s in %s"
	gitShowAuthorExecutionFailureTemplateConstant   = "Unable to read original author of %s in %s: %s"
	gitAmendStartTemplateConstant                   = "Amending HEAD with author %s in %s"
	gitAmendSuccessTemplateConstant                 = "Amended HEAD with author %s in %s"
	gitAmendFailureTemplateConstant                 = "Failed to amend HEAD with author %s in %s"
	gitAmendExecutionFailureTemplateConstant        = "Unable to amend HEAD in %s: %s"
	gitPushStartTemplateConstant                    = "Pushing %s to %s from %s"
	gitPushSuccessTemplateConstant                  = "Pushed %s to %s from %s"
	gitPushFailureTemplateConstant                  = "Failed to push %s to %s from %s"
	gitPushExecutionFailureTemplateConstant         = "Unable to push %s to %s from %s: %s"
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageSuccess)
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
	if command.Name != CommandGit || len(command.Details.Arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	switch strings.TrimSpace(command.Details.Arguments[0]) {
	case gitConfigSubcommandNameConstant:
		return formatter.describeGitConfigMessage(command, result, failure, stage)
	case gitRemoteSubcommandNameConstant:
		return formatter.describeGitRemoteMessage(command, result, failure, stage)
	case gitFetchSubcommandNameConstant:
		return formatter.describeGitFetchMessage(command, result, failure, stage)
	case gitCheckoutSubcommandNameConstant:
		return formatter.describeGitCheckoutMessage(command, result, failure, stage)
	case gitCherryPickSubcommandNameConstant:
		return formatter.describeGitCherryPickMessage(command, result, failure, stage)
	case gitShowSubcommandNameConstant:
		return formatter.describeGitShowMessage(command, result, failure, stage)
	case gitCommitSubcommandNameConstant:
		return formatter.describeGitCommitMessage(command, result, failure, stage)
	case gitPushSubcommandNameConstant:
		return formatter.describeGitPushMessage(command, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitConfigMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	positional := formatter.positionalArguments(command.Details.Arguments[1:])
	if len(positional) < 2 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
	workingDirectory := formatter.describeWorkingDirectory(command)
	key := positional[0]
	value := positional[1]

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitConfigStartTemplateConstant, key, value, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(gitConfigSuccessTemplateConstant, key, value, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(gitConfigFailureTemplateConstant, key, workingDirectory) + formatter.formatExitCodeSuffix(result)
	default:
		return fmt.Sprintf(gitConfigExecutionFailureTemplateConstant, key, workingDirectory, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) describeGitRemoteMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	workingDirectory := formatter.describeWorkingDirectory(command)
	subcommand := strings.TrimSpace(formatter.argumentAtIndex(arguments, 1))

	switch subcommand {
	case gitRemoteAddSubcommandNameConstant:
		remoteName := formatter.ensureValue(formatter.argumentAtIndex(arguments, 2))
		remoteURL := formatter.ensureValue(formatter.argumentAtIndex(arguments, 3))
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(gitRemoteAddStartTemplateConstant, remoteName, remoteURL, workingDirectory)
		case messageStageSuccess:
			return fmt.Sprintf(gitRemoteAddSuccessTemplateConstant, remoteName, remoteURL, workingDirectory)
		case messageStageFailure:
			return fmt.Sprintf(gitRemoteAddFailureTemplateConstant, remoteName, remoteURL, workingDirectory) + formatter.formatExitCodeSuffix(result)
		default:
			return fmt.Sprintf(gitRemoteAddExecutionFailureTemplateConstant, remoteName, workingDirectory, formatter.describeFailure(failure))
		}
	case gitRemoteUpdateSubcommandNameConstant:
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(gitRemoteUpdateStartTemplateConstant, workingDirectory)
		case messageStageSuccess:
			return fmt.Sprintf(gitRemoteUpdateSuccessTemplateConstant, workingDirectory)
		case messageStageFailure:
			return fmt.Sprintf(gitRemoteUpdateFailureTemplateConstant, workingDirectory) + formatter.formatExitCodeSuffix(result)
		default:
			return fmt.Sprintf(gitRemoteUpdateExecutionFailureTemplateConstant, workingDirectory, formatter.describeFailure(failure))
		}
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitFetchMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if !containsArgument(command.Details.Arguments, gitAllFlagConstant) {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
	workingDirectory := formatter.describeWorkingDirectory(command)

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitFetchAllStartTemplateConstant, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(gitFetchAllSuccessTemplateConstant, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(gitFetchAllFailureTemplateConstant, workingDirectory) + formatter.formatExitCodeSuffix(result)
	default:
		return fmt.Sprintf(gitFetchAllExecutionFailureTemplateConstant, workingDirectory, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) describeGitCheckoutMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	branchName := findFlagValue(arguments, gitCreateBranchFlagConstant)
	if len(branchName) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
	startPoint := formatter.ensureValue(formatter.argumentAtIndex(arguments, 3))
	workingDirectory := formatter.describeWorkingDirectory(command)

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitBranchCreationStartTemplateConstant, branchName, startPoint, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(gitBranchCreationSuccessTemplateConstant, branchName, startPoint, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(gitBranchCreationFailureTemplateConstant, branchName, startPoint, workingDirectory) + formatter.formatExitCodeSuffix(result)
	default:
		return fmt.Sprintf(gitBranchCreationExecutionTemplateConstant, branchName, startPoint, workingDirectory, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) describeGitCherryPickMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	revision := formatter.ensureValue(formatter.lastPositionalArgument(arguments[1:]))
	mainline := formatter.ensureValue(findFlagValue(arguments, gitMainlineFlagConstant))
	workingDirectory := formatter.describeWorkingDirectory(command)

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitCherryPickStartTemplateConstant, revision, mainline, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(gitCherryPickSuccessTemplateConstant, revision, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(gitCherryPickFailureTemplateConstant, revision, workingDirectory) + formatter.formatExitCodeSuffix(result)
	default:
		return fmt.Sprintf(gitCherryPickExecutionFailureTemplateConstant, revision, workingDirectory, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) describeGitShowMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	revision := formatter.ensureValue(formatter.lastPositionalArgument(arguments[1:]))
	workingDirectory := formatter.describeWorkingDirectory(command)

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitShowAuthorStartTemplateConstant, revision, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(gitShowAuthorSuccessTemplateConstant, revision, formatter.ensureValue(strings.TrimSpace(result.StandardOutput)))
	case messageStageFailure:
		return fmt.Sprintf(gitShowAuthorFailureTemplateConstant, revision, workingDirectory) + formatter.formatExitCodeSuffix(result)
	default:
		return fmt.Sprintf(gitShowAuthorExecutionFailureTemplateConstant, revision, workingDirectory, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) describeGitCommitMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	if !containsArgument(arguments, gitAmendFlagConstant) {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
	author := formatter.ensureValue(findPrefixedValue(arguments, authorFlagPrefixConstant))
	workingDirectory := formatter.describeWorkingDirectory(command)

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitAmendStartTemplateConstant, author, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(gitAmendSuccessTemplateConstant, author, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(gitAmendFailureTemplateConstant, author, workingDirectory) + formatter.formatExitCodeSuffix(result)
	default:
		return fmt.Sprintf(gitAmendExecutionFailureTemplateConstant, workingDirectory, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) describeGitPushMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	positional := formatter.positionalArguments(command.Details.Arguments[1:])
	if len(positional) < 2 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
	remoteName := positional[0]
	branchName := positional[1]
	workingDirectory := formatter.describeWorkingDirectory(command)

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitPushStartTemplateConstant, branchName, remoteName, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(gitPushSuccessTemplateConstant, branchName, remoteName, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(gitPushFailureTemplateConstant, branchName, remoteName, workingDirectory) + formatter.formatExitCodeSuffix(result)
	default:
		return fmt.Sprintf(gitPushExecutionFailureTemplateConstant, branchName, remoteName, workingDirectory, formatter.describeFailure(failure))
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
		commandLabel = fmt.Sprintf("%s %s", commandLabel, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
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

func (formatter CommandMessageFormatter) formatExitCodeSuffix(result ExecutionResult) string {
	return fmt.Sprintf(exitCodeSuffixTemplateConstant, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
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

func (formatter CommandMessageFormatter) argumentAtIndex(arguments []string, index int) string {
	if index < 0 || index >= len(arguments) {
		return emptyStringConstant
	}
	return arguments[index]
}

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return trimmed
}

// positionalArguments drops flags and the values of flags known to take one.
func (formatter CommandMessageFormatter) positionalArguments(arguments []string) []string {
	positional := make([]string, 0, len(arguments))
	skipNext := false
	for _, argument := range arguments {
		if skipNext {
			skipNext = false
			continue
		}
		trimmed := strings.TrimSpace(argument)
		if trimmed == gitMainlineFlagConstant {
			skipNext = true
			continue
		}
		if strings.HasPrefix(trimmed, flagPrefixConstant) {
			continue
		}
		positional = append(positional, trimmed)
	}
	return positional
}

func (formatter CommandMessageFormatter) lastPositionalArgument(arguments []string) string {
	positional := formatter.positionalArguments(arguments)
	if len(positional) == 0 {
		return emptyStringConstant
	}
	return positional[len(positional)-1]
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
			return strings.TrimSpace(arguments[argumentIndex+1])
		}
	}
	return emptyStringConstant
}

func findPrefixedValue(arguments []string, prefix string) string {
	for _, argument := range arguments {
		if strings.HasPrefix(argument, prefix) {
			return strings.TrimPrefix(argument, prefix)
		}
	}
	return emptyStringConstant
}
