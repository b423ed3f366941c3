package execshell

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommandMessageFormatterDescribesCherryPickSteps(t *testing.T) {
	testCases := []struct {
		name            string
		arguments       []string
		stage           messageStage
		result          ExecutionResult
		failure         error
		expectedMessage string
	}{
		{
			name:            "config_start",
			arguments:       []string{"config", "--local", "user.name", "GitHub"},
			stage:           messageStageStart,
			expectedMessage: `Setting user.name to "GitHub" in /workspace/repo`,
		},
		{
			name:            "remote_add_start",
			arguments:       []string{"remote", "add", "cherrypick", "git@github.com:fork/repo.git"},
			stage:           messageStageStart,
			expectedMessage: "Adding remote cherrypick pointing to git@github.com:fork/repo.git in /workspace/repo",
		},
		{
			name:            "remote_update_success",
			arguments:       []string{"remote", "update"},
			stage:           messageStageSuccess,
			expectedMessage: "Updated remote-tracking references in /workspace/repo",
		},
		{
			name:            "fetch_all_start",
			arguments:       []string{"fetch", "--all"},
			stage:           messageStageStart,
			expectedMessage: "Fetching from all remotes in /workspace/repo",
		},
		{
			name:            "checkout_start",
			arguments:       []string{"checkout", "-b", "cherry-pick-1234", "origin/release"},
			stage:           messageStageStart,
			expectedMessage: "Creating branch cherry-pick-1234 from origin/release in /workspace/repo",
		},
		{
			name:            "cherry_pick_failure",
			arguments:       []string{"cherry-pick", "-m", "1", "--strategy=recursive", "--strategy-option=theirs", "1a2b3c4d"},
			stage:           messageStageFailure,
			result:          ExecutionResult{ExitCode: 1, StandardError: "conflict"},
			expectedMessage: "Cherry-pick of 1a2b3c4d did not complete cleanly in /workspace/repo (exit code 1: conflict)",
		},
		{
			name:            "show_success",
			arguments:       []string{"show", "-s", "--format=%an <%ae>", "1a2b3c4d"},
			stage:           messageStageSuccess,
			result:          ExecutionResult{StandardOutput: "Jane <jane@example.com>\n"},
			expectedMessage: "Original author of 1a2b3c4d is Jane <jane@example.com>",
		},
		{
			name:            "amend_start",
			arguments:       []string{"commit", "--amend", "--author=Jane <jane@example.com>", "--no-edit"},
			stage:           messageStageStart,
			expectedMessage: "Amending HEAD with author Jane <jane@example.com> in /workspace/repo",
		},
		{
			name:            "push_execution_failure",
			arguments:       []string{"push", "-u", "cherrypick", "cherry-pick-1234"},
			stage:           messageStageExecutionFailure,
			failure:         errors.New("killed"),
			expectedMessage: "Unable to push cherry-pick-1234 to cherrypick from /workspace/repo: killed",
		},
		{
			name:            "unknown_subcommand",
			arguments:       []string{"status"},
			stage:           messageStageFailure,
			result:          ExecutionResult{ExitCode: 128},
			expectedMessage: "git status (in /workspace/repo) failed with exit code 128",
		},
	}

	formatter := CommandMessageFormatter{}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			command := ShellCommand{
				Name: CommandGit,
				Details: CommandDetails{
					Arguments:        testCase.arguments,
					WorkingDirectory: "/workspace/repo",
				},
			}
			message := formatter.buildMessage(command, testCase.result, testCase.failure, testCase.stage)
			require.Equal(t, testCase.expectedMessage, message)
		})
	}
}

func TestBuildStartedMessageWithoutWorkingDirectoryUsesCurrentDirectoryLabel(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{
		Name:    CommandGit,
		Details: CommandDetails{Arguments: []string{"fetch", "--all"}},
	}

	require.Equal(t, "Fetching from all remotes in current directory", formatter.BuildStartedMessage(command))
}
