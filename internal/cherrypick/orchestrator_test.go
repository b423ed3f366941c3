package cherrypick

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/cherrypick/internal/execshell"
	"github.com/temirov/cherrypick/internal/gitrepo"
)

const (
	testCommitSHAConstant         = "0123456789abcdef0123456789abcdef01234567"
	testShortSHAConstant          = "01234567"
	testBranchIdentifierConstant  = "3f2a9c1e-0000-4000-8000-000000000000"
	testWorkingBranchNameConstant = "cherry-pick_release-1.2_01234567_3f2a9c1e-0000-4000-8000-000000000000"
	testOriginalAuthorConstant    = "Jane Doe <jane@example.com>"
	testRemoteURLConstant         = "git@github.com:acme/widgets.git"
)

type stubGitExecutor struct {
	recorded  []execshell.CommandDetails
	responses map[string]stubGitResponse
}

type stubGitResponse struct {
	result execshell.ExecutionResult
	err    error
}

func (executor *stubGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recorded = append(executor.recorded, details)
	if len(details.Arguments) == 0 {
		return execshell.ExecutionResult{}, nil
	}
	response, exists := executor.responses[details.Arguments[0]]
	if !exists {
		return execshell.ExecutionResult{}, nil
	}
	if response.err != nil {
		return execshell.ExecutionResult{}, response.err
	}
	return response.result, nil
}

func (executor *stubGitExecutor) argumentsLists() [][]string {
	argumentsLists := make([][]string, 0, len(executor.recorded))
	for _, details := range executor.recorded {
		argumentsLists = append(argumentsLists, details.Arguments)
	}
	return argumentsLists
}

type recordingPublisher struct {
	branchNames    []string
	configurations []RunConfiguration
	err            error
}

func (publisher *recordingPublisher) Publish(_ context.Context, configuration RunConfiguration, branchName string) error {
	publisher.branchNames = append(publisher.branchNames, branchName)
	publisher.configurations = append(publisher.configurations, configuration)
	return publisher.err
}

type recordingProgress struct {
	events []string
}

func (progress *recordingProgress) StartGroup(name string) {
	progress.events = append(progress.events, "start:"+name)
}

func (progress *recordingProgress) EndGroup() {
	progress.events = append(progress.events, "end")
}

func (progress *recordingProgress) Warning(message string) {
	progress.events = append(progress.events, "warning:"+message)
}

func cherryPickFailure(standardError string) error {
	return execshell.CommandFailedError{
		Command: execshell.ShellCommand{Name: execshell.CommandGit, Details: execshell.CommandDetails{Arguments: []string{"cherry-pick"}}},
		Result:  execshell.ExecutionResult{StandardError: standardError, ExitCode: 1},
	}
}

func testRunConfiguration() RunConfiguration {
	return RunConfiguration{
		Token:                 "token",
		Committer:             Identity{Name: "GitHub", Email: "noreply@github.com"},
		Author:                Identity{Name: "octocat", Email: "octocat@users.noreply.github.com"},
		TargetBranch:          "release-1.2",
		DestinationRepository: gitrepo.OwnerRepository{Owner: "acme", Repository: "widgets"},
		SourceRepository:      gitrepo.OwnerRepository{Owner: "acme", Repository: "widgets"},
		CommitSHA:             testCommitSHAConstant,
		WorkingDirectory:      "/workspace/widgets",
		RemoteURL:             testRemoteURLConstant,
	}
}

func newTestOrchestrator(t *testing.T, executor GitExecutor, publisher PullRequestPublisher, progress ProgressReporter, logger *zap.Logger) *Orchestrator {
	t.Helper()
	orchestrator, err := NewOrchestrator(Dependencies{
		Logger:                    logger,
		GitExecutor:               executor,
		Publisher:                 publisher,
		Progress:                  progress,
		BranchIdentifierGenerator: func() string { return testBranchIdentifierConstant },
	})
	require.NoError(t, err)
	return orchestrator
}

func TestNewOrchestratorValidatesDependencies(t *testing.T) {
	testCases := []struct {
		name          string
		dependencies  Dependencies
		expectedError error
	}{
		{
			name:          "missing_git_executor",
			dependencies:  Dependencies{Publisher: &recordingPublisher{}},
			expectedError: ErrGitExecutorNotConfigured,
		},
		{
			name:          "missing_publisher",
			dependencies:  Dependencies{GitExecutor: &stubGitExecutor{}},
			expectedError: ErrPublisherNotConfigured,
		},
	}

	for testCaseIndex := range testCases {
		testCase := testCases[testCaseIndex]
		t.Run(testCase.name, func(testInstance *testing.T) {
			orchestrator, err := NewOrchestrator(testCase.dependencies)
			require.Nil(testInstance, orchestrator)
			require.ErrorIs(testInstance, err, testCase.expectedError)
		})
	}
}

func TestExecuteRunsCommandsInOrder(t *testing.T) {
	executor := &stubGitExecutor{responses: map[string]stubGitResponse{
		"show": {result: execshell.ExecutionResult{StandardOutput: testOriginalAuthorConstant + "\n"}},
	}}
	publisher := &recordingPublisher{}
	progress := &recordingProgress{}
	orchestrator := newTestOrchestrator(t, executor, publisher, progress, zap.NewNop())

	result, err := orchestrator.Execute(context.Background(), testRunConfiguration())
	require.NoError(t, err)
	require.Equal(t, Result{BranchName: testWorkingBranchNameConstant, OriginalAuthor: testOriginalAuthorConstant}, result)

	require.Equal(t, [][]string{
		{"config", "--local", "user.name", "octocat"},
		{"config", "--local", "user.email", "noreply@github.com"},
		{"remote", "add", "cherrypick", testRemoteURLConstant},
		{"remote", "update"},
		{"fetch", "--all"},
		{"checkout", "-b", testWorkingBranchNameConstant, "origin/release-1.2"},
		{"cherry-pick", "-m", "1", "--strategy=recursive", "--strategy-option=theirs", testShortSHAConstant},
		{"show", "-s", "--format=%an <%ae>", testShortSHAConstant},
		{"commit", "--amend", "--author=" + testOriginalAuthorConstant, "--no-edit"},
		{"push", "-u", "cherrypick", testWorkingBranchNameConstant},
	}, executor.argumentsLists())

	require.Equal(t, []string{testWorkingBranchNameConstant}, publisher.branchNames)
	require.Equal(t, []string{
		"start:Configuring the committer and author", "end",
		"start:Setup cherry-pick branch remote", "end",
		"start:Fetch all branches", "end",
		"start:Create new branch from release-1.2", "end",
		"start:Cherry picking", "end",
		"start:Setting original author for the cherry-picked commit", "end",
		"start:Push new branch to remote", "end",
		"start:Opening pull request", "end",
	}, progress.events)
}

func TestExecuteScopesIdentityToEveryCommand(t *testing.T) {
	executor := &stubGitExecutor{}
	orchestrator := newTestOrchestrator(t, executor, &recordingPublisher{}, nil, nil)

	_, err := orchestrator.Execute(context.Background(), testRunConfiguration())
	require.NoError(t, err)
	require.NotEmpty(t, executor.recorded)

	for _, details := range executor.recorded {
		require.Equal(t, "/workspace/widgets", details.WorkingDirectory)
		require.Equal(t, map[string]string{
			"GIT_TERMINAL_PROMPT": "0",
			"GIT_AUTHOR_NAME":     "octocat",
			"GIT_AUTHOR_EMAIL":    "noreply@github.com",
			"GIT_COMMITTER_NAME":  "octocat",
			"GIT_COMMITTER_EMAIL": "noreply@github.com",
		}, details.EnvironmentVariables)
	}
}

func TestExecuteUsesConfiguredRemoteName(t *testing.T) {
	executor := &stubGitExecutor{}
	configuration := testRunConfiguration()
	configuration.RemoteName = "backport"
	orchestrator := newTestOrchestrator(t, executor, &recordingPublisher{}, nil, nil)

	_, err := orchestrator.Execute(context.Background(), configuration)
	require.NoError(t, err)

	argumentsLists := executor.argumentsLists()
	require.Equal(t, []string{"remote", "add", "backport", testRemoteURLConstant}, argumentsLists[2])
	require.Equal(t, []string{"push", "-u", "backport", testWorkingBranchNameConstant}, argumentsLists[len(argumentsLists)-1])
}

func TestExecuteCherryPickOutcomes(t *testing.T) {
	testCases := []struct {
		name                 string
		cherryPickError      error
		expectedErrorMessage string
		expectPublish        bool
	}{
		{
			name:            "empty_cherry_pick_is_tolerated",
			cherryPickError: cherryPickFailure("On branch x\n" + EmptyCherryPickMessage + "\nIf you wish to commit it anyway"),
			expectPublish:   true,
		},
		{
			name:                 "conflict_is_fatal",
			cherryPickError:      cherryPickFailure("error: could not apply 0123456... fix\nhint: after resolving the conflicts"),
			expectedErrorMessage: "Unexpected error: error: could not apply 0123456... fix\nhint: after resolving the conflicts",
		},
		{
			name:                 "execution_failure_is_fatal",
			cherryPickError:      errors.New("git not found"),
			expectedErrorMessage: "failed to cherry-pick 01234567: git not found",
		},
	}

	for testCaseIndex := range testCases {
		testCase := testCases[testCaseIndex]
		t.Run(testCase.name, func(testInstance *testing.T) {
			executor := &stubGitExecutor{responses: map[string]stubGitResponse{
				"cherry-pick": {err: testCase.cherryPickError},
			}}
			publisher := &recordingPublisher{}
			orchestrator := newTestOrchestrator(testInstance, executor, publisher, nil, nil)

			_, err := orchestrator.Execute(context.Background(), testRunConfiguration())
			if len(testCase.expectedErrorMessage) > 0 {
				require.EqualError(testInstance, err, testCase.expectedErrorMessage)
				require.Empty(testInstance, publisher.branchNames)
				for _, argumentsList := range executor.argumentsLists() {
					require.NotEqual(testInstance, "push", argumentsList[0])
				}
				return
			}
			require.NoError(testInstance, err)
			require.Len(testInstance, publisher.branchNames, 1)
		})
	}
}

func TestExecuteUnexpectedCherryPickErrorUnwraps(t *testing.T) {
	executor := &stubGitExecutor{responses: map[string]stubGitResponse{
		"cherry-pick": {err: cherryPickFailure("fatal: bad revision")},
	}}
	orchestrator := newTestOrchestrator(t, executor, &recordingPublisher{}, nil, nil)

	_, err := orchestrator.Execute(context.Background(), testRunConfiguration())

	var unexpectedError UnexpectedCherryPickError
	require.ErrorAs(t, err, &unexpectedError)
	require.Equal(t, "fatal: bad revision", unexpectedError.StandardError)

	var failedError execshell.CommandFailedError
	require.ErrorAs(t, err, &failedError)
}

func TestExecuteStopsAtFirstFailingStep(t *testing.T) {
	testCases := []struct {
		name                 string
		failingSubcommand    string
		expectedErrorPrefix  string
		expectedCommandCount int
	}{
		{name: "config", failingSubcommand: "config", expectedErrorPrefix: "failed to configure git user.name", expectedCommandCount: 1},
		{name: "remote", failingSubcommand: "remote", expectedErrorPrefix: "failed to add remote cherrypick", expectedCommandCount: 3},
		{name: "fetch", failingSubcommand: "fetch", expectedErrorPrefix: "failed to fetch updates", expectedCommandCount: 5},
		{name: "checkout", failingSubcommand: "checkout", expectedErrorPrefix: "failed to create branch", expectedCommandCount: 6},
		{name: "show", failingSubcommand: "show", expectedErrorPrefix: "failed to read original author of 01234567", expectedCommandCount: 8},
		{name: "amend", failingSubcommand: "commit", expectedErrorPrefix: "failed to restore original author", expectedCommandCount: 9},
		{name: "push", failingSubcommand: "push", expectedErrorPrefix: "failed to push branch", expectedCommandCount: 10},
	}

	for testCaseIndex := range testCases {
		testCase := testCases[testCaseIndex]
		t.Run(testCase.name, func(testInstance *testing.T) {
			executor := &stubGitExecutor{responses: map[string]stubGitResponse{
				testCase.failingSubcommand: {err: errors.New("boom")},
			}}
			publisher := &recordingPublisher{}
			orchestrator := newTestOrchestrator(testInstance, executor, publisher, nil, nil)

			_, err := orchestrator.Execute(context.Background(), testRunConfiguration())
			require.Error(testInstance, err)
			require.True(testInstance, strings.HasPrefix(err.Error(), testCase.expectedErrorPrefix), err.Error())
			require.Len(testInstance, executor.recorded, testCase.expectedCommandCount)
			require.Empty(testInstance, publisher.branchNames)
		})
	}
}

func TestExecuteSurfacesPublishFailureUnwrapped(t *testing.T) {
	publishError := errors.New("validation failed")
	publisher := &recordingPublisher{err: publishError}
	orchestrator := newTestOrchestrator(t, &stubGitExecutor{}, publisher, nil, nil)

	_, err := orchestrator.Execute(context.Background(), testRunConfiguration())
	require.ErrorIs(t, err, publishError)
	require.EqualError(t, err, "validation failed")
}

func TestExecuteRejectsInvalidConfigurationBeforeRunningGit(t *testing.T) {
	executor := &stubGitExecutor{}
	configuration := testRunConfiguration()
	configuration.TargetBranch = ""
	orchestrator := newTestOrchestrator(t, executor, &recordingPublisher{}, nil, nil)

	_, err := orchestrator.Execute(context.Background(), configuration)

	var configurationError ConfigurationError
	require.ErrorAs(t, err, &configurationError)
	require.Equal(t, "branch", configurationError.Field)
	require.Empty(t, executor.recorded)
}

func TestExecuteLogsEmptyCherryPick(t *testing.T) {
	core, recorded := observer.New(zap.InfoLevel)
	executor := &stubGitExecutor{responses: map[string]stubGitResponse{
		"cherry-pick": {err: cherryPickFailure(EmptyCherryPickMessage)},
	}}
	orchestrator := newTestOrchestrator(t, executor, &recordingPublisher{}, nil, zap.New(core))

	_, err := orchestrator.Execute(context.Background(), testRunConfiguration())
	require.NoError(t, err)
	require.Equal(t, 1, recorded.FilterMessage("cherry-pick produced no changes; continuing").Len())
	require.Equal(t, 1, recorded.FilterMessage("cherry-pick run completed").Len())
}
