package cherrypick

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/cherrypick/internal/execshell"
)

// EmptyCherryPickMessage is the git diagnostic emitted when the picked change is already present on the target branch.
const EmptyCherryPickMessage = "The previous cherry-pick is now empty, possibly due to conflict resolution."

const (
	gitExecutorMissingMessageConstant           = "git executor not configured"
	publisherMissingMessageConstant             = "pull request publisher not configured"
	unexpectedCherryPickErrorTemplateConstant   = "Unexpected error: %s"
	gitConfigureIdentityFailureTemplateConstant = "failed to configure git %s: %w"
	gitAddRemoteFailureTemplateConstant         = "failed to add remote %s: %w"
	gitUpdateRemotesFailureTemplateConstant     = "failed to update remotes: %w"
	gitFetchFailureTemplateConstant             = "failed to fetch updates: %w"
	gitCreateBranchFailureTemplateConstant      = "failed to create branch %q from %s: %w"
	gitCherryPickFailureTemplateConstant        = "failed to cherry-pick %s: %w"
	gitShowAuthorFailureTemplateConstant        = "failed to read original author of %s: %w"
	gitAmendFailureTemplateConstant             = "failed to restore original author %q: %w"
	gitPushFailureTemplateConstant              = "failed to push branch %q to %s: %w"
	configureIdentityStageNameConstant          = "Configuring the committer and author"
	setupRemoteStageNameConstant                = "Setup cherry-pick branch remote"
	fetchStageNameConstant                      = "Fetch all branches"
	createBranchStageNameTemplateConstant       = "Create new branch from %s"
	cherryPickStageNameConstant                 = "Cherry picking"
	restoreAuthorStageNameConstant              = "Setting original author for the cherry-picked commit"
	pushStageNameConstant                       = "Push new branch to remote"
	openPullRequestStageNameConstant            = "Opening pull request"
	runStartedMessageConstant                   = "cherry-pick run started"
	identityConfiguredMessageConstant           = "configured git committer"
	emptyCherryPickMessageConstant              = "cherry-pick produced no changes; continuing"
	runCompletedMessageConstant                 = "cherry-pick run completed"
	logFieldTargetBranchConstant                = "target_branch"
	logFieldWorkingBranchConstant               = "working_branch"
	logFieldCommitConstant                      = "commit"
	logFieldDestinationConstant                 = "destination_repository"
	logFieldIdentityConstant                    = "identity"
	logFieldOriginalAuthorConstant              = "original_author"
	gitConfigSubcommandConstant                 = "config"
	gitConfigLocalFlagConstant                  = "--local"
	gitUserNameKeyConstant                      = "user.name"
	gitUserEmailKeyConstant                     = "user.email"
	gitRemoteSubcommandConstant                 = "remote"
	gitRemoteAddSubcommandConstant              = "add"
	gitRemoteUpdateSubcommandConstant           = "update"
	gitFetchSubcommandConstant                  = "fetch"
	gitFetchAllFlagConstant                     = "--all"
	gitCheckoutSubcommandConstant               = "checkout"
	gitCreateBranchFlagConstant                 = "-b"
	gitOriginReferenceTemplateConstant          = "origin/%s"
	gitCherryPickSubcommandConstant             = "cherry-pick"
	gitMainlineFlagConstant                     = "-m"
	gitMainlineParentConstant                   = "1"
	gitRecursiveStrategyFlagConstant            = "--strategy=recursive"
	gitTheirsStrategyOptionFlagConstant         = "--strategy-option=theirs"
	gitShowSubcommandConstant                   = "show"
	gitShowSummaryFlagConstant                  = "-s"
	gitAuthorFormatFlagConstant                 = "--format=%an <%ae>"
	gitCommitSubcommandConstant                 = "commit"
	gitAmendFlagConstant                        = "--amend"
	gitAuthorFlagTemplateConstant               = "--author=%s"
	gitNoEditFlagConstant                       = "--no-edit"
	gitPushSubcommandConstant                   = "push"
	gitSetUpstreamFlagConstant                  = "-u"
	gitTerminalPromptEnvironmentNameConstant    = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptEnvironmentDisableValue    = "0"
	gitAuthorNameEnvironmentNameConstant        = "GIT_AUTHOR_NAME"
	gitAuthorEmailEnvironmentNameConstant       = "GIT_AUTHOR_EMAIL"
	gitCommitterNameEnvironmentNameConstant     = "GIT_COMMITTER_NAME"
	gitCommitterEmailEnvironmentNameConstant    = "GIT_COMMITTER_EMAIL"
)

// ErrGitExecutorNotConfigured indicates the git executor dependency was missing.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// ErrPublisherNotConfigured indicates the pull request publisher dependency was missing.
var ErrPublisherNotConfigured = errors.New(publisherMissingMessageConstant)

// GitExecutor runs git commands. Non-zero exits are reported as execshell.CommandFailedError.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// PullRequestPublisher opens the follow-up pull request for a pushed working branch.
type PullRequestPublisher interface {
	Publish(executionContext context.Context, configuration RunConfiguration, branchName string) error
}

// ProgressReporter groups run output into named stages.
type ProgressReporter interface {
	StartGroup(name string)
	EndGroup()
	Warning(message string)
}

// UnexpectedCherryPickError reports a cherry-pick that failed for a reason other than an empty result.
type UnexpectedCherryPickError struct {
	StandardError string
	Cause         error
}

// Error returns "Unexpected error: <stderr>".
func (cherryPickError UnexpectedCherryPickError) Error() string {
	return fmt.Sprintf(unexpectedCherryPickErrorTemplateConstant, cherryPickError.StandardError)
}

// Unwrap exposes the underlying command failure.
func (cherryPickError UnexpectedCherryPickError) Unwrap() error {
	return cherryPickError.Cause
}

// Dependencies enumerates collaborators required by the orchestrator.
type Dependencies struct {
	Logger                    *zap.Logger
	GitExecutor               GitExecutor
	Publisher                 PullRequestPublisher
	Progress                  ProgressReporter
	BranchIdentifierGenerator BranchIdentifierGenerator
}

// Result captures the outcome of a successful run.
type Result struct {
	BranchName     string
	OriginalAuthor string
}

// Orchestrator performs the git steps of a cherry-pick run and hands the pushed branch to the publisher.
type Orchestrator struct {
	logger                    *zap.Logger
	executor                  GitExecutor
	publisher                 PullRequestPublisher
	progress                  ProgressReporter
	branchIdentifierGenerator BranchIdentifierGenerator
}

// NewOrchestrator constructs an Orchestrator from the provided dependencies.
func NewOrchestrator(dependencies Dependencies) (*Orchestrator, error) {
	if dependencies.GitExecutor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	if dependencies.Publisher == nil {
		return nil, ErrPublisherNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	progress := dependencies.Progress
	if progress == nil {
		progress = noopProgressReporter{}
	}
	generator := dependencies.BranchIdentifierGenerator
	if generator == nil {
		generator = RandomBranchIdentifier
	}
	return &Orchestrator{
		logger:                    logger,
		executor:                  dependencies.GitExecutor,
		publisher:                 dependencies.Publisher,
		progress:                  progress,
		branchIdentifierGenerator: generator,
	}, nil
}

// Execute runs every step in order and stops at the first failure. Nothing is rolled back.
func (orchestrator *Orchestrator) Execute(executionContext context.Context, configuration RunConfiguration) (Result, error) {
	if validationError := configuration.Validate(); validationError != nil {
		return Result{}, validationError
	}

	branchName := NewWorkingBranchName(configuration, orchestrator.branchIdentifierGenerator)
	shortSHA := configuration.ShortSHA()
	remoteName := configuration.remoteName()
	step := gitStep{
		executor:         orchestrator.executor,
		workingDirectory: configuration.workingDirectory(),
		environment:      identityEnvironment(configuration),
	}

	orchestrator.logger.Info(runStartedMessageConstant,
		zap.String(logFieldTargetBranchConstant, configuration.TargetBranch),
		zap.String(logFieldWorkingBranchConstant, branchName),
		zap.String(logFieldCommitConstant, shortSHA),
		zap.String(logFieldDestinationConstant, configuration.DestinationRepository.String()),
	)

	orchestrator.progress.StartGroup(configureIdentityStageNameConstant)
	committerIdentity := Identity{Name: configuration.Author.Name, Email: configuration.Committer.Email}
	orchestrator.logger.Info(identityConfiguredMessageConstant, zap.String(logFieldIdentityConstant, configuration.Committer.String()))
	if _, err := step.run(executionContext, gitConfigSubcommandConstant, gitConfigLocalFlagConstant, gitUserNameKeyConstant, committerIdentity.Name); err != nil {
		return Result{}, fmt.Errorf(gitConfigureIdentityFailureTemplateConstant, gitUserNameKeyConstant, err)
	}
	if _, err := step.run(executionContext, gitConfigSubcommandConstant, gitConfigLocalFlagConstant, gitUserEmailKeyConstant, committerIdentity.Email); err != nil {
		return Result{}, fmt.Errorf(gitConfigureIdentityFailureTemplateConstant, gitUserEmailKeyConstant, err)
	}
	orchestrator.progress.EndGroup()

	orchestrator.progress.StartGroup(setupRemoteStageNameConstant)
	if _, err := step.run(executionContext, gitRemoteSubcommandConstant, gitRemoteAddSubcommandConstant, remoteName, configuration.RemoteURL); err != nil {
		return Result{}, fmt.Errorf(gitAddRemoteFailureTemplateConstant, remoteName, err)
	}
	orchestrator.progress.EndGroup()

	orchestrator.progress.StartGroup(fetchStageNameConstant)
	if _, err := step.run(executionContext, gitRemoteSubcommandConstant, gitRemoteUpdateSubcommandConstant); err != nil {
		return Result{}, fmt.Errorf(gitUpdateRemotesFailureTemplateConstant, err)
	}
	if _, err := step.run(executionContext, gitFetchSubcommandConstant, gitFetchAllFlagConstant); err != nil {
		return Result{}, fmt.Errorf(gitFetchFailureTemplateConstant, err)
	}
	orchestrator.progress.EndGroup()

	startPoint := fmt.Sprintf(gitOriginReferenceTemplateConstant, configuration.TargetBranch)
	orchestrator.progress.StartGroup(fmt.Sprintf(createBranchStageNameTemplateConstant, configuration.TargetBranch))
	if _, err := step.run(executionContext, gitCheckoutSubcommandConstant, gitCreateBranchFlagConstant, branchName, startPoint); err != nil {
		return Result{}, fmt.Errorf(gitCreateBranchFailureTemplateConstant, branchName, startPoint, err)
	}
	orchestrator.progress.EndGroup()

	orchestrator.progress.StartGroup(cherryPickStageNameConstant)
	if err := orchestrator.cherryPick(executionContext, step, shortSHA); err != nil {
		return Result{}, err
	}
	orchestrator.progress.EndGroup()

	orchestrator.progress.StartGroup(restoreAuthorStageNameConstant)
	showResult, err := step.run(executionContext, gitShowSubcommandConstant, gitShowSummaryFlagConstant, gitAuthorFormatFlagConstant, shortSHA)
	if err != nil {
		return Result{}, fmt.Errorf(gitShowAuthorFailureTemplateConstant, shortSHA, err)
	}
	originalAuthor := strings.TrimSpace(showResult.StandardOutput)
	if _, err := step.run(executionContext, gitCommitSubcommandConstant, gitAmendFlagConstant, fmt.Sprintf(gitAuthorFlagTemplateConstant, originalAuthor), gitNoEditFlagConstant); err != nil {
		return Result{}, fmt.Errorf(gitAmendFailureTemplateConstant, originalAuthor, err)
	}
	orchestrator.logger.Debug(restoreAuthorStageNameConstant, zap.String(logFieldOriginalAuthorConstant, originalAuthor))
	orchestrator.progress.EndGroup()

	orchestrator.progress.StartGroup(pushStageNameConstant)
	if _, err := step.run(executionContext, gitPushSubcommandConstant, gitSetUpstreamFlagConstant, remoteName, branchName); err != nil {
		return Result{}, fmt.Errorf(gitPushFailureTemplateConstant, branchName, remoteName, err)
	}
	orchestrator.progress.EndGroup()

	orchestrator.progress.StartGroup(openPullRequestStageNameConstant)
	if err := orchestrator.publisher.Publish(executionContext, configuration, branchName); err != nil {
		return Result{}, err
	}
	orchestrator.progress.EndGroup()

	orchestrator.logger.Info(runCompletedMessageConstant, zap.String(logFieldWorkingBranchConstant, branchName))
	return Result{BranchName: branchName, OriginalAuthor: originalAuthor}, nil
}

func (orchestrator *Orchestrator) cherryPick(executionContext context.Context, step gitStep, shortSHA string) error {
	_, err := step.run(executionContext,
		gitCherryPickSubcommandConstant,
		gitMainlineFlagConstant,
		gitMainlineParentConstant,
		gitRecursiveStrategyFlagConstant,
		gitTheirsStrategyOptionFlagConstant,
		shortSHA,
	)
	if err == nil {
		return nil
	}

	var failedError execshell.CommandFailedError
	if !errors.As(err, &failedError) {
		return fmt.Errorf(gitCherryPickFailureTemplateConstant, shortSHA, err)
	}
	if strings.Contains(failedError.Result.StandardError, EmptyCherryPickMessage) {
		orchestrator.logger.Info(emptyCherryPickMessageConstant, zap.String(logFieldCommitConstant, shortSHA))
		return nil
	}
	return UnexpectedCherryPickError{StandardError: failedError.Result.StandardError, Cause: err}
}

type gitStep struct {
	executor         GitExecutor
	workingDirectory string
	environment      map[string]string
}

func (step gitStep) run(executionContext context.Context, arguments ...string) (execshell.ExecutionResult, error) {
	return step.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            arguments,
		WorkingDirectory:     step.workingDirectory,
		EnvironmentVariables: step.environment,
	})
}

// identityEnvironment scopes the run identity to each git invocation instead of global git configuration.
func identityEnvironment(configuration RunConfiguration) map[string]string {
	return map[string]string{
		gitTerminalPromptEnvironmentNameConstant: gitTerminalPromptEnvironmentDisableValue,
		gitAuthorNameEnvironmentNameConstant:     configuration.Author.Name,
		gitAuthorEmailEnvironmentNameConstant:    configuration.Committer.Email,
		gitCommitterNameEnvironmentNameConstant:  configuration.Author.Name,
		gitCommitterEmailEnvironmentNameConstant: configuration.Committer.Email,
	}
}

type noopProgressReporter struct{}

func (noopProgressReporter) StartGroup(string) {}

func (noopProgressReporter) EndGroup() {}

func (noopProgressReporter) Warning(string) {}
