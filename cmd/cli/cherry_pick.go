package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/cherrypick/internal/actionenv"
	"github.com/temirov/cherrypick/internal/cherrypick"
	"github.com/temirov/cherrypick/internal/execshell"
	"github.com/temirov/cherrypick/internal/githubapi"
	"github.com/temirov/cherrypick/internal/githubauth"
	"github.com/temirov/cherrypick/internal/gitrepo"
	"github.com/temirov/cherrypick/internal/pullrequest"
	"github.com/temirov/cherrypick/internal/ui"
)

const (
	destinationRepositoryErrorTemplateConstant = "invalid cherry-pick-repo: %w"
	sourceRepositoryErrorTemplateConstant      = "invalid source repository: %w"
	remoteURLErrorTemplateConstant             = "unable to build remote url: %w"
	tokenResolutionErrorTemplateConstant       = "unable to resolve token for %s: %w"
	clientCreationErrorTemplateConstant        = "unable to create GitHub client: %w"
	runSucceededMessageConstant                = "cherry-pick finished"
	runFailedMessageConstant                   = "cherry-pick failed"
	logFieldWorkingBranchConstant              = "working_branch"
	logFieldOriginalAuthorConstant             = "original_author"
	logFieldRunningInActionsConstant           = "running_in_actions"
)

type failureReporter interface {
	Error(message string)
}

func (application *Application) runCherryPick(command *cobra.Command) error {
	if application.logger == nil {
		return errors.New(loggerNotInitializedMessageConstant)
	}

	executionContext := command.Context()
	if executionContext == nil {
		executionContext = context.Background()
	}
	if timeout := application.configuration.Run.Timeout; timeout > 0 {
		var cancel context.CancelFunc
		executionContext, cancel = context.WithTimeout(executionContext, timeout)
		defer cancel()
	}

	ambientContext, ambientError := actionenv.NewLoader(application.environmentLookup, nil).Load()
	if ambientError != nil {
		return ambientError
	}

	runConfiguration, configurationError := application.buildRunConfiguration(ambientContext)
	if configurationError != nil {
		return configurationError
	}

	var progress cherrypick.ProgressReporter = ui.NewLogProgressReporter(application.logger)
	var failures failureReporter
	if ambientContext.RunningInActions {
		workflowWriter := actionenv.NewWorkflowCommandWriter(application.workflowOutput)
		progress = workflowWriter
		failures = workflowWriter
	}

	result, runError := application.executeRun(executionContext, runConfiguration, progress)
	if runError != nil {
		application.logger.Error(runFailedMessageConstant, zap.Error(runError), zap.Bool(logFieldRunningInActionsConstant, ambientContext.RunningInActions))
		if failures != nil {
			failures.Error(runError.Error())
		}
		return runError
	}

	application.logger.Info(runSucceededMessageConstant,
		zap.String(logFieldWorkingBranchConstant, result.BranchName),
		zap.String(logFieldOriginalAuthorConstant, result.OriginalAuthor),
	)
	return nil
}

func (application *Application) executeRun(executionContext context.Context, runConfiguration cherrypick.RunConfiguration, progress cherrypick.ProgressReporter) (cherrypick.Result, error) {
	shellExecutor, executorError := execshell.NewShellExecutor(application.logger, application.commandRunner)
	if executorError != nil {
		return cherrypick.Result{}, executorError
	}
	if application.humanReadableLoggingEnabled() {
		shellExecutor = shellExecutor.WithObserver(ui.NewConsoleCommandEventLogger(application.consoleLogger))
	}

	publisherDependencies := pullrequest.Dependencies{Logger: application.logger, Warnings: progress}
	if !runConfiguration.SourceRepository.IsZero() {
		client, clientError := application.buildGitHubClient(executionContext, runConfiguration)
		if clientError != nil {
			return cherrypick.Result{}, clientError
		}
		publisherDependencies.Client = client
	}

	orchestrator, orchestratorError := cherrypick.NewOrchestrator(cherrypick.Dependencies{
		Logger:                    application.logger,
		GitExecutor:               shellExecutor,
		Publisher:                 pullrequest.NewPublisher(publisherDependencies),
		Progress:                  progress,
		BranchIdentifierGenerator: application.branchIdentifierGenerator,
	})
	if orchestratorError != nil {
		return cherrypick.Result{}, orchestratorError
	}

	return orchestrator.Execute(executionContext, runConfiguration)
}

func (application *Application) buildGitHubClient(executionContext context.Context, runConfiguration cherrypick.RunConfiguration) (*githubapi.Client, error) {
	token, tokenError := githubauth.NewTokenResolver(githubauth.EnvironmentLookup(application.environmentLookup)).Resolve(runConfiguration.Token)
	if tokenError != nil {
		return nil, fmt.Errorf(tokenResolutionErrorTemplateConstant, runConfiguration.SourceRepository, tokenError)
	}

	clientOptions := []githubapi.ClientOption{githubapi.WithBaseURL(application.configuration.Run.APIURL)}
	if application.httpClient != nil {
		clientOptions = append(clientOptions, githubapi.WithHTTPClient(application.httpClient))
	}
	client, clientError := githubapi.NewClient(executionContext, token, clientOptions...)
	if clientError != nil {
		return nil, fmt.Errorf(clientCreationErrorTemplateConstant, clientError)
	}
	return client, nil
}

// buildRunConfiguration resolves the run snapshot from configuration and the ambient Actions context.
// Explicit run settings take precedence over GITHUB_REPOSITORY and GITHUB_SHA.
func (application *Application) buildRunConfiguration(ambientContext actionenv.Context) (cherrypick.RunConfiguration, error) {
	inputs := application.configuration.Inputs
	runSettings := application.configuration.Run

	committer, committerError := cherrypick.ParseIdentity(inputs.Committer)
	if committerError != nil {
		return cherrypick.RunConfiguration{}, committerError
	}
	author, authorError := cherrypick.ParseIdentity(inputs.Author)
	if authorError != nil {
		return cherrypick.RunConfiguration{}, authorError
	}

	destinationRepository, destinationError := gitrepo.ParseOwnerRepository(inputs.CherryPickRepository)
	if destinationError != nil {
		return cherrypick.RunConfiguration{}, fmt.Errorf(destinationRepositoryErrorTemplateConstant, destinationError)
	}

	sourceRepository := ambientContext.Repository
	if len(runSettings.SourceRepository) > 0 {
		parsedSource, sourceError := gitrepo.ParseOwnerRepository(runSettings.SourceRepository)
		if sourceError != nil {
			return cherrypick.RunConfiguration{}, fmt.Errorf(sourceRepositoryErrorTemplateConstant, sourceError)
		}
		sourceRepository = parsedSource
	}

	commitSHA := ambientContext.CommitSHA
	if len(runSettings.CommitSHA) > 0 {
		commitSHA = runSettings.CommitSHA
	}

	remoteProtocol, protocolError := remoteProtocolChoice.Normalize(runSettings.RemoteProtocol)
	if protocolError != nil {
		return cherrypick.RunConfiguration{}, protocolError
	}
	remoteHost := runSettings.RemoteHost
	if len(remoteHost) == 0 {
		remoteHost = gitrepo.DefaultRemoteHost
	}
	remoteURL, remoteURLError := gitrepo.FormatRemoteURL(gitrepo.RemoteURL{
		Protocol:   gitrepo.RemoteProtocol(remoteProtocol),
		Host:       remoteHost,
		Repository: destinationRepository,
	})
	if remoteURLError != nil {
		return cherrypick.RunConfiguration{}, fmt.Errorf(remoteURLErrorTemplateConstant, remoteURLError)
	}

	return cherrypick.RunConfiguration{
		Token:                 inputs.Token,
		Committer:             committer,
		Author:                author,
		TargetBranch:          inputs.Branch,
		Labels:                inputs.Labels,
		ExcludeLabels:         inputs.ExcludeLabels,
		Assignees:             inputs.Assignees,
		Reviewers:             inputs.Reviewers,
		TeamReviewers:         inputs.TeamReviewers,
		TitlePrefix:           inputs.TitlePrefix,
		DestinationRepository: destinationRepository,
		SourceRepository:      sourceRepository,
		CommitSHA:             commitSHA,
		WorkingDirectory:      application.homeExpander.Expand(runSettings.WorkingDirectory),
		RemoteName:            runSettings.RemoteName,
		RemoteURL:             remoteURL,
		TriggeringPullRequest: cherrypick.TriggeringPullRequest{
			Title:  ambientContext.PullRequest.Title,
			Body:   ambientContext.PullRequest.Body,
			Labels: ambientContext.PullRequest.Labels,
		},
	}, nil
}
