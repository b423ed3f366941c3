package pullrequest

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/temirov/cherrypick/internal/cherrypick"
	"github.com/temirov/cherrypick/internal/githubapi"
	"github.com/temirov/cherrypick/internal/gitrepo"
)

const (
	clientMissingMessageConstant           = "pull request client not configured"
	headReferenceTemplateConstant          = "%s:%s"
	createFailureTemplateConstant          = "failed to create pull request in %s: %w"
	labelsFailureTemplateConstant          = "failed to add labels to pull request #%d: %w"
	assigneesFailureTemplateConstant       = "failed to add assignees to pull request #%d: %w"
	reviewersFailureTemplateConstant       = "failed to request reviewers for pull request #%d: %w"
	teamReviewersFailureTemplateConstant   = "failed to request team reviewers for pull request #%d: %w"
	sourceRepositoryMissingMessageConstant = "source repository unknown; skipping pull request"
	pullRequestCreatedMessageConstant      = "pull request created"
	labelsAddedMessageConstant             = "labels added"
	assigneesAddedMessageConstant          = "assignees added"
	reviewersRequestedMessageConstant      = "reviewers requested"
	logFieldRepositoryConstant             = "repository"
	logFieldHeadConstant                   = "head"
	logFieldBaseConstant                   = "base"
	logFieldNumberConstant                 = "pull_request"
	logFieldLabelsConstant                 = "labels"
	logFieldAssigneesConstant              = "assignees"
	logFieldReviewersConstant              = "reviewers"
	logFieldTeamReviewersConstant          = "team_reviewers"
)

// ErrClientNotConfigured indicates a pull request had to be opened but no API client was provided.
var ErrClientNotConfigured = errors.New(clientMissingMessageConstant)

// Client is the subset of the code-hosting API used to publish a pull request.
type Client interface {
	CreatePullRequest(executionContext context.Context, repository gitrepo.OwnerRepository, request githubapi.PullRequestRequest) (int, error)
	AddLabels(executionContext context.Context, repository gitrepo.OwnerRepository, pullRequestNumber int, labels []string) error
	AddAssignees(executionContext context.Context, repository gitrepo.OwnerRepository, pullRequestNumber int, assignees []string) error
	RequestReviewers(executionContext context.Context, repository gitrepo.OwnerRepository, pullRequestNumber int, reviewers []string, teamReviewers []string) error
}

// WarningReporter surfaces recoverable problems to the run's user.
type WarningReporter interface {
	Warning(message string)
}

// Dependencies enumerates collaborators required by the publisher.
type Dependencies struct {
	Logger   *zap.Logger
	Client   Client
	Warnings WarningReporter
}

// Publisher opens the follow-up pull request and attaches its metadata.
type Publisher struct {
	logger   *zap.Logger
	client   Client
	warnings WarningReporter
}

// NewPublisher constructs a Publisher from the provided dependencies. The client may be omitted when the
// source repository is unknown, because Publish never reaches the API in that case.
func NewPublisher(dependencies Dependencies) *Publisher {
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{logger: logger, client: dependencies.Client, warnings: dependencies.Warnings}
}

// Publish opens a pull request from the destination repository's working branch into the target branch of the
// source repository. It does nothing when the source repository is unknown.
func (publisher *Publisher) Publish(executionContext context.Context, configuration cherrypick.RunConfiguration, branchName string) error {
	sourceRepository := configuration.SourceRepository
	if sourceRepository.IsZero() {
		publisher.logger.Info(sourceRepositoryMissingMessageConstant)
		return nil
	}
	if publisher.client == nil {
		return ErrClientNotConfigured
	}

	triggeringPullRequest := configuration.TriggeringPullRequest
	request := githubapi.PullRequestRequest{
		Head:  fmt.Sprintf(headReferenceTemplateConstant, configuration.DestinationRepository.Owner, branchName),
		Base:  configuration.TargetBranch,
		Title: ComputeTitle(configuration.TitlePrefix, triggeringPullRequest.Title),
		Body:  triggeringPullRequest.Body,
	}

	pullRequestNumber, createError := publisher.client.CreatePullRequest(executionContext, sourceRepository, request)
	if createError != nil {
		return fmt.Errorf(createFailureTemplateConstant, sourceRepository, createError)
	}
	publisher.logger.Info(pullRequestCreatedMessageConstant,
		zap.String(logFieldRepositoryConstant, sourceRepository.String()),
		zap.String(logFieldHeadConstant, request.Head),
		zap.String(logFieldBaseConstant, request.Base),
		zap.Int(logFieldNumberConstant, pullRequestNumber),
	)

	if len(configuration.Labels) > 0 {
		labels := MergeLabels(configuration.Labels, triggeringPullRequest.Labels, configuration.TargetBranch, configuration.ExcludeLabels)
		if err := publisher.client.AddLabels(executionContext, sourceRepository, pullRequestNumber, labels); err != nil {
			return fmt.Errorf(labelsFailureTemplateConstant, pullRequestNumber, err)
		}
		publisher.logger.Info(labelsAddedMessageConstant, zap.Int(logFieldNumberConstant, pullRequestNumber), zap.Strings(logFieldLabelsConstant, labels))
	}

	if len(configuration.Assignees) > 0 {
		if err := publisher.client.AddAssignees(executionContext, sourceRepository, pullRequestNumber, configuration.Assignees); err != nil {
			return fmt.Errorf(assigneesFailureTemplateConstant, pullRequestNumber, err)
		}
		publisher.logger.Info(assigneesAddedMessageConstant, zap.Int(logFieldNumberConstant, pullRequestNumber), zap.Strings(logFieldAssigneesConstant, configuration.Assignees))
	}

	if len(configuration.Reviewers) > 0 || len(configuration.TeamReviewers) > 0 {
		return publisher.requestReviewers(executionContext, sourceRepository, pullRequestNumber, configuration)
	}
	return nil
}

// requestReviewers asks individual reviewers first and teams second, skipping whichever list is empty. An
// author/reviewer conflict on either call ends the block with a warning.
func (publisher *Publisher) requestReviewers(executionContext context.Context, repository gitrepo.OwnerRepository, pullRequestNumber int, configuration cherrypick.RunConfiguration) error {
	if len(configuration.Reviewers) > 0 {
		if err := publisher.client.RequestReviewers(executionContext, repository, pullRequestNumber, configuration.Reviewers, nil); err != nil {
			return publisher.toleratedReviewError(pullRequestNumber, reviewersFailureTemplateConstant, err)
		}
		publisher.logger.Info(reviewersRequestedMessageConstant, zap.Int(logFieldNumberConstant, pullRequestNumber), zap.Strings(logFieldReviewersConstant, configuration.Reviewers))
	}

	if len(configuration.TeamReviewers) == 0 {
		return nil
	}
	if err := publisher.client.RequestReviewers(executionContext, repository, pullRequestNumber, nil, configuration.TeamReviewers); err != nil {
		return publisher.toleratedReviewError(pullRequestNumber, teamReviewersFailureTemplateConstant, err)
	}
	publisher.logger.Info(reviewersRequestedMessageConstant, zap.Int(logFieldNumberConstant, pullRequestNumber), zap.Strings(logFieldTeamReviewersConstant, configuration.TeamReviewers))
	return nil
}

func (publisher *Publisher) toleratedReviewError(pullRequestNumber int, failureTemplate string, err error) error {
	if !githubapi.IsAuthorReviewerConflict(err) {
		return fmt.Errorf(failureTemplate, pullRequestNumber, err)
	}
	var reviewError githubapi.ReviewRequestError
	message := err.Error()
	if errors.As(err, &reviewError) {
		message = reviewError.Message
	}
	publisher.logger.Warn(message, zap.Int(logFieldNumberConstant, pullRequestNumber))
	if publisher.warnings != nil {
		publisher.warnings.Warning(message)
	}
	return nil
}
