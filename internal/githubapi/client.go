package githubapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v68/github"
	"golang.org/x/oauth2"

	"github.com/temirov/cherrypick/internal/gitrepo"
)

const (
	// DefaultBaseURL is the public GitHub REST API endpoint.
	DefaultBaseURL = "https://api.github.com/"

	tokenFieldNameConstant                  = "token"
	repositoryFieldNameConstant             = "repository"
	headFieldNameConstant                   = "head"
	baseFieldNameConstant                   = "base"
	pullRequestNumberFieldNameConstant      = "pull_request_number"
	baseURLFieldNameConstant                = "base_url"
	requiredValueMessageConstant            = "value required"
	positiveNumberMessageConstant           = "must be a positive number"
	invalidURLMessageTemplateConstant       = "invalid url: %v"
	baseURLPathSuffixConstant               = "/"
	invalidInputErrorTemplateConstant       = "%s: %s"
	operationErrorMessageTemplateConstant   = "%s %s failed"
	operationErrorWithCauseTemplateConstant = "%s %s failed: %s"
	createPullRequestOperationNameConstant  = OperationName("CreatePullRequest")
	addLabelsOperationNameConstant          = OperationName("AddLabels")
	addAssigneesOperationNameConstant       = OperationName("AddAssignees")
	requestReviewersOperationNameConstant   = OperationName("RequestReviewers")
)

// OperationName identifies a GitHub REST operation performed by the client.
type OperationName string

// InvalidInputError surfaces validation issues for operation inputs.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// OperationError wraps API failures with the operation and repository involved.
type OperationError struct {
	Operation  OperationName
	Repository gitrepo.OwnerRepository
	Cause      error
}

// Error describes the operation failure.
func (operationError OperationError) Error() string {
	if operationError.Cause == nil {
		return fmt.Sprintf(operationErrorMessageTemplateConstant, operationError.Operation, operationError.Repository)
	}
	return fmt.Sprintf(operationErrorWithCauseTemplateConstant, operationError.Operation, operationError.Repository, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// PullRequestRequest describes a pull request to open.
type PullRequestRequest struct {
	Head  string
	Base  string
	Title string
	Body  *string
}

// ClientOption configures a Client.
type ClientOption func(*clientSettings)

type clientSettings struct {
	baseURL    string
	httpClient *http.Client
}

// WithBaseURL points the client at a GitHub Enterprise Server API endpoint.
func WithBaseURL(baseURL string) ClientOption {
	return func(settings *clientSettings) {
		settings.baseURL = strings.TrimSpace(baseURL)
	}
}

// WithHTTPClient supplies the transport; the token is still attached to every request.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(settings *clientSettings) {
		settings.httpClient = httpClient
	}
}

// Client adapts go-github to the operations needed to publish a cherry-pick pull request.
type Client struct {
	githubClient *github.Client
}

// NewClient constructs a Client authenticated with token.
func NewClient(executionContext context.Context, token string, options ...ClientOption) (*Client, error) {
	trimmedToken := strings.TrimSpace(token)
	if len(trimmedToken) == 0 {
		return nil, InvalidInputError{FieldName: tokenFieldNameConstant, Message: requiredValueMessageConstant}
	}

	settings := clientSettings{}
	for _, option := range options {
		if option != nil {
			option(&settings)
		}
	}

	var githubClient *github.Client
	if settings.httpClient != nil {
		githubClient = github.NewClient(settings.httpClient).WithAuthToken(trimmedToken)
	} else {
		tokenSource := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: trimmedToken})
		githubClient = github.NewClient(oauth2.NewClient(executionContext, tokenSource))
	}

	if len(settings.baseURL) > 0 && settings.baseURL != DefaultBaseURL {
		baseURL := settings.baseURL
		if !strings.HasSuffix(baseURL, baseURLPathSuffixConstant) {
			baseURL += baseURLPathSuffixConstant
		}
		parsedURL, parseError := url.Parse(baseURL)
		if parseError != nil || len(parsedURL.Host) == 0 {
			return nil, InvalidInputError{FieldName: baseURLFieldNameConstant, Message: fmt.Sprintf(invalidURLMessageTemplateConstant, settings.baseURL)}
		}
		githubClient.BaseURL = parsedURL
	}

	return &Client{githubClient: githubClient}, nil
}

// CreatePullRequest opens a pull request in repository and returns its number.
func (client *Client) CreatePullRequest(executionContext context.Context, repository gitrepo.OwnerRepository, request PullRequestRequest) (int, error) {
	if validationError := validateRepository(repository); validationError != nil {
		return 0, validationError
	}
	if len(strings.TrimSpace(request.Head)) == 0 {
		return 0, InvalidInputError{FieldName: headFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if len(strings.TrimSpace(request.Base)) == 0 {
		return 0, InvalidInputError{FieldName: baseFieldNameConstant, Message: requiredValueMessageConstant}
	}

	newPullRequest := &github.NewPullRequest{
		Title: github.Ptr(request.Title),
		Head:  github.Ptr(request.Head),
		Base:  github.Ptr(request.Base),
		Body:  request.Body,
	}

	pullRequest, _, createError := client.githubClient.PullRequests.Create(executionContext, repository.Owner, repository.Repository, newPullRequest)
	if createError != nil {
		return 0, OperationError{Operation: createPullRequestOperationNameConstant, Repository: repository, Cause: createError}
	}
	return pullRequest.GetNumber(), nil
}

// AddLabels attaches labels to the pull request's issue.
func (client *Client) AddLabels(executionContext context.Context, repository gitrepo.OwnerRepository, pullRequestNumber int, labels []string) error {
	if validationError := validateTarget(repository, pullRequestNumber); validationError != nil {
		return validationError
	}
	_, _, addError := client.githubClient.Issues.AddLabelsToIssue(executionContext, repository.Owner, repository.Repository, pullRequestNumber, labels)
	if addError != nil {
		return OperationError{Operation: addLabelsOperationNameConstant, Repository: repository, Cause: addError}
	}
	return nil
}

// AddAssignees assigns users to the pull request's issue.
func (client *Client) AddAssignees(executionContext context.Context, repository gitrepo.OwnerRepository, pullRequestNumber int, assignees []string) error {
	if validationError := validateTarget(repository, pullRequestNumber); validationError != nil {
		return validationError
	}
	_, _, addError := client.githubClient.Issues.AddAssignees(executionContext, repository.Owner, repository.Repository, pullRequestNumber, assignees)
	if addError != nil {
		return OperationError{Operation: addAssigneesOperationNameConstant, Repository: repository, Cause: addError}
	}
	return nil
}

// RequestReviewers requests reviews from users and teams in one call. Failures are returned
// as ReviewRequestError so callers can tell the author conflict apart from other problems.
func (client *Client) RequestReviewers(executionContext context.Context, repository gitrepo.OwnerRepository, pullRequestNumber int, reviewers []string, teamReviewers []string) error {
	if validationError := validateTarget(repository, pullRequestNumber); validationError != nil {
		return validationError
	}
	reviewersRequest := github.ReviewersRequest{
		Reviewers:     reviewers,
		TeamReviewers: teamReviewers,
	}
	_, _, requestError := client.githubClient.PullRequests.RequestReviewers(executionContext, repository.Owner, repository.Repository, pullRequestNumber, reviewersRequest)
	if requestError != nil {
		return classifyReviewRequestError(OperationError{Operation: requestReviewersOperationNameConstant, Repository: repository, Cause: requestError})
	}
	return nil
}

func validateRepository(repository gitrepo.OwnerRepository) error {
	if len(repository.Owner) == 0 || len(repository.Repository) == 0 {
		return InvalidInputError{FieldName: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}
	return nil
}

func validateTarget(repository gitrepo.OwnerRepository, pullRequestNumber int) error {
	if validationError := validateRepository(repository); validationError != nil {
		return validationError
	}
	if pullRequestNumber <= 0 {
		return InvalidInputError{FieldName: pullRequestNumberFieldNameConstant, Message: positiveNumberMessageConstant}
	}
	return nil
}
