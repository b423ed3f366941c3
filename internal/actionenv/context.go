package actionenv

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/go-github/v68/github"

	"github.com/temirov/cherrypick/internal/gitrepo"
)

// Environment variables populated by the GitHub Actions runner.
const (
	EnvRepository = "GITHUB_REPOSITORY"
	EnvSHA        = "GITHUB_SHA"
	EnvEventPath  = "GITHUB_EVENT_PATH"
	EnvActions    = "GITHUB_ACTIONS"
)

const (
	actionsEnabledValueConstant          = "true"
	repositoryParseErrorTemplateConstant = "invalid %s: %w"
	eventReadErrorTemplateConstant       = "unable to read event payload %s: %w"
	eventDecodeErrorTemplateConstant     = "unable to decode event payload %s: %w"
)

// EnvironmentLookup retrieves environment variables.
type EnvironmentLookup func(key string) (string, bool)

// FileReader reads file contents.
type FileReader func(path string) ([]byte, error)

// PullRequestDetails carries the triggering pull request metadata copied to the follow-up pull request.
type PullRequestDetails struct {
	Title  *string
	Body   *string
	Labels []string
}

// Context is the ambient information about the triggering event.
type Context struct {
	Repository       gitrepo.OwnerRepository
	CommitSHA        string
	EventPath        string
	PullRequest      PullRequestDetails
	RunningInActions bool
}

// Loader reads the runner environment and event payload.
type Loader struct {
	lookupEnvironment EnvironmentLookup
	readFile          FileReader
}

// NewLoader constructs a Loader; nil collaborators fall back to the process environment and file system.
func NewLoader(lookup EnvironmentLookup, reader FileReader) Loader {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if reader == nil {
		reader = os.ReadFile
	}
	return Loader{lookupEnvironment: lookup, readFile: reader}
}

// Load collects the ambient context. Absent variables yield zero values; a malformed repository
// or an unreadable payload is an error.
func (loader Loader) Load() (Context, error) {
	ambientContext := Context{
		CommitSHA:        loader.value(EnvSHA),
		EventPath:        loader.value(EnvEventPath),
		RunningInActions: strings.EqualFold(loader.value(EnvActions), actionsEnabledValueConstant),
	}

	if repositoryValue := loader.value(EnvRepository); len(repositoryValue) > 0 {
		repository, parseError := gitrepo.ParseOwnerRepository(repositoryValue)
		if parseError != nil {
			return Context{}, fmt.Errorf(repositoryParseErrorTemplateConstant, EnvRepository, parseError)
		}
		ambientContext.Repository = repository
	}

	if len(ambientContext.EventPath) > 0 {
		pullRequestDetails, payloadError := loader.LoadPullRequest(ambientContext.EventPath)
		if payloadError != nil {
			return Context{}, payloadError
		}
		ambientContext.PullRequest = pullRequestDetails
	}

	return ambientContext, nil
}

// LoadPullRequest decodes the pull_request section of an event payload. Payloads of other
// event types produce empty details.
func (loader Loader) LoadPullRequest(eventPath string) (PullRequestDetails, error) {
	payload, readError := loader.readFile(eventPath)
	if readError != nil {
		return PullRequestDetails{}, fmt.Errorf(eventReadErrorTemplateConstant, eventPath, readError)
	}

	var event github.PullRequestEvent
	if decodeError := json.Unmarshal(payload, &event); decodeError != nil {
		return PullRequestDetails{}, fmt.Errorf(eventDecodeErrorTemplateConstant, eventPath, decodeError)
	}

	pullRequest := event.GetPullRequest()
	if pullRequest == nil {
		return PullRequestDetails{}, nil
	}

	labelNames := make([]string, 0, len(pullRequest.Labels))
	for _, label := range pullRequest.Labels {
		if name := label.GetName(); len(name) > 0 {
			labelNames = append(labelNames, name)
		}
	}

	return PullRequestDetails{
		Title:  pullRequest.Title,
		Body:   pullRequest.Body,
		Labels: labelNames,
	}, nil
}

func (loader Loader) value(key string) string {
	value, exists := loader.lookupEnvironment(key)
	if !exists {
		return ""
	}
	return strings.TrimSpace(value)
}
