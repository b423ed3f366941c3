package githubauth

import (
	"errors"
	"os"
	"strings"
)

// Environment variable names consulted when no token is configured explicitly.
const (
	EnvGitHubToken    = "GITHUB_TOKEN"
	EnvGitHubCLIToken = "GH_TOKEN"
	EnvGitHubAPIToken = "GITHUB_API_TOKEN"
)

const missingTokenMessageConstant = "github token not configured: set the token input or one of GITHUB_TOKEN, GH_TOKEN, GITHUB_API_TOKEN"

// ErrTokenNotFound indicates neither the explicit value nor the environment supplied a token.
var ErrTokenNotFound = errors.New(missingTokenMessageConstant)

var tokenPreference = []string{
	EnvGitHubToken,
	EnvGitHubCLIToken,
	EnvGitHubAPIToken,
}

// EnvironmentLookup retrieves environment variables.
type EnvironmentLookup func(key string) (string, bool)

// TokenResolver picks the API token for a run.
type TokenResolver struct {
	lookupEnvironment EnvironmentLookup
}

// NewTokenResolver constructs a resolver reading the process environment when lookup is nil.
func NewTokenResolver(lookup EnvironmentLookup) TokenResolver {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	return TokenResolver{lookupEnvironment: lookup}
}

// Resolve returns the explicit token when non-blank, otherwise the first non-blank
// environment token in preference order.
func (resolver TokenResolver) Resolve(explicitToken string) (string, error) {
	if trimmedToken := strings.TrimSpace(explicitToken); len(trimmedToken) > 0 {
		return trimmedToken, nil
	}

	lookup := resolver.lookupEnvironment
	if lookup == nil {
		lookup = os.LookupEnv
	}
	for _, key := range tokenPreference {
		value, exists := lookup(key)
		if !exists {
			continue
		}
		if trimmedValue := strings.TrimSpace(value); len(trimmedValue) > 0 {
			return trimmedValue, nil
		}
	}
	return "", ErrTokenNotFound
}
