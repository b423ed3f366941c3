// Package githubauth resolves the GitHub API token for a run from explicit
// configuration or the conventional environment variables.
package githubauth
