// Package actionenv reads the GitHub Actions runner context.
//
// Loader resolves GITHUB_REPOSITORY, GITHUB_SHA, and the pull request section
// of the event payload at GITHUB_EVENT_PATH using go-github event types.
// LoadEnvironmentFile applies .env files for local runs, and
// WorkflowCommandWriter emits ::group:: and annotation commands.
package actionenv
