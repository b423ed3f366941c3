// Package cli wires the cherrypick command: configuration layering, logging, the GitHub Actions
// environment, and the git and API collaborators behind a single Cobra root command.
package cli
