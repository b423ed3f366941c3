// Package githubapi adapts the go-github REST client to the pull request
// operations a cherry-pick run performs: create the pull request, add labels
// and assignees, and request reviewers.
//
// Reviewer failures are classified here, once, into ReviewRequestError so the
// publisher never inspects raw API messages.
package githubapi
