// Package pullrequest opens the follow-up pull request for a pushed cherry-pick branch and copies the
// triggering change's labels, assignees, and reviewers onto it.
package pullrequest
