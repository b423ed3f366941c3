// Package cherrypick applies a merged commit onto another branch in a fresh working branch, restores the
// original author, pushes the branch, and delegates the follow-up pull request to a publisher.
package cherrypick
