// Package gitrepo models hosted repository references and the git remote URLs that point at them.
package gitrepo
