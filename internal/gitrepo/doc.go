// Package gitrepo keeps a local working copy of the documented
// repository in sync with its remote using go-git.
//
// A missing copy is cloned single-branch (shallow when a depth is
// configured); an existing one is fetched and hard reset to the remote
// branch, discarding local changes and untracked files. Failures are
// classified into typed errors so callers can react without parsing
// messages.
package gitrepo
