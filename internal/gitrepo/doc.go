// Package gitrepo contains helpers for interrogating and manipulating the local Git repository.
//
// It parses remote URLs into owner/repository pairs and exposes
// RepositoryManager, which runs the git subcommands the workflow commands need
// through execshell.
package gitrepo
