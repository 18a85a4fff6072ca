// Package commits composes conventional commit messages and installs the git hooks that enforce them.
//
// Service.Commit drives the interactive commit. CheckBranch and CheckMessageFile back the
// pre-commit and commit-msg hooks written by InstallHooks.
package commits
