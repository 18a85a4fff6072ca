// Package conventions implements the branch naming and commit message rules
// shared by the branch, commit, and pull request workflows.
package conventions
