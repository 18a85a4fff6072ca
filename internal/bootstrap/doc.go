// Package bootstrap prepares a repository for the ghflow workflow.
//
// The Planner compares the configuration with the remote repository and
// produces create-only actions: missing labels, missing template files, the
// project board, and the board's single-select field options. Nothing that
// already exists is modified. The Executor applies the plan one action at a
// time; only a board failure stops the run.
package bootstrap
