// Package branches starts work on an issue by creating a conventionally named branch.
//
// The branch name follows "<type>/<issue>-<slug>" so later commands can recover
// the issue number from the current branch.
package branches
