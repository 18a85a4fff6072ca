// Package githubcli wraps the GitHub CLI for ghflow workflows.
//
// It sends GraphQL documents through gh api graphql, creates repositories with
// gh repo create, and reads the cached gh credential. All invocations flow
// through execshell so they can be stubbed during testing.
package githubcli
