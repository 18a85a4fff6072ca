// Package githubapi wraps the GitHub REST API for a single repository.
//
// It adapts go-github types into the small domain types the workflow commands
// print and compose, authenticates through an oauth2 static token source, and
// logs every HTTP exchange at debug level.
package githubapi
