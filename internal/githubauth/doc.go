// Package githubauth resolves the GitHub token used by REST and GraphQL calls.
package githubauth
