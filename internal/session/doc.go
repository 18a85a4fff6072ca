// Package session resolves the repository context shared by workflow commands:
// the git work tree, the GitHub owner/repository pair behind its remote, the
// token, and the REST, GraphQL, and project board clients built from them.
package session
