// Package pullrequests opens, reviews, merges, and lists pull requests and keeps
// the project board in step with each transition.
package pullrequests
