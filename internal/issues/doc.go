// Package issues implements the create-issue, close-issue, and list-issues
// workflows. New issues land in the Backlog column of the project board and
// closed issues move to Done.
package issues
