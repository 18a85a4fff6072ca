// Package projects keeps GitHub Projects v2 boards in step with the issue and
// pull request workflow.
//
// All reads and writes go through a GraphQL gateway; nothing is cached between
// calls. The Synchronizer resolves the single-select Status field of a board,
// maps human-readable status names to option identifiers, and moves board
// items between columns. StatusCascade applies a status change on a
// best-effort basis so that workflow commands never fail because of the board.
package projects
