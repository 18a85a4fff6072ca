// Package ui formats human-readable console output.
//
// Command lifecycle events are rendered as concise messages while detailed
// telemetry continues to flow through structured loggers. Listings are
// rendered as bordered tables.
package ui
