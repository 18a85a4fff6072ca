// Package utils exposes reusable helpers consumed by multiple commands.
//
// It houses the ConfigurationLoader and LoggerFactory abstractions that
// integrate Viper, environment variables and zap logging for the CLI, along
// with small helpers for command context propagation, flushing output and
// home directory expansion.
package utils
