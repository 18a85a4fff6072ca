// Package cli constructs the ghflow command-line interface. It loads the
// configuration, builds the structured logger, resolves the repository session
// lazily on the first command that needs GitHub, and registers every workflow
// command. Running the binary without a command opens an interactive chooser.
package cli
