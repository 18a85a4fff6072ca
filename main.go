package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/temirov/ghflow/cmd/cli"
	"github.com/temirov/ghflow/internal/prompt"
)

const (
	exitErrorTemplateConstant = "%v\n"
	cancelledMessageConstant  = "cancelled"
)

// main executes the ghflow command-line application. A cancelled prompt is a voluntary exit.
func main() {
	executionError := cli.Execute()
	switch {
	case executionError == nil:
	case errors.Is(executionError, prompt.ErrCancelled):
		fmt.Fprintln(os.Stderr, cancelledMessageConstant)
	default:
		fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)
		os.Exit(1)
	}
}
