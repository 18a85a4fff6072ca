// Package prompt reads answers from the terminal: free text, numbered
// selections, confirmations, and the interactive command chooser.
package prompt
