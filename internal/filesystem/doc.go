// Package filesystem provides the file operations ghflow performs on the working tree.
package filesystem
