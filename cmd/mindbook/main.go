// Package main is the entry point for the mindbook CLI.
//
// Usage:
//
//	mindbook [flags] <command> [args]
//
// Commands:
//
//	add      - Capture a note into the memory store
//	ask      - Ask a question against stored notes
//	wipe     - Delete all stored data (requires confirmation token)
//	config   - Show or initialize the configuration
//	version  - Show version information
package main

import (
	"fmt"
	"os"

	"github.com/mindbook/mindbook/cmd/mindbook/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
