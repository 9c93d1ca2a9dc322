// Package main provides the interactive translator CLI.
//
// Usage:
//
//	translator [flags] <command> [args]
//
// Commands:
//
//	languages   - List the languages the Translation API supports
//	translate   - Translate text once
//	detect      - Detect the language of text
//	interactive - Start an interactive translation session
//	watch       - Follow the status events of a session
//
// Configuration is read from the environment and an optional .env file;
// flags override it.
package main

import (
	"fmt"
	"os"

	"unitranslate/apps/cli/cmd/translator/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
