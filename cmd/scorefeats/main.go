// Package main is the entry point for the scorefeats CLI.
//
// Usage:
//
//	scorefeats [flags] <command> [args]
//
// Commands:
//
//	aggregate  - Aggregate per-sample labels into per-frame labels
//	segment    - Extract syllable segments from duration/score/tempo streams
//	cache      - Inspect the feature cache (list, get, delete)
//	version    - Show version information
package main

import (
	"fmt"
	"os"

	"github.com/soratune/scorefeats/cmd/scorefeats/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
