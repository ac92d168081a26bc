// Package main provides the kblink CLI.
//
// Usage:
//
//	kblink [flags] <command>
//
// Commands:
//
//	match          - link source ids to target ids by label
//	stats          - summarize a correspondence checkpoint
//	target-labels  - build the target id to label checkpoint
//	score          - score labeled entity pairs against relation vectors
//	run            - match, then score
//
// Every flag has an environment variable counterpart, read from the process
// environment and an optional .env file.
package main

import (
	"fmt"
	"os"

	"github.com/OFFIS-RIT/kblink/cmd/kblink/commands"

	_ "github.com/lib/pq"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
