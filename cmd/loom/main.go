// Package main is the entry point for the loom document engine tools.
package main

import (
	"fmt"
	"os"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		usage()
		return 2
	}

	switch args[0] {
	case "serve":
		return runServe(args[1:])
	case "replay":
		return runReplay(args[1:])
	case "repl":
		return runRepl(args[1:])
	case "version", "--version", "-version", "-v":
		fmt.Printf("loom %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		return 0
	case "help", "--help", "-help", "-h":
		usage()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", args[0])
		usage()
		return 2
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Loom - collaborative document engine\n\n")
	fmt.Fprintf(os.Stderr, "Usage: loom <command> [options]\n\n")
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  serve    Relay documents between websocket clients\n")
	fmt.Fprintf(os.Stderr, "  replay   Run an operation scenario and trace tracked locations\n")
	fmt.Fprintf(os.Stderr, "  repl     Interactive shell against an in-memory document\n")
	fmt.Fprintf(os.Stderr, "  version  Show version information\n\n")
	fmt.Fprintf(os.Stderr, "Examples:\n")
	fmt.Fprintf(os.Stderr, "  loom serve -config loom.toml\n")
	fmt.Fprintf(os.Stderr, "  loom replay -watch scenario.yaml\n")
	fmt.Fprintf(os.Stderr, "  loom repl doc.json\n")
}
