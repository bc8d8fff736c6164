package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/loomkit/loom/internal/config"
	"github.com/loomkit/loom/internal/engine"
	"github.com/loomkit/loom/internal/repl"
	"github.com/loomkit/loom/internal/replay"
)

func runRepl(args []string) int {
	fs := flag.NewFlagSet("repl", flag.ExitOnError)
	var configPath string
	var noColor bool
	fs.StringVar(&configPath, "config", "", "Path to configuration file")
	fs.StringVar(&configPath, "c", "", "Path to configuration file (shorthand)")
	fs.BoolVar(&noColor, "no-color", false, "Disable colored output")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: loom repl [options] [document.(yaml|json)]\n\nOptions:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() > 1 {
		fs.Usage()
		return 2
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: configuration: %v\n", err)
		return 1
	}

	opts := []repl.Option{repl.WithHistoryFile(cfg.Repl.HistoryFile)}
	if noColor {
		opts = append(opts, repl.WithColor(false))
	}

	if fs.NArg() == 1 {
		data, err := os.ReadFile(fs.Arg(0))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		root, err := replay.ParseTree(data)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		opts = append(opts, repl.WithDocument(engine.New(
			engine.WithContent(root),
			engine.WithMaxUndoEntries(cfg.Document.MaxUndoEntries),
		)))
	}

	shell := repl.New(opts...)
	defer shell.Close()

	if err := shell.Open(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	fmt.Printf("loom %s (type help for commands)\n", version)
	if err := shell.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
