package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	"github.com/loomkit/loom/internal/replay"
)

func runReplay(args []string) int {
	fs := flag.NewFlagSet("replay", flag.ExitOnError)
	var dump, watch, noColor bool
	fs.BoolVar(&dump, "dump", false, "Print the final tree as a Go literal")
	fs.BoolVar(&watch, "watch", false, "Re-run when the scenario file changes")
	fs.BoolVar(&noColor, "no-color", false, "Disable colored output")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: loom replay [options] <scenario.(yaml|json)>\n\nOptions:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	file := fs.Arg(0)

	printer := replay.NewPrinter(os.Stdout, !noColor && !color.NoColor)

	runOnce := func() int {
		sc, err := replay.Load(file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		res, err := replay.Run(sc)
		if res != nil {
			printer.Print(res)
			if dump {
				fmt.Println()
				printer.Dump(res)
			}
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	code := runOnce()
	if !watch {
		return code
	}

	w, err := replay.WatchFile(file, replay.DefaultDebounce, func() {
		fmt.Println()
		runOnce()
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer w.Close()

	fmt.Fprintf(os.Stderr, "watching %s (ctrl-c to stop)\n", file)
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	<-signals
	return 0
}
