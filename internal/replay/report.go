package replay

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/sanity-io/litter"

	"github.com/loomkit/loom/internal/engine/operation"
)

// Printer renders replay results for a terminal.
type Printer struct {
	out io.Writer

	title func(format string, a ...interface{}) string
	ok    func(format string, a ...interface{}) string
	moved func(format string, a ...interface{}) string
	gone  func(format string, a ...interface{}) string
	faint func(format string, a ...interface{}) string
}

// NewPrinter returns a printer writing to w. Passing false for colored
// yields plain text regardless of the terminal.
func NewPrinter(w io.Writer, colored bool) *Printer {
	paint := func(attrs ...color.Attribute) func(string, ...interface{}) string {
		c := color.New(attrs...)
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c.SprintfFunc()
	}

	return &Printer{
		out:   w,
		title: paint(color.FgCyan, color.Bold),
		ok:    paint(color.FgGreen),
		moved: paint(color.FgYellow),
		gone:  paint(color.FgRed),
		faint: paint(color.Faint),
	}
}

// Print writes the journey report: one block per tracked location with
// the operations that moved it and a final verdict.
func (p *Printer) Print(res *Result) {
	name := res.Scenario.Name
	if name == "" {
		name = "scenario"
	}
	fmt.Fprintf(p.out, "%s: %d operations, final revision %d\n",
		p.title("%s", name), len(res.Scenario.Operations), res.Revision)

	for _, j := range res.Journeys {
		fmt.Fprintf(p.out, "\n%s (%s)\n", p.title("%s", j.Track.Name), p.faint("%s", j.Track.Describe()))
		fmt.Fprintf(p.out, "  start        %s\n", j.Track.Start())

		for _, v := range j.Visits {
			switch {
			case !v.Alive:
				fmt.Fprintf(p.out, "  %s %s\n", p.gone("op %-3d gone ", v.Index+1), p.faint("%s", operation.Describe(v.Op)))
			case v.Moved:
				fmt.Fprintf(p.out, "  %s %s  %s\n", p.moved("op %-3d moved", v.Index+1), v.Where, p.faint("%s", operation.Describe(v.Op)))
			}
		}

		switch {
		case j.Alive && j.Moves == 0:
			fmt.Fprintf(p.out, "  %s\n", p.ok("unmoved at %s", j.Where))
		case j.Alive:
			fmt.Fprintf(p.out, "  %s\n", p.ok("survived at %s after %d moves", j.Where, j.Moves))
		default:
			op := res.Scenario.Operations[j.KilledBy]
			fmt.Fprintf(p.out, "  %s\n", p.gone("invalidated by operation %d (%s)", j.KilledBy+1, operation.Describe(op)))
		}
	}
}

// Dump writes the final tree as a Go literal.
func (p *Printer) Dump(res *Result) {
	fmt.Fprintln(p.out, litter.Sdump(res.Final))
}
