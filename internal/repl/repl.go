package repl

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ergochat/readline"
	"github.com/fatih/color"

	"github.com/loomkit/loom/internal/engine"
)

var completer = readline.NewPrefixCompleter(
	readline.PcItem("help"),

	readline.PcItem("load"),
	readline.PcItem("show"),
	readline.PcItem("text"),
	readline.PcItem("dump"),
	readline.PcItem("status"),

	readline.PcItem("apply"),
	readline.PcItem("transform"),

	readline.PcItem("track",
		readline.PcItem("path"),
		readline.PcItem("point"),
		readline.PcItem("range"),
	),
	readline.PcItem("refs"),
	readline.PcItem("unref"),

	readline.PcItem("undo"),
	readline.PcItem("redo"),

	readline.PcItem("replay"),

	readline.PcItem("exit"),
	readline.PcItem("quit"),
)

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

// REPL drives an interactive session against one in-memory document.
type REPL struct {
	doc *engine.Document
	rl  *readline.Instance
	out io.Writer

	prompt      string
	historyFile string
	colored     bool
	errPaint    func(format string, a ...interface{}) string

	// Named refs created by the track command, in creation order.
	refs  map[string]*tracked
	order []string
	nref  int
}

// tracked is one location the shell follows, rendered lazily.
type tracked struct {
	describe string
	current  func() (string, bool)
	unref    func()
}

// Option configures a REPL.
type Option func(*REPL)

// WithDocument starts the shell on doc instead of an empty document.
// The shell takes ownership and closes it.
func WithDocument(doc *engine.Document) Option {
	return func(r *REPL) {
		r.doc = doc
	}
}

// WithOutput redirects command output, which defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(r *REPL) {
		r.out = w
	}
}

// WithPrompt overrides the prompt.
func WithPrompt(p string) Option {
	return func(r *REPL) {
		r.prompt = p
	}
}

// WithHistoryFile sets where readline history persists.
func WithHistoryFile(p string) Option {
	return func(r *REPL) {
		r.historyFile = p
	}
}

// WithColor forces colored or plain output instead of following the
// terminal.
func WithColor(on bool) Option {
	return func(r *REPL) {
		r.colored = on
	}
}

// New builds a shell. Without options it works on an empty document,
// writes to stdout, and colors output when stdout is a terminal.
func New(opts ...Option) *REPL {
	r := &REPL{
		out:         os.Stdout,
		prompt:      "loom> ",
		historyFile: ".loom_history",
		colored:     !color.NoColor,
		refs:        make(map[string]*tracked),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.doc == nil {
		r.doc = engine.New()
	}

	c := color.New(color.FgRed)
	if r.colored {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	r.errPaint = c.SprintfFunc()
	return r
}

// Open prepares the terminal. Execute works without it; only Run needs
// an open terminal.
func (r *REPL) Open() error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          r.prompt,
		HistoryFile:     r.historyFile,
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		return err
	}
	rl.CaptureExitSignal()
	r.rl = rl
	return nil
}

// Close releases the terminal and the document.
func (r *REPL) Close() error {
	if r.rl != nil {
		_ = r.rl.Close()
		r.rl = nil
	}
	r.doc.Close()
	return nil
}

// Run reads and executes commands until exit, EOF, or a bare interrupt.
func (r *REPL) Run() error {
	for {
		line, err := r.rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if len(line) == 0 {
				return nil
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		out, err := r.Execute(line)
		if out != "" {
			fmt.Fprintln(r.out, out)
		}
		switch {
		case errors.Is(err, ErrExit):
			return nil
		case err != nil:
			fmt.Fprintln(r.out, r.errPaint("error: %v", err))
		}
	}
}
