package repl

import "errors"

var (
	// ErrExit signals a clean quit from a command.
	ErrExit = errors.New("exit")

	// ErrBadPath indicates an unparseable path argument.
	ErrBadPath = errors.New("bad path")
)
