package repl

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/loomkit/loom/internal/debug"
	"github.com/loomkit/loom/internal/engine"
	"github.com/loomkit/loom/internal/engine/operation"
	"github.com/loomkit/loom/internal/engine/path"
	"github.com/loomkit/loom/internal/engine/selection"
	"github.com/loomkit/loom/internal/replay"
)

const helpText = `commands:
  load <file>                               swap in a document tree (yaml or json)
  show                                      print the tree as json
  text                                      print the concatenated leaf text
  dump                                      print the tree as a go literal
  status                                    id, revision, refs, history depth
  apply <op-json>                           apply one wire operation
  transform <path> [affinity] <op-json>     rebase a path across an operation
  track path <path> [affinity]              follow a path through edits
  track point <path> <offset> [affinity]    follow a text position
  track range <path> <off> <path> <off> [affinity]
  refs                                      list tracked locations
  unref <name>                              stop tracking one location
  undo / redo                               walk the history
  replay <file>                             run a scenario, print the journeys
  exit                                      leave`

// Execute runs one command line and returns its printable output. It
// needs no terminal, so scripted callers and tests drive it directly.
// ErrExit reports a clean quit.
func (r *REPL) Execute(line string) (string, error) {
	cmd, rest := splitCommand(line)

	switch cmd {
	case "":
		return "", nil
	case "help", "?":
		return helpText, nil
	case "exit", "quit":
		return "", ErrExit
	case "load":
		return r.cmdLoad(rest)
	case "show":
		return r.cmdShow()
	case "text":
		return r.doc.PlainText(), nil
	case "dump":
		return strings.TrimRight(debug.Sdump(r.doc.Root()), "\n"), nil
	case "status":
		return r.cmdStatus()
	case "apply":
		return r.cmdApply(rest)
	case "transform":
		return r.cmdTransform(rest)
	case "track":
		return r.cmdTrack(rest)
	case "refs":
		return r.cmdRefs()
	case "unref":
		return r.cmdUnref(rest)
	case "undo":
		return r.cmdUndo()
	case "redo":
		return r.cmdRedo()
	case "replay":
		return r.cmdReplay(rest)
	default:
		return "", fmt.Errorf("unknown command %q (try help)", cmd)
	}
}

func (r *REPL) cmdLoad(arg string) (string, error) {
	if arg == "" {
		return "", errors.New("usage: load <file>")
	}
	data, err := os.ReadFile(arg)
	if err != nil {
		return "", err
	}
	root, err := replay.ParseTree(data)
	if err != nil {
		return "", err
	}

	dropped := len(r.order)
	r.refs = make(map[string]*tracked)
	r.order = nil
	r.doc.Close()
	r.doc = engine.New(engine.WithContent(root))

	msg := fmt.Sprintf("loaded %s: %d top-level nodes", arg, len(root.Children))
	if dropped > 0 {
		msg += fmt.Sprintf(", dropped %d refs", dropped)
	}
	return msg, nil
}

func (r *REPL) cmdShow() (string, error) {
	out, err := json.MarshalIndent(r.doc.Root(), "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (r *REPL) cmdStatus() (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "doc       %s\n", r.doc.ID())
	fmt.Fprintf(&b, "revision  %d\n", r.doc.Revision())
	fmt.Fprintf(&b, "text      %d chars\n", utf8.RuneCountInString(r.doc.PlainText()))
	if sel, ok := r.doc.Selection(); ok {
		fmt.Fprintf(&b, "selection %s\n", sel)
	}
	fmt.Fprintf(&b, "refs      %d\n", len(r.refs))
	fmt.Fprintf(&b, "undo      %d, redo %d", r.doc.UndoCount(), r.doc.RedoCount())
	return b.String(), nil
}

func (r *REPL) cmdApply(rest string) (string, error) {
	if rest == "" {
		return "", errors.New(`usage: apply {"type": "insert_text", "path": [0], "offset": 0, "text": "hi"}`)
	}
	op, err := operation.Decode([]byte(rest))
	if err != nil {
		return "", err
	}
	if err := r.doc.Apply(op); err != nil {
		return "", err
	}
	return fmt.Sprintf("rev %d  %s", r.doc.Revision(), operation.Describe(op)), nil
}

// cmdTransform rebases a path across an operation without touching the
// document. The default affinity is forward, like the engine's.
func (r *REPL) cmdTransform(rest string) (string, error) {
	tok, rest := splitCommand(rest)
	if tok == "" || rest == "" {
		return "", errors.New("usage: transform <path> [affinity] <op-json>")
	}
	p, err := ParsePath(tok)
	if err != nil {
		return "", err
	}

	aff := path.Forward
	if next, after := splitCommand(rest); after != "" {
		if a, ok := affinityNamed(next); ok {
			aff = a
			rest = after
		}
	}

	op, err := operation.Decode([]byte(rest))
	if err != nil {
		return "", err
	}
	if debug.Transform() {
		debug.Dump(op)
	}
	moved, ok := operation.TransformPathWithAffinity(p, op, aff)
	if !ok {
		return fmt.Sprintf("%s -> gone", p), nil
	}
	return fmt.Sprintf("%s -> %s", p, moved), nil
}

func (r *REPL) cmdTrack(rest string) (string, error) {
	shape, rest := splitCommand(rest)
	args := strings.Fields(rest)

	var t *tracked
	switch shape {
	case "path":
		if len(args) < 1 || len(args) > 2 {
			return "", errors.New("usage: track path <path> [affinity]")
		}
		p, err := ParsePath(args[0])
		if err != nil {
			return "", err
		}
		aff := path.Forward
		if len(args) == 2 {
			a, ok := affinityNamed(args[1])
			if !ok {
				return "", fmt.Errorf("unknown affinity %q", args[1])
			}
			aff = a
		}
		ref := r.doc.TrackPath(p, aff)
		t = &tracked{
			describe: fmt.Sprintf("path %s, %s", p, aff),
			current: func() (string, bool) {
				cur, ok := ref.Current()
				if !ok {
					return "", false
				}
				return cur.String(), true
			},
			unref: func() { ref.Unref() },
		}

	case "point":
		if len(args) < 2 || len(args) > 3 {
			return "", errors.New("usage: track point <path> <offset> [affinity]")
		}
		p, err := ParsePath(args[0])
		if err != nil {
			return "", err
		}
		off, err := strconv.Atoi(args[1])
		if err != nil {
			return "", fmt.Errorf("offset %q: %w", args[1], err)
		}
		aff := path.Forward
		if len(args) == 3 {
			a, ok := affinityNamed(args[2])
			if !ok {
				return "", fmt.Errorf("unknown affinity %q", args[2])
			}
			aff = a
		}
		pt := selection.NewPoint(p, off)
		ref := r.doc.TrackPoint(pt, aff)
		t = &tracked{
			describe: fmt.Sprintf("point %s, %s", pt, aff),
			current: func() (string, bool) {
				cur, ok := ref.Current()
				if !ok {
					return "", false
				}
				return cur.String(), true
			},
			unref: func() { ref.Unref() },
		}

	case "range":
		if len(args) < 4 || len(args) > 5 {
			return "", errors.New("usage: track range <path> <offset> <path> <offset> [affinity]")
		}
		ap, err := ParsePath(args[0])
		if err != nil {
			return "", err
		}
		aoff, err := strconv.Atoi(args[1])
		if err != nil {
			return "", fmt.Errorf("offset %q: %w", args[1], err)
		}
		fp, err := ParsePath(args[2])
		if err != nil {
			return "", err
		}
		foff, err := strconv.Atoi(args[3])
		if err != nil {
			return "", fmt.Errorf("offset %q: %w", args[3], err)
		}
		aff := operation.RangeInward
		if len(args) == 5 {
			a, ok := rangeAffinityNamed(args[4])
			if !ok {
				return "", fmt.Errorf("unknown range affinity %q", args[4])
			}
			aff = a
		}
		rg := selection.NewRange(selection.NewPoint(ap, aoff), selection.NewPoint(fp, foff))
		ref := r.doc.TrackRange(rg, aff)
		t = &tracked{
			describe: fmt.Sprintf("range %s, %s", rg, aff),
			current: func() (string, bool) {
				cur, ok := ref.Current()
				if !ok {
					return "", false
				}
				return cur.String(), true
			},
			unref: func() { ref.Unref() },
		}

	default:
		return "", errors.New("usage: track path|point|range ...")
	}

	r.nref++
	name := fmt.Sprintf("r%d", r.nref)
	r.refs[name] = t
	r.order = append(r.order, name)
	return fmt.Sprintf("%s = %s", name, t.describe), nil
}

func (r *REPL) cmdRefs() (string, error) {
	if len(r.order) == 0 {
		return "no refs (try: track path [0])", nil
	}
	var b strings.Builder
	for _, name := range r.order {
		t := r.refs[name]
		where, ok := t.current()
		if !ok {
			where = "gone"
		}
		fmt.Fprintf(&b, "%-4s %-32s -> %s\n", name, t.describe, where)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (r *REPL) cmdUnref(arg string) (string, error) {
	t, ok := r.refs[arg]
	if !ok {
		return "", fmt.Errorf("no ref %q", arg)
	}
	t.unref()
	delete(r.refs, arg)
	for i, name := range r.order {
		if name == arg {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return fmt.Sprintf("dropped %s", arg), nil
}

func (r *REPL) cmdUndo() (string, error) {
	if !r.doc.CanUndo() {
		return "", errors.New("nothing to undo")
	}
	if err := r.doc.Undo(); err != nil {
		return "", err
	}
	return fmt.Sprintf("rev %d", r.doc.Revision()), nil
}

func (r *REPL) cmdRedo() (string, error) {
	if !r.doc.CanRedo() {
		return "", errors.New("nothing to redo")
	}
	if err := r.doc.Redo(); err != nil {
		return "", err
	}
	return fmt.Sprintf("rev %d", r.doc.Revision()), nil
}

// cmdReplay runs a scenario file in isolation; the shell's own document
// is not touched. A scenario that fails mid-run still prints the
// journeys up to the failure.
func (r *REPL) cmdReplay(arg string) (string, error) {
	if arg == "" {
		return "", errors.New("usage: replay <scenario-file>")
	}
	sc, err := replay.Load(arg)
	if err != nil {
		return "", err
	}
	res, err := replay.Run(sc)

	var buf bytes.Buffer
	if res != nil {
		replay.NewPrinter(&buf, r.colored).Print(res)
	}
	return strings.TrimRight(buf.String(), "\n"), err
}
