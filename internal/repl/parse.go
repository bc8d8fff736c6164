package repl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/loomkit/loom/internal/engine/operation"
	"github.com/loomkit/loom/internal/engine/path"
)

// ParsePath reads the path spellings used across the shell: "[0.1.2]",
// bare "0.1.2", and "[]" or "root" for the root.
func ParsePath(s string) (path.Path, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	if s == "" || s == "root" {
		return path.Path{}, nil
	}

	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '.' || r == ','
	})
	p := make(path.Path, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("path element %q: %w", part, ErrBadPath)
		}
		if n < 0 {
			return nil, fmt.Errorf("path element %d: %w", n, ErrBadPath)
		}
		p = append(p, n)
	}
	return p, nil
}

// affinityNamed maps a token to a point affinity. The second result is
// false for tokens that are not an affinity spelling.
func affinityNamed(s string) (path.Affinity, bool) {
	switch s {
	case "forward":
		return path.Forward, true
	case "backward":
		return path.Backward, true
	case "none":
		return path.None, true
	}
	return 0, false
}

func rangeAffinityNamed(s string) (operation.RangeAffinity, bool) {
	switch s {
	case "inward":
		return operation.RangeInward, true
	case "outward":
		return operation.RangeOutward, true
	case "forward":
		return operation.RangeForward, true
	case "backward":
		return operation.RangeBackward, true
	case "none":
		return operation.RangeNone, true
	}
	return 0, false
}

// splitCommand separates the first word from the rest of the line.
func splitCommand(line string) (string, string) {
	line = strings.TrimSpace(line)
	ws := strings.IndexAny(line, " \t")
	if ws < 0 {
		return line, ""
	}
	return line[:ws], strings.TrimSpace(line[ws:])
}
