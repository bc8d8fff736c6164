// Package debug holds env-gated diagnostics switches. Each flag is read
// once at startup; flipping the environment later has no effect.
package debug

import (
	"fmt"
	"os"
	"strconv"

	"github.com/sanity-io/litter"
)

type debug struct {
	Transform bool
	Wire      bool
	Apply     bool
}

var d *debug

func init() {
	d = &debug{}
	d.Transform = boolEnv("LOOM_DEBUG_TRANSFORM")
	d.Wire = boolEnv("LOOM_DEBUG_WIRE")
	d.Apply = boolEnv("LOOM_DEBUG_APPLY")
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

// Transform reports whether path/point rebasing should be traced.
func Transform() bool {
	return d.Transform
}

// Wire reports whether decoded and encoded frames should be traced.
func Wire() bool {
	return d.Wire
}

// Apply reports whether tree mutations should be traced.
func Apply() bool {
	return d.Apply
}

// Dump writes a readable rendering of v to stderr.
func Dump(v any) {
	fmt.Fprintln(os.Stderr, litter.Sdump(v))
}

// Sdump returns a readable rendering of v.
func Sdump(v any) string {
	return litter.Sdump(v)
}
