// Package logx provides a thin prefix-tagged wrapper over the standard
// library's log package, in the teacher's own "[Component] message"
// style, writing to stderr so log lines never collide with protocol
// output on stdout.
package logx

import (
	"io"
	"log"
	"os"
)

// output is where every component logger writes; overridden by tests.
var output io.Writer = os.Stderr

// Component returns a *log.Logger tagged with "[name] " that writes to
// stderr, matching the bracketed-tag style the teacher's own log.Printf
// call sites use (e.g. "info string ..." on stdout for protocol lines,
// everything else on stderr).
func Component(name string) *log.Logger {
	return log.New(output, "["+name+"] ", log.LstdFlags)
}
