package main

import (
	"fmt"
	"io"

	"github.com/HackShare/presto/internal/executor"
	"github.com/HackShare/presto/internal/session"
	"github.com/HackShare/presto/internal/splitter"
)

// runBatch executes every statement in fullText once, without console
// state. A terminator is appended so an unterminated final statement still
// runs. Per-statement failures are reported and the batch continues.
func runBatch(exec Executor, fullText string, mode executor.OutputMode, filterExpr string, out, errw io.Writer, debug bool) {
	statements, _ := splitter.Split(fullText+";", nil)
	for _, stmt := range statements {
		// Classified for parity with the console, but a batch run has no
		// session to carry forward, so switches are skipped.
		if _, ok := session.ParseUse(stmt.Text); ok {
			fmt.Fprintf(errw, "Ignoring session statement in batch mode: %s\n", splitter.Squeeze(stmt.Text))
			continue
		}
		process(exec, stmt.Text, mode, false, filterExpr, out, errw, debug)
	}
}
