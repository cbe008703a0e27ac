package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/HackShare/presto/internal/executor"
	"github.com/HackShare/presto/internal/filter"
	"github.com/HackShare/presto/internal/session"
	"github.com/HackShare/presto/internal/splitter"
)

const promptName = "presto"

// Terminators recognized in interactive mode; \G requests vertical output.
var interactiveTerminators = []string{";", `\G`}

const rejectionNotice = "Only SELECT, SHOW, EXPLAIN, DESCRIBE and USE statements are supported over the command line client. For other operations, please use the API."

var allowedVerbs = []string{"select", "show", "explain", "describe", "use"}

// QueryHandle is one in-flight statement. It must be closed on every path.
type QueryHandle interface {
	ID() string
	RenderOutput(w io.Writer, mode executor.OutputMode, interactive bool, filterExpr string) error
	Close() error
}

// Executor is the active backend binding. A session switch replaces it
// wholesale rather than mutating it, so a statement can never run against
// a half-updated binding.
type Executor interface {
	StartQuery(text string) (QueryHandle, error)
	Close() error
}

// Console drives the interactive read/split/execute loop.
type Console struct {
	lines LineSource
	exec  Executor
	bind  func(session.State) (Executor, error)
	state session.State

	// filterExpr is the active inline filter; it is scoped to the
	// statements executed from the line it was extracted from and reset at
	// the start of every new top-level command.
	filterExpr string

	out  io.Writer
	errw io.Writer
}

// Run reads lines until exit, quit, or EOF. Statement failures are
// reported and the loop continues; only a broken line source ends it with
// an error.
func (c *Console) Run() error {
	var buffer strings.Builder
	primary := promptName + "> "
	continuation := strings.Repeat(" ", len(promptName)-1) + "-> "

	for {
		prompt := primary
		if buffer.Len() > 0 {
			prompt = continuation
		}
		line, err := c.lines.ReadLine(prompt)

		// Save and clear the buffer on user interrupt.
		if errors.Is(err, ErrInterrupted) {
			if partial := splitter.Squeeze(buffer.String()); partial != "" {
				c.lines.AppendHistory(partial)
			}
			buffer.Reset()
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read line: %w", err)
		}

		// Special commands are only recognized on the first line of a new
		// command; once continuation has begun, lines are raw SQL text.
		if buffer.Len() == 0 {
			c.filterExpr = ""
			command := strings.TrimSpace(line)

			switch strings.ToLower(stripTerminator(command)) {
			case "exit", "quit":
				return nil
			case "help":
				fmt.Fprintln(c.out)
				fmt.Fprintln(c.out, helpText)
				continue
			}

			if d, ok := filter.Extract(command); ok {
				c.filterExpr = d.Expr
				line = d.Base
				command = d.Base
			}

			if !allowed(stripTerminator(command)) {
				fmt.Fprintln(c.out, rejectionNotice)
				continue
			}
		}

		buffer.WriteString(line)
		buffer.WriteByte('\n')
		c.dispatch(&buffer)
	}
}

// dispatch executes every complete statement in the buffer and reseeds the
// buffer with the trailing partial statement.
func (c *Console) dispatch(buffer *strings.Builder) {
	statements, partial := splitter.Split(buffer.String(), interactiveTerminators)
	for _, stmt := range statements {
		if use, ok := session.ParseUse(stmt.Text); ok {
			// Session switches are client-side: no statement reaches the
			// backend, the executor is rebound instead.
			c.switchSession(use)
		} else {
			mode := executor.Aligned
			if stmt.Terminator == `\G` {
				mode = executor.Vertical
			}
			process(c.exec, stmt.Text, mode, true, c.filterExpr, c.out, c.errw, c.state.Debug)
		}
		c.lines.AppendHistory(splitter.Squeeze(stmt.Text) + stmt.Terminator)
	}

	buffer.Reset()
	if partial != "" {
		buffer.WriteString(partial)
		buffer.WriteByte('\n')
	}
}

// switchSession replaces the session state and rebinds the executor. On a
// bind failure the previous state and binding stay active.
func (c *Console) switchSession(use session.UseStatement) {
	next := use.Apply(c.state)
	exec, err := c.bind(next)
	if err != nil {
		fmt.Fprintf(c.errw, "Error switching session: %v\n", err)
		return
	}
	if c.exec != nil {
		_ = c.exec.Close()
	}
	c.state = next
	c.exec = exec
	if c.state.Debug {
		fmt.Fprintf(c.errw, "Session is now %s\n", c.state)
	}
}

func stripTerminator(command string) string {
	return strings.TrimSpace(strings.TrimSuffix(command, ";"))
}

// allowed reports whether the first line of a new command contains one of
// the permitted statement verbs.
func allowed(command string) bool {
	lower := strings.ToLower(command)
	for _, verb := range allowedVerbs {
		if strings.Contains(lower, verb) {
			return true
		}
	}
	return false
}

// process executes one statement through a scoped query handle, releasing
// the handle on success, error, and cancellation paths alike. Failures are
// reported and never stop the loop or the batch.
func process(exec Executor, text string, mode executor.OutputMode, interactive bool, filterExpr string, out, errw io.Writer, debug bool) {
	query, err := exec.StartQuery(text)
	if err != nil {
		reportError(errw, err, debug)
		return
	}
	defer func() { _ = query.Close() }()

	if debug {
		fmt.Fprintf(errw, "Query %s\n", query.ID())
	}
	if err := query.RenderOutput(out, mode, interactive, filterExpr); err != nil {
		reportError(errw, err, debug)
	}
}

// reportError prints a single-line summary; the full detail only shows
// when the session has debug enabled.
func reportError(w io.Writer, err error, debug bool) {
	summary, rest, _ := strings.Cut(err.Error(), "\n")
	fmt.Fprintf(w, "Error running command: %s\n", summary)
	if debug && rest != "" {
		fmt.Fprintln(w, rest)
	}
}
