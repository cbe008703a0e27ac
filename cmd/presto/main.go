// Interactive console for submitting statements to a query backend.
//
// Usage:
//
//	presto [--server URL] [--catalog NAME] [--schema NAME]   interactive
//	presto --execute "select ...; select ...;"               run and exit
//	presto --file queries.sql                                run and exit
//
// The default backend is a Presto coordinator; --engine selects a local
// database/sql backend (postgres, mysql, sqlite) reached via --dsn.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/user"
	"path/filepath"

	"github.com/ergochat/readline"

	"github.com/HackShare/presto/internal/executor"
	"github.com/HackShare/presto/internal/session"
)

type clientOptions struct {
	server       string
	catalog      string
	schema       string
	user         string
	engine       string
	dsn          string
	execute      string
	file         string
	outputFormat string
	debug        bool
}

func main() {
	opts := parseFlags()
	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "presto: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags() *clientOptions {
	opts := &clientOptions{}
	flag.StringVar(&opts.server, "server", "http://localhost:8080", "Presto coordinator URL")
	flag.StringVar(&opts.catalog, "catalog", "", "default catalog")
	flag.StringVar(&opts.schema, "schema", "", "default schema")
	flag.StringVar(&opts.user, "user", "", "user name sent to the backend (default: current OS user)")
	flag.StringVar(&opts.engine, "engine", "presto", "backend engine (presto, postgres, mysql, sqlite)")
	flag.StringVar(&opts.dsn, "dsn", "", "DSN for database/sql engines")
	flag.StringVar(&opts.execute, "execute", "", "execute the given statements and exit")
	flag.StringVar(&opts.file, "file", "", "execute statements from the given file and exit")
	flag.StringVar(&opts.outputFormat, "output-format", "aligned", "batch output format (aligned, vertical)")
	flag.BoolVar(&opts.debug, "debug", false, "print full error detail")
	flag.Parse()
	return opts
}

func run(opts *clientOptions) error {
	// Conflicting startup modes are fatal before anything executes.
	if opts.execute != "" && opts.file != "" {
		return fmt.Errorf("both --execute and --file specified")
	}
	mode, err := parseOutputFormat(opts.outputFormat)
	if err != nil {
		return err
	}

	state := opts.toSessionState()
	exec, err := executor.New(state)
	if err != nil {
		return err
	}
	defer func() { _ = exec.Close() }()

	query := opts.execute
	if opts.file != "" {
		data, err := os.ReadFile(opts.file)
		if err != nil {
			return fmt.Errorf("error reading from file %s: %w", opts.file, err)
		}
		query = string(data)
	}
	if query != "" {
		runBatch(boundExecutor{exec}, query, mode, "", os.Stdout, os.Stderr, state.Debug)
		return nil
	}

	return runConsole(state, exec)
}

func runConsole(state session.State, exec *executor.Executor) error {
	rl, err := readline.NewFromConfig(&readline.Config{
		Prompt:                 promptName + "> ",
		HistoryFile:            historyFile(),
		HistoryLimit:           500,
		DisableAutoSaveHistory: true,
		AutoComplete:           consoleCompleter{},
		InterruptPrompt:        "^C",
		EOFPrompt:              "exit",
	})
	if err != nil {
		return fmt.Errorf("readline init: %w", err)
	}
	defer func() { _ = rl.Close() }()

	fmt.Printf("Connected to %s (type 'help' for help, 'exit' to quit)\n", state)

	console := &Console{
		lines: &readlineSource{rl: rl},
		exec:  boundExecutor{exec},
		bind: func(next session.State) (Executor, error) {
			e, err := executor.New(next)
			if err != nil {
				return nil, err
			}
			return boundExecutor{e}, nil
		},
		state: state,
		out:   os.Stdout,
		errw:  os.Stderr,
	}
	return console.Run()
}

// boundExecutor adapts the concrete executor to the console's interface.
type boundExecutor struct {
	exec *executor.Executor
}

func (b boundExecutor) StartQuery(text string) (QueryHandle, error) {
	q, err := b.exec.StartQuery(text)
	if err != nil {
		return nil, err
	}
	return q, nil
}

func (b boundExecutor) Close() error {
	return b.exec.Close()
}

func parseOutputFormat(format string) (executor.OutputMode, error) {
	switch format {
	case "aligned":
		return executor.Aligned, nil
	case "vertical":
		return executor.Vertical, nil
	}
	return 0, fmt.Errorf("unknown output format %q (want aligned or vertical)", format)
}

func (o *clientOptions) toSessionState() session.State {
	props := map[string]string{
		"server": o.server,
		"engine": o.engine,
		"source": "presto-console",
	}
	if o.dsn != "" {
		props["dsn"] = o.dsn
	}
	userName := o.user
	if userName == "" {
		if u, err := user.Current(); err == nil && u.Username != "" {
			userName = u.Username
		}
	}
	if userName != "" {
		props["user"] = userName
	}
	return session.New(o.catalog, o.schema, o.debug, props)
}

// historyFile returns the persisted history path, or "" (memory-only
// history) with a one-time warning when the file is unusable.
func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: no home directory (%v); history will not be persisted this session\n", err)
		return ""
	}
	path := filepath.Join(home, ".presto_history")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: failed to open history file %s: %v; history will not be persisted this session\n", path, err)
		return ""
	}
	_ = f.Close()
	return path
}
