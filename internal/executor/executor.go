// Package executor runs statements against a query backend and renders
// their results. A backend is either a Presto coordinator reached over its
// REST API or a local database/sql engine; both hand back scoped query
// handles that must be closed on every path.
package executor

import (
	"database/sql"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/google/uuid"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/HackShare/presto/internal/session"
)

// OutputMode selects how a result set is rendered.
type OutputMode int

const (
	// Aligned renders a bordered table.
	Aligned OutputMode = iota
	// Vertical renders one column per line, mysql \G style.
	Vertical
)

var driverName = map[string]string{
	"postgres": "pgx",
	"mysql":    "mysql",
	"sqlite":   "sqlite",
}

// maxRows bounds how many rows a single statement renders.
const maxRows = 1000

// Executor is one binding of a session to a query backend. Rebinding after
// a session change means creating a new Executor; the old one is closed by
// the caller.
type Executor struct {
	engine string
	state  session.State
	db     *sql.DB      // database/sql engines
	coord  *coordinator // presto engine
}

// New binds a session to its backend. The engine comes from the session's
// "engine" property; the default is a Presto coordinator at the "server"
// property.
func New(state session.State) (*Executor, error) {
	engine := state.Property("engine")
	if engine == "" || engine == "presto" {
		server := state.Property("server")
		if server == "" {
			server = "http://localhost:8080"
		}
		return &Executor{engine: "presto", state: state, coord: newCoordinator(server, state)}, nil
	}

	driver, ok := driverName[engine]
	if !ok {
		return nil, fmt.Errorf("no driver for engine %q", engine)
	}
	dsn := state.Property("dsn")
	if dsn == "" {
		return nil, fmt.Errorf("engine %q requires a dsn", engine)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", sanitizeDSN(dsn), err)
	}
	return &Executor{engine: engine, state: state, db: db}, nil
}

// Session returns the state this executor was bound with.
func (e *Executor) Session() session.State {
	return e.state
}

// Close releases the backend connection.
func (e *Executor) Close() error {
	if e.db != nil {
		return e.db.Close()
	}
	return nil
}

// StartQuery begins executing one statement and returns its scoped handle.
// The caller must close the handle on success, error, and cancellation
// paths alike.
func (e *Executor) StartQuery(text string) (*Query, error) {
	if e.coord != nil {
		pq, err := e.coord.submit(text)
		if err != nil {
			return nil, err
		}
		return &Query{id: pq.id, presto: pq}, nil
	}
	rows, err := e.db.Query(text)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return &Query{id: uuid.NewString(), rows: rows}, nil
}

// Query is the scoped handle for one in-flight statement.
type Query struct {
	id     string
	rows   *sql.Rows
	presto *prestoQuery
	closed bool
}

// ID returns the query identifier: coordinator-assigned for presto,
// locally generated otherwise.
func (q *Query) ID() string {
	return q.id
}

// Close releases the handle. Idempotent; closing an undrained presto query
// cancels it on the coordinator.
func (q *Query) Close() error {
	if q.closed {
		return nil
	}
	q.closed = true
	if q.rows != nil {
		return q.rows.Close()
	}
	if q.presto != nil {
		return q.presto.cancel()
	}
	return nil
}

// RenderOutput drains the result set and writes it to w in the requested
// mode, applying filterExpr client-side when non-empty. The interactive
// flag controls the row-count footer.
func (q *Query) RenderOutput(w io.Writer, mode OutputMode, interactive bool, filterExpr string) error {
	columns, data, truncated, err := q.fetch()
	if err != nil {
		return err
	}
	if filterExpr != "" {
		data, err = applyFilter(columns, data, filterExpr)
		if err != nil {
			return err
		}
	}

	var out string
	if mode == Vertical {
		out = formatVertical(columns, data)
	} else {
		out = formatAligned(columns, data, interactive)
	}
	if _, err := io.WriteString(w, out); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if truncated {
		fmt.Fprintf(w, "(truncated at %d rows)\n", maxRows)
	}
	return nil
}

// fetch drains up to maxRows rows into string form.
func (q *Query) fetch() (columns []string, data [][]string, truncated bool, err error) {
	if q.presto != nil {
		return q.presto.drain()
	}

	columns, err = q.rows.Columns()
	if err != nil {
		return nil, nil, false, fmt.Errorf("columns: %w", err)
	}
	for q.rows.Next() {
		if len(data) >= maxRows {
			truncated = true
			break
		}
		vals := make([]*sql.NullString, len(columns))
		ptrs := make([]any, len(columns))
		for i := range vals {
			vals[i] = &sql.NullString{}
			ptrs[i] = vals[i]
		}
		if err := q.rows.Scan(ptrs...); err != nil {
			return nil, nil, false, fmt.Errorf("scan: %w", err)
		}
		row := make([]string, len(columns))
		for i, v := range vals {
			if v.Valid {
				row[i] = v.String
			} else {
				row[i] = "NULL"
			}
		}
		data = append(data, row)
	}
	if err := q.rows.Err(); err != nil {
		return nil, nil, false, fmt.Errorf("rows: %w", err)
	}
	return columns, data, truncated, nil
}

// sanitizeDSN masks the password in a DSN before it is echoed anywhere.
func sanitizeDSN(dsn string) string {
	// URL style (postgres).
	u, err := url.Parse(dsn)
	if err == nil && u.Scheme != "" && u.User != nil {
		if _, hasPass := u.User.Password(); hasPass {
			// Rebuild manually to avoid percent-encoding the mask.
			masked := u.Scheme + "://" + u.User.Username() + ":****@" + u.Host + u.Path
			if u.RawQuery != "" {
				masked += "?" + u.RawQuery
			}
			return masked
		}
		return dsn
	}

	// MySQL style: user:pass@tcp(host)/db
	if atIdx := strings.Index(dsn, "@"); atIdx > 0 {
		userPass := dsn[:atIdx]
		if colonIdx := strings.Index(userPass, ":"); colonIdx >= 0 {
			return userPass[:colonIdx+1] + "****" + dsn[atIdx:]
		}
	}

	return dsn
}
