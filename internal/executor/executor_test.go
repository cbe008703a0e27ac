package executor

import (
	"bytes"
	"testing"

	"github.com/HackShare/presto/internal/session"
	"github.com/HackShare/presto/internal/testutil"
)

func sqliteState(t *testing.T) session.State {
	t.Helper()
	return session.New("", "", false, map[string]string{
		"engine": "sqlite",
		"dsn":    ":memory:",
	})
}

func TestNewUnknownEngine(t *testing.T) {
	t.Parallel()
	_, err := New(session.New("", "", false, map[string]string{"engine": "oracle"}))
	testutil.AssertError(t, err)
}

func TestNewMissingDSN(t *testing.T) {
	t.Parallel()
	_, err := New(session.New("", "", false, map[string]string{"engine": "sqlite"}))
	testutil.AssertError(t, err)
}

func TestSQLiteQueryRoundTrip(t *testing.T) {
	t.Parallel()
	exec, err := New(sqliteState(t))
	testutil.AssertNoError(t, err)
	defer func() { _ = exec.Close() }()

	q, err := exec.StartQuery("select 1 as x, 'hello' as msg")
	testutil.AssertNoError(t, err)
	defer func() { _ = q.Close() }()

	if q.ID() == "" {
		t.Error("expected a locally generated query id")
	}

	var out bytes.Buffer
	testutil.AssertNoError(t, q.RenderOutput(&out, Aligned, true, ""))
	testutil.AssertContains(t, out.String(), "| x | msg   |")
	testutil.AssertContains(t, out.String(), "hello")
	testutil.AssertContains(t, out.String(), "(1 row)")
}

func TestSQLiteQueryFailure(t *testing.T) {
	t.Parallel()
	exec, err := New(sqliteState(t))
	testutil.AssertNoError(t, err)
	defer func() { _ = exec.Close() }()

	_, err = exec.StartQuery("select * from missing_table")
	testutil.AssertError(t, err)
}

func TestSQLiteVerticalWithFilter(t *testing.T) {
	t.Parallel()
	exec, err := New(sqliteState(t))
	testutil.AssertNoError(t, err)
	defer func() { _ = exec.Close() }()

	q, err := exec.StartQuery("select 1 as id union all select 2 union all select 3 order by id")
	testutil.AssertNoError(t, err)
	defer func() { _ = q.Close() }()

	var out bytes.Buffer
	testutil.AssertNoError(t, q.RenderOutput(&out, Vertical, true, "id >= 2"))
	testutil.AssertContains(t, out.String(), "1. row")
	testutil.AssertContains(t, out.String(), "2. row")
	testutil.AssertContains(t, out.String(), "id: 2")
	testutil.AssertContains(t, out.String(), "id: 3")
}

func TestQueryCloseIdempotent(t *testing.T) {
	t.Parallel()
	exec, err := New(sqliteState(t))
	testutil.AssertNoError(t, err)
	defer func() { _ = exec.Close() }()

	q, err := exec.StartQuery("select 1")
	testutil.AssertNoError(t, err)
	testutil.AssertNoError(t, q.Close())
	testutil.AssertNoError(t, q.Close())
}
