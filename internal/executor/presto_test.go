package executor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/HackShare/presto/internal/session"
	"github.com/HackShare/presto/internal/testutil"
)

// newTestCoordinator serves a fixed page sequence: the POST returns
// pages[0], each GET returns the next page.
func newTestCoordinator(t *testing.T, pages []map[string]any) *httptest.Server {
	t.Helper()
	var served atomic.Int32
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		n := int(served.Add(1)) - 1
		if n >= len(pages) {
			t.Errorf("unexpected request %d: %s %s", n, r.Method, r.URL)
			http.Error(w, "no more pages", http.StatusInternalServerError)
			return
		}
		page := pages[n]
		if n < len(pages)-1 {
			page["nextUri"] = fmt.Sprintf("%s/v1/statement/q/%d", srv.URL, n+1)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(page)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestExecutor(srv *httptest.Server, state session.State) *Executor {
	coord := newCoordinator(srv.URL, state)
	coord.poll = 0
	return &Executor{engine: "presto", state: state, coord: coord}
}

func TestPrestoQueryDrainsPages(t *testing.T) {
	t.Parallel()
	srv := newTestCoordinator(t, []map[string]any{
		{"id": "20260825_0001"},
		{
			"columns": []map[string]any{{"name": "id"}, {"name": "name"}},
			"data":    [][]any{{1, "Alice"}},
		},
		{
			"data": [][]any{{2, "Bob"}},
		},
	})

	exec := newTestExecutor(srv, session.New("hive", "default", false, nil))
	q, err := exec.StartQuery("select * from users")
	testutil.AssertNoError(t, err)
	defer func() { _ = q.Close() }()

	testutil.AssertEqual(t, q.ID(), "20260825_0001")

	var out bytes.Buffer
	testutil.AssertNoError(t, q.RenderOutput(&out, Aligned, true, ""))
	testutil.AssertContains(t, out.String(), "| id | name  |")
	testutil.AssertContains(t, out.String(), "Alice")
	testutil.AssertContains(t, out.String(), "Bob")
	testutil.AssertContains(t, out.String(), "(2 rows)")
}

func TestPrestoSessionHeaders(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		testutil.AssertEqual(t, r.Header.Get("X-Presto-User"), "alice")
		testutil.AssertEqual(t, r.Header.Get("X-Presto-Catalog"), "hive")
		testutil.AssertEqual(t, r.Header.Get("X-Presto-Schema"), "default")
		testutil.AssertEqual(t, r.Header.Get("X-Presto-Source"), "presto-cli")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"q1","columns":[{"name":"x"}],"data":[[1]]}`)
	}))
	t.Cleanup(srv.Close)

	state := session.New("hive", "default", false, map[string]string{
		"user":   "alice",
		"source": "presto-cli",
	})
	exec := newTestExecutor(srv, state)
	q, err := exec.StartQuery("select 1")
	testutil.AssertNoError(t, err)
	defer func() { _ = q.Close() }()

	var out bytes.Buffer
	testutil.AssertNoError(t, q.RenderOutput(&out, Aligned, true, ""))
	testutil.AssertContains(t, out.String(), "(1 row)")
}

func TestPrestoQueryError(t *testing.T) {
	t.Parallel()
	srv := newTestCoordinator(t, []map[string]any{
		{"id": "q2"},
		{
			"error": map[string]any{
				"message":   "line 1:8: Table nope does not exist",
				"errorName": "TABLE_NOT_FOUND",
			},
		},
	})

	exec := newTestExecutor(srv, session.New("", "", false, nil))
	q, err := exec.StartQuery("select * from nope")
	testutil.AssertNoError(t, err)
	defer func() { _ = q.Close() }()

	var out bytes.Buffer
	err = q.RenderOutput(&out, Aligned, true, "")
	testutil.AssertError(t, err)
	testutil.AssertContains(t, err.Error(), "TABLE_NOT_FOUND")
}

func TestPrestoSubmitRejected(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "queue full", http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	exec := newTestExecutor(srv, session.New("", "", false, nil))
	_, err := exec.StartQuery("select 1")
	testutil.AssertError(t, err)
	testutil.AssertContains(t, err.Error(), "503")
}

func TestPrestoCloseCancelsUndrainedQuery(t *testing.T) {
	t.Parallel()
	var deleted atomic.Bool
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			deleted.Store(true)
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"id":"q3","nextUri":"%s/v1/statement/q3/1"}`, srv.URL)
	}))
	t.Cleanup(srv.Close)

	exec := newTestExecutor(srv, session.New("", "", false, nil))
	q, err := exec.StartQuery("select * from huge")
	testutil.AssertNoError(t, err)

	testutil.AssertNoError(t, q.Close())
	if !deleted.Load() {
		t.Error("expected the undrained query to be cancelled with DELETE")
	}
	// Close is idempotent.
	testutil.AssertNoError(t, q.Close())
}

func TestPrestoSubmitErrorCancelsNextURI(t *testing.T) {
	t.Parallel()
	var deleted atomic.Bool
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			deleted.Store(true)
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"id":"q4","nextUri":"%s/v1/statement/q4/1","error":{"message":"planning failed","errorName":"PLANNER_ERROR"}}`, srv.URL)
	}))
	t.Cleanup(srv.Close)

	exec := newTestExecutor(srv, session.New("", "", false, nil))
	_, err := exec.StartQuery("select 1")
	testutil.AssertError(t, err)
	testutil.AssertContains(t, err.Error(), "PLANNER_ERROR")
	if !deleted.Load() {
		t.Error("expected the failed query's nextUri to be cancelled with DELETE")
	}
}

func TestPrestoDrainBacksOffOnRowlessPages(t *testing.T) {
	t.Parallel()
	srv := newTestCoordinator(t, []map[string]any{
		{"id": "q5", "columns": []map[string]any{{"name": "x"}}},
		{},
		{"data": [][]any{{1}}},
	})

	exec := newTestExecutor(srv, session.New("", "", false, nil))
	exec.coord.poll = 10 * time.Millisecond
	q, err := exec.StartQuery("select slow()")
	testutil.AssertNoError(t, err)
	defer func() { _ = q.Close() }()

	// Two rowless pages precede the data page, so drain must have slept
	// between fetches instead of re-polling in a tight loop.
	start := time.Now()
	var out bytes.Buffer
	testutil.AssertNoError(t, q.RenderOutput(&out, Aligned, true, ""))
	if elapsed := time.Since(start); elapsed < 10*time.Millisecond {
		t.Errorf("expected a poll backoff, drain finished in %v", elapsed)
	}
	testutil.AssertContains(t, out.String(), "(1 row)")
}

func TestFormatValue(t *testing.T) {
	t.Parallel()
	testutil.AssertEqual(t, formatValue(nil), "NULL")
	testutil.AssertEqual(t, formatValue("x"), "x")
	testutil.AssertEqual(t, formatValue(true), "true")
	testutil.AssertEqual(t, formatValue(float64(42)), "42")
	testutil.AssertEqual(t, formatValue(3.5), "3.5")
}
