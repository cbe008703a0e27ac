package executor

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/HackShare/presto/internal/session"
)

// coordinator speaks the Presto REST protocol to a remote server: POST the
// statement to /v1/statement, then follow nextUri pages until the result
// set is drained or the query fails.
type coordinator struct {
	baseURL string
	state   session.State
	client  *http.Client
	poll    time.Duration // wait before re-fetching a page with no data yet
}

func newCoordinator(baseURL string, state session.State) *coordinator {
	return &coordinator{
		baseURL: strings.TrimRight(baseURL, "/"),
		state:   state,
		client:  &http.Client{Timeout: 30 * time.Second},
		poll:    50 * time.Millisecond,
	}
}

// queryResults is one page of the coordinator's response.
type queryResults struct {
	ID      string         `json:"id"`
	NextURI string         `json:"nextUri"`
	Columns []resultColumn `json:"columns"`
	Data    [][]any        `json:"data"`
	Error   *queryError    `json:"error"`
}

type resultColumn struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// queryError is the coordinator's failure report for one statement.
type queryError struct {
	Message   string `json:"message"`
	ErrorCode int    `json:"errorCode"`
	ErrorName string `json:"errorName"`
}

func (e *queryError) Error() string {
	if e.ErrorName != "" {
		return fmt.Sprintf("%s: %s", e.ErrorName, e.Message)
	}
	return e.Message
}

// submit starts a statement on the coordinator and returns its paged
// result stream.
func (c *coordinator) submit(statement string) (*prestoQuery, error) {
	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/v1/statement", strings.NewReader(statement))
	if err != nil {
		return nil, fmt.Errorf("submit: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain")
	c.setSessionHeaders(req)

	qr, err := c.do(req)
	if err != nil {
		return nil, err
	}
	pq := &prestoQuery{coord: c, id: qr.ID}
	pq.absorb(qr)
	if qr.Error != nil {
		// A failed first page can still carry a nextUri; release it.
		_ = pq.cancel()
		return nil, qr.Error
	}
	return pq, nil
}

// setSessionHeaders translates the session state into coordinator headers.
func (c *coordinator) setSessionHeaders(req *http.Request) {
	user := c.state.Property("user")
	if user == "" {
		user = "presto"
	}
	req.Header.Set("X-Presto-User", user)
	if c.state.Catalog != "" {
		req.Header.Set("X-Presto-Catalog", c.state.Catalog)
	}
	if c.state.Schema != "" {
		req.Header.Set("X-Presto-Schema", c.state.Schema)
	}
	if source := c.state.Property("source"); source != "" {
		req.Header.Set("X-Presto-Source", source)
	}
}

func (c *coordinator) do(req *http.Request) (*queryResults, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("coordinator returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var qr queryResults
	if err := json.Unmarshal(body, &qr); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &qr, nil
}

func (c *coordinator) fetchPage(uri string) (*queryResults, error) {
	req, err := http.NewRequest(http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	return c.do(req)
}

// prestoQuery accumulates result pages for one statement.
type prestoQuery struct {
	coord   *coordinator
	id      string
	next    string
	columns []string
	data    [][]string
}

// absorb folds one response page into the accumulated result.
func (p *prestoQuery) absorb(qr *queryResults) {
	if p.columns == nil {
		for _, col := range qr.Columns {
			p.columns = append(p.columns, col.Name)
		}
	}
	for _, row := range qr.Data {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = formatValue(v)
		}
		p.data = append(p.data, cells)
	}
	p.next = qr.NextURI
}

// drain follows nextUri pages until the query completes, fails, or the row
// bound is reached.
func (p *prestoQuery) drain() (columns []string, data [][]string, truncated bool, err error) {
	for p.next != "" && len(p.data) <= maxRows {
		before := len(p.data)
		qr, err := p.coord.fetchPage(p.next)
		if err != nil {
			return nil, nil, false, err
		}
		p.absorb(qr)
		if qr.Error != nil {
			return nil, nil, false, qr.Error
		}
		// A page with no rows means the query is still queued, planning, or
		// between splits; back off briefly before polling again.
		if len(p.data) == before && p.next != "" {
			time.Sleep(p.coord.poll)
		}
	}
	if len(p.data) > maxRows {
		p.data = p.data[:maxRows]
		truncated = true
	}
	if p.next != "" {
		// Rows beyond the bound are abandoned; tell the coordinator.
		_ = p.cancel()
	}
	return p.columns, p.data, truncated, nil
}

// cancel abandons an undrained query by deleting its nextUri.
func (p *prestoQuery) cancel() error {
	if p.next == "" {
		return nil
	}
	req, err := http.NewRequest(http.MethodDelete, p.next, nil)
	if err != nil {
		return err
	}
	p.next = ""
	resp, err := p.coord.client.Do(req)
	if err != nil {
		return err
	}
	return resp.Body.Close()
}

// formatValue renders one JSON result cell the way the aligned and
// vertical renderers expect.
func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case string:
		return val
	case bool:
		if val {
			return "true"
		}
		return "false"
	case float64:
		return formatNumber(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// formatNumber keeps integral values free of a trailing ".0"; JSON gives
// every number back as float64.
func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%v", f)
}
