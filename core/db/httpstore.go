package db

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/qvx-labs/rqport/core/formatters"
	"github.com/qvx-labs/rqport/internal/logger"
)

const (
	// Per-call budget for reads and writes. A timeout surfaces as an error
	// and is never retried here.
	callTimeout = 30 * time.Second
	// Liveness probes and ad hoc console queries use the short budget.
	probeTimeout = 5 * time.Second
)

// HTTPStore talks to a remote store exposing rqlite-style /db/query and
// /db/execute endpoints.
type HTTPStore struct {
	baseURL string
	client  *http.Client
}

// NewHTTPStore creates a store client for the given base URL
// (e.g. http://localhost:4001).
func NewHTTPStore(baseURL string) *HTTPStore {
	return &HTTPStore{baseURL: strings.TrimRight(baseURL, "/")}
}

// Connect prepares the HTTP client and verifies the store is reachable.
func (s *HTTPStore) Connect() error {
	if s.client != nil {
		return nil // already connected
	}

	s.client = &http.Client{Timeout: callTimeout}

	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	logger.Debug("Probing store at %s", sanitizeURL(s.baseURL))
	if err := s.Ping(ctx); err != nil {
		s.client = nil
		return fmt.Errorf("unable to reach store: %w", err)
	}
	logger.Debug("Store liveness probe successful")
	return nil
}

// Close releases idle connections. The store itself is stateless per call.
func (s *HTTPStore) Close() error {
	if s.client != nil {
		s.client.CloseIdleConnections()
		s.client = nil
	}
	return nil
}

// Ping issues the cheap liveness call used to validate a connection.
func (s *HTTPStore) Ping(ctx context.Context) error {
	if s.client == nil {
		s.client = &http.Client{Timeout: callTimeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/status", nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("store status endpoint returned HTTP %d", resp.StatusCode)
	}
	return nil
}

type queryResult struct {
	Error   string   `json:"error,omitempty"`
	Columns []string `json:"columns"`
	Types   []string `json:"types"`
	Values  [][]any  `json:"values"`
}

type queryResponse struct {
	Results []queryResult `json:"results"`
}

type execResult struct {
	Error        string `json:"error,omitempty"`
	RowsAffected int64  `json:"rows_affected"`
	LastInsertID int64  `json:"last_insert_id"`
}

type execResponse struct {
	Results []execResult `json:"results"`
}

// Query runs a single read statement at the requested consistency level.
func (s *HTTPStore) Query(ctx context.Context, stmt Statement, level string) (*ResultSet, error) {
	if s.client == nil {
		return nil, fmt.Errorf("store not connected")
	}

	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	q := url.Values{}
	q.Set("level", normalizeLevel(level))

	logger.Debug("Executing read query (level=%s): %s", normalizeLevel(level), stmt.SQL)
	start := time.Now()

	body, err := s.post(ctx, "/db/query?"+q.Encode(), []Statement{stmt})
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var qr queryResponse
	dec := json.NewDecoder(body)
	dec.UseNumber()
	if err := dec.Decode(&qr); err != nil {
		return nil, fmt.Errorf("malformed query response: %w", err)
	}

	if len(qr.Results) == 0 {
		return nil, fmt.Errorf("query response contained no results")
	}

	res := qr.Results[0]
	// Transport success does not imply statement success.
	if res.Error != "" {
		return nil, &StoreError{Index: 0, Message: res.Error}
	}

	logger.Debug("Query executed successfully in %v (%d rows)", time.Since(start), len(res.Values))

	return &ResultSet{
		Columns: res.Columns,
		Types:   res.Types,
		Rows:    res.Values,
	}, nil
}

// QueryPage reads one page of a table. Pages are 1-based.
func (s *HTTPStore) QueryPage(ctx context.Context, table string, page, pageSize int, level string) (*ResultSet, error) {
	if page < 1 {
		return nil, fmt.Errorf("page numbers are 1-based, got %d", page)
	}
	if pageSize < 1 {
		return nil, fmt.Errorf("page size must be positive, got %d", pageSize)
	}
	offset := (page - 1) * pageSize
	sql := fmt.Sprintf("SELECT * FROM %s LIMIT %d OFFSET %d",
		formatters.QuoteIdent(table), pageSize, offset)
	return s.Query(ctx, Statement{SQL: sql}, level)
}

// Execute submits an ordered list of parameterized statements as one batched
// write call. With transaction enabled the store applies them atomically.
func (s *HTTPStore) Execute(ctx context.Context, stmts []Statement, transaction bool) ([]ExecResult, error) {
	if s.client == nil {
		return nil, fmt.Errorf("store not connected")
	}
	if len(stmts) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	path := "/db/execute"
	if transaction {
		path += "?transaction"
	}

	logger.Debug("Executing batched write (%d statements, transaction=%v)", len(stmts), transaction)
	start := time.Now()

	body, err := s.post(ctx, path, stmts)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var er execResponse
	dec := json.NewDecoder(body)
	dec.UseNumber()
	if err := dec.Decode(&er); err != nil {
		return nil, fmt.Errorf("malformed execute response: %w", err)
	}

	out := make([]ExecResult, 0, len(er.Results))
	for i, res := range er.Results {
		if res.Error != "" {
			return nil, &StoreError{Index: i, Message: res.Error}
		}
		out = append(out, ExecResult{
			RowsAffected: res.RowsAffected,
			LastInsertID: res.LastInsertID,
		})
	}

	logger.Debug("Batched write completed in %v", time.Since(start))
	return out, nil
}

// Schema returns the table's columns in declaration order.
func (s *HTTPStore) Schema(ctx context.Context, table string) ([]Column, error) {
	rs, err := s.Query(ctx, Statement{
		SQL: fmt.Sprintf("PRAGMA table_info(%s)", formatters.QuoteIdent(table)),
	}, ConsistencyWeak)
	if err != nil {
		return nil, err
	}

	// table_info rows: cid, name, type, notnull, dflt_value, pk
	nameIdx, typeIdx, pkIdx := indexOf(rs.Columns, "name"), indexOf(rs.Columns, "type"), indexOf(rs.Columns, "pk")
	if nameIdx < 0 {
		return nil, fmt.Errorf("unexpected table_info shape for %q: %v", table, rs.Columns)
	}

	cols := make([]Column, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		col := Column{Name: fmt.Sprintf("%v", row[nameIdx])}
		if typeIdx >= 0 && typeIdx < len(row) {
			col.Type = fmt.Sprintf("%v", row[typeIdx])
		}
		if pkIdx >= 0 && pkIdx < len(row) {
			col.PrimaryKey = toInt64(row[pkIdx]) > 0
		}
		cols = append(cols, col)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("table %q does not exist or has no columns", table)
	}
	return cols, nil
}

// Tables lists user tables by name.
func (s *HTTPStore) Tables(ctx context.Context) ([]string, error) {
	rs, err := s.Query(ctx, Statement{
		SQL: "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name",
	}, ConsistencyWeak)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		if len(row) > 0 {
			names = append(names, fmt.Sprintf("%v", row[0]))
		}
	}
	return names, nil
}

// Count returns the table's total row count.
func (s *HTTPStore) Count(ctx context.Context, table string) (int64, error) {
	rs, err := s.Query(ctx, Statement{
		SQL: fmt.Sprintf("SELECT COUNT(*) FROM %s", formatters.QuoteIdent(table)),
	}, ConsistencyWeak)
	if err != nil {
		return 0, err
	}
	if len(rs.Rows) == 0 || len(rs.Rows[0]) == 0 {
		return 0, fmt.Errorf("count query for %q returned no value", table)
	}
	return toInt64(rs.Rows[0][0]), nil
}

// post encodes statements as the wire-level array-of-arrays shape
// ([["sql", arg, ...], ...]) and returns the response body on HTTP success.
func (s *HTTPStore) post(ctx context.Context, path string, stmts []Statement) (io.ReadCloser, error) {
	payload := make([][]any, 0, len(stmts))
	for _, st := range stmts {
		entry := make([]any, 0, len(st.Args)+1)
		entry = append(entry, st.SQL)
		entry = append(entry, st.Args...)
		payload = append(payload, entry)
	}

	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("unable to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("store returned HTTP %d for %s", resp.StatusCode, path)
	}
	return resp.Body, nil
}

func normalizeLevel(level string) string {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case ConsistencyNone:
		return ConsistencyNone
	case ConsistencyLinearizable:
		return ConsistencyLinearizable
	case ConsistencyStrong:
		return ConsistencyStrong
	default:
		return ConsistencyWeak
	}
}

func indexOf(cols []string, name string) int {
	for i, c := range cols {
		if c == name {
			return i
		}
	}
	return -1
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			f, _ := n.Float64()
			return int64(f)
		}
		return i
	case int64:
		return n
	case float64:
		return int64(n)
	default:
		return 0
	}
}

// sanitizeURL masks basic-auth credentials before logging.
func sanitizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<invalid-url>"
	}
	if u.User != nil {
		u.User = url.User(u.User.Username())
	}
	return u.String()
}
