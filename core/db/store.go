package db

import (
	"context"

	"github.com/elliotchance/orderedmap/v3"
)

// Consistency levels accepted by the remote store's read endpoint.
const (
	ConsistencyNone         = "none"
	ConsistencyWeak         = "weak"
	ConsistencyLinearizable = "linearizable"
	ConsistencyStrong       = "strong"
)

// Statement is a SQL template plus its bound values. User data always
// travels through Args, never inlined into SQL.
type Statement struct {
	SQL  string
	Args []any
}

// Column describes one table column in declaration order.
type Column struct {
	Name       string
	Type       string
	PrimaryKey bool
}

// ResultSet holds the rows of one read statement. Rows keep the positional
// array shape so column order is preserved end to end.
type ResultSet struct {
	Columns []string
	Types   []string
	Rows    [][]any
}

// ExecResult is the per-statement outcome of a batched write.
type ExecResult struct {
	RowsAffected int64
	LastInsertID int64
}

// AssocRows converts the positional rows to column-keyed mappings that still
// iterate in column order.
func (rs *ResultSet) AssocRows() []*orderedmap.OrderedMap[string, any] {
	out := make([]*orderedmap.OrderedMap[string, any], 0, len(rs.Rows))
	for _, row := range rs.Rows {
		m := orderedmap.NewOrderedMap[string, any]()
		for i, col := range rs.Columns {
			var v any
			if i < len(row) {
				v = row[i]
			}
			m.Set(col, v)
		}
		out = append(out, m)
	}
	return out
}

// Store defines the remote store operations consumed by rqport. Any store
// exposing this surface is interchangeable.
type Store interface {
	Connect() error
	Close() error
	Ping(ctx context.Context) error
	Query(ctx context.Context, stmt Statement, level string) (*ResultSet, error)
	QueryPage(ctx context.Context, table string, page, pageSize int, level string) (*ResultSet, error)
	Execute(ctx context.Context, stmts []Statement, transaction bool) ([]ExecResult, error)
	Schema(ctx context.Context, table string) ([]Column, error)
	Tables(ctx context.Context) ([]string, error)
	Count(ctx context.Context, table string) (int64, error)
}
