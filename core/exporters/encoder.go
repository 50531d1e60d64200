package exporters

import (
	"github.com/elliotchance/orderedmap/v3"
)

const (
	FormatCSV  = "csv"
	FormatSQL  = "sql"
	FormatXLSX = "xlsx"
)

// Row is one exported record: column name to value, iterating in column
// declaration order.
type Row = orderedmap.OrderedMap[string, any]

// Options holds encoder configuration.
type Options struct {
	Delimiter rune   // CSV field separator, ',' when zero
	NoHeader  bool   // skip the CSV header row
	TableName string // target table for SQL INSERT output
}

// Encoder serializes ordered row batches into one output grammar.
//
// Begin is called once with the ordered column list, EncodeBatch once per
// batch in row order, End once at stream end. Text formats emit output as
// they go; document formats (xlsx) may hold the workbook until End.
type Encoder interface {
	Begin(columns []string) error
	EncodeBatch(rows []*Row) error
	End() error
}
