package exporters

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/qvx-labs/rqport/core/formatters"
)

// sqlEncoder writes one INSERT statement per row, preceded by a header
// comment block naming the table and the generation timestamp.
type sqlEncoder struct {
	w       io.Writer
	table   string
	columns []string
	colList string
	now     func() time.Time
}

func newSQLEncoder(w io.Writer, options Options) (Encoder, error) {
	if strings.TrimSpace(options.TableName) == "" {
		return nil, fmt.Errorf("SQL export requires a table name")
	}
	return &sqlEncoder{w: w, table: options.TableName, now: time.Now}, nil
}

func (e *sqlEncoder) Begin(columns []string) error {
	e.columns = columns

	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = formatters.QuoteIdent(c)
	}
	e.colList = strings.Join(quoted, ", ")

	header := fmt.Sprintf("-- Export of table %s\n-- Generated: %s\n\n",
		formatters.QuoteIdent(e.table), e.now().UTC().Format(time.RFC3339))
	_, err := io.WriteString(e.w, header)
	return err
}

func (e *sqlEncoder) EncodeBatch(rows []*Row) error {
	var stmt strings.Builder
	values := make([]string, len(e.columns))

	for _, row := range rows {
		for i, col := range e.columns {
			v, _ := row.Get(col)
			values[i] = formatters.FormatSQLValue(v)
		}
		stmt.WriteString(fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s);\n",
			formatters.QuoteIdent(e.table), e.colList, strings.Join(values, ", ")))
	}

	_, err := io.WriteString(e.w, stmt.String())
	return err
}

func (e *sqlEncoder) End() error {
	return nil
}

func init() {
	MustRegister(FormatSQL, newSQLEncoder)
}
