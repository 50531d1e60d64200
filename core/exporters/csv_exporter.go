package exporters

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/qvx-labs/rqport/core/formatters"
	"github.com/qvx-labs/rqport/internal/logger"
)

// csvEncoder writes RFC-4180-flavored output. Values containing the
// separator, a quote or a newline are quoted with internal quotes doubled
// by the csv writer; nil values render as empty fields.
type csvEncoder struct {
	w        *csv.Writer
	columns  []string
	noHeader bool
}

func newCSVEncoder(w io.Writer, options Options) (Encoder, error) {
	delim := options.Delimiter
	if delim == 0 {
		delim = ','
	}
	cw := csv.NewWriter(w)
	cw.Comma = delim
	return &csvEncoder{w: cw, noHeader: options.NoHeader}, nil
}

func (e *csvEncoder) Begin(columns []string) error {
	e.columns = columns
	if e.noHeader {
		return nil
	}
	if err := e.w.Write(columns); err != nil {
		return fmt.Errorf("error writing headers: %w", err)
	}
	logger.Debug("CSV headers written (%d columns)", len(columns))
	return nil
}

func (e *csvEncoder) EncodeBatch(rows []*Row) error {
	record := make([]string, len(e.columns))
	for _, row := range rows {
		for i, col := range e.columns {
			v, _ := row.Get(col)
			record[i] = formatters.FormatCSVValue(v)
		}
		if err := e.w.Write(record); err != nil {
			return fmt.Errorf("error writing row: %w", err)
		}
	}
	e.w.Flush()
	return e.w.Error()
}

func (e *csvEncoder) End() error {
	e.w.Flush()
	if err := e.w.Error(); err != nil {
		return fmt.Errorf("error flushing CSV: %w", err)
	}
	return nil
}

func init() {
	MustRegister(FormatCSV, newCSVEncoder)
}
