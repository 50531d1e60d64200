package exporters

import (
	"fmt"
	"io"

	"github.com/qvx-labs/rqport/core/formatters"
	"github.com/qvx-labs/rqport/internal/logger"
	"github.com/xuri/excelize/v2"
)

// Maximum rows in one XLSX sheet; a new sheet is started past this.
const xlsxMaxRows = 1_048_576

// xlsxEncoder streams rows into an Excel workbook and serializes the whole
// document to the output writer at End.
type xlsxEncoder struct {
	out        io.Writer
	f          *excelize.File
	sw         *excelize.StreamWriter
	columns    []string
	noHeader   bool
	headerID   int
	currentRow int
	sheetIndex int
}

func newXLSXEncoder(w io.Writer, options Options) (Encoder, error) {
	return &xlsxEncoder{out: w, noHeader: options.NoHeader}, nil
}

func (e *xlsxEncoder) Begin(columns []string) error {
	e.columns = columns
	e.f = excelize.NewFile()

	if !e.noHeader {
		styleID, err := e.f.NewStyle(&excelize.Style{
			Font: &excelize.Font{Bold: true, Color: "000000"},
		})
		if err != nil {
			logger.Warn("Failed to create header style: %v", err)
		} else {
			e.headerID = styleID
		}
	}

	e.sheetIndex = 1
	return e.initSheet()
}

func (e *xlsxEncoder) EncodeBatch(rows []*Row) error {
	cells := make([]any, len(e.columns))
	for _, row := range rows {
		if e.currentRow > xlsxMaxRows {
			if err := e.sw.Flush(); err != nil {
				return fmt.Errorf("error flushing sheet %d: %w", e.sheetIndex, err)
			}
			e.sheetIndex++
			logger.Debug("Created new sheet Sheet%d (row limit reached)", e.sheetIndex)
			if err := e.initSheet(); err != nil {
				return err
			}
		}

		for i, col := range e.columns {
			v, _ := row.Get(col)
			cells[i] = formatters.FormatXLSXValue(v)
		}

		cell, _ := excelize.CoordinatesToCellName(1, e.currentRow)
		if err := e.sw.SetRow(cell, cells); err != nil {
			return fmt.Errorf("error writing row %d: %w", e.currentRow, err)
		}
		e.currentRow++
	}
	return nil
}

func (e *xlsxEncoder) End() error {
	defer func() {
		if err := e.f.Close(); err != nil {
			logger.Warn("Error closing Excel file: %v", err)
		}
	}()

	if err := e.sw.Flush(); err != nil {
		return fmt.Errorf("error flushing stream: %w", err)
	}
	if err := e.f.Write(e.out); err != nil {
		return fmt.Errorf("error writing Excel file: %w", err)
	}
	return nil
}

func (e *xlsxEncoder) initSheet() error {
	sheetName := fmt.Sprintf("Sheet%d", e.sheetIndex)
	e.currentRow = 1

	if e.sheetIndex > 1 {
		if _, err := e.f.NewSheet(sheetName); err != nil {
			return fmt.Errorf("failed to create new sheet: %w", err)
		}
	}

	sw, err := e.f.NewStreamWriter(sheetName)
	if err != nil {
		return fmt.Errorf("error creating stream writer: %w", err)
	}
	e.sw = sw

	if !e.noHeader {
		headerCells := make([]any, len(e.columns))
		for i, col := range e.columns {
			headerCells[i] = excelize.Cell{Value: col, StyleID: e.headerID}
		}
		cell, _ := excelize.CoordinatesToCellName(1, e.currentRow)
		if err := e.sw.SetRow(cell, headerCells); err != nil {
			return fmt.Errorf("error writing headers: %w", err)
		}
		e.currentRow++
	}
	return nil
}

func init() {
	MustRegister(FormatXLSX, newXLSXEncoder)
}
