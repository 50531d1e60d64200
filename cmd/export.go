package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/qvx-labs/rqport/core/exporters"
	"github.com/qvx-labs/rqport/core/output"
	"github.com/qvx-labs/rqport/core/pipeline"
	"github.com/qvx-labs/rqport/core/validation"
	"github.com/qvx-labs/rqport/internal/logger"
	"github.com/qvx-labs/rqport/internal/ui"
)

var (
	exportTable       string
	exportOutput      string
	exportFormat      string
	exportCompression string
	exportDelimiter   string
	exportNoHeader    bool
	exportPageSize    int
	exportConcurrency int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a table to CSV, SQL or XLSX",
	Long: `Export reads a table page by page with a bounded number of concurrent
requests and writes the rows, in order, to the chosen format. Output can be
compressed or sent to stdout with -o -.`,
	Example: `  # Table to CSV
  rqport export -t users -o users.csv

  # Re-loadable INSERT statements, zstd-compressed
  rqport export -t users -o users.sql -f sql -z zstd

  # Spreadsheet
  rqport export -t sales -o sales.xlsx -f xlsx

  # Pipe CSV to another tool
  rqport export -t users -o - | head`,
	RunE: runExportCmd,
}

func init() {
	exportCmd.Flags().SortFlags = false
	exportCmd.Flags().StringVarP(&exportTable, "table", "t", "", "Table to export (required)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file path, or - for stdout (required)")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "csv", "Output format (csv, sql, xlsx)")
	exportCmd.Flags().StringVarP(&exportCompression, "compression", "z", "none", "Compression (none, gzip, zip, zstd, lz4)")
	exportCmd.Flags().StringVarP(&exportDelimiter, "delimiter", "D", ",", "CSV field delimiter")
	exportCmd.Flags().BoolVarP(&exportNoHeader, "no-header", "n", false, "Skip the CSV header row")
	exportCmd.Flags().IntVar(&exportPageSize, "page-size", 0, "Rows per page request (default 5000)")
	exportCmd.Flags().IntVar(&exportConcurrency, "concurrency", 0, "Concurrent page requests (default 3)")

	for _, f := range []string{"table", "output"} {
		if err := exportCmd.MarkFlagRequired(f); err != nil {
			logger.Error(err.Error())
			os.Exit(1)
		}
	}

	rootCmd.AddCommand(exportCmd)
}

func runExportCmd(cmd *cobra.Command, args []string) error {
	if err := validation.ValidateTableName(exportTable); err != nil {
		return err
	}

	format := strings.ToLower(strings.TrimSpace(exportFormat))
	delim, err := parseDelimiter(exportDelimiter)
	if err != nil {
		return fmt.Errorf("invalid delimiter: %w", err)
	}

	store, cfg, err := connectStore()
	if err != nil {
		return err
	}
	defer store.Close()

	job, err := pipeline.StartExport(context.Background(), store, exportTable, format, pipeline.ExportOptions{
		PageSize:    exportPageSize,
		Concurrency: exportConcurrency,
		Consistency: cfg.Consistency,
		Encoder: exporters.Options{
			Delimiter: delim,
			NoHeader:  exportNoHeader,
			TableName: exportTable,
		},
	})
	if err != nil {
		return err
	}

	cancelOnInterrupt(job.Cancel)

	if !flagQuiet && exportOutput != output.Stdout {
		var bar interface{ Set64(int64) error }
		for p := range job.Events() {
			if bar == nil && p.TotalRows > 0 {
				bar = ui.NewRowBar(p.TotalRows, fmt.Sprintf("Exporting %s", exportTable))
			}
			if bar != nil {
				bar.Set64(p.Rows)
			}
		}
	}

	blob, err := job.Wait()
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	final := job.Snapshot()
	if final.Phase == pipeline.PhaseCancelled {
		logger.Warn("Export cancelled, no output written")
		return nil
	}
	if blob == nil {
		logger.Warn("Table %s is empty, no output written", exportTable)
		return nil
	}

	w, err := output.NewSink(output.Sink{
		Path:        exportOutput,
		Compression: exportCompression,
		Format:      format,
	})
	if err != nil {
		return err
	}
	if _, err := w.Write(blob); err != nil {
		w.Close()
		return fmt.Errorf("error writing output: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("error finalizing output: %w", err)
	}

	logger.Success("Export completed: %d rows -> %s", final.Rows, exportOutput)
	return nil
}
