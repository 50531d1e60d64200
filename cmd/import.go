package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/qvx-labs/rqport/core/pipeline"
	"github.com/qvx-labs/rqport/core/validation"
	"github.com/qvx-labs/rqport/internal/logger"
	"github.com/qvx-labs/rqport/internal/ui"
)

var (
	importFile        string
	importTable       string
	importFormat      string
	importDelimiter   string
	importTransaction bool
	importBatchSize   int
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Stream a CSV or SQL dump file into the store",
	Long: `Import streams a source file into the store without loading it into
memory. CSV rows become batched parameterized INSERTs into the target table;
SQL dumps are split on semicolons and only their INSERT statements are
replayed. Ctrl-C cancels between batches, keeping already committed batches.`,
	Example: `  # CSV into a table
  rqport import -i users.csv -t users

  # Tab-separated input
  rqport import -i data.tsv -t data -D "\t"

  # SQL dump, each batch applied atomically
  rqport import -i backup.sql -f sql --atomic`,
	RunE: runImport,
}

func init() {
	importCmd.Flags().SortFlags = false
	importCmd.Flags().StringVarP(&importFile, "input", "i", "", "Source file path (required)")
	importCmd.Flags().StringVarP(&importTable, "table", "t", "", "Target table (required for CSV)")
	importCmd.Flags().StringVarP(&importFormat, "format", "f", "", "Source format: csv or sql (default: by file extension)")
	importCmd.Flags().StringVarP(&importDelimiter, "delimiter", "D", ",", "CSV field delimiter")
	importCmd.Flags().BoolVar(&importTransaction, "atomic", false, "Apply each batch in a transaction")
	importCmd.Flags().IntVar(&importBatchSize, "batch-size", 0, "Rows per batched write (default: 1000 for csv, 500 for sql)")

	if err := importCmd.MarkFlagRequired("input"); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}

	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	format := strings.ToLower(strings.TrimSpace(importFormat))
	if format == "" {
		format = formatFromExtension(importFile)
		logger.Debug("Source format inferred from extension: %s", format)
	}

	if format == pipeline.ImportCSV {
		if err := validation.ValidateTableName(importTable); err != nil {
			return err
		}
	}

	delim, err := parseDelimiter(importDelimiter)
	if err != nil {
		return fmt.Errorf("invalid delimiter: %w", err)
	}

	file, err := os.Open(importFile)
	if err != nil {
		return fmt.Errorf("unable to open source file: %w", err)
	}
	defer file.Close()

	var totalBytes int64
	if info, err := file.Stat(); err == nil {
		totalBytes = info.Size()
	}

	store, cfg, err := connectStore()
	if err != nil {
		return err
	}
	defer store.Close()

	job, err := pipeline.StartImport(context.Background(), store, file, importTable, format, pipeline.ImportOptions{
		Delimiter:   delim,
		Transaction: importTransaction,
		TotalBytes:  totalBytes,
		BatchSize:   importBatchSize,
		Consistency: cfg.Consistency,
	})
	if err != nil {
		return err
	}

	cancelOnInterrupt(job.Cancel)

	if !flagQuiet {
		bar := ui.NewByteBar(totalBytes, fmt.Sprintf("Importing %s", filepath.Base(importFile)))
		for p := range job.Events() {
			bar.Set64(p.Bytes)
		}
		bar.Finish()
	}

	final, err := job.Wait()
	if err != nil {
		return fmt.Errorf("import failed after %d rows: %w", final.Rows, err)
	}

	switch final.Phase {
	case pipeline.PhaseCancelled:
		logger.Warn("Import cancelled: %d rows committed before stopping", final.Rows)
	default:
		logger.Success("Import completed: %d rows -> %s", final.Rows, targetName(format))
	}
	return nil
}

func formatFromExtension(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".sql") {
		return pipeline.ImportSQL
	}
	return pipeline.ImportCSV
}

func targetName(format string) string {
	if format == pipeline.ImportSQL {
		return "store"
	}
	return importTable
}

// cancelOnInterrupt wires SIGINT/SIGTERM to the job's cooperative cancel. A
// second signal exits immediately.
func cancelOnInterrupt(cancel func()) {
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Warn("Interrupt received, finishing in-flight batch...")
		cancel()
		<-sigCh
		os.Exit(1)
	}()
}
