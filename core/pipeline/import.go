package pipeline

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/qvx-labs/rqport/core/db"
	"github.com/qvx-labs/rqport/core/formatters"
	"github.com/qvx-labs/rqport/core/stream"
	"github.com/qvx-labs/rqport/internal/logger"
)

// Import source formats.
const (
	ImportCSV = "csv"
	ImportSQL = "sql"
)

const (
	csvBatchSize = 1000
	sqlBatchSize = 500

	// The batch queue between the parse worker and the dispatch loop is
	// bounded: a fast source blocks on a slow store instead of buffering
	// the whole file in memory.
	batchQueueDepth = 8
)

// ImportOptions configures one import invocation.
type ImportOptions struct {
	Delimiter   rune  // CSV field separator, ',' when zero
	Transaction bool  // apply each batch atomically
	TotalBytes  int64 // source size when known, for progress reporting
	BatchSize   int   // override the per-format default, mainly for tests
	Consistency string
}

// ImportJob is the handle for one running import. Cancel is its only
// mutator of the shared cancellation flag.
type ImportJob struct {
	*job
}

// Wait blocks until the invocation reaches a terminal phase and returns the
// final progress snapshot. The error is non-nil only for the error phase;
// cancellation is a distinct terminal phase, not an error.
func (jb *ImportJob) Wait() (Progress, error) {
	<-jb.done
	snap := jb.Snapshot()
	return snap, snap.Err
}

// importMsg is the worker-to-orchestrator message. All payloads pass by
// value; the worker never shares its parse buffers.
type importMsg struct {
	headers []string   // CSV column header set, sent once
	rows    [][]string // CSV row batch
	stmts   []string   // SQL statement batch
	bytes   int64      // cumulative source bytes consumed
	err     error      // parse/read failure, terminates the invocation
}

// StartImport begins streaming src into the target table. The returned job
// reports progress and resolves via Wait. The parse worker and the dispatch
// loop run concurrently; batches are dispatched in production order by a
// single-flight loop.
func StartImport(ctx context.Context, store db.Store, src io.Reader, table, format string, opts ImportOptions) (*ImportJob, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format != ImportCSV && format != ImportSQL {
		return nil, fmt.Errorf("unsupported import format: %q (expected csv or sql)", format)
	}
	if strings.TrimSpace(table) == "" && format == ImportCSV {
		return nil, fmt.Errorf("CSV import requires a target table")
	}

	jb := &ImportJob{job: newJob(PhaseParsing)}
	jb.update(func(p *Progress) { p.TotalBytes = opts.TotalBytes })

	msgs := make(chan importMsg, batchQueueDepth)

	go runImportWorker(jb.job, src, format, opts, msgs)
	go runImportDispatch(ctx, jb.job, store, table, format, opts, msgs)

	return jb, nil
}

// runImportWorker owns all parsing state. It reads the source chunk by
// chunk, assembles batches and hands them off by value. The cancel flag is
// checked at every unit iteration.
func runImportWorker(jb *job, src io.Reader, format string, opts ImportOptions, msgs chan<- importMsg) {
	defer close(msgs)

	batchSize := opts.BatchSize
	if batchSize <= 0 {
		if format == ImportCSV {
			batchSize = csvBatchSize
		} else {
			batchSize = sqlBatchSize
		}
	}

	sep := '\n'
	if format == ImportSQL {
		sep = ';'
	}
	splitter := stream.NewSplitter(src, sep)

	delim := opts.Delimiter
	if delim == 0 {
		delim = ','
	}

	var (
		headersSent bool
		rows        [][]string
		stmts       []string
	)

	flush := func() {
		if len(rows) == 0 && len(stmts) == 0 {
			return
		}
		msgs <- importMsg{rows: rows, stmts: stmts, bytes: splitter.BytesRead()}
		rows = nil
		stmts = nil
	}

	for {
		if jb.isCancelled() {
			logger.Debug("Import worker observed cancellation, stopping parse")
			return
		}

		unit, err := splitter.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			msgs <- importMsg{err: err}
			return
		}

		switch format {
		case ImportCSV:
			fields := stream.ParseLine(unit, delim)
			if !headersSent {
				// First line is the column header set, never data.
				msgs <- importMsg{headers: fields, bytes: splitter.BytesRead()}
				headersSent = true
				continue
			}
			rows = append(rows, fields)
			if len(rows) >= batchSize {
				flush()
			}

		case ImportSQL:
			cleaned := stream.CleanStatement(unit)
			if cleaned == "" || !stream.IsInsert(cleaned) {
				continue // fail open: skip DDL, comments, transaction control
			}
			stmts = append(stmts, cleaned)
			if len(stmts) >= batchSize {
				flush()
			}
		}
	}

	flush()
}

// runImportDispatch owns network dispatch. It pops batches FIFO, converts
// them to parameterized statements and issues one batched write per batch.
// Running as a single goroutine makes the loop single-flight by
// construction.
func runImportDispatch(ctx context.Context, jb *job, store db.Store, table, format string, opts ImportOptions, msgs <-chan importMsg) {
	var (
		headers  []string
		inserted int64
		failed   error
	)

	for msg := range msgs {
		if failed != nil {
			continue // drain so the worker can exit
		}
		if msg.err != nil {
			failed = msg.err
			continue
		}
		if msg.headers != nil {
			headers = msg.headers
			jb.update(func(p *Progress) { p.Bytes = msg.bytes })
			continue
		}

		// Once cancelled, no further network calls are issued; queued
		// batches are dropped.
		if jb.isCancelled() {
			continue
		}

		stmts, rowCount := buildBatch(table, headers, msg, format)
		if len(stmts) == 0 {
			continue
		}

		if _, err := store.Execute(ctx, stmts, opts.Transaction); err != nil {
			failed = err
			continue
		}

		inserted += rowCount
		jb.update(func(p *Progress) {
			p.Phase = PhaseInserting
			p.Rows = inserted
			p.Bytes = msg.bytes
		})
	}

	switch {
	case failed != nil:
		logger.Debug("Import aborted after %d rows: %v", inserted, failed)
		jb.finalize(PhaseError, failed)
	case jb.isCancelled():
		logger.Debug("Import cancelled with %d rows committed", inserted)
		jb.finalize(PhaseCancelled, nil)
	default:
		logger.Debug("Import complete: %d rows inserted", inserted)
		jb.finalize(PhaseComplete, nil)
	}
}

// buildBatch converts one worker batch into the statement list for a single
// batched write. CSV rows become parameterized INSERTs with the header set
// as the column list; user values only ever travel as bound arguments.
// Pre-formed SQL INSERT statements are submitted verbatim.
func buildBatch(table string, headers []string, msg importMsg, format string) ([]db.Statement, int64) {
	if format == ImportSQL {
		stmts := make([]db.Statement, 0, len(msg.stmts))
		for _, s := range msg.stmts {
			stmts = append(stmts, db.Statement{SQL: s})
		}
		return stmts, int64(len(stmts))
	}

	if len(headers) == 0 {
		return nil, 0
	}

	quoted := make([]string, len(headers))
	for i, h := range headers {
		quoted[i] = formatters.QuoteIdent(h)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(headers)), ", ")
	template := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		formatters.QuoteIdent(table), strings.Join(quoted, ", "), placeholders)

	stmts := make([]db.Statement, 0, len(msg.rows))
	for _, row := range msg.rows {
		args := make([]any, len(headers))
		for i := range headers {
			if i < len(row) {
				args[i] = row[i]
			}
		}
		stmts = append(stmts, db.Statement{SQL: template, Args: args})
	}
	return stmts, int64(len(stmts))
}
