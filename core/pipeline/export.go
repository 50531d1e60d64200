package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/qvx-labs/rqport/core/db"
	"github.com/qvx-labs/rqport/core/exporters"
	"github.com/qvx-labs/rqport/internal/logger"
)

const (
	defaultPageSize    = 5000
	defaultConcurrency = 3
)

// ExportOptions configures one export invocation.
type ExportOptions struct {
	PageSize    int
	Concurrency int
	Consistency string
	Encoder     exporters.Options
}

// ExportJob is the handle for one running export.
type ExportJob struct {
	*job
	blob []byte
}

// Wait blocks until the invocation finishes and returns the output blob.
// The blob is nil when the table was empty or the export was cancelled.
func (jb *ExportJob) Wait() ([]byte, error) {
	<-jb.done
	snap := jb.Snapshot()
	return jb.blob, snap.Err
}

// encodedChunk carries formatted output back to the accumulator, tagged
// with how many rows it covers.
type encodedChunk struct {
	data []byte
	rows int64
}

// StartExport begins exporting the table in the requested format. Pages are
// fetched with bounded concurrency; results are applied in page order, so
// the output preserves row order despite concurrent fetch.
func StartExport(ctx context.Context, store db.Store, table, format string, opts ExportOptions) (*ExportJob, error) {
	if strings.TrimSpace(table) == "" {
		return nil, fmt.Errorf("export requires a table name")
	}
	// Fail early on unknown formats, before any network work.
	if _, err := exporters.Get(format, &bytes.Buffer{}, encoderOptions(table, opts)); err != nil {
		return nil, err
	}

	jb := &ExportJob{job: newJob(PhaseFetching)}
	go runExport(ctx, jb, store, table, format, opts)
	return jb, nil
}

func encoderOptions(table string, opts ExportOptions) exporters.Options {
	enc := opts.Encoder
	if enc.TableName == "" {
		enc.TableName = table
	}
	return enc
}

// runExport is the orchestrator: schema/count resolution, the concurrent
// paged fetch loop, and final blob assembly. Formatting runs in a separate
// worker fed through a channel; batches and chunks pass by value.
func runExport(ctx context.Context, jb *ExportJob, store db.Store, table, format string, opts ExportOptions) {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	level := opts.Consistency
	if level == "" {
		level = db.ConsistencyWeak
	}

	// Row count and column schema resolve concurrently.
	var (
		total   int64
		columns []db.Column
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		total, err = store.Count(gctx, table)
		return err
	})
	g.Go(func() error {
		var err error
		columns, err = store.Schema(gctx, table)
		return err
	})
	if err := g.Wait(); err != nil {
		jb.finalize(PhaseError, err)
		return
	}

	if total == 0 {
		logger.Debug("Table %s is empty, nothing to export", table)
		jb.finalize(PhaseComplete, nil)
		return
	}

	headers := make([]string, len(columns))
	for i, c := range columns {
		headers[i] = c.Name
	}

	jb.update(func(p *Progress) { p.TotalRows = total })

	// Formatting worker: consumes ordered row batches, emits encoded chunks.
	batchCh := make(chan []*exporters.Row)
	chunkCh := make(chan encodedChunk, 4)
	encErrCh := make(chan error, 1)

	go runFormatWorker(format, encoderOptions(table, opts), headers, batchCh, chunkCh, encErrCh)

	// Chunk accumulator: single owner of the output buffer until done.
	var blob bytes.Buffer
	var formatted int64
	accDone := make(chan struct{})
	go func() {
		defer close(accDone)
		for c := range chunkCh {
			blob.Write(c.data)
			formatted += c.rows
		}
	}()

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	var fetched int64
	var failed error

	logger.Debug("Exporting %d rows from %s: %d pages of %d, concurrency %d",
		total, table, totalPages, pageSize, concurrency)

fetchLoop:
	for start := 1; start <= totalPages; start += concurrency {
		// Cancellation is checked before each new page group; in-flight
		// requests finish but their results are discarded.
		if jb.isCancelled() {
			break
		}

		groupLen := concurrency
		if start+groupLen-1 > totalPages {
			groupLen = totalPages - start + 1
		}

		results := make([]*db.ResultSet, groupLen)
		fg, fctx := errgroup.WithContext(ctx)
		for i := 0; i < groupLen; i++ {
			page := start + i
			slot := i
			fg.Go(func() error {
				rs, err := store.QueryPage(fctx, table, page, pageSize, level)
				if err != nil {
					return err
				}
				results[slot] = rs
				return nil
			})
		}
		if err := fg.Wait(); err != nil {
			failed = err
			break
		}
		if jb.isCancelled() {
			break
		}

		// Apply the group's results in ascending page order: this is what
		// keeps output row order stable under concurrent fetch.
		for _, rs := range results {
			if rs == nil || len(rs.Rows) == 0 {
				continue
			}
			batch := rs.AssocRows()
			select {
			case batchCh <- batch:
			case err := <-encErrCh:
				failed = err
				break fetchLoop
			}
			fetched += int64(len(batch))
			jb.update(func(p *Progress) {
				p.Phase = PhaseFetching
				p.Rows = fetched
			})
		}
	}

	close(batchCh)
	jb.update(func(p *Progress) { p.Phase = PhaseFormatting })
	<-accDone

	if failed == nil {
		select {
		case err := <-encErrCh:
			failed = err
		default:
		}
	}

	switch {
	case failed != nil:
		jb.finalize(PhaseError, failed)
	case jb.isCancelled():
		logger.Debug("Export cancelled after %d of %d rows", fetched, total)
		jb.finalize(PhaseCancelled, nil)
	default:
		jb.blob = blob.Bytes()
		logger.Debug("Export complete: %d rows formatted, %d bytes", formatted, blob.Len())
		jb.finalize(PhaseComplete, nil)
	}
}

// runFormatWorker owns the encoder. It serializes each incoming batch and
// forwards the encoded bytes as chunks, in arrival order.
func runFormatWorker(format string, opts exporters.Options, headers []string, batches <-chan []*exporters.Row, chunks chan<- encodedChunk, errCh chan<- error) {
	defer close(chunks)

	var buf bytes.Buffer
	enc, err := exporters.Get(format, &buf, opts)
	if err != nil {
		errCh <- err
		return
	}

	flush := func(rows int64) {
		if buf.Len() == 0 && rows == 0 {
			return
		}
		data := make([]byte, buf.Len())
		copy(data, buf.Bytes())
		buf.Reset()
		chunks <- encodedChunk{data: data, rows: rows}
	}

	if err := enc.Begin(headers); err != nil {
		errCh <- err
		return
	}
	flush(0)

	for batch := range batches {
		if err := enc.EncodeBatch(batch); err != nil {
			errCh <- err
			// keep draining so the orchestrator never blocks on send
			for range batches {
			}
			return
		}
		flush(int64(len(batch)))
	}

	if err := enc.End(); err != nil {
		errCh <- err
		return
	}
	flush(0)
}
