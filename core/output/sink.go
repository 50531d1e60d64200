package output

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/qvx-labs/rqport/internal/logger"
)

// Compression codecs accepted by NewSink.
const (
	None = "none"
	GZIP = "gzip"
	ZIP  = "zip"
	ZSTD = "zstd"
	LZ4  = "lz4"
)

// Stdout is the path that routes output to standard out instead of a file.
const Stdout = "-"

// Sink describes where export output goes and how it is compressed.
type Sink struct {
	Path        string
	Compression string
	Format      string // output format, used for the zip entry name
}

// NewSink opens the destination writer. A "-" path writes to stdout and
// refuses compression; anything else creates the file, appending the codec's
// extension when missing.
func NewSink(cfg Sink) (io.WriteCloser, error) {
	codec := strings.ToLower(strings.TrimSpace(cfg.Compression))
	if codec == "" {
		codec = None
	}

	if cfg.Path == Stdout {
		if codec != None {
			return nil, fmt.Errorf("compression requires a file destination")
		}
		// stdout stays open; Close only flushes
		w := bufio.NewWriter(os.Stdout)
		return &sinkCloser{Writer: w, closeFunc: w.Flush}, nil
	}

	switch codec {
	case None:
		return newFileSink(cfg.Path)
	case GZIP:
		return newGzipSink(cfg.Path)
	case ZIP:
		return newZipSink(cfg.Path, cfg.Format)
	case ZSTD:
		return newZstdSink(cfg.Path)
	case LZ4:
		return newLz4Sink(cfg.Path)
	default:
		return nil, fmt.Errorf("unsupported compression type %q", cfg.Compression)
	}
}

// sinkCloser pairs a writer with the teardown that finalizes it.
type sinkCloser struct {
	io.Writer
	closeFunc func() error
}

func (s *sinkCloser) Close() error {
	if s.closeFunc == nil {
		return nil
	}
	return s.closeFunc()
}

func newFileSink(path string) (io.WriteCloser, error) {
	logger.Debug("Creating output file: %s", path)
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("error creating file: %w", err)
	}
	buf := bufio.NewWriterSize(file, 256*1024)
	return &sinkCloser{
		Writer: buf,
		closeFunc: func() error {
			if err := buf.Flush(); err != nil {
				file.Close()
				return fmt.Errorf("error flushing output: %w", err)
			}
			return file.Close()
		},
	}, nil
}

// ensureExt appends ext when the path doesn't already end with it.
func ensureExt(path, ext string) string {
	if strings.HasSuffix(strings.ToLower(path), ext) {
		return path
	}
	return path + ext
}

// closeBoth closes the codec writer then the file, keeping the first error.
func closeBoth(codec io.Closer, file *os.File) error {
	err := codec.Close()
	if ferr := file.Close(); ferr != nil && err == nil {
		err = ferr
	}
	return err
}
