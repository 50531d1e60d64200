package output

import (
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/qvx-labs/rqport/internal/logger"
)

func newGzipSink(path string) (io.WriteCloser, error) {
	path = ensureExt(path, ".gz")
	logger.Debug("Creating gzip-compressed output file: %s", path)
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("error creating file: %w", err)
	}
	gw := gzip.NewWriter(file)
	return &sinkCloser{
		Writer:    gw,
		closeFunc: func() error { return closeBoth(gw, file) },
	}, nil
}

func newZstdSink(path string) (io.WriteCloser, error) {
	path = ensureExt(path, ".zst")
	logger.Debug("Creating zstd-compressed output file: %s", path)
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("error creating file: %w", err)
	}
	zw, err := zstd.NewWriter(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("error creating zstd writer: %w", err)
	}
	return &sinkCloser{
		Writer:    zw,
		closeFunc: func() error { return closeBoth(zw, file) },
	}, nil
}

func newLz4Sink(path string) (io.WriteCloser, error) {
	path = ensureExt(path, ".lz4")
	logger.Debug("Creating lz4-compressed output file: %s", path)
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("error creating file: %w", err)
	}
	lw := lz4.NewWriter(file)
	return &sinkCloser{
		Writer:    lw,
		closeFunc: func() error { return closeBoth(lw, file) },
	}, nil
}

func newZipSink(path, format string) (io.WriteCloser, error) {
	archivePath := replaceExt(path, ".zip")
	logger.Debug("Creating zip archive: %s", archivePath)
	file, err := os.Create(archivePath)
	if err != nil {
		return nil, fmt.Errorf("error creating file: %w", err)
	}
	zw := zip.NewWriter(file)
	entry, err := zw.Create(zipEntryName(path, format))
	if err != nil {
		zw.Close()
		file.Close()
		return nil, fmt.Errorf("error creating zip entry: %w", err)
	}
	return &sinkCloser{
		Writer:    entry,
		closeFunc: func() error { return closeBoth(zw, file) },
	}, nil
}

// zipEntryName derives the archive member name from the requested output
// path, making sure it carries the data format's extension.
func zipEntryName(path, format string) string {
	name := strings.TrimSuffix(strings.ToLower(filepath.Base(path)), ".zip")
	if name == "" {
		name = "export"
	}
	if format != "" && !strings.HasSuffix(name, "."+format) {
		name += "." + format
	}
	return name
}

// replaceExt swaps the path's extension for ext unless it already matches.
func replaceExt(path, ext string) string {
	cur := filepath.Ext(path)
	if strings.ToLower(cur) == ext {
		return path
	}
	return path[:len(path)-len(cur)] + ext
}
