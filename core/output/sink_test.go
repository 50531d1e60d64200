package output

import (
	"archive/zip"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	kzstd "github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

func TestNewSinkRoundTrip(t *testing.T) {
	const payload = "id,name\n1,Alice\n2,Bob\n"

	tests := []struct {
		name        string
		compression string
		wantPath    string // relative to the requested path
		read        func(t *testing.T, path string) string
	}{
		{
			name:        "uncompressed",
			compression: "none",
			wantPath:    "out.csv",
			read: func(t *testing.T, path string) string {
				b, err := os.ReadFile(path)
				if err != nil {
					t.Fatalf("read: %v", err)
				}
				return string(b)
			},
		},
		{
			name:        "gzip adds extension",
			compression: "gzip",
			wantPath:    "out.csv.gz",
			read: func(t *testing.T, path string) string {
				f, err := os.Open(path)
				if err != nil {
					t.Fatalf("open: %v", err)
				}
				defer f.Close()
				r, err := gzip.NewReader(f)
				if err != nil {
					t.Fatalf("gzip reader: %v", err)
				}
				defer r.Close()
				b, err := io.ReadAll(r)
				if err != nil {
					t.Fatalf("read: %v", err)
				}
				return string(b)
			},
		},
		{
			name:        "zstd adds extension",
			compression: "ZSTD",
			wantPath:    "out.csv.zst",
			read: func(t *testing.T, path string) string {
				f, err := os.Open(path)
				if err != nil {
					t.Fatalf("open: %v", err)
				}
				defer f.Close()
				r, err := kzstd.NewReader(f)
				if err != nil {
					t.Fatalf("zstd reader: %v", err)
				}
				defer r.Close()
				b, err := io.ReadAll(r)
				if err != nil {
					t.Fatalf("read: %v", err)
				}
				return string(b)
			},
		},
		{
			name:        "lz4 adds extension",
			compression: "lz4",
			wantPath:    "out.csv.lz4",
			read: func(t *testing.T, path string) string {
				f, err := os.Open(path)
				if err != nil {
					t.Fatalf("open: %v", err)
				}
				defer f.Close()
				b, err := io.ReadAll(lz4.NewReader(f))
				if err != nil {
					t.Fatalf("read: %v", err)
				}
				return string(b)
			},
		},
		{
			name:        "zip replaces extension",
			compression: "zip",
			wantPath:    "out.zip",
			read: func(t *testing.T, path string) string {
				zr, err := zip.OpenReader(path)
				if err != nil {
					t.Fatalf("open zip: %v", err)
				}
				defer zr.Close()
				if len(zr.File) != 1 {
					t.Fatalf("zip entries = %d, want 1", len(zr.File))
				}
				if zr.File[0].Name != "out.csv" {
					t.Errorf("zip entry = %q, want out.csv", zr.File[0].Name)
				}
				rc, err := zr.File[0].Open()
				if err != nil {
					t.Fatalf("open entry: %v", err)
				}
				defer rc.Close()
				b, err := io.ReadAll(rc)
				if err != nil {
					t.Fatalf("read: %v", err)
				}
				return string(b)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			w, err := NewSink(Sink{
				Path:        filepath.Join(dir, "out.csv"),
				Compression: tt.compression,
				Format:      "csv",
			})
			if err != nil {
				t.Fatalf("NewSink() error: %v", err)
			}
			if _, err := w.Write([]byte(payload)); err != nil {
				t.Fatalf("Write() error: %v", err)
			}
			if err := w.Close(); err != nil {
				t.Fatalf("Close() error: %v", err)
			}

			got := tt.read(t, filepath.Join(dir, tt.wantPath))
			if got != payload {
				t.Errorf("round-trip content = %q, want %q", got, payload)
			}
		})
	}
}

func TestNewSinkKeepsExistingExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv.gz")

	w, err := NewSink(Sink{Path: path, Compression: "gzip"})
	if err != nil {
		t.Fatalf("NewSink() error: %v", err)
	}
	w.Write([]byte("x"))
	w.Close()

	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected %s to exist: %v", path, err)
	}
	if _, err := os.Stat(path + ".gz"); !os.IsNotExist(err) {
		t.Errorf("double extension file created")
	}
}

func TestNewSinkRejectsUnknownCodec(t *testing.T) {
	_, err := NewSink(Sink{Path: "x.csv", Compression: "bzip2"})
	if err == nil {
		t.Fatal("expected error for unsupported codec")
	}
	if !strings.Contains(err.Error(), "unsupported compression") {
		t.Errorf("error = %v", err)
	}
}

func TestNewSinkStdoutRefusesCompression(t *testing.T) {
	if _, err := NewSink(Sink{Path: Stdout, Compression: "gzip"}); err == nil {
		t.Fatal("expected error for compressed stdout")
	}
}

func TestZipEntryName(t *testing.T) {
	tests := []struct {
		path   string
		format string
		want   string
	}{
		{"/tmp/output.zip", "csv", "output.csv"},
		{"/tmp/backup.zip", "sql", "backup.sql"},
		{"/tmp/output.csv.zip", "csv", "output.csv"},
		{"/tmp/DATA.ZIP", "xlsx", "data.xlsx"},
		{"/tmp/.zip", "csv", "export.csv"},
	}
	for _, tt := range tests {
		if got := zipEntryName(tt.path, tt.format); got != tt.want {
			t.Errorf("zipEntryName(%q, %q) = %q, want %q", tt.path, tt.format, got, tt.want)
		}
	}
}
