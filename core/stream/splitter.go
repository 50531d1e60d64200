package stream

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DefaultChunkSize is how much raw input one read consumes. Memory use is
// bounded by one chunk plus one logical unit, never by file size.
const DefaultChunkSize = 64 * 1024

// Splitter consumes a byte stream in fixed-size chunks, decodes it
// incrementally and yields complete logical units split on a separator.
//
// Decoding is BOM-aware (UTF-8 by default, UTF-16 when a BOM says so) and
// carries undecoded trailing bytes from one chunk to the next, so a
// multi-byte character split across a chunk boundary is never corrupted.
type Splitter struct {
	src       io.Reader
	sep       rune
	chunk     []byte
	carry     []byte
	pending   string
	dec       transform.Transformer
	bytesRead int64
	eof       bool
	flushed   bool
}

// NewSplitter returns a splitter over r using sep as the unit separator
// (newline for delimited text, semicolon for SQL statements).
func NewSplitter(r io.Reader, sep rune) *Splitter {
	return NewSplitterSize(r, sep, DefaultChunkSize)
}

// NewSplitterSize is NewSplitter with an explicit chunk size, used by tests
// to force units and multi-byte characters across chunk boundaries.
func NewSplitterSize(r io.Reader, sep rune, chunkSize int) *Splitter {
	if chunkSize < 1 {
		chunkSize = DefaultChunkSize
	}
	return &Splitter{
		src:   r,
		sep:   sep,
		chunk: make([]byte, chunkSize),
		dec:   unicode.BOMOverride(unicode.UTF8.NewDecoder()),
	}
}

// BytesRead returns the cumulative raw bytes consumed from the source.
func (s *Splitter) BytesRead() int64 {
	return s.bytesRead
}

// Next returns the next complete logical unit. Empty and whitespace-only
// units are dropped. A source without a trailing separator still yields its
// last unit. io.EOF signals the end of the stream.
func (s *Splitter) Next() (string, error) {
	for {
		if unit, ok := s.takeUnit(); ok {
			return unit, nil
		}

		if s.eof {
			if !s.flushed {
				s.flushed = true
				rest := s.pending
				s.pending = ""
				if unit := cleanUnit(rest, s.sep); unit != "" {
					return unit, nil
				}
			}
			return "", io.EOF
		}

		if err := s.fill(); err != nil {
			return "", err
		}
	}
}

// takeUnit extracts one complete unit from the decoded pending text.
func (s *Splitter) takeUnit() (string, bool) {
	for {
		idx := strings.IndexRune(s.pending, s.sep)
		if idx < 0 {
			return "", false
		}
		raw := s.pending[:idx]
		s.pending = s.pending[idx+len(string(s.sep)):]
		if unit := cleanUnit(raw, s.sep); unit != "" {
			return unit, true
		}
		// dropped an empty unit, keep scanning
	}
}

// fill reads one chunk and decodes it, carrying any undecoded trailing bytes.
func (s *Splitter) fill() error {
	n, err := s.src.Read(s.chunk)
	if n > 0 {
		s.bytesRead += int64(n)
		if derr := s.decode(s.chunk[:n], false); derr != nil {
			return derr
		}
	}
	if err == io.EOF {
		s.eof = true
		return s.decode(nil, true)
	}
	if err != nil {
		return fmt.Errorf("error reading source: %w", err)
	}
	return nil
}

func (s *Splitter) decode(raw []byte, atEOF bool) error {
	src := raw
	if len(s.carry) > 0 {
		src = append(s.carry, raw...)
		s.carry = nil
	}
	if len(src) == 0 && !atEOF {
		return nil
	}

	var out strings.Builder
	dst := make([]byte, len(src)*3+16)
	for {
		nDst, nSrc, err := s.dec.Transform(dst, src, atEOF)
		out.Write(dst[:nDst])
		src = src[nSrc:]

		switch err {
		case nil:
			if len(src) > 0 {
				continue
			}
			s.pending += out.String()
			return nil
		case transform.ErrShortSrc:
			// trailing bytes form an incomplete character; keep for next chunk
			s.carry = append([]byte(nil), src...)
			s.pending += out.String()
			return nil
		case transform.ErrShortDst:
			continue
		default:
			return fmt.Errorf("error decoding source text: %w", err)
		}
	}
}

// cleanUnit normalizes one raw unit: CRLF line endings lose the trailing CR,
// and units that are empty or whitespace-only vanish.
func cleanUnit(raw string, sep rune) string {
	if sep == '\n' {
		raw = strings.TrimSuffix(raw, "\r")
	}
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	return raw
}
