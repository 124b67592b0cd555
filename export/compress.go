package export

import (
	"compress/gzip"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Compression selects how an export file is compressed.
type Compression string

// Supported compressions.
const (
	None Compression = "none"
	Gzip Compression = "gzip"
	Zstd Compression = "zstd"
)

// ParseCompression parses a compression name. The empty string means None.
func ParseCompression(s string) (Compression, error) {
	switch c := Compression(strings.ToLower(strings.TrimSpace(s))); c {
	case "", None:
		return None, nil
	case Gzip, Zstd:
		return c, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCompression, s)
	}
}

// FromPath picks a compression from a file extension: .gz is Gzip, .zst is Zstd,
// anything else None.
func FromPath(path string) Compression {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		return Gzip
	case ".zst":
		return Zstd
	default:
		return None
	}
}

// Extension returns the file extension for c, with its dot, or "" for None.
func (c Compression) Extension() string {
	switch c {
	case Gzip:
		return ".gz"
	case Zstd:
		return ".zst"
	default:
		return ""
	}
}

// compressor wraps w. Closing the result flushes the compressor but leaves w open.
func (c Compression) compressor(w io.Writer) (io.WriteCloser, error) {
	switch c {
	case "", None:
		return nopWriteCloser{w}, nil
	case Gzip:
		return gzip.NewWriter(w), nil
	case Zstd:
		return zstd.NewWriter(w)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCompression, string(c))
	}
}

// OpenReader returns a reader of the uncompressed content of r.
func OpenReader(r io.Reader, c Compression) (io.ReadCloser, error) {
	switch c {
	case "", None:
		return io.NopCloser(r), nil
	case Gzip:
		return gzip.NewReader(r)
	case Zstd:
		decoder, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return decoder.IOReadCloser(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCompression, string(c))
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
