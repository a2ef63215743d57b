// Package archive provides single-stream compression for exported files.
// It supports gzip and xz, selected explicitly or from the file extension.
package archive

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ulikunitz/xz"
)

// Compression identifies a stream compression format.
type Compression int

const (
	// None writes the data unchanged.
	None Compression = iota
	// Gzip uses compress/gzip.
	Gzip
	// XZ uses github.com/ulikunitz/xz.
	XZ
)

// String returns the format name.
func (c Compression) String() string {
	switch c {
	case Gzip:
		return "gzip"
	case XZ:
		return "xz"
	default:
		return "none"
	}
}

// Extension returns the conventional file suffix, including the dot.
func (c Compression) Extension() string {
	switch c {
	case Gzip:
		return ".gz"
	case XZ:
		return ".xz"
	default:
		return ""
	}
}

// CompressionFromPath picks the compression implied by the file suffix.
func CompressionFromPath(path string) Compression {
	switch {
	case strings.HasSuffix(path, ".xz"):
		return XZ
	case strings.HasSuffix(path, ".gz"):
		return Gzip
	default:
		return None
	}
}

// Reader decompresses a file opened with NewReader.
type Reader struct {
	io.Reader
	file         *os.File
	decompressor io.Closer
}

// NewReader opens path and decompresses it with c.
func NewReader(path string, c Compression) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	var reader io.Reader = f
	var decompressor io.Closer

	switch c {
	case XZ:
		xzr, err := xz.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("xz reader: %w", err)
		}
		reader = xzr
	case Gzip:
		gzr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		reader = gzr
		decompressor = gzr
	}

	return &Reader{Reader: reader, file: f, decompressor: decompressor}, nil
}

// Close closes the reader and any underlying decompressor.
func (r *Reader) Close() error {
	var errs []error
	if r.decompressor != nil {
		if err := r.decompressor.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := r.file.Close(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// ReadFile returns the content of path decompressed with c.
func ReadFile(path string, c Compression) ([]byte, error) {
	r, err := NewReader(path, c)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}
	return data, nil
}
