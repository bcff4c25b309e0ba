package importer

import (
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
)

// OpenExport opens a chat export for reading. Plain text is read as is,
// .gz files are decompressed, and for .zip archives the first .txt entry
// is used (the layout of messenger "export chat" archives).
func OpenExport(filename string) (io.ReadCloser, error) {
	switch strings.ToLower(path.Ext(filename)) {
	case ".zip":
		return openZip(filename)
	case ".gz":
		f, err := os.Open(filename)
		if err != nil {
			return nil, err
		}
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("gzip %s: %w", filename, err)
		}
		return &multiCloser{Reader: gz, closers: []io.Closer{gz, f}}, nil
	default:
		return os.Open(filename)
	}
}

func openZip(filename string) (io.ReadCloser, error) {
	zr, err := zip.OpenReader(filename)
	if err != nil {
		return nil, fmt.Errorf("zip %s: %w", filename, err)
	}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !strings.EqualFold(path.Ext(f.Name), ".txt") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			zr.Close()
			return nil, fmt.Errorf("zip %s: opening %s: %w", filename, f.Name, err)
		}
		return &multiCloser{Reader: rc, closers: []io.Closer{rc, zr}}, nil
	}
	zr.Close()
	return nil, fmt.Errorf("zip %s: no .txt entry", filename)
}

type multiCloser struct {
	io.Reader
	closers []io.Closer
}

func (m *multiCloser) Close() error {
	var first error
	for _, c := range m.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
