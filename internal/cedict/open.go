package cedict

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/dshills/cedict-mcp/pkg/types"
)

var gzipMagic = []byte{0x1f, 0x8b}

type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (r *readCloser) Close() error {
	var first error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Open opens a CEDICT source, transparently decompressing gzip files.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cedict source: %w", err)
	}

	br := bufio.NewReader(f)
	head, err := br.Peek(len(gzipMagic))
	if err != nil && err != io.EOF {
		_ = f.Close()
		return nil, fmt.Errorf("failed to read cedict source: %w", err)
	}
	if len(head) == len(gzipMagic) && head[0] == gzipMagic[0] && head[1] == gzipMagic[1] {
		zr, err := gzip.NewReader(br)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		return &readCloser{Reader: zr, closers: []io.Closer{f, zr}}, nil
	}
	return &readCloser{Reader: br, closers: []io.Closer{f}}, nil
}

// ParseFile opens and parses the source at path.
func ParseFile(path string, logger *zap.Logger) ([]types.DictionaryEntry, *Stats, error) {
	rc, err := Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer rc.Close()
	return Parse(rc, logger)
}
