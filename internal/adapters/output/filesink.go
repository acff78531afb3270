// Package output provides snapshot observers for tickerwatch.
//
// This file implements the shared append-only file writer used by the
// report observers:
//   - AverageObserver: one average-price line per snapshot
//   - HighLowObserver: tickers trading near their 52-week high or low
//   - SelectionObserver: full records for a watchlist of tickers
//
// Each observer owns one FileSink; every Update is written as a single
// buffered block and flushed before Update returns, so a reader of the report
// never sees half a block.
package output

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileSink appends blocks of text to a file.
type FileSink struct {
	path      string
	file      *os.File
	bufWriter *bufio.Writer
	mu        sync.Mutex
}

// NewFileSink opens path for appending, creating it and its parent directory
// when missing. File Permissions: 0644.
func NewFileSink(path string) (*FileSink, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	const bufferSize = 16 * 1024
	return &FileSink{
		path:      path,
		file:      file,
		bufWriter: bufio.NewWriterSize(file, bufferSize),
	}, nil
}

// WriteBlock runs fn against the buffered writer and flushes the result.
func (s *FileSink) WriteBlock(fn func(w *bufio.Writer) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return os.ErrClosed
	}
	if err := fn(s.bufWriter); err != nil {
		s.bufWriter.Reset(s.file)
		return err
	}
	return s.bufWriter.Flush()
}

func (s *FileSink) Path() string {
	return s.path
}

// Close flushes, syncs and closes the file. Later writes fail with os.ErrClosed.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil
	}
	if err := s.bufWriter.Flush(); err != nil {
		return err
	}
	if err := s.file.Sync(); err != nil {
		return err
	}
	err := s.file.Close()
	s.file = nil
	return err
}
