package input

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// FileSource reads a ticker log from disk. The file is opened per read so a
// file rotated or recreated between reads is picked up.
type FileSource struct {
	path string
	name string
}

func NewFileSource(path string) *FileSource {
	name, err := filepath.Abs(path)
	if err != nil {
		name = filepath.Clean(path)
	}
	return &FileSource{path: path, name: name}
}

func (s *FileSource) Open() (io.ReadSeekCloser, error) {
	return os.Open(s.path)
}

// Name is the cleaned absolute path, which keys the source's checkpoint.
func (s *FileSource) Name() string {
	return s.name
}

func (s *FileSource) Path() string {
	return s.path
}

// MemorySource is an in-memory append log, safe for concurrent Append and Open.
// Open returns a view of the contents at the time of the call.
type MemorySource struct {
	name string
	mu   sync.RWMutex
	data []byte
}

func NewMemorySource(name, contents string) *MemorySource {
	return &MemorySource{name: name, data: []byte(contents)}
}

func (s *MemorySource) Append(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = append(s.data, text...)
}

func (s *MemorySource) Len() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.data))
}

func (s *MemorySource) Open() (io.ReadSeekCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	view := make([]byte, len(s.data))
	copy(view, s.data)
	return nopCloser{bytes.NewReader(view)}, nil
}

func (s *MemorySource) Name() string {
	return s.name
}

type nopCloser struct {
	*bytes.Reader
}

func (nopCloser) Close() error { return nil }
