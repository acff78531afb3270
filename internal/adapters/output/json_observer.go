package output

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"

	"github.com/xoelrdgz/tickerwatch/internal/domain"
)

// JSONObserver writes each snapshot as one JSON document to a file or stdout.
//
// Features:
//   - Buffered writes, flushed every second and on Close
//   - Optional pretty-printing
//   - File sync on flush for durability
type JSONObserver struct {
	bufWriter *bufio.Writer
	file      *os.File
	mu        sync.Mutex
	encoder   *json.Encoder
	stopFlush chan struct{}
	stopOnce  sync.Once
}

type JSONObserverConfig struct {
	FilePath string // Output file path (empty for discard)
	Stdout   bool   // Write to stdout
	Pretty   bool   // Pretty-print JSON
}

// NewJSONObserver creates a JSON snapshot output.
//
// Output Priority:
//  1. Stdout if config.Stdout is true
//  2. File if config.FilePath is set
//  3. io.Discard otherwise
func NewJSONObserver(config JSONObserverConfig) (*JSONObserver, error) {
	var writer io.Writer
	var file *os.File

	if config.Stdout {
		writer = os.Stdout
	} else if config.FilePath != "" {
		var err error
		file, err = os.OpenFile(config.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return nil, err
		}
		writer = file
	} else {
		writer = io.Discard
	}

	bufWriter := bufio.NewWriterSize(writer, 64*1024)
	o := &JSONObserver{
		bufWriter: bufWriter,
		file:      file,
		stopFlush: make(chan struct{}),
	}
	o.encoder = json.NewEncoder(bufWriter)
	if config.Pretty {
		o.encoder.SetIndent("", "  ")
	}

	go o.periodicFlush()
	return o, nil
}

func (o *JSONObserver) periodicFlush() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			o.Flush()
		case <-o.stopFlush:
			return
		}
	}
}

func (o *JSONObserver) Update(snap *domain.Snapshot) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.encoder.Encode(snap)
}

func (o *JSONObserver) Name() string { return "json" }

func (o *JSONObserver) Flush() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.bufWriter.Flush(); err != nil {
		return err
	}
	if o.file != nil {
		return o.file.Sync()
	}
	return nil
}

func (o *JSONObserver) Close() error {
	o.stopOnce.Do(func() { close(o.stopFlush) })

	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.bufWriter.Flush(); err != nil {
		return err
	}
	if o.file != nil {
		if err := o.file.Sync(); err != nil {
			return err
		}
		return o.file.Close()
	}
	return nil
}

// MemoryObserver keeps the most recent snapshots in a fixed-size ring buffer.
type MemoryObserver struct {
	snapshots []*domain.Snapshot
	head      int
	count     int
	capacity  int
	mu        sync.RWMutex
}

// NewMemoryObserver keeps up to capacity snapshots (default 100 if <= 0).
func NewMemoryObserver(capacity int) *MemoryObserver {
	if capacity <= 0 {
		capacity = 100
	}
	return &MemoryObserver{
		snapshots: make([]*domain.Snapshot, capacity),
		capacity:  capacity,
	}
}

func (o *MemoryObserver) Update(snap *domain.Snapshot) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.snapshots[o.head] = snap
	o.head = (o.head + 1) % o.capacity
	if o.count < o.capacity {
		o.count++
	}
	return nil
}

func (o *MemoryObserver) Name() string { return "memory" }

// Snapshots returns the stored snapshots, oldest first.
func (o *MemoryObserver) Snapshots() []*domain.Snapshot {
	o.mu.RLock()
	defer o.mu.RUnlock()

	result := make([]*domain.Snapshot, o.count)
	start := 0
	if o.count == o.capacity {
		start = o.head
	}
	for i := 0; i < o.count; i++ {
		result[i] = o.snapshots[(start+i)%o.capacity]
	}
	return result
}

// Latest returns the most recent snapshot, or nil.
func (o *MemoryObserver) Latest() *domain.Snapshot {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.count == 0 {
		return nil
	}
	return o.snapshots[(o.head-1+o.capacity)%o.capacity]
}

func (o *MemoryObserver) Count() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.count
}
