package domain

import (
	"sync"
	"sync/atomic"
	"time"
)

// Line classification results reported to processing observers.
const (
	LineResultRecord  = "record"
	LineResultHeader  = "header"
	LineResultBlank   = "blank"
	LineResultSkipped = "skipped"
)

type MetricsSnapshot struct {
	SnapshotsDispatched int64
	RecordsParsed       int64
	LinesSkipped        int64
	Reads               int64
	Offset              int64
	LastSnapshotTime    time.Time
	LastDispatch        time.Time
	Uptime              time.Duration
	StartTime           time.Time
}

// ReaderMetrics accumulates counters for the snapshot reader. Counters are
// atomic; the timestamps are guarded by mu.
type ReaderMetrics struct {
	snapshots atomic.Int64
	records   atomic.Int64
	skipped   atomic.Int64
	reads     atomic.Int64
	offset    atomic.Int64

	lastSnapshotTime time.Time
	lastDispatch     time.Time
	StartTime        time.Time

	mu sync.RWMutex
}

func NewReaderMetrics() *ReaderMetrics {
	return &ReaderMetrics{
		StartTime: time.Now(),
	}
}

func (m *ReaderMetrics) IncrementReads() {
	m.reads.Add(1)
}

func (m *ReaderMetrics) IncrementSkipped() {
	m.skipped.Add(1)
}

// RecordDispatch notes a committed snapshot and the offset it advanced to.
func (m *ReaderMetrics) RecordDispatch(snap *Snapshot, offset int64) {
	m.snapshots.Add(1)
	m.records.Add(int64(snap.Len()))
	m.offset.Store(offset)

	m.mu.Lock()
	m.lastSnapshotTime = snap.Time
	m.lastDispatch = time.Now()
	m.mu.Unlock()
}

func (m *ReaderMetrics) SetOffset(offset int64) {
	m.offset.Store(offset)
}

func (m *ReaderMetrics) Offset() int64 {
	return m.offset.Load()
}

func (m *ReaderMetrics) Snapshots() int64 {
	return m.snapshots.Load()
}

func (m *ReaderMetrics) GetSnapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return MetricsSnapshot{
		SnapshotsDispatched: m.snapshots.Load(),
		RecordsParsed:       m.records.Load(),
		LinesSkipped:        m.skipped.Load(),
		Reads:               m.reads.Load(),
		Offset:              m.offset.Load(),
		LastSnapshotTime:    m.lastSnapshotTime,
		LastDispatch:        m.lastDispatch,
		Uptime:              time.Since(m.StartTime),
		StartTime:           m.StartTime,
	}
}
