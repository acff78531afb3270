// Package app implements the snapshot reader and observer registry.
//
// The SnapshotReader owns a byte offset into an append-only ticker log. Each
// ReadSnapshot call resumes at that offset, scans forward until one complete
// block (header, records, blank line) has been read, hands it to the
// registry, and only then commits the new offset.
package app

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/xoelrdgz/tickerwatch/internal/domain"
	"github.com/xoelrdgz/tickerwatch/internal/ports"
)

// SnapshotReader is a resumable scanner over a ports.Source.
//
// Thread Safety: ReadSnapshot calls are serialized by mu. Offset and
// AddProcessingObserver do not take mu, so observers may call them from
// Update. Calling ReadSnapshot or Drain from Update deadlocks.
type SnapshotReader struct {
	parser   ports.LineParser
	registry *ObserverRegistry
	metrics  *domain.ReaderMetrics
	store    ports.OffsetStore

	processed []ports.ProcessingObserver
	procMu    sync.RWMutex

	offset atomic.Int64
	mu     sync.Mutex
}

// ReaderConfig wires a SnapshotReader. Parser and Registry are required.
type ReaderConfig struct {
	Parser   ports.LineParser
	Registry *ObserverRegistry
	Metrics  *domain.ReaderMetrics // Optional, created when nil
	Store    ports.OffsetStore     // Optional checkpoint store
}

func NewSnapshotReader(config ReaderConfig) *SnapshotReader {
	if config.Metrics == nil {
		config.Metrics = domain.NewReaderMetrics()
	}
	if config.Registry == nil {
		config.Registry = NewObserverRegistry()
	}
	return &SnapshotReader{
		parser:   config.Parser,
		registry: config.Registry,
		metrics:  config.Metrics,
		store:    config.Store,
	}
}

// Restore loads the committed offset for src from the checkpoint store.
func (r *SnapshotReader) Restore(src ports.Source) error {
	if r.store == nil {
		return nil
	}
	offset, err := r.store.Load(src.Name())
	if err != nil {
		return fmt.Errorf("load checkpoint for %s: %w", src.Name(), err)
	}

	r.mu.Lock()
	r.offset.Store(offset)
	r.mu.Unlock()
	r.metrics.SetOffset(offset)

	log.Info().Str("source", src.Name()).Int64("offset", offset).Msg("Restored reader offset")
	return nil
}

// AddProcessingObserver takes effect from the next ReadSnapshot call.
func (r *SnapshotReader) AddProcessingObserver(o ports.ProcessingObserver) {
	r.procMu.Lock()
	defer r.procMu.Unlock()
	r.processed = append(r.processed, o)
}

func (r *SnapshotReader) Registry() *ObserverRegistry {
	return r.registry
}

func (r *SnapshotReader) Metrics() *domain.ReaderMetrics {
	return r.metrics
}

// Offset returns the committed byte offset.
func (r *SnapshotReader) Offset() int64 {
	return r.offset.Load()
}

// ReadSnapshot dispatches at most one snapshot from src.
//
// Returns:
//   - true, nil when a snapshot was delivered and the offset advanced
//   - false, nil when no complete block follows the offset
//   - false, err when the source cannot be read, a header is malformed, a
//     line fails numeric conversion, or an observer fails; the offset is
//     left unchanged in every error case
func (r *SnapshotReader) ReadSnapshot(src ports.Source) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.metrics.IncrementReads()

	r.procMu.RLock()
	processed := append([]ports.ProcessingObserver(nil), r.processed...)
	r.procMu.RUnlock()
	observeLine := func(result string) {
		for _, o := range processed {
			o.IncrementLinesProcessedByResult(result)
		}
	}

	start := r.offset.Load()

	f, err := src.Open()
	if err != nil {
		return false, fmt.Errorf("open source %s: %w", src.Name(), err)
	}
	defer f.Close()

	if _, err := f.Seek(start, io.SeekStart); err != nil {
		return false, fmt.Errorf("seek %s to %d: %w", src.Name(), start, err)
	}

	br := bufio.NewReader(f)
	pos := start

	var (
		at      time.Time
		zone    string
		stamped bool
		records []domain.StockRecord
	)

	for {
		raw, err := br.ReadString('\n')
		if err != nil {
			// An unterminated tail is still being written; leave it for the next call.
			if errors.Is(err, io.EOF) {
				return false, nil
			}
			return false, fmt.Errorf("read %s at %d: %w", src.Name(), pos, err)
		}
		pos += int64(len(raw))
		line := strings.TrimSpace(raw)

		switch {
		case domain.IsHeader(line):
			at, zone, err = domain.ParseHeader(line)
			if err != nil {
				return false, fmt.Errorf("%s at %d: %w", src.Name(), pos-int64(len(raw)), err)
			}
			stamped = true
			observeLine(domain.LineResultHeader)

		case line == "":
			observeLine(domain.LineResultBlank)
			if !stamped || len(records) == 0 {
				continue
			}
			snap := domain.NewSnapshot(at, zone, records)
			if err := r.registry.Notify(snap); err != nil {
				return false, err
			}
			r.commit(src, snap, pos, processed)
			return true, nil

		default:
			rec, err := r.parser.Parse(line)
			if err != nil {
				if errors.Is(err, domain.ErrNoMatch) {
					log.Debug().Str("line", line).Msg("Skipping non-ticker line")
					r.metrics.IncrementSkipped()
					observeLine(domain.LineResultSkipped)
					continue
				}
				return false, fmt.Errorf("%s at %d: %w", src.Name(), pos-int64(len(raw)), err)
			}
			records = append(records, rec)
			observeLine(domain.LineResultRecord)
		}
	}
}

// Drain reads snapshots until none is left or limit is reached (limit <= 0
// means no limit). It returns the number dispatched.
func (r *SnapshotReader) Drain(src ports.Source, limit int) (int, error) {
	n := 0
	for limit <= 0 || n < limit {
		ok, err := r.ReadSnapshot(src)
		if err != nil {
			return n, err
		}
		if !ok {
			break
		}
		n++
	}
	return n, nil
}

func (r *SnapshotReader) commit(src ports.Source, snap *domain.Snapshot, pos int64, processed []ports.ProcessingObserver) {
	r.offset.Store(pos)
	r.metrics.RecordDispatch(snap, pos)
	for _, o := range processed {
		o.SetOffset(pos)
	}

	if r.store != nil {
		if err := r.store.Save(src.Name(), pos); err != nil {
			log.Error().Err(err).Str("source", src.Name()).Int64("offset", pos).Msg("Failed to save checkpoint")
		}
	}

	log.Debug().
		Str("source", src.Name()).
		Time("snapshot", snap.Time).
		Int("records", snap.Len()).
		Int64("offset", pos).
		Msg("Snapshot dispatched")
}
