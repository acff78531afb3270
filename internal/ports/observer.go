// Package ports defines the interfaces between the snapshot reader core and
// its adapters (sources, observers, checkpoint stores).
//
// Design Principles:
//   - Interfaces are small and focused
//   - Dependencies flow inward (domain has no external dependencies)
//   - Implementations provided by adapters in internal/adapters/
package ports

import "github.com/xoelrdgz/tickerwatch/internal/domain"

// Observer receives every snapshot the reader completes.
//
// Implementations:
//   - AverageObserver: average price per snapshot
//   - HighLowObserver: tickers near their 52-week range bounds
//   - SelectionObserver: full lines for a fixed ticker watchlist
//   - ConsoleObserver, JSONObserver, PrometheusMetrics, the TUI feed
type Observer interface {
	// Update is called synchronously, in registration order, while the
	// reader holds its read lock. It may query the reader's offset but must
	// not start another read.
	//
	// Parameters:
	//   - snap: The completed snapshot, shared with every other observer.
	//     Implementations MUST NOT modify it.
	//
	// Returns:
	//   - Error aborts delivery to the observers registered after this one
	//     and is returned to the caller of the read.
	Update(snap *domain.Snapshot) error

	// Name returns the observer's identifier for logging and metrics.
	Name() string
}

// ProcessingObserver tracks how every scanned line was classified, not only
// those that end up in a snapshot.
type ProcessingObserver interface {
	// IncrementLinesProcessedByResult records the classification of one line
	// (see domain.LineResult* constants).
	IncrementLinesProcessedByResult(result string)

	// SetOffset reports the reader's committed offset after a dispatch.
	SetOffset(offset int64)
}
