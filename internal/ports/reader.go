package ports

import (
	"io"

	"github.com/xoelrdgz/tickerwatch/internal/domain"
)

// Source is a re-openable, seekable ticker feed. Each read opens the source
// afresh and seeks to the reader's stored offset.
type Source interface {
	// Open returns a handle positioned at the start of the source.
	// A missing source is reported as an error and is not retried.
	Open() (io.ReadSeekCloser, error)

	// Name identifies the source for logging and checkpoint keys.
	Name() string
}

// LineParser maps one raw ticker line to a record.
type LineParser interface {
	// Parse returns domain.ErrNoMatch for lines that are not ticker
	// data. Any other error is unexpected and aborts the current read.
	Parse(line string) (domain.StockRecord, error)
	Format() string
}
