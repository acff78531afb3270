package output

import (
	"bufio"
	"fmt"
	"math"

	"github.com/xoelrdgz/tickerwatch/internal/domain"
)

const DefaultHighLowThreshold = 0.01

// HighLowObserver reports tickers whose price is within a relative threshold
// of their 52-week high or low. A zero bound never matches.
type HighLowObserver struct {
	sink      *FileSink
	threshold float64
}

func NewHighLowObserver(path string, threshold float64) (*HighLowObserver, error) {
	if threshold <= 0 {
		threshold = DefaultHighLowThreshold
	}
	sink, err := NewFileSink(path)
	if err != nil {
		return nil, fmt.Errorf("high/low observer: %w", err)
	}
	return &HighLowObserver{sink: sink, threshold: threshold}, nil
}

// NearBound reports whether price lies within threshold of bound, relative to bound.
func NearBound(price, bound, threshold float64) bool {
	if bound == 0 {
		return false
	}
	return math.Abs(price-bound)/bound <= threshold
}

func (o *HighLowObserver) Matches(r domain.StockRecord) bool {
	return NearBound(r.CurrentPrice, r.High52, o.threshold) ||
		NearBound(r.CurrentPrice, r.Low52, o.threshold)
}

func (o *HighLowObserver) Update(snap *domain.Snapshot) error {
	return o.sink.WriteBlock(func(w *bufio.Writer) error {
		fmt.Fprintf(w, "Last updated %s %s\n", snap.FormattedTime(), snap.Zone)
		for _, r := range snap.Records {
			if !o.Matches(r) {
				continue
			}
			fmt.Fprintf(w, "%s: %s, %s, %s\n", r.Ticker,
				domain.FormatNumber(r.CurrentPrice),
				domain.FormatNumber(r.High52),
				domain.FormatNumber(r.Low52))
		}
		_, err := w.WriteString("\n")
		return err
	})
}

func (o *HighLowObserver) Name() string { return "highlow" }

func (o *HighLowObserver) Close() error { return o.sink.Close() }
