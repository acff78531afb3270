package output

import (
	"bufio"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/xoelrdgz/tickerwatch/internal/domain"
)

// AverageObserver appends "<time>, Average price: <avg>" per snapshot. The
// mean is computed in decimal and rounded half away from zero to cents, so
// an exact mean of 0.125 prints as 0.13 (binary float formatting with
// half-to-even would print 0.12).
type AverageObserver struct {
	sink *FileSink
}

func NewAverageObserver(path string) (*AverageObserver, error) {
	sink, err := NewFileSink(path)
	if err != nil {
		return nil, fmt.Errorf("average observer: %w", err)
	}
	return &AverageObserver{sink: sink}, nil
}

// AveragePrice returns the mean current price of the snapshot's records.
func AveragePrice(records []domain.StockRecord) decimal.Decimal {
	if len(records) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, r := range records {
		sum = sum.Add(decimal.NewFromFloat(r.CurrentPrice))
	}
	return sum.Div(decimal.NewFromInt(int64(len(records))))
}

func (o *AverageObserver) Update(snap *domain.Snapshot) error {
	if snap.Len() == 0 {
		return nil
	}
	avg := AveragePrice(snap.Records)
	return o.sink.WriteBlock(func(w *bufio.Writer) error {
		_, err := fmt.Fprintf(w, "%s, Average price: %s\n", snap.FormattedTime(), avg.StringFixed(2))
		return err
	})
}

func (o *AverageObserver) Name() string { return "average" }

func (o *AverageObserver) Close() error { return o.sink.Close() }
