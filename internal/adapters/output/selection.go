package output

import (
	"bufio"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/xoelrdgz/tickerwatch/internal/domain"
)

// DefaultSelection is the watchlist used when none is configured.
var DefaultSelection = []string{"ALL", "BA", "BC", "GBEL", "KFT", "MCD", "TR", "WAG"}

// SelectionObserver copies the full record of every watched ticker, in file
// order. The watchlist can be swapped while snapshots are being delivered.
type SelectionObserver struct {
	sink    *FileSink
	tickers atomic.Pointer[map[string]struct{}]
}

func NewSelectionObserver(path string, tickers []string) (*SelectionObserver, error) {
	sink, err := NewFileSink(path)
	if err != nil {
		return nil, fmt.Errorf("selection observer: %w", err)
	}
	o := &SelectionObserver{sink: sink}
	o.SetTickers(tickers)
	return o, nil
}

// SetTickers replaces the watchlist. Tickers are upper-cased.
func (o *SelectionObserver) SetTickers(tickers []string) {
	set := make(map[string]struct{}, len(tickers))
	for _, t := range tickers {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t != "" {
			set[t] = struct{}{}
		}
	}
	o.tickers.Store(&set)
}

// Tickers returns the current watchlist, sorted.
func (o *SelectionObserver) Tickers() []string {
	set := *o.tickers.Load()
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func (o *SelectionObserver) Update(snap *domain.Snapshot) error {
	set := *o.tickers.Load()
	return o.sink.WriteBlock(func(w *bufio.Writer) error {
		fmt.Fprintf(w, "Last updated %s %s:\n", snap.FormattedTime(), snap.Zone)
		for _, r := range snap.Records {
			if _, ok := set[r.Ticker]; ok {
				w.WriteString(r.String())
				w.WriteByte('\n')
			}
		}
		_, err := w.WriteString("\n")
		return err
	})
}

func (o *SelectionObserver) Name() string { return "selection" }

func (o *SelectionObserver) Close() error { return o.sink.Close() }
