package domain

import (
	"strconv"
	"strings"
	"time"
)

const (
	// HeaderPrefix marks the first line of every snapshot block.
	HeaderPrefix = "Last updated "
	// HeaderLayout is the time layout that follows HeaderPrefix, before the zone label.
	HeaderLayout = "Jan 2, 2006 3:04:05 PM"
	// ZoneET is the only zone label the ticker feed emits.
	ZoneET = "ET"

	// DisplayLayout renders a snapshot time in observer output.
	DisplayLayout = "2006-01-02 15:04:05"
)

// StockRecord is one parsed ticker line. Values are copied, never shared.
type StockRecord struct {
	Company       string  `json:"company"`
	Ticker        string  `json:"ticker"`
	CurrentPrice  float64 `json:"current_price"`
	ChangeDollar  float64 `json:"change_dollar"`
	ChangePercent float64 `json:"change_percent"`
	YTDChange     float64 `json:"ytd_change"`
	High52        float64 `json:"high_52"`
	Low52         float64 `json:"low_52"`
	PERatio       float64 `json:"pe_ratio"`
}

// Fields renders the record in input column order, company first.
func (r StockRecord) Fields() []string {
	return []string{
		r.Company,
		r.Ticker,
		FormatNumber(r.CurrentPrice),
		FormatNumber(r.ChangeDollar),
		FormatNumber(r.ChangePercent),
		FormatNumber(r.YTDChange),
		FormatNumber(r.High52),
		FormatNumber(r.Low52),
		FormatNumber(r.PERatio),
	}
}

func (r StockRecord) String() string {
	return strings.Join(r.Fields(), " ")
}

// Snapshot is one timestamped batch of records bounded by a header line and a
// blank terminator. Time is a naive wall-clock reading; Zone only carries the
// label printed after it.
type Snapshot struct {
	Time    time.Time     `json:"time"`
	Zone    string        `json:"zone"`
	Records []StockRecord `json:"records"`
}

func NewSnapshot(at time.Time, zone string, records []StockRecord) *Snapshot {
	return &Snapshot{Time: at, Zone: zone, Records: records}
}

func (s *Snapshot) Len() int {
	return len(s.Records)
}

// FormattedTime renders Time with DisplayLayout.
func (s *Snapshot) FormattedTime() string {
	return s.Time.Format(DisplayLayout)
}

// Find returns the first record with the given ticker.
func (s *Snapshot) Find(ticker string) (StockRecord, bool) {
	for _, r := range s.Records {
		if r.Ticker == ticker {
			return r, true
		}
	}
	return StockRecord{}, false
}

// FormatNumber prints the shortest representation of f that round-trips,
// always keeping a fractional part ("10" becomes "10.0").
func FormatNumber(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".NI") {
		s += ".0"
	}
	return s
}
