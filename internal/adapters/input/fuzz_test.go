package input_test

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/xoelrdgz/tickerwatch/internal/adapters/input"
	"github.com/xoelrdgz/tickerwatch/internal/domain"
)

var tickerSymbol = regexp.MustCompile(`^[A-Z]+$`)

func FuzzTickerLineParser(f *testing.F) {
	parser := input.NewTickerLineParser()

	seeds := []string{
		"Alcoa Inc AA 10.92 0.12 1.11 -29.26 18.47 10.80 11.7",
		"Wal-Mart Stores Inc WMT 51.50 -0.30 -0.58 -4.51 57.90 48.31 11.9",
		"McDonald's Corp MCD 88.53 +0.61 +0.69 15.37 91.22 72.14 18.2",

		"Dot Co DOT . 0.1 1 2 3 4 5",
		"Trailing Dot TD 5. 0.1 1 2 5. 4. 5.",
		"Bare Fraction BF .5 -.5 +.5 -0.0 .75 .25 .1",
		"Signed Bounds SB 10 1 1 1 -12 +8 15",

		"Huge Price HP " + strings.Repeat("9", 400) + " 0.1 1 2 3 4 5",
		strings.Repeat("A", 10000) + " LONG 1 1 1 1 1 1 1",
		"Long Ticker " + strings.Repeat("Z", 10000) + " 1 1 1 1 1 1 1",

		"Last updated Oct 15, 2010 4:01:59 PM ET",
		"Acme Corp ACME 10.00 0.10 1.0 5.0 12.00 8.00 15.0\r\n",
		"Acme\tCorp\tACME\t10\t0\t0\t0\t12\t8\t15",
		"Acme Corp ACME 10.00 0.10 1.0 5.0 12.00 8.00",
		"Acme Corp acme 10.00 0.10 1.0 5.0 12.00 8.00 15.0",

		"\x00\x01\x02\x03 ACME 1 1 1 1 1 1 1",
		"\xff\xfe\xfd\xfc",
		"Bad \xff Utf8 BU 1 1 1 1 1 1 1",
		"\x1b[31mRed\x1b[0m RED 1 1 1 1 1 1 1",

		"",
		" ",
		"\n",
		"ACME",
	}

	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, line string) {
		defer func() {
			if r := recover(); r != nil {
				t.Fatalf("ticker parser panicked on input %q: %v", truncate(line, 100), r)
			}
		}()

		rec, err := parser.Parse(line)
		valid := parser.Validate(line)

		switch {
		case err == nil:
			if !tickerSymbol.MatchString(rec.Ticker) {
				t.Errorf("ticker %q is not upper-case letters", truncate(rec.Ticker, 40))
			}
			if rec.Company == "" {
				t.Errorf("empty company for %q", truncate(line, 100))
			}
			if !valid {
				t.Errorf("Validate rejected a line Parse accepted: %q", truncate(line, 100))
			}
		case errors.Is(err, domain.ErrNoMatch):
			if valid {
				t.Errorf("Validate accepted a line Parse did not match: %q", truncate(line, 100))
			}
		case errors.Is(err, strconv.ErrRange):
			// Matching line with a number beyond float64.
			if !valid {
				t.Errorf("range error on a line Validate rejected: %q", truncate(line, 100))
			}
		default:
			t.Errorf("unexpected error %v for %q", err, truncate(line, 100))
		}
	})
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
