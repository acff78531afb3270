package input

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/xoelrdgz/tickerwatch/internal/domain"
)

const (
	unsigned = `(\d+(?:\.\d*)?|\.\d+)`
	signed   = `([-+]?(?:\d+(?:\.\d*)?|\.\d+))`
)

// tickerLine matches company, ticker, price, three signed change columns,
// then 52-week high, 52-week low and P/E. Trailing text is ignored.
var tickerLine = regexp.MustCompile(`^(.+?)\s+([A-Z]+)\s+` + unsigned +
	`\s+` + signed + `\s+` + signed + `\s+` + signed +
	`\s+` + unsigned + `\s+` + unsigned + `\s+` + unsigned)

type TickerLineParser struct{}

func NewTickerLineParser() *TickerLineParser {
	return &TickerLineParser{}
}

func (p *TickerLineParser) Parse(line string) (domain.StockRecord, error) {
	m := tickerLine.FindStringSubmatch(line)
	if m == nil {
		return domain.StockRecord{}, domain.ErrNoMatch
	}

	var nums [7]float64
	for i := range nums {
		v, err := strconv.ParseFloat(m[i+3], 64)
		if err != nil {
			return domain.StockRecord{}, fmt.Errorf("ticker %s column %d: %w", m[2], i+3, err)
		}
		nums[i] = v
	}

	return domain.StockRecord{
		Company:       strings.Clone(m[1]),
		Ticker:        strings.Clone(m[2]),
		CurrentPrice:  nums[0],
		ChangeDollar:  nums[1],
		ChangePercent: nums[2],
		YTDChange:     nums[3],
		High52:        nums[4],
		Low52:         nums[5],
		PERatio:       nums[6],
	}, nil
}

func (p *TickerLineParser) Format() string {
	return "ticker"
}

func (p *TickerLineParser) Validate(line string) bool {
	return tickerLine.MatchString(line)
}
