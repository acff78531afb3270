package output

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/xoelrdgz/tickerwatch/internal/domain"
	"github.com/xoelrdgz/tickerwatch/pkg/sanitize"
)

var (
	consoleHeader = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff41")).Bold(true)
	consoleMuted  = lipgloss.NewStyle().Foreground(lipgloss.Color("#707070"))
	consoleUp     = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff41"))
	consoleDown   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff3333"))
	consoleTicker = lipgloss.NewStyle().Foreground(lipgloss.Color("#00b8ff")).Bold(true).Width(6)
	consoleName   = lipgloss.NewStyle().Width(28)
	consoleNum    = lipgloss.NewStyle().Width(10).Align(lipgloss.Right)
)

// ConsoleObserver prints each snapshot as a styled table.
type ConsoleObserver struct {
	out io.Writer
	mu  sync.Mutex
}

func NewConsoleObserver(out io.Writer) *ConsoleObserver {
	return &ConsoleObserver{out: out}
}

func (o *ConsoleObserver) Update(snap *domain.Snapshot) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, err := io.WriteString(o.out, RenderSnapshot(snap))
	return err
}

func (o *ConsoleObserver) Name() string { return "console" }

// RenderSnapshot formats snap as a header plus one row per record.
func RenderSnapshot(snap *domain.Snapshot) string {
	var b strings.Builder

	b.WriteString(consoleHeader.Render(fmt.Sprintf("%s %s", snap.FormattedTime(), snap.Zone)))
	b.WriteString(consoleMuted.Render(fmt.Sprintf("  %d tickers", snap.Len())))
	b.WriteString("\n")

	for _, r := range snap.Records {
		change := consoleUp
		if r.ChangeDollar < 0 {
			change = consoleDown
		}
		row := lipgloss.JoinHorizontal(lipgloss.Top,
			consoleTicker.Render(r.Ticker),
			consoleName.Render(sanitize.String(r.Company, 26)),
			consoleNum.Render(fmt.Sprintf("%.2f", r.CurrentPrice)),
			change.Inherit(consoleNum).Render(fmt.Sprintf("%+.2f", r.ChangeDollar)),
			change.Inherit(consoleNum).Render(fmt.Sprintf("%+.2f%%", r.ChangePercent)),
		)
		b.WriteString(row)
		b.WriteString("\n")
	}
	return b.String()
}
