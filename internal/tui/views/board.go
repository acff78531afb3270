package views

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/xoelrdgz/tickerwatch/internal/domain"
	"github.com/xoelrdgz/tickerwatch/pkg/sanitize"
)

// SortMode orders board rows.
type SortMode int

const (
	SortFile SortMode = iota
	SortTicker
	SortChange
	sortModeCount
)

func (m SortMode) String() string {
	switch m {
	case SortTicker:
		return "TICKER"
	case SortChange:
		return "CHANGE"
	default:
		return "FILE"
	}
}

// Board renders the latest snapshot as a scrollable table.
type Board struct {
	Width        int
	VisibleCount int
	Sort         SortMode
	NearBound    func(domain.StockRecord) bool

	snapshot *domain.Snapshot
	rows     []domain.StockRecord
	scroll   int
}

func NewBoard(width, visible int) *Board {
	return &Board{Width: width, VisibleCount: visible}
}

func (b *Board) Update(snap *domain.Snapshot) {
	b.snapshot = snap
	b.resort()
}

func (b *Board) NextSort() {
	b.Sort = (b.Sort + 1) % sortModeCount
	b.resort()
}

func (b *Board) resort() {
	if b.snapshot == nil {
		b.rows = nil
		return
	}
	b.rows = append(b.rows[:0], b.snapshot.Records...)
	switch b.Sort {
	case SortTicker:
		sort.SliceStable(b.rows, func(i, j int) bool { return b.rows[i].Ticker < b.rows[j].Ticker })
	case SortChange:
		sort.SliceStable(b.rows, func(i, j int) bool { return b.rows[i].ChangePercent > b.rows[j].ChangePercent })
	}
	b.clampScroll()
}

func (b *Board) ScrollUp() {
	if b.scroll > 0 {
		b.scroll--
	}
}

func (b *Board) ScrollDown() {
	b.scroll++
	b.clampScroll()
}

func (b *Board) clampScroll() {
	limit := len(b.rows) - b.VisibleCount
	if limit < 0 {
		limit = 0
	}
	if b.scroll > limit {
		b.scroll = limit
	}
}

func (b *Board) Snapshot() *domain.Snapshot {
	return b.snapshot
}

func (b *Board) Rows() []domain.StockRecord {
	return b.rows
}

func (b *Board) Render() string {
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("#707070"))
	if b.snapshot == nil {
		return muted.Render("  Waiting for first snapshot...")
	}

	ticker := lipgloss.NewStyle().Foreground(lipgloss.Color("#00b8ff")).Bold(true).Width(7)
	name := lipgloss.NewStyle().Width(26)
	num := lipgloss.NewStyle().Width(10).Align(lipgloss.Right)
	up := lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff41"))
	down := lipgloss.NewStyle().Foreground(lipgloss.Color("#ff3333"))
	amber := lipgloss.NewStyle().Foreground(lipgloss.Color("#ffb000")).Bold(true)

	var sb strings.Builder
	sb.WriteString(muted.Render(fmt.Sprintf("  %-7s%-26s%10s%10s%10s%10s%10s", "TICKER", "COMPANY", "PRICE", "CHG", "CHG%", "52W HI", "52W LO")))
	sb.WriteString("\n")

	end := b.scroll + b.VisibleCount
	if b.VisibleCount <= 0 || end > len(b.rows) {
		end = len(b.rows)
	}
	for _, r := range b.rows[b.scroll:end] {
		change := up
		if r.ChangeDollar < 0 {
			change = down
		}
		marker := "  "
		if b.NearBound != nil && b.NearBound(r) {
			marker = amber.Render("▲ ")
		}
		sb.WriteString(marker)
		sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			ticker.Render(r.Ticker),
			name.Render(sanitize.String(r.Company, 24)),
			num.Render(fmt.Sprintf("%.2f", r.CurrentPrice)),
			change.Inherit(num).Render(fmt.Sprintf("%+.2f", r.ChangeDollar)),
			change.Inherit(num).Render(fmt.Sprintf("%+.2f%%", r.ChangePercent)),
			num.Render(fmt.Sprintf("%.2f", r.High52)),
			num.Render(fmt.Sprintf("%.2f", r.Low52)),
		))
		sb.WriteString("\n")
	}
	return sb.String()
}
