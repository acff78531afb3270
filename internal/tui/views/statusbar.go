package views

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/xoelrdgz/tickerwatch/internal/domain"
)

type Status struct {
	Width      int
	Metrics    domain.MetricsSnapshot
	StartTime  time.Time
	lastUpdate time.Time
}

func NewStatus(width int) *Status {
	return &Status{Width: width, StartTime: time.Now()}
}

func (s *Status) Update(metrics domain.MetricsSnapshot) {
	if metrics.SnapshotsDispatched != s.Metrics.SnapshotsDispatched {
		s.lastUpdate = time.Now()
	}
	s.Metrics = metrics
}

func (s *Status) Render() string {
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff41"))
	greenDim := lipgloss.NewStyle().Foreground(lipgloss.Color("#00aa2a"))
	amber := lipgloss.NewStyle().Foreground(lipgloss.Color("#ffb000"))
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("#707070"))
	border := lipgloss.NewStyle().Foreground(lipgloss.Color("#2a2a2a"))

	skipped := green
	if s.Metrics.LinesSkipped > 0 {
		skipped = amber
	}

	sep := border.Render(" │ ")
	items := []string{
		s.heartbeat(green, greenDim, muted),
		muted.Render("SNAP:") + " " + green.Render(fmtLarge(s.Metrics.SnapshotsDispatched)),
		muted.Render("RECS:") + " " + green.Render(fmtLarge(s.Metrics.RecordsParsed)),
		muted.Render("SKIP:") + " " + skipped.Render(fmtLarge(s.Metrics.LinesSkipped)),
		muted.Render("OFFSET:") + " " + green.Render(fmtBytes(s.Metrics.Offset)),
		muted.Render("UP:") + " " + green.Render(fmtUptime(time.Since(s.StartTime).Round(time.Second))),
	}

	line := ""
	for i, item := range items {
		if i > 0 {
			line += sep
		}
		line += item
	}

	return lipgloss.NewStyle().
		Width(s.Width).
		Padding(0, 1).
		Background(lipgloss.Color("#0a0a0a")).
		Render(line)
}

func (s *Status) heartbeat(active, dim, idle lipgloss.Style) string {
	elapsed := time.Since(s.lastUpdate)
	var icon string
	var style lipgloss.Style

	switch {
	case s.lastUpdate.IsZero():
		icon, style = "○", idle
	case elapsed < time.Second:
		icon, style = "●", active.Bold(true)
	case elapsed < 10*time.Second:
		icon, style = "●", dim
	default:
		icon, style = "○", idle
	}

	return lipgloss.NewStyle().Foreground(lipgloss.Color("#707070")).Render("FEED:") + " " + style.Render(icon)
}

func fmtLarge(n int64) string {
	if n >= 1000000 {
		return fmt.Sprintf("%.1fM", float64(n)/1000000)
	}
	if n >= 1000 {
		return fmt.Sprintf("%.1fK", float64(n)/1000)
	}
	return fmt.Sprintf("%d", n)
}

func fmtBytes(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1fMiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1fKiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%dB", n)
	}
}

func fmtUptime(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	sec := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh%02dm", h, m)
	}
	return fmt.Sprintf("%dm%02ds", m, sec)
}
