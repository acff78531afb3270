package tui

import (
	"fmt"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/xoelrdgz/tickerwatch/internal/domain"
	"github.com/xoelrdgz/tickerwatch/internal/ports"
	"github.com/xoelrdgz/tickerwatch/internal/tui/views"
)

const uiTickInterval = 100 * time.Millisecond

// App is the live ticker board. It renders the most recent snapshot handed to
// its Observer; snapshots arriving faster than uiTickInterval coalesce.
type App struct {
	board  *views.Board
	status *views.Status

	ready    bool
	quitting bool
	width    int
	height   int

	pending   *domain.Snapshot
	pendingMu sync.Mutex
	received  int64

	metricsChan chan domain.MetricsSnapshot

	source string
}

func NewApp(source string) *App {
	return &App{
		board:       views.NewBoard(100, 15),
		status:      views.NewStatus(100),
		metricsChan: make(chan domain.MetricsSnapshot, 10),
		source:      source,
	}
}

// SetNearBound sets the predicate used to flag rows trading near their
// 52-week range.
func (a *App) SetNearBound(fn func(domain.StockRecord) bool) { a.board.NearBound = fn }

type tickMsg time.Time
type metricsMsg domain.MetricsSnapshot

func (a *App) Init() tea.Cmd {
	return tea.Batch(tea.EnterAltScreen, a.tick(), a.listenForMetrics())
}

func (a *App) tick() tea.Cmd {
	return tea.Tick(uiTickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (a *App) listenForMetrics() tea.Cmd {
	return func() tea.Msg { return metricsMsg(<-a.metricsChan) }
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			a.quitting = true
			return a, tea.Quit
		case "tab", "s":
			a.board.NextSort()
		case "up", "k":
			a.board.ScrollUp()
		case "down", "j":
			a.board.ScrollDown()
		}
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.ready = true
		a.board.Width = msg.Width - 4
		a.status.Width = msg.Width

		contentHeight := msg.Height - 8
		if contentHeight < 5 {
			contentHeight = 5
		}
		a.board.VisibleCount = contentHeight
	case tickMsg:
		a.applyPending()
		return a, a.tick()
	case metricsMsg:
		a.status.Update(domain.MetricsSnapshot(msg))
		return a, a.listenForMetrics()
	}
	return a, nil
}

func (a *App) applyPending() {
	a.pendingMu.Lock()
	snap := a.pending
	a.pending = nil
	a.pendingMu.Unlock()

	if snap != nil {
		a.board.Update(snap)
	}
}

func (a *App) View() string {
	if a.quitting {
		return "\n  Session terminated.\n\n"
	}
	if !a.ready {
		return "\n  Initializing...\n\n"
	}

	var b strings.Builder

	b.WriteString(a.renderHeader())
	b.WriteString("\n")
	b.WriteString(TextDim.Render(strings.Repeat(HLine, a.width)))
	b.WriteString("\n")
	b.WriteString(a.board.Render())
	b.WriteString("\n")
	b.WriteString(a.status.Render())
	b.WriteString("\n")
	b.WriteString(a.renderHelp())

	return b.String()
}

func (a *App) renderHeader() string {
	title := lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true).Render("TICKERWATCH")

	updated := TextMuted.Render("no data")
	if snap := a.board.Snapshot(); snap != nil {
		updated = TextPrimary.Render(fmt.Sprintf("%s %s", snap.FormattedTime(), snap.Zone))
	}

	return fmt.Sprintf("  %s  %s %s  %s %s",
		title,
		TextDim.Render("SRC:"), a.source,
		TextDim.Render("UPDATED:"), updated)
}

func (a *App) renderHelp() string {
	return TextDim.Render(fmt.Sprintf("  %s [%s]  %s scroll  %s quit",
		TextKey.Render("TAB"), a.board.Sort, TextKey.Render("↑↓"), TextKey.Render("q")))
}

// Observer returns the ports.Observer that feeds this App. Snapshots are
// stored for the next UI tick; the reader is never blocked on rendering.
func (a *App) Observer() ports.Observer { return snapshotFeed{a} }

type snapshotFeed struct{ app *App }

func (f snapshotFeed) Update(snap *domain.Snapshot) error {
	f.app.pendingMu.Lock()
	f.app.pending = snap
	f.app.received++
	f.app.pendingMu.Unlock()
	return nil
}

func (f snapshotFeed) Name() string { return "tui" }

func (a *App) SendMetrics(metrics domain.MetricsSnapshot) {
	select {
	case a.metricsChan <- metrics:
	default:
	}
}

func (a *App) Received() int64 {
	a.pendingMu.Lock()
	defer a.pendingMu.Unlock()
	return a.received
}

func (a *App) Run() error { p := tea.NewProgram(a, tea.WithAltScreen()); _, err := p.Run(); return err }
