// Package monitor is a read-only terminal dashboard over the posting store:
// per-source health on the left, recent postings on the right. It runs out
// of process from the pipeline and only reads.
package monitor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"jobscout/internal/model"
)

// Lines per posting item in the list view (title + subtitle + blank
// separator).
const postingItemHeight = 3

const refreshEvery = 2 * time.Second

type viewState int

const (
	viewList viewState = iota
	viewDetail
)

var (
	activeBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("39")) // bright blue

	inactiveBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("240")) // dim gray

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Foreground(lipgloss.Color("39"))

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	postingTitleStyle = lipgloss.NewStyle().
				Bold(true)

	postingSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245"))

	selectedTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")). // bright white
				Background(lipgloss.Color("24"))  // dark blue bg

	selectedSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252")).
				Background(lipgloss.Color("24"))

	detailLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Width(14)

	detailValueStyle = lipgloss.NewStyle()

	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				MarginBottom(1)

	bodyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	healthyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	degradedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	downStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

type tickMsg time.Time

// refreshMsg carries a fresh read of both store surfaces.
type refreshMsg struct {
	health   []model.SourceHealth
	postings []model.EnrichedPosting
	err      error
}

type monitorModel struct {
	store       model.PostingStore
	healthStore model.HealthStore
	window      time.Duration

	health   []model.SourceHealth
	postings []model.EnrichedPosting
	loadErr  string

	healthViewport  viewport.Model
	postingViewport viewport.Model
	cursor          int
	width           int
	height          int
	ready           bool

	view           viewState
	detailPosting  model.EnrichedPosting
	detailViewport viewport.Model
}

func (m monitorModel) Init() tea.Cmd {
	return tea.Batch(m.refreshCmd(), tickCmd())
}

func tickCmd() tea.Cmd {
	return tea.Tick(refreshEvery, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m monitorModel) refreshCmd() tea.Cmd {
	store, healthStore, window := m.store, m.healthStore, m.window
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), refreshEvery)
		defer cancel()

		health, err := healthStore.ListHealth(ctx)
		if err != nil {
			return refreshMsg{err: err}
		}
		postings, err := store.ListRecent(ctx, time.Now().Add(-window))
		if err != nil {
			return refreshMsg{err: err}
		}
		return refreshMsg{health: health, postings: postings}
	}
}

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		if m.view == viewDetail {
			m.detailViewport.Width = m.width - 4
			m.detailViewport.Height = m.height - 4
			m.detailViewport.SetContent(m.renderDetail())
		}
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.refreshCmd(), tickCmd())

	case refreshMsg:
		if msg.err != nil {
			m.loadErr = msg.err.Error()
			return m, nil
		}
		m.loadErr = ""
		m.health = msg.health
		m.postings = msg.postings
		if m.cursor >= len(m.postings) {
			m.cursor = max(len(m.postings)-1, 0)
		}
		m.recalcContent()
		return m, nil

	case tea.KeyMsg:
		if m.view == viewDetail {
			return m.updateDetailView(msg)
		}
		return m.updateListView(msg)
	}

	return m, nil
}

func (m monitorModel) updateListView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		m.cursor = clamp(m.cursor-1, 0, max(len(m.postings)-1, 0))
		m.recalcContent()
		m.ensureCursorVisible()
		return m, nil
	case "down", "j":
		m.cursor = clamp(m.cursor+1, 0, max(len(m.postings)-1, 0))
		m.recalcContent()
		m.ensureCursorVisible()
		return m, nil
	case "enter":
		if len(m.postings) == 0 {
			return m, nil
		}
		m.view = viewDetail
		m.detailPosting = m.postings[m.cursor]
		m.detailViewport = viewport.New(m.width-4, m.height-4)
		m.detailViewport.SetContent(m.renderDetail())
		return m, nil
	}

	var cmd tea.Cmd
	m.postingViewport, cmd = m.postingViewport.Update(msg)
	return m, cmd
}

func (m monitorModel) updateDetailView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc", "backspace":
		m.view = viewList
		return m, nil
	}

	var cmd tea.Cmd
	m.detailViewport, cmd = m.detailViewport.Update(msg)
	return m, cmd
}

func (m *monitorModel) ensureCursorVisible() {
	cursorTop := m.cursor * postingItemHeight
	cursorBottom := cursorTop + postingItemHeight - 1

	if cursorTop < m.postingViewport.YOffset {
		m.postingViewport.SetYOffset(cursorTop)
	} else if cursorBottom >= m.postingViewport.YOffset+m.postingViewport.Height {
		m.postingViewport.SetYOffset(cursorBottom - m.postingViewport.Height + 1)
	}
}

func (m *monitorModel) recalcLayout() {
	// Health pane takes a third, postings the rest; 2 border chars per
	// pane + 1 gap between panes.
	healthWidth := max((m.width-5)/3, 24)
	postingWidth := max(m.width-5-healthWidth, 30)

	// Header (1 line) + border top/bottom (2) + status bar (1) = 4 lines
	// overhead.
	paneHeight := max(m.height-4, 5)

	if !m.ready {
		m.healthViewport = viewport.New(healthWidth, paneHeight)
		m.postingViewport = viewport.New(postingWidth, paneHeight)
		m.ready = true
	} else {
		m.healthViewport.Width = healthWidth
		m.healthViewport.Height = paneHeight
		m.postingViewport.Width = postingWidth
		m.postingViewport.Height = paneHeight
	}

	m.recalcContent()
}

func (m *monitorModel) recalcContent() {
	m.healthViewport.SetContent(renderHealth(m.health))
	m.postingViewport.SetContent(renderPostings(m.postings, m.cursor))
}

func (m monitorModel) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.view == viewDetail {
		return m.viewDetail()
	}
	return m.viewList()
}

func (m monitorModel) viewList() string {
	leftHeader := headerStyle.Render(fmt.Sprintf(" Sources (%d)", len(m.health)))
	rightHeader := headerStyle.Render(fmt.Sprintf(" Recent Postings (%d)", len(m.postings)))

	headerRow := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(m.healthViewport.Width+2).Render(leftHeader),
		" ",
		lipgloss.NewStyle().Width(m.postingViewport.Width+2).Render(rightHeader),
	)

	panes := lipgloss.JoinHorizontal(lipgloss.Top,
		inactiveBorderStyle.Width(m.healthViewport.Width).Render(m.healthViewport.View()),
		" ",
		activeBorderStyle.Width(m.postingViewport.Width).Render(m.postingViewport.View()),
	)

	statusText := fmt.Sprintf(" refreshed every %s    ↑/↓ cursor  Enter detail  q quit", refreshEvery)
	if m.loadErr != "" {
		statusText = " " + errorStyle.Render("⚠ "+m.loadErr)
	}
	statusBar := statusBarStyle.Width(m.width).Render(statusText)

	return headerRow + "\n" + panes + "\n" + statusBar
}

func (m monitorModel) viewDetail() string {
	title := detailTitleStyle.Render("Posting Details")
	content := activeBorderStyle.Width(m.width - 2).Render(m.detailViewport.View())
	statusBar := statusBarStyle.Width(m.width).Render(" esc/backspace back  ↑/↓ scroll  q quit")
	return title + "\n" + content + "\n" + statusBar
}

func (m monitorModel) renderDetail() string {
	p := m.detailPosting
	var b strings.Builder

	addField := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(detailLabelStyle.Render(label))
		b.WriteString(detailValueStyle.Render(value))
		b.WriteByte('\n')
	}

	addField("Title", p.Title)
	addField("Source", string(p.Source))
	addField("Author", p.Author)
	addField("URL", p.URL)
	addField("Created", p.CreatedAt.Local().Format("2006-01-02 15:04 MST"))
	addField("Discovered", p.DiscoveredAt.Local().Format("2006-01-02 15:04 MST"))

	b.WriteByte('\n')
	addField("Salary", formatSalary(p.Salary))
	addField("Level", string(p.Experience))
	addField("Location", formatLocation(p))
	addField("Skills", strings.Join(p.Skills, ", "))
	addField("Sentiment", fmt.Sprintf("%.2f", p.SentimentScore))
	addField("Priority", fmt.Sprintf("%d", p.PriorityScore))
	if len(p.RedFlags) > 0 {
		b.WriteString(detailLabelStyle.Render("Red Flags"))
		b.WriteString(downStyle.Render(strings.Join(p.RedFlags, ", ")))
		b.WriteByte('\n')
	}

	if p.Body != "" {
		b.WriteByte('\n')
		b.WriteString(bodyStyle.Render(wordWrap(p.Body, max(m.width-8, 20))))
		b.WriteByte('\n')
	}

	return b.String()
}

func renderHealth(health []model.SourceHealth) string {
	if len(health) == 0 {
		return "  (no sources recorded)"
	}

	var b strings.Builder
	for i, h := range health {
		var status string
		switch h.Status {
		case model.StatusHealthy:
			status = healthyStyle.Render("● healthy")
		case model.StatusDegraded:
			status = degradedStyle.Render("● degraded")
		case model.StatusDown:
			status = downStyle.Render("● down")
		default:
			status = string(h.Status)
		}

		b.WriteString("  " + postingTitleStyle.Render(string(h.Source)) + "  " + status + "\n")

		lastSuccess := "never"
		if !h.LastSuccessAt.IsZero() {
			lastSuccess = h.LastSuccessAt.Local().Format("15:04:05")
		}
		b.WriteString("  " + postingSubtitleStyle.Render(
			fmt.Sprintf("ok %s · fails %d", lastSuccess, h.ConsecutiveFailures)) + "\n")

		if i < len(health)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func renderPostings(postings []model.EnrichedPosting, cursor int) string {
	if len(postings) == 0 {
		return "  (no postings yet)"
	}

	var b strings.Builder
	for i, p := range postings {
		titleSt := postingTitleStyle
		subtitleSt := postingSubtitleStyle
		prefix := "  "
		if i == cursor {
			titleSt = selectedTitleStyle
			subtitleSt = selectedSubtitleStyle
			prefix = "> "
		}

		b.WriteString(prefix)
		b.WriteString(titleSt.Render(p.Title))
		b.WriteByte('\n')

		b.WriteString(prefix)
		b.WriteString(subtitleSt.Render(fmt.Sprintf("%s · prio %d · %s",
			p.Source, p.PriorityScore, p.DiscoveredAt.Local().Format("01-02 15:04"))))
		b.WriteByte('\n')

		if i < len(postings)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func formatSalary(s *model.Salary) string {
	if s == nil {
		return "not stated"
	}
	suffix := ""
	switch s.Period {
	case model.PeriodHourly:
		suffix = "/hour"
	case model.PeriodAnnual:
		suffix = "/year"
	}
	switch {
	case s.Min == 0:
		return fmt.Sprintf("up to %d %s%s", s.Max, s.Currency, suffix)
	case s.Max == 0:
		return fmt.Sprintf("from %d %s%s", s.Min, s.Currency, suffix)
	case s.Min == s.Max:
		return fmt.Sprintf("%d %s%s", s.Min, s.Currency, suffix)
	default:
		return fmt.Sprintf("%d-%d %s%s", s.Min, s.Max, s.Currency, suffix)
	}
}

func formatLocation(p model.EnrichedPosting) string {
	switch {
	case p.IsRemote && p.Location != "":
		return p.Location + " (remote)"
	case p.IsRemote:
		return "Remote"
	default:
		return p.Location
	}
}

func wordWrap(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) <= width {
			line += " " + w
		} else {
			lines = append(lines, line)
			line = w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Run launches the dashboard over the given stores. window bounds how far
// back the postings pane looks.
func Run(store model.PostingStore, healthStore model.HealthStore, window time.Duration) error {
	m := monitorModel{
		store:       store,
		healthStore: healthStore,
		window:      window,
	}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
