package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"mlreg/internal/registry"
	"mlreg/internal/ui/textutil"
)

// MsgNoData replaces the cards when there is no summary to show.
const MsgNoData = "No data available"

// cardWidth is the outer card width including the border. Cards grow
// vertically to fit every frequency row.
const cardWidth = 28

// DashboardView shows the registry summary as a grid of cards.
// It fetches once per mount; a failed fetch leaves Summary nil.
type DashboardView struct {
	MountID int
	Summary *registry.Summary
	Loading bool
	spinner spinner.Model
	width   int
}

// Ensure DashboardView implements View.
var _ View = (*DashboardView)(nil)

// NewDashboardView creates a dashboard waiting for its SummaryLoadedMsg.
func NewDashboardView(mountID int) *DashboardView {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccent))
	return &DashboardView{
		MountID: mountID,
		Loading: true,
		spinner: s,
	}
}

// Init implements View.
func (d *DashboardView) Init() tea.Cmd {
	return d.spinner.Tick
}

// Update implements View.
func (d *DashboardView) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		d.width = msg.Width
		return d, nil
	case SummaryLoadedMsg:
		if msg.MountID != d.MountID {
			return d, nil
		}
		d.Loading = false
		d.Summary = msg.Summary
		if msg.Err != nil {
			d.Summary = nil
		}
		return d, nil
	case spinner.TickMsg:
		if !d.Loading {
			return d, nil
		}
		var cmd tea.Cmd
		d.spinner, cmd = d.spinner.Update(msg)
		return d, cmd
	}
	return d, nil
}

// View implements View.
func (d *DashboardView) View() string {
	var b strings.Builder
	b.WriteString(Styles.Title.Render("Dashboard") + "\n\n")
	if d.Loading {
		b.WriteString(d.spinner.View() + " Loading summary…")
		return b.String()
	}
	b.WriteString(RenderSummary(d.Summary, d.width))
	return b.String()
}

// SummaryCard is one titled block of the dashboard.
type SummaryCard struct {
	Title string
	Rows  []registry.Count
}

// SummaryCards lays out s in display order. TotalModels is not included.
func SummaryCards(s *registry.Summary) []SummaryCard {
	cards := []SummaryCard{
		{Title: "Most used algorithms", Rows: s.Algorithms.Sorted()},
		{Title: "Programming languages", Rows: s.Languages.Sorted()},
		{Title: "Model types", Rows: s.ModelTypes.Sorted()},
		{Title: "Functions", Rows: s.Functions.Sorted()},
		{Title: "Tools", Rows: s.Tools.Sorted()},
	}
	if len(s.TargetLevels) > 0 {
		cards = append(cards, SummaryCard{Title: "Target levels", Rows: s.TargetLevels.Sorted()})
	}
	return cards
}

// RenderSummary draws the summary cards wrapped to width columns
// (three per row when width is unknown). A nil summary renders MsgNoData.
func RenderSummary(s *registry.Summary, width int) string {
	if s == nil {
		return Styles.Empty.Render(MsgNoData)
	}

	inner := cardWidth - 4
	blocks := []string{renderCard("Total models", []string{Styles.Value.Render(fmt.Sprintf("%d", s.TotalModels))})}
	for _, c := range SummaryCards(s) {
		lines := make([]string, 0, len(c.Rows))
		for _, row := range c.Rows {
			count := fmt.Sprintf(": %d", row.N)
			label := textutil.Truncate(row.Label, inner-textutil.Width(count))
			lines = append(lines, label+count)
		}
		if len(lines) == 0 {
			lines = append(lines, Styles.Empty.Render("none"))
		}
		blocks = append(blocks, renderCard(c.Title, lines))
	}

	perRow := 3
	if width > 0 {
		perRow = width / (cardWidth + 1)
		if perRow < 1 {
			perRow = 1
		}
	}
	var rows []string
	for i := 0; i < len(blocks); i += perRow {
		end := i + perRow
		if end > len(blocks) {
			end = len(blocks)
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, spaced(blocks[i:end])...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func renderCard(title string, lines []string) string {
	body := Styles.Title.Render(textutil.Truncate(title, cardWidth-4)) + "\n" + strings.Join(lines, "\n")
	return Styles.Card.Width(cardWidth - 2).Render(body)
}

// spaced inserts a one-column gap between blocks.
func spaced(blocks []string) []string {
	out := make([]string, 0, len(blocks)*2)
	for i, b := range blocks {
		if i > 0 {
			out = append(out, " ")
		}
		out = append(out, b)
	}
	return out
}
