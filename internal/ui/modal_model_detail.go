package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"mlreg/internal/registry"
	"mlreg/internal/ui/textutil"
)

const (
	defaultDetailWidth  = 70
	defaultDetailHeight = 18
)

// ModelDetailModal shows one model read from GET /models/{id}, scrollable.
// Esc dismisses (handled by the overlay stack).
type ModelDetailModal struct {
	ID       string
	Model    *registry.Model
	Err      error
	Loading  bool
	viewport viewport.Model
}

// Ensure ModelDetailModal implements View.
var _ View = (*ModelDetailModal)(nil)

// NewModelDetailModal creates a modal waiting for ModelDetailLoadedMsg.
func NewModelDetailModal(id string) *ModelDetailModal {
	vp := viewport.New(defaultDetailWidth, defaultDetailHeight)
	vp.Style = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorHighlight)).
		Padding(0, 1)
	m := &ModelDetailModal{ID: id, Loading: true, viewport: vp}
	m.refreshContent()
	return m
}

// Init implements View.
func (m *ModelDetailModal) Init() tea.Cmd {
	return nil
}

// Update implements View.
func (m *ModelDetailModal) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case ModelDetailLoadedMsg:
		if msg.ID != m.ID {
			return m, nil
		}
		m.Loading = false
		m.Model = msg.Model
		m.Err = msg.Err
		m.refreshContent()
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "esc" {
			return m, func() tea.Msg { return DismissModalMsg{} }
		}
	case tea.WindowSizeMsg:
		w := msg.Width - 8
		h := msg.Height - 8
		if w < 40 {
			w = 40
		}
		if w > 100 {
			w = 100
		}
		if h < 8 {
			h = 8
		}
		m.viewport.Width = w
		m.viewport.Height = h
		m.refreshContent()
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View implements View.
func (m *ModelDetailModal) View() string {
	title := Styles.Title
	if m.Err != nil {
		title = Styles.TitleWarning
	}
	header := title.Render("Model details") + Styles.Hint.Render("  j/k: scroll  Esc: close")
	return header + "\n" + m.viewport.View()
}

// Content returns the plain text shown in the viewport.
func (m *ModelDetailModal) Content() string {
	switch {
	case m.Loading:
		return "Loading " + m.ID + "…"
	case m.Err != nil:
		return fmt.Sprintf("Could not load model %s: %v", m.ID, m.Err)
	case m.Model == nil:
		return MsgNoData
	}
	return FormatModelDetail(*m.Model)
}

func (m *ModelDetailModal) refreshContent() {
	m.viewport.SetContent(m.Content())
	m.viewport.GotoTop()
}

// FormatModelDetail lists every populated field of md, one per line.
func FormatModelDetail(md registry.Model) string {
	type field struct{ label, value string }
	fields := []field{
		{"ID", md.ID},
		{"Name", md.Name},
		{"Description", md.Description},
		{"Algorithm", md.Algorithm},
		{"Function", md.Function},
		{"Model type", md.ModelType},
		{"Score code", md.ScoreCodeType},
		{"Train code", md.TrainCodeType},
		{"Target level", md.TargetLevel},
		{"Modeler", md.Modeler},
		{"Tool", strings.TrimSpace(md.Tool + " " + md.ToolVersion)},
		{"Version", versionLabel(md)},
		{"Created", FormatDate(md.CreationTimeStamp) + " by " + textutil.OrDash(md.CreatedBy)},
		{"Modified", FormatDate(md.ModifiedTimeStamp) + " by " + textutil.OrDash(md.ModifiedBy)},
	}
	if md.Version > 0 {
		fields = append(fields, field{"Revision", fmt.Sprintf("%d", md.Version)})
	}
	if md.ExternalURL != nil && *md.ExternalURL != "" {
		fields = append(fields, field{"External URL", *md.ExternalURL})
	}

	var lines []string
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		lines = append(lines, textutil.PadRight(f.label+":", 14)+f.value)
	}
	if len(md.CustomProperties) > 0 {
		lines = append(lines, "", "Custom properties:")
		for _, p := range md.CustomProperties {
			lines = append(lines, fmt.Sprintf("  %s = %s (%s)", p.Name, p.Value, p.Type))
		}
	}
	return strings.Join(lines, "\n")
}
