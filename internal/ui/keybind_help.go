package ui

import (
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// leaderBindings converts the next-level leader hints into key.Bindings,
// sorted by key, with a trailing esc/cancel entry.
func leaderBindings(keyHandler *KeyHandler, view ViewKind) (prefix string, bindings []key.Binding) {
	currentSeq := ""
	if len(keyHandler.Buffer) > 0 {
		currentSeq = strings.Join(keyHandler.Buffer, " ")
	}
	hints := keyHandler.Registry.LeaderHints(currentSeq, view)
	if len(hints) == 0 {
		return "", nil
	}

	keys := make([]string, 0, len(hints))
	for k := range hints {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	bindings = make([]key.Binding, 0, len(keys)+1)
	for _, k := range keys {
		bindings = append(bindings, key.NewBinding(
			key.WithKeys(k),
			key.WithHelp(k, hints[k]),
		))
	}
	bindings = append(bindings, key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	))

	prefix = "SPC"
	if currentSeq != "" {
		prefix = currentSeq
	}
	return prefix, bindings
}

// RenderKeybindHelp produces the transient help bar shown after SPC.
// When the handler has a buffered sequence (e.g. "SPC v"), it shows next-level hints.
func RenderKeybindHelp(keyHandler *KeyHandler, view ViewKind) string {
	if keyHandler == nil {
		return ""
	}
	prefix, bindings := leaderBindings(keyHandler, view)
	if len(bindings) == 0 {
		return ""
	}

	helpModel := help.New()
	helpModel.Styles.ShortKey = lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorHighlight)).
		Bold(true)
	helpModel.Styles.ShortDesc = Styles.Hint
	helpModel.Styles.ShortSeparator = Styles.Hint

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorAccent)).
		Padding(0, 1).
		MarginTop(1)

	content := Styles.Hint.Render(prefix) + " " + helpModel.ShortHelpView(bindings)
	return boxStyle.Render(content)
}
