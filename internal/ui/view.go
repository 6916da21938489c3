package ui

import tea "github.com/charmbracelet/bubbletea"

// View is the unit of composition; implements Bubble Tea's Init/Update/View.
type View interface {
	Init() tea.Cmd
	Update(tea.Msg) (View, tea.Cmd)
	View() string
}

// InputCapturer is implemented by views that can own the keyboard, e.g. a
// form with a focused text field. While CapturingInput is true the shell
// skips its own bindings (except ctrl+c) and forwards keys to the view.
type InputCapturer interface {
	CapturingInput() bool
}
