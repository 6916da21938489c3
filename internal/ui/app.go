package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"mlreg/internal/config"
)

var errNoRegistry = errors.New("no registry configured")

// Options configures NewAppModel. Zero values fall back to defaults.
type Options struct {
	BaseURL   string
	PageSize  int
	Logger    *zerolog.Logger
	NoticeTTL time.Duration
	Now       func() time.Time // submission timestamps; time.Now when nil
}

// AppModel is the shell. Exactly one of Dashboard, Register and List is
// non-nil: the mounted instance of the Active view.
type AppModel struct {
	Active    ViewKind
	MountID   int
	Dashboard *DashboardView
	Register  *RegisterView
	List      *ModelsListView

	Overlays   OverlayStack
	KeyHandler *KeyHandler
	Registry   Registry
	Log        zerolog.Logger
	Notice     Notification

	BaseURL   string
	PageSize  int
	NoticeTTL time.Duration
	Now       func() time.Time
	Width     int
	Height    int

	noticeSeq int
}

// Ensure AppModel can be used as tea.Model via adapter.
var _ tea.Model = (*appModelAdapter)(nil)

// appModelAdapter wraps AppModel to implement tea.Model.
type appModelAdapter struct {
	*AppModel
}

// NewAppModel creates the shell with the dashboard mounted.
func NewAppModel(reg Registry, opts Options) *AppModel {
	m := &AppModel{
		Registry:  reg,
		Log:       zerolog.Nop(),
		BaseURL:   opts.BaseURL,
		PageSize:  opts.PageSize,
		NoticeTTL: opts.NoticeTTL,
		Now:       opts.Now,
	}
	if opts.Logger != nil {
		m.Log = *opts.Logger
	}
	if m.PageSize <= 0 {
		m.PageSize = config.DefaultPageSize
	}
	if m.NoticeTTL <= 0 {
		m.NoticeTTL = NotificationTTL
	}
	if m.Now == nil {
		m.Now = time.Now
	}
	m.KeyHandler = NewKeyHandler(newShellKeybinds())
	m.mount(ViewDashboard)
	return m
}

func newShellKeybinds() *KeybindRegistry {
	reg := NewKeybindRegistry()
	reg.BindWithDesc("q", tea.Quit, "Quit")
	reg.BindWithDesc("ctrl+c", tea.Quit, "Quit")
	reg.BindWithDesc("SPC q", tea.Quit, "Quit")
	leader := map[ViewKind]string{ViewDashboard: "d", ViewRegister: "r", ViewList: "l"}
	for i, kind := range ViewKinds {
		reg.BindWithDesc(fmt.Sprintf("%d", i+1), selectViewCmd(kind), kind.Title())
		reg.BindWithDesc("SPC v "+leader[kind], selectViewCmd(kind), kind.Title())
	}
	listOnly := []ViewKind{ViewList}
	reg.BindWithDescForViews("SPC s", listActionCmd(ListSortByName), "Sort by name", listOnly)
	reg.BindWithDescForViews("SPC m", listActionCmd(ListSortByModified), "Sort by modified", listOnly)
	reg.BindWithDescForViews("SPC f", listActionCmd(ListNextFilter), "Next algorithm", listOnly)
	return reg
}

func listActionCmd(a ListAction) tea.Cmd {
	return func() tea.Msg { return ListActionMsg{Action: a} }
}

func selectViewCmd(kind ViewKind) tea.Cmd {
	return func() tea.Msg { return SelectViewMsg{Kind: kind} }
}

// AsTeaModel returns a tea.Model adapter for use with tea.NewProgram.
func (m *AppModel) AsTeaModel() tea.Model {
	return &appModelAdapter{AppModel: m}
}

// mount replaces the active view with a fresh instance of kind.
// Call mountCmds afterwards to start its fetch.
func (m *AppModel) mount(kind ViewKind) {
	m.MountID++
	m.Active = kind
	if m.KeyHandler != nil {
		m.KeyHandler.View = kind
		m.KeyHandler.LeaderWaiting = false
		m.KeyHandler.Buffer = nil
	}
	m.Overlays.Clear()
	m.Dashboard, m.Register, m.List = nil, nil, nil

	switch kind {
	case ViewDashboard:
		m.Dashboard = NewDashboardView(m.MountID)
	case ViewRegister:
		m.Register = NewRegisterView(m.MountID, m.Now)
	case ViewList:
		m.List = NewModelsListView(m.MountID, m.PageSize)
	}
	if m.Width > 0 {
		v, _ := m.currentView().Update(tea.WindowSizeMsg{Width: m.Width, Height: m.contentHeight()})
		m.setCurrentView(v)
	}
	m.Log.Debug().Str("view", kind.String()).Int("mount", m.MountID).Msg("mount view")
}

// mountCmds returns the active view's Init plus its fetch-on-mount request.
func (m *AppModel) mountCmds() tea.Cmd {
	cmds := []tea.Cmd{m.currentView().Init()}
	switch m.Active {
	case ViewDashboard:
		cmds = append(cmds, m.withRegistry(func(r Registry) tea.Cmd { return loadSummaryCmd(r, m.MountID) },
			SummaryLoadedMsg{MountID: m.MountID, Err: errNoRegistry}))
	case ViewList:
		cmds = append(cmds, m.withRegistry(func(r Registry) tea.Cmd { return loadModelsCmd(r, m.MountID) },
			ModelsLoadedMsg{MountID: m.MountID, Err: errNoRegistry}))
	}
	return tea.Batch(cmds...)
}

// withRegistry builds a registry command, or one that reports fallback when
// no registry is configured.
func (m *AppModel) withRegistry(build func(Registry) tea.Cmd, fallback tea.Msg) tea.Cmd {
	if m.Registry == nil {
		return func() tea.Msg { return fallback }
	}
	return build(m.Registry)
}

// notify shows text and schedules its expiry.
func (m *AppModel) notify(level NotifyLevel, text string) tea.Cmd {
	m.noticeSeq++
	m.Notice = Notification{ID: m.noticeSeq, Level: level, Text: text}
	return expireNotificationCmd(m.noticeSeq, m.NoticeTTL)
}

// Init implements tea.Model.
func (a *appModelAdapter) Init() tea.Cmd {
	return a.mountCmds()
}

// Update implements tea.Model.
func (a *appModelAdapter) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.Width = msg.Width
		a.Height = msg.Height
		v, cmd := a.currentView().Update(tea.WindowSizeMsg{Width: msg.Width, Height: a.contentHeight()})
		a.setCurrentView(v)
		return a, tea.Batch(cmd, a.Overlays.Broadcast(msg))
	case tea.KeyMsg:
		return a.handleKey(msg)
	case SelectViewMsg:
		return a.handleSelectView(msg)
	case SummaryLoadedMsg:
		return a.handleSummaryLoaded(msg)
	case ModelsLoadedMsg:
		return a.handleModelsLoaded(msg)
	case SubmitMsg:
		return a.handleSubmit(msg)
	case SubmitResultMsg:
		return a.handleSubmitResult(msg)
	case ShowModelDetailMsg:
		return a.handleShowModelDetail(msg)
	case ModelDetailLoadedMsg:
		return a.handleModelDetailLoaded(msg)
	case NotifyMsg:
		return a, a.notify(msg.Level, msg.Text)
	case clearNotificationMsg:
		if msg.ID == a.Notice.ID {
			a.Notice = Notification{}
		}
		return a, nil
	case DismissModalMsg:
		a.Overlays.Pop()
		return a, nil
	}

	v, cmd := a.currentView().Update(msg)
	a.setCurrentView(v)
	return a, cmd
}

// View implements tea.Model.
func (a *appModelAdapter) View() string {
	var b strings.Builder
	b.WriteString(a.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(a.currentView().View())
	if a.Notice.Active() {
		b.WriteString("\n\n" + a.Notice.View())
	}
	if a.KeyHandler != nil && a.KeyHandler.LeaderWaiting {
		b.WriteString("\n" + RenderKeybindHelp(a.KeyHandler, a.Active))
	} else {
		b.WriteString("\n\n" + Styles.Hint.Render(a.shellHint()))
	}
	return a.Overlays.Render(b.String(), a.Width, a.Height)
}

func (a *appModelAdapter) renderHeader() string {
	items := make([]string, 0, len(ViewKinds))
	for i, kind := range ViewKinds {
		label := fmt.Sprintf("%d %s", i+1, kind.Title())
		if kind == a.Active {
			items = append(items, Styles.MenuItemActive.Render(label))
		} else {
			items = append(items, Styles.MenuItem.Render(label))
		}
	}
	header := Styles.Header.Render("ML Models Registry") + strings.Join(items, " ")
	if a.BaseURL != "" {
		header += "  " + Styles.Muted.Render(a.BaseURL)
	}
	return header
}

func (a *appModelAdapter) shellHint() string {
	if a.Overlays.Len() > 0 {
		return "j/k: scroll  esc: close  ctrl+c: quit"
	}
	if c, ok := a.currentView().(InputCapturer); ok && c.CapturingInput() {
		return "esc: leave form  ctrl+c: quit"
	}
	return "1-3: switch view  SPC: commands  q: quit"
}

// contentHeight is the terminal height minus header, notice and hint lines.
func (m *AppModel) contentHeight() int {
	h := m.Height - 7
	if h < 5 {
		h = 5
	}
	return h
}

func (m *AppModel) currentView() View {
	switch m.Active {
	case ViewRegister:
		if m.Register != nil {
			return m.Register
		}
	case ViewList:
		if m.List != nil {
			return m.List
		}
	default:
		if m.Dashboard != nil {
			return m.Dashboard
		}
	}
	// Unreachable after NewAppModel; keeps zero-value AppModels renderable.
	m.mount(m.Active)
	return m.currentView()
}

func (m *AppModel) setCurrentView(v View) {
	switch m.Active {
	case ViewDashboard:
		if d, ok := v.(*DashboardView); ok {
			m.Dashboard = d
		}
	case ViewRegister:
		if r, ok := v.(*RegisterView); ok {
			m.Register = r
		}
	case ViewList:
		if l, ok := v.(*ModelsListView); ok {
			m.List = l
		}
	}
}
