package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"mlreg/internal/config"
	"mlreg/internal/registry"
	"mlreg/internal/ui/textutil"
)

// MsgEditUnavailable is shown by the inert edit action.
const MsgEditUnavailable = "Edit is under development"

// DateFormat is the display format for modification dates.
const DateFormat = "2006-01-02"

// Column headers of the models table.
var ModelColumns = []string{"Name", "Algorithm", "Function", "Version", "Created by", "Last modified"}

const (
	colFunction  = 2
	maxNameWidth = 32
)

// SortField selects the active list sort.
type SortField int

const (
	SortNone SortField = iota
	SortByName
	SortByModified
)

// ListSort is the active sort. Only one field sorts at a time.
type ListSort struct {
	Field SortField
	Desc  bool
}

// Cycle advances the sort for field: off → ascending → descending → off.
// Picking a different field starts it ascending.
func (s ListSort) Cycle(field SortField) ListSort {
	switch {
	case s.Field != field:
		return ListSort{Field: field}
	case !s.Desc:
		return ListSort{Field: field, Desc: true}
	default:
		return ListSort{}
	}
}

func (s ListSort) String() string {
	dir := "↑"
	if s.Desc {
		dir = "↓"
	}
	switch s.Field {
	case SortByName:
		return "name " + dir
	case SortByModified:
		return "modified " + dir
	default:
		return "none"
	}
}

// ParseSortField maps "name" and "modified" to a SortField.
func ParseSortField(s string) (SortField, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return SortNone, nil
	case "name":
		return SortByName, nil
	case "modified", "date", "modifiedtimestamp":
		return SortByModified, nil
	}
	return SortNone, fmt.Errorf("unknown sort field %q (want name or modified)", s)
}

// AlgorithmFilters returns the distinct non-empty algorithms in first-seen order.
func AlgorithmFilters(models []registry.Model) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range models {
		if m.Algorithm == "" || seen[m.Algorithm] {
			continue
		}
		seen[m.Algorithm] = true
		out = append(out, m.Algorithm)
	}
	return out
}

// FilterModels keeps models whose algorithm equals algorithm; "" keeps all.
func FilterModels(models []registry.Model, algorithm string) []registry.Model {
	if algorithm == "" {
		return models
	}
	out := make([]registry.Model, 0, len(models))
	for _, m := range models {
		if m.Algorithm == algorithm {
			out = append(out, m)
		}
	}
	return out
}

// SortModels returns a sorted copy of models. SortNone keeps server order.
func SortModels(models []registry.Model, s ListSort) []registry.Model {
	out := make([]registry.Model, len(models))
	copy(out, models)
	var less func(a, b registry.Model) bool
	switch s.Field {
	case SortByName:
		less = func(a, b registry.Model) bool {
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		}
	case SortByModified:
		less = func(a, b registry.Model) bool {
			return a.ModifiedTimeStamp.Before(b.ModifiedTimeStamp.Time)
		}
	default:
		return out
	}
	sort.SliceStable(out, func(i, j int) bool {
		if s.Desc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

// FunctionTagColor maps a function category to its tag color.
func FunctionTagColor(function string) lipgloss.Color {
	switch function {
	case "classification":
		return lipgloss.Color(TagBlue)
	case "regression":
		return lipgloss.Color(TagGreen)
	case "clustering":
		return lipgloss.Color(TagOrange)
	case "generative":
		return lipgloss.Color(TagPurple)
	default:
		return lipgloss.Color(TagDefault)
	}
}

// FormatDate renders ts in local time, or "-" when unset.
func FormatDate(ts registry.Timestamp) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Local().Format(DateFormat)
}

func versionLabel(m registry.Model) string {
	if m.ModelVersionName != "" {
		return m.ModelVersionName
	}
	if m.Version > 0 {
		return fmt.Sprintf("v%d", m.Version)
	}
	return "-"
}

// ModelRow returns the table cells for m, in ModelColumns order.
func ModelRow(m registry.Model) []string {
	return []string{
		textutil.Truncate(textutil.OrDash(m.Name), maxNameWidth),
		textutil.OrDash(m.Algorithm),
		textutil.OrDash(m.Function),
		versionLabel(m),
		textutil.OrDash(m.CreatedBy),
		FormatDate(m.ModifiedTimeStamp),
	}
}

// RenderModelsTable draws models as a bordered table. selected highlights a
// row index (-1 for none); the Function column is colored per category.
func RenderModelsTable(models []registry.Model, selected int) string {
	rows := make([][]string, len(models))
	for i, m := range models {
		rows[i] = ModelRow(m)
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(Styles.TableBorder).
		Headers(ModelColumns...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return Styles.TableHeader
			}
			style := Styles.TableCell
			if col == colFunction && row < len(models) {
				style = style.Foreground(FunctionTagColor(models[row].Function))
			}
			if row == selected {
				style = style.Bold(true).Reverse(true)
			}
			return style
		})
	return t.Render()
}

// ModelsListView is the paginated, sortable, filterable model table.
type ModelsListView struct {
	MountID int
	Models  []registry.Model // as loaded, in server order
	Loading bool
	Failed  bool
	Sort    ListSort
	Filter  string // algorithm; "" is all
	Cursor  int    // row within the current page

	paginator paginator.Model
	spinner   spinner.Model
}

// Ensure ModelsListView implements View.
var _ View = (*ModelsListView)(nil)

// NewModelsListView creates a list waiting for its ModelsLoadedMsg.
func NewModelsListView(mountID, pageSize int) *ModelsListView {
	if pageSize <= 0 {
		pageSize = config.DefaultPageSize
	}
	p := paginator.New()
	p.Type = paginator.Arabic
	p.PerPage = pageSize
	p.ArabicFormat = "Page %d of %d"

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccent))

	return &ModelsListView{
		MountID:   mountID,
		Loading:   true,
		paginator: p,
		spinner:   s,
	}
}

// Init implements View.
func (l *ModelsListView) Init() tea.Cmd {
	return l.spinner.Tick
}

// Visible returns the filtered and sorted models across all pages.
func (l *ModelsListView) Visible() []registry.Model {
	return SortModels(FilterModels(l.Models, l.Filter), l.Sort)
}

// Page returns the models on the current page.
func (l *ModelsListView) Page() []registry.Model {
	visible := l.Visible()
	start, end := l.paginator.GetSliceBounds(len(visible))
	return visible[start:end]
}

// PageIndex is the zero-based current page.
func (l *ModelsListView) PageIndex() int {
	return l.paginator.Page
}

// TotalPages is the page count for the visible models (at least 1).
func (l *ModelsListView) TotalPages() int {
	return l.paginator.TotalPages
}

// SelectedModel returns the model under the cursor.
func (l *ModelsListView) SelectedModel() (registry.Model, bool) {
	page := l.Page()
	if l.Cursor < 0 || l.Cursor >= len(page) {
		return registry.Model{}, false
	}
	return page[l.Cursor], true
}

// Update implements View.
func (l *ModelsListView) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case ModelsLoadedMsg:
		if msg.MountID != l.MountID {
			return l, nil
		}
		l.Loading = false
		l.Failed = msg.Err != nil
		l.Models = msg.Models
		if msg.Err != nil {
			l.Models = nil
		}
		l.paginator.Page = 0
		l.Cursor = 0
		l.paginate()
		return l, nil
	case spinner.TickMsg:
		if !l.Loading {
			return l, nil
		}
		var cmd tea.Cmd
		l.spinner, cmd = l.spinner.Update(msg)
		return l, cmd
	case ListActionMsg:
		l.apply(msg.Action)
		return l, nil
	case tea.KeyMsg:
		return l, l.handleKey(msg)
	}
	return l, nil
}

func (l *ModelsListView) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "s":
		l.apply(ListSortByName)
	case "m":
		l.apply(ListSortByModified)
	case "f":
		l.apply(ListNextFilter)
	case "j", "down":
		if l.Cursor < len(l.Page())-1 {
			l.Cursor++
		}
	case "k", "up":
		if l.Cursor > 0 {
			l.Cursor--
		}
	case "l", "right":
		if !l.paginator.OnLastPage() {
			l.paginator.NextPage()
			l.Cursor = 0
		}
	case "h", "left":
		if !l.paginator.OnFirstPage() {
			l.paginator.PrevPage()
			l.Cursor = 0
		}
	case "e":
		return notifyMsgCmd(NotifyInfo, MsgEditUnavailable)
	case "enter":
		if m, ok := l.SelectedModel(); ok && m.ID != "" {
			id := m.ID
			return func() tea.Msg { return ShowModelDetailMsg{ID: id} }
		}
	}
	return nil
}

// ListAction is a table operation reachable from a single key or a leader binding.
type ListAction int

const (
	ListSortByName ListAction = iota
	ListSortByModified
	ListNextFilter
)

func (l *ModelsListView) apply(a ListAction) {
	switch a {
	case ListSortByName:
		l.Sort = l.Sort.Cycle(SortByName)
	case ListSortByModified:
		l.Sort = l.Sort.Cycle(SortByModified)
	case ListNextFilter:
		l.Filter = nextFilter(AlgorithmFilters(l.Models), l.Filter)
		l.paginator.Page = 0
		l.Cursor = 0
	}
	l.paginate()
}

// nextFilter cycles all → each option in order → all.
func nextFilter(options []string, current string) string {
	if current == "" {
		if len(options) == 0 {
			return ""
		}
		return options[0]
	}
	for i, o := range options {
		if o == current && i+1 < len(options) {
			return options[i+1]
		}
	}
	return ""
}

// paginate recomputes the page count and clamps page and cursor.
func (l *ModelsListView) paginate() {
	n := len(l.Visible())
	if n < 1 {
		// SetTotalPages ignores zero items and would keep a stale count.
		l.paginator.TotalPages = 1
	} else {
		l.paginator.SetTotalPages(n)
	}
	if l.paginator.Page >= l.paginator.TotalPages {
		l.paginator.Page = l.paginator.TotalPages - 1
	}
	if onPage := l.paginator.ItemsOnPage(n); l.Cursor >= onPage {
		l.Cursor = onPage - 1
	}
	if l.Cursor < 0 {
		l.Cursor = 0
	}
}

// View implements View.
func (l *ModelsListView) View() string {
	var b strings.Builder
	b.WriteString(Styles.Title.Render("Models") + "\n")

	filter := "all"
	if l.Filter != "" {
		filter = l.Filter
	}
	b.WriteString(Styles.Muted.Render(fmt.Sprintf("Algorithm: %s   Sort: %s   %d models", filter, l.Sort, len(l.Visible()))) + "\n\n")

	switch {
	case l.Loading:
		b.WriteString(l.spinner.View() + " Loading models…")
	case len(l.Visible()) == 0:
		b.WriteString(RenderModelsTable(nil, -1) + "\n")
		b.WriteString(Styles.Empty.Render("No models"))
	default:
		b.WriteString(RenderModelsTable(l.Page(), l.Cursor) + "\n")
		b.WriteString(Styles.Muted.Render(l.paginator.View()))
	}

	b.WriteString("\n\n" + Styles.Hint.Render("j/k: move  h/l: page  s: sort name  m: sort date  f: filter  enter: details  e: edit"))
	return b.String()
}
