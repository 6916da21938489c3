package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"mlreg/internal/registry"
	"mlreg/internal/submission"
)

const (
	registerLabelWidth = 14
	registerInputWidth = 48
)

// RegisterView is the registration form. With an Attachment it is in file
// mode and only the file row and submit button are shown; otherwise it
// collects the manual fields.
type RegisterView struct {
	MountID    int
	Attachment *submission.Attachment
	Submitting bool
	Invalid    map[string]bool
	// Active is true while the form owns the keyboard.
	Active bool
	Focus  FocusManager

	file        textinput.Model
	name        textinput.Model
	description textarea.Model
	algorithm   choiceField
	function    choiceField
	modelType   choiceField
	targetLevel choiceField
	modeler     textinput.Model

	now func() time.Time
}

// Ensure RegisterView implements View.
var _ View = (*RegisterView)(nil)

// NewRegisterView creates an empty form focused on the name field.
// now stamps manual payloads; nil means time.Now.
func NewRegisterView(mountID int, now func() time.Time) *RegisterView {
	if now == nil {
		now = time.Now
	}
	r := &RegisterView{
		MountID:     mountID,
		Active:      true,
		file:        newTextInput("path/to/model.json"),
		name:        newTextInput("churn-xgb"),
		modeler:     newTextInput("your name"),
		description: textarea.New(),
		algorithm:   newChoiceField(registry.Algorithms),
		function:    newChoiceField(registry.Functions),
		modelType:   newChoiceField(registry.ModelTypes),
		targetLevel: newChoiceField(registry.TargetLevels),
		now:         now,
	}
	r.description.Placeholder = "What does the model predict?"
	r.description.ShowLineNumbers = false
	r.description.SetWidth(registerInputWidth)
	r.description.SetHeight(3)
	r.Focus.SetOrder(manualOrder)
	r.Focus.SetFocus(fieldName)
	r.applyFocus()
	return r
}

func newTextInput(placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Width = registerInputWidth
	ti.Prompt = ""
	return ti
}

// CapturingInput implements InputCapturer.
func (r *RegisterView) CapturingInput() bool {
	return r.Active
}

// FileMode reports whether a file is attached.
func (r *RegisterView) FileMode() bool {
	return r.Attachment != nil
}

// Values returns the manual-mode inputs.
func (r *RegisterView) Values() submission.FormValues {
	return submission.FormValues{
		Name:        r.name.Value(),
		Description: r.description.Value(),
		Algorithm:   r.algorithm.Value(),
		Function:    r.function.Value(),
		ModelType:   r.modelType.Value(),
		TargetLevel: r.targetLevel.Value(),
		Modeler:     r.modeler.Value(),
	}
}

// SetValues fills the manual fields. Unknown choice values are ignored.
func (r *RegisterView) SetValues(v submission.FormValues) {
	r.name.SetValue(v.Name)
	r.description.SetValue(v.Description)
	r.algorithm.Select(v.Algorithm)
	r.function.Select(v.Function)
	r.modelType.Select(v.ModelType)
	r.targetLevel.Select(v.TargetLevel)
	r.modeler.SetValue(v.Modeler)
}

// FilePath returns the text typed in the file field.
func (r *RegisterView) FilePath() string {
	return r.file.Value()
}

// Reset empties every field, clears the attachment and refocuses the name field.
func (r *RegisterView) Reset() tea.Cmd {
	r.file.Reset()
	r.name.Reset()
	r.description.Reset()
	r.modeler.Reset()
	r.algorithm.Reset()
	r.function.Reset()
	r.modelType.Reset()
	r.targetLevel.Reset()
	r.Attachment = nil
	r.Invalid = nil
	r.Submitting = false
	r.Focus.SetOrder(manualOrder)
	r.Focus.SetFocus(fieldName)
	return r.applyFocus()
}

// Init implements View.
func (r *RegisterView) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements View.
func (r *RegisterView) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w := msg.Width - registerLabelWidth - 6
		if w > registerInputWidth {
			w = registerInputWidth
		}
		if w > 10 {
			r.file.Width, r.name.Width, r.modeler.Width = w, w, w
			r.description.SetWidth(w)
		}
		return r, nil
	case SubmitResultMsg:
		if msg.MountID != r.MountID {
			return r, nil
		}
		r.Submitting = false
		if msg.Err != nil {
			return r, nil
		}
		return r, r.Reset()
	case tea.KeyMsg:
		return r, r.handleKey(msg)
	}
	return r, r.updateFocused(msg)
}

func (r *RegisterView) handleKey(msg tea.KeyMsg) tea.Cmd {
	if !r.Active {
		switch msg.String() {
		case "enter", "i":
			r.Active = true
			return r.applyFocus()
		}
		return nil
	}

	switch msg.String() {
	case "esc":
		r.Active = false
		r.applyFocus()
		return nil
	case "tab":
		r.Focus.Next()
		return r.applyFocus()
	case "shift+tab":
		r.Focus.Prev()
		return r.applyFocus()
	case "ctrl+s":
		return r.submit()
	case "ctrl+x":
		return r.detach()
	case "enter":
		switch r.Focus.Current {
		case fieldFile:
			return r.attach()
		case fieldSubmit:
			return r.submit()
		case fieldDescription:
			return r.updateFocused(msg)
		default:
			r.Focus.Next()
			return r.applyFocus()
		}
	case "left", "right":
		if c := r.focusedChoice(); c != nil {
			if msg.String() == "left" {
				c.Prev()
			} else {
				c.Next()
			}
			delete(r.Invalid, r.Focus.Current)
			return nil
		}
	}
	return r.updateFocused(msg)
}

// updateFocused forwards msg to the focused text widget.
func (r *RegisterView) updateFocused(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	before := ""
	switch r.Focus.Current {
	case fieldFile:
		if r.Attachment == nil {
			r.file, cmd = r.file.Update(msg)
		}
	case fieldName:
		before = r.name.Value()
		r.name, cmd = r.name.Update(msg)
		r.clearInvalidIfChanged(fieldName, before, r.name.Value())
	case fieldDescription:
		before = r.description.Value()
		r.description, cmd = r.description.Update(msg)
		r.clearInvalidIfChanged(fieldDescription, before, r.description.Value())
	case fieldModeler:
		before = r.modeler.Value()
		r.modeler, cmd = r.modeler.Update(msg)
		r.clearInvalidIfChanged(fieldModeler, before, r.modeler.Value())
	}
	return cmd
}

func (r *RegisterView) clearInvalidIfChanged(field, before, after string) {
	if before != after {
		delete(r.Invalid, field)
	}
}

func (r *RegisterView) focusedChoice() *choiceField {
	switch r.Focus.Current {
	case fieldAlgorithm:
		return &r.algorithm
	case fieldFunction:
		return &r.function
	case fieldModelType:
		return &r.modelType
	case fieldTargetLevel:
		return &r.targetLevel
	}
	return nil
}

// applyFocus focuses the widget under Focus.Current when the form is active
// and blurs the rest.
func (r *RegisterView) applyFocus() tea.Cmd {
	r.file.Blur()
	r.name.Blur()
	r.description.Blur()
	r.modeler.Blur()
	if !r.Active {
		return nil
	}
	switch r.Focus.Current {
	case fieldFile:
		return r.file.Focus()
	case fieldName:
		return r.name.Focus()
	case fieldDescription:
		return r.description.Focus()
	case fieldModeler:
		return r.modeler.Focus()
	}
	return nil
}

// attach validates the typed path. A rejected path is cleared and reported;
// it never becomes the pending attachment.
func (r *RegisterView) attach() tea.Cmd {
	path := strings.TrimSpace(r.file.Value())
	if path == "" {
		return nil
	}
	a, err := submission.Attach(path)
	if err != nil {
		r.file.Reset()
		if errors.Is(err, submission.ErrNotJSON) {
			return notifyMsgCmd(NotifyError, submission.MsgNotJSON)
		}
		return notifyMsgCmd(NotifyError, fmt.Sprintf("Cannot attach file: %v", err))
	}
	r.Attachment = &a
	r.Invalid = nil
	r.file.Reset()
	r.Focus.SetOrder(fileOrder)
	r.Focus.SetFocus(fieldSubmit)
	return tea.Batch(r.applyFocus(), notifyMsgCmd(NotifyInfo, "Attached "+a.Name))
}

// detach removes the attachment and returns to manual mode.
func (r *RegisterView) detach() tea.Cmd {
	if r.Attachment == nil {
		return nil
	}
	r.Attachment = nil
	r.Focus.SetOrder(manualOrder)
	r.Focus.SetFocus(fieldFile)
	return r.applyFocus()
}

// submit builds the Submission for the current mode and hands it to the shell.
func (r *RegisterView) submit() tea.Cmd {
	if r.Submitting {
		return nil
	}

	var sub submission.Submission
	if r.Attachment != nil {
		sub = submission.FileSubmission{Attachment: *r.Attachment}
	} else {
		vals := r.Values()
		if err := vals.Validate(); err != nil {
			fields := submission.InvalidFields(err)
			r.Invalid = make(map[string]bool, len(fields))
			for _, f := range fields {
				r.Invalid[f] = true
			}
			if len(fields) > 0 {
				r.Focus.SetFocus(fields[0])
			}
			return tea.Batch(r.applyFocus(),
				notifyMsgCmd(NotifyError, "Missing required fields: "+strings.Join(fields, ", ")))
		}
		sub = submission.ManualSubmission{Model: submission.BuildPayload(vals, r.now())}
	}

	r.Submitting = true
	mountID := r.MountID
	return func() tea.Msg {
		return SubmitMsg{MountID: mountID, Submission: sub}
	}
}

// View implements View.
func (r *RegisterView) View() string {
	var b strings.Builder
	b.WriteString(Styles.Title.Render("Register model") + "\n")
	if r.FileMode() {
		b.WriteString(Styles.Muted.Render("Mode: JSON file upload") + "\n\n")
	} else {
		b.WriteString(Styles.Muted.Render("Mode: manual entry (or attach a .json descriptor)") + "\n\n")
	}

	if r.Attachment != nil {
		a := r.Attachment
		b.WriteString(r.row(fieldFile, "JSON file",
			Styles.Normal.Render(fmt.Sprintf("%s (%d bytes)", a.Name, a.Size))+"  "+Styles.Hint.Render("ctrl+x: remove")))
	} else {
		b.WriteString(r.row(fieldFile, "JSON file", r.file.View()))
		b.WriteString("\n")
		b.WriteString(r.row(fieldName, "Name", r.name.View()))
		b.WriteString(r.row(fieldDescription, "Description", r.description.View()))
		b.WriteString(r.choiceRow(fieldAlgorithm, "Algorithm", r.algorithm))
		b.WriteString(r.choiceRow(fieldFunction, "Function", r.function))
		b.WriteString(r.choiceRow(fieldModelType, "Model type", r.modelType))
		b.WriteString(r.choiceRow(fieldTargetLevel, "Target level", r.targetLevel))
		b.WriteString(r.row(fieldModeler, "Modeler", r.modeler.View()))
	}

	button := "[ Submit ]"
	if r.Submitting {
		button = "[ Submitting… ]"
	}
	if r.Active && r.Focus.Is(fieldSubmit) {
		button = Styles.Selected.Render(button)
	} else {
		button = Styles.Normal.Render(button)
	}
	b.WriteString("\n" + r.marker(fieldSubmit) + strings.Repeat(" ", registerLabelWidth) + button + "\n\n")

	if r.Active {
		b.WriteString(Styles.Hint.Render("tab/shift+tab: move  ←/→: choose  enter: attach/next  ctrl+s: submit  ctrl+x: remove file  esc: leave form"))
	} else {
		b.WriteString(Styles.Hint.Render("enter/i: edit form"))
	}
	return b.String()
}

func (r *RegisterView) marker(field string) string {
	if r.Active && r.Focus.Is(field) {
		return Styles.Selected.Render("▸ ")
	}
	return "  "
}

func (r *RegisterView) row(field, label, widget string) string {
	if r.Invalid[field] {
		widget += "  " + Styles.Invalid.Render("required")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		r.marker(field), Styles.Label.Width(registerLabelWidth).Render(label), widget) + "\n"
}

func (r *RegisterView) choiceRow(field, label string, c choiceField) string {
	focused := r.Active && r.Focus.Is(field)
	widget := c.View(focused)
	if focused {
		widget += "  " + Styles.Hint.Render(c.optionsHint())
	}
	return r.row(field, label, widget)
}
