package ui

import (
	"strings"

	"mlreg/internal/registry"
)

// Form field IDs, in manual-mode tab order.
const (
	fieldFile        = "file"
	fieldName        = "name"
	fieldDescription = "description"
	fieldAlgorithm   = "algorithm"
	fieldFunction    = "function"
	fieldModelType   = "model type"
	fieldTargetLevel = "target level"
	fieldModeler     = "modeler"
	fieldSubmit      = "submit"
)

var (
	manualOrder = []string{
		fieldFile, fieldName, fieldDescription, fieldAlgorithm, fieldFunction,
		fieldModelType, fieldTargetLevel, fieldModeler, fieldSubmit,
	}
	// The attachment row is not editable; ctrl+x removes it.
	fileOrder = []string{fieldSubmit}
)

// choiceField is a select box cycled with left/right. Index -1 means unset.
type choiceField struct {
	Options []registry.Choice
	Index   int
}

func newChoiceField(opts []registry.Choice) choiceField {
	return choiceField{Options: opts, Index: -1}
}

// Value returns the selected wire value, or "".
func (c choiceField) Value() string {
	if c.Index < 0 || c.Index >= len(c.Options) {
		return ""
	}
	return c.Options[c.Index].Value
}

// Next selects the following option; from unset it selects the first.
func (c *choiceField) Next() {
	if len(c.Options) == 0 {
		return
	}
	c.Index = (c.Index + 1) % len(c.Options)
}

// Prev selects the preceding option; from unset it selects the last.
func (c *choiceField) Prev() {
	if len(c.Options) == 0 {
		return
	}
	if c.Index <= 0 {
		c.Index = len(c.Options) - 1
		return
	}
	c.Index--
}

// Select sets the option whose value is v; unknown values leave it unchanged.
func (c *choiceField) Select(v string) bool {
	for i, o := range c.Options {
		if o.Value == v {
			c.Index = i
			return true
		}
	}
	return false
}

// Reset clears the selection.
func (c *choiceField) Reset() {
	c.Index = -1
}

// View renders "‹ Label ›" or a placeholder when unset.
func (c choiceField) View(focused bool) string {
	label := "Select…"
	if c.Index >= 0 && c.Index < len(c.Options) {
		label = c.Options[c.Index].Label
	}
	text := "‹ " + label + " ›"
	switch {
	case focused:
		return Styles.Selected.Render(text)
	case c.Index < 0:
		return Styles.Muted.Render(text)
	default:
		return Styles.Normal.Render(text)
	}
}

// optionsHint lists labels separated by " / ", for the focused choice line.
func (c choiceField) optionsHint() string {
	labels := make([]string, len(c.Options))
	for i, o := range c.Options {
		labels[i] = o.Label
	}
	return strings.Join(labels, " / ")
}
