package ui

import (
	"mlreg/internal/registry"
	"mlreg/internal/submission"
)

// SelectViewMsg switches the shell to Kind (keys 1/2/3, SPC v d/r/l).
type SelectViewMsg struct {
	Kind ViewKind
}

// SummaryLoadedMsg carries the dashboard fetch result for mount MountID.
// Summary is nil when the fetch failed or the server returned null.
type SummaryLoadedMsg struct {
	MountID int
	Summary *registry.Summary
	Err     error
}

// ModelsLoadedMsg carries the list fetch result for mount MountID.
type ModelsLoadedMsg struct {
	MountID int
	Models  []registry.Model
	Err     error
}

// SubmitMsg asks the shell to send a registration built by the form.
type SubmitMsg struct {
	MountID    int
	Submission submission.Submission
}

// SubmitResultMsg reports the outcome of a SubmitMsg.
type SubmitResultMsg struct {
	MountID    int
	Submission submission.Submission
	Model      *registry.Model
	Err        error
}

// ShowModelDetailMsg opens the detail overlay for one model (list view, Enter).
type ShowModelDetailMsg struct {
	ID string
}

// ModelDetailLoadedMsg carries the GET /models/{id} result.
type ModelDetailLoadedMsg struct {
	ID    string
	Model *registry.Model
	Err   error
}

// ListActionMsg re-sorts or re-filters the models table (leader bindings).
type ListActionMsg struct {
	Action ListAction
}

// NotifyMsg raises a transient notification.
type NotifyMsg struct {
	Level NotifyLevel
	Text  string
}

// DismissModalMsg closes the top overlay.
type DismissModalMsg struct{}

// clearNotificationMsg expires notification ID if it is still showing.
type clearNotificationMsg struct {
	ID int
}
