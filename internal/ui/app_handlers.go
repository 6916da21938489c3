package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"mlreg/internal/registry"
	"mlreg/internal/submission"
)

// MsgLoadModelsFailed is the notification shown when the list fetch fails.
const MsgLoadModelsFailed = "Failed to load models"

// handleKey routes a key press: ctrl+c, then overlays, then a capturing
// view, then shell bindings, then the active view.
func (a *appModelAdapter) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	if top, ok := a.Overlays.Peek(); ok {
		if top.IsDismissKey(msg.String()) {
			a.Overlays.Pop()
			return a, nil
		}
		cmd, _ := a.Overlays.UpdateTop(msg)
		return a, cmd
	}

	if c, ok := a.currentView().(InputCapturer); ok && c.CapturingInput() {
		v, cmd := a.currentView().Update(msg)
		a.setCurrentView(v)
		return a, cmd
	}

	if a.KeyHandler != nil {
		if consumed, keyCmd := a.KeyHandler.Handle(msg); consumed {
			return a, keyCmd
		}
	}

	v, cmd := a.currentView().Update(msg)
	a.setCurrentView(v)
	return a, cmd
}

// handleSelectView mounts a fresh instance unless kind is already active.
func (a *appModelAdapter) handleSelectView(msg SelectViewMsg) (tea.Model, tea.Cmd) {
	if msg.Kind == a.Active {
		return a, nil
	}
	a.mount(msg.Kind)
	return a, a.mountCmds()
}

func (a *appModelAdapter) handleSummaryLoaded(msg SummaryLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		a.Log.Error().Err(msg.Err).Str("endpoint", registry.PathSummary).Msg("load summary")
	}
	if msg.MountID != a.MountID || a.Dashboard == nil {
		a.Log.Debug().Int("mount", msg.MountID).Msg("discard summary for unmounted view")
		return a, nil
	}
	v, cmd := a.Dashboard.Update(msg)
	a.setCurrentView(v)
	return a, cmd
}

func (a *appModelAdapter) handleModelsLoaded(msg ModelsLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.MountID != a.MountID || a.List == nil {
		if msg.Err != nil {
			a.Log.Error().Err(msg.Err).Str("endpoint", registry.PathModels).Msg("load models")
		}
		a.Log.Debug().Int("mount", msg.MountID).Msg("discard models for unmounted view")
		return a, nil
	}
	var cmds []tea.Cmd
	if msg.Err != nil {
		a.Log.Error().Err(msg.Err).Str("endpoint", registry.PathModels).Msg("load models")
		cmds = append(cmds, a.notify(NotifyError, MsgLoadModelsFailed))
	} else {
		a.Log.Debug().Int("count", len(msg.Models)).Msg("models loaded")
	}
	v, cmd := a.List.Update(msg)
	a.setCurrentView(v)
	return a, tea.Batch(append(cmds, cmd)...)
}

func (a *appModelAdapter) handleSubmit(msg SubmitMsg) (tea.Model, tea.Cmd) {
	switch s := msg.Submission.(type) {
	case submission.FileSubmission:
		a.Log.Info().Str("file", s.Attachment.Path).Msg("upload model descriptor")
	case submission.ManualSubmission:
		a.Log.Info().Str("name", s.Model.Name).Msg("register model")
	}
	fallback := SubmitResultMsg{MountID: msg.MountID, Submission: msg.Submission, Err: errNoRegistry}
	return a, a.withRegistry(func(r Registry) tea.Cmd {
		return submitCmd(r, msg.MountID, msg.Submission)
	}, fallback)
}

// handleSubmitResult notifies regardless of which view is mounted; only the
// form instance that submitted is told to reset.
func (a *appModelAdapter) handleSubmitResult(msg SubmitResultMsg) (tea.Model, tea.Cmd) {
	var notice tea.Cmd
	if msg.Err != nil {
		a.Log.Error().Err(msg.Err).Msg("registration failed")
		notice = a.notify(NotifyError, submission.FailureMessage(msg.Err))
	} else {
		ev := a.Log.Info()
		if msg.Model != nil {
			ev = ev.Str("id", msg.Model.ID)
		}
		ev.Msg("model registered")
		notice = a.notify(NotifySuccess, submission.SuccessMessage(msg.Submission))
	}

	if msg.MountID != a.MountID || a.Register == nil {
		return a, notice
	}
	v, cmd := a.Register.Update(msg)
	a.setCurrentView(v)
	return a, tea.Batch(notice, cmd)
}

func (a *appModelAdapter) handleShowModelDetail(msg ShowModelDetailMsg) (tea.Model, tea.Cmd) {
	modal := NewModelDetailModal(msg.ID)
	if a.Width > 0 {
		modal.Update(tea.WindowSizeMsg{Width: a.Width, Height: a.Height})
	}
	a.Overlays.Push(Overlay{View: modal, Dismiss: "esc"})
	fallback := ModelDetailLoadedMsg{ID: msg.ID, Err: errNoRegistry}
	return a, tea.Batch(modal.Init(), a.withRegistry(func(r Registry) tea.Cmd {
		return loadModelDetailCmd(r, msg.ID)
	}, fallback))
}

func (a *appModelAdapter) handleModelDetailLoaded(msg ModelDetailLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		a.Log.Error().Err(msg.Err).Str("id", msg.ID).Msg("load model detail")
	}
	var cmds []tea.Cmd
	for i := range a.Overlays.Stack {
		modal, ok := a.Overlays.Stack[i].View.(*ModelDetailModal)
		if !ok || modal.ID != msg.ID {
			continue
		}
		v, cmd := modal.Update(msg)
		a.Overlays.Stack[i].View = v
		cmds = append(cmds, cmd)
	}
	return a, tea.Batch(cmds...)
}
