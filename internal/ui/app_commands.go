package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"mlreg/internal/registry"
	"mlreg/internal/submission"
)

// Registry is the registry API the console needs; *registry.Client implements it.
type Registry interface {
	Summary(ctx context.Context) (*registry.Summary, error)
	ListModels(ctx context.Context) ([]registry.Model, error)
	GetModel(ctx context.Context, id string, version int) (*registry.Model, error)
	submission.Registrar
}

var _ Registry = (*registry.Client)(nil)

// loadSummaryCmd fetches the dashboard summary for one dashboard mount.
func loadSummaryCmd(r Registry, mountID int) tea.Cmd {
	return func() tea.Msg {
		sum, err := r.Summary(context.Background())
		return SummaryLoadedMsg{MountID: mountID, Summary: sum, Err: err}
	}
}

// loadModelsCmd fetches the full model collection for one list mount.
func loadModelsCmd(r Registry, mountID int) tea.Cmd {
	return func() tea.Msg {
		models, err := r.ListModels(context.Background())
		return ModelsLoadedMsg{MountID: mountID, Models: models, Err: err}
	}
}

// submitCmd sends a registration. The result is reported even if the form
// that asked has since been unmounted.
func submitCmd(r Registry, mountID int, sub submission.Submission) tea.Cmd {
	return func() tea.Msg {
		m, err := submission.Submit(context.Background(), r, sub)
		return SubmitResultMsg{MountID: mountID, Submission: sub, Model: m, Err: err}
	}
}

// loadModelDetailCmd fetches the latest revision of one model.
func loadModelDetailCmd(r Registry, id string) tea.Cmd {
	return func() tea.Msg {
		m, err := r.GetModel(context.Background(), id, 0)
		return ModelDetailLoadedMsg{ID: id, Model: m, Err: err}
	}
}
