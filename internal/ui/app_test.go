package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mlreg/internal/registry"
	"mlreg/internal/registry/registrytest"
	"mlreg/internal/submission"
)

// fakeRegistry serves canned responses and records writes.
type fakeRegistry struct {
	summary    *registry.Summary
	summaryErr error
	models     []registry.Model
	modelsErr  error
	createErr  error
	created    []registry.Model
	imported   []string
}

func (f *fakeRegistry) Summary(context.Context) (*registry.Summary, error) {
	return f.summary, f.summaryErr
}

func (f *fakeRegistry) ListModels(context.Context) ([]registry.Model, error) {
	return f.models, f.modelsErr
}

func (f *fakeRegistry) GetModel(_ context.Context, id string, _ int) (*registry.Model, error) {
	for _, m := range f.models {
		if m.ID == id {
			m := m
			return &m, nil
		}
	}
	return nil, &registry.APIError{StatusCode: 404, Detail: "Model not found"}
}

func (f *fakeRegistry) CreateModel(_ context.Context, m registry.Model) (*registry.Model, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	m.ID = fmt.Sprintf("id-%d", len(f.created)+1)
	f.created = append(f.created, m)
	return &m, nil
}

func (f *fakeRegistry) ImportFile(_ context.Context, name string, r io.Reader) (*registry.Model, error) {
	if _, err := io.ReadAll(r); err != nil {
		return nil, err
	}
	f.imported = append(f.imported, name)
	return &registry.Model{ID: "imported", Name: name}, nil
}

func testModels() []registry.Model {
	at := func(day int) registry.Timestamp {
		return registry.NewTimestamp(time.Date(2025, 3, day, 12, 0, 0, 0, time.UTC))
	}
	return []registry.Model{
		{ID: "m1", Name: "churn", Algorithm: "XGBoost", Function: "classification", CreatedBy: "ana", ModifiedTimeStamp: at(3), ModelVersionName: "1.0"},
		{ID: "m2", Name: "Price", Algorithm: "RandomForest", Function: "regression", CreatedBy: "bo", ModifiedTimeStamp: at(1), ModelVersionName: "1.0"},
		{ID: "m3", Name: "segments", Algorithm: "XGBoost", Function: "clustering", CreatedBy: "cy", ModifiedTimeStamp: at(2), ModelVersionName: "2.0"},
		{ID: "m4", Name: "assistant", Algorithm: "LLM", Function: "generative", CreatedBy: "di", ModifiedTimeStamp: at(5), ModelVersionName: "1.0"},
	}
}

func newTestApp(reg Registry) (*AppModel, tea.Model) {
	m := NewAppModel(reg, Options{NoticeTTL: time.Millisecond, PageSize: 2})
	return m, m.AsTeaModel()
}

// cmdMsgs runs cmd and flattens batches one level. Only use it with
// commands known to return immediately (fetches, spinner.Tick, blink init).
func cmdMsgs(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return []tea.Msg{msg}
	}
	var out []tea.Msg
	for _, c := range batch {
		if c != nil {
			out = append(out, c())
		}
	}
	return out
}

func findMsg[T any](t *testing.T, msgs []tea.Msg) T {
	t.Helper()
	for _, m := range msgs {
		if v, ok := m.(T); ok {
			return v
		}
	}
	var zero T
	t.Fatalf("no %T among %#v", zero, msgs)
	return zero
}

// selectView presses key and applies the resulting SelectViewMsg.
func selectView(t *testing.T, app tea.Model, key string) []tea.Msg {
	t.Helper()
	_, cmd := app.Update(keyMsg(key))
	require.NotNil(t, cmd, "key %q should be bound", key)
	sel, ok := cmd().(SelectViewMsg)
	require.True(t, ok, "key %q should select a view", key)
	_, cmd = app.Update(sel)
	return cmdMsgs(cmd)
}

func TestApp_StartsOnDashboardAndLoadsSummary(t *testing.T) {
	fake := &fakeRegistry{summary: &registry.Summary{TotalModels: 5, Algorithms: registry.Counts{"XGBoost": 3}}}
	m, app := newTestApp(fake)

	assert.Equal(t, ViewDashboard, m.Active)
	assert.Equal(t, 1, m.MountID)
	assert.Contains(t, app.View(), "Loading summary")

	loaded := findMsg[SummaryLoadedMsg](t, cmdMsgs(app.Init()))
	assert.Equal(t, 1, loaded.MountID)
	app.Update(loaded)

	view := app.View()
	assert.Contains(t, view, "ML Models Registry")
	assert.Contains(t, view, "Total models")
	assert.Contains(t, view, "5")
	assert.Contains(t, view, "XGBoost: 3")
}

func TestApp_SummaryFailureRendersNoData(t *testing.T) {
	fake := &fakeRegistry{summaryErr: errors.New("connection refused")}
	_, app := newTestApp(fake)

	app.Update(findMsg[SummaryLoadedMsg](t, cmdMsgs(app.Init())))
	assert.Contains(t, app.View(), MsgNoData)
}

func TestApp_SelectViewMountsFreshInstance(t *testing.T) {
	fake := &fakeRegistry{models: testModels()}
	m, app := newTestApp(fake)

	msgs := selectView(t, app, "3")
	assert.Equal(t, ViewList, m.Active)
	assert.Equal(t, 2, m.MountID)
	require.NotNil(t, m.List)
	assert.Nil(t, m.Dashboard)
	loaded := findMsg[ModelsLoadedMsg](t, msgs)
	assert.Equal(t, 2, loaded.MountID)

	selectView(t, app, "1")
	assert.Equal(t, ViewDashboard, m.Active)
	assert.Equal(t, 3, m.MountID)
	assert.Nil(t, m.List)
}

func TestApp_SelectActiveViewIsNoop(t *testing.T) {
	m, app := newTestApp(&fakeRegistry{})
	before := m.Dashboard

	_, cmd := app.Update(SelectViewMsg{Kind: ViewDashboard})
	assert.Nil(t, cmd)
	assert.Equal(t, 1, m.MountID)
	assert.Same(t, before, m.Dashboard)
}

func TestApp_LeaderSequenceSelectsView(t *testing.T) {
	m, app := newTestApp(&fakeRegistry{})

	app.Update(keyMsg(" "))
	assert.Contains(t, app.View(), "View")
	app.Update(keyMsg("v"))
	_, cmd := app.Update(keyMsg("r"))
	require.NotNil(t, cmd)
	app.Update(cmd())
	assert.Equal(t, ViewRegister, m.Active)
}

func TestApp_DiscardsResponsesForUnmountedViews(t *testing.T) {
	fake := &fakeRegistry{summary: &registry.Summary{TotalModels: 9}}
	m, app := newTestApp(fake)
	stale := findMsg[SummaryLoadedMsg](t, cmdMsgs(app.Init()))

	selectView(t, app, "3")
	selectView(t, app, "1")
	require.Equal(t, 3, m.MountID)

	app.Update(stale)
	assert.True(t, m.Dashboard.Loading, "summary for mount 1 must not reach mount 3")
	assert.Nil(t, m.Dashboard.Summary)
}

func TestApp_ListLoadFailureNotifies(t *testing.T) {
	fake := &fakeRegistry{modelsErr: errors.New("boom")}
	m, app := newTestApp(fake)

	msgs := selectView(t, app, "3")
	app.Update(findMsg[ModelsLoadedMsg](t, msgs))

	assert.Equal(t, NotifyError, m.Notice.Level)
	assert.Equal(t, MsgLoadModelsFailed, m.Notice.Text)
	assert.Empty(t, m.List.Models)
	assert.Contains(t, app.View(), "No models")
}

func TestApp_QuitKeys(t *testing.T) {
	for _, seq := range [][]string{{"q"}, {"ctrl+c"}, {" ", "q"}} {
		_, app := newTestApp(&fakeRegistry{})
		var cmd tea.Cmd
		for _, k := range seq {
			_, cmd = app.Update(keyMsg(k))
		}
		require.NotNil(t, cmd, "sequence %v", seq)
		_, ok := cmd().(tea.QuitMsg)
		assert.True(t, ok, "sequence %v should quit", seq)
	}
}

func TestApp_CapturingFormBypassesShellKeys(t *testing.T) {
	m, app := newTestApp(&fakeRegistry{})
	selectView(t, app, "2")
	require.True(t, m.Register.CapturingInput())

	app.Update(keyMsg("1"))
	app.Update(keyMsg("q"))
	assert.Equal(t, ViewRegister, m.Active)
	assert.Equal(t, "1q", m.Register.Values().Name)

	// ctrl+c always quits
	_, cmd := app.Update(keyMsg("ctrl+c"))
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)

	// esc releases the form; shell keys work again
	app.Update(keyMsg("esc"))
	assert.False(t, m.Register.CapturingInput())
	_, cmd = app.Update(keyMsg("1"))
	require.NotNil(t, cmd)
	assert.Equal(t, SelectViewMsg{Kind: ViewDashboard}, cmd())
}

func TestApp_SubmitResultNotifiesEvenWhenUnmounted(t *testing.T) {
	m, app := newTestApp(&fakeRegistry{})
	app.Update(SubmitResultMsg{MountID: 42, Submission: submission.ManualSubmission{}, Model: &registry.Model{ID: "x"}})
	assert.Equal(t, NotifySuccess, m.Notice.Level)
	assert.Equal(t, submission.MsgManualRegistered, m.Notice.Text)

	app.Update(SubmitResultMsg{MountID: 42, Submission: submission.FileSubmission{},
		Err: fmt.Errorf("upload: %w", &registry.APIError{StatusCode: 400, Detail: "Invalid JSON file"})})
	assert.Equal(t, NotifyError, m.Notice.Level)
	assert.Equal(t, "Failed to register model: Invalid JSON file", m.Notice.Text)
}

func TestApp_NotificationExpires(t *testing.T) {
	m, app := newTestApp(&fakeRegistry{})
	_, cmd := app.Update(NotifyMsg{Level: NotifyInfo, Text: "first"})
	first := m.Notice.ID
	require.NotNil(t, cmd)
	assert.Equal(t, clearNotificationMsg{ID: first}, cmd())

	app.Update(NotifyMsg{Level: NotifyInfo, Text: "second"})
	app.Update(clearNotificationMsg{ID: first})
	assert.Equal(t, "second", m.Notice.Text, "stale expiry must not clear a newer notice")

	app.Update(clearNotificationMsg{ID: m.Notice.ID})
	assert.False(t, m.Notice.Active())
	assert.NotContains(t, app.View(), "second")
}

func TestApp_ModelDetailOverlay(t *testing.T) {
	fake := &fakeRegistry{models: testModels()}
	m, app := newTestApp(fake)
	app.Update(findMsg[ModelsLoadedMsg](t, selectView(t, app, "3")))

	_, cmd := app.Update(keyMsg("enter"))
	require.NotNil(t, cmd)
	show, ok := cmd().(ShowModelDetailMsg)
	require.True(t, ok)
	assert.Equal(t, "m1", show.ID)

	_, cmd = app.Update(show)
	require.Equal(t, 1, m.Overlays.Len())
	assert.Contains(t, app.(*appModelAdapter).shellHint(), "esc: close")
	app.Update(findMsg[ModelDetailLoadedMsg](t, cmdMsgs(cmd)))

	top, _ := m.Overlays.Peek()
	modal := top.View.(*ModelDetailModal)
	assert.Contains(t, modal.Content(), "churn")
	assert.Contains(t, app.View(), "Model details")

	// Overlay swallows list keys until dismissed.
	app.Update(keyMsg("j"))
	assert.Equal(t, 0, m.List.Cursor)
	app.Update(keyMsg("esc"))
	assert.Equal(t, 0, m.Overlays.Len())
}

func TestApp_ListLeaderBindings(t *testing.T) {
	m, app := newTestApp(&fakeRegistry{models: testModels()})

	// Not bound outside the models table.
	app.Update(keyMsg(" "))
	_, cmd := app.Update(keyMsg("s"))
	assert.Nil(t, cmd)

	app.Update(findMsg[ModelsLoadedMsg](t, selectView(t, app, "3")))
	app.Update(keyMsg(" "))
	assert.Contains(t, app.View(), "Sort by name")
	_, cmd = app.Update(keyMsg("s"))
	require.NotNil(t, cmd)
	app.Update(cmd())
	assert.Equal(t, ListSort{Field: SortByName}, m.List.Sort)
	assert.Equal(t, "assistant", m.List.Page()[0].Name)

	app.Update(keyMsg(" "))
	_, cmd = app.Update(keyMsg("f"))
	require.NotNil(t, cmd)
	app.Update(cmd())
	assert.Equal(t, "XGBoost", m.List.Filter)
}

func TestApp_EditIsInert(t *testing.T) {
	m, app := newTestApp(&fakeRegistry{models: testModels()})
	app.Update(findMsg[ModelsLoadedMsg](t, selectView(t, app, "3")))

	_, cmd := app.Update(keyMsg("e"))
	require.NotNil(t, cmd)
	app.Update(cmd())
	assert.Equal(t, MsgEditUnavailable, m.Notice.Text)
	assert.Len(t, m.List.Models, 4)
}

func TestApp_ManualRegistrationAgainstFakeServer(t *testing.T) {
	srv := registrytest.New()
	defer srv.Close()
	client, err := registry.New(srv.URL)
	require.NoError(t, err)

	m, app := newTestApp(client)
	selectView(t, app, "2")
	m.Register.SetValues(submission.FormValues{
		Name: "churn", Description: "d", Algorithm: "XGBoost", Function: "classification",
		ModelType: "python", TargetLevel: "nominal", Modeler: "ana",
	})

	_, cmd := app.Update(keyMsg("ctrl+s"))
	require.NotNil(t, cmd)
	submit, ok := cmd().(SubmitMsg)
	require.True(t, ok)
	_, cmd = app.Update(submit)
	result, ok := cmd().(SubmitResultMsg)
	require.True(t, ok)
	require.NoError(t, result.Err)
	app.Update(result)

	assert.Equal(t, NotifySuccess, m.Notice.Level)
	assert.Equal(t, submission.FormValues{}, m.Register.Values())
	stored := srv.Models()
	require.Len(t, stored, 1)
	assert.Equal(t, "Python", stored[0].Tool)
	assert.Equal(t, "3.9", stored[0].ToolVersion)
	assert.Equal(t, "ana", stored[0].CreatedBy)
}

func TestApp_FileRegistrationAgainstFakeServer(t *testing.T) {
	srv := registrytest.New()
	defer srv.Close()
	client, err := registry.New(srv.URL)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "churn.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"name":"churn","algorithm":"XGBoost"}`), 0o644))

	m, app := newTestApp(client)
	selectView(t, app, "2")
	app.Update(keyMsg("shift+tab"))
	typeText(m.Register, path)
	app.Update(keyMsg("enter"))
	require.True(t, m.Register.FileMode())

	_, cmd := app.Update(keyMsg("ctrl+s"))
	require.NotNil(t, cmd)
	submit, ok := cmd().(SubmitMsg)
	require.True(t, ok)
	_, cmd = app.Update(submit)
	result, ok := cmd().(SubmitResultMsg)
	require.True(t, ok)
	require.NoError(t, result.Err)
	app.Update(result)

	assert.Equal(t, NotifySuccess, m.Notice.Level)
	assert.Equal(t, submission.SuccessMessage(submit.Submission), m.Notice.Text)
	assert.False(t, m.Register.FileMode())
	assert.Equal(t, fieldName, m.Register.Focus.Current)
	assert.Equal(t, []string{"POST " + registry.PathImportFile}, srv.Requests())
	require.Len(t, srv.Models(), 1)
	assert.Equal(t, "churn", srv.Models()[0].Name)
}

func TestApp_ViewShowsMenuAndHint(t *testing.T) {
	_, app := newTestApp(&fakeRegistry{})
	view := app.View()
	for _, want := range []string{"1 Dashboard", "2 Register model", "3 Models", "SPC: commands"} {
		assert.True(t, strings.Contains(view, want), "view missing %q", want)
	}
}
