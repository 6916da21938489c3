package submission

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mlreg/internal/registry"
	"mlreg/internal/registry/registrytest"
)

func validValues() FormValues {
	return FormValues{
		Name:        "churn",
		Description: "customer churn",
		Algorithm:   "XGBoost",
		Function:    "classification",
		ModelType:   "python",
		TargetLevel: "nominal",
		Modeler:     "ana",
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestBuildPayload_Defaults(t *testing.T) {
	now := time.Date(2025, 3, 12, 16, 50, 51, 0, time.UTC)
	v := validValues()
	v.Modeler = "  "

	m := BuildPayload(v, now)
	assert.Equal(t, "anonymous", m.CreatedBy)
	assert.Equal(t, "anonymous", m.ModifiedBy)
	assert.Equal(t, "anonymous", m.Modeler)
	assert.Equal(t, "", m.ID)
	assert.Equal(t, "Python", m.Tool)
	assert.Equal(t, "3.9", m.ToolVersion)
	assert.Equal(t, "1.0", m.ModelVersionName)
	assert.Equal(t, "python", m.ScoreCodeType)
	assert.Equal(t, "python", m.TrainCodeType)
	assert.True(t, m.CreationTimeStamp.Equal(now))
	assert.True(t, m.ModifiedTimeStamp.Equal(now))
	assert.NotNil(t, m.CustomProperties)
	assert.Empty(t, m.CustomProperties)
}

func TestBuildPayload_ToolFromModelType(t *testing.T) {
	for in, want := range map[string]string{"python": "Python", "r": "R", "java": "Java", "": ""} {
		v := validValues()
		v.ModelType = in
		assert.Equal(t, want, BuildPayload(v, time.Now()).Tool, "model type %q", in)
	}
}

func TestFormValues_Validate(t *testing.T) {
	require.NoError(t, validValues().Validate())

	err := FormValues{Algorithm: "SVM", Function: "classification"}.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingFields))
	assert.Equal(t,
		[]string{"name", "description", "algorithm", "model type", "target level", "modeler"},
		InvalidFields(err))
	assert.Contains(t, err.Error(), "algorithm: must be one of XGBoost, RandomForest, Neural Network, LLM")
}

func TestIsJSONName(t *testing.T) {
	assert.True(t, IsJSONName("model.json"))
	assert.True(t, IsJSONName("MODEL.JSON"))
	assert.False(t, IsJSONName("model.csv"))
	assert.False(t, IsJSONName("model"))
}

func TestAttach(t *testing.T) {
	p := writeFile(t, "model.json", `{"name":"x"}`)
	a, err := Attach(p)
	require.NoError(t, err)
	assert.Equal(t, "model.json", a.Name)
	assert.Equal(t, "application/json", a.ContentType)
	assert.Equal(t, int64(12), a.Size)

	_, err = Attach(writeFile(t, "model.csv", "a,b"))
	assert.True(t, errors.Is(err, ErrNotJSON))

	_, err = Attach(filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, errors.Is(err, os.ErrNotExist))

	dir := filepath.Join(t.TempDir(), "dir.json")
	require.NoError(t, os.Mkdir(dir, 0o755))
	_, err = Attach(dir)
	assert.Error(t, err)

	_, err = Attach("  ")
	assert.Error(t, err)
}

func TestSubmit_Manual(t *testing.T) {
	srv := registrytest.New()
	defer srv.Close()
	c, err := registry.New(srv.URL)
	require.NoError(t, err)

	sub := ManualSubmission{Model: BuildPayload(validValues(), time.Now())}
	created, err := Submit(context.Background(), c, sub)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, MsgManualRegistered, SuccessMessage(sub))

	stored := srv.Models()
	require.Len(t, stored, 1)
	assert.Equal(t, "Python", stored[0].Tool)
	assert.Equal(t, "ana", stored[0].CreatedBy)
}

func TestSubmit_File(t *testing.T) {
	srv := registrytest.New()
	defer srv.Close()
	c, err := registry.New(srv.URL)
	require.NoError(t, err)

	a, err := Attach(writeFile(t, "desc.json", `{"name":"from-file","algorithm":"LLM","function":"generative"}`))
	require.NoError(t, err)
	sub := FileSubmission{Attachment: a}
	created, err := Submit(context.Background(), c, sub)
	require.NoError(t, err)
	assert.Equal(t, "from-file", created.Name)
	assert.Equal(t, MsgFileRegistered, SuccessMessage(sub))
	assert.Contains(t, srv.Requests(), "POST "+registry.PathImportFile)
}

func TestSubmit_FileVanished(t *testing.T) {
	_, err := Submit(context.Background(), stubRegistrar{}, FileSubmission{Attachment: Attachment{Path: "/nonexistent/x.json", Name: "x.json"}})
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestFailureMessage(t *testing.T) {
	assert.Equal(t, "Failed to register model: Invalid JSON file",
		FailureMessage(fmt.Errorf("wrapped: %w", &registry.APIError{StatusCode: 400, Detail: "Invalid JSON file"})))
	assert.Equal(t, "Failed to register model: registry returned 500 Internal Server Error",
		FailureMessage(&registry.APIError{StatusCode: 500}))
	assert.Equal(t, "Failed to register model: connection refused",
		FailureMessage(errors.New("connection refused")))
}

type stubRegistrar struct{}

func (stubRegistrar) CreateModel(context.Context, registry.Model) (*registry.Model, error) {
	return nil, errors.New("not implemented")
}

func (stubRegistrar) ImportFile(context.Context, string, io.Reader) (*registry.Model, error) {
	return nil, errors.New("not implemented")
}
