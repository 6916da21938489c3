package ui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mlreg/internal/registry"
	"mlreg/internal/submission"
)

var registerNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func newTestRegister() *RegisterView {
	return NewRegisterView(1, func() time.Time { return registerNow })
}

func validValues() submission.FormValues {
	return submission.FormValues{
		Name:        "churn",
		Description: "predicts churn",
		Algorithm:   "XGBoost",
		Function:    "classification",
		ModelType:   "python",
		TargetLevel: "nominal",
		Modeler:     "ana",
	}
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestRegisterView_StartsOnName(t *testing.T) {
	r := newTestRegister()
	assert.True(t, r.CapturingInput())
	assert.Equal(t, fieldName, r.Focus.Current)
	assert.False(t, r.FileMode())

	typeText(r, "churn")
	assert.Equal(t, "churn", r.Values().Name)
}

func TestRegisterView_TabOrderAndChoices(t *testing.T) {
	r := newTestRegister()

	r.Update(keyMsg("tab"))
	assert.Equal(t, fieldDescription, r.Focus.Current)
	r.Update(keyMsg("tab"))
	assert.Equal(t, fieldAlgorithm, r.Focus.Current)

	r.Update(keyMsg("right"))
	assert.Equal(t, "XGBoost", r.Values().Algorithm)
	r.Update(keyMsg("right"))
	assert.Equal(t, "RandomForest", r.Values().Algorithm)
	r.Update(keyMsg("left"))
	assert.Equal(t, "XGBoost", r.Values().Algorithm)
	assert.Contains(t, r.View(), "‹ XGBoost ›")

	r.Update(keyMsg("shift+tab"))
	assert.Equal(t, fieldDescription, r.Focus.Current)
}

func TestRegisterView_EnterInDescriptionAddsLine(t *testing.T) {
	r := newTestRegister()
	r.Update(keyMsg("tab"))
	typeText(r, "a")
	r.Update(keyMsg("enter"))
	typeText(r, "b")
	assert.Equal(t, "a\nb", r.Values().Description)
	assert.Equal(t, fieldDescription, r.Focus.Current)
}

func TestRegisterView_EnterAdvancesFromName(t *testing.T) {
	r := newTestRegister()
	r.Update(keyMsg("enter"))
	assert.Equal(t, fieldDescription, r.Focus.Current)
}

func TestRegisterView_MissingFieldsAreMarked(t *testing.T) {
	r := newTestRegister()
	r.SetValues(submission.FormValues{Description: "d", Function: "regression"})

	_, cmd := r.Update(keyMsg("ctrl+s"))
	require.NotNil(t, cmd)
	notice := findMsg[NotifyMsg](t, cmdMsgs(cmd))

	assert.Equal(t, NotifyError, notice.Level)
	assert.Equal(t, "Missing required fields: name, algorithm, model type, target level, modeler", notice.Text)
	assert.False(t, r.Submitting)
	assert.True(t, r.Invalid[fieldName])
	assert.False(t, r.Invalid[fieldDescription])
	assert.Equal(t, fieldName, r.Focus.Current, "focus jumps to the first invalid field")
	assert.Contains(t, r.View(), "required")

	// Typing clears the marker for that field only.
	typeText(r, "x")
	assert.False(t, r.Invalid[fieldName])
	assert.True(t, r.Invalid[fieldModeler])
}

func TestRegisterView_ManualSubmission(t *testing.T) {
	r := newTestRegister()
	r.SetValues(validValues())

	_, cmd := r.Update(keyMsg("ctrl+s"))
	require.NotNil(t, cmd)
	msg, ok := cmd().(SubmitMsg)
	require.True(t, ok)
	assert.Equal(t, 1, msg.MountID)
	assert.True(t, r.Submitting)

	manual, ok := msg.Submission.(submission.ManualSubmission)
	require.True(t, ok)
	m := manual.Model
	assert.Empty(t, m.ID)
	assert.Equal(t, "churn", m.Name)
	assert.Equal(t, "Python", m.Tool)
	assert.Equal(t, "python", m.ScoreCodeType)
	assert.Equal(t, "python", m.TrainCodeType)
	assert.Equal(t, "ana", m.CreatedBy)
	assert.Equal(t, "ana", m.ModifiedBy)
	assert.True(t, m.CreationTimeStamp.Equal(registerNow))
	assert.Equal(t, submission.DefaultModelVersionName, m.ModelVersionName)

	// A second submit while in flight is ignored.
	_, cmd = r.Update(keyMsg("ctrl+s"))
	assert.Nil(t, cmd)
	assert.Contains(t, r.View(), "Submitting")
}

func TestRegisterView_ResetOnlyAfterSuccess(t *testing.T) {
	r := newTestRegister()
	r.SetValues(validValues())
	r.Submitting = true

	r.Update(SubmitResultMsg{MountID: 1, Err: errors.New("500")})
	assert.False(t, r.Submitting)
	assert.Equal(t, validValues(), r.Values(), "failed submit keeps the input")

	r.Submitting = true
	r.Update(SubmitResultMsg{MountID: 7})
	assert.True(t, r.Submitting, "result for another mount is ignored")

	r.Update(SubmitResultMsg{MountID: 1})
	assert.False(t, r.Submitting)
	assert.Equal(t, submission.FormValues{}, r.Values())
	assert.Equal(t, fieldName, r.Focus.Current)
}

func TestRegisterView_RejectsNonJSONFile(t *testing.T) {
	r := newTestRegister()
	csv := writeTemp(t, "model.csv", "a,b\n")

	r.Update(keyMsg("shift+tab"))
	require.Equal(t, fieldFile, r.Focus.Current)
	typeText(r, csv)
	_, cmd := r.Update(keyMsg("enter"))
	require.NotNil(t, cmd)

	notice := findMsg[NotifyMsg](t, cmdMsgs(cmd))
	assert.Equal(t, NotifyError, notice.Level)
	assert.Equal(t, submission.MsgNotJSON, notice.Text)
	assert.False(t, r.FileMode())
	assert.Empty(t, r.FilePath(), "rejected path is cleared")
}

func TestRegisterView_MissingFileNotifies(t *testing.T) {
	r := newTestRegister()
	r.Update(keyMsg("shift+tab"))
	typeText(r, filepath.Join(t.TempDir(), "absent.json"))
	_, cmd := r.Update(keyMsg("enter"))
	require.NotNil(t, cmd)

	notice := findMsg[NotifyMsg](t, cmdMsgs(cmd))
	assert.True(t, strings.HasPrefix(notice.Text, "Cannot attach file"), notice.Text)
	assert.False(t, r.FileMode())
}

func TestRegisterView_AttachSwitchesToFileMode(t *testing.T) {
	r := newTestRegister()
	path := writeTemp(t, "churn.json", `{"name":"churn"}`)

	r.Update(keyMsg("shift+tab"))
	typeText(r, path)
	_, cmd := r.Update(keyMsg("enter"))
	require.NotNil(t, cmd)
	notice := findMsg[NotifyMsg](t, cmdMsgs(cmd))
	assert.Equal(t, "Attached churn.json", notice.Text)

	require.True(t, r.FileMode())
	assert.Equal(t, fieldSubmit, r.Focus.Current)
	view := r.View()
	assert.Contains(t, view, "churn.json")
	assert.Contains(t, view, "JSON file upload")
	for _, hidden := range []string{"Algorithm", "Description", "Modeler"} {
		assert.NotContains(t, view, hidden)
	}

	// Manual fields are not validated in file mode.
	_, cmd = r.Update(keyMsg("enter"))
	require.NotNil(t, cmd)
	msg, ok := cmd().(SubmitMsg)
	require.True(t, ok)
	file, ok := msg.Submission.(submission.FileSubmission)
	require.True(t, ok)
	assert.Equal(t, path, file.Attachment.Path)
	assert.EqualValues(t, len(`{"name":"churn"}`), file.Attachment.Size)
}

func TestRegisterView_FileModeIgnoresPathKeys(t *testing.T) {
	r := newTestRegister()
	path := writeTemp(t, "churn.json", `{}`)
	r.Update(keyMsg("shift+tab"))
	typeText(r, path)
	r.Update(keyMsg("enter"))
	require.True(t, r.FileMode())

	r.Update(keyMsg("tab"))
	assert.Equal(t, fieldSubmit, r.Focus.Current)
	r.Update(keyMsg("shift+tab"))
	assert.Equal(t, fieldSubmit, r.Focus.Current)

	typeText(r, "abc")
	r.Focus.Current = fieldFile
	typeText(r, "abc")
	assert.Empty(t, r.FilePath(), "the hidden path input takes no text while attached")
	assert.Equal(t, path, r.Attachment.Path)
}

func TestRegisterView_FileModeResetOnlyAfterSuccess(t *testing.T) {
	r := newTestRegister()
	path := writeTemp(t, "m.json", `{"name":"m"}`)
	r.Update(keyMsg("shift+tab"))
	typeText(r, path)
	r.Update(keyMsg("enter"))
	require.True(t, r.FileMode())

	_, cmd := r.Update(keyMsg("ctrl+s"))
	require.NotNil(t, cmd)
	_, ok := cmd().(SubmitMsg)
	require.True(t, ok)

	r.Update(SubmitResultMsg{MountID: 1, Err: errors.New("500")})
	assert.False(t, r.Submitting)
	assert.True(t, r.FileMode(), "failed upload keeps the attachment")

	r.Update(keyMsg("ctrl+s"))
	r.Update(SubmitResultMsg{MountID: 1})
	assert.False(t, r.Submitting)
	assert.False(t, r.FileMode())
	assert.Nil(t, r.Attachment)
	assert.Equal(t, fieldName, r.Focus.Current)
	assert.Contains(t, r.View(), "Algorithm")
}

func TestRegisterView_DetachReturnsToManual(t *testing.T) {
	r := newTestRegister()
	path := writeTemp(t, "churn.json", `{}`)
	r.Update(keyMsg("shift+tab"))
	typeText(r, path)
	r.Update(keyMsg("enter"))
	require.True(t, r.FileMode())

	r.Update(keyMsg("ctrl+x"))
	assert.False(t, r.FileMode())
	assert.Equal(t, fieldFile, r.Focus.Current)
	assert.Contains(t, r.View(), "Algorithm")
}

func TestRegisterView_EscReleasesKeyboard(t *testing.T) {
	r := newTestRegister()
	r.Update(keyMsg("esc"))
	assert.False(t, r.CapturingInput())

	typeText(r, "x")
	assert.Empty(t, r.Values().Name, "inactive form ignores typing")

	r.Update(keyMsg("i"))
	assert.True(t, r.CapturingInput())
	typeText(r, "y")
	assert.Equal(t, "y", r.Values().Name)
}

func TestChoiceField_Cycle(t *testing.T) {
	c := newChoiceField(nil)
	c.Next()
	assert.Equal(t, -1, c.Index, "no options keeps it unset")

	c = newChoiceField(testOptions())
	assert.Contains(t, c.View(false), "Select…")
	c.Prev()
	assert.Equal(t, "c", c.Value(), "prev from unset wraps to the last option")
	c.Next()
	assert.Equal(t, "a", c.Value())
	assert.False(t, c.Select("zzz"))
	assert.Equal(t, "a", c.Value())
	c.Reset()
	assert.Empty(t, c.Value())
	assert.Equal(t, "A / B / C", c.optionsHint())
}

func testOptions() []registry.Choice {
	return []registry.Choice{{Value: "a", Label: "A"}, {Value: "b", Label: "B"}, {Value: "c", Label: "C"}}
}
