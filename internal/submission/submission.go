// Package submission turns registration input into registry requests.
//
// A registration is either a FileSubmission (a JSON descriptor uploaded as
// is) or a ManualSubmission (a Model synthesized from form values). The two
// are mutually exclusive; Submit dispatches on the concrete type.
package submission

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mlreg/internal/registry"
)

// Defaults injected into manually assembled payloads.
const (
	DefaultModeler          = "anonymous"
	DefaultToolVersion      = "3.9"
	DefaultModelVersionName = "1.0"
)

// Notification texts.
const (
	MsgFileRegistered   = "Model registered from JSON file"
	MsgManualRegistered = "Model registered from form"
	MsgNotJSON          = "Only JSON files are allowed"
	failurePrefix       = "Failed to register model: "
)

var (
	// ErrNotJSON rejects attachments that are not JSON descriptors.
	ErrNotJSON = errors.New("only JSON files are allowed")
	// ErrMissingFields wraps every per-field validation failure.
	ErrMissingFields = errors.New("missing required fields")
)

// Registrar is the subset of *registry.Client that Submit needs.
type Registrar interface {
	CreateModel(ctx context.Context, m registry.Model) (*registry.Model, error)
	ImportFile(ctx context.Context, filename string, r io.Reader) (*registry.Model, error)
}

// Submission is FileSubmission or ManualSubmission.
type Submission interface {
	isSubmission()
}

// FileSubmission uploads an attached descriptor unchanged.
type FileSubmission struct {
	Attachment Attachment
}

// ManualSubmission posts a fully assembled model.
type ManualSubmission struct {
	Model registry.Model
}

func (FileSubmission) isSubmission()   {}
func (ManualSubmission) isSubmission() {}

// Attachment is a validated local JSON file awaiting upload.
type Attachment struct {
	Path        string
	Name        string
	ContentType string
	Size        int64
}

// IsJSONName reports whether name looks like a JSON descriptor, by
// extension or by the MIME type registered for its extension.
func IsJSONName(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == ".json" {
		return true
	}
	if ext == "" {
		return false
	}
	mt, _, err := mime.ParseMediaType(mime.TypeByExtension(ext))
	return err == nil && mt == "application/json"
}

// Attach validates path as an uploadable descriptor.
func Attach(path string) (Attachment, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Attachment{}, fmt.Errorf("attach: empty path")
	}
	if !IsJSONName(path) {
		return Attachment{}, fmt.Errorf("attach %s: %w", filepath.Base(path), ErrNotJSON)
	}
	info, err := os.Stat(path)
	if err != nil {
		return Attachment{}, fmt.Errorf("attach: %w", err)
	}
	if !info.Mode().IsRegular() {
		return Attachment{}, fmt.Errorf("attach %s: not a regular file", path)
	}
	return Attachment{
		Path:        path,
		Name:        filepath.Base(path),
		ContentType: "application/json",
		Size:        info.Size(),
	}, nil
}

// FormValues are the raw manual-mode inputs.
type FormValues struct {
	Name        string
	Description string
	Algorithm   string
	Function    string
	ModelType   string
	TargetLevel string
	Modeler     string
}

// FieldError marks one invalid form field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *FieldError) Unwrap() error {
	return ErrMissingFields
}

// Validate returns the joined FieldErrors for every blank or unknown field,
// or nil. Each error matches ErrMissingFields.
func (v FormValues) Validate() error {
	var errs []error
	required := func(field, value string) bool {
		if strings.TrimSpace(value) == "" {
			errs = append(errs, &FieldError{Field: field, Message: "required"})
			return false
		}
		return true
	}
	choice := func(field, value string, opts []registry.Choice) {
		if required(field, value) && !registry.HasChoice(opts, value) {
			errs = append(errs, &FieldError{
				Field:   field,
				Message: fmt.Sprintf("must be one of %s", strings.Join(registry.ChoiceValues(opts), ", ")),
			})
		}
	}

	required("name", v.Name)
	required("description", v.Description)
	choice("algorithm", v.Algorithm, registry.Algorithms)
	choice("function", v.Function, registry.Functions)
	choice("model type", v.ModelType, registry.ModelTypes)
	choice("target level", v.TargetLevel, registry.TargetLevels)
	required("modeler", v.Modeler)
	return errors.Join(errs...)
}

// InvalidFields lists the field names rejected by err, in order.
func InvalidFields(err error) []string {
	var out []string
	var walk func(error)
	walk = func(e error) {
		switch t := e.(type) {
		case *FieldError:
			out = append(out, t.Field)
		case interface{ Unwrap() []error }:
			for _, inner := range t.Unwrap() {
				walk(inner)
			}
		}
	}
	walk(err)
	return out
}

// BuildPayload synthesizes the create request for v at instant now.
func BuildPayload(v FormValues, now time.Time) registry.Model {
	modeler := strings.TrimSpace(v.Modeler)
	if modeler == "" {
		modeler = DefaultModeler
	}
	ts := registry.NewTimestamp(now)
	return registry.Model{
		CreationTimeStamp: ts,
		CreatedBy:         modeler,
		ModifiedTimeStamp: ts,
		ModifiedBy:        modeler,
		ID:                "",
		Name:              strings.TrimSpace(v.Name),
		Description:       strings.TrimSpace(v.Description),
		ScoreCodeType:     v.ModelType,
		Algorithm:         v.Algorithm,
		Function:          v.Function,
		Modeler:           modeler,
		ModelType:         v.ModelType,
		TrainCodeType:     v.ModelType,
		TargetLevel:       v.TargetLevel,
		Tool:              capitalize(v.ModelType),
		ToolVersion:       DefaultToolVersion,
		ModelVersionName:  DefaultModelVersionName,
		CustomProperties:  []registry.CustomProperty{},
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Submit sends sub to the registry and returns the stored model.
func Submit(ctx context.Context, r Registrar, sub Submission) (*registry.Model, error) {
	switch s := sub.(type) {
	case FileSubmission:
		f, err := os.Open(s.Attachment.Path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", s.Attachment.Name, err)
		}
		defer f.Close()
		return r.ImportFile(ctx, s.Attachment.Name, f)
	case ManualSubmission:
		return r.CreateModel(ctx, s.Model)
	default:
		return nil, fmt.Errorf("unknown submission %T", sub)
	}
}

// SuccessMessage is the notification shown after sub succeeds.
func SuccessMessage(sub Submission) string {
	if _, ok := sub.(FileSubmission); ok {
		return MsgFileRegistered
	}
	return MsgManualRegistered
}

// FailureMessage prefers the server's detail over the transport error text.
func FailureMessage(err error) string {
	var apiErr *registry.APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return failurePrefix + apiErr.Detail
	}
	return failurePrefix + err.Error()
}
