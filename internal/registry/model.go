package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// CustomProperty is an open-ended name/value annotation on a model.
type CustomProperty struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Type  string `json:"type"`
}

// Model is a registered machine-learning artifact as the registry serializes it.
// List responses may carry only a subset of fields.
type Model struct {
	CreationTimeStamp Timestamp        `json:"creationTimeStamp"`
	CreatedBy         string           `json:"createdBy"`
	ModifiedTimeStamp Timestamp        `json:"modifiedTimeStamp"`
	ModifiedBy        string           `json:"modifiedBy"`
	ID                string           `json:"id"`
	Name              string           `json:"name"`
	Description       string           `json:"description"`
	ScoreCodeType     string           `json:"scoreCodeType"`
	Algorithm         string           `json:"algorithm"`
	Function          string           `json:"function"`
	Modeler           string           `json:"modeler"`
	ModelType         string           `json:"modelType"`
	TrainCodeType     string           `json:"trainCodeType"`
	TargetLevel       string           `json:"targetLevel"`
	Tool              string           `json:"tool"`
	ToolVersion       string           `json:"toolVersion"`
	ExternalURL       *string          `json:"externalUrl,omitempty"`
	ModelVersionName  string           `json:"modelVersionName"`
	CustomProperties  []CustomProperty `json:"custom_properties"`
	// Version is the server-side revision counter; zero in create requests.
	Version int `json:"version,omitempty"`
}

// Choice is a selectable value with its display label.
type Choice struct {
	Value string
	Label string
}

// Enumerations offered by the registration form.
var (
	Algorithms = []Choice{
		{"XGBoost", "XGBoost"},
		{"RandomForest", "Random Forest"},
		{"Neural Network", "Neural Network"},
		{"LLM", "LLM"},
	}
	Functions = []Choice{
		{"classification", "Classification"},
		{"regression", "Regression"},
		{"clustering", "Clustering"},
		{"generative", "Generative"},
	}
	ModelTypes = []Choice{
		{"python", "Python"},
		{"r", "R"},
		{"java", "Java"},
	}
	TargetLevels = []Choice{
		{"nominal", "Nominal"},
		{"ordinal", "Ordinal"},
		{"interval", "Interval"},
		{"ratio", "Ratio"},
	}
)

// HasChoice reports whether value is one of opts.
func HasChoice(opts []Choice, value string) bool {
	for _, o := range opts {
		if o.Value == value {
			return true
		}
	}
	return false
}

// ChoiceValues returns the wire values of opts, for help text and errors.
func ChoiceValues(opts []Choice) []string {
	out := make([]string, len(opts))
	for i, o := range opts {
		out[i] = o.Value
	}
	return out
}

// Timestamp is a time that tolerates the registry's ISO-8601 variants on decode
// (with or without zone, any fractional precision) and encodes as UTC
// milliseconds with a Z suffix. The zero value encodes as null.
type Timestamp struct {
	time.Time
}

const timestampLayout = "2006-01-02T15:04:05.000Z"

var parseLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// NewTimestamp wraps t.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// ParseTimestamp parses any layout the registry is known to emit.
func ParseTimestamp(s string) (Timestamp, error) {
	s = strings.TrimSpace(s)
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(timestampLayout))
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*t = Timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	if s == "" {
		*t = Timestamp{}
		return nil
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
