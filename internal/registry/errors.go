package registry

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"mlreg/internal/jsonutil"
)

// APIError is a non-2xx response from the registry.
// Detail carries the server's explanation when the body had one.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("registry returned %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("registry returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// parseDetail extracts the FastAPI-style "detail" field from an error body.
// detail may be a string or a list of {loc, msg, type} validation entries.
// Non-JSON bodies are returned trimmed.
func parseDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return strings.TrimSpace(string(body))
	}
	if len(envelope.Detail) == 0 || jsonutil.IsNull(envelope.Detail) {
		return ""
	}

	var s string
	if err := json.Unmarshal(envelope.Detail, &s); err == nil {
		return s
	}

	var items []map[string]any
	if err := json.Unmarshal(envelope.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, item := range items {
			msg := jsonutil.GetString(item, "msg")
			if msg == "" {
				continue
			}
			if loc := jsonutil.ToString(item["loc"]); loc != "" {
				msg = loc + ": " + msg
			}
			msgs = append(msgs, msg)
		}
		return strings.Join(msgs, "; ")
	}

	return strings.TrimSpace(string(envelope.Detail))
}
