// Package registry is the HTTP client for the model registry REST API.
package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"

	"mlreg/internal/jsonutil"
)

// API paths relative to the base URL.
const (
	PathModels     = "/models"
	PathSummary    = "/models/summary/dashboard"
	PathImportFile = "/models/from-json-file"

	// ImportFieldName is the multipart field carrying the descriptor.
	ImportFieldName = "file"
)

// TracerName names the tracer used for request spans.
const TracerName = "mlreg/registry"

// Client talks to one registry. Requests carry no auth headers and no
// pagination parameters, and are never retried.
type Client struct {
	base   *url.URL
	http   *http.Client
	tracer oteltrace.Tracer
	log    zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTracer sets the tracer used for request spans.
func WithTracer(t oteltrace.Tracer) Option {
	return func(c *Client) { c.tracer = t }
}

// WithLogger sets the logger for request diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New returns a client rooted at baseURL (e.g. http://localhost:8000).
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}
	c := &Client{
		base:   u,
		http:   http.DefaultClient,
		tracer: otel.Tracer(TracerName),
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the registry root this client targets.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// Summary fetches the dashboard aggregate. A JSON null body returns (nil, nil).
func (c *Client) Summary(ctx context.Context) (*Summary, error) {
	body, err := c.do(ctx, "registry.Summary", http.MethodGet, PathSummary, nil, "", "")
	if err != nil {
		return nil, err
	}
	if jsonutil.IsNull(body) {
		return nil, nil
	}
	var s Summary
	if err := jsonutil.UnmarshalWithContext(body, &s, "decode summary"); err != nil {
		return nil, err
	}
	return &s, nil
}

// ListModels fetches every model. The server returns the full set.
func (c *Client) ListModels(ctx context.Context) ([]Model, error) {
	body, err := c.do(ctx, "registry.ListModels", http.MethodGet, PathModels, nil, "", "")
	if err != nil {
		return nil, err
	}
	return jsonutil.UnmarshalArrayAllowEmpty[Model](body, "decode models")
}

// GetModel fetches one model. version 0 asks for the latest revision.
func (c *Client) GetModel(ctx context.Context, id string, version int) (*Model, error) {
	if id == "" {
		return nil, fmt.Errorf("get model: empty id")
	}
	query := ""
	if version > 0 {
		query = url.Values{"version": {strconv.Itoa(version)}}.Encode()
	}
	p := path.Join(PathModels, url.PathEscape(id))
	body, err := c.do(ctx, "registry.GetModel", http.MethodGet, p, nil, "", query)
	if err != nil {
		return nil, err
	}
	var m Model
	if err := jsonutil.UnmarshalWithContext(body, &m, "decode model"); err != nil {
		return nil, err
	}
	return &m, nil
}

// CreateModel posts a fully assembled model and returns the stored record.
func (c *Client) CreateModel(ctx context.Context, m Model) (*Model, error) {
	payload, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode model: %w", err)
	}
	body, err := c.do(ctx, "registry.CreateModel", http.MethodPost, PathModels, bytes.NewReader(payload), "application/json", "")
	if err != nil {
		return nil, err
	}
	var created Model
	if err := jsonutil.UnmarshalWithContext(body, &created, "decode created model"); err != nil {
		return nil, err
	}
	return &created, nil
}

// ImportFile uploads a JSON model descriptor as multipart field "file".
func (c *Client) ImportFile(ctx context.Context, filename string, r io.Reader) (*Model, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, ImportFieldName, filename))
	h.Set("Content-Type", "application/json")
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("create multipart part: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart body: %w", err)
	}

	body, err := c.do(ctx, "registry.ImportFile", http.MethodPost, PathImportFile, &buf, mw.FormDataContentType(), "")
	if err != nil {
		return nil, err
	}
	var created Model
	if err := jsonutil.UnmarshalWithContext(body, &created, "decode imported model"); err != nil {
		return nil, err
	}
	return &created, nil
}

// do performs one request inside a span and returns the 2xx body.
// Non-2xx responses become *APIError.
func (c *Client) do(ctx context.Context, spanName, method, p string, body io.Reader, contentType, rawQuery string) ([]byte, error) {
	ctx, span := c.tracer.Start(ctx, spanName, oteltrace.WithSpanKind(oteltrace.SpanKindClient))
	defer span.End()

	u := *c.base
	u.Path = strings.TrimRight(c.base.Path, "/") + p
	u.RawQuery = rawQuery
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("http.url", u.String()),
	)

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, c.fail(span, method, p, fmt.Errorf("build request: %w", err))
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.fail(span, method, p, fmt.Errorf("%s %s: %w", method, p, err))
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.fail(span, method, p, fmt.Errorf("%s %s: read body: %w", method, p, err))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.fail(span, method, p, &APIError{StatusCode: resp.StatusCode, Detail: parseDetail(data)})
	}

	c.log.Debug().Str("method", method).Str("path", p).Int("status", resp.StatusCode).Msg("registry request")
	return data, nil
}

func (c *Client) fail(span oteltrace.Span, method, p string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	c.log.Debug().Err(err).Str("method", method).Str("path", p).Msg("registry request failed")
	return err
}
