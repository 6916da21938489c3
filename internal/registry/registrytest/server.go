// Package registrytest provides an in-memory model registry served over
// httptest for client, UI and CLI tests.
package registrytest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"mlreg/internal/registry"
)

// Server is a fake registry. Zero value is not usable; call New.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	models   []registry.Model
	history  map[string][]registry.Model
	failures map[string]int
	requests []string
	now      func() time.Time
}

// New starts a fake registry seeded with models.
func New(models ...registry.Model) *Server {
	s := &Server{
		history:  make(map[string][]registry.Model),
		failures: make(map[string]int),
		now:      time.Now,
	}
	for _, m := range models {
		s.store(m)
	}
	s.Server = httptest.NewServer(s.routes())
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record)
	r.Get(registry.PathModels, s.handleList)
	r.Post(registry.PathModels, s.handleCreate)
	r.Get(registry.PathSummary, s.handleSummary)
	r.Post(registry.PathImportFile, s.handleImport)
	r.Get(registry.PathModels+"/{id}", s.handleGet)
	return r
}

// FailNext makes the next request to path answer with status.
func (s *Server) FailNext(path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[path] = status
}

// Models returns a copy of the stored models in insertion order.
func (s *Server) Models() []registry.Model {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]registry.Model, len(s.models))
	copy(out, s.models)
	return out
}

// Requests returns "METHOD /path" for every request served so far.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.requests))
	copy(out, s.requests)
	return out
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.Method+" "+r.URL.Path)
		status, fail := s.failures[r.URL.Path]
		if fail {
			delete(s.failures, r.URL.Path)
		}
		s.mu.Unlock()
		if fail {
			writeJSON(w, status, map[string]string{"detail": http.StatusText(status)})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Models())
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()

	revs := s.history[id]
	if len(revs) == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Model not found"})
		return
	}
	if v := r.URL.Query().Get("version"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > len(revs) {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Model version not found"})
			return
		}
		writeJSON(w, http.StatusOK, revs[n-1])
		return
	}
	writeJSON(w, http.StatusOK, revs[len(revs)-1])
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var m registry.Model
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, validationDetail("body", "invalid JSON"))
		return
	}
	if missing := missingFields(m); len(missing) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, validationDetail(missing...))
		return
	}
	writeJSON(w, http.StatusOK, s.create(m))
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	f, hdr, err := r.FormFile(registry.ImportFieldName)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, validationDetail("file"))
		return
	}
	defer f.Close()
	if !strings.HasSuffix(strings.ToLower(hdr.Filename), ".json") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Only JSON files are allowed"})
		return
	}
	data, err := io.ReadAll(f)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Unreadable file"})
		return
	}
	var m registry.Model
	if err := json.Unmarshal(data, &m); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Invalid JSON file"})
		return
	}
	writeJSON(w, http.StatusOK, s.create(m))
}

func (s *Server) handleSummary(w http.ResponseWriter, _ *http.Request) {
	models := s.Models()
	if len(models) == 0 {
		writeJSON(w, http.StatusOK, map[string]any{})
		return
	}
	writeJSON(w, http.StatusOK, Summarize(models))
}

func (s *Server) create(m registry.Model) registry.Model {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreationTimeStamp.IsZero() {
		m.CreationTimeStamp = registry.NewTimestamp(s.now())
	}
	if m.ModifiedTimeStamp.IsZero() {
		m.ModifiedTimeStamp = m.CreationTimeStamp
	}
	return s.storeLocked(m)
}

func (s *Server) store(m registry.Model) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	s.storeLocked(m)
}

// storeLocked appends a revision; a known id replaces the list entry.
func (s *Server) storeLocked(m registry.Model) registry.Model {
	m.Version = len(s.history[m.ID]) + 1
	s.history[m.ID] = append(s.history[m.ID], m)
	for i := range s.models {
		if s.models[i].ID == m.ID {
			s.models[i] = m
			return m
		}
	}
	s.models = append(s.models, m)
	return m
}

// Summarize aggregates models the way the registry's dashboard endpoint does.
func Summarize(models []registry.Model) registry.Summary {
	sum := registry.Summary{
		TotalModels:  len(models),
		Algorithms:   registry.Counts{},
		Functions:    registry.Counts{},
		Languages:    registry.Counts{},
		ModelTypes:   registry.Counts{},
		TargetLevels: registry.Counts{},
		Tools:        registry.Counts{},
	}
	for _, m := range models {
		bump(sum.Algorithms, m.Algorithm)
		bump(sum.Functions, m.Function)
		bump(sum.Languages, m.ScoreCodeType)
		bump(sum.ModelTypes, m.ModelType)
		bump(sum.TargetLevels, m.TargetLevel)
		bump(sum.Tools, m.Tool)
	}
	return sum
}

func bump(c registry.Counts, key string) {
	if key != "" {
		c[key]++
	}
}

func missingFields(m registry.Model) []string {
	var missing []string
	if m.Name == "" {
		missing = append(missing, "name")
	}
	if m.Algorithm == "" {
		missing = append(missing, "algorithm")
	}
	if m.Function == "" {
		missing = append(missing, "function")
	}
	return missing
}

func validationDetail(fields ...string) map[string]any {
	items := make([]map[string]any, 0, len(fields))
	for _, f := range fields {
		items = append(items, map[string]any{
			"loc":  []any{"body", f},
			"msg":  "field required",
			"type": "value_error.missing",
		})
	}
	return map[string]any{"detail": items}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
