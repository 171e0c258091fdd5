package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/takumik/keizu/internal/config"
	"github.com/takumik/keizu/pkg/history"
	"github.com/takumik/keizu/pkg/pipeline"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	runner := pipeline.NewRunner(nil, nil, logger)
	return New(config.Defaults(), runner, history.NewMemoryStore(), logger)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q", body["status"])
	}
}

func TestDiagnostics(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/diagnostics", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	family, _ := body["family"].(string)
	if family == "" {
		t.Error("diagnostics should always report a family")
	}
	if _, ok := body["platform"].(string); !ok {
		t.Error("diagnostics missing platform")
	}
}

func TestDiagnosticsFontOverride(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/diagnostics?font=MS+Gothic", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["family"] != "MS Gothic" {
		t.Errorf("family = %v, want override", body["family"])
	}
}

func TestHistoryEmpty(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("empty history = %s, want []", got)
	}
}

func TestRenderMissingUpload(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/render", strings.NewReader("not a form"))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["code"] != "INVALID_LEDGER" {
		t.Errorf("code = %q", body["code"])
	}
}

func TestRenderCorruptWorkbook(t *testing.T) {
	s := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(uploadField, "ledger.xlsx")
	if err != nil {
		t.Fatal(err)
	}
	_, _ = fw.Write([]byte("definitely not a zip archive"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/render?format=dot", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestRenderInvalidFormat(t *testing.T) {
	s := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile(uploadField, "ledger.xlsx")
	_, _ = fw.Write([]byte("payload"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/render?format=gif", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var body map[string]string
	_ = json.NewDecoder(rec.Body).Decode(&body)
	if body["code"] != "INVALID_FORMAT" {
		t.Errorf("code = %q", body["code"])
	}
}

func TestRenderOptionsConfigDefaults(t *testing.T) {
	logger := log.NewWithOptions(io.Discard, log.Options{})
	cfg := config.Defaults()
	cfg.Ledger.Sheet = "Drawings"
	cfg.Render.Direction = "LR"
	cfg.Render.Font = "MS Gothic"
	s := New(cfg, pipeline.NewRunner(nil, nil, logger), history.NewMemoryStore(), logger)

	// Omitted query parameters fall back to the configured defaults.
	req := httptest.NewRequest(http.MethodPost, "/api/render?format=dot", nil)
	opts := s.renderOptions(req, []string{pipeline.FormatDOT})
	if opts.Sheet != "Drawings" {
		t.Errorf("Sheet = %q, want configured default", opts.Sheet)
	}
	if opts.Direction != "LR" {
		t.Errorf("Direction = %q, want configured default", opts.Direction)
	}
	if opts.Font != "MS Gothic" {
		t.Errorf("Font = %q, want configured default", opts.Font)
	}

	// Explicit query parameters win over the config.
	req = httptest.NewRequest(http.MethodPost, "/api/render?sheet=Archive&direction=TB&font=Hiragino+Sans&refresh=true", nil)
	opts = s.renderOptions(req, []string{pipeline.FormatSVG})
	if opts.Sheet != "Archive" {
		t.Errorf("Sheet = %q, want query override", opts.Sheet)
	}
	if opts.Direction != "TB" {
		t.Errorf("Direction = %q, want query override", opts.Direction)
	}
	if opts.Font != "Hiragino Sans" {
		t.Errorf("Font = %q, want query override", opts.Font)
	}
	if !opts.Refresh {
		t.Error("refresh=true should bypass the cache")
	}
}

func TestIndexPage(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ledger") {
		t.Error("index page missing upload form")
	}
}

func TestRequestIDPropagation(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "trace-123")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "trace-123" {
		t.Errorf("X-Request-ID = %q", got)
	}

	// Generated when absent
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing generated request ID")
	}
}
