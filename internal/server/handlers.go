package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/takumik/keizu/pkg/buildinfo"
	"github.com/takumik/keizu/pkg/cache"
	"github.com/takumik/keizu/pkg/errors"
	"github.com/takumik/keizu/pkg/fonts"
	"github.com/takumik/keizu/pkg/genealogy"
	"github.com/takumik/keizu/pkg/history"
	"github.com/takumik/keizu/pkg/ledger"
	"github.com/takumik/keizu/pkg/pipeline"
)

// uploadField is the multipart form field carrying the workbook.
const uploadField = "ledger"

// contentTypes maps output formats to response content types.
var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatDOT:  "text/vnd.graphviz",
	pipeline.FormatHTML: "text/html; charset=utf-8",
	pipeline.FormatJSON: "application/json",
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

// handleDiagnostics reports the platform classification and whether the
// resolved CJK font family is installed. An explicit ?font= query checks
// that family instead of the platform default.
func (s *Server) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	var report fonts.Report
	if family := r.URL.Query().Get("font"); family != "" {
		report = fonts.VerifyFamily(r.Context(), family)
	} else {
		report = fonts.Verify(r.Context())
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"platform":   report.Platform.String(),
		"family":     report.Family,
		"checked":    report.Checked,
		"installed":  report.Installed,
		"candidates": fonts.Candidates(report.Platform),
		"version":    buildinfo.Version,
	})
}

// handleRender accepts a workbook upload and responds with one rendered
// artifact. Render options come from query parameters, falling back to
// the configured defaults.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	data, err := s.readUpload(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	opts := s.renderOptions(r, []string{format})

	result, err := s.runner.Execute(r.Context(), data, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.recordHistory(r, data, result, opts)

	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[format])
}

// handleGraph parses a workbook and returns the genealogy as JSON without
// rendering any artifact.
func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	data, err := s.readUpload(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	tree, err := s.runner.Build(r.Context(), data, s.renderOptions(r, nil))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = genealogy.WriteJSON(tree, w)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}

	entries, err := s.history.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "list history"))
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// readUpload extracts the workbook bytes from the multipart form, bounded
// by the configured upload limit.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes())

	file, _, err := r.FormFile(uploadField)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidLedger, err,
			"upload a workbook in the %q form field", uploadField)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidLedger, err, "read upload")
	}
	return data, nil
}

// renderOptions builds pipeline options from query parameters. Omitted
// parameters fall back to the configured defaults, same as the CLI flags.
func (s *Server) renderOptions(r *http.Request, formats []string) pipeline.Options {
	q := r.URL.Query()
	return pipeline.Options{
		Sheet:     firstNonEmpty(q.Get("sheet"), s.cfg.Ledger.Sheet),
		Direction: firstNonEmpty(q.Get("direction"), s.cfg.Render.Direction),
		Font:      firstNonEmpty(q.Get("font"), s.cfg.Render.Font),
		Formats:   formats,
		Refresh:   q.Get("refresh") == "true",
		Logger:    s.logger,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// recordHistory stores run metadata; failures only log.
func (s *Server) recordHistory(r *http.Request, data []byte, result *pipeline.Result, opts pipeline.Options) {
	sheet := opts.Sheet
	if sheet == "" {
		sheet = ledger.DefaultSheet
	}
	entry := history.NewEntry(
		cache.Hash(data),
		sheet,
		opts.Formats,
		result.Stats.NodeCount,
		result.Stats.EdgeCount,
		result.CacheInfo.RenderHit,
	)
	if err := s.history.Add(r.Context(), entry); err != nil {
		s.logger.Warn("record history", "err", err)
	}
}

// writeError maps structured error codes to HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case errors.ErrCodeInvalidLedger, errors.ErrCodeMissingColumn, errors.ErrCodeMissingSheet,
		errors.ErrCodeEmptyLedger, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidDirection,
		errors.ErrCodeGraphCycle:
		status = http.StatusBadRequest
	case errors.ErrCodeConverterMissing:
		status = http.StatusServiceUnavailable
	}

	s.logger.Error("request failed",
		"id", RequestID(r.Context()),
		"code", code,
		"err", err)

	writeJSON(w, status, map[string]string{
		"code":  string(code),
		"error": errors.UserMessage(err),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// handleIndex serves a minimal upload page for manual use.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(indexPage))
}

const indexPage = `<!DOCTYPE html>
<html lang="ja">
<head><meta charset="utf-8"><title>keizu</title></head>
<body>
<h1>図番親子関係の家系図</h1>
<p>Excelファイル (.xlsx) をアップロードして、親子関係グラフを表示します。</p>
<form action="/api/render?format=html" method="post" enctype="multipart/form-data">
  <input type="file" name="ledger" accept=".xlsx" required>
  <button type="submit">家系図を表示</button>
</form>
</body>
</html>
`
