package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/steamtestpanel/steam-test-panel/internal/transfer"
)

// handleExport generates a selective SQL export from a JSON selection body
// and serves it as a file download
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var sel transfer.Selection
	if err := json.NewDecoder(r.Body).Decode(&sel); err != nil {
		http.Error(w, "malformed selection: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(sel) == 0 {
		http.Error(w, "selection is empty", http.StatusBadRequest)
		return
	}

	// The script is buffered so a late query failure cannot corrupt a
	// half-sent download; per-table failures are already inline comments.
	var buf bytes.Buffer
	stats, err := s.exporter.Export(&buf, sel)
	if err != nil {
		s.logger.Errorf("Export failed: %v", err)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}

	s.metrics.ExportsTotal.Inc()
	s.metrics.ExportRowsTotal.Add(float64(stats.Rows))

	filename := fmt.Sprintf("%s_%s.sql", s.config.Server.ExportPrefix, time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/sql")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, &buf)
}

// handleImport executes an uploaded .sql file against the panel database
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.config.Server.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.config.Server.MaxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid upload: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file upload")
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".sql") {
		writeError(w, http.StatusBadRequest, "Only .sql files are accepted.")
		return
	}

	script, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read upload: "+err.Error())
		return
	}
	if len(script) == 0 {
		writeError(w, http.StatusBadRequest, "uploaded file is empty")
		return
	}

	mode, err := transfer.ParseImportMode(r.FormValue("import_mode"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result := s.importer.Run(string(script), mode)

	s.metrics.ImportsTotal.Inc()
	s.metrics.ImportStatements.WithLabelValues("executed").Add(float64(result.Executed))
	s.metrics.ImportStatements.WithLabelValues("skipped").Add(float64(result.Skipped))
	s.metrics.ImportStatements.WithLabelValues("errored").Add(float64(result.Errored))

	s.logger.Infof("Import finished: %d executed, %d skipped, %d errored",
		result.Executed, result.Skipped, result.Errored)

	writeJSON(w, http.StatusOK, result)
}
