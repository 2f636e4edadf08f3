package api

import (
	"encoding/json"
	"net/http"
	"strings"
)

type createRetestRequest struct {
	ReportID    int64  `json:"report_id"`
	TestKey     string `json:"test_key"`
	RequestedBy int64  `json:"requested_by"`
}

type markFixedRequest struct {
	TestKey   string `json:"test_key"`
	VersionID int64  `json:"version_id"`
	MarkedBy  int64  `json:"marked_by"`
}

// handleRetests serves the retest queue
func (s *Server) handleRetests(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		requests, err := s.store.ListRetestRequests(r.URL.Query().Get("status"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to list retest requests")
			return
		}
		writeJSON(w, http.StatusOK, requests)

	case http.MethodPost:
		var req createRetestRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.ReportID <= 0 || strings.TrimSpace(req.TestKey) == "" {
			writeError(w, http.StatusBadRequest, "report_id and test_key are required")
			return
		}

		id, err := s.store.CreateRetestRequest(req.ReportID, req.TestKey, req.RequestedBy)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to create retest request")
			return
		}
		writeJSON(w, http.StatusCreated, map[string]int64{"id": id})

	default:
		methodNotAllowed(w)
	}
}

// handleRetest resolves one retest request
func (s *Server) handleRetest(w http.ResponseWriter, r *http.Request) {
	id, sub, err := pathID(r.URL.Path, "/api/v1/retests/")
	if err != nil || sub != "resolve" {
		writeError(w, http.StatusNotFound, "unknown retest resource")
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	if err := s.store.ResolveRetestRequest(id); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleFixedTests lists fixed tests and records new ones
func (s *Server) handleFixedTests(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		fixed, err := s.store.ListFixedTests()
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to list fixed tests")
			return
		}
		writeJSON(w, http.StatusOK, fixed)

	case http.MethodPost:
		var req markFixedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if strings.TrimSpace(req.TestKey) == "" || req.VersionID <= 0 {
			writeError(w, http.StatusBadRequest, "test_key and version_id are required")
			return
		}

		id, err := s.store.MarkTestFixed(req.TestKey, req.VersionID, req.MarkedBy)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to mark test fixed")
			return
		}
		writeJSON(w, http.StatusCreated, map[string]int64{"id": id})

	default:
		methodNotAllowed(w)
	}
}
