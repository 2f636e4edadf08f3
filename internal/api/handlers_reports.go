package api

import (
	"encoding/json"
	"net/http"
	"strings"
)

type createReportRequest struct {
	Title      string `json:"title"`
	Summary    string `json:"summary"`
	ReporterID int64  `json:"reporter_id"`
	VersionID  *int64 `json:"version_id"`
}

type updateReportRequest struct {
	Status  string `json:"status"`
	ActorID int64  `json:"actor_id"`
}

type testResultRequest struct {
	TestKey string `json:"test_key"`
	Result  string `json:"result"`
	Notes   string `json:"notes"`
}

type commentRequest struct {
	AuthorID int64  `json:"author_id"`
	Body     string `json:"body"`
}

type tagAssignmentRequest struct {
	TagID int64 `json:"tag_id"`
}

// handleReports serves the report collection: GET lists, POST creates
func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		reports, err := s.store.ListReports(r.URL.Query().Get("status"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to list reports")
			return
		}
		writeJSON(w, http.StatusOK, reports)

	case http.MethodPost:
		var req createReportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if strings.TrimSpace(req.Title) == "" {
			writeError(w, http.StatusBadRequest, "title is required")
			return
		}
		if req.ReporterID <= 0 {
			writeError(w, http.StatusBadRequest, "reporter_id is required")
			return
		}

		report, err := s.store.CreateReport(req.Title, req.Summary, req.ReporterID, req.VersionID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to create report")
			return
		}
		writeJSON(w, http.StatusCreated, report)

	default:
		methodNotAllowed(w)
	}
}

// handleReport serves a single report and its subresources:
// results, comments, revisions, tags
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	id, sub, err := pathID(r.URL.Path, "/api/v1/reports/")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid report id")
		return
	}

	switch sub {
	case "":
		s.handleReportRoot(w, r, id)
	case "results":
		s.handleReportResults(w, r, id)
	case "comments":
		s.handleReportComments(w, r, id)
	case "revisions":
		s.handleReportRevisions(w, r, id)
	case "tags":
		s.handleReportTags(w, r, id)
	default:
		writeError(w, http.StatusNotFound, "unknown report resource")
	}
}

func (s *Server) handleReportRoot(w http.ResponseWriter, r *http.Request, id int64) {
	switch r.Method {
	case http.MethodGet:
		report, err := s.store.GetReport(id)
		if err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, report)

	case http.MethodPut:
		var req updateReportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Status == "" {
			writeError(w, http.StatusBadRequest, "status is required")
			return
		}

		report, err := s.store.UpdateReportStatus(id, req.Status, req.ActorID)
		if err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, report)

	case http.MethodDelete:
		if err := s.store.DeleteReport(id); err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleReportResults(w http.ResponseWriter, r *http.Request, id int64) {
	switch r.Method {
	case http.MethodGet:
		results, err := s.store.ListTestResults(id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to list test results")
			return
		}
		writeJSON(w, http.StatusOK, results)

	case http.MethodPost:
		var req testResultRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.TestKey == "" || req.Result == "" {
			writeError(w, http.StatusBadRequest, "test_key and result are required")
			return
		}

		if err := s.store.SetTestResult(id, req.TestKey, req.Result, req.Notes); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to record test result")
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleReportComments(w http.ResponseWriter, r *http.Request, id int64) {
	switch r.Method {
	case http.MethodGet:
		comments, err := s.store.ListComments(id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to list comments")
			return
		}
		writeJSON(w, http.StatusOK, comments)

	case http.MethodPost:
		var req commentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if strings.TrimSpace(req.Body) == "" {
			writeError(w, http.StatusBadRequest, "comment body is required")
			return
		}

		commentID, err := s.store.AddComment(id, req.AuthorID, req.Body)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to add comment")
			return
		}
		writeJSON(w, http.StatusCreated, map[string]int64{"id": commentID})

	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleReportRevisions(w http.ResponseWriter, r *http.Request, id int64) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	revisions, err := s.store.ListRevisions(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list revisions")
		return
	}
	writeJSON(w, http.StatusOK, revisions)
}

func (s *Server) handleReportTags(w http.ResponseWriter, r *http.Request, id int64) {
	switch r.Method {
	case http.MethodGet:
		tags, err := s.store.ListReportTags(id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to list report tags")
			return
		}
		writeJSON(w, http.StatusOK, tags)

	case http.MethodPost:
		var req tagAssignmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TagID <= 0 {
			writeError(w, http.StatusBadRequest, "tag_id is required")
			return
		}

		if err := s.store.AssignTag(id, req.TagID); err != nil {
			writeError(w, http.StatusConflict, "failed to assign tag")
			return
		}
		w.WriteHeader(http.StatusNoContent)

	case http.MethodDelete:
		var req tagAssignmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TagID <= 0 {
			writeError(w, http.StatusBadRequest, "tag_id is required")
			return
		}

		if err := s.store.UnassignTag(id, req.TagID); err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w)
	}
}
