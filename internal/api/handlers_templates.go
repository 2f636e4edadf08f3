package api

import (
	"encoding/json"
	"net/http"
	"strings"
)

type createTemplateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Body        string `json:"body"`
	CreatedBy   int64  `json:"created_by"`
}

// handleTemplates serves the test-template collection
func (s *Server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		templates, err := s.store.ListTemplates()
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to list templates")
			return
		}
		writeJSON(w, http.StatusOK, templates)

	case http.MethodPost:
		var req createTemplateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Body) == "" {
			writeError(w, http.StatusBadRequest, "name and body are required")
			return
		}

		template, err := s.store.CreateTemplate(req.Name, req.Description, req.Body, req.CreatedBy)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to create template")
			return
		}
		writeJSON(w, http.StatusCreated, template)

	default:
		methodNotAllowed(w)
	}
}

// handleTemplate serves one test template
func (s *Server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	id, sub, err := pathID(r.URL.Path, "/api/v1/templates/")
	if err != nil || sub != "" {
		writeError(w, http.StatusBadRequest, "invalid template id")
		return
	}

	switch r.Method {
	case http.MethodGet:
		template, err := s.store.GetTemplate(id)
		if err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, template)

	case http.MethodDelete:
		if err := s.store.DeleteTemplate(id); err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w)
	}
}
