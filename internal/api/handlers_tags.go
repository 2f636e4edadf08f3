package api

import (
	"encoding/json"
	"net/http"
	"strings"
)

type createTagRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// handleTags serves the tag collection
func (s *Server) handleTags(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		tags, err := s.store.ListTags()
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to list tags")
			return
		}
		writeJSON(w, http.StatusOK, tags)

	case http.MethodPost:
		var req createTagRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if strings.TrimSpace(req.Name) == "" {
			writeError(w, http.StatusBadRequest, "name is required")
			return
		}

		tag, err := s.store.CreateTag(req.Name, req.Color)
		if err != nil {
			writeError(w, http.StatusConflict, "failed to create tag")
			return
		}
		writeJSON(w, http.StatusCreated, tag)

	default:
		methodNotAllowed(w)
	}
}

// handleTag deletes one tag
func (s *Server) handleTag(w http.ResponseWriter, r *http.Request) {
	id, sub, err := pathID(r.URL.Path, "/api/v1/tags/")
	if err != nil || sub != "" {
		writeError(w, http.StatusBadRequest, "invalid tag id")
		return
	}
	if r.Method != http.MethodDelete {
		methodNotAllowed(w)
		return
	}

	if err := s.store.DeleteTag(id); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
