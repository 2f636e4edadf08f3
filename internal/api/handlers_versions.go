package api

import (
	"encoding/json"
	"net/http"
	"strings"
)

type createVersionRequest struct {
	Version     string `json:"version"`
	Branch      string `json:"branch"`
	MarkCurrent bool   `json:"mark_current"`
}

// handleVersions serves the client-version collection
func (s *Server) handleVersions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		versions, err := s.store.ListVersions()
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to list versions")
			return
		}
		writeJSON(w, http.StatusOK, versions)

	case http.MethodPost:
		var req createVersionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if strings.TrimSpace(req.Version) == "" {
			writeError(w, http.StatusBadRequest, "version is required")
			return
		}

		version, err := s.store.CreateVersion(req.Version, req.Branch, req.MarkCurrent)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to create version")
			return
		}
		writeJSON(w, http.StatusCreated, version)

	default:
		methodNotAllowed(w)
	}
}

// handleNotifications rejects collection-level access; notifications are
// listed per user under /api/v1/users/{id}/notifications
func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "notifications are listed per user")
}

// handleNotification marks one notification as seen
func (s *Server) handleNotification(w http.ResponseWriter, r *http.Request) {
	id, sub, err := pathID(r.URL.Path, "/api/v1/notifications/")
	if err != nil || sub != "seen" {
		writeError(w, http.StatusNotFound, "unknown notification resource")
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	if err := s.store.MarkNotificationSeen(id); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
