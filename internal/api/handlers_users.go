package api

import (
	"encoding/json"
	"net/http"
	"strings"
)

type createUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type updateUserRequest struct {
	Active *bool `json:"active"`
}

// handleUsers serves the user collection: GET lists, POST creates
func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		users, err := s.store.ListUsers()
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to list users")
			return
		}
		writeJSON(w, http.StatusOK, users)

	case http.MethodPost:
		var req createUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if strings.TrimSpace(req.Username) == "" || strings.TrimSpace(req.Email) == "" {
			writeError(w, http.StatusBadRequest, "username and email are required")
			return
		}

		user, err := s.store.CreateUser(req.Username, req.Email, req.Role)
		if err != nil {
			writeError(w, http.StatusConflict, "failed to create user")
			return
		}
		writeJSON(w, http.StatusCreated, user)

	default:
		methodNotAllowed(w)
	}
}

// handleUser serves one user: GET fetches, PUT toggles active,
// GET .../notifications lists version notifications
func (s *Server) handleUser(w http.ResponseWriter, r *http.Request) {
	id, sub, err := pathID(r.URL.Path, "/api/v1/users/")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if sub == "notifications" {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		notifications, err := s.store.ListNotifications(id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to list notifications")
			return
		}
		writeJSON(w, http.StatusOK, notifications)
		return
	}
	if sub != "" {
		writeError(w, http.StatusNotFound, "unknown user resource")
		return
	}

	switch r.Method {
	case http.MethodGet:
		user, err := s.store.GetUser(id)
		if err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, user)

	case http.MethodPut:
		var req updateUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Active == nil {
			writeError(w, http.StatusBadRequest, "active field is required")
			return
		}

		if err := s.store.SetUserActive(id, *req.Active); err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w)
	}
}
