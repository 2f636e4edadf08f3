package api

import (
	"encoding/json"
	"net/http"
	"strings"
)

type createInviteRequest struct {
	CreatedBy int64  `json:"created_by"`
	Role      string `json:"role"`
}

type redeemInviteRequest struct {
	Code     string `json:"code"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// handleInvites serves the invite-code collection
func (s *Server) handleInvites(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		invites, err := s.store.ListInvites()
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to list invites")
			return
		}
		writeJSON(w, http.StatusOK, invites)

	case http.MethodPost:
		var req createInviteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.CreatedBy <= 0 {
			writeError(w, http.StatusBadRequest, "created_by is required")
			return
		}

		invite, err := s.store.CreateInvite(req.CreatedBy, req.Role)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to create invite")
			return
		}
		writeJSON(w, http.StatusCreated, invite)

	default:
		methodNotAllowed(w)
	}
}

// handleRedeemInvite consumes an invite code and creates the granted account
func (s *Server) handleRedeemInvite(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req redeemInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Code) == "" || strings.TrimSpace(req.Username) == "" || strings.TrimSpace(req.Email) == "" {
		writeError(w, http.StatusBadRequest, "code, username and email are required")
		return
	}

	user, err := s.store.RedeemInvite(req.Code, req.Username, req.Email)
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, user)
}
