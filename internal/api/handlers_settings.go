package api

import (
	"encoding/json"
	"net/http"
	"strings"
)

type setSettingRequest struct {
	Value string `json:"value"`
}

// handleSettings lists every site setting
func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	settings, err := s.store.AllSettings()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list settings")
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// handleSetting reads or writes one named site setting
func (s *Server) handleSetting(w http.ResponseWriter, r *http.Request) {
	name := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/settings/"), "/")
	if name == "" || strings.Contains(name, "/") {
		writeError(w, http.StatusBadRequest, "invalid setting name")
		return
	}

	switch r.Method {
	case http.MethodGet:
		setting, err := s.store.GetSetting(name)
		if err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, setting)

	case http.MethodPut:
		var req setSettingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if err := s.store.SetSetting(name, req.Value); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to store setting")
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w)
	}
}
