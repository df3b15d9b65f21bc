package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/deskroster/deskroster/internal/directory"
)

type rosterResponse struct {
	Contacts []directory.Contact `json:"contacts"`
	Servers  []directory.Server  `json:"servers"`
	Groups   []directory.Group   `json:"groups"`
	TakenAt  time.Time           `json:"takenAt"`
}

// handleRoster serves the full roster snapshot.
func (s *Server) handleRoster(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "GET only")
		return
	}
	if !s.requireAuth(w, r) {
		return
	}

	snap, err := s.db.Snapshot()
	if err != nil {
		webLog.Error("snapshot_failed", slog.String("error", err.Error()))
		writeAPIError(w, http.StatusInternalServerError, "snapshot_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rosterResponse{
		Contacts: snap.Contacts,
		Servers:  snap.Servers,
		Groups:   snap.Groups,
		TakenAt:  snap.TakenAt,
	})
}

// handleContacts creates a contact (POST /api/contacts).
func (s *Server) handleContacts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "POST only")
		return
	}
	if !s.requireAuth(w, r) {
		return
	}
	if s.cfg.ReadOnly {
		writeAPIError(w, http.StatusForbidden, "read_only", "server is in read-only mode")
		return
	}

	var contact directory.Contact
	if err := json.NewDecoder(r.Body).Decode(&contact); err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if contact.Key() == "" {
		writeAPIError(w, http.StatusBadRequest, "missing_email", "contact email is required")
		return
	}

	result, err := s.bridge.Contacts().Create(r.Context(), contact)
	if err != nil {
		writeAPIError(w, http.StatusInternalServerError, "create_failed", err.Error())
		return
	}
	if !result.OK {
		writeAPIError(w, http.StatusConflict, "rejected", result.Message)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"key": contact.Key()})
}

// handleContactByKey updates or deletes a single contact
// (PUT/DELETE /api/contacts/{key}).
func (s *Server) handleContactByKey(w http.ResponseWriter, r *http.Request) {
	if !s.requireAuth(w, r) {
		return
	}
	key := strings.TrimPrefix(r.URL.Path, "/api/contacts/")
	if key == "" {
		writeAPIError(w, http.StatusBadRequest, "missing_key", "contact key is required")
		return
	}

	switch r.Method {
	case http.MethodPut:
		if s.cfg.ReadOnly {
			writeAPIError(w, http.StatusForbidden, "read_only", "server is in read-only mode")
			return
		}
		var patch directory.Contact
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			writeAPIError(w, http.StatusBadRequest, "invalid_json", err.Error())
			return
		}
		if patch.Email == "" {
			patch.Email = key
		}
		result, err := s.bridge.Contacts().Update(r.Context(), patch)
		if err != nil {
			writeAPIError(w, http.StatusInternalServerError, "update_failed", err.Error())
			return
		}
		if !result.OK {
			writeAPIError(w, http.StatusNotFound, "rejected", result.Message)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"key": key})

	case http.MethodDelete:
		if s.cfg.ReadOnly {
			writeAPIError(w, http.StatusForbidden, "read_only", "server is in read-only mode")
			return
		}
		result, err := s.bridge.Contacts().Delete(r.Context(), key)
		if err != nil {
			writeAPIError(w, http.StatusInternalServerError, "delete_failed", err.Error())
			return
		}
		if !result.OK {
			writeAPIError(w, http.StatusNotFound, "rejected", result.Message)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"key": key})

	default:
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "PUT or DELETE only")
	}
}
