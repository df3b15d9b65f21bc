package web

import (
	"encoding/json"
	"net/http"
)

type pushConfigResponse struct {
	Enabled         bool   `json:"enabled"`
	VAPIDPublicKey  string `json:"vapidPublicKey,omitempty"`
	SubscriberCount int    `json:"subscriberCount"`
}

// handlePushConfig tells the browser whether push is available and, if
// so, which application server key to subscribe with.
func (s *Server) handlePushConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "GET only")
		return
	}
	if !s.requireAuth(w, r) {
		return
	}
	resp := pushConfigResponse{}
	if s.push != nil {
		resp.Enabled = true
		resp.VAPIDPublicKey = s.push.vapidPublic
		resp.SubscriberCount = s.push.store.Count()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePushSubscribe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "POST only")
		return
	}
	if !s.requireAuth(w, r) {
		return
	}
	if s.push == nil {
		writeAPIError(w, http.StatusServiceUnavailable, "push_disabled", "push notifications are not enabled")
		return
	}

	var sub pushSubscription
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if sub.Endpoint == "" || sub.Keys.P256dh == "" || sub.Keys.Auth == "" {
		writeAPIError(w, http.StatusBadRequest, "invalid_subscription", "endpoint and keys are required")
		return
	}
	if err := s.push.store.Upsert(sub); err != nil {
		writeAPIError(w, http.StatusInternalServerError, "store_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"subscribed": true})
}

func (s *Server) handlePushUnsubscribe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "POST only")
		return
	}
	if !s.requireAuth(w, r) {
		return
	}
	if s.push == nil {
		writeAPIError(w, http.StatusServiceUnavailable, "push_disabled", "push notifications are not enabled")
		return
	}

	var body struct {
		Endpoint string `json:"endpoint"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if body.Endpoint == "" {
		writeAPIError(w, http.StatusBadRequest, "missing_endpoint", "endpoint is required")
		return
	}
	if err := s.push.store.RemoveByEndpoint(body.Endpoint); err != nil {
		writeAPIError(w, http.StatusInternalServerError, "store_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"subscribed": false})
}
