package web

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// authorizeRequest checks the shared token. When no token is configured
// every request is accepted (the server binds to loopback by default).
func (s *Server) authorizeRequest(r *http.Request) bool {
	if s.cfg.Token == "" {
		return true
	}
	if token := r.URL.Query().Get("token"); token != "" {
		return secureEqual(token, s.cfg.Token)
	}
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return secureEqual(strings.TrimPrefix(auth, "Bearer "), s.cfg.Token)
	}
	return false
}

func secureEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// requireAuth wraps a handler with the token check.
func (s *Server) requireAuth(w http.ResponseWriter, r *http.Request) bool {
	if !s.authorizeRequest(r) {
		writeAPIError(w, http.StatusUnauthorized, "unauthorized", "missing or invalid token")
		return false
	}
	return true
}
