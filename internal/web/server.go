// Package web serves the roster to browsers on the local network: a JSON
// snapshot API, a websocket event stream that fires on every authoritative
// push, and web push notifications for roster changes.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/deskroster/deskroster/internal/bridge"
	"github.com/deskroster/deskroster/internal/logging"
	"github.com/deskroster/deskroster/internal/rosterdb"
)

var webLog = logging.ForComponent(logging.CompWeb)

// Config defines runtime options for the web bridge.
type Config struct {
	ListenAddr string
	Token      string
	ReadOnly   bool

	PushEnabled         bool
	PushVAPIDPublicKey  string
	PushVAPIDPrivateKey string
	PushSubject         string
}

// Server wraps an HTTP server for deskroster web mode.
type Server struct {
	cfg        Config
	db         *rosterdb.DB
	bridge     *bridge.Bridge
	httpServer *http.Server
	watcher    *bridge.SnapshotWatcher
	push       *pushService
	baseCtx    context.Context
	cancelBase context.CancelFunc

	rosterSubscribersMu sync.Mutex
	rosterSubscribers   map[chan struct{}]struct{}
}

// NewServer creates a web server over the given roster store.
func NewServer(cfg Config, db *rosterdb.DB) *Server {
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = "127.0.0.1:8590"
	}

	s := &Server{
		cfg:               cfg,
		db:                db,
		bridge:            bridge.New(db),
		rosterSubscribers: make(map[chan struct{}]struct{}),
	}
	s.baseCtx, s.cancelBase = context.WithCancel(context.Background())

	if cfg.PushEnabled {
		if pushSvc, err := newPushService(cfg); err != nil {
			webLog.Warn("push_disabled", slog.String("error", err.Error()))
		} else {
			s.push = pushSvc
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		resp := map[string]any{
			"ok":       true,
			"readOnly": cfg.ReadOnly,
			"time":     time.Now().UTC().Format(time.RFC3339),
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	})
	mux.HandleFunc("/api/roster", s.handleRoster)
	mux.HandleFunc("/api/contacts", s.handleContacts)
	mux.HandleFunc("/api/contacts/", s.handleContactByKey)
	mux.HandleFunc("/api/push/config", s.handlePushConfig)
	mux.HandleFunc("/api/push/subscribe", s.handlePushSubscribe)
	mux.HandleFunc("/api/push/unsubscribe", s.handlePushUnsubscribe)
	mux.HandleFunc("/ws", s.handleRosterWS)

	s.httpServer = &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           withRecover(mux),
		BaseContext:       func(_ net.Listener) context.Context { return s.baseCtx },
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Handler returns the configured HTTP handler (used by tests).
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start starts the HTTP server and blocks until shutdown or error.
// Returns nil on graceful shutdown.
func (s *Server) Start() error {
	s.watcher = bridge.NewSnapshotWatcher(s.db)
	s.watcher.Start()
	go s.fanOutSnapshots()

	if s.push != nil {
		s.push.Start(s.baseCtx)
	}

	err := s.httpServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.cancelBase != nil {
		// Signal long-lived handlers (WS) to stop promptly.
		s.cancelBase()
	}
	if s.watcher != nil {
		s.watcher.Close()
		s.watcher = nil
	}

	err := s.httpServer.Shutdown(ctx)
	if err == nil {
		return nil
	}

	// Long-lived connections may still block graceful shutdown. Force
	// close as a fallback so Ctrl+C exits promptly.
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		if closeErr := s.httpServer.Close(); closeErr != nil {
			return fmt.Errorf("graceful shutdown timed out and force close failed: %w", closeErr)
		}
		return nil
	}
	return err
}

// fanOutSnapshots turns store pushes into subscriber wakeups and push
// notifications.
func (s *Server) fanOutSnapshots() {
	for {
		select {
		case <-s.baseCtx.Done():
			return
		case snap, ok := <-s.watcher.Snapshots():
			if !ok {
				return
			}
			s.notifyRosterChanged()
			if s.push != nil {
				s.push.NotifyRosterChanged(s.baseCtx, snap)
			}
		}
	}
}

func (s *Server) subscribeRosterChanges() chan struct{} {
	ch := make(chan struct{}, 1)
	s.rosterSubscribersMu.Lock()
	s.rosterSubscribers[ch] = struct{}{}
	s.rosterSubscribersMu.Unlock()
	return ch
}

func (s *Server) unsubscribeRosterChanges(ch chan struct{}) {
	if ch == nil {
		return
	}
	s.rosterSubscribersMu.Lock()
	if _, ok := s.rosterSubscribers[ch]; ok {
		delete(s.rosterSubscribers, ch)
		close(ch)
	}
	s.rosterSubscribersMu.Unlock()
}

func (s *Server) notifyRosterChanged() {
	s.rosterSubscribersMu.Lock()
	for ch := range s.rosterSubscribers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	s.rosterSubscribersMu.Unlock()
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				webLog.Error("panic",
					slog.String("recover", fmt.Sprintf("%v", rec)),
					slog.String("path", r.URL.Path))
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]apiError{"error": {Code: code, Message: message}})
}
