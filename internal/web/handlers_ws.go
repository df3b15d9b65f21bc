package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/deskroster/deskroster/internal/directory"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     allowWSOrigin,
}

// allowWSOrigin accepts same-host origins plus non-browser clients that
// send no Origin header at all.
func allowWSOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

type wsEvent struct {
	Type    string `json:"type"`
	TakenAt string `json:"takenAt,omitempty"`
}

// wsMutation is an inbound mutation request from the client. Ref is an
// opaque client token echoed back in the result.
type wsMutation struct {
	Type    string             `json:"type"`
	Ref     string             `json:"ref,omitempty"`
	Contact *directory.Contact `json:"contact,omitempty"`
	Key     string             `json:"key,omitempty"`
}

type wsResult struct {
	Type  string `json:"type"`
	Ref   string `json:"ref,omitempty"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// handleRosterWS streams "roster-changed" events to the client and
// accepts mutation messages (create-contact, update-contact,
// delete-contact). All writes happen on the select loop so the reader
// goroutine never touches the connection for output.
func (s *Server) handleRosterWS(w http.ResponseWriter, r *http.Request) {
	if !s.requireAuth(w, r) {
		return
	}

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		webLog.Warn("ws_upgrade_failed", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	changes := s.subscribeRosterChanges()
	defer s.unsubscribeRosterChanges(changes)

	// Reader goroutine: parse inbound mutations, detect client close.
	mutations := make(chan wsMutation, 4)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var m wsMutation
			if err := conn.ReadJSON(&m); err != nil {
				return
			}
			select {
			case mutations <- m:
			case <-s.baseCtx.Done():
				return
			}
		}
	}()

	ping := time.NewTicker(30 * time.Second)
	defer ping.Stop()

	if err := conn.WriteJSON(wsEvent{Type: "hello"}); err != nil {
		return
	}

	for {
		select {
		case <-s.baseCtx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutdown"),
				time.Now().Add(time.Second))
			return
		case <-done:
			return
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		case m := <-mutations:
			if err := conn.WriteJSON(s.applyWSMutation(r, m)); err != nil {
				return
			}
		case _, ok := <-changes:
			if !ok {
				return
			}
			ev := wsEvent{
				Type:    "roster-changed",
				TakenAt: time.Now().UTC().Format(time.RFC3339),
			}
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		}
	}
}

func (s *Server) applyWSMutation(r *http.Request, m wsMutation) wsResult {
	fail := func(msg string) wsResult {
		return wsResult{Type: "result", Ref: m.Ref, OK: false, Error: msg}
	}
	if s.cfg.ReadOnly {
		return fail("server is in read-only mode")
	}

	var (
		result directory.Result
		err    error
	)
	switch m.Type {
	case "create-contact":
		if m.Contact == nil || m.Contact.Key() == "" {
			return fail("contact email is required")
		}
		result, err = s.bridge.Contacts().Create(r.Context(), *m.Contact)
	case "update-contact":
		if m.Contact == nil {
			return fail("contact payload is required")
		}
		patch := *m.Contact
		if patch.Email == "" {
			patch.Email = m.Key
		}
		if patch.Key() == "" {
			return fail("contact key is required")
		}
		result, err = s.bridge.Contacts().Update(r.Context(), patch)
	case "delete-contact":
		if m.Key == "" {
			return fail("contact key is required")
		}
		result, err = s.bridge.Contacts().Delete(r.Context(), m.Key)
	default:
		return fail(fmt.Sprintf("unknown mutation type %q", m.Type))
	}

	if err != nil {
		webLog.Error("ws_mutation_failed",
			slog.String("type", m.Type),
			slog.String("error", err.Error()))
		return fail(err.Error())
	}
	if !result.OK {
		return fail(result.Message)
	}
	return wsResult{Type: "result", Ref: m.Ref, OK: true}
}
