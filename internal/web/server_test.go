package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deskroster/deskroster/internal/directory"
	"github.com/deskroster/deskroster/internal/rosterdb"
)

func newTestServer(t *testing.T, cfg Config) (*Server, *httptest.Server) {
	t.Helper()
	db, err := rosterdb.Open(filepath.Join(t.TempDir(), "roster.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s := NewServer(cfg, db)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	t.Cleanup(s.cancelBase)
	return s, ts
}

func TestHealthz(t *testing.T) {
	_, ts := newTestServer(t, Config{})

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["ok"])
}

func TestRosterRequiresToken(t *testing.T) {
	_, ts := newTestServer(t, Config{Token: "secret"})

	resp, err := http.Get(ts.URL + "/api/roster")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/roster", nil)
	req.Header.Set("Authorization", "Bearer secret")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/api/roster?token=secret")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRosterSnapshot(t *testing.T) {
	s, ts := newTestServer(t, Config{})

	require.NoError(t, s.db.InsertContact(directory.IngestContact(directory.Contact{
		Email: "alice@test.com",
		Name:  "Alice",
	})))

	resp, err := http.Get(ts.URL + "/api/roster")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var roster rosterResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&roster))
	require.Len(t, roster.Contacts, 1)
	assert.Equal(t, "alice@test.com", roster.Contacts[0].Email)
}

func TestContactCreateUpdateDelete(t *testing.T) {
	_, ts := newTestServer(t, Config{})

	body, _ := json.Marshal(directory.Contact{Email: "bob@test.com", Name: "Bob"})
	resp, err := http.Post(ts.URL+"/api/contacts", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	// Duplicate create is rejected, not an error.
	resp, err = http.Post(ts.URL+"/api/contacts", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	patch, _ := json.Marshal(directory.Contact{Title: "Engineer"})
	req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/contacts/bob@test.com", bytes.NewReader(patch))
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req, _ = http.NewRequest(http.MethodDelete, ts.URL+"/api/contacts/bob@test.com", nil)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Deleting again: the record is gone.
	req, _ = http.NewRequest(http.MethodDelete, ts.URL+"/api/contacts/bob@test.com", nil)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestReadOnlyRejectsMutations(t *testing.T) {
	_, ts := newTestServer(t, Config{ReadOnly: true})

	body, _ := json.Marshal(directory.Contact{Email: "x@test.com"})
	resp, err := http.Post(ts.URL+"/api/contacts", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRosterWebSocket(t *testing.T) {
	s, ts := newTestServer(t, Config{})

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev wsEvent
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, "hello", ev.Type)

	// Allow the handler to register its subscriber before notifying.
	require.Eventually(t, func() bool {
		s.rosterSubscribersMu.Lock()
		defer s.rosterSubscribersMu.Unlock()
		return len(s.rosterSubscribers) == 1
	}, time.Second, 10*time.Millisecond)

	s.notifyRosterChanged()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, "roster-changed", ev.Type)
}

func TestWebSocketMutations(t *testing.T) {
	s, ts := newTestServer(t, Config{})

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev wsEvent
	require.NoError(t, conn.ReadJSON(&ev))
	require.Equal(t, "hello", ev.Type)

	readResult := func() wsResult {
		t.Helper()
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var res wsResult
		require.NoError(t, conn.ReadJSON(&res))
		require.Equal(t, "result", res.Type)
		return res
	}

	require.NoError(t, conn.WriteJSON(wsMutation{
		Type:    "create-contact",
		Ref:     "m1",
		Contact: &directory.Contact{Email: "carol@test.com", Name: "Carol"},
	}))
	res := readResult()
	assert.Equal(t, "m1", res.Ref)
	assert.True(t, res.OK)

	got, err := s.db.GetContact("carol@test.com")
	require.NoError(t, err)
	assert.Equal(t, "Carol", got.Name)

	require.NoError(t, conn.WriteJSON(wsMutation{
		Type:    "update-contact",
		Ref:     "m2",
		Key:     "carol@test.com",
		Contact: &directory.Contact{Phone: "555-0199"},
	}))
	res = readResult()
	assert.True(t, res.OK)

	got, err = s.db.GetContact("carol@test.com")
	require.NoError(t, err)
	assert.Equal(t, "555-0199", got.Phone)

	// Duplicate create is an explicit rejection carried in the result.
	require.NoError(t, conn.WriteJSON(wsMutation{
		Type:    "create-contact",
		Ref:     "m3",
		Contact: &directory.Contact{Email: "carol@test.com", Name: "Imposter"},
	}))
	res = readResult()
	assert.False(t, res.OK)
	assert.NotEmpty(t, res.Error)

	require.NoError(t, conn.WriteJSON(wsMutation{
		Type: "delete-contact",
		Ref:  "m4",
		Key:  "carol@test.com",
	}))
	res = readResult()
	assert.True(t, res.OK)

	require.NoError(t, conn.WriteJSON(wsMutation{Type: "frob", Ref: "m5"}))
	res = readResult()
	assert.False(t, res.OK)
}

func TestWSOriginCheck(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "http://localhost:8590/ws", nil)
	r.Host = "localhost:8590"

	assert.True(t, allowWSOrigin(r), "no origin header")

	r.Header.Set("Origin", "http://localhost:8590")
	assert.True(t, allowWSOrigin(r))

	r.Header.Set("Origin", "http://evil.example.com")
	assert.False(t, allowWSOrigin(r))
}

func TestPushSubscriptionStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subs.json")
	st, err := newPushSubscriptionStore(path)
	require.NoError(t, err)

	sub := pushSubscription{
		Endpoint: "https://push.example.com/abc",
		Keys:     pushSubscriptionKeys{P256dh: "p", Auth: "a"},
	}
	require.NoError(t, st.Upsert(sub))
	assert.Equal(t, 1, st.Count())

	// Upsert with same endpoint replaces keys instead of duplicating.
	sub.Keys.Auth = "b"
	require.NoError(t, st.Upsert(sub))
	assert.Equal(t, 1, st.Count())
	assert.Equal(t, "b", st.List()[0].Keys.Auth)

	// Persists across reopen.
	st2, err := newPushSubscriptionStore(path)
	require.NoError(t, err)
	assert.Equal(t, 1, st2.Count())

	require.NoError(t, st2.RemoveByEndpoint(sub.Endpoint))
	assert.Equal(t, 0, st2.Count())
}
