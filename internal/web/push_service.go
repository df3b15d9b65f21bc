package web

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"

	"github.com/deskroster/deskroster/internal/directory"
	"github.com/deskroster/deskroster/internal/logging"
	"github.com/deskroster/deskroster/internal/rosterdb"
)

var pushLog = logging.ForComponent(logging.CompPush)

type pushSubscriptionKeys struct {
	P256dh string `json:"p256dh"`
	Auth   string `json:"auth"`
}

type pushSubscription struct {
	Endpoint string               `json:"endpoint"`
	Keys     pushSubscriptionKeys `json:"keys"`
	AddedAt  time.Time            `json:"addedAt"`
}

// pushSubscriptionStore persists browser push subscriptions as a JSON
// file so they survive restarts.
type pushSubscriptionStore struct {
	mu   sync.Mutex
	path string
	subs []pushSubscription
}

func newPushSubscriptionStore(path string) (*pushSubscriptionStore, error) {
	st := &pushSubscriptionStore{path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return st, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(data, &st.subs); err != nil {
		// Corrupt store: start fresh rather than refuse to serve.
		st.subs = nil
	}
	return st, nil
}

func (st *pushSubscriptionStore) List() []pushSubscription {
	st.mu.Lock()
	defer st.mu.Unlock()
	out := make([]pushSubscription, len(st.subs))
	copy(out, st.subs)
	return out
}

func (st *pushSubscriptionStore) Upsert(sub pushSubscription) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	for i := range st.subs {
		if st.subs[i].Endpoint == sub.Endpoint {
			st.subs[i].Keys = sub.Keys
			return st.saveLocked()
		}
	}
	sub.AddedAt = time.Now().UTC()
	st.subs = append(st.subs, sub)
	return st.saveLocked()
}

func (st *pushSubscriptionStore) RemoveByEndpoint(endpoint string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	kept := st.subs[:0]
	for _, sub := range st.subs {
		if sub.Endpoint != endpoint {
			kept = append(kept, sub)
		}
	}
	st.subs = kept
	return st.saveLocked()
}

func (st *pushSubscriptionStore) Count() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.subs)
}

func (st *pushSubscriptionStore) saveLocked() error {
	data, err := json.MarshalIndent(st.subs, "", "  ")
	if err != nil {
		return err
	}
	tmp := st.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, st.path)
}

// pushService sends roster-changed notifications to subscribed
// browsers. Sends are serialized through a single worker so a slow push
// endpoint never blocks the snapshot watcher.
type pushService struct {
	vapidPublic  string
	vapidPrivate string
	subject      string
	store        *pushSubscriptionStore

	pending chan *rosterdb.Snapshot
}

func newPushService(cfg Config) (*pushService, error) {
	pub, priv := cfg.PushVAPIDPublicKey, cfg.PushVAPIDPrivateKey
	if pub == "" || priv == "" {
		var err error
		pub, priv, err = EnsurePushVAPIDKeys()
		if err != nil {
			return nil, err
		}
	}

	dir, err := directory.GetDeskrosterDir()
	if err != nil {
		return nil, err
	}
	store, err := newPushSubscriptionStore(filepath.Join(dir, "push_subscriptions.json"))
	if err != nil {
		return nil, fmt.Errorf("load push subscriptions: %w", err)
	}

	subject := cfg.PushSubject
	if subject == "" {
		subject = "mailto:deskroster@localhost"
	}

	return &pushService{
		vapidPublic:  pub,
		vapidPrivate: priv,
		subject:      subject,
		store:        store,
		pending:      make(chan *rosterdb.Snapshot, 1),
	}, nil
}

func (p *pushService) Start(ctx context.Context) {
	go p.sendLoop(ctx)
}

// NotifyRosterChanged queues a notification for the given snapshot.
// If a send is already pending the older snapshot is replaced.
func (p *pushService) NotifyRosterChanged(ctx context.Context, snap *rosterdb.Snapshot) {
	for {
		select {
		case p.pending <- snap:
			return
		case <-ctx.Done():
			return
		default:
			select {
			case <-p.pending:
			default:
			}
		}
	}
}

func (p *pushService) sendLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case snap := <-p.pending:
			p.sendAll(ctx, snap)
		}
	}
}

type pushPayload struct {
	Title   string `json:"title"`
	Body    string `json:"body"`
	TakenAt string `json:"takenAt"`
}

func (p *pushService) sendAll(ctx context.Context, snap *rosterdb.Snapshot) {
	subs := p.store.List()
	if len(subs) == 0 {
		return
	}

	payload, err := json.Marshal(pushPayload{
		Title:   "Roster updated",
		Body:    fmt.Sprintf("%d contacts, %d servers", len(snap.Contacts), len(snap.Servers)),
		TakenAt: snap.TakenAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return
	}

	for _, sub := range subs {
		if ctx.Err() != nil {
			return
		}
		target := &webpush.Subscription{
			Endpoint: sub.Endpoint,
			Keys: webpush.Keys{
				P256dh: sub.Keys.P256dh,
				Auth:   sub.Keys.Auth,
			},
		}
		resp, err := webpush.SendNotification(payload, target, &webpush.Options{
			Subscriber:      p.subject,
			VAPIDPublicKey:  p.vapidPublic,
			VAPIDPrivateKey: p.vapidPrivate,
			TTL:             60,
		})
		if err != nil {
			pushLog.Warn("push_send_failed",
				slog.String("endpoint", sub.Endpoint),
				slog.String("error", err.Error()))
			continue
		}
		status := resp.StatusCode
		resp.Body.Close()
		if status == http.StatusGone || status == http.StatusNotFound {
			// Browser dropped the subscription; stop retrying it.
			if err := p.store.RemoveByEndpoint(sub.Endpoint); err != nil {
				pushLog.Warn("push_prune_failed", slog.String("error", err.Error()))
			}
		}
	}
}
