package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/deskroster/deskroster/internal/directory"
	"github.com/deskroster/deskroster/internal/logging"
	"github.com/deskroster/deskroster/internal/rosterdb"
)

var importLog = logging.ForComponent(logging.CompImport)

// importFile is the drop-folder payload: either a single contact object or
// a list of them.
type importFile struct {
	Contacts []directory.Contact `json:"contacts"`
}

// ImportContactFile reads a dropped .json file and upserts its contacts.
// Accepts either {"contacts": [...]} or a bare contact object.
func ImportContactFile(db *rosterdb.DB, path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read import file: %w", err)
	}

	var payload importFile
	if err := json.Unmarshal(raw, &payload); err != nil || len(payload.Contacts) == 0 {
		var single directory.Contact
		if err := json.Unmarshal(raw, &single); err != nil {
			return 0, fmt.Errorf("parse import file %s: %w", filepath.Base(path), err)
		}
		payload.Contacts = []directory.Contact{single}
	}

	imported := 0
	for _, c := range payload.Contacts {
		if c.Key() == "" {
			// No key to store under; skip silently like any other
			// malformed mutation intent.
			continue
		}
		if err := db.PutContact(c); err != nil {
			return imported, fmt.Errorf("import contact %q: %w", c.Key(), err)
		}
		imported++
	}
	return imported, nil
}

// ImportDir imports every .json file under dir, a few files at a time.
func ImportDir(ctx context.Context, db *rosterdb.DB, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read import dir: %w", err)
	}

	var mu sync.Mutex
	total := 0

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			n, err := ImportContactFile(db, path)
			if err != nil {
				return err
			}
			mu.Lock()
			total += n
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return total, err
	}
	return total, nil
}

// ImportWatcher watches an inbox directory for dropped .json contact files
// and ingests them as they appear. Editors and sync tools fire bursts of
// write events per file, so logging is rate limited.
type ImportWatcher struct {
	db      *rosterdb.DB
	dir     string
	watcher *fsnotify.Watcher
	limiter *rate.Limiter

	closeCh   chan struct{}
	closeOnce sync.Once
}

// NewImportWatcher creates a watcher over the inbox dir, creating the dir
// if needed.
func NewImportWatcher(db *rosterdb.DB, dir string) (*ImportWatcher, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create inbox dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch inbox dir: %w", err)
	}

	return &ImportWatcher{
		db:      db,
		dir:     dir,
		watcher: watcher,
		limiter: rate.NewLimiter(rate.Limit(2), 5),
		closeCh: make(chan struct{}),
	}, nil
}

// Start begins watching (non-blocking).
func (iw *ImportWatcher) Start() {
	go iw.loop()
}

// Close stops the watcher.
func (iw *ImportWatcher) Close() {
	iw.closeOnce.Do(func() {
		close(iw.closeCh)
		_ = iw.watcher.Close()
	})
}

func (iw *ImportWatcher) loop() {
	for {
		select {
		case <-iw.closeCh:
			return
		case event, ok := <-iw.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !strings.HasSuffix(event.Name, ".json") {
				continue
			}
			iw.ingest(event.Name)
		case err, ok := <-iw.watcher.Errors:
			if !ok {
				return
			}
			if iw.limiter.Allow() {
				importLog.Warn("import_watch_error", slog.String("error", err.Error()))
			}
		}
	}
}

func (iw *ImportWatcher) ingest(path string) {
	n, err := ImportContactFile(iw.db, path)
	if err != nil {
		if iw.limiter.Allow() {
			importLog.Warn("import_failed",
				slog.String("file", filepath.Base(path)),
				slog.String("error", err.Error()))
		}
		return
	}
	importLog.Info("import_complete",
		slog.String("file", filepath.Base(path)),
		slog.Int("contacts", n))

	// Consumed files are removed so re-drops re-trigger cleanly
	if err := os.Remove(path); err != nil {
		importLog.Debug("import_cleanup_failed", slog.String("error", err.Error()))
	}
}
