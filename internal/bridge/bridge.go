// Package bridge is the boundary between the optimistic client layer and
// the authoritative roster store. Mutation calls answer in one normalized
// shape: an explicit Result for domain rejections (duplicate key, missing
// record) and a Go error for transport-level failure. The client layer
// treats both as rollback triggers.
package bridge

import (
	"context"
	"errors"

	"github.com/deskroster/deskroster/internal/directory"
	"github.com/deskroster/deskroster/internal/logging"
	"github.com/deskroster/deskroster/internal/rosterdb"
)

var bridgeLog = logging.ForComponent(logging.CompBridge)

// Bridge exposes the roster store through the directory.Remote surface,
// one typed view per collection.
type Bridge struct {
	db *rosterdb.DB
}

// New wraps a roster database.
func New(db *rosterdb.DB) *Bridge {
	return &Bridge{db: db}
}

// DB returns the underlying store, for snapshot reads.
func (b *Bridge) DB() *rosterdb.DB {
	return b.db
}

// Contacts returns the contact mutation surface.
func (b *Bridge) Contacts() directory.Remote[directory.Contact] {
	return contactRemote{db: b.db}
}

// Servers returns the server mutation surface.
func (b *Bridge) Servers() directory.Remote[directory.Server] {
	return serverRemote{db: b.db}
}

// Groups returns the group mutation surface.
func (b *Bridge) Groups() directory.Remote[directory.Group] {
	return groupRemote{db: b.db}
}

// normalize folds a store error into the single result shape the client
// layer consumes: domain rejections become explicit failure results,
// anything else stays a transport error.
func normalize(err error) (directory.Result, error) {
	switch {
	case err == nil:
		return directory.Result{OK: true}, nil
	case errors.Is(err, rosterdb.ErrExists), errors.Is(err, rosterdb.ErrNotFound):
		return directory.Result{OK: false, Message: err.Error()}, nil
	default:
		return directory.Result{}, err
	}
}

type contactRemote struct {
	db *rosterdb.DB
}

func (r contactRemote) Create(ctx context.Context, c directory.Contact) (directory.Result, error) {
	if err := ctx.Err(); err != nil {
		return directory.Result{}, err
	}
	return normalize(r.db.InsertContact(c))
}

func (r contactRemote) Update(ctx context.Context, patch directory.Contact) (directory.Result, error) {
	if err := ctx.Err(); err != nil {
		return directory.Result{}, err
	}
	base, err := r.db.GetContact(patch.Key())
	if err != nil {
		return normalize(err)
	}
	return normalize(r.db.PutContact(directory.MergeContact(base, patch)))
}

func (r contactRemote) Delete(ctx context.Context, key string) (directory.Result, error) {
	if err := ctx.Err(); err != nil {
		return directory.Result{}, err
	}
	return normalize(r.db.DeleteContact(key))
}

type serverRemote struct {
	db *rosterdb.DB
}

func (r serverRemote) Create(ctx context.Context, s directory.Server) (directory.Result, error) {
	if err := ctx.Err(); err != nil {
		return directory.Result{}, err
	}
	return normalize(r.db.InsertServer(s))
}

func (r serverRemote) Update(ctx context.Context, patch directory.Server) (directory.Result, error) {
	if err := ctx.Err(); err != nil {
		return directory.Result{}, err
	}
	base, err := r.db.GetServer(patch.Key())
	if err != nil {
		return normalize(err)
	}
	return normalize(r.db.PutServer(directory.MergeServer(base, patch)))
}

func (r serverRemote) Delete(ctx context.Context, key string) (directory.Result, error) {
	if err := ctx.Err(); err != nil {
		return directory.Result{}, err
	}
	return normalize(r.db.DeleteServer(key))
}

type groupRemote struct {
	db *rosterdb.DB
}

func (r groupRemote) Create(ctx context.Context, g directory.Group) (directory.Result, error) {
	if err := ctx.Err(); err != nil {
		return directory.Result{}, err
	}
	return normalize(r.db.InsertGroup(g))
}

func (r groupRemote) Update(ctx context.Context, patch directory.Group) (directory.Result, error) {
	if err := ctx.Err(); err != nil {
		return directory.Result{}, err
	}
	base, err := r.db.GetGroup(patch.Key())
	if err != nil {
		return normalize(err)
	}
	return normalize(r.db.PutGroup(directory.MergeGroup(base, patch)))
}

func (r groupRemote) Delete(ctx context.Context, key string) (directory.Result, error) {
	if err := ctx.Err(); err != nil {
		return directory.Result{}, err
	}
	return normalize(r.db.DeleteGroup(key))
}
