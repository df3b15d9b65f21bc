package directory

import (
	"context"
	"fmt"
)

// Result is the normalized outcome of a remote mutation call. The external
// surface answers in several shapes (explicit success flags, transport
// errors); the bridge normalizes all of them into this one type at the
// boundary so the store only ever sees one shape.
type Result struct {
	OK      bool
	Message string
}

// Remote is the external mutation surface the optimistic store calls. The
// call may fail two ways: an explicit rejection (Result.OK false) or a
// transport error (non-nil error). Both trigger rollback; only the
// transport error is exceptional for the caller.
type Remote[T any] interface {
	Create(ctx context.Context, rec T) (Result, error)
	Update(ctx context.Context, rec T) (Result, error)
	Delete(ctx context.Context, key string) (Result, error)
}

// RejectedError reports an explicit failure result from the remote surface.
type RejectedError struct {
	Op      string
	Key     string
	Message string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s %q rejected by store", e.Op, e.Key)
	}
	return fmt.Sprintf("%s %q rejected by store: %s", e.Op, e.Key, e.Message)
}
