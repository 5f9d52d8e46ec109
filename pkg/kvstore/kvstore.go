// Package kvstore is the key-value layer every piece of RoboQuest state lives in.
// Values are opaque byte strings; JSON helpers sit on top in json.go.
package kvstore

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by Get when the key holds no value.
	ErrNotFound = errors.New("kvstore: key not found")
	// ErrConflict is returned by Update when the key kept changing underneath it.
	ErrConflict = errors.New("kvstore: concurrent modification, retries exhausted")
	// ErrUnavailable wraps transport-level failures of the backing store.
	ErrUnavailable = errors.New("kvstore: backend unavailable")
)

// Entry is one key/value pair returned by ScanPrefix. Key has the namespace stripped.
type Entry struct {
	Key   string
	Value []byte
}

// UpdateFunc receives the current value (nil when absent) and returns the value to
// write. Returning a nil slice leaves the key untouched. It may run more than once.
type UpdateFunc func(current []byte) ([]byte, error)

type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// MGet returns one slot per key, nil where the key is absent.
	MGet(ctx context.Context, keys []string) ([][]byte, error)
	Delete(ctx context.Context, keys ...string) error
	ScanPrefix(ctx context.Context, prefix string) ([]Entry, error)
	// Update is an atomic read-modify-write on a single key.
	Update(ctx context.Context, key string, fn UpdateFunc) error
	Ping(ctx context.Context) error
}
