package storage

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrCorrupt = errors.New("storage: corrupt value")
	ErrClosed  = errors.New("storage: store closed")
)

// KV is a synchronous string-keyed store. Get reports ok=false for a key
// that was never set or has been removed; absence is not an error.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// StorageError reports a failed read or write of one key.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
