package store

import "errors"

// ErrNotFound is returned by Get for a key that was never written or has
// been deleted. Any other Get error is a read failure.
var ErrNotFound = errors.New("key not found")

// Fixed key names for the local snapshot and the sharing flags.
const (
	StateKey     = "courtside-state"
	ShareCodeKey = "courtside-share-code"
	SharingKey   = "courtside-sharing"
)

// Store is a small durable key/value store holding one serialized AppState
// and the sharing flags.
type Store interface {
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
	Delete(key string) error
}
