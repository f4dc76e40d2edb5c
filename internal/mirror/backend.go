package mirror

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("mirror: document not found")

// Change is delivered to watchers whenever the document at a code is written
// or deleted.
type Change struct {
	Data    []byte
	Deleted bool
}

// Backend stores one document per share code. Watch streams changes for a
// code until ctx is cancelled, then closes the channel.
type Backend interface {
	Get(ctx context.Context, code string) ([]byte, error)
	Set(ctx context.Context, code string, doc []byte) error
	Delete(ctx context.Context, code string) error
	Watch(ctx context.Context, code string) (<-chan Change, error)
}

// Load fetches and validates the document for code.
func Load(ctx context.Context, b Backend, code string) (Document, error) {
	raw, err := b.Get(ctx, code)
	if err != nil {
		return Document{}, err
	}
	return DecodeDocument(raw)
}
