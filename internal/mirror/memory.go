package mirror

import (
	"context"
	"sync"
)

// MemoryBackend keeps documents in process. It backs tests and single-node
// deployments without a database.
type MemoryBackend struct {
	mu   sync.Mutex
	docs map[string][]byte
	hub  *hub
	fail error
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		docs: make(map[string][]byte),
		hub:  newHub(),
	}
}

// SetFailure makes every following call return err until cleared with nil.
func (b *MemoryBackend) SetFailure(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fail = err
}

func (b *MemoryBackend) Get(_ context.Context, code string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail != nil {
		return nil, b.fail
	}
	doc, ok := b.docs[code]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte{}, doc...), nil
}

func (b *MemoryBackend) Set(_ context.Context, code string, doc []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail != nil {
		return b.fail
	}
	b.docs[code] = append([]byte{}, doc...)
	b.hub.publish(code, Change{Data: append([]byte{}, doc...)})
	return nil
}

func (b *MemoryBackend) Delete(_ context.Context, code string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail != nil {
		return b.fail
	}
	if _, ok := b.docs[code]; !ok {
		return nil
	}
	delete(b.docs, code)
	b.hub.publish(code, Change{Deleted: true})
	return nil
}

func (b *MemoryBackend) Watch(ctx context.Context, code string) (<-chan Change, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail != nil {
		return nil, b.fail
	}
	return b.hub.subscribe(ctx, code), nil
}
