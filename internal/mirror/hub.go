package mirror

import (
	"context"
	"sync"
)

// hub fans changes for a code out to every registered watcher channel.
type hub struct {
	mu       sync.Mutex
	watchers map[string]map[int]chan Change
	nextID   int
}

func newHub() *hub {
	return &hub{watchers: make(map[string]map[int]chan Change)}
}

// subscribe registers a watcher for code. The channel is removed and closed
// once ctx is done.
func (h *hub) subscribe(ctx context.Context, code string) <-chan Change {
	h.mu.Lock()
	ch := make(chan Change, 8)
	id := h.nextID
	h.nextID++
	if h.watchers[code] == nil {
		h.watchers[code] = make(map[int]chan Change)
	}
	h.watchers[code][id] = ch
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.watchers[code], id)
		if len(h.watchers[code]) == 0 {
			delete(h.watchers, code)
		}
		close(ch)
	}()
	return ch
}

func (h *hub) watching(code string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.watchers[code]) > 0
}

func (h *hub) codes() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, 0, len(h.watchers))
	for code := range h.watchers {
		out = append(out, code)
	}
	return out
}

// publish never blocks: a slow watcher loses its oldest undelivered change.
func (h *hub) publish(code string, c Change) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.watchers[code] {
		select {
		case ch <- c:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- c
		}
	}
}
