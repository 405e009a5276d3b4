package vizserver

import (
	"context"
	"errors"
	"sync"
)

const watcherBuffer = 16

var ErrHubStopped = errors.New("vizserver: hub stopped")

// Watcher is one connected viewer. Frames it cannot keep up with are
// dropped rather than stalling the simulation.
type Watcher struct {
	id   uint64
	send chan []byte
}

func (w *Watcher) ID() uint64 { return w.id }

// Messages yields the frames queued for this watcher. It is closed when
// the watcher is removed or the hub stops.
func (w *Watcher) Messages() <-chan []byte { return w.send }

// Hub fans broadcast messages out to every watcher.
type Hub struct {
	register   chan *Watcher
	unregister chan *Watcher
	broadcast  chan []byte
	done       chan struct{}

	mu       sync.Mutex
	nextID   uint64
	watchers map[uint64]*Watcher
	dropped  uint64
}

func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Watcher),
		unregister: make(chan *Watcher),
		broadcast:  make(chan []byte, 1),
		done:       make(chan struct{}),
		watchers:   make(map[uint64]*Watcher),
	}
}

// Run serves the hub until ctx is done, then closes every watcher.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for id, w := range h.watchers {
				close(w.send)
				delete(h.watchers, id)
			}
			h.mu.Unlock()
			return
		case w := <-h.register:
			h.mu.Lock()
			h.watchers[w.id] = w
			h.mu.Unlock()
		case w := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.watchers[w.id]; ok {
				close(w.send)
				delete(h.watchers, w.id)
			}
			h.mu.Unlock()
		case msg := <-h.broadcast:
			h.mu.Lock()
			for _, w := range h.watchers {
				select {
				case w.send <- msg:
				default:
					h.dropped++
				}
			}
			h.mu.Unlock()
		}
	}
}

// Join registers a new watcher. It blocks until the hub accepts it, ctx
// is done or the hub stops.
func (h *Hub) Join(ctx context.Context) (*Watcher, error) {
	h.mu.Lock()
	h.nextID++
	w := &Watcher{id: h.nextID, send: make(chan []byte, watcherBuffer)}
	h.mu.Unlock()

	select {
	case h.register <- w:
		return w, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-h.done:
		return nil, ErrHubStopped
	}
}

func (h *Hub) Leave(ctx context.Context, w *Watcher) {
	select {
	case h.unregister <- w:
	case <-ctx.Done():
	case <-h.done:
	}
}

// Broadcast queues msg for every watcher.
func (h *Hub) Broadcast(ctx context.Context, msg []byte) {
	select {
	case h.broadcast <- msg:
	case <-ctx.Done():
	case <-h.done:
	}
}

func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.watchers)
}

// Dropped counts frames skipped for slow watchers.
func (h *Hub) Dropped() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dropped
}
