package gateway

import (
	"sync"

	"github.com/minebridge/minebridge/internal/bridge"
)

// Registry tracks live server connections by channel key. It implements
// bridge.ConnectionProvider; the bridge core never touches websockets
// directly.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]*Conn
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]*Conn)}
}

func (r *Registry) add(conn *Conn) (replaced *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	replaced = r.conns[conn.key]
	r.conns[conn.key] = conn
	return replaced
}

func (r *Registry) remove(conn *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	// Only the registered connection may evict itself; a stale one that
	// was already replaced must not tear down its successor's slot.
	if r.conns[conn.key] == conn {
		delete(r.conns, conn.key)
	}
}

// Connection resolves a channel key to its live connection.
func (r *Registry) Connection(channelKey string) (bridge.Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.conns[channelKey]
	if !ok {
		return nil, false
	}
	return conn, true
}

// Keys lists the channel keys with a live connection.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.conns))
	for k := range r.conns {
		keys = append(keys, k)
	}
	return keys
}
