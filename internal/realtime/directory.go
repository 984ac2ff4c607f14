package realtime

import "sync"

// Conn is the delivery surface the directory tracks. *Client satisfies it;
// tests substitute fakes.
type Conn interface {
	Send(event string, payload any) bool
}

// Directory maps a user to their live connection. One connection per user;
// a reconnect overwrites the previous entry.
type Directory struct {
	mu    sync.RWMutex
	conns map[string]Conn
}

func NewDirectory() *Directory {
	return &Directory{conns: make(map[string]Conn)}
}

// Put registers conn as the user's connection, replacing any previous one.
func (d *Directory) Put(userID string, conn Conn) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.conns[userID] = conn
}

// Remove drops the user's entry only if it still points at conn. The
// disconnect of a stale connection must not evict its replacement.
func (d *Directory) Remove(userID string, conn Conn) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if current, ok := d.conns[userID]; ok && current == conn {
		delete(d.conns, userID)
	}
}

func (d *Directory) Get(userID string) (Conn, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	conn, ok := d.conns[userID]
	return conn, ok
}

// Each calls fn for every registered connection.
func (d *Directory) Each(fn func(userID string, conn Conn)) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for userID, conn := range d.conns {
		fn(userID, conn)
	}
}

// Len reports how many users are connected.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.conns)
}
