package realtime

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu     sync.Mutex
	events []string
	reject bool
}

func (f *fakeConn) Send(event string, payload any) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.reject {
		return false
	}
	f.events = append(f.events, event)
	return true
}

func (f *fakeConn) sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.events...)
}

func TestDirectoryPutOverwrites(t *testing.T) {
	dir := NewDirectory()
	old := &fakeConn{}
	fresh := &fakeConn{}

	dir.Put("u1", old)
	dir.Put("u1", fresh)

	got, ok := dir.Get("u1")
	require.True(t, ok)
	assert.Same(t, fresh, got)
	assert.Equal(t, 1, dir.Len())
}

func TestDirectoryRemoveOnlyOwnConn(t *testing.T) {
	dir := NewDirectory()
	old := &fakeConn{}
	fresh := &fakeConn{}

	dir.Put("u1", old)
	dir.Put("u1", fresh)

	// The stale connection's disconnect must not evict the replacement.
	dir.Remove("u1", old)
	got, ok := dir.Get("u1")
	require.True(t, ok)
	assert.Same(t, fresh, got)

	dir.Remove("u1", fresh)
	_, ok = dir.Get("u1")
	assert.False(t, ok)
}

func TestDirectoryRemoveUnknownUser(t *testing.T) {
	dir := NewDirectory()
	dir.Remove("ghost", &fakeConn{})
	assert.Equal(t, 0, dir.Len())
}

func TestDirectoryEach(t *testing.T) {
	dir := NewDirectory()
	dir.Put("a", &fakeConn{})
	dir.Put("b", &fakeConn{})

	seen := map[string]bool{}
	dir.Each(func(userID string, conn Conn) {
		seen[userID] = true
	})

	assert.Equal(t, map[string]bool{"a": true, "b": true}, seen)
}
