package realtime

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestRouterNotifyDelivers(t *testing.T) {
	dir := NewDirectory()
	conn := &fakeConn{}
	dir.Put("u1", conn)

	router := NewRouter(dir, zerolog.Nop())
	router.Notify("u1", "newMessage", map[string]any{"body": "hi"})

	assert.Equal(t, []string{"newMessage"}, conn.sent())
}

func TestRouterNotifyAbsentIsNoop(t *testing.T) {
	router := NewRouter(NewDirectory(), zerolog.Nop())

	// Must not panic or error for an offline user.
	router.Notify("offline", "newMessage", nil)
}

func TestRouterNotifyFullBufferDrops(t *testing.T) {
	dir := NewDirectory()
	conn := &fakeConn{reject: true}
	dir.Put("u1", conn)

	router := NewRouter(dir, zerolog.Nop())
	router.Notify("u1", "newMessage", nil)

	assert.Empty(t, conn.sent())
}

func TestRouterBroadcast(t *testing.T) {
	dir := NewDirectory()
	a := &fakeConn{}
	b := &fakeConn{}
	dir.Put("a", a)
	dir.Put("b", b)

	router := NewRouter(dir, zerolog.Nop())
	router.Broadcast("jobApplication", map[string]any{"jobId": "j1"})

	assert.Equal(t, []string{"jobApplication"}, a.sent())
	assert.Equal(t, []string{"jobApplication"}, b.sent())
}
