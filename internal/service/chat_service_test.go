package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobboard/internal/models"
	"jobboard/internal/repository"
)

type fakeChatStore struct {
	chats    map[string]*models.Chat // pair key -> chat with messages
	failFind int                     // pretend not-found for the first N lookups
	conflict bool                    // force ErrChatExists on Create
}

func newFakeChatStore() *fakeChatStore {
	return &fakeChatStore{chats: make(map[string]*models.Chat)}
}

func (f *fakeChatStore) FindByPair(_ context.Context, a, b string) (models.Chat, error) {
	if f.failFind > 0 {
		f.failFind--
		return models.Chat{}, repository.ErrChatNotFound
	}
	chat, ok := f.chats[models.PairKey(a, b)]
	if !ok {
		return models.Chat{}, repository.ErrChatNotFound
	}
	head := *chat
	head.Messages = nil
	return head, nil
}

func (f *fakeChatStore) Create(_ context.Context, chat models.Chat, first models.Message) error {
	key := models.PairKey(chat.SenderID, chat.ReceiverID)
	if f.conflict {
		return repository.ErrChatExists
	}
	if _, ok := f.chats[key]; ok {
		return repository.ErrChatExists
	}
	first.ChatID = chat.ID
	chat.Messages = []models.Message{first}
	f.chats[key] = &chat
	return nil
}

func (f *fakeChatStore) AppendMessage(_ context.Context, msg models.Message) error {
	for _, chat := range f.chats {
		if chat.ID == msg.ChatID {
			chat.Messages = append(chat.Messages, msg)
			return nil
		}
	}
	return repository.ErrChatNotFound
}

func (f *fakeChatStore) GetByPair(_ context.Context, a, b string) (models.Chat, error) {
	chat, ok := f.chats[models.PairKey(a, b)]
	if !ok {
		return models.Chat{}, repository.ErrChatNotFound
	}
	return *chat, nil
}

func TestChatAppendCreatesThread(t *testing.T) {
	store := newFakeChatStore()
	svc := NewChatService(store, zerolog.Nop())

	chat, err := svc.AppendMessage(context.Background(), "alice", "bob", "hello")
	require.NoError(t, err)
	require.Len(t, chat.Messages, 1)
	assert.Equal(t, "hello", chat.Messages[0].Body)
	assert.Equal(t, "alice", chat.Messages[0].SenderID)
}

func TestChatBothDirectionsShareOneThread(t *testing.T) {
	store := newFakeChatStore()
	svc := NewChatService(store, zerolog.Nop())

	first, err := svc.AppendMessage(context.Background(), "alice", "bob", "hi bob")
	require.NoError(t, err)

	second, err := svc.AppendMessage(context.Background(), "bob", "alice", "hi alice")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, store.chats, 1)

	require.Len(t, second.Messages, 2)
	assert.Equal(t, "hi bob", second.Messages[0].Body)
	assert.Equal(t, "hi alice", second.Messages[1].Body)
}

func TestChatCreateConflictFallsBackToAppend(t *testing.T) {
	store := newFakeChatStore()
	svc := NewChatService(store, zerolog.Nop())

	// Seed a thread created by the peer, then make the next lookup miss so
	// the service walks the create path and hits the unique constraint.
	_, err := svc.AppendMessage(context.Background(), "bob", "alice", "first")
	require.NoError(t, err)
	store.failFind = 1

	chat, err := svc.AppendMessage(context.Background(), "alice", "bob", "second")
	require.NoError(t, err)

	assert.Len(t, store.chats, 1)
	require.Len(t, chat.Messages, 2)
	assert.Equal(t, "second", chat.Messages[1].Body)
}

func TestChatHistorySymmetric(t *testing.T) {
	store := newFakeChatStore()
	svc := NewChatService(store, zerolog.Nop())

	_, err := svc.AppendMessage(context.Background(), "alice", "bob", "hello")
	require.NoError(t, err)

	ab, err := svc.GetHistory(context.Background(), "alice", "bob")
	require.NoError(t, err)
	ba, err := svc.GetHistory(context.Background(), "bob", "alice")
	require.NoError(t, err)

	assert.Equal(t, ab.ID, ba.ID)
	assert.Equal(t, ab.Messages, ba.Messages)
}

func TestChatHistoryEmptyForStrangers(t *testing.T) {
	svc := NewChatService(newFakeChatStore(), zerolog.Nop())

	chat, err := svc.GetHistory(context.Background(), "alice", "stranger")
	require.NoError(t, err)
	assert.Empty(t, chat.ID)
	assert.Empty(t, chat.Messages)
}

func TestChatRejectsEmptyAndSelfMessages(t *testing.T) {
	svc := NewChatService(newFakeChatStore(), zerolog.Nop())

	_, err := svc.AppendMessage(context.Background(), "alice", "bob", "   ")
	assert.Error(t, err)

	_, err = svc.AppendMessage(context.Background(), "alice", "alice", "hi me")
	assert.Error(t, err)
}
