package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"jobboard/internal/apperr"
	"jobboard/internal/ids"
	"jobboard/internal/models"
	"jobboard/internal/repository"
)

type ChatStore interface {
	FindByPair(ctx context.Context, userA, userB string) (models.Chat, error)
	Create(ctx context.Context, chat models.Chat, first models.Message) error
	AppendMessage(ctx context.Context, msg models.Message) error
	GetByPair(ctx context.Context, userA, userB string) (models.Chat, error)
}

// ChatService finds-or-creates two-party conversations and appends messages
// in arrival order. The find-or-create window is guarded twice: a per-pair
// mutex serializes this process, and the store's unique pair constraint
// catches a concurrent create, which is retried as an append.
type ChatService struct {
	store ChatStore
	log   zerolog.Logger

	mu    sync.Mutex
	pairs map[string]*sync.Mutex
}

func NewChatService(store ChatStore, log zerolog.Logger) *ChatService {
	return &ChatService{
		store: store,
		log:   log,
		pairs: make(map[string]*sync.Mutex),
	}
}

// AppendMessage persists a message to the pair's single conversation,
// creating it on first contact, and returns the full materialized thread.
func (s *ChatService) AppendMessage(ctx context.Context, senderID, receiverID, text string) (models.Chat, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Chat{}, apperr.BadRequest("message is empty")
	}
	if senderID == receiverID {
		return models.Chat{}, apperr.BadRequest("cannot message yourself")
	}

	lock := s.pairLock(senderID, receiverID)
	lock.Lock()
	defer lock.Unlock()

	msg := models.Message{
		ID:       ids.New(),
		SenderID: senderID,
		Body:     text,
	}

	chat, err := s.store.FindByPair(ctx, senderID, receiverID)
	switch {
	case err == nil:
		msg.ChatID = chat.ID
		if err := s.store.AppendMessage(ctx, msg); err != nil {
			return models.Chat{}, err
		}
	case errors.Is(err, repository.ErrChatNotFound):
		chat = models.Chat{
			ID:         ids.New(),
			SenderID:   senderID,
			ReceiverID: receiverID,
		}
		createErr := s.store.Create(ctx, chat, msg)
		if errors.Is(createErr, repository.ErrChatExists) {
			// Lost the race to the peer's first message; append instead.
			existing, findErr := s.store.FindByPair(ctx, senderID, receiverID)
			if findErr != nil {
				return models.Chat{}, findErr
			}
			msg.ChatID = existing.ID
			createErr = s.store.AppendMessage(ctx, msg)
		}
		if createErr != nil {
			return models.Chat{}, createErr
		}
	default:
		return models.Chat{}, err
	}

	return s.store.GetByPair(ctx, senderID, receiverID)
}

// GetHistory returns the pair's conversation, or an empty chat if the two
// users have never spoken. Lookup is symmetric in its arguments.
func (s *ChatService) GetHistory(ctx context.Context, userA, userB string) (models.Chat, error) {
	chat, err := s.store.GetByPair(ctx, userA, userB)
	if errors.Is(err, repository.ErrChatNotFound) {
		return models.Chat{}, nil
	}
	return chat, err
}

func (s *ChatService) pairLock(a, b string) *sync.Mutex {
	key := models.PairKey(a, b)

	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.pairs[key]
	if !ok {
		lock = &sync.Mutex{}
		s.pairs[key] = lock
	}
	return lock
}
