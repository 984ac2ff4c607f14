package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"jobboard/internal/models"
)

var ErrChatNotFound = errors.New("chat not found")
var ErrChatExists = errors.New("chat already exists")

type ChatRepository struct {
	db DB
}

func NewChatRepository(db DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// FindByPair matches a conversation regardless of which party opened it.
func (r *ChatRepository) FindByPair(ctx context.Context, userA, userB string) (models.Chat, error) {
	const query = `
		SELECT id, sender_id, receiver_id, created_at, updated_at
		FROM chats
		WHERE (sender_id = $1 AND receiver_id = $2)
		   OR (sender_id = $2 AND receiver_id = $1)
	`
	row := r.db.QueryRow(ctx, query, userA, userB)
	var chat models.Chat
	if err := row.Scan(&chat.ID, &chat.SenderID, &chat.ReceiverID, &chat.CreatedAt, &chat.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Chat{}, ErrChatNotFound
		}
		return models.Chat{}, err
	}
	return chat, nil
}

// Create inserts a chat together with its first message in one statement.
// The unique index on the normalized pair key reports a concurrent create
// as ErrChatExists so the caller can retry as an append.
func (r *ChatRepository) Create(ctx context.Context, chat models.Chat, first models.Message) error {
	const query = `
		WITH c AS (
			INSERT INTO chats (id, pair_key, sender_id, receiver_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, NOW(), NOW())
			RETURNING id
		)
		INSERT INTO messages (id, chat_id, sender_id, body, created_at)
		SELECT $5, c.id, $6, $7, NOW() FROM c
	`
	_, err := r.db.Exec(ctx, query,
		chat.ID,
		models.PairKey(chat.SenderID, chat.ReceiverID),
		chat.SenderID,
		chat.ReceiverID,
		first.ID,
		first.SenderID,
		first.Body,
	)
	if isUniqueViolation(err) {
		return ErrChatExists
	}
	return err
}

// AppendMessage adds to the end of the thread; existing messages are never
// touched.
func (r *ChatRepository) AppendMessage(ctx context.Context, msg models.Message) error {
	const query = `
		WITH m AS (
			INSERT INTO messages (id, chat_id, sender_id, body, created_at)
			VALUES ($1, $2, $3, $4, NOW())
			RETURNING chat_id
		)
		UPDATE chats SET updated_at = NOW() WHERE id IN (SELECT chat_id FROM m)
	`
	_, err := r.db.Exec(ctx, query, msg.ID, msg.ChatID, msg.SenderID, msg.Body)
	return err
}

// GetByPair materializes the full thread: participant display names and
// every message in append order with author names populated.
func (r *ChatRepository) GetByPair(ctx context.Context, userA, userB string) (models.Chat, error) {
	const chatQuery = `
		SELECT c.id, c.sender_id, c.receiver_id,
		       s.first_name || ' ' || s.last_name,
		       r.first_name || ' ' || r.last_name,
		       c.created_at, c.updated_at
		FROM chats c
		JOIN users s ON s.id = c.sender_id
		JOIN users r ON r.id = c.receiver_id
		WHERE (c.sender_id = $1 AND c.receiver_id = $2)
		   OR (c.sender_id = $2 AND c.receiver_id = $1)
	`
	row := r.db.QueryRow(ctx, chatQuery, userA, userB)
	var chat models.Chat
	if err := row.Scan(
		&chat.ID, &chat.SenderID, &chat.ReceiverID,
		&chat.SenderName, &chat.ReceiverName,
		&chat.CreatedAt, &chat.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Chat{}, ErrChatNotFound
		}
		return models.Chat{}, err
	}

	const messageQuery = `
		SELECT m.id, m.chat_id, m.sender_id,
		       u.first_name || ' ' || u.last_name, m.body, m.created_at
		FROM messages m
		JOIN users u ON u.id = m.sender_id
		WHERE m.chat_id = $1
		ORDER BY m.created_at, m.id
	`
	rows, err := r.db.Query(ctx, messageQuery, chat.ID)
	if err != nil {
		return models.Chat{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var msg models.Message
		if err := rows.Scan(&msg.ID, &msg.ChatID, &msg.SenderID, &msg.SenderName, &msg.Body, &msg.CreatedAt); err != nil {
			return models.Chat{}, err
		}
		chat.Messages = append(chat.Messages, msg)
	}
	return chat, rows.Err()
}
