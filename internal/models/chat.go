package models

import "time"

// Chat is a two-party conversation. SenderID and ReceiverID record the
// direction the chat was created in; for lookup the pair is unordered.
type Chat struct {
	ID           string
	SenderID     string
	ReceiverID   string
	SenderName   string
	ReceiverName string
	Messages     []Message
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Peer returns the other participant of the chat.
func (c Chat) Peer(userID string) string {
	if c.SenderID == userID {
		return c.ReceiverID
	}
	return c.SenderID
}

type Message struct {
	ID         string
	ChatID     string
	SenderID   string
	SenderName string
	Body       string
	CreatedAt  time.Time
}

// ChatView is the wire shape of a conversation. The HTTP history endpoint
// and the realtime newMessage payload both serialize chats through it.
type ChatView struct {
	ID           string        `json:"id"`
	SenderID     string        `json:"senderId"`
	ReceiverID   string        `json:"receiverId"`
	SenderName   string        `json:"senderName"`
	ReceiverName string        `json:"receiverName"`
	Messages     []MessageView `json:"messages"`
}

type MessageView struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId"`
	SenderName string    `json:"senderName"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"createdAt"`
}

// View materializes the chat's wire shape with a non-nil message slice.
func (c Chat) View() ChatView {
	messages := make([]MessageView, 0, len(c.Messages))
	for _, m := range c.Messages {
		messages = append(messages, MessageView{
			ID:         m.ID,
			SenderID:   m.SenderID,
			SenderName: m.SenderName,
			Body:       m.Body,
			CreatedAt:  m.CreatedAt,
		})
	}
	return ChatView{
		ID:           c.ID,
		SenderID:     c.SenderID,
		ReceiverID:   c.ReceiverID,
		SenderName:   c.SenderName,
		ReceiverName: c.ReceiverName,
		Messages:     messages,
	}
}

// PairKey normalizes an unordered user pair into a stable key. Chats are
// unique on this key regardless of which party opened the conversation.
func PairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + ":" + b
}
