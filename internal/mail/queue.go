package mail

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"jobboard/internal/config"
)

// Queue enqueues outbound mail onto a Redis stream so request handlers never
// block on SMTP. A consumer drains the stream and hands entries to a Sender.
type Queue struct {
	client *redis.Client
	stream string
}

func NewQueue(client *redis.Client, cfg config.MailConfig) *Queue {
	return &Queue{client: client, stream: cfg.Stream}
}

func (q *Queue) Send(ctx context.Context, to, subject, html string) error {
	err := q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: q.stream,
		Values: map[string]any{
			"to":      to,
			"subject": subject,
			"body":    html,
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("enqueue mail: %w", err)
	}
	return nil
}

// Handler drains queued mail entries and sends them.
type Handler struct {
	sender *Sender
}

func NewHandler(sender *Sender) *Handler {
	return &Handler{sender: sender}
}

func (h *Handler) Handle(ctx context.Context, msg redis.XMessage) error {
	to, _ := msg.Values["to"].(string)
	subject, _ := msg.Values["subject"].(string)
	body, _ := msg.Values["body"].(string)
	if to == "" {
		return fmt.Errorf("mail entry %s has no recipient", msg.ID)
	}
	return h.sender.Send(ctx, to, subject, body)
}
