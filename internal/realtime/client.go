package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"jobboard/internal/config"
)

// Envelope is the wire frame for every realtime message, both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Client is one authenticated websocket connection. Writes go through a
// buffered channel drained by writePump; a full buffer drops the frame so a
// slow consumer never stalls a sender.
type Client struct {
	UserID string

	conn       *websocket.Conn
	credential string
	send       chan []byte
	cfg        config.RealtimeConfig
	log        zerolog.Logger

	closeOnce sync.Once
	done      chan struct{}
}

func NewClient(conn *websocket.Conn, userID, credential string, cfg config.RealtimeConfig, log zerolog.Logger) *Client {
	return &Client{
		UserID:     userID,
		conn:       conn,
		credential: credential,
		send:       make(chan []byte, cfg.SendBuffer),
		cfg:        cfg,
		log:        log.With().Str("user_id", userID).Logger(),
		done:       make(chan struct{}),
	}
}

// Credential returns the handshake credential for per-event re-checks.
func (c *Client) Credential() string {
	return c.credential
}

// Send queues an event frame. Never blocks; returns false if the frame was
// dropped because the client is closed or its buffer is full.
func (c *Client) Send(event string, payload any) bool {
	data, err := json.Marshal(payload)
	if err != nil {
		c.log.Error().Err(err).Str("event", event).Msg("marshal payload")
		return false
	}
	frame, err := json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		return false
	}

	select {
	case <-c.done:
		return false
	case c.send <- frame:
		return true
	default:
		c.log.Warn().Str("event", event).Msg("send buffer full, frame dropped")
		return false
	}
}

// Close tears the connection down. Safe to call more than once.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// ReadLoop blocks, decoding inbound frames until the peer goes away. The
// read deadline doubles as the idle-session timeout; pongs extend it.
func (c *Client) ReadLoop(handle func(Envelope)) {
	defer c.Close()

	c.conn.SetReadLimit(c.cfg.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.cfg.IdleTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.cfg.IdleTimeout))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Debug().Err(err).Msg("connection closed")
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(c.cfg.IdleTimeout))

		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			c.log.Warn().Err(err).Msg("malformed frame")
			continue
		}
		handle(env)
	}
}

// WritePump drains the send buffer and keeps the connection alive with
// pings. Runs in its own goroutine per connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-c.done:
			return
		case frame := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
