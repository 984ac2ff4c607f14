package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"jobboard/internal/apperr"
	"jobboard/internal/config"
	"jobboard/internal/models"
	"jobboard/internal/service"
)

// Hub upgrades websocket connections, authenticates them, and dispatches
// inbound events. Every event re-authenticates the handshake credential, so
// a banned user or a revoked token loses access mid-session.
type Hub struct {
	auth      *service.Authenticator
	chats     *service.ChatService
	companies *service.CompanyService
	dir       *Directory
	router    *Router
	upgrader  websocket.Upgrader
	cfg       *config.AppConfig
	log       zerolog.Logger
}

func NewHub(
	auth *service.Authenticator,
	chats *service.ChatService,
	companies *service.CompanyService,
	dir *Directory,
	router *Router,
	cfg *config.AppConfig,
	log zerolog.Logger,
) *Hub {
	h := &Hub{
		auth:      auth,
		chats:     chats,
		companies: companies,
		dir:       dir,
		router:    router,
		cfg:       cfg,
		log:       log.With().Str("component", "realtime_hub").Logger(),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	if len(h.cfg.AllowCORSOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range h.cfg.AllowCORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

type socketError struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// Serve is the GET /ws handler. It blocks for the lifetime of the
// connection.
func (h *Hub) Serve(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("upgrade failed")
		return
	}

	credential := c.GetHeader("Authorization")
	if credential == "" {
		credential = c.Query("token")
	}

	ctx := c.Request.Context()
	user, err := h.auth.Authenticate(ctx, credential)
	if err != nil {
		h.rejectHandshake(conn, err)
		return
	}

	client := NewClient(conn, user.ID, credential, h.cfg.Realtime, h.log)
	h.dir.Put(user.ID, client)
	h.log.Info().Str("user_id", user.ID).Msg("connected")

	go client.WritePump()
	client.ReadLoop(func(env Envelope) {
		h.dispatch(ctx, client, env)
	})

	// Only remove our own registration; a reconnect may already own the slot.
	h.dir.Remove(user.ID, client)
	h.log.Info().Str("user_id", user.ID).Msg("disconnected")
}

// rejectHandshake reports the auth failure on the raw connection, then
// closes it. A connection that never authenticated has no write pump, so the
// frame is written in place under a deadline.
func (h *Hub) rejectHandshake(conn *websocket.Conn, authErr error) {
	data, _ := json.Marshal(socketError{
		Message: apperr.MessageOf(authErr),
		Status:  apperr.StatusOf(authErr),
	})
	frame, _ := json.Marshal(Envelope{Event: "socket_Error", Data: data})
	_ = conn.SetWriteDeadline(time.Now().Add(h.cfg.Realtime.WriteTimeout))
	_ = conn.WriteMessage(websocket.TextMessage, frame)
	_ = conn.Close()
}

// dispatch re-authenticates and routes one inbound event. Failures are
// reported to the origin connection only and never close it.
func (h *Hub) dispatch(ctx context.Context, client *Client, env Envelope) {
	user, err := h.auth.Authenticate(ctx, client.Credential())
	if err != nil {
		h.sendError(client, err)
		return
	}

	switch env.Event {
	case "sendMessage":
		h.handleSendMessage(ctx, client, user, env.Data)
	case "jobApplication":
		h.handleJobApplication(client, env.Data)
	case "kickUser":
		h.handleKickUser(ctx, client, user, env.Data)
	default:
		h.sendError(client, apperr.BadRequest("unknown event"))
	}
}

type sendMessagePayload struct {
	Message string `json:"message"`
	DestID  string `json:"destId"`
}

func (h *Hub) handleSendMessage(ctx context.Context, client *Client, user models.User, data json.RawMessage) {
	var payload sendMessagePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		h.sendError(client, apperr.BadRequest("malformed sendMessage payload"))
		return
	}

	chat, err := h.chats.AppendMessage(ctx, user.ID, payload.DestID, payload.Message)
	if err != nil {
		h.sendError(client, err)
		return
	}

	h.router.Notify(payload.DestID, "newMessage", map[string]any{
		"message":    payload.Message,
		"senderName": user.Username(),
		"chat":       chat.View(),
	})
	client.Send("successMessage", map[string]any{
		"message": "message sent successfully",
	})
}

func (h *Hub) handleJobApplication(client *Client, data json.RawMessage) {
	client.Send("jobApplicationReceived", map[string]any{
		"message":         "job application received",
		"applicationData": data,
	})
}

type kickUserPayload struct {
	TargetUserID string `json:"targetUserId"`
	CompanyID    string `json:"companyId"`
}

func (h *Hub) handleKickUser(ctx context.Context, client *Client, user models.User, data json.RawMessage) {
	var payload kickUserPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		h.sendError(client, apperr.BadRequest("malformed kickUser payload"))
		return
	}

	if err := h.companies.KickHR(ctx, user, payload.CompanyID, payload.TargetUserID); err != nil {
		h.sendError(client, err)
		return
	}

	h.router.Notify(payload.TargetUserID, "kicked", map[string]any{
		"message": "you have been removed from the company",
	})
	client.Send("successMessage", map[string]any{
		"message": "user kicked successfully",
	})
}

func (h *Hub) sendError(client *Client, err error) {
	client.Send("socket_Error", socketError{
		Message: apperr.MessageOf(err),
		Status:  apperr.StatusOf(err),
	})
}
