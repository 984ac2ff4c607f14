package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobboard/internal/config"
	"jobboard/internal/models"
	"jobboard/internal/repository"
	"jobboard/internal/security"
	"jobboard/internal/service"
)

type hubUserSource struct {
	mu    sync.Mutex
	users map[string]models.User
}

func (s *hubUserSource) GetByID(_ context.Context, id string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

func (s *hubUserSource) setBanned(id string, at *time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[id]
	u.BannedAt = at
	s.users[id] = u
}

type hubChatStore struct {
	mu    sync.Mutex
	chats map[string]models.Chat
}

func newHubChatStore() *hubChatStore {
	return &hubChatStore{chats: make(map[string]models.Chat)}
}

func (s *hubChatStore) FindByPair(_ context.Context, a, b string) (models.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chat, ok := s.chats[models.PairKey(a, b)]
	if !ok {
		return models.Chat{}, repository.ErrChatNotFound
	}
	return chat, nil
}

func (s *hubChatStore) Create(_ context.Context, chat models.Chat, first models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := models.PairKey(chat.SenderID, chat.ReceiverID)
	if _, ok := s.chats[key]; ok {
		return repository.ErrChatExists
	}
	first.ChatID = chat.ID
	chat.Messages = []models.Message{first}
	s.chats[key] = chat
	return nil
}

func (s *hubChatStore) AppendMessage(_ context.Context, msg models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, chat := range s.chats {
		if chat.ID == msg.ChatID {
			chat.Messages = append(chat.Messages, msg)
			s.chats[key] = chat
			return nil
		}
	}
	return repository.ErrChatNotFound
}

func (s *hubChatStore) GetByPair(ctx context.Context, a, b string) (models.Chat, error) {
	return s.FindByPair(ctx, a, b)
}

type hubFixture struct {
	users  *hubUserSource
	server *httptest.Server
	cfg    *config.AppConfig
}

func newHubFixture(t *testing.T, users map[string]models.User) *hubFixture {
	t.Helper()

	cfg := &config.AppConfig{
		Security: config.SecurityConfig{
			UserAccessSecret:  "user-access-secret",
			AdminAccessSecret: "admin-access-secret",
			AccessTTL:         time.Hour,
		},
		Realtime: config.RealtimeConfig{
			SendBuffer:     16,
			IdleTimeout:    5 * time.Second,
			PingInterval:   time.Second,
			WriteTimeout:   2 * time.Second,
			MaxMessageSize: 8192,
		},
	}

	logger := zerolog.Nop()
	source := &hubUserSource{users: users}
	auth := service.NewAuthenticator(source, cfg.Security)
	chats := service.NewChatService(newHubChatStore(), logger)
	dir := NewDirectory()
	hub := NewHub(auth, chats, nil, dir, NewRouter(dir, logger), cfg, logger)

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/ws", hub.Serve)

	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)
	return &hubFixture{users: source, server: srv, cfg: cfg}
}

func (f *hubFixture) dial(t *testing.T, credential string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, http.Header{"Authorization": {credential}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func (f *hubFixture) userCredential(t *testing.T, userID string) string {
	t.Helper()
	token, err := security.GenerateToken(f.cfg.Security.UserAccessSecret, userID, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func sendEvent(t *testing.T, conn *websocket.Conn, event string, payload any) {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	frame, err := json.Marshal(Envelope{Event: event, Data: data})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, frame))
}

func readEvent(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var env Envelope
	require.NoError(t, json.Unmarshal(raw, &env))
	return env
}

func twoUsers() map[string]models.User {
	return map[string]models.User{
		"u1": {ID: "u1", FirstName: "Alice", LastName: "Ames", Role: models.UserRoleUser},
		"u2": {ID: "u2", FirstName: "Bob", LastName: "Burns", Role: models.UserRoleUser},
	}
}

func TestHubHandshakeFailureEmitsSocketError(t *testing.T) {
	fx := newHubFixture(t, twoUsers())

	conn := fx.dial(t, "Bearer not-a-token")

	env := readEvent(t, conn)
	require.Equal(t, "socket_Error", env.Event)

	var payload struct {
		Message string `json:"message"`
		Status  int    `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	assert.Equal(t, http.StatusUnauthorized, payload.Status)
	assert.NotEmpty(t, payload.Message)

	// The server closes a rejected connection after delivering the frame.
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}

func TestHubSendMessageDeliversToPeerAndAcksSender(t *testing.T) {
	fx := newHubFixture(t, twoUsers())

	alice := fx.dial(t, fx.userCredential(t, "u1"))
	bob := fx.dial(t, fx.userCredential(t, "u2"))

	sendEvent(t, alice, "sendMessage", map[string]any{
		"message": "hello bob",
		"destId":  "u2",
	})

	env := readEvent(t, bob)
	require.Equal(t, "newMessage", env.Event)

	var delivered struct {
		Message    string          `json:"message"`
		SenderName string          `json:"senderName"`
		Chat       models.ChatView `json:"chat"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &delivered))
	assert.Equal(t, "hello bob", delivered.Message)
	assert.Equal(t, "Alice Ames", delivered.SenderName)
	require.Len(t, delivered.Chat.Messages, 1)
	assert.Equal(t, "u1", delivered.Chat.Messages[0].SenderID)

	ack := readEvent(t, alice)
	assert.Equal(t, "successMessage", ack.Event)

	firstChatID := delivered.Chat.ID

	// The reply lands in the same thread regardless of direction.
	sendEvent(t, bob, "sendMessage", map[string]any{
		"message": "hi alice",
		"destId":  "u1",
	})

	env = readEvent(t, alice)
	require.Equal(t, "newMessage", env.Event)
	require.NoError(t, json.Unmarshal(env.Data, &delivered))
	assert.Equal(t, firstChatID, delivered.Chat.ID)
	assert.Len(t, delivered.Chat.Messages, 2)
}

func TestHubRevokedCredentialMidSessionKeepsConnection(t *testing.T) {
	fx := newHubFixture(t, twoUsers())

	alice := fx.dial(t, fx.userCredential(t, "u1"))
	fx.dial(t, fx.userCredential(t, "u2"))

	now := time.Now()
	fx.users.setBanned("u1", &now)

	sendEvent(t, alice, "sendMessage", map[string]any{
		"message": "should not go through",
		"destId":  "u2",
	})

	env := readEvent(t, alice)
	require.Equal(t, "socket_Error", env.Event)

	var payload struct {
		Status int `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	assert.Equal(t, http.StatusUnauthorized, payload.Status)

	// Lifting the ban proves the rejection never closed the socket.
	fx.users.setBanned("u1", nil)

	sendEvent(t, alice, "sendMessage", map[string]any{
		"message": "back again",
		"destId":  "u2",
	})
	ack := readEvent(t, alice)
	assert.Equal(t, "successMessage", ack.Event)
}
