package websocket

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"social-system/config"
	"social-system/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePresence struct {
	mu     sync.Mutex
	events []string
}

func (p *fakePresence) record(e string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *fakePresence) list() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

func (p *fakePresence) SetOnline(_ context.Context, _ uint, _ string)  { p.record("online") }
func (p *fakePresence) SetOffline(_ context.Context, _ uint, _ string) { p.record("offline") }
func (p *fakePresence) Heartbeat(_ context.Context, _ uint)            { p.record("heartbeat") }

func newTestServer(t *testing.T) (*httptest.Server, *Manager, *fakePresence, *jwt.JWTService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwtSvc := jwt.NewJWTService(config.JWTConfig{Secret: "test", ExpireTime: time.Hour, Issuer: "test"})
	manager := NewManager()
	presence := &fakePresence{}
	chat := func(_ context.Context, senderID, roomID uint, text string) (interface{}, error) {
		if roomID == 0 {
			return nil, errors.New("room not found")
		}
		return gin.H{"room_id": roomID, "sender_id": senderID, "text": text}, nil
	}
	h := NewHandler(manager, jwtSvc, config.WebSocketConfig{PingInterval: time.Second, ReadTimeout: 5 * time.Second}, presence, chat, nil)

	r := gin.New()
	r.GET("/ws", h.Serve)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, manager, presence, jwtSvc
}

func wsURL(srv *httptest.Server, token string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
}

func TestServeRejectsBadToken(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, "bad"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServeChatAndHeartbeat(t *testing.T) {
	srv, manager, presence, jwtSvc := newTestServer(t)
	token, err := jwtSvc.GenerateUserToken(5, "eve")
	require.NoError(t, err)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, token), nil)
	require.NoError(t, err)

	var frame outbound
	require.NoError(t, conn.WriteJSON(inbound{Type: "heartbeat"}))
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "heartbeat_ack", frame.Type)
	assert.True(t, manager.IsOnline(5))

	require.NoError(t, conn.WriteJSON(inbound{Type: "chat", RoomID: 3, Text: "hi"}))
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "chat_ack", frame.Type)
	data := frame.Data.(map[string]interface{})
	assert.Equal(t, "hi", data["text"])
	assert.Equal(t, float64(5), data["sender_id"])

	require.NoError(t, conn.WriteJSON(inbound{Type: "chat"}))
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "error", frame.Type)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "error", frame.Type)

	// 服务端推送
	manager.SendToUser(5, []byte(`{"type":"friend_request"}`))
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "friend_request", frame.Type)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return !manager.IsOnline(5) }, 2*time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool {
		ev := presence.list()
		return len(ev) > 0 && ev[len(ev)-1] == "offline"
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "online", presence.list()[0])
	assert.Contains(t, presence.list(), "heartbeat")
}
