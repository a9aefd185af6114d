package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"social-system/config"
	"social-system/pkg/jwt"
	"social-system/pkg/limiter"
	"social-system/pkg/logger"
	"social-system/pkg/metrics"
	"social-system/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // 允许跨域
	},
}

// PresenceTracker 连接上下线与心跳回调
type PresenceTracker interface {
	SetOnline(ctx context.Context, userID uint, username string)
	SetOffline(ctx context.Context, userID uint, username string)
	Heartbeat(ctx context.Context, userID uint)
}

// ChatFunc 处理客户端发来的聊天消息，返回值作为 chat_ack 的数据
type ChatFunc func(ctx context.Context, senderID, roomID uint, text string) (interface{}, error)

// inbound 客户端发来的帧
type inbound struct {
	Type   string `json:"type"`
	RoomID uint   `json:"room_id"`
	Text   string `json:"text"`
}

// outbound 服务端推送的帧
type outbound struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// Handler WebSocket 接入
type Handler struct {
	manager  *Manager
	jwt      *jwt.JWTService
	cfg      config.WebSocketConfig
	presence PresenceTracker
	chat     ChatFunc
	limiter  *limiter.Limiter
}

// NewHandler 创建 WebSocket 处理器，limiter 可为 nil
func NewHandler(manager *Manager, jwtSvc *jwt.JWTService, cfg config.WebSocketConfig,
	presence PresenceTracker, chat ChatFunc, l *limiter.Limiter) *Handler {
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30 * time.Second
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 3 * cfg.PingInterval
	}
	return &Handler{manager: manager, jwt: jwtSvc, cfg: cfg, presence: presence, chat: chat, limiter: l}
}

// Serve Gin路由处理函数，token 通过 ?token= 或 Sec-WebSocket-Protocol 传递
func (h *Handler) Serve(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		token = strings.TrimPrefix(c.GetHeader("Sec-WebSocket-Protocol"), "Bearer ")
	}
	if token == "" {
		response.Unauthorized(c, "缺少token")
		return
	}

	claims, err := h.jwt.ValidateToken(token)
	if err != nil {
		response.Unauthorized(c, "token无效或已过期")
		return
	}
	userID, err := claims.UserID()
	if err != nil {
		response.Unauthorized(c, "token无效")
		return
	}
	username := claims.Username()

	// 回显子协议，避免客户端提示 "Server sent no subprotocol"
	respHeader := http.Header{}
	if protocol := c.GetHeader("Sec-WebSocket-Protocol"); protocol != "" {
		respHeader.Set("Sec-WebSocket-Protocol", protocol)
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, respHeader)
	if err != nil {
		logger.Warn("WebSocket升级失败", zap.Uint("user_id", userID), zap.Error(err))
		return
	}
	defer conn.Close()

	ctx := context.Background()
	client := NewClient(userID, conn)

	metrics.WSConnected()
	h.presence.SetOnline(ctx, userID, username)
	logger.Info("WebSocket已连接", zap.Uint("user_id", userID))

	go h.writePump(client)
	h.manager.AddClient(client)

	defer func() {
		h.manager.RemoveClient(client)
		// 被同一用户的新连接替换时保持在线
		if !h.manager.IsOnline(userID) {
			h.presence.SetOffline(ctx, userID, username)
		}
		metrics.WSDisconnected()
		logger.Info("WebSocket已断开", zap.Uint("user_id", userID))
	}()

	h.readPump(ctx, client)
}

// writePump 写协程：转发 Send 通道的消息并定时发送 ping
func (h *Handler) writePump(client *Client) {
	ticker := time.NewTicker(h.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-client.Send:
			_ = client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := client.Conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// readPump 读协程：处理心跳与聊天帧，超时未收到任何数据则断开
func (h *Handler) readPump(ctx context.Context, client *Client) {
	conn := client.Conn
	conn.SetReadLimit(4096)
	_ = conn.SetReadDeadline(time.Now().Add(h.cfg.ReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.cfg.ReadTimeout))
	})

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(h.cfg.ReadTimeout))

		var frame inbound
		if err := json.Unmarshal(payload, &frame); err != nil {
			h.reply(client, "error", gin.H{"message": "invalid frame"})
			continue
		}

		switch frame.Type {
		case "heartbeat":
			h.presence.Heartbeat(ctx, client.UserID)
			h.reply(client, "heartbeat_ack", nil)
		case "chat":
			if h.limiter != nil && !h.limiter.Allow(client.UserID) {
				h.reply(client, "error", gin.H{"message": "rate limited"})
				continue
			}
			data, err := h.chat(ctx, client.UserID, frame.RoomID, frame.Text)
			if err != nil {
				h.reply(client, "error", gin.H{"message": err.Error()})
				continue
			}
			h.reply(client, "chat_ack", data)
		default:
			h.reply(client, "error", gin.H{"message": "unknown frame type"})
		}
	}
}

func (h *Handler) reply(client *Client, frameType string, data interface{}) {
	b, err := json.Marshal(outbound{Type: frameType, Data: data, Timestamp: time.Now().Unix()})
	if err != nil {
		return
	}
	h.manager.SendToUser(client.UserID, b)
}
