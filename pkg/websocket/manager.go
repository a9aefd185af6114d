package websocket

import (
	"errors"
	"sync"

	"social-system/pkg/logger"
	"social-system/pkg/redis"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Client 一个用户的 WebSocket 连接，Send 由写协程消费
type Client struct {
	UserID uint
	Conn   *websocket.Conn
	Send   chan []byte
}

// NewClient 创建客户端，发送缓冲区大小 256
func NewClient(userID uint, conn *websocket.Conn) *Client {
	return &Client{UserID: userID, Conn: conn, Send: make(chan []byte, 256)}
}

// Manager 按用户ID索引的连接表
// 不在线用户的通知写入 Redis 离线队列，下次连接时补发
type Manager struct {
	clients map[uint]*Client // 在线用户
	lock    sync.RWMutex
}

// NewManager 创建连接管理器
func NewManager() *Manager {
	return &Manager{clients: make(map[uint]*Client)}
}

// AddClient 添加新连接，同一用户的旧连接会被替换
func (m *Manager) AddClient(client *Client) {
	m.lock.Lock()
	if old, ok := m.clients[client.UserID]; ok && old != client {
		close(old.Send)
	}
	m.clients[client.UserID] = client
	m.lock.Unlock()

	m.flushOffline(client)
}

// RemoveClient 移除连接；连接已被新连接替换时不做处理
func (m *Manager) RemoveClient(client *Client) {
	m.lock.Lock()
	defer m.lock.Unlock()
	if c, ok := m.clients[client.UserID]; ok && c == client {
		close(c.Send)
		delete(m.clients, client.UserID)
	}
}

// SendToUser 推送消息给指定用户
// 若用户不在线则存储到Redis离线通知
func (m *Manager) SendToUser(userID uint, msg []byte) {
	m.lock.RLock()
	client, ok := m.clients[userID]
	if ok {
		select {
		case client.Send <- msg:
		default:
			logger.Warn("发送缓冲区已满，丢弃消息", zap.Uint("user_id", userID))
		}
	}
	m.lock.RUnlock()

	if !ok {
		if err := redis.AddOfflineNotice(userID, msg); err != nil && !errors.Is(err, redis.ErrNotInitialized) {
			logger.Warn("保存离线通知失败", zap.Uint("user_id", userID), zap.Error(err))
		}
	}
}

// IsOnline 判断用户是否在线
func (m *Manager) IsOnline(userID uint) bool {
	m.lock.RLock()
	defer m.lock.RUnlock()
	_, ok := m.clients[userID]
	return ok
}

// OnlineCount 当前连接数
func (m *Manager) OnlineCount() int {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return len(m.clients)
}

// flushOffline 补发离线期间的通知，然后清空离线队列
func (m *Manager) flushOffline(client *Client) {
	notices, err := redis.GetOfflineNotices(client.UserID, 0)
	if err != nil || len(notices) == 0 {
		return
	}

	m.lock.RLock()
	defer m.lock.RUnlock()
	if m.clients[client.UserID] != client {
		return
	}
	for _, n := range notices {
		select {
		case client.Send <- n:
		default:
			// 缓冲区满，剩余的留在队列中
			return
		}
	}
	_ = redis.ClearOfflineNotices(client.UserID)
}
