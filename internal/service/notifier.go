package service

import (
	"encoding/json"
	"time"

	"social-system/pkg/logger"

	"go.uber.org/zap"
)

// 推送事件类型
const (
	EventFriendRequest         = "friend_request"
	EventFriendRequestAccepted = "friend_request_accepted"
	EventFriendRequestRefused  = "friend_request_refused"
	EventFriendRemoved         = "friend_removed"
	EventChat                  = "chat"
)

// Notifier 向用户推送实时事件（WebSocket管理器实现）
type Notifier interface {
	SendToUser(userID uint, msg []byte)
}

type noopNotifier struct{}

func (noopNotifier) SendToUser(uint, []byte) {}

// Event 推送给客户端的事件帧
type Event struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp int64       `json:"timestamp"`
}

func notify(n Notifier, userID uint, eventType string, data interface{}) {
	b, err := json.Marshal(Event{Type: eventType, Data: data, Timestamp: time.Now().Unix()})
	if err != nil {
		logger.Warn("事件序列化失败", zap.String("type", eventType), zap.Error(err))
		return
	}
	n.SendToUser(userID, b)
}
