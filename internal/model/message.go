package model

import (
	"time"
)

// MaxMessageLength 单条聊天消息最大长度（字符）
const MaxMessageLength = 200

// Room 两个用户之间的私聊房间
type Room struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	InitiatorID uint      `gorm:"not null;index;comment:发起者ID" json:"initiator_id"`
	ReceiverID  uint      `gorm:"not null;index;comment:参与者ID" json:"receiver_id"`
	CreatedAt   time.Time `gorm:"comment:开始时间" json:"start_time"`
}

func (Room) TableName() string { return "room" }

// HasParticipant 判断用户是否为房间成员
func (r *Room) HasParticipant(userID uint) bool {
	return r.InitiatorID == userID || r.ReceiverID == userID
}

// Peer 返回房间中的另一位成员
func (r *Room) Peer(userID uint) uint {
	if r.InitiatorID == userID {
		return r.ReceiverID
	}
	return r.InitiatorID
}

// Message 房间消息，按时间升序
type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RoomID    uint      `gorm:"not null;index;comment:房间ID" json:"room_id"`
	SenderID  uint      `gorm:"not null;index;comment:发送者ID" json:"sender_id"`
	Text      string    `gorm:"type:varchar(200);not null;comment:消息内容" json:"text"`
	CreatedAt time.Time `gorm:"index;comment:发送时间" json:"timestamp"`
}

func (Message) TableName() string { return "message" }
