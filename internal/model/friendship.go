package model

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Friendship 好友关系（邻接表）
// 一条好友关系对应两行：(A,B) 与 (B,A)，两行总是在同一条语句中写入/删除。
// 不使用软删除，删除后同一对用户可以再次成为好友。
type Friendship struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_friendship_pair,priority:1;comment:用户ID"`
	FriendID  uint      `gorm:"not null;uniqueIndex:idx_friendship_pair,priority:2;index;comment:好友ID"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
}

func (Friendship) TableName() string { return "friendship" }

// FriendRequest 待处理的好友申请（有方向：Sender -> Receiver）
// PairKey 为两个用户ID的无序组合，唯一索引保证同一对用户任意方向最多一条申请。
// 同意或拒绝后直接删除，不保留历史。
type FriendRequest struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	SenderID   uint      `gorm:"not null;index;comment:发送者ID" json:"sender_id"`
	ReceiverID uint      `gorm:"not null;index;comment:接收者ID" json:"receiver_id"`
	PairKey    string    `gorm:"type:varchar(64);not null;uniqueIndex;comment:无序用户对" json:"-"`
	CreatedAt  time.Time `gorm:"comment:创建时间" json:"created_at"`

	Sender *User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
}

func (FriendRequest) TableName() string { return "friend_request" }

// BeforeCreate 写入前计算 PairKey
func (r *FriendRequest) BeforeCreate(tx *gorm.DB) error {
	r.PairKey = PairKey(r.SenderID, r.ReceiverID)
	return nil
}

// PairKey 返回两个用户ID的无序组合键，例如 PairKey(7, 3) == "3:7"
func PairKey(a, b uint) string {
	return fmt.Sprintf("%d:%d", min(a, b), max(a, b))
}
