package model

import (
	"time"

	"gorm.io/gorm"
)

// User 用户资料模型
// 索引与唯一约束：用户名唯一、邮箱唯一
// 说明：密码仅存储哈希（PasswordHash），不存储明文
// 好友集合不在本表中，见 Friendship

type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Username     string         `gorm:"type:varchar(64);not null;uniqueIndex;comment:用户名" json:"username"`
	Email        string         `gorm:"type:varchar(128);not null;uniqueIndex;comment:邮箱" json:"email"`
	PasswordHash string         `gorm:"type:varchar(255);not null;comment:密码哈希" json:"-"`
	Avatar       string         `gorm:"type:varchar(255);comment:头像URL" json:"avatar"`
	Status       string         `gorm:"type:varchar(32);default:'offline';comment:状态" json:"status"`
	LastSeen     time.Time      `gorm:"comment:最近在线时间" json:"last_seen"`
	CreatedAt    time.Time      `gorm:"comment:创建时间" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"comment:更新时间" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName 指定表名（全局配置使用单数表名）
func (User) TableName() string { return "user" }

// All 返回需要自动迁移的全部模型
func All() []interface{} {
	return []interface{}{
		&User{},
		&Friendship{},
		&FriendRequest{},
		&Post{},
		&PostReaction{},
		&Comment{},
		&Room{},
		&Message{},
	}
}
