package model

import (
	"time"
)

// 帖子互动类型
const (
	ReactionLike    = "like"
	ReactionDislike = "dislike"
)

// Post 帖子
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AuthorID  uint      `gorm:"not null;index;comment:作者ID" json:"author_id"`
	Entry     string    `gorm:"type:text;comment:正文" json:"entry"`
	File      string    `gorm:"type:varchar(255);comment:图片URL" json:"file"`
	CreatedAt time.Time `gorm:"index;comment:创建时间" json:"created_at"`
	UpdatedAt time.Time `gorm:"comment:更新时间" json:"updated_at"`

	Author   *User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Comments []Comment `gorm:"foreignKey:PostID" json:"comments,omitempty"`
}

func (Post) TableName() string { return "post" }

// PostReaction 点赞/点踩，每个用户对每个帖子最多一条
type PostReaction struct {
	ID        uint      `gorm:"primaryKey"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_reaction_post_user,priority:1"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_reaction_post_user,priority:2"`
	Kind      string    `gorm:"type:varchar(16);not null;comment:like/dislike"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
}

func (PostReaction) TableName() string { return "post_reaction" }

// Comment 帖子评论
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index;comment:帖子ID" json:"post_id"`
	AuthorID  uint      `gorm:"not null;index;comment:作者ID" json:"author_id"`
	Entry     string    `gorm:"type:text;not null;comment:内容" json:"entry"`
	CreatedAt time.Time `gorm:"comment:创建时间" json:"created_at"`
}

func (Comment) TableName() string { return "comment" }
