package response

import (
	"net/http"

	"social-system/internal/model"
	"social-system/pkg/redis"

	"github.com/gin-gonic/gin"
)

const timeLayout = "2006-01-02 15:04:05"

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`            // 状态码：0表示成功，其他表示错误
	Message string      `json:"message"`         // 响应消息
	Data    interface{} `json:"data,omitempty"`  // 响应数据
	Error   string      `json:"error,omitempty"` // 错误详情（仅在开发环境显示）
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// SuccessWithMessage 带自定义消息的成功响应
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: message,
		Data:    data,
	})
}

// Error 错误响应
func Error(c *gin.Context, code int, message string) {
	c.JSON(http.StatusOK, Response{
		Code:    code,
		Message: message,
	})
}

// ErrorWithDetails 带错误详情的错误响应
func ErrorWithDetails(c *gin.Context, code int, message string, err error) {
	response := Response{
		Code:    code,
		Message: message,
	}

	// 在开发环境下显示错误详情
	if gin.Mode() == gin.DebugMode && err != nil {
		response.Error = err.Error()
	}

	c.JSON(http.StatusOK, response)
}

// BadRequest 400错误
func BadRequest(c *gin.Context, message string) {
	Error(c, 400, message)
}

// Unauthorized 401错误
func Unauthorized(c *gin.Context, message string) {
	Error(c, 401, message)
}

// Forbidden 403错误
func Forbidden(c *gin.Context, message string) {
	Error(c, 403, message)
}

// NotFound 404错误
func NotFound(c *gin.Context, message string) {
	Error(c, 404, message)
}

// Conflict 409错误
func Conflict(c *gin.Context, message string) {
	Error(c, 409, message)
}

// TooManyRequests 429错误
func TooManyRequests(c *gin.Context, message string) {
	Error(c, 429, message)
}

// InternalError 500错误
func InternalError(c *gin.Context, message string) {
	Error(c, 500, message)
}

// UserInfo 用户信息（隐藏敏感字段）
type UserInfo struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Avatar    string `json:"avatar"`
	Status    string `json:"status"`
	LastSeen  string `json:"last_seen"`
	CreatedAt string `json:"created_at"`
}

// FilterUserInfo 过滤用户信息，隐藏敏感字段
func FilterUserInfo(user *model.User) *UserInfo {
	if user == nil {
		return nil
	}

	info := &UserInfo{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Avatar:    user.Avatar,
		Status:    user.Status,
		CreatedAt: user.CreatedAt.Format(timeLayout),
	}
	if !user.LastSeen.IsZero() {
		info.LastSeen = user.LastSeen.Format(timeLayout)
	}
	return info
}

// FilterUsers 批量过滤用户信息
func FilterUsers(users []*model.User) []*UserInfo {
	out := make([]*UserInfo, 0, len(users))
	for _, u := range users {
		out = append(out, FilterUserInfo(u))
	}
	return out
}

// LoginResponse 登录/注册响应
type LoginResponse struct {
	User        *UserInfo `json:"user"`
	AccessToken string    `json:"access_token"`
}

// ProfileResponse 用户资料响应
// FriendRequests 只有查看自己的资料时才返回
type ProfileResponse struct {
	User           *UserInfo            `json:"user"`
	Friends        []*UserInfo          `json:"friends"`
	FriendRequests []*FriendRequestInfo `json:"friend_requests,omitempty"`
}

// FriendRequestInfo 好友申请
type FriendRequestInfo struct {
	ID         uint      `json:"id"`
	SenderID   uint      `json:"sender_id"`
	ReceiverID uint      `json:"receiver_id"`
	Sender     *UserInfo `json:"sender,omitempty"`
	CreatedAt  string    `json:"created_at"`
}

// FilterFriendRequest 转换好友申请
func FilterFriendRequest(req *model.FriendRequest) *FriendRequestInfo {
	if req == nil {
		return nil
	}
	return &FriendRequestInfo{
		ID:         req.ID,
		SenderID:   req.SenderID,
		ReceiverID: req.ReceiverID,
		Sender:     FilterUserInfo(req.Sender),
		CreatedAt:  req.CreatedAt.Format(timeLayout),
	}
}

// FilterFriendRequests 批量转换好友申请
func FilterFriendRequests(reqs []*model.FriendRequest) []*FriendRequestInfo {
	out := make([]*FriendRequestInfo, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, FilterFriendRequest(r))
	}
	return out
}

// CommentInfo 评论
type CommentInfo struct {
	ID        uint   `json:"id"`
	PostID    uint   `json:"post_id"`
	AuthorID  uint   `json:"author_id"`
	Entry     string `json:"entry"`
	CreatedAt string `json:"created_at"`
}

// FilterComment 转换评论
func FilterComment(c *model.Comment) *CommentInfo {
	if c == nil {
		return nil
	}
	return &CommentInfo{
		ID:        c.ID,
		PostID:    c.PostID,
		AuthorID:  c.AuthorID,
		Entry:     c.Entry,
		CreatedAt: c.CreatedAt.Format(timeLayout),
	}
}

// PostInfo 帖子
type PostInfo struct {
	ID        uint           `json:"id"`
	Author    *UserInfo      `json:"author,omitempty"`
	AuthorID  uint           `json:"author_id"`
	Entry     string         `json:"entry"`
	File      string         `json:"file,omitempty"`
	Likes     int64          `json:"likes"`
	Dislikes  int64          `json:"dislikes"`
	Comments  []*CommentInfo `json:"comments,omitempty"`
	CreatedAt string         `json:"created_at"`
	UpdatedAt string         `json:"updated_at"`
}

// FilterPost 转换帖子，likes/dislikes 由调用方统计
func FilterPost(p *model.Post, likes, dislikes int64) *PostInfo {
	if p == nil {
		return nil
	}
	info := &PostInfo{
		ID:        p.ID,
		Author:    FilterUserInfo(p.Author),
		AuthorID:  p.AuthorID,
		Entry:     p.Entry,
		File:      p.File,
		Likes:     likes,
		Dislikes:  dislikes,
		CreatedAt: p.CreatedAt.Format(timeLayout),
		UpdatedAt: p.UpdatedAt.Format(timeLayout),
	}
	for i := range p.Comments {
		info.Comments = append(info.Comments, FilterComment(&p.Comments[i]))
	}
	return info
}

// RoomInfo 聊天房间
type RoomInfo struct {
	ID          uint   `json:"id"`
	InitiatorID uint   `json:"initiator_id"`
	ReceiverID  uint   `json:"receiver_id"`
	StartTime   string `json:"start_time"`
}

// FilterRoom 转换房间
func FilterRoom(r *model.Room) *RoomInfo {
	if r == nil {
		return nil
	}
	return &RoomInfo{
		ID:          r.ID,
		InitiatorID: r.InitiatorID,
		ReceiverID:  r.ReceiverID,
		StartTime:   r.CreatedAt.Format(timeLayout),
	}
}

// MessageInfo 聊天消息
type MessageInfo struct {
	ID        uint   `json:"id"`
	RoomID    uint   `json:"room_id"`
	SenderID  uint   `json:"sender_id"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// FilterMessageInfo 转换消息
func FilterMessageInfo(m *model.Message) *MessageInfo {
	if m == nil {
		return nil
	}
	return &MessageInfo{
		ID:        m.ID,
		RoomID:    m.RoomID,
		SenderID:  m.SenderID,
		Text:      m.Text,
		Timestamp: m.CreatedAt.Format(timeLayout),
	}
}

// FilterMessages 批量转换消息
func FilterMessages(msgs []*model.Message) []*MessageInfo {
	out := make([]*MessageInfo, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, FilterMessageInfo(m))
	}
	return out
}

// PresenceInfo 在线状态
type PresenceInfo struct {
	UserID   uint   `json:"user_id"`
	Online   bool   `json:"online"`
	Username string `json:"username,omitempty"`
	LastSeen string `json:"last_seen,omitempty"`
}

// FilterPresence 转换在线状态，p 为 nil 表示离线且无记录
func FilterPresence(userID uint, p *redis.PresenceData) *PresenceInfo {
	info := &PresenceInfo{UserID: userID}
	if p == nil {
		return info
	}
	info.Online = p.Connected
	info.Username = p.Username
	info.LastSeen = p.LastSeen.Format(timeLayout)
	return info
}

// OnlineUsersResponse 在线用户列表
type OnlineUsersResponse struct {
	Count int             `json:"online_count"`
	Users []*PresenceInfo `json:"users"`
}
