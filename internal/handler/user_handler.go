package handler

import (
	"errors"

	"social-system/internal/service"
	"social-system/pkg/redis"
	"social-system/pkg/response"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	service *service.UserService
}

func NewUserHandler(s *service.UserService) *UserHandler {
	return &UserHandler{service: s}
}

// Register 用户注册
func (h *UserHandler) Register(c *gin.Context) {
	type req struct {
		Email           string `json:"email" binding:"required"`
		Password        string `json:"password" binding:"required"`
		ConfirmPassword string `json:"confirmPassword" binding:"required"`
		Username        string `json:"username"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	user, token, err := h.service.Register(c.Request.Context(), r.Email, r.Password, r.ConfirmPassword, r.Username)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessWithMessage(c, "注册成功", &response.LoginResponse{
		User:        response.FilterUserInfo(user),
		AccessToken: token,
	})
}

// Login 用户登录
func (h *UserHandler) Login(c *gin.Context) {
	type req struct {
		UsernameOrEmail string `json:"usernameOrEmail" binding:"required"`
		Password        string `json:"password" binding:"required"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	user, token, err := h.service.Login(c.Request.Context(), r.UsernameOrEmail, r.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessWithMessage(c, "登录成功", &response.LoginResponse{
		User:        response.FilterUserInfo(user),
		AccessToken: token,
	})
}

// Logout 用户登出：更新在线状态为offline
func (h *UserHandler) Logout(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.service.Logout(c.Request.Context(), uid); err != nil {
		respondError(c, err)
		return
	}
	response.SuccessWithMessage(c, "已离线", nil)
}

// ListProfiles 用户列表
func (h *UserHandler) ListProfiles(c *gin.Context) {
	users, err := h.service.ListProfiles(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, response.FilterUsers(users))
}

// GetProfile 用户详情：好友列表；查看自己时附带待处理的好友申请
func (h *UserHandler) GetProfile(c *gin.Context) {
	viewerID, ok := currentUserID(c)
	if !ok {
		return
	}
	userID, ok := paramID(c, "user_id")
	if !ok {
		return
	}

	p, err := h.service.GetProfile(c.Request.Context(), viewerID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := &response.ProfileResponse{
		User:    response.FilterUserInfo(p.User),
		Friends: response.FilterUsers(p.Friends),
	}
	if p.Requests != nil {
		resp.FriendRequests = response.FilterFriendRequests(p.Requests)
	}
	response.Success(c, resp)
}

// UpdateProfile 修改自己的资料
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	actingID, ok := currentUserID(c)
	if !ok {
		return
	}
	userID, ok := paramID(c, "user_id")
	if !ok {
		return
	}
	type req struct {
		Username string `json:"username"`
		Avatar   string `json:"avatar"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.service.UpdateProfile(c.Request.Context(), actingID, userID, r.Username, r.Avatar)
	if err != nil {
		respondError(c, err)
		return
	}
	response.SuccessWithMessage(c, "资料已更新", response.FilterUserInfo(user))
}

// GetOnlineUsers 在线用户列表，未启用 Redis 时为空
func (h *UserHandler) GetOnlineUsers(c *gin.Context) {
	presences, err := redis.GetOnlineUsersWithDetails()
	if err != nil && !errors.Is(err, redis.ErrNotInitialized) {
		response.InternalError(c, "获取在线用户失败")
		return
	}

	out := &response.OnlineUsersResponse{Users: make([]*response.PresenceInfo, 0, len(presences))}
	for i := range presences {
		out.Users = append(out.Users, response.FilterPresence(presences[i].UserID, &presences[i]))
	}
	out.Count = len(out.Users)
	response.Success(c, out)
}

// CheckUserOnline 查询单个用户的在线状态
func (h *UserHandler) CheckUserOnline(c *gin.Context) {
	userID, ok := paramID(c, "user_id")
	if !ok {
		return
	}

	p, err := redis.GetUserPresence(userID)
	switch {
	case errors.Is(err, redis.ErrNotInitialized), errors.Is(err, redis.ErrPresenceNotFound):
		p = nil
	case err != nil:
		response.InternalError(c, "查询在线状态失败")
		return
	}
	response.Success(c, response.FilterPresence(userID, p))
}
