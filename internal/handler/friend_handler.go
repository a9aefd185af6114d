package handler

import (
	"context"

	"social-system/internal/guard"
	"social-system/internal/service"
	"social-system/pkg/response"

	"github.com/gin-gonic/gin"
)

// FriendHandler 好友申请与好友列表
type FriendHandler struct {
	service *service.FriendService
}

// NewFriendHandler 创建FriendHandler实例
func NewFriendHandler(s *service.FriendService) *FriendHandler {
	return &FriendHandler{service: s}
}

// CreateRequest POST /users/:user_id/friend-requests
// 路径中的 user_id 必须是当前用户，请求体给出接收者
func (h *FriendHandler) CreateRequest(c *gin.Context) {
	actingID, ok := currentUserID(c)
	if !ok {
		return
	}
	userID, ok := paramID(c, "user_id")
	if !ok {
		return
	}
	if err := guard.OwnershipCheck(actingID, userID); err != nil {
		respondError(c, err)
		return
	}

	type req struct {
		ReceiverID uint `json:"receiver_id" binding:"required"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	fr, err := h.service.CreateRequest(c.Request.Context(), actingID, r.ReceiverID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.SuccessWithMessage(c, "Friend request was sent.", response.FilterFriendRequest(fr))
}

// ListRequests GET /users/:user_id/friend-requests，仅本人可见
func (h *FriendHandler) ListRequests(c *gin.Context) {
	actingID, ok := currentUserID(c)
	if !ok {
		return
	}
	userID, ok := paramID(c, "user_id")
	if !ok {
		return
	}
	if err := guard.OwnershipCheck(actingID, userID); err != nil {
		respondError(c, err)
		return
	}

	reqs, err := h.service.ListPendingRequests(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, response.FilterFriendRequests(reqs))
}

// AcceptRequest POST /users/:user_id/friend-requests/:request_id/accept
func (h *FriendHandler) AcceptRequest(c *gin.Context) {
	h.decide(c, h.service.AcceptRequest)
}

// RefuseRequest POST /users/:user_id/friend-requests/:request_id/refuse
func (h *FriendHandler) RefuseRequest(c *gin.Context) {
	h.decide(c, h.service.RefuseRequest)
}

func (h *FriendHandler) decide(c *gin.Context, op func(ctx context.Context, actingID, requestID uint) (string, error)) {
	actingID, ok := currentUserID(c)
	if !ok {
		return
	}
	userID, ok := paramID(c, "user_id")
	if !ok {
		return
	}
	if err := guard.OwnershipCheck(actingID, userID); err != nil {
		respondError(c, err)
		return
	}
	requestID, ok := paramID(c, "request_id")
	if !ok {
		return
	}

	msg, err := op(c.Request.Context(), actingID, requestID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.SuccessWithMessage(c, msg, nil)
}

// ListFriends GET /users/:user_id/friends
func (h *FriendHandler) ListFriends(c *gin.Context) {
	userID, ok := paramID(c, "user_id")
	if !ok {
		return
	}
	friends, err := h.service.ListFriends(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, response.FilterUsers(friends))
}

// RemoveFriend DELETE /users/:user_id/friends/:friend_id
func (h *FriendHandler) RemoveFriend(c *gin.Context) {
	actingID, ok := currentUserID(c)
	if !ok {
		return
	}
	userID, ok := paramID(c, "user_id")
	if !ok {
		return
	}
	friendID, ok := paramID(c, "friend_id")
	if !ok {
		return
	}

	msg, err := h.service.RemoveFriend(c.Request.Context(), actingID, userID, friendID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.SuccessWithMessage(c, msg, nil)
}
