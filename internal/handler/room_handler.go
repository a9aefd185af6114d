package handler

import (
	"social-system/internal/service"
	"social-system/pkg/response"

	"github.com/gin-gonic/gin"
)

// RoomHandler 私聊房间与消息
type RoomHandler struct {
	service *service.RoomService
}

// NewRoomHandler 创建RoomHandler实例
func NewRoomHandler(s *service.RoomService) *RoomHandler {
	return &RoomHandler{service: s}
}

// Create POST /rooms，两人已有房间时返回已有房间
func (h *RoomHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
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

	room, created, err := h.service.CreateRoom(c.Request.Context(), userID, r.ReceiverID)
	if err != nil {
		respondError(c, err)
		return
	}
	msg := "房间已存在"
	if created {
		msg = "房间已创建"
	}
	response.SuccessWithMessage(c, msg, response.FilterRoom(room))
}

// MyRooms GET /rooms
func (h *RoomHandler) MyRooms(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	rooms, err := h.service.MyRooms(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]*response.RoomInfo, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, response.FilterRoom(r))
	}
	response.Success(c, out)
}

// Get GET /rooms/:room_id
func (h *RoomHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	roomID, ok := paramID(c, "room_id")
	if !ok {
		return
	}
	room, err := h.service.GetRoom(c.Request.Context(), userID, roomID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, response.FilterRoom(room))
}

// Delete DELETE /rooms/:room_id
func (h *RoomHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	roomID, ok := paramID(c, "room_id")
	if !ok {
		return
	}
	if err := h.service.DeleteRoom(c.Request.Context(), userID, roomID); err != nil {
		respondError(c, err)
		return
	}
	response.SuccessWithMessage(c, "房间已删除", nil)
}

// ListMessages GET /rooms/:room_id/messages?limit=&offset=
func (h *RoomHandler) ListMessages(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	roomID, ok := paramID(c, "room_id")
	if !ok {
		return
	}
	limit, offset := pageParams(c)

	msgs, err := h.service.ListMessages(c.Request.Context(), userID, roomID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, response.FilterMessages(msgs))
}

// SendMessage POST /rooms/:room_id/messages
func (h *RoomHandler) SendMessage(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	roomID, ok := paramID(c, "room_id")
	if !ok {
		return
	}
	type req struct {
		Text string `json:"text" binding:"required"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	msg, err := h.service.SendMessage(c.Request.Context(), userID, roomID, r.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	response.SuccessWithMessage(c, "消息发送成功", response.FilterMessageInfo(msg))
}
