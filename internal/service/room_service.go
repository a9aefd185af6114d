package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"social-system/internal/guard"
	"social-system/internal/model"
	"social-system/internal/repository"
	"social-system/pkg/logger"

	"go.uber.org/zap"
)

// RoomService 私聊房间与消息
type RoomService struct {
	rooms    *repository.RoomRepository
	users    *repository.UserRepository
	notifier Notifier
}

// NewRoomService 创建RoomService实例
func NewRoomService(rooms *repository.RoomRepository, users *repository.UserRepository, notifier Notifier) *RoomService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &RoomService{rooms: rooms, users: users, notifier: notifier}
}

// CreateRoom 创建房间；两人之间已有房间时直接返回已有房间，created 为 false
func (s *RoomService) CreateRoom(ctx context.Context, initiatorID, receiverID uint) (room *model.Room, created bool, err error) {
	if initiatorID == receiverID {
		return nil, false, fmt.Errorf("cannot chat with yourself: %w", ErrInvalidArgument)
	}
	receiver, err := s.users.FindByID(ctx, receiverID)
	if err != nil {
		return nil, false, fmt.Errorf("find receiver: %w", err)
	}
	if receiver == nil {
		return nil, false, fmt.Errorf("user %d: %w", receiverID, ErrNotFound)
	}

	room, err = s.rooms.FindByPair(ctx, initiatorID, receiverID)
	if err != nil {
		return nil, false, fmt.Errorf("find room: %w", err)
	}
	if room != nil {
		return room, false, nil
	}

	room = &model.Room{InitiatorID: initiatorID, ReceiverID: receiverID}
	if err := s.rooms.Create(ctx, room); err != nil {
		return nil, false, fmt.Errorf("create room: %w", err)
	}
	return room, true, nil
}

// GetRoom 获取房间，仅成员可见
func (s *RoomService) GetRoom(ctx context.Context, actingID, roomID uint) (*model.Room, error) {
	room, err := s.rooms.FindByID(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("find room: %w", err)
	}
	if room == nil {
		return nil, fmt.Errorf("room %d: %w", roomID, ErrNotFound)
	}
	if err := guard.ParticipantCheck(actingID, room); err != nil {
		return nil, err
	}
	return room, nil
}

// ListMessages 获取房间消息（时间升序分页）
func (s *RoomService) ListMessages(ctx context.Context, actingID, roomID uint, limit, offset int) ([]*model.Message, error) {
	if _, err := s.GetRoom(ctx, actingID, roomID); err != nil {
		return nil, err
	}
	limit, offset = normalizePage(limit, offset)
	msgs, err := s.rooms.ListMessages(ctx, roomID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return msgs, nil
}

// MyRooms 获取用户参与的房间
func (s *RoomService) MyRooms(ctx context.Context, userID uint) ([]*model.Room, error) {
	rooms, err := s.rooms.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}

// DeleteRoom 删除房间及其消息，仅成员可操作
func (s *RoomService) DeleteRoom(ctx context.Context, actingID, roomID uint) error {
	if _, err := s.GetRoom(ctx, actingID, roomID); err != nil {
		return err
	}
	if err := s.rooms.Delete(ctx, roomID); err != nil {
		return fmt.Errorf("delete room: %w", err)
	}
	return nil
}

// SendMessage 发送消息并推送给房间另一位成员
func (s *RoomService) SendMessage(ctx context.Context, senderID, roomID uint, text string) (*model.Message, error) {
	text = strings.TrimSpace(text)
	if n := utf8.RuneCountInString(text); n == 0 || n > model.MaxMessageLength {
		return nil, fmt.Errorf("message must be 1-%d characters: %w", model.MaxMessageLength, ErrInvalidArgument)
	}

	room, err := s.GetRoom(ctx, senderID, roomID)
	if err != nil {
		return nil, err
	}

	msg := &model.Message{RoomID: roomID, SenderID: senderID, Text: text}
	if err := s.rooms.CreateMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}

	notify(s.notifier, room.Peer(senderID), EventChat, msg)
	logger.Debug("聊天消息已发送", zap.Uint("room_id", roomID), zap.Uint("sender_id", senderID), zap.Uint("message_id", msg.ID))
	return msg, nil
}
