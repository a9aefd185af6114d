package repository

import (
	"context"
	"errors"

	"social-system/internal/model"

	"gorm.io/gorm"
)

// RoomRepository 聊天房间与消息数据仓储
type RoomRepository struct {
	db *gorm.DB
}

// NewRoomRepository 创建RoomRepository实例
func NewRoomRepository(db *gorm.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// Create 创建房间
func (r *RoomRepository) Create(ctx context.Context, room *model.Room) error {
	return r.db.WithContext(ctx).Create(room).Error
}

// FindByID 获取房间，不存在时返回 (nil, nil)
func (r *RoomRepository) FindByID(ctx context.Context, id uint) (*model.Room, error) {
	var room model.Room
	err := r.db.WithContext(ctx).First(&room, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// FindByPair 查找两个用户之间的房间（不区分发起方），不存在时返回 (nil, nil)
func (r *RoomRepository) FindByPair(ctx context.Context, a, b uint) (*model.Room, error) {
	var room model.Room
	err := r.db.WithContext(ctx).
		Where("(initiator_id = ? AND receiver_id = ?) OR (initiator_id = ? AND receiver_id = ?)", a, b, b, a).
		First(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// ListByUser 获取用户参与的全部房间
func (r *RoomRepository) ListByUser(ctx context.Context, userID uint) ([]*model.Room, error) {
	var rooms []*model.Room
	err := r.db.WithContext(ctx).
		Where("initiator_id = ? OR receiver_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&rooms).Error
	return rooms, err
}

// Delete 在一个事务中删除房间及其消息
func (r *RoomRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("room_id = ?", id).Delete(&model.Message{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Room{}, id).Error
	})
}

// CreateMessage 保存消息
func (r *RoomRepository) CreateMessage(ctx context.Context, message *model.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

// ListMessages 获取房间消息，按时间升序分页
func (r *RoomRepository) ListMessages(ctx context.Context, roomID uint, limit, offset int) ([]*model.Message, error) {
	var messages []*model.Message
	err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("created_at ASC").
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error
	return messages, err
}
