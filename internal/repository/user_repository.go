package repository

import (
	"context"
	"errors"
	"time"

	"social-system/internal/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	orm *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{orm: db}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return r.orm.WithContext(ctx).Create(user).Error
}

// FindByID 记录不存在时返回 (nil, nil)
func (r *UserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var u model.User
	err := r.orm.WithContext(ctx).First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByEmail 记录不存在时返回 (nil, nil)
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := r.orm.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByUsernameOrEmail(ctx context.Context, identifier string) (*model.User, error) {
	var u model.User
	if err := r.orm.WithContext(ctx).Where("username = ? OR email = ?", identifier, identifier).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// ExistsUsername 用户名是否已被其他用户占用
func (r *UserRepository) ExistsUsername(ctx context.Context, username string, excludeID uint) (bool, error) {
	var count int64
	err := r.orm.WithContext(ctx).Model(&model.User{}).
		Where("username = ? AND id <> ?", username, excludeID).
		Count(&count).Error
	return count > 0, err
}

// UpdateStatus 更新在线状态与最近在线时间
func (r *UserRepository) UpdateStatus(ctx context.Context, id uint, status string) error {
	return r.orm.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "last_seen": time.Now()}).Error
}

// UpdateProfile 更新资料字段（用户名、头像）
func (r *UserRepository) UpdateProfile(ctx context.Context, id uint, username, avatar string) error {
	return r.orm.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"username": username, "avatar": avatar}).Error
}

// UpdatePassword 更新密码哈希
func (r *UserRepository) UpdatePassword(ctx context.Context, id uint, hash string) error {
	return r.orm.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Update("password_hash", hash).Error
}

// List 获取全部用户
func (r *UserRepository) List(ctx context.Context) ([]*model.User, error) {
	var users []*model.User
	err := r.orm.WithContext(ctx).Order("id ASC").Find(&users).Error
	return users, err
}
