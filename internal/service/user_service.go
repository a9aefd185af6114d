package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"social-system/internal/guard"
	"social-system/internal/model"
	"social-system/internal/repository"
	"social-system/pkg/jwt"
	"social-system/pkg/logger"
	"social-system/pkg/password"
	"social-system/pkg/redis"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type UserService struct {
	repo       *repository.UserRepository
	friends    *FriendService
	jwtService *jwt.JWTService
}

func NewUserService(repo *repository.UserRepository, friends *FriendService, jwtService *jwt.JWTService) *UserService {
	return &UserService{repo: repo, friends: friends, jwtService: jwtService}
}

// Profile 用户资料，Requests 仅在查看自己时填充
type Profile struct {
	User     *model.User
	Friends  []*model.User
	Requests []*model.FriendRequest
}

// Register 注册，username 为空时取邮箱 @ 之前的部分
func (s *UserService) Register(ctx context.Context, email, plainPassword, confirmPassword, username string) (*model.User, string, error) {
	email = strings.TrimSpace(email)
	username = strings.TrimSpace(username)

	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return nil, "", fmt.Errorf("email %q: %w", email, ErrInvalidArgument)
	}
	if err := password.Validate(plainPassword, confirmPassword); err != nil {
		return nil, "", fmt.Errorf("%v: %w", err, ErrInvalidArgument)
	}
	if username == "" {
		username = email[:at]
	}

	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("find user by email: %w", err)
	}
	if existing != nil {
		return nil, "", ErrEmailTaken
	}
	taken, err := s.repo.ExistsUsername(ctx, username, 0)
	if err != nil {
		return nil, "", fmt.Errorf("check username: %w", err)
	}
	if taken {
		return nil, "", ErrUsernameTaken
	}

	// 密码哈希
	hash, err := password.Hash(plainPassword)
	if err != nil {
		return nil, "", err
	}
	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Status:       "offline",
		LastSeen:     time.Now(),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	// 默认签发 token
	token, err := s.jwtService.GenerateUserToken(user.ID, user.Username)
	if err != nil {
		return nil, "", err
	}
	logger.Info("用户注册成功", zap.Uint("user_id", user.ID), zap.String("username", user.Username))
	return user, token, nil
}

// Login 登录，identifier 可以是用户名或邮箱
func (s *UserService) Login(ctx context.Context, identifier, plainPassword string) (*model.User, string, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || plainPassword == "" {
		return nil, "", fmt.Errorf("identifier and password are required: %w", ErrInvalidArgument)
	}
	u, err := s.repo.GetByUsernameOrEmail(ctx, identifier)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", fmt.Errorf("find user: %w", err)
	}
	if !password.Verify(plainPassword, u.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}
	if password.NeedsRehash(u.PasswordHash) {
		if hash, err := password.Hash(plainPassword); err == nil {
			if err := s.repo.UpdatePassword(ctx, u.ID, hash); err != nil {
				logger.Warn("更新密码哈希失败", zap.Uint("user_id", u.ID), zap.Error(err))
			}
		}
	}
	token, err := s.jwtService.GenerateUserToken(u.ID, u.Username)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// Logout 登出：状态置为 offline 并清除在线状态
func (s *UserService) Logout(ctx context.Context, userID uint) error {
	if err := s.repo.UpdateStatus(ctx, userID, "offline"); err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	_ = redis.RemoveUserPresence(userID)
	return nil
}

// SetOnline WebSocket 连接建立
func (s *UserService) SetOnline(ctx context.Context, userID uint, username string) {
	if err := s.repo.UpdateStatus(ctx, userID, "online"); err != nil {
		logger.Warn("更新在线状态失败", zap.Uint("user_id", userID), zap.Error(err))
	}
	_ = redis.SetUserPresence(userID, username, "online")
}

// SetOffline WebSocket 连接断开
func (s *UserService) SetOffline(ctx context.Context, userID uint, username string) {
	if err := s.repo.UpdateStatus(ctx, userID, "offline"); err != nil {
		logger.Warn("更新离线状态失败", zap.Uint("user_id", userID), zap.Error(err))
	}
	_ = redis.SetUserPresence(userID, username, "offline")
}

// Heartbeat 客户端心跳，延长在线状态TTL
func (s *UserService) Heartbeat(ctx context.Context, userID uint) {
	_ = redis.RefreshUserPresence(userID)
	_ = s.repo.UpdateStatus(ctx, userID, "online")
}

// GetProfile 获取用户资料
func (s *UserService) GetProfile(ctx context.Context, viewerID, userID uint) (*Profile, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if u == nil {
		return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}

	friends, err := s.friends.ListFriends(ctx, userID)
	if err != nil {
		return nil, err
	}
	p := &Profile{User: u, Friends: friends}

	if viewerID == userID {
		p.Requests, err = s.friends.ListPendingRequests(ctx, userID)
		if err != nil {
			return nil, err
		}
	}
	return p, nil
}

// UpdateProfile 修改自己的用户名与头像，空字段保持不变
func (s *UserService) UpdateProfile(ctx context.Context, actingID, userID uint, username, avatar string) (*model.User, error) {
	if err := guard.OwnershipCheck(actingID, userID); err != nil {
		return nil, err
	}

	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if u == nil {
		return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}

	if username = strings.TrimSpace(username); username != "" && username != u.Username {
		taken, err := s.repo.ExistsUsername(ctx, username, userID)
		if err != nil {
			return nil, fmt.Errorf("check username: %w", err)
		}
		if taken {
			return nil, ErrUsernameTaken
		}
		u.Username = username
	}
	if avatar = strings.TrimSpace(avatar); avatar != "" {
		u.Avatar = avatar
	}

	if err := s.repo.UpdateProfile(ctx, userID, u.Username, u.Avatar); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return u, nil
}

// ListProfiles 获取全部用户
func (s *UserService) ListProfiles(ctx context.Context) ([]*model.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}
