package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"social-system/internal/guard"
	"social-system/internal/model"
	"social-system/internal/repository"
	"social-system/pkg/logger"
	"social-system/pkg/metrics"
	"social-system/pkg/redis"

	"go.uber.org/zap"
)

// FriendService 好友关系引擎
// 好友图的所有写操作都经由这里，每个操作先做权限校验，再在单个事务中完成读-校验-写。
type FriendService struct {
	store    repository.RelationStore
	notifier Notifier
	cacheTTL time.Duration
}

// NewFriendService 创建FriendService实例，notifier 为 nil 时不推送
func NewFriendService(store repository.RelationStore, notifier Notifier, cacheTTL time.Duration) *FriendService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &FriendService{store: store, notifier: notifier, cacheTTL: cacheTTL}
}

// CreateRequest 发送好友申请
func (s *FriendService) CreateRequest(ctx context.Context, senderID, receiverID uint) (req *model.FriendRequest, err error) {
	defer func(start time.Time) { metrics.ObserveFriendOperation(metrics.OpSendRequest, start, err) }(time.Now())

	if senderID == receiverID {
		return nil, ErrSelfRequest
	}

	var sender *model.User
	err = s.store.Transaction(ctx, func(tx repository.RelationStore) error {
		var err error
		sender, err = tx.FindIdentity(ctx, senderID)
		if err != nil {
			return fmt.Errorf("find sender: %w", err)
		}
		if sender == nil {
			return fmt.Errorf("user %d: %w", senderID, ErrNotFound)
		}
		receiver, err := tx.FindIdentity(ctx, receiverID)
		if err != nil {
			return fmt.Errorf("find receiver: %w", err)
		}
		if receiver == nil {
			return fmt.Errorf("user %d: %w", receiverID, ErrNotFound)
		}

		existing, err := tx.FindRequestByPair(ctx, senderID, receiverID)
		if err != nil {
			return fmt.Errorf("find request: %w", err)
		}
		if existing != nil {
			return ErrDuplicateRequest
		}
		reverse, err := tx.FindRequestByPair(ctx, receiverID, senderID)
		if err != nil {
			return fmt.Errorf("find reverse request: %w", err)
		}
		if reverse != nil {
			return ErrReciprocalPending
		}

		friends, err := tx.IsFriend(ctx, receiverID, senderID)
		if err != nil {
			return fmt.Errorf("check friendship: %w", err)
		}
		if friends {
			return ErrAlreadyFriends
		}

		req, err = tx.CreateRequest(ctx, senderID, receiverID)
		if errors.Is(err, repository.ErrPairConflict) {
			return ErrDuplicateRequest
		}
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	req.Sender = sender
	notify(s.notifier, receiverID, EventFriendRequest, req)
	logger.Info("好友申请已发送",
		zap.Uint("request_id", req.ID),
		zap.Uint("sender_id", senderID),
		zap.Uint("receiver_id", receiverID),
	)
	return req, nil
}

// AcceptRequest 接受好友申请，只有申请的接收者可以操作
func (s *FriendService) AcceptRequest(ctx context.Context, actingID, requestID uint) (msg string, err error) {
	defer func(start time.Time) { metrics.ObserveFriendOperation(metrics.OpAcceptRequest, start, err) }(time.Now())

	var req *model.FriendRequest
	err = s.store.Transaction(ctx, func(tx repository.RelationStore) error {
		var err error
		req, err = s.takeRequest(ctx, tx, actingID, requestID)
		if err != nil {
			return err
		}
		if err := tx.AddFriendEdge(ctx, req.SenderID, req.ReceiverID); err != nil {
			return fmt.Errorf("add friend edge: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	s.invalidate(req.SenderID, req.ReceiverID)
	notify(s.notifier, req.SenderID, EventFriendRequestAccepted, map[string]interface{}{
		"request_id": req.ID,
		"user_id":    req.ReceiverID,
	})
	logger.Info("好友申请已接受",
		zap.Uint("request_id", req.ID),
		zap.Uint("sender_id", req.SenderID),
		zap.Uint("receiver_id", req.ReceiverID),
	)

	return fmt.Sprintf("%s added to your friend list.", senderName(req)), nil
}

// RefuseRequest 拒绝好友申请
func (s *FriendService) RefuseRequest(ctx context.Context, actingID, requestID uint) (msg string, err error) {
	defer func(start time.Time) { metrics.ObserveFriendOperation(metrics.OpRefuseRequest, start, err) }(time.Now())

	var req *model.FriendRequest
	err = s.store.Transaction(ctx, func(tx repository.RelationStore) error {
		var err error
		req, err = s.takeRequest(ctx, tx, actingID, requestID)
		return err
	})
	if err != nil {
		return "", err
	}

	notify(s.notifier, req.SenderID, EventFriendRequestRefused, map[string]interface{}{
		"request_id": req.ID,
		"user_id":    req.ReceiverID,
	})
	logger.Info("好友申请已拒绝", zap.Uint("request_id", req.ID), zap.Uint("receiver_id", req.ReceiverID))

	return "Friend request was refused.", nil
}

// takeRequest 加锁读取申请、校验接收者并删除申请
// 删除影响行数为 0 说明并发的另一个操作已经处理了该申请。
func (s *FriendService) takeRequest(ctx context.Context, tx repository.RelationStore, actingID, requestID uint) (*model.FriendRequest, error) {
	req, err := tx.FindRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("find request: %w", err)
	}
	if req == nil {
		return nil, fmt.Errorf("friend request %d: %w", requestID, ErrNotFound)
	}
	if err := guard.ReceiverCheck(actingID, req); err != nil {
		return nil, err
	}

	deleted, err := tx.DeleteRequest(ctx, req.ID)
	if err != nil {
		return nil, fmt.Errorf("delete request: %w", err)
	}
	if !deleted {
		return nil, fmt.Errorf("friend request %d: %w", requestID, ErrNotFound)
	}
	return req, nil
}

// RemoveFriend 删除好友，actingID 必须是 targetUserID 本人
func (s *FriendService) RemoveFriend(ctx context.Context, actingID, targetUserID, friendID uint) (msg string, err error) {
	defer func(start time.Time) { metrics.ObserveFriendOperation(metrics.OpRemoveFriend, start, err) }(time.Now())

	if err := guard.OwnershipCheck(actingID, targetUserID); err != nil {
		return "", err
	}

	var friend *model.User
	err = s.store.Transaction(ctx, func(tx repository.RelationStore) error {
		var err error
		friend, err = tx.FindIdentity(ctx, friendID)
		if err != nil {
			return fmt.Errorf("find friend: %w", err)
		}
		if friend == nil {
			return fmt.Errorf("user %d: %w", friendID, ErrNotFound)
		}

		ok, err := tx.IsFriend(ctx, targetUserID, friendID)
		if err != nil {
			return fmt.Errorf("check friendship: %w", err)
		}
		if !ok {
			return ErrNotAFriend
		}

		if err := tx.RemoveFriendEdge(ctx, targetUserID, friendID); err != nil {
			return fmt.Errorf("remove friend edge: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	s.invalidate(targetUserID, friendID)
	notify(s.notifier, friendID, EventFriendRemoved, map[string]interface{}{"user_id": targetUserID})
	logger.Info("好友已删除", zap.Uint("user_id", targetUserID), zap.Uint("friend_id", friendID))

	return fmt.Sprintf("%s was deleted from friends list", friend.Username), nil
}

// ListFriends 获取用户的好友列表
func (s *FriendService) ListFriends(ctx context.Context, userID uint) ([]*model.User, error) {
	u, err := s.store.FindIdentity(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if u == nil {
		return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}

	friends, err := s.store.ListFriends(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list friends: %w", err)
	}
	return friends, nil
}

// ListPendingRequests 获取发给用户的待处理申请
func (s *FriendService) ListPendingRequests(ctx context.Context, userID uint) ([]*model.FriendRequest, error) {
	reqs, err := s.store.ListPendingRequests(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list pending requests: %w", err)
	}
	return reqs, nil
}

// FriendIDs 获取好友ID列表，优先读缓存，缓存不可用时回源数据库
func (s *FriendService) FriendIDs(ctx context.Context, userID uint) ([]uint, error) {
	if ids, hit, err := redis.GetCachedFriendIDs(userID); err == nil && hit {
		return ids, nil
	}

	ids, err := s.store.ListFriendIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list friend ids: %w", err)
	}
	_ = redis.CacheFriendIDs(userID, ids, s.cacheTTL)
	return ids, nil
}

func (s *FriendService) invalidate(userIDs ...uint) {
	if err := redis.InvalidateFriendIDs(userIDs...); err != nil && !errors.Is(err, redis.ErrNotInitialized) {
		logger.Warn("清除好友缓存失败", zap.Error(err))
	}
}

func senderName(req *model.FriendRequest) string {
	if req.Sender != nil {
		return req.Sender.Username
	}
	return fmt.Sprintf("user %d", req.SenderID)
}
