package redis

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// PresenceData 在线状态数据
type PresenceData struct {
	UserID    uint      `json:"user_id"`
	Username  string    `json:"username"`
	Status    string    `json:"status"` // online/offline
	LastSeen  time.Time `json:"last_seen"`
	Connected bool      `json:"connected"`
}

// 在线状态相关常量
// 每个用户一个 hash；在线集合为 zset，score 为最近心跳时间。
const (
	PresenceKeyPrefix = "social:presence:user:"
	OnlineUsersKey    = "social:online:users"
	PresenceTTL       = 2 * time.Minute // 心跳周期的数倍
)

// ErrPresenceNotFound 没有该用户的在线状态记录
var ErrPresenceNotFound = errors.New("presence not found")

func presenceKey(userID uint) string {
	return PresenceKeyPrefix + strconv.FormatUint(uint64(userID), 10)
}

// SetUserPresence 写入用户在线状态
func SetUserPresence(userID uint, username, status string) error {
	if client == nil {
		return ErrNotInitialized
	}
	ctx, cancel := opContext()
	defer cancel()

	now := time.Now()
	key := presenceKey(userID)
	pipe := client.TxPipeline()
	pipe.HSet(ctx, key, "username", username, "status", status, "last_seen", now.Unix())
	pipe.Expire(ctx, key, PresenceTTL)
	if status == "online" {
		pipe.ZAdd(ctx, OnlineUsersKey, redis.Z{Score: float64(now.Unix()), Member: userID})
	} else {
		pipe.ZRem(ctx, OnlineUsersKey, userID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("设置用户在线状态失败: %w", err)
	}
	return nil
}

// GetUserPresence 获取用户在线状态，没有记录时返回 ErrPresenceNotFound
func GetUserPresence(userID uint) (*PresenceData, error) {
	if client == nil {
		return nil, ErrNotInitialized
	}
	ctx, cancel := opContext()
	defer cancel()

	fields, err := client.HGetAll(ctx, presenceKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("获取用户在线状态失败: %w", err)
	}
	return parsePresence(userID, fields)
}

func parsePresence(userID uint, fields map[string]string) (*PresenceData, error) {
	if len(fields) == 0 {
		return nil, ErrPresenceNotFound
	}
	ts, _ := strconv.ParseInt(fields["last_seen"], 10, 64)
	return &PresenceData{
		UserID:    userID,
		Username:  fields["username"],
		Status:    fields["status"],
		LastSeen:  time.Unix(ts, 0),
		Connected: fields["status"] == "online",
	}, nil
}

// IsUserOnline 检查用户是否在线
func IsUserOnline(userID uint) (bool, error) {
	if client == nil {
		return false, ErrNotInitialized
	}
	ctx, cancel := opContext()
	defer cancel()

	status, err := client.HGet(ctx, presenceKey(userID), "status").Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("检查用户在线状态失败: %w", err)
	}
	return status == "online", nil
}

// GetOnlineUsers 获取 PresenceTTL 内有心跳的在线用户ID
func GetOnlineUsers() ([]uint, error) {
	if client == nil {
		return nil, ErrNotInitialized
	}
	ctx, cancel := opContext()
	defer cancel()

	since := time.Now().Add(-PresenceTTL).Unix()
	members, err := client.ZRangeByScore(ctx, OnlineUsersKey, &redis.ZRangeBy{
		Min: strconv.FormatInt(since, 10),
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("获取在线用户列表失败: %w", err)
	}

	userIDs := make([]uint, 0, len(members))
	for _, m := range members {
		if id, err := strconv.ParseUint(m, 10, 64); err == nil {
			userIDs = append(userIDs, uint(id))
		}
	}
	return userIDs, nil
}

// GetOnlineUsersWithDetails 获取在线用户详细信息
func GetOnlineUsersWithDetails() ([]PresenceData, error) {
	userIDs, err := GetOnlineUsers()
	if err != nil || len(userIDs) == 0 {
		return []PresenceData{}, err
	}
	ctx, cancel := opContext()
	defer cancel()

	pipe := client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(userIDs))
	for i, id := range userIDs {
		cmds[i] = pipe.HGetAll(ctx, presenceKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("获取在线用户详情失败: %w", err)
	}

	presences := make([]PresenceData, 0, len(userIDs))
	for i, cmd := range cmds {
		p, err := parsePresence(userIDs[i], cmd.Val())
		if err != nil {
			continue // hash 已过期，等待 CleanExpiredPresence 清理
		}
		presences = append(presences, *p)
	}
	return presences, nil
}

// RefreshUserPresence 心跳：延长TTL并更新最近在线时间
func RefreshUserPresence(userID uint) error {
	if client == nil {
		return ErrNotInitialized
	}
	ctx, cancel := opContext()
	defer cancel()

	key := presenceKey(userID)
	n, err := client.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("检查用户状态失败: %w", err)
	}
	if n == 0 {
		return ErrPresenceNotFound
	}

	now := time.Now()
	pipe := client.TxPipeline()
	pipe.HSet(ctx, key, "last_seen", now.Unix())
	pipe.Expire(ctx, key, PresenceTTL)
	pipe.ZAddXX(ctx, OnlineUsersKey, redis.Z{Score: float64(now.Unix()), Member: userID})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("刷新用户在线状态失败: %w", err)
	}
	return nil
}

// RemoveUserPresence 移除用户在线状态
func RemoveUserPresence(userID uint) error {
	if client == nil {
		return ErrNotInitialized
	}
	ctx, cancel := opContext()
	defer cancel()

	pipe := client.TxPipeline()
	pipe.Del(ctx, presenceKey(userID))
	pipe.ZRem(ctx, OnlineUsersKey, userID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("删除用户在线状态失败: %w", err)
	}
	return nil
}

// CleanExpiredPresence 从在线集合中移除超过 PresenceTTL 没有心跳的用户，返回移除数量
func CleanExpiredPresence() (int64, error) {
	if client == nil {
		return 0, ErrNotInitialized
	}
	ctx, cancel := opContext()
	defer cancel()

	before := time.Now().Add(-PresenceTTL).Unix()
	n, err := client.ZRemRangeByScore(ctx, OnlineUsersKey, "-inf", "("+strconv.FormatInt(before, 10)).Result()
	if err != nil {
		return 0, fmt.Errorf("清理过期在线状态失败: %w", err)
	}
	return n, nil
}
