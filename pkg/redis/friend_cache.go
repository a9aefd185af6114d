package redis

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// 好友缓存相关常量
const (
	FriendsKeyPrefix      = "social:friends:" // 好友ID集合key前缀
	DefaultFriendCacheTTL = 10 * time.Minute
)

func friendsKey(userID uint) string {
	return FriendsKeyPrefix + strconv.FormatUint(uint64(userID), 10)
}

// CacheFriendIDs 缓存用户的好友ID列表
// 空列表同样缓存，避免没有好友的用户每次都回源数据库。
func CacheFriendIDs(userID uint, ids []uint, ttl time.Duration) error {
	if client == nil {
		return ErrNotInitialized
	}
	if ttl <= 0 {
		ttl = DefaultFriendCacheTTL
	}
	if ids == nil {
		ids = []uint{}
	}

	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("序列化好友列表失败: %w", err)
	}

	ctx, cancel := opContext()
	defer cancel()
	if err := client.Set(ctx, friendsKey(userID), data, ttl).Err(); err != nil {
		return fmt.Errorf("缓存好友列表失败: %w", err)
	}
	return nil
}

// GetCachedFriendIDs 读取缓存的好友ID列表，第二个返回值表示是否命中
func GetCachedFriendIDs(userID uint) ([]uint, bool, error) {
	if client == nil {
		return nil, false, ErrNotInitialized
	}
	ctx, cancel := opContext()
	defer cancel()

	data, err := client.Get(ctx, friendsKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var ids []uint
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, false, fmt.Errorf("反序列化好友列表失败: %w", err)
	}
	return ids, true, nil
}

// InvalidateFriendIDs 好友关系变化后删除相关用户的缓存
func InvalidateFriendIDs(userIDs ...uint) error {
	if len(userIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, friendsKey(id))
	}
	return del(keys...)
}
