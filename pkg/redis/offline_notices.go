package redis

import (
	"fmt"
	"time"
)

// 离线通知相关常量
const (
	OfflineNoticesKeyPrefix = "social:offline:"   // 离线通知key前缀
	OfflineNoticesTTL       = 7 * 24 * time.Hour // 7天过期
	MaxOfflineNotices       = 100                // 每个用户最多保存的离线通知数
)

func offlineKey(userID uint) string {
	return fmt.Sprintf("%s%d", OfflineNoticesKeyPrefix, userID)
}

// AddOfflineNotice 为不在线的用户保存一条通知（已编码的JSON帧）
func AddOfflineNotice(userID uint, payload []byte) error {
	if client == nil {
		return ErrNotInitialized
	}

	ctx, cancel := opContext()
	defer cancel()

	key := offlineKey(userID)

	// LPUSH 最新的在前，LTRIM 限制数量
	pipe := client.TxPipeline()
	pipe.LPush(ctx, key, payload)
	pipe.LTrim(ctx, key, 0, MaxOfflineNotices-1)
	pipe.Expire(ctx, key, OfflineNoticesTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("添加离线通知失败: %w", err)
	}

	return nil
}

// GetOfflineNotices 获取用户的离线通知，按产生时间从早到晚排列
func GetOfflineNotices(userID uint, limit int) ([][]byte, error) {
	if client == nil {
		return nil, ErrNotInitialized
	}
	if limit <= 0 || limit > MaxOfflineNotices {
		limit = MaxOfflineNotices
	}
	ctx, cancel := opContext()
	defer cancel()

	results, err := client.LRange(ctx, offlineKey(userID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("获取离线通知失败: %w", err)
	}

	notices := make([][]byte, len(results))
	for i, r := range results {
		notices[len(results)-1-i] = []byte(r)
	}
	return notices, nil
}

// ClearOfflineNotices 清空用户的离线通知
func ClearOfflineNotices(userID uint) error {
	if err := del(offlineKey(userID)); err != nil {
		return fmt.Errorf("清空离线通知失败: %w", err)
	}
	return nil
}

// GetOfflineNoticeCount 获取用户离线通知数量
func GetOfflineNoticeCount(userID uint) (int64, error) {
	if client == nil {
		return 0, ErrNotInitialized
	}
	ctx, cancel := opContext()
	defer cancel()

	count, err := client.LLen(ctx, offlineKey(userID)).Result()
	if err != nil {
		return 0, fmt.Errorf("获取离线通知数量失败: %w", err)
	}
	return count, nil
}
