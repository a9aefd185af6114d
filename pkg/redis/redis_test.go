package redis

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMiniRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	UseClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = Close() })
	return mr
}

func TestNotInitialized(t *testing.T) {
	UseClient(nil)

	assert.False(t, Enabled())
	assert.ErrorIs(t, HealthCheck(), ErrNotInitialized)
	assert.ErrorIs(t, CacheFriendIDs(1, []uint{2}, time.Minute), ErrNotInitialized)
	_, _, err := GetCachedFriendIDs(1)
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.ErrorIs(t, InvalidateFriendIDs(1), ErrNotInitialized)
	assert.ErrorIs(t, AddOfflineNotice(1, []byte("x")), ErrNotInitialized)
	_, err = GetOnlineUsers()
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestFriendCache(t *testing.T) {
	mr := setupMiniRedis(t)

	ids, hit, err := GetCachedFriendIDs(1)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Nil(t, ids)

	require.NoError(t, CacheFriendIDs(1, []uint{2, 3}, time.Minute))
	ids, hit, err = GetCachedFriendIDs(1)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []uint{2, 3}, ids)
	assert.Equal(t, time.Minute, mr.TTL("social:friends:1"))

	// 空集合也会命中
	require.NoError(t, CacheFriendIDs(4, nil, 0))
	ids, hit, err = GetCachedFriendIDs(4)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Empty(t, ids)
	assert.Equal(t, DefaultFriendCacheTTL, mr.TTL("social:friends:4"))

	require.NoError(t, InvalidateFriendIDs(1, 4))
	_, hit, err = GetCachedFriendIDs(1)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.False(t, mr.Exists("social:friends:4"))
}

func TestOfflineNotices(t *testing.T) {
	setupMiniRedis(t)

	for _, n := range []string{"a", "b", "c"} {
		require.NoError(t, AddOfflineNotice(7, []byte(n)))
	}

	count, err := GetOfflineNoticeCount(7)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	notices, err := GetOfflineNotices(7, 0)
	require.NoError(t, err)
	require.Len(t, notices, 3)
	assert.Equal(t, "a", string(notices[0]))
	assert.Equal(t, "c", string(notices[2]))

	require.NoError(t, ClearOfflineNotices(7))
	count, err = GetOfflineNoticeCount(7)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestOfflineNoticesTrimmed(t *testing.T) {
	setupMiniRedis(t)

	for i := 0; i < MaxOfflineNotices+5; i++ {
		require.NoError(t, AddOfflineNotice(8, []byte{byte(i)}))
	}

	count, err := GetOfflineNoticeCount(8)
	require.NoError(t, err)
	assert.Equal(t, int64(MaxOfflineNotices), count)
}

func TestPresence(t *testing.T) {
	setupMiniRedis(t)

	require.NoError(t, SetUserPresence(1, "alice", "online"))
	require.NoError(t, SetUserPresence(2, "bob", "online"))

	online, err := IsUserOnline(1)
	require.NoError(t, err)
	assert.True(t, online)

	p, err := GetUserPresence(1)
	require.NoError(t, err)
	assert.Equal(t, "alice", p.Username)
	assert.True(t, p.Connected)

	ids, err := GetOnlineUsers()
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{1, 2}, ids)

	require.NoError(t, RefreshUserPresence(1))
	require.NoError(t, RemoveUserPresence(2))

	details, err := GetOnlineUsersWithDetails()
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, uint(1), details[0].UserID)

	assert.ErrorIs(t, RefreshUserPresence(2), ErrPresenceNotFound)
	_, err = GetUserPresence(2)
	assert.ErrorIs(t, err, ErrPresenceNotFound)

	online, err = IsUserOnline(2)
	require.NoError(t, err)
	assert.False(t, online)
}

func TestPresenceOffline(t *testing.T) {
	setupMiniRedis(t)

	require.NoError(t, SetUserPresence(3, "carol", "online"))
	require.NoError(t, SetUserPresence(3, "carol", "offline"))

	online, err := IsUserOnline(3)
	require.NoError(t, err)
	assert.False(t, online)

	ids, err := GetOnlineUsers()
	require.NoError(t, err)
	assert.Empty(t, ids)

	p, err := GetUserPresence(3)
	require.NoError(t, err)
	assert.Equal(t, "offline", p.Status)
	assert.False(t, p.Connected)
}

func TestCleanExpiredPresence(t *testing.T) {
	mr := setupMiniRedis(t)

	require.NoError(t, SetUserPresence(1, "alice", "online"))
	stale := time.Now().Add(-2 * PresenceTTL).Unix()
	_, err := mr.ZAdd(OnlineUsersKey, float64(stale), "9")
	require.NoError(t, err)

	ids, err := GetOnlineUsers()
	require.NoError(t, err)
	assert.Equal(t, []uint{1}, ids)

	n, err := CleanExpiredPresence()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	members, err := mr.ZMembers(OnlineUsersKey)
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, members)
}
