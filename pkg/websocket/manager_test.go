package websocket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerSendToOnlineUser(t *testing.T) {
	m := NewManager()
	c := NewClient(1, nil)
	m.AddClient(c)

	assert.True(t, m.IsOnline(1))
	assert.Equal(t, 1, m.OnlineCount())

	m.SendToUser(1, []byte(`{"type":"chat"}`))
	require.Len(t, c.Send, 1)
	assert.Equal(t, `{"type":"chat"}`, string(<-c.Send))
}

func TestManagerSendToOfflineUserWithoutRedis(t *testing.T) {
	m := NewManager()
	assert.NotPanics(t, func() { m.SendToUser(2, []byte("x")) })
	assert.False(t, m.IsOnline(2))
}

func TestManagerReplaceConnection(t *testing.T) {
	m := NewManager()
	old := NewClient(1, nil)
	m.AddClient(old)

	fresh := NewClient(1, nil)
	m.AddClient(fresh)

	// 旧连接的发送通道被关闭
	_, ok := <-old.Send
	assert.False(t, ok)

	// 旧连接退出时不能移除新连接
	m.RemoveClient(old)
	assert.True(t, m.IsOnline(1))

	m.RemoveClient(fresh)
	assert.False(t, m.IsOnline(1))
	_, ok = <-fresh.Send
	assert.False(t, ok)
}

func TestManagerDropsWhenBufferFull(t *testing.T) {
	m := NewManager()
	c := NewClient(1, nil)
	m.AddClient(c)

	for i := 0; i < cap(c.Send)+10; i++ {
		m.SendToUser(1, []byte("x"))
	}
	assert.Len(t, c.Send, cap(c.Send))
}
