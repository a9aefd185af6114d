package service

import (
	"context"
	"strings"
	"testing"

	"social-system/internal/model"
	"social-system/internal/repository"
	"social-system/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomLifecycle(t *testing.T) {
	gdb := testutil.NewDB(t)
	n := newRecordingNotifier()
	svc := NewRoomService(repository.NewRoomRepository(gdb), repository.NewUserRepository(gdb), n)
	ctx := context.Background()

	alice := testutil.CreateUser(t, gdb, "alice")
	bob := testutil.CreateUser(t, gdb, "bob")
	carol := testutil.CreateUser(t, gdb, "carol")

	_, _, err := svc.CreateRoom(ctx, alice.ID, alice.ID)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, _, err = svc.CreateRoom(ctx, alice.ID, 999)
	assert.ErrorIs(t, err, ErrNotFound)

	room, created, err := svc.CreateRoom(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, created)

	// 反方向创建返回同一个房间
	again, created, err := svc.CreateRoom(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, room.ID, again.ID)

	_, err = svc.GetRoom(ctx, carol.ID, room.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.SendMessage(ctx, carol.ID, room.ID, "hi")
	assert.ErrorIs(t, err, ErrForbidden)

	msg, err := svc.SendMessage(ctx, alice.ID, room.ID, " hi bob ")
	require.NoError(t, err)
	assert.Equal(t, "hi bob", msg.Text)
	assert.Equal(t, []string{EventChat}, n.types(bob.ID))
	assert.Empty(t, n.types(alice.ID))

	_, err = svc.SendMessage(ctx, bob.ID, room.ID, "hello")
	require.NoError(t, err)

	msgs, err := svc.ListMessages(ctx, bob.ID, room.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "hi bob", msgs[0].Text)
	assert.Equal(t, "hello", msgs[1].Text)

	rooms, err := svc.MyRooms(ctx, bob.ID)
	require.NoError(t, err)
	assert.Len(t, rooms, 1)
	rooms, err = svc.MyRooms(ctx, carol.ID)
	require.NoError(t, err)
	assert.Empty(t, rooms)

	assert.ErrorIs(t, svc.DeleteRoom(ctx, carol.ID, room.ID), ErrForbidden)
	require.NoError(t, svc.DeleteRoom(ctx, bob.ID, room.ID))
	_, err = svc.GetRoom(ctx, alice.ID, room.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, testutil.CountRows(t, gdb, &model.Message{}, "room_id = ?", room.ID))
}

func TestSendMessageLength(t *testing.T) {
	gdb := testutil.NewDB(t)
	svc := NewRoomService(repository.NewRoomRepository(gdb), repository.NewUserRepository(gdb), nil)
	ctx := context.Background()

	alice := testutil.CreateUser(t, gdb, "alice")
	bob := testutil.CreateUser(t, gdb, "bob")
	room, _, err := svc.CreateRoom(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	_, err = svc.SendMessage(ctx, alice.ID, room.ID, "   ")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = svc.SendMessage(ctx, alice.ID, room.ID, strings.Repeat("x", model.MaxMessageLength+1))
	assert.ErrorIs(t, err, ErrInvalidArgument)

	// 按字符计数
	_, err = svc.SendMessage(ctx, alice.ID, room.ID, strings.Repeat("好", model.MaxMessageLength))
	assert.NoError(t, err)
}
