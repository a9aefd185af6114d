package service

import (
	"context"
	"testing"
	"time"

	"social-system/config"
	"social-system/internal/repository"
	"social-system/internal/testutil"
	"social-system/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserService(t *testing.T) (*UserService, *FriendService) {
	t.Helper()
	gdb := testutil.NewDB(t)
	friends := NewFriendService(repository.NewFriendRepository(gdb), nil, time.Minute)
	jwtSvc := jwt.NewJWTService(config.JWTConfig{Secret: "test", ExpireTime: time.Hour, Issuer: "test"})
	return NewUserService(repository.NewUserRepository(gdb), friends, jwtSvc), friends
}

func TestRegister(t *testing.T) {
	s, _ := newUserService(t)
	ctx := context.Background()

	u, token, err := s.Register(ctx, "alice@example.com", "secret1", "secret1", "")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "alice", u.Username, "用户名默认取邮箱前缀")
	assert.NotEqual(t, "secret1", u.PasswordHash)
	assert.Equal(t, "offline", u.Status)

	_, _, err = s.Register(ctx, "alice@example.com", "secret1", "secret1", "other")
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, _, err = s.Register(ctx, "alice@other.com", "secret1", "secret1", "")
	assert.ErrorIs(t, err, ErrUsernameTaken)

	u, _, err = s.Register(ctx, "bob@example.com", "secret1", "secret1", "bobby")
	require.NoError(t, err)
	assert.Equal(t, "bobby", u.Username)
}

func TestRegisterValidation(t *testing.T) {
	s, _ := newUserService(t)
	ctx := context.Background()

	cases := []struct {
		name, email, pw, confirm string
	}{
		{"no at", "alice.example.com", "secret1", "secret1"},
		{"empty local part", "@example.com", "secret1", "secret1"},
		{"short password", "a@example.com", "12345", "12345"},
		{"mismatch", "a@example.com", "secret1", "secret2"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := s.Register(ctx, tc.email, tc.pw, tc.confirm, "")
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestLogin(t *testing.T) {
	s, _ := newUserService(t)
	ctx := context.Background()

	_, _, err := s.Register(ctx, "alice@example.com", "secret1", "secret1", "")
	require.NoError(t, err)

	u, token, err := s.Login(ctx, "alice", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.NotEmpty(t, token)

	_, _, err = s.Login(ctx, "alice@example.com", "secret1")
	require.NoError(t, err)

	_, _, err = s.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = s.Login(ctx, "nobody", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = s.Login(ctx, "", "")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestStatusTransitions(t *testing.T) {
	s, _ := newUserService(t)
	ctx := context.Background()

	u, _, err := s.Register(ctx, "alice@example.com", "secret1", "secret1", "")
	require.NoError(t, err)

	s.SetOnline(ctx, u.ID, u.Username)
	p, err := s.GetProfile(ctx, 0, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "online", p.User.Status)

	require.NoError(t, s.Logout(ctx, u.ID))
	p, err = s.GetProfile(ctx, 0, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "offline", p.User.Status)
}

func TestGetProfileRequestsOnlyForOwner(t *testing.T) {
	s, friends := newUserService(t)
	ctx := context.Background()

	alice, _, err := s.Register(ctx, "alice@example.com", "secret1", "secret1", "")
	require.NoError(t, err)
	bob, _, err := s.Register(ctx, "bob@example.com", "secret1", "secret1", "")
	require.NoError(t, err)

	_, err = friends.CreateRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	own, err := s.GetProfile(ctx, bob.ID, bob.ID)
	require.NoError(t, err)
	assert.Len(t, own.Requests, 1)

	other, err := s.GetProfile(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Nil(t, other.Requests)
	assert.Empty(t, other.Friends)

	_, err = s.GetProfile(ctx, alice.ID, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateProfile(t *testing.T) {
	s, _ := newUserService(t)
	ctx := context.Background()

	alice, _, err := s.Register(ctx, "alice@example.com", "secret1", "secret1", "")
	require.NoError(t, err)
	bob, _, err := s.Register(ctx, "bob@example.com", "secret1", "secret1", "")
	require.NoError(t, err)

	_, err = s.UpdateProfile(ctx, bob.ID, alice.ID, "mallory", "")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = s.UpdateProfile(ctx, alice.ID, alice.ID, "bob", "")
	assert.ErrorIs(t, err, ErrUsernameTaken)

	u, err := s.UpdateProfile(ctx, alice.ID, alice.ID, "alicia", "https://img.example.com/a.png")
	require.NoError(t, err)
	assert.Equal(t, "alicia", u.Username)
	assert.Equal(t, "https://img.example.com/a.png", u.Avatar)

	// 空字段保持原值
	u, err = s.UpdateProfile(ctx, alice.ID, alice.ID, "", "")
	require.NoError(t, err)
	assert.Equal(t, "alicia", u.Username)

	users, err := s.ListProfiles(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alicia", users[0].Username)
}
