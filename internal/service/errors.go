package service

import (
	"errors"

	"social-system/internal/guard"
)

// 业务错误，调用方使用 errors.Is 判断
var (
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = guard.ErrForbidden
	ErrDuplicateRequest  = errors.New("request has sent already")
	ErrReciprocalPending = errors.New("the other user has already sent you a request")
	ErrAlreadyFriends    = errors.New("the user is already in your friend list")
	ErrNotAFriend        = errors.New("the user is not in your friend list")
	ErrSelfRequest       = errors.New("you cannot send a friend request to yourself")

	ErrInvalidArgument    = errors.New("invalid argument")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrUsernameTaken      = errors.New("username is already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
