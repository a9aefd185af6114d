package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MinLength 密码最小长度
const MinLength = 6

// bcrypt 只使用前 72 字节
const maxBytes = 72

var (
	ErrTooShort = fmt.Errorf("password must be at least %d characters", MinLength)
	ErrTooLong  = fmt.Errorf("password must be at most %d bytes", maxBytes)
	ErrMismatch = errors.New("passwords do not match")
)

var cost = bcrypt.DefaultCost

// SetCost 调整哈希强度，超出 bcrypt 允许范围时取边界值
func SetCost(c int) {
	cost = min(max(c, bcrypt.MinCost), bcrypt.MaxCost)
}

// Validate 校验注册时填写的密码与确认密码
func Validate(plain, confirm string) error {
	switch {
	case len([]rune(plain)) < MinLength:
		return ErrTooShort
	case len(plain) > maxBytes:
		return ErrTooLong
	case plain != confirm:
		return ErrMismatch
	}
	return nil
}

// Hash 生成密码哈希
func Hash(plain string) (string, error) {
	if len(plain) > maxBytes {
		return "", ErrTooLong
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// Verify 校验密码
func Verify(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// NeedsRehash 哈希强度低于当前设置时返回 true
func NeedsRehash(hash string) bool {
	c, err := bcrypt.Cost([]byte(hash))
	return err != nil || c < cost
}
