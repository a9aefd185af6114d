package jwt

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"social-system/config"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// 允许的时钟偏差
const leeway = 30 * time.Second

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// JWTService 签发与校验用户访问令牌（HS256）
// Subject 为用户ID，username 为展示用的非敏感字段
type JWTService struct {
	secretKey   []byte
	issuer      string
	expireAfter time.Duration
	parser      *jwtv5.Parser
}

// CustomClaims 访问令牌载荷
type CustomClaims struct {
	Name string `json:"username,omitempty"`
	jwtv5.RegisteredClaims
}

// UserID 从 Subject 解析用户ID
func (c *CustomClaims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid subject %q: %w", c.Subject, ErrTokenInvalid)
	}
	return uint(id), nil
}

func (c *CustomClaims) Username() string { return c.Name }

// NewJWTService 创建 JWT 服务
func NewJWTService(cfg config.JWTConfig) *JWTService {
	return &JWTService{
		secretKey:   []byte(cfg.Secret),
		issuer:      cfg.Issuer,
		expireAfter: cfg.ExpireTime,
		parser: jwtv5.NewParser(
			jwtv5.WithValidMethods([]string{jwtv5.SigningMethodHS256.Alg()}),
			jwtv5.WithIssuer(cfg.Issuer),
			jwtv5.WithExpirationRequired(),
			jwtv5.WithLeeway(leeway),
		),
	}
}

// GenerateUserToken 为用户签发令牌
func (s *JWTService) GenerateUserToken(userID uint, username string) (string, error) {
	if userID == 0 {
		return "", errors.New("userID is required")
	}

	now := time.Now()
	claims := &CustomClaims{
		Name: username,
		RegisteredClaims: jwtv5.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwtv5.NewNumericDate(now),
			NotBefore: jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(now.Add(s.expireAfter)),
		},
	}

	signed, err := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims).SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("sign token failed: %w", err)
	}
	return signed, nil
}

// ValidateToken 校验并解析令牌，过期返回 ErrTokenExpired，其余失败返回 ErrTokenInvalid
func (s *JWTService) ValidateToken(tokenString string) (*CustomClaims, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("empty token: %w", ErrTokenInvalid)
	}

	claims := &CustomClaims{}
	_, err := s.parser.ParseWithClaims(tokenString, claims, func(*jwtv5.Token) (interface{}, error) {
		return s.secretKey, nil
	})
	switch {
	case errors.Is(err, jwtv5.ErrTokenExpired):
		return nil, ErrTokenExpired
	case err != nil:
		return nil, fmt.Errorf("%v: %w", err, ErrTokenInvalid)
	}
	return claims, nil
}
