package jwt

import (
	"errors"
	"strings"

	"social-system/pkg/logger"
	"social-system/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// gin.Context 中的键
const (
	ContextUserIDKey   = "user_id" // uint
	ContextUsernameKey = "username"
	ContextClaimsKey   = "jwt_claims"
)

var errMalformedHeader = errors.New("malformed authorization header")

// bearerToken 取出 "Authorization: Bearer <token>" 中的 token
func bearerToken(header string) (string, error) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", errMalformedHeader
	}
	if token = strings.TrimSpace(token); token == "" {
		return "", errMalformedHeader
	}
	return token, nil
}

// AuthMiddleware 校验 Bearer token，并把用户ID、用户名和声明写入上下文
func (s *JWTService) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortUnauthorized(c, "缺少Authorization请求头")
			return
		}
		token, err := bearerToken(header)
		if err != nil {
			abortUnauthorized(c, "Authorization格式错误，应为Bearer <token>")
			return
		}

		claims, err := s.ValidateToken(token)
		if err == nil {
			_, err = claims.UserID()
		}
		if err != nil {
			logger.Warn("JWT验证失败",
				zap.Error(err),
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()),
			)
			if errors.Is(err, ErrTokenExpired) {
				abortUnauthorized(c, "token已过期")
			} else {
				abortUnauthorized(c, "token无效")
			}
			return
		}

		userID, _ := claims.UserID()
		c.Set(ContextUserIDKey, userID)
		c.Set(ContextUsernameKey, claims.Username())
		c.Set(ContextClaimsKey, claims)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, msg string) {
	response.Unauthorized(c, msg)
	c.Abort()
}

// GetUserID 当前用户ID，未认证时为 0
func GetUserID(c *gin.Context) uint {
	id, _ := c.Value(ContextUserIDKey).(uint)
	return id
}

func GetUsername(c *gin.Context) string {
	return c.GetString(ContextUsernameKey)
}

func GetClaims(c *gin.Context) *CustomClaims {
	claims, _ := c.Value(ContextClaimsKey).(*CustomClaims)
	return claims
}
