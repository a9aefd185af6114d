// Package limiter 按用户的令牌桶限流（好友申请、聊天消息）。
package limiter

import (
	"sync"
	"time"

	"social-system/config"
	"social-system/pkg/jwt"
	"social-system/pkg/response"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// 空闲超过该时长的用户桶会被清理
const idleTTL = 10 * time.Minute

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter 每个用户一个令牌桶
type Limiter struct {
	mu      sync.Mutex
	users   map[uint]*entry
	limit   rate.Limit
	burst   int
	lastGC  time.Time
	nowFunc func() time.Time
}

// New 创建限流器，rps<=0 表示不限流
func New(cfg config.RateLimitConfig) *Limiter {
	limit := rate.Limit(cfg.RequestsPerSecond)
	if cfg.RequestsPerSecond <= 0 {
		limit = rate.Inf
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{
		users:   make(map[uint]*entry),
		limit:   limit,
		burst:   burst,
		nowFunc: time.Now,
	}
}

// Allow 判断用户本次请求是否放行
func (l *Limiter) Allow(userID uint) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.nowFunc()
	if now.Sub(l.lastGC) > idleTTL {
		for id, e := range l.users {
			if now.Sub(e.lastSeen) > idleTTL {
				delete(l.users, id)
			}
		}
		l.lastGC = now
	}

	e, ok := l.users[userID]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.users[userID] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

// Middleware gin 中间件，需放在 JWT 认证之后
func (l *Limiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(jwt.GetUserID(c)) {
			response.TooManyRequests(c, "请求过于频繁，请稍后再试")
			c.Abort()
			return
		}
		c.Next()
	}
}
