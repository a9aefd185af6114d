package handler

import (
	"errors"
	"strconv"

	"social-system/internal/service"
	"social-system/pkg/jwt"
	"social-system/pkg/logger"
	"social-system/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError 将业务错误映射为统一响应
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrForbidden):
		response.Forbidden(c, service.ErrForbidden.Error())
	case errors.Is(err, service.ErrNotAFriend):
		response.Forbidden(c, service.ErrNotAFriend.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Unauthorized(c, err.Error())
	case errors.Is(err, service.ErrEmailTaken), errors.Is(err, service.ErrUsernameTaken):
		response.Conflict(c, err.Error())
	case errors.Is(err, service.ErrDuplicateRequest),
		errors.Is(err, service.ErrReciprocalPending),
		errors.Is(err, service.ErrAlreadyFriends),
		errors.Is(err, service.ErrSelfRequest),
		errors.Is(err, service.ErrInvalidArgument):
		response.BadRequest(c, err.Error())
	default:
		logger.Error("请求处理失败",
			zap.Error(err),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", logger.GetRequestID(c)),
		)
		response.InternalError(c, "服务器内部错误")
	}
}

// currentUserID 认证中间件写入的用户ID，缺失时直接返回401
func currentUserID(c *gin.Context) (uint, bool) {
	id := jwt.GetUserID(c)
	if id == 0 {
		response.Unauthorized(c, "用户未认证")
		return 0, false
	}
	return id, true
}

// paramID 解析路径中的ID参数
func paramID(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		response.BadRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(v), true
}

// pageParams 解析 ?limit=&offset=
func pageParams(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.Query("limit"))
	offset, _ = strconv.Atoi(c.Query("offset"))
	return limit, offset
}
