package response

import (
	"errors"
	"net/http"

	"github.com/AnggaPuspa/RestApiBatika/internal/service"

	"github.com/gin-gonic/gin"
)

// ==================== 统一响应信封 ====================

// Envelope 统一响应结构
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// OK 200 成功响应
func OK(ctx *gin.Context, message string, data interface{}) {
	ctx.JSON(http.StatusOK, Envelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Created 201 创建成功响应
func Created(ctx *gin.Context, message string, data interface{}) {
	ctx.JSON(http.StatusCreated, Envelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Fail 按指定状态码返回失败响应
func Fail(ctx *gin.Context, status int, err string) {
	ctx.JSON(status, Envelope{
		Success: false,
		Error:   err,
	})
}

// BadRequest 400 参数错误
func BadRequest(ctx *gin.Context, err string) {
	Fail(ctx, http.StatusBadRequest, err)
}

// Unauthorized 401 未认证
func Unauthorized(ctx *gin.Context, err string) {
	Fail(ctx, http.StatusUnauthorized, err)
}

// FromError 按业务错误类型映射 HTTP 状态码
func FromError(ctx *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		status = http.StatusConflict
	}
	Fail(ctx, status, err.Error())
}
