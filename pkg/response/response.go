package response

import (
	"net/http"

	"compliancehub/pkg/apperrors"
	"compliancehub/pkg/logger"
	"compliancehub/pkg/pagination"

	"github.com/gin-gonic/gin"
)

// Response 统一返回格式
type Response struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ========== 成功返回 ==========

// Success 成功返回
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    "OK",
		Message: "success",
		Data:    data,
	})
}

// Created 创建成功返回
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    "OK",
		Message: "created",
		Data:    data,
	})
}

// SuccessWithPage 分页成功返回
func SuccessWithPage(c *gin.Context, data interface{}, pageInfo *pagination.PageInfo) {
	c.JSON(http.StatusOK, gin.H{
		"code":      "OK",
		"message":   "success",
		"data":      data,
		"page_info": pageInfo,
	})
}

// ========== 错误返回 ==========

// Error 错误返回，状态码由调用方指定
func Error(c *gin.Context, status int, code, message string) {
	c.JSON(status, Response{
		Code:    code,
		Message: message,
	})
}

// FromError 业务错误到HTTP响应的唯一映射点。
// 加密类错误只回500通用消息，具体原因进服务端日志。
func FromError(c *gin.Context, err error) {
	appErr := apperrors.AsAppError(err)
	if appErr == nil {
		logger.GetLogger().WithError(err).Error("unclassified error reached HTTP boundary")
		Error(c, http.StatusInternalServerError, "INTERNAL", "internal server error")
		return
	}

	if appErr.Kind == apperrors.KindCrypto {
		logger.GetLogger().WithError(appErr).Error("crypto failure")
		Error(c, http.StatusInternalServerError, "INTERNAL", "internal server error")
		return
	}

	Error(c, appErr.HTTPStatus(), appErr.Code, appErr.Message)
}

// HiddenNotFound 资源隐匿返回：跨租户按ID查询与资源不存在不可区分
func HiddenNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"detail": "Resource not found"})
}

// BadRequest 请求体解析失败
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, "BAD_REQUEST", message)
}

// Unauthorized 未认证
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, "UNAUTHORIZED", message)
}

// Forbidden 无权限
func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, "FORBIDDEN", message)
}

// NotFound 资源不存在
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, "NOT_FOUND", message)
}

// ServerError 服务器内部错误
func ServerError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, "INTERNAL", message)
}
