package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind 错误大类，决定HTTP状态码
type Kind int

const (
	KindAuth       Kind = iota // 401
	KindForbidden              // 403
	KindNotFound               // 404
	KindConflict               // 409
	KindValidation             // 422
	KindCrypto                 // 500，不暴露具体字段
	KindUpstream               // 502
)

// Error 带分类的业务错误
type Error struct {
	Kind    Kind
	Code    string // 机器可读错误码，如 INVALID_CREDENTIALS
	Message string // 面向客户端的消息
	Err     error  // 被包装的底层错误，仅进日志
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is 按错误码匹配，支持 errors.Is(err, ErrXxx)
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// HTTPStatus 错误大类到HTTP状态码的映射
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindAuth:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindCrypto:
		return http.StatusInternalServerError
	case KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func newErr(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// ========== 认证错误 ==========

var (
	ErrInvalidCredentials = newErr(KindAuth, "INVALID_CREDENTIALS", "invalid credentials")
	ErrTokenExpired       = newErr(KindAuth, "TOKEN_EXPIRED", "token expired")
	ErrTokenMalformed     = newErr(KindAuth, "TOKEN_MALFORMED", "token malformed")
	ErrUserInactive       = newErr(KindAuth, "USER_INACTIVE", "invalid credentials")
)

// ========== 授权错误 ==========

var (
	ErrWrongTenant         = newErr(KindForbidden, "WRONG_TENANT", "access to this tenant is not allowed")
	ErrRoleDenied          = newErr(KindForbidden, "ROLE_DENIED", "operation not allowed for this role")
	ErrFrameworkNotAllowed = newErr(KindForbidden, "FRAMEWORK_NOT_ALLOWED", "framework is not in the allowed list")
	ErrTenantInactive      = newErr(KindForbidden, "TENANT_INACTIVE", "tenant is deactivated")
)

// ========== 资源错误 ==========

var (
	ErrNotFound      = newErr(KindNotFound, "NOT_FOUND", "resource not found")
	ErrTenantUnknown = newErr(KindNotFound, "TENANT_UNKNOWN", "tenant not found")
)

// ========== 冲突错误 ==========

var (
	ErrSlugTaken        = newErr(KindConflict, "SLUG_TAKEN", "tenant slug already exists")
	ErrDuplicateControl = newErr(KindConflict, "DUPLICATE_CONTROL", "control already exists for this framework")
	ErrUsernameTaken    = newErr(KindConflict, "USERNAME_TAKEN", "username already exists in this tenant")
)

// ========== 加密错误（不暴露出错字段） ==========

var (
	ErrKeyMissing = newErr(KindCrypto, "CRYPTO_KEY_MISSING", "internal server error")
	ErrTamper     = newErr(KindCrypto, "CRYPTO_TAMPER", "internal server error")
)

// ========== 上游错误 ==========

var (
	ErrUpstreamTimeout     = newErr(KindUpstream, "UPSTREAM_TIMEOUT", "upstream timed out")
	ErrUpstreamUnavailable = newErr(KindUpstream, "UPSTREAM_UNAVAILABLE", "upstream unavailable")
)

// Validation 构造422错误，message直接面向客户端
func Validation(message string) *Error {
	return newErr(KindValidation, "VALIDATION", message)
}

// Wrap 在既有分类错误上附加底层原因，仅用于日志定位
func Wrap(base *Error, err error) *Error {
	return &Error{Kind: base.Kind, Code: base.Code, Message: base.Message, Err: err}
}

// AsAppError 提取分类错误，失败时返回nil
func AsAppError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}
