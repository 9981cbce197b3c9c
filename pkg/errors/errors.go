// Package errors 提供统一的错误定义
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorCode 错误码类型
type ErrorCode string

// 预定义错误码
const (
	// 通用错误 (1xxx)
	CodeSuccess            ErrorCode = "0"
	CodeUnknown            ErrorCode = "1000"
	CodeInvalidParam       ErrorCode = "1001"
	CodeNotFound           ErrorCode = "1004"
	CodeInternalError      ErrorCode = "1007"
	CodeServiceUnavailable ErrorCode = "1008"
	CodeConfiguration      ErrorCode = "1009"

	// 业务错误 (4xxx)
	CodeGenerationFailed     ErrorCode = "4001"
	CodeValidationFailed     ErrorCode = "4002"
	CodeAllModelsUnavailable ErrorCode = "4007"
	CodeModelUnavailable     ErrorCode = "4008"

	// 外部服务错误 (5xxx)
	CodeBackendError         ErrorCode = "5005"
	CodeRateLimited          ErrorCode = "5006"
	CodeUpstreamUnauthorized ErrorCode = "5007"
	CodeTimeout              ErrorCode = "5008"
)

// AppError 应用错误
type AppError struct {
	Code           ErrorCode `json:"code"`
	Message        string    `json:"message"`
	Detail         string    `json:"detail,omitempty"`
	HTTPStatus     int       `json:"-"`
	UpstreamStatus int       `json:"upstream_status,omitempty"` // 仅上游错误有值
	Err            error     `json:"-"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap 返回底层错误
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 按错误码匹配，支持 errors.Is(err, ErrRateLimited)
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithDetail 添加详细信息
func (e *AppError) WithDetail(detail string) *AppError {
	e.Detail = detail
	return e
}

// WithError 添加底层错误
func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

// New 创建新的应用错误
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

// Wrap 包装错误
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Err:        err,
	}
}

// codeToHTTPStatus 错误码转 HTTP 状态码
func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case CodeSuccess:
		return http.StatusOK
	case CodeInvalidParam, CodeValidationFailed:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeServiceUnavailable, CodeAllModelsUnavailable, CodeModelUnavailable:
		return http.StatusServiceUnavailable
	case CodeBackendError, CodeUpstreamUnauthorized:
		return http.StatusBadGateway
	case CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// 预定义错误，仅用于 errors.Is 匹配，不要修改
var (
	ErrConfiguration        = New(CodeConfiguration, "configuration error")
	ErrValidationFailed     = New(CodeValidationFailed, "validation failed")
	ErrAllModelsUnavailable = New(CodeAllModelsUnavailable, "all models unavailable")
	ErrModelUnavailable     = New(CodeModelUnavailable, "model unavailable")
	ErrRateLimited          = New(CodeRateLimited, "rate limit exceeded")
	ErrUnauthorized         = New(CodeUpstreamUnauthorized, "invalid api key")
	ErrTimeout              = New(CodeTimeout, "backend timeout")
	ErrBackend              = New(CodeBackendError, "backend error")
)

// Configuration 配置缺失或非法
func Configuration(message string) *AppError {
	return New(CodeConfiguration, message)
}

// Validation 请求参数非法
func Validation(message string) *AppError {
	return New(CodeValidationFailed, message)
}

// AllModelsUnavailable 所有候选模型探测失败
func AllModelsUnavailable(tried []string, last error) *AppError {
	return Wrap(last, CodeAllModelsUnavailable, "all models failed, check api key and network").
		WithDetail("tried " + strings.Join(tried, ", "))
}

// ModelUnavailable 指定模型探测失败
func ModelUnavailable(model string, cause error) *AppError {
	return Wrap(cause, CodeModelUnavailable, "model unavailable").WithDetail(model)
}

// RateLimited 上游返回 429
func RateLimited() *AppError {
	return New(CodeRateLimited, "rate limit exceeded")
}

// Unauthorized 上游返回 401
func Unauthorized() *AppError {
	return New(CodeUpstreamUnauthorized, "invalid api key")
}

// Timeout 上游调用超时
func Timeout(cause error) *AppError {
	return Wrap(cause, CodeTimeout, "backend timeout")
}

// Backend 上游返回其它非 200 状态
func Backend(status int, body string) *AppError {
	e := New(CodeBackendError, fmt.Sprintf("backend returned status %d", status)).WithDetail(body)
	e.UpstreamStatus = status
	return e
}

// IsAppError 检查是否为 AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError 将错误转换为 AppError
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, CodeUnknown, "unknown error")
}
