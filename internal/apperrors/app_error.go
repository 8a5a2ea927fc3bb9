package apperrors

import (
	"net/http"
)

// 错误消息 ID（由 i18n 翻译）
const (
	MsgInvalidRequest        = "error.invalid_request"
	MsgOriginalURLRequired   = "error.original_url_required"
	MsgCoordinatesRequired   = "error.coordinates_required"
	MsgCoordinatesOutOfRange = "error.coordinates_out_of_range"
	MsgLinkNotFound          = "error.link_not_found"
	MsgShortCodeExhausted    = "error.shortcode_exhausted"
	MsgSystem                = "error.system"
	MsgServer                = "error.server"
)

// AppError 自定义错误类型
type AppError struct {
	Code    int
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCode 创建通用业务错误
func WithCode(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 附带底层原因
func Wrap(code int, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// InvalidRequestError 封装参数校验错误
func InvalidRequestError(message string) *AppError {
	return WithCode(http.StatusBadRequest, message)
}

// InvalidRequestErrorDefault 默认参数校验错误
func InvalidRequestErrorDefault() *AppError {
	return WithCode(http.StatusBadRequest, MsgInvalidRequest)
}

// NotFoundError 资源不存在
func NotFoundError(message string) *AppError {
	return WithCode(http.StatusNotFound, message)
}

// LinkNotFound 短链不存在
func LinkNotFound() *AppError {
	return NotFoundError(MsgLinkNotFound)
}

// SystemError 封装系统内部错误
func SystemError(message string, cause error) *AppError {
	return Wrap(http.StatusInternalServerError, message, cause)
}
