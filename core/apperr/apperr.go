// Package apperr 定义服务端与客户端共用的错误分类。
//
// 服务层返回 *Error，函数分发层把 Code 写进响应信封，客户端再据此还原
// 成同样的 *Error，因此两端都可以用 errors.Is(err, apperr.ErrNotFound) 判断。
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code 是错误种类
type Code string

const (
	CodeValidation     Code = "VALIDATION"
	CodeNotFound       Code = "NOT_FOUND"
	CodeConflict       Code = "CONFLICT"
	CodeInitialization Code = "INITIALIZATION"
	CodeTransport      Code = "TRANSPORT"
	CodeUnauthorized   Code = "UNAUTHORIZED"
	CodeInternal       Code = "INTERNAL"
)

// HTTPStatus 返回错误种类对应的 HTTP 状态码
func (c Code) HTTPStatus() int {
	switch c {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeInitialization:
		return http.StatusServiceUnavailable
	case CodeTransport:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error 带种类的错误
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// Is 按 Code 匹配
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// 用于 errors.Is 的哨兵错误
var (
	ErrValidation     = &Error{Code: CodeValidation, Message: "validation error"}
	ErrNotFound       = &Error{Code: CodeNotFound, Message: "not found"}
	ErrConflict       = &Error{Code: CodeConflict, Message: "conflict"}
	ErrInitialization = &Error{Code: CodeInitialization, Message: "not initialized"}
	ErrTransport      = &Error{Code: CodeTransport, Message: "transport error"}
	ErrUnauthorized   = &Error{Code: CodeUnauthorized, Message: "unauthorized"}
	ErrInternal       = &Error{Code: CodeInternal, Message: "internal error"}
)

// New 创建指定种类的错误
func New(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap 创建带底层原因的错误
func Wrap(code Code, err error, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

func Validation(format string, args ...interface{}) *Error {
	return New(CodeValidation, format, args...)
}

func NotFound(format string, args ...interface{}) *Error {
	return New(CodeNotFound, format, args...)
}

func Conflict(format string, args ...interface{}) *Error {
	return New(CodeConflict, format, args...)
}

func Initialization(format string, args ...interface{}) *Error {
	return New(CodeInitialization, format, args...)
}

func Transport(err error, message string) *Error {
	return Wrap(CodeTransport, err, message)
}

func Internal(err error, message string) *Error {
	return Wrap(CodeInternal, err, message)
}

// CodeOf 返回错误种类，非 *Error 视为 INTERNAL
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// Message 返回适合展示给用户的错误信息，内部错误不暴露细节
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Code == CodeInternal {
			return e.Message
		}
		return e.Error()
	}
	return "internal error"
}
