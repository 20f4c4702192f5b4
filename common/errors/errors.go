package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error represents an application error
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the same kind of application error. Two errors
// are the same kind when they share code and message, so a Wrap of a sentinel
// still matches the sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// JSON returns the error as a JSON string
func (e *Error) JSON() string {
	b, _ := json.Marshal(e)
	return string(b)
}

// New creates a new Error
func New(code int, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Wrap attaches a cause to a copy of the sentinel.
func Wrap(sentinel *Error, err error) *Error {
	return New(sentinel.Code, sentinel.Message, err)
}

// Validation returns a validation failure carrying a user-facing message.
func Validation(message string) *Error {
	return &Error{Code: ErrValidation.Code, Message: ErrValidation.Message, Err: stderrors.New(message)}
}

// Notice returns the message that should be shown to an operator for err.
// Validation failures surface their detail; everything else surfaces the
// sentinel message only.
func Notice(err error) string {
	var appErr *Error
	if !stderrors.As(err, &appErr) {
		return ErrInternalServer.Message
	}
	if appErr.Is(ErrValidation) && appErr.Err != nil {
		return appErr.Err.Error()
	}
	return appErr.Message
}

// Status maps err to an HTTP status code.
func Status(err error) int {
	var appErr *Error
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return http.StatusInternalServerError
}

// Error middleware for Gin
func ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last().Err
			var appErr *Error
			if !stderrors.As(err, &appErr) {
				appErr = Wrap(ErrInternalServer, err)
			}

			c.JSON(appErr.Code, gin.H{
				"code":      appErr.Code,
				"error_msg": Notice(appErr),
			})
			c.Abort()
		}
	}
}

// Common error types
var (
	ErrBadRequest         = New(http.StatusBadRequest, "Bad request", nil)
	ErrForbidden          = New(http.StatusForbidden, "You do not have access to this record.", nil)
	ErrNotFound           = New(http.StatusNotFound, "Record not found.", nil)
	ErrInternalServer     = New(http.StatusInternalServerError, "Something went wrong. Please try again.", nil)
	ErrServiceUnavailable = New(http.StatusServiceUnavailable, "Service unavailable", nil)
)

// Store error types
var (
	ErrStoreUnavailable = New(http.StatusServiceUnavailable, "The data store is unavailable. Please try again.", nil)
)

// Validation error types
var (
	ErrValidation = New(http.StatusBadRequest, "Validation error", nil)
)

// Authentication error types
var (
	ErrMissingCredential  = New(http.StatusUnauthorized, "Unauthorized. Please login first.", nil)
	ErrInvalidCredential  = New(http.StatusUnauthorized, "Session expired. Please login again.", nil)
	ErrInvalidCredentials = New(http.StatusUnauthorized, "Invalid email or password.", nil)
)
