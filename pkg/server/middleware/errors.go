package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/storacha/sandbox/internal/telemetry"
)

// ContextualError is a richer error interface that provides additional context
// about an error that occurred during request handling.
type ContextualError interface {
	error
	// StatusCode returns the HTTP status code that should be returned to the client
	StatusCode() int
	// LogContext returns a map of additional context for logging
	LogContext() map[string]interface{}
	// PublicMessage returns a message safe to return to the client
	PublicMessage() string
	// OriginalError returns the underlying error, if any
	OriginalError() error
}

// APIError implements ContextualError.
type APIError struct {
	Operation     string
	Message       string
	ClientMessage string
	Code          int
	Err           error
	Context       map[string]interface{}
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Operation, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

func (e *APIError) StatusCode() int {
	return e.Code
}

func (e *APIError) LogContext() map[string]interface{} {
	ctx := make(map[string]interface{}, len(e.Context)+1)
	for k, v := range e.Context {
		ctx[k] = v
	}
	ctx["operation"] = e.Operation
	return ctx
}

func (e *APIError) PublicMessage() string {
	if e.ClientMessage != "" {
		return e.ClientMessage
	}
	return http.StatusText(e.Code)
}

func (e *APIError) OriginalError() error {
	return e.Err
}

// NewError creates a new APIError. The message is returned to clients unless
// replaced with WithPublicMessage.
func NewError(operation string, message string, err error, code int) *APIError {
	return &APIError{
		Operation:     operation,
		Message:       message,
		ClientMessage: message,
		Code:          code,
		Err:           err,
		Context:       make(map[string]interface{}),
	}
}

func (e *APIError) WithContext(key string, value interface{}) *APIError {
	e.Context[key] = value
	return e
}

func (e *APIError) WithPublicMessage(message string) *APIError {
	e.ClientMessage = message
	return e
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HandleError renders err as a JSON ErrorResponse. Server side failures are
// reported to Sentry.
func HandleError(err error, c echo.Context) {
	if err == nil || c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := "Internal server error"

	var cErr ContextualError
	var he *echo.HTTPError
	switch {
	case errors.As(err, &cErr):
		code = cErr.StatusCode()
		msg = cErr.PublicMessage()
	case errors.As(err, &he):
		code = he.Code
		msg = fmt.Sprintf("%v", he.Message)
	}

	if code >= http.StatusInternalServerError {
		telemetry.ReportError(err)
	}
	_ = c.JSON(code, ErrorResponse{Error: msg})
}
