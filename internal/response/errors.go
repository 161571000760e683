package response

import (
	"errors"
	"fmt"
	"net/http"
)

type AppError struct {
	HTTPCode int
	Message  string
	Err      error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func NewAppError(httpCode int, message string, err error) *AppError {
	return &AppError{HTTPCode: httpCode, Message: message, Err: err}
}

// WriteAppError renders err as {error}. Anything that is not an *AppError is a 500
// with a generic message so internals never reach the client.
func WriteAppError(w http.ResponseWriter, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		Error(appErr.Message).WriteError(w, appErr.HTTPCode)
		return
	}
	Error("Internal Server Error").WriteError(w, http.StatusInternalServerError)
}
