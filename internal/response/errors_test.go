package response

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestAppError(t *testing.T) {
	cause := errors.New("disk full")
	err := NewAppError(http.StatusConflict, "Email is already registered", cause)

	if err.Error() != "Email is already registered: disk full" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("Expected AppError to unwrap to its cause")
	}

	var nilErr *AppError
	if nilErr.Error() != "" || nilErr.Unwrap() != nil {
		t.Error("nil AppError should be inert")
	}
}

func TestWriteAppError(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteAppError(rr, fmt.Errorf("wrapped: %w", NewAppError(http.StatusBadRequest, "Title is required", nil)))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rr.Code)
	}
	if body := strings.TrimSpace(rr.Body.String()); body != `{"error":"Title is required"}` {
		t.Errorf("unexpected body %s", body)
	}

	rr = httptest.NewRecorder()
	WriteAppError(rr, errors.New("sql: connection refused"))
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "connection refused") {
		t.Error("internal error leaked to client")
	}
}
