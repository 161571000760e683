package response

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestErrorResponse(t *testing.T) {
	tests := []struct {
		name         string
		writer       ResponseWriter
		status       int
		expectedBody string
	}{
		{
			name:         "Error without details",
			writer:       Error("Title is required"),
			status:       http.StatusBadRequest,
			expectedBody: `{"error":"Title is required"}`,
		},
		{
			name:         "Error with details",
			writer:       ErrorWithDetails("Internal Server Error", "missing IMAGEKIT_PRIVATE_KEY"),
			status:       http.StatusInternalServerError,
			expectedBody: `{"error":"Internal Server Error","details":"missing IMAGEKIT_PRIVATE_KEY"}`,
		},
		{
			name:         "Plain text",
			writer:       Plain("OK"),
			status:       http.StatusServiceUnavailable,
			expectedBody: "OK",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			tt.writer.WriteError(rr, tt.status)

			if rr.Code != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, rr.Code)
			}
			if body := strings.TrimSpace(rr.Body.String()); body != tt.expectedBody {
				t.Errorf("Expected body %s, got %s", tt.expectedBody, body)
			}
		})
	}
}

func TestData(t *testing.T) {
	rr := httptest.NewRecorder()
	Data(rr, http.StatusCreated, map[string]string{"status": "ok"})

	if rr.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected application/json, got %s", ct)
	}
	if body := strings.TrimSpace(rr.Body.String()); body != `{"status":"ok"}` {
		t.Errorf("unexpected body %s", body)
	}
}
