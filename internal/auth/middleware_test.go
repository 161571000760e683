package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"popreel/internal/models"
)

type mockVerifier struct {
	authenticateFunc func(ctx context.Context, token string) (*models.User, error)
}

func (m *mockVerifier) Authenticate(ctx context.Context, token string) (*models.User, error) {
	return m.authenticateFunc(ctx, token)
}

func TestSessionMiddleware(t *testing.T) {
	verifier := &mockVerifier{
		authenticateFunc: func(ctx context.Context, token string) (*models.User, error) {
			if token == "valid-token" {
				return &models.User{ID: "u1", Email: "a@example.com"}, nil
			}
			return nil, errors.New("unknown token")
		},
	}

	// Create a test handler that echoes the authenticated user
	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := UserFrom(r.Context())
		if user == nil {
			t.Error("Expected user in context")
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(user.ID))
	})

	unauthorizedBody := `{"error":"Unauthorized","details":"Provide a session token in the Authorization header as Bearer TOKEN"}`

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "Valid Bearer token",
			authHeader:     "Bearer valid-token",
			expectedStatus: http.StatusOK,
			expectedBody:   "u1",
		},
		{
			name:           "Unknown Bearer token",
			authHeader:     "Bearer wrong-token",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   unauthorizedBody,
		},
		{
			name:           "Missing header",
			authHeader:     "",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   unauthorizedBody,
		},
		{
			name:           "Wrong scheme",
			authHeader:     "Basic dXNlcjpwYXNz",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   unauthorizedBody,
		},
		{
			name:           "Empty Bearer token",
			authHeader:     "Bearer   ",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   unauthorizedBody,
		},
	}

	handler := SessionMiddleware(verifier)(testHandler)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/video", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, rr.Code)
			}
			if body := strings.TrimSpace(rr.Body.String()); body != tt.expectedBody {
				t.Errorf("Expected body %s, got %s", tt.expectedBody, body)
			}
		})
	}
}

func TestUserFrom_EmptyContext(t *testing.T) {
	if UserFrom(context.Background()) != nil {
		t.Error("Expected nil user for bare context")
	}
}
