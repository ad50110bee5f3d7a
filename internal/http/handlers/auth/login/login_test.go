package login

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	auth "github.com/magabrotheeeer/adpilot/internal/services/auth"
)

// Мок сервиса с методом Login
type AuthServiceMock struct {
	mock.Mock
}

func (m *AuthServiceMock) Login(ctx context.Context, email, password string) (string, string, error) {
	args := m.Called(ctx, email, password)
	return args.String(0), args.String(1), args.Error(2)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestLoginHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    interface{}
		setupMocks     func(m *AuthServiceMock)
		wantStatusCode int
		wantStatus     string
		wantError      string
	}{
		{
			name:        "valid login",
			requestBody: Request{Email: "user1@example.com", Password: "password123"},
			setupMocks: func(m *AuthServiceMock) {
				m.On("Login", mock.Anything, "user1@example.com", "password123").
					Return("jwt-token", "user", nil).Once()
			},
			wantStatusCode: http.StatusOK,
			wantStatus:     "OK",
		},
		{
			name:           "invalid json body",
			requestBody:    "not a json",
			setupMocks:     func(m *AuthServiceMock) {},
			wantStatusCode: http.StatusBadRequest,
			wantStatus:     "Error",
			wantError:      "invalid request body",
		},
		{
			name:           "validation error - missing password",
			requestBody:    Request{Email: "user1@example.com"},
			setupMocks:     func(m *AuthServiceMock) {},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantStatus:     "Error",
			wantError:      "field Password is a required field",
		},
		{
			name:        "invalid credentials",
			requestBody: Request{Email: "user1@example.com", Password: "wrongpass"},
			setupMocks: func(m *AuthServiceMock) {
				m.On("Login", mock.Anything, "user1@example.com", "wrongpass").
					Return("", "", auth.ErrInvalidCredentials).Once()
			},
			wantStatusCode: http.StatusUnauthorized,
			wantStatus:     "Error",
			wantError:      "invalid credentials",
		},
		{
			name:        "too many attempts",
			requestBody: Request{Email: "user1@example.com", Password: "password123"},
			setupMocks: func(m *AuthServiceMock) {
				m.On("Login", mock.Anything, "user1@example.com", "password123").
					Return("", "", auth.ErrTooManyAttempts).Once()
			},
			wantStatusCode: http.StatusTooManyRequests,
			wantStatus:     "Error",
			wantError:      "too many login attempts, try again later",
		},
		{
			name:        "internal error",
			requestBody: Request{Email: "user1@example.com", Password: "password123"},
			setupMocks: func(m *AuthServiceMock) {
				m.On("Login", mock.Anything, "user1@example.com", "password123").
					Return("", "", errors.New("redis down")).Once()
			},
			wantStatusCode: http.StatusInternalServerError,
			wantStatus:     "Error",
			wantError:      "internal error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authMock := new(AuthServiceMock)
			tt.setupMocks(authMock)
			handler := New(newNoopLogger(), authMock)

			var body bytes.Buffer
			switch v := tt.requestBody.(type) {
			case string:
				body.WriteString(v)
			default:
				assert.NoError(t, json.NewEncoder(&body).Encode(v))
			}

			req := httptest.NewRequest(http.MethodPost, "/login", &body)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var resp map[string]any
			assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantStatus, resp["status"])
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, resp["error"])
			}
			authMock.AssertExpectations(t)
		})
	}
}
