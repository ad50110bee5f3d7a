package middlewarectx_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/magabrotheeeer/adpilot/internal/http/middlewarectx"
	"github.com/magabrotheeeer/adpilot/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type AuthMock struct {
	mock.Mock
}

func (m *AuthMock) ValidateToken(ctx context.Context, token string) (*models.User, string, bool, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Bool(2), args.Error(3)
	}
	return args.Get(0).(*models.User), args.String(1), args.Bool(2), args.Error(3)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestJWTMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		setupMocks func(a *AuthMock)
		wantStatus int
		wantUID    string
	}{
		{
			name:   "валидный токен",
			header: "Bearer good-token",
			setupMocks: func(a *AuthMock) {
				a.On("ValidateToken", mock.Anything, "good-token").
					Return(&models.User{UID: "user-uid", Username: "testuser", Role: "user"}, "user", true, nil).Once()
			},
			wantStatus: http.StatusOK,
			wantUID:    "user-uid",
		},
		{
			name:       "нет заголовка",
			header:     "",
			setupMocks: func(a *AuthMock) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "не Bearer",
			header:     "Basic abc",
			setupMocks: func(a *AuthMock) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:   "просроченный токен",
			header: "Bearer bad-token",
			setupMocks: func(a *AuthMock) {
				a.On("ValidateToken", mock.Anything, "bad-token").
					Return(nil, "", false, errors.New("token expired")).Once()
			},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := new(AuthMock)
			tt.setupMocks(auth)

			var gotUID string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUID, _ = middlewarectx.UserUIDFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			handler := middlewarectx.JWTMiddleware(auth, newNoopLogger())(next)

			req := httptest.NewRequest(http.MethodGet, "/credits/balance", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantUID != "" {
				assert.Equal(t, tt.wantUID, gotUID)
			}
			auth.AssertExpectations(t)
		})
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := middlewarectx.RateLimitMiddleware(newNoopLogger(), 1, 2)(next)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, rec.Code)
	}

	// burst = 2: третий запрос подряд отклоняется
	assert.Equal(t, http.StatusOK, codes[0])
	assert.Equal(t, http.StatusOK, codes[1])
	assert.Equal(t, http.StatusTooManyRequests, codes[2])
}

func TestRateLimitMiddleware_PerUser(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := middlewarectx.RateLimitMiddleware(newNoopLogger(), 1, 1)(next)

	do := func(uid string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(context.WithValue(req.Context(), middlewarectx.UserUID, uid))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	// первый пользователь исчерпал лимит
	assert.Equal(t, http.StatusOK, do("user-a"))
	assert.Equal(t, http.StatusTooManyRequests, do("user-a"))

	// лимит второго пользователя не задет
	assert.Equal(t, http.StatusOK, do("user-b"))
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("preflight must not reach the handler")
	})
	handler := middlewarectx.CORSMiddleware(next)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/ads/generate", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
