package claimfree

import (
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

	"github.com/magabrotheeeer/adpilot/internal/http/middlewarectx"
	"github.com/magabrotheeeer/adpilot/internal/storage/repository"
)

// Мок сервиса с методом ClaimFree
type CreditsServiceMock struct {
	mock.Mock
}

func (m *CreditsServiceMock) ClaimFree(ctx context.Context, userUID string) error {
	args := m.Called(ctx, userUID)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestClaimFreeHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		userUID        string
		mockErr        error
		wantStatusCode int
		wantStatus     string
		wantError      string
	}{
		{
			name:           "успешное начисление",
			userUID:        "user-uid",
			mockErr:        nil,
			wantStatusCode: http.StatusOK,
			wantStatus:     "OK",
		},
		{
			name:           "кредиты уже получены",
			userUID:        "user-uid",
			mockErr:        repository.ErrAlreadyClaimed,
			wantStatusCode: http.StatusConflict,
			wantStatus:     "Error",
			wantError:      "free credits already claimed",
		},
		{
			name:           "ошибка хранилища",
			userUID:        "user-uid",
			mockErr:        errors.New("db down"),
			wantStatusCode: http.StatusInternalServerError,
			wantStatus:     "Error",
			wantError:      "failed to claim free credits",
		},
		{
			name:           "нет идентификации пользователя",
			userUID:        "",
			wantStatusCode: http.StatusUnauthorized,
			wantStatus:     "Error",
			wantError:      "user identification missing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creditsMock := new(CreditsServiceMock)
			if tt.userUID != "" {
				creditsMock.On("ClaimFree", mock.Anything, tt.userUID).Return(tt.mockErr).Once()
			}
			handler := New(newNoopLogger(), creditsMock)

			req := httptest.NewRequest(http.MethodPost, "/credits/claim-free", nil)
			if tt.userUID != "" {
				ctx := context.WithValue(req.Context(), middlewarectx.UserUID, tt.userUID)
				req = req.WithContext(ctx)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var resp map[string]any
			assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantStatus, resp["status"])
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, resp["error"])
			}
			creditsMock.AssertExpectations(t)
		})
	}
}
