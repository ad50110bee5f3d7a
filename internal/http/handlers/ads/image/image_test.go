package image

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

	"github.com/magabrotheeeer/adpilot/internal/http/middlewarectx"
	"github.com/magabrotheeeer/adpilot/internal/storage/repository"
)

// Мок сервиса с методом RenderImage
type ImageServiceMock struct {
	mock.Mock
}

func (m *ImageServiceMock) RenderImage(ctx context.Context, userUID, prompt string) (string, error) {
	args := m.Called(ctx, userUID, prompt)
	return args.String(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestImageHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    interface{}
		setupMocks     func(m *ImageServiceMock)
		wantStatusCode int
		wantStatus     string
		wantError      string
	}{
		{
			name:        "успешная генерация",
			requestBody: Request{Prompt: "robot mascot"},
			setupMocks: func(m *ImageServiceMock) {
				m.On("RenderImage", mock.Anything, "user-uid", "robot mascot").
					Return("https://images.example.com/1.png", nil).Once()
			},
			wantStatusCode: http.StatusOK,
			wantStatus:     "OK",
		},
		{
			name:           "невалидный JSON",
			requestBody:    "not a json",
			setupMocks:     func(m *ImageServiceMock) {},
			wantStatusCode: http.StatusBadRequest,
			wantStatus:     "Error",
			wantError:      "invalid request body",
		},
		{
			name:           "пустое описание",
			requestBody:    Request{},
			setupMocks:     func(m *ImageServiceMock) {},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantStatus:     "Error",
		},
		{
			name:        "недостаточно кредитов",
			requestBody: Request{Prompt: "robot mascot"},
			setupMocks: func(m *ImageServiceMock) {
				m.On("RenderImage", mock.Anything, "user-uid", "robot mascot").
					Return("", repository.ErrInsufficientCredits).Once()
			},
			wantStatusCode: http.StatusPaymentRequired,
			wantStatus:     "Error",
			wantError:      "insufficient credits",
		},
		{
			name:        "модель недоступна",
			requestBody: Request{Prompt: "robot mascot"},
			setupMocks: func(m *ImageServiceMock) {
				m.On("RenderImage", mock.Anything, "user-uid", "robot mascot").
					Return("", errors.New("upstream unavailable")).Once()
			},
			wantStatusCode: http.StatusBadGateway,
			wantStatus:     "Error",
			wantError:      "failed to generate image",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			imagesMock := new(ImageServiceMock)
			tt.setupMocks(imagesMock)
			handler := New(newNoopLogger(), imagesMock)

			var body bytes.Buffer
			switch v := tt.requestBody.(type) {
			case string:
				body.WriteString(v)
			default:
				assert.NoError(t, json.NewEncoder(&body).Encode(v))
			}

			req := httptest.NewRequest(http.MethodPost, "/ads/image", &body)
			ctx := context.WithValue(req.Context(), middlewarectx.UserUID, "user-uid")
			req = req.WithContext(ctx)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var resp map[string]any
			assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantStatus, resp["status"])
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, resp["error"])
			}
			imagesMock.AssertExpectations(t)
		})
	}
}

func TestImageHandler_MissingUser(t *testing.T) {
	handler := New(newNoopLogger(), new(ImageServiceMock))

	req := httptest.NewRequest(http.MethodPost, "/ads/image", bytes.NewBufferString("{}"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
