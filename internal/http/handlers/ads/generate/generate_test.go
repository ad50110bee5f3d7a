package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/adpilot/internal/http/middlewarectx"
	"github.com/magabrotheeeer/adpilot/internal/models"
	"github.com/magabrotheeeer/adpilot/internal/storage/repository"
)

// Мок сервиса с методом Generate
type AdsServiceMock struct {
	mock.Mock
}

func (m *AdsServiceMock) Generate(ctx context.Context, userUID string, req models.GenerateAdsRequest) (*models.GenerateAdsResult, error) {
	args := m.Called(ctx, userUID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GenerateAdsResult), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestGenerateHandler_ServeHTTP(t *testing.T) {
	validRequest := models.GenerateAdsRequest{
		Platforms:   []string{"google"},
		ProductName: "Widget",
	}

	tests := []struct {
		name           string
		requestBody    interface{}
		setupMocks     func(m *AdsServiceMock)
		wantStatusCode int
		wantStatus     string
		wantError      string
	}{
		{
			name:        "успешная генерация",
			requestBody: validRequest,
			setupMocks: func(m *AdsServiceMock) {
				m.On("Generate", mock.Anything, "user-uid", validRequest).
					Return(&models.GenerateAdsResult{
						Ads: []models.Ad{{Platform: "google", Headline: "H", Body: "B"}},
					}, nil).Once()
			},
			wantStatusCode: http.StatusOK,
			wantStatus:     "OK",
		},
		{
			name:           "невалидный JSON",
			requestBody:    "not a json",
			setupMocks:     func(m *AdsServiceMock) {},
			wantStatusCode: http.StatusBadRequest,
			wantStatus:     "Error",
			wantError:      "invalid request body",
		},
		{
			name:           "нет платформ",
			requestBody:    models.GenerateAdsRequest{ProductName: "Widget"},
			setupMocks:     func(m *AdsServiceMock) {},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantStatus:     "Error",
		},
		{
			name:        "недостаточно кредитов",
			requestBody: validRequest,
			setupMocks: func(m *AdsServiceMock) {
				m.On("Generate", mock.Anything, "user-uid", validRequest).
					Return(nil, repository.ErrInsufficientCredits).Once()
			},
			wantStatusCode: http.StatusPaymentRequired,
			wantStatus:     "Error",
			wantError:      "insufficient credits",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adsMock := new(AdsServiceMock)
			tt.setupMocks(adsMock)
			handler := New(newNoopLogger(), adsMock)

			var body bytes.Buffer
			switch v := tt.requestBody.(type) {
			case string:
				body.WriteString(v)
			default:
				assert.NoError(t, json.NewEncoder(&body).Encode(v))
			}

			req := httptest.NewRequest(http.MethodPost, "/ads/generate", &body)
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
			adsMock.AssertExpectations(t)
		})
	}
}

func TestGenerateHandler_MissingUser(t *testing.T) {
	handler := New(newNoopLogger(), new(AdsServiceMock))

	req := httptest.NewRequest(http.MethodPost, "/ads/generate", bytes.NewBufferString("{}"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
