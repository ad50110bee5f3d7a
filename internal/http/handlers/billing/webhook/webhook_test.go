package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/adpilot/internal/paymentprovider"
	billing "github.com/magabrotheeeer/adpilot/internal/services/billing"
)

type BillingMock struct {
	mock.Mock
}

func (m *BillingMock) ProcessWebhookEvent(ctx context.Context, event *paymentprovider.WebhookEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

const testSecret = "whsec_test"

func signPayload(payload, secret string, ts time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(fmt.Sprintf("%d.%s", ts.Unix(), payload)))
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func TestWebhookHandler(t *testing.T) {
	payload := `{"id": "evt_1", "type": "checkout.session.completed", "data": {"object": {}}}`

	tests := []struct {
		name         string
		body         string
		signature    string
		mockSetup    func(svc *BillingMock)
		expectedCode int
	}{
		{
			name:      "Валидное событие",
			body:      payload,
			signature: signPayload(payload, testSecret, time.Now()),
			mockSetup: func(svc *BillingMock) {
				svc.On("ProcessWebhookEvent", mock.Anything, mock.MatchedBy(func(event *paymentprovider.WebhookEvent) bool {
					return event.ID == "evt_1" && event.Type == "checkout.session.completed"
				})).Return(nil).Once()
			},
			expectedCode: http.StatusOK,
		},
		{
			name:         "Неверная подпись",
			body:         payload,
			signature:    signPayload(payload, "whsec_wrong", time.Now()),
			mockSetup:    func(svc *BillingMock) {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Устаревшая подпись",
			body:         payload,
			signature:    signPayload(payload, testSecret, time.Now().Add(-10*time.Minute)),
			mockSetup:    func(svc *BillingMock) {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Нет заголовка подписи",
			body:         payload,
			signature:    "",
			mockSetup:    func(svc *BillingMock) {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Событие без идентификатора",
			body:         `{"type": "checkout.session.completed"}`,
			signature:    signPayload(`{"type": "checkout.session.completed"}`, testSecret, time.Now()),
			mockSetup:    func(svc *BillingMock) {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:      "Событие с битыми метаданными",
			body:      payload,
			signature: signPayload(payload, testSecret, time.Now()),
			mockSetup: func(svc *BillingMock) {
				svc.On("ProcessWebhookEvent", mock.Anything, mock.Anything).
					Return(fmt.Errorf("services.billing: %w", billing.ErrBadPayload)).Once()
			},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:      "Ошибка сохранения события",
			body:      payload,
			signature: signPayload(payload, testSecret, time.Now()),
			mockSetup: func(svc *BillingMock) {
				svc.On("ProcessWebhookEvent", mock.Anything, mock.Anything).
					Return(fmt.Errorf("db down")).Once()
			},
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(BillingMock)
			tt.mockSetup(svc)

			log := slog.New(slog.NewTextHandler(io.Discard, nil))
			handler := New(log, svc, testSecret)

			req := httptest.NewRequest(http.MethodPost, "/billing/webhook", strings.NewReader(tt.body))
			if tt.signature != "" {
				req.Header.Set("Stripe-Signature", tt.signature)
			}
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			require.Equal(t, tt.expectedCode, rr.Code)
			if tt.expectedCode == http.StatusOK {
				assert.Contains(t, rr.Body.String(), `"OK"`)
			}
			svc.AssertExpectations(t)
		})
	}
}
