package paymentprovider

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func signPayload(payload []byte, secret string, ts time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", ts.Unix())
	mac.Write(payload)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func TestVerifyWebhookSignature(t *testing.T) {
	secret := "whsec_test"
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed"}`)
	now := time.Now()

	tests := []struct {
		name    string
		header  string
		wantErr bool
	}{
		{
			name:    "Валидная подпись",
			header:  signPayload(payload, secret, now),
			wantErr: false,
		},
		{
			name:    "Неверный секрет",
			header:  signPayload(payload, "whsec_other", now),
			wantErr: true,
		},
		{
			name:    "Устаревшая подпись",
			header:  signPayload(payload, secret, now.Add(-10*time.Minute)),
			wantErr: true,
		},
		{
			name:    "Пустой заголовок",
			header:  "",
			wantErr: true,
		},
		{
			name:    "Заголовок без v1",
			header:  fmt.Sprintf("t=%d", now.Unix()),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifyWebhookSignature(payload, tt.header, secret, now)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidSignature)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestParseWebhookEvent(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"id":"cs_1","customer":"cus_1","client_reference_id":"user-uid","payment_status":"paid","metadata":{"credits":"100"}}}}`)

	event, err := ParseWebhookEvent(payload)
	require.NoError(t, err)
	require.Equal(t, "evt_1", event.ID)
	require.Equal(t, "checkout.session.completed", event.Type)

	session, err := ParseWebhookSession(event)
	require.NoError(t, err)
	require.Equal(t, "cs_1", session.ID)
	require.Equal(t, "user-uid", session.ClientRefID)
	require.Equal(t, "100", session.Metadata["credits"])
}

func TestParseWebhookEvent_Malformed(t *testing.T) {
	_, err := ParseWebhookEvent([]byte(`{"type":"x"}`))
	require.Error(t, err)

	_, err = ParseWebhookEvent([]byte(`not json`))
	require.Error(t, err)
}
