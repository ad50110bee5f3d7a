package paymentprovider

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidSignature = errors.New("invalid webhook signature")

// Максимально допустимый возраст подписи вебхука
const signatureTolerance = 5 * time.Minute

type Client struct {
	secretKey  string
	apiURL     string
	httpClient *http.Client
}

// NewClient создаёт новый клиент платёжного провайдера
func NewClient(secretKey string) *Client {
	return &Client{
		secretKey:  secretKey,
		apiURL:     "https://api.stripe.com/v1",
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// CreateCheckoutSession отправляет запрос на создание checkout-сессии
func (c *Client) CreateCheckoutSession(ctx context.Context, reqParams CreateCheckoutSessionRequest) (*CheckoutSession, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", reqParams.SuccessURL)
	form.Set("cancel_url", reqParams.CancelURL)
	form.Set("line_items[0][price]", reqParams.PriceID)
	form.Set("line_items[0][quantity]", strconv.Itoa(reqParams.Quantity))
	if reqParams.CustomerEmail != "" {
		form.Set("customer_email", reqParams.CustomerEmail)
	}
	if reqParams.ClientRefID != "" {
		form.Set("client_reference_id", reqParams.ClientRefID)
	}
	for k, v := range reqParams.Metadata {
		form.Set(fmt.Sprintf("metadata[%s]", k), v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("unexpected status: " + resp.Status)
	}

	var session CheckoutSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, err
	}
	return &session, nil
}

// VerifyWebhookSignature проверяет HMAC-подпись тела вебхука.
// Формат заголовка: "t=<unix>,v1=<hex>[,v1=<hex>...]".
func VerifyWebhookSignature(payload []byte, header, webhookSecret string, now time.Time) error {
	var timestamp string
	var signatures []string
	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			timestamp = kv[1]
		case "v1":
			signatures = append(signatures, kv[1])
		}
	}
	if timestamp == "" || len(signatures) == 0 {
		return ErrInvalidSignature
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return ErrInvalidSignature
	}
	if diff := now.Sub(time.Unix(ts, 0)); diff > signatureTolerance || diff < -signatureTolerance {
		return ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, []byte(webhookSecret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, sig := range signatures {
		if hmac.Equal([]byte(expected), []byte(sig)) {
			return nil
		}
	}
	return ErrInvalidSignature
}

// ParseWebhookEvent разбирает тело события вебхука
func ParseWebhookEvent(payload []byte) (*WebhookEvent, error) {
	var event WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, err
	}
	if event.ID == "" || event.Type == "" {
		return nil, errors.New("malformed webhook event")
	}
	return &event, nil
}

// ParseWebhookSession извлекает объект checkout.session из события
func ParseWebhookSession(event *WebhookEvent) (*WebhookSession, error) {
	var session WebhookSession
	if err := json.Unmarshal(event.Data.Object, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// ParseWebhookPaymentIntent извлекает объект payment_intent из события
func ParseWebhookPaymentIntent(event *WebhookEvent) (*WebhookPaymentIntent, error) {
	var intent WebhookPaymentIntent
	if err := json.Unmarshal(event.Data.Object, &intent); err != nil {
		return nil, err
	}
	return &intent, nil
}

// ParseWebhookSubscription извлекает объект subscription из события
func ParseWebhookSubscription(event *WebhookEvent) (*WebhookSubscription, error) {
	var sub WebhookSubscription
	if err := json.Unmarshal(event.Data.Object, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}
