package paymentprovider

import "encoding/json"

// Запрос на создание checkout-сессии
type CreateCheckoutSessionRequest struct {
	CustomerEmail string
	PriceID       string
	Quantity      int
	SuccessURL    string
	CancelURL     string
	ClientRefID   string
	Metadata      map[string]string
}

// Ответ провайдера при создании checkout-сессии
type CheckoutSession struct {
	ID         string `json:"id"`
	URL        string `json:"url"`
	CustomerID string `json:"customer"`
	Status     string `json:"status"`
}

// Событие вебхука платёжного провайдера
type WebhookEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// Объект checkout.session внутри события
type WebhookSession struct {
	ID            string            `json:"id"`
	CustomerID    string            `json:"customer"`
	ClientRefID   string            `json:"client_reference_id"`
	PaymentStatus string            `json:"payment_status"`
	Metadata      map[string]string `json:"metadata"`
}

// Объект payment_intent внутри события
type WebhookPaymentIntent struct {
	ID         string `json:"id"`
	CustomerID string `json:"customer"`
	Status     string `json:"status"`
}

// Объект subscription внутри события
type WebhookSubscription struct {
	ID         string `json:"id"`
	CustomerID string `json:"customer"`
	Status     string `json:"status"`
}
