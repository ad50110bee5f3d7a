// Package services содержит приём платежей: создание checkout-сессий
// и обработку вебхуков провайдера с начислением кредитов.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/adpilot/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/adpilot/internal/lib/sl"
	"github.com/magabrotheeeer/adpilot/internal/metrics"
	"github.com/magabrotheeeer/adpilot/internal/models"
	"github.com/magabrotheeeer/adpilot/internal/paymentprovider"
	"github.com/magabrotheeeer/adpilot/internal/storage/repository"
)

var (
	ErrUnknownPack = errors.New("unknown credit pack")
	ErrBadPayload  = errors.New("malformed webhook payload")
)

// Пакеты кредитов, доступные к покупке.
var creditPacks = map[string]int{
	"pack_small":  50,
	"pack_medium": 200,
	"pack_large":  1000,
}

// CheckoutClient описывает контракт клиента платёжного провайдера.
type CheckoutClient interface {
	CreateCheckoutSession(ctx context.Context, req paymentprovider.CreateCheckoutSessionRequest) (*paymentprovider.CheckoutSession, error)
}

// BillingRepository описывает контракт хранилища для платёжных операций.
type BillingRepository interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	AddCredits(ctx context.Context, userUID string, amount int, reason, refID string) error
	SetHasPaid(ctx context.Context, userUID, customerID string) error
	SetHasPaidByCustomer(ctx context.Context, customerID string, hasPaid bool) error

	// InsertBillingEvent возвращает false, если событие уже обработано.
	InsertBillingEvent(ctx context.Context, eventID, eventType string) (bool, error)
	RemoveBillingEvent(ctx context.Context, eventID string) error
}

// BillingService создаёт checkout-сессии и обрабатывает вебхуки провайдера.
type BillingService struct {
	log        *slog.Logger
	repo       BillingRepository
	checkout   CheckoutClient
	channel    *amqp.Channel
	successURL string
	cancelURL  string
}

// NewBillingService создает новый экземпляр BillingService.
// channel может быть nil: тогда письма о начислении не отправляются.
func NewBillingService(log *slog.Logger, repo BillingRepository, checkout CheckoutClient, channel *amqp.Channel, successURL, cancelURL string) *BillingService {
	return &BillingService{
		log:        log,
		repo:       repo,
		checkout:   checkout,
		channel:    channel,
		successURL: successURL,
		cancelURL:  cancelURL,
	}
}

// CreateCheckout создаёт checkout-сессию на покупку пакета кредитов.
func (s *BillingService) CreateCheckout(ctx context.Context, userUID, pack string) (*paymentprovider.CheckoutSession, error) {
	const op = "services.billing.CreateCheckout"

	credits, ok := creditPacks[pack]
	if !ok {
		return nil, fmt.Errorf("%s: %w: %s", op, ErrUnknownPack, pack)
	}

	user, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	session, err := s.checkout.CreateCheckoutSession(ctx, paymentprovider.CreateCheckoutSessionRequest{
		CustomerEmail: user.Email,
		PriceID:       pack,
		Quantity:      1,
		SuccessURL:    s.successURL,
		CancelURL:     s.cancelURL,
		ClientRefID:   userUID,
		Metadata: map[string]string{
			"credits": strconv.Itoa(credits),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return session, nil
}

// ProcessWebhookEvent обрабатывает событие провайдера. События с уже
// виденным ID пропускаются: повторная доставка не даёт двойного начисления.
func (s *BillingService) ProcessWebhookEvent(ctx context.Context, event *paymentprovider.WebhookEvent) error {
	const op = "services.billing.ProcessWebhookEvent"

	fresh, err := s.repo.InsertBillingEvent(ctx, event.ID, event.Type)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !fresh {
		metrics.WebhookEvents.WithLabelValues(event.Type, "duplicate").Inc()
		s.log.Info("skipping duplicate webhook event", slog.String("event_id", event.ID))
		return nil
	}

	var handleErr error
	switch {
	case event.Type == "checkout.session.completed":
		handleErr = s.handleCheckoutCompleted(ctx, event)
	case event.Type == "payment_intent.succeeded":
		handleErr = s.handlePaymentIntentSucceeded(ctx, event)
	case strings.HasPrefix(event.Type, "customer.subscription."):
		handleErr = s.handleSubscriptionEvent(ctx, event)
	default:
		// неизвестные типы подтверждаем, чтобы провайдер не ретраил их вечно
		s.log.Info("ignoring webhook event", slog.String("type", event.Type))
	}
	if handleErr != nil {
		metrics.WebhookEvents.WithLabelValues(event.Type, "error").Inc()
		// освобождаем ID: повторная доставка должна обработаться заново
		if rmErr := s.repo.RemoveBillingEvent(ctx, event.ID); rmErr != nil {
			s.log.Error("failed to release billing event", sl.Err(rmErr),
				slog.String("event_id", event.ID))
		}
		return fmt.Errorf("%s: %w", op, handleErr)
	}

	metrics.WebhookEvents.WithLabelValues(event.Type, "ok").Inc()
	return nil
}

func (s *BillingService) handleCheckoutCompleted(ctx context.Context, event *paymentprovider.WebhookEvent) error {
	session, err := paymentprovider.ParseWebhookSession(event)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if session.ClientRefID == "" {
		return fmt.Errorf("%w: missing client reference", ErrBadPayload)
	}
	credits, err := strconv.Atoi(session.Metadata["credits"])
	if err != nil || credits <= 0 {
		return fmt.Errorf("%w: bad credits metadata %q", ErrBadPayload, session.Metadata["credits"])
	}

	userUID := session.ClientRefID
	if err := s.repo.AddCredits(ctx, userUID, credits, "purchase", event.ID); err != nil {
		return err
	}
	if err := s.repo.SetHasPaid(ctx, userUID, session.CustomerID); err != nil {
		return err
	}

	s.notifyCreditsGranted(ctx, userUID, credits)
	return nil
}

// handlePaymentIntentSucceeded отмечает профиль оплаченным по
// идентификатору клиента. Кредиты начисляет checkout.session.completed.
func (s *BillingService) handlePaymentIntentSucceeded(ctx context.Context, event *paymentprovider.WebhookEvent) error {
	intent, err := paymentprovider.ParseWebhookPaymentIntent(event)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if intent.CustomerID == "" {
		// разовые платежи без клиента подтверждаем молча
		s.log.Info("payment intent without customer", slog.String("event_id", event.ID))
		return nil
	}

	if err := s.repo.SetHasPaidByCustomer(ctx, intent.CustomerID, true); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.log.Warn("payment intent for unknown customer",
				slog.String("customer_id", intent.CustomerID))
			return nil
		}
		return err
	}
	return nil
}

// handleSubscriptionEvent синхронизирует признак оплаты с состоянием
// подписки: отмена или удаление снимает его, остальные статусы ставят.
func (s *BillingService) handleSubscriptionEvent(ctx context.Context, event *paymentprovider.WebhookEvent) error {
	sub, err := paymentprovider.ParseWebhookSubscription(event)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if sub.CustomerID == "" {
		return fmt.Errorf("%w: missing customer", ErrBadPayload)
	}

	hasPaid := true
	if event.Type == "customer.subscription.deleted" ||
		sub.Status == "canceled" || sub.Status == "unpaid" {
		hasPaid = false
	}

	if err := s.repo.SetHasPaidByCustomer(ctx, sub.CustomerID, hasPaid); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.log.Warn("subscription event for unknown customer",
				slog.String("customer_id", sub.CustomerID))
			return nil
		}
		return err
	}
	return nil
}

// notifyCreditsGranted отправляет событие для письма о начислении.
// Сбой очереди не откатывает начисление.
func (s *BillingService) notifyCreditsGranted(ctx context.Context, userUID string, credits int) {
	if s.channel == nil {
		return
	}
	user, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		s.log.Error("failed to load user for notification", sl.Err(err))
		return
	}
	info := models.CreditsGrantedInfo{
		Email:    user.Email,
		Username: user.Username,
		Credits:  credits,
		Reason:   "purchase",
	}
	if err := rabbitmq.PublishMessage(s.channel, "notifications", "credits.granted", info); err != nil {
		s.log.Error("failed to publish credits notification", sl.Err(err))
	}
}

// PackCredits возвращает размер пакета. Используется обработчиками для валидации.
func PackCredits(pack string) (int, bool) {
	credits, ok := creditPacks[pack]
	return credits, ok
}
