// Package webhook реализует HTTP-обработчик уведомлений платёжного провайдера.
package webhook

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/adpilot/internal/http/response"
	"github.com/magabrotheeeer/adpilot/internal/lib/sl"
	"github.com/magabrotheeeer/adpilot/internal/paymentprovider"
	billing "github.com/magabrotheeeer/adpilot/internal/services/billing"
)

// maxBodyBytes ограничивает размер тела вебхука.
const maxBodyBytes = 1 << 20

// Service описывает интерфейс бизнес-логики обработки платёжных событий.
type Service interface {
	ProcessWebhookEvent(ctx context.Context, event *paymentprovider.WebhookEvent) error
}

// Handler обрабатывает HTTP-запросы вебхуков провайдера.
type Handler struct {
	log    *slog.Logger
	svc    Service
	secret string
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, svc Service, secret string) *Handler {
	return &Handler{log: log, svc: svc, secret: secret}
}

// ServeHTTP godoc
// @Summary Вебхук платёжного провайдера
// @Description Принимает подписанные события провайдера и зачисляет кредиты. Повторные события игнорируются.
// @Tags Billing
// @Accept json
// @Produce json
// @Param Stripe-Signature header string true "Подпись события"
// @Success 200 {object} response.Response "Событие принято"
// @Failure 400 {object} response.ErrorResponse "Неверная подпись или тело события"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /billing/webhook [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.webhook"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		log.Error("failed to read webhook body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to read webhook body"))
		return
	}

	header := r.Header.Get("Stripe-Signature")
	if err := paymentprovider.VerifyWebhookSignature(payload, header, h.secret, time.Now()); err != nil {
		log.Error("webhook signature rejected", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid webhook signature"))
		return
	}

	event, err := paymentprovider.ParseWebhookEvent(payload)
	if err != nil {
		log.Error("failed to parse webhook event", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to parse webhook event"))
		return
	}

	if err := h.svc.ProcessWebhookEvent(r.Context(), event); err != nil {
		if errors.Is(err, billing.ErrBadPayload) {
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid webhook event payload"))
			return
		}
		log.Error("failed to process webhook event", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to process webhook event"))
		return
	}

	log.Info("webhook event processed",
		slog.String("event_id", event.ID),
		slog.String("type", event.Type))
	render.JSON(w, r, response.OK())
}
