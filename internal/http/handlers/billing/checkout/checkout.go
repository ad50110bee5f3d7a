// Package checkout реализует HTTP-обработчик создания платёжной сессии.
package checkout

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/adpilot/internal/http/middlewarectx"
	"github.com/magabrotheeeer/adpilot/internal/http/response"
	"github.com/magabrotheeeer/adpilot/internal/lib/sl"
	"github.com/magabrotheeeer/adpilot/internal/paymentprovider"
	billing "github.com/magabrotheeeer/adpilot/internal/services/billing"
)

// Request описывает запрос на покупку пакета кредитов.
type Request struct {
	Pack string `json:"pack" validate:"required"`
}

// Service описывает интерфейс бизнес-логики оплаты.
type Service interface {
	CreateCheckout(ctx context.Context, userUID, pack string) (*paymentprovider.CheckoutSession, error)
}

// Handler обрабатывает HTTP-запросы создания платёжной сессии.
type Handler struct {
	log      *slog.Logger
	svc      Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, svc Service) *Handler {
	return &Handler{
		log:      log,
		svc:      svc,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Покупка пакета кредитов
// @Description Создаёт платёжную сессию у провайдера и возвращает ссылку на оплату.
// @Tags Billing
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body Request true "Пакет: pack_small, pack_medium, pack_large"
// @Success 200 {object} response.Response "Ссылка на оплату"
// @Failure 400 {object} response.ErrorResponse "Неизвестный пакет"
// @Failure 401 {object} response.ErrorResponse "Нет авторизации"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации данных"
// @Failure 502 {object} response.ErrorResponse "Ошибка платёжного провайдера"
// @Router /billing/checkout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.checkout"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := middlewarectx.UserUIDFromContext(r.Context())
	if !ok {
		log.Error("user identification missing")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("user identification missing"))
		return
	}

	var req Request
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode request"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		var validateErr validator.ValidationErrors
		errors.As(err, &validateErr)
		log.Error("invalid request", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(validateErr))
		return
	}

	session, err := h.svc.CreateCheckout(r.Context(), userUID, req.Pack)
	if err != nil {
		if errors.Is(err, billing.ErrUnknownPack) {
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("unknown credit pack"))
			return
		}
		log.Error("failed to create checkout session", sl.Err(err))
		w.WriteHeader(http.StatusBadGateway)
		render.JSON(w, r, response.Error("failed to create checkout session"))
		return
	}

	log.Info("checkout session created",
		slog.String("pack", req.Pack),
		slog.String("session_id", session.ID))
	render.JSON(w, r, response.OKWithData(map[string]string{
		"session_id":   session.ID,
		"checkout_url": session.URL,
	}))
}
