// Package callback реализует HTTP-обработчик OAuth-callback рекламной площадки.
package callback

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/adpilot/internal/http/response"
	"github.com/magabrotheeeer/adpilot/internal/lib/sl"
	"github.com/magabrotheeeer/adpilot/internal/models"
	integrations "github.com/magabrotheeeer/adpilot/internal/services/integrations"
)

// Service описывает интерфейс бизнес-логики завершения OAuth-подключения.
type Service interface {
	HandleCallback(ctx context.Context, state, code string) (*models.Integration, error)
}

// Handler обрабатывает HTTP-запросы OAuth-callback.
type Handler struct {
	log *slog.Logger
	svc Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, svc Service) *Handler {
	return &Handler{log: log, svc: svc}
}

// ServeHTTP godoc
// @Summary OAuth-callback рекламной площадки
// @Description Завершает подключение площадки по state и code от провайдера.
// @Tags Integrations
// @Produce json
// @Param state query string true "Связующий state-токен"
// @Param code query string true "Код авторизации"
// @Success 200 {object} response.Response "Площадка подключена"
// @Failure 400 {object} response.ErrorResponse "Неизвестный или использованный state"
// @Failure 502 {object} response.ErrorResponse "Ошибка обмена кода на токен"
// @Router /integrations/callback [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.integrations.callback"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")
	if state == "" || code == "" {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("state and code are required"))
		return
	}

	integration, err := h.svc.HandleCallback(r.Context(), state, code)
	if err != nil {
		if errors.Is(err, integrations.ErrInvalidState) {
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("unknown or expired state"))
			return
		}
		log.Error("failed to complete platform connection", sl.Err(err))
		w.WriteHeader(http.StatusBadGateway)
		render.JSON(w, r, response.Error("failed to complete platform connection"))
		return
	}

	log.Info("platform connected", slog.String("platform", integration.Platform))
	render.JSON(w, r, response.OKWithData(integration))
}
