// Package start реализует HTTP-обработчик запуска мастера кампании.
package start

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/adpilot/internal/http/middlewarectx"
	"github.com/magabrotheeeer/adpilot/internal/http/response"
	"github.com/magabrotheeeer/adpilot/internal/lib/sl"
	"github.com/magabrotheeeer/adpilot/internal/models"
)

// Service описывает интерфейс бизнес-логики мастера кампании.
type Service interface {
	Start(ctx context.Context, userUID string) (*models.CampaignDraft, error)
}

// Handler обрабатывает HTTP-запросы запуска мастера.
type Handler struct {
	log      *slog.Logger
	campaign Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, campaign Service) *Handler {
	return &Handler{log: log, campaign: campaign}
}

// ServeHTTP godoc
// @Summary Запуск мастера кампании
// @Description Возвращает существующий черновик или создаёт новый на первом шаге.
// @Tags Campaign
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response "Черновик кампании"
// @Failure 401 {object} response.ErrorResponse "Нет авторизации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /campaign [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.campaign.start"

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

	draft, err := h.campaign.Start(r.Context(), userUID)
	if err != nil {
		log.Error("failed to start campaign", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to start campaign"))
		return
	}

	log.Info("campaign draft ready", slog.Int("step", draft.Step))
	render.JSON(w, r, response.OKWithData(draft))
}
