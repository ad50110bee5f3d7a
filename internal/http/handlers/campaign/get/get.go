// Package get реализует HTTP-обработчик чтения черновика кампании.
package get

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/adpilot/internal/http/middlewarectx"
	"github.com/magabrotheeeer/adpilot/internal/http/response"
	"github.com/magabrotheeeer/adpilot/internal/lib/sl"
	"github.com/magabrotheeeer/adpilot/internal/models"
	"github.com/magabrotheeeer/adpilot/internal/storage/repository"
)

// Service описывает интерфейс бизнес-логики чтения черновика.
type Service interface {
	Get(ctx context.Context, userUID string) (*models.CampaignDraft, error)
}

// Handler обрабатывает HTTP-запросы чтения черновика.
type Handler struct {
	log      *slog.Logger
	campaign Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, campaign Service) *Handler {
	return &Handler{log: log, campaign: campaign}
}

// ServeHTTP godoc
// @Summary Текущий черновик кампании
// @Description Возвращает сохранённое состояние мастера.
// @Tags Campaign
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response "Черновик кампании"
// @Failure 401 {object} response.ErrorResponse "Нет авторизации"
// @Failure 404 {object} response.ErrorResponse "Черновика нет"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /campaign [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.campaign.get"

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

	draft, err := h.campaign.Get(r.Context(), userUID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("no campaign draft"))
		return
	case err != nil:
		log.Error("failed to get campaign draft", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to get campaign draft"))
		return
	}

	render.JSON(w, r, response.OKWithData(draft))
}
