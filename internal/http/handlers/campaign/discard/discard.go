// Package discard реализует HTTP-обработчик удаления черновика кампании.
package discard

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/adpilot/internal/http/middlewarectx"
	"github.com/magabrotheeeer/adpilot/internal/http/response"
	"github.com/magabrotheeeer/adpilot/internal/lib/sl"
)

// Service описывает интерфейс бизнес-логики удаления черновика.
type Service interface {
	Discard(ctx context.Context, userUID string) (int, error)
}

// Handler обрабатывает HTTP-запросы удаления черновика.
type Handler struct {
	log      *slog.Logger
	campaign Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, campaign Service) *Handler {
	return &Handler{log: log, campaign: campaign}
}

// ServeHTTP godoc
// @Summary Удаление черновика кампании
// @Description Удаляет сохранённое состояние мастера.
// @Tags Campaign
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response "Черновик удалён"
// @Failure 401 {object} response.ErrorResponse "Нет авторизации"
// @Failure 404 {object} response.ErrorResponse "Черновика нет"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /campaign [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.campaign.discard"

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

	removed, err := h.campaign.Discard(r.Context(), userUID)
	if err != nil {
		log.Error("failed to discard campaign draft", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to discard campaign draft"))
		return
	}
	if removed == 0 {
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("no campaign draft"))
		return
	}

	log.Info("campaign draft discarded")
	render.JSON(w, r, response.OK())
}
