// Package disconnect реализует HTTP-обработчик отключения рекламной площадки.
package disconnect

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/adpilot/internal/http/middlewarectx"
	"github.com/magabrotheeeer/adpilot/internal/http/response"
	"github.com/magabrotheeeer/adpilot/internal/lib/sl"
	integrations "github.com/magabrotheeeer/adpilot/internal/services/integrations"
)

// Service описывает интерфейс бизнес-логики отключения площадки.
type Service interface {
	Disconnect(ctx context.Context, userUID, platform string) (int, error)
}

// Handler обрабатывает HTTP-запросы отключения площадки.
type Handler struct {
	log *slog.Logger
	svc Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, svc Service) *Handler {
	return &Handler{log: log, svc: svc}
}

// ServeHTTP godoc
// @Summary Отключение рекламной площадки
// @Description Удаляет сохранённое подключение пользователя к площадке.
// @Tags Integrations
// @Produce json
// @Security BearerAuth
// @Param platform path string true "Площадка: google, meta, linkedin, microsoft"
// @Success 200 {object} response.Response "Подключение удалено"
// @Failure 400 {object} response.ErrorResponse "Неизвестная площадка"
// @Failure 401 {object} response.ErrorResponse "Нет авторизации"
// @Failure 404 {object} response.ErrorResponse "Подключения нет"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /integrations/{platform} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.integrations.disconnect"

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

	platform := chi.URLParam(r, "platform")

	removed, err := h.svc.Disconnect(r.Context(), userUID, platform)
	if err != nil {
		if errors.Is(err, integrations.ErrUnknownPlatform) {
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("unknown platform"))
			return
		}
		log.Error("failed to disconnect platform", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to disconnect platform"))
		return
	}
	if removed == 0 {
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("platform is not connected"))
		return
	}

	log.Info("platform disconnected", slog.String("platform", platform))
	render.JSON(w, r, response.OK())
}
