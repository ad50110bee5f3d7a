// Package remove реализует HTTP-обработчик удаления шаблона промпта.
package remove

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/adpilot/internal/http/middlewarectx"
	"github.com/magabrotheeeer/adpilot/internal/http/response"
	"github.com/magabrotheeeer/adpilot/internal/lib/sl"
)

// Service описывает интерфейс бизнес-логики удаления шаблона.
type Service interface {
	Remove(ctx context.Context, id int64, userUID string) (int, error)
}

// Handler обрабатывает HTTP-запросы удаления шаблона.
type Handler struct {
	log       *slog.Logger
	templates Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, templates Service) *Handler {
	return &Handler{log: log, templates: templates}
}

// ServeHTTP godoc
// @Summary Удаление шаблона
// @Description Удаляет шаблон пользователя. Встроенные шаблоны удалить нельзя.
// @Tags Templates
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID шаблона"
// @Success 200 {object} response.Response "Шаблон удалён"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 401 {object} response.ErrorResponse "Нет авторизации"
// @Failure 404 {object} response.ErrorResponse "Шаблон не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /templates/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.templates.remove"

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

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		log.Error("invalid template id", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid template id"))
		return
	}

	removed, err := h.templates.Remove(r.Context(), id, userUID)
	if err != nil {
		log.Error("failed to remove template", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to remove template"))
		return
	}
	if removed == 0 {
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("template not found"))
		return
	}

	log.Info("template removed", slog.Int64("id", id))
	render.JSON(w, r, response.OK())
}
