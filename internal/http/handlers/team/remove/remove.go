// Package remove реализует HTTP-обработчик удаления участника из команды.
package remove

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/adpilot/internal/http/middlewarectx"
	"github.com/magabrotheeeer/adpilot/internal/http/response"
	"github.com/magabrotheeeer/adpilot/internal/lib/sl"
)

// Service описывает интерфейс бизнес-логики удаления участников.
type Service interface {
	Remove(ctx context.Context, ownerUID, memberUID string) (int, error)
}

// Handler обрабатывает HTTP-запросы удаления участника.
type Handler struct {
	log *slog.Logger
	svc Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, svc Service) *Handler {
	return &Handler{log: log, svc: svc}
}

// ServeHTTP godoc
// @Summary Удаление участника из команды
// @Description Удаляет участника из команды текущего пользователя.
// @Tags Team
// @Produce json
// @Security BearerAuth
// @Param member_uid path string true "UID участника"
// @Success 200 {object} response.Response "Участник удалён"
// @Failure 401 {object} response.ErrorResponse "Нет авторизации"
// @Failure 404 {object} response.ErrorResponse "Участник не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /team/members/{member_uid} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.team.remove"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	ownerUID, ok := middlewarectx.UserUIDFromContext(r.Context())
	if !ok {
		log.Error("user identification missing")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("user identification missing"))
		return
	}

	memberUID := chi.URLParam(r, "member_uid")

	removed, err := h.svc.Remove(r.Context(), ownerUID, memberUID)
	if err != nil {
		log.Error("failed to remove team member", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to remove team member"))
		return
	}
	if removed == 0 {
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("member not found"))
		return
	}

	log.Info("team member removed", slog.String("member_uid", memberUID))
	render.JSON(w, r, response.OK())
}
