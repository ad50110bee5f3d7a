// Package members реализует HTTP-обработчик списка участников команды.
package members

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

// Service описывает интерфейс бизнес-логики списка участников.
type Service interface {
	Members(ctx context.Context, ownerUID string) ([]*models.TeamMember, error)
}

// Handler обрабатывает HTTP-запросы списка участников.
type Handler struct {
	log *slog.Logger
	svc Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, svc Service) *Handler {
	return &Handler{log: log, svc: svc}
}

// ServeHTTP godoc
// @Summary Список участников команды
// @Description Возвращает участников команды текущего пользователя.
// @Tags Team
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response "Список участников"
// @Failure 401 {object} response.ErrorResponse "Нет авторизации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /team/members [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.team.members"

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

	items, err := h.svc.Members(r.Context(), ownerUID)
	if err != nil {
		log.Error("failed to list team members", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list team members"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"members": items,
		"count":   len(items),
	}))
}
