// Package list реализует HTTP-обработчик списка подключенных площадок.
package list

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

// Service описывает интерфейс бизнес-логики списка подключений.
type Service interface {
	List(ctx context.Context, userUID string) ([]*models.Integration, error)
}

// Handler обрабатывает HTTP-запросы списка подключений.
type Handler struct {
	log *slog.Logger
	svc Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, svc Service) *Handler {
	return &Handler{log: log, svc: svc}
}

// ServeHTTP godoc
// @Summary Список подключенных площадок
// @Description Возвращает подключения пользователя без секретов токенов.
// @Tags Integrations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response "Список подключений"
// @Failure 401 {object} response.ErrorResponse "Нет авторизации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /integrations [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.integrations.list"

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

	items, err := h.svc.List(r.Context(), userUID)
	if err != nil {
		log.Error("failed to list integrations", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list integrations"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"integrations": items,
		"count":        len(items),
	}))
}
