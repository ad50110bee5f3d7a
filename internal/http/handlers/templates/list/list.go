// Package list реализует HTTP-обработчик списка шаблонов промптов.
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

// Service описывает интерфейс бизнес-логики шаблонов.
type Service interface {
	List(ctx context.Context, userUID string) ([]*models.PromptTemplate, error)
}

// Handler обрабатывает HTTP-запросы списка шаблонов.
type Handler struct {
	log       *slog.Logger
	templates Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, templates Service) *Handler {
	return &Handler{log: log, templates: templates}
}

// ServeHTTP godoc
// @Summary Список шаблонов
// @Description Возвращает встроенные шаблоны и шаблоны пользователя.
// @Tags Templates
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response "Шаблоны"
// @Failure 401 {object} response.ErrorResponse "Нет авторизации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /templates [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.templates.list"

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

	templates, err := h.templates.List(r.Context(), userUID)
	if err != nil {
		log.Error("failed to list templates", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list templates"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"templates": templates,
		"count":     len(templates),
	}))
}
