// Package create реализует HTTP-обработчик создания шаблона промпта.
package create

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/adpilot/internal/http/middlewarectx"
	"github.com/magabrotheeeer/adpilot/internal/http/response"
	"github.com/magabrotheeeer/adpilot/internal/lib/sl"
	"github.com/magabrotheeeer/adpilot/internal/models"
	templates "github.com/magabrotheeeer/adpilot/internal/services/templates"
)

// Service описывает интерфейс бизнес-логики создания шаблона.
type Service interface {
	Create(ctx context.Context, userUID string, dummy models.DummyPromptTemplate) (int64, error)
}

// Handler обрабатывает HTTP-запросы создания шаблона.
type Handler struct {
	log       *slog.Logger
	templates Service
	validate  *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, svc Service) *Handler {
	return &Handler{
		log:       log,
		templates: svc,
		validate:  validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Создание шаблона
// @Description Сохраняет пользовательский шаблон промпта для платформы.
// @Tags Templates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.DummyPromptTemplate true "Новый шаблон"
// @Success 200 {object} response.Response "Шаблон создан"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или платформа"
// @Failure 401 {object} response.ErrorResponse "Нет авторизации"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /templates [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.templates.create"

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

	var req models.DummyPromptTemplate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	id, err := h.templates.Create(r.Context(), userUID, req)
	switch {
	case errors.Is(err, templates.ErrUnknownPlatform):
		log.Error("unknown platform", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("unknown platform"))
		return
	case err != nil:
		log.Error("failed to create template", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to create template"))
		return
	}

	log.Info("template created", slog.Int64("id", id))
	render.JSON(w, r, response.OKWithData(map[string]any{"id": id}))
}
