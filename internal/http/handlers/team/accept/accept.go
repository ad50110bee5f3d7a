// Package accept реализует HTTP-обработчик принятия приглашения в команду.
package accept

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/adpilot/internal/http/middlewarectx"
	"github.com/magabrotheeeer/adpilot/internal/http/response"
	"github.com/magabrotheeeer/adpilot/internal/lib/sl"
	team "github.com/magabrotheeeer/adpilot/internal/services/team"
)

// Request описывает запрос принятия приглашения.
type Request struct {
	Token string `json:"token" validate:"required"`
}

// Service описывает интерфейс бизнес-логики принятия приглашений.
type Service interface {
	Accept(ctx context.Context, token, memberUID string) error
}

// Handler обрабатывает HTTP-запросы принятия приглашения.
type Handler struct {
	log      *slog.Logger
	svc      Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, svc Service) *Handler {
	return &Handler{
		log:      log,
		svc:      svc,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Принятие приглашения в команду
// @Description Принимает приглашение по токену из письма.
// @Tags Team
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body Request true "Токен приглашения"
// @Success 200 {object} response.Response "Приглашение принято"
// @Failure 401 {object} response.ErrorResponse "Нет авторизации"
// @Failure 404 {object} response.ErrorResponse "Приглашение не найдено"
// @Failure 410 {object} response.ErrorResponse "Приглашение просрочено"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации данных"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /team/accept [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.team.accept"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	memberUID, ok := middlewarectx.UserUIDFromContext(r.Context())
	if !ok {
		log.Error("user identification missing")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("user identification missing"))
		return
	}

	var req Request
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode request"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		var validateErr validator.ValidationErrors
		errors.As(err, &validateErr)
		log.Error("invalid request", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(validateErr))
		return
	}

	if err := h.svc.Accept(r.Context(), req.Token, memberUID); err != nil {
		switch {
		case errors.Is(err, team.ErrInvitationNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("invitation not found"))
		case errors.Is(err, team.ErrInvitationExpired):
			w.WriteHeader(http.StatusGone)
			render.JSON(w, r, response.Error("invitation expired"))
		default:
			log.Error("failed to accept invitation", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to accept invitation"))
		}
		return
	}

	log.Info("invitation accepted")
	render.JSON(w, r, response.OK())
}
