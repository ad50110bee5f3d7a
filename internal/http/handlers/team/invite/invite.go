// Package invite реализует HTTP-обработчик приглашения участника в команду.
package invite

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
	"github.com/magabrotheeeer/adpilot/internal/models"
)

// Request описывает запрос на приглашение участника.
type Request struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role,omitempty"`
}

// Service описывает интерфейс бизнес-логики приглашений.
type Service interface {
	Invite(ctx context.Context, ownerUID, email, role string) (*models.TeamInvitation, error)
}

// Handler обрабатывает HTTP-запросы приглашения участника.
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
// @Summary Приглашение участника в команду
// @Description Создаёт приглашение и отправляет письмо со ссылкой.
// @Tags Team
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body Request true "Email приглашаемого и роль"
// @Success 200 {object} response.Response "Приглашение создано"
// @Failure 400 {object} response.ErrorResponse "Ошибка запроса"
// @Failure 401 {object} response.ErrorResponse "Нет авторизации"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации данных"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /team/invite [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.team.invite"

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

	invitation, err := h.svc.Invite(r.Context(), ownerUID, req.Email, req.Role)
	if err != nil {
		log.Error("failed to create invitation", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to create invitation"))
		return
	}

	log.Info("invitation created", slog.String("email", req.Email))
	render.JSON(w, r, response.OKWithData(invitation))
}
