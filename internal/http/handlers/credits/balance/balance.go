// Package balance реализует HTTP-обработчик запроса баланса кредитов.
package balance

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

// Service описывает интерфейс бизнес-логики баланса.
type Service interface {
	GetBalance(ctx context.Context, userUID string) (*models.Profile, error)
}

// Handler обрабатывает HTTP-запросы баланса кредитов.
type Handler struct {
	log     *slog.Logger
	credits Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, credits Service) *Handler {
	return &Handler{log: log, credits: credits}
}

// ServeHTTP godoc
// @Summary Баланс кредитов
// @Description Возвращает профиль пользователя с текущим балансом.
// @Tags Credits
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response "Профиль с балансом"
// @Failure 401 {object} response.ErrorResponse "Нет авторизации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /credits [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.credits.balance"

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

	profile, err := h.credits.GetBalance(r.Context(), userUID)
	if err != nil {
		log.Error("failed to get balance", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to get balance"))
		return
	}

	render.JSON(w, r, response.OKWithData(profile))
}
