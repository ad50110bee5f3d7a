// Package claimfree реализует HTTP-обработчик получения стартовых кредитов.
package claimfree

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/adpilot/internal/http/middlewarectx"
	"github.com/magabrotheeeer/adpilot/internal/http/response"
	"github.com/magabrotheeeer/adpilot/internal/lib/sl"
	"github.com/magabrotheeeer/adpilot/internal/storage/repository"
)

// Service описывает интерфейс бизнес-логики стартовых кредитов.
type Service interface {
	ClaimFree(ctx context.Context, userUID string) error
}

// Handler обрабатывает HTTP-запросы стартовых кредитов.
type Handler struct {
	log     *slog.Logger
	credits Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, credits Service) *Handler {
	return &Handler{log: log, credits: credits}
}

// ServeHTTP godoc
// @Summary Начисление стартовых кредитов
// @Description Начисляет бесплатные кредиты один раз на аккаунт.
// @Tags Credits
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response "Кредиты начислены"
// @Failure 401 {object} response.ErrorResponse "Нет авторизации"
// @Failure 409 {object} response.ErrorResponse "Кредиты уже получены"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /credits/claim-free [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.credits.claimfree"

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

	err := h.credits.ClaimFree(r.Context(), userUID)
	switch {
	case errors.Is(err, repository.ErrAlreadyClaimed):
		log.Info("free credits already claimed")
		w.WriteHeader(http.StatusConflict)
		render.JSON(w, r, response.Error("free credits already claimed"))
		return
	case err != nil:
		log.Error("failed to claim free credits", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to claim free credits"))
		return
	}

	log.Info("free credits claimed")
	render.JSON(w, r, response.OK())
}
