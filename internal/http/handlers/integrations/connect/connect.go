// Package connect реализует HTTP-обработчик начала OAuth-подключения рекламной площадки.
package connect

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/adpilot/internal/http/middlewarectx"
	"github.com/magabrotheeeer/adpilot/internal/http/response"
	"github.com/magabrotheeeer/adpilot/internal/lib/sl"
	integrations "github.com/magabrotheeeer/adpilot/internal/services/integrations"
)

// Service описывает интерфейс бизнес-логики подключения площадки.
type Service interface {
	ConnectURL(ctx context.Context, userUID, platform string) (string, error)
}

// Handler обрабатывает HTTP-запросы начала подключения.
type Handler struct {
	log *slog.Logger
	svc Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, svc Service) *Handler {
	return &Handler{log: log, svc: svc}
}

// ServeHTTP godoc
// @Summary Подключение рекламной площадки
// @Description Возвращает ссылку авторизации OAuth для выбранной площадки.
// @Tags Integrations
// @Produce json
// @Security BearerAuth
// @Param platform path string true "Площадка: google, meta, linkedin, microsoft"
// @Success 200 {object} response.Response "Ссылка авторизации"
// @Failure 400 {object} response.ErrorResponse "Неизвестная площадка"
// @Failure 401 {object} response.ErrorResponse "Нет авторизации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /integrations/{platform}/connect [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.integrations.connect"

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

	platform := chi.URLParam(r, "platform")

	authURL, err := h.svc.ConnectURL(r.Context(), userUID, platform)
	if err != nil {
		if errors.Is(err, integrations.ErrUnknownPlatform) {
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("unknown platform"))
			return
		}
		log.Error("failed to build authorization url", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to build authorization url"))
		return
	}

	log.Info("authorization url issued", slog.String("platform", platform))
	render.JSON(w, r, response.OKWithData(map[string]string{
		"auth_url": authURL,
	}))
}
