// Package history реализует HTTP-обработчик журнала операций с кредитами.
package history

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/adpilot/internal/http/middlewarectx"
	"github.com/magabrotheeeer/adpilot/internal/http/response"
	"github.com/magabrotheeeer/adpilot/internal/lib/sl"
	"github.com/magabrotheeeer/adpilot/internal/models"
)

// Service описывает интерфейс бизнес-логики журнала кредитов.
type Service interface {
	History(ctx context.Context, userUID string, limit, offset int) ([]*models.LedgerEntry, error)
}

// Handler обрабатывает HTTP-запросы журнала кредитов.
type Handler struct {
	log     *slog.Logger
	credits Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, credits Service) *Handler {
	return &Handler{log: log, credits: credits}
}

// ServeHTTP godoc
// @Summary Журнал операций с кредитами
// @Description Возвращает страницу журнала, новые записи первыми.
// @Tags Credits
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} response.Response "Записи журнала"
// @Failure 401 {object} response.ErrorResponse "Нет авторизации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /credits/history [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.credits.history"

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

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	entries, err := h.credits.History(r.Context(), userUID, limit, offset)
	if err != nil {
		log.Error("failed to list ledger entries", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to get history"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"entries": entries,
		"count":   len(entries),
	}))
}
