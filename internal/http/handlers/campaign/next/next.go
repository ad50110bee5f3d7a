// Package next реализует HTTP-обработчик перехода мастера кампании вперёд.
package next

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/adpilot/internal/http/middlewarectx"
	"github.com/magabrotheeeer/adpilot/internal/http/response"
	"github.com/magabrotheeeer/adpilot/internal/lib/sl"
	"github.com/magabrotheeeer/adpilot/internal/models"
	campaign "github.com/magabrotheeeer/adpilot/internal/services/campaign"
	"github.com/magabrotheeeer/adpilot/internal/storage/repository"
)

// Request — данные текущего шага, накладываются поверх черновика.
type Request struct {
	Data json.RawMessage `json:"data"`
}

// Service описывает интерфейс бизнес-логики перехода вперёд.
type Service interface {
	Next(ctx context.Context, userUID string, stepData json.RawMessage) (*models.CampaignDraft, error)
}

// Handler обрабатывает HTTP-запросы перехода вперёд.
type Handler struct {
	log      *slog.Logger
	campaign Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, campaign Service) *Handler {
	return &Handler{log: log, campaign: campaign}
}

// ServeHTTP godoc
// @Summary Следующий шаг мастера
// @Description Сохраняет данные шага и продвигает мастер вперёд.
// @Tags Campaign
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body Request true "Данные шага"
// @Success 200 {object} response.Response "Обновлённый черновик"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Нет авторизации"
// @Failure 404 {object} response.ErrorResponse "Черновика нет"
// @Failure 422 {object} response.ErrorResponse "Шаг не пройден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /campaign/next [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.campaign.next"

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

	var req Request
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("failed to decode request body", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid request body"))
			return
		}
	}

	draft, err := h.campaign.Next(r.Context(), userUID, req.Data)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("no campaign draft"))
		return
	case errors.Is(err, campaign.ErrPlatformsRequired):
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error("at least one platform must be selected"))
		return
	case err != nil:
		log.Error("failed to advance campaign", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to advance campaign"))
		return
	}

	log.Info("campaign advanced", slog.Int("step", draft.Step))
	render.JSON(w, r, response.OKWithData(draft))
}
